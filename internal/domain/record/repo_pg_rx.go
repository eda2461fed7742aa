package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type prescriptionRepoPG struct {
	pool *pgxpool.Pool
}

func NewPrescriptionRepo(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

const prescriptionCols = `id, record_id, patient_id, doctor_id, medicine_list,
	filled, filled_by, filled_at, created_at`

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO prescriptions (id, record_id, patient_id, doctor_id, medicine_list)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.RecordID, p.PatientID, p.DoctorID, p.MedicineList).
		Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	query := `SELECT ` + prescriptionCols + ` FROM prescriptions WHERE id = $1`
	return scanPrescription(r.pool.QueryRow(ctx, query, id))
}

func (r *prescriptionRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Prescription, error) {
	query := `SELECT ` + prescriptionCols + ` FROM prescriptions WHERE record_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions by record: %w", err)
	}
	defer rows.Close()
	return collectPrescriptions(rows)
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, unfilledOnly bool, since *time.Time) ([]*Prescription, error) {
	query := `SELECT ` + prescriptionCols + ` FROM prescriptions
		WHERE patient_id = $1
		  AND ($2 = FALSE OR filled = FALSE)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, patientID, unfilledOnly, since)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions by patient: %w", err)
	}
	defer rows.Close()
	return collectPrescriptions(rows)
}

func (r *prescriptionRepoPG) MarkFilled(ctx context.Context, id, pharmacistID uuid.UUID) (*Prescription, error) {
	query := `
		UPDATE prescriptions
		SET filled = TRUE, filled_by = $2, filled_at = NOW()
		WHERE id = $1 AND filled = FALSE
		RETURNING ` + prescriptionCols

	p, err := scanPrescription(r.pool.QueryRow(ctx, query, id, pharmacistID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrConflict
			}
		}
		return nil, err
	}
	return p, nil
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(
		&p.ID, &p.RecordID, &p.PatientID, &p.DoctorID, &p.MedicineList,
		&p.Filled, &p.FilledBy, &p.FilledAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan prescription: %w", err)
	}
	return &p, nil
}

func collectPrescriptions(rows pgx.Rows) ([]*Prescription, error) {
	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type labRequestRepoPG struct {
	pool *pgxpool.Pool
}

func NewLabRequestRepo(pool *pgxpool.Pool) LabRequestRepository {
	return &labRequestRepoPG{pool: pool}
}

const labCols = `l.id, l.record_id, l.patient_id, l.doctor_id, l.test_type,
	l.urgency, l.status, l.results, l.technician_id, l.completion_date, l.created_at`

func (r *labRequestRepoPG) Create(ctx context.Context, l *LabRequest) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = LabPending
	}
	if l.Urgency == "" {
		l.Urgency = "Routine"
	}

	query := `
		INSERT INTO lab_requests (id, record_id, patient_id, doctor_id, test_type, urgency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		l.ID, l.RecordID, l.PatientID, l.DoctorID, l.TestType, l.Urgency, l.Status,
	).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("create lab request: %w", err)
	}
	return nil
}

func (r *labRequestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabRequest, error) {
	query := `SELECT ` + labCols + ` FROM lab_requests l WHERE l.id = $1`
	return scanLabRequest(r.pool.QueryRow(ctx, query, id))
}

func (r *labRequestRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*LabRequest, error) {
	query := `SELECT ` + labCols + ` FROM lab_requests l WHERE l.record_id = $1 ORDER BY l.created_at`
	rows, err := r.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("list lab requests by record: %w", err)
	}
	defer rows.Close()
	return collectLabRequests(rows)
}

func (r *labRequestRepoPG) ListByStatus(ctx context.Context, hospitalID uuid.UUID, status string, limit, offset int) ([]*LabRequest, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM lab_requests l
		JOIN medical_records m ON m.id = l.record_id
		WHERE m.hospital_id = $1 AND l.status = $2`
	if err := r.pool.QueryRow(ctx, countQuery, hospitalID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lab requests: %w", err)
	}

	query := `SELECT ` + labCols + ` FROM lab_requests l
		JOIN medical_records m ON m.id = l.record_id
		WHERE m.hospital_id = $1 AND l.status = $2
		ORDER BY CASE l.urgency WHEN 'STAT' THEN 0 WHEN 'Urgent' THEN 1 ELSE 2 END, l.created_at
		LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, hospitalID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list lab requests: %w", err)
	}
	defer rows.Close()

	out, err := collectLabRequests(rows)
	return out, total, err
}

func (r *labRequestRepoPG) Start(ctx context.Context, id, technicianID uuid.UUID) (*LabRequest, error) {
	query := `
		UPDATE lab_requests l
		SET status = $3, technician_id = $2
		WHERE l.id = $1 AND l.status = $4
		RETURNING ` + labCols

	l, err := scanLabRequest(r.pool.QueryRow(ctx, query, id, technicianID, LabInProgress, LabPending))
	return r.resolveGuard(ctx, id, l, err)
}

func (r *labRequestRepoPG) SubmitResults(ctx context.Context, id, technicianID uuid.UUID, results *LabResults) (*LabRequest, error) {
	query := `
		UPDATE lab_requests l
		SET status = $4, results = $3, technician_id = $2, completion_date = NOW()
		WHERE l.id = $1 AND l.status = $5
		RETURNING ` + labCols

	l, err := scanLabRequest(r.pool.QueryRow(ctx, query, id, technicianID, results, LabCompleted, LabInProgress))
	return r.resolveGuard(ctx, id, l, err)
}

func (r *labRequestRepoPG) resolveGuard(ctx context.Context, id uuid.UUID, l *LabRequest, err error) (*LabRequest, error) {
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

func scanLabRequest(row pgx.Row) (*LabRequest, error) {
	var l LabRequest
	err := row.Scan(
		&l.ID, &l.RecordID, &l.PatientID, &l.DoctorID, &l.TestType,
		&l.Urgency, &l.Status, &l.Results, &l.TechnicianID, &l.CompletionDate, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan lab request: %w", err)
	}
	return &l, nil
}

func collectLabRequests(rows pgx.Rows) ([]*LabRequest, error) {
	var out []*LabRequest
	for rows.Next() {
		l, err := scanLabRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
