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

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const recordCols = `id, hospital_id, patient_id, status, current_doctor, vitals,
	triage_data, doctor_notes, synced, created_at, updated_at, completed_at`

func (r *repoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = StatusUnassigned
	}

	query := `
		INSERT INTO medical_records (id, hospital_id, patient_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, rec.ID, rec.HospitalID, rec.PatientID, rec.Status).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create medical record: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*MedicalRecord, error) {
	query := `SELECT ` + recordCols + ` FROM medical_records WHERE id = $1 AND hospital_id = $2`
	return scanRecord(r.pool.QueryRow(ctx, query, id, hospitalID))
}

func (r *repoPG) GetAnyByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	query := `SELECT ` + recordCols + ` FROM medical_records WHERE id = $1`
	return scanRecord(r.pool.QueryRow(ctx, query, id))
}

func (r *repoPG) ListByStatus(ctx context.Context, hospitalID uuid.UUID, status Status, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM medical_records WHERE hospital_id = $1 AND status = $2`
	if err := r.pool.QueryRow(ctx, countQuery, hospitalID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	query := `SELECT ` + recordCols + ` FROM medical_records
		WHERE hospital_id = $1 AND status = $2
		ORDER BY created_at
		LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, hospitalID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list records by status: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows, total)
}

func (r *repoPG) ListByDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM medical_records
		WHERE hospital_id = $1 AND current_doctor = $2 AND status IN ($3, $4)`
	if err := r.pool.QueryRow(ctx, countQuery, hospitalID, doctorID, StatusAssigned, StatusInTreatment).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count doctor records: %w", err)
	}

	query := `SELECT ` + recordCols + ` FROM medical_records
		WHERE hospital_id = $1 AND current_doctor = $2 AND status IN ($3, $4)
		ORDER BY created_at
		LIMIT $5 OFFSET $6`
	rows, err := r.pool.Query(ctx, query, hospitalID, doctorID, StatusAssigned, StatusInTreatment, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list doctor records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, hospitalID, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM medical_records WHERE hospital_id = $1 AND patient_id = $2`
	if err := r.pool.QueryRow(ctx, countQuery, hospitalID, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patient records: %w", err)
	}

	query := `SELECT ` + recordCols + ` FROM medical_records
		WHERE hospital_id = $1 AND patient_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, hospitalID, patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patient records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows, total)
}

func (r *repoPG) CompleteTriage(ctx context.Context, hospitalID, id uuid.UUID, vitals *Vitals, triage *TriageData, doctorID uuid.UUID) (*MedicalRecord, error) {
	query := `
		UPDATE medical_records
		SET status = $4, current_doctor = $5, vitals = $6, triage_data = $7, updated_at = NOW()
		WHERE id = $1 AND hospital_id = $2 AND status = $3
		RETURNING ` + recordCols

	rec, err := scanRecord(r.pool.QueryRow(ctx, query,
		id, hospitalID, StatusUnassigned, StatusAssigned, doctorID, vitals, triage))
	return r.resolveGuard(ctx, hospitalID, id, rec, err)
}

func (r *repoPG) StartTreatment(ctx context.Context, hospitalID, id, doctorID uuid.UUID) (*MedicalRecord, error) {
	query := `
		UPDATE medical_records
		SET status = $5, updated_at = NOW()
		WHERE id = $1 AND hospital_id = $2 AND status = $3 AND current_doctor = $4
		RETURNING ` + recordCols

	rec, err := scanRecord(r.pool.QueryRow(ctx, query,
		id, hospitalID, StatusAssigned, doctorID, StatusInTreatment))
	return r.resolveGuard(ctx, hospitalID, id, rec, err)
}

func (r *repoPG) UpdateNotes(ctx context.Context, hospitalID, id, doctorID uuid.UUID, notes *DoctorNotes, vitals *Vitals) (*MedicalRecord, error) {
	query := `
		UPDATE medical_records
		SET doctor_notes = $5, vitals = COALESCE($6, vitals), updated_at = NOW()
		WHERE id = $1 AND hospital_id = $2 AND status = $3 AND current_doctor = $4
		RETURNING ` + recordCols

	rec, err := scanRecord(r.pool.QueryRow(ctx, query,
		id, hospitalID, StatusInTreatment, doctorID, notes, vitals))
	return r.resolveGuard(ctx, hospitalID, id, rec, err)
}

func (r *repoPG) Complete(ctx context.Context, hospitalID, id, doctorID uuid.UUID, completedAt time.Time) (*MedicalRecord, error) {
	query := `
		UPDATE medical_records
		SET status = $5, completed_at = $6, updated_at = NOW()
		WHERE id = $1 AND hospital_id = $2 AND status = $3 AND current_doctor = $4
		RETURNING ` + recordCols

	rec, err := scanRecord(r.pool.QueryRow(ctx, query,
		id, hospitalID, StatusInTreatment, doctorID, StatusCompleted, completedAt))
	return r.resolveGuard(ctx, hospitalID, id, rec, err)
}

func (r *repoPG) MarkSynced(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE medical_records SET synced = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// resolveGuard distinguishes a missing record from a failed state guard when
// a conditional update returned no row.
func (r *repoPG) resolveGuard(ctx context.Context, hospitalID, id uuid.UUID, rec *MedicalRecord, err error) (*MedicalRecord, error) {
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, hospitalID, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := row.Scan(
		&rec.ID, &rec.HospitalID, &rec.PatientID, &rec.Status, &rec.CurrentDoctor,
		&rec.Vitals, &rec.Triage, &rec.Notes, &rec.Synced,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan medical record: %w", err)
	}
	return &rec, nil
}

func collectRecords(rows pgx.Rows, total int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}
