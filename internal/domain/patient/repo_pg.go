package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, fayda_id, first_name, last_name, date_of_birth, gender,
	blood_group, contact_number, address, emergency_contact, allergies,
	registered_hospitals, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}

	query := `
		INSERT INTO patients (id, fayda_id, first_name, last_name, date_of_birth,
			gender, blood_group, contact_number, address, emergency_contact,
			allergies, registered_hospitals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.FaydaID, p.FirstName, p.LastName, p.DateOfBirth,
		p.Gender, p.BloodGroup, p.ContactNumber, p.Address, p.EmergencyContact,
		p.Allergies, p.RegisteredHospitals,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateFaydaID
		}
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE id = $1`
	return scanPatient(r.pool.QueryRow(ctx, query, id))
}

func (r *repoPG) GetByFaydaID(ctx context.Context, faydaID string) (*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE fayda_id = $1`
	return scanPatient(r.pool.QueryRow(ctx, query, faydaID))
}

func (r *repoPG) List(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM patients WHERE $1 = ANY(registered_hospitals)`
	if err := r.pool.QueryRow(ctx, countQuery, hospitalID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	query := `SELECT ` + patientCols + ` FROM patients
		WHERE $1 = ANY(registered_hospitals)
		ORDER BY last_name, first_name
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, hospitalID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) Search(ctx context.Context, hospitalID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + query + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM patients
		WHERE $1 = ANY(registered_hospitals)
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR fayda_id ILIKE $2)`
	if err := r.pool.QueryRow(ctx, countQuery, hospitalID, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patient search: %w", err)
	}

	searchQuery := `SELECT ` + patientCols + ` FROM patients
		WHERE $1 = ANY(registered_hospitals)
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR fayda_id ILIKE $2)
		ORDER BY last_name, first_name
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, searchQuery, hospitalID, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search patients: %w", err)
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) AddRegisteredHospital(ctx context.Context, patientID, hospitalID uuid.UUID) error {
	query := `
		UPDATE patients
		SET registered_hospitals = array_append(registered_hospitals, $2),
		    updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(registered_hospitals))`

	if _, err := r.pool.Exec(ctx, query, patientID, hospitalID); err != nil {
		return fmt.Errorf("add registered hospital: %w", err)
	}
	return nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	query := `
		UPDATE patients
		SET first_name = $2, last_name = $3, date_of_birth = $4, gender = $5,
		    blood_group = $6, contact_number = $7, address = $8,
		    emergency_contact = $9, allergies = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.BloodGroup, p.ContactNumber, p.Address, p.EmergencyContact, p.Allergies,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FaydaID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.BloodGroup, &p.ContactNumber, &p.Address, &p.EmergencyContact,
		&p.Allergies, &p.RegisteredHospitals, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
