package staff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediconnet/api/internal/platform/auth"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const staffCols = `id, hospital_id, first_name, last_name, email, role, profile, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, s *Staff) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	profile, err := marshalProfile(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO staff (id, hospital_id, first_name, last_name, email, role, profile)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err = r.pool.QueryRow(ctx, query,
		s.ID, s.HospitalID, s.FirstName, s.LastName, s.Email, s.Role, profile,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Staff, error) {
	query := `SELECT ` + staffCols + ` FROM staff WHERE id = $1 AND hospital_id = $2`
	return scanStaff(r.pool.QueryRow(ctx, query, id, hospitalID))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	query := `SELECT ` + staffCols + ` FROM staff WHERE email = $1`
	return scanStaff(r.pool.QueryRow(ctx, query, email))
}

func (r *repoPG) List(ctx context.Context, hospitalID uuid.UUID, role string, limit, offset int) ([]*Staff, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM staff WHERE hospital_id = $1 AND ($2 = '' OR role = $2)`
	if err := r.pool.QueryRow(ctx, countQuery, hospitalID, role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}

	query := `SELECT ` + staffCols + ` FROM staff
		WHERE hospital_id = $1 AND ($2 = '' OR role = $2)
		ORDER BY last_name, first_name
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, hospitalID, role, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var out []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, hospitalID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id = $1 AND hospital_id = $2`, id, hospitalID)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) AssignPatient(ctx context.Context, hospitalID, doctorID, patientID uuid.UUID) error {
	query := `
		UPDATE staff
		SET profile = jsonb_set(
			profile,
			'{assigned_patient_ids}',
			COALESCE(profile->'assigned_patient_ids', '[]'::jsonb) || to_jsonb($3::text)
		), updated_at = NOW()
		WHERE id = $1 AND hospital_id = $2 AND role = $4
		  AND NOT COALESCE(profile->'assigned_patient_ids', '[]'::jsonb) @> to_jsonb($3::text)`

	tag, err := r.pool.Exec(ctx, query, doctorID, hospitalID, patientID.String(), auth.RoleDoctor)
	if err != nil {
		return fmt.Errorf("assign patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the doctor does not exist or the patient is already
		// assigned. Only the former is an error.
		if _, err := r.GetByID(ctx, hospitalID, doctorID); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) UnassignPatient(ctx context.Context, hospitalID, doctorID, patientID uuid.UUID) error {
	query := `
		UPDATE staff
		SET profile = jsonb_set(
			profile,
			'{assigned_patient_ids}',
			COALESCE(profile->'assigned_patient_ids', '[]'::jsonb) - $3::text
		), updated_at = NOW()
		WHERE id = $1 AND hospital_id = $2 AND role = $4`

	tag, err := r.pool.Exec(ctx, query, doctorID, hospitalID, patientID.String(), auth.RoleDoctor)
	if err != nil {
		return fmt.Errorf("unassign patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalProfile(s *Staff) ([]byte, error) {
	if s.Role == auth.RoleDoctor {
		if s.Doctor.AssignedPatientIDs == nil {
			s.Doctor.AssignedPatientIDs = []uuid.UUID{}
		}
		return json.Marshal(s.Doctor)
	}
	return json.Marshal(s.Contact)
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	var profile []byte
	err := row.Scan(
		&s.ID, &s.HospitalID, &s.FirstName, &s.LastName, &s.Email, &s.Role,
		&profile, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan staff: %w", err)
	}

	if s.Role == auth.RoleDoctor {
		s.Doctor = &DoctorProfile{}
		if err := json.Unmarshal(profile, s.Doctor); err != nil {
			return nil, fmt.Errorf("decode doctor profile: %w", err)
		}
		if s.Doctor.AssignedPatientIDs == nil {
			s.Doctor.AssignedPatientIDs = []uuid.UUID{}
		}
	} else {
		s.Contact = &ContactProfile{}
		if err := json.Unmarshal(profile, s.Contact); err != nil {
			return nil, fmt.Errorf("decode contact profile: %w", err)
		}
	}
	return &s, nil
}
