package hospital

import (
	"context"
	"errors"

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

const hospitalCols = `id, name, location, contact_number, hospital_type, license_number,
	license_image, secret_key, is_in_our_system, status, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	h.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hospitals (
			id, name, location, contact_number, hospital_type, license_number,
			license_image, secret_key, is_in_our_system, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		h.ID, h.Name, h.Location, h.ContactNumber, h.HospitalType, h.LicenseNumber,
		h.LicenseImage, h.SecretKey, h.IsInOurSystem, h.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateLicense
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return scanHospital(r.pool.QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospitals WHERE id = $1`, id))
}

func (r *repoPG) GetByLicenseNumber(ctx context.Context, licenseNumber string) (*Hospital, error) {
	return scanHospital(r.pool.QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospitals WHERE license_number = $1`, licenseNumber))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hospitals`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+hospitalCols+` FROM hospitals ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var hospitals []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, total, rows.Err()
}

func (r *repoPG) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{ByType: make(map[string]int)}
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_in_our_system),
		       COUNT(*) FILTER (WHERE NOT is_in_our_system)
		FROM hospitals`).Scan(&s.Total, &s.Managed, &s.External); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT hospital_type, COUNT(*) FROM hospitals GROUP BY hospital_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		s.ByType[t] = n
	}
	return s, rows.Err()
}

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(
		&h.ID, &h.Name, &h.Location, &h.ContactNumber, &h.HospitalType, &h.LicenseNumber,
		&h.LicenseImage, &h.SecretKey, &h.IsInOurSystem, &h.Status, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}
