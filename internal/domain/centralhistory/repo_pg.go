package centralhistory

import (
	"context"
	"encoding/json"
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

const historyCols = `id, fayda_id, first_name, last_name, date_of_birth, gender,
	blood_group, records, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, h *PatientHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Records == nil {
		h.Records = []RecordEntry{}
	}
	records, err := json.Marshal(h.Records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	query := `
		INSERT INTO central_patient_histories (id, fayda_id, first_name, last_name,
			date_of_birth, gender, blood_group, records)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err = r.pool.QueryRow(ctx, query,
		h.ID, h.FaydaID, h.FirstName, h.LastName, h.DateOfBirth,
		h.Gender, h.BloodGroup, records,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("create patient history: %w", err)
	}
	return nil
}

func (r *repoPG) GetByFaydaID(ctx context.Context, faydaID string) (*PatientHistory, error) {
	query := `SELECT ` + historyCols + ` FROM central_patient_histories WHERE fayda_id = $1`
	return scanHistory(r.pool.QueryRow(ctx, query, faydaID))
}

func (r *repoPG) AppendRecords(ctx context.Context, h *PatientHistory, entries []RecordEntry) error {
	newRecords, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	// Identity fields follow the latest sender; blood group only when the
	// sender actually provided one.
	query := `
		UPDATE central_patient_histories
		SET records = records || $2::jsonb,
		    first_name = $3,
		    last_name = $4,
		    date_of_birth = COALESCE($5, date_of_birth),
		    gender = CASE WHEN $6 <> '' THEN $6 ELSE gender END,
		    blood_group = COALESCE($7, blood_group),
		    updated_at = NOW()
		WHERE fayda_id = $1
		RETURNING ` + historyCols

	updated, err := scanHistory(r.pool.QueryRow(ctx, query,
		h.FaydaID, newRecords, h.FirstName, h.LastName,
		h.DateOfBirth, h.Gender, h.BloodGroup))
	if err != nil {
		return err
	}
	*h = *updated
	return nil
}

func (r *repoPG) List(ctx context.Context, faydaID, firstName string, limit, offset int) ([]*PatientHistory, int, error) {
	// An empty filter yields the pattern "%%", which matches every row.
	faydaPattern := "%" + faydaID + "%"
	namePattern := "%" + firstName + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM central_patient_histories
		WHERE fayda_id ILIKE $1 AND first_name ILIKE $2`
	if err := r.pool.QueryRow(ctx, countQuery, faydaPattern, namePattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patient histories: %w", err)
	}

	query := `SELECT ` + historyCols + ` FROM central_patient_histories
		WHERE fayda_id ILIKE $1 AND first_name ILIKE $2
		ORDER BY first_name
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, faydaPattern, namePattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patient histories: %w", err)
	}
	defer rows.Close()

	var out []*PatientHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}

func scanHistory(row pgx.Row) (*PatientHistory, error) {
	var h PatientHistory
	var records []byte
	err := row.Scan(
		&h.ID, &h.FaydaID, &h.FirstName, &h.LastName, &h.DateOfBirth,
		&h.Gender, &h.BloodGroup, &records, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan patient history: %w", err)
	}
	if err := json.Unmarshal(records, &h.Records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if h.Records == nil {
		h.Records = []RecordEntry{}
	}
	return &h, nil
}
