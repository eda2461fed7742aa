package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type outboxPG struct {
	pool *pgxpool.Pool
}

func NewOutbox(pool *pgxpool.Pool) Outbox {
	return &outboxPG{pool: pool}
}

func (o *outboxPG) Enqueue(ctx context.Context, recordID uuid.UUID) error {
	query := `
		INSERT INTO sync_outbox (record_id, status, next_attempt_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (record_id) DO NOTHING`

	if _, err := o.pool.Exec(ctx, query, recordID, OutboxPending); err != nil {
		return fmt.Errorf("enqueue sync: %w", err)
	}
	return nil
}

func (o *outboxPG) ClaimDue(ctx context.Context, limit int) ([]*OutboxItem, error) {
	// Claiming is a single UPDATE: the inner SELECT's SKIP LOCKED keeps
	// concurrent workers off the same rows while the statement runs, and the
	// pushed next_attempt_at leases each claimed row until MarkDelivered or
	// MarkFailed records the outcome.
	query := `
		UPDATE sync_outbox
		SET next_attempt_at = NOW() + INTERVAL '1 minute'
		WHERE id IN (
			SELECT id FROM sync_outbox
			WHERE status = $1 AND next_attempt_at <= NOW()
			ORDER BY next_attempt_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, record_id, status, attempts, next_attempt_at, last_error, created_at, delivered_at`

	rows, err := o.pool.Query(ctx, query, OutboxPending, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due sync items: %w", err)
	}
	defer rows.Close()

	var out []*OutboxItem
	for rows.Next() {
		var item OutboxItem
		if err := rows.Scan(
			&item.ID, &item.RecordID, &item.Status, &item.Attempts,
			&item.NextAttemptAt, &item.LastError, &item.CreatedAt, &item.DeliveredAt,
		); err != nil {
			return nil, fmt.Errorf("scan sync item: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

func (o *outboxPG) MarkDelivered(ctx context.Context, id int64) error {
	query := `UPDATE sync_outbox SET status = $2, delivered_at = NOW() WHERE id = $1`
	if _, err := o.pool.Exec(ctx, query, id, OutboxDelivered); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return nil
}

func (o *outboxPG) MarkFailed(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, lastError string, exhausted bool) error {
	status := OutboxPending
	if exhausted {
		status = OutboxFailed
	}
	query := `
		UPDATE sync_outbox
		SET status = $2, attempts = $3, next_attempt_at = $4, last_error = $5
		WHERE id = $1`

	if _, err := o.pool.Exec(ctx, query, id, status, attempts, nextAttemptAt, lastError); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func (o *outboxPG) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := o.pool.Query(ctx, `SELECT status, COUNT(*) FROM sync_outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("outbox stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
