package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outbox item statuses.
const (
	OutboxPending   = "pending"
	OutboxDelivered = "delivered"
	OutboxFailed    = "failed"
)

// OutboxItem is one completed record awaiting delivery to the central
// history. The record id is unique in the table, so re-completing or
// re-enqueueing the same record is a no-op.
type OutboxItem struct {
	ID            int64      `db:"id" json:"id"`
	RecordID      uuid.UUID  `db:"record_id" json:"recordId"`
	Status        string     `db:"status" json:"status"`
	Attempts      int        `db:"attempts" json:"attempts"`
	NextAttemptAt time.Time  `db:"next_attempt_at" json:"nextAttemptAt"`
	LastError     *string    `db:"last_error" json:"lastError,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	DeliveredAt   *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`
}

type Outbox interface {
	// Enqueue adds a record to the queue. Idempotent per record id.
	Enqueue(ctx context.Context, recordID uuid.UUID) error

	// ClaimDue returns up to limit pending items whose next attempt time
	// has passed, oldest first. Claiming leases the items by pushing their
	// next attempt time forward, so a concurrent worker's claim skips them
	// until their outcome is recorded.
	ClaimDue(ctx context.Context, limit int) ([]*OutboxItem, error)

	MarkDelivered(ctx context.Context, id int64) error

	// MarkFailed records a failed attempt. When attempts has reached the
	// worker's limit the item is parked with status failed instead of
	// being rescheduled.
	MarkFailed(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, lastError string, exhausted bool) error

	// Stats reports queue depth per status, for the health endpoint.
	Stats(ctx context.Context) (map[string]int, error)
}
