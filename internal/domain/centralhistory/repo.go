package centralhistory

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("patient history not found")
	ErrDuplicate = errors.New("patient history already exists")
)

type Repository interface {
	Create(ctx context.Context, h *PatientHistory) error
	GetByFaydaID(ctx context.Context, faydaID string) (*PatientHistory, error)

	// AppendRecords atomically appends entries to the records array and
	// refreshes the identity fields. BloodGroup is only overwritten when
	// non-nil. Returns ErrNotFound when no row matches the fayda id.
	AppendRecords(ctx context.Context, h *PatientHistory, entries []RecordEntry) error

	// List returns patient summaries. faydaID and firstName are independent
	// case-insensitive substring filters; an empty filter matches every row.
	List(ctx context.Context, faydaID, firstName string, limit, offset int) ([]*PatientHistory, int, error)
}
