package hospital

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the hospital does not exist.
	ErrNotFound = errors.New("hospital not found")

	// ErrDuplicateLicense indicates the license number is already registered.
	ErrDuplicateLicense = errors.New("license number already registered")
)

type Repository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	GetByLicenseNumber(ctx context.Context, licenseNumber string) (*Hospital, error)
	List(ctx context.Context, limit, offset int) ([]*Hospital, int, error)
	Summary(ctx context.Context) (*Summary, error)
}
