package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("staff member not found")
	ErrDuplicateEmail = errors.New("staff member with this email already exists")
)

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	List(ctx context.Context, hospitalID uuid.UUID, role string, limit, offset int) ([]*Staff, int, error)
	Delete(ctx context.Context, hospitalID, id uuid.UUID) error

	// AssignPatient and UnassignPatient maintain the doctor's assigned
	// patient list inside the profile document.
	AssignPatient(ctx context.Context, hospitalID, doctorID, patientID uuid.UUID) error
	UnassignPatient(ctx context.Context, hospitalID, doctorID, patientID uuid.UUID) error
}
