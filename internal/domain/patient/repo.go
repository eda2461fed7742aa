package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("patient not found")
	ErrDuplicateFaydaID = errors.New("Fayda ID already exists")
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByFaydaID(ctx context.Context, faydaID string) (*Patient, error)
	List(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Patient, int, error)

	// Search matches over name and fayda id within one hospital.
	Search(ctx context.Context, hospitalID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error)

	// AddRegisteredHospital appends hospitalID to the patient's hospital
	// list if not already present.
	AddRegisteredHospital(ctx context.Context, patientID, hospitalID uuid.UUID) error

	Update(ctx context.Context, p *Patient) error
}
