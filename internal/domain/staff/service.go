package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediconnet/api/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddStaffInput is the payload a hospital admin submits when creating a
// staff member. Profile fields are flat; the service folds them into the
// variant matching the role.
type AddStaffInput struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Specialization string `json:"specialization"`
	ContactNumber  string `json:"contact_number"`
	Address        string `json:"address"`
}

func (s *Service) AddStaff(ctx context.Context, hospitalID uuid.UUID, in AddStaffInput) (*Staff, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" {
		return nil, fmt.Errorf("first name, last name and email are required")
	}
	if in.Role == "" {
		return nil, fmt.Errorf("role is required")
	}

	member := &Staff{
		HospitalID: hospitalID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Role:       in.Role,
	}
	if in.Role == auth.RoleDoctor {
		member.Doctor = &DoctorProfile{
			Specialization:     in.Specialization,
			ContactNumber:      in.ContactNumber,
			Address:            in.Address,
			AssignedPatientIDs: []uuid.UUID{},
		}
	} else {
		member.Contact = &ContactProfile{
			ContactNumber: in.ContactNumber,
			Address:       in.Address,
		}
	}
	if err := member.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) GetStaff(ctx context.Context, hospitalID, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, hospitalID, id)
}

func (s *Service) ListStaff(ctx context.Context, hospitalID uuid.UUID, role string, limit, offset int) ([]*Staff, int, error) {
	if role != "" && !ValidRole(role) {
		return nil, 0, fmt.Errorf("invalid staff role: %s", role)
	}
	return s.repo.List(ctx, hospitalID, role, limit, offset)
}

func (s *Service) RemoveStaff(ctx context.Context, hospitalID, id uuid.UUID) error {
	return s.repo.Delete(ctx, hospitalID, id)
}

// ListDoctors is a convenience for the triage workflow, which needs the
// roster of doctors to assign patients to.
func (s *Service) ListDoctors(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Staff, int, error) {
	return s.repo.List(ctx, hospitalID, auth.RoleDoctor, limit, offset)
}
