package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// VisitCreator opens an unassigned medical record for a patient visit. The
// record package implements it; the indirection keeps the packages from
// importing each other.
type VisitCreator interface {
	CreateUnassigned(ctx context.Context, hospitalID, patientID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo   Repository
	visits VisitCreator
}

func NewService(repo Repository, visits VisitCreator) *Service {
	return &Service{repo: repo, visits: visits}
}

type RegisterInput struct {
	FaydaID          string            `json:"faydaID"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	DateOfBirth      string            `json:"dateOfBirth"`
	Gender           string            `json:"gender"`
	BloodGroup       *string           `json:"bloodGroup"`
	ContactNumber    string            `json:"contactNumber"`
	Address          string            `json:"address"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
	Allergies        []string          `json:"allergies"`
}

// RegisterResult reports whether the visit was a first registration or a
// revisit, plus the record opened for the visit.
type RegisterResult struct {
	Patient  *Patient  `json:"patient"`
	RecordID uuid.UUID `json:"recordId"`
	Revisit  bool      `json:"-"`
}

// RegisterOrRevisit is the reception desk entry point. A known Fayda ID
// becomes a revisit: the hospital is added to the patient's list and a fresh
// unassigned record is opened. An unknown one creates the patient first.
func (s *Service) RegisterOrRevisit(ctx context.Context, hospitalID uuid.UUID, in RegisterInput) (*RegisterResult, error) {
	if in.FaydaID == "" {
		return nil, fmt.Errorf("faydaID is required")
	}
	if hospitalID == uuid.Nil {
		return nil, fmt.Errorf("hospital ID is required")
	}

	existing, err := s.repo.GetByFaydaID(ctx, in.FaydaID)
	if err == nil {
		return s.revisit(ctx, hospitalID, existing)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("first name and last name are required")
	}

	p := &Patient{
		FaydaID:             in.FaydaID,
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		Gender:              in.Gender,
		BloodGroup:          in.BloodGroup,
		ContactNumber:       in.ContactNumber,
		Address:             in.Address,
		EmergencyContact:    in.EmergencyContact,
		Allergies:           in.Allergies,
		RegisteredHospitals: []uuid.UUID{hospitalID},
	}
	if in.DateOfBirth != "" {
		dob, err := parseDate(in.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid dateOfBirth: %w", err)
		}
		p.DateOfBirth = &dob
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// Lost a race against a concurrent registration: treat it as a
		// revisit of the patient that won.
		if errors.Is(err, ErrDuplicateFaydaID) {
			winner, getErr := s.repo.GetByFaydaID(ctx, in.FaydaID)
			if getErr != nil {
				return nil, err
			}
			return s.revisit(ctx, hospitalID, winner)
		}
		return nil, err
	}

	recordID, err := s.visits.CreateUnassigned(ctx, hospitalID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("open visit record: %w", err)
	}
	return &RegisterResult{Patient: p, RecordID: recordID, Revisit: false}, nil
}

func (s *Service) revisit(ctx context.Context, hospitalID uuid.UUID, p *Patient) (*RegisterResult, error) {
	if !p.RegisteredAt(hospitalID) {
		if err := s.repo.AddRegisteredHospital(ctx, p.ID, hospitalID); err != nil {
			return nil, err
		}
		p.RegisteredHospitals = append(p.RegisteredHospitals, hospitalID)
	}
	recordID, err := s.visits.CreateUnassigned(ctx, hospitalID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("open visit record: %w", err)
	}
	return &RegisterResult{Patient: p, RecordID: recordID, Revisit: true}, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByFaydaID(ctx context.Context, faydaID string) (*Patient, error) {
	return s.repo.GetByFaydaID(ctx, faydaID)
}

func (s *Service) ListPatients(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, hospitalID, limit, offset)
}

// SearchPatients requires at least three characters to keep the scan bounded.
func (s *Service) SearchPatients(ctx context.Context, hospitalID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error) {
	if len(query) < 3 {
		return nil, 0, fmt.Errorf("search query must be at least 3 characters")
	}
	return s.repo.Search(ctx, hospitalID, query, limit, offset)
}
