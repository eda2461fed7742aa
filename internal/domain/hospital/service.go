package hospital

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput carries the fields a system administrator submits when
// onboarding a hospital.
type RegisterInput struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	ContactNumber string `json:"contact_number"`
	HospitalType  string `json:"hospital_type"`
	LicenseNumber string `json:"license_number"`
	LicenseImage  string `json:"license_image"`
	IsInOurSystem bool   `json:"is_in_our_system"`
}

// Register creates a hospital and generates its secret key. The raw key is
// returned exactly once; afterwards it is only ever compared, never shown.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Hospital, string, error) {
	if in.Name == "" || in.Location == "" || in.ContactNumber == "" {
		return nil, "", fmt.Errorf("name, location and contact number are required")
	}
	if in.LicenseNumber == "" {
		return nil, "", fmt.Errorf("license number is required")
	}
	if in.HospitalType != "" && !ValidType(in.HospitalType) {
		return nil, "", fmt.Errorf("invalid hospital type: %s", in.HospitalType)
	}

	if _, err := s.repo.GetByLicenseNumber(ctx, in.LicenseNumber); err == nil {
		return nil, "", ErrDuplicateLicense
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	secretKey, err := generateSecretKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate secret key: %w", err)
	}

	h := &Hospital{
		Name:          in.Name,
		Location:      in.Location,
		ContactNumber: in.ContactNumber,
		HospitalType:  in.HospitalType,
		LicenseNumber: in.LicenseNumber,
		LicenseImage:  in.LicenseImage,
		SecretKey:     secretKey,
		IsInOurSystem: in.IsInOurSystem,
		Status:        "Active",
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, "", err
	}
	return h, secretKey, nil
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListHospitals(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	return s.repo.Summary(ctx)
}

// generateSecretKey produces a 32-byte cryptographically random key, hex encoded.
func generateSecretKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
