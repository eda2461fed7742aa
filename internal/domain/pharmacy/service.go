package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnet/api/internal/domain/patient"
	"github.com/mediconnet/api/internal/domain/record"
)

// Service is the dispensing side of the house: pharmacists fill
// prescriptions, lab technicians work the test queue. It reads through the
// patient and record repositories rather than owning tables of its own.
type Service struct {
	patients patient.Repository
	rx       record.PrescriptionRepository
	labs     record.LabRequestRepository
}

func NewService(patients patient.Repository, rx record.PrescriptionRepository, labs record.LabRequestRepository) *Service {
	return &Service{patients: patients, rx: rx, labs: labs}
}

func (s *Service) SearchPatients(ctx context.Context, hospitalID uuid.UUID, query string, limit, offset int) ([]*patient.Patient, int, error) {
	if len(query) < 3 {
		return nil, 0, fmt.Errorf("search query must be at least 3 characters")
	}
	return s.patients.Search(ctx, hospitalID, query, limit, offset)
}

// PatientPrescriptions lists a patient's prescriptions, optionally only
// unfilled ones and optionally only those written since a given date.
func (s *Service) PatientPrescriptions(ctx context.Context, patientID uuid.UUID, unfilledOnly bool, since *time.Time) ([]*record.Prescription, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.rx.ListByPatient(ctx, patientID, unfilledOnly, since)
}

func (s *Service) FillPrescription(ctx context.Context, prescriptionID, pharmacistID uuid.UUID) (*record.Prescription, error) {
	return s.rx.MarkFilled(ctx, prescriptionID, pharmacistID)
}

func (s *Service) PendingLabRequests(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*record.LabRequest, int, error) {
	return s.labs.ListByStatus(ctx, hospitalID, record.LabPending, limit, offset)
}

func (s *Service) InProgressLabRequests(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*record.LabRequest, int, error) {
	return s.labs.ListByStatus(ctx, hospitalID, record.LabInProgress, limit, offset)
}

func (s *Service) StartLabRequest(ctx context.Context, requestID, technicianID uuid.UUID) (*record.LabRequest, error) {
	return s.labs.Start(ctx, requestID, technicianID)
}

type LabResultsInput struct {
	TestValue      string `json:"testValue"`
	ReferenceRange string `json:"referenceRange"`
	Interpretation string `json:"interpretation"`
	Notes          string `json:"notes"`
}

func (s *Service) SubmitLabResults(ctx context.Context, requestID, technicianID uuid.UUID, in LabResultsInput) (*record.LabRequest, error) {
	if in.TestValue == "" {
		return nil, fmt.Errorf("testValue is required")
	}
	now := time.Now().UTC()
	results := &record.LabResults{
		TestValue:      in.TestValue,
		ReferenceRange: in.ReferenceRange,
		Interpretation: in.Interpretation,
		Notes:          in.Notes,
		CompletedDate:  &now,
	}
	return s.labs.SubmitResults(ctx, requestID, technicianID, results)
}
