package record

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("medical record not found")

	// ErrConflict means a guarded transition matched no row: the record is
	// in the wrong state or owned by another doctor.
	ErrConflict = errors.New("record state conflict")
)

type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*MedicalRecord, error)

	// GetAnyByID loads a record without scoping to a hospital. Reserved for
	// the sync worker, which drains completions across all hospitals.
	GetAnyByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	ListByStatus(ctx context.Context, hospitalID uuid.UUID, status Status, limit, offset int) ([]*MedicalRecord, int, error)
	ListByDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	ListByPatient(ctx context.Context, hospitalID, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)

	// The transitions below are conditional updates. Each returns
	// ErrConflict when the record exists but fails the state guard in the
	// WHERE clause, and ErrNotFound when it does not exist at all.

	// CompleteTriage moves Unassigned -> Assigned, storing vitals, triage
	// data and the chosen doctor.
	CompleteTriage(ctx context.Context, hospitalID, id uuid.UUID, vitals *Vitals, triage *TriageData, doctorID uuid.UUID) (*MedicalRecord, error)

	// StartTreatment moves Assigned -> InTreatment for the owning doctor.
	StartTreatment(ctx context.Context, hospitalID, id, doctorID uuid.UUID) (*MedicalRecord, error)

	// UpdateNotes stores diagnosis and treatment plan while InTreatment.
	UpdateNotes(ctx context.Context, hospitalID, id, doctorID uuid.UUID, notes *DoctorNotes, vitals *Vitals) (*MedicalRecord, error)

	// Complete moves InTreatment -> Completed for the owning doctor and
	// stamps completed_at.
	Complete(ctx context.Context, hospitalID, id, doctorID uuid.UUID, completedAt time.Time) (*MedicalRecord, error)

	MarkSynced(ctx context.Context, id uuid.UUID) error
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, unfilledOnly bool, since *time.Time) ([]*Prescription, error)
	MarkFilled(ctx context.Context, id, pharmacistID uuid.UUID) (*Prescription, error)
}

type LabRequestRepository interface {
	Create(ctx context.Context, l *LabRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabRequest, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*LabRequest, error)
	ListByStatus(ctx context.Context, hospitalID uuid.UUID, status string, limit, offset int) ([]*LabRequest, int, error)

	// Start moves Pending -> In Progress and records the technician.
	Start(ctx context.Context, id, technicianID uuid.UUID) (*LabRequest, error)

	// SubmitResults moves In Progress -> Completed with the results payload.
	SubmitResults(ctx context.Context, id, technicianID uuid.UUID, results *LabResults) (*LabRequest, error)
}

// OutboxEnqueuer queues a completed record for delivery to the central
// patient history. The sync package implements it.
type OutboxEnqueuer interface {
	Enqueue(ctx context.Context, recordID uuid.UUID) error
}
