package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DoctorAssigner maintains the assigned patient list on a doctor's profile.
// The staff repository implements it.
type DoctorAssigner interface {
	AssignPatient(ctx context.Context, hospitalID, doctorID, patientID uuid.UUID) error
	UnassignPatient(ctx context.Context, hospitalID, doctorID, patientID uuid.UUID) error
}

// Workflow errors. Handlers map each to its status code, and the two
// capitalized messages go to clients verbatim.
var (
	ErrNotAssignable   = errors.New("record is not awaiting triage")
	ErrNotStartable    = errors.New("record cannot start treatment")
	ErrNotCompletable  = errors.New("Record not found or unauthorized")
	ErrNotInTreatment  = errors.New("Medical record not found or not in treatment status")
	ErrNotesIncomplete = errors.New("diagnosis and treatment plan are required")
)

type Service struct {
	records  Repository
	rx       PrescriptionRepository
	labs     LabRequestRepository
	outbox   OutboxEnqueuer
	assigner DoctorAssigner
	log      zerolog.Logger
}

func NewService(records Repository, rx PrescriptionRepository, labs LabRequestRepository, outbox OutboxEnqueuer, assigner DoctorAssigner, log zerolog.Logger) *Service {
	return &Service{records: records, rx: rx, labs: labs, outbox: outbox, assigner: assigner, log: log}
}

// CreateUnassigned opens a fresh visit record in the triage queue. It backs
// the patient package's VisitCreator.
func (s *Service) CreateUnassigned(ctx context.Context, hospitalID, patientID uuid.UUID) (uuid.UUID, error) {
	rec := &MedicalRecord{
		HospitalID: hospitalID,
		PatientID:  patientID,
		Status:     StatusUnassigned,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return uuid.Nil, err
	}
	return rec.ID, nil
}

func (s *Service) GetRecord(ctx context.Context, hospitalID, id uuid.UUID) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, hospitalID, id)
}

func (s *Service) TriageQueue(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByStatus(ctx, hospitalID, StatusUnassigned, limit, offset)
}

func (s *Service) DoctorQueue(ctx context.Context, hospitalID, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByDoctor(ctx, hospitalID, doctorID, limit, offset)
}

func (s *Service) PatientRecords(ctx context.Context, hospitalID, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPatient(ctx, hospitalID, patientID, limit, offset)
}

type TriageInput struct {
	Vitals         *Vitals   `json:"vitals"`
	ChiefComplaint string    `json:"chiefComplaint"`
	Urgency        string    `json:"urgency"`
	Notes          string    `json:"notes"`
	DoctorID       uuid.UUID `json:"doctorId"`
}

// CompleteTriage records vitals and assessment and hands the record to the
// chosen doctor.
func (s *Service) CompleteTriage(ctx context.Context, hospitalID, recordID, triageStaffID uuid.UUID, in TriageInput) (*MedicalRecord, error) {
	if in.ChiefComplaint == "" {
		return nil, fmt.Errorf("chief complaint is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor assignment is required")
	}

	now := time.Now().UTC()
	triage := &TriageData{
		ChiefComplaint: in.ChiefComplaint,
		Urgency:        in.Urgency,
		Notes:          in.Notes,
		CompletedBy:    &triageStaffID,
		CompletedAt:    &now,
	}

	rec, err := s.records.CompleteTriage(ctx, hospitalID, recordID, in.Vitals, triage, in.DoctorID)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrNotAssignable
		}
		return nil, err
	}

	if err := s.assigner.AssignPatient(ctx, hospitalID, in.DoctorID, rec.PatientID); err != nil {
		s.log.Error().Err(err).
			Str("record_id", recordID.String()).
			Str("doctor_id", in.DoctorID.String()).
			Msg("failed to update doctor's assigned patient list")
	}
	return rec, nil
}

func (s *Service) StartTreatment(ctx context.Context, hospitalID, recordID, doctorID uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.records.StartTreatment(ctx, hospitalID, recordID, doctorID)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrNotStartable
		}
		return nil, err
	}
	return rec, nil
}

type NotesInput struct {
	Diagnosis     string  `json:"diagnosis"`
	TreatmentPlan string  `json:"treatmentPlan"`
	Vitals        *Vitals `json:"vitals"`
}

func (s *Service) UpdateNotes(ctx context.Context, hospitalID, recordID, doctorID uuid.UUID, in NotesInput) (*MedicalRecord, error) {
	if in.Diagnosis == "" || in.TreatmentPlan == "" {
		return nil, ErrNotesIncomplete
	}

	notes := &DoctorNotes{Diagnosis: in.Diagnosis, TreatmentPlan: in.TreatmentPlan}
	rec, err := s.records.UpdateNotes(ctx, hospitalID, recordID, doctorID, notes, in.Vitals)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrNotInTreatment
		}
		return nil, err
	}
	return rec, nil
}

// CompleteVisit writes the final diagnosis and treatment plan and closes the
// visit in one call, the way the doctor's record form submits it. The notes
// write enforces the InTreatment-and-current-doctor guard before the
// transition runs.
func (s *Service) CompleteVisit(ctx context.Context, hospitalID, recordID, doctorID uuid.UUID, in NotesInput) (*MedicalRecord, error) {
	if _, err := s.UpdateNotes(ctx, hospitalID, recordID, doctorID, in); err != nil {
		return nil, err
	}
	return s.Complete(ctx, hospitalID, recordID, doctorID)
}

// Complete closes the visit. The record must carry doctor notes; afterwards
// the visit is queued for delivery to the central history. A failed enqueue
// is logged but does not fail the completion, the delivery worker picks up
// stragglers.
func (s *Service) Complete(ctx context.Context, hospitalID, recordID, doctorID uuid.UUID) (*MedicalRecord, error) {
	current, err := s.records.GetByID(ctx, hospitalID, recordID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotCompletable
		}
		return nil, err
	}
	if current.Notes == nil || current.Notes.Diagnosis == "" || current.Notes.TreatmentPlan == "" {
		return nil, ErrNotesIncomplete
	}

	rec, err := s.records.Complete(ctx, hospitalID, recordID, doctorID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrNotCompletable
		}
		return nil, err
	}

	if err := s.assigner.UnassignPatient(ctx, hospitalID, doctorID, rec.PatientID); err != nil {
		s.log.Error().Err(err).
			Str("record_id", recordID.String()).
			Msg("failed to remove patient from doctor's assigned list")
	}
	if err := s.outbox.Enqueue(ctx, rec.ID); err != nil {
		s.log.Error().Err(err).
			Str("record_id", recordID.String()).
			Msg("failed to enqueue record for central sync")
	}
	return rec, nil
}

type PrescriptionInput struct {
	MedicineList []Medicine `json:"medicineList"`
}

func (s *Service) AddPrescription(ctx context.Context, hospitalID, recordID, doctorID uuid.UUID, in PrescriptionInput) (*Prescription, error) {
	if len(in.MedicineList) == 0 {
		return nil, fmt.Errorf("at least one medicine is required")
	}
	for i, m := range in.MedicineList {
		if m.MedicationName == "" || m.Dosage == "" || m.Frequency == "" || m.Duration == "" {
			return nil, fmt.Errorf("medicine %d: medicationName, dosage, frequency and duration are required", i+1)
		}
	}

	rec, err := s.inTreatmentRecord(ctx, hospitalID, recordID, doctorID)
	if err != nil {
		return nil, err
	}

	p := &Prescription{
		RecordID:     rec.ID,
		PatientID:    rec.PatientID,
		DoctorID:     doctorID,
		MedicineList: in.MedicineList,
	}
	if err := s.rx.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type LabRequestInput struct {
	TestType string `json:"testType"`
	Urgency  string `json:"urgency"`
}

func (s *Service) AddLabRequest(ctx context.Context, hospitalID, recordID, doctorID uuid.UUID, in LabRequestInput) (*LabRequest, error) {
	if in.TestType == "" {
		return nil, fmt.Errorf("testType is required")
	}

	rec, err := s.inTreatmentRecord(ctx, hospitalID, recordID, doctorID)
	if err != nil {
		return nil, err
	}

	l := &LabRequest{
		RecordID:  rec.ID,
		PatientID: rec.PatientID,
		DoctorID:  doctorID,
		TestType:  in.TestType,
		Urgency:   in.Urgency,
	}
	if err := s.labs.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// inTreatmentRecord loads the record and checks it is InTreatment and owned
// by the requesting doctor.
func (s *Service) inTreatmentRecord(ctx context.Context, hospitalID, recordID, doctorID uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.records.GetByID(ctx, hospitalID, recordID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotInTreatment
		}
		return nil, err
	}
	if rec.Status != StatusInTreatment || rec.CurrentDoctor == nil || *rec.CurrentDoctor != doctorID {
		return nil, ErrNotInTreatment
	}
	return rec, nil
}

// RecordDetail bundles a record with its prescriptions and lab requests.
type RecordDetail struct {
	Record        *MedicalRecord  `json:"record"`
	Prescriptions []*Prescription `json:"prescriptions"`
	LabRequests   []*LabRequest   `json:"labRequests"`
}

func (s *Service) GetRecordDetail(ctx context.Context, hospitalID, recordID uuid.UUID) (*RecordDetail, error) {
	rec, err := s.records.GetByID(ctx, hospitalID, recordID)
	if err != nil {
		return nil, err
	}
	prescriptions, err := s.rx.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	labs, err := s.labs.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return &RecordDetail{Record: rec, Prescriptions: prescriptions, LabRequests: labs}, nil
}
