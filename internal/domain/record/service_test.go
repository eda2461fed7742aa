package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRecordRepo struct {
	records map[uuid.UUID]*MedicalRecord
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*MedicalRecord)}
}

func (m *mockRecordRepo) Create(ctx context.Context, r *MedicalRecord) error {
	r.ID = uuid.New()
	if r.Status == "" {
		r.Status = StatusUnassigned
	}
	r.CreatedAt = time.Now()
	m.records[r.ID] = r
	return nil
}

func (m *mockRecordRepo) get(hospitalID, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok || r.HospitalID != hospitalID {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRecordRepo) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*MedicalRecord, error) {
	return m.get(hospitalID, id)
}

func (m *mockRecordRepo) GetAnyByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRecordRepo) ListByStatus(ctx context.Context, hospitalID uuid.UUID, status Status, limit, offset int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, r := range m.records {
		if r.HospitalID == hospitalID && r.Status == status {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *mockRecordRepo) ListByDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, r := range m.records {
		if r.HospitalID == hospitalID && r.CurrentDoctor != nil && *r.CurrentDoctor == doctorID &&
			(r.Status == StatusAssigned || r.Status == StatusInTreatment) {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *mockRecordRepo) ListByPatient(ctx context.Context, hospitalID, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, r := range m.records {
		if r.HospitalID == hospitalID && r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *mockRecordRepo) CompleteTriage(ctx context.Context, hospitalID, id uuid.UUID, vitals *Vitals, triage *TriageData, doctorID uuid.UUID) (*MedicalRecord, error) {
	r, err := m.get(hospitalID, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusUnassigned {
		return nil, ErrConflict
	}
	r.Status = StatusAssigned
	r.CurrentDoctor = &doctorID
	r.Vitals = vitals
	r.Triage = triage
	return r, nil
}

func (m *mockRecordRepo) StartTreatment(ctx context.Context, hospitalID, id, doctorID uuid.UUID) (*MedicalRecord, error) {
	r, err := m.get(hospitalID, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusAssigned || r.CurrentDoctor == nil || *r.CurrentDoctor != doctorID {
		return nil, ErrConflict
	}
	r.Status = StatusInTreatment
	return r, nil
}

func (m *mockRecordRepo) UpdateNotes(ctx context.Context, hospitalID, id, doctorID uuid.UUID, notes *DoctorNotes, vitals *Vitals) (*MedicalRecord, error) {
	r, err := m.get(hospitalID, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusInTreatment || r.CurrentDoctor == nil || *r.CurrentDoctor != doctorID {
		return nil, ErrConflict
	}
	r.Notes = notes
	if vitals != nil {
		r.Vitals = vitals
	}
	return r, nil
}

func (m *mockRecordRepo) Complete(ctx context.Context, hospitalID, id, doctorID uuid.UUID, completedAt time.Time) (*MedicalRecord, error) {
	r, err := m.get(hospitalID, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusInTreatment || r.CurrentDoctor == nil || *r.CurrentDoctor != doctorID {
		return nil, ErrConflict
	}
	r.Status = StatusCompleted
	r.CompletedAt = &completedAt
	return r, nil
}

func (m *mockRecordRepo) MarkSynced(ctx context.Context, id uuid.UUID) error {
	r, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	r.Synced = true
	return nil
}

type mockRxRepo struct {
	prescriptions map[uuid.UUID]*Prescription
}

func newMockRxRepo() *mockRxRepo {
	return &mockRxRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRxRepo) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRxRepo) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRxRepo) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Prescription, error) {
	var out []*Prescription
	for _, p := range m.prescriptions {
		if p.RecordID == recordID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRxRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, unfilledOnly bool, since *time.Time) ([]*Prescription, error) {
	var out []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID != patientID {
			continue
		}
		if unfilledOnly && p.Filled {
			continue
		}
		if since != nil && p.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRxRepo) MarkFilled(ctx context.Context, id, pharmacistID uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Filled {
		return nil, ErrConflict
	}
	now := time.Now()
	p.Filled = true
	p.FilledBy = &pharmacistID
	p.FilledAt = &now
	return p, nil
}

type mockLabRepo struct {
	requests map[uuid.UUID]*LabRequest
}

func newMockLabRepo() *mockLabRepo {
	return &mockLabRepo{requests: make(map[uuid.UUID]*LabRequest)}
}

func (m *mockLabRepo) Create(ctx context.Context, l *LabRequest) error {
	l.ID = uuid.New()
	if l.Status == "" {
		l.Status = LabPending
	}
	l.CreatedAt = time.Now()
	m.requests[l.ID] = l
	return nil
}

func (m *mockLabRepo) GetByID(ctx context.Context, id uuid.UUID) (*LabRequest, error) {
	l, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (m *mockLabRepo) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*LabRequest, error) {
	var out []*LabRequest
	for _, l := range m.requests {
		if l.RecordID == recordID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLabRepo) ListByStatus(ctx context.Context, hospitalID uuid.UUID, status string, limit, offset int) ([]*LabRequest, int, error) {
	var out []*LabRequest
	for _, l := range m.requests {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (m *mockLabRepo) Start(ctx context.Context, id, technicianID uuid.UUID) (*LabRequest, error) {
	l, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if l.Status != LabPending {
		return nil, ErrConflict
	}
	l.Status = LabInProgress
	l.TechnicianID = &technicianID
	return l, nil
}

func (m *mockLabRepo) SubmitResults(ctx context.Context, id, technicianID uuid.UUID, results *LabResults) (*LabRequest, error) {
	l, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if l.Status != LabInProgress {
		return nil, ErrConflict
	}
	now := time.Now()
	l.Status = LabCompleted
	l.Results = results
	l.TechnicianID = &technicianID
	l.CompletionDate = &now
	return l, nil
}

type mockOutbox struct {
	enqueued []uuid.UUID
	err      error
}

func (m *mockOutbox) Enqueue(ctx context.Context, recordID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, recordID)
	return nil
}

type mockAssigner struct {
	assigned   map[uuid.UUID][]uuid.UUID
	unassigned map[uuid.UUID][]uuid.UUID
}

func newMockAssigner() *mockAssigner {
	return &mockAssigner{
		assigned:   make(map[uuid.UUID][]uuid.UUID),
		unassigned: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockAssigner) AssignPatient(ctx context.Context, hospitalID, doctorID, patientID uuid.UUID) error {
	m.assigned[doctorID] = append(m.assigned[doctorID], patientID)
	return nil
}

func (m *mockAssigner) UnassignPatient(ctx context.Context, hospitalID, doctorID, patientID uuid.UUID) error {
	m.unassigned[doctorID] = append(m.unassigned[doctorID], patientID)
	return nil
}

type testEnv struct {
	svc      *Service
	records  *mockRecordRepo
	rx       *mockRxRepo
	labs     *mockLabRepo
	outbox   *mockOutbox
	assigner *mockAssigner
}

func newTestEnv() *testEnv {
	env := &testEnv{
		records:  newMockRecordRepo(),
		rx:       newMockRxRepo(),
		labs:     newMockLabRepo(),
		outbox:   &mockOutbox{},
		assigner: newMockAssigner(),
	}
	env.svc = NewService(env.records, env.rx, env.labs, env.outbox, env.assigner, zerolog.Nop())
	return env
}

func (e *testEnv) newVisit(t *testing.T, hospitalID uuid.UUID) uuid.UUID {
	t.Helper()
	id, err := e.svc.CreateUnassigned(context.Background(), hospitalID, uuid.New())
	if err != nil {
		t.Fatalf("CreateUnassigned() error = %v", err)
	}
	return id
}

func (e *testEnv) triage(t *testing.T, hospitalID, recordID, doctorID uuid.UUID) {
	t.Helper()
	_, err := e.svc.CompleteTriage(context.Background(), hospitalID, recordID, uuid.New(), TriageInput{
		ChiefComplaint: "fever",
		DoctorID:       doctorID,
	})
	if err != nil {
		t.Fatalf("CompleteTriage() error = %v", err)
	}
}

func (e *testEnv) startTreatment(t *testing.T, hospitalID, recordID, doctorID uuid.UUID) {
	t.Helper()
	if _, err := e.svc.StartTreatment(context.Background(), hospitalID, recordID, doctorID); err != nil {
		t.Fatalf("StartTreatment() error = %v", err)
	}
}

func (e *testEnv) addNotes(t *testing.T, hospitalID, recordID, doctorID uuid.UUID) {
	t.Helper()
	_, err := e.svc.UpdateNotes(context.Background(), hospitalID, recordID, doctorID, NotesInput{
		Diagnosis:     "malaria",
		TreatmentPlan: "antimalarials",
	})
	if err != nil {
		t.Fatalf("UpdateNotes() error = %v", err)
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()
	recordID := env.newVisit(t, hospitalID)

	env.triage(t, hospitalID, recordID, doctorID)
	rec, _ := env.records.GetByID(context.Background(), hospitalID, recordID)
	if rec.Status != StatusAssigned {
		t.Fatalf("after triage status = %s, want Assigned", rec.Status)
	}
	if len(env.assigner.assigned[doctorID]) != 1 {
		t.Error("doctor should have the patient assigned")
	}

	env.startTreatment(t, hospitalID, recordID, doctorID)
	env.addNotes(t, hospitalID, recordID, doctorID)

	completed, err := env.svc.Complete(context.Background(), hospitalID, recordID, doctorID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Errorf("status = %s, want Completed", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Error("completed_at should be stamped")
	}
	if len(env.outbox.enqueued) != 1 || env.outbox.enqueued[0] != recordID {
		t.Error("completed record should be enqueued for central sync")
	}
	if len(env.assigner.unassigned[doctorID]) != 1 {
		t.Error("patient should be removed from doctor's assigned list")
	}
}

func TestCompleteVisit_ClosesAndQueuesForSync(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()
	recordID := env.newVisit(t, hospitalID)
	env.triage(t, hospitalID, recordID, doctorID)
	env.startTreatment(t, hospitalID, recordID, doctorID)

	rec, err := env.svc.CompleteVisit(context.Background(), hospitalID, recordID, doctorID, NotesInput{
		Diagnosis:     "malaria",
		TreatmentPlan: "antimalarials",
	})
	if err != nil {
		t.Fatalf("CompleteVisit() error = %v", err)
	}
	if rec.Status != StatusCompleted {
		t.Errorf("status = %s, want Completed after the final submission", rec.Status)
	}
	if rec.Notes == nil || rec.Notes.Diagnosis != "malaria" {
		t.Error("submitted notes should be on the record")
	}
	if len(env.outbox.enqueued) != 1 || env.outbox.enqueued[0] != recordID {
		t.Error("final submission should enqueue the record for central sync")
	}
}

func TestCompleteVisit_Guards(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()
	notes := NotesInput{Diagnosis: "x", TreatmentPlan: "y"}

	t.Run("incomplete notes", func(t *testing.T) {
		recordID := env.newVisit(t, hospitalID)
		env.triage(t, hospitalID, recordID, doctorID)
		env.startTreatment(t, hospitalID, recordID, doctorID)

		_, err := env.svc.CompleteVisit(context.Background(), hospitalID, recordID, doctorID, NotesInput{Diagnosis: "x"})
		if !errors.Is(err, ErrNotesIncomplete) {
			t.Errorf("error = %v, want ErrNotesIncomplete", err)
		}
		rec, _ := env.records.GetByID(context.Background(), hospitalID, recordID)
		if rec.Status != StatusInTreatment {
			t.Errorf("status = %s, record must stay InTreatment", rec.Status)
		}
	})

	t.Run("not in treatment", func(t *testing.T) {
		recordID := env.newVisit(t, hospitalID)
		env.triage(t, hospitalID, recordID, doctorID)

		_, err := env.svc.CompleteVisit(context.Background(), hospitalID, recordID, doctorID, notes)
		if !errors.Is(err, ErrNotInTreatment) {
			t.Errorf("error = %v, want ErrNotInTreatment", err)
		}
	})

	t.Run("wrong doctor", func(t *testing.T) {
		recordID := env.newVisit(t, hospitalID)
		env.triage(t, hospitalID, recordID, doctorID)
		env.startTreatment(t, hospitalID, recordID, doctorID)

		_, err := env.svc.CompleteVisit(context.Background(), hospitalID, recordID, uuid.New(), notes)
		if !errors.Is(err, ErrNotInTreatment) {
			t.Errorf("error = %v, want ErrNotInTreatment", err)
		}
		if len(env.outbox.enqueued) != 0 {
			t.Error("rejected submission must not enqueue anything")
		}
	})
}

func TestCompleteTriage_Validation(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	recordID := env.newVisit(t, hospitalID)

	_, err := env.svc.CompleteTriage(context.Background(), hospitalID, recordID, uuid.New(), TriageInput{DoctorID: uuid.New()})
	if err == nil {
		t.Error("expected error for missing chief complaint")
	}
	_, err = env.svc.CompleteTriage(context.Background(), hospitalID, recordID, uuid.New(), TriageInput{ChiefComplaint: "fever"})
	if err == nil {
		t.Error("expected error for missing doctor")
	}
}

func TestCompleteTriage_AlreadyAssigned(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()
	recordID := env.newVisit(t, hospitalID)
	env.triage(t, hospitalID, recordID, doctorID)

	_, err := env.svc.CompleteTriage(context.Background(), hospitalID, recordID, uuid.New(), TriageInput{
		ChiefComplaint: "fever", DoctorID: uuid.New(),
	})
	if !errors.Is(err, ErrNotAssignable) {
		t.Errorf("error = %v, want ErrNotAssignable", err)
	}
}

func TestStartTreatment_Guards(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()

	t.Run("unassigned record", func(t *testing.T) {
		recordID := env.newVisit(t, hospitalID)
		_, err := env.svc.StartTreatment(context.Background(), hospitalID, recordID, doctorID)
		if !errors.Is(err, ErrNotStartable) {
			t.Errorf("error = %v, want ErrNotStartable", err)
		}
	})

	t.Run("wrong doctor", func(t *testing.T) {
		recordID := env.newVisit(t, hospitalID)
		env.triage(t, hospitalID, recordID, doctorID)
		_, err := env.svc.StartTreatment(context.Background(), hospitalID, recordID, uuid.New())
		if !errors.Is(err, ErrNotStartable) {
			t.Errorf("error = %v, want ErrNotStartable", err)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := env.svc.StartTreatment(context.Background(), hospitalID, uuid.New(), doctorID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateNotes_RequiresDiagnosisAndPlan(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()
	recordID := env.newVisit(t, hospitalID)
	env.triage(t, hospitalID, recordID, doctorID)
	env.startTreatment(t, hospitalID, recordID, doctorID)

	_, err := env.svc.UpdateNotes(context.Background(), hospitalID, recordID, doctorID, NotesInput{Diagnosis: "x"})
	if !errors.Is(err, ErrNotesIncomplete) {
		t.Errorf("error = %v, want ErrNotesIncomplete", err)
	}
	_, err = env.svc.UpdateNotes(context.Background(), hospitalID, recordID, doctorID, NotesInput{TreatmentPlan: "y"})
	if !errors.Is(err, ErrNotesIncomplete) {
		t.Errorf("error = %v, want ErrNotesIncomplete", err)
	}
}

func TestComplete_Guards(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()

	t.Run("without notes", func(t *testing.T) {
		recordID := env.newVisit(t, hospitalID)
		env.triage(t, hospitalID, recordID, doctorID)
		env.startTreatment(t, hospitalID, recordID, doctorID)

		_, err := env.svc.Complete(context.Background(), hospitalID, recordID, doctorID)
		if !errors.Is(err, ErrNotesIncomplete) {
			t.Errorf("error = %v, want ErrNotesIncomplete", err)
		}
	})

	t.Run("wrong doctor", func(t *testing.T) {
		recordID := env.newVisit(t, hospitalID)
		env.triage(t, hospitalID, recordID, doctorID)
		env.startTreatment(t, hospitalID, recordID, doctorID)
		env.addNotes(t, hospitalID, recordID, doctorID)

		_, err := env.svc.Complete(context.Background(), hospitalID, recordID, uuid.New())
		if !errors.Is(err, ErrNotCompletable) {
			t.Errorf("error = %v, want ErrNotCompletable", err)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := env.svc.Complete(context.Background(), hospitalID, uuid.New(), doctorID)
		if !errors.Is(err, ErrNotCompletable) {
			t.Errorf("error = %v, want ErrNotCompletable", err)
		}
	})
}

func TestComplete_OutboxFailureDoesNotFailCompletion(t *testing.T) {
	env := newTestEnv()
	env.outbox.err = errors.New("outbox down")
	hospitalID := uuid.New()
	doctorID := uuid.New()
	recordID := env.newVisit(t, hospitalID)
	env.triage(t, hospitalID, recordID, doctorID)
	env.startTreatment(t, hospitalID, recordID, doctorID)
	env.addNotes(t, hospitalID, recordID, doctorID)

	rec, err := env.svc.Complete(context.Background(), hospitalID, recordID, doctorID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if rec.Status != StatusCompleted {
		t.Errorf("status = %s, want Completed", rec.Status)
	}
}

func TestAddPrescription(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()
	recordID := env.newVisit(t, hospitalID)
	env.triage(t, hospitalID, recordID, doctorID)

	medicine := []Medicine{{MedicationName: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", Duration: "7 days"}}

	// Not yet in treatment.
	_, err := env.svc.AddPrescription(context.Background(), hospitalID, recordID, doctorID, PrescriptionInput{MedicineList: medicine})
	if !errors.Is(err, ErrNotInTreatment) {
		t.Errorf("error = %v, want ErrNotInTreatment", err)
	}

	env.startTreatment(t, hospitalID, recordID, doctorID)

	// Wrong doctor.
	_, err = env.svc.AddPrescription(context.Background(), hospitalID, recordID, uuid.New(), PrescriptionInput{MedicineList: medicine})
	if !errors.Is(err, ErrNotInTreatment) {
		t.Errorf("wrong doctor error = %v, want ErrNotInTreatment", err)
	}

	// Empty list.
	if _, err := env.svc.AddPrescription(context.Background(), hospitalID, recordID, doctorID, PrescriptionInput{}); err == nil {
		t.Error("expected error for empty medicine list")
	}

	// Incomplete medicine line.
	_, err = env.svc.AddPrescription(context.Background(), hospitalID, recordID, doctorID, PrescriptionInput{
		MedicineList: []Medicine{{MedicationName: "Amoxicillin"}},
	})
	if err == nil {
		t.Error("expected error for incomplete medicine")
	}

	p, err := env.svc.AddPrescription(context.Background(), hospitalID, recordID, doctorID, PrescriptionInput{MedicineList: medicine})
	if err != nil {
		t.Fatalf("AddPrescription() error = %v", err)
	}
	if p.Filled {
		t.Error("new prescription must start unfilled")
	}
	if p.RecordID != recordID {
		t.Error("prescription should reference its record")
	}
}

func TestAddLabRequest(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()
	recordID := env.newVisit(t, hospitalID)
	env.triage(t, hospitalID, recordID, doctorID)
	env.startTreatment(t, hospitalID, recordID, doctorID)

	if _, err := env.svc.AddLabRequest(context.Background(), hospitalID, recordID, doctorID, LabRequestInput{}); err == nil {
		t.Error("expected error for missing test type")
	}

	l, err := env.svc.AddLabRequest(context.Background(), hospitalID, recordID, doctorID, LabRequestInput{TestType: "CBC"})
	if err != nil {
		t.Fatalf("AddLabRequest() error = %v", err)
	}
	if l.Status != LabPending {
		t.Errorf("status = %s, want Pending", l.Status)
	}
}

func TestGetRecordDetail(t *testing.T) {
	env := newTestEnv()
	hospitalID := uuid.New()
	doctorID := uuid.New()
	recordID := env.newVisit(t, hospitalID)
	env.triage(t, hospitalID, recordID, doctorID)
	env.startTreatment(t, hospitalID, recordID, doctorID)

	medicine := []Medicine{{MedicationName: "Paracetamol", Dosage: "1g", Frequency: "2x daily", Duration: "3 days"}}
	if _, err := env.svc.AddPrescription(context.Background(), hospitalID, recordID, doctorID, PrescriptionInput{MedicineList: medicine}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.AddLabRequest(context.Background(), hospitalID, recordID, doctorID, LabRequestInput{TestType: "CBC"}); err != nil {
		t.Fatal(err)
	}

	detail, err := env.svc.GetRecordDetail(context.Background(), hospitalID, recordID)
	if err != nil {
		t.Fatalf("GetRecordDetail() error = %v", err)
	}
	if len(detail.Prescriptions) != 1 || len(detail.LabRequests) != 1 {
		t.Errorf("detail = %d prescriptions, %d labs; want 1 and 1",
			len(detail.Prescriptions), len(detail.LabRequests))
	}
}
