package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediconnet/api/internal/domain/centralhistory"
	"github.com/mediconnet/api/internal/domain/patient"
	"github.com/mediconnet/api/internal/domain/record"
)

type mockRecords struct {
	records map[uuid.UUID]*record.MedicalRecord
}

func (m *mockRecords) Create(ctx context.Context, r *record.MedicalRecord) error {
	r.ID = uuid.New()
	m.records[r.ID] = r
	return nil
}

func (m *mockRecords) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*record.MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok || r.HospitalID != hospitalID {
		return nil, record.ErrNotFound
	}
	return r, nil
}

func (m *mockRecords) GetAnyByID(ctx context.Context, id uuid.UUID) (*record.MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, record.ErrNotFound
	}
	return r, nil
}

func (m *mockRecords) ListByStatus(ctx context.Context, hospitalID uuid.UUID, status record.Status, limit, offset int) ([]*record.MedicalRecord, int, error) {
	return nil, 0, nil
}

func (m *mockRecords) ListByDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID, limit, offset int) ([]*record.MedicalRecord, int, error) {
	return nil, 0, nil
}

func (m *mockRecords) ListByPatient(ctx context.Context, hospitalID, patientID uuid.UUID, limit, offset int) ([]*record.MedicalRecord, int, error) {
	return nil, 0, nil
}

func (m *mockRecords) CompleteTriage(ctx context.Context, hospitalID, id uuid.UUID, vitals *record.Vitals, triage *record.TriageData, doctorID uuid.UUID) (*record.MedicalRecord, error) {
	return nil, record.ErrConflict
}

func (m *mockRecords) StartTreatment(ctx context.Context, hospitalID, id, doctorID uuid.UUID) (*record.MedicalRecord, error) {
	return nil, record.ErrConflict
}

func (m *mockRecords) UpdateNotes(ctx context.Context, hospitalID, id, doctorID uuid.UUID, notes *record.DoctorNotes, vitals *record.Vitals) (*record.MedicalRecord, error) {
	return nil, record.ErrConflict
}

func (m *mockRecords) Complete(ctx context.Context, hospitalID, id, doctorID uuid.UUID, completedAt time.Time) (*record.MedicalRecord, error) {
	return nil, record.ErrConflict
}

func (m *mockRecords) MarkSynced(ctx context.Context, id uuid.UUID) error {
	r, ok := m.records[id]
	if !ok {
		return record.ErrNotFound
	}
	r.Synced = true
	return nil
}

type mockRx struct {
	byRecord map[uuid.UUID][]*record.Prescription
}

func (m *mockRx) Create(ctx context.Context, p *record.Prescription) error { return nil }
func (m *mockRx) GetByID(ctx context.Context, id uuid.UUID) (*record.Prescription, error) {
	return nil, record.ErrNotFound
}
func (m *mockRx) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*record.Prescription, error) {
	return m.byRecord[recordID], nil
}
func (m *mockRx) ListByPatient(ctx context.Context, patientID uuid.UUID, unfilledOnly bool, since *time.Time) ([]*record.Prescription, error) {
	return nil, nil
}
func (m *mockRx) MarkFilled(ctx context.Context, id, pharmacistID uuid.UUID) (*record.Prescription, error) {
	return nil, record.ErrNotFound
}

type mockLabs struct {
	byRecord map[uuid.UUID][]*record.LabRequest
}

func (m *mockLabs) Create(ctx context.Context, l *record.LabRequest) error { return nil }
func (m *mockLabs) GetByID(ctx context.Context, id uuid.UUID) (*record.LabRequest, error) {
	return nil, record.ErrNotFound
}
func (m *mockLabs) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*record.LabRequest, error) {
	return m.byRecord[recordID], nil
}
func (m *mockLabs) ListByStatus(ctx context.Context, hospitalID uuid.UUID, status string, limit, offset int) ([]*record.LabRequest, int, error) {
	return nil, 0, nil
}
func (m *mockLabs) Start(ctx context.Context, id, technicianID uuid.UUID) (*record.LabRequest, error) {
	return nil, record.ErrNotFound
}
func (m *mockLabs) SubmitResults(ctx context.Context, id, technicianID uuid.UUID, results *record.LabResults) (*record.LabRequest, error) {
	return nil, record.ErrNotFound
}

type mockPatients struct {
	patients map[uuid.UUID]*patient.Patient
}

func (m *mockPatients) Create(ctx context.Context, p *patient.Patient) error { return nil }
func (m *mockPatients) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}
func (m *mockPatients) GetByFaydaID(ctx context.Context, faydaID string) (*patient.Patient, error) {
	return nil, patient.ErrNotFound
}
func (m *mockPatients) List(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}
func (m *mockPatients) Search(ctx context.Context, hospitalID uuid.UUID, query string, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}
func (m *mockPatients) AddRegisteredHospital(ctx context.Context, patientID, hospitalID uuid.UUID) error {
	return nil
}
func (m *mockPatients) Update(ctx context.Context, p *patient.Patient) error { return nil }

type mockCentralRepo struct {
	histories map[string]*centralhistory.PatientHistory
}

func (m *mockCentralRepo) Create(ctx context.Context, h *centralhistory.PatientHistory) error {
	if _, ok := m.histories[h.FaydaID]; ok {
		return centralhistory.ErrDuplicate
	}
	stored := *h
	m.histories[h.FaydaID] = &stored
	return nil
}

func (m *mockCentralRepo) GetByFaydaID(ctx context.Context, faydaID string) (*centralhistory.PatientHistory, error) {
	h, ok := m.histories[faydaID]
	if !ok {
		return nil, centralhistory.ErrNotFound
	}
	return h, nil
}

func (m *mockCentralRepo) AppendRecords(ctx context.Context, h *centralhistory.PatientHistory, entries []centralhistory.RecordEntry) error {
	stored, ok := m.histories[h.FaydaID]
	if !ok {
		return centralhistory.ErrNotFound
	}
	stored.Records = append(stored.Records, entries...)
	*h = *stored
	return nil
}

func (m *mockCentralRepo) List(ctx context.Context, faydaID, firstName string, limit, offset int) ([]*centralhistory.PatientHistory, int, error) {
	return nil, 0, nil
}

type engineEnv struct {
	engine  *Engine
	records *mockRecords
	rx      *mockRx
	labs    *mockLabs
	central *mockCentralRepo
}

func newEngineEnvWithVisit(t *testing.T) (*engineEnv, *record.MedicalRecord) {
	t.Helper()
	records := &mockRecords{records: make(map[uuid.UUID]*record.MedicalRecord)}
	rx := &mockRx{byRecord: make(map[uuid.UUID][]*record.Prescription)}
	labs := &mockLabs{byRecord: make(map[uuid.UUID][]*record.LabRequest)}
	patients := &mockPatients{patients: make(map[uuid.UUID]*patient.Patient)}
	central := &mockCentralRepo{histories: make(map[string]*centralhistory.PatientHistory)}

	env := &engineEnv{
		engine: NewEngine(records, rx, labs, patients,
			centralhistory.NewService(central), zerolog.Nop()),
		records: records, rx: rx, labs: labs, central: central,
	}

	dob := time.Date(1994, 3, 12, 0, 0, 0, 0, time.UTC)
	p := &patient.Patient{
		ID: uuid.New(), FaydaID: "F100",
		FirstName: "Hana", LastName: "Girma",
		DateOfBirth: &dob, Gender: "female",
	}
	patients.patients[p.ID] = p

	doctorID := uuid.New()
	completedAt := time.Now().UTC()
	rec := &record.MedicalRecord{
		HospitalID:    uuid.New(),
		PatientID:     p.ID,
		Status:        record.StatusCompleted,
		CurrentDoctor: &doctorID,
		Notes:         &record.DoctorNotes{Diagnosis: "malaria", TreatmentPlan: "antimalarials"},
		CompletedAt:   &completedAt,
	}
	if err := records.Create(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	return env, rec
}

func TestSyncRecord_DeliversAndMarksSynced(t *testing.T) {
	env, rec := newEngineEnvWithVisit(t)

	env.rx.byRecord[rec.ID] = []*record.Prescription{{
		RecordID: rec.ID,
		MedicineList: []record.Medicine{
			{MedicationName: "Coartem", Dosage: "80mg", Frequency: "2x daily", Duration: "3 days"},
			{MedicationName: "Paracetamol", Dosage: "1g", Frequency: "3x daily", Duration: "3 days"},
		},
	}}
	completedDate := time.Now().UTC()
	env.labs.byRecord[rec.ID] = []*record.LabRequest{{
		RecordID: rec.ID, TestType: "Blood film",
		Results: &record.LabResults{TestValue: "positive", CompletedDate: &completedDate},
	}}

	if err := env.engine.SyncRecord(context.Background(), rec.ID); err != nil {
		t.Fatalf("SyncRecord() error = %v", err)
	}

	if !rec.Synced {
		t.Error("record should be flagged synced")
	}
	h, ok := env.central.histories["F100"]
	if !ok {
		t.Fatal("central history should exist")
	}
	if len(h.Records) != 1 {
		t.Fatalf("central records = %d, want 1", len(h.Records))
	}
	entry := h.Records[0]
	if entry.HospitalID != rec.HospitalID.String() {
		t.Error("entry should carry the originating hospital")
	}
	if len(entry.Prescription) != 2 {
		t.Errorf("medication entries = %d, want 2 (flattened)", len(entry.Prescription))
	}
	if len(entry.LabResults) != 1 || entry.LabResults[0].TestName != "Blood film" || entry.LabResults[0].Result != "positive" {
		t.Errorf("lab results = %+v", entry.LabResults)
	}
}

func TestSyncRecord_Idempotent(t *testing.T) {
	env, rec := newEngineEnvWithVisit(t)

	if err := env.engine.SyncRecord(context.Background(), rec.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.engine.SyncRecord(context.Background(), rec.ID); err != nil {
		t.Fatal(err)
	}
	if len(env.central.histories["F100"].Records) != 1 {
		t.Error("re-syncing a synced record must not duplicate the entry")
	}
}

func TestSyncRecord_RejectsIncompleteRecord(t *testing.T) {
	env, rec := newEngineEnvWithVisit(t)
	rec.Status = record.StatusInTreatment

	if err := env.engine.SyncRecord(context.Background(), rec.ID); err == nil {
		t.Error("expected error for non-completed record")
	}
}

func TestSyncRecord_MissingRecord(t *testing.T) {
	env, _ := newEngineEnvWithVisit(t)

	err := env.engine.SyncRecord(context.Background(), uuid.New())
	if !errors.Is(err, record.ErrNotFound) {
		t.Errorf("error = %v, want wrapped record.ErrNotFound", err)
	}
}

func TestBuildEntry_LabDateFallbacks(t *testing.T) {
	rec := &record.MedicalRecord{HospitalID: uuid.New()}

	t.Run("results completed date wins", func(t *testing.T) {
		resultsDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		completionDate := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
		entry := BuildEntry(rec, nil, []*record.LabRequest{{
			TestType:       "CBC",
			Results:        &record.LabResults{TestValue: "5.0", CompletedDate: &resultsDate},
			CompletionDate: &completionDate,
		}})
		if !entry.LabResults[0].Date.Equal(resultsDate) {
			t.Errorf("date = %v, want results completed date", entry.LabResults[0].Date)
		}
	})

	t.Run("falls back to completion date", func(t *testing.T) {
		completionDate := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
		entry := BuildEntry(rec, nil, []*record.LabRequest{{
			TestType:       "CBC",
			Results:        &record.LabResults{TestValue: "5.0"},
			CompletionDate: &completionDate,
		}})
		if !entry.LabResults[0].Date.Equal(completionDate) {
			t.Errorf("date = %v, want completion date", entry.LabResults[0].Date)
		}
	})

	t.Run("unfinished lab gets empty result and current time", func(t *testing.T) {
		entry := BuildEntry(rec, nil, []*record.LabRequest{{TestType: "CBC"}})
		if entry.LabResults[0].Result != "" {
			t.Error("unfinished lab should report an empty result")
		}
		if entry.LabResults[0].Date.IsZero() {
			t.Error("date should default to now")
		}
	})
}
