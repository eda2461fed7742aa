package record

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a medical record within one visit.
type Status string

const (
	StatusUnassigned  Status = "Unassigned"
	StatusAssigned    Status = "Assigned"
	StatusInTreatment Status = "InTreatment"
	StatusCompleted   Status = "Completed"
)

// Vitals captured at triage. Pointers distinguish "not measured" from zero.
type Vitals struct {
	BloodPressure    string   `json:"bloodPressure,omitempty"`
	HeartRate        *int     `json:"heartRate,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	RespiratoryRate  *int     `json:"respiratoryRate,omitempty"`
	OxygenSaturation *int     `json:"oxygenSaturation,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	Height           *float64 `json:"height,omitempty"`
}

type TriageData struct {
	ChiefComplaint string     `json:"chiefComplaint"`
	Urgency        string     `json:"urgency,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CompletedBy    *uuid.UUID `json:"completedBy,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

type DoctorNotes struct {
	Diagnosis     string `json:"diagnosis"`
	TreatmentPlan string `json:"treatmentPlan"`
}

type MedicalRecord struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	HospitalID     uuid.UUID    `db:"hospital_id" json:"hospitalId"`
	PatientID      uuid.UUID    `db:"patient_id" json:"patientId"`
	Status         Status       `db:"status" json:"status"`
	CurrentDoctor  *uuid.UUID   `db:"current_doctor" json:"currentDoctor,omitempty"`
	Vitals         *Vitals      `db:"vitals" json:"vitals,omitempty"`
	Triage         *TriageData  `db:"triage_data" json:"triage,omitempty"`
	Notes          *DoctorNotes `db:"doctor_notes" json:"doctorNotes,omitempty"`
	Synced         bool         `db:"synced" json:"synced"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updatedAt"`
	CompletedAt    *time.Time   `db:"completed_at" json:"completedAt,omitempty"`
}

// Medicine is one line of a prescription.
type Medicine struct {
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration"`
	Instructions   string `json:"instructions,omitempty"`
}

type Prescription struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	RecordID     uuid.UUID  `db:"record_id" json:"recordId"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patientId"`
	DoctorID     uuid.UUID  `db:"doctor_id" json:"doctorId"`
	MedicineList []Medicine `db:"medicine_list" json:"medicineList"`
	Filled       bool       `db:"filled" json:"filled"`
	FilledBy     *uuid.UUID `db:"filled_by" json:"filledBy,omitempty"`
	FilledAt     *time.Time `db:"filled_at" json:"filledAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// Lab request statuses.
const (
	LabPending    = "Pending"
	LabInProgress = "In Progress"
	LabCompleted  = "Completed"
)

type LabResults struct {
	TestValue     string     `json:"testValue,omitempty"`
	ReferenceRange string    `json:"referenceRange,omitempty"`
	Interpretation string    `json:"interpretation,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
}

type LabRequest struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	RecordID       uuid.UUID   `db:"record_id" json:"recordId"`
	PatientID      uuid.UUID   `db:"patient_id" json:"patientId"`
	DoctorID       uuid.UUID   `db:"doctor_id" json:"doctorId"`
	TestType       string      `db:"test_type" json:"testType"`
	Urgency        string      `db:"urgency" json:"urgency"`
	Status         string      `db:"status" json:"status"`
	Results        *LabResults `db:"results" json:"results,omitempty"`
	TechnicianID   *uuid.UUID  `db:"technician_id" json:"technicianId,omitempty"`
	CompletionDate *time.Time  `db:"completion_date" json:"completionDate,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
}
