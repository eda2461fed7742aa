package centralhistory

import (
	"time"

	"github.com/google/uuid"
)

// PatientHistory is the central, cross-hospital view of one person keyed by
// national Fayda ID. The visit entries live in a single JSONB array so that
// concurrent hospitals can append without read-modify-write races.
type PatientHistory struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	FaydaID     string        `db:"fayda_id" json:"faydaID"`
	FirstName   string        `db:"first_name" json:"firstName"`
	LastName    string        `db:"last_name" json:"lastName"`
	DateOfBirth *time.Time    `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender      string        `db:"gender" json:"gender,omitempty"`
	BloodGroup  *string       `db:"blood_group" json:"bloodGroup,omitempty"`
	Records     []RecordEntry `db:"records" json:"records"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// RecordEntry is one visit as delivered by a hospital. Prescriptions arrive
// flattened to medication lines and lab work to name/result pairs.
type RecordEntry struct {
	HospitalID   string            `json:"hospitalID"`
	DoctorNotes  DoctorNotes       `json:"doctorNotes"`
	Prescription []MedicationEntry `json:"prescription,omitempty"`
	LabResults   []LabResult       `json:"labResults,omitempty"`
	RecordedAt   time.Time         `json:"recordedAt"`
}

type DoctorNotes struct {
	Diagnosis     string `json:"diagnosis"`
	TreatmentPlan string `json:"treatmentPlan"`
}

type MedicationEntry struct {
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration"`
}

type LabResult struct {
	TestName string    `json:"testName"`
	Result   string    `json:"result"`
	Date     time.Time `json:"date"`
}
