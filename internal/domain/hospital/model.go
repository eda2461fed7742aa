package hospital

import (
	"time"

	"github.com/google/uuid"
)

// Hospital maps to the hospital table. SecretKey is generated exactly once at
// registration and authenticates the hospital's writes to the central patient
// history; it is never serialized in list/detail responses.
type Hospital struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Location      string    `db:"location" json:"location"`
	ContactNumber string    `db:"contact_number" json:"contact_number"`
	HospitalType  string    `db:"hospital_type" json:"hospital_type"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	LicenseImage  string    `db:"license_image" json:"license_image,omitempty"`
	SecretKey     string    `db:"secret_key" json:"-"`
	IsInOurSystem bool      `db:"is_in_our_system" json:"is_in_our_system"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Hospital specialties.
var validHospitalTypes = map[string]bool{
	"General":        true,
	"Ophthalmology":  true,
	"Dental":         true,
	"Cardiac":        true,
	"Orthopedic":     true,
	"Maternity":      true,
	"Cancer":         true,
	"Children":       true,
	"Neurology":      true,
	"Psychiatric":    true,
	"Skin":           true,
	"ENT":            true,
	"Rehabilitation": true,
}

// ValidType reports whether t is a known hospital specialty.
func ValidType(t string) bool {
	return validHospitalTypes[t]
}

// Summary aggregates registry counts for the system-admin dashboard.
type Summary struct {
	Total    int            `json:"total"`
	Managed  int            `json:"managed"`
	External int            `json:"external"`
	ByType   map[string]int `json:"by_type"`
}
