package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the local demographic record for a person at the hospitals this
// deployment serves. The FaydaID is the national identifier and the join key
// into the central history.
type Patient struct {
	ID                  uuid.UUID         `db:"id" json:"id"`
	FaydaID             string            `db:"fayda_id" json:"faydaID"`
	FirstName           string            `db:"first_name" json:"firstName"`
	LastName            string            `db:"last_name" json:"lastName"`
	DateOfBirth         *time.Time        `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender              string            `db:"gender" json:"gender,omitempty"`
	BloodGroup          *string           `db:"blood_group" json:"bloodGroup,omitempty"`
	ContactNumber       string            `db:"contact_number" json:"contactNumber,omitempty"`
	Address             string            `db:"address" json:"address,omitempty"`
	EmergencyContact    *EmergencyContact `db:"emergency_contact" json:"emergencyContact,omitempty"`
	Allergies           []string          `db:"allergies" json:"allergies"`
	RegisteredHospitals []uuid.UUID       `db:"registered_hospitals" json:"registeredHospitals"`
	CreatedAt           time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updatedAt"`
}

type EmergencyContact struct {
	Name          string `json:"name"`
	Relationship  string `json:"relationship,omitempty"`
	ContactNumber string `json:"contactNumber"`
}

// RegisteredAt reports whether the patient has visited the given hospital
// before.
func (p *Patient) RegisteredAt(hospitalID uuid.UUID) bool {
	for _, id := range p.RegisteredHospitals {
		if id == hospitalID {
			return true
		}
	}
	return false
}
