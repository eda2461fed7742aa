package staff

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnet/api/internal/platform/auth"
)

// Staff is a hospital employee. The Role field selects which profile variant
// is populated; the inactive variant is always nil.
type Staff struct {
	ID         uuid.UUID `db:"id" json:"id"`
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Email      string    `db:"email" json:"email"`
	Role       string    `db:"role" json:"role"`

	// Exactly one of the following is non-nil, matching Role.
	Doctor  *DoctorProfile  `json:"doctor_profile,omitempty"`
	Contact *ContactProfile `json:"contact_profile,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DoctorProfile holds the fields specific to doctors, including the list of
// patients currently assigned to them.
type DoctorProfile struct {
	Specialization     string      `json:"specialization"`
	ContactNumber      string      `json:"contact_number"`
	Address            string      `json:"address,omitempty"`
	AssignedPatientIDs []uuid.UUID `json:"assigned_patient_ids"`
}

// ContactProfile covers every non-doctor role.
type ContactProfile struct {
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address,omitempty"`
}

var hospitalRoles = map[string]bool{
	auth.RoleDoctor:        true,
	auth.RoleTriage:        true,
	auth.RoleReceptionist:  true,
	auth.RolePharmacist:    true,
	auth.RoleLabTechnician: true,
	auth.RoleHospitalAdmin: true,
}

// ValidRole reports whether role is one a hospital admin may assign.
func ValidRole(role string) bool {
	return hospitalRoles[role]
}

// Validate checks that the populated profile variant matches the role.
func (s *Staff) Validate() error {
	if !ValidRole(s.Role) {
		return fmt.Errorf("invalid staff role: %s", s.Role)
	}
	if s.Role == auth.RoleDoctor {
		if s.Doctor == nil {
			return fmt.Errorf("doctor profile is required for role %s", s.Role)
		}
		if s.Contact != nil {
			return fmt.Errorf("contact profile is not allowed for role %s", s.Role)
		}
		if s.Doctor.Specialization == "" {
			return fmt.Errorf("specialization is required for doctors")
		}
		return nil
	}
	if s.Contact == nil {
		return fmt.Errorf("contact profile is required for role %s", s.Role)
	}
	if s.Doctor != nil {
		return fmt.Errorf("doctor profile is not allowed for role %s", s.Role)
	}
	return nil
}
