package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Staff roles. One discriminator shared by the token claims and the staff
// records; the system administrator passes every role gate.
const (
	RoleDoctor        = "doctor"
	RoleTriage        = "triage"
	RoleReceptionist  = "receptionist"
	RolePharmacist    = "pharmacist"
	RoleLabTechnician = "lab-technician"
	RoleHospitalAdmin = "hospital-admin"
	RoleSystemAdmin   = "system-admin"
)

// RequireRole returns middleware that allows the request through only when
// the authenticated staff member holds one of the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have := RoleFromContext(c.Request().Context())
			if have == RoleSystemAdmin {
				return next(c)
			}
			for _, required := range roles {
				if have == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
