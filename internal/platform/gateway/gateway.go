// Package gateway authenticates inbound cross-hospital writes to the central
// patient history. Every request must present the contributing hospital's ID
// and its secret key; on success the resolved hospital rides on the request
// context for downstream handlers.
package gateway

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// APIKeyHeader carries the hospital's secret key.
	APIKeyHeader = "X-API-Key"
	// HospitalIDHeader carries the hospital's ID.
	HospitalIDHeader = "Hospitalid"
)

// ErrHospitalNotFound indicates the hospital ID does not exist in the registry.
var ErrHospitalNotFound = errors.New("hospital not found")

// Hospital is the slice of the registry record the gateway needs.
type Hospital struct {
	ID            uuid.UUID
	Name          string
	SecretKey     string
	IsInOurSystem bool
	Status        string
}

// HospitalLookup resolves a hospital (including its secret key) by ID.
type HospitalLookup interface {
	LookupHospital(ctx context.Context, id uuid.UUID) (*Hospital, error)
}

type hospitalCtxKey struct{}

// Middleware returns the ingress authentication middleware. Failure modes:
// 401 when either credential header is missing, 404 when the hospital is
// unknown, 403 when the secret key does not match.
func Middleware(lookup HospitalLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secretKey := c.Request().Header.Get(APIKeyHeader)
			hospitalID := c.Request().Header.Get(HospitalIDHeader)
			if secretKey == "" || hospitalID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "API key and hospital ID are required")
			}

			id, err := uuid.Parse(hospitalID)
			if err != nil {
				return echo.NewHTTPError(http.StatusNotFound, "Hospital not found")
			}

			hospital, err := lookup.LookupHospital(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, ErrHospitalNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, "Hospital not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error during authentication")
			}

			if subtle.ConstantTimeCompare([]byte(secretKey), []byte(hospital.SecretKey)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "Invalid API key or hospital not approved")
			}

			ctx := context.WithValue(c.Request().Context(), hospitalCtxKey{}, hospital)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// HospitalFromContext returns the hospital resolved by Middleware, or nil when
// the request did not pass through the gateway.
func HospitalFromContext(ctx context.Context) *Hospital {
	h, _ := ctx.Value(hospitalCtxKey{}).(*Hospital)
	return h
}
