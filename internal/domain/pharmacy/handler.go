package pharmacy

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mediconnet/api/internal/domain/patient"
	"github.com/mediconnet/api/internal/domain/record"
	"github.com/mediconnet/api/internal/platform/auth"
	"github.com/mediconnet/api/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	pharmacists := g.Group("/pharmacy", auth.RequireRole(auth.RolePharmacist))
	pharmacists.GET("/patients/search", h.SearchPatients)
	pharmacists.GET("/patients/:patientId/prescriptions", h.PatientPrescriptions)
	pharmacists.PATCH("/prescriptions/:prescriptionId/fill", h.FillPrescription)

	lab := g.Group("/lab", auth.RequireRole(auth.RoleLabTechnician))
	lab.GET("/requests/pending", h.PendingLabRequests)
	lab.GET("/requests/in-progress", h.InProgressLabRequests)
	lab.PATCH("/requests/:requestId/start", h.StartLabRequest)
	lab.PATCH("/requests/:requestId/results", h.SubmitLabResults)
}

func hospitalIDFrom(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(auth.HospitalIDFromContext(c.Request().Context()))
}

func staffIDFrom(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(auth.StaffIDFromContext(c.Request().Context()))
}

func (h *Handler) SearchPatients(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	params := pagination.FromContext(c)

	patients, total, err := h.service.SearchPatients(c.Request().Context(), hospitalID, c.QueryParam("q"), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, params))
}

func (h *Handler) PatientPrescriptions(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	unfilledOnly := c.QueryParam("unfilled") == "true"
	var since *time.Time
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid since date, expected YYYY-MM-DD")
		}
		since = &parsed
	}

	prescriptions, err := h.service.PatientPrescriptions(c.Request().Context(), patientID, unfilledOnly, since)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prescriptions")
	}
	return c.JSON(http.StatusOK, prescriptions)
}

func (h *Handler) FillPrescription(c echo.Context) error {
	pharmacistID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	prescriptionID, err := uuid.Parse(c.Param("prescriptionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}

	p, err := h.service.FillPrescription(c.Request().Context(), prescriptionID, pharmacistID)
	if err != nil {
		switch {
		case errors.Is(err, record.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Prescription not found")
		case errors.Is(err, record.ErrConflict):
			return echo.NewHTTPError(http.StatusBadRequest, "Prescription is already filled")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to fill prescription")
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "Prescription filled",
		"prescription": p,
	})
}

func (h *Handler) PendingLabRequests(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	params := pagination.FromContext(c)

	requests, total, err := h.service.PendingLabRequests(c.Request().Context(), hospitalID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list lab requests")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, params))
}

func (h *Handler) InProgressLabRequests(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	params := pagination.FromContext(c)

	requests, total, err := h.service.InProgressLabRequests(c.Request().Context(), hospitalID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list lab requests")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, params))
}

func (h *Handler) StartLabRequest(c echo.Context) error {
	technicianID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lab request id")
	}

	l, err := h.service.StartLabRequest(c.Request().Context(), requestID, technicianID)
	if err != nil {
		switch {
		case errors.Is(err, record.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Lab request not found")
		case errors.Is(err, record.ErrConflict):
			return echo.NewHTTPError(http.StatusBadRequest, "Lab request is not pending")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to start lab request")
		}
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) SubmitLabResults(c echo.Context) error {
	technicianID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lab request id")
	}

	var in LabResultsInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	l, err := h.service.SubmitLabResults(c.Request().Context(), requestID, technicianID, in)
	if err != nil {
		switch {
		case errors.Is(err, record.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Lab request not found")
		case errors.Is(err, record.ErrConflict):
			return echo.NewHTTPError(http.StatusBadRequest, "Lab request is not in progress")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Lab results submitted",
		"request": l,
	})
}
