package record

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	triage := g.Group("/triage", auth.RequireRole(auth.RoleTriage))
	triage.GET("/records", h.TriageQueue)
	triage.PATCH("/records/:recordId/assessment", h.CompleteTriage)

	doctors := g.Group("/doctors", auth.RequireRole(auth.RoleDoctor))
	doctors.GET("/records", h.DoctorQueue)
	doctors.GET("/records/:recordId", h.GetRecordDetail)
	doctors.PATCH("/records/:recordId/start-treatment", h.StartTreatment)
	doctors.PUT("/records/:recordId", h.UpdateRecord)
	doctors.PATCH("/records/:recordId/complete", h.Complete)
	doctors.POST("/records/:recordId/prescriptions", h.AddPrescription)
	doctors.POST("/records/:recordId/lab-requests", h.AddLabRequest)
	doctors.GET("/patients/:patientId/records", h.PatientRecords)
}

func hospitalIDFrom(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(auth.HospitalIDFromContext(c.Request().Context()))
}

func staffIDFrom(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(auth.StaffIDFromContext(c.Request().Context()))
}

func recordIDParam(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("recordId"))
}

func (h *Handler) TriageQueue(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	params := pagination.FromContext(c)

	records, total, err := h.service.TriageQueue(c.Request().Context(), hospitalID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list triage queue")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, params))
}

func (h *Handler) CompleteTriage(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	staffID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	var in TriageInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.service.CompleteTriage(c.Request().Context(), hospitalID, recordID, staffID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Record not found")
		case errors.Is(err, ErrNotAssignable):
			return echo.NewHTTPError(http.StatusBadRequest, "Record is not awaiting triage")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Triage completed and doctor assigned",
		"record":  rec,
	})
}

func (h *Handler) DoctorQueue(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	doctorID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	params := pagination.FromContext(c)

	records, total, err := h.service.DoctorQueue(c.Request().Context(), hospitalID, doctorID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list assigned records")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, params))
}

func (h *Handler) GetRecordDetail(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	detail, err := h.service.GetRecordDetail(c.Request().Context(), hospitalID, recordID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load record")
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) StartTreatment(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	doctorID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	rec, err := h.service.StartTreatment(c.Request().Context(), hospitalID, recordID, doctorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Record not found")
		case errors.Is(err, ErrNotStartable):
			return echo.NewHTTPError(http.StatusBadRequest, "Record is not assigned to you or not ready for treatment")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to start treatment")
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Treatment started",
		"record":  rec,
	})
}

// UpdateRecord is the doctor's final submission: it saves the diagnosis and
// treatment plan and closes the visit, which queues it for central delivery.
func (h *Handler) UpdateRecord(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	doctorID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	var in NotesInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.service.CompleteVisit(c.Request().Context(), hospitalID, recordID, doctorID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotesIncomplete):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotInTreatment):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotCompletable), errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Record not found or unauthorized")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update record")
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Medical record updated successfully",
		"record":  rec,
	})
}

func (h *Handler) Complete(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	doctorID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	rec, err := h.service.Complete(c.Request().Context(), hospitalID, recordID, doctorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotesIncomplete):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotCompletable), errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Record not found or unauthorized")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to complete record")
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Record completed",
		"record":  rec,
	})
}

func (h *Handler) AddPrescription(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	doctorID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	var in PrescriptionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.service.AddPrescription(c.Request().Context(), hospitalID, recordID, doctorID, in)
	if err != nil {
		if errors.Is(err, ErrNotInTreatment) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) AddLabRequest(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	doctorID, err := staffIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "staff identity required")
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	var in LabRequestInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	l, err := h.service.AddLabRequest(c.Request().Context(), hospitalID, recordID, doctorID, in)
	if err != nil {
		if errors.Is(err, ErrNotInTreatment) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) PatientRecords(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	params := pagination.FromContext(c)

	records, total, err := h.service.PatientRecords(c.Request().Context(), hospitalID, patientID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list patient records")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, params))
}
