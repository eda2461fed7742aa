package patient

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
	patients := g.Group("/patients", auth.RequireRole(auth.RoleReceptionist, auth.RoleHospitalAdmin))
	patients.POST("", h.Register)
	patients.GET("", h.List)
	patients.GET("/search", h.Search)
	patients.GET("/:id", h.GetByID)
}

func hospitalIDFrom(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(auth.HospitalIDFromContext(c.Request().Context()))
}

// Register handles both first visits and revisits. A new patient yields 201,
// a returning one 200; both open a fresh unassigned record.
func (h *Handler) Register(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}

	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RegisterOrRevisit(c.Request().Context(), hospitalID, in)
	if err != nil {
		if errors.Is(err, ErrDuplicateFaydaID) {
			return echo.NewHTTPError(http.StatusBadRequest, "Fayda ID already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status := http.StatusCreated
	message := "Patient registered successfully"
	if result.Revisit {
		status = http.StatusOK
		message = "Patient revisit recorded successfully"
	}
	return c.JSON(status, map[string]interface{}{
		"message":  message,
		"patient":  result.Patient,
		"recordId": result.RecordID,
	})
}

func (h *Handler) List(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	params := pagination.FromContext(c)

	patients, total, err := h.service.ListPatients(c.Request().Context(), hospitalID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list patients")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, params))
}

func (h *Handler) Search(c echo.Context) error {
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

func (h *Handler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	p, err := h.service.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get patient")
	}
	return c.JSON(http.StatusOK, p)
}
