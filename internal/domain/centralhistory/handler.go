package centralhistory

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mediconnet/api/internal/platform/gateway"
	"github.com/mediconnet/api/pkg/pagination"
)

// Handler serves the central registry endpoints. Callers are hospitals, not
// staff: the gateway middleware has already authenticated them by API key.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the registry endpoints. Only the write path demands
// the hospital API-key handshake; the read paths stay open to consuming
// hospitals.
func (h *Handler) RegisterRoutes(g *echo.Group, hospitalAuth echo.MiddlewareFunc) {
	g.POST("/records", h.UpsertRecords, hospitalAuth)
	g.GET("/records/:faydaID", h.GetHistory)
	g.GET("/patients", h.ListPatients)
}

func (h *Handler) UpsertRecords(c echo.Context) error {
	var in UpsertInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	// Stamp the entries with the sending hospital so a forged hospitalID
	// in the body cannot attribute a visit to someone else.
	if hospital := gateway.HospitalFromContext(c.Request().Context()); hospital != nil {
		for i := range in.Records {
			in.Records[i].HospitalID = hospital.ID.String()
		}
	}

	history, created, err := h.service.Upsert(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrMissingFields) || errors.Is(err, ErrRecordsRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.log.Error().Err(err).Str("fayda_id", in.FaydaID).Msg("central history upsert failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save patient history")
	}

	status := http.StatusOK
	message := "Patient history updated"
	if created {
		status = http.StatusCreated
		message = "Patient history created"
	}
	h.log.Info().
		Str("fayda_id", history.FaydaID).
		Int("records", len(history.Records)).
		Bool("created", created).
		Msg("central history upsert")

	return c.JSON(status, map[string]interface{}{
		"success": true,
		"message": message,
		"patient": history,
	})
}

func (h *Handler) GetHistory(c echo.Context) error {
	faydaID := strings.TrimSpace(c.Param("faydaID"))
	if faydaID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "faydaID is required")
	}

	view, err := h.service.GetHistory(c.Request().Context(), faydaID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load patient history")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Patient history retrieved",
		"patient": view,
	})
}

func (h *Handler) ListPatients(c echo.Context) error {
	params := pagination.FromContext(c)

	patients, total, err := h.service.ListPatients(c.Request().Context(),
		c.QueryParam("faydaID"), c.QueryParam("firstName"), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list patients")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, params))
}
