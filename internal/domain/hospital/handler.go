package hospital

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

// RegisterRoutes mounts hospital administration endpoints. All of them are
// restricted to system administrators.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	admin := g.Group("/hospitals", auth.RequireRole(auth.RoleSystemAdmin))
	admin.POST("", h.Create)
	admin.GET("", h.List)
	admin.GET("/summary", h.GetSummary)
	admin.GET("/:id", h.GetByID)
}

func (h *Handler) Create(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	hospital, secretKey, err := h.service.Register(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrDuplicateLicense) {
			return echo.NewHTTPError(http.StatusConflict, "hospital with this license number already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// The raw secret key is shown only in this response.
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"hospital":   hospital,
		"secret_key": secretKey,
	})
}

func (h *Handler) List(c echo.Context) error {
	params := pagination.FromContext(c)

	hospitals, total, err := h.service.ListHospitals(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list hospitals")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(hospitals, total, params))
}

func (h *Handler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital id")
	}

	hospital, err := h.service.GetHospital(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Hospital not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get hospital")
	}
	return c.JSON(http.StatusOK, hospital)
}

func (h *Handler) GetSummary(c echo.Context) error {
	summary, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get hospital summary")
	}
	return c.JSON(http.StatusOK, summary)
}
