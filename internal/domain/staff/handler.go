package staff

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
	admin := g.Group("/staff", auth.RequireRole(auth.RoleHospitalAdmin))
	admin.POST("", h.Create)
	admin.GET("", h.List)
	admin.GET("/:id", h.GetByID)
	admin.DELETE("/:id", h.Delete)

	g.GET("/doctors", h.ListDoctors, auth.RequireRole(auth.RoleTriage, auth.RoleHospitalAdmin))
}

func hospitalIDFrom(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(auth.HospitalIDFromContext(c.Request().Context()))
}

func (h *Handler) Create(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}

	var in AddStaffInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	member, err := h.service.AddStaff(c.Request().Context(), hospitalID, in)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *Handler) List(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	params := pagination.FromContext(c)

	members, total, err := h.service.ListStaff(c.Request().Context(), hospitalID, c.QueryParam("role"), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(members, total, params))
}

func (h *Handler) GetByID(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid staff id")
	}

	member, err := h.service.GetStaff(c.Request().Context(), hospitalID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Staff member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get staff member")
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) Delete(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid staff id")
	}

	if err := h.service.RemoveStaff(c.Request().Context(), hospitalID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Staff member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete staff member")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	hospitalID, err := hospitalIDFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "hospital context required")
	}
	params := pagination.FromContext(c)

	doctors, total, err := h.service.ListDoctors(c.Request().Context(), hospitalID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list doctors")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, params))
}
