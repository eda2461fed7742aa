package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRole(c echo.Context, role string) {
	ctx := context.WithValue(c.Request().Context(), StaffRoleKey, role)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	contextWithRole(c, RoleDoctor)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	if err := RequireRole(RoleDoctor, RoleTriage)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	contextWithRole(c, RolePharmacist)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	err := RequireRole(RoleDoctor)(handler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_SystemAdminBypasses(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	contextWithRole(c, RoleSystemAdmin)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	if err := RequireRole(RoleDoctor)(handler)(c); err != nil {
		t.Fatalf("system admin should pass any role gate, got %v", err)
	}
}

func TestRequireRole_NoRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	err := RequireRole(RoleDoctor)(handler)(c)
	if err == nil {
		t.Fatal("expected error for request without a role")
	}
}
