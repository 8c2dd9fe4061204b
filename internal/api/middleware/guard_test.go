package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

func guardTable() PolicyTable {
	return PolicyTable{
		"/admin/users": domain.NewAccessPolicy(
			domain.RoleCEO, domain.RoleSales, domain.RoleDeveloper,
		),
		"/admin/users/:id": domain.NewAccessPolicy(domain.RoleCEO, domain.RoleAdmin),
	}
}

func runGuard(t *testing.T, path, routePattern, role, accept string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(routePattern)
	if role != "" {
		c.Set(CtxPrincipal, &domain.Principal{Username: "test", Role: role, Token: "t"})
	}

	handler := Guard(guardTable(), "/admin/login")(func(c echo.Context) error {
		return c.String(http.StatusOK, "protected")
	})
	return rec, handler(c)
}

func TestGuard_AllowsListedRole(t *testing.T) {
	for _, role := range []string{domain.RoleCEO, domain.RoleSales, domain.RoleDeveloper} {
		rec, err := runGuard(t, "/admin/users", "/admin/users", role, "")
		if err != nil {
			t.Fatalf("role %s: unexpected error %v", role, err)
		}
		if rec.Code != http.StatusOK || rec.Body.String() != "protected" {
			t.Fatalf("role %s: expected handler output, got %d %q", role, rec.Code, rec.Body.String())
		}
	}
}

func TestGuard_DeniesUnlistedRole(t *testing.T) {
	for _, role := range []string{domain.RoleHR, domain.RoleGuest, domain.RoleAdmin} {
		rec, err := runGuard(t, "/admin/users", "/admin/users", role, "")

		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusForbidden {
			t.Fatalf("role %s: expected 403, got %v", role, err)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("role %s: denied request must not see handler output", role)
		}
	}
}

func TestGuard_DeniesMissingPrincipal(t *testing.T) {
	_, err := runGuard(t, "/admin/users", "/admin/users", "", "")

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous API request, got %v", err)
	}
}

func TestGuard_BrowserDenialRedirectsToLogin(t *testing.T) {
	rec, err := runGuard(t, "/admin/users", "/admin/users", domain.RoleGuest, "text/html,application/xhtml+xml")
	if err != nil {
		t.Fatalf("redirect denial should not error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/login" {
		t.Fatalf("expected redirect to /admin/login, got %q", loc)
	}
}

func TestGuard_UnlistedRouteDeniedByDefault(t *testing.T) {
	_, err := runGuard(t, "/admin/secrets", "/admin/secrets", domain.RoleCEO, "")

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("routes without a policy must be denied, got %v", err)
	}
}

func TestGuard_ParamRoutePolicy(t *testing.T) {
	rec, err := runGuard(t, "/admin/users/u1", "/admin/users/:id", domain.RoleAdmin, "")
	if err != nil {
		t.Fatalf("admin should reach user detail: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if _, err := runGuard(t, "/admin/users/u1", "/admin/users/:id", domain.RoleSales, ""); err == nil {
		t.Fatalf("sales must not reach user detail")
	}
}
