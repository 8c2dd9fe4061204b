package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightops/admin-gateway/internal/api/middleware"
	"github.com/brightops/admin-gateway/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Session middleware and
// fast-fails before any service call. The Guard runs before every handler
// that calls this, so a missing principal means middleware wiring is broken
// rather than an ordinary unauthenticated request.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p, _ := c.Get(middleware.CtxPrincipal).(*domain.Principal)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return p, nil
}

// ctxSessionToken returns the raw gateway token for the current request.
func ctxSessionToken(c echo.Context) string {
	token, _ := c.Get(middleware.CtxSessionToken).(string)
	return token
}
