package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightops/admin-gateway/internal/api/metrics"
	"github.com/brightops/admin-gateway/internal/core/domain"
)

// PolicyTable maps echo route patterns (c.Path()) to their access policies.
// One table covers every guarded page; there are no per-page allow-lists
// scattered through handlers.
type PolicyTable map[string]domain.AccessPolicy

// Guard is the shared access guard for all guarded routes. Per request it
// resolves the principal injected by Session and checks it against the
// route's policy. Routes missing from the table are denied outright.
//
// Denied browser requests get a 303 to the login route so history-back
// cannot re-enter the page; API requests get a JSON 401/403. No handler
// output is produced before the decision, so denied requests never see a
// single byte of protected content.
//
// This check gates the gateway's own surface; the upstream API still
// enforces authorization on every proxied call.
func Guard(table PolicyTable, loginRoute string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, _ := c.Get(CtxPrincipal).(*domain.Principal)

			policy, known := table[c.Path()]
			if !known || principal == nil || !policy.Allows(principal.Role) {
				metrics.GuardDecisionsTotal.WithLabelValues("denied").Inc()
				return deny(c, loginRoute, principal)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}

func deny(c echo.Context, loginRoute string, principal *domain.Principal) error {
	if wantsHTML(c) {
		return c.Redirect(http.StatusSeeOther, loginRoute)
	}
	if principal == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return echo.NewHTTPError(http.StatusForbidden, "forbidden")
}

func wantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get("Accept"), "text/html")
}
