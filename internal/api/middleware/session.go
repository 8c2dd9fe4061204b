package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightops/admin-gateway/internal/core/ports"
)

// SessionCookie is the cookie the gateway sets at login as an alternative
// to the Authorization header.
const SessionCookie = "dash_session"

// Context keys populated by Session.
const (
	CtxPrincipal    = "principal"
	CtxSessionToken = "session_token"
)

// Session resolves the gateway session token (bearer header first, cookie
// fallback) and injects the principal into the request context. It never
// rejects by itself; denial is the Guard's job, so unauthenticated requests
// to public routes pass through untouched.
func Session(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := requestToken(c)
			if token == "" {
				return next(c)
			}

			p, err := auth.VerifySession(c.Request().Context(), token)
			if err == nil && p != nil {
				c.Set(CtxPrincipal, p)
				c.Set(CtxSessionToken, token)
			}
			return next(c)
		}
	}
}

func requestToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
