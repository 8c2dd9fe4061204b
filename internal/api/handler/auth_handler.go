package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightops/admin-gateway/internal/api/metrics"
	"github.com/brightops/admin-gateway/internal/api/middleware"
	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

// maxProfileImageBytes caps the profile image forwarded to the upstream
// login endpoint.
const maxProfileImageBytes = 2 << 20

type AuthHandler struct {
	auth ports.AuthService
}

func NewAuthHandler(auth ports.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember" form:"remember"`
	DeviceID string `json:"device_id" form:"device_id"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	Principal *domain.Principal `json:"principal"`
}

// Login authenticates against the upstream API and mints a gateway session.
// The browser posts multipart form data (the profile image rides along as a
// file part); JSON bodies are accepted for non-browser clients.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	in := ports.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		Remember: req.Remember,
		DeviceID: req.DeviceID,
	}

	if img, name, err := profileImage(c); err == nil {
		in.ProfileImage = img
		in.ProfileImageName = name
	}

	token, principal, err := h.auth.Login(c.Request().Context(), in)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, loginResponse{Token: token, Principal: principal})
}

type logoutRequest struct {
	DeviceID       string `json:"device_id" form:"device_id"`
	KeepRemembered bool   `json:"keep_remembered" form:"keep_remembered"`
}

// Logout clears the session and expires the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token := ctxSessionToken(c)
	if err := h.auth.Logout(c.Request().Context(), token, req.DeviceID, req.KeepRemembered); err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return c.NoContent(http.StatusNoContent)
}

// Session returns the current principal, for the profile widget.
func (h *AuthHandler) Session(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"principal": principal})
}

// Remembered returns the username remembered for a device so the login form
// can pre-fill it. Public: it runs before any session exists.
func (h *AuthHandler) Remembered(c echo.Context) error {
	deviceID := c.QueryParam("device_id")
	if deviceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "device_id is required")
	}

	username, err := h.auth.RememberedUsername(c.Request().Context(), deviceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"username": username})
}

// profileImage extracts the optional multipart profile image.
func profileImage(c echo.Context) ([]byte, string, error) {
	if !strings.HasPrefix(c.Request().Header.Get("Content-Type"), "multipart/form-data") {
		return nil, "", echo.ErrUnsupportedMediaType
	}

	fh, err := c.FormFile("profile")
	if err != nil {
		return nil, "", err
	}
	if fh.Size > maxProfileImageBytes {
		return nil, "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "profile image too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxProfileImageBytes))
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}
