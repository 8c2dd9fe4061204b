package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/brightops/admin-gateway/internal/api/middleware"
	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

type stubAuthService struct {
	loginFn      func(ctx context.Context, req ports.LoginRequest) (string, *domain.Principal, error)
	logoutFn     func(ctx context.Context, token, deviceID string, keepRemembered bool) error
	rememberedFn func(ctx context.Context, deviceID string) (string, error)
}

func (s *stubAuthService) Login(ctx context.Context, req ports.LoginRequest) (string, *domain.Principal, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) VerifySession(context.Context, string) (*domain.Principal, error) {
	return nil, nil
}

func (s *stubAuthService) Logout(ctx context.Context, token, deviceID string, keepRemembered bool) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, token, deviceID, keepRemembered)
	}
	return nil
}

func (s *stubAuthService) RememberedUsername(ctx context.Context, deviceID string) (string, error) {
	if s.rememberedFn != nil {
		return s.rememberedFn(ctx, deviceID)
	}
	return "", nil
}

func salesPrincipal() *domain.Principal {
	return &domain.Principal{ID: "u1", Username: "alice", Role: domain.RoleSales, Token: "upstream-token"}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	auth := &stubAuthService{
		loginFn: func(_ context.Context, req ports.LoginRequest) (string, *domain.Principal, error) {
			if req.Username != "alice" || req.Password != "secret" {
				t.Errorf("unexpected credentials: %+v", req)
			}
			return "gateway-token", salesPrincipal(), nil
		},
	}
	h := NewAuthHandler(auth)

	e := echo.New()
	body := `{"username":"alice","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Token     string            `json:"token"`
		Principal *domain.Principal `json:"principal"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "gateway-token" || resp.Principal.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	cookie := findCookie(t, rec, middleware.SessionCookie)
	if cookie.Value != "gateway-token" || !cookie.HttpOnly {
		t.Fatalf("session cookie not set correctly: %+v", cookie)
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	auth := &stubAuthService{
		loginFn: func(context.Context, ports.LoginRequest) (string, *domain.Principal, error) {
			return "", nil, domain.ErrAuth
		},
	}
	h := NewAuthHandler(auth)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != domain.ErrAuth {
		t.Fatalf("expected ErrAuth to propagate to the error handler, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var gotToken, gotDevice string
	var gotKeep bool
	auth := &stubAuthService{
		logoutFn: func(_ context.Context, token, deviceID string, keep bool) error {
			gotToken, gotDevice, gotKeep = token, deviceID, keep
			return nil
		},
	}
	h := NewAuthHandler(auth)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/logout", strings.NewReader(`{"device_id":"device-1","keep_remembered":true}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxSessionToken, "gateway-token")

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotToken != "gateway-token" || gotDevice != "device-1" || !gotKeep {
		t.Fatalf("logout args: token=%q device=%q keep=%v", gotToken, gotDevice, gotKeep)
	}

	cookie := findCookie(t, rec, middleware.SessionCookie)
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Fatalf("session cookie not expired: %+v", cookie)
	}
}

func TestAuthHandler_Session(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxPrincipal, salesPrincipal())

	if err := h.Session(c); err != nil {
		t.Fatalf("Session: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"username":"alice"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_SessionWithoutPrincipal(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Session(c)
	var he *echo.HTTPError
	if !isHTTPError(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Remembered(t *testing.T) {
	auth := &stubAuthService{
		rememberedFn: func(_ context.Context, deviceID string) (string, error) {
			if deviceID != "device-1" {
				t.Errorf("deviceID = %q", deviceID)
			}
			return "alice", nil
		},
	}
	h := NewAuthHandler(auth)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/remembered?device_id=device-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Remembered(c); err != nil {
		t.Fatalf("Remembered: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"username":"alice"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	// Missing device_id is a client error.
	req = httptest.NewRequest(http.MethodGet, "/admin/remembered", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	err := h.Remembered(c)
	var he *echo.HTTPError
	if !isHTTPError(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func isHTTPError(err error, target **echo.HTTPError) bool {
	he, ok := err.(*echo.HTTPError)
	if ok {
		*target = he
	}
	return ok
}
