package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/api/middleware"
	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/form"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

// stubClient fakes the upstream customer API for handler tests.
type stubClient struct {
	mu      sync.Mutex
	users   map[string]*domain.UserRecord
	creates int

	createErr error
	fetchErr  error
}

func newStubClient() *stubClient {
	return &stubClient{users: make(map[string]*domain.UserRecord)}
}

func (c *stubClient) Login(context.Context, ports.LoginInput) (*ports.LoginResult, error) {
	return nil, domain.ErrAuth
}

func (c *stubClient) ListUsers(_ context.Context, token string) ([]domain.UserRecord, error) {
	if token == "" {
		return nil, domain.ErrAuth
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.UserRecord, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, *u)
	}
	return out, nil
}

func (c *stubClient) FetchUser(_ context.Context, _, id string) (*domain.UserRecord, error) {
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (c *stubClient) CreateUser(_ context.Context, _ string, p ports.UserPayload) (*domain.UserRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates++
	if c.createErr != nil {
		return nil, c.createErr
	}
	u := &domain.UserRecord{
		ID:           "u-new",
		SerialNumber: p.SerialNumber,
		Username:     p.Username,
		Email:        p.Email,
		Designation:  p.Designation,
		Status:       p.Status,
		JoinDate:     time.Now().UTC(),
	}
	c.users[u.ID] = u
	return u, nil
}

func (c *stubClient) UpdateUser(_ context.Context, _, id string, p ports.UserPayload) (*domain.UserRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Username = p.Username
	u.Email = p.Email
	cp := *u
	return &cp, nil
}

func (c *stubClient) DeleteUser(_ context.Context, _, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(c.users, id)
	return nil
}

// noopActivity discards activity records.
type noopActivity struct{}

func (noopActivity) Record(context.Context, string, string, string, string, string) {}

func (noopActivity) Recent(context.Context, int) ([]domain.ActivityEntry, error) {
	return nil, nil
}

func newUserTestHarness(t *testing.T, client *stubClient) (*UserHandler, *form.Registry, *echo.Echo) {
	t.Helper()
	registry := form.NewRegistry(time.Minute, zerolog.Nop())
	h := NewUserHandler(client, registry, noopActivity{}, 10*time.Millisecond, 10*time.Millisecond, zerolog.Nop())
	e := echo.New()
	e.Validator = NewValidator()
	return h, registry, e
}

func newFormContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxPrincipal, salesPrincipal())
	return c, rec
}

func decodeFormState(t *testing.T, rec *httptest.ResponseRecorder) formStateResponse {
	t.Helper()
	var state formStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode form state: %v\nbody: %s", err, rec.Body.String())
	}
	return state
}

func TestUserHandler_List(t *testing.T) {
	client := newStubClient()
	client.users["u1"] = &domain.UserRecord{ID: "u1", Username: "alice", SerialNumber: 1}
	h, _, e := newUserTestHarness(t, client)

	c, rec := newFormContext(e, http.MethodGet, "/admin/users", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"alice"`) {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestUserHandler_CreateFormWorkflow(t *testing.T) {
	client := newStubClient()
	h, registry, e := newUserTestHarness(t, client)

	// Open the create form.
	c, rec := newFormContext(e, http.MethodPost, "/admin/users/forms", `{"mode":"create"}`)
	if err := h.OpenForm(c); err != nil {
		t.Fatalf("OpenForm: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	state := decodeFormState(t, rec)
	if state.FormID == "" || state.Phase != string(form.PhaseIdle) {
		t.Fatalf("unexpected initial state: %+v", state)
	}

	// Populate the fields.
	fields := `{"fields":{"serial_number":"7","username":"carol","email":"carol@example.com","designation":"engineer"}}`
	c, rec = newFormContext(e, http.MethodPut, "/admin/users/forms/"+state.FormID+"/fields", fields)
	c.SetParamNames("fid")
	c.SetParamValues(state.FormID)
	if err := h.SetFields(c); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	if got := decodeFormState(t, rec).Fields["username"]; got != "carol" {
		t.Fatalf("field not stored, got %q", got)
	}

	// Submit.
	c, rec = newFormContext(e, http.MethodPost, "/admin/users/forms/"+state.FormID+"/submit", "")
	c.SetParamNames("fid")
	c.SetParamValues(state.FormID)
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	final := decodeFormState(t, rec)
	if final.Phase != string(form.PhaseSucceeded) {
		t.Fatalf("expected succeeded, got %+v", final)
	}
	if client.creates != 1 {
		t.Fatalf("expected 1 upstream create, got %d", client.creates)
	}
	if len(final.Notices) != 1 || final.Notices[0].Message != "user saved" {
		t.Fatalf("expected saved notice, got %v", final.Notices)
	}

	registry.Close(state.FormID)
}

func TestUserHandler_SubmitValidationFailure(t *testing.T) {
	client := newStubClient()
	h, registry, e := newUserTestHarness(t, client)

	c, rec := newFormContext(e, http.MethodPost, "/admin/users/forms", `{"mode":"create"}`)
	if err := h.OpenForm(c); err != nil {
		t.Fatalf("OpenForm: %v", err)
	}
	state := decodeFormState(t, rec)

	// Submit with everything empty: the failed state comes back as 200,
	// not as an HTTP error.
	c, rec = newFormContext(e, http.MethodPost, "/admin/users/forms/"+state.FormID+"/submit", "")
	c.SetParamNames("fid")
	c.SetParamValues(state.FormID)
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	failed := decodeFormState(t, rec)
	if failed.Phase != string(form.PhaseFailed) {
		t.Fatalf("expected failed phase, got %+v", failed)
	}
	if client.creates != 0 {
		t.Fatalf("validation failure must not reach upstream, got %d creates", client.creates)
	}

	registry.Close(state.FormID)
}

func TestUserHandler_SubmitConflict(t *testing.T) {
	client := newStubClient()
	client.createErr = domain.ErrConflict
	h, registry, e := newUserTestHarness(t, client)

	c, rec := newFormContext(e, http.MethodPost, "/admin/users/forms", `{"mode":"create"}`)
	if err := h.OpenForm(c); err != nil {
		t.Fatalf("OpenForm: %v", err)
	}
	state := decodeFormState(t, rec)

	fields := `{"fields":{"serial_number":"7","username":"carol","email":"carol@example.com","designation":"engineer"}}`
	c, _ = newFormContext(e, http.MethodPut, "/x", fields)
	c.SetParamNames("fid")
	c.SetParamValues(state.FormID)
	if err := h.SetFields(c); err != nil {
		t.Fatalf("SetFields: %v", err)
	}

	c, rec = newFormContext(e, http.MethodPost, "/x", "")
	c.SetParamNames("fid")
	c.SetParamValues(state.FormID)
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	failed := decodeFormState(t, rec)
	if failed.Phase != string(form.PhaseFailed) {
		t.Fatalf("expected failed phase, got %+v", failed)
	}
	if len(failed.Notices) != 1 || failed.Notices[0].Message != "user already exists" {
		t.Fatalf("expected conflict notice, got %v", failed.Notices)
	}
	// Fields survive so the user can correct and resubmit.
	if failed.Fields["username"] != "carol" {
		t.Fatalf("fields lost after conflict: %v", failed.Fields)
	}

	registry.Close(state.FormID)
}

func TestUserHandler_EditMissingRecord(t *testing.T) {
	client := newStubClient()
	h, registry, e := newUserTestHarness(t, client)

	c, rec := newFormContext(e, http.MethodPost, "/admin/users/forms", `{"mode":"edit","id":"ghost"}`)
	if err := h.OpenForm(c); err != nil {
		t.Fatalf("OpenForm with missing record should not fail the request: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	state := decodeFormState(t, rec)
	if state.Phase != string(form.PhaseFailed) {
		t.Fatalf("expected failed phase, got %+v", state)
	}
	if len(state.Notices) != 1 || state.Notices[0].Message != "user not found" {
		t.Fatalf("expected not-found notice, got %v", state.Notices)
	}

	registry.Close(state.FormID)
}

func TestUserHandler_EditModeRequiresID(t *testing.T) {
	h, _, e := newUserTestHarness(t, newStubClient())

	c, _ := newFormContext(e, http.MethodPost, "/admin/users/forms", `{"mode":"edit"}`)
	err := h.OpenForm(c)
	var he *echo.HTTPError
	if !isHTTPError(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_FormStateUnknownID(t *testing.T) {
	h, _, e := newUserTestHarness(t, newStubClient())

	c, _ := newFormContext(e, http.MethodGet, "/x", "")
	c.SetParamNames("fid")
	c.SetParamValues("FRM-NOPE")

	if err := h.FormState(c); !errors.Is(err, domain.ErrFormExpired) {
		t.Fatalf("expected ErrFormExpired, got %v", err)
	}
}

func TestUserHandler_CloseForm(t *testing.T) {
	client := newStubClient()
	h, registry, e := newUserTestHarness(t, client)

	c, rec := newFormContext(e, http.MethodPost, "/admin/users/forms", `{"mode":"create"}`)
	if err := h.OpenForm(c); err != nil {
		t.Fatalf("OpenForm: %v", err)
	}
	state := decodeFormState(t, rec)

	c, rec = newFormContext(e, http.MethodDelete, "/x", "")
	c.SetParamNames("fid")
	c.SetParamValues(state.FormID)
	if err := h.CloseForm(c); err != nil {
		t.Fatalf("CloseForm: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if registry.Count() != 0 {
		t.Fatalf("form still tracked after close")
	}
}

func TestUserHandler_Delete(t *testing.T) {
	client := newStubClient()
	client.users["u1"] = &domain.UserRecord{ID: "u1", Username: "alice"}
	h, _, e := newUserTestHarness(t, client)

	c, rec := newFormContext(e, http.MethodDelete, "/x", "")
	c.SetParamNames("id")
	c.SetParamValues("u1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(client.users) != 0 {
		t.Fatalf("user not deleted upstream")
	}

	// Deleting an unknown user surfaces the upstream error.
	c, _ = newFormContext(e, http.MethodDelete, "/x", "")
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	if err := h.Delete(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
