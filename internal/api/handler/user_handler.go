package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/api/metrics"
	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/form"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

const usersListRoute = "/admin/users"

// UserHandler serves the user management pages: the list, the delete action,
// and the create/edit form workflow driven through the form registry.
type UserHandler struct {
	client   ports.ResourceClient
	forms    *form.Registry
	activity ports.ActivityService
	navDelay time.Duration
	nfDelay  time.Duration
	log      zerolog.Logger
}

func NewUserHandler(
	client ports.ResourceClient,
	forms *form.Registry,
	activity ports.ActivityService,
	navDelay, nfDelay time.Duration,
	log zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		client:   client,
		forms:    forms,
		activity: activity,
		navDelay: navDelay,
		nfDelay:  nfDelay,
		log:      log,
	}
}

// --- Request / Response types ---

type userResponse struct {
	ID           string `json:"id"`
	SerialNumber int    `json:"serial_number"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Designation  string `json:"designation"`
	Status       string `json:"status"`
	JoinDate     string `json:"join_date"`
}

type openFormRequest struct {
	Mode string `json:"mode" validate:"required,oneof=create edit"`
	ID   string `json:"id"`
}

type setFieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

type formStateResponse struct {
	FormID   string            `json:"form_id"`
	Phase    string            `json:"phase"`
	Fields   map[string]string `json:"fields"`
	Notices  []form.Notice     `json:"notices"`
	Redirect string            `json:"redirect,omitempty"`
}

// List handles GET /admin/users.
func (h *UserHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	users, err := h.client.ListUsers(c.Request().Context(), principal.Token)
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, map[string]any{"data": out})
}

// Delete handles DELETE /admin/users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.client.DeleteUser(c.Request().Context(), principal.Token, id); err != nil {
		return err
	}

	h.activity.Record(c.Request().Context(), principal.Username, principal.Role, domain.ActionDelete, "user", id)
	return c.NoContent(http.StatusNoContent)
}

// OpenForm handles POST /admin/users/forms. It creates one form instance per
// page visit; edit mode pre-populates from the upstream record and, when the
// record is missing, returns the not-found state with the delayed redirect
// already scheduled instead of failing the request.
func (h *UserHandler) OpenForm(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req openFormRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Mode == "edit" && req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required for edit forms")
	}

	ctrl := h.forms.Open(form.Config{
		Resource:      "user",
		ListRoute:     usersListRoute,
		Rules:         userFormRules(),
		Submit:        h.submitFunc(principal, req.Mode, req.ID),
		Fetch:         h.fetchFunc(principal),
		NavigateDelay: h.navDelay,
		NotFoundDelay: h.nfDelay,
		Logger:        h.log,
	})
	metrics.OpenForms.Set(float64(h.forms.Count()))

	if req.Mode == "edit" {
		if err := ctrl.Load(c.Request().Context(), req.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	return c.JSON(http.StatusCreated, formState(ctrl))
}

// FormState handles GET /admin/users/forms/:fid.
func (h *UserHandler) FormState(c echo.Context) error {
	ctrl, err := h.forms.Get(c.Param("fid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, formState(ctrl))
}

// SetFields handles PUT /admin/users/forms/:fid/fields. Values a field's
// normalization rule rejects are silently dropped; the response carries the
// values actually stored.
func (h *UserHandler) SetFields(c echo.Context) error {
	ctrl, err := h.forms.Get(c.Param("fid"))
	if err != nil {
		return err
	}

	var req setFieldsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	for name, value := range req.Fields {
		if err := ctrl.SetField(name, value); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, formState(ctrl))
}

// Submit handles POST /admin/users/forms/:fid/submit. Validation and remote
// failures come back as the failed form state; only double submits and
// expired forms surface as HTTP errors.
func (h *UserHandler) Submit(c echo.Context) error {
	ctrl, err := h.forms.Get(c.Param("fid"))
	if err != nil {
		return err
	}

	start := time.Now()
	err = ctrl.Submit(c.Request().Context())
	metrics.SubmissionDuration.WithLabelValues("user").Observe(time.Since(start).Seconds())
	metrics.FormSubmissionsTotal.WithLabelValues("user", submitOutcome(err)).Inc()

	if errors.Is(err, domain.ErrSubmitInFlight) || errors.Is(err, domain.ErrFormExpired) {
		return err
	}
	return c.JSON(http.StatusOK, formState(ctrl))
}

// CloseForm handles DELETE /admin/users/forms/:fid — the page unmount. It
// cancels pending navigation and abandons any in-flight submission.
func (h *UserHandler) CloseForm(c echo.Context) error {
	h.forms.Close(c.Param("fid"))
	metrics.OpenForms.Set(float64(h.forms.Count()))
	return c.NoContent(http.StatusNoContent)
}

// submitFunc builds the remote call for a form instance: create posts a new
// user, edit updates in place. The activity record is written only after the
// upstream accepted the change.
func (h *UserHandler) submitFunc(principal *domain.Principal, mode, id string) form.SubmitFunc {
	return func(ctx context.Context, fields map[string]string) error {
		payload, err := fieldsToPayload(fields)
		if err != nil {
			return err
		}

		var action string
		var resourceID string
		switch mode {
		case "edit":
			_, err = h.client.UpdateUser(ctx, principal.Token, id, payload)
			action, resourceID = domain.ActionUpdate, id
		default:
			var created *domain.UserRecord
			created, err = h.client.CreateUser(ctx, principal.Token, payload)
			action = domain.ActionCreate
			if created != nil {
				resourceID = created.ID
			}
		}
		if err != nil {
			return err
		}

		h.activity.Record(ctx, principal.Username, principal.Role, action, "user", resourceID)
		return nil
	}
}

func (h *UserHandler) fetchFunc(principal *domain.Principal) form.FetchFunc {
	return func(ctx context.Context, id string) (map[string]string, error) {
		u, err := h.client.FetchUser(ctx, principal.Token, id)
		if err != nil {
			return nil, err
		}
		return recordToFields(u), nil
	}
}

func userFormRules() []form.Rule {
	return []form.Rule{
		{Name: "serial_number", Label: "serial number", Required: true, Kind: form.KindDigits},
		{Name: "username", Label: "username", Required: true, Kind: form.KindText},
		{Name: "email", Label: "email", Required: true, Kind: form.KindEmail},
		{Name: "designation", Label: "designation", Required: true, Kind: form.KindText},
		{Name: "status", Label: "status", Kind: form.KindText},
	}
}

func fieldsToPayload(fields map[string]string) (ports.UserPayload, error) {
	serial, err := strconv.Atoi(fields["serial_number"])
	if err != nil || serial <= 0 {
		// Validate runs before every submit, so this indicates a rule bug.
		return ports.UserPayload{}, fmt.Errorf("%w: serial number must be a positive number", domain.ErrValidation)
	}

	status := fields["status"]
	if status == "" {
		status = domain.UserStatusActive
	}

	return ports.UserPayload{
		SerialNumber: serial,
		Username:     fields["username"],
		Email:        fields["email"],
		Designation:  fields["designation"],
		Status:       status,
	}, nil
}

func recordToFields(u *domain.UserRecord) map[string]string {
	return map[string]string{
		"serial_number": strconv.Itoa(u.SerialNumber),
		"username":      u.Username,
		"email":         u.Email,
		"designation":   u.Designation,
		"status":        u.Status,
	}
}

func toUserResponse(u domain.UserRecord) userResponse {
	return userResponse{
		ID:           u.ID,
		SerialNumber: u.SerialNumber,
		Username:     u.Username,
		Email:        u.Email,
		Designation:  u.Designation,
		Status:       u.Status,
		JoinDate:     u.JoinDate.UTC().Format(time.RFC3339),
	}
}

func formState(ctrl *form.Controller) formStateResponse {
	return formStateResponse{
		FormID:   ctrl.ID(),
		Phase:    string(ctrl.Phase()),
		Fields:   ctrl.Fields(),
		Notices:  ctrl.Notices(),
		Redirect: ctrl.Redirect(),
	}
}

func submitOutcome(err error) string {
	switch {
	case err == nil:
		return "succeeded"
	case errors.Is(err, domain.ErrValidation):
		return "validation_failed"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "failed"
	}
}
