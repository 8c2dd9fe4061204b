package ports

import (
	"context"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

// UserPayload carries the fields sent upstream on user create/update.
type UserPayload struct {
	SerialNumber int    `json:"serial_number"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Designation  string `json:"designation"`
	Status       string `json:"status"`
}

// LoginInput carries the credentials posted to the upstream login endpoint.
// ProfileImage is optional and forwarded as a multipart file part when set.
type LoginInput struct {
	Username         string
	Password         string
	ProfileImage     []byte
	ProfileImageName string
}

// LoginResult is the upstream login response.
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	ID      string `json:"id"`
	Role    string `json:"role"`
	Profile string `json:"profile"`
}

// ResourceClient is the typed client for the upstream customer/admin API.
// Every call is a single attempt: no automatic retries, and cancelling the
// context aborts the in-flight request. Failures are classified onto the
// domain sentinel errors (ErrConflict, ErrNotFound, ErrAuth, ErrTimeout,
// ErrNetwork, ErrRemote).
type ResourceClient interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)

	ListUsers(ctx context.Context, token string) ([]domain.UserRecord, error)
	FetchUser(ctx context.Context, token, id string) (*domain.UserRecord, error)
	CreateUser(ctx context.Context, token string, p UserPayload) (*domain.UserRecord, error)
	UpdateUser(ctx context.Context, token, id string, p UserPayload) (*domain.UserRecord, error)
	DeleteUser(ctx context.Context, token, id string) error
}
