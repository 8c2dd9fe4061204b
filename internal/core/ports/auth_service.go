package ports

import (
	"context"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

// LoginRequest carries everything the gateway needs to establish a session.
type LoginRequest struct {
	Username         string
	Password         string
	Remember         bool
	DeviceID         string
	ProfileImage     []byte
	ProfileImageName string
}

type AuthService interface {
	// Login delegates credential verification to the upstream API, writes
	// the session, and returns the signed gateway session token.
	Login(ctx context.Context, req LoginRequest) (string, *domain.Principal, error)

	// VerifySession resolves a gateway session token back to its principal.
	// Returns (nil, nil) for missing or expired sessions; ErrAuth only for
	// tokens that fail signature verification.
	VerifySession(ctx context.Context, token string) (*domain.Principal, error)

	// Logout clears the session addressed by the token.
	Logout(ctx context.Context, token, deviceID string, keepRemembered bool) error

	// RememberedUsername returns the username remembered for a device, or "".
	RememberedUsername(ctx context.Context, deviceID string) (string, error)
}
