package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

// AuthService establishes and resolves gateway sessions. Credential checks
// are fully delegated to the upstream admin API; the gateway stores no
// passwords. The token handed to the browser is an HS256 JWT wrapping the
// session ID, so tampering is caught before the session store is consulted.
type AuthService struct {
	client    ports.ResourceClient
	sessions  *SessionService
	activity  ports.ActivityService
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	client ports.ResourceClient,
	sessions *SessionService,
	activity ports.ActivityService,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		client:    client,
		sessions:  sessions,
		activity:  activity,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (string, *domain.Principal, error) {
	if req.Username == "" || req.Password == "" {
		return "", nil, domain.ErrAuth
	}

	res, err := s.client.Login(ctx, ports.LoginInput{
		Username:         req.Username,
		Password:         req.Password,
		ProfileImage:     req.ProfileImage,
		ProfileImageName: req.ProfileImageName,
	})
	if err != nil {
		return "", nil, err
	}

	principal := &domain.Principal{
		ID:              res.ID,
		Username:        req.Username,
		Role:            res.Role,
		ProfileImageRef: res.Profile,
		Token:           res.Token,
		IssuedAt:        time.Now().UTC(),
	}
	if !principal.Valid() {
		s.log.Warn().Str("username", req.Username).Str("role", res.Role).Msg("upstream returned unusable principal")
		return "", nil, domain.ErrAuth
	}

	sessionID := newSessionID()
	if err := s.sessions.Write(ctx, sessionID, principal); err != nil {
		return "", nil, fmt.Errorf("write session: %w", err)
	}

	if req.Remember && req.DeviceID != "" {
		if err := s.sessions.Remember(ctx, req.DeviceID, req.Username); err != nil {
			s.log.Warn().Err(err).Msg("failed to store remembered username")
		}
	}

	token, err := s.signToken(sessionID, principal)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	s.activity.Record(ctx, principal.Username, principal.Role, domain.ActionLogin, "session", "")
	s.log.Info().Str("username", principal.Username).Str("role", principal.Role).Msg("login succeeded")

	return token, principal, nil
}

func (s *AuthService) VerifySession(ctx context.Context, token string) (*domain.Principal, error) {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	return s.sessions.Read(ctx, sessionID)
}

func (s *AuthService) Logout(ctx context.Context, token, deviceID string, keepRemembered bool) error {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return err
	}

	if p, _ := s.sessions.Read(ctx, sessionID); p != nil {
		s.activity.Record(ctx, p.Username, p.Role, domain.ActionLogout, "session", "")
	}

	return s.sessions.Clear(ctx, sessionID, deviceID, keepRemembered)
}

func (s *AuthService) RememberedUsername(ctx context.Context, deviceID string) (string, error) {
	return s.sessions.Remembered(ctx, deviceID)
}

func (s *AuthService) signToken(sessionID string, p *domain.Principal) (string, error) {
	claims := jwt.MapClaims{
		"sid":      sessionID,
		"username": p.Username,
		"role":     p.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// parseToken verifies the gateway JWT and extracts the session ID.
func (s *AuthService) parseToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrAuth
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", domain.ErrAuth
	}
	return sid, nil
}

// newSessionID returns a 128-bit random session identifier.
func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
