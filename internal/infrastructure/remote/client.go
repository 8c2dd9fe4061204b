// Package remote implements the typed HTTP client for the upstream
// customer/admin API. Every call is single-attempt: transport failures are
// classified onto the domain sentinel errors and handed back, and retry is
// always a user decision, never automatic.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Client talks to the upstream API. It implements ports.ResourceClient.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a Client for the given base URL. A default per-request
// timeout is applied when none is provided.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Login posts credentials (and the optional profile image) as a multipart
// form, matching the upstream /admin/login contract.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("username", in.Username); err != nil {
		return nil, fmt.Errorf("build login form: %w", err)
	}
	if err := w.WriteField("password", in.Password); err != nil {
		return nil, fmt.Errorf("build login form: %w", err)
	}
	if len(in.ProfileImage) > 0 {
		name := in.ProfileImageName
		if name == "" {
			name = "profile"
		}
		part, err := w.CreateFormFile("profile", name)
		if err != nil {
			return nil, fmt.Errorf("build login form: %w", err)
		}
		if _, err := part.Write(in.ProfileImage); err != nil {
			return nil, fmt.Errorf("build login form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build login form: %w", err)
	}

	var out ports.LoginResult
	if err := c.do(ctx, http.MethodPost, "/admin/login", "", &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.UserRecord, error) {
	var out []domain.UserRecord
	if err := c.do(ctx, http.MethodGet, "/customers/", token, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchUser(ctx context.Context, token, id string) (*domain.UserRecord, error) {
	var out domain.UserRecord
	if err := c.do(ctx, http.MethodGet, "/customers/All/"+id, token, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, p ports.UserPayload) (*domain.UserRecord, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode user payload: %w", err)
	}
	var out domain.UserRecord
	if err := c.do(ctx, http.MethodPost, "/customers/", token, bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, token, id string, p ports.UserPayload) (*domain.UserRecord, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode user payload: %w", err)
	}
	var out domain.UserRecord
	if err := c.do(ctx, http.MethodPut, "/customers/"+id, token, bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/customers/"+id, token, nil, "", nil)
}

// Ping reports upstream reachability for the readiness probe. Any HTTP
// response counts as reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do performs one request and decodes a 2xx JSON body into out (out may be
// nil for responses whose body is irrelevant).
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classifyStatus(method, path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrRemote, err)
	}
	return nil
}

// classifyTransport maps transport failures onto the sentinel errors.
// Context cancellation passes through untouched so abandoned calls are
// distinguishable from genuine network trouble.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
}

// classifyStatus maps non-2xx responses onto the sentinel errors.
func (c *Client) classifyStatus(method, path string, resp *http.Response) error {
	// Bodies on error responses are small; read them for the log only.
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("body", string(msg)).
		Msg("upstream error response")

	switch resp.StatusCode {
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuth
	default:
		return fmt.Errorf("%w: status %d", domain.ErrRemote, resp.StatusCode)
	}
}
