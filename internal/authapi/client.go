package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"kesnek-mobile/internal/domain"
)

// Client es la frontera con el servicio de autenticacion REST.
// Los errores de transporte se devuelven como error; los rechazos de la
// aplicacion llegan como AuthResponse con Flag=false.
type Client interface {
	LoginEmployee(ctx context.Context, email, password string) (domain.AuthResponse, error)
	LoginEmployer(ctx context.Context, email, password string) (domain.AuthResponse, error)
	RegisterEmployee(ctx context.Context, in domain.RegisterEmployeeInput) (domain.AuthResponse, error)
	RegisterEmployer(ctx context.Context, in domain.RegisterEmployerInput) (domain.AuthResponse, error)
	VerifyEmail(ctx context.Context, ticket, code string) (domain.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (domain.AuthResponse, error)
	SavedJobs(ctx context.Context) ([]domain.SavedJob, error)
	SetAuthToken(token string)
	Logout()
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("request rejected")
)

const maxResponseBytes = 1 << 20

// HTTPClient implementa Client contra el backend REST del marketplace.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu         sync.RWMutex
	authHeader string
}

// NewHTTPClient construye el cliente; timeout<=0 usa 30s.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) LoginEmployee(ctx context.Context, email, password string) (domain.AuthResponse, error) {
	return c.postAuth(ctx, "/employees/login", credentials{Email: email, Password: password})
}

func (c *HTTPClient) LoginEmployer(ctx context.Context, email, password string) (domain.AuthResponse, error) {
	return c.postAuth(ctx, "/employers/login", credentials{Email: email, Password: password})
}

func (c *HTTPClient) RegisterEmployee(ctx context.Context, in domain.RegisterEmployeeInput) (domain.AuthResponse, error) {
	return c.postAuth(ctx, "/employees/register", in)
}

func (c *HTTPClient) RegisterEmployer(ctx context.Context, in domain.RegisterEmployerInput) (domain.AuthResponse, error) {
	return c.postAuth(ctx, "/employers/register", in)
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, ticket, code string) (domain.AuthResponse, error) {
	return c.postAuth(ctx, "/auth/verify-email", verifyRequest{Ticket: ticket, Code: code})
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (domain.AuthResponse, error) {
	return c.postAuth(ctx, "/auth/refresh-token", refreshRequest{RefreshToken: refreshToken})
}

func (c *HTTPClient) SavedJobs(ctx context.Context) ([]domain.SavedJob, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/employees/saved-jobs", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	var resp domain.SavedJobsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if status >= 400 || !resp.Flag {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}
	return resp.Data, nil
}

// SetAuthToken fija el header Authorization de las siguientes llamadas.
func (c *HTTPClient) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token = strings.TrimSpace(token)
	if token == "" {
		c.authHeader = ""
		return
	}
	c.authHeader = "Bearer " + token
}

// Logout descarta el header cacheado; es local, no llama al backend.
func (c *HTTPClient) Logout() {
	c.SetAuthToken("")
}

func (c *HTTPClient) postAuth(ctx context.Context, path string, payload any) (domain.AuthResponse, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return domain.AuthResponse{}, fmt.Errorf("marshal request: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPost, path, bodyBytes)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if status >= 500 {
		c.logger.Warn("auth api server error", zap.String("path", path), zap.Int("status", status))
		return domain.AuthResponse{}, fmt.Errorf("auth api http error: status=%d", status)
	}

	var resp domain.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.AuthResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if status >= 400 {
		resp.Flag = false
	}
	return resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}
	c.mu.RUnlock()

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Ticket string `json:"ticket"`
	Code   string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
