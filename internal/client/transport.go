package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickshop/storefront/pkg/logger"
	"github.com/quickshop/storefront/pkg/metrics"
)

// APIError is a backend failure carried through to the caller untouched. The
// cache layer never swallows these.
type APIError struct {
	Status int
	Body   json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, string(e.Body))
}

// Transport issues JSON requests against the remote storefront backend. It
// owns the base URL, the bearer token, and request tagging; callers supply
// only method, path, and an optional body.
type Transport struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger

	mu    sync.RWMutex
	token string
}

// TransportOption customises the Transport.
type TransportOption func(*Transport)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) {
		if c != nil {
			t.client = c
		}
	}
}

// NewTransport builds a Transport for the given backend base URL.
func NewTransport(baseURL string, opts ...TransportOption) (*Transport, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("client: backend base URL is required")
	}

	t := &Transport{
		baseURL: baseURL,
		client:  &http.Client{},
		log:     logger.WithModule("client.transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// SetToken stores the bearer token attached to subsequent requests.
func (t *Transport) SetToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
}

// Token returns the current bearer token, empty when signed out.
func (t *Transport) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// TokenExpired reports whether the stored bearer token carries an exp claim
// in the past. The claim is read without signature verification; the backend
// remains the authority on token validity.
func (t *Transport) TokenExpired() bool {
	token := t.Token()
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// FetchJSON performs a request and returns the raw JSON body. Non-2xx
// responses are returned as *APIError.
func (t *Transport) FetchJSON(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := t.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequests.WithLabelValues(method, "error").Inc()
		t.log.Debug("backend error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &APIError{Status: resp.StatusCode, Body: payload}
	}

	metrics.BackendRequests.WithLabelValues(method, "ok").Inc()
	return payload, nil
}
