package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/recap/internal/ir"
	"github.com/roach88/recap/internal/store"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 5 * time.Second

// Client is an HTTP artifact store. It implements intercept.Store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout. Default: DefaultTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create stores an artifact on the remote service.
func (c *Client) Create(ctx context.Context, a ir.Artifact) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/artifacts", a)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create artifact: %w", statusError(resp))
	}
	return nil
}

// Lookup probes the remote service. A 404 is a miss, not an error.
func (c *Client) Lookup(ctx context.Context, probe ir.Probe) (ir.Artifact, bool, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/artifacts/lookup", probe)
	if err != nil {
		return ir.Artifact{}, false, fmt.Errorf("lookup artifact: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ir.Artifact{}, false, nil
	default:
		return ir.Artifact{}, false, fmt.Errorf("lookup artifact: %w", statusError(resp))
	}

	var a ir.Artifact
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return ir.Artifact{}, false, fmt.Errorf("decode artifact: %w", err)
	}
	return a, true, nil
}

// Get fetches one artifact by ID. Returns store.ErrNotFound on a 404.
func (c *Client) Get(ctx context.Context, id string) (ir.Artifact, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/artifacts/"+id, nil)
	if err != nil {
		return ir.Artifact{}, fmt.Errorf("get artifact: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ir.Artifact{}, store.ErrNotFound
	default:
		return ir.Artifact{}, fmt.Errorf("get artifact: %w", statusError(resp))
	}

	var a ir.Artifact
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return ir.Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	return a, nil
}

// Health checks that the service is reachable.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: %w", statusError(resp))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// StatusError is a non-success response from the service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("service returned status %d: %s", e.Code, e.Message)
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er errorResponse
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &er) == nil && er.Error != "" {
		msg = er.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}
