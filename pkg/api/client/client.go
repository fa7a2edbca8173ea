package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provides typed access to the pagesmith API for interactive tools.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:8000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body any, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg := extractError(resp.Body)
		return APIError{Status: resp.StatusCode, Message: msg}
	}

	if v == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractError(body io.Reader) string {
	if body == nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(payload.Error)
}

// Attachment mirrors the API attachment payload.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DeployRequest is the body accepted by POST /api-endpoint.
type DeployRequest struct {
	Email         string       `json:"email"`
	Secret        string       `json:"secret"`
	Task          string       `json:"task"`
	Round         int          `json:"round"`
	Nonce         string       `json:"nonce"`
	Brief         string       `json:"brief"`
	Checks        []string     `json:"checks,omitempty"`
	EvaluationURL string       `json:"evaluation_url,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

// DeployAck reflects the intake acknowledgement.
type DeployAck struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Nonce   string `json:"nonce"`
}

// Delivery reflects a recorded deployment.
type Delivery struct {
	ID           string `json:"id"`
	Task         string `json:"task"`
	Round        int    `json:"round"`
	Nonce        string `json:"nonce"`
	RepoURL      string `json:"repo_url"`
	CommitSHA    string `json:"commit_sha"`
	PagesURL     string `json:"pages_url"`
	NotifyStatus string `json:"notify_status"`
	CreatedAt    string `json:"created_at"`
}

// Submit posts a deployment request.
func (c *Client) Submit(ctx context.Context, req DeployRequest) (DeployAck, error) {
	var ack DeployAck
	if err := c.do(ctx, http.MethodPost, "/api-endpoint", req, &ack); err != nil {
		return DeployAck{}, err
	}
	return ack, nil
}

// ListDeliveries fetches recorded deployments for a task.
func (c *Client) ListDeliveries(ctx context.Context, task string, limit int) ([]Delivery, error) {
	path := "/deployments/" + url.PathEscape(task)
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var deliveries []Delivery
	if err := c.do(ctx, http.MethodGet, path, nil, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// Logs fetches stored deploy log lines for a task.
func (c *Client) Logs(ctx context.Context, task string, limit, offset int) ([]json.RawMessage, error) {
	path := "/logs/" + url.PathEscape(task)
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		query.Set("offset", fmt.Sprint(offset))
	}
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var lines []json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var report map[string]any
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &report); err != nil {
		return nil, err
	}
	return report, nil
}
