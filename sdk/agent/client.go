package agent

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// headerClientToken authenticates every agent request.
const headerClientToken = "X-Client-Token"

const defaultUserAgent = "drover-agent-sdk"

// Client is the agent API client.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		client.userAgent = ua
	}
}

// NewClient creates a new agent API client.
//
// Parameters:
//   - baseURL: the server base URL (e.g., "https://updates.example.com")
//   - token: the client token issued at registration (e.g., "ct_xxx")
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Checkin polls the server for work. An empty request is a plain liveness
// poll; filling CurrentVersion lets the server track the installed version.
func (c *Client) Checkin(ctx context.Context, req CheckinRequest) (*CheckinResult, error) {
	url := c.baseURL + "/agent/v1/checkin"

	var result CheckinResult
	if err := c.doRequest(ctx, http.MethodPost, url, req, &result); err != nil {
		return nil, fmt.Errorf("checkin: %w", err)
	}
	return &result, nil
}

// ReportResult reports the terminal outcome of the update the server handed
// out at check-in.
func (c *Client) ReportResult(ctx context.Context, req ReportResultRequest) (*ReportResult, error) {
	url := c.baseURL + "/agent/v1/result"

	var result ReportResult
	if err := c.doRequest(ctx, http.MethodPost, url, req, &result); err != nil {
		return nil, fmt.Errorf("report result: %w", err)
	}
	return &result, nil
}

// DownloadArtifact streams the artifact at artifactURL into dst while
// hashing it, and fails when the SHA-256 digest differs from
// expectedChecksum. Whatever was written must be discarded on error.
// Relative URLs, as handed out by check-in, are resolved against the base
// URL. Returns the number of bytes written.
func (c *Client) DownloadArtifact(ctx context.Context, artifactURL, expectedChecksum string, dst io.Writer) (int64, error) {
	url := artifactURL
	if !strings.HasPrefix(url, "http") {
		url = c.baseURL + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(headerClientToken, c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, c.responseError(resp.StatusCode, body)
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(dst, hasher), resp.Body)
	if err != nil {
		return written, fmt.Errorf("read artifact: %w", err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(sum, expectedChecksum) {
		return written, fmt.Errorf("checksum mismatch: expected %s, got %s", expectedChecksum, sum)
	}

	return written, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("api error: status=%d type=%s message=%s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// responseError builds an APIError from a non-2xx response, pulling the
// server's error detail when the body carries the standard envelope.
func (c *Client) responseError(statusCode int, body []byte) error {
	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error != nil {
		return &APIError{StatusCode: statusCode, Type: apiResp.Error.Type, Message: apiResp.Error.Message}
	}
	return &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
}

// doRequest performs an HTTP request and decodes the response.
func (c *Client) doRequest(ctx context.Context, method, url string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(headerClientToken, c.token)
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.responseError(resp.StatusCode, respBody)
	}

	if result == nil {
		return nil
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if !apiResp.Success {
		return fmt.Errorf("api error: %s", apiResp.Message)
	}

	if apiResp.Data == nil {
		return nil
	}

	// Re-marshal and unmarshal to convert Data to the target type
	dataBytes, err := json.Marshal(apiResp.Data)
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	if err := json.Unmarshal(dataBytes, result); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}

	return nil
}
