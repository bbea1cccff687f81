// Package notion is a client for the destination database service. It
// covers exactly the four operations the reconciliation engine consumes:
// object search, schema fetch, record create/update, and filtered
// collection query. Every failure surfaces as a typed domain error; the
// client never retries on its own.
package notion

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/ratelimit"
)

const (
	// The service throttles integrations to ~3 requests per second.
	defaultRPS   = 3.0
	defaultBurst = 3

	defaultTimeout = 30 * time.Second
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
)

// Client is a rate-limited destination service client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	baseURL string
	token   string
	logger  *slog.Logger
}

// New creates a new client authenticating with the given integration token.
func New(token string, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		baseURL: defaultBaseURL,
		token:   token,
		logger:  logger,
	}
}

// WithBaseURL overrides the API base URL, for tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// apiError is the service's error response body, carried into
// DestinationValidation errors as the raw diagnostic.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// doRequest executes an HTTP request with rate limiting and decodes the
// response into out when out is non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody, out any) error {
	if err := c.limiter.Wait(ctx, "api"); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("destination request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := statusError(resp.StatusCode, respBody); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps a non-2xx response to the engine's error taxonomy.
func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var ae apiError
	_ = json.Unmarshal(body, &ae)
	if ae.Message == "" {
		ae.Message = fmt.Sprintf("unexpected status %d", status)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domainerrors.DestinationAuth(ae.Message)
	case http.StatusNotFound:
		return domainerrors.DestinationNotFound(ae.Message)
	case http.StatusBadRequest:
		return domainerrors.DestinationValidation(ae.Message, string(body))
	default:
		return domainerrors.Internalf("destination returned status %d: %s", status, ae.Message)
	}
}
