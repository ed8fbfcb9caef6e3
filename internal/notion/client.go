// Package notion is the transport for the internal, cookie-authenticated
// API. Every endpoint is a JSON POST to <base>/api/v3/<endpoint>.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aidanlsb/ntn/internal/logger"
)

const (
	DefaultBaseURL           = "https://www.notion.so"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 3.0

	apiPrefix      = "/api/v3/"
	maxErrorBody   = 4096
	activeUserHdr  = "x-notion-active-user-header"
	tokenCookie    = "token_v2"
	defaultUserAgt = "ntn"
)

var (
	// ErrNotFound is returned when a requested record does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("record not found")
	// ErrUnauthorized is returned when the session token is missing,
	// expired or lacks access.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Endpoint   string
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%d %s)", e.Endpoint, msg, e.StatusCode, e.Name)
	}
	return fmt.Sprintf("%s: %s (%d)", e.Endpoint, msg, e.StatusCode)
}

// Unwrap maps auth and lookup failures to the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	// UserID selects the active user when the session holds several.
	UserID     string
	UserAgent  string
	HTTPClient *http.Client
	// RequestsPerSecond throttles outgoing requests. Zero uses the default;
	// a negative value disables throttling.
	RequestsPerSecond float64
}

// Client talks to the internal API.
type Client struct {
	baseURL   string
	token     string
	userID    string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// New creates a client.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgt
	}

	c := &Client{
		baseURL:   baseURL,
		token:     opts.Token,
		userID:    opts.UserID,
		userAgent: userAgent,
		http:      httpClient,
	}
	rps := opts.RequestsPerSecond
	if rps == 0 {
		rps = DefaultRequestsPerSecond
	}
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// UserID returns the active user id, if one was configured.
func (c *Client) UserID() string {
	return c.userID
}

// Post sends body as JSON to endpoint and decodes the response into out.
// A nil out discards the response body.
func (c *Client) Post(ctx context.Context, endpoint string, body, out interface{}) error {
	if c.token == "" {
		return fmt.Errorf("%s: %w: no session token", endpoint, ErrUnauthorized)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: c.token})
	if c.userID != "" {
		req.Header.Set(activeUserHdr, c.userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	logger.Debug("api request", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(endpoint, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func decodeError(endpoint string, resp *http.Response) error {
	apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Name = body.Name
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
