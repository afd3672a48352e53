// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apiclient talks to the backend's HTTP API for the line-mode
// commands (state, push, say, history).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/astrid-tui/internal/controller"
	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/server"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeRejected
	ErrTypeInvalidResponse
)

// ClientError represents an error from the API client.
type ClientError struct {
	Type    ErrorType
	Status  int
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// IsUnreachable reports whether the backend could not be contacted.
func IsUnreachable(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && (ce.Type == ErrTypeUnreachable || ce.Type == ErrTypeTimeout)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is an HTTP client for one backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the backend serving origin. The origin may use
// http, https, ws or wss, or omit the scheme.
func New(origin string, timeout time.Duration) (*Client, error) {
	base, err := BaseURLFromOrigin(origin)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: base, httpClient: &http.Client{Timeout: timeout}}, nil
}

// BaseURLFromOrigin normalizes an origin to an http(s) base URL without a
// trailing slash.
func BaseURLFromOrigin(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "", fmt.Errorf("empty origin")
	}
	if !strings.Contains(origin, "://") {
		origin = "http://" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported origin scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("origin %q has no host", origin)
	}
	return u.Scheme + "://" + u.Host, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// State returns the current house state.
func (c *Client) State(ctx context.Context) (protocol.Snapshot, error) {
	var snap protocol.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/state", nil, &snap)
	return snap, err
}

// PushState applies a partial state update.
func (c *Client) PushState(ctx context.Context, u server.StateUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/state", u, nil)
}

// Say pushes a reply to every connected display.
func (c *Client) Say(ctx context.Context, text string) error {
	return c.do(ctx, http.MethodPost, "/api/bot_reply", server.TextRequest{Text: text}, nil)
}

// History returns the controller's recent exchanges.
func (c *Client) History(ctx context.Context) ([]controller.Exchange, error) {
	var resp server.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/controller/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) (server.HealthResponse, error) {
	var h server.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &h)
	return h, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		return &ClientError{Type: ErrTypeUnreachable, Message: "backend unreachable at " + c.baseURL, Cause: err}
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ClientError{
			Type:    ErrTypeRejected,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("%s %s: %s", method, path, errorMessage(resp)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// errorMessage extracts the backend's error message, falling back to the
// status line.
func errorMessage(resp *http.Response) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		return s
	}
	return resp.Status
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	r.Close()
}
