// Package api is the typed client for the remote event-discovery REST API.
// It owns transport concerns only: bearer auth, timeouts, request ids, a
// conditional-GET disk cache for event listings, and error decoding. All
// client-side filtering/marking happens in internal/filter and
// internal/calendar on the data this package returns.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/imroc/req"

	"evscout/internal/auth"
	"evscout/internal/config"
	"evscout/internal/log"
)

// Client talks to one API base URL on behalf of at most one session.
type Client struct {
	r       *req.Req
	baseURL string
	store   *auth.Store
	cache   *diskCache
}

// NewClient builds a Client from the application config. store may be nil
// for unauthenticated use; cacheDir may be empty to disable the listing
// cache.
func NewClient(cfg *config.Config, store *auth.Store, cacheDir string) *Client {
	r := req.New()
	r.SetTimeout(cfg.HTTPTimeout())

	c := &Client{
		r:       r,
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		store:   store,
	}
	if cacheDir != "" {
		c.cache = newDiskCache(cacheDir)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: HTTP %d", e.StatusCode)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// errorBody is the server's error envelope; some endpoints use "message",
// others "error".
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// headers assembles the per-request header set: JSON content type, a fresh
// request id, and the bearer token when a session exists.
func (c *Client) headers() req.Header {
	h := req.Header{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"X-Request-ID": uuid.NewString(),
	}
	if c.store != nil {
		if sess, err := c.store.Load(); err == nil {
			h["Authorization"] = "Bearer " + sess.Token
		}
	}
	return h
}

// do issues one request and decodes a 2xx JSON body into out (which may be
// nil). Non-2xx responses decode into *APIError.
func (c *Client) do(ctx context.Context, method, path string, params req.QueryParam, body, out interface{}) error {
	h := c.headers()

	args := []interface{}{ctx, h}
	if params != nil {
		args = append(args, params)
	}
	if body != nil {
		args = append(args, req.BodyJSON(body))
	}

	started := time.Now()
	resp, err := c.r.Do(method, c.url(path), args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.Response().StatusCode
	log.Debug("api call",
		"method", method,
		"path", path,
		"status", status,
		"elapsed_ms", time.Since(started).Milliseconds(),
		"request_id", h["X-Request-ID"],
	)

	if status < 200 || status >= 300 {
		return decodeError(resp, status)
	}
	if out == nil {
		return nil
	}
	if err := resp.ToJSON(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *req.Resp, status int) error {
	var eb errorBody
	_ = resp.ToJSON(&eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	return &APIError{StatusCode: status, Message: msg}
}

// marshalQuery logs query params compactly at debug level.
func marshalQuery(p req.QueryParam) string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}
