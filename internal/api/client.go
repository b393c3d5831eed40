// Package api is the HTTP client for the remitter REST endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Azahorscak/remitter-tui/internal/config"
	"github.com/Azahorscak/remitter-tui/internal/errs"
	"github.com/Azahorscak/remitter-tui/internal/logger"
	"github.com/Azahorscak/remitter-tui/internal/remitter"
)

const (
	pathMe       = "/remitter/me"
	pathRemitter = "/remitter/"

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Client talks to the remitter API on behalf of one authenticated user.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	log     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates an authenticated remitter API client from the given config.
func NewClient(cfg *config.Config, log *slog.Logger) *Client {
	return newClient(cfg, log)
}

// newClient creates a Client with optional extra options (used for testing).
func newClient(cfg *config.Config, log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Discard()
	}
	c := &Client{
		http:    &http.Client{},
		baseURL: cfg.BaseURL,
		token:   cfg.APIToken,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Me returns the current user's remittance profile.
// A user without a stored record gets *errs.NotFoundError; a response that
// is not a JSON object gets *errs.DecodeError.
func (c *Client) Me(ctx context.Context) (remitter.Profile, error) {
	p, err := c.do(ctx, http.MethodGet, pathMe, nil)
	if err != nil {
		return remitter.Profile{}, fmt.Errorf("fetching remitter details: %w", err)
	}
	return p, nil
}

// Create stores a new profile for a user who has none.
func (c *Client) Create(ctx context.Context, p remitter.Profile) (remitter.Profile, error) {
	out, err := c.do(ctx, http.MethodPost, pathRemitter, &p)
	if err != nil {
		return remitter.Profile{}, fmt.Errorf("creating remitter details: %w", err)
	}
	return out, nil
}

// Update replaces the user's existing profile.
func (c *Client) Update(ctx context.Context, p remitter.Profile) (remitter.Profile, error) {
	out, err := c.do(ctx, http.MethodPut, pathRemitter, &p)
	if err != nil {
		return remitter.Profile{}, fmt.Errorf("updating remitter details: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload *remitter.Profile) (remitter.Profile, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return remitter.Profile{}, errs.NewUnknownError(err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return remitter.Profile{}, errs.NewUnknownError(err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With("request_id", requestID, "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("remitter request failed", "error", err)
		return remitter.Profile{}, errs.NewUnknownError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Debug("reading remitter response failed", "status", resp.StatusCode, "error", err)
		return remitter.Profile{}, errs.NewUnknownError(err)
	}
	log.Debug("remitter request completed", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remitter.Profile{}, errs.FromResponse(resp.StatusCode, respBody)
	}
	return remitter.Decode(respBody)
}
