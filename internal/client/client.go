// ABOUTME: HTTP client for the tic-tac-toe game authority
// ABOUTME: Wraps auth, lobby and game endpoints with uniform error handling

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single request
const DefaultTimeout = 30 * time.Second

// TokenSource returns the bearer token for authenticated calls, or "" if none
type TokenSource func() string

// Client is the API client for the game authority
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	reads      singleflight.Group
}

// Option customizes a Client
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.token = ts
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		token:  func() string { return "" },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the authority address this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", credentials{username, password}, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register calls POST /auth/register
func (c *Client) Register(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/register", credentials{username, password}, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me calls GET /auth/me with an explicit token, independent of the token source
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.get(ctx, "/auth/me", token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGames calls GET /games
func (c *Client) ListGames(ctx context.Context) ([]GameSummary, error) {
	var out gamesResponse
	if err := c.get(ctx, "/games", c.token(), &out); err != nil {
		return nil, err
	}
	if out.Games == nil {
		out.Games = []GameSummary{}
	}
	return out.Games, nil
}

// History calls GET /history
func (c *Client) History(ctx context.Context) ([]GameSnapshot, error) {
	var out historyResponse
	if err := c.get(ctx, "/history", c.token(), &out); err != nil {
		return nil, err
	}
	if out.Games == nil {
		out.Games = []GameSnapshot{}
	}
	return out.Games, nil
}

// CreateGame calls POST /games
func (c *Client) CreateGame(ctx context.Context) (*GameSnapshot, error) {
	var out GameSnapshot
	if err := c.send(ctx, http.MethodPost, "/games", nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinGame calls POST /games/{id}/join
func (c *Client) JoinGame(ctx context.Context, id GameID) (*GameSnapshot, error) {
	var out GameSnapshot
	if err := c.send(ctx, http.MethodPost, gamePath(id, "join"), nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitMove calls POST /games/{id}/move
func (c *Client) SubmitMove(ctx context.Context, id GameID, move Move) (*GameSnapshot, error) {
	var out GameSnapshot
	if err := c.send(ctx, http.MethodPost, gamePath(id, "move"), move, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGame calls GET /games/{id}
func (c *Client) GetGame(ctx context.Context, id GameID) (*GameSnapshot, error) {
	var out GameSnapshot
	if err := c.get(ctx, gamePath(id, ""), c.token(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func gamePath(id GameID, action string) string {
	p := "/games/" + url.PathEscape(string(id))
	if action != "" {
		p += "/" + action
	}
	return p
}

// get performs an authenticated GET. Identical reads already in flight
// share one round trip. The shared request is detached from any single
// caller's cancellation; each caller still stops waiting when its own ctx
// ends.
func (c *Client) get(ctx context.Context, path, token string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return c.handleRequestError(ctx, "", err)
	}

	key := path + "\x00" + token
	shared := context.WithoutCancel(ctx)
	ch := c.reads.DoChan(key, func() (interface{}, error) {
		return c.roundTrip(shared, http.MethodGet, path, token, nil)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return c.handleRequestError(ctx, "", ctx.Err())
	}
	if res.Err != nil {
		return res.Err
	}
	if err := json.Unmarshal(res.Val.([]byte), out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// send performs a write. Writes are never shared or retried.
func (c *Client) send(ctx context.Context, method, path string, in interface{}, authed bool, out interface{}) error {
	token := ""
	if authed {
		token = c.token()
	}
	data, err := c.roundTrip(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, in interface{}) ([]byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Request failed", "request_id", requestID, "method", method, "path", path, "error", err)
		return nil, c.handleRequestError(ctx, requestID, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Request completed",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, handleErrorResponse(resp, requestID)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.handleRequestError(ctx, requestID, err)
	}
	return data, nil
}
