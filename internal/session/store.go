// ABOUTME: Owns the authenticated identity and its bearer token
// ABOUTME: Versioned login/register/logout so late completions never win

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/markalston/tictactoe-client/internal/client"
)

var (
	// ErrBadCredentials means the authority refused the username/password pair
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrUnauthorized means the authority rejected the stored identity
	ErrUnauthorized = errors.New("session rejected")
	// ErrSuperseded means a later login, register or logout replaced this call
	ErrSuperseded = errors.New("superseded by a later session change")
)

// TokenStore persists the bearer token between runs
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Authenticator is the part of the API the store needs
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*client.AuthResponse, error)
	Register(ctx context.Context, username, password string) (*client.AuthResponse, error)
	Me(ctx context.Context, token string) (*client.User, error)
}

// Session is a point-in-time view of the store. User is set only when
// Token is set and has been confirmed by the authority.
type Session struct {
	Token string       `json:"-"`
	User  *client.User `json:"user"`
}

// Store is safe for use from multiple goroutines
type Store struct {
	api    Authenticator
	tokens TokenStore
	logger *slog.Logger

	// commitMu orders every session change together with its write to
	// tokens, so storage always ends in the state of the last commit.
	// Lock order is commitMu then mu.
	commitMu sync.Mutex

	mu      sync.Mutex
	version uint64
	token   string
	user    *client.User
}

// Option customizes a Store
type Option func(*Store)

// WithLogger sets the logger for session transitions
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty, unauthenticated store
func New(api Authenticator, tokens TokenStore, opts ...Option) *Store {
	s := &Store{api: api, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ticket issues a new version; only the holder of the latest may commit
func (s *Store) ticket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.version
}

// Restore loads a persisted token and confirms it with the authority.
// Any failure leaves the store empty and the persisted token cleared.
func (s *Store) Restore(ctx context.Context) error {
	v := s.ticket()

	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load session token", "error", err)
		s.discard(ctx, v)
		return fmt.Errorf("loading session: %w", err)
	}
	if token == "" {
		return nil
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		s.logger.Info("Stored session is no longer valid", "error", err)
		s.discard(ctx, v)
		if client.IsUnauthenticated(err) {
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != v {
		return ErrSuperseded
	}
	s.token = token
	s.user = &client.User{Username: user.Username}
	s.logger.Debug("Session restored", "username", user.Username)
	return nil
}

// discard clears everything if v is still the latest version
func (s *Store) discard(ctx context.Context, v uint64) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if s.version != v {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear session token", "error", err)
	}
}

// Login authenticates and persists the returned token
func (s *Store) Login(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, username, password, s.api.Login)
}

// Register creates an account and logs in with it
func (s *Store) Register(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, username, password, s.api.Register)
}

type authFunc func(ctx context.Context, username, password string) (*client.AuthResponse, error)

func (s *Store) authenticate(ctx context.Context, username, password string, call authFunc) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrBadCredentials)
	}

	v := s.ticket()
	resp, err := call(ctx, username, password)
	if err != nil {
		if client.IsNetwork(err) || errors.Is(err, client.ErrServer) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrBadCredentials, err)
	}
	if resp.Token == "" {
		return fmt.Errorf("%w: authority returned no token", ErrBadCredentials)
	}

	user := resp.User
	if user == nil || user.Username == "" {
		user = &client.User{Username: username}
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if s.version != v {
		s.mu.Unlock()
		s.logger.Debug("Discarding superseded authentication", "username", username)
		return ErrSuperseded
	}
	s.token = resp.Token
	s.user = &client.User{Username: user.Username}
	s.mu.Unlock()

	if err := s.tokens.Save(ctx, resp.Token); err != nil {
		s.logger.Warn("Failed to persist session token", "error", err)
	}
	s.logger.Info("Logged in", "username", user.Username)
	return nil
}

// Logout clears the in-memory session and the persisted token. Calls in
// flight are discarded when they complete. Safe to call repeatedly.
func (s *Store) Logout(ctx context.Context) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	wasIn := s.clearLocked()
	s.mu.Unlock()

	if wasIn {
		s.logger.Info("Logged out")
	}
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// clearLocked drops the session and bumps the version. s.mu must be held.
func (s *Store) clearLocked() bool {
	s.version++
	wasIn := s.token != ""
	s.token = ""
	s.user = nil
	return wasIn
}

// Observe logs the session out when err says token was rejected and token
// is still the current one. A rejection of a token that has since been
// replaced is ignored. It reports whether a logout happened.
func (s *Store) Observe(token string, err error) bool {
	if !client.IsUnauthenticated(err) {
		return false
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if token == "" || token != s.token {
		s.mu.Unlock()
		s.logger.Debug("Ignoring rejection of a replaced session token")
		return false
	}
	s.clearLocked()
	s.mu.Unlock()

	s.logger.Info("Authority rejected the session token")
	if clearErr := s.tokens.Clear(context.Background()); clearErr != nil {
		s.logger.Warn("Failed to clear session token", "error", clearErr)
	}
	return true
}

// Current returns a copy of the session
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Session{Token: s.token}
	if s.user != nil {
		out.User = &client.User{Username: s.user.Username}
	}
	return out
}

// Token returns the bearer token, or "" when logged out.
// It satisfies client.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Username returns the confirmed username, or ""
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.Username
}

// Authenticated reports whether a confirmed identity is present
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// Message turns a session error into text for the user
func Message(err error) string {
	var apiErr *client.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSuperseded):
		return ""
	case client.IsNetwork(err):
		if errors.As(err, &apiErr) {
			return apiErr.Message
		}
		return "Cannot reach the game server."
	case errors.Is(err, ErrBadCredentials):
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		msg := strings.TrimPrefix(err.Error(), ErrBadCredentials.Error()+": ")
		if msg == "" {
			return "Invalid credentials"
		}
		return capitalize(msg)
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	default:
		return err.Error()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
