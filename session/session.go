// Package session holds the admin authentication state shared by the HTTP
// client and the auth service.
//
// A Session is created on login, has its access token replaced on refresh
// and is destroyed on logout or when a refresh fails. Tokens are persisted
// through a storage.Store under fixed keys so that a later process (the CLI)
// resumes the same session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/storage"
)

const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Status summarises the session for display.
type Status struct {
	Authenticated   bool       `json:"authenticated"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	Expired         bool       `json:"expired"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the clock used for expiry checks.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// OnUnauthenticated registers a hook fired when the session expires
// irrecoverably.
func OnUnauthenticated(fn func()) Option {
	return func(s *Session) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// Session holds the token pair and persists it through a storage.Store.
type Session struct {
	store  storage.Store
	logger *zap.Logger
	clock  clock.Clock

	mu      sync.RWMutex
	loaded  bool
	access  string
	refresh string
	hooks   []func()
}

// New creates a session over store. Tokens are loaded lazily on first use.
func New(store storage.Store, opts ...Option) *Session {
	if store == nil {
		store = storage.NewMemory()
	}
	s := &Session{
		store:  store,
		logger: zap.NewNop(),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnUnauthenticated adds a hook after construction.
func (s *Session) OnUnauthenticated(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// AccessToken returns the current access token, or "" when signed out.
func (s *Session) AccessToken(ctx context.Context) string {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the stored refresh token, or "".
func (s *Session) RefreshToken(ctx context.Context) string {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Authenticated reports whether an access token is held.
func (s *Session) Authenticated(ctx context.Context) bool {
	return s.AccessToken(ctx) != ""
}

// Start persists the token pair issued on login.
func (s *Session) Start(ctx context.Context, tokens models.Tokens) error {
	if tokens.AccessToken == "" {
		return errors.New("session: login returned no access token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, AccessTokenKey, []byte(tokens.AccessToken)); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if tokens.RefreshToken != "" {
		if err := s.store.Set(ctx, RefreshTokenKey, []byte(tokens.RefreshToken)); err != nil {
			return fmt.Errorf("persist refresh token: %w", err)
		}
	}

	s.access = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.refresh = tokens.RefreshToken
	}
	s.loaded = true
	return nil
}

// SetAccessToken replaces the access token after a refresh. It returns once
// the token is persisted.
func (s *Session) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, AccessTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	s.access = token
	s.loaded = true
	return nil
}

// Clear removes both tokens. It is used on logout.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access, s.refresh = "", ""
	s.loaded = true

	return errors.Join(
		s.store.Delete(ctx, AccessTokenKey),
		s.store.Delete(ctx, RefreshTokenKey),
	)
}

// Expire clears the session and fires the unauthenticated hooks.
func (s *Session) Expire(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear persisted tokens", zap.Error(err))
	}

	s.mu.RLock()
	hooks := append([]func(){}, s.hooks...)
	s.mu.RUnlock()

	s.logger.Info("session expired")
	for _, fn := range hooks {
		fn()
	}
}

// AccessExpiry reads the exp claim of the access token without verifying
// its signature. ok is false for opaque tokens or tokens without exp.
func (s *Session) AccessExpiry(ctx context.Context) (time.Time, bool) {
	token := s.AccessToken(ctx)
	if token == "" {
		return time.Time{}, false
	}
	return TokenExpiry(token)
}

// Status reports the session state, including the access token expiry when it can be read.
func (s *Session) Status(ctx context.Context) Status {
	st := Status{
		Authenticated:   s.Authenticated(ctx),
		HasRefreshToken: s.RefreshToken(ctx) != "",
	}
	if exp, ok := s.AccessExpiry(ctx); ok {
		st.ExpiresAt = &exp
		st.Expired = !s.clock.Now().Before(exp)
	}
	return st
}

// TokenExpiry extracts the exp claim of a JWT without verifying it.
func TokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Session) ensureLoaded(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}

	s.access = s.read(ctx, AccessTokenKey)
	s.refresh = s.read(ctx, RefreshTokenKey)
	s.loaded = true
}

func (s *Session) read(ctx context.Context, key string) string {
	v, err := s.store.Get(ctx, key)
	if err != nil {
		if !storage.IsNotFound(err) {
			s.logger.Warn("failed to read persisted token", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	return string(v)
}
