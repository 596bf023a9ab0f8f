package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/store"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

const (
	keyToken    = "token"
	keyUser     = "user"
	keyReturnTo = "return_to"
)

// Authenticator exchanges credentials for a token and identity
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
}

// EventKind identifies a session change
type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
	// EventExpired is the redirect-to-login signal raised by an implicit logout
	EventExpired EventKind = "expired"
)

// Event is delivered to subscribers after the session changes
type Event struct {
	Kind       EventKind
	User       *models.UserIdentity
	RedirectTo string
}

// Manager owns the acting identity. All mutation goes through Login, Logout and
// Rejected; every other method is a read.
type Manager struct {
	mu         sync.RWMutex
	token      string
	user       *models.UserIdentity
	generation uint64

	store   store.Store
	auth    Authenticator
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	ready     chan struct{}
	readyOnce sync.Once

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l.With().Str("component", "session").Logger() }
}

// WithMetrics sets the collectors
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithClock overrides time.Now for expiry checks
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an anonymous, not yet restored session
func NewManager(st store.Store, auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		store:   st,
		auth:    auth,
		logger:  log.Logger.With().Str("component", "session").Logger(),
		metrics: metrics.Noop(),
		now:     time.Now,
		ready:   make(chan struct{}),
		subs:    make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads a persisted token and user. Only a complete, unexpired pair is
// accepted; anything else is cleared and the session stays anonymous. The session is
// marked ready whatever the outcome.
func (m *Manager) Restore(ctx context.Context) error {
	defer m.markReady()

	token, tokenErr := m.store.Get(ctx, keyToken)
	rawUser, userErr := m.store.Get(ctx, keyUser)

	for _, err := range []error{tokenErr, userErr} {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to read persisted session: %w", err)
		}
	}

	if tokenErr != nil || userErr != nil {
		if tokenErr == nil || userErr == nil {
			m.logger.Warn().Msg("Discarding incomplete persisted session")
			return m.clearPersisted(ctx)
		}
		return nil
	}

	var user models.UserIdentity
	if err := json.Unmarshal(rawUser, &user); err != nil || !user.Valid() || len(token) == 0 {
		m.logger.Warn().Msg("Discarding unreadable persisted session")
		return m.clearPersisted(ctx)
	}

	if tokenExpired(string(token), m.now()) {
		m.logger.Info().Int64("user_id", user.ID).Msg("Persisted session has expired")
		return m.clearPersisted(ctx)
	}

	m.mu.Lock()
	m.token = string(token)
	m.user = &user
	m.generation++
	m.mu.Unlock()

	m.logger.Debug().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("Session restored")
	return nil
}

// Ready is closed once Restore has finished
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Restored reports whether Restore has finished
func (m *Manager) Restored() bool {
	select {
	case <-m.ready:
		return true
	default:
		return false
	}
}

func (m *Manager) markReady() {
	m.readyOnce.Do(func() { close(m.ready) })
}

// Login authenticates and persists the new session. On failure the previous
// session, if any, is left as it was.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.UserIdentity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperrors.NewAuthError(apperrors.AuthReasonInvalidCredentials, "username and password are required", nil)
	}

	resp, err := m.auth.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		if apperrors.IsAuth(err) {
			return nil, err
		}
		return nil, apperrors.NewAuthError(apperrors.AuthReasonNetwork, "login request failed", err)
	}
	if resp == nil || resp.Token == "" || !resp.User.Valid() {
		return nil, apperrors.NewAuthError(apperrors.AuthReasonServer, "login response is missing the token or user", nil)
	}

	user := resp.User
	rawUser, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.SetMulti(ctx, map[string][]byte{
		keyToken: []byte(resp.Token),
		keyUser:  rawUser,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.token = resp.Token
	m.user = &user
	m.generation++
	m.mu.Unlock()

	m.markReady()
	m.logger.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("Logged in")

	out := user
	m.publish(Event{Kind: EventLogin, User: &out})
	return &out, nil
}

// Logout clears the session and its persisted pair. It is safe to call repeatedly.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	was := m.user
	m.token = ""
	m.user = nil
	m.generation++
	m.mu.Unlock()

	err := m.clearPersisted(ctx)
	if was != nil {
		m.logger.Info().Int64("user_id", was.ID).Msg("Logged out")
		m.publish(Event{Kind: EventLogout, User: was})
	}
	return err
}

// Credential returns the current token and the generation it belongs to. The
// generation changes on every login and logout.
func (m *Manager) Credential() (string, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.generation
}

// Rejected handles a response that refused the credential of the given generation.
// Only the first rejection of the live generation ends the session and raises
// EventExpired; later or stale rejections are absorbed. It reports whether this call
// ended the session.
func (m *Manager) Rejected(ctx context.Context, generation uint64) bool {
	m.metrics.AuthRejections.Inc()

	m.mu.Lock()
	if generation != m.generation || m.token == "" {
		m.mu.Unlock()
		m.logger.Debug().Uint64("generation", generation).Msg("Ignoring rejection for a superseded credential")
		return false
	}
	was := m.user
	m.token = ""
	m.user = nil
	m.generation++
	m.mu.Unlock()

	if err := m.clearPersisted(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Failed to clear persisted session after rejection")
	}
	m.metrics.ImplicitLogouts.Inc()
	m.logger.Warn().Int64("user_id", was.ID).Msg("Session rejected by server, logging out")
	m.publish(Event{Kind: EventExpired, User: was, RedirectTo: LoginPath})
	return true
}

// IsAuthenticated reports whether a complete session is present
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

// CurrentUser returns a copy of the acting identity
func (m *Manager) CurrentUser() (models.UserIdentity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return models.UserIdentity{}, false
	}
	return *m.user, true
}

// CurrentRole returns the acting role
func (m *Manager) CurrentRole() (models.Role, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return "", false
	}
	return m.user.Role, true
}

// HasRole reports whether the acting role is r
func (m *Manager) HasRole(r models.Role) bool {
	role, ok := m.CurrentRole()
	return ok && role == r
}

// HasAnyRole reports whether the acting role is one of rs
func (m *Manager) HasAnyRole(rs ...models.Role) bool {
	role, ok := m.CurrentRole()
	if !ok {
		return false
	}
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// RememberLocation persists the location a denied navigation asked for
func (m *Manager) RememberLocation(ctx context.Context, location string) error {
	if err := m.store.SetMulti(ctx, map[string][]byte{keyReturnTo: []byte(location)}); err != nil {
		return fmt.Errorf("failed to remember location: %w", err)
	}
	return nil
}

// TakeRememberedLocation returns and forgets the remembered location
func (m *Manager) TakeRememberedLocation(ctx context.Context) (string, error) {
	v, err := m.store.Get(ctx, keyReturnTo)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read remembered location: %w", err)
	}
	if err := m.store.Delete(ctx, keyReturnTo); err != nil {
		return "", fmt.Errorf("failed to forget remembered location: %w", err)
	}
	return string(v), nil
}

// Subscribe registers fn for session events and returns a function that removes it
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) publish(ev Event) {
	m.subMu.Lock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (m *Manager) clearPersisted(ctx context.Context) error {
	if err := m.store.Delete(ctx, keyToken, keyUser); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// LoginPath is where unauthenticated navigation is sent
const LoginPath = "/login"
