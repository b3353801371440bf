// ABOUTME: Session controller owning the authenticated-user state machine
// ABOUTME: Bootstraps from stored tokens and exposes login/logout to consumers

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/markalston/mycask/cli/internal/client"
	"github.com/markalston/mycask/cli/internal/credstore"
	"golang.org/x/sync/singleflight"
)

// ErrNotAuthenticated is returned when a user is required but none is signed in
var ErrNotAuthenticated = errors.New("not logged in")

// State is the session lifecycle state
type State int

const (
	StateBootstrapping State = iota
	StateUnauthenticated
	StateLoggingIn
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoggingIn:
		return "logging_in"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent read of the session for consumers
type Snapshot struct {
	State State
	User  *client.User
}

// IsAuthenticated is derived from State, never stored separately
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated
}

// IsLoading reports whether a bootstrap or login is in progress
func (s Snapshot) IsLoading() bool {
	return s.State == StateBootstrapping || s.State == StateLoggingIn
}

// AuthService is the subset of the API client the controller needs
type AuthService interface {
	Login(ctx context.Context, email, password string) (credstore.Pair, error)
	CurrentUser(ctx context.Context) (*client.User, error)
}

// Controller owns the process-wide session. Create one with New at startup,
// pass it to consumers, and Close it at exit.
type Controller struct {
	auth  AuthService
	store credstore.Store

	mu        sync.RWMutex
	state     State
	user      *client.User
	listeners map[int]func(Snapshot)
	nextID    int

	bootstrap singleflight.Group
}

// New creates a controller in the Bootstrapping state. store must be the
// same store the gateway reads bearer tokens from.
func New(auth AuthService, store credstore.Store) *Controller {
	return &Controller{
		auth:      auth,
		store:     store,
		state:     StateBootstrapping,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state and user
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{State: c.state, User: c.user}
}

// User returns the signed-in user or ErrNotAuthenticated
func (c *Controller) User() (*client.User, error) {
	snap := c.Snapshot()
	if !snap.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return snap.User, nil
}

// Subscribe registers fn to be called after every state change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Bootstrap restores the session from stored credentials. Any failure to
// fetch the user clears the stored pair and leaves the session
// unauthenticated; the error is logged, not returned. Concurrent callers
// share a single bootstrap.
func (c *Controller) Bootstrap(ctx context.Context) Snapshot {
	c.bootstrap.Do("bootstrap", func() (any, error) {
		c.runBootstrap(ctx)
		return nil, nil
	})
	return c.Snapshot()
}

func (c *Controller) runBootstrap(ctx context.Context) {
	c.set(StateBootstrapping, nil)

	pair, ok, err := c.store.Load()
	if err != nil {
		slog.Warn("Failed to read stored credentials", "error", err)
	}
	if !ok || pair.AccessToken == "" {
		c.set(StateUnauthenticated, nil)
		return
	}

	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		slog.Info("Stored session rejected, signing out", "error", err)
		c.clearStore()
		c.set(StateUnauthenticated, nil)
		return
	}

	slog.Debug("Session restored", "user_id", user.ID)
	c.set(StateAuthenticated, user)
}

// Login exchanges credentials for a token pair, persists it and loads the
// user. On any failure the session ends unauthenticated and the error is
// returned unchanged for the caller to display.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.set(StateLoggingIn, nil)

	pair, err := c.auth.Login(ctx, email, password)
	if err != nil {
		c.set(StateUnauthenticated, nil)
		return err
	}

	if err := c.store.Save(pair); err != nil {
		if errors.Is(err, credstore.ErrIncompletePair) {
			c.set(StateUnauthenticated, nil)
			return fmt.Errorf("invalid login response: %w", err)
		}
		slog.Warn("Credentials not persisted, session will end with this process", "error", err)
	}

	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		c.clearStore()
		c.set(StateUnauthenticated, nil)
		return err
	}

	slog.Info("Logged in", "user_id", user.ID)
	c.set(StateAuthenticated, user)
	return nil
}

// Logout clears stored credentials and demotes the session regardless of
// its current state. A storage error is returned after the demotion.
func (c *Controller) Logout() error {
	err := c.store.Clear()
	if err != nil {
		slog.Warn("Failed to clear stored credentials", "error", err)
	}
	c.set(StateUnauthenticated, nil)
	return err
}

// Close drops all subscriptions
func (c *Controller) Close() {
	c.mu.Lock()
	c.listeners = make(map[int]func(Snapshot))
	c.mu.Unlock()
}

func (c *Controller) clearStore() {
	if err := c.store.Clear(); err != nil {
		slog.Warn("Failed to clear stored credentials", "error", err)
	}
}

// set transitions the state and notifies listeners outside the lock
func (c *Controller) set(state State, user *client.User) {
	c.mu.Lock()
	c.state = state
	c.user = user
	snap := Snapshot{State: state, User: user}
	listeners := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
