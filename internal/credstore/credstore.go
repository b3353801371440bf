// ABOUTME: Persists the access/refresh token pair for the CLI session
// ABOUTME: File-backed store in the XDG config directory with an in-memory fallback

package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrIncompletePair is returned when saving a pair with only one token set
var ErrIncompletePair = errors.New("credential pair must carry both tokens")

// Pair is the access/refresh token pair issued by the identity service.
// Tokens are opaque to the store.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether neither token is set
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

func (p Pair) complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Store saves, loads and clears the credential pair
type Store interface {
	Save(p Pair) error
	Load() (Pair, bool, error)
	Clear() error
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mycask")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mycask")
}

// FileStore keeps the pair in credentials.json under configDir
type FileStore struct {
	configDir string
}

// NewFileStore creates a file-backed store rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// Path returns the location of the credentials file
func (fs *FileStore) Path() string {
	return filepath.Join(fs.configDir, "credentials.json")
}

// Save replaces the stored pair
func (fs *FileStore) Save(p Pair) error {
	if !p.complete() {
		return ErrIncompletePair
	}
	if fs.configDir == "" {
		return errors.New("no config directory available")
	}
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so a reader never sees half a pair
	tmp := fs.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, fs.Path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Load reads the stored pair. A missing, unreadable-as-JSON or
// half-populated file is reported as no pair.
func (fs *FileStore) Load() (Pair, bool, error) {
	if fs.configDir == "" {
		return Pair{}, false, nil
	}
	data, err := os.ReadFile(fs.Path())
	if os.IsNotExist(err) {
		return Pair{}, false, nil
	}
	if err != nil {
		return Pair{}, false, err
	}

	var p Pair
	if err := json.Unmarshal(data, &p); err != nil {
		return Pair{}, false, nil
	}
	if !p.complete() {
		return Pair{}, false, nil
	}
	return p, true, nil
}

// Clear removes the credentials file
func (fs *FileStore) Clear() error {
	if fs.configDir == "" {
		return nil
	}
	if err := os.Remove(fs.Path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Memory is a process-local store
type Memory struct {
	mu   sync.RWMutex
	pair Pair
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(p Pair) error {
	if !p.complete() {
		return ErrIncompletePair
	}
	m.mu.Lock()
	m.pair = p
	m.mu.Unlock()
	return nil
}

func (m *Memory) Load() (Pair, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, m.pair.complete(), nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.pair = Pair{}
	m.mu.Unlock()
	return nil
}

// Layered fronts a persistent store with memory. When persistence fails the
// pair stays available for the rest of the process and Save reports the
// failure so callers can warn that the session will not survive a restart.
type Layered struct {
	persistent Store
	mem        *Memory

	mu       sync.Mutex
	degraded bool
}

// NewLayered wraps persistent with an in-memory cache
func NewLayered(persistent Store) *Layered {
	return &Layered{persistent: persistent, mem: NewMemory()}
}

// Save writes to memory first and then to the persistent store
func (l *Layered) Save(p Pair) error {
	if err := l.mem.Save(p); err != nil {
		return err
	}

	err := l.persistent.Save(p)
	l.mu.Lock()
	l.degraded = err != nil
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("credentials kept in memory only: %w", err)
	}
	return nil
}

// Load prefers the in-memory pair and falls back to the persistent store
func (l *Layered) Load() (Pair, bool, error) {
	if p, ok, _ := l.mem.Load(); ok {
		return p, true, nil
	}

	l.mu.Lock()
	degraded := l.degraded
	l.mu.Unlock()
	if degraded {
		return Pair{}, false, nil
	}

	p, ok, err := l.persistent.Load()
	if err != nil || !ok {
		return Pair{}, false, err
	}
	l.mem.Save(p)
	return p, true, nil
}

// Clear empties both layers. The memory layer is always cleared even if the
// persistent store fails, and a stale persistent pair is never read back.
func (l *Layered) Clear() error {
	l.mem.Clear()

	err := l.persistent.Clear()
	l.mu.Lock()
	l.degraded = err != nil
	l.mu.Unlock()
	return err
}

// Degraded reports whether the last Save failed to persist
func (l *Layered) Degraded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

// AccessToken returns the current access token, or "" when logged out
func (l *Layered) AccessToken() string {
	p, ok, err := l.Load()
	if err != nil || !ok {
		return ""
	}
	return p.AccessToken
}
