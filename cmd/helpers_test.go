// ABOUTME: Shared fixtures for command tests
// ABOUTME: Builds an app against an httptest backend with an isolated config dir

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/markalston/mycask/cli/internal/credstore"
)

const (
	testAccess  = "access-1"
	testRefresh = "refresh-1"
)

// fakeBackend mimics the identity service endpoints the CLI calls
type fakeBackend struct {
	loginStatus    int
	loginDetail    string
	registerStatus int
	registerDetail string
	refreshStatus  int
	accessToken    string

	calls atomic.Int32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		loginStatus:    http.StatusOK,
		registerStatus: http.StatusCreated,
		refreshStatus:  http.StatusOK,
		accessToken:    testAccess,
	}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/health":
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})

	case "/auth/login":
		if f.loginStatus != http.StatusOK {
			w.WriteHeader(f.loginStatus)
			json.NewEncoder(w).Encode(map[string]string{"detail": f.loginDetail})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  f.accessToken,
			"refresh_token": testRefresh,
			"token_type":    "bearer",
		})

	case "/auth/register":
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if f.registerStatus != http.StatusCreated {
			w.WriteHeader(f.registerStatus)
			json.NewEncoder(w).Encode(map[string]string{"detail": f.registerDetail})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":         7,
			"email":      body["email"],
			"username":   body["username"],
			"created_at": "2024-05-01T09:30:00",
		})

	case "/auth/refresh":
		if f.refreshStatus != http.StatusOK {
			w.WriteHeader(f.refreshStatus)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid refresh token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-2",
			"refresh_token": "refresh-2",
			"token_type":    "bearer",
		})

	case "/users/me":
		if r.Header.Get("Authorization") != "Bearer "+f.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":         7,
			"email":      "ada@example.com",
			"username":   "ada",
			"first_name": "Ada",
			"last_name":  "Lovelace",
			"created_at": "2024-05-01T09:30:00",
			"updated_at": "2024-05-02T10:00:00",
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not Found"})
	}
}

// newTestApp wires an app against handler with a private config dir
func newTestApp(t *testing.T, handler http.Handler) (*app, string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newTestAppAt(t, server.URL)
}

func newTestAppAt(t *testing.T, backend string) (*app, string) {
	t.Helper()

	configDir := t.TempDir()
	t.Chdir(t.TempDir())
	t.Setenv("MYCASK_CONFIG_DIR", configDir)
	t.Setenv("MYCASK_ALL_PROXY", "")
	t.Setenv("MYCASK_HTTP_TIMEOUT", "5s")

	apiURL = backend
	t.Cleanup(func() { apiURL = "" })

	a, err := newApp()
	if err != nil {
		t.Fatalf("newApp() error: %v", err)
	}
	t.Cleanup(a.Close)
	return a, configDir
}

// seedCredentials writes a stored pair as a previous login would
func seedCredentials(t *testing.T, configDir string, pair credstore.Pair) {
	t.Helper()
	if err := credstore.NewFileStore(configDir).Save(pair); err != nil {
		t.Fatalf("seeding credentials: %v", err)
	}
}

func loadCredentials(t *testing.T, configDir string) (credstore.Pair, bool) {
	t.Helper()
	pair, ok, err := credstore.NewFileStore(configDir).Load()
	if err != nil {
		t.Fatalf("loading credentials: %v", err)
	}
	return pair, ok
}

func credentialsPath(configDir string) string {
	return filepath.Join(configDir, "credentials.json")
}

func unreachableURL() string {
	u := url.URL{Scheme: "http", Host: "127.0.0.1:1"}
	return u.String()
}
