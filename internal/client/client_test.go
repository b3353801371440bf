// ABOUTME: Tests for the MyCask identity API client
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/markalston/mycask/cli/internal/gateway"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newTestClient(url string, token string) *Client {
	return New(gateway.New(url, staticToken(token)))
}

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("expected path /auth/login, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		values, _ := url.ParseQuery(string(body))
		if values.Get("username") != "a@b.com" {
			t.Errorf("expected email sent as username, got %q", values.Get("username"))
		}
		if values.Get("password") != "Abcdef1!" {
			t.Errorf("unexpected password %q", values.Get("password"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "acc", RefreshToken: "ref", TokenType: "bearer"})
	}))
	defer server.Close()

	c := newTestClient(server.URL, "")
	pair, err := c.Login(context.Background(), "a@b.com", "Abcdef1!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken != "acc" || pair.RefreshToken != "ref" {
		t.Errorf("unexpected pair %+v", pair)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
	}))
	defer server.Close()

	c := newTestClient(server.URL, "")
	_, err := c.Login(context.Background(), "a@b.com", "wrong")

	gwErr, ok := gateway.AsError(err)
	if !ok {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if gwErr.Status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", gwErr.Status)
	}
	if gwErr.Detail != "Incorrect email or password" {
		t.Errorf("unexpected detail %q", gwErr.Detail)
	}
}

func TestRegister_OmitsEmptyOptionalFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("expected path /auth/register, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected JSON content type, got %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("invalid body: %v", err)
		}
		for _, key := range []string{"first_name", "last_name"} {
			if _, present := body[key]; present {
				t.Errorf("expected %s to be omitted, body %v", key, body)
			}
		}
		if body["username"] != "caskfan" {
			t.Errorf("expected username caskfan, got %v", body["username"])
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":7,"email":"a@b.com","username":"caskfan","first_name":null,"last_name":null,"created_at":"2025-03-01T10:20:30.123456"}`)
	}))
	defer server.Close()

	c := newTestClient(server.URL, "")
	user, err := c.Register(context.Background(), RegisterInput{
		Email:    "a@b.com",
		Password: "Abcdef1!",
		Username: "caskfan",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("expected id 7, got %d", user.ID)
	}
	if user.FirstName != nil {
		t.Errorf("expected nil first name, got %q", *user.FirstName)
	}
	if user.CreatedAt.Year() != 2025 || user.CreatedAt.Month() != time.March {
		t.Errorf("unexpected created_at %v", user.CreatedAt)
	}
	if !user.UpdatedAt.IsZero() {
		t.Errorf("expected zero updated_at, got %v", user.UpdatedAt)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	}))
	defer server.Close()

	c := newTestClient(server.URL, "")
	_, err := c.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "Abcdef1!"})
	if gateway.Detail(err) != "Email already registered" {
		t.Errorf("expected detail passed through, got %v", err)
	}
}

func TestCurrentUser_UsesGatewayToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			t.Errorf("expected path /users/me, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer stored-token" {
			t.Errorf("expected stored bearer token, got %q", got)
		}
		io.WriteString(w, `{"id":1,"email":"a@b.com","username":null,"first_name":"Ada","last_name":"Lovelace","created_at":"2025-03-01T10:20:30Z","updated_at":"2025-03-02T10:20:30Z"}`)
	}))
	defer server.Close()

	c := newTestClient(server.URL, "stored-token")
	user, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Errorf("expected email a@b.com, got %s", user.Email)
	}
	if user.DisplayName() != "Ada Lovelace" {
		t.Errorf("unexpected display name %q", user.DisplayName())
	}
}

func TestCurrentUser_ConnectionError(t *testing.T) {
	c := newTestClient("http://localhost:99999", "tok")
	_, err := c.CurrentUser(context.Background())
	if err == nil {
		t.Error("expected connection error, got nil")
	}
}

func TestRefresh_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/refresh" {
			t.Errorf("expected path /auth/refresh, got %s", r.URL.Path)
		}
		var body refreshRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.RefreshToken != "old-refresh" {
			t.Errorf("expected old-refresh, got %q", body.RefreshToken)
		}
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "new-acc", RefreshToken: "new-ref"})
	}))
	defer server.Close()

	c := newTestClient(server.URL, "")
	pair, err := c.Refresh(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken != "new-acc" || pair.RefreshToken != "new-ref" {
		t.Errorf("unexpected pair %+v", pair)
	}
}

func TestHealth_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected path /health, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
	}))
	defer server.Close()

	c := newTestClient(server.URL, "")
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
}

func TestUserDisplayNameFallbacks(t *testing.T) {
	name := "caskfan"
	first := "Ada"

	tests := []struct {
		user User
		want string
	}{
		{User{Email: "a@b.com"}, "a@b.com"},
		{User{Email: "a@b.com", Username: &name}, "caskfan"},
		{User{Email: "a@b.com", Username: &name, FirstName: &first}, "Ada"},
	}
	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestTimestampLayouts(t *testing.T) {
	for _, raw := range []string{
		`"2025-03-01T10:20:30Z"`,
		`"2025-03-01T10:20:30.5+02:00"`,
		`"2025-03-01T10:20:30"`,
		`"2025-03-01 10:20:30.123"`,
	} {
		var ts Timestamp
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Errorf("failed to parse %s: %v", raw, err)
		}
		if ts.Year() != 2025 {
			t.Errorf("unexpected year for %s: %v", raw, ts.Time)
		}
	}

	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	claims := jwt.MapClaims{
		"sub":  "a@b.com",
		"type": "access",
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	info, err := InspectToken(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Subject != "a@b.com" {
		t.Errorf("expected subject a@b.com, got %q", info.Subject)
	}
	if info.Type != "access" {
		t.Errorf("expected type access, got %q", info.Type)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, info.ExpiresAt)
	}
	if info.Expired(time.Now()) {
		t.Error("expected token to be live")
	}
	if !info.Expired(exp.Add(time.Second)) {
		t.Error("expected token to be expired after exp")
	}
}

func TestInspectToken_Opaque(t *testing.T) {
	_, err := InspectToken("not-a-jwt")
	if !errors.Is(err, ErrOpaqueToken) {
		t.Errorf("expected ErrOpaqueToken, got %v", err)
	}
}
