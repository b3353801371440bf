// ABOUTME: Typed client for the MyCask identity API
// ABOUTME: Shapes login, register, refresh and current-user calls over the gateway

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/markalston/mycask/cli/internal/credstore"
	"github.com/markalston/mycask/cli/internal/gateway"
)

// Client is the API client for the MyCask identity service
type Client struct {
	gw *gateway.Gateway
}

// New creates a client on top of the given gateway
func New(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.gw.BaseURL()
}

// User represents the /users/me and /auth/register response
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// DisplayName returns the best available human-readable name
func (u *User) DisplayName() string {
	first, last := deref(u.FirstName), deref(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case u.Username != nil && *u.Username != "":
		return *u.Username
	default:
		return u.Email
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TokenResponse represents the /auth/login and /auth/refresh response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// Pair returns the credential pair carried by the response
func (t TokenResponse) Pair() credstore.Pair {
	return credstore.Pair{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}

// RegisterInput represents a new account. Optional fields left empty are
// omitted from the request body.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HealthResponse represents the /health endpoint response
type HealthResponse struct {
	Status string `json:"status"`
}

// Login calls POST /auth/login with form-encoded credentials
func (c *Client) Login(ctx context.Context, email, password string) (credstore.Pair, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := gateway.Do[TokenResponse](ctx, c.gw, "/auth/login", gateway.Request{
		Method: http.MethodPost,
		Form:   form,
	})
	if err != nil {
		return credstore.Pair{}, err
	}
	return resp.Pair(), nil
}

// Register calls POST /auth/register
func (c *Client) Register(ctx context.Context, input RegisterInput) (*User, error) {
	user, err := gateway.Do[User](ctx, c.gw, "/auth/register", gateway.Request{
		Method: http.MethodPost,
		Body:   input,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser calls GET /users/me. The bearer token is attached by the gateway.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	user, err := gateway.Do[User](ctx, c.gw, "/users/me", gateway.Request{})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh calls POST /auth/refresh to exchange a refresh token for a new pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (credstore.Pair, error) {
	resp, err := gateway.Do[TokenResponse](ctx, c.gw, "/auth/refresh", gateway.Request{
		Method: http.MethodPost,
		Body:   refreshRequest{RefreshToken: refreshToken},
	})
	if err != nil {
		return credstore.Pair{}, err
	}
	return resp.Pair(), nil
}

// Health calls the /health endpoint
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	health, err := gateway.Do[HealthResponse](ctx, c.gw, "/health", gateway.Request{})
	if err != nil {
		return nil, err
	}
	return &health, nil
}
