// ABOUTME: HTTP request gateway for the MyCask identity API
// ABOUTME: Composes URLs, injects bearer auth and normalizes every failure

package gateway

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
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// TokenSource yields the current access token, or "" when there is none
type TokenSource interface {
	AccessToken() string
}

// Gateway issues HTTP calls against the configured base URL
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// Option configures a Gateway
type Option func(*Gateway)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.httpClient.Timeout = d
	}
}

// New creates a gateway. tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL returns the configured API base URL
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Request describes one API call. When Form is non-nil the body is sent
// form-encoded and Body is ignored; otherwise Body is JSON-encoded when set.
type Request struct {
	Method  string
	Body    any
	Form    url.Values
	Headers map[string]string
}

// Do performs the request and decodes a 2xx JSON response into T.
// Exactly one HTTP call is made; nothing is retried or cached.
func Do[T any](ctx context.Context, g *Gateway, path string, r Request) (T, error) {
	var out T

	resp, err := g.send(ctx, path, r)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := protocolError(resp)
		slog.Debug("API request failed", "method", r.method(), "path", path, "status", resp.StatusCode, "detail", gwErr.Detail)
		return out, gwErr
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, &Error{Kind: KindDecode, Status: resp.StatusCode, Detail: "invalid response body", Err: err}
	}

	slog.Debug("API request completed", "method", r.method(), "path", path, "status", resp.StatusCode)
	return out, nil
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

func (g *Gateway) send(ctx context.Context, path string, r Request) (*http.Response, error) {
	body, err := r.encodeBody()
	if err != nil {
		return nil, &Error{Kind: KindTransport, Detail: fmt.Sprintf("failed to encode request: %v", err), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, r.method(), g.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Detail: fmt.Sprintf("failed to create request: %v", err), Err: err}
	}
	for k, v := range g.headers(r) {
		req.Header.Set(k, v)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, g.transportError(ctx, err)
	}
	return resp, nil
}

func (r Request) encodeBody() (io.Reader, error) {
	if r.Form != nil {
		return strings.NewReader(r.Form.Encode()), nil
	}
	if r.Body == nil {
		return nil, nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// headers builds the default header set and applies caller overrides
func (g *Gateway) headers(r Request) map[string]string {
	h := make(map[string]string, 2+len(r.Headers))
	if r.Form != nil {
		h["Content-Type"] = contentTypeForm
	} else {
		h["Content-Type"] = contentTypeJSON
		if g.tokens != nil {
			if token := g.tokens.AccessToken(); token != "" {
				h["Authorization"] = "Bearer " + token
			}
		}
	}
	for k, v := range r.Headers {
		h[http.CanonicalHeaderKey(k)] = v
	}
	return h
}
