// ABOUTME: Normalized error shape for every network-origin failure
// ABOUTME: Extracts the server's detail message from non-2xx responses

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Kind classifies where a request failed
type Kind int

const (
	// KindTransport means no response was received
	KindTransport Kind = iota + 1
	// KindProtocol means the server answered with a non-2xx status
	KindProtocol
	// KindDecode means a 2xx response body could not be decoded
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// DefaultDetail is used when an error response carries no parseable body
const DefaultDetail = "Request failed"

// Error is the single failure shape returned by the gateway.
// Status is zero when no HTTP response was received.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasStatus reports whether the failure carries an HTTP status code
func (e *Error) HasStatus() bool {
	return e.Status != 0
}

// AsError extracts a *Error from err's chain
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// Detail returns the normalized detail for err, or err.Error() for errors
// that did not come from the gateway
func Detail(err error) string {
	if err == nil {
		return ""
	}
	if gwErr, ok := AsError(err); ok {
		return gwErr.Detail
	}
	return err.Error()
}

// transportError converts context and dial errors to user-friendly messages
func (g *Gateway) transportError(ctx context.Context, err error) *Error {
	detail := fmt.Sprintf("cannot connect to backend at %s: %v", g.baseURL, err)
	if ctx.Err() == context.Canceled {
		detail = "request canceled"
	}
	if ctx.Err() == context.DeadlineExceeded {
		detail = "request timed out"
	}
	return &Error{Kind: KindTransport, Detail: detail, Err: err}
}

// errorBody mirrors the identity service's error payload. Detail is either a
// message string or a list of field validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Msg string `json:"msg"`
}

// protocolError parses an error response into a normalized error
func protocolError(resp *http.Response) *Error {
	e := &Error{Kind: KindProtocol, Status: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.Detail = DefaultDetail
		e.Err = err
		return e
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		e.Detail = DefaultDetail
		return e
	}

	e.Detail = parseDetail(body.Detail)
	if e.Detail == "" {
		e.Detail = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
	}
	return e
}

func parseDetail(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}

	var fields []fieldError
	if err := json.Unmarshal(raw, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg != "" {
				msgs = append(msgs, f.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(raw)
}
