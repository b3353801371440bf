// ABOUTME: Per-form submission state machine guarding against duplicate submits
// ABOUTME: Tracks Idle/Submitting/Succeeded/Failed and maps errors to field flags

package submission

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/markalston/mycask/cli/internal/gateway"
	"golang.org/x/sync/semaphore"
)

// State is the submission lifecycle state
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureKind classifies why a submission failed
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTransport
	FailureProtocol
	FailureDecode
	FailureOther
)

func failureKind(err error) FailureKind {
	gwErr, ok := gateway.AsError(err)
	if !ok {
		return FailureOther
	}
	switch gwErr.Kind {
	case gateway.KindTransport:
		return FailureTransport
	case gateway.KindProtocol:
		return FailureProtocol
	case gateway.KindDecode:
		return FailureDecode
	default:
		return FailureOther
	}
}

// Field names a form input that can carry an error flag
type Field string

const (
	FieldEmail       Field = "email"
	FieldUsername    Field = "username"
	FieldCredentials Field = "credentials"
)

// ErrorMapper picks the fields to flag for a failed submission
type ErrorMapper func(err error) []Field

// ValidationError lists the client-side problems that blocked a submission
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// IsValidation reports whether err is a client-side validation failure
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// Status is a consistent read of a controller
type Status struct {
	State   State
	Failure FailureKind
	Err     error
	Flags   map[Field]bool
}

// Flagged reports whether f carries an error flag
func (s Status) Flagged(f Field) bool {
	return s.Flags[f]
}

// Busy reports whether a submission is in flight
func (s Status) Busy() bool {
	return s.State == StateSubmitting
}

// Controller runs at most one submission at a time for a single form
type Controller struct {
	inflight  *semaphore.Weighted
	mapErr    ErrorMapper
	onSuccess func()

	mu      sync.Mutex
	state   State
	failure FailureKind
	err     error
	flags   map[Field]bool
}

// Option configures a Controller
type Option func(*Controller)

// WithErrorMapper sets how failures translate into field flags
func WithErrorMapper(m ErrorMapper) Option {
	return func(c *Controller) {
		c.mapErr = m
	}
}

// OnSuccess registers a callback fired once after each successful submission.
// Navigation timing belongs to the caller.
func OnSuccess(fn func()) Option {
	return func(c *Controller) {
		c.onSuccess = fn
	}
}

// NewController creates an idle controller
func NewController(opts ...Option) *Controller {
	c := &Controller{
		inflight: semaphore.NewWeighted(1),
		flags:    map[Field]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current state, failure and flags
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	flags := make(map[Field]bool, len(c.flags))
	for f, v := range c.flags {
		flags[f] = v
	}
	return Status{State: c.state, Failure: c.failure, Err: c.err, Flags: flags}
}

// Submit validates and then runs one submission. It returns started=false
// without doing anything when another submission from this controller is in
// flight, and started=false with the validation error when validate fails.
// run's error is returned unchanged.
func (c *Controller) Submit(ctx context.Context, validate func() error, run func(ctx context.Context) error) (bool, error) {
	if !c.inflight.TryAcquire(1) {
		return false, nil
	}
	defer c.inflight.Release(1)

	if validate != nil {
		if err := validate(); err != nil {
			c.transition(StateIdle, nil, nil)
			return false, err
		}
	}

	c.transition(StateSubmitting, nil, nil)

	if err := run(ctx); err != nil {
		var fields []Field
		if c.mapErr != nil {
			fields = c.mapErr(err)
		}
		c.transition(StateFailed, err, fields)
		return true, err
	}

	c.transition(StateSucceeded, nil, nil)
	if c.onSuccess != nil {
		c.onSuccess()
	}
	return true, nil
}

// Reset returns the controller to Idle unless a submission is in flight
func (c *Controller) Reset() {
	if !c.inflight.TryAcquire(1) {
		return
	}
	defer c.inflight.Release(1)
	c.transition(StateIdle, nil, nil)
}

func (c *Controller) transition(state State, err error, fields []Field) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = state
	c.err = err
	c.failure = FailureNone
	if err != nil {
		c.failure = failureKind(err)
	}
	c.flags = make(map[Field]bool, len(fields))
	for _, f := range fields {
		c.flags[f] = true
	}
}

// DetailMatcher flags fields whose known server message appears in the
// normalized error detail
func DetailMatcher(known map[string]Field) ErrorMapper {
	return func(err error) []Field {
		detail := gateway.Detail(err)
		var fields []Field
		for msg, field := range known {
			if strings.Contains(detail, msg) {
				fields = append(fields, field)
			}
		}
		return fields
	}
}
