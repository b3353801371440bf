// ABOUTME: Login and signup form models built on the submission controller
// ABOUTME: Own field values, client-side checks and server error mapping

package submission

import (
	"context"
	"net/http"

	"github.com/markalston/mycask/cli/internal/client"
	"github.com/markalston/mycask/cli/internal/gateway"
	"github.com/markalston/mycask/cli/internal/validation"
)

// Server messages the signup form recognizes
const (
	MsgEmailRegistered = "Email already registered"
	MsgUsernameTaken   = "Username already taken"
)

// Authenticator logs a user in; the session controller satisfies it
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
}

// LoginForm holds the login inputs and their submission state
type LoginForm struct {
	Email    string
	Password string

	auth Authenticator
	ctrl *Controller
}

// NewLoginForm creates a login form. Rejected credentials flag
// FieldCredentials; other failures flag nothing.
func NewLoginForm(auth Authenticator, opts ...Option) *LoginForm {
	opts = append([]Option{WithErrorMapper(loginErrorFields)}, opts...)
	return &LoginForm{auth: auth, ctrl: NewController(opts...)}
}

func loginErrorFields(err error) []Field {
	gwErr, ok := gateway.AsError(err)
	if !ok || gwErr.Kind != gateway.KindProtocol {
		return nil
	}
	if gwErr.Status == http.StatusUnauthorized || gwErr.Status == http.StatusBadRequest {
		return []Field{FieldCredentials}
	}
	return nil
}

// Validate checks the inputs without touching the network
func (f *LoginForm) Validate() error {
	var problems []string
	if !validation.ValidEmail(f.Email) {
		problems = append(problems, "Enter a valid email address.")
	}
	if f.Password == "" {
		problems = append(problems, "Password is required.")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Submit logs in with the current inputs
func (f *LoginForm) Submit(ctx context.Context) (bool, error) {
	email, password := f.Email, f.Password
	return f.ctrl.Submit(ctx, f.Validate, func(ctx context.Context) error {
		return f.auth.Login(ctx, email, password)
	})
}

// Status returns the form's submission status
func (f *LoginForm) Status() Status {
	return f.ctrl.Status()
}

// Registrar creates accounts; the API client satisfies it
type Registrar interface {
	Register(ctx context.Context, input client.RegisterInput) (*client.User, error)
}

// SignupForm holds the registration inputs and their submission state
type SignupForm struct {
	Email           string
	Username        string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string

	api  Registrar
	ctrl *Controller

	registered *client.User
}

// NewSignupForm creates a signup form that flags duplicate email and
// username responses on their fields
func NewSignupForm(api Registrar, opts ...Option) *SignupForm {
	mapper := DetailMatcher(map[string]Field{
		MsgEmailRegistered: FieldEmail,
		MsgUsernameTaken:   FieldUsername,
	})
	opts = append([]Option{WithErrorMapper(mapper)}, opts...)
	return &SignupForm{api: api, ctrl: NewController(opts...)}
}

// PasswordsMatch reports whether the confirmation equals the password
func (f *SignupForm) PasswordsMatch() bool {
	return f.Password == f.ConfirmPassword
}

// CanSubmit reports whether the inputs pass client-side checks
func (f *SignupForm) CanSubmit() bool {
	return f.Validate() == nil
}

// Validate checks the inputs without touching the network
func (f *SignupForm) Validate() error {
	var problems []string
	if !validation.ValidEmail(f.Email) {
		problems = append(problems, "Enter a valid email address.")
	}
	if !validation.MeetsStrengthPolicy(f.Password) {
		problems = append(problems, "Password does not meet the requirements.")
	}
	if !f.PasswordsMatch() {
		problems = append(problems, "Passwords must match.")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Submit registers the account with the current inputs
func (f *SignupForm) Submit(ctx context.Context) (bool, error) {
	input := client.RegisterInput{
		Email:     f.Email,
		Password:  f.Password,
		Username:  f.Username,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	}
	return f.ctrl.Submit(ctx, f.Validate, func(ctx context.Context) error {
		user, err := f.api.Register(ctx, input)
		if err != nil {
			return err
		}
		f.registered = user
		return nil
	})
}

// Registered returns the account created by the last successful submit
func (f *SignupForm) Registered() *client.User {
	return f.registered
}

// Status returns the form's submission status
func (f *SignupForm) Status() Status {
	return f.ctrl.Status()
}
