// ABOUTME: Login screen as a bubbletea model
// ABOUTME: Wraps a huh form around the login submission with spinner and delayed navigation

package login

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/mycask/cli/internal/submission"
	"github.com/markalston/mycask/cli/internal/tui/icons"
	"github.com/markalston/mycask/cli/internal/tui/styles"
	"github.com/markalston/mycask/cli/internal/validation"
)

// SuccessDelay is how long the success message shows before navigating
const SuccessDelay = time.Second

// LoggedInMsg is sent SuccessDelay after a successful login
type LoggedInMsg struct{}

// SignupRequestedMsg is sent when the user asks to create an account
type SignupRequestedMsg struct{}

// submittedMsg carries the outcome of one submission
type submittedMsg struct {
	started bool
	err     error
}

// Screen is the login page
type Screen struct {
	ctx     context.Context
	form    *submission.LoginForm
	huhForm *huh.Form
	spinner spinner.Model

	submitting bool
	succeeded  bool
	notice     string
	width      int
}

// New creates a login screen. email prefills the email field.
func New(ctx context.Context, auth submission.Authenticator, email string) *Screen {
	s := &Screen{
		ctx:  ctx,
		form: submission.NewLoginForm(auth),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.SpinnerStyle),
		),
	}
	s.form.Email = email
	s.huhForm = s.createForm()
	return s
}

// SetNotice shows an informational line above the form
func (s *Screen) SetNotice(msg string) {
	s.notice = msg
}

func (s *Screen) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("you@example.com").
				Value(&s.form.Email).
				Validate(validateEmail),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&s.form.Password).
				Validate(validateRequired),
		).Title("Sign in to MyCask").
			Description("Enter your email and password"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (s *Screen) Init() tea.Cmd {
	return s.huhForm.Init()
}

// Update implements tea.Model
func (s *Screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width

	case tea.KeyMsg:
		if msg.String() == "ctrl+n" && !s.submitting && !s.succeeded {
			return s, func() tea.Msg { return SignupRequestedMsg{} }
		}

	case submittedMsg:
		return s.handleSubmitted(msg)

	case spinner.TickMsg:
		if !s.submitting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}

	// input is frozen while a submission is in flight or after success
	if s.submitting || s.succeeded {
		return s, nil
	}

	form, cmd := s.huhForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.huhForm = f
	}

	if s.huhForm.State == huh.StateCompleted {
		return s, s.startSubmit()
	}

	return s, cmd
}

// startSubmit marks the screen busy and runs the submission off the UI loop
func (s *Screen) startSubmit() tea.Cmd {
	s.submitting = true
	s.notice = ""
	return tea.Batch(s.spinner.Tick, s.submitCmd())
}

func (s *Screen) submitCmd() tea.Cmd {
	return func() tea.Msg {
		started, err := s.form.Submit(s.ctx)
		return submittedMsg{started: started, err: err}
	}
}

func (s *Screen) handleSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	if !msg.started && msg.err == nil {
		// another submission owns the guard; its result is still coming
		return s, nil
	}
	s.submitting = false

	if msg.err != nil {
		s.huhForm = s.createForm()
		return s, s.huhForm.Init()
	}

	s.succeeded = true
	return s, tea.Tick(SuccessDelay, func(time.Time) tea.Msg {
		return LoggedInMsg{}
	})
}

// Submitting reports whether a login is in flight
func (s *Screen) Submitting() bool {
	return s.submitting
}

// Succeeded reports whether the login went through
func (s *Screen) Succeeded() bool {
	return s.succeeded
}

// View implements tea.Model
func (s *Screen) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Login.String() + " Login"))
	sb.WriteString("\n")

	if s.notice != "" {
		sb.WriteString(styles.StatusOK.Render(s.notice))
		sb.WriteString("\n\n")
	}

	switch {
	case s.succeeded:
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " Login successful! Redirecting..."))
		return sb.String()
	case s.submitting:
		sb.WriteString(fmt.Sprintf("%s Logging in...", s.spinner.View()))
		return sb.String()
	}

	sb.WriteString(s.huhForm.View())

	status := s.form.Status()
	if status.State == submission.StateFailed {
		sb.WriteString("\n")
		line := "Login failed: " + status.Err.Error()
		if status.Flagged(submission.FieldCredentials) {
			line = "Invalid email or password: " + status.Err.Error()
		}
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + line))
	}
	return sb.String()
}

func validateEmail(s string) error {
	if !validation.ValidEmail(s) {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

func validateRequired(s string) error {
	if s == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
