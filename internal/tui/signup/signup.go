// ABOUTME: Signup screen as a bubbletea model
// ABOUTME: Shows live password requirements and flags duplicate email or username

package signup

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
const SuccessDelay = 1500 * time.Millisecond

// RegisteredMsg is sent SuccessDelay after an account is created
type RegisteredMsg struct {
	Email string
}

// BackMsg is sent when the user returns to the login screen
type BackMsg struct{}

type submittedMsg struct {
	started bool
	err     error
}

// Screen is the signup page
type Screen struct {
	ctx     context.Context
	form    *submission.SignupForm
	huhForm *huh.Form
	spinner spinner.Model

	submitting bool
	succeeded  bool
	width      int
}

// New creates a signup screen
func New(ctx context.Context, api submission.Registrar) *Screen {
	s := &Screen{
		ctx:  ctx,
		form: submission.NewSignupForm(api),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.SpinnerStyle),
		),
	}
	s.huhForm = s.createForm()
	return s
}

func (s *Screen) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("you@example.com").
				Value(&s.form.Email).
				Validate(func(v string) error {
					if !validation.ValidEmail(v) {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Key("username").
				Title("Username").
				Description("Optional").
				Value(&s.form.Username),
			huh.NewInput().
				Key("first_name").
				Title("First name").
				Description("Optional").
				Value(&s.form.FirstName),
			huh.NewInput().
				Key("last_name").
				Title("Last name").
				Description("Optional").
				Value(&s.form.LastName),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&s.form.Password).
				Validate(func(v string) error {
					if !validation.MeetsStrengthPolicy(v) {
						return fmt.Errorf("password does not meet the requirements")
					}
					return nil
				}),
			huh.NewInput().
				Key("confirm_password").
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&s.form.ConfirmPassword).
				Validate(func(v string) error {
					if v != s.form.Password {
						return fmt.Errorf("passwords must match")
					}
					return nil
				}),
		).Title("Create your account"),
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
		if msg.String() == "esc" && !s.submitting && !s.succeeded {
			return s, func() tea.Msg { return BackMsg{} }
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

func (s *Screen) startSubmit() tea.Cmd {
	s.submitting = true
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
		return s, nil
	}
	s.submitting = false

	if msg.err != nil {
		s.huhForm = s.createForm()
		return s, s.huhForm.Init()
	}

	s.succeeded = true
	email := s.form.Email
	return s, tea.Tick(SuccessDelay, func(time.Time) tea.Msg {
		return RegisteredMsg{Email: email}
	})
}

// Submitting reports whether a registration is in flight
func (s *Screen) Submitting() bool {
	return s.submitting
}

// Succeeded reports whether the account was created
func (s *Screen) Succeeded() bool {
	return s.succeeded
}

// View implements tea.Model
func (s *Screen) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Signup.String() + " Sign up"))
	sb.WriteString("\n")

	switch {
	case s.succeeded:
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " Account created! Redirecting to login..."))
		return sb.String()
	case s.submitting:
		sb.WriteString(fmt.Sprintf("%s Creating account...", s.spinner.View()))
		return sb.String()
	}

	sb.WriteString(s.huhForm.View())
	sb.WriteString("\n")
	sb.WriteString(renderRequirements(s.form.Password))

	if s.form.ConfirmPassword != "" && !s.form.PasswordsMatch() {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusWarning.Render(icons.Warning.String() + " Passwords must match"))
	}

	status := s.form.Status()
	if status.State == submission.StateFailed {
		sb.WriteString("\n")
		switch {
		case status.Flagged(submission.FieldEmail):
			sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " Email: " + status.Err.Error()))
		case status.Flagged(submission.FieldUsername):
			sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " Username: " + status.Err.Error()))
		default:
			sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " Registration failed: " + status.Err.Error()))
		}
	}
	return sb.String()
}

// renderRequirements lists each password requirement with its current state
func renderRequirements(password string) string {
	var lines []string
	for _, r := range validation.Requirements(password) {
		mark := icons.Critical.String()
		if r.Met {
			mark = icons.CheckOK.String()
		}
		lines = append(lines, styles.Requirement(mark, r.Label, r.Met))
	}
	return strings.Join(lines, "\n")
}
