// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Routes between login, signup and profile screens from session state

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/mycask/cli/internal/client"
	"github.com/markalston/mycask/cli/internal/session"
	"github.com/markalston/mycask/cli/internal/submission"
	"github.com/markalston/mycask/cli/internal/tui/icons"
	"github.com/markalston/mycask/cli/internal/tui/login"
	"github.com/markalston/mycask/cli/internal/tui/profile"
	"github.com/markalston/mycask/cli/internal/tui/signup"
	"github.com/markalston/mycask/cli/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenSignup
	ScreenProfile
)

// Layout constants
const (
	minTerminalWidth = 60
	panelPadding     = 4
)

// sessionChangedMsg is sent whenever the session controller changes state
type sessionChangedMsg struct{}

// App is the root model for the TUI
type App struct {
	ctx       context.Context
	registrar submission.Registrar
	session   *session.Controller

	screen  Screen
	width   int
	height  int
	err     error
	spinner spinner.Model

	// Child models
	login   *login.Screen
	signup  *signup.Screen
	profile *profile.Profile

	updates     chan struct{}
	unsubscribe func()
}

// New creates a new TUI application. Screens are chosen from sess, so the
// controller should not have been bootstrapped yet.
func New(ctx context.Context, registrar submission.Registrar, sess *session.Controller) *App {
	a := &App{
		ctx:       ctx,
		registrar: registrar,
		session:   sess,
		screen:    ScreenLoading,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.SpinnerStyle),
		),
		updates: make(chan struct{}, 1),
	}
	a.unsubscribe = sess.Subscribe(func(session.Snapshot) {
		// a pending notification already covers this change
		select {
		case a.updates <- struct{}{}:
		default:
		}
	})
	return a
}

// Close stops listening to the session
func (a *App) Close() {
	a.unsubscribe()
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForSession(), a.bootstrap())
}

func (a *App) bootstrap() tea.Cmd {
	return func() tea.Msg {
		a.session.Bootstrap(a.ctx)
		return sessionChangedMsg{}
	}
}

func (a *App) waitForSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.updates:
			return sessionChangedMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.profile != nil {
			a.profile.SetSize(a.contentWidth())
		}
		return a, a.forward(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.screen == ScreenProfile && msg.String() == "q" {
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case sessionChangedMsg:
		return a, tea.Batch(a.waitForSession(), a.syncScreen())

	case login.SignupRequestedMsg:
		return a, a.showSignup()

	case login.LoggedInMsg:
		snap := a.session.Snapshot()
		if !snap.IsAuthenticated() {
			return a, a.showLogin("")
		}
		a.showProfile(snap.User)
		return a, nil

	case signup.BackMsg:
		return a, a.showLogin("")

	case signup.RegisteredMsg:
		cmd := a.showLogin(msg.Email)
		a.login.SetNotice("Account created. Please log in.")
		return a, cmd

	case profile.LogoutRequestedMsg:
		if err := a.session.Logout(); err != nil {
			a.err = fmt.Errorf("stored credentials could not be removed: %w", err)
		}
		return a, a.syncScreen()

	case spinner.TickMsg:
		if a.screen == ScreenLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
	}

	// Forward remaining messages (huh internals, spinner ticks, submission results)
	return a, a.forward(msg)
}

// syncScreen moves to the screen the session state requires. Login and
// signup screens are left alone so their own success messages can navigate.
func (a *App) syncScreen() tea.Cmd {
	snap := a.session.Snapshot()
	switch a.screen {
	case ScreenLoading:
		switch snap.State {
		case session.StateAuthenticated:
			a.showProfile(snap.User)
		case session.StateUnauthenticated:
			return a.showLogin("")
		}
	case ScreenProfile:
		if !snap.IsAuthenticated() {
			return a.showLogin("")
		}
	}
	return nil
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			_, cmd = a.login.Update(msg)
		}
	case ScreenSignup:
		if a.signup != nil {
			_, cmd = a.signup.Update(msg)
		}
	case ScreenProfile:
		if a.profile != nil {
			_, cmd = a.profile.Update(msg)
		}
	}
	return cmd
}

func (a *App) showLogin(email string) tea.Cmd {
	a.login = login.New(a.ctx, a.session, email)
	a.signup = nil
	a.profile = nil
	a.screen = ScreenLogin
	return a.login.Init()
}

func (a *App) showSignup() tea.Cmd {
	a.signup = signup.New(a.ctx, a.registrar)
	a.login = nil
	a.screen = ScreenSignup
	return a.signup.Init()
}

func (a *App) showProfile(user *client.User) {
	a.profile = profile.New(user)
	a.profile.SetSize(a.contentWidth())
	a.login = nil
	a.signup = nil
	a.err = nil
	a.screen = ScreenProfile
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLoading:
		content = fmt.Sprintf("%s Restoring session...", a.spinner.View())
	case ScreenLogin:
		if a.login != nil {
			content = a.login.View()
		}
	case ScreenSignup:
		if a.signup != nil {
			content = a.signup.View()
		}
	case ScreenProfile:
		if a.profile != nil {
			content = a.profile.View()
		}
	}

	if a.err != nil {
		content += "\n" + styles.StatusWarning.Render(icons.Warning.String()+" "+a.err.Error())
	}

	return a.wrapWithFrame(content)
}

// contentWidth calculates the width for the main panel
func (a *App) contentWidth() int {
	if a.width == 0 {
		return 0
	}
	return a.width - panelPadding
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftRendered := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("MyCask"))

	rightRendered := ""
	if a.screen == ScreenProfile {
		if user := a.session.Snapshot().User; user != nil {
			rightRendered = contextStyle.Render(user.DisplayName()) + " "
		}
	}

	fillWidth := width - 4 - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered)
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftRendered + strings.Repeat("─", fillWidth) + rightRendered + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts for the current screen
func (a *App) renderFooter() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	var shortcuts []string
	switch a.screen {
	case ScreenLoading:
		shortcuts = []string{"Ctrl+C Quit"}
	case ScreenLogin:
		shortcuts = []string{"Enter Next", "Ctrl+N Sign up", "Ctrl+C Quit"}
	case ScreenSignup:
		shortcuts = []string{"Enter Next", "Esc Back", "Ctrl+C Quit"}
	case ScreenProfile:
		shortcuts = []string{"l Logout", "q Quit"}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	fillWidth := width - 4 - lipgloss.Width(leftPlainText)
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + "─╯"
	return borderStyle.Render(footer)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, registrar submission.Registrar, sess *session.Controller) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := New(ctx, registrar, sess)
	defer app.Close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
