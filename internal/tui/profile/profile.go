// ABOUTME: Profile screen showing the signed-in user
// ABOUTME: Read-only view of the session's user snapshot

package profile

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/mycask/cli/internal/client"
	"github.com/markalston/mycask/cli/internal/tui/icons"
	"github.com/markalston/mycask/cli/internal/tui/styles"
)

// LogoutRequestedMsg is sent when the user asks to log out
type LogoutRequestedMsg struct{}

// Profile renders a user
type Profile struct {
	user  *client.User
	width int
}

// New creates a profile view for user
func New(user *client.User) *Profile {
	return &Profile{user: user}
}

// SetSize sets the available width
func (p *Profile) SetSize(width int) {
	p.width = width
}

// Init implements tea.Model
func (p *Profile) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (p *Profile) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "l" {
		return p, func() tea.Msg { return LogoutRequestedMsg{} }
	}
	return p, nil
}

// View implements tea.Model
func (p *Profile) View() string {
	if p.user == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s Welcome, %s", icons.User.String(), p.user.DisplayName())))
	sb.WriteString("\n")

	rows := [][2]string{
		{icons.Email.String() + " Email", p.user.Email},
	}
	if p.user.Username != nil && *p.user.Username != "" {
		rows = append(rows, [2]string{icons.User.String() + " Username", *p.user.Username})
	}
	if name := fullName(p.user); name != "" {
		rows = append(rows, [2]string{icons.Info.String() + " Name", name})
	}
	rows = append(rows, [2]string{icons.Key.String() + " User ID", fmt.Sprintf("%d", p.user.ID)})
	if !p.user.CreatedAt.IsZero() {
		rows = append(rows, [2]string{icons.Info.String() + " Joined", p.user.CreatedAt.Format("January 2, 2006")})
	}
	if !p.user.UpdatedAt.IsZero() {
		rows = append(rows, [2]string{icons.Info.String() + " Updated", p.user.UpdatedAt.Format("January 2, 2006")})
	}

	for _, r := range rows {
		sb.WriteString(styles.LabelStyle.Render(r[0]))
		sb.WriteString(styles.ValueStyle.Render(r[1]))
		sb.WriteString("\n")
	}

	width := p.width
	if width <= 0 {
		return styles.ActivePanel.Render(strings.TrimRight(sb.String(), "\n"))
	}
	return styles.ActivePanel.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

func fullName(u *client.User) string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return strings.Join(parts, " ")
}
