// ABOUTME: Tests for the profile screen
// ABOUTME: Validates rendered fields and the logout shortcut

package profile

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/mycask/cli/internal/client"
)

func strPtr(s string) *string { return &s }

func TestProfileView(t *testing.T) {
	user := &client.User{
		ID:        7,
		Email:     "ada@example.com",
		Username:  strPtr("ada"),
		FirstName: strPtr("Ada"),
		LastName:  strPtr("Lovelace"),
		CreatedAt: client.Timestamp{Time: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
	}
	p := New(user)
	p.SetSize(80)

	view := p.View()
	for _, want := range []string{"Welcome, Ada Lovelace", "ada@example.com", "ada", "May 1, 2024"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
	if strings.Contains(view, "Updated") {
		t.Error("expected no Updated row for a zero timestamp")
	}
}

func TestProfileMinimalUser(t *testing.T) {
	p := New(&client.User{ID: 1, Email: "min@example.com"})

	view := p.View()
	if !strings.Contains(view, "Welcome, min@example.com") {
		t.Errorf("expected email as display name, got %q", view)
	}
}

func TestProfileNilUser(t *testing.T) {
	if got := New(nil).View(); got != "" {
		t.Errorf("expected empty view, got %q", got)
	}
}

func TestProfileLogoutKey(t *testing.T) {
	p := New(&client.User{ID: 1, Email: "a@b.com"})

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if cmd == nil {
		t.Fatal("expected command")
	}
	if _, ok := cmd().(LogoutRequestedMsg); !ok {
		t.Error("expected LogoutRequestedMsg")
	}

	if _, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Error("expected no command for unbound key")
	}
}
