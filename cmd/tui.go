// ABOUTME: Interactive terminal UI command for mycask CLI
// ABOUTME: Launches the login, signup and profile screens

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/mycask/cli/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive login, signup and profile screens",
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(runTUI)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI blocks until the user quits and returns exit code
func runTUI(ctx context.Context, a *app, w io.Writer) int {
	if err := tui.Run(ctx, a.api, a.session); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
