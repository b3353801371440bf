// ABOUTME: Logout command for mycask CLI
// ABOUTME: Forgets the stored session unconditionally

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and remove stored credentials",
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(runLogout)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the session and returns exit code
func runLogout(_ context.Context, a *app, w io.Writer) int {
	if err := a.session.Logout(); err != nil {
		fmt.Fprintf(w, "Logged out, but stored credentials could not be removed: %v\n", err)
		return exitError
	}
	fmt.Fprintln(w, "Logged out.")
	return exitOK
}
