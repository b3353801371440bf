// ABOUTME: Refresh command for mycask CLI
// ABOUTME: Exchanges the stored refresh token for a new credential pair

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew stored session tokens",
	Long: `Exchange the stored refresh token for a new access and refresh token pair.

Exit codes:
  0 - Tokens replaced
  1 - Not logged in
  2 - Error (connectivity, refresh rejected, storage failure)`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(runRefresh)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

// runRefresh replaces the stored pair and returns exit code
func runRefresh(ctx context.Context, a *app, w io.Writer) int {
	pair, ok, err := a.store.Load()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	if !ok {
		fmt.Fprintln(w, "Not logged in. Run 'mycask login' to sign in.")
		return exitUsage
	}

	next, err := a.api.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	if err := a.store.Save(next); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]bool{"refreshed": true}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, "Session tokens refreshed.")
	}
	return exitOK
}
