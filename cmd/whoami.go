// ABOUTME: Whoami command for mycask CLI
// ABOUTME: Restores the stored session and shows the signed-in profile

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/markalston/mycask/cli/internal/client"
	"github.com/spf13/cobra"
)

var showToken bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Restore the stored session and print the signed-in user's profile.

A stored session the backend no longer accepts is discarded.

Exit codes:
  0 - Signed in
  1 - Not logged in`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(runWhoami)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&showToken, "token", false, "Also show access token claims (not verified)")
}

// runWhoami bootstraps the session and returns exit code
func runWhoami(ctx context.Context, a *app, w io.Writer) int {
	// read before bootstrap, which clears rejected credentials
	pair, _, _ := a.store.Load()

	snap := a.session.Bootstrap(ctx)
	if !snap.IsAuthenticated() {
		fmt.Fprintln(w, "Not logged in. Run 'mycask login' to sign in.")
		return exitUsage
	}

	var info *client.TokenInfo
	if showToken {
		ti, err := client.InspectToken(pair.AccessToken)
		if err == nil {
			info = &ti
		} else if !errors.Is(err, client.ErrOpaqueToken) {
			fmt.Fprintf(w, "Warning: %v\n", err)
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatWhoamiJSON(snap.User, info))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(a.api.BaseURL(), snap.User, info, showToken))
	}
	return exitOK
}

// formatWhoamiHuman formats the profile for human readability
func formatWhoamiHuman(backend string, user *client.User, info *client.TokenInfo, wantToken bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Backend:    %s\n", backend)
	fmt.Fprintf(&sb, "Name:       %s\n", user.DisplayName())
	fmt.Fprintf(&sb, "Email:      %s\n", user.Email)
	if user.Username != nil && *user.Username != "" {
		fmt.Fprintf(&sb, "Username:   %s\n", *user.Username)
	}
	fmt.Fprintf(&sb, "User ID:    %d\n", user.ID)
	if !user.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "Member since: %s\n", user.CreatedAt.Format("January 2, 2006"))
	}

	if wantToken {
		if info == nil {
			sb.WriteString("Token:      opaque\n")
		} else {
			fmt.Fprintf(&sb, "Token type: %s\n", valueOr(info.Type, "access"))
			fmt.Fprintf(&sb, "Subject:    %s\n", valueOr(info.Subject, "-"))
			if !info.ExpiresAt.IsZero() {
				state := "valid"
				if info.Expired(time.Now()) {
					state = "expired"
				}
				fmt.Fprintf(&sb, "Expires:    %s (%s)\n", info.ExpiresAt.Local().Format(time.RFC1123), state)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatWhoamiJSON formats the profile as JSON
func formatWhoamiJSON(user *client.User, info *client.TokenInfo) string {
	output := map[string]interface{}{
		"user": user,
	}
	if info != nil {
		token := map[string]interface{}{
			"subject": info.Subject,
			"type":    info.Type,
			"expired": info.Expired(time.Now()),
		}
		if !info.IssuedAt.IsZero() {
			token["issued_at"] = info.IssuedAt.UTC().Format(time.RFC3339)
		}
		if !info.ExpiresAt.IsZero() {
			token["expires_at"] = info.ExpiresAt.UTC().Format(time.RFC3339)
		}
		output["token"] = token
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
