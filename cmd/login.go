// ABOUTME: Login command for mycask CLI
// ABOUTME: Exchanges email and password for a stored session

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/markalston/mycask/cli/internal/client"
	"github.com/markalston/mycask/cli/internal/submission"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to MyCask",
	Long: `Log in with your email and password. Missing values are prompted for.

Exit codes:
  0 - Logged in
  1 - Invalid input or rejected credentials
  2 - Error (connectivity, backend failure)`,
	Run: func(cmd *cobra.Command, args []string) {
		if loginEmail == "" || loginPassword == "" {
			if err := promptLogin(&loginEmail, &loginPassword); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitUsage)
			}
		}
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			return runLogin(ctx, a, w, loginEmail, loginPassword)
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
}

// promptLogin asks for whichever credentials were not given as flags
func promptLogin(email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(email))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeBase()).Run()
}

// runLogin submits the login form and returns exit code
func runLogin(ctx context.Context, a *app, w io.Writer, email, password string) int {
	form := submission.NewLoginForm(a.session)
	form.Email = email
	form.Password = password

	if _, err := form.Submit(ctx); err != nil {
		if submission.IsValidation(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitUsage
		}
		if form.Status().Flagged(submission.FieldCredentials) {
			fmt.Fprintf(w, "Login failed: %v\n", err)
			return exitUsage
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	user := a.session.Snapshot().User
	if IsJSONOutput() {
		fmt.Fprintln(w, formatUserJSON(user))
	} else {
		fmt.Fprintf(w, "Login successful! Welcome, %s.\n", user.DisplayName())
	}
	if a.store.Degraded() {
		fmt.Fprintln(w, "Warning: credentials could not be saved; this session ends when the command exits.")
	}
	return exitOK
}

// formatUserJSON formats a user profile as JSON
func formatUserJSON(user *client.User) string {
	data, _ := json.MarshalIndent(user, "", "  ")
	return string(data)
}
