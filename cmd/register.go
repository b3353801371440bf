// ABOUTME: Register command for mycask CLI
// ABOUTME: Creates an account after checking email and password locally

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/markalston/mycask/cli/internal/submission"
	"github.com/markalston/mycask/cli/internal/validation"
	"github.com/spf13/cobra"
)

var signup struct {
	email           string
	username        string
	firstName       string
	lastName        string
	password        string
	confirmPassword string
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a MyCask account",
	Long: `Create an account. The password must be at least 8 characters and contain an
uppercase letter, a lowercase letter, a number and a special character.

Missing email or password values are prompted for.

Exit codes:
  0 - Account created
  1 - Invalid input, email already registered or username taken
  2 - Error (connectivity, backend failure)`,
	Run: func(cmd *cobra.Command, args []string) {
		if signup.email == "" || signup.password == "" {
			if err := promptSignup(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitUsage)
			}
		} else if signup.confirmPassword == "" {
			signup.confirmPassword = signup.password
		}
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			form := submission.NewSignupForm(a.api)
			form.Email = signup.email
			form.Username = signup.username
			form.FirstName = signup.firstName
			form.LastName = signup.lastName
			form.Password = signup.password
			form.ConfirmPassword = signup.confirmPassword
			return runRegister(ctx, form, w)
		})
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&signup.email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&signup.username, "username", "", "Optional username")
	registerCmd.Flags().StringVar(&signup.firstName, "first-name", "", "Optional first name")
	registerCmd.Flags().StringVar(&signup.lastName, "last-name", "", "Optional last name")
	registerCmd.Flags().StringVar(&signup.password, "password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&signup.confirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
}

// promptSignup collects registration fields not given as flags
func promptSignup() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&signup.email).
				Validate(func(s string) error {
					if !validation.ValidEmail(s) {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().Title("Username").Description("Optional").Value(&signup.username),
			huh.NewInput().Title("First name").Description("Optional").Value(&signup.firstName),
			huh.NewInput().Title("Last name").Description("Optional").Value(&signup.lastName),
		).Title("Create your account"),
		huh.NewGroup(
			huh.NewInput().Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&signup.password).
				Validate(func(s string) error {
					if !validation.MeetsStrengthPolicy(s) {
						return fmt.Errorf("password does not meet the requirements")
					}
					return nil
				}),
			huh.NewInput().Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&signup.confirmPassword).
				Validate(func(s string) error {
					if s != signup.password {
						return fmt.Errorf("passwords must match")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeBase()).Run()
}

// runRegister submits the signup form and returns exit code
func runRegister(ctx context.Context, form *submission.SignupForm, w io.Writer) int {
	if _, err := form.Submit(ctx); err != nil {
		if submission.IsValidation(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			if !validation.MeetsStrengthPolicy(form.Password) {
				fmt.Fprint(w, formatRequirements(validation.Requirements(form.Password)))
			}
			return exitUsage
		}

		status := form.Status()
		switch {
		case status.Flagged(submission.FieldEmail):
			fmt.Fprintf(w, "Registration failed: %v\nUse a different email or run 'mycask login'.\n", err)
			return exitUsage
		case status.Flagged(submission.FieldUsername):
			fmt.Fprintf(w, "Registration failed: %v\nChoose a different username.\n", err)
			return exitUsage
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	user := form.Registered()
	if IsJSONOutput() {
		fmt.Fprintln(w, formatUserJSON(user))
		return exitOK
	}
	fmt.Fprintf(w, "Account created for %s. Run 'mycask login' to sign in.\n", user.Email)
	return exitOK
}
