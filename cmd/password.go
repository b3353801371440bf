// ABOUTME: Password command group for mycask CLI
// ABOUTME: Checks a candidate password against the account strength policy

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/markalston/mycask/cli/internal/tui/icons"
	"github.com/markalston/mycask/cli/internal/validation"
	"github.com/spf13/cobra"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Password utilities",
}

var passwordCheckCmd = &cobra.Command{
	Use:   "check [password]",
	Short: "Check a password against the strength policy",
	Long: `Show which password requirements a candidate meets. Reads one line from
stdin when no argument is given. Nothing is sent to the backend.

Exit codes:
  0 - All requirements met
  1 - One or more requirements missing`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			var err error
			password, err = readLine(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
		}

		exitCode := runPasswordCheck(os.Stdout, password)
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(passwordCmd)
	passwordCmd.AddCommand(passwordCheckCmd)
}

// readLine reads a single line without its trailing newline
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runPasswordCheck prints the checklist and returns exit code
func runPasswordCheck(w io.Writer, password string) int {
	reqs := validation.Requirements(password)
	if IsJSONOutput() {
		fmt.Fprintln(w, formatRequirementsJSON(reqs))
	} else {
		fmt.Fprint(w, formatRequirements(reqs))
	}

	if !validation.MeetsStrengthPolicy(password) {
		return exitUsage
	}
	return exitOK
}

// formatRequirements renders one line per requirement
func formatRequirements(reqs []validation.Requirement) string {
	var sb strings.Builder
	for _, r := range reqs {
		mark := icons.Critical.String()
		if r.Met {
			mark = icons.CheckOK.String()
		}
		fmt.Fprintf(&sb, "  %s %s\n", mark, r.Label)
	}
	return sb.String()
}

// formatRequirementsJSON formats the checklist as JSON
func formatRequirementsJSON(reqs []validation.Requirement) string {
	type item struct {
		Requirement string `json:"requirement"`
		Met         bool   `json:"met"`
	}
	items := make([]item, 0, len(reqs))
	met := true
	for _, r := range reqs {
		items = append(items, item{Requirement: r.Label, Met: r.Met})
		met = met && r.Met
	}
	data, _ := json.MarshalIndent(map[string]interface{}{
		"meets_policy": met,
		"requirements": items,
	}, "", "  ")
	return string(data)
}
