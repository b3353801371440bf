// ABOUTME: Health command for mycask CLI
// ABOUTME: Checks backend connectivity and service status

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/markalston/mycask/cli/internal/client"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the MyCask backend and verify service status.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(runHealth)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, a *app, w io.Writer) int {
	url := a.api.BaseURL()

	resp, err := a.api.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(url, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(url, resp))
	}

	return exitOK
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *client.HealthResponse) string {
	return fmt.Sprintf(`Backend: %s
Status:  %s`, url, resp.Status)
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *client.HealthResponse) string {
	output := map[string]interface{}{
		"backend": url,
		"status":  resp.Status,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
