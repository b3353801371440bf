// ABOUTME: Root command for mycask CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
)

// Exit codes shared by all commands
const (
	exitOK    = 0
	exitUsage = 1 // validation failures, not logged in
	exitError = 2 // backend, transport or storage errors
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "mycask",
	Short: "CLI for MyCask",
	Long: `mycask is a command-line client for the MyCask collection service.

It signs you in, keeps your session between runs, and talks to the MyCask API
on your behalf.

Environment Variables:
  MYCASK_API_URL       Backend API URL (default: http://localhost:8000)
  MYCASK_CONFIG_DIR    Where credentials and debug.log are kept (default: ~/.config/mycask)
  MYCASK_HTTP_TIMEOUT  HTTP client timeout (default: 30s)
  MYCASK_ALL_PROXY     Optional ssh+socks5://user@host:port?private-key=/path tunnel
  LOG_LEVEL            debug, info, warn, error (default: info)
  LOG_FORMAT           text, json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides MYCASK_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
