// ABOUTME: Entry point for mycask CLI
// ABOUTME: Command-line and terminal UI client for the MyCask account service

package main

import (
	"fmt"
	"os"

	"github.com/markalston/mycask/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
