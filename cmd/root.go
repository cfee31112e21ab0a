// Package cmd implements the datasage CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🔎"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "datasage",
	Short: logo + " datasage — Data catalog assistant",
	Long:  logo + " datasage — an assistant that answers questions about your data catalog over Slack and the CLI",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}
