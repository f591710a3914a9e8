// Package main is the entry point for the opwait CLI.
//
// opwait can be used either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary
// approach, useful for waiting on server-side operations from scripts and
// CI pipelines.
//
// Usage:
//
//	opwait wait -c config.yaml       # Wait for all configured operations
//	opwait wait --url URL            # Wait for a single operation
//	opwait validate -c config.yaml   # Validate configuration
//	opwait version                   # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "opwait",
	Short: "Wait for asynchronous REST operations to finish",
	Long: `opwait polls the status URI of a long-running server-side operation
at a fixed interval until the server reports a terminal outcome, then
prints the final payload.

Quick start:
  opwait wait --url https://api.example.com/operations/42 --timeout 10m

Or describe several operations in a config file:
  interval: 5s
  timeout: 15m
  operations:
    - name: dataset export
      url: https://api.example.com/operations/42
      finished: json:status=OK|ERROR
      failed: status=ERROR
      follow: links.result

and run: opwait wait -c config.yaml`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this opwait binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("opwait %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
