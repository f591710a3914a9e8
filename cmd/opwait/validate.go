package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmcalder/opwait/config"
)

// validateCmd validates a config file without waiting on anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an opwait configuration file without polling anything.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  opwait validate -c config.yaml
  opwait validate --config /etc/opwait/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// building operations catches predicate/option errors the structural
	// validation cannot see
	if _, err := config.BuildWaitSpecs(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Interval:   %s\n", cfg.Interval.Duration())
	fmt.Printf("  Timeout:    %s\n", cfg.Timeout.Duration())
	fmt.Printf("  Operations: %d\n", len(cfg.Operations))
	for _, oc := range cfg.Operations {
		fmt.Printf("    - %s (%s)\n", oc.Name, oc.URL)
	}

	return nil
}
