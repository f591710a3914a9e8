package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmcalder/opwait"
	"github.com/pmcalder/opwait/config"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// waitCmd waits for the configured operations to finish.
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for operations to finish",
	Long: `Wait for one or more asynchronous REST operations to finish.

Operations are polled sequentially, each until its handler reports done
or its timeout expires. The final payload of each operation is printed
to stdout; logs go to stderr.

Exit codes:
  0 - All operations finished successfully
  1 - An operation failed, timed out, or the config is invalid

Examples:
  opwait wait -c config.yaml
  opwait wait --url https://api.example.com/operations/42 --timeout 10m
  opwait wait --url https://api.example.com/operations/42 --interval 2s`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().StringP("config", "c", "", "path to config file")
	waitCmd.Flags().String("url", "", "status URI of a single operation (alternative to --config)")
	waitCmd.Flags().Duration("timeout", 15*time.Minute, "overall timeout (with --url)")
	waitCmd.Flags().Duration("interval", 5*time.Second, "poll interval (with --url)")
	waitCmd.Flags().BoolP("verbose", "v", false, "log every poll attempt")
}

func runWait(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	configFile, _ := cmd.Flags().GetString("config")
	rawURL, _ := cmd.Flags().GetString("url")

	if (configFile == "") == (rawURL == "") {
		return fmt.Errorf("exactly one of --config or --url is required")
	}

	var (
		specs      []config.WaitSpec
		clientOpts []opwait.Option
	)

	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Info("config loaded",
			"operations", len(cfg.Operations),
			"interval", cfg.Interval.Duration().String(),
		)

		specs, err = config.BuildWaitSpecs(cfg)
		if err != nil {
			return fmt.Errorf("failed to build operations: %w", err)
		}
		clientOpts = config.ClientOptions(cfg)
	} else {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		interval, _ := cmd.Flags().GetDuration("interval")

		op, err := opwait.NewOperation(rawURL)
		if err != nil {
			return fmt.Errorf("invalid operation URL: %w", err)
		}
		specs = []config.WaitSpec{{Name: "operation", Timeout: timeout, Operation: op}}
		clientOpts = []opwait.Option{opwait.WithInterval(interval)}
	}

	clientOpts = append(clientOpts, opwait.WithLogger(logger))

	client, err := opwait.New(clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// cancel in-between-attempt sleeps on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, spec := range specs {
		logger.Info("waiting for operation",
			"name", spec.Name,
			"url", spec.Operation.Target(),
			"timeout", spec.Timeout.String(),
		)

		started := time.Now()
		result, err := spec.Operation.Wait(ctx, client, spec.Timeout)
		if err != nil {
			return fmt.Errorf("operation (%s): %w", spec.Name, err)
		}

		logger.Info("operation finished",
			"name", spec.Name,
			"elapsed", time.Since(started).Round(time.Millisecond).String(),
		)

		if len(result) > 0 {
			fmt.Printf("%s\n", result)
		}
	}

	return nil
}
