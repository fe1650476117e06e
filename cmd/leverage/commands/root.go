package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/leverage/backend/pkg/config"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "leverage",
	Short: "Debt-to-equity BFF for the CSV generator frontend",
	Long: `Leverage Unified CLI

Fetches annual balance sheets for a ticker, derives one debt-to-equity
ratio per fiscal year and serves the result as JSON or CSV.

Usage:
  go run ./cmd/leverage [command]

Examples:
  go run ./cmd/leverage api
  go run ./cmd/leverage api --port 8080
  go run ./cmd/leverage ratio AAPL
  go run ./cmd/leverage ratio MSFT --format csv --output msft.csv`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads the env config and applies global flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("env") {
		if err := os.Setenv("ENV", env); err != nil {
			return nil, fmt.Errorf("apply --env: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}
