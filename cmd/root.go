// Package cmd holds the arbscan CLI commands.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "arbscan",
	Short: "Cross-platform prediction market arbitrage scanner",
	Long: `arbscan scans Polymarket, Kalshi and Manifold for cross-platform
arbitrage: pairs of equivalent binary markets where buying complementary
outcomes on both platforms costs less than the guaranteed payout.

The scanner is read-only. It fetches markets, matches them across
platforms, computes fee-adjusted returns and posts webhook alerts for
opportunities that clear the configured thresholds.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Best-effort: a missing .env just means config comes from the process
	// environment
	_ = godotenv.Load()
}
