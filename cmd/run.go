package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"arbscan/internal/app"
	"arbscan/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the continuous scanner",
	Long: `Starts the arbitrage scanner daemon, which will:
1. Enroll recurring scan jobs for every platform pair
2. Fetch and normalize markets through the rate-limited adapters
3. Match equivalent markets and compute fee-adjusted returns
4. Post webhook alerts for opportunities above the thresholds

Redis must be reachable; the job queue and alert cooldowns live there.`,
	RunE: runScanner,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runScanner(cmd *cobra.Command, args []string) error {
	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger
	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
