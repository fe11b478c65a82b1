package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"arbscan/internal/adapters"
	"arbscan/pkg/config"
	"arbscan/pkg/ratelimit"
	"arbscan/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List normalized markets from one platform",
	Long:  `Fetches and displays normalized binary markets from one platform for debugging purposes.`,
	RunE:  runMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(marketsCmd)
	marketsCmd.Flags().StringP("platform", "p", "PM", "Platform: PM, KAL or MAN")
	marketsCmd.Flags().IntP("limit", "l", 20, "Maximum number of markets to fetch")
	marketsCmd.Flags().BoolP("verbose", "v", false, "Show outcome prices and liquidity")
}

func runMarkets(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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

	// Get flags
	platformStr, _ := cmd.Flags().GetString("platform")
	limit, _ := cmd.Flags().GetInt("limit")
	verbose, _ := cmd.Flags().GetBool("verbose")

	platform, err := types.ParsePlatform(platformStr)
	if err != nil {
		return err
	}
	if limit <= 0 || limit > cfg.MaxLimit {
		return fmt.Errorf("limit must be in [1,%d], got %d", cfg.MaxLimit, limit)
	}

	limiter := ratelimit.New(ratelimit.DefaultLimits(), logger)
	registry := adapters.NewRegistry(cfg, limiter, logger)
	adapter, _ := registry.Get(platform)

	fmt.Printf("Fetching up to %d markets from %s...\n\n", limit, platform)

	markets, err := adapter.FetchMarkets(ctx, limit)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	if len(markets) == 0 {
		fmt.Println("No open binary markets found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTITLE\tEND\n")
	fmt.Fprintf(w, "--\t-----\t---\n")

	for i := range markets {
		market := &markets[i]

		title := market.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}

		end := "-"
		if market.EndDate != nil {
			end = market.EndDate.Format("2006-01-02")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\n", market.ID, title, end)

		if verbose {
			for _, outcome := range market.Outcomes {
				fmt.Fprintf(w, "\t  %s: %s\n", outcome.Name, outcome.Price.StringFixed(3))
			}
			if market.Liquidity != nil {
				fmt.Fprintf(w, "\t  liquidity: %s\n", market.Liquidity.StringFixed(0))
			}
		}
	}

	w.Flush()

	fmt.Printf("\nTotal: %d markets\n", len(markets))

	return nil
}
