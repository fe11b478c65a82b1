package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arbscan/internal/adapters"
	"arbscan/internal/alerts"
	"arbscan/internal/arbitrage"
	"arbscan/internal/matching"
	"arbscan/internal/scanner"
	"arbscan/pkg/cache"
	"arbscan/pkg/config"
	"arbscan/pkg/ratelimit"
	"arbscan/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan of a platform pair and print the results",
	Long: `Runs a single fetch-match-calculate pass for one platform pair and
prints any arbitrage opportunities found. Falls back to an in-process
cache when Redis is unreachable, so it works standalone.`,
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("platform-a", "a", "PM", "First platform: PM, KAL or MAN")
	scanCmd.Flags().StringP("platform-b", "b", "MAN", "Second platform: PM, KAL or MAN")
	scanCmd.Flags().IntP("limit", "l", 0, "Markets to fetch per platform (default from config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
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
	platformAStr, _ := cmd.Flags().GetString("platform-a")
	platformBStr, _ := cmd.Flags().GetString("platform-b")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	platformA, err := types.ParsePlatform(platformAStr)
	if err != nil {
		return err
	}
	platformB, err := types.ParsePlatform(platformBStr)
	if err != nil {
		return err
	}
	if platformA == platformB {
		return fmt.Errorf("platforms must differ, got %s twice", platformA)
	}

	store := openCache(ctx, cfg, logger)
	defer func() {
		_ = store.Close()
	}()

	orchestrator := buildPipeline(cfg, logger, store)

	fmt.Printf("Scanning %s x %s (up to %d markets each)...\n\n", platformA, platformB, limit)

	result, err := orchestrator.Scan(ctx, platformA, platformB, limit, nil)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	printResult(result)
	return nil
}

// openCache prefers Redis and degrades to the in-process cache for
// standalone one-shot runs.
func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.Cache {
	redisCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	store, err := cache.NewRedisCache(redisCtx, &cache.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		Logger:   logger,
	})
	if err != nil {
		logger.Warn("redis-unavailable-using-memory-cache",
			zap.String("addr", cfg.RedisAddr()),
			zap.Error(err))
		return cache.NewMemoryCache(logger)
	}

	return store
}

func buildPipeline(cfg *config.Config, logger *zap.Logger, store cache.Cache) *scanner.Orchestrator {
	limiter := ratelimit.New(ratelimit.DefaultLimits(), logger)
	registry := adapters.NewRegistry(cfg, limiter, logger)

	matcher := matching.New(matching.Config{
		Threshold:          cfg.MatchThreshold,
		MaxDateDiffDays:    cfg.MaxDateDiffDays,
		MinMatchCharLength: cfg.MinMatchCharLength,
		Logger:             logger,
	})

	calculator := arbitrage.New(arbitrage.Config{
		FeeRates:     cfg.FeeRates(),
		MinROI:       cfg.MinROI,
		MinLiquidity: cfg.MinLiquidity,
		Logger:       logger,
	})

	dispatcher := alerts.New(alerts.Config{
		Enabled:            cfg.AlertsEnabled,
		WebhookURL:         cfg.WebhookURL,
		MinProfitPercent:   cfg.MinProfitPercent,
		MinProfitAmount:    cfg.MinProfitAmount,
		Cooldown:           cfg.AlertCooldown,
		MaxAlertsPerMinute: cfg.MaxAlertsPerMinute,
		Logger:             logger,
	}, store)

	return scanner.New(registry, matcher, calculator, dispatcher, store, logger)
}

func printResult(result *scanner.Result) {
	for platform, count := range result.MarketsScanned {
		fmt.Printf("%s markets: %d\n", platform, count)
	}
	fmt.Printf("Matches: %d\n", result.MatchesFound)
	fmt.Printf("Duration: %dms\n\n", result.DurationMs)

	if len(result.Opportunities) == 0 {
		fmt.Println("No arbitrage opportunities found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ROI%%\tMARGIN\tBUY A\tBUY B\tSCORE\tTITLE\n")
	fmt.Fprintf(w, "----\t------\t-----\t-----\t-----\t-----\n")

	for i := range result.Opportunities {
		opp := &result.Opportunities[i]

		title := opp.MarketA.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%s %s@%s\t%s %s@%s\t%d\t%s\n",
			opp.ROI.StringFixed(2),
			opp.ProfitMargin.StringFixed(4),
			opp.MarketA.Platform, opp.OutcomeA, opp.PriceA.StringFixed(3),
			opp.MarketB.Platform, opp.OutcomeB, opp.PriceB.StringFixed(3),
			opp.MatchScore,
			title)
	}

	w.Flush()
	fmt.Printf("\nTotal: %d opportunities\n", len(result.Opportunities))
}
