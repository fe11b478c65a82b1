// Package alerts delivers opportunity notifications to a webhook with
// threshold filtering, per-pair cooldown deduplication and paced batch
// sending. Delivery failures are logged and never propagate into the scan.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/internal/arbitrage"
	"arbscan/pkg/cache"
)

// Config holds dispatcher configuration.
type Config struct {
	Enabled            bool
	WebhookURL         string
	MinProfitPercent   decimal.Decimal
	MinProfitAmount    decimal.Decimal
	Cooldown           time.Duration
	MaxAlertsPerMinute int
	Logger             *zap.Logger
}

// minPaceInterval keeps batches under common webhook caps regardless of
// configuration.
const minPaceInterval = 2 * time.Second

// Dispatcher sends webhook alerts for profitable opportunities.
type Dispatcher struct {
	cfg     Config
	cache   cache.Cache
	rest    *resty.Client
	pace    time.Duration
	enabled bool
	logger  *zap.Logger
}

// New creates a Dispatcher. Alerts enabled without a webhook URL is a
// missing-configuration condition: the dispatcher silently disables itself
// with a logged warning.
func New(cfg Config, store cache.Cache) *Dispatcher {
	enabled := cfg.Enabled
	if enabled && cfg.WebhookURL == "" {
		cfg.Logger.Warn("alerts-disabled-missing-webhook-url")
		enabled = false
	}

	pace := minPaceInterval
	if cfg.MaxAlertsPerMinute > 0 {
		if derived := time.Minute / time.Duration(cfg.MaxAlertsPerMinute); derived > pace {
			pace = derived
		}
	}

	return &Dispatcher{
		cfg:     cfg,
		cache:   store,
		rest:    resty.New().SetTimeout(10 * time.Second),
		pace:    pace,
		enabled: enabled,
		logger:  cfg.Logger,
	}
}

// Enabled reports whether the dispatcher will post alerts.
func (d *Dispatcher) Enabled() bool {
	return d.enabled
}

// MeetsThreshold reports whether an opportunity clears the configured
// minimum ROI percent and minimum profit amount (dollars per 100 pairs).
func (d *Dispatcher) MeetsThreshold(opp *arbitrage.Opportunity) bool {
	profitDollars := opp.ProfitMargin.Mul(decimal.NewFromInt(100))

	return opp.ROI.GreaterThanOrEqual(d.cfg.MinProfitPercent) &&
		profitDollars.GreaterThanOrEqual(d.cfg.MinProfitAmount)
}

// Send posts one alert unless the dispatcher is disabled or the pair is in
// its cooldown window. The cooldown marker is written only after a
// successful post, so failed deliveries retry on the next scan.
func (d *Dispatcher) Send(ctx context.Context, opp *arbitrage.Opportunity) {
	if !d.enabled {
		return
	}

	idA, idB := opp.PairKey()
	cooldownKey := cache.AlertSentKey(idA, idB)

	// A cache read error degrades to a miss: better a duplicate alert
	// than a silently dropped one.
	present, err := d.cache.Exists(ctx, cooldownKey)
	if err != nil {
		d.logger.Warn("alert-cooldown-check-failed", zap.Error(err))
	}
	if present {
		AlertsSuppressedTotal.Inc()
		d.logger.Debug("alert-suppressed-cooldown",
			zap.String("market-a", idA),
			zap.String("market-b", idB))
		return
	}

	err = d.post(ctx, opp)
	if err != nil {
		AlertsFailedTotal.Inc()
		d.logger.Warn("alert-post-failed",
			zap.String("opportunity-id", opp.ID),
			zap.Error(err))
		return
	}

	AlertsSentTotal.Inc()
	d.logger.Info("alert-sent",
		zap.String("opportunity-id", opp.ID),
		zap.String("roi", opp.ROI.StringFixed(2)))

	err = d.cache.Set(ctx, cooldownKey, []byte("1"), d.cfg.Cooldown)
	if err != nil {
		d.logger.Warn("alert-cooldown-write-failed", zap.Error(err))
	}
}

// SendMany dispatches a batch sequentially with the pacing gap between
// posts. Context cancellation stops the remaining batch within one gap.
func (d *Dispatcher) SendMany(ctx context.Context, opps []arbitrage.Opportunity) {
	if !d.enabled {
		return
	}

	for i := range opps {
		if i > 0 {
			timer := time.NewTimer(d.pace)
			select {
			case <-ctx.Done():
				timer.Stop()
				d.logger.Info("alert-batch-cancelled", zap.Int("remaining", len(opps)-i))
				return
			case <-timer.C:
			}
		}

		d.Send(ctx, &opps[i])
	}
}

func (d *Dispatcher) post(ctx context.Context, opp *arbitrage.Opportunity) error {
	resp, err := d.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(buildMessage(opp)).
		Post(d.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
