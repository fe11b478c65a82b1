// Package adapters normalizes third-party prediction-market platforms into
// StandardMarket values.
//
// Every fetch follows the same pipeline: rate-limit acquire, HTTP GET,
// parse, schema validation, transform. Transport and schema failures
// surface through the pkg/types error taxonomy, and whole calls are
// wrapped in the retry driver with the taxonomy's retryable predicate.
package adapters

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"arbscan/pkg/config"
	"arbscan/pkg/ratelimit"
	"arbscan/pkg/retry"
	"arbscan/pkg/types"
)

// Adapter is the per-platform ingestion contract.
type Adapter interface {
	// Platform returns the adapter's platform tag.
	Platform() types.Platform

	// FetchMarkets returns up to limit normalized binary markets.
	FetchMarkets(ctx context.Context, limit int) ([]types.StandardMarket, error)

	// FetchMarketByID returns one market, or (nil, nil) when the platform
	// answers 404.
	FetchMarketByID(ctx context.Context, id string) (*types.StandardMarket, error)
}

// Registry maps platform tags to their adapters.
type Registry map[types.Platform]Adapter

// NewRegistry builds adapters for every supported platform.
func NewRegistry(cfg *config.Config, limiter *ratelimit.Limiter, logger *zap.Logger) Registry {
	return Registry{
		types.PlatformPolymarket: NewPolymarket(cfg, limiter, logger),
		types.PlatformManifold:   NewManifold(cfg, limiter, logger),
		types.PlatformKalshi:     NewKalshi(cfg, limiter, logger),
	}
}

// Get returns the adapter for a platform.
func (r Registry) Get(platform types.Platform) (Adapter, bool) {
	a, ok := r[platform]
	return a, ok
}

//nolint:gochecknoglobals // single validator instance, safe for concurrent use
var validate = validator.New()

// platformClient is the shared HTTP layer under every adapter: a resty
// client bound to the platform's base URL, paced by the rate limiter and
// wrapped in the retry driver.
type platformClient struct {
	platform  types.Platform
	rest      *resty.Client
	limiter   *ratelimit.Limiter
	retryOpts retry.Options
	logger    *zap.Logger
}

func newPlatformClient(
	platform types.Platform,
	baseURL string,
	timeout time.Duration,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
) *platformClient {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "arbscan/1.0")

	return &platformClient{
		platform:  platform,
		rest:      rest,
		limiter:   limiter,
		retryOpts: retry.DefaultOptions(logger),
		logger:    logger,
	}
}

// get performs a rate-limited, retry-wrapped GET and returns the response
// body. Non-2xx statuses come back as classified taxonomy errors.
func (c *platformClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, c.retryOpts, func() error {
		return c.limiter.Do(ctx, c.platform, func() error {
			start := time.Now()
			req := c.rest.R().SetContext(ctx)
			if query != nil {
				req.SetQueryParamsFromValues(query)
			}

			resp, err := req.Get(path)
			FetchDurationSeconds.WithLabelValues(string(c.platform)).Observe(time.Since(start).Seconds())
			if err != nil {
				classified := types.Classify(err, c.platform)
				FetchErrorsTotal.WithLabelValues(string(c.platform), string(classified.Kind)).Inc()
				return classified
			}

			if resp.IsError() {
				statusErr := types.NewHTTPStatusError(c.platform, resp.StatusCode(), parseRetryAfter(resp))
				FetchErrorsTotal.WithLabelValues(string(c.platform), string(statusErr.Kind)).Inc()
				c.logger.Debug("platform-http-error",
					zap.String("platform", string(c.platform)),
					zap.String("path", path),
					zap.Int("status", resp.StatusCode()))
				return statusErr
			}

			body = resp.Body()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

func parseRetryAfter(resp *resty.Response) time.Duration {
	header := resp.Header().Get("Retry-After")
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

// validateRaw runs the declarative schema check on a decoded payload and
// wraps violations in a ValidationFailure carrying the offending bytes.
func validateRaw(platform types.Platform, raw any, payload []byte) error {
	err := validate.Struct(raw)
	if err != nil {
		return types.NewValidationError(platform, payload, err)
	}
	return nil
}
