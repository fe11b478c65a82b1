// Package app wires the scanner's components together and owns their
// lifecycle.
package app

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"arbscan/internal/queue"
	"arbscan/internal/scanner"
	"arbscan/internal/scheduler"
	"arbscan/pkg/cache"
	"arbscan/pkg/config"
	"arbscan/pkg/healthprobe"
	"arbscan/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	store         cache.Cache
	redisClient   *redis.Client
	orchestrator  *scanner.Orchestrator
	jobQueue      *queue.Queue
	worker        *queue.Worker
	scheduler     *scheduler.Scheduler
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}
