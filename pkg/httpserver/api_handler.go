package httpserver

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"arbscan/internal/arbitrage"
	"arbscan/internal/queue"
	"arbscan/pkg/cache"
)

// apiHandler serves the read-only scan result endpoints.
type apiHandler struct {
	cache  cache.Cache
	queue  *queue.Queue
	logger *zap.Logger
}

func newAPIHandler(store cache.Cache, q *queue.Queue, logger *zap.Logger) *apiHandler {
	return &apiHandler{
		cache:  store,
		queue:  q,
		logger: logger,
	}
}

// StatsResponse represents the HTTP response for scanner statistics.
type StatsResponse struct {
	Queue queue.Stats `json:"queue"`
	Cache cache.Stats `json:"cache"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleOpportunities handles GET /api/opportunities requests with the
// most recent scan's opportunities.
func (h *apiHandler) HandleOpportunities(w http.ResponseWriter, r *http.Request) {
	var opportunities []arbitrage.Opportunity
	hit, err := cache.GetJSON(r.Context(), h.cache, cache.OpportunitiesLatestKey, &opportunities)
	if err != nil {
		h.logger.Warn("opportunities-read-failed", zap.Error(err))
		h.writeError(w, "failed to read opportunities", http.StatusInternalServerError)
		return
	}
	if !hit {
		opportunities = []arbitrage.Opportunity{}
	}

	h.writeJSON(w, opportunities)
}

// HandleStats handles GET /api/stats requests.
func (h *apiHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	queueStats, err := h.queue.Stats(r.Context())
	if err != nil {
		h.logger.Warn("queue-stats-read-failed", zap.Error(err))
		h.writeError(w, "failed to read queue stats", http.StatusInternalServerError)
		return
	}

	cacheStats, err := h.cache.Stats(r.Context())
	if err != nil {
		h.logger.Warn("cache-stats-read-failed", zap.Error(err))
		h.writeError(w, "failed to read cache stats", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, StatsResponse{
		Queue: queueStats,
		Cache: cacheStats,
	})
}

func (h *apiHandler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *apiHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(ErrorResponse{Error: message})
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
