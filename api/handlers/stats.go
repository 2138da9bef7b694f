package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BaSui01/textcache/monitor"
	"github.com/BaSui01/textcache/types"
)

// StatsHandler exposes the performance monitor over HTTP.
type StatsHandler struct {
	monitor *monitor.Monitor
	logger  *zap.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(mon *monitor.Monitor, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{
		monitor: mon,
		logger:  logger.With(zap.String("component", "stats_handler")),
	}
}

// HandleStats handles GET /api/v1/cache/stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}
	WriteSuccess(w, h.monitor.PerformanceStats())
}

// HandleSlowOperations handles GET /api/v1/cache/stats/slow. The
// multiplier query parameter overrides the default threshold of 2x mean.
func (h *StatsHandler) HandleSlowOperations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}

	multiplier := 2.0
	if raw := r.URL.Query().Get("multiplier"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "multiplier must be a positive number", h.logger)
			return
		}
		multiplier = parsed
	}

	WriteSuccess(w, h.monitor.RecentSlowOperations(multiplier))
}

// HandleInvalidationStats handles GET /api/v1/cache/stats/invalidation.
func (h *StatsHandler) HandleInvalidationStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}

	WriteSuccess(w, map[string]any{
		"frequency":       h.monitor.InvalidationFrequencyStats(),
		"recommendations": h.monitor.InvalidationRecommendations(),
	})
}

// HandleExport handles GET /api/v1/cache/stats/export: the full metric
// dump for offline analysis.
func (h *StatsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}
	WriteSuccess(w, h.monitor.ExportMetrics())
}

// HandleReset handles POST /api/v1/cache/stats/reset.
func (h *StatsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}

	h.monitor.Reset()
	h.logger.Info("performance metrics reset")
	WriteSuccess(w, map[string]string{"status": "reset"})
}
