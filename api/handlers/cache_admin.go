package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/textcache/cache"
	"github.com/BaSui01/textcache/internal/metrics"
	"github.com/BaSui01/textcache/store"
	"github.com/BaSui01/textcache/types"
)

// Invalidation scopes accepted by HandleInvalidate.
const (
	ScopePattern   = "pattern"
	ScopeOperation = "operation"
	ScopeAll       = "all"
	ScopeMemory    = "memory"
)

// InvalidateRequest is the body of POST /api/v1/cache/invalidate.
type InvalidateRequest struct {
	// Scope selects what to invalidate: pattern | operation | all | memory.
	Scope string `json:"scope"`
	// Pattern is required for scope "pattern"; Operation for "operation".
	Pattern   string `json:"pattern,omitempty"`
	Operation string `json:"operation,omitempty"`
	// Context tags the invalidation in the monitor (caller identity,
	// deploy id, whatever helps the postmortem).
	Context string `json:"context,omitempty"`
}

// CacheAdminHandler serves cache administration: invalidation and status.
type CacheAdminHandler struct {
	cache   *cache.TieredCache
	store   store.Store
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewCacheAdminHandler creates a CacheAdminHandler. metrics may be nil.
func NewCacheAdminHandler(tc *cache.TieredCache, st store.Store, collector *metrics.Collector, logger *zap.Logger) *CacheAdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheAdminHandler{
		cache:   tc,
		store:   st,
		metrics: collector,
		logger:  logger.With(zap.String("component", "cache_admin_handler")),
	}
}

// HandleInvalidate handles POST /api/v1/cache/invalidate.
func (h *CacheAdminHandler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req InvalidateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	ctx := r.Context()
	switch req.Scope {
	case ScopePattern:
		if req.Pattern == "" {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "pattern is required for scope \"pattern\"", h.logger)
			return
		}
		h.cache.InvalidatePattern(ctx, req.Pattern, req.Context)
	case ScopeOperation:
		if req.Operation == "" {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "operation is required for scope \"operation\"", h.logger)
			return
		}
		h.cache.InvalidateByOperation(ctx, req.Operation, req.Context)
	case ScopeAll:
		h.cache.InvalidateAll(ctx, req.Context)
	case ScopeMemory:
		h.cache.InvalidateMemory(req.Context)
	default:
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "scope must be one of: pattern, operation, all, memory", h.logger)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveInvalidation(req.Scope)
	}
	WriteSuccess(w, map[string]string{"status": "accepted", "scope": req.Scope})
}

// HandleStatus handles GET /api/v1/cache/status: memory tier size plus
// whatever the store reports about itself. An unreachable store is a
// degraded status, not an error response.
func (h *CacheAdminHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}

	ctx := r.Context()
	status := map[string]any{
		"memory_entries":  h.cache.MemoryLen(),
		"store_connected": false,
	}

	if h.store.Connect(ctx) {
		status["store_connected"] = true
		if info, err := h.store.Info(ctx); err != nil {
			h.logger.Warn("store info failed", zap.Error(err))
		} else {
			status["store_info"] = info
		}
	}

	WriteSuccess(w, status)
}
