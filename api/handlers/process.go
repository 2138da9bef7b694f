package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/textcache/ai"
	"github.com/BaSui01/textcache/cache"
	"github.com/BaSui01/textcache/internal/metrics"
	"github.com/BaSui01/textcache/types"
)

// ProcessRequest is the body of POST /api/v1/process.
type ProcessRequest struct {
	Text      string         `json:"text"`
	Operation string         `json:"operation"`
	Question  string         `json:"question,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
	// SkipCache forces a fresh invocation; the result is still cached.
	SkipCache bool `json:"skip_cache,omitempty"`
}

// ProcessResponse is the data payload of a successful process call.
type ProcessResponse struct {
	Result map[string]any `json:"result"`
	Cached bool           `json:"cached"`
}

// ProcessHandler serves text processing through the cache: get, on miss
// invoke the backend, set, respond.
type ProcessHandler struct {
	cache         *cache.TieredCache
	invoker       ai.Invoker
	metrics       *metrics.Collector
	maxTextLength int
	timeout       time.Duration
	logger        *zap.Logger
}

// NewProcessHandler creates a ProcessHandler. metrics may be nil.
func NewProcessHandler(tc *cache.TieredCache, invoker ai.Invoker, collector *metrics.Collector, maxTextLength int, timeout time.Duration, logger *zap.Logger) *ProcessHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessHandler{
		cache:         tc,
		invoker:       invoker,
		metrics:       collector,
		maxTextLength: maxTextLength,
		timeout:       timeout,
		logger:        logger.With(zap.String("component", "process_handler")),
	}
}

// HandleProcess handles POST /api/v1/process.
func (h *ProcessHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req ProcessRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	aiReq := ai.Request{
		Text:      req.Text,
		Operation: req.Operation,
		Question:  req.Question,
		Options:   req.Options,
	}
	if err := aiReq.Validate(h.maxTextLength); err != nil {
		var apiErr *types.Error
		if errors.As(err, &apiErr) {
			WriteError(w, apiErr, h.logger)
		} else {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, err.Error(), h.logger)
		}
		return
	}

	ctx := r.Context()

	if !req.SkipCache {
		if entry, ok := h.cache.Get(ctx, req.Text, req.Operation, req.Options, req.Question); ok {
			h.observe(req.Operation, true)
			WriteSuccess(w, ProcessResponse{Result: entry, Cached: true})
			return
		}
	}

	pctx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := h.invoker.Process(pctx, aiReq)
	if err != nil {
		h.logger.Warn("processing failed",
			zap.String("operation", req.Operation),
			zap.Error(err),
		)
		var apiErr *types.Error
		if errors.As(err, &apiErr) {
			WriteError(w, apiErr, h.logger)
		} else {
			WriteError(w, types.NewError(types.ErrProcessingFailed, "text processing failed").WithCause(err), h.logger)
		}
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveProcessing(req.Operation, time.Since(start))
	}

	if err := h.cache.Set(ctx, req.Text, req.Operation, req.Options, result, req.Question); err != nil {
		// an unserializable result is a backend bug, not a client error
		h.logger.Error("failed to cache result", zap.Error(err))
	}

	h.observe(req.Operation, false)
	WriteSuccess(w, ProcessResponse{Result: result, Cached: false})
}

func (h *ProcessHandler) observe(operation string, hit bool) {
	if h.metrics != nil {
		h.metrics.ObserveCacheLookup(operation, hit)
	}
}
