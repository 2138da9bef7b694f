package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/textcache/ai"
	"github.com/BaSui01/textcache/api/handlers"
	"github.com/BaSui01/textcache/cache"
	"github.com/BaSui01/textcache/config"
	"github.com/BaSui01/textcache/internal/metrics"
	"github.com/BaSui01/textcache/internal/server"
	"github.com/BaSui01/textcache/internal/telemetry"
	"github.com/BaSui01/textcache/monitor"
	"github.com/BaSui01/textcache/store"
)

// Server wires the cache, the processing backend and the HTTP surface
// together and owns their lifecycle.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	st        *store.RedisStore
	mon       *monitor.Monitor
	tiered    *cache.TieredCache
	invoker   ai.Invoker
	collector *metrics.Collector
	telemetry *telemetry.Providers

	httpServer    *server.Manager
	metricsServer *server.Manager

	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewServer builds all components from cfg. Construction does not touch
// the network; that happens in Start.
func NewServer(cfg *config.Config, logger *zap.Logger, providers *telemetry.Providers) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		telemetry: providers,
	}

	s.st = store.NewRedisStore(cfg.StoreConfig(), logger)
	s.mon = monitor.New(cfg.MonitorConfig(), logger)

	tiered, err := cache.New(cfg.CacheConfig(), s.st, s.mon, logger)
	if err != nil {
		// Validate ran before NewServer, so this is a programming error.
		logger.Fatal("failed to build cache", zap.Error(err))
	}
	s.tiered = tiered

	s.invoker = ai.NewLocal(logger)
	s.collector = metrics.NewCollector("textcache", tiered.MemoryLen, logger)

	return s
}

// Start launches the API server and, when configured, the metrics server.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	handler := s.buildHandler(ctx)

	s.httpServer = server.NewManager(handler, server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout.Std(),
		WriteTimeout:    s.cfg.Server.WriteTimeout.Std(),
		IdleTimeout:     120 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout.Std(),
	}, s.logger.With(zap.String("server", "api")))

	if err := s.httpServer.Start(); err != nil {
		return fmt.Errorf("start API server: %w", err)
	}
	s.logger.Info("API server started", zap.String("addr", s.httpServer.Addr()))

	if s.cfg.Server.MetricsPort > 0 {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())

		s.metricsServer = server.NewManager(metricsMux, server.Config{
			Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: s.cfg.Server.ShutdownTimeout.Std(),
		}, s.logger.With(zap.String("server", "metrics")))

		if err := s.metricsServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		s.logger.Info("metrics server started", zap.String("addr", s.metricsServer.Addr()))
	}

	return nil
}

// buildHandler assembles the route table and the middleware chain.
func (s *Server) buildHandler(ctx context.Context) http.Handler {
	processHandler := handlers.NewProcessHandler(
		s.tiered, s.invoker, s.collector,
		s.cfg.AI.MaxTextLength, s.cfg.AI.Timeout.Std(), s.logger,
	)
	statsHandler := handlers.NewStatsHandler(s.mon, s.logger)
	adminHandler := handlers.NewCacheAdminHandler(s.tiered, s.st, s.collector, s.logger)

	healthHandler := handlers.NewHealthHandler(s.logger)
	healthHandler.RegisterCheck(handlers.NewPingHealthCheck("redis", func(ctx context.Context) error {
		if !s.st.Connect(ctx) {
			return errors.New("redis unreachable")
		}
		return nil
	}))

	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", healthHandler.HandleReady)
	mux.HandleFunc("/readyz", healthHandler.HandleReady)
	mux.HandleFunc("/version", healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("/api/v1/process", processHandler.HandleProcess)

	mux.HandleFunc("/api/v1/cache/stats", statsHandler.HandleStats)
	mux.HandleFunc("/api/v1/cache/stats/slow", statsHandler.HandleSlowOperations)
	mux.HandleFunc("/api/v1/cache/stats/invalidation", statsHandler.HandleInvalidationStats)
	mux.HandleFunc("/api/v1/cache/stats/export", statsHandler.HandleExport)
	mux.HandleFunc("/api/v1/cache/stats/reset", statsHandler.HandleReset)

	mux.HandleFunc("/api/v1/cache/invalidate", adminHandler.HandleInvalidate)
	mux.HandleFunc("/api/v1/cache/status", adminHandler.HandleStatus)

	skipAuth := []string{"/health", "/healthz", "/ready", "/readyz", "/version"}

	return Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(ctx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		APIKeyAuth(s.cfg.Server.APIKey, skipAuth, s.logger),
		MetricsMiddleware(s.collector),
		OTelTracing(s.cfg.Telemetry.ServiceName),
	)
}

// WaitForShutdown blocks until a termination signal or a server error,
// then runs the shutdown sequence.
func (s *Server) WaitForShutdown() {
	s.httpServer.WaitForShutdown()
	s.Shutdown()
}

// Shutdown stops the servers, flushes telemetry and closes the store.
// Safe to call more than once.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Std())
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(ctx); err != nil {
				s.logger.Error("API server shutdown failed", zap.Error(err))
			}
		}
		if s.metricsServer != nil {
			if err := s.metricsServer.Shutdown(ctx); err != nil {
				s.logger.Error("metrics server shutdown failed", zap.Error(err))
			}
		}

		if s.cancel != nil {
			s.cancel()
		}

		if err := s.telemetry.Shutdown(ctx); err != nil {
			s.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}

		if err := s.st.Close(); err != nil {
			s.logger.Warn("store close failed", zap.Error(err))
		}
	})
}
