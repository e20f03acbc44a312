package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/wardsight/wardsight/internal/adapters/http/api"
	"github.com/wardsight/wardsight/internal/adapters/repository"
	"github.com/wardsight/wardsight/internal/adapters/ws"
	service "github.com/wardsight/wardsight/internal/app"
	"github.com/wardsight/wardsight/internal/config"
	"github.com/wardsight/wardsight/internal/domain/alarm"
	"github.com/wardsight/wardsight/internal/domain/scoring"
	"github.com/wardsight/wardsight/internal/replay"
	"github.com/wardsight/wardsight/internal/scheduler"
	"github.com/wardsight/wardsight/pkg/logger"
	"github.com/wardsight/wardsight/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts, err := serviceOptions(ctx, cfg, loggerInstance)
	if err != nil {
		os.Stderr.WriteString("failed to prepare service: " + err.Error() + "\n")
		return
	}

	// Create and start the service with configuration options
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// Viewer fan-out hub and the periodic snapshot scheduler.
	hub := ws.NewHub(
		ws.WithLogger(loggerInstance),
		ws.WithSendBuffer(cfg.ViewerSendBuffer),
		ws.WithWriteTimeout(time.Duration(cfg.ViewerWriteTimeoutMS)*time.Millisecond),
	)
	sched := scheduler.New(svc, hub,
		scheduler.WithLogger(loggerInstance),
		scheduler.WithInterval(time.Duration(cfg.TickIntervalMS)*time.Millisecond),
	)
	sched.Start(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc, hub)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("mode", cfg.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	sched.Stop()
	hub.Close()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// serviceOptions translates the loaded configuration into service
// construction options, loading the replay dataset and connecting the
// record store as needed.
func serviceOptions(ctx context.Context, cfg *config.Config, loggerInstance logger.Logger) ([]service.Option, error) {
	opts := []service.Option{
		service.WithLogger(loggerInstance),
		service.WithPersistQueueSize(cfg.PersistQueueSize),
		service.WithPersistWorkers(cfg.PersistWorkers),
	}

	if len(cfg.TargetPatients) > 0 {
		opts = append(opts, service.WithTargetPatients(cfg.TargetPatients))
	}
	if len(cfg.PatientNames) > 0 {
		opts = append(opts, service.WithPatientNames(cfg.PatientNames))
	}

	if cfg.RedisAddr != "" {
		var redisOpts []repository.RedisOption
		if cfg.RedisKeyPrefix != "" {
			redisOpts = append(redisOpts, repository.WithKeyPrefix(cfg.RedisKeyPrefix))
		}
		store, err := repository.NewRedisStore(ctx, cfg.RedisAddr, redisOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithStore(store))
	}

	if cfg.Mode == config.ModeReplay {
		dataset, err := replay.Load(cfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		loggerInstance.Info(ctx, "replay dataset loaded",
			logger.String("path", cfg.DatasetPath),
			logger.Int("patients", len(dataset.Patients())),
			logger.Int("max_window", dataset.MaxWindow()))
		opts = append(opts, service.WithDataset(dataset))
	}

	if len(cfg.Thresholds) > 0 {
		thresholds := alarm.DefaultThresholds()
		for feature, override := range cfg.Thresholds {
			t := alarm.Threshold{Min: override.Min, Max: override.Max, Name: override.Name}
			if t.Name == "" {
				t.Name = thresholds[feature].Name
			}
			thresholds[feature] = t
		}
		opts = append(opts, service.WithThresholds(thresholds))
	}

	if len(cfg.ModelWeights) > 0 || cfg.ModelIntercept != nil {
		var modelOpts []scoring.Option
		if len(cfg.ModelWeights) > 0 {
			modelOpts = append(modelOpts, scoring.WithFeatureWeights(cfg.ModelWeights))
		}
		if cfg.ModelIntercept != nil {
			modelOpts = append(modelOpts, scoring.WithIntercept(*cfg.ModelIntercept))
		}
		opts = append(opts, service.WithModel(scoring.NewLogisticModel(modelOpts...)))
	}

	return opts, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval) // Update every 10 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval) // Update every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *service.Service) {
	// Get current stats from the service
	stats := svc.GetStats()

	// The GetStats method already refreshes most gauges; mirror the
	// headline counts here so they stay fresh between requests.
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdatePersistQueueDepth(queueLen)
	}

	if monitored, ok := stats["monitoredPatients"].(int); ok {
		metrics.UpdateMonitoredPatients(monitored)
	}

	if held, ok := stats["heldDevices"].(int); ok {
		metrics.UpdateHeldDevices(held)
	}
}
