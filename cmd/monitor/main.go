package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/collector"
	"github.com/t77yq/sysmon/internal/config"
	"github.com/t77yq/sysmon/internal/dashboard"
	"github.com/t77yq/sysmon/internal/metrics"
	"github.com/t77yq/sysmon/internal/monitor"
	"github.com/t77yq/sysmon/internal/notify"
	"github.com/t77yq/sysmon/internal/prober"
	"github.com/t77yq/sysmon/internal/report"
	"github.com/t77yq/sysmon/internal/storage"
)

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = parsed
	return cfg.Build()
}

func main() {
	// Load configuration
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting monitoring daemon",
		zap.Int("check_interval", cfg.CheckInterval),
		zap.Int("endpoints", len(cfg.WebEndpoints)))

	// Open the observation store
	store, err := storage.NewSQLiteStore(logger, cfg.DBPath)
	if err != nil {
		logger.Fatal("Failed to open observation store", zap.Error(err))
	}
	defer store.Close()

	// Metrics registry and scrape endpoint
	registry := metrics.NewRegistry()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", registry.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}
	go func() {
		logger.Info("Metrics exporter listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics exporter failed", zap.Error(err))
		}
	}()

	// Build the monitoring pipeline
	sampler := collector.NewSampler(logger, registry)
	endpointProber := prober.NewProber(logger, registry)
	notifier := notify.NewEmailNotifier(logger, notify.SMTPConfig{
		Host:     cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		From:     cfg.EmailFrom,
		To:       cfg.EmailTo,
		Password: cfg.EmailPassword,
	})
	dispatcher := monitor.NewDispatcher(logger, store, notifier, cfg.EmailAlerts)
	scheduler := monitor.NewScheduler(
		logger,
		sampler,
		endpointProber,
		dispatcher,
		store,
		monitor.Thresholds{
			CPU:    cfg.CPUThreshold,
			Memory: cfg.MemoryThreshold,
			Disk:   cfg.DiskThreshold,
		},
		cfg.WebEndpoints,
		cfg.Interval(),
	)

	// Dashboard read API
	dash := dashboard.NewServer(logger, store, cfg.DashboardPort)
	dash.Start()

	// Periodic report generation
	reporter := report.NewGenerator(logger, store, cfg.ReportWindowHours)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := reporter.Schedule(ctx, cfg.ReportSchedule); err != nil {
		logger.Fatal("Failed to schedule reports", zap.Error(err))
	}

	scheduler.Start(ctx)

	// Wait for the monitoring loop to exit (signal or fatal fault)
	<-scheduler.Done()
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	reporter.Stop()
	if err := dash.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Dashboard shutdown failed", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Metrics exporter shutdown failed", zap.Error(err))
	}

	logger.Info("Monitoring daemon shut down gracefully")
}
