package report

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/storage"
)

// Report is a periodic summary of stored observations.
type Report struct {
	PeriodHours  int                   `json:"period_hours"`
	AvgCPU       float64               `json:"avg_cpu"`
	AvgMemory    float64               `json:"avg_memory"`
	AvgDisk      float64               `json:"avg_disk"`
	WebEndpoints []*storage.UptimeStat `json:"web_endpoints"`
	ActiveAlerts int                   `json:"active_alerts"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// Generator computes summary reports from the observation store on a cron
// schedule and writes them to the log. It never feeds back into alerting.
type Generator struct {
	logger      *zap.Logger
	store       storage.ObservationStore
	cron        *cron.Cron
	windowHours int
}

// cronLogger adapts zap.Logger to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err))
}

// NewGenerator creates a report generator over the given window.
func NewGenerator(logger *zap.Logger, store storage.ObservationStore, windowHours int) *Generator {
	named := logger.Named("report")
	return &Generator{
		logger: named,
		store:  store,
		cron: cron.New(
			cron.WithChain(cron.Recover(&cronLogger{logger: named.Named("cron")})),
		),
		windowHours: windowHours,
	}
}

// Generate computes one report over the trailing window.
func (g *Generator) Generate(ctx context.Context, hours int) (*Report, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	summary, err := g.store.Summarize(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize metrics: %w", err)
	}

	stats, err := g.store.UptimeStats(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to compute uptime stats: %w", err)
	}

	return &Report{
		PeriodHours:  hours,
		AvgCPU:       summary.AvgCPU,
		AvgMemory:    summary.AvgMemory,
		AvgDisk:      summary.AvgDisk,
		WebEndpoints: stats,
		ActiveAlerts: summary.ActiveAlerts,
		GeneratedAt:  time.Now(),
	}, nil
}

// Schedule registers the periodic report job and starts the cron runner.
func (g *Generator) Schedule(ctx context.Context, spec string) error {
	_, err := g.cron.AddFunc(spec, func() {
		report, err := g.Generate(ctx, g.windowHours)
		if err != nil {
			g.logger.Warn("Failed to generate report", zap.Error(err))
			return
		}
		g.log(report)
	})
	if err != nil {
		return fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}

	g.cron.Start()
	g.logger.Info("Report generation scheduled", zap.String("schedule", spec))
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (g *Generator) Stop() {
	ctx := g.cron.Stop()
	<-ctx.Done()
}

func (g *Generator) log(report *Report) {
	g.logger.Info("Periodic report",
		zap.Int("period_hours", report.PeriodHours),
		zap.Float64("avg_cpu", report.AvgCPU),
		zap.Float64("avg_memory", report.AvgMemory),
		zap.Float64("avg_disk", report.AvgDisk),
		zap.Int("active_alerts", report.ActiveAlerts))

	for _, stat := range report.WebEndpoints {
		g.logger.Info("Endpoint uptime",
			zap.String("endpoint", stat.EndpointName),
			zap.Float64("uptime_percent", stat.UptimePercent),
			zap.Float64("avg_response_time", stat.AvgResponseTime),
			zap.Int("total_checks", stat.TotalChecks))
	}
}
