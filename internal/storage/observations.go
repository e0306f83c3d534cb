package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/model"
)

// UptimeStat aggregates probe outcomes for one endpoint over a window.
type UptimeStat struct {
	EndpointName     string  `json:"name"`
	TotalChecks      int     `json:"total_checks"`
	SuccessfulChecks int     `json:"successful_checks"`
	UptimePercent    float64 `json:"uptime_percent"`
	AvgResponseTime  float64 `json:"avg_response_time"`
}

// Summary aggregates system metrics and alert counts over a window.
type Summary struct {
	AvgCPU       float64 `json:"avg_cpu"`
	AvgMemory    float64 `json:"avg_memory"`
	AvgDisk      float64 `json:"avg_disk"`
	ActiveAlerts int     `json:"active_alerts"`
}

// ObservationStore is append-only persistence for the monitoring core plus
// the read-side queries used by the dashboard and report generator. The
// core only inserts; nothing here updates or deletes.
type ObservationStore interface {
	// InsertSample appends one metric sample.
	InsertSample(ctx context.Context, sample *model.MetricSample) error

	// InsertProbeResult appends one probe result.
	InsertProbeResult(ctx context.Context, result *model.ProbeResult) error

	// InsertAlert appends one alert.
	InsertAlert(ctx context.Context, alert *model.Alert) error

	// LatestSample returns the most recent sample, or nil if none exists.
	LatestSample(ctx context.Context) (*model.MetricSample, error)

	// SampleHistory returns samples newer than since, oldest first.
	SampleHistory(ctx context.Context, since time.Time) ([]*model.MetricSample, error)

	// LatestProbeStatus returns the newest probe result per endpoint
	// among results newer than since.
	LatestProbeStatus(ctx context.Context, since time.Time) ([]*model.ProbeResult, error)

	// RecentAlerts returns up to limit alerts, newest first.
	RecentAlerts(ctx context.Context, limit int) ([]*model.Alert, error)

	// UptimeStats returns per-endpoint uptime aggregates for results
	// newer than since.
	UptimeStats(ctx context.Context, since time.Time) ([]*UptimeStat, error)

	// Summarize returns averaged system metrics and the unresolved alert
	// count for observations newer than since.
	Summarize(ctx context.Context, since time.Time) (*Summary, error)
}

// SQLiteStore implements ObservationStore using SQLite.
type SQLiteStore struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the observation database.
func NewSQLiteStore(logger *zap.Logger, dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers anyway; a single connection avoids
	// SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		logger: logger.Named("storage"),
		db:     db,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the necessary tables if they don't exist
func (s *SQLiteStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS system_metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cpu_percent REAL NOT NULL,
			memory_percent REAL NOT NULL,
			disk_percent REAL NOT NULL,
			load_average REAL NOT NULL,
			timestamp DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS web_checks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			endpoint_name TEXT NOT NULL,
			url TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			response_time REAL NOT NULL,
			is_up BOOLEAN NOT NULL,
			error TEXT,
			timestamp DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			alert_type TEXT NOT NULL,
			message TEXT NOT NULL,
			resolved BOOLEAN NOT NULL DEFAULT 0,
			timestamp DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_system_metrics_timestamp ON system_metrics(timestamp);
		CREATE INDEX IF NOT EXISTS idx_web_checks_endpoint ON web_checks(endpoint_name);
		CREATE INDEX IF NOT EXISTS idx_web_checks_timestamp ON web_checks(timestamp);
		CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts(timestamp);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// InsertSample implements ObservationStore.InsertSample
func (s *SQLiteStore) InsertSample(ctx context.Context, sample *model.MetricSample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_metrics (
			cpu_percent, memory_percent, disk_percent, load_average, timestamp
		) VALUES (?, ?, ?, ?, ?)`,
		sample.CPUPercent,
		sample.MemoryPercent,
		sample.DiskPercent,
		sample.LoadAverage,
		sample.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store metric sample: %w", err)
	}
	return nil
}

// InsertProbeResult implements ObservationStore.InsertProbeResult
func (s *SQLiteStore) InsertProbeResult(ctx context.Context, result *model.ProbeResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO web_checks (
			endpoint_name, url, status_code, response_time, is_up, error, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.EndpointName,
		result.URL,
		result.StatusCode,
		result.ResponseTime,
		result.IsUp,
		sql.NullString{String: result.Error, Valid: result.Error != ""},
		result.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store probe result: %w", err)
	}
	return nil
}

// InsertAlert implements ObservationStore.InsertAlert
func (s *SQLiteStore) InsertAlert(ctx context.Context, alert *model.Alert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, alert_type, message, resolved, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		alert.ID,
		string(alert.Type),
		alert.Message,
		alert.Resolved,
		alert.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store alert: %w", err)
	}
	return nil
}

// LatestSample implements ObservationStore.LatestSample
func (s *SQLiteStore) LatestSample(ctx context.Context) (*model.MetricSample, error) {
	var sample model.MetricSample
	err := s.db.QueryRowContext(ctx, `
		SELECT cpu_percent, memory_percent, disk_percent, load_average, timestamp
		FROM system_metrics
		ORDER BY timestamp DESC
		LIMIT 1`).Scan(
		&sample.CPUPercent,
		&sample.MemoryPercent,
		&sample.DiskPercent,
		&sample.LoadAverage,
		&sample.Timestamp,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan latest sample: %w", err)
	}
	return &sample, nil
}

// SampleHistory implements ObservationStore.SampleHistory
func (s *SQLiteStore) SampleHistory(ctx context.Context, since time.Time) ([]*model.MetricSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cpu_percent, memory_percent, disk_percent, load_average, timestamp
		FROM system_metrics
		WHERE timestamp > ?
		ORDER BY timestamp ASC`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query sample history: %w", err)
	}
	defer rows.Close()

	var samples []*model.MetricSample
	for rows.Next() {
		sample := &model.MetricSample{}
		if err := rows.Scan(
			&sample.CPUPercent,
			&sample.MemoryPercent,
			&sample.DiskPercent,
			&sample.LoadAverage,
			&sample.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return samples, nil
}

// LatestProbeStatus implements ObservationStore.LatestProbeStatus
func (s *SQLiteStore) LatestProbeStatus(ctx context.Context, since time.Time) ([]*model.ProbeResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT endpoint_name, url, status_code, response_time, is_up, error, timestamp
		FROM web_checks
		WHERE timestamp > ?
		ORDER BY timestamp DESC`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query probe status: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var results []*model.ProbeResult
	for rows.Next() {
		result := &model.ProbeResult{}
		var errStr sql.NullString
		if err := rows.Scan(
			&result.EndpointName,
			&result.URL,
			&result.StatusCode,
			&result.ResponseTime,
			&result.IsUp,
			&errStr,
			&result.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan probe result: %w", err)
		}
		if errStr.Valid {
			result.Error = errStr.String
		}

		// Rows come newest first; keep only the newest per endpoint.
		if seen[result.EndpointName] {
			continue
		}
		seen[result.EndpointName] = true
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return results, nil
}

// RecentAlerts implements ObservationStore.RecentAlerts
func (s *SQLiteStore) RecentAlerts(ctx context.Context, limit int) ([]*model.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, alert_type, message, resolved, timestamp
		FROM alerts
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*model.Alert
	for rows.Next() {
		alert := &model.Alert{}
		var alertType string
		if err := rows.Scan(
			&alert.ID,
			&alertType,
			&alert.Message,
			&alert.Resolved,
			&alert.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alert.Type = model.AlertType(alertType)
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return alerts, nil
}

// UptimeStats implements ObservationStore.UptimeStats
func (s *SQLiteStore) UptimeStats(ctx context.Context, since time.Time) ([]*UptimeStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT endpoint_name,
		       COUNT(*) AS total_checks,
		       SUM(CASE WHEN is_up = 1 THEN 1 ELSE 0 END) AS successful_checks,
		       AVG(response_time) AS avg_response_time
		FROM web_checks
		WHERE timestamp > ?
		GROUP BY endpoint_name`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query uptime stats: %w", err)
	}
	defer rows.Close()

	var stats []*UptimeStat
	for rows.Next() {
		stat := &UptimeStat{}
		var avgResponse sql.NullFloat64
		if err := rows.Scan(
			&stat.EndpointName,
			&stat.TotalChecks,
			&stat.SuccessfulChecks,
			&avgResponse,
		); err != nil {
			return nil, fmt.Errorf("failed to scan uptime stat: %w", err)
		}
		if stat.TotalChecks > 0 {
			stat.UptimePercent = float64(stat.SuccessfulChecks) / float64(stat.TotalChecks) * 100
		}
		if avgResponse.Valid {
			stat.AvgResponseTime = avgResponse.Float64
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return stats, nil
}

// Summarize implements ObservationStore.Summarize
func (s *SQLiteStore) Summarize(ctx context.Context, since time.Time) (*Summary, error) {
	summary := &Summary{}

	var avgCPU, avgMemory, avgDisk sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(cpu_percent), AVG(memory_percent), AVG(disk_percent)
		FROM system_metrics
		WHERE timestamp > ?`, since.UTC()).Scan(&avgCPU, &avgMemory, &avgDisk)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize system metrics: %w", err)
	}
	if avgCPU.Valid {
		summary.AvgCPU = avgCPU.Float64
	}
	if avgMemory.Valid {
		summary.AvgMemory = avgMemory.Float64
	}
	if avgDisk.Valid {
		summary.AvgDisk = avgDisk.Float64
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM alerts
		WHERE resolved = 0 AND timestamp > ?`, since.UTC()).Scan(&summary.ActiveAlerts)
	if err != nil {
		return nil, fmt.Errorf("failed to count active alerts: %w", err)
	}

	return summary, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
