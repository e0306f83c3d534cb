package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/t77yq/sysmon/internal/model"
)

// Config holds every configurable value for the monitoring daemon.
type Config struct {
	CheckInterval   int     `mapstructure:"check_interval"` // seconds
	CPUThreshold    float64 `mapstructure:"cpu_threshold"`  // percent
	MemoryThreshold float64 `mapstructure:"memory_threshold"`
	DiskThreshold   float64 `mapstructure:"disk_threshold"`

	EmailAlerts   bool   `mapstructure:"email_alerts"`
	SMTPServer    string `mapstructure:"smtp_server"`
	SMTPPort      int    `mapstructure:"smtp_port"`
	EmailFrom     string `mapstructure:"email_from"`
	EmailTo       string `mapstructure:"email_to"`
	EmailPassword string `mapstructure:"email_password"`

	WebEndpoints []model.Endpoint `mapstructure:"web_endpoints"`

	DBPath        string `mapstructure:"db_path"`
	MetricsPort   int    `mapstructure:"metrics_port"`
	DashboardPort int    `mapstructure:"dashboard_port"`
	LogLevel      string `mapstructure:"log_level"`

	ReportSchedule    string `mapstructure:"report_schedule"`
	ReportWindowHours int    `mapstructure:"report_window_hours"`
}

// Interval returns the check interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}

// Load reads configuration from (in increasing priority): built-in defaults,
// an optional YAML file in configPath, and environment variables. Missing
// keys fall back to defaults; user-supplied keys override by shallow merge.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("check_interval", 60)
	v.SetDefault("cpu_threshold", 80.0)
	v.SetDefault("memory_threshold", 85.0)
	v.SetDefault("disk_threshold", 90.0)
	v.SetDefault("email_alerts", true)
	v.SetDefault("smtp_server", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("email_from", "monitor@example.com")
	v.SetDefault("email_to", "admin@example.com")
	v.SetDefault("email_password", "")
	v.SetDefault("web_endpoints", []map[string]string{
		{"name": "Main App", "url": "http://localhost:8000/health"},
		{"name": "API Service", "url": "http://localhost:3000/api/health"},
	})
	v.SetDefault("db_path", "data/monitoring.db")
	v.SetDefault("metrics_port", 8000)
	v.SetDefault("dashboard_port", 5000)
	v.SetDefault("log_level", "info")
	v.SetDefault("report_schedule", "0 0 * * *")
	v.SetDefault("report_window_hours", 24)

	v.AutomaticEnv()
	v.SetEnvPrefix("SYSMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	if err := v.ReadInConfig(); err != nil {
		// The file is optional; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces the threshold and interval invariants.
func (c *Config) Validate() error {
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive, got %d", c.CheckInterval)
	}
	for name, value := range map[string]float64{
		"cpu_threshold":    c.CPUThreshold,
		"memory_threshold": c.MemoryThreshold,
		"disk_threshold":   c.DiskThreshold,
	} {
		if value <= 0 || value > 100 {
			return fmt.Errorf("%s must be in (0, 100], got %.1f", name, value)
		}
	}
	for _, ep := range c.WebEndpoints {
		if ep.Name == "" || ep.URL == "" {
			return fmt.Errorf("web endpoint entries require both name and url")
		}
	}
	return nil
}
