package model

import "time"

// MetricSample is one point-in-time reading of host resource usage.
// Samples are immutable once produced and are only ever appended to storage.
type MetricSample struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	DiskPercent   float64   `json:"disk_percent"`
	LoadAverage   float64   `json:"load_average"`
	Timestamp     time.Time `json:"timestamp"`
}
