package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertType represents the type of alert
type AlertType string

const (
	AlertTypeHighCPU    AlertType = "high_cpu"
	AlertTypeHighMemory AlertType = "high_memory"
	AlertTypeHighDisk   AlertType = "high_disk"
	AlertTypeWebDown    AlertType = "web_down"
	AlertTypeWebError   AlertType = "web_error"
)

// Alert represents a single detected condition. The core never resolves
// alerts; Resolved is persisted for an external operator to flip.
type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"alert_type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

// NewAlert creates an alert with a fresh ID and the current time.
func NewAlert(alertType AlertType, message string) *Alert {
	return &Alert{
		ID:        uuid.New().String(),
		Type:      alertType,
		Message:   message,
		Timestamp: time.Now(),
	}
}
