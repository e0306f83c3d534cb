package model

import "time"

// Endpoint describes one HTTP endpoint to probe. Endpoints come from
// configuration and are read-only to the monitoring core.
type Endpoint struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
}

// ProbeResult is the outcome of a single liveness check of one endpoint.
// Transport-level failures are encoded in the result rather than returned
// as errors: StatusCode 0, IsUp false, ResponseTime 0 and a non-empty Error.
type ProbeResult struct {
	EndpointName string    `json:"endpoint_name"`
	URL          string    `json:"url"`
	StatusCode   int       `json:"status_code"`
	ResponseTime float64   `json:"response_time"` // seconds
	IsUp         bool      `json:"is_up"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
