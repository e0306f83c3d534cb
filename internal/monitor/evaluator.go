package monitor

import (
	"fmt"

	"github.com/t77yq/sysmon/internal/model"
)

// Thresholds holds the resource limits a sample is evaluated against.
// All values are percentages in (0, 100].
type Thresholds struct {
	CPU    float64
	Memory float64
	Disk   float64
}

// EvaluateThresholds compares one sample against the configured limits and
// returns zero or more alerts, always in cpu, memory, disk order. The
// comparison is strictly greater-than: a sample exactly at a threshold does
// not alert.
func EvaluateThresholds(sample *model.MetricSample, thresholds Thresholds) []*model.Alert {
	var alerts []*model.Alert

	if sample.CPUPercent > thresholds.CPU {
		alerts = append(alerts, model.NewAlert(model.AlertTypeHighCPU,
			fmt.Sprintf("High CPU usage: %.1f%%", sample.CPUPercent)))
	}
	if sample.MemoryPercent > thresholds.Memory {
		alerts = append(alerts, model.NewAlert(model.AlertTypeHighMemory,
			fmt.Sprintf("High memory usage: %.1f%%", sample.MemoryPercent)))
	}
	if sample.DiskPercent > thresholds.Disk {
		alerts = append(alerts, model.NewAlert(model.AlertTypeHighDisk,
			fmt.Sprintf("Low disk space: %.1f%% used", sample.DiskPercent)))
	}

	return alerts
}

// EvaluateProbe applies the probe alert policy to one result: a transport
// failure (populated error) yields web_error, a non-200 response yields
// web_down, a healthy endpoint yields nothing. The policy is stateless and
// fires every cycle the condition holds; there is no suppression.
func EvaluateProbe(result *model.ProbeResult) *model.Alert {
	if result.IsUp {
		return nil
	}
	if result.Error != "" {
		return model.NewAlert(model.AlertTypeWebError,
			fmt.Sprintf("Check of %s failed: %s", result.EndpointName, result.Error))
	}
	return model.NewAlert(model.AlertTypeWebDown,
		fmt.Sprintf("Service %s is unavailable", result.EndpointName))
}
