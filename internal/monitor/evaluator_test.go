package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t77yq/sysmon/internal/model"
)

func sample(cpu, memory, disk float64) *model.MetricSample {
	return &model.MetricSample{
		CPUPercent:    cpu,
		MemoryPercent: memory,
		DiskPercent:   disk,
		LoadAverage:   1.0,
		Timestamp:     time.Now(),
	}
}

func TestEvaluateThresholds(t *testing.T) {
	thresholds := Thresholds{CPU: 80, Memory: 85, Disk: 90}

	t.Run("NoBreaches", func(t *testing.T) {
		alerts := EvaluateThresholds(sample(50, 50, 50), thresholds)
		assert.Empty(t, alerts)
	})

	t.Run("CPUAboveThreshold", func(t *testing.T) {
		alerts := EvaluateThresholds(sample(81.2, 50, 50), thresholds)
		require.Len(t, alerts, 1)
		assert.Equal(t, model.AlertTypeHighCPU, alerts[0].Type)
		assert.Contains(t, alerts[0].Message, "81.2")
		assert.NotEmpty(t, alerts[0].ID)
		assert.False(t, alerts[0].Resolved)
	})

	t.Run("ExactlyAtThresholdDoesNotAlert", func(t *testing.T) {
		alerts := EvaluateThresholds(sample(80, 85, 90), thresholds)
		assert.Empty(t, alerts)
	})

	t.Run("JustAboveThresholdAlerts", func(t *testing.T) {
		alerts := EvaluateThresholds(sample(80.1, 50, 50), thresholds)
		require.Len(t, alerts, 1)
		assert.Equal(t, model.AlertTypeHighCPU, alerts[0].Type)
	})

	t.Run("MemoryAndDisk", func(t *testing.T) {
		alerts := EvaluateThresholds(sample(10, 90.5, 95.25), thresholds)
		require.Len(t, alerts, 2)
		assert.Equal(t, model.AlertTypeHighMemory, alerts[0].Type)
		assert.Contains(t, alerts[0].Message, "90.5")
		assert.Equal(t, model.AlertTypeHighDisk, alerts[1].Type)
		// One decimal place in messages.
		assert.Contains(t, alerts[1].Message, "95.2")
	})

	t.Run("OrderIsAlwaysCPUMemoryDisk", func(t *testing.T) {
		alerts := EvaluateThresholds(sample(99, 99, 99), thresholds)
		require.Len(t, alerts, 3)
		assert.Equal(t, model.AlertTypeHighCPU, alerts[0].Type)
		assert.Equal(t, model.AlertTypeHighMemory, alerts[1].Type)
		assert.Equal(t, model.AlertTypeHighDisk, alerts[2].Type)
	})
}

func TestEvaluateProbe(t *testing.T) {
	t.Run("UpYieldsNothing", func(t *testing.T) {
		alert := EvaluateProbe(&model.ProbeResult{
			EndpointName: "API",
			StatusCode:   200,
			IsUp:         true,
		})
		assert.Nil(t, alert)
	})

	t.Run("TransportFailureYieldsWebError", func(t *testing.T) {
		alert := EvaluateProbe(&model.ProbeResult{
			EndpointName: "API",
			StatusCode:   0,
			IsUp:         false,
			Error:        "context deadline exceeded",
		})
		require.NotNil(t, alert)
		assert.Equal(t, model.AlertTypeWebError, alert.Type)
		assert.Contains(t, alert.Message, "API")
		assert.Contains(t, alert.Message, "context deadline exceeded")
	})

	t.Run("Non200YieldsWebDown", func(t *testing.T) {
		alert := EvaluateProbe(&model.ProbeResult{
			EndpointName: "Main App",
			StatusCode:   503,
			IsUp:         false,
		})
		require.NotNil(t, alert)
		assert.Equal(t, model.AlertTypeWebDown, alert.Type)
		assert.Contains(t, alert.Message, "Main App")
	})

	t.Run("FiresEveryCycleWithoutSuppression", func(t *testing.T) {
		result := &model.ProbeResult{EndpointName: "API", IsUp: false, Error: "refused"}
		first := EvaluateProbe(result)
		second := EvaluateProbe(result)
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.NotEqual(t, first.ID, second.ID)
	})
}
