package collector

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/t77yq/sysmon/internal/metrics"
)

func TestSampler_Sample(t *testing.T) {
	registry := metrics.NewRegistry()
	s := NewSampler(zaptest.NewLogger(t), registry)
	s.cpuWindow = 100 * time.Millisecond // keep the test fast

	sample, err := s.Sample(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sample)

	assert.GreaterOrEqual(t, sample.CPUPercent, 0.0)
	assert.LessOrEqual(t, sample.CPUPercent, 100.0)
	assert.Greater(t, sample.MemoryPercent, 0.0)
	assert.LessOrEqual(t, sample.MemoryPercent, 100.0)
	assert.Greater(t, sample.DiskPercent, 0.0)
	assert.LessOrEqual(t, sample.DiskPercent, 100.0)
	assert.GreaterOrEqual(t, sample.LoadAverage, 0.0)
	assert.WithinDuration(t, time.Now(), sample.Timestamp, 5*time.Second)
}

func TestSampler_UpdatesGauges(t *testing.T) {
	registry := metrics.NewRegistry()
	s := NewSampler(zaptest.NewLogger(t), registry)
	s.cpuWindow = 100 * time.Millisecond

	sample, err := s.Sample(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sample.CPUPercent, testutil.ToFloat64(registry.CPUUsage))
	assert.Equal(t, sample.MemoryPercent, testutil.ToFloat64(registry.MemoryUsage))
	assert.Equal(t, sample.DiskPercent, testutil.ToFloat64(registry.DiskUsage))
	assert.Equal(t, sample.LoadAverage, testutil.ToFloat64(registry.LoadAverage))
}
