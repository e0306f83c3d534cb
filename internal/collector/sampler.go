package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/metrics"
	"github.com/t77yq/sysmon/internal/model"
)

// DefaultCPUWindow is the averaging window for CPU utilization. Anything
// below a second produces spurious instantaneous spikes.
const DefaultCPUWindow = time.Second

// Sampler reads instantaneous OS-level resource usage.
type Sampler struct {
	logger    *zap.Logger
	metrics   *metrics.Registry
	cpuWindow time.Duration
	diskPath  string
}

// NewSampler creates a sampler that reports disk usage of the root volume.
func NewSampler(logger *zap.Logger, registry *metrics.Registry) *Sampler {
	return &Sampler{
		logger:    logger.Named("sampler"),
		metrics:   registry,
		cpuWindow: DefaultCPUWindow,
		diskPath:  "/",
	}
}

// Sample reads CPU, memory, disk and load average and updates the system
// gauges. The CPU reading blocks for the averaging window. A missing load
// average is reported as 0, not as a failure; any other OS-query error
// fails the whole sample.
func (s *Sampler) Sample(ctx context.Context) (*model.MetricSample, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, s.cpuWindow, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	if len(cpuPercents) == 0 {
		return nil, fmt.Errorf("CPU usage query returned no values")
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory usage: %w", err)
	}

	diskInfo, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage: %w", err)
	}

	loadAvg := 0.0
	if avg, err := load.AvgWithContext(ctx); err != nil {
		// Not exposed on every platform. A zero load average is a
		// degraded but valid sample.
		s.logger.Debug("Load average unavailable", zap.Error(err))
	} else {
		loadAvg = avg.Load1
	}

	sample := &model.MetricSample{
		CPUPercent:    cpuPercents[0],
		MemoryPercent: memInfo.UsedPercent,
		DiskPercent:   diskInfo.UsedPercent,
		LoadAverage:   loadAvg,
		Timestamp:     time.Now(),
	}

	s.metrics.RecordSample(sample.CPUPercent, sample.MemoryPercent, sample.DiskPercent, sample.LoadAverage)

	s.logger.Debug("Sample collected",
		zap.Float64("cpu_percent", sample.CPUPercent),
		zap.Float64("memory_percent", sample.MemoryPercent),
		zap.Float64("disk_percent", sample.DiskPercent),
		zap.Float64("load_average", sample.LoadAverage))

	return sample, nil
}
