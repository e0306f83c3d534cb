package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/t77yq/sysmon/internal/model"
	"github.com/t77yq/sysmon/internal/storage"
)

func seededStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(zaptest.NewLogger(t), filepath.Join(t.TempDir(), "monitoring.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.InsertSample(ctx, &model.MetricSample{
		CPUPercent: 30, MemoryPercent: 50, DiskPercent: 70, Timestamp: now.Add(-2 * time.Hour),
	}))
	require.NoError(t, store.InsertSample(ctx, &model.MetricSample{
		CPUPercent: 50, MemoryPercent: 70, DiskPercent: 90, Timestamp: now.Add(-time.Hour),
	}))

	for i := 0; i < 4; i++ {
		require.NoError(t, store.InsertProbeResult(ctx, &model.ProbeResult{
			EndpointName: "API",
			URL:          "http://x/health",
			StatusCode:   200,
			IsUp:         i < 3,
			ResponseTime: 0.2,
			Timestamp:    now.Add(-time.Duration(i) * time.Hour),
		}))
	}

	require.NoError(t, store.InsertAlert(ctx, model.NewAlert(model.AlertTypeWebDown, "Service API is unavailable")))

	return store
}

func TestGenerator_Generate(t *testing.T) {
	store := seededStore(t)
	g := NewGenerator(zaptest.NewLogger(t), store, 24)

	rep, err := g.Generate(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 24, rep.PeriodHours)
	assert.InDelta(t, 40.0, rep.AvgCPU, 0.001)
	assert.InDelta(t, 60.0, rep.AvgMemory, 0.001)
	assert.InDelta(t, 80.0, rep.AvgDisk, 0.001)
	assert.Equal(t, 1, rep.ActiveAlerts)
	assert.False(t, rep.GeneratedAt.IsZero())

	require.Len(t, rep.WebEndpoints, 1)
	assert.Equal(t, "API", rep.WebEndpoints[0].EndpointName)
	assert.Equal(t, 4, rep.WebEndpoints[0].TotalChecks)
	assert.Equal(t, 75.0, rep.WebEndpoints[0].UptimePercent)
}

func TestGenerator_ScheduleRejectsBadSpec(t *testing.T) {
	store := seededStore(t)
	g := NewGenerator(zaptest.NewLogger(t), store, 24)
	defer g.Stop()

	err := g.Schedule(context.Background(), "not a cron spec")
	require.Error(t, err)
}

func TestGenerator_ScheduleRuns(t *testing.T) {
	store := seededStore(t)
	g := NewGenerator(zaptest.NewLogger(t), store, 24)

	// Every-second schedule so the job fires during the test.
	require.NoError(t, g.Schedule(context.Background(), "@every 1s"))
	time.Sleep(1500 * time.Millisecond)
	g.Stop()
}
