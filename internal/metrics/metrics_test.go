package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RecordSample(t *testing.T) {
	r := NewRegistry()
	r.RecordSample(42.5, 63.2, 71.8, 1.25)

	assert.Equal(t, 42.5, testutil.ToFloat64(r.CPUUsage))
	assert.Equal(t, 63.2, testutil.ToFloat64(r.MemoryUsage))
	assert.Equal(t, 71.8, testutil.ToFloat64(r.DiskUsage))
	assert.Equal(t, 1.25, testutil.ToFloat64(r.LoadAverage))
}

func TestRegistry_RecordProbe(t *testing.T) {
	r := NewRegistry()

	r.RecordProbe("API", true, 0.05)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ServiceUp.WithLabelValues("API")))

	r.RecordProbe("API", false, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ServiceUp.WithLabelValues("API")))

	// Two observations so far, including the zero for the failure.
	count := testutil.CollectAndCount(r.ResponseTime, "web_service_response_time_seconds")
	assert.Equal(t, 1, count, "one labeled series")
}

func TestRegistry_ScrapeExposition(t *testing.T) {
	r := NewRegistry()
	r.RecordSample(10, 20, 30, 0.5)
	r.RecordProbe("Main App", true, 0.1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "system_cpu_usage_percent 10"))
	assert.True(t, strings.Contains(body, `web_service_up{service_name="Main App"} 1`))
	assert.True(t, strings.Contains(body, "web_service_response_time_seconds_bucket"))
}
