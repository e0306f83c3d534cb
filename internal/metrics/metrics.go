package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the process-wide monitoring metrics. It is constructed once
// at startup and handed to the sampler and prober; scrapes and updates may
// run concurrently without coordination, so a scrape can observe a partially
// updated cycle.
type Registry struct {
	registry *prometheus.Registry

	CPUUsage    prometheus.Gauge
	MemoryUsage prometheus.Gauge
	DiskUsage   prometheus.Gauge
	LoadAverage prometheus.Gauge

	ServiceUp    *prometheus.GaugeVec
	ResponseTime *prometheus.HistogramVec
}

// NewRegistry creates a registry with all monitoring metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		CPUUsage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "system_cpu_usage_percent",
			Help: "CPU usage percentage",
		}),
		MemoryUsage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "system_memory_usage_percent",
			Help: "Memory usage percentage",
		}),
		DiskUsage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "system_disk_usage_percent",
			Help: "Disk usage percentage",
		}),
		LoadAverage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "system_load_average",
			Help: "System load average",
		}),
		ServiceUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "web_service_up",
			Help: "Web service status",
		}, []string{"service_name"}),
		ResponseTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "web_service_response_time_seconds",
			Help:    "Web service response time",
			Buckets: prometheus.DefBuckets,
		}, []string{"service_name"}),
	}
}

// RecordSample updates the four system gauges from one sample.
func (r *Registry) RecordSample(cpu, memory, disk, load float64) {
	r.CPUUsage.Set(cpu)
	r.MemoryUsage.Set(memory)
	r.DiskUsage.Set(disk)
	r.LoadAverage.Set(load)
}

// RecordProbe updates the per-endpoint up gauge and latency histogram.
// A transport failure records 0 seconds, which skews the lower buckets;
// that matches the exported series the scrapers already depend on.
func (r *Registry) RecordProbe(serviceName string, up bool, seconds float64) {
	value := 0.0
	if up {
		value = 1.0
	}
	r.ServiceUp.WithLabelValues(serviceName).Set(value)
	r.ResponseTime.WithLabelValues(serviceName).Observe(seconds)
}

// Handler returns the scrape handler for the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
