package prober

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/metrics"
	"github.com/t77yq/sysmon/internal/model"
)

// DefaultTimeout bounds every probe request.
const DefaultTimeout = 10 * time.Second

// Prober issues liveness checks against configured HTTP endpoints.
type Prober struct {
	logger  *zap.Logger
	metrics *metrics.Registry
	client  *http.Client
}

// NewProber creates a prober with the default per-request timeout.
func NewProber(logger *zap.Logger, registry *metrics.Registry) *Prober {
	return &Prober{
		logger:  logger.Named("prober"),
		metrics: registry,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Probe checks a single endpoint. It never returns an error: transport
// failures (timeout, connection refused, DNS, TLS) are encoded in the
// result with StatusCode 0 and a populated Error.
func (p *Prober) Probe(ctx context.Context, endpoint model.Endpoint) *model.ProbeResult {
	result := &model.ProbeResult{
		EndpointName: endpoint.Name,
		URL:          endpoint.URL,
		Timestamp:    time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL, nil)
	if err != nil {
		result.Error = err.Error()
		p.recordFailure(result)
		return result
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		result.Error = err.Error()
		p.recordFailure(result)
		return result
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	result.StatusCode = resp.StatusCode
	result.ResponseTime = time.Since(start).Seconds()
	result.IsUp = resp.StatusCode == http.StatusOK

	p.metrics.RecordProbe(endpoint.Name, result.IsUp, result.ResponseTime)

	p.logger.Debug("Endpoint probed",
		zap.String("endpoint", endpoint.Name),
		zap.Int("status_code", result.StatusCode),
		zap.Float64("response_time", result.ResponseTime),
		zap.Bool("is_up", result.IsUp))

	return result
}

func (p *Prober) recordFailure(result *model.ProbeResult) {
	p.metrics.RecordProbe(result.EndpointName, false, 0)
	p.logger.Debug("Endpoint probe failed",
		zap.String("endpoint", result.EndpointName),
		zap.String("error", result.Error))
}

// ProbeAll checks every endpoint concurrently and returns results in the
// same order as the input. It returns only once all probes have finished;
// one failing endpoint never blocks or fails another.
func (p *Prober) ProbeAll(ctx context.Context, endpoints []model.Endpoint) []*model.ProbeResult {
	results := make([]*model.ProbeResult, len(endpoints))

	var wg sync.WaitGroup
	for i, endpoint := range endpoints {
		wg.Add(1)
		go func(i int, endpoint model.Endpoint) {
			defer wg.Done()
			results[i] = p.Probe(ctx, endpoint)
		}(i, endpoint)
	}
	wg.Wait()

	return results
}
