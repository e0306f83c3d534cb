package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/model"
)

// ResourceSampler produces one metric sample per cycle.
type ResourceSampler interface {
	Sample(ctx context.Context) (*model.MetricSample, error)
}

// EndpointProber checks every configured endpoint and returns all results.
type EndpointProber interface {
	ProbeAll(ctx context.Context, endpoints []model.Endpoint) []*model.ProbeResult
}

// AlertDispatcher records and forwards one alert.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert *model.Alert)
}

// Scheduler drives the monitoring loop: sample, evaluate, probe, dispatch,
// then sleep for the check interval, forever. A cycle is the synchronization
// point: all probe results are collected before the next cycle starts. Any
// single-sample or single-endpoint failure is contained within its cycle;
// the loop exits only on an external stop or an escaped panic.
type Scheduler struct {
	logger     *zap.Logger
	sampler    ResourceSampler
	prober     EndpointProber
	dispatcher AlertDispatcher
	store      ObservationWriter
	thresholds Thresholds
	endpoints  []model.Endpoint
	interval   time.Duration
	stop       chan struct{}
	done       chan struct{}
}

// NewScheduler creates a monitoring scheduler.
func NewScheduler(
	logger *zap.Logger,
	sampler ResourceSampler,
	prober EndpointProber,
	dispatcher AlertDispatcher,
	store ObservationWriter,
	thresholds Thresholds,
	endpoints []model.Endpoint,
	interval time.Duration,
) *Scheduler {
	return &Scheduler{
		logger:     logger.Named("scheduler"),
		sampler:    sampler,
		prober:     prober,
		dispatcher: dispatcher,
		store:      store,
		thresholds: thresholds,
		endpoints:  endpoints,
		interval:   interval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the monitoring loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting monitoring scheduler",
		zap.Duration("interval", s.interval),
		zap.Int("endpoints", len(s.endpoints)))
	go s.run(ctx)
}

// Stop signals the loop to exit. The stop is observed between cycles; a
// cycle in flight runs to completion. Stop blocks until the loop has exited.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Fatal fault in monitoring cycle, stopping",
				zap.Any("panic", r))
		}
	}()

	for {
		s.RunCycle(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("Monitoring scheduler stopped", zap.Error(ctx.Err()))
			return
		case <-s.stop:
			s.logger.Info("Monitoring scheduler stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

// RunCycle executes one monitoring cycle: sample and evaluate thresholds,
// then probe every endpoint and evaluate the results. Component faults are
// logged and degrade to "skip this part of this cycle".
func (s *Scheduler) RunCycle(ctx context.Context) {
	s.logger.Debug("Monitoring cycle started")

	sample, err := s.sampler.Sample(ctx)
	if err != nil {
		// No sample this cycle; threshold evaluation is skipped but
		// probing still runs.
		s.logger.Warn("Sampler failed, skipping threshold evaluation", zap.Error(err))
	} else {
		if err := s.store.InsertSample(ctx, sample); err != nil {
			s.logger.Warn("Failed to store metric sample", zap.Error(err))
		}
		for _, alert := range EvaluateThresholds(sample, s.thresholds) {
			s.dispatcher.Dispatch(ctx, alert)
		}
	}

	for _, result := range s.prober.ProbeAll(ctx, s.endpoints) {
		if err := s.store.InsertProbeResult(ctx, result); err != nil {
			s.logger.Warn("Failed to store probe result",
				zap.String("endpoint", result.EndpointName),
				zap.Error(err))
		}
		if alert := EvaluateProbe(result); alert != nil {
			s.dispatcher.Dispatch(ctx, alert)
		}
	}

	s.logger.Debug("Monitoring cycle completed")
}
