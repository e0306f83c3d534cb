package monitor

import (
	"context"

	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/model"
	"github.com/t77yq/sysmon/internal/notify"
)

// ObservationWriter is the append-only slice of the store the core needs.
type ObservationWriter interface {
	InsertSample(ctx context.Context, sample *model.MetricSample) error
	InsertProbeResult(ctx context.Context, result *model.ProbeResult) error
	InsertAlert(ctx context.Context, alert *model.Alert) error
}

// Dispatcher persists alerts and forwards them to the notification channel.
// The two legs are independent: a storage failure never blocks notification
// and a notification failure never loses the stored alert. Neither failure
// propagates to the caller.
type Dispatcher struct {
	logger      *zap.Logger
	store       ObservationWriter
	notifier    notify.Notifier
	emailAlerts bool
}

// NewDispatcher creates a dispatcher. Notification is skipped entirely when
// emailAlerts is false; storage always happens.
func NewDispatcher(logger *zap.Logger, store ObservationWriter, notifier notify.Notifier, emailAlerts bool) *Dispatcher {
	return &Dispatcher{
		logger:      logger.Named("dispatcher"),
		store:       store,
		notifier:    notifier,
		emailAlerts: emailAlerts,
	}
}

// Dispatch records and forwards one alert.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *model.Alert) {
	d.logger.Warn("ALERT",
		zap.String("alert_type", string(alert.Type)),
		zap.String("message", alert.Message))

	if err := d.store.InsertAlert(ctx, alert); err != nil {
		d.logger.Warn("Failed to store alert",
			zap.String("alert_type", string(alert.Type)),
			zap.Error(err))
	}

	if !d.emailAlerts {
		return
	}

	if err := d.notifier.Send(alert); err != nil {
		d.logger.Warn("Failed to send alert notification",
			zap.String("alert_type", string(alert.Type)),
			zap.Error(err))
	}
}
