package notifier

import (
	"context"

	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	"go.uber.org/zap"
)

// Notifier delivers a persisted alert to an external channel (SMS gateway,
// push, ...). Send returns true only on confirmed delivery; callers treat
// anything else as "not sent". Implementations must not panic into the
// caller.
type Notifier interface {
	Send(ctx context.Context, alert *alertdomain.Alert) (bool, error)
}

// Noop is the default hook. Real delivery is an external integration wired
// in by the deployment; until then every alert stays sms_sent = false.
type Noop struct {
	log *zap.Logger
}

func NewNoop(log *zap.Logger) *Noop {
	return &Noop{log: log.Named("notifier")}
}

func (n *Noop) Send(ctx context.Context, alert *alertdomain.Alert) (bool, error) {
	_ = ctx
	n.log.Debug("notification skipped, no delivery channel configured",
		zap.String("alert_id", alert.ID.String()),
		zap.String("alert_type", string(alert.AlertType)),
	)
	return false, nil
}
