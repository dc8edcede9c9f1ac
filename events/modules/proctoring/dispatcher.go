package proctoring

import (
	"context"
	"time"

	"github.com/examguard/integrity-backend/model"
	"go.uber.org/zap"
)

// Dispatcher is the fire-and-forget notification fan-out. Publishing must
// never fail or delay the caller's request: errors are caught and logged
// here, never returned. A nil producer degrades to log-only.
type Dispatcher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. producer may be nil when Kafka is not
// configured.
func NewDispatcher(producer *Producer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{producer: producer, logger: logger}
}

// NotifyLifecycleChange publishes an exam lifecycle transition.
func (d *Dispatcher) NotifyLifecycleChange(examID, action, actor, state string, details map[string]interface{}) {
	d.dispatch(examID, NotificationEvent{
		Type: TypeLifecycleChanged,
		Lifecycle: &LifecycleChange{
			ExamID: examID,
			Action: action,
			Actor:  actor,
			State:  state,
		},
		Details: details,
	})
}

// NotifySecurityEvent publishes a raised cheating alert to monitoring
// observers.
func (d *Dispatcher) NotifySecurityEvent(alert model.CheatingAlert) {
	a := alert
	d.dispatch(alert.ExamID, NotificationEvent{
		Type:  TypeSecurityAlert,
		Alert: &a,
	})
}

func (d *Dispatcher) dispatch(key string, event NotificationEvent) {
	if d.producer == nil {
		d.logger.Debug("notification dispatch skipped, no producer",
			zap.String("type", event.Type), zap.String("key", key))
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification dispatch panicked", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := d.producer.Publish(ctx, key, event); err != nil {
			d.logger.Warn("notification dispatch failed",
				zap.String("type", event.Type),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}()
}
