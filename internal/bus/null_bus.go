package bus

import (
	"context"
	"log"
)

// NullBus is a no-op implementation of the bus interface for when Redis is
// disabled or unreachable.
type NullBus struct {
	logger *log.Logger
}

// NewNullBus creates a new null bus instance.
func NewNullBus(logger *log.Logger) *NullBus {
	if logger == nil {
		logger = log.New(log.Writer(), "[NullBus] ", log.LstdFlags)
	}
	return &NullBus{logger: logger}
}

// Close is a no-op for null bus.
func (nb *NullBus) Close() error {
	return nil
}

// PublishActivity logs the action but doesn't actually publish it.
func (nb *NullBus) PublishActivity(ctx context.Context, msg ActivityMessage) error {
	nb.logger.Printf("Would publish %s for case %s (Redis disabled)", msg.Action, msg.CaseRef)
	return nil
}

// PublishEscalation logs the escalation but doesn't actually publish it.
func (nb *NullBus) PublishEscalation(ctx context.Context, msg EscalationMessage) error {
	nb.logger.Printf("Would publish escalation for case %s (Redis disabled)", msg.CaseRef)
	return nil
}

// HealthCheck always returns nil for null bus.
func (nb *NullBus) HealthCheck(ctx context.Context) error {
	return nil
}
