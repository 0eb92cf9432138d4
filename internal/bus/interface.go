package bus

import (
	"context"
	"io"
	"log"
)

// ActivityMessage records one case lifecycle action for external consumers
// (audit feeds, dashboards).
type ActivityMessage struct {
	CaseID    string `json:"case_id"`
	CaseRef   string `json:"case_ref"`
	Action    string `json:"action"` // "case_created", "case_classified", "case_filed", ...
	Actor     string `json:"actor"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// EscalationMessage is published when an update analysis triggers an
// escalation artifact.
type EscalationMessage struct {
	CaseID          string `json:"case_id"`
	CaseRef         string `json:"case_ref"`
	ResponseQuality string `json:"response_quality"`
	Draft           string `json:"draft"`
	Timestamp       int64  `json:"timestamp"`
}

// Bus defines the interface for case activity notification backends.
type Bus interface {
	// PublishActivity publishes a lifecycle action to the activity stream.
	PublishActivity(ctx context.Context, msg ActivityMessage) error

	// PublishEscalation publishes an escalation to the escalations stream.
	PublishEscalation(ctx context.Context, msg EscalationMessage) error

	// HealthCheck performs a health check on the bus connection.
	HealthCheck(ctx context.Context) error

	// Close closes the bus connection.
	Close() error
}

// NewBus creates a bus instance based on the Redis URL. If redisURL is empty
// or the connection fails, a NullBus is returned so publishing stays
// best-effort.
func NewBus(redisURL string, logger *log.Logger) Bus {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if redisURL == "" {
		return NewNullBus(logger)
	}

	if redisBus, err := NewRedisBus(redisURL, logger); err == nil {
		return redisBus
	}

	return NewNullBus(logger)
}
