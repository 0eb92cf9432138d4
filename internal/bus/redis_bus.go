package bus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	activityStream   = "legalease:activity"
	escalationStream = "legalease:escalations"

	// Streams are capped so an unattended install cannot grow unbounded.
	streamMaxLen = 10000
)

// RedisBus provides Redis Streams-based case activity notifications.
type RedisBus struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedisBus creates a new Redis bus instance.
func NewRedisBus(redisURL string, logger *log.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = log.New(log.Writer(), "[RedisBus] ", log.LstdFlags)
	}

	return &RedisBus{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection.
func (rb *RedisBus) Close() error {
	return rb.client.Close()
}

// PublishActivity publishes a lifecycle action to the activity stream.
func (rb *RedisBus) PublishActivity(ctx context.Context, msg ActivityMessage) error {
	fields := map[string]interface{}{
		"case_id":   msg.CaseID,
		"case_ref":  msg.CaseRef,
		"action":    msg.Action,
		"actor":     msg.Actor,
		"detail":    msg.Detail,
		"timestamp": msg.Timestamp,
	}

	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: activityStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: fields,
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}

	rb.logger.Printf("Published %s for case %s to activity stream", msg.Action, msg.CaseRef)
	return nil
}

// PublishEscalation publishes an escalation to the escalations stream.
func (rb *RedisBus) PublishEscalation(ctx context.Context, msg EscalationMessage) error {
	fields := map[string]interface{}{
		"case_id":          msg.CaseID,
		"case_ref":         msg.CaseRef,
		"response_quality": msg.ResponseQuality,
		"draft":            msg.Draft,
		"timestamp":        msg.Timestamp,
	}

	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: escalationStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: fields,
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish escalation: %w", err)
	}

	rb.logger.Printf("Published escalation for case %s", msg.CaseRef)
	return nil
}

// HealthCheck pings Redis.
func (rb *RedisBus) HealthCheck(ctx context.Context) error {
	if err := rb.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
