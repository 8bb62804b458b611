package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"armada/pkg/models"

	"github.com/redis/go-redis/v9"
)

const (
	StreamKeyPending = "runs:queue:pending"
)

type RunQueue struct {
	client *redis.Client
}

// RunQueueConfig holds Redis connection configuration
type RunQueueConfig struct {
	Addr         string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

// DefaultRunQueueConfig returns production defaults
func DefaultRunQueueConfig(addr string) RunQueueConfig {
	return RunQueueConfig{
		Addr:         addr,
		PoolSize:     100,
		MinIdleConns: 10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// NewRunQueue initializes a new Redis client with default config.
func NewRunQueue(addr string) (*RunQueue, error) {
	return NewRunQueueWithConfig(DefaultRunQueueConfig(addr))
}

// NewRunQueueWithConfig initializes a new Redis client with custom config.
func NewRunQueueWithConfig(cfg RunQueueConfig) (*RunQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
	})

	// Ping to verify connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RunQueue{client: client}, nil
}

func (r *RunQueue) Close() error {
	return r.client.Close()
}

// Client exposes the underlying connection so other redis-backed pieces
// (log transport, API key store) can share it.
func (r *RunQueue) Client() *redis.Client {
	return r.client
}

// Push adds a run payload to the pending stream.
func (r *RunQueue) Push(ctx context.Context, run *models.Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	// XADD runs:queue:pending * payload {json}
	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKeyPending,
		Values: map[string]interface{}{
			"payload": payload,
			"run_id":  run.ID.String(),
			"service": run.Service,
		},
	}).Err()

	if err != nil {
		return fmt.Errorf("failed to push to queue: %w", err)
	}
	return nil
}

// EnsureGroup creates the consumer group if it doesn't exist.
func (r *RunQueue) EnsureGroup(ctx context.Context, group string) error {
	err := r.client.XGroupCreateMkStream(ctx, StreamKeyPending, group, "$").Err()
	if err != nil {
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Pop retrieves a run from the queue for a specific consumer group.
func (r *RunQueue) Pop(ctx context.Context, group string, consumer string) (string, *models.Run, error) {
	// Block for 2 seconds waiting for new messages
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{StreamKeyPending, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return "", nil, nil // Timeout, no runs
		}
		return "", nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return "", nil, nil
	}

	msg := streams[0].Messages[0]
	msgID := msg.ID

	payloadStr, ok := msg.Values["payload"].(string)
	if !ok {
		return msgID, nil, fmt.Errorf("invalid payload format")
	}

	var run models.Run
	if err := json.Unmarshal([]byte(payloadStr), &run); err != nil {
		return msgID, nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return msgID, &run, nil
}

// Len reports the number of entries in the pending stream.
func (r *RunQueue) Len(ctx context.Context) (int64, error) {
	return r.client.XLen(ctx, StreamKeyPending).Result()
}

// Ack acknowledges a run as processed.
func (r *RunQueue) Ack(ctx context.Context, group string, msgID string) error {
	return r.client.XAck(ctx, StreamKeyPending, group, msgID).Err()
}
