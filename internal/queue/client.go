package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/exo/showcase/internal/queue/handlers"
)

const TypeHydrateAssets = "assets:hydrate"

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client wraps asynq.Client for enqueuing tasks
type Client struct {
	client enqueuer
	logger *slog.Logger
}

// NewClient creates a new queue client
func NewClient(redisAddr string, redisPassword string, logger *slog.Logger) *Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
	})

	return &Client{
		client: client,
		logger: logger,
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}

func NewHydrateTask(resource string, limit int) (*asynq.Task, error) {
	payload, err := json.Marshal(handlers.TaskPayload{Resource: resource, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeHydrateAssets, payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	), nil
}

// EnqueueHydrate schedules a batch hydration. A request identical to one
// enqueued within the last minute is accepted without a second task.
func (c *Client) EnqueueHydrate(ctx context.Context, resource string, limit int) error {
	task, err := NewHydrateTask(resource, limit)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task, asynq.Unique(time.Minute))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		c.logger.InfoContext(ctx, "task already enqueued",
			slog.String("type", TypeHydrateAssets),
			slog.String("resource", resource),
			slog.Int("limit", limit))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.InfoContext(ctx, "enqueued task",
		slog.String("id", info.ID),
		slog.String("queue", info.Queue),
		slog.String("type", TypeHydrateAssets))
	return nil
}
