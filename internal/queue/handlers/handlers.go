package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/usecase"
)

// Hydrator is the part of the usecase the worker runs.
type Hydrator interface {
	HydrateAssets(context.Context, asset.Resource, int) (usecase.HydrateReport, error)
}

type Handlers struct {
	usecase Hydrator
	logger  *slog.Logger
}

func NewHandlers(uc Hydrator, logger *slog.Logger) *Handlers {
	return &Handlers{
		usecase: uc,
		logger:  logger,
	}
}

// TaskPayload is the body of an assets:hydrate task. An empty resource
// covers every entity kind.
type TaskPayload struct {
	Resource string `json:"resource,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (h *Handlers) HandleHydrateAssets(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to parse task payload", slog.String("err", err.Error()))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	h.logger.InfoContext(ctx, "processing task",
		slog.String("type", task.Type()),
		slog.String("resource", payload.Resource),
		slog.Int("limit", payload.Limit))

	report, err := h.usecase.HydrateAssets(ctx, asset.Resource(payload.Resource), payload.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "task failed", slog.String("type", task.Type()), slog.String("err", err.Error()))
		if errors.Is(err, asset.ErrUnknownKind) {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return err
	}

	result, _ := json.Marshal(report)
	if w := task.ResultWriter(); w != nil {
		if _, err := w.Write(result); err != nil {
			h.logger.WarnContext(ctx, "failed to write task result", slog.String("err", err.Error()))
		}
	}
	return nil
}
