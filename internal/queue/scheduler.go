package queue

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/exo/showcase/internal/config"
)

// Scheduler periodically enqueues a hydration sweep over every entity kind.
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

func NewScheduler(cfg config.Config, logger *slog.Logger) (*Scheduler, error) {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil, fmt.Errorf("%s is required for the scheduler", config.ENV_KEY_REDIS_HOST)
	}

	s := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     addr,
			Password: cfg.Redis.Password,
		},
		&asynq.SchedulerOpts{
			Logger:   asynqLogger{logger},
			LogLevel: asynqLevel(cfg.LogLevel),
		},
	)

	task, err := NewHydrateTask("", cfg.HydrateBatch)
	if err != nil {
		return nil, err
	}
	id, err := s.Register(cfg.HydrateSchedule, task, asynq.Queue("low"))
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", TypeHydrateAssets, err)
	}
	logger.Info("scheduler registered task",
		slog.String("entry", id),
		slog.String("type", TypeHydrateAssets),
		slog.String("spec", cfg.HydrateSchedule))

	return &Scheduler{scheduler: s, logger: logger}, nil
}

func (s *Scheduler) Start() error {
	s.logger.Info("scheduler started")
	return s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.scheduler.Shutdown()
}
