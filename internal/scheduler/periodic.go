package scheduler

import (
	"context"
	"fmt"

	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the identifier reconcile on a cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewPeriodic returns nil when no reconcile cron is configured.
func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	spec := cfg.GetReconcileCron()
	if spec == "" {
		return nil, nil
	}

	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	task, err := NewReconcileIdentifiersTask(ReconcileIdentifiersPayload{Strategy: cfg.GetReconcileStrategy()})
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})
	entryID, err := s.Register(spec, task, asynq.Queue(queueName(cfg)), asynq.Unique(reconcileUniqueTTL))
	if err != nil {
		return nil, fmt.Errorf("register reconcile cron %q: %w", spec, err)
	}
	log.Info("reconcile cron registered", "cron", spec, "entryId", entryID)

	return &Periodic{scheduler: s, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
