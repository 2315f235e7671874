package scheduler

import (
	"context"
	"fmt"
	"time"

	"salesdesk_backend/internal/leads"
	"salesdesk_backend/internal/leads/sequencing"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	reconcileUniqueTTL = 10 * time.Minute
	scoreMaxRetry      = 3
)

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	reconciler leads.IdentifierReconciler
	scorer     leads.AccountScorer
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, reconciler leads.IdentifierReconciler, scorer leads.AccountScorer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(reconciler, scorer, log)
	w.server = server
	return w, nil
}

func newWorker(reconciler leads.IdentifierReconciler, scorer leads.AccountScorer, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:        mux,
		reconciler: reconciler,
		scorer:     scorer,
		log:        log,
	}

	mux.HandleFunc(TaskReconcileIdentifiers, w.handleReconcileIdentifiers)
	mux.HandleFunc(TaskScoreCompany, w.handleScoreCompany)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleReconcileIdentifiers(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReconcileIdentifiersPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	strategy, err := sequencing.ParseStrategy(payload.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	report, err := w.reconciler.ReconcileIdentifiers(ctx, strategy, payload.DryRun)
	if err != nil {
		return err
	}

	w.log.Info("identifier reconcile finished",
		"strategy", report.Strategy,
		"dryRun", report.DryRun,
		"scanned", report.Scanned,
		"changed", len(report.Changes),
	)
	return nil
}

func (w *Worker) handleScoreCompany(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScoreCompanyPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	accountID, err := uuid.Parse(payload.AccountID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	outcome, err := w.scorer.RescoreAccount(ctx, accountID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			w.log.Warn("account gone before rescore", "accountId", payload.AccountID)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return err
	}

	w.log.Info("account rescored",
		"accountId", outcome.AccountID,
		"score", outcome.Score,
		"dealsRestamped", outcome.DealsRestamped,
	)
	return nil
}
