// Package assignment hands out work to the salesperson pool in least-recently
// assigned order. The pool lives only in the database and is read under a
// transaction-scoped lock, so concurrent callers never pick from a stale view.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/metrics"
)

// Options controls lazy seeding of an empty pool.
type Options struct {
	SeedEnabled bool
	Seeds       []domain.WorkerSeed
}

// OptionsFromConfig parses the configured seed list.
func OptionsFromConfig(cfg config.AssignmentConfig) (Options, error) {
	seeds, err := ParseSeeds(cfg.GetWorkerSeeds())
	if err != nil {
		return Options{}, err
	}
	return Options{SeedEnabled: cfg.IsWorkerSeedEnabled(), Seeds: seeds}, nil
}

// ParseSeeds reads entries of the form "Name <email>" or a bare address.
func ParseSeeds(entries []string) ([]domain.WorkerSeed, error) {
	seeds := make([]domain.WorkerSeed, 0, len(entries))
	for _, entry := range entries {
		addr, err := mail.ParseAddress(strings.TrimSpace(entry))
		if err != nil {
			return nil, fmt.Errorf("invalid worker seed %q: %w", entry, err)
		}
		name := strings.TrimSpace(addr.Name)
		if name == "" {
			name = addr.Address
		}
		seeds = append(seeds, domain.WorkerSeed{Name: name, Email: strings.ToLower(addr.Address)})
	}
	return seeds, nil
}

// Assignment is the outcome of one pick.
type Assignment struct {
	Worker domain.Worker
	Seeded bool
}

type Service struct {
	tx   repository.Transactor
	opts Options
	bus  events.Bus
	log  *logger.Logger
}

// New creates the assignment service. bus may be nil.
func New(tx repository.Transactor, opts Options, bus events.Bus, log *logger.Logger) *Service {
	return &Service{tx: tx, opts: opts, bus: bus, log: log}
}

// AssignNext picks and updates the next worker in its own transaction.
func (s *Service) AssignNext(ctx context.Context) (domain.Worker, error) {
	var result Assignment
	err := s.tx.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		result, err = s.AssignNextTx(ctx, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoWorkersAvailable) {
			metrics.RecordAssignment("empty")
			return domain.Worker{}, apperr.Wrap(apperr.KindConflict, "no workers available", err)
		}
		metrics.RecordAssignment("error")
		s.log.DatabaseError("assign_next_worker", err)
		return domain.Worker{}, apperr.Wrap(apperr.KindInternal, "failed to assign worker", err).WithOp("AssignNext")
	}

	s.Announce(ctx, result)
	return result.Worker, nil
}

// AssignNextTx picks the next worker inside the caller's transaction. The
// pool lock is held until that transaction ends. Callers should Announce the
// result after commit.
func (s *Service) AssignNextTx(ctx context.Context, store repository.WorkerStore) (Assignment, error) {
	if err := store.LockWorkerPool(ctx); err != nil {
		return Assignment{}, err
	}

	pool, err := store.ListWorkers(ctx)
	if err != nil {
		return Assignment{}, err
	}

	seeded := false
	if len(pool) == 0 {
		if !s.opts.SeedEnabled || len(s.opts.Seeds) == 0 {
			return Assignment{}, domain.ErrNoWorkersAvailable
		}
		if err := store.InsertWorkers(ctx, s.opts.Seeds); err != nil {
			return Assignment{}, err
		}
		if pool, err = store.ListWorkers(ctx); err != nil {
			return Assignment{}, err
		}
		seeded = true
	}

	next, ok := domain.SelectNextWorker(pool)
	if !ok {
		return Assignment{}, domain.ErrNoWorkersAvailable
	}

	updated, err := store.MarkWorkerAssigned(ctx, next.ID)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{Worker: updated, Seeded: seeded}, nil
}

// Announce records a committed assignment.
func (s *Service) Announce(ctx context.Context, a Assignment) {
	metrics.RecordAssignment("assigned")
	s.log.WithContext(ctx).Assignment(a.Worker.ID.String(), a.Worker.AssignedCount, a.Seeded)

	if s.bus != nil {
		s.bus.Publish(ctx, events.WorkerAssigned{
			BaseEvent:     events.NewBaseEvent(),
			WorkerID:      a.Worker.ID,
			WorkerEmail:   a.Worker.Email,
			AssignedCount: a.Worker.AssignedCount,
			Seeded:        a.Seeded,
		})
	}
}
