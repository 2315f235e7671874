package sequencing

import (
	"context"
	"log/slog"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Identifier is a minted sequence identifier.
type Identifier struct {
	BaseKey  string `json:"baseKey"`
	Sequence int    `json:"sequence"`
	Title    string `json:"title"`
}

// Report summarizes a reconcile run.
type Report struct {
	Strategy Strategy `json:"strategy"`
	DryRun   bool     `json:"dryRun"`
	Scanned  int      `json:"scanned"`
	Changes  []Change `json:"changes"`
	// Skipped lists deals left untouched because they have no base key.
	Skipped []uuid.UUID `json:"skipped"`
}

// Service mints and reconciles identifiers against the deal store.
type Service struct {
	tx  repository.Transactor
	bus events.Bus
	log *logger.Logger
}

// New creates a sequencing service. bus may be nil.
func New(tx repository.Transactor, bus events.Bus, log *logger.Logger) *Service {
	return &Service{tx: tx, bus: bus, log: log}
}

// Next computes the next identifier for baseKey inside the caller's
// transaction. The per-base lock it takes is held until that transaction
// ends, so the caller must insert the deal before committing.
func (s *Service) Next(ctx context.Context, store repository.SequenceStore, baseKey string) (Identifier, error) {
	if baseKey == "" {
		return Identifier{}, apperr.Validation("base key is required")
	}
	if err := store.LockSequenceBase(ctx, baseKey); err != nil {
		return Identifier{}, err
	}
	titles, err := store.ListDealTitles(ctx, baseKey)
	if err != nil {
		return Identifier{}, err
	}
	stored, err := store.ListSequenceNumbers(ctx, baseKey)
	if err != nil {
		return Identifier{}, err
	}
	n := NextAvailable(baseKey, titles, stored)
	return Identifier{BaseKey: baseKey, Sequence: n, Title: Format(baseKey, n)}, nil
}

// NextIdentifier returns the identifier the next item for baseKey would get.
// The number is not reserved; callers that insert must use Next in their own
// transaction.
func (s *Service) NextIdentifier(ctx context.Context, baseKey string, strategy Strategy) (Identifier, error) {
	base := NormalizeBase(strategy, baseKey)
	if base == "" {
		return Identifier{}, apperr.Validation("base key is required")
	}

	var id Identifier
	err := s.tx.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		id, err = s.Next(ctx, tx, base)
		return err
	})
	if err != nil {
		if apperr.GetKind(err) != apperr.KindUnknown {
			return Identifier{}, err
		}
		return Identifier{}, apperr.Wrap(apperr.KindInternal, "failed to compute next identifier", err).WithOp("NextIdentifier")
	}
	return id, nil
}

// ReconcileIdentifiers renumbers every deal into gap-free 1..N sequences per
// base key. With dryRun the plan is computed under the same lock but nothing
// is written.
func (s *Service) ReconcileIdentifiers(ctx context.Context, strategy Strategy, dryRun bool) (Report, error) {
	report := Report{Strategy: strategy, DryRun: dryRun}

	err := s.tx.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockAllSequences(ctx); err != nil {
			return err
		}
		deals, err := tx.ListDealIdentifiers(ctx)
		if err != nil {
			return err
		}

		items := make([]Item, len(deals))
		for i, d := range deals {
			items[i] = Item{
				ID:             d.ID,
				Title:          d.Title,
				BaseKey:        d.BaseKey,
				SequenceNumber: d.SequenceNumber,
				ContactEmail:   d.ContactEmail,
				CreatedAt:      d.CreatedAt,
			}
		}
		report.Scanned = len(items)
		report.Changes = Reconcile(strategy, items)
		report.Skipped = Unkeyed(strategy, items)

		if dryRun {
			return nil
		}
		for _, c := range report.Changes {
			if err := tx.UpdateDealIdentifier(ctx, c.ID, c.To, c.BaseKey, c.Sequence); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.DatabaseError("reconcile_identifiers", err)
		return Report{}, apperr.Wrap(apperr.KindInternal, "failed to reconcile identifiers", err).WithOp("ReconcileIdentifiers")
	}

	s.log.WithContext(ctx).Info("identifiers reconciled",
		slog.String("strategy", string(strategy)),
		slog.Bool("dry_run", dryRun),
		slog.Int("scanned", report.Scanned),
		slog.Int("changed", len(report.Changes)),
		slog.Int("skipped", len(report.Skipped)),
	)

	if !dryRun && len(report.Changes) > 0 && s.bus != nil {
		s.bus.Publish(ctx, events.IdentifiersReconciled{
			BaseEvent: events.NewBaseEvent(),
			Strategy:  string(strategy),
			Scanned:   report.Scanned,
			Changed:   len(report.Changes),
		})
	}
	return report, nil
}
