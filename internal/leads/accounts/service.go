// Package accounts refreshes company scores on accounts and restamps the
// deals that hang off them.
package accounts

import (
	"context"
	"errors"
	"log/slog"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/scoring"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// defaultConcurrency caps parallel probes in RescoreAccounts.
const defaultConcurrency = 4

// CompanyScorer is the part of the scoring engine this service needs.
type CompanyScorer interface {
	ScoreCompanyInputs(ctx context.Context, in scoring.CompanyInputs) scoring.CompanyResult
	ScoreCompanyToDeal(companyScore int) scoring.Result
}

// Outcome is the result of rescoring one account.
type Outcome struct {
	AccountID      uuid.UUID      `json:"accountId"`
	Score          int            `json:"score"`
	Grade          domain.Grade   `json:"grade"`
	DealsRestamped int            `json:"dealsRestamped"`
	Factors        map[string]int `json:"factors"`
}

type Service struct {
	tx     repository.Transactor
	scorer CompanyScorer
	bus    events.Bus
	log    *logger.Logger
}

// New creates the service. bus may be nil.
func New(tx repository.Transactor, scorer CompanyScorer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{tx: tx, scorer: scorer, bus: bus, log: log}
}

// RescoreAccount probes the account's domain outside any transaction, then
// stores the score and restamps its deals in one transaction.
func (s *Service) RescoreAccount(ctx context.Context, accountID uuid.UUID) (Outcome, error) {
	var account domain.Account
	err := s.tx.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		account, err = tx.GetAccount(ctx, accountID)
		return err
	})
	if err != nil {
		return Outcome{}, s.mapErr("load_account", err)
	}

	company := s.scorer.ScoreCompanyInputs(ctx, scoring.CompanyInputs{Domain: account.Domain, IsCustomer: account.IsCustomer})
	deal := s.scorer.ScoreCompanyToDeal(company.Score)

	out := Outcome{AccountID: accountID, Score: company.Score, Grade: deal.Grade, Factors: company.Factors}
	err = s.tx.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.UpdateAccountScore(ctx, accountID, company.Score); err != nil {
			return err
		}
		n, err := tx.RestampAccountDeals(ctx, accountID, deal.Score, deal.Grade, deal.IsHot)
		out.DealsRestamped = n
		return err
	})
	if err != nil {
		return Outcome{}, s.mapErr("store_account_score", err)
	}

	s.log.WithContext(ctx).Info("account rescored",
		slog.String("account_id", accountID.String()),
		slog.Int("score", out.Score),
		slog.Int("deals_restamped", out.DealsRestamped),
	)
	if s.bus != nil {
		s.bus.Publish(ctx, events.AccountScored{
			BaseEvent:      events.NewBaseEvent(),
			AccountID:      accountID,
			Score:          out.Score,
			Grade:          string(out.Grade),
			DealsRestamped: out.DealsRestamped,
		})
	}
	return out, nil
}

// RescoreAccounts rescores ids with bounded parallelism. It stops at the
// first failure; outcomes of accounts that finished are still returned in
// input order, with zero values for the rest.
func (s *Service) RescoreAccounts(ctx context.Context, ids []uuid.UUID, concurrency int) ([]Outcome, error) {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	outcomes := make([]Outcome, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			out, err := s.RescoreAccount(gctx, id)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	err := g.Wait()
	return outcomes, err
}

func (s *Service) mapErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.Wrap(apperr.KindNotFound, "account not found", err)
	}
	s.log.DatabaseError(op, err)
	return apperr.Wrap(apperr.KindInternal, "failed to rescore account", err).WithOp("RescoreAccount")
}
