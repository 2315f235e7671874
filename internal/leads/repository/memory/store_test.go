package memory

import (
	"context"
	"errors"
	"testing"

	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
)

func TestInTxRollsBackOnError(t *testing.T) {
	store := New()
	boom := errors.New("boom")

	err := store.InTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.InsertLead(ctx, repository.InsertLeadParams{Name: "Acme"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := len(store.Leads()); got != 0 {
		t.Fatalf("expected rollback to discard the lead, found %d", got)
	}
	if store.Rollbacks() != 1 || store.Commits() != 0 {
		t.Fatalf("unexpected counters commits=%d rollbacks=%d", store.Commits(), store.Rollbacks())
	}
}

func TestCommitRejectsDuplicateSequence(t *testing.T) {
	store := New()
	store.AddDeal(domain.Deal{Title: "Acme-W001", BaseKey: "Acme", SequenceNumber: 1})

	err := store.InTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		_, err := tx.InsertDeal(ctx, repository.InsertDealParams{Title: "Acme-W001", BaseKey: "Acme", SequenceNumber: 1})
		return err
	})
	if !errors.Is(err, domain.ErrSequenceConflict) {
		t.Fatalf("expected sequence conflict at commit, got %v", err)
	}
	if got := len(store.Deals()); got != 1 {
		t.Fatalf("expected 1 deal after rollback, got %d", got)
	}
}

func TestFailNextIsConsumedOnce(t *testing.T) {
	store := New()
	boom := errors.New("boom")
	store.FailNext("ListWorkers", boom)

	run := func() error {
		return store.InTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
			_, err := tx.ListWorkers(ctx)
			return err
		})
	}
	if err := run(); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if err := run(); err != nil {
		t.Fatalf("expected second call to succeed, got %v", err)
	}
}
