package assignment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository/memory"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
)

var testSeeds = []domain.WorkerSeed{
	{Name: "Alex Morgan", Email: "alex@example.com"},
	{Name: "Jamie Rivera", Email: "jamie@example.com"},
	{Name: "Sam Patel", Email: "sam@example.com"},
}

func TestAssignNextSeedsEmptyPool(t *testing.T) {
	store := memory.New()
	svc := New(store, Options{SeedEnabled: true, Seeds: testSeeds}, nil, logger.Nop())

	w, err := svc.AssignNext(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.AssignedCount != 1 || w.LastAssignedAt == nil {
		t.Fatalf("expected the chosen worker to be stamped, got %+v", w)
	}
	if got := len(store.Workers()); got != len(testSeeds) {
		t.Fatalf("expected %d seeded workers, got %d", len(testSeeds), got)
	}
}

func TestAssignNextEmptyPoolWithoutSeeding(t *testing.T) {
	svc := New(memory.New(), Options{}, nil, logger.Nop())

	_, err := svc.AssignNext(context.Background())
	if !errors.Is(err, domain.ErrNoWorkersAvailable) {
		t.Fatalf("expected ErrNoWorkersAvailable, got %v", err)
	}
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict kind, got %v", apperr.GetKind(err))
	}
}

func TestAssignNextPrefersNeverAssigned(t *testing.T) {
	store := memory.New()
	earlier := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store.AddWorker(domain.Worker{Name: "busy", Email: "busy@example.com", AssignedCount: 0, LastAssignedAt: &earlier})
	fresh := store.AddWorker(domain.Worker{Name: "fresh", Email: "fresh@example.com", AssignedCount: 7})
	svc := New(store, Options{}, nil, logger.Nop())

	w, err := svc.AssignNext(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.ID != fresh.ID {
		t.Fatalf("expected never-assigned worker %s, got %s", fresh.ID, w.ID)
	}
}

func TestAssignNextRoundRobin(t *testing.T) {
	store := memory.New()
	for _, seed := range testSeeds {
		store.AddWorker(domain.Worker{Name: seed.Name, Email: seed.Email})
	}
	svc := New(store, Options{}, nil, logger.Nop())

	picked := make([]uuid.UUID, 0, 6)
	for i := 0; i < 6; i++ {
		w, err := svc.AssignNext(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		picked = append(picked, w.ID)
	}
	for i := 0; i < 3; i++ {
		if picked[i] != picked[i+3] {
			t.Fatalf("expected a stable rotation, got %v", picked)
		}
	}
	if picked[0] == picked[1] || picked[1] == picked[2] || picked[0] == picked[2] {
		t.Fatalf("expected three distinct workers in the first round, got %v", picked[:3])
	}
}

func TestAssignNextConcurrentFairness(t *testing.T) {
	store := memory.New()
	svc := New(store, Options{SeedEnabled: true, Seeds: testSeeds}, nil, logger.Nop())

	const calls = 30
	var wg sync.WaitGroup
	errs := make(chan error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AssignNext(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	workers := store.Workers()
	if len(workers) != len(testSeeds) {
		t.Fatalf("pool must be seeded exactly once, got %d workers", len(workers))
	}
	total, lo, hi := 0, workers[0].AssignedCount, workers[0].AssignedCount
	for _, w := range workers {
		total += w.AssignedCount
		if w.AssignedCount < lo {
			lo = w.AssignedCount
		}
		if w.AssignedCount > hi {
			hi = w.AssignedCount
		}
	}
	if total != calls {
		t.Fatalf("expected %d assignments, got %d", calls, total)
	}
	if hi-lo > 1 {
		t.Fatalf("unfair distribution: min=%d max=%d", lo, hi)
	}
}

func TestParseSeeds(t *testing.T) {
	seeds, err := ParseSeeds([]string{"Alex Morgan <Alex@Example.com>", "ops@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seeds[0].Name != "Alex Morgan" || seeds[0].Email != "alex@example.com" {
		t.Fatalf("unexpected first seed %+v", seeds[0])
	}
	if seeds[1].Name != "ops@example.com" {
		t.Fatalf("bare address should double as name, got %+v", seeds[1])
	}
	if _, err := ParseSeeds([]string{"not an address"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
