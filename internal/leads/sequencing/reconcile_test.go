package sequencing

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func item(title, email string, created time.Time) Item {
	return Item{ID: uuid.New(), Title: title, ContactEmail: email, CreatedAt: created}
}

func TestReconcileNumbersByCreationTime(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		item("Acme-W002", "", t0.Add(2*time.Hour)),
		item("Acme", "", t0),
		item("Acme-W007", "", t0.Add(time.Hour)),
		item("Globex-W001", "", t0),
	}

	changes := Reconcile(StrategyTitle, items)
	got := make(map[uuid.UUID]string)
	for _, c := range changes {
		got[c.ID] = c.To
	}

	want := map[uuid.UUID]string{
		items[1].ID: "Acme-W001",
		items[2].ID: "Acme-W002",
		items[0].ID: "Acme-W003",
		items[3].ID: "Globex-W001",
	}
	for id, title := range want {
		if got[id] != title {
			t.Fatalf("expected %s to become %q, got %q", id, title, got[id])
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		item("Acme-W005", "", t0),
		item("Acme", "", t0.Add(time.Minute)),
		item("Renewal-W001", "jane@acme.com", t0.Add(2*time.Minute)),
		item("Upsell", "Jane@Acme.com", t0.Add(3*time.Minute)),
	}

	for _, strategy := range []Strategy{StrategyTitle, StrategyEmail} {
		first := Reconcile(strategy, items)
		applied := Apply(items, first)
		if second := Reconcile(strategy, applied); len(second) != 0 {
			t.Fatalf("%s: second reconcile produced %d changes: %+v", strategy, len(second), second)
		}
	}
}

func TestReconcileLeavesNoGaps(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		item("Acme-W001", "", t0),
		item("Acme-W004", "", t0.Add(time.Minute)),
		item("Acme-W009", "", t0.Add(2*time.Minute)),
	}

	applied := Apply(items, Reconcile(StrategyTitle, items))
	seen := make(map[int]bool)
	for _, it := range applied {
		seen[it.SequenceNumber] = true
		if it.Title != Format("Acme", it.SequenceNumber) {
			t.Fatalf("title %q does not match sequence %d", it.Title, it.SequenceNumber)
		}
	}
	for n := 1; n <= len(items); n++ {
		if !seen[n] {
			t.Fatalf("sequence %d missing after reconcile", n)
		}
	}
}

func TestReconcileEmailStrategyGroupsByContact(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		item("Onboarding", "jane@acme.com", t0),
		item("Renewal", "JANE@acme.com", t0.Add(time.Minute)),
	}

	changes := Reconcile(StrategyEmail, items)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].To != "jane@acme.com-W001" || changes[1].To != "jane@acme.com-W002" {
		t.Fatalf("unexpected titles %q, %q", changes[0].To, changes[1].To)
	}
}

func TestReconcileBreaksTiesByID(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	low := Item{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Title: "Acme", CreatedAt: t0}
	high := Item{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Title: "Acme", CreatedAt: t0}

	applied := Apply([]Item{high, low}, Reconcile(StrategyTitle, []Item{high, low}))
	for _, it := range applied {
		if it.ID == low.ID && it.SequenceNumber != 1 {
			t.Fatalf("lower id should get sequence 1, got %d", it.SequenceNumber)
		}
	}
}

func TestReconcileSkipsItemsWithoutBase(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		item("", "", t0),
		item("  -W004 ", "", t0.Add(time.Hour)),
		item("Acme-W002", "", t0),
	}

	changes := Reconcile(StrategyTitle, items)
	if len(changes) != 1 || changes[0].ID != items[2].ID || changes[0].To != "Acme-W001" {
		t.Fatalf("unexpected changes %+v", changes)
	}
	for _, c := range changes {
		if c.BaseKey == "" {
			t.Fatalf("minted an identifier without a base: %+v", c)
		}
	}

	skipped := Unkeyed(StrategyTitle, items)
	if len(skipped) != 2 || skipped[0] != items[0].ID || skipped[1] != items[1].ID {
		t.Fatalf("unexpected skipped ids %v", skipped)
	}
}
