package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSelectNextWorkerPrefersNeverAssigned(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	pool := []Worker{
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), AssignedCount: 0, LastAssignedAt: &earlier},
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), AssignedCount: 5},
	}

	got, ok := SelectNextWorker(pool)
	if !ok || got.ID != pool[1].ID {
		t.Fatalf("expected never-assigned worker to win, got %s", got.ID)
	}
}

func TestSelectNextWorkerTieBreaks(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := at.Add(time.Minute)
	idLow := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	idHigh := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	byTime := []Worker{
		{ID: idLow, AssignedCount: 1, LastAssignedAt: &later},
		{ID: idHigh, AssignedCount: 9, LastAssignedAt: &at},
	}
	if got, _ := SelectNextWorker(byTime); got.ID != idHigh {
		t.Fatalf("expected oldest lastAssignedAt to win")
	}

	byCount := []Worker{
		{ID: idLow, AssignedCount: 3, LastAssignedAt: &at},
		{ID: idHigh, AssignedCount: 2, LastAssignedAt: &at},
	}
	if got, _ := SelectNextWorker(byCount); got.ID != idHigh {
		t.Fatalf("expected lower assignedCount to win on equal timestamps")
	}

	byID := []Worker{
		{ID: idHigh, AssignedCount: 2, LastAssignedAt: &at},
		{ID: idLow, AssignedCount: 2, LastAssignedAt: &at},
	}
	if got, _ := SelectNextWorker(byID); got.ID != idLow {
		t.Fatalf("expected lowest id to win on full tie")
	}
}

func TestSelectNextWorkerEmptyPool(t *testing.T) {
	if _, ok := SelectNextWorker(nil); ok {
		t.Fatal("expected empty pool to report no worker")
	}
}
