package domain

import (
	"bytes"
	"sort"
)

// WorkerLess orders workers for fair assignment: never-assigned first, then
// oldest lastAssignedAt, then lowest assignedCount, then lowest id.
func WorkerLess(a, b Worker) bool {
	switch {
	case a.LastAssignedAt == nil && b.LastAssignedAt != nil:
		return true
	case a.LastAssignedAt != nil && b.LastAssignedAt == nil:
		return false
	case a.LastAssignedAt != nil && b.LastAssignedAt != nil && !a.LastAssignedAt.Equal(*b.LastAssignedAt):
		return a.LastAssignedAt.Before(*b.LastAssignedAt)
	}
	if a.AssignedCount != b.AssignedCount {
		return a.AssignedCount < b.AssignedCount
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// SelectNextWorker returns the worker that should receive the next item.
func SelectNextWorker(pool []Worker) (Worker, bool) {
	if len(pool) == 0 {
		return Worker{}, false
	}
	ordered := make([]Worker, len(pool))
	copy(ordered, pool)
	sort.SliceStable(ordered, func(i, j int) bool { return WorkerLess(ordered[i], ordered[j]) })
	return ordered[0], true
}
