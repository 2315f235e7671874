package sequencing

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Item is the minimal view of a deal needed for bulk renumbering.
type Item struct {
	ID             uuid.UUID
	Title          string
	BaseKey        string
	SequenceNumber int
	ContactEmail   string
	CreatedAt      time.Time
}

// Change describes one identifier rewrite.
type Change struct {
	ID       uuid.UUID `json:"id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	BaseKey  string    `json:"baseKey"`
	Sequence int       `json:"sequence"`
}

// Reconcile groups items by derived base key, orders each group by creation
// time (id breaks ties) and numbers it 1..N. Only items whose stored
// identifier differs from the computed one are returned, so running
// Reconcile on its own output yields no changes. Items without a base key
// are left alone; see Unkeyed.
func Reconcile(strategy Strategy, items []Item) []Change {
	groups := make(map[string][]Item)
	bases := make([]string, 0)
	for _, item := range items {
		base := DeriveBaseKey(strategy, item.ContactEmail, item.Title)
		if base == "" {
			continue
		}
		if _, seen := groups[base]; !seen {
			bases = append(bases, base)
		}
		groups[base] = append(groups[base], item)
	}
	sort.Strings(bases)

	changes := make([]Change, 0)
	for _, base := range bases {
		group := groups[base]
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			}
			return bytes.Compare(group[i].ID[:], group[j].ID[:]) < 0
		})

		for i, item := range group {
			seq := i + 1
			to := Format(base, seq)
			if item.Title == to && item.BaseKey == base && item.SequenceNumber == seq {
				continue
			}
			changes = append(changes, Change{
				ID:       item.ID,
				From:     item.Title,
				To:       to,
				BaseKey:  base,
				Sequence: seq,
			})
		}
	}
	return changes
}

// Unkeyed returns the ids of items no base key can be derived for.
func Unkeyed(strategy Strategy, items []Item) []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for _, item := range items {
		if DeriveBaseKey(strategy, item.ContactEmail, item.Title) == "" {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// Apply returns a copy of items with changes applied.
func Apply(items []Item, changes []Change) []Item {
	byID := make(map[uuid.UUID]Change, len(changes))
	for _, c := range changes {
		byID[c.ID] = c
	}
	out := make([]Item, len(items))
	for i, item := range items {
		if c, ok := byID[item.ID]; ok {
			item.Title = c.To
			item.BaseKey = c.BaseKey
			item.SequenceNumber = c.Sequence
		}
		out[i] = item
	}
	return out
}
