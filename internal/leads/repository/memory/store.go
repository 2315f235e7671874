// Package memory is an in-process implementation of the leads repository.
// Transactions run one at a time against a private copy of the state that
// replaces the committed state only when fn succeeds, so every transaction is
// atomic and serializable. It backs service tests and local tooling.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"

	"github.com/google/uuid"
)

type state struct {
	workers  map[uuid.UUID]domain.Worker
	leads    map[uuid.UUID]domain.Lead
	accounts map[uuid.UUID]domain.Account
	contacts map[uuid.UUID]domain.Contact
	deals    map[uuid.UUID]domain.Deal
	tasks    map[uuid.UUID]domain.Task
}

func newState() *state {
	return &state{
		workers:  make(map[uuid.UUID]domain.Worker),
		leads:    make(map[uuid.UUID]domain.Lead),
		accounts: make(map[uuid.UUID]domain.Account),
		contacts: make(map[uuid.UUID]domain.Contact),
		deals:    make(map[uuid.UUID]domain.Deal),
		tasks:    make(map[uuid.UUID]domain.Task),
	}
}

func cloneMap[V any](in map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		workers:  cloneMap(s.workers),
		leads:    cloneMap(s.leads),
		accounts: cloneMap(s.accounts),
		contacts: cloneMap(s.contacts),
		deals:    cloneMap(s.deals),
		tasks:    cloneMap(s.tasks),
	}
}

// checkSequences mirrors the deferred (base_key, sequence_number) constraint.
func (s *state) checkSequences() error {
	type key struct {
		base string
		seq  int
	}
	seen := make(map[key]uuid.UUID, len(s.deals))
	for id, d := range s.deals {
		k := key{base: d.BaseKey, seq: d.SequenceNumber}
		if other, dup := seen[k]; dup {
			return fmt.Errorf("%w: deals %s and %s share %s/%d", domain.ErrSequenceConflict, other, id, d.BaseKey, d.SequenceNumber)
		}
		seen[k] = id
	}
	return nil
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state *state

	hooksMu   sync.Mutex
	failures  map[string][]error
	now       func() time.Time
	last      time.Time
	commits   int
	rollbacks int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		state:    newState(),
		failures: make(map[string][]error),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Timestamps are still forced to increase.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.now = now
	return s
}

// FailNext makes the next call of op (a method name such as "InsertDeal")
// return err. Multiple calls queue up.
func (s *Store) FailNext(op string, err error) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// Commits and Rollbacks count finished transactions.
func (s *Store) Commits() int {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	return s.commits
}

func (s *Store) Rollbacks() int {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	return s.rollbacks
}

// InTx implements repository.Transactor.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(ctx, &tx{store: s, st: work}); err != nil {
		s.count(false)
		return err
	}
	if err := work.checkSequences(); err != nil {
		s.count(false)
		return err
	}
	s.state = work
	s.count(true)
	return nil
}

func (s *Store) count(committed bool) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	if committed {
		s.commits++
	} else {
		s.rollbacks++
	}
}

func (s *Store) injected(op string) error {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	queue := s.failures[op]
	if len(queue) == 0 {
		return nil
	}
	s.failures[op] = queue[1:]
	return queue[0]
}

func (s *Store) tick() time.Time {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// =====================================
// Fixtures and snapshots
// =====================================

// AddWorker stores w as committed state, filling ID and CreatedAt when zero.
func (s *Store) AddWorker(w domain.Worker) domain.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.tick()
	}
	s.state.workers[w.ID] = w
	return w
}

// AddLead stores l as committed state.
func (s *Store) AddLead(l domain.Lead) domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.tick()
		l.UpdatedAt = l.CreatedAt
	}
	if l.Status == "" {
		l.Status = domain.LeadStatusNew
	}
	s.state.leads[l.ID] = l
	return l
}

// AddDeal stores d as committed state without checking sequence uniqueness.
func (s *Store) AddDeal(d domain.Deal) domain.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.tick()
	}
	if d.Stage == "" {
		d.Stage = domain.InitialPipelineStage
	}
	s.state.deals[d.ID] = d
	return d
}

// AddContact stores c as committed state.
func (s *Store) AddContact(c domain.Contact) domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.tick()
	}
	s.state.contacts[c.ID] = c
	return c
}

// AddAccount stores a as committed state.
func (s *Store) AddAccount(a domain.Account) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.tick()
	}
	s.state.accounts[a.ID] = a
	return a
}

// AddTask stores t as committed state.
func (s *Store) AddTask(t domain.Task) domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.tick()
	}
	s.state.tasks[t.ID] = t
	return t
}

func sortedValues[V any](in map[uuid.UUID]V, created func(V) time.Time, id func(V) uuid.UUID) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := created(out[i]), created(out[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		a, b := id(out[i]), id(out[j])
		return bytes.Compare(a[:], b[:]) < 0
	})
	return out
}

// Workers returns committed workers in creation order.
func (s *Store) Workers() []domain.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.workers,
		func(w domain.Worker) time.Time { return w.CreatedAt },
		func(w domain.Worker) uuid.UUID { return w.ID })
}

// Leads returns committed leads in creation order.
func (s *Store) Leads() []domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.leads,
		func(l domain.Lead) time.Time { return l.CreatedAt },
		func(l domain.Lead) uuid.UUID { return l.ID })
}

// Deals returns committed deals in creation order.
func (s *Store) Deals() []domain.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.deals,
		func(d domain.Deal) time.Time { return d.CreatedAt },
		func(d domain.Deal) uuid.UUID { return d.ID })
}

// Accounts returns committed accounts in creation order.
func (s *Store) Accounts() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.accounts,
		func(a domain.Account) time.Time { return a.CreatedAt },
		func(a domain.Account) uuid.UUID { return a.ID })
}

// Contacts returns committed contacts in creation order.
func (s *Store) Contacts() []domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.contacts,
		func(c domain.Contact) time.Time { return c.CreatedAt },
		func(c domain.Contact) uuid.UUID { return c.ID })
}

// Tasks returns committed tasks in creation order.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.tasks,
		func(t domain.Task) time.Time { return t.CreatedAt },
		func(t domain.Task) uuid.UUID { return t.ID })
}

var _ repository.Transactor = (*Store)(nil)
