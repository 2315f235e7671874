package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// tx operates on the private copy of one transaction. Locks are no-ops since
// the store already runs transactions one at a time.
type tx struct {
	store *Store
	st    *state
}

var _ repository.Tx = (*tx)(nil)

func (t *tx) LockWorkerPool(ctx context.Context) error {
	return t.store.injected("LockWorkerPool")
}

func (t *tx) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	if err := t.store.injected("ListWorkers"); err != nil {
		return nil, err
	}
	return sortedValues(t.st.workers,
		func(w domain.Worker) time.Time { return w.CreatedAt },
		func(w domain.Worker) uuid.UUID { return w.ID }), nil
}

func (t *tx) InsertWorkers(ctx context.Context, seeds []domain.WorkerSeed) error {
	if err := t.store.injected("InsertWorkers"); err != nil {
		return err
	}
	for _, seed := range seeds {
		exists := false
		for _, w := range t.st.workers {
			if strings.EqualFold(w.Email, seed.Email) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		w := domain.Worker{ID: uuid.New(), Name: seed.Name, Email: seed.Email, CreatedAt: t.store.tick()}
		t.st.workers[w.ID] = w
	}
	return nil
}

func (t *tx) MarkWorkerAssigned(ctx context.Context, id uuid.UUID) (domain.Worker, error) {
	if err := t.store.injected("MarkWorkerAssigned"); err != nil {
		return domain.Worker{}, err
	}
	w, ok := t.st.workers[id]
	if !ok {
		return domain.Worker{}, repository.ErrNotFound
	}
	now := t.store.tick()
	w.AssignedCount++
	w.LastAssignedAt = &now
	t.st.workers[id] = w
	return w, nil
}

func (t *tx) LockSequenceBase(ctx context.Context, baseKey string) error {
	return t.store.injected("LockSequenceBase")
}

func (t *tx) LockAllSequences(ctx context.Context) error {
	return t.store.injected("LockAllSequences")
}

func (t *tx) ListDealTitles(ctx context.Context, baseKey string) ([]string, error) {
	if err := t.store.injected("ListDealTitles"); err != nil {
		return nil, err
	}
	titles := make([]string, 0)
	for _, d := range t.st.deals {
		if d.Title == baseKey || (strings.HasPrefix(d.Title, baseKey) && len(d.Title) == len(baseKey)+5) {
			titles = append(titles, d.Title)
		}
	}
	return titles, nil
}

func (t *tx) ListSequenceNumbers(ctx context.Context, baseKey string) ([]int, error) {
	if err := t.store.injected("ListSequenceNumbers"); err != nil {
		return nil, err
	}
	numbers := make([]int, 0)
	for _, d := range t.st.deals {
		if d.BaseKey == baseKey {
			numbers = append(numbers, d.SequenceNumber)
		}
	}
	return numbers, nil
}

func (t *tx) ListDealIdentifiers(ctx context.Context) ([]domain.Deal, error) {
	if err := t.store.injected("ListDealIdentifiers"); err != nil {
		return nil, err
	}
	deals := sortedValues(t.st.deals,
		func(d domain.Deal) time.Time { return d.CreatedAt },
		func(d domain.Deal) uuid.UUID { return d.ID })
	for i, d := range deals {
		if d.ContactID != nil {
			if c, ok := t.st.contacts[*d.ContactID]; ok {
				deals[i].ContactEmail = c.Email
			}
		}
	}
	return deals, nil
}

func (t *tx) UpdateDealIdentifier(ctx context.Context, id uuid.UUID, title, baseKey string, sequence int) error {
	if err := t.store.injected("UpdateDealIdentifier"); err != nil {
		return err
	}
	d, ok := t.st.deals[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Title = title
	d.BaseKey = baseKey
	d.SequenceNumber = sequence
	t.st.deals[id] = d
	return nil
}

func (t *tx) GetLeadForUpdate(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	if err := t.store.injected("GetLeadForUpdate"); err != nil {
		return domain.Lead{}, err
	}
	l, ok := t.st.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

func (t *tx) InsertLead(ctx context.Context, params repository.InsertLeadParams) (domain.Lead, error) {
	if err := t.store.injected("InsertLead"); err != nil {
		return domain.Lead{}, err
	}
	if params.OwnerID != nil {
		if _, ok := t.st.workers[*params.OwnerID]; !ok {
			return domain.Lead{}, fmt.Errorf("lead owner %s does not exist", params.OwnerID)
		}
	}
	status := params.Status
	if status == "" {
		status = domain.LeadStatusNew
	}
	now := t.store.tick()
	l := domain.Lead{
		ID:        uuid.New(),
		Name:      params.Name,
		Company:   params.Company,
		Email:     params.Email,
		Phone:     params.Phone,
		Domain:    params.Domain,
		Source:    params.Source,
		Status:    status,
		Score:     params.Score,
		Grade:     params.Grade,
		IsHot:     params.IsHot,
		OwnerID:   params.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.st.leads[l.ID] = l
	return l, nil
}

func (t *tx) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if err := t.store.injected("DeleteLead"); err != nil {
		return err
	}
	if _, ok := t.st.leads[id]; !ok {
		return repository.ErrNotFound
	}
	for _, task := range t.st.tasks {
		if task.LeadID != nil && *task.LeadID == id {
			return fmt.Errorf("lead %s is still referenced by task %s", id, task.ID)
		}
	}
	delete(t.st.leads, id)
	return nil
}

func (t *tx) UpsertAccountByName(ctx context.Context, name, domainName string) (domain.Account, error) {
	if err := t.store.injected("UpsertAccountByName"); err != nil {
		return domain.Account{}, err
	}
	for id, a := range t.st.accounts {
		if a.Name == name {
			if a.Domain == "" && domainName != "" {
				a.Domain = domainName
				t.st.accounts[id] = a
			}
			return a, nil
		}
	}
	a := domain.Account{ID: uuid.New(), Name: name, Domain: domainName, CreatedAt: t.store.tick()}
	t.st.accounts[a.ID] = a
	return a, nil
}

func (t *tx) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	if err := t.store.injected("GetAccount"); err != nil {
		return domain.Account{}, err
	}
	a, ok := t.st.accounts[id]
	if !ok {
		return domain.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (t *tx) UpdateAccountScore(ctx context.Context, id uuid.UUID, score int) error {
	if err := t.store.injected("UpdateAccountScore"); err != nil {
		return err
	}
	a, ok := t.st.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Score = &score
	t.st.accounts[id] = a
	return nil
}

func (t *tx) InsertContact(ctx context.Context, params repository.InsertContactParams) (domain.Contact, error) {
	if err := t.store.injected("InsertContact"); err != nil {
		return domain.Contact{}, err
	}
	if _, ok := t.st.accounts[params.AccountID]; !ok {
		return domain.Contact{}, fmt.Errorf("contact account %s does not exist", params.AccountID)
	}
	c := domain.Contact{
		ID:        uuid.New(),
		AccountID: params.AccountID,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Company:   params.Company,
		OwnerID:   params.OwnerID,
		CreatedAt: t.store.tick(),
	}
	t.st.contacts[c.ID] = c
	return c, nil
}

func (t *tx) InsertDeal(ctx context.Context, params repository.InsertDealParams) (domain.Deal, error) {
	if err := t.store.injected("InsertDeal"); err != nil {
		return domain.Deal{}, err
	}
	if params.SequenceNumber <= 0 {
		return domain.Deal{}, fmt.Errorf("sequence number must be positive, got %d", params.SequenceNumber)
	}
	stage := params.Stage
	if stage == "" {
		stage = domain.InitialPipelineStage
	}
	d := domain.Deal{
		ID:             uuid.New(),
		Title:          params.Title,
		BaseKey:        params.BaseKey,
		SequenceNumber: params.SequenceNumber,
		Value:          params.Value,
		Stage:          stage,
		Score:          params.Score,
		Grade:          params.Grade,
		IsHot:          params.IsHot,
		OwnerID:        params.OwnerID,
		ContactID:      params.ContactID,
		AccountID:      params.AccountID,
		CreatedAt:      t.store.tick(),
	}
	t.st.deals[d.ID] = d
	return d, nil
}

func (t *tx) RestampAccountDeals(ctx context.Context, accountID uuid.UUID, score int, grade domain.Grade, isHot bool) (int, error) {
	if err := t.store.injected("RestampAccountDeals"); err != nil {
		return 0, err
	}
	n := 0
	for id, d := range t.st.deals {
		if d.AccountID != nil && *d.AccountID == accountID {
			d.Score = score
			d.Grade = grade
			d.IsHot = isHot
			t.st.deals[id] = d
			n++
		}
	}
	return n, nil
}

func (t *tx) ReparentLeadTasks(ctx context.Context, leadID, dealID uuid.UUID) (int, error) {
	if err := t.store.injected("ReparentLeadTasks"); err != nil {
		return 0, err
	}
	if _, ok := t.st.deals[dealID]; !ok {
		return 0, fmt.Errorf("deal %s does not exist", dealID)
	}
	n := 0
	for id, task := range t.st.tasks {
		if task.LeadID != nil && *task.LeadID == leadID {
			deal := dealID
			task.LeadID = nil
			task.DealID = &deal
			t.st.tasks[id] = task
			n++
		}
	}
	return n, nil
}
