package repository

import (
	"context"

	"salesdesk_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// WorkerStore manages the salesperson pool. LockWorkerPool must be called
// before reading the pool for an assignment decision.
type WorkerStore interface {
	LockWorkerPool(ctx context.Context) error
	ListWorkers(ctx context.Context) ([]domain.Worker, error)
	InsertWorkers(ctx context.Context, seeds []domain.WorkerSeed) error
	MarkWorkerAssigned(ctx context.Context, id uuid.UUID) (domain.Worker, error)
}

// SequenceStore reads and rewrites sequenced deal identifiers.
type SequenceStore interface {
	// LockSequenceBase serializes single-item minting for one base key.
	LockSequenceBase(ctx context.Context, baseKey string) error
	// LockAllSequences excludes every minting transaction until commit.
	LockAllSequences(ctx context.Context) error
	ListDealTitles(ctx context.Context, baseKey string) ([]string, error)
	// ListSequenceNumbers returns the stored numbers for baseKey, whatever the titles say.
	ListSequenceNumbers(ctx context.Context, baseKey string) ([]int, error)
	ListDealIdentifiers(ctx context.Context) ([]domain.Deal, error)
	UpdateDealIdentifier(ctx context.Context, id uuid.UUID, title, baseKey string, sequence int) error
}

// LeadStore provides lead access for intake and conversion.
type LeadStore interface {
	GetLeadForUpdate(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	InsertLead(ctx context.Context, params InsertLeadParams) (domain.Lead, error)
	DeleteLead(ctx context.Context, id uuid.UUID) error
}

// AccountStore resolves accounts by exact name.
type AccountStore interface {
	UpsertAccountByName(ctx context.Context, name, domainName string) (domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error)
	UpdateAccountScore(ctx context.Context, id uuid.UUID, score int) error
}

// ContactStore creates contacts.
type ContactStore interface {
	InsertContact(ctx context.Context, params InsertContactParams) (domain.Contact, error)
}

// DealStore creates and restamps deals.
type DealStore interface {
	InsertDeal(ctx context.Context, params InsertDealParams) (domain.Deal, error)
	RestampAccountDeals(ctx context.Context, accountID uuid.UUID, score int, grade domain.Grade, isHot bool) (int, error)
}

// TaskStore re-parents tasks.
type TaskStore interface {
	ReparentLeadTasks(ctx context.Context, leadID, dealID uuid.UUID) (int, error)
}

// =====================================
// Composite Interfaces
// =====================================

// Tx is the full store bound to one transaction.
type Tx interface {
	WorkerStore
	SequenceStore
	LeadStore
	AccountStore
	ContactStore
	DealStore
	TaskStore
}

// Transactor runs fn inside one transaction. fn's error rolls everything back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Ensure the postgres implementation satisfies the composite interfaces
var (
	_ Tx         = (*queries)(nil)
	_ Transactor = (*Repository)(nil)
)
