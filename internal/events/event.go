// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"salesdesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// Event names. The broker uses them as routing keys.
const (
	NameWorkerAssigned        = "workers.assigned"
	NameLeadConverted         = "leads.converted"
	NameLeadIntakeCompleted   = "leads.intake.completed"
	NameIdentifiersReconciled = "identifiers.reconciled"
	NameAccountScored         = "accounts.scored"
)

// AllNames lists every pipeline event.
var AllNames = []string{
	NameWorkerAssigned,
	NameLeadConverted,
	NameLeadIntakeCompleted,
	NameIdentifiersReconciled,
	NameAccountScored,
}

// WorkerAssigned is published after a worker was picked from the pool and the
// transaction that picked it committed.
type WorkerAssigned struct {
	BaseEvent
	WorkerID      uuid.UUID `json:"workerId"`
	WorkerEmail   string    `json:"workerEmail"`
	AssignedCount int       `json:"assignedCount"`
	Seeded        bool      `json:"seeded"`
}

func (e WorkerAssigned) EventName() string { return NameWorkerAssigned }

// LeadConverted is published when a lead became account + contact + deal.
type LeadConverted struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	AccountID  uuid.UUID  `json:"accountId"`
	ContactID  uuid.UUID  `json:"contactId"`
	DealID     uuid.UUID  `json:"dealId"`
	DealTitle  string     `json:"dealTitle"`
	OwnerID    *uuid.UUID `json:"ownerId,omitempty"`
	MovedTasks int        `json:"movedTasks"`
	ActorID    uuid.UUID  `json:"actorId"`
}

func (e LeadConverted) EventName() string { return NameLeadConverted }

// LeadIntakeCompleted is published when a lead was created through intake.
type LeadIntakeCompleted struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
	DealID    *uuid.UUID `json:"dealId,omitempty"`
	DealTitle string     `json:"dealTitle,omitempty"`
	Score     int        `json:"score"`
	Grade     string     `json:"grade"`
	IsHot     bool       `json:"isHot"`
	Source    string     `json:"source,omitempty"`
}

func (e LeadIntakeCompleted) EventName() string { return NameLeadIntakeCompleted }

// IdentifiersReconciled is published after a non-dry-run renumbering.
type IdentifiersReconciled struct {
	BaseEvent
	Strategy string `json:"strategy"`
	Scanned  int    `json:"scanned"`
	Changed  int    `json:"changed"`
}

func (e IdentifiersReconciled) EventName() string { return NameIdentifiersReconciled }

// AccountScored is published when an account's company score was refreshed
// and its deals restamped.
type AccountScored struct {
	BaseEvent
	AccountID      uuid.UUID `json:"accountId"`
	Score          int       `json:"score"`
	Grade          string    `json:"grade"`
	DealsRestamped int       `json:"dealsRestamped"`
}

func (e AccountScored) EventName() string { return NameAccountScored }
