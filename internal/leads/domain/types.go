// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Worker is a salesperson eligible to receive work.
type Worker struct {
	ID             uuid.UUID
	Name           string
	Email          string
	AssignedCount  int
	LastAssignedAt *time.Time
	CreatedAt      time.Time
}

// WorkerSeed describes a default pool member created when the pool is empty.
type WorkerSeed struct {
	Name  string
	Email string
}

// Lead is a prospective record awaiting conversion.
type Lead struct {
	ID        uuid.UUID
	Name      string
	Company   string
	Email     string
	Phone     string
	Domain    string
	Source    string
	Status    string
	Score     int
	Grade     Grade
	IsHot     bool
	OwnerID   *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account is the organisation a converted lead belongs to. Accounts are
// matched by exact name.
type Account struct {
	ID         uuid.UUID
	Name       string
	Domain     string
	IsCustomer bool
	Score      *int
	CreatedAt  time.Time
}

// Contact is the person carried over from a lead.
type Contact struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Email     string
	Phone     string
	Company   string
	OwnerID   *uuid.UUID
	CreatedAt time.Time
}

// Deal is a sequenced work item.
type Deal struct {
	ID             uuid.UUID
	Title          string
	BaseKey        string
	SequenceNumber int
	Value          int64
	Stage          string
	Score          int
	Grade          Grade
	IsHot          bool
	OwnerID        *uuid.UUID
	ContactID      *uuid.UUID
	AccountID      *uuid.UUID
	ContactEmail   string
	CreatedAt      time.Time
}

// Task is a to-do linked to either a lead or a deal.
type Task struct {
	ID        uuid.UUID
	Title     string
	LeadID    *uuid.UUID
	DealID    *uuid.UUID
	CreatedAt time.Time
}
