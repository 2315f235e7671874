package repository

import (
	"salesdesk_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// InsertLeadParams carries a scored lead ready to persist.
type InsertLeadParams struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Domain  string
	Source  string
	Status  string
	Score   int
	Grade   domain.Grade
	IsHot   bool
	OwnerID *uuid.UUID
}

// InsertContactParams carries contact fields copied from a lead.
type InsertContactParams struct {
	AccountID uuid.UUID
	Name      string
	Email     string
	Phone     string
	Company   string
	OwnerID   *uuid.UUID
}

// InsertDealParams carries a deal with an already minted identifier.
type InsertDealParams struct {
	Title          string
	BaseKey        string
	SequenceNumber int
	Value          int64
	Stage          string
	Score          int
	Grade          domain.Grade
	IsHot          bool
	OwnerID        *uuid.UUID
	ContactID      *uuid.UUID
	AccountID      *uuid.UUID
}
