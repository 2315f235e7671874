package transport

import (
	"time"

	"salesdesk_backend/internal/leads/accounts"
	"salesdesk_backend/internal/leads/conversion"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/scoring"
	"salesdesk_backend/internal/leads/sequencing"

	"github.com/google/uuid"
)

// Request DTOs
type ScoreLeadRequest struct {
	OldStatus    string `json:"oldStatus" validate:"omitempty,max=50"`
	NewStatus    string `json:"newStatus" validate:"max=50"`
	CurrentScore int    `json:"currentScore"`
}

type ScoreCompanyRequest struct {
	Domain       string   `json:"domain" validate:"max=253"`
	IsCustomer   bool     `json:"isCustomer"`
	Technologies []string `json:"technologies,omitempty" validate:"omitempty,max=50,dive,max=100"`
}

type ScoreCompanyDealRequest struct {
	CompanyScore int `json:"companyScore"`
}

type ScoreCampaignRequest struct {
	Channel            string  `json:"channel" validate:"max=100"`
	Objective          string  `json:"objective" validate:"max=100"`
	Audience           string  `json:"audience" validate:"max=200"`
	Budget             float64 `json:"budget"`
	ExpectedSpend      float64 `json:"expectedSpend"`
	Priority           string  `json:"priority" validate:"max=50"`
	Stage              string  `json:"stage" validate:"max=50"`
	UTMSource          string  `json:"utmSource" validate:"max=200"`
	UTMMedium          string  `json:"utmMedium" validate:"max=200"`
	UTMCampaign        string  `json:"utmCampaign" validate:"max=200"`
	ComplianceComplete bool    `json:"complianceComplete"`
	LinkedDomain       string  `json:"linkedDomain" validate:"max=253"`
}

type NextIdentifierQuery struct {
	BaseKey  string `form:"baseKey" validate:"required,max=200"`
	Strategy string `form:"strategy" validate:"omitempty,oneof=email title"`
}

type ReconcileRequest struct {
	Strategy string `json:"strategy" validate:"omitempty,oneof=email title"`
	DryRun   bool   `json:"dryRun"`
}

type IntakeLeadRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=200,nohtml"`
	Company      string   `json:"company,omitempty" validate:"max=200,nohtml"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string   `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Domain       string   `json:"domain,omitempty" validate:"max=253"`
	Source       string   `json:"source,omitempty" validate:"max=100"`
	Status       string   `json:"status,omitempty" validate:"omitempty,oneof=New Contacted Qualified Disqualified"`
	IsCustomer   bool     `json:"isCustomer"`
	Technologies []string `json:"technologies,omitempty" validate:"omitempty,max=50,dive,max=100"`
	AutoAssign   bool     `json:"autoAssign"`
	CreateDeal   bool     `json:"createDeal"`
}

func (r IntakeLeadRequest) ToIntake() conversion.IntakeRequest {
	return conversion.IntakeRequest{
		Name:         r.Name,
		Company:      r.Company,
		Email:        r.Email,
		Phone:        r.Phone,
		Domain:       r.Domain,
		Source:       r.Source,
		Status:       r.Status,
		IsCustomer:   r.IsCustomer,
		Technologies: r.Technologies,
		AutoAssign:   r.AutoAssign,
		CreateDeal:   r.CreateDeal,
	}
}

func (r ScoreCampaignRequest) ToInputs() scoring.CampaignInputs {
	return scoring.CampaignInputs{
		Channel:            r.Channel,
		Objective:          r.Objective,
		Audience:           r.Audience,
		Budget:             r.Budget,
		ExpectedSpend:      r.ExpectedSpend,
		Priority:           r.Priority,
		Stage:              r.Stage,
		UTMSource:          r.UTMSource,
		UTMMedium:          r.UTMMedium,
		UTMCampaign:        r.UTMCampaign,
		ComplianceComplete: r.ComplianceComplete,
		LinkedDomain:       r.LinkedDomain,
	}
}

// Response DTOs
type WorkerResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	AssignedCount  int        `json:"assignedCount"`
	LastAssignedAt *time.Time `json:"lastAssignedAt,omitempty"`
}

type LeadResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Company   string     `json:"company,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Domain    string     `json:"domain,omitempty"`
	Source    string     `json:"source,omitempty"`
	Status    string     `json:"status"`
	Score     int        `json:"score"`
	Grade     string     `json:"grade"`
	IsHot     bool       `json:"isHot"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type AccountResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Domain string    `json:"domain,omitempty"`
	Score  *int      `json:"score,omitempty"`
}

type ContactResponse struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"accountId"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
}

type DealResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	BaseKey        string     `json:"baseKey"`
	SequenceNumber int        `json:"sequenceNumber"`
	Stage          string     `json:"stage"`
	Score          int        `json:"score"`
	Grade          string     `json:"grade"`
	IsHot          bool       `json:"isHot"`
	OwnerID        *uuid.UUID `json:"ownerId,omitempty"`
	ContactID      *uuid.UUID `json:"contactId,omitempty"`
	AccountID      *uuid.UUID `json:"accountId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type ConversionResponse struct {
	Account    AccountResponse `json:"account"`
	Contact    ContactResponse `json:"contact"`
	Deal       DealResponse    `json:"deal"`
	MovedTasks int             `json:"movedTasks"`
}

type IntakeResponse struct {
	Lead    LeadResponse           `json:"lead"`
	Owner   *WorkerResponse        `json:"owner,omitempty"`
	Deal    *DealResponse          `json:"deal,omitempty"`
	Company *scoring.CompanyResult `json:"company,omitempty"`
}

type ScoreResponse = scoring.Result

type IdentifierResponse = sequencing.Identifier

type ReconcileResponse = sequencing.Report

type AccountScoreResponse = accounts.Outcome

// Mappers
func ToWorkerResponse(w domain.Worker) WorkerResponse {
	return WorkerResponse{
		ID:             w.ID,
		Name:           w.Name,
		Email:          w.Email,
		AssignedCount:  w.AssignedCount,
		LastAssignedAt: w.LastAssignedAt,
	}
}

func ToLeadResponse(l domain.Lead) LeadResponse {
	return LeadResponse{
		ID:        l.ID,
		Name:      l.Name,
		Company:   l.Company,
		Email:     l.Email,
		Phone:     l.Phone,
		Domain:    l.Domain,
		Source:    l.Source,
		Status:    l.Status,
		Score:     l.Score,
		Grade:     string(l.Grade),
		IsHot:     l.IsHot,
		OwnerID:   l.OwnerID,
		CreatedAt: l.CreatedAt,
	}
}

func ToDealResponse(d domain.Deal) DealResponse {
	return DealResponse{
		ID:             d.ID,
		Title:          d.Title,
		BaseKey:        d.BaseKey,
		SequenceNumber: d.SequenceNumber,
		Stage:          d.Stage,
		Score:          d.Score,
		Grade:          string(d.Grade),
		IsHot:          d.IsHot,
		OwnerID:        d.OwnerID,
		ContactID:      d.ContactID,
		AccountID:      d.AccountID,
		CreatedAt:      d.CreatedAt,
	}
}

func ToConversionResponse(r conversion.Result) ConversionResponse {
	return ConversionResponse{
		Account: AccountResponse{
			ID:     r.Account.ID,
			Name:   r.Account.Name,
			Domain: r.Account.Domain,
			Score:  r.Account.Score,
		},
		Contact: ContactResponse{
			ID:        r.Contact.ID,
			AccountID: r.Contact.AccountID,
			Name:      r.Contact.Name,
			Email:     r.Contact.Email,
			Phone:     r.Contact.Phone,
			OwnerID:   r.Contact.OwnerID,
		},
		Deal:       ToDealResponse(r.Deal),
		MovedTasks: r.MovedTasks,
	}
}

func ToIntakeResponse(r conversion.IntakeResult) IntakeResponse {
	resp := IntakeResponse{Lead: ToLeadResponse(r.Lead), Company: r.Company}
	if r.Owner != nil {
		owner := ToWorkerResponse(*r.Owner)
		resp.Owner = &owner
	}
	if r.Deal != nil {
		deal := ToDealResponse(*r.Deal)
		resp.Deal = &deal
	}
	return resp
}
