package conversion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/leads/assignment"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/scoring"
	"salesdesk_backend/internal/leads/sequencing"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/metrics"
	"salesdesk_backend/platform/phone"
	"salesdesk_backend/platform/sanitize"

	"github.com/google/uuid"
)

// IntakeRequest describes a lead created programmatically.
type IntakeRequest struct {
	Name         string
	Company      string
	Email        string
	Phone        string
	Domain       string
	Source       string
	Status       string
	IsCustomer   bool
	Technologies []string
	AutoAssign   bool
	CreateDeal   bool
}

// IntakeResult is the persisted lead plus the optional owner and deal stub.
type IntakeResult struct {
	Lead    domain.Lead
	Owner   *domain.Worker
	Deal    *domain.Deal
	Company *scoring.CompanyResult
}

// IntakeLead scores and stores a new lead. The company probe runs before the
// transaction opens so no lock is held across network I/O. When AutoAssign is
// set and the pool is empty the lead is stored unassigned.
func (s *Service) IntakeLead(ctx context.Context, req IntakeRequest) (IntakeResult, error) {
	name := sanitize.Text(req.Name)
	if name == "" {
		return IntakeResult{}, apperr.Validation("lead name is required")
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.LeadStatusNew
	}
	if !domain.IsKnownLeadStatus(status) {
		return IntakeResult{}, apperr.Validation(fmt.Sprintf("unknown lead status %q", req.Status))
	}

	leadScore := s.scorer.ScoreLead("", status, 0)

	var company *scoring.CompanyResult
	domainName := scoring.NormalizeDomain(firstNonEmpty(req.Domain, req.Email))
	if req.CreateDeal && domainName != "" {
		c := s.scorer.ScoreCompanyInputs(ctx, scoring.CompanyInputs{
			Domain:       domainName,
			IsCustomer:   req.IsCustomer,
			Technologies: req.Technologies,
		})
		company = &c
	}

	var (
		result   IntakeResult
		assigned *assignment.Assignment
		err      error
	)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, assigned, err = s.intakeOnce(ctx, req, name, status, domainName, leadScore, company)
		if err == nil || !errors.Is(err, domain.ErrSequenceConflict) {
			break
		}
		metrics.RecordSequenceConflict()
		s.log.WithContext(ctx).Warn("sequence conflict during intake, retrying",
			"attempt", attempt)
	}
	if err != nil {
		if apperr.GetKind(err) != apperr.KindUnknown {
			return IntakeResult{}, err
		}
		s.log.DatabaseError("intake_lead", err)
		return IntakeResult{}, apperr.Wrap(apperr.KindInternal, "lead intake failed", err).WithOp("IntakeLead")
	}
	result.Company = company

	if assigned != nil {
		s.assigner.Announce(ctx, *assigned)
	}
	if s.bus != nil {
		evt := events.LeadIntakeCompleted{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    result.Lead.ID,
			OwnerID:   result.Lead.OwnerID,
			Score:     result.Lead.Score,
			Grade:     string(result.Lead.Grade),
			IsHot:     result.Lead.IsHot,
			Source:    result.Lead.Source,
		}
		if result.Deal != nil {
			evt.DealID = &result.Deal.ID
			evt.DealTitle = result.Deal.Title
		}
		s.bus.Publish(ctx, evt)
	}
	return result, nil
}

func (s *Service) intakeOnce(
	ctx context.Context,
	req IntakeRequest,
	name, status, domainName string,
	leadScore scoring.Result,
	company *scoring.CompanyResult,
) (IntakeResult, *assignment.Assignment, error) {
	var result IntakeResult
	var assigned *assignment.Assignment

	err := s.tx.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ownerID *uuid.UUID
		if req.AutoAssign {
			a, err := s.assigner.AssignNextTx(ctx, tx)
			switch {
			case errors.Is(err, domain.ErrNoWorkersAvailable):
				s.log.WithContext(ctx).Info("no workers available, lead stays unassigned")
			case err != nil:
				return fmt.Errorf("assign owner: %w", err)
			default:
				assigned = &a
				worker := a.Worker
				result.Owner = &worker
				ownerID = &worker.ID
			}
		}

		lead, err := tx.InsertLead(ctx, repository.InsertLeadParams{
			Name:    name,
			Company: sanitize.Text(req.Company),
			Email:   strings.TrimSpace(req.Email),
			Phone:   phone.NormalizeE164(req.Phone),
			Domain:  domainName,
			Source:  sanitize.Text(req.Source),
			Status:  status,
			Score:   leadScore.Score,
			Grade:   leadScore.Grade,
			IsHot:   leadScore.IsHot,
			OwnerID: ownerID,
		})
		if err != nil {
			return fmt.Errorf("create lead: %w", err)
		}
		result.Lead = lead

		if !req.CreateDeal {
			return nil
		}

		base := sequencing.DeriveBaseKey(sequencing.StrategyTitle, "", firstNonEmpty(lead.Company, lead.Email, lead.Name))
		id, err := s.sequencer.Next(ctx, tx, base)
		if err != nil {
			return fmt.Errorf("mint identifier: %w", err)
		}

		dealScore := leadScore
		if company != nil {
			dealScore = s.scorer.ScoreCompanyToDeal(company.Score)
		}
		deal, err := tx.InsertDeal(ctx, repository.InsertDealParams{
			Title:          id.Title,
			BaseKey:        id.BaseKey,
			SequenceNumber: id.Sequence,
			Stage:          domain.InitialPipelineStage,
			Score:          dealScore.Score,
			Grade:          dealScore.Grade,
			IsHot:          dealScore.IsHot,
			OwnerID:        ownerID,
		})
		if err != nil {
			return fmt.Errorf("create deal: %w", err)
		}
		result.Deal = &deal
		return nil
	})
	if err != nil {
		return IntakeResult{}, nil, err
	}
	return result, assigned, nil
}
