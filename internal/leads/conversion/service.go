// Package conversion turns a lead into an account, contact and sequenced deal
// in one transaction, and creates scored leads through intake.
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
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/metrics"
	"salesdesk_backend/platform/phone"

	"github.com/google/uuid"
)

// DefaultMaxAttempts bounds retries after a sequence conflict.
const DefaultMaxAttempts = 5

// Sequencer mints identifiers inside a caller's transaction.
type Sequencer interface {
	Next(ctx context.Context, store repository.SequenceStore, baseKey string) (sequencing.Identifier, error)
}

// Assigner picks a worker inside a caller's transaction.
type Assigner interface {
	AssignNextTx(ctx context.Context, store repository.WorkerStore) (assignment.Assignment, error)
	Announce(ctx context.Context, a assignment.Assignment)
}

// Scorer is the part of the scoring engine intake needs.
type Scorer interface {
	ScoreLead(oldStatus, newStatus string, currentScore int) scoring.Result
	ScoreCompanyInputs(ctx context.Context, in scoring.CompanyInputs) scoring.CompanyResult
	ScoreCompanyToDeal(companyScore int) scoring.Result
}

// Result is everything a conversion produced.
type Result struct {
	Account    domain.Account
	Contact    domain.Contact
	Deal       domain.Deal
	MovedTasks int
	Attempts   int
}

type Service struct {
	tx          repository.Transactor
	sequencer   Sequencer
	assigner    Assigner
	scorer      Scorer
	bus         events.Bus
	log         *logger.Logger
	maxAttempts int
}

// New creates the orchestrator. maxAttempts below 1 uses DefaultMaxAttempts; bus may be nil.
func New(tx repository.Transactor, sequencer Sequencer, assigner Assigner, scorer Scorer, bus events.Bus, log *logger.Logger, maxAttempts int) *Service {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Service{
		tx:          tx,
		sequencer:   sequencer,
		assigner:    assigner,
		scorer:      scorer,
		bus:         bus,
		log:         log,
		maxAttempts: maxAttempts,
	}
}

// ConvertLead converts leadID. All writes commit together or not at all; a
// sequence conflict is retried with a fresh number.
func (s *Service) ConvertLead(ctx context.Context, leadID, actingUserID uuid.UUID) (Result, error) {
	var (
		res     Result
		ownerID *uuid.UUID
		err     error
	)

	attempt := 0
	for attempt < s.maxAttempts {
		attempt++
		res, ownerID, err = s.convertOnce(ctx, leadID, actingUserID)
		if err == nil || !errors.Is(err, domain.ErrSequenceConflict) {
			break
		}
		metrics.RecordSequenceConflict()
		s.log.WithContext(ctx).Warn("sequence conflict during conversion, retrying",
			"lead_id", leadID.String(), "attempt", attempt)
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.RecordConversion("not_found")
			return Result{}, apperr.Wrap(apperr.KindNotFound, "lead not found", err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordConversion("canceled")
			return Result{}, err
		}
		metrics.RecordConversion("failed")
		s.log.DatabaseError("convert_lead", err)
		return Result{}, apperr.Wrap(apperr.KindInternal, "lead conversion failed",
			fmt.Errorf("%w: %w", domain.ErrConversionFailed, err)).WithOp("ConvertLead")
	}

	res.Attempts = attempt
	metrics.RecordConversion("converted")
	s.log.WithContext(ctx).Conversion(leadID.String(), res.Deal.ID.String(), res.Deal.Title, attempt)

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadConverted{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     leadID,
			AccountID:  res.Account.ID,
			ContactID:  res.Contact.ID,
			DealID:     res.Deal.ID,
			DealTitle:  res.Deal.Title,
			OwnerID:    ownerID,
			MovedTasks: res.MovedTasks,
			ActorID:    actingUserID,
		})
	}
	return res, nil
}

func (s *Service) convertOnce(ctx context.Context, leadID, actingUserID uuid.UUID) (Result, *uuid.UUID, error) {
	var res Result
	var ownerID *uuid.UUID

	err := s.tx.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		lead, err := tx.GetLeadForUpdate(ctx, leadID)
		if err != nil {
			return err
		}
		ownerID = lead.OwnerID

		account, err := tx.UpsertAccountByName(ctx, firstNonEmpty(lead.Company, lead.Name), lead.Domain)
		if err != nil {
			return fmt.Errorf("resolve account: %w", err)
		}

		contactOwner := lead.OwnerID
		if contactOwner == nil && actingUserID != uuid.Nil {
			actor := actingUserID
			contactOwner = &actor
		}
		contact, err := tx.InsertContact(ctx, repository.InsertContactParams{
			AccountID: account.ID,
			Name:      lead.Name,
			Email:     lead.Email,
			Phone:     phone.NormalizeE164(lead.Phone),
			Company:   lead.Company,
			OwnerID:   contactOwner,
		})
		if err != nil {
			return fmt.Errorf("create contact: %w", err)
		}

		base := sequencing.DeriveBaseKey(sequencing.StrategyTitle, "", firstNonEmpty(lead.Company, lead.Email, lead.Name))
		id, err := s.sequencer.Next(ctx, tx, base)
		if err != nil {
			return fmt.Errorf("mint identifier: %w", err)
		}

		deal, err := tx.InsertDeal(ctx, repository.InsertDealParams{
			Title:          id.Title,
			BaseKey:        id.BaseKey,
			SequenceNumber: id.Sequence,
			Stage:          domain.InitialPipelineStage,
			Score:          lead.Score,
			Grade:          domain.GradeFor(lead.Score),
			IsHot:          domain.IsHot(lead.Score),
			OwnerID:        lead.OwnerID,
			ContactID:      &contact.ID,
			AccountID:      &account.ID,
		})
		if err != nil {
			return fmt.Errorf("create deal: %w", err)
		}
		deal.ContactEmail = contact.Email

		moved, err := tx.ReparentLeadTasks(ctx, lead.ID, deal.ID)
		if err != nil {
			return fmt.Errorf("re-parent tasks: %w", err)
		}

		if err := tx.DeleteLead(ctx, lead.ID); err != nil {
			return fmt.Errorf("delete lead: %w", err)
		}

		res = Result{Account: account, Contact: contact, Deal: deal, MovedTasks: moved}
		return nil
	})
	return res, ownerID, err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
