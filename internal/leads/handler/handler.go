package handler

import (
	"context"
	"net/http"

	"salesdesk_backend/internal/leads/conversion"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/scoring"
	"salesdesk_backend/internal/leads/sequencing"
	"salesdesk_backend/internal/leads/transport"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Assigner hands out the next worker.
type Assigner interface {
	AssignNext(ctx context.Context) (domain.Worker, error)
}

// Scorer is the scoring engine surface exposed over HTTP.
type Scorer interface {
	ScoreLead(oldStatus, newStatus string, currentScore int) scoring.Result
	ScoreCompanyInputs(ctx context.Context, in scoring.CompanyInputs) scoring.CompanyResult
	ScoreCompanyToDeal(companyScore int) scoring.Result
	ScoreCampaign(in scoring.CampaignInputs) scoring.CampaignResult
}

// Sequencer previews and reconciles identifiers.
type Sequencer interface {
	NextIdentifier(ctx context.Context, baseKey string, strategy sequencing.Strategy) (sequencing.Identifier, error)
	ReconcileIdentifiers(ctx context.Context, strategy sequencing.Strategy, dryRun bool) (sequencing.Report, error)
}

// Converter runs intake and conversion.
type Converter interface {
	ConvertLead(ctx context.Context, leadID, actingUserID uuid.UUID) (conversion.Result, error)
	IntakeLead(ctx context.Context, req conversion.IntakeRequest) (conversion.IntakeResult, error)
}

type Handler struct {
	assigner  Assigner
	scorer    Scorer
	sequencer Sequencer
	converter Converter
	strategy  sequencing.Strategy
	val       *validator.Validator
}

func New(assigner Assigner, scorer Scorer, sequencer Sequencer, converter Converter, defaultStrategy sequencing.Strategy, val *validator.Validator) *Handler {
	return &Handler{
		assigner:  assigner,
		scorer:    scorer,
		sequencer: sequencer,
		converter: converter,
		strategy:  defaultStrategy,
		val:       val,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assignments/next", h.AssignNext)
	rg.POST("/scores/lead", h.ScoreLead)
	rg.POST("/scores/company", h.ScoreCompany)
	rg.POST("/scores/company-deal", h.ScoreCompanyDeal)
	rg.POST("/scores/campaign", h.ScoreCampaign)
	rg.GET("/identifiers/next", h.NextIdentifier)
	rg.POST("/leads", h.IntakeLead)
	rg.POST("/leads/:id/convert", h.ConvertLead)
}

// RegisterAdminRoutes mounts operations that rewrite shared state.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/identifiers/reconcile", h.ReconcileIdentifiers)
}

func (h *Handler) AssignNext(c *gin.Context) {
	worker, err := h.assigner.AssignNext(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToWorkerResponse(worker))
}

func (h *Handler) ScoreLead(c *gin.Context) {
	var req transport.ScoreLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	httpkit.OK(c, h.scorer.ScoreLead(req.OldStatus, req.NewStatus, req.CurrentScore))
}

func (h *Handler) ScoreCompany(c *gin.Context) {
	var req transport.ScoreCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result := h.scorer.ScoreCompanyInputs(c.Request.Context(), scoring.CompanyInputs{
		Domain:       req.Domain,
		IsCustomer:   req.IsCustomer,
		Technologies: req.Technologies,
	})
	httpkit.OK(c, result)
}

func (h *Handler) ScoreCompanyDeal(c *gin.Context) {
	var req transport.ScoreCompanyDealRequest
	if !h.bindJSON(c, &req) {
		return
	}
	httpkit.OK(c, h.scorer.ScoreCompanyToDeal(req.CompanyScore))
}

func (h *Handler) ScoreCampaign(c *gin.Context) {
	var req transport.ScoreCampaignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	httpkit.OK(c, h.scorer.ScoreCampaign(req.ToInputs()))
}

func (h *Handler) NextIdentifier(c *gin.Context) {
	var query transport.NextIdentifierQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	id, err := h.sequencer.NextIdentifier(c.Request.Context(), query.BaseKey, h.strategyOr(query.Strategy))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, id)
}

func (h *Handler) ReconcileIdentifiers(c *gin.Context) {
	var req transport.ReconcileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.sequencer.ReconcileIdentifiers(c.Request.Context(), h.strategyOr(req.Strategy), req.DryRun)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) IntakeLead(c *gin.Context) {
	var req transport.IntakeLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.converter.IntakeLead(c.Request.Context(), req.ToIntake())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToIntakeResponse(result))
}

func (h *Handler) ConvertLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid lead id"))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.converter.ConvertLead(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToConversionResponse(result))
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(dst); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return false
	}
	return true
}

func (h *Handler) strategyOr(raw string) sequencing.Strategy {
	if raw == "" {
		return h.strategy
	}
	strategy, err := sequencing.ParseStrategy(raw)
	if err != nil {
		return h.strategy
	}
	return strategy
}
