// Package leads provides the pipeline core bounded context module.
// This file defines the module that encapsulates all pipeline setup and route registration.
package leads

import (
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/leads/accounts"
	"salesdesk_backend/internal/leads/assignment"
	"salesdesk_backend/internal/leads/conversion"
	"salesdesk_backend/internal/leads/handler"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/scoring"
	"salesdesk_backend/internal/leads/sequencing"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/kvstore"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"
)

const roleAdmin = "admin"

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	engine     *scoring.Engine
	sequencing *sequencing.Service
	assignment *assignment.Service
	conversion *conversion.Service
	accounts   *accounts.Service
}

// ModuleConfig is the configuration the pipeline module reads.
type ModuleConfig interface {
	config.ScoringConfig
	config.AssignmentConfig
	config.ConversionConfig
	GetReconcileStrategy() string
}

// NewModule creates and initializes the pipeline module with all its dependencies.
// cache backs the reachability probe and may be nil.
func NewModule(tx repository.Transactor, eventBus events.Bus, val *validator.Validator, cfg ModuleConfig, cache kvstore.Store, log *logger.Logger) (*Module, error) {
	tables := scoring.DefaultTables()
	if path := cfg.GetScoringTablesPath(); path != "" {
		loaded, err := scoring.LoadTables(path)
		if err != nil {
			return nil, err
		}
		tables = loaded
	}

	proberOpts := []scoring.ProberOption{}
	if cache != nil {
		proberOpts = append(proberOpts, scoring.WithCache(cache, cfg.GetProbeCacheTTL()))
	}
	prober := scoring.NewHTTPProber(cfg.GetProbeTimeout(), log, proberOpts...)
	engine := scoring.NewEngine(tables, prober, log)

	assignOpts, err := assignment.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	strategy, err := sequencing.ParseStrategy(cfg.GetReconcileStrategy())
	if err != nil {
		return nil, err
	}

	// Create focused services (vertical slices)
	seqSvc := sequencing.New(tx, eventBus, log)
	assignSvc := assignment.New(tx, assignOpts, eventBus, log)
	convSvc := conversion.New(tx, seqSvc, assignSvc, engine, eventBus, log, cfg.GetSequenceConflictRetries())
	accountsSvc := accounts.New(tx, engine, eventBus, log)

	h := handler.New(assignSvc, engine, seqSvc, convSvc, strategy, val)

	return &Module{
		handler:    h,
		engine:     engine,
		sequencing: seqSvc,
		assignment: assignSvc,
		conversion: convSvc,
		accounts:   accountsSvc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Engine returns the scoring engine.
func (m *Module) Engine() *scoring.Engine {
	return m.engine
}

// SequencingService returns the identifier sequencer for external use.
func (m *Module) SequencingService() *sequencing.Service {
	return m.sequencing
}

// AssignmentService returns the worker assignment service for external use.
func (m *Module) AssignmentService() *assignment.Service {
	return m.assignment
}

// ConversionService returns the conversion orchestrator for external use.
func (m *Module) ConversionService() *conversion.Service {
	return m.conversion
}

// AccountsService returns the account rescoring service for external use.
func (m *Module) AccountsService() *accounts.Service {
	return m.accounts
}

// RegisterRoutes mounts pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/pipeline")
	m.handler.RegisterRoutes(group)

	adminGroup := ctx.Protected.Group("/pipeline", httpkit.RequireRole(roleAdmin))
	m.handler.RegisterAdminRoutes(adminGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
