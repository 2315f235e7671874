package scoring

import (
	"context"
	"strings"

	"salesdesk_backend/platform/logger"
)

// Company signal weights.
const (
	validDomainPoints   = 10
	invalidDomainPoints = -20
	dnsPoints           = 5
	httpsPoints         = 5
	httpOnlyPoints      = 2
	customerPoints      = 25
	regionPoints        = 15
	technologyPoints    = 10
)

// CompanyInputs are the signals available for a company.
type CompanyInputs struct {
	Domain       string   `json:"domain"`
	IsCustomer   bool     `json:"isCustomer"`
	Technologies []string `json:"technologies,omitempty"`
}

// CompanyResult is a company score with the per-signal breakdown.
type CompanyResult struct {
	Score        int            `json:"score"`
	Domain       string         `json:"domain"`
	Reachability Reachability   `json:"reachability"`
	Region       string         `json:"region,omitempty"`
	Factors      map[string]int `json:"factors"`
}

// Engine scores companies against the lookup tables and a live prober.
type Engine struct {
	tables Tables
	prober Prober
	log    *logger.Logger
}

// NewEngine creates a scoring engine. A nil prober treats every domain as unreachable.
func NewEngine(tables Tables, prober Prober, log *logger.Logger) *Engine {
	return &Engine{tables: tables, prober: prober, log: log}
}

// Tables returns the lookup data in use.
func (e *Engine) Tables() Tables {
	return e.tables
}

// ScoreLead is ScoreLead bound to the engine for callers holding one.
func (e *Engine) ScoreLead(oldStatus, newStatus string, currentScore int) Result {
	return ScoreLead(oldStatus, newStatus, currentScore)
}

// ScoreCompany scores a domain and customer flag. It blocks for at most the
// probe timeout and never fails.
func (e *Engine) ScoreCompany(ctx context.Context, domainName string, isCustomer bool) int {
	return e.ScoreCompanyInputs(ctx, CompanyInputs{Domain: domainName, IsCustomer: isCustomer}).Score
}

// ScoreCompanyInputs scores all company signals and reports each one.
func (e *Engine) ScoreCompanyInputs(ctx context.Context, in CompanyInputs) CompanyResult {
	factors := make(map[string]int)
	host := NormalizeDomain(in.Domain)
	result := CompanyResult{Domain: host, Factors: factors}

	total := 0
	if IsValidDomain(host) && !e.tables.IsDisposable(host) {
		total += addFactor(factors, "domain", validDomainPoints)

		if e.prober != nil {
			result.Reachability = e.prober.Probe(ctx, host)
		}
		if result.Reachability.Resolves {
			total += addFactor(factors, "dns", dnsPoints)
		}
		switch {
		case result.Reachability.HTTPS:
			total += addFactor(factors, "web", httpsPoints)
		case result.Reachability.HTTP:
			total += addFactor(factors, "web", httpOnlyPoints)
		}

		result.Region = e.tables.RegionFor(host)
		if result.Region != "" && containsFold(e.tables.ICPRegions, result.Region) {
			total += addFactor(factors, "region", regionPoints)
		}
	} else {
		total += addFactor(factors, "domain", invalidDomainPoints)
	}

	if in.IsCustomer {
		total += addFactor(factors, "customer", customerPoints)
	}
	if e.matchesTechnology(in.Technologies) {
		total += addFactor(factors, "technology", technologyPoints)
	}

	result.Score = NewResult(total).Score
	return result
}

// ScoreCompanyToDeal converts a company score into a deal score.
func (e *Engine) ScoreCompanyToDeal(companyScore int) Result {
	return ScoreCompanyToDeal(companyScore)
}

// ScoreCompanyToDeal clamps a company score and grades it as a deal.
func ScoreCompanyToDeal(companyScore int) Result {
	return NewResult(companyScore)
}

func (e *Engine) matchesTechnology(techs []string) bool {
	for _, tech := range techs {
		if containsFold(e.tables.ICPTechnologies, strings.TrimSpace(tech)) {
			return true
		}
	}
	return false
}

func addFactor(factors map[string]int, key string, value int) int {
	if value == 0 {
		return 0
	}
	factors[key] = value
	return value
}
