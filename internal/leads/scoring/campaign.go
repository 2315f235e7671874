package scoring

import (
	"strings"

	"salesdesk_backend/internal/leads/domain"
)

// Campaign signal weights not driven by keyword tables.
const (
	budgetOnTargetPoints = 15
	budgetNearPoints     = 8
	budgetOffPoints      = 3
	utmCompletePoints    = 10
	utmPartialPoints     = 5
	compliancePoints     = 10
	linkedDomainPoints   = 5
	badLinkedDomain      = -10

	campaignAThreshold = 90
	campaignBThreshold = 70
	campaignCThreshold = 50
)

// CampaignInputs describes a marketing campaign.
type CampaignInputs struct {
	Channel            string  `json:"channel"`
	Objective          string  `json:"objective"`
	Audience           string  `json:"audience"`
	Budget             float64 `json:"budget"`
	ExpectedSpend      float64 `json:"expectedSpend"`
	Priority           string  `json:"priority"`
	Stage              string  `json:"stage"`
	UTMSource          string  `json:"utmSource"`
	UTMMedium          string  `json:"utmMedium"`
	UTMCampaign        string  `json:"utmCampaign"`
	ComplianceComplete bool    `json:"complianceComplete"`
	LinkedDomain       string  `json:"linkedDomain"`
}

// CampaignResult is a campaign score with its band and advice.
type CampaignResult struct {
	Total          int            `json:"total"`
	Grade          domain.Grade   `json:"grade"`
	Strength       string         `json:"strength"`
	IsHot          bool           `json:"isHot"`
	Recommendation string         `json:"recommendation"`
	Factors        map[string]int `json:"factors"`
}

var campaignBands = map[domain.Grade]struct {
	strength       string
	recommendation string
}{
	domain.GradeA: {"Excellent", "Scale budget and replicate this setup in similar segments."},
	domain.GradeB: {"Strong", "Keep running; tighten targeting or tracking to reach the top band."},
	domain.GradeC: {"Moderate", "Review channel and audience fit before adding budget."},
	domain.GradeD: {"Weak", "Pause and rework objective, audience and tracking before relaunch."},
}

// ScoreCampaign scores a campaign against the campaign weight table.
func (e *Engine) ScoreCampaign(in CampaignInputs) CampaignResult {
	t := e.tables.Campaign
	factors := make(map[string]int)

	total := 0
	total += addFactor(factors, "channel", classify(in.Channel, t.Channels))
	total += addFactor(factors, "objective", classify(in.Objective, t.Objectives))
	total += addFactor(factors, "audience", classify(in.Audience, t.Audiences))
	total += addFactor(factors, "budget", budgetEfficiency(in.Budget, in.ExpectedSpend))
	total += addFactor(factors, "priority", t.Priorities[strings.ToLower(strings.TrimSpace(in.Priority))])
	total += addFactor(factors, "stage", t.Stages[strings.ToLower(strings.TrimSpace(in.Stage))])
	total += addFactor(factors, "tracking", utmTracking(in))
	if in.ComplianceComplete {
		total += addFactor(factors, "compliance", compliancePoints)
	}
	if strings.TrimSpace(in.LinkedDomain) != "" {
		host := NormalizeDomain(in.LinkedDomain)
		if IsValidDomain(host) && !e.tables.IsDisposable(host) {
			total += addFactor(factors, "linkedDomain", linkedDomainPoints)
		} else {
			total += addFactor(factors, "linkedDomain", badLinkedDomain)
		}
	}

	score := domain.ClampScore(total)
	grade := campaignGrade(score)
	band := campaignBands[grade]
	return CampaignResult{
		Total:          score,
		Grade:          grade,
		Strength:       band.strength,
		IsHot:          domain.IsHot(score),
		Recommendation: band.recommendation,
		Factors:        factors,
	}
}

func campaignGrade(score int) domain.Grade {
	switch {
	case score >= campaignAThreshold:
		return domain.GradeA
	case score >= campaignBThreshold:
		return domain.GradeB
	case score >= campaignCThreshold:
		return domain.GradeC
	default:
		return domain.GradeD
	}
}

// budgetEfficiency rewards expected spend close to the allotted budget.
func budgetEfficiency(budget, expected float64) int {
	if budget <= 0 || expected <= 0 {
		return 0
	}
	ratio := expected / budget
	switch {
	case ratio >= 0.8 && ratio <= 1.1:
		return budgetOnTargetPoints
	case ratio >= 0.5 && ratio <= 1.3:
		return budgetNearPoints
	default:
		return budgetOffPoints
	}
}

func utmTracking(in CampaignInputs) int {
	set := 0
	for _, v := range []string{in.UTMSource, in.UTMMedium, in.UTMCampaign} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	switch set {
	case 3:
		return utmCompletePoints
	case 0:
		return 0
	default:
		return utmPartialPoints
	}
}
