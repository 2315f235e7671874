// Package scoring turns lead status changes, company signals and campaign
// attributes into 0..100 scores and categorical grades.
//
// Scores are additive: each signal contributes a fixed number of points and
// the total is clamped. Missing or malformed inputs land in the lowest
// branch of the signal they feed; scoring never returns an error.
package scoring

import (
	"strings"

	"salesdesk_backend/internal/leads/domain"
)

const (
	leadBaseScore      = 10
	contactedBonus     = 20
	qualifiedBonus     = 30
	unknownStatusBonus = 0
)

// Result is a clamped score with its derived grade and hot flag.
type Result struct {
	Score int          `json:"score"`
	Grade domain.Grade `json:"grade"`
	IsHot bool         `json:"isHot"`
}

// NewResult clamps raw and derives the grade and hot flag.
func NewResult(raw int) Result {
	score := domain.ClampScore(raw)
	return Result{Score: score, Grade: domain.GradeFor(score), IsHot: domain.IsHot(score)}
}

// ScoreLead rescores a lead on a status change. The current score is floored
// at the base score before the bonus for the new status is added, and the
// bonus only applies when the status actually changes.
func ScoreLead(oldStatus, newStatus string, currentScore int) Result {
	score := max(currentScore, leadBaseScore)

	from := strings.TrimSpace(oldStatus)
	to := strings.TrimSpace(newStatus)
	if !strings.EqualFold(from, to) {
		score += statusBonus(to)
	}
	return NewResult(score)
}

func statusBonus(status string) int {
	switch {
	case strings.EqualFold(status, domain.LeadStatusContacted):
		return contactedBonus
	case strings.EqualFold(status, domain.LeadStatusQualified):
		return qualifiedBonus
	default:
		return unknownStatusBonus
	}
}
