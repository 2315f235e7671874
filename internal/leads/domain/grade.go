package domain

// Grade is the categorical bucket derived from a 0..100 score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

const (
	MinScore = 0
	MaxScore = 100

	gradeAThreshold = 70
	gradeBThreshold = 40

	// HotThreshold is compared strictly: a score of exactly 70 is grade A but not hot.
	HotThreshold = 70
)

// ClampScore bounds a raw additive score to [MinScore, MaxScore].
func ClampScore(raw int) int {
	switch {
	case raw < MinScore:
		return MinScore
	case raw > MaxScore:
		return MaxScore
	default:
		return raw
	}
}

// GradeFor maps a work-item score to A (>=70), B (>=40) or C.
func GradeFor(score int) Grade {
	switch {
	case score >= gradeAThreshold:
		return GradeA
	case score >= gradeBThreshold:
		return GradeB
	default:
		return GradeC
	}
}

// IsHot reports whether score is strictly above HotThreshold.
func IsHot(score int) bool {
	return score > HotThreshold
}
