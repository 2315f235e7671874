package scoring

import (
	"testing"

	"salesdesk_backend/internal/leads/domain"
)

func TestScoreLeadTransitions(t *testing.T) {
	cases := []struct {
		name      string
		from, to  string
		current   int
		wantScore int
		wantGrade domain.Grade
	}{
		{"new lead floors at base", "", "New", 0, 10, domain.GradeC},
		{"contacted adds twenty", "New", "Contacted", 10, 30, domain.GradeC},
		{"qualified adds thirty", "Contacted", "Qualified", 30, 60, domain.GradeB},
		{"no transition keeps score", "Qualified", "Qualified", 60, 60, domain.GradeB},
		{"low score is floored before bonus", "New", "Contacted", 3, 30, domain.GradeC},
		{"case insensitive", "new", "QUALIFIED", 45, 75, domain.GradeA},
		{"clamped at max", "Contacted", "Qualified", 95, 100, domain.GradeA},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreLead(tc.from, tc.to, tc.current)
			if got.Score != tc.wantScore || got.Grade != tc.wantGrade {
				t.Fatalf("ScoreLead(%q, %q, %d) = %+v, want score %d grade %s", tc.from, tc.to, tc.current, got, tc.wantScore, tc.wantGrade)
			}
		})
	}
}

func TestHotIsStrictlyAboveSeventy(t *testing.T) {
	at := NewResult(70)
	if at.Grade != domain.GradeA || at.IsHot {
		t.Fatalf("70 should be grade A and not hot, got %+v", at)
	}
	above := NewResult(71)
	if !above.IsHot {
		t.Fatalf("71 should be hot")
	}
}

func TestScoreCompanyToDealClamps(t *testing.T) {
	if got := ScoreCompanyToDeal(-15); got.Score != 0 || got.Grade != domain.GradeC {
		t.Fatalf("unexpected %+v", got)
	}
	if got := ScoreCompanyToDeal(140); got.Score != 100 || !got.IsHot {
		t.Fatalf("unexpected %+v", got)
	}
	if got := ScoreCompanyToDeal(40); got.Grade != domain.GradeB {
		t.Fatalf("40 should be grade B, got %+v", got)
	}
}
