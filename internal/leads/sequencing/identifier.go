// Package sequencing mints and reconciles `{base}-W{NNN}` deal identifiers.
//
// Grouping is a two-stage pure function: StripSuffix removes an existing
// work-id suffix, DeriveBaseKey picks the grouping identity for a strategy.
package sequencing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Strategy selects how the base key of a deal is derived.
type Strategy string

const (
	// StrategyEmail groups by the contact's normalized email, falling back to the stripped title.
	StrategyEmail Strategy = "email"
	// StrategyTitle always groups by the stripped title.
	StrategyTitle Strategy = "title"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case StrategyEmail:
		return StrategyEmail, nil
	case StrategyTitle, "":
		return StrategyTitle, nil
	default:
		return "", fmt.Errorf("unknown sequencing strategy %q", raw)
	}
}

const suffixLen = len("-W000")

var suffixPattern = regexp.MustCompile(`(?i)-W([0-9]{3})$`)

// StripSuffix removes a trailing -W### (case-insensitive) and surrounding whitespace.
func StripSuffix(title string) string {
	trimmed := strings.TrimSpace(title)
	return strings.TrimSpace(suffixPattern.ReplaceAllString(trimmed, ""))
}

// SuffixNumber returns the number encoded in a trailing -W### suffix.
func SuffixNumber(title string) (int, bool) {
	m := suffixPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DeriveBaseKey returns the grouping key for a work item.
func DeriveBaseKey(strategy Strategy, email, title string) string {
	if strategy == StrategyEmail {
		if normalized := NormalizeEmail(email); normalized != "" {
			return normalized
		}
	}
	return StripSuffix(title)
}

// NormalizeBase applies the same normalization DeriveBaseKey would to a raw base key.
func NormalizeBase(strategy Strategy, raw string) string {
	if strategy == StrategyEmail && strings.Contains(raw, "@") {
		return NormalizeEmail(raw)
	}
	return StripSuffix(raw)
}

// Format renders the display identifier for sequence n.
func Format(base string, n int) string {
	return fmt.Sprintf("%s-W%03d", base, n)
}

// MatchesBase reports whether title is the bare base or the base followed by a -W### suffix.
func MatchesBase(title, base string) bool {
	if title == base {
		return true
	}
	if len(title) != len(base)+suffixLen || !strings.HasPrefix(title, base) {
		return false
	}
	return suffixPattern.MatchString(title[len(base):])
}

// NextSequence returns (matches + 1) for base, advanced past any number already
// taken by an existing title so the result never collides.
func NextSequence(base string, existingTitles []string) int {
	return NextAvailable(base, existingTitles, nil)
}

// NextAvailable is NextSequence that also skips stored sequence numbers.
// Titles renamed outside the core, or past -W999, no longer encode their
// number, so the stored column is the authority for what is taken.
func NextAvailable(base string, existingTitles []string, stored []int) int {
	count := 0
	taken := make(map[int]struct{}, len(stored))
	for _, n := range stored {
		taken[n] = struct{}{}
	}
	for _, title := range existingTitles {
		if !MatchesBase(title, base) {
			continue
		}
		count++
		if n, ok := SuffixNumber(title); ok {
			taken[n] = struct{}{}
		}
	}

	next := count + 1
	for {
		if _, used := taken[next]; !used {
			return next
		}
		next++
	}
}
