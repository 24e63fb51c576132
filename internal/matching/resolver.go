package matching

import (
	"regexp"
	"strings"

	"github.com/seerlink/seerlink/internal/media"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Tier identifies which rule selected a match.
type Tier string

const (
	TierNone     Tier = ""
	TierExact    Tier = "exact"
	TierFuzzy    Tier = "fuzzy"
	TierYearOnly Tier = "year"
	TierFallback Tier = "fallback"
)

// Match is a candidate chosen for a query together with the rule that chose it.
type Match struct {
	Candidate media.Candidate
	Tier      Tier
}

// Resolver picks the best catalog candidate for a page query.
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver with the given tolerances and equivalence table.
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts.withDefaults()}
}

// Resolve returns the best candidate for query. The tiers are tried in order:
// exact title, fuzzy title, release year, then the first candidate.
// It reports false only when there are no candidates.
func (r *Resolver) Resolve(candidates []media.Candidate, query media.Query) (Match, bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}

	pool := filterByType(candidates, query.MediaType)
	search := strings.ToLower(query.Title)

	for _, c := range pool {
		if hasTitle(c, func(t string) bool { return t == search }) &&
			r.yearAccepted(c, query, r.opts.ExactYearTolerance) {
			return Match{Candidate: c, Tier: TierExact}, true
		}
	}

	for _, c := range pool {
		fuzzy := hasTitle(c, func(t string) bool {
			return strings.Contains(t, search) || strings.Contains(search, t) || r.Similar(t, search)
		})
		if fuzzy && r.yearAccepted(c, query, r.opts.FuzzyYearTolerance) {
			return Match{Candidate: c, Tier: TierFuzzy}, true
		}
	}

	if query.HasYear() {
		for _, c := range pool {
			if withinYears(c.Year(), query.Year, r.opts.YearOnlyTolerance) {
				return Match{Candidate: c, Tier: TierYearOnly}, true
			}
		}
	}

	return Match{Candidate: pool[0], Tier: TierFallback}, true
}

// Similar reports whether two titles are the same once punctuation is dropped,
// or differ only by a spelled-out versus stylized number.
func (r *Resolver) Similar(a, b string) bool {
	na := normalizeCompact(a)
	nb := normalizeCompact(b)
	if na == nb {
		return true
	}

	for _, eq := range r.opts.Equivalents {
		if (strings.Contains(na, eq.Word) && strings.Contains(nb, eq.Digit)) ||
			(strings.Contains(na, eq.Digit) && strings.Contains(nb, eq.Word)) {
			return true
		}
	}
	return false
}

func (r *Resolver) yearAccepted(c media.Candidate, query media.Query, tolerance int) bool {
	if !query.HasYear() {
		return true
	}
	return withinYears(c.Year(), query.Year, tolerance)
}

// filterByType keeps candidates of the wanted type, or all of them if none match.
func filterByType(candidates []media.Candidate, want media.Type) []media.Candidate {
	filtered := make([]media.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.MediaType == want {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

func hasTitle(c media.Candidate, pred func(string) bool) bool {
	for _, t := range c.Titles() {
		if pred(strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// withinYears is false when the candidate year is unknown.
func withinYears(year, want, tolerance int) bool {
	if year == 0 {
		return false
	}
	diff := year - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// normalizeCompact lowercases s and drops everything but letters and digits.
func normalizeCompact(s string) string {
	return strings.ToLower(nonAlphanumericRegex.ReplaceAllString(s, ""))
}
