package lookup

import (
	"context"

	"github.com/seerlink/seerlink/internal/matching"
	"github.com/seerlink/seerlink/internal/media"
)

const debugResultsPerTerm = 3

// DebugResult is one search hit as shown in a debug report.
type DebugResult struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Year      int        `json:"year,omitempty"`
	MediaType media.Type `json:"mediaType"`
	Score     float64    `json:"score"`
}

// DebugTerm is the outcome of searching one term.
type DebugTerm struct {
	Term    string        `json:"term"`
	Count   int           `json:"count"`
	Results []DebugResult `json:"results"`
	Error   string        `json:"error,omitempty"`
}

// DebugReport shows what every generated term returns and which candidate
// the resolver would pick.
type DebugReport struct {
	Title     string        `json:"title"`
	Year      int           `json:"year,omitempty"`
	MediaType media.Type    `json:"mediaType,omitempty"`
	Terms     []DebugTerm   `json:"terms"`
	Match     *DebugResult  `json:"match,omitempty"`
	Tier      matching.Tier `json:"tier,omitempty"`
	MatchTerm string        `json:"matchTerm,omitempty"`
}

// DebugSearch searches every generated term without stopping at the first hit.
// Transport and configuration failures abort the report.
func (s *Service) DebugSearch(ctx context.Context, q media.Query) (*DebugReport, error) {
	if err := q.Validate(); err != nil {
		return nil, ErrInvalidQuery
	}

	report := &DebugReport{
		Title:     q.Title,
		Year:      q.Year,
		MediaType: q.MediaType,
	}

	for _, term := range s.terms.Generate(q.Title) {
		entry := DebugTerm{Term: term, Results: []DebugResult{}}

		var results []media.Candidate
		err := s.withRetry(ctx, "search", func(ctx context.Context) error {
			var err error
			results, err = s.catalog.Search(ctx, term, q.MediaType)
			return err
		})
		if err != nil {
			if abortsSearch(ctx, err) {
				return nil, err
			}
			entry.Error = err.Error()
			report.Terms = append(report.Terms, entry)
			continue
		}

		entry.Count = len(results)
		for i, c := range results {
			if i == debugResultsPerTerm {
				break
			}
			entry.Results = append(entry.Results, debugResult(c, q.Title))
		}
		report.Terms = append(report.Terms, entry)

		if report.Match == nil {
			if m, ok := s.resolver.Resolve(results, q.WithTitle(term)); ok {
				r := debugResult(m.Candidate, q.Title)
				report.Match = &r
				report.Tier = m.Tier
				report.MatchTerm = term
			}
		}
	}

	return report, nil
}

func debugResult(c media.Candidate, title string) DebugResult {
	return DebugResult{
		ID:        c.ID,
		Title:     c.DisplayTitle(),
		Year:      c.Year(),
		MediaType: c.MediaType,
		Score:     matching.TitleScore(title, c.DisplayTitle()),
	}
}
