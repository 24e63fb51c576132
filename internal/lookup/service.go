// Package lookup resolves page queries against the Jellyseerr catalog: it
// walks the generated search terms, picks a match, and turns the catalog's
// record into a canonical status or a new request.
package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/seerlink/seerlink/internal/diagnostics"
	"github.com/seerlink/seerlink/internal/history"
	"github.com/seerlink/seerlink/internal/matching"
	"github.com/seerlink/seerlink/internal/media"
	"github.com/seerlink/seerlink/internal/retry"
	"github.com/seerlink/seerlink/internal/seerr"
	"github.com/seerlink/seerlink/internal/status"
)

// TierCatalogID marks a match taken directly from a query's known catalog id.
const TierCatalogID matching.Tier = "catalog_id"

// Catalog is the subset of the Jellyseerr client used for lookups.
type Catalog interface {
	Search(ctx context.Context, query string, mediaType media.Type) ([]media.Candidate, error)
	GetDetails(ctx context.Context, tmdbID int, mediaType media.Type) (*status.Record, error)
	ListRequests(ctx context.Context) ([]status.Record, error)
	SubmitRequest(ctx context.Context, tmdbID int, mediaType media.Type, seasons *seerr.Seasons) (*seerr.Confirmation, error)
}

// History stores submitted requests.
type History interface {
	Create(ctx context.Context, input history.CreateInput) (*history.Entry, error)
}

// Config holds the matching and retry settings of a Service.
type Config struct {
	Matching matching.Options
	Retry    retry.Config
}

// DefaultConfig returns the default matching tables and retry policy.
func DefaultConfig() Config {
	return Config{
		Matching: matching.DefaultOptions(),
		Retry:    retry.DefaultConfig(),
	}
}

// Service performs status lookups and request submissions.
type Service struct {
	catalog    Catalog
	terms      *matching.TermGenerator
	resolver   *matching.Resolver
	retry      retry.Config
	navigation *Navigation
	history    History
	recorder   diagnostics.Recorder
	logger     zerolog.Logger
}

// NewService creates a lookup service backed by catalog.
func NewService(catalog Catalog, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		catalog:    catalog,
		terms:      matching.NewTermGenerator(cfg.Matching),
		resolver:   matching.NewResolver(cfg.Matching),
		retry:      cfg.Retry,
		navigation: &Navigation{},
		recorder:   diagnostics.Nop{},
		logger:     logger.With().Str("component", "lookup").Logger(),
	}
}

// SetHistory enables request history recording.
func (s *Service) SetHistory(h History) {
	s.history = h
}

// SetRecorder sets the diagnostics recorder. nil restores the no-op recorder.
func (s *Service) SetRecorder(r diagnostics.Recorder) {
	if r == nil {
		r = diagnostics.Nop{}
	}
	s.recorder = r
}

// Navigation returns the generation tracker used by ResolveCurrent.
func (s *Service) Navigation() *Navigation {
	return s.navigation
}

// Terms returns the search terms generated for title.
func (s *Service) Terms(title string) []string {
	return s.terms.Generate(title)
}

// FindMatch searches the catalog term by term, restricted to the query's media
// type when it has one, and resolves the first non-empty result set. Transport and configuration failures abort the
// search; a rejected single term is logged and skipped.
func (s *Service) FindMatch(ctx context.Context, q media.Query) (matching.Match, error) {
	return s.findMatch(ctx, q, nil)
}

func (s *Service) findMatch(ctx context.Context, q media.Query, trace *diagnostics.Builder) (matching.Match, error) {
	if q.TMDBID > 0 {
		trace.Add(diagnostics.StepMatch, "using known catalog id", map[string]any{"tmdbId": q.TMDBID})
		return matching.Match{
			Candidate: media.Candidate{ID: q.TMDBID, MediaType: q.MediaType, Title: q.Title},
			Tier:      TierCatalogID,
		}, nil
	}

	terms := s.terms.Generate(q.Title)
	trace.Add(diagnostics.StepTerms, "generated search terms", map[string]any{"terms": terms})

	for _, term := range terms {
		var results []media.Candidate
		err := s.withRetry(ctx, "search", func(ctx context.Context) error {
			var err error
			results, err = s.catalog.Search(ctx, term, q.MediaType)
			return err
		})
		if err != nil {
			if abortsSearch(ctx, err) {
				return matching.Match{}, err
			}
			s.logger.Warn().Err(err).Str("term", term).Msg("search term rejected, trying next")
			trace.Add(diagnostics.StepError, "search failed", map[string]any{"term": term, "error": err.Error()})
			continue
		}

		trace.Add(diagnostics.StepSearch, "searched", map[string]any{"term": term, "results": len(results)})
		if len(results) == 0 {
			continue
		}

		// Scored against the term that produced the results, so a variant
		// such as "Seven" can still hit the exact tier.
		m, ok := s.resolver.Resolve(results, q.WithTitle(term))
		if !ok {
			continue
		}

		s.logger.Debug().
			Str("title", q.Title).
			Str("term", term).
			Int("tmdbId", m.Candidate.ID).
			Str("tier", string(m.Tier)).
			Msg("resolved catalog match")
		trace.Add(diagnostics.StepMatch, "matched", map[string]any{
			"term":   term,
			"tmdbId": m.Candidate.ID,
			"title":  m.Candidate.DisplayTitle(),
			"tier":   string(m.Tier),
		})
		return m, nil
	}

	return matching.Match{}, &NoMatchError{Title: q.Title, Terms: terms}
}

// ResolveStatus returns the canonical status for q. Lookup failures never
// surface: a title the catalog lacks, or a server that cannot be reached,
// yields the "Ready to request" status. Only context cancellation is
// returned as an error.
func (s *Service) ResolveStatus(ctx context.Context, q media.Query) (status.Canonical, error) {
	return s.resolve(ctx, q, 0)
}

// ResolveCurrent is ResolveStatus for a navigation ticket. It returns
// ErrStale when another navigation began before the lookup finished.
func (s *Service) ResolveCurrent(ctx context.Context, ticket uint64, q media.Query) (status.Canonical, error) {
	if !s.navigation.IsCurrent(ticket) {
		return status.Canonical{}, ErrStale
	}
	return s.resolve(ctx, q, ticket)
}

func (s *Service) resolve(ctx context.Context, q media.Query, ticket uint64) (status.Canonical, error) {
	trace := diagnostics.Start(s.recorder, "status", q.Title, string(q.MediaType))
	trace.SetGeneration(ticket)

	canonical, err := s.lookupStatus(ctx, q, trace)
	if err != nil {
		trace.Finish("error: " + err.Error())
		return status.Canonical{}, err
	}

	if !s.navigation.IsCurrent(ticket) {
		s.logger.Debug().Str("title", q.Title).Uint64("ticket", ticket).Msg("discarding stale status")
		trace.Finish("stale")
		return status.Canonical{}, ErrStale
	}

	trace.Finish(string(canonical.Status))
	return canonical, nil
}

func (s *Service) lookupStatus(ctx context.Context, q media.Query, trace *diagnostics.Builder) (status.Canonical, error) {
	if err := q.Validate(); err != nil {
		s.logger.Debug().Err(err).Msg("invalid query, treating as not found")
		return status.ReadyToRequest(), nil
	}

	m, err := s.findMatch(ctx, q, trace)
	if err != nil {
		return s.degrade(ctx, q, err, trace)
	}

	mediaType := matchType(m, q)
	record, err := s.statusRecord(ctx, m.Candidate.ID, mediaType, trace)
	if err != nil {
		return s.degrade(ctx, q, err, trace)
	}

	canonical := status.Normalize(record, mediaType)
	if canonical.TMDBID == 0 {
		canonical.TMDBID = m.Candidate.ID
	}
	if canonical.Title == "" || canonical.Title == status.UnknownTitle {
		if title := m.Candidate.DisplayTitle(); title != "" {
			canonical.Title = title
		} else {
			canonical.Title = q.Title
		}
	}

	trace.Add(diagnostics.StepStatus, "normalized status", map[string]any{
		"status":  string(canonical.Status),
		"message": canonical.Message,
	})
	return canonical, nil
}

// statusRecord prefers an existing request for the title, since it carries
// its own lifecycle status, and falls back to the catalog details.
func (s *Service) statusRecord(ctx context.Context, tmdbID int, mediaType media.Type, trace *diagnostics.Builder) (*status.Record, error) {
	var requests []status.Record
	err := s.withRetry(ctx, "requests", func(ctx context.Context) error {
		var err error
		requests, err = s.catalog.ListRequests(ctx)
		return err
	})
	switch {
	case err == nil:
		for i := range requests {
			if seerr.RequestMatches(requests[i], tmdbID, mediaType) {
				trace.Add(diagnostics.StepRequests, "found existing request", map[string]any{"requestId": requests[i].ID})
				return &requests[i], nil
			}
		}
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		s.logger.Warn().Err(err).Msg("failed to list requests, using details")
		trace.Add(diagnostics.StepError, "request list failed", map[string]any{"error": err.Error()})
	}

	var record *status.Record
	err = s.withRetry(ctx, "details", func(ctx context.Context) error {
		var err error
		record, err = s.catalog.GetDetails(ctx, tmdbID, mediaType)
		return err
	})
	if err != nil {
		return nil, err
	}
	trace.Add(diagnostics.StepDetails, "fetched details", map[string]any{"found": record != nil})
	return record, nil
}

func (s *Service) degrade(ctx context.Context, q media.Query, err error, trace *diagnostics.Builder) (status.Canonical, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return status.Canonical{}, ctxErr
	}

	if IsNoMatch(err) {
		s.logger.Debug().Str("title", q.Title).Msg("title not in catalog")
	} else {
		s.logger.Warn().Err(err).Str("title", q.Title).Msg("status check failed, showing request button")
	}
	trace.Add(diagnostics.StepError, "degraded to request", map[string]any{"error": err.Error()})

	c := status.ReadyToRequest()
	c.Title = q.Title
	return c, nil
}

// Submit resolves q and asks the server to acquire it. TV shows are
// requested with every season. All failures are returned.
func (s *Service) Submit(ctx context.Context, q media.Query) (*seerr.Confirmation, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	trace := diagnostics.Start(s.recorder, "submit", q.Title, string(q.MediaType))

	m, err := s.findMatch(ctx, q, trace)
	if err != nil {
		trace.Finish("error: " + err.Error())
		s.recordHistory(ctx, q, matching.Match{}, nil, err)
		return nil, err
	}

	mediaType := matchType(m, q)
	var seasons *seerr.Seasons
	if mediaType == media.TypeTV {
		seasons = seerr.AllSeasons()
	}

	var confirmation *seerr.Confirmation
	err = s.withRetry(ctx, "submit", func(ctx context.Context) error {
		var err error
		confirmation, err = s.catalog.SubmitRequest(ctx, m.Candidate.ID, mediaType, seasons)
		return err
	})
	if err != nil {
		trace.Finish("error: " + err.Error())
		s.recordHistory(ctx, q, m, nil, err)
		return nil, err
	}

	confirmation.Title = m.Candidate.DisplayTitle()
	if confirmation.Title == "" {
		confirmation.Title = q.Title
	}

	trace.Add(diagnostics.StepSubmit, "request submitted", map[string]any{
		"requestId": confirmation.ID,
		"tmdbId":    confirmation.TMDBID,
	})
	trace.Finish("submitted")
	s.recordHistory(ctx, q, m, confirmation, nil)
	return confirmation, nil
}

func (s *Service) recordHistory(ctx context.Context, q media.Query, m matching.Match, c *seerr.Confirmation, submitErr error) {
	if s.history == nil {
		return
	}

	input := history.CreateInput{
		EventType: history.EventTypeSubmitted,
		MediaType: string(matchType(m, q)),
		TMDBID:    m.Candidate.ID,
		Title:     q.Title,
		Source:    q.Source,
	}
	if c != nil {
		input.RequestID = c.ID
		input.Title = c.Title
	}
	if submitErr != nil {
		input.EventType = history.EventTypeFailed
		input.Message = submitErr.Error()
	}

	// detached so the entry is written even if the caller has gone away
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.history.Create(ctx, input); err != nil {
		s.logger.Warn().Err(err).Str("title", q.Title).Msg("failed to record request history")
	}
}

func (s *Service) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	return retry.Do(ctx, op, s.retry, seerr.IsRetryable, fn, &s.logger)
}

// abortsSearch reports whether err should stop walking the remaining terms.
func abortsSearch(ctx context.Context, err error) bool {
	return ctx.Err() != nil || seerr.IsTransport(err) || seerr.IsConfig(err)
}

func matchType(m matching.Match, q media.Query) media.Type {
	if m.Candidate.MediaType.Valid() {
		return m.Candidate.MediaType
	}
	if q.MediaType.Valid() {
		return q.MediaType
	}
	return media.TypeMovie
}
