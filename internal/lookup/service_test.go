package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlink/seerlink/internal/diagnostics"
	"github.com/seerlink/seerlink/internal/history"
	"github.com/seerlink/seerlink/internal/matching"
	"github.com/seerlink/seerlink/internal/media"
	"github.com/seerlink/seerlink/internal/retry"
	"github.com/seerlink/seerlink/internal/seerr"
	"github.com/seerlink/seerlink/internal/status"
)

type submitCall struct {
	tmdbID    int
	mediaType media.Type
	seasons   *seerr.Seasons
}

type fakeCatalog struct {
	mu sync.Mutex

	results     map[string][]media.Candidate
	searchErr   map[string]error
	details     map[int]*status.Record
	detailsErr  error
	requests    []status.Record
	requestsErr error
	submitErr   error
	onSearch    func(term string)

	searched      []string
	searchedTypes []media.Type
	detailsCalled []int
	submitted     []submitCall
}

// Search drops results of other types when mediaType is set, as the real client does.
func (f *fakeCatalog) Search(_ context.Context, query string, mediaType media.Type) ([]media.Candidate, error) {
	f.mu.Lock()
	f.searched = append(f.searched, query)
	f.searchedTypes = append(f.searchedTypes, mediaType)
	hook := f.onSearch
	f.mu.Unlock()

	if hook != nil {
		hook(query)
	}
	if err := f.searchErr[query]; err != nil {
		return nil, err
	}
	if mediaType == "" {
		return f.results[query], nil
	}
	var filtered []media.Candidate
	for _, c := range f.results[query] {
		if c.MediaType == mediaType {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (f *fakeCatalog) GetDetails(_ context.Context, tmdbID int, _ media.Type) (*status.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailsCalled = append(f.detailsCalled, tmdbID)
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details[tmdbID], nil
}

func (f *fakeCatalog) ListRequests(context.Context) ([]status.Record, error) {
	return f.requests, f.requestsErr
}

func (f *fakeCatalog) SubmitRequest(_ context.Context, tmdbID int, mediaType media.Type, seasons *seerr.Seasons) (*seerr.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, submitCall{tmdbID: tmdbID, mediaType: mediaType, seasons: seasons})
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &seerr.Confirmation{ID: 99, MediaType: mediaType, Status: status.CodePending, TMDBID: tmdbID}, nil
}

type fakeHistory struct {
	entries []history.CreateInput
}

func (h *fakeHistory) Create(_ context.Context, input history.CreateInput) (*history.Entry, error) {
	h.entries = append(h.entries, input)
	return &history.Entry{ID: int64(len(h.entries))}, nil
}

func transportErr(op string) error {
	return &seerr.Error{Op: op, Kind: seerr.ErrTransport, Err: errors.New("connection refused")}
}

func upstreamErr(op, msg string) error {
	return &seerr.Error{Op: op, Kind: seerr.ErrUpstream, StatusCode: 500, Message: msg}
}

func record(t *testing.T, raw string) *status.Record {
	t.Helper()
	r, err := status.ParseRecord([]byte(raw))
	require.NoError(t, err)
	return r
}

func newTestService(catalog Catalog) *Service {
	cfg := DefaultConfig()
	cfg.Retry = retry.Config{MaxAttempts: 3, Multiplier: 1}
	return NewService(catalog, cfg, zerolog.Nop())
}

var seven = media.Candidate{ID: 807, MediaType: media.TypeMovie, Title: "Seven", ReleaseDate: "1995-09-22"}

func TestResolveStatus_WalksTermsUntilHit(t *testing.T) {
	catalog := &fakeCatalog{
		results: map[string][]media.Candidate{"Seven": {seven}},
		details: map[int]*status.Record{},
	}
	catalog.details[807] = record(t, `{"id": 807, "title": "Seven", "mediaInfo": {"status": 5}}`)
	svc := newTestService(catalog)

	got, err := svc.ResolveStatus(context.Background(), media.Query{Title: "Se7en", Year: 1995, MediaType: media.TypeMovie})
	require.NoError(t, err)

	assert.Equal(t, []string{"Se7en", "Seven"}, catalog.searched)
	assert.Equal(t, []int{807}, catalog.detailsCalled)
	assert.Equal(t, status.StateAvailableWatch, got.Status)
	assert.Equal(t, 807, got.TMDBID)
	assert.Equal(t, "Seven", got.Title)
}

func TestFindMatch_ScoresAgainstSearchTerm(t *testing.T) {
	catalog := &fakeCatalog{
		results: map[string][]media.Candidate{
			"Seven": {
				{ID: 1, MediaType: media.TypeMovie, Title: "Seven Pounds", ReleaseDate: "2008-12-19"},
				seven,
			},
		},
	}
	svc := newTestService(catalog)

	m, err := svc.FindMatch(context.Background(), media.Query{Title: "Se7en", MediaType: media.TypeMovie})
	require.NoError(t, err)

	assert.Equal(t, 807, m.Candidate.ID)
	assert.Equal(t, matching.TierExact, m.Tier)
}

func TestFindMatch_SearchesWithQueryType(t *testing.T) {
	fargo := media.Candidate{ID: 60622, MediaType: media.TypeTV, Name: "Fargo", FirstAirDate: "2014-04-15"}
	catalog := &fakeCatalog{results: map[string][]media.Candidate{"Fargo": {fargo}}}
	svc := newTestService(catalog)
	q := media.Query{Title: "Fargo", Year: 1996, MediaType: media.TypeMovie}

	_, err := svc.Submit(context.Background(), q)
	require.Error(t, err)
	assert.True(t, IsNoMatch(err))
	assert.Empty(t, catalog.submitted)

	got, err := svc.ResolveStatus(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, status.MessageReady, got.Message)
	assert.Zero(t, got.TMDBID)
	assert.Empty(t, catalog.detailsCalled)

	for _, mt := range catalog.searchedTypes {
		assert.Equal(t, media.TypeMovie, mt)
	}
}

func TestResolveStatus_NotFoundIsReadyToRequest(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := newTestService(catalog)

	got, err := svc.ResolveStatus(context.Background(), media.Query{Title: "Nonexistent Film: The Sequel", MediaType: media.TypeMovie})
	require.NoError(t, err)

	assert.Equal(t, status.StateAvailable, got.Status)
	assert.Equal(t, status.MessageReady, got.Message)
	assert.Equal(t, "Nonexistent Film: The Sequel", got.Title)
	assert.Greater(t, len(catalog.searched), 1)
	assert.Empty(t, catalog.detailsCalled)
}

func TestResolveStatus_TransportFailureDegrades(t *testing.T) {
	catalog := &fakeCatalog{searchErr: map[string]error{"Heat": transportErr("search")}}
	svc := newTestService(catalog)

	got, err := svc.ResolveStatus(context.Background(), media.Query{Title: "Heat", MediaType: media.TypeMovie})
	require.NoError(t, err)

	assert.Equal(t, status.StateAvailable, got.Status)
	assert.Equal(t, status.MessageReady, got.Message)
	assert.Equal(t, []string{"Heat", "Heat", "Heat"}, catalog.searched, "retried then aborted")
}

func TestResolveStatus_ConfigFailureDegradesWithoutRetry(t *testing.T) {
	catalog := &fakeCatalog{searchErr: map[string]error{"Heat": &seerr.Error{Op: "search", Kind: seerr.ErrNotConfigured}}}
	svc := newTestService(catalog)

	got, err := svc.ResolveStatus(context.Background(), media.Query{Title: "Heat"})
	require.NoError(t, err)

	assert.Equal(t, status.MessageReady, got.Message)
	assert.Equal(t, []string{"Heat"}, catalog.searched)
}

func TestResolveStatus_UpstreamErrorSkipsTerm(t *testing.T) {
	catalog := &fakeCatalog{
		searchErr: map[string]error{"Se7en": upstreamErr("search", "bad query")},
		results:   map[string][]media.Candidate{"Seven": {seven}},
	}
	svc := newTestService(catalog)

	got, err := svc.ResolveStatus(context.Background(), media.Query{Title: "Se7en", Year: 1995, MediaType: media.TypeMovie})
	require.NoError(t, err)

	assert.Equal(t, []string{"Se7en", "Seven"}, catalog.searched)
	assert.Equal(t, 807, got.TMDBID)
	assert.Equal(t, status.MessageReady, got.Message, "details returned nothing")
}

func TestResolveStatus_PrefersExistingRequest(t *testing.T) {
	catalog := &fakeCatalog{
		results: map[string][]media.Candidate{"Se7en": {seven}},
		requests: []status.Record{
			*record(t, `{"id": 11, "type": "tv", "status": 2, "media": {"tmdbId": 807}}`),
			*record(t, `{"id": 12, "type": "movie", "status": 3, "progress": 42, "media": {"tmdbId": 807, "status": 5}}`),
		},
	}
	svc := newTestService(catalog)

	got, err := svc.ResolveStatus(context.Background(), media.Query{Title: "Se7en", MediaType: media.TypeMovie})
	require.NoError(t, err)

	assert.Equal(t, status.StateDownloading, got.Status)
	assert.Contains(t, got.ButtonText, "42%")
	assert.Empty(t, catalog.detailsCalled)
}

func TestResolveStatus_RequestListFailureFallsBackToDetails(t *testing.T) {
	catalog := &fakeCatalog{
		results:     map[string][]media.Candidate{"Se7en": {seven}},
		requestsErr: upstreamErr("requests", "boom"),
		details:     map[int]*status.Record{},
	}
	catalog.details[807] = record(t, `{"id": 807, "mediaInfo": {"status": 2}}`)
	svc := newTestService(catalog)

	got, err := svc.ResolveStatus(context.Background(), media.Query{Title: "Se7en", MediaType: media.TypeMovie})
	require.NoError(t, err)

	assert.Equal(t, status.StatePending, got.Status)
	assert.Equal(t, "Seven", got.Title)
}

func TestResolveStatus_KnownCatalogIDSkipsSearch(t *testing.T) {
	catalog := &fakeCatalog{details: map[int]*status.Record{}}
	catalog.details[603] = record(t, `{"id": 603, "title": "The Matrix", "mediaInfo": {"status": 4}}`)
	svc := newTestService(catalog)

	got, err := svc.ResolveStatus(context.Background(), media.Query{Title: "The Matrix", TMDBID: 603, MediaType: media.TypeMovie})
	require.NoError(t, err)

	assert.Empty(t, catalog.searched)
	assert.Equal(t, []int{603}, catalog.detailsCalled)
	assert.Equal(t, status.StatePartial, got.Status)
}

func TestResolveStatus_Cancelled(t *testing.T) {
	catalog := &fakeCatalog{searchErr: map[string]error{"Heat": transportErr("search")}}
	svc := newTestService(catalog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ResolveStatus(ctx, media.Query{Title: "Heat"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveCurrent_DiscardsStaleResults(t *testing.T) {
	catalog := &fakeCatalog{results: map[string][]media.Candidate{"Se7en": {seven}}}
	svc := newTestService(catalog)
	nav := svc.Navigation()

	ticket := nav.Begin()
	catalog.onSearch = func(string) { nav.Begin() }

	_, err := svc.ResolveCurrent(context.Background(), ticket, media.Query{Title: "Se7en"})
	assert.ErrorIs(t, err, ErrStale)

	catalog.onSearch = nil
	ticket = nav.Current()
	got, err := svc.ResolveCurrent(context.Background(), ticket, media.Query{Title: "Se7en"})
	require.NoError(t, err)
	assert.Equal(t, 807, got.TMDBID)
}

func TestResolveCurrent_RejectsOldTicketUpFront(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := newTestService(catalog)
	old := svc.Navigation().Begin()
	svc.Navigation().Begin()

	_, err := svc.ResolveCurrent(context.Background(), old, media.Query{Title: "Heat"})
	assert.ErrorIs(t, err, ErrStale)
	assert.Empty(t, catalog.searched)
}

func TestSubmit_TVRequestsAllSeasons(t *testing.T) {
	show := media.Candidate{ID: 1396, MediaType: media.TypeTV, Name: "Breaking Bad", FirstAirDate: "2008-01-20"}
	catalog := &fakeCatalog{results: map[string][]media.Candidate{"Breaking Bad": {show}}}
	hist := &fakeHistory{}
	svc := newTestService(catalog)
	svc.SetHistory(hist)

	got, err := svc.Submit(context.Background(), media.Query{Title: "Breaking Bad", Year: 2008, MediaType: media.TypeTV, Source: "imdb"})
	require.NoError(t, err)

	require.Len(t, catalog.submitted, 1)
	assert.Equal(t, 1396, catalog.submitted[0].tmdbID)
	assert.Equal(t, media.TypeTV, catalog.submitted[0].mediaType)
	require.NotNil(t, catalog.submitted[0].seasons)
	assert.True(t, catalog.submitted[0].seasons.All)

	assert.Equal(t, 99, got.ID)
	assert.Equal(t, "Breaking Bad", got.Title)

	require.Len(t, hist.entries, 1)
	assert.Equal(t, history.EventTypeSubmitted, hist.entries[0].EventType)
	assert.Equal(t, 99, hist.entries[0].RequestID)
	assert.Equal(t, "imdb", hist.entries[0].Source)
}

func TestSubmit_MovieOmitsSeasons(t *testing.T) {
	catalog := &fakeCatalog{results: map[string][]media.Candidate{"Se7en": {seven}}}
	svc := newTestService(catalog)

	_, err := svc.Submit(context.Background(), media.Query{Title: "Se7en", MediaType: media.TypeMovie})
	require.NoError(t, err)
	require.Len(t, catalog.submitted, 1)
	assert.Nil(t, catalog.submitted[0].seasons)
}

func TestSubmit_NoMatch(t *testing.T) {
	catalog := &fakeCatalog{}
	hist := &fakeHistory{}
	svc := newTestService(catalog)
	svc.SetHistory(hist)

	_, err := svc.Submit(context.Background(), media.Query{Title: "Mission: Impossible", MediaType: media.TypeMovie})
	require.Error(t, err)
	assert.True(t, IsNoMatch(err))

	var nm *NoMatchError
	require.ErrorAs(t, err, &nm)
	assert.Equal(t, catalog.searched, nm.Terms)
	assert.Contains(t, err.Error(), `Could not find "Mission: Impossible" in Jellyseerr database`)
	assert.Empty(t, catalog.submitted)

	require.Len(t, hist.entries, 1)
	assert.Equal(t, history.EventTypeFailed, hist.entries[0].EventType)
}

func TestSubmit_PropagatesFailures(t *testing.T) {
	tests := []struct {
		name     string
		catalog  *fakeCatalog
		check    func(error) bool
		attempts int
	}{
		{
			name: "upstream rejection",
			catalog: &fakeCatalog{
				results:   map[string][]media.Candidate{"Se7en": {seven}},
				submitErr: upstreamErr("submit", "Request already exists"),
			},
			check:    seerr.IsUpstream,
			attempts: 1,
		},
		{
			name: "transport failure",
			catalog: &fakeCatalog{
				results:   map[string][]media.Candidate{"Se7en": {seven}},
				submitErr: transportErr("submit"),
			},
			check:    seerr.IsTransport,
			attempts: 3,
		},
		{
			name: "search unreachable",
			catalog: &fakeCatalog{
				searchErr: map[string]error{"Se7en": transportErr("search")},
			},
			check:    seerr.IsTransport,
			attempts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.catalog)
			_, err := svc.Submit(context.Background(), media.Query{Title: "Se7en", MediaType: media.TypeMovie})
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
			assert.Len(t, tt.catalog.submitted, tt.attempts)
		})
	}
}

func TestSubmit_InvalidQuery(t *testing.T) {
	svc := newTestService(&fakeCatalog{})
	_, err := svc.Submit(context.Background(), media.Query{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestDebugSearch(t *testing.T) {
	many := []media.Candidate{
		{ID: 1, MediaType: media.TypeMovie, Title: "Seven Samurai", ReleaseDate: "1954-04-26"},
		seven,
		{ID: 3, MediaType: media.TypeMovie, Title: "Seven Pounds", ReleaseDate: "2008-12-19"},
		{ID: 4, MediaType: media.TypeMovie, Title: "Seven Psychopaths", ReleaseDate: "2012-10-12"},
	}
	catalog := &fakeCatalog{
		results:   map[string][]media.Candidate{"Seven": many},
		searchErr: map[string]error{"Se7en": upstreamErr("search", "bad")},
	}
	svc := newTestService(catalog)

	report, err := svc.DebugSearch(context.Background(), media.Query{Title: "Se7en", Year: 1995, MediaType: media.TypeMovie})
	require.NoError(t, err)

	require.Len(t, report.Terms, 2)
	assert.Equal(t, "Se7en", report.Terms[0].Term)
	assert.NotEmpty(t, report.Terms[0].Error)

	assert.Equal(t, 4, report.Terms[1].Count)
	assert.Len(t, report.Terms[1].Results, 3)

	require.NotNil(t, report.Match)
	assert.Equal(t, 807, report.Match.ID)
	assert.Equal(t, "Seven", report.MatchTerm)
}

func TestService_RecordsDiagnostics(t *testing.T) {
	catalog := &fakeCatalog{results: map[string][]media.Candidate{"Seven": {seven}}}
	buf := diagnostics.NewBuffer(10)
	svc := newTestService(catalog)
	svc.SetRecorder(buf)

	_, err := svc.ResolveStatus(context.Background(), media.Query{Title: "Se7en", Year: 1995, MediaType: media.TypeMovie})
	require.NoError(t, err)

	traces := buf.Recent()
	require.Len(t, traces, 1)
	assert.Equal(t, "status", traces[0].Operation)
	assert.Equal(t, string(status.StateAvailable), traces[0].Outcome)

	var steps []diagnostics.Step
	for _, e := range traces[0].Events {
		steps = append(steps, e.Step)
	}
	assert.Contains(t, steps, diagnostics.StepTerms)
	assert.Contains(t, steps, diagnostics.StepMatch)
	assert.Contains(t, steps, diagnostics.StepStatus)
}
