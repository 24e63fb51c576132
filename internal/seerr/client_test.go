package seerr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlink/seerlink/internal/media"
	"github.com/seerlink/seerlink/internal/status"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, ttl time.Duration) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		URL:            server.URL + "/",
		APIKey:         "test-key",
		Timeout:        5 * time.Second,
		SearchCacheTTL: ttl,
	})
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(ClientConfig{URL: "http://localhost:5055"})
	assert.False(t, c.Configured())

	_, err := c.Search(context.Background(), "Heat", media.TypeMovie)
	require.Error(t, err)
	assert.True(t, IsConfig(err))
	assert.False(t, IsRetryable(err))
}

func TestClient_Search(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get(apiKeyHeader))
		assert.Equal(t, "No Country for Old Men", r.URL.Query().Get("query"))
		assert.Contains(t, r.URL.RawQuery, "query=No%20Country%20for%20Old%20Men")

		_ = json.NewEncoder(w).Encode(SearchResponse{
			Page: 1,
			Results: []media.Candidate{
				{ID: 6977, MediaType: media.TypeMovie, Title: "No Country for Old Men", ReleaseDate: "2007-11-08"},
				{ID: 1, MediaType: media.TypeTV, Name: "No Country"},
				{ID: 2, MediaType: "person", Name: "Someone"},
			},
		})
	}, time.Minute)

	results, err := c.Search(context.Background(), "No Country for Old Men", media.TypeMovie)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 6977, results[0].ID)

	_, err = c.Search(context.Background(), "No Country for Old Men", media.TypeMovie)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second search should come from the cache")
}

func TestClient_SearchUnfiltered(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results": [{"id": 1, "mediaType": "movie"}, {"id": 2, "mediaType": "tv"}]}`)
	}, 0)

	results, err := c.Search(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		body         string
		wantUpstream bool
		wantRetry    bool
		wantMessage  string
	}{
		{"server message", http.StatusInternalServerError, `{"message": "Request already exists"}`, true, false, "Request already exists"},
		{"plain failure", http.StatusBadGateway, `oops`, true, false, "HTTP 502: Bad Gateway"},
		{"bad key", http.StatusUnauthorized, `{}`, false, false, "HTTP 401: Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = io.WriteString(w, tt.body)
			}, 0)

			_, err := c.Search(context.Background(), "Heat", media.TypeMovie)
			require.Error(t, err)
			assert.Equal(t, tt.wantUpstream, IsUpstream(err))
			assert.Equal(t, tt.wantRetry, IsRetryable(err))
			assert.Equal(t, tt.wantMessage, UserMessage(err))
		})
	}
}

func TestClient_Unauthorized_IsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, 0)

	_, err := c.ListRequests(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsRetryable(err))
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c := NewClient(ClientConfig{URL: addr, APIKey: "k", Timeout: time.Second})
	_, err := c.Search(context.Background(), "Heat", media.TypeMovie)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.True(t, IsRetryable(err))
}

func TestClient_GetDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tv/1399":
			_, _ = io.WriteString(w, `{"id": 1399, "name": "Game of Thrones", "mediaInfo": {"status": 5, "mediaUrl": "https://jf/x"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message": "Unable to retrieve series."}`)
		}
	}, 0)

	record, err := c.GetDetails(context.Background(), 1399, media.TypeTV)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Game of Thrones", record.Name)
	require.NotNil(t, record.MediaInfo)
	assert.Equal(t, status.CodeAvailable, *record.MediaInfo.Status)

	missing, err := c.GetDetails(context.Background(), 42, media.TypeMovie)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = c.GetDetails(context.Background(), 0, media.TypeMovie)
	assert.True(t, IsValidation(err))
}

func TestClient_ListRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"paged", `{"pageInfo": {"pages": 1}, "results": [{"id": 7, "type": "movie", "status": 2, "media": {"tmdbId": 603, "status": 2}}]}`},
		{"bare array", `[{"id": 7, "type": "movie", "status": 2, "media": {"tmdbId": 603, "status": 2}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/request", r.URL.Path)
				assert.Equal(t, "100", r.URL.Query().Get("take"))
				_, _ = io.WriteString(w, tt.body)
			}, 0)

			requests, err := c.ListRequests(context.Background())
			require.NoError(t, err)
			require.Len(t, requests, 1)
			assert.True(t, RequestMatches(requests[0], 603, media.TypeMovie))
			assert.False(t, RequestMatches(requests[0], 603, media.TypeTV))
			assert.False(t, RequestMatches(requests[0], 604, media.TypeMovie))
		})
	}
}

func TestClient_SubmitRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "tv", payload["mediaType"])
		assert.Equal(t, float64(1399), payload["mediaId"])
		assert.Equal(t, "all", payload["seasons"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 12, "type": "tv", "status": 1}`)
	}, 0)

	conf, err := c.SubmitRequest(context.Background(), 1399, media.TypeTV, AllSeasons())
	require.NoError(t, err)
	assert.Equal(t, 12, conf.ID)
	assert.Equal(t, media.TypeTV, conf.MediaType)
	assert.Equal(t, status.Code(1), conf.Status)
	assert.Equal(t, 1399, conf.TMDBID)

	_, err = c.SubmitRequest(context.Background(), -5, media.TypeMovie, nil)
	assert.True(t, IsValidation(err))
}

func TestClient_SubmitRequest_MovieOmitsSeasons(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, hasSeasons := payload["seasons"]
		assert.False(t, hasSeasons)
		_, _ = io.WriteString(w, `{"id": 13, "type": "movie", "status": 2}`)
	}, 0)

	_, err := c.SubmitRequest(context.Background(), 603, media.TypeMovie, nil)
	require.NoError(t, err)
}

func TestClient_TestConnection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		_, _ = io.WriteString(w, `{"id": 1, "email": "admin@example.com"}`)
	}, 0)

	conn, err := c.TestConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, conn.Connected)
	assert.Equal(t, "admin@example.com", conn.User)
	assert.Equal(t, c.BaseURL(), conn.Server)
}

func TestSeasons_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Seasons{Numbers: []int{1, 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 2]`, string(data))

	data, err = json.Marshal(AllSeasons())
	require.NoError(t, err)
	assert.JSONEq(t, `"all"`, string(data))
}
