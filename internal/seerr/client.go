package seerr

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/seerlink/seerlink/internal/media"
	"github.com/seerlink/seerlink/internal/status"
)

const (
	defaultTimeout = 15 * time.Second
	//nolint:gosec // header name constant, not a credential
	apiKeyHeader = "X-Api-Key"
	requestPage  = "take=100&skip=0"
)

// Client talks to the Jellyseerr REST API.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *zerolog.Logger
}

// ClientConfig contains configuration for creating a new client.
type ClientConfig struct {
	URL           string
	APIKey        string
	Language      string
	Timeout       time.Duration
	SkipSSLVerify bool
	// SearchCacheTTL caches search results per query; zero disables caching.
	SearchCacheTTL time.Duration
	Logger         *zerolog.Logger
}

// NewClient creates a client. A missing URL or API key is not an error here:
// every call on an unconfigured client fails with ErrNotConfigured instead.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}

	transport := &http.Transport{}
	if cfg.SkipSSLVerify {
		//nolint:gosec // user-configured endpoint, TLS verification optional
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	base := cfg.Logger
	if base == nil {
		nop := zerolog.Nop()
		base = &nop
	}
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.URL), "/")
	logger := base.With().
		Str("component", "jellyseerr-client").
		Str("url", baseURL).
		Logger()

	c := &Client{
		baseURL:  baseURL,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		language: language,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: &logger,
	}
	if cfg.SearchCacheTTL > 0 {
		c.cache = cache.New(cfg.SearchCacheTTL, 10*time.Minute)
	}
	return c
}

// Configured reports whether both the server URL and API key are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes an HTTP request and decodes a JSON response into result.
// A nil result discards the body.
func (c *Client) do(ctx context.Context, op, method, path string, payload, result any) error {
	if !c.Configured() {
		return newError(op, ErrNotConfigured, nil)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return newError(op, ErrUpstream, fmt.Errorf("failed to encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return newError(op, ErrNotConfigured, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Msg("executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn().Err(err).Str("op", op).Str("path", path).Msg("request failed")
		return newError(op, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(op, resp)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return newError(op, ErrUpstream, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// statusError converts a non-2xx response into an *Error, keeping the
// server's message when the body has one.
func (c *Client) statusError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	e := &Error{
		Op:         op,
		Kind:       ErrUpstream,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
		e.Message = eb.Message
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		e.Kind = ErrUnauthorized
	}

	c.logger.Warn().
		Str("op", op).
		Int("status", resp.StatusCode).
		Str("message", e.Message).
		Msg("request returned error status")
	return e
}

// Search queries the catalog. When mediaType is set, results of other types
// are dropped.
func (c *Client) Search(ctx context.Context, query string, mediaType media.Type) ([]media.Candidate, error) {
	cacheKey := fmt.Sprintf("search:%s:%s:%s", mediaType, c.language, query)
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			if results, ok := cached.([]media.Candidate); ok {
				return results, nil
			}
		}
	}

	path := fmt.Sprintf("/api/v1/search?query=%s&page=1&language=%s", encodeQuery(query), url.QueryEscape(c.language))

	var resp SearchResponse
	if err := c.do(ctx, "search", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	results := resp.Results
	if mediaType != "" {
		filtered := make([]media.Candidate, 0, len(results))
		for _, r := range results {
			if r.MediaType == mediaType {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, results, cache.DefaultExpiration)
	}
	return results, nil
}

// GetDetails fetches the movie or show record for a catalog id.
// It returns nil without error when the catalog has no such record.
func (c *Client) GetDetails(ctx context.Context, tmdbID int, mediaType media.Type) (*status.Record, error) {
	if tmdbID <= 0 {
		return nil, newError("details", ErrInvalidID, fmt.Errorf("id %d", tmdbID))
	}

	kind := "movie"
	if mediaType == media.TypeTV {
		kind = "tv"
	}

	var record status.Record
	err := c.do(ctx, "details", http.MethodGet, fmt.Sprintf("/api/v1/%s/%d", kind, tmdbID), nil, &record)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListRequests returns the most recent requests known to the server.
func (c *Client) ListRequests(ctx context.Context) ([]status.Record, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "requests", http.MethodGet, "/api/v1/request?"+requestPage, nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []status.Record
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, newError("requests", ErrUpstream, err)
		}
		return list, nil
	}

	var paged requestListResponse
	if err := json.Unmarshal(raw, &paged); err != nil {
		return nil, newError("requests", ErrUpstream, err)
	}
	return paged.Results, nil
}

// SubmitRequest asks the server to acquire a title.
func (c *Client) SubmitRequest(ctx context.Context, tmdbID int, mediaType media.Type, seasons *Seasons) (*Confirmation, error) {
	if tmdbID <= 0 {
		return nil, newError("submit", ErrInvalidID, fmt.Errorf("id %d", tmdbID))
	}

	payload := requestPayload{
		MediaType: mediaType,
		MediaID:   tmdbID,
		Seasons:   seasons,
	}

	var resp requestResponse
	if err := c.do(ctx, "submit", http.MethodPost, "/api/v1/request", payload, &resp); err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("requestId", resp.ID).
		Int("tmdbId", tmdbID).
		Str("mediaType", string(mediaType)).
		Msg("request submitted")

	confirmation := &Confirmation{
		ID:        resp.ID,
		MediaType: resp.Type,
		Status:    resp.Status,
		TMDBID:    tmdbID,
	}
	if confirmation.MediaType == "" {
		confirmation.MediaType = mediaType
	}
	return confirmation, nil
}

// TestConnection verifies the URL and API key by fetching the current user.
func (c *Client) TestConnection(ctx context.Context) (*Connection, error) {
	var me struct {
		DisplayName string `json:"displayName"`
		Email       string `json:"email"`
	}
	if err := c.do(ctx, "connect", http.MethodGet, "/api/v1/auth/me", nil, &me); err != nil {
		return nil, err
	}

	user := me.DisplayName
	if user == "" {
		user = me.Email
	}
	c.logger.Info().Str("user", user).Msg("connection test successful")

	return &Connection{
		Connected: true,
		User:      user,
		Server:    c.baseURL,
	}, nil
}

// encodeQuery escapes a search query the way the server expects: spaces as
// %20 rather than '+'.
func encodeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}

// RequestMatches reports whether a request record is for the given title.
func RequestMatches(r status.Record, tmdbID int, mediaType media.Type) bool {
	requestType := media.TypeTV
	if r.Type == string(media.TypeMovie) {
		requestType = media.TypeMovie
	}
	if requestType != mediaType || r.Media == nil {
		return false
	}
	return r.Media.TMDBID == tmdbID || r.Media.ID == tmdbID
}
