package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/seerlink/seerlink/internal/diagnostics"
	"github.com/seerlink/seerlink/internal/extract"
	"github.com/seerlink/seerlink/internal/media"
)

// statusRequest is a media query plus the navigation ticket it belongs to.
type statusRequest struct {
	media.Query
	Generation uint64 `json:"generation,omitempty"`
}

type extractRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

type termsResponse struct {
	Title string   `json:"title"`
	Terms []string `json:"terms"`
}

type navigationResponse struct {
	Generation uint64 `json:"generation"`
}

type diagnosticsResponse struct {
	Enabled bool                `json:"enabled"`
	Traces  []diagnostics.Trace `json:"traces"`
}

// beginNavigation starts a page view; older tickets become stale.
// POST /api/v1/navigation
func (s *Server) beginNavigation(c echo.Context) error {
	gen := s.deps.Lookup.Navigation().Begin()
	return c.JSON(http.StatusOK, navigationResponse{Generation: gen})
}

// resolveStatus returns the canonical status for a page.
// POST /api/v1/status
func (s *Server) resolveStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.deps.Lookup.ResolveCurrent(c.Request().Context(), req.Generation, normalizeQuery(req.Query))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// submitRequest asks Jellyseerr to acquire the title on the page.
// POST /api/v1/request
func (s *Server) submitRequest(c echo.Context) error {
	var q media.Query
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	confirmation, err := s.deps.Lookup.Submit(c.Request().Context(), normalizeQuery(q))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, confirmation)
}

// extractPage reads a media query out of page HTML.
// POST /api/v1/extract
func (s *Server) extractPage(c echo.Context) error {
	if s.deps.Extractor == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "extraction is not configured")
	}

	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.HTML) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "html is required")
	}

	q, err := s.deps.Extractor.Extract(req.URL, strings.NewReader(req.HTML))
	if err != nil {
		if errors.Is(err, extract.ErrNoTitle) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, q)
}

// searchTerms lists the search terms generated for a title.
// GET /api/v1/search/terms?title=
func (s *Server) searchTerms(c echo.Context) error {
	title := c.QueryParam("title")
	if strings.TrimSpace(title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	return c.JSON(http.StatusOK, termsResponse{Title: title, Terms: s.deps.Lookup.Terms(title)})
}

// debugSearch reports what every search term returns.
// POST /api/v1/debug/search
func (s *Server) debugSearch(c echo.Context) error {
	var q media.Query
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	report, err := s.deps.Lookup.DebugSearch(c.Request().Context(), normalizeQuery(q))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

// testConnection verifies the Jellyseerr URL and API key.
// GET /api/v1/connection
func (s *Server) testConnection(c echo.Context) error {
	conn, err := s.deps.Connector.TestConnection(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, conn)
}

// diagnostics returns recent resolution traces, newest first.
// GET /api/v1/diagnostics
func (s *Server) diagnostics(c echo.Context) error {
	resp := diagnosticsResponse{Traces: []diagnostics.Trace{}}
	if s.deps.Traces != nil {
		resp.Enabled = true
		resp.Traces = s.deps.Traces.Recent()
	}
	return c.JSON(http.StatusOK, resp)
}

// normalizeQuery trims the title and maps loose media type names.
func normalizeQuery(q media.Query) media.Query {
	q.Title = strings.TrimSpace(q.Title)
	if q.MediaType != "" {
		q.MediaType = media.ParseType(string(q.MediaType))
	}
	return q
}
