package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the catalog media type.
type Type string

const (
	TypeMovie Type = "movie"
	TypeTV    Type = "tv"
)

// ParseType converts a loose media type string into a Type.
// Anything that is not recognizably TV is treated as a movie.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tv", "series", "show", "tvshow":
		return TypeTV
	default:
		return TypeMovie
	}
}

// Valid reports whether t is one of the known media types.
func (t Type) Valid() bool {
	return t == TypeMovie || t == TypeTV
}

// Query is the media information extracted from a page.
type Query struct {
	Title     string `json:"title"`
	Year      int    `json:"year,omitempty"`
	MediaType Type   `json:"mediaType"`
	IMDBID    string `json:"imdbId,omitempty"`
	TMDBID    int    `json:"tmdbId,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
	Overview  string `json:"overview,omitempty"`
	Source    string `json:"source,omitempty"`
}

// HasYear reports whether the query carries a release year.
func (q Query) HasYear() bool {
	return q.Year > 0
}

// WithTitle returns a copy of q searching for a different title.
func (q Query) WithTitle(title string) Query {
	q.Title = title
	return q
}

// Validate checks the fields required for a lookup.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Title) == "" && q.TMDBID <= 0 {
		return fmt.Errorf("title is required")
	}
	if q.MediaType != "" && !q.MediaType.Valid() {
		return fmt.Errorf("invalid media type %q", q.MediaType)
	}
	return nil
}

// Candidate is one row returned by the catalog search endpoint.
type Candidate struct {
	ID            int    `json:"id"`
	MediaType     Type   `json:"mediaType"`
	Title         string `json:"title,omitempty"`
	OriginalTitle string `json:"originalTitle,omitempty"`
	Name          string `json:"name,omitempty"`
	OriginalName  string `json:"originalName,omitempty"`
	ReleaseDate   string `json:"releaseDate,omitempty"`
	FirstAirDate  string `json:"firstAirDate,omitempty"`
	Overview      string `json:"overview,omitempty"`
	PosterPath    string `json:"posterPath,omitempty"`
}

// Titles returns the non-empty title fields of the candidate.
func (c Candidate) Titles() []string {
	titles := make([]string, 0, 4)
	for _, t := range []string{c.Title, c.OriginalTitle, c.Name, c.OriginalName} {
		if t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// DisplayTitle returns the title used when presenting the candidate.
func (c Candidate) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Year returns the release year of the candidate, or 0 when unknown.
func (c Candidate) Year() int {
	date := c.ReleaseDate
	if date == "" {
		date = c.FirstAirDate
	}
	return ExtractYear(date)
}

// ExtractYear parses the first four characters of a date string as a year.
// Returns 0 when the string is too short or not numeric.
func ExtractYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
