package seerr

import (
	"encoding/json"

	"github.com/seerlink/seerlink/internal/media"
	"github.com/seerlink/seerlink/internal/status"
)

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Page         int               `json:"page"`
	TotalPages   int               `json:"totalPages"`
	TotalResults int               `json:"totalResults"`
	Results      []media.Candidate `json:"results"`
}

// requestListResponse is the paged body of GET /api/v1/request.
type requestListResponse struct {
	Results []status.Record `json:"results"`
}

// Seasons selects which seasons of a show to request.
type Seasons struct {
	All     bool
	Numbers []int
}

// AllSeasons requests every season of a show.
func AllSeasons() *Seasons {
	return &Seasons{All: true}
}

// MarshalJSON encodes "all" or the list of season numbers.
func (s Seasons) MarshalJSON() ([]byte, error) {
	if s.All {
		return json.Marshal("all")
	}
	if s.Numbers == nil {
		return json.Marshal([]int{})
	}
	return json.Marshal(s.Numbers)
}

// requestPayload is the body of POST /api/v1/request.
type requestPayload struct {
	MediaType media.Type `json:"mediaType"`
	MediaID   int        `json:"mediaId"`
	Seasons   *Seasons   `json:"seasons,omitempty"`
}

// requestResponse is the subset of the created request we read back.
type requestResponse struct {
	ID     int         `json:"id"`
	Type   media.Type  `json:"type"`
	Status status.Code `json:"status"`
}

// Confirmation describes a request accepted by the server.
type Confirmation struct {
	ID        int         `json:"id"`
	MediaType media.Type  `json:"mediaType"`
	Status    status.Code `json:"status"`
	TMDBID    int         `json:"tmdbId"`
	Title     string      `json:"title"`
}

// Connection is the result of a successful connection test.
type Connection struct {
	Connected bool   `json:"connected"`
	User      string `json:"user"`
	Server    string `json:"server"`
}

// errorBody is the JSON error body returned by the server.
type errorBody struct {
	Message string `json:"message"`
}
