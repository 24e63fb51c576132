package status

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Upstream media status codes.
const (
	CodeUnknown     Code = 1
	CodePending     Code = 2
	CodeProcessing  Code = 3
	CodePartial     Code = 4
	CodeAvailable   Code = 5
	codeUnparseable Code = 0
)

// Code is a raw numeric status as sent by the catalog server. Both JSON
// numbers and numeric strings are accepted; anything else decodes to 0,
// which falls through to the default mapping.
type Code int

// UnmarshalJSON implements json.Unmarshaler.
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = parseLeadingInt(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*c = codeUnparseable
		return nil
	}
	*c = Code(int(f))
	return nil
}

// parseLeadingInt reads the optionally signed integer prefix of s.
func parseLeadingInt(s string) Code {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return codeUnparseable
	}
	return Code(n)
}

// Season is a season entry of a TV media record.
type Season struct {
	SeasonNumber int   `json:"seasonNumber"`
	Status       *Code `json:"status,omitempty"`
}

// DownloadItem is one active transfer reported by the catalog server.
type DownloadItem struct {
	Title                   string  `json:"title,omitempty"`
	Size                    float64 `json:"size"`
	SizeLeft                float64 `json:"sizeLeft"`
	EstimatedCompletionTime string  `json:"estimatedCompletionTime,omitempty"`
	DownloadClient          string  `json:"downloadClient,omitempty"`
}

// Media is the media sub-object of a request or details record.
type Media struct {
	ID                  int             `json:"id,omitempty"`
	TMDBID              int             `json:"tmdbId,omitempty"`
	Status              *Code           `json:"status,omitempty"`
	MediaURL            string          `json:"mediaUrl,omitempty"`
	ServiceURL          string          `json:"serviceUrl,omitempty"`
	InProduction        *bool           `json:"inProduction,omitempty"`
	BelongsToCollection json.RawMessage `json:"belongsToCollection,omitempty"`
	Seasons             []Season        `json:"seasons,omitempty"`
	DownloadStatus      []DownloadItem  `json:"downloadStatus,omitempty"`

	// Fields holds every top-level field as decoded from JSON.
	Fields map[string]any `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Media) UnmarshalJSON(data []byte) error {
	type plain Media
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*m = Media(p)
	m.Fields = fields
	return nil
}

// Record is a raw catalog response: a request record, a details record with
// nested requests and mediaInfo, or anything in between.
type Record struct {
	ID                  int             `json:"id,omitempty"`
	TMDBID              int             `json:"tmdbId,omitempty"`
	Type                string          `json:"type,omitempty"`
	Title               string          `json:"title,omitempty"`
	Name                string          `json:"name,omitempty"`
	Status              *Code           `json:"status,omitempty"`
	Media               *Media          `json:"media,omitempty"`
	MediaInfo           *Media          `json:"mediaInfo,omitempty"`
	Requests            []Record        `json:"requests,omitempty"`
	InProduction        *bool           `json:"inProduction,omitempty"`
	BelongsToCollection json.RawMessage `json:"belongsToCollection,omitempty"`
	Seasons             []Season        `json:"seasons,omitempty"`

	// Fields holds every top-level field as decoded from JSON.
	Fields map[string]any `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*r = Record(p)
	r.Fields = fields
	return nil
}

// ParseRecord decodes a raw catalog JSON document.
func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// MediaTMDBID returns the catalog id of the record's media, if any.
func (r *Record) MediaTMDBID() int {
	if r.Media == nil {
		return 0
	}
	if r.Media.TMDBID != 0 {
		return r.Media.TMDBID
	}
	return r.Media.ID
}

func decodeFields(data []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// truthy mirrors the loose truthiness the catalog's optional fields are
// written with: null, false, 0, "" and missing all mean "no".
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
