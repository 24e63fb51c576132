package status

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Alternate field names under which download details may appear.
var (
	progressFields = []string{"progress", "percentage", "downloadProgress", "completion", "percent"}
	speedFields    = []string{"speed", "downloadSpeed", "rate", "transferRate"}
	etaFields      = []string{"eta", "timeRemaining", "estimatedCompletion", "remainingTime"}
	clientFields   = []string{"downloadClient", "downloader", "client"}
)

type downloadInfo struct {
	progress *float64
	speed    string
	eta      string
	client   string
}

// scanDownload collects download details from each record in turn, then its
// media sub-object, then the media's active transfers. Earlier sources win.
func scanDownload(records ...*Record) downloadInfo {
	var (
		sources []map[string]any
		medias  []*Media
		seen    = make(map[*Record]bool, len(records))
	)
	for _, r := range records {
		if r == nil || seen[r] {
			continue
		}
		seen[r] = true
		sources = append(sources, r.Fields)
		if r.Media != nil {
			sources = append(sources, r.Media.Fields)
			medias = append(medias, r.Media)
		}
	}

	var d downloadInfo
	for _, fields := range sources {
		if d.progress == nil {
			if v, ok := lookupField(fields, progressFields); ok {
				d.progress = toPercent(v)
			}
		}
		if d.speed == "" {
			if v, ok := lookupField(fields, speedFields); ok {
				d.speed = stringify(v)
			}
		}
		if d.eta == "" {
			if v, ok := lookupField(fields, etaFields); ok {
				d.eta = stringify(v)
			}
		}
		if d.client == "" {
			if v, ok := lookupField(fields, clientFields); ok {
				d.client = stringify(v)
			}
		}
	}

	for _, m := range medias {
		if len(m.DownloadStatus) == 0 {
			continue
		}
		item := m.DownloadStatus[0]
		if d.progress == nil && item.Size > 0 {
			p := math.Round((item.Size - item.SizeLeft) / item.Size * 100)
			d.progress = &p
		}
		if d.eta == "" {
			d.eta = item.EstimatedCompletionTime
		}
		if d.client == "" {
			d.client = item.DownloadClient
		}
		break
	}

	return d
}

func lookupField(fields map[string]any, names []string) (any, bool) {
	for _, name := range names {
		if v, ok := fields[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// toPercent accepts 42, 42.5, "42" and "42%".
func toPercent(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func stringify(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
