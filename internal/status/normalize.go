package status

import (
	"fmt"
	"strconv"

	"github.com/seerlink/seerlink/internal/media"
)

// Normalize converts a raw catalog record into the canonical status.
// A nil record means the catalog does not know the title.
func Normalize(r *Record, mediaType media.Type) Canonical {
	if r == nil {
		return ReadyToRequest()
	}

	src := Classify(r)
	if !src.HasCode {
		return NotRequested()
	}

	result := Canonical{
		TMDBID:     recordTMDBID(r, src.Shape),
		Title:      recordTitle(r),
		ServiceURL: src.ServiceURL,
	}

	switch src.Code {
	case CodeUnknown:
		result.Status = StateUnknown
		result.Message = MessageUnclear
		result.ButtonText = TextRequest
		result.ButtonClass = ClassRequest

	case CodePending:
		result.Status = StatePending
		result.Message = MessagePending
		result.ButtonText = TextPending
		result.ButtonClass = ClassPending

	case CodeProcessing:
		result.Status = StateDownloading
		result.Message = MessageDownloading
		result.ButtonText = TextDownloading
		result.ButtonClass = ClassDownloading
		applyDownload(&result, scanDownload(r, statusRecord(r, src.Shape)))

	case CodePartial:
		result.Status = StatePartial
		result.Message = MessagePartial
		result.ButtonText = TextPartial
		result.ButtonClass = ClassPartial
		promoteToWatch(&result, src.MediaURL)

	case CodeAvailable:
		result.Status = StateAvailableWatch
		result.Message = MessageOnJellyfin
		result.ButtonText = TextAvailable
		result.ButtonClass = ClassAvailable
		promoteToWatch(&result, src.MediaURL)

	default:
		result.Status = StateAvailable
		result.Message = MessageReady
		result.ButtonText = TextRequest
		result.ButtonClass = ClassRequest
	}

	result.Monitoring = DetectMonitoring(r, mediaType)
	return result
}

// promoteToWatch turns the button into a watch link when a playable URL exists.
func promoteToWatch(c *Canonical, mediaURL string) {
	if mediaURL == "" {
		return
	}
	c.Message = MessageOnJellyfin
	c.ButtonText = TextWatch
	c.ButtonClass = ClassWatch
	c.WatchURL = mediaURL
}

func applyDownload(c *Canonical, d downloadInfo) {
	c.DownloadSpeed = d.speed
	c.ETA = d.eta
	c.DownloadClient = d.client
	if d.progress == nil {
		return
	}
	c.Progress = d.progress
	pct := formatPercent(*d.progress)
	c.Message = fmt.Sprintf("%s (%s%%)", MessageDownloading, pct)
	c.ButtonText = fmt.Sprintf("Downloading %s%%", pct)
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// statusRecord returns the record that supplied the status code.
func statusRecord(r *Record, shape Shape) *Record {
	if shape == ShapeRequestList {
		return &r.Requests[0]
	}
	return r
}

// recordTMDBID picks the catalog id. A request record's own id is the
// request id, so it is never used for that shape.
func recordTMDBID(r *Record, shape Shape) int {
	switch {
	case r.TMDBID != 0:
		return r.TMDBID
	case r.MediaTMDBID() != 0:
		return r.MediaTMDBID()
	case r.MediaInfo != nil && r.MediaInfo.TMDBID != 0:
		return r.MediaInfo.TMDBID
	case shape != ShapeRequest:
		return r.ID
	}
	return 0
}

func recordTitle(r *Record) string {
	if r.Name != "" {
		return r.Name
	}
	if r.Title != "" {
		return r.Title
	}
	return UnknownTitle
}
