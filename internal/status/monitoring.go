package status

import (
	"encoding/json"
	"fmt"

	"github.com/seerlink/seerlink/internal/media"
)

// monitorView is the subset of a record that monitoring detection reads.
type monitorView struct {
	inProduction bool
	inCollection bool
	seasons      []Season
}

// viewFor prefers the media sub-object, then mediaInfo, then the record itself.
func viewFor(r *Record) monitorView {
	switch {
	case r.Media != nil:
		return mediaView(r.Media.InProduction, r.Media.BelongsToCollection, r.Media.Seasons)
	case r.MediaInfo != nil:
		return mediaView(r.MediaInfo.InProduction, r.MediaInfo.BelongsToCollection, r.MediaInfo.Seasons)
	default:
		return mediaView(r.InProduction, r.BelongsToCollection, r.Seasons)
	}
}

func mediaView(inProduction *bool, collection json.RawMessage, seasons []Season) monitorView {
	return monitorView{
		inProduction: inProduction != nil && *inProduction,
		inCollection: truthy(collection),
		seasons:      seasons,
	}
}

// DetectMonitoring reports whether the catalog server is tracking future
// releases of the title. It returns nil when nothing is being tracked.
func DetectMonitoring(r *Record, mediaType media.Type) *Monitoring {
	if r == nil {
		return nil
	}
	v := viewFor(r)

	switch mediaType {
	case media.TypeTV:
		if v.inProduction {
			return &Monitoring{
				Type:      MonitoringFutureEpisodes,
				Message:   "Monitoring new episodes",
				Indicator: monitoringIndicator,
			}
		}
		incomplete := 0
		for _, s := range v.seasons {
			if s.Status == nil || *s.Status != CodeAvailable {
				incomplete++
			}
		}
		if incomplete > 0 {
			return &Monitoring{
				Type:      MonitoringFutureSeasons,
				Message:   fmt.Sprintf("Monitoring %d season(s)", incomplete),
				Indicator: monitoringIndicator,
			}
		}

	case media.TypeMovie:
		if v.inCollection && v.inProduction {
			return &Monitoring{
				Type:      MonitoringFutureCollection,
				Message:   "Monitoring collection",
				Indicator: monitoringIndicator,
			}
		}
	}

	return nil
}
