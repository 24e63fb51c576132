package status

// State is the canonical status shown by the widget.
type State string

const (
	StateAvailable      State = "available"
	StatePending        State = "pending"
	StateDownloading    State = "downloading"
	StatePartial        State = "partial"
	StateAvailableWatch State = "available_watch"
	StateUnknown        State = "unknown"
)

// Button classes understood by the widget stylesheet.
const (
	ClassRequest     = "request"
	ClassPending     = "pending"
	ClassDownloading = "downloading"
	ClassPartial     = "partial"
	ClassAvailable   = "available"
	ClassWatch       = "watch"
)

const (
	TextRequest     = "Request on Jellyseerr"
	TextPending     = "Request Pending"
	TextDownloading = "Downloading..."
	TextPartial     = "Partially Available"
	TextAvailable   = "Available"
	TextWatch       = "Watch on Jellyfin"

	MessageNotRequested = "Not requested"
	MessageReady        = "Ready to request"
	MessageUnclear      = "Status unclear"
	MessagePending      = "Request monitoring"
	MessageDownloading  = "Download in progress"
	MessagePartial      = "Partially ready"
	MessageOnJellyfin   = "Available on Jellyfin"

	UnknownTitle = "Unknown Title"
)

// MonitoringType names what the catalog server keeps watching for.
type MonitoringType string

const (
	MonitoringFutureEpisodes   MonitoringType = "future_episodes"
	MonitoringFutureSeasons    MonitoringType = "future_seasons"
	MonitoringFutureCollection MonitoringType = "future_collection"
)

const monitoringIndicator = "📡"

// Monitoring describes future-release tracking of a title.
type Monitoring struct {
	Type      MonitoringType `json:"type"`
	Message   string         `json:"message"`
	Indicator string         `json:"indicator"`
}

// Canonical is the normalized status consumed by the widget.
type Canonical struct {
	Status         State       `json:"status"`
	Message        string      `json:"message"`
	ButtonText     string      `json:"buttonText"`
	ButtonClass    string      `json:"buttonClass"`
	WatchURL       string      `json:"watchUrl,omitempty"`
	ServiceURL     string      `json:"serviceUrl,omitempty"`
	TMDBID         int         `json:"tmdbId,omitempty"`
	Title          string      `json:"title,omitempty"`
	Progress       *float64    `json:"progress,omitempty"`
	DownloadSpeed  string      `json:"downloadSpeed,omitempty"`
	ETA            string      `json:"eta,omitempty"`
	DownloadClient string      `json:"downloadClient,omitempty"`
	Monitoring     *Monitoring `json:"monitoring,omitempty"`
}

// ReadyToRequest is the status for titles the catalog has no record of.
func ReadyToRequest() Canonical {
	return Canonical{
		Status:      StateAvailable,
		Message:     MessageReady,
		ButtonText:  TextRequest,
		ButtonClass: ClassRequest,
	}
}

// NotRequested is the status for catalog records that carry no status code.
func NotRequested() Canonical {
	return Canonical{
		Status:      StateAvailable,
		Message:     MessageNotRequested,
		ButtonText:  TextRequest,
		ButtonClass: ClassRequest,
	}
}
