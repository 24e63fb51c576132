package history

// EventType is the outcome of a request submission.
type EventType string

const (
	EventTypeSubmitted EventType = "submitted"
	EventTypeFailed    EventType = "failed"
)

// Entry is one stored request submission.
type Entry struct {
	ID        int64     `json:"id"`
	EventType EventType `json:"eventType"`
	MediaType string    `json:"mediaType"`
	TMDBID    int       `json:"tmdbId,omitempty"`
	RequestID int       `json:"requestId,omitempty"`
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// CreateInput contains fields for recording a submission.
type CreateInput struct {
	EventType EventType
	MediaType string
	TMDBID    int
	RequestID int
	Title     string
	Source    string
	Message   string
}

// ListOptions contains options for listing history.
type ListOptions struct {
	EventType string
	MediaType string
	Page      int
	PageSize  int
}

// ListResponse contains paginated history results.
type ListResponse struct {
	Items      []*Entry `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalCount int64    `json:"totalCount"`
	TotalPages int      `json:"totalPages"`
}
