package health

import (
	"encoding/json"
	"time"
)

// HealthStatus represents the health state of an item.
type HealthStatus string

const (
	StatusOK      HealthStatus = "ok"
	StatusWarning HealthStatus = "warning"
	StatusError   HealthStatus = "error"
)

// HealthCategory groups tracked items.
type HealthCategory string

const (
	CategoryJellyseerr HealthCategory = "jellyseerr"
	CategoryStorage    HealthCategory = "storage"
)

// AllCategories returns all health categories in display order.
func AllCategories() []HealthCategory {
	return []HealthCategory{CategoryJellyseerr, CategoryStorage}
}

// HealthItem represents a single health-tracked item.
type HealthItem struct {
	ID        string            `json:"id"`
	Category  HealthCategory    `json:"category"`
	Name      string            `json:"name"`
	Status    HealthStatus      `json:"status"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	CheckedAt *time.Time        `json:"checkedAt,omitempty"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
}

// MarshalJSON omits the failure timestamp and message for OK items.
func (h HealthItem) MarshalJSON() ([]byte, error) {
	type Alias HealthItem
	alias := Alias(h)

	if h.Status == StatusOK {
		alias.Timestamp = nil
		alias.Message = ""
	}

	return json.Marshal(alias)
}

// Snapshot is the overall health served from /health.
type Snapshot struct {
	Status HealthStatus `json:"status"`
	Items  []HealthItem `json:"items"`
}

// HasIssues returns true if any item is not OK.
func (s Snapshot) HasIssues() bool {
	return s.Status != StatusOK
}
