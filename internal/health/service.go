// Package health tracks the last known state of the services seerlink
// depends on. All state is in memory and resets on restart.
package health

import (
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Service manages the health state of all tracked items.
type Service struct {
	items  map[HealthCategory]map[string]*HealthItem
	mu     sync.RWMutex
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a new health service.
func NewService(logger zerolog.Logger) *Service {
	s := &Service{
		items:  make(map[HealthCategory]map[string]*HealthItem),
		now:    time.Now,
		logger: logger.With().Str("component", "health").Logger(),
	}
	for _, cat := range AllCategories() {
		s.items[cat] = make(map[string]*HealthItem)
	}
	return s
}

// RegisterItem adds an item with OK status. Re-registering keeps its state.
func (s *Service) RegisterItem(category HealthCategory, id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[category][id]; exists {
		return
	}
	s.items[category][id] = &HealthItem{
		ID:       id,
		Category: category,
		Name:     name,
		Status:   StatusOK,
	}

	s.logger.Debug().
		Str("category", string(category)).
		Str("id", id).
		Msg("Registered health item")
}

// SetError marks an item failed.
func (s *Service) SetError(category HealthCategory, id, message string) {
	s.setStatus(category, id, StatusError, message, nil)
}

// SetWarning marks an item degraded.
func (s *Service) SetWarning(category HealthCategory, id, message string) {
	s.setStatus(category, id, StatusWarning, message, nil)
}

// SetOK marks an item healthy and replaces its details.
func (s *Service) SetOK(category HealthCategory, id string, details map[string]string) {
	s.setStatus(category, id, StatusOK, "", details)
}

func (s *Service) setStatus(category HealthCategory, id string, status HealthStatus, message string, details map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[category][id]
	if !exists {
		s.logger.Warn().
			Str("category", string(category)).
			Str("id", id).
			Msg("Attempted to update status for unregistered item")
		return
	}

	now := s.now()
	item.CheckedAt = &now
	if details != nil {
		item.Details = maps.Clone(details)
	}

	if item.Status == status && item.Message == message {
		return
	}

	oldStatus := item.Status
	item.Status = status
	item.Message = message
	if status != StatusOK {
		item.Timestamp = &now
	} else {
		item.Timestamp = nil
	}

	event := s.logger.Info()
	if status == StatusError {
		event = s.logger.Warn()
	}
	event.
		Str("category", string(category)).
		Str("id", id).
		Str("oldStatus", string(oldStatus)).
		Str("newStatus", string(status)).
		Str("message", message).
		Msg("Health status changed")
}

// GetItem returns a copy of an item, or nil if it is not registered.
func (s *Service) GetItem(category HealthCategory, id string) *HealthItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[category][id]
	if !exists {
		return nil
	}
	cp := *item
	return &cp
}

// IsHealthy reports whether a registered item is OK.
func (s *Service) IsHealthy(category HealthCategory, id string) bool {
	item := s.GetItem(category, id)
	return item != nil && item.Status == StatusOK
}

// Snapshot returns every item with the worst status as the overall status.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Status: StatusOK, Items: []HealthItem{}}
	for _, cat := range AllCategories() {
		ids := make([]string, 0, len(s.items[cat]))
		for id := range s.items[cat] {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			item := *s.items[cat][id]
			snap.Items = append(snap.Items, item)
			snap.Status = worse(snap.Status, item.Status)
		}
	}
	return snap
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{StatusOK: 0, StatusWarning: 1, StatusError: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
