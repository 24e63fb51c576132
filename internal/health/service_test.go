package health

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestService_StatusTransitions(t *testing.T) {
	s := NewService(zerolog.Nop())
	s.RegisterItem(CategoryJellyseerr, "connection", "Jellyseerr")

	if !s.IsHealthy(CategoryJellyseerr, "connection") {
		t.Fatal("new item should be healthy")
	}

	s.SetError(CategoryJellyseerr, "connection", "connection refused")
	item := s.GetItem(CategoryJellyseerr, "connection")
	if item.Status != StatusError || item.Message != "connection refused" {
		t.Errorf("after SetError got %+v", item)
	}
	if item.Timestamp == nil || item.CheckedAt == nil {
		t.Error("SetError should stamp timestamp and checkedAt")
	}

	s.SetOK(CategoryJellyseerr, "connection", map[string]string{"user": "admin"})
	item = s.GetItem(CategoryJellyseerr, "connection")
	if item.Status != StatusOK || item.Timestamp != nil {
		t.Errorf("after SetOK got %+v", item)
	}
	if item.Details["user"] != "admin" {
		t.Errorf("details = %v, want user admin", item.Details)
	}
}

func TestService_UnregisteredItemIgnored(t *testing.T) {
	s := NewService(zerolog.Nop())
	s.SetError(CategoryStorage, "database", "locked")
	if s.GetItem(CategoryStorage, "database") != nil {
		t.Error("unregistered item should not be created")
	}
	if s.IsHealthy(CategoryStorage, "database") {
		t.Error("unregistered item should not report healthy")
	}
}

func TestService_Snapshot(t *testing.T) {
	s := NewService(zerolog.Nop())
	if snap := s.Snapshot(); snap.Status != StatusOK || len(snap.Items) != 0 {
		t.Fatalf("empty snapshot = %+v", snap)
	}

	s.RegisterItem(CategoryJellyseerr, "connection", "Jellyseerr")
	s.RegisterItem(CategoryStorage, "database", "Request history")
	s.SetWarning(CategoryStorage, "database", "slow")

	snap := s.Snapshot()
	if snap.Status != StatusWarning || !snap.HasIssues() {
		t.Errorf("snapshot status = %s, want warning", snap.Status)
	}
	if len(snap.Items) != 2 || snap.Items[0].Category != CategoryJellyseerr {
		t.Errorf("snapshot items = %+v", snap.Items)
	}

	s.SetError(CategoryJellyseerr, "connection", "down")
	if got := s.Snapshot().Status; got != StatusError {
		t.Errorf("snapshot status = %s, want error", got)
	}
}

func TestHealthItem_MarshalOmitsMessageWhenOK(t *testing.T) {
	data, err := json.Marshal(HealthItem{ID: "x", Status: StatusOK, Message: "stale"})
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if _, ok := out["message"]; ok {
		t.Errorf("message should be omitted for ok items: %s", data)
	}
}
