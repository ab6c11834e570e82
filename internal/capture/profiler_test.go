package capture

import (
	"strings"
	"testing"

	"github.com/sqlscope/sqlscope/internal/model"
)

func TestConfigValidateDefaults(t *testing.T) {
	cfg := Config{Host: "db1"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Driver != "mssql" || cfg.Port != 1433 {
		t.Errorf("expected mssql:1433 defaults, got %s:%d", cfg.Driver, cfg.Port)
	}

	cfg = Config{Host: "db2", Driver: "postgres"}
	cfg.Validate()
	if cfg.Port != 5432 {
		t.Errorf("expected postgres default port 5432, got %d", cfg.Port)
	}
}

func TestConfigValidateRequiresHost(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a config without a host")
	}
}

func TestNewDriver(t *testing.T) {
	if _, err := NewDriver("mssql"); err != nil {
		t.Errorf("expected mssql driver, got %v", err)
	}
	if _, err := NewDriver(""); err != nil {
		t.Errorf("expected empty driver name to default, got %v", err)
	}
	if _, err := NewDriver("postgres"); err != nil {
		t.Errorf("expected postgres driver, got %v", err)
	}
	if _, err := NewDriver("oracle"); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported driver error, got %v", err)
	}
}

func TestStampEventsAssignsIdentity(t *testing.T) {
	events := []model.QueryEvent{
		{StartTime: "2024-01-01T10:00:00.100"},
		{StartTime: "2024-01-01T10:00:00.200"},
	}
	mark := stampEvents(events, epochWatermark, "2024-01-01T10:00:01Z")

	if mark != "2024-01-01T10:00:00.200" {
		t.Errorf("expected watermark to advance to the newest start time, got %q", mark)
	}
	seen := map[string]bool{}
	for _, e := range events {
		if e.ID == "" {
			t.Fatal("expected every event to get an id")
		}
		if seen[e.ID] {
			t.Fatal("expected unique event ids")
		}
		seen[e.ID] = true
		if e.EventStatus != "completed" {
			t.Errorf("expected status completed, got %q", e.EventStatus)
		}
		if e.CapturedAt != "2024-01-01T10:00:01Z" {
			t.Errorf("expected captured_at to be stamped, got %q", e.CapturedAt)
		}
	}
}

func TestStampEventsKeepsNewerWatermark(t *testing.T) {
	events := []model.QueryEvent{{StartTime: "2024-01-01T09:00:00"}}
	mark := stampEvents(events, "2024-01-01T10:00:00", "now")
	if mark != "2024-01-01T10:00:00" {
		t.Errorf("expected older events not to move the watermark back, got %q", mark)
	}
}
