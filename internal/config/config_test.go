package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TRANSITGRAPH_PORT", "")
	t.Setenv("TRANSITGRAPH_DB_PATH", "")
	t.Setenv("TRANSITGRAPH_FEED_ID", "")
	t.Setenv("TRANSITGRAPH_SERVICE_DAYS", "")
	t.Setenv("TRANSITGRAPH_FEEDS", "")

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "./transitgraph.db" {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.FeedID != "default" || cfg.ServiceDays != 3 {
		t.Errorf("FeedID = %s, ServiceDays = %d", cfg.FeedID, cfg.ServiceDays)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TRANSITGRAPH_PORT", "9999")
	t.Setenv("TRANSITGRAPH_FEED_ID", "metro")
	t.Setenv("TRANSITGRAPH_SERVICE_DAYS", "not a number")

	cfg := Load()
	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Port)
	}
	if cfg.FeedID != "metro" {
		t.Errorf("FeedID = %s, want metro", cfg.FeedID)
	}
	// Unparseable values fall back.
	if cfg.ServiceDays != 3 {
		t.Errorf("ServiceDays = %d, want 3", cfg.ServiceDays)
	}
}

func TestParseFeeds(t *testing.T) {
	data := []byte(`
feeds:
  - name: metro trip updates
    feedID: metro
    type: poll
    kind: trip-updates
    url: https://example.com/tripupdates.pb
    pollIntervalMS: 15000
  - name: metro stop patches
    feedID: metro
    type: stream
    kind: stop-patches
    url: https://example.com/patches
`)
	feeds, err := parseFeeds(data)
	if err != nil {
		t.Fatalf("parseFeeds: %v", err)
	}
	if len(feeds) != 2 {
		t.Fatalf("got %d feeds", len(feeds))
	}

	f := feeds[0]
	if f.FeedID != "metro" || f.Type != "poll" || f.Kind != "trip-updates" {
		t.Errorf("feed = %+v", f)
	}
	if f.PollInterval() != 15*time.Second {
		t.Errorf("PollInterval = %v", f.PollInterval())
	}
	// Unset intervals get the defaults.
	if f.ReconnectPeriod() != 30*time.Second || f.InitialTimeout() != 30*time.Second {
		t.Errorf("defaults = %v / %v", f.ReconnectPeriod(), f.InitialTimeout())
	}
	if feeds[1].PollInterval() != 60*time.Second {
		t.Errorf("default poll interval = %v", feeds[1].PollInterval())
	}
}

func TestParseFeedsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", `feeds: [`},
		{"missing url", `
feeds:
  - name: broken
    feedID: metro
    type: poll
    kind: trip-updates
`},
		{"unknown type", `
feeds:
  - name: broken
    feedID: metro
    type: carrier-pigeon
    kind: trip-updates
    url: https://example.com/feed
`},
		{"unknown kind", `
feeds:
  - name: broken
    feedID: metro
    type: poll
    kind: alerts
    url: https://example.com/feed
`},
		{"not a url", `
feeds:
  - name: broken
    feedID: metro
    type: poll
    kind: trip-updates
    url: not-a-url
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFeeds([]byte(strings.TrimSpace(tt.data))); err == nil {
				t.Error("expected error")
			}
		})
	}
}
