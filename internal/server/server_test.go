package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"transitgraph/internal/realtime"
	"transitgraph/internal/timetable"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubSource reports a fixed state without ever connecting anywhere.
type stubSource struct {
	feedID string
	state  realtime.State
	primed bool
}

func (s *stubSource) Start(ctx context.Context, _ func([]byte)) { <-ctx.Done() }
func (s *stubSource) IsPrimed() bool                            { return s.primed }
func (s *stubSource) FeedID() string                            { return s.feedID }
func (s *stubSource) State() realtime.State                     { return s.state }

func testServer(t *testing.T, sources ...*stubSource) (*Server, *realtime.StatusSink) {
	t.Helper()
	b := timetable.NewBuilder()
	b.PutStop(&timetable.Stop{ID: timetable.FeedScopedID{FeedID: "test", ID: "s1"}})
	tt := timetable.New(b.Build())

	sink := realtime.NewStatusSink()
	writer := realtime.NewWriter(tt, sink, testLogger())
	manager := realtime.NewManager(writer, testLogger())
	for _, src := range sources {
		manager.AddFeed(src, realtime.NewStopPatchHandler(src.feedID, testLogger()))
	}
	return New(0, tt, manager, sink, testLogger()), sink
}

func TestHealthz(t *testing.T) {
	t.Run("all primed", func(t *testing.T) {
		srv, _ := testServer(t,
			&stubSource{feedID: "a", state: realtime.Streaming, primed: true},
			&stubSource{feedID: "b", state: realtime.Reconnecting, primed: true},
		)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "ok" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("one unprimed", func(t *testing.T) {
		srv, _ := testServer(t,
			&stubSource{feedID: "a", state: realtime.Streaming, primed: true},
			&stubSource{feedID: "b", state: realtime.Priming},
		)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("no feeds", func(t *testing.T) {
		srv, _ := testServer(t)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestStatus(t *testing.T) {
	srv, sink := testServer(t,
		&stubSource{feedID: "a", state: realtime.Streaming, primed: true},
	)
	r := realtime.Result{FeedID: "a", Success: 4, Failure: 1}
	sink.Report(r)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}

	var resp struct {
		Feeds []realtime.FeedStatus `json:"feeds"`
		Updates map[string]struct {
			Batches int `json:"batches"`
			Applied int `json:"applied"`
			Failed  int `json:"failed"`
		} `json:"updates"`
		Patterns int `json:"patterns"`
		Stops    int `json:"stops"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Feeds) != 1 || resp.Feeds[0].State != "streaming" || !resp.Feeds[0].Primed {
		t.Errorf("feeds = %+v", resp.Feeds)
	}
	if u := resp.Updates["a"]; u.Batches != 1 || u.Applied != 4 || u.Failed != 1 {
		t.Errorf("updates = %+v", resp.Updates)
	}
	if resp.Stops != 1 || resp.Patterns != 0 {
		t.Errorf("patterns/stops = %d/%d", resp.Patterns, resp.Stops)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
