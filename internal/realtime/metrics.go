package realtime

import (
	"log/slog"
	"sync"
)

// MetricsSink receives one Result per executed task. Sinks are
// observability only: nothing in the pipeline reads them back, and a
// misbehaving sink must never disturb the writer.
type MetricsSink interface {
	Report(Result)
}

// LogSink logs every result.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink logging at Info, with failure reasons.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Report(r Result) {
	if r.Failure == 0 {
		s.logger.Info("update applied", "feed", r.FeedID, "success", r.Success)
		return
	}
	s.logger.Info("update partially applied",
		"feed", r.FeedID, "success", r.Success, "failure", r.Failure, "reasons", r.Reasons)
}

// FeedCounters aggregates outcomes for one feed.
type FeedCounters struct {
	Batches int `json:"batches"`
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
}

// StatusSink aggregates per-feed counters for the status endpoint.
type StatusSink struct {
	mu      sync.Mutex
	perFeed map[string]FeedCounters
}

// NewStatusSink creates an empty aggregating sink.
func NewStatusSink() *StatusSink {
	return &StatusSink{perFeed: make(map[string]FeedCounters)}
}

func (s *StatusSink) Report(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.perFeed[r.FeedID]
	c.Batches++
	c.Applied += r.Success
	c.Failed += r.Failure
	s.perFeed[r.FeedID] = c
}

// Counters returns a copy of the per-feed aggregates.
func (s *StatusSink) Counters() map[string]FeedCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]FeedCounters, len(s.perFeed))
	for k, v := range s.perFeed {
		out[k] = v
	}
	return out
}

// MultiSink fans one result out to several sinks.
type MultiSink []MetricsSink

func (m MultiSink) Report(r Result) {
	for _, s := range m {
		s.Report(r)
	}
}
