package realtime

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Feed couples one source with the handler for its message format.
type Feed struct {
	Source  Source
	Handler Handler
}

// FeedStatus is a point-in-time view of one source for observability.
type FeedStatus struct {
	FeedID string `json:"feed_id"`
	State  string `json:"state"`
	Primed bool   `json:"primed"`
}

// Manager runs any number of independent feeds against one writer.
// Each source funnels its messages through its handler into the
// serialized writer queue; the manager itself holds no timetable
// state.
type Manager struct {
	feeds  []Feed
	writer *Writer
	logger *slog.Logger
}

// NewManager creates a manager for the given writer.
func NewManager(writer *Writer, logger *slog.Logger) *Manager {
	return &Manager{writer: writer, logger: logger}
}

// AddFeed registers a source/handler pair. Not safe to call after Run.
func (m *Manager) AddFeed(src Source, h Handler) {
	m.feeds = append(m.feeds, Feed{Source: src, Handler: h})
}

// Run starts the writer and all sources and blocks until the context
// is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m.writer.Run(ctx)
		return nil
	})

	for _, f := range m.feeds {
		f := f
		g.Go(func() error {
			m.logger.Info("starting feed", "feed", f.Source.FeedID())
			f.Source.Start(ctx, func(data []byte) {
				task, ok := f.Handler.HandleMessage(data)
				if !ok {
					return
				}
				m.writer.Enqueue(task)
			})
			return nil
		})
	}

	return g.Wait()
}

// Status reports every feed's current state.
func (m *Manager) Status() []FeedStatus {
	out := make([]FeedStatus, 0, len(m.feeds))
	for _, f := range m.feeds {
		out = append(out, FeedStatus{
			FeedID: f.Source.FeedID(),
			State:  f.Source.State().String(),
			Primed: f.Source.IsPrimed(),
		})
	}
	return out
}
