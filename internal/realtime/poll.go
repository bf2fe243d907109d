package realtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// PollSource periodically fetches a complete feed snapshot over HTTP
// GET (the pull/poll shape of the source boundary). The first fetch is
// bounded by the initial timeout; when it fails, the feed simply stays
// unprimed and the loop retries after the reconnect period.
type PollSource struct {
	sourceState
	cfg    SourceConfig
	client *http.Client
	logger *slog.Logger
}

// NewPollSource creates a polling source.
func NewPollSource(cfg SourceConfig, logger *slog.Logger) *PollSource {
	return &PollSource{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

func (s *PollSource) FeedID() string { return s.cfg.FeedID }

// Start runs the fetch loop until the context is cancelled.
func (s *PollSource) Start(ctx context.Context, onMessage func(data []byte)) {
	s.setState(Connecting)

	initial, cancel := context.WithTimeout(ctx, s.cfg.InitialTimeout)
	data, err := s.fetch(initial)
	cancel()
	if err != nil {
		s.logger.Warn("initial fetch failed, feed not primed",
			"feed", s.cfg.FeedID, "error", err)
		s.setState(Reconnecting)
	} else {
		s.deliver(data, onMessage)
	}

	for {
		delay := s.cfg.PollInterval
		if s.State() == Reconnecting {
			delay = s.cfg.ReconnectPeriod
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("poll source stopped", "feed", s.cfg.FeedID)
			return
		case <-timer.C:
		}

		data, err := s.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("fetch failed", "feed", s.cfg.FeedID, "error", err)
			s.setState(Reconnecting)
			continue
		}
		s.deliver(data, onMessage)
	}
}

func (s *PollSource) deliver(data []byte, onMessage func([]byte)) {
	if !s.IsPrimed() {
		s.setState(Priming)
	}
	onMessage(data)
	s.primed.Store(true)
	s.setState(Streaming)
}

func (s *PollSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
