package realtime

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Largest accepted stream frame. A frame above this is treated as a
// corrupt stream, not a message to buffer.
const maxFrameSize = 16 << 20

// StreamSource holds one long-lived HTTP connection open and reads
// pushed messages from it (the push/subscribe shape of the source
// boundary). Messages are varint-length-delimited on the wire. A
// dropped connection moves the source to Reconnecting and retries
// after the reconnect period; data already ingested stays published.
type StreamSource struct {
	sourceState
	cfg    SourceConfig
	client *http.Client
	logger *slog.Logger
}

// NewStreamSource creates a streaming source.
func NewStreamSource(cfg SourceConfig, logger *slog.Logger) *StreamSource {
	// No client timeout: the response body is a long-lived stream.
	// Cancellation comes from the caller's context.
	return &StreamSource{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger,
	}
}

func (s *StreamSource) FeedID() string { return s.cfg.FeedID }

// Start runs the connect/read loop until the context is cancelled.
func (s *StreamSource) Start(ctx context.Context, onMessage func(data []byte)) {
	s.setState(Connecting)

	// The initial timeout only bounds how long we wait to become
	// primed. Expiry marks the priming attempt failed for observers;
	// the connection itself keeps trying.
	primeTimer := time.AfterFunc(s.cfg.InitialTimeout, func() {
		if !s.IsPrimed() {
			s.logger.Warn("no initial data within timeout, feed not primed",
				"feed", s.cfg.FeedID, "timeout", s.cfg.InitialTimeout)
		}
	})
	defer primeTimer.Stop()

	for {
		err := s.stream(ctx, onMessage)
		if ctx.Err() != nil {
			s.logger.Info("stream source stopped", "feed", s.cfg.FeedID)
			return
		}
		s.logger.Warn("stream disconnected", "feed", s.cfg.FeedID, "error", err)
		s.setState(Reconnecting)

		timer := time.NewTimer(s.cfg.ReconnectPeriod)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("stream source stopped", "feed", s.cfg.FeedID)
			return
		case <-timer.C:
		}
	}
}

// stream opens the connection and delivers frames until it breaks.
func (s *StreamSource) stream(ctx context.Context, onMessage func(data []byte)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if !s.IsPrimed() {
		s.setState(Priming)
	}
	r := bufio.NewReader(resp.Body)
	for {
		data, err := readFrame(r)
		if err != nil {
			return err
		}
		onMessage(data)
		s.primed.Store(true)
		s.setState(Streaming)
	}
}

// readFrame reads one varint-length-delimited message.
func readFrame(r *bufio.Reader) ([]byte, error) {
	size, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
