package realtime

import (
	"context"
	"sync/atomic"
	"time"
)

// State of a realtime source's upstream connection.
type State int32

const (
	// Connecting: first connection attempt in progress.
	Connecting State = iota
	// Priming: connected, waiting for the first complete data load.
	Priming
	// Streaming: delivering messages.
	Streaming
	// Reconnecting: connection lost, retrying after the configured
	// reconnect period. Last-known-good data stays published.
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Priming:
		return "priming"
	case Streaming:
		return "streaming"
	case Reconnecting:
		return "reconnecting"
	}
	return "unknown"
}

// Source produces raw update messages from one upstream feed. Start
// blocks until the context is cancelled and never returns an error:
// connectivity failures are absorbed into the reconnect loop and only
// surface through State and IsPrimed.
type Source interface {
	Start(ctx context.Context, onMessage func(data []byte))
	// IsPrimed reports whether at least one full initial load has been
	// ingested. It stays true through later reconnect cycles.
	IsPrimed() bool
	FeedID() string
	State() State
}

// SourceConfig is a source's config identity.
type SourceConfig struct {
	FeedID          string
	URL             string
	PollInterval    time.Duration
	ReconnectPeriod time.Duration
	InitialTimeout  time.Duration
}

// sourceState is the shared primed/state bookkeeping for sources.
type sourceState struct {
	state  atomic.Int32
	primed atomic.Bool
}

func (s *sourceState) setState(st State) { s.state.Store(int32(st)) }

func (s *sourceState) State() State { return State(s.state.Load()) }

func (s *sourceState) IsPrimed() bool { return s.primed.Load() }
