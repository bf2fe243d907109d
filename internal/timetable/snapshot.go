package timetable

import "sync/atomic"

// FeedScopedID qualifies an entity id with the feed it came from, so
// updates from independent feeds can't collide on bare GTFS ids.
type FeedScopedID struct {
	FeedID string
	ID     string
}

func (id FeedScopedID) String() string {
	return id.FeedID + ":" + id.ID
}

// Stop is a boardable location. StreetToStopTime is the access time
// (seconds) from the street network, patchable by realtime feeds.
type Stop struct {
	ID               FeedScopedID
	Name             string
	Lat, Lon         float64
	StreetToStopTime int
}

// tripRef locates a trip inside the snapshot for realtime resolution.
type tripRef struct {
	patternID string
	dateIndex int
}

// Snapshot is an immutable, fully consistent view of the timetable.
// Searches hold one snapshot for the duration of a query; the writer
// never edits a published snapshot, it builds and publishes a new one.
type Snapshot struct {
	patterns map[string]*TripPatternForDates
	stops    map[FeedScopedID]*Stop
	trips    map[FeedScopedID]tripRef
}

// Pattern looks up a multi-day pattern view by pattern id.
func (s *Snapshot) Pattern(id string) (*TripPatternForDates, bool) {
	p, ok := s.patterns[id]
	return p, ok
}

// Stop looks up a stop by feed-scoped id.
func (s *Snapshot) Stop(id FeedScopedID) (*Stop, bool) {
	st, ok := s.stops[id]
	return st, ok
}

// PatternIDs returns the ids of all patterns in the snapshot.
func (s *Snapshot) PatternIDs() []string {
	ids := make([]string, 0, len(s.patterns))
	for id := range s.patterns {
		ids = append(ids, id)
	}
	return ids
}

// NumPatterns returns the number of patterns in the snapshot.
func (s *Snapshot) NumPatterns() int { return len(s.patterns) }

// NumStops returns the number of stops in the snapshot.
func (s *Snapshot) NumStops() int { return len(s.stops) }

// Builder starts a copy-on-write delta on top of this snapshot. The
// entity maps are cloned up front; the payloads they point at are
// shared until a mutation replaces them.
func (s *Snapshot) Builder() *Builder {
	b := &Builder{
		patterns: make(map[string]*TripPatternForDates, len(s.patterns)),
		stops:    make(map[FeedScopedID]*Stop, len(s.stops)),
		trips:    make(map[FeedScopedID]tripRef, len(s.trips)),
	}
	for id, p := range s.patterns {
		b.patterns[id] = p
	}
	for id, st := range s.stops {
		b.stops[id] = st
	}
	for id, ref := range s.trips {
		b.trips[id] = ref
	}
	return b
}

// Builder accumulates mutations into the next snapshot. Only the
// graph writer uses a Builder, one task at a time.
type Builder struct {
	patterns map[string]*TripPatternForDates
	stops    map[FeedScopedID]*Stop
	trips    map[FeedScopedID]tripRef
}

// NewBuilder starts an empty builder, used at initial graph load.
func NewBuilder() *Builder {
	return &Builder{
		patterns: make(map[string]*TripPatternForDates),
		stops:    make(map[FeedScopedID]*Stop),
		trips:    make(map[FeedScopedID]tripRef),
	}
}

// PutStop inserts or replaces a stop.
func (b *Builder) PutStop(st *Stop) {
	b.stops[st.ID] = st
}

// Stop looks up a stop in the pending state.
func (b *Builder) Stop(id FeedScopedID) (*Stop, bool) {
	st, ok := b.stops[id]
	return st, ok
}

// PutPattern inserts or replaces a pattern view and indexes its trips
// under the given feed id. A trip running on several dates resolves to
// its earliest date instance.
func (b *Builder) PutPattern(feedID string, p *TripPatternForDates) {
	b.patterns[p.Pattern.ID] = p
	for i, pd := range p.Dates {
		for _, tt := range pd.Trips {
			b.indexTrip(FeedScopedID{FeedID: feedID, ID: tt.TripID}, p.Pattern.ID, i)
		}
		for _, f := range pd.Frequencies {
			b.indexTrip(FeedScopedID{FeedID: feedID, ID: f.Trip.TripID}, p.Pattern.ID, i)
		}
	}
}

func (b *Builder) indexTrip(id FeedScopedID, patternID string, dateIndex int) {
	if _, ok := b.trips[id]; !ok {
		b.trips[id] = tripRef{patternID: patternID, dateIndex: dateIndex}
	}
}

// Pattern looks up a pattern in the pending state.
func (b *Builder) Pattern(id string) (*TripPatternForDates, bool) {
	p, ok := b.patterns[id]
	return p, ok
}

// TripTimes resolves a feed-scoped trip id to its current scheduled
// stop times and the pattern they run on. Frequency representative
// trips do not resolve; their concrete runs only exist once a search
// materializes them.
func (b *Builder) TripTimes(id FeedScopedID) (*TripTimes, *StopPattern, bool) {
	ref, ok := b.trips[id]
	if !ok {
		return nil, nil, false
	}
	p := b.patterns[ref.patternID]
	for _, tt := range p.Dates[ref.dateIndex].Trips {
		if tt.TripID == id.ID {
			return tt, p.Pattern, true
		}
	}
	return nil, nil, false
}

// ReplaceTripTimes swaps in new stop times for a scheduled trip,
// rebuilding the affected date instance and pattern view around it.
// Returns false when the trip id resolves to nothing.
func (b *Builder) ReplaceTripTimes(id FeedScopedID, times *TripTimes) bool {
	ref, ok := b.trips[id]
	if !ok {
		return false
	}
	p := b.patterns[ref.patternID]
	pd, ok := p.Dates[ref.dateIndex].WithTripReplaced(id.ID, times)
	if !ok {
		return false
	}
	b.patterns[ref.patternID] = p.withDateReplaced(ref.dateIndex, pd)
	return true
}

// PatchStopAccessTime overrides a stop's street access time. Returns
// false when the stop id resolves to nothing.
func (b *Builder) PatchStopAccessTime(id FeedScopedID, seconds int) bool {
	st, ok := b.stops[id]
	if !ok {
		return false
	}
	patched := *st
	patched.StreetToStopTime = seconds
	b.stops[id] = &patched
	return true
}

// Build freezes the pending state into an immutable snapshot. The
// builder must not be used afterwards.
func (b *Builder) Build() *Snapshot {
	return &Snapshot{patterns: b.patterns, stops: b.stops, trips: b.trips}
}

// Timetable holds the currently published snapshot. Readers grab a
// snapshot with Snapshot() and never block; the writer publishes a
// replacement with a single atomic pointer swap.
type Timetable struct {
	current atomic.Pointer[Snapshot]
}

// New creates a timetable publishing the given initial snapshot.
func New(initial *Snapshot) *Timetable {
	t := &Timetable{}
	t.current.Store(initial)
	return t
}

// Snapshot returns the currently published snapshot.
func (t *Timetable) Snapshot() *Snapshot {
	return t.current.Load()
}

// Publish atomically swaps in a new snapshot. Only the graph writer
// may call this.
func (t *Timetable) Publish(s *Snapshot) {
	t.current.Store(s)
}
