package realtime

import (
	"transitgraph/internal/timetable"
)

// Task is a unit of work that mutates the shared timetable. Tasks are
// created by a feed handler, owned by the writer queue until executed,
// then discarded. Apply runs against the builder for the next
// snapshot and must resolve entities per-entity best effort: an
// unresolvable id is counted and skipped, never aborts the batch.
type Task interface {
	FeedID() string
	Apply(b *timetable.Builder) Result
}

// StopPatch overrides one stop's street access time.
type StopPatch struct {
	StopID           string `json:"stop_id"`
	StreetToStopTime int    `json:"street_to_stop_time"`
}

// StopPatchTask applies a batch of per-stop attribute patches keyed by
// feed-scoped stop id.
type StopPatchTask struct {
	feedID  string
	patches []StopPatch
}

// NewStopPatchTask builds a stop patch task for one feed's batch.
func NewStopPatchTask(feedID string, patches []StopPatch) *StopPatchTask {
	return &StopPatchTask{feedID: feedID, patches: patches}
}

func (t *StopPatchTask) FeedID() string { return t.feedID }

func (t *StopPatchTask) Apply(b *timetable.Builder) Result {
	res := newResult(t.feedID)
	for _, p := range t.patches {
		id := timetable.FeedScopedID{FeedID: t.feedID, ID: p.StopID}
		if b.PatchStopAccessTime(id, p.StreetToStopTime) {
			res.ok()
		} else {
			res.fail("stop not found")
		}
	}
	return res
}

// StopTimeUpdate revises the times at one stop of a trip. Delays are
// seconds relative to the published schedule. A stop is addressed by
// position in the pattern when the feed provided one, by stop id
// otherwise.
type StopTimeUpdate struct {
	StopID         string
	StopPosition   int
	HasPosition    bool
	ArrivalDelay   int
	HasArrival     bool
	DepartureDelay int
	HasDeparture   bool
}

// TripUpdate carries the revised stop times for one trip.
type TripUpdate struct {
	TripID          string
	StopTimeUpdates []StopTimeUpdate
}

// TripUpdateTask rewrites the stop times of a batch of trips. Each
// trip's current times are read at execution time, so a task enqueued
// after another observes that task's changes.
type TripUpdateTask struct {
	feedID  string
	updates []TripUpdate
}

// NewTripUpdateTask builds a trip update task for one feed's batch.
func NewTripUpdateTask(feedID string, updates []TripUpdate) *TripUpdateTask {
	return &TripUpdateTask{feedID: feedID, updates: updates}
}

func (t *TripUpdateTask) FeedID() string { return t.feedID }

func (t *TripUpdateTask) Apply(b *timetable.Builder) Result {
	res := newResult(t.feedID)
	for _, u := range t.updates {
		id := timetable.FeedScopedID{FeedID: t.feedID, ID: u.TripID}
		current, pattern, ok := b.TripTimes(id)
		if !ok {
			res.fail("trip not found")
			continue
		}
		revised, ok := revisedTripTimes(current, pattern, u.StopTimeUpdates)
		if !ok {
			res.fail("no resolvable stop time updates")
			continue
		}
		if b.ReplaceTripTimes(id, revised) {
			res.ok()
		} else {
			res.fail("trip not found")
		}
	}
	return res
}

// revisedTripTimes applies per-stop delays to a trip's current times.
// A delay holds from its stop onward until the next update revises it,
// matching the GTFS-RT propagation rule. Stops that resolve to no
// pattern position are skipped; ok is false when none resolve.
func revisedTripTimes(tt *timetable.TripTimes, pattern *timetable.StopPattern, updates []StopTimeUpdate) (*timetable.TripTimes, bool) {
	byPos := make(map[int]StopTimeUpdate)
	for _, u := range updates {
		pos := -1
		if u.HasPosition {
			pos = u.StopPosition
		} else if u.StopID != "" {
			for i, sid := range pattern.StopIDs {
				if sid == u.StopID {
					pos = i
					break
				}
			}
		}
		if pos < 0 || pos >= tt.NumStops() {
			continue
		}
		byPos[pos] = u
	}
	if len(byPos) == 0 {
		return nil, false
	}

	arrivals := make([]int, tt.NumStops())
	departures := make([]int, tt.NumStops())
	arrDelay, depDelay := 0, 0
	active := false
	for pos := 0; pos < tt.NumStops(); pos++ {
		if u, ok := byPos[pos]; ok {
			active = true
			if u.HasArrival {
				arrDelay = u.ArrivalDelay
			}
			switch {
			case u.HasDeparture:
				depDelay = u.DepartureDelay
			case u.HasArrival:
				depDelay = u.ArrivalDelay
			}
		}
		arrivals[pos] = tt.Arrival(pos)
		departures[pos] = tt.Departure(pos)
		if active {
			arrivals[pos] += arrDelay
			departures[pos] += depDelay
		}
	}
	revised, err := timetable.NewTripTimes(tt.TripID, arrivals, departures)
	if err != nil {
		return nil, false
	}
	return revised, true
}
