// Package search implements the per-round board and alight primitive
// used by the range-based transit search: given a reference time and a
// stop position inside a pattern, find the best concrete run to board
// or alight across the pattern's multi-day timetable view.
package search

import "transitgraph/internal/timetable"

// Kind selects one of the four search variants.
type Kind int

const (
	ScheduledBoard Kind = iota
	ScheduledAlight
	FrequencyBoard
	FrequencyAlight
)

// UnboundedTripIndex disables the trip index bound on a search. The
// frequency variants ignore the bound entirely: headway-based runs
// have no fixed trip index.
const UnboundedTripIndex = -1

// TripSearch finds the best run to board or alight. referenceTime is
// the earliest boarding time for board searches and the latest
// alighting time for alight searches, in the timetable view's
// absolute frame. "No feasible trip" is reported as ok=false, never
// as an error.
type TripSearch interface {
	Search(referenceTime, stopPos, tripIndexLimit int) (Event, bool)
}

// New builds the search variant for the given timetable view.
func New(kind Kind, tt *timetable.TripPatternForDates) TripSearch {
	switch kind {
	case ScheduledBoard:
		return &scheduledBoardSearch{timetable: tt}
	case ScheduledAlight:
		return &scheduledAlightSearch{timetable: tt}
	case FrequencyBoard:
		return &frequencyBoardSearch{timetable: tt}
	case FrequencyAlight:
		return &frequencyAlightSearch{timetable: tt}
	}
	panic("search: unknown kind")
}

// Event describes one matched boarding or alighting. Time is the
// resolved boarding (or alighting) time in the query's absolute frame;
// for frequency runs it is already pulled back (or forward) by the
// headway to reflect the worst-case wait, and Headway carries that
// slack (0 for exact-times and scheduled runs). The trip's stop times
// stay in the service date's local frame; Offset converts between the
// two. Events are immutable and consumed synchronously by the caller.
type Event struct {
	Timetable    *timetable.TripPatternForDates
	Trip         *timetable.TripTimes
	Pattern      *timetable.StopPattern
	StopPosition int
	Time         int
	Headway      int
	Offset       int
	ServiceDate  string
}
