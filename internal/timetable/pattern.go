package timetable

import "sort"

// StopPattern is a line's ordered stop sequence. All trips sharing a
// pattern visit exactly these stops in this order.
type StopPattern struct {
	ID      string
	RouteID string
	StopIDs []string
}

// NumStops returns the number of stops in the pattern.
func (p *StopPattern) NumStops() int {
	return len(p.StopIDs)
}

// TripPatternForDate is one pattern instance on one service date:
// the scheduled runs plus any frequency entries active that day.
// Instances are immutable once published; a realtime update builds a
// replacement rather than editing in place.
type TripPatternForDate struct {
	Pattern     *StopPattern
	ServiceDate string // YYYY-MM-DD
	Trips       []*TripTimes
	Frequencies []*FrequencyEntry
}

// NewTripPatternForDate builds a pattern instance, sorting the
// scheduled trips by first-stop departure as searches require.
func NewTripPatternForDate(pattern *StopPattern, serviceDate string, trips []*TripTimes, frequencies []*FrequencyEntry) *TripPatternForDate {
	sorted := make([]*TripTimes, len(trips))
	copy(sorted, trips)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Departures[0] < sorted[j].Departures[0]
	})
	return &TripPatternForDate{
		Pattern:     pattern,
		ServiceDate: serviceDate,
		Trips:       sorted,
		Frequencies: frequencies,
	}
}

// WithTripReplaced returns a copy of this instance with the run for
// tripID swapped out, re-sorted by first-stop departure. ok is false
// when the trip is not part of this instance.
func (pd *TripPatternForDate) WithTripReplaced(tripID string, times *TripTimes) (*TripPatternForDate, bool) {
	idx := -1
	for i, tt := range pd.Trips {
		if tt.TripID == tripID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	trips := make([]*TripTimes, len(pd.Trips))
	copy(trips, pd.Trips)
	trips[idx] = times
	return NewTripPatternForDate(pd.Pattern, pd.ServiceDate, trips, pd.Frequencies), true
}
