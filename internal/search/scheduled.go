package search

import (
	"sort"

	"transitgraph/internal/timetable"
)

// The scheduled variants binary-search each date's trip list, which is
// sorted by first-stop departure. Trips within a pattern are assumed
// not to overtake each other, so the order holds at every stop
// position. Trip index bounds apply to the flattened enumeration
// across dates: a board search only considers indices below the
// limit, an alight search only indices above it.

type scheduledBoardSearch struct {
	timetable *timetable.TripPatternForDates
}

func (s *scheduledBoardSearch) Search(earliestBoardTime, stopPos, tripIndexLimit int) (Event, bool) {
	base := 0
	for i, pd := range s.timetable.Dates {
		offset := s.timetable.Offsets[i]
		trips := pd.Trips

		t := earliestBoardTime - offset
		j := sort.Search(len(trips), func(k int) bool {
			return trips[k].Departure(stopPos) >= t
		})
		if j < len(trips) {
			if tripIndexLimit != UnboundedTripIndex && base+j >= tripIndexLimit {
				// Every remaining candidate has a larger index still.
				return Event{}, false
			}
			return Event{
				Timetable:    s.timetable,
				Trip:         trips[j],
				Pattern:      pd.Pattern,
				StopPosition: stopPos,
				Time:         trips[j].Departure(stopPos) + offset,
				Headway:      0,
				Offset:       offset,
				ServiceDate:  pd.ServiceDate,
			}, true
		}
		base += len(trips)
	}
	return Event{}, false
}

type scheduledAlightSearch struct {
	timetable *timetable.TripPatternForDates
}

func (s *scheduledAlightSearch) Search(latestAlightTime, stopPos, tripIndexLimit int) (Event, bool) {
	// Flattened index of each date's first trip.
	bases := make([]int, s.timetable.NumDates())
	total := 0
	for i, pd := range s.timetable.Dates {
		bases[i] = total
		total += len(pd.Trips)
	}

	for i := s.timetable.NumDates() - 1; i >= 0; i-- {
		pd := s.timetable.Dates[i]
		offset := s.timetable.Offsets[i]
		trips := pd.Trips

		t := latestAlightTime - offset
		j := sort.Search(len(trips), func(k int) bool {
			return trips[k].Arrival(stopPos) > t
		}) - 1
		if j >= 0 {
			if tripIndexLimit != UnboundedTripIndex && bases[i]+j <= tripIndexLimit {
				// Every remaining candidate has a smaller index still.
				return Event{}, false
			}
			return Event{
				Timetable:    s.timetable,
				Trip:         trips[j],
				Pattern:      pd.Pattern,
				StopPosition: stopPos,
				Time:         trips[j].Arrival(stopPos) + offset,
				Headway:      0,
				Offset:       offset,
				ServiceDate:  pd.ServiceDate,
			}, true
		}
	}
	return Event{}, false
}
