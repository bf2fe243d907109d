package timetable

import "fmt"

// TripTimes holds the concrete stop times for one vehicle run along a
// pattern. Times are seconds relative to noon-minus-12h on the trip's
// service date, so they can exceed 86400 for trips running past
// midnight. A TripTimes is never mutated after construction; realtime
// updates replace it wholesale.
type TripTimes struct {
	TripID     string
	Arrivals   []int
	Departures []int
}

// NewTripTimes builds a TripTimes from parallel arrival and departure
// arrays, one entry per stop position in the pattern.
func NewTripTimes(tripID string, arrivals, departures []int) (*TripTimes, error) {
	if len(arrivals) == 0 {
		return nil, fmt.Errorf("trip %s: no stop times", tripID)
	}
	if len(arrivals) != len(departures) {
		return nil, fmt.Errorf("trip %s: %d arrivals vs %d departures",
			tripID, len(arrivals), len(departures))
	}
	return &TripTimes{TripID: tripID, Arrivals: arrivals, Departures: departures}, nil
}

// NumStops returns the number of stop positions covered by this run.
func (tt *TripTimes) NumStops() int {
	return len(tt.Arrivals)
}

// Arrival returns the arrival time at the given stop position.
func (tt *TripTimes) Arrival(pos int) int {
	return tt.Arrivals[pos]
}

// Departure returns the departure time at the given stop position.
func (tt *TripTimes) Departure(pos int) int {
	return tt.Departures[pos]
}

// TimeShifted returns a copy of this run shifted so that its departure
// (depart=true) or arrival (depart=false) at stop equals t. This is
// how a concrete run is materialized from a frequency entry's
// representative trip.
func (tt *TripTimes) TimeShifted(stop, t int, depart bool) *TripTimes {
	var delta int
	if depart {
		delta = t - tt.Departures[stop]
	} else {
		delta = t - tt.Arrivals[stop]
	}
	arrivals := make([]int, len(tt.Arrivals))
	departures := make([]int, len(tt.Departures))
	for i := range tt.Arrivals {
		arrivals[i] = tt.Arrivals[i] + delta
		departures[i] = tt.Departures[i] + delta
	}
	return &TripTimes{TripID: tt.TripID, Arrivals: arrivals, Departures: departures}
}
