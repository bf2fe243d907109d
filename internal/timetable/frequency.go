package timetable

import "fmt"

// FrequencyEntry describes headway-based service: vehicles run along
// the representative trip's profile every Headway seconds between
// StartTime and EndTime (first-stop departure times).
//
// ExactTimes means departures happen exactly on StartTime + k*Headway.
// Otherwise the entry is a service band: a rider is only guaranteed a
// departure within one full headway of showing up, and searches must
// account for that worst-case wait when materializing a run.
type FrequencyEntry struct {
	StartTime  int
	EndTime    int
	Headway    int
	ExactTimes bool
	Trip       *TripTimes
}

// NewFrequencyEntry validates and builds a frequency entry.
func NewFrequencyEntry(start, end, headway int, exactTimes bool, trip *TripTimes) (*FrequencyEntry, error) {
	if headway <= 0 {
		return nil, fmt.Errorf("frequency entry for trip %s: headway %d, must be positive", trip.TripID, headway)
	}
	if end < start {
		return nil, fmt.Errorf("frequency entry for trip %s: end %d before start %d", trip.TripID, end, start)
	}
	return &FrequencyEntry{
		StartTime:  start,
		EndTime:    end,
		Headway:    headway,
		ExactTimes: exactTimes,
		Trip:       trip,
	}, nil
}

// stopOffset is the travel time from the first stop's departure to the
// departure (or arrival) at the given stop, per the representative trip.
func (f *FrequencyEntry) stopOffset(stop int, depart bool) int {
	if depart {
		return f.Trip.Departures[stop] - f.Trip.Departures[0]
	}
	return f.Trip.Arrivals[stop] - f.Trip.Departures[0]
}

// NextDepartureTime returns the next departure from the given stop at
// or after t, or false when no vehicle departs that late within the
// entry's window. For non-exact entries the returned time already
// includes the worst-case wait of one full headway.
func (f *FrequencyEntry) NextDepartureTime(stop, t int) (int, bool) {
	if t > f.EndTime {
		return 0, false
	}
	offset := f.stopOffset(stop, true)
	beg := f.StartTime + offset
	end := f.EndTime + offset
	if f.ExactTimes {
		for time := beg; time < end; time += f.Headway {
			if time >= t {
				return time, true
			}
		}
	} else {
		time := t + f.Headway
		if time < beg {
			return beg, true
		}
		if time < end {
			return time, true
		}
	}
	return 0, false
}

// PrevArrivalTime returns the latest arrival at the given stop at or
// before t, or false when no vehicle arrives that early within the
// entry's window. For non-exact entries the returned time already
// includes the worst-case headway slack.
func (f *FrequencyEntry) PrevArrivalTime(stop, t int) (int, bool) {
	if t < f.StartTime {
		return 0, false
	}
	offset := f.stopOffset(stop, false)
	beg := f.StartTime + offset
	end := f.EndTime + offset
	if f.ExactTimes {
		for time := end; time > beg; time -= f.Headway {
			if time <= t {
				return time, true
			}
		}
	} else {
		time := t - f.Headway
		if time > end {
			return end, true
		}
		if time > beg {
			return time, true
		}
	}
	return 0, false
}

// Materialize derives a concrete run from the representative trip,
// anchored so its departure (depart=true) or arrival (depart=false) at
// stop equals t.
func (f *FrequencyEntry) Materialize(stop, t int, depart bool) *TripTimes {
	return f.Trip.TimeShifted(stop, t, depart)
}
