package search

import "transitgraph/internal/timetable"

// frequencyBoardSearch scans dates ascending and entries in stored
// order, returning the first feasible departure. Entries are not
// compared for optimality: with overlapping entries the result is
// decided by enumeration order, and callers rely on dates being
// pre-ordered so earlier dates mean earlier service.
type frequencyBoardSearch struct {
	timetable *timetable.TripPatternForDates
}

func (s *frequencyBoardSearch) Search(earliestBoardTime, stopPos, _ int) (Event, bool) {
	for i, pd := range s.timetable.Dates {
		offset := s.timetable.Offsets[i]

		for _, freq := range pd.Frequencies {
			departure, ok := freq.NextDepartureTime(stopPos, earliestBoardTime-offset)
			if !ok {
				continue
			}
			headway := freq.Headway
			if freq.ExactTimes {
				headway = 0
			}
			// Anchor a full headway early: the worst case is that the
			// rider could have boarded a vehicle this much sooner.
			trip := freq.Materialize(stopPos, departure-headway, true)

			return Event{
				Timetable:    s.timetable,
				Trip:         trip,
				Pattern:      pd.Pattern,
				StopPosition: stopPos,
				Time:         departure - headway + offset,
				Headway:      headway,
				Offset:       offset,
				ServiceDate:  pd.ServiceDate,
			}, true
		}
	}
	return Event{}, false
}
