package search

import "transitgraph/internal/timetable"

// frequencyAlightSearch mirrors the board search: dates descending,
// entries in reverse stored order, first feasible arrival wins. Later
// dates and later entries are preferred by construction of the scan.
type frequencyAlightSearch struct {
	timetable *timetable.TripPatternForDates
}

func (s *frequencyAlightSearch) Search(latestAlightTime, stopPos, _ int) (Event, bool) {
	for i := s.timetable.NumDates() - 1; i >= 0; i-- {
		pd := s.timetable.Dates[i]
		offset := s.timetable.Offsets[i]

		for j := len(pd.Frequencies) - 1; j >= 0; j-- {
			freq := pd.Frequencies[j]
			arrival, ok := freq.PrevArrivalTime(stopPos, latestAlightTime-offset)
			if !ok {
				continue
			}
			headway := freq.Headway
			if freq.ExactTimes {
				headway = 0
			}
			// Anchor a full headway late: the latest possible
			// alighting consistent with this arrival.
			trip := freq.Materialize(stopPos, arrival+headway, false)

			return Event{
				Timetable:    s.timetable,
				Trip:         trip,
				Pattern:      pd.Pattern,
				StopPosition: stopPos,
				Time:         arrival + headway + offset,
				Headway:      headway,
				Offset:       offset,
				ServiceDate:  pd.ServiceDate,
			}, true
		}
	}
	return Event{}, false
}
