package timetable

import "fmt"

// TripPatternForDates combines a pattern's per-service-date instances
// into one logical multi-day timetable. Dates are chronological and
// each carries an offset (seconds) anchoring its local times to the
// search window's absolute time frame, so times from different days
// are directly comparable.
type TripPatternForDates struct {
	Pattern *StopPattern
	Dates   []*TripPatternForDate
	Offsets []int
}

// NewTripPatternForDates pairs date instances with their offsets.
// Dates must already be in chronological order with offsets to match.
func NewTripPatternForDates(pattern *StopPattern, dates []*TripPatternForDate, offsets []int) (*TripPatternForDates, error) {
	if len(dates) != len(offsets) {
		return nil, fmt.Errorf("pattern %s: %d dates vs %d offsets", pattern.ID, len(dates), len(offsets))
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("pattern %s: offsets not in date order", pattern.ID)
		}
	}
	return &TripPatternForDates{Pattern: pattern, Dates: dates, Offsets: offsets}, nil
}

// NumDates returns how many service dates the view spans.
func (p *TripPatternForDates) NumDates() int {
	return len(p.Dates)
}

// HasFrequencies reports whether any date carries headway-based
// service, which decides the search variant the router picks.
func (p *TripPatternForDates) HasFrequencies() bool {
	for _, d := range p.Dates {
		if len(d.Frequencies) > 0 {
			return true
		}
	}
	return false
}

// withDateReplaced returns a copy with the date at index i swapped out.
func (p *TripPatternForDates) withDateReplaced(i int, pd *TripPatternForDate) *TripPatternForDates {
	dates := make([]*TripPatternForDate, len(p.Dates))
	copy(dates, p.Dates)
	dates[i] = pd
	return &TripPatternForDates{Pattern: p.Pattern, Dates: dates, Offsets: p.Offsets}
}
