package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"transitgraph/internal/timetable"
)

const secondsPerDay = 86400

// Loader builds the initial timetable snapshot from the GTFS
// database: stops, trip patterns derived from identical stop
// sequences, and per-date pattern instances spanning the configured
// multi-day search window. Everything after this initial load goes
// through the realtime writer.
type Loader struct {
	db     *DB
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(db *DB, logger *slog.Logger) *Loader {
	return &Loader{db: db, logger: logger}
}

// stopTimeRow is one stop visit of a trip, times in seconds.
type stopTimeRow struct {
	stopID    string
	arrival   int
	departure int
}

// tripSchedule is one trip's full stop sequence and times.
type tripSchedule struct {
	tripID  string
	routeID string
	stops   []stopTimeRow
}

// freqRow is one frequencies.txt entry, times in seconds.
type freqRow struct {
	start   int
	end     int
	headway int
	exact   bool
}

// LoadSnapshot builds the snapshot for the window of the given number
// of consecutive service dates starting at startDate. Dates get
// offsets of 86400s per day so all pattern times share one frame.
func (l *Loader) LoadSnapshot(ctx context.Context, feedID string, startDate time.Time, days int) (*timetable.Snapshot, error) {
	b := timetable.NewBuilder()

	if err := l.loadStops(ctx, feedID, b); err != nil {
		return nil, err
	}
	freqs, err := l.loadFrequencies(ctx)
	if err != nil {
		return nil, err
	}

	type patternAcc struct {
		pattern *timetable.StopPattern
		dates   []*timetable.TripPatternForDate
		offsets []int
	}
	accs := make(map[string]*patternAcc)
	var accOrder []string
	patternSeq := make(map[string]int)

	for day := 0; day < days; day++ {
		date := startDate.AddDate(0, 0, day)
		services, err := l.activeServices(ctx, date)
		if err != nil {
			return nil, err
		}
		if len(services) == 0 {
			continue
		}
		trips, err := l.tripsForServices(ctx, services)
		if err != nil {
			return nil, err
		}

		// Group the date's trips into patterns by stop sequence.
		grouped := make(map[string][]*tripSchedule)
		var keyOrder []string
		for _, trip := range trips {
			ids := make([]string, len(trip.stops))
			for i, st := range trip.stops {
				ids[i] = st.stopID
			}
			key := trip.routeID + "\x1f" + strings.Join(ids, "\x1f")
			if _, ok := grouped[key]; !ok {
				keyOrder = append(keyOrder, key)
			}
			grouped[key] = append(grouped[key], trip)
		}

		for _, key := range keyOrder {
			group := grouped[key]
			acc, ok := accs[key]
			if !ok {
				routeID := group[0].routeID
				stopIDs := make([]string, len(group[0].stops))
				for i, st := range group[0].stops {
					stopIDs[i] = st.stopID
				}
				acc = &patternAcc{pattern: &timetable.StopPattern{
					ID:      fmt.Sprintf("%s:%d", routeID, patternSeq[routeID]),
					RouteID: routeID,
					StopIDs: stopIDs,
				}}
				patternSeq[routeID]++
				accs[key] = acc
				accOrder = append(accOrder, key)
			}

			var scheduled []*timetable.TripTimes
			var frequencies []*timetable.FrequencyEntry
			for _, trip := range group {
				arrivals := make([]int, len(trip.stops))
				departures := make([]int, len(trip.stops))
				for i, st := range trip.stops {
					arrivals[i] = st.arrival
					departures[i] = st.departure
				}
				tt, err := timetable.NewTripTimes(trip.tripID, arrivals, departures)
				if err != nil {
					return nil, err
				}
				rows, isFreq := freqs[trip.tripID]
				if !isFreq {
					scheduled = append(scheduled, tt)
					continue
				}
				for _, fr := range rows {
					entry, err := timetable.NewFrequencyEntry(fr.start, fr.end, fr.headway, fr.exact, tt)
					if err != nil {
						return nil, err
					}
					frequencies = append(frequencies, entry)
				}
			}

			acc.dates = append(acc.dates, timetable.NewTripPatternForDate(
				acc.pattern, date.Format("2006-01-02"), scheduled, frequencies))
			acc.offsets = append(acc.offsets, day*secondsPerDay)
		}
	}

	for _, key := range accOrder {
		acc := accs[key]
		p, err := timetable.NewTripPatternForDates(acc.pattern, acc.dates, acc.offsets)
		if err != nil {
			return nil, err
		}
		b.PutPattern(feedID, p)
	}

	snap := b.Build()
	l.logger.Info("initial snapshot loaded",
		"feed", feedID, "patterns", snap.NumPatterns(), "stops", snap.NumStops(), "days", days)
	return snap, nil
}

func (l *Loader) loadStops(ctx context.Context, feedID string, b *timetable.Builder) error {
	rows, err := l.db.QueryContext(ctx,
		`SELECT stop_id, stop_name, stop_lat, stop_lon FROM stops`)
	if err != nil {
		return fmt.Errorf("stops query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		st := &timetable.Stop{}
		var id string
		if err := rows.Scan(&id, &st.Name, &st.Lat, &st.Lon); err != nil {
			return fmt.Errorf("scan stop: %w", err)
		}
		st.ID = timetable.FeedScopedID{FeedID: feedID, ID: id}
		b.PutStop(st)
	}
	return rows.Err()
}

// activeServices resolves which service ids run on the given date:
// calendar weekday columns bounded by start/end date, adjusted by
// calendar_dates exceptions.
func (l *Loader) activeServices(ctx context.Context, date time.Time) ([]string, error) {
	weekday := strings.ToLower(date.Weekday().String())
	d := date.Format("20060102")

	active := make(map[string]bool)
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT service_id FROM calendar WHERE %s = 1 AND start_date <= ? AND end_date >= ?`,
		weekday), d, d)
	if err != nil {
		return nil, fmt.Errorf("calendar query: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan service: %w", err)
		}
		active[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = l.db.QueryContext(ctx,
		`SELECT service_id, exception_type FROM calendar_dates WHERE date = ?`, d)
	if err != nil {
		return nil, fmt.Errorf("calendar_dates query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var exception int
		if err := rows.Scan(&id, &exception); err != nil {
			return nil, fmt.Errorf("scan exception: %w", err)
		}
		switch exception {
		case 1:
			active[id] = true
		case 2:
			delete(active, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) tripsForServices(ctx context.Context, serviceIDs []string) ([]*tripSchedule, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(serviceIDs)), ",")
	args := make([]any, len(serviceIDs))
	for i, id := range serviceIDs {
		args[i] = id
	}

	rows, err := l.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT t.trip_id, t.route_id, st.stop_id, st.arrival_time, st.departure_time
		FROM trips t
		JOIN stop_times st ON st.trip_id = t.trip_id
		WHERE t.service_id IN (%s)
		ORDER BY t.trip_id, st.stop_sequence`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("trips query: %w", err)
	}
	defer rows.Close()

	byTrip := make(map[string]*tripSchedule)
	var order []string
	for rows.Next() {
		var tripID, routeID, stopID, arr, dep string
		if err := rows.Scan(&tripID, &routeID, &stopID, &arr, &dep); err != nil {
			return nil, fmt.Errorf("scan stop time: %w", err)
		}
		arrival, err := parseGTFSTime(arr)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", tripID, err)
		}
		departure, err := parseGTFSTime(dep)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", tripID, err)
		}
		trip, ok := byTrip[tripID]
		if !ok {
			trip = &tripSchedule{tripID: tripID, routeID: routeID}
			byTrip[tripID] = trip
			order = append(order, tripID)
		}
		trip.stops = append(trip.stops, stopTimeRow{stopID: stopID, arrival: arrival, departure: departure})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trips := make([]*tripSchedule, len(order))
	for i, id := range order {
		trips[i] = byTrip[id]
	}
	return trips, nil
}

func (l *Loader) loadFrequencies(ctx context.Context) (map[string][]freqRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT trip_id, start_time, end_time, headway_secs, exact_times
		FROM frequencies
		ORDER BY trip_id, start_time`)
	if err != nil {
		return nil, fmt.Errorf("frequencies query: %w", err)
	}
	defer rows.Close()

	freqs := make(map[string][]freqRow)
	for rows.Next() {
		var tripID, start, end string
		var headway, exact int
		if err := rows.Scan(&tripID, &start, &end, &headway, &exact); err != nil {
			return nil, fmt.Errorf("scan frequency: %w", err)
		}
		fr := freqRow{headway: headway, exact: exact == 1}
		if fr.start, err = parseGTFSTime(start); err != nil {
			return nil, fmt.Errorf("trip %s: %w", tripID, err)
		}
		if fr.end, err = parseGTFSTime(end); err != nil {
			return nil, fmt.Errorf("trip %s: %w", tripID, err)
		}
		freqs[tripID] = append(freqs[tripID], fr)
	}
	return freqs, rows.Err()
}
