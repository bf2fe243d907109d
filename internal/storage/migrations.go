package storage

import "fmt"

// migrate creates the GTFS schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// Routes
	`CREATE TABLE IF NOT EXISTS routes (
		route_id         TEXT PRIMARY KEY,
		route_short_name TEXT,
		route_long_name  TEXT,
		route_type       INTEGER NOT NULL DEFAULT 3
	)`,

	// Stops
	`CREATE TABLE IF NOT EXISTS stops (
		stop_id   TEXT PRIMARY KEY,
		stop_name TEXT NOT NULL,
		stop_lat  REAL NOT NULL,
		stop_lon  REAL NOT NULL
	)`,

	// Calendar
	`CREATE TABLE IF NOT EXISTS calendar (
		service_id TEXT PRIMARY KEY,
		monday     INTEGER NOT NULL DEFAULT 0,
		tuesday    INTEGER NOT NULL DEFAULT 0,
		wednesday  INTEGER NOT NULL DEFAULT 0,
		thursday   INTEGER NOT NULL DEFAULT 0,
		friday     INTEGER NOT NULL DEFAULT 0,
		saturday   INTEGER NOT NULL DEFAULT 0,
		sunday     INTEGER NOT NULL DEFAULT 0,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL
	)`,

	// Calendar Dates (exceptions)
	`CREATE TABLE IF NOT EXISTS calendar_dates (
		service_id     TEXT NOT NULL,
		date           TEXT NOT NULL,
		exception_type INTEGER NOT NULL,
		PRIMARY KEY (service_id, date)
	)`,

	// Trips
	`CREATE TABLE IF NOT EXISTS trips (
		trip_id    TEXT PRIMARY KEY,
		route_id   TEXT NOT NULL REFERENCES routes(route_id),
		service_id TEXT NOT NULL
	)`,

	// Stop Times
	`CREATE TABLE IF NOT EXISTS stop_times (
		trip_id        TEXT NOT NULL REFERENCES trips(trip_id),
		arrival_time   TEXT NOT NULL,
		departure_time TEXT NOT NULL,
		stop_id        TEXT NOT NULL REFERENCES stops(stop_id),
		stop_sequence  INTEGER NOT NULL,
		PRIMARY KEY (trip_id, stop_sequence)
	)`,

	// Frequencies (headway-based service)
	`CREATE TABLE IF NOT EXISTS frequencies (
		trip_id      TEXT NOT NULL REFERENCES trips(trip_id),
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		headway_secs INTEGER NOT NULL,
		exact_times  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (trip_id, start_time)
	)`,

	// Feed metadata (last_modified, etag, imported_at, etc.)
	`CREATE TABLE IF NOT EXISTS feed_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	// Indexes for common query patterns
	`CREATE INDEX IF NOT EXISTS idx_stop_times_trip ON stop_times(trip_id)`,
	`CREATE INDEX IF NOT EXISTS idx_trips_service ON trips(service_id)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_dates_date ON calendar_dates(date)`,
}
