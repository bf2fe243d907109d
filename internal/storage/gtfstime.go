package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// parseGTFSTime converts an HH:MM:SS GTFS time to seconds since the
// start of the service day. Hours can exceed 23 (e.g. "25:30:00") for
// service running past midnight.
func parseGTFSTime(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed GTFS time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("malformed GTFS time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("malformed GTFS time %q", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("malformed GTFS time %q", s)
	}
	return h*3600 + m*60 + sec, nil
}
