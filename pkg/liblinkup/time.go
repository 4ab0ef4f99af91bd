package liblinkup

import (
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// DisplayTimeFormat is the fixed format used by the vendor API for
// measurement timestamps.
const DisplayTimeFormat = "01/02/2006 03:04:05 PM"

// Timestamps above this magnitude are assumed to be milliseconds.
const millisecondThreshold = int64(100_000_000_000) // 1e11

// NormalizeTimestamp converts the heterogeneous timestamp encodings seen in
// API payloads to epoch seconds. Accepted inputs are epoch numbers (seconds
// or milliseconds), digit-only strings and ISO-8601 strings. Anything else
// reports false instead of an error.
func NormalizeTimestamp(raw any) (int64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case string:
		return normalizeString(v)
	case int64:
		return normalizeEpoch(v), true
	case int:
		return normalizeEpoch(int64(v)), true
	case float64:
		return normalizeEpoch(int64(v)), true
	}
	return 0, false
}

func normalizeString(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return normalizeEpoch(n), true
	}
	// dateparse handles ISO-8601 with either a trailing Z or a numeric offset.
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

func normalizeEpoch(n int64) int64 {
	if n >= millisecondThreshold || n <= -millisecondThreshold {
		return n / 1000
	}
	return n
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ParseDisplayTime parses a vendor display timestamp in the local timezone,
// which is how the API reports them.
func ParseDisplayTime(s string) (time.Time, error) {
	return time.ParseInLocation(DisplayTimeFormat, s, time.Local)
}

// FormatDisplayTime renders t in the vendor display format.
func FormatDisplayTime(t time.Time) string {
	return t.Format(DisplayTimeFormat)
}
