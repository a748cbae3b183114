package production

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNoTimestamp is returned when a raw value carries no timestamp.
var ErrNoTimestamp = errors.New("no timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// ParseTimestamp converts the string encodings seen in source systems into a
// UTC instant. Accepted forms are RFC 3339 (with or without fractional
// seconds), naive date-times interpreted as UTC, calendar dates, and numeric
// epoch seconds (fractional allowed).
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, ErrNoTimestamp
	}
	if looksNumeric(value) {
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse epoch %q: %w", value, err)
		}
		return FromEpochSeconds(seconds, 0)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// FromEpochSeconds builds an instant from epoch seconds plus optional nanoseconds.
func FromEpochSeconds(seconds float64, nanos int64) (time.Time, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, fmt.Errorf("invalid epoch seconds %v", seconds)
	}
	if seconds <= 0 && nanos <= 0 {
		return time.Time{}, ErrNoTimestamp
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*1e9)+nanos).UTC(), nil
}

// ParseTimestampOrZero is ParseTimestamp with errors collapsed to the zero time.
func ParseTimestampOrZero(raw string) time.Time {
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// FormatTimestamp renders an instant for storage; zero renders as empty.
func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339Nano)
}

func looksNumeric(value string) bool {
	digits := 0
	for i, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return digits > 0
}
