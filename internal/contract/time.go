package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/signalboard/schema"
)

// relativeTimeRe captures "N [units] ago", e.g. "3 days ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 weeks ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default:
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// lookbackDurationRe captures "N [units]".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseLookbackDuration converts strings like "3 days" or "48h" into a time.Duration.
// It first tries time.ParseDuration, then the human-readable form.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return duration, nil
	}

	matches := lookbackDurationRe.FindStringSubmatch(strings.ToLower(s))
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}
	value, _ := strconv.Atoi(matches[1])

	var unit time.Duration
	switch matches[2] {
	case "year":
		unit = 365 * 24 * time.Hour // approximation
	case "month":
		unit = 30 * 24 * time.Hour // approximation
	case "week":
		unit = 7 * 24 * time.Hour
	case "day":
		unit = 24 * time.Hour
	case "hour":
		unit = time.Hour
	default:
		unit = time.Minute
	}
	if value == 0 {
		return 0, errors.New("duration must be positive")
	}
	return time.Duration(value) * unit, nil
}

// ParseSnapshotDate resolves a --date value into a snapshot date and the
// instant scoring windows end at. An empty value means now. A plain date
// (2006-01-02) covers that whole UTC day, so windows end at the next midnight.
// RFC3339 timestamps and relative forms ("3 days ago") end windows at that
// instant.
func ParseSnapshotDate(s string, now time.Time) (string, time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UTC().Format(schema.SnapshotDateFormat), now.UTC(), nil
	}
	if d, err := time.Parse(schema.SnapshotDateFormat, s); err == nil {
		return s, d.AddDate(0, 0, 1), nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		t = t.UTC()
		return t.Format(schema.SnapshotDateFormat), t, nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil || t.Year() < 1 || t.Year() > 9999 {
		return "", time.Time{}, fmt.Errorf("invalid date '%s'. Expected YYYY-MM-DD, RFC3339 or 'N [units] ago'", s)
	}
	t = t.UTC()
	return t.Format(schema.SnapshotDateFormat), t, nil
}
