// Package schedule decides which dose instances of a medication apply
// on a calendar date. It is pure: bad input degrades to an empty
// result, never an error.
package schedule

import (
	"sort"
	"time"

	apperrors "github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/errors"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.Wrap(err, "SCHED_002", "invalid date format")
	}
	return t, nil
}

// ParseTimeOfDay parses an HH:MM 24h wall-clock time
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "SCHED_001", "invalid time format")
	}
	return t.Hour(), t.Minute(), nil
}

// ForDate resolves the dose instances of a medication that are due on
// the given date, ordered by time of day ascending.
//
// Frequency narrows the active dates: daily covers every date in range,
// weekly the dates a whole number of weeks from the start date, monthly
// the dates sharing the start date's day of month. Weekly and monthly
// need a start date; without one the medication behaves as daily, the
// most permissive reading.
func ForDate(med *store.Medication, date string) []store.Dose {
	if med == nil || len(med.Doses) == 0 {
		return nil
	}

	day, err := ParseDate(date)
	if err != nil {
		return nil
	}

	var start *time.Time
	if med.StartDate != nil {
		if t, err := ParseDate(*med.StartDate); err == nil {
			start = &t
		}
	}

	if start != nil && day.Before(*start) {
		return nil
	}
	if med.EndDate != nil {
		if end, err := ParseDate(*med.EndDate); err == nil && day.After(end) {
			return nil
		}
	}

	if !frequencyActive(med.Frequency, start, day) {
		return nil
	}

	doses := make([]store.Dose, len(med.Doses))
	copy(doses, med.Doses)
	sort.SliceStable(doses, func(i, j int) bool {
		if doses[i].TimeOfDay != doses[j].TimeOfDay {
			return doses[i].TimeOfDay < doses[j].TimeOfDay
		}
		return doses[i].Ordinal < doses[j].Ordinal
	})
	return doses
}

func frequencyActive(frequency string, start *time.Time, day time.Time) bool {
	if start == nil {
		return true
	}

	switch frequency {
	case store.FrequencyWeekly:
		offset := int(day.Sub(*start).Hours() / 24)
		return offset%7 == 0
	case store.FrequencyMonthly:
		return day.Day() == start.Day()
	default:
		// daily, and anything unrecognized
		return true
	}
}
