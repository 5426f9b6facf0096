package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDay is returned for anything other than Monday through Friday.
var ErrInvalidDay = errors.New("invalid day")

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AdjustWeekend moves Saturday back to Friday and Sunday forward to Monday. Weekdays
// are returned unchanged.
func AdjustWeekend(date time.Time) time.Time {
	switch date.Weekday() {
	case time.Saturday:
		return date.AddDate(0, 0, -1)
	case time.Sunday:
		return date.AddDate(0, 0, 1)
	default:
		return date
	}
}

// NextWeekday returns the first weekday after date.
func NextWeekday(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for IsWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// PreviousWeekday returns the last weekday before date.
func PreviousWeekday(date time.Time) time.Time {
	prev := date.AddDate(0, 0, -1)
	for IsWeekend(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}

// DayName returns the English weekday name, e.g. "Monday".
func DayName(date time.Time) string {
	return date.Weekday().String()
}

// NormalizeDay accepts a weekday name in any case and returns its canonical form.
func NormalizeDay(day string) (string, error) {
	d := strings.TrimSpace(day)
	for _, wd := range weekdays {
		if strings.EqualFold(d, wd.String()) {
			return wd.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, day)
}
