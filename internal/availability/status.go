package availability

import (
	"sort"
	"strings"
	"time"
)

// FreeForRestOfDay is returned by NextBoundary when no range starts after the query time.
const FreeForRestOfDay = "free-for-rest-of-day"

const (
	textFreeAllDay       = "Free all day"
	textFreeForRestOfDay = "Free for rest of day"
)

// ParseMinutes converts "HH:mm" to minutes since midnight. Unparseable input counts as
// midnight.
func ParseMinutes(hhmm string) int {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// IsOccupiedAt reports whether t falls inside any [start, end) range of the room.
func IsOccupiedAt(room Room, t string) bool {
	_, ok := currentRange(room, t)
	return ok
}

// CurrentRangeEnd returns the end of the range containing t.
func CurrentRangeEnd(room Room, t string) (string, bool) {
	r, ok := currentRange(room, t)
	if !ok {
		return "", false
	}
	return r.End, true
}

func currentRange(room Room, t string) (TimeRange, bool) {
	now := ParseMinutes(t)
	for _, r := range room.OccupiedRanges {
		if now >= ParseMinutes(r.Start) && now < ParseMinutes(r.End) {
			return r, true
		}
	}
	return TimeRange{}, false
}

// NextBoundary returns the earliest range start strictly after t, or FreeForRestOfDay.
func NextBoundary(room Room, t string) string {
	now := ParseMinutes(t)
	next, best := FreeForRestOfDay, -1
	for _, r := range room.OccupiedRanges {
		start := ParseMinutes(r.Start)
		if start > now && (best < 0 || start < best) {
			next, best = r.Start, start
		}
	}
	return next
}

// StatusAt derives OPEN or OCCUPIED from the occupied ranges alone.
func StatusAt(room Room, t string) Status {
	if IsOccupiedAt(room, t) {
		return StatusOccupied
	}
	return StatusOpen
}

// DisplayStatus is the "Occupied Until" column text: the end of the current range for
// an occupied room, otherwise the start of the next one.
func DisplayStatus(room Room, t string) string {
	if len(room.OccupiedRanges) == 0 {
		return textFreeAllDay
	}

	if room.Status == StatusOccupied {
		if end, ok := CurrentRangeEnd(room, t); ok {
			return FormatTime12h(end)
		}
	}

	next := NextBoundary(room, t)
	if next == FreeForRestOfDay {
		return textFreeForRestOfDay
	}
	return FormatTime12h(next)
}

// NormalizeRanges returns a copy of ranges ordered by start time. Equal starts keep
// their input order.
func NormalizeRanges(ranges []TimeRange) []TimeRange {
	out := make([]TimeRange, len(ranges))
	copy(out, ranges)
	sort.SliceStable(out, func(i, j int) bool {
		return ParseMinutes(out[i].Start) < ParseMinutes(out[j].Start)
	})
	return out
}
