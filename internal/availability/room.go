// Package availability computes room occupancy and the text shown for it from the
// occupied ranges the scheduling data source reports.
package availability

import "strings"

// Status is the occupancy state reported for a room.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusOccupied Status = "OCCUPIED"
)

// TimeRange is a half-open [Start, End) interval in 24-hour "HH:mm".
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Room is one room row as returned by the data source.
type Room struct {
	RoomNumber     string      `json:"roomNumber"`
	ID             string      `json:"id,omitempty"`
	Status         Status      `json:"status"`
	AvailableUntil string      `json:"availableUntil,omitempty"`
	OccupiedRanges []TimeRange `json:"occupiedRanges"`
}

// Course is one scheduled meeting in a room usage record.
type Course struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Usage is the weekly schedule of a room.
type Usage struct {
	Courses  []Course `json:"courses"`
	RoomID   string   `json:"room_id,omitempty"`
	Semester string   `json:"semester,omitempty"`
}

// RoomUsage is the data source's detail record for a single room.
type RoomUsage struct {
	ID       string `json:"id,omitempty"`
	Building string `json:"building"`
	Room     string `json:"room"`
	Usage    *Usage `json:"usage,omitempty"`
}

// RangesOn returns the occupied ranges on a weekday, ordered by start time.
func (u RoomUsage) RangesOn(day string) []TimeRange {
	ranges := []TimeRange{}
	if u.Usage == nil {
		return ranges
	}
	for _, c := range u.Usage.Courses {
		if strings.EqualFold(strings.TrimSpace(c.Day), strings.TrimSpace(day)) {
			ranges = append(ranges, TimeRange{Start: c.Start, End: c.End})
		}
	}
	return NormalizeRanges(ranges)
}

// RoomAt builds the room row for a weekday and time the same way the data source does:
// occupied rooms carry their ranges, open rooms carry the next start as AvailableUntil.
func (u RoomUsage) RoomAt(day, t string) Room {
	room := Room{
		RoomNumber:     u.Room,
		ID:             u.ID,
		Status:         StatusOpen,
		OccupiedRanges: u.RangesOn(day),
	}
	if len(room.OccupiedRanges) == 0 {
		return room
	}
	room.Status = StatusAt(room, t)
	if room.Status == StatusOpen {
		if next := NextBoundary(room, t); next != FreeForRestOfDay {
			room.AvailableUntil = next
		}
	}
	return room
}

// MergeRooms concatenates room batches fetched for the source names of one building
// and drops repeats. Rooms are keyed by RoomNumber, falling back to ID; the first
// occurrence of a key wins. Rooms with neither key are kept.
func MergeRooms(batches ...[]Room) []Room {
	merged := []Room{}
	seen := make(map[string]bool)
	for _, batch := range batches {
		for _, r := range batch {
			key := roomKey(r)
			if key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			merged = append(merged, r)
		}
	}
	return merged
}

func roomKey(r Room) string {
	if r.RoomNumber != "" {
		return "number:" + r.RoomNumber
	}
	if r.ID != "" {
		return "id:" + r.ID
	}
	return ""
}
