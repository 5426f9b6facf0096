package availability

import (
	"sort"
	"strings"
)

// SortRooms orders rooms by floor (the leading digit of the room number, 0 when it is
// not a digit) and then by natural comparison of the whole number. The sort is stable.
func SortRooms(rooms []Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := rooms[i].RoomNumber, rooms[j].RoomNumber
		if fa, fb := floorKey(a), floorKey(b); fa != fb {
			return fa < fb
		}
		return CompareNatural(a, b) < 0
	})
}

func floorKey(roomNumber string) int {
	if roomNumber == "" || roomNumber[0] < '0' || roomNumber[0] > '9' {
		return 0
	}
	return int(roomNumber[0] - '0')
}

// CompareNatural compares strings chunk by chunk, treating digit runs as numbers and
// everything else case-insensitively: "003" < "0012" < "1001", "B2" < "b10".
func CompareNatural(a, b string) int {
	for a != "" && b != "" {
		ca, restA := nextChunk(a)
		cb, restB := nextChunk(b)

		var c int
		if isDigit(ca[0]) && isDigit(cb[0]) {
			c = compareDigits(ca, cb)
		} else {
			c = strings.Compare(strings.ToLower(ca), strings.ToLower(cb))
		}
		if c != 0 {
			return c
		}
		a, b = restA, restB
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func nextChunk(s string) (string, string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

// compareDigits compares digit runs by value; equal values with more leading zeros
// sort after.
func compareDigits(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Filter narrows a room table.
type Filter struct {
	OpenOnly bool
	// Query matches room numbers case-insensitively as a substring.
	Query string
}

// FilterRooms returns the rooms passing f, preserving order.
func FilterRooms(rooms []Room, f Filter) []Room {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := []Room{}
	for _, r := range rooms {
		if f.OpenOnly && r.Status != StatusOpen {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(r.RoomNumber), query) {
			continue
		}
		out = append(out, r)
	}
	return out
}
