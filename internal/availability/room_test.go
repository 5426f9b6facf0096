package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRooms(t *testing.T) {
	main := []Room{
		{RoomNumber: "101", Status: StatusOpen},
		{RoomNumber: "102", Status: StatusOccupied},
	}
	annex := []Room{
		{RoomNumber: "101", Status: StatusOccupied},
		{ID: "annex-lobby", Status: StatusOpen},
		{ID: "annex-lobby", Status: StatusOccupied},
		{Status: StatusOpen},
		{Status: StatusOpen},
	}

	merged := MergeRooms(main, annex)

	require.Len(t, merged, 5)
	assert.Equal(t, StatusOpen, merged[0].Status, "first seen 101 wins")
	assert.Equal(t, "102", merged[1].RoomNumber)
	assert.Equal(t, "annex-lobby", merged[2].ID)
	assert.Equal(t, StatusOpen, merged[2].Status)
	assert.Empty(t, merged[3].RoomNumber)
	assert.Empty(t, merged[4].RoomNumber)
}

func TestMergeRooms_Empty(t *testing.T) {
	merged := MergeRooms()
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestRoomUsage_RoomAt(t *testing.T) {
	usage := RoomUsage{
		ID:       "abc",
		Building: "Lincoln Hall",
		Room:     "1000",
		Usage: &Usage{Courses: []Course{
			{Day: "Monday", Start: "13:00", End: "13:50"},
			{Day: "monday", Start: "09:00", End: "09:50"},
			{Day: "Tuesday", Start: "10:00", End: "11:15"},
		}},
	}

	assert.Equal(t, lecture("09:00", "09:50", "13:00", "13:50"), usage.RangesOn("Monday"))

	room := usage.RoomAt("Monday", "09:30")
	assert.Equal(t, StatusOccupied, room.Status)
	assert.Empty(t, room.AvailableUntil)

	room = usage.RoomAt("Monday", "10:00")
	assert.Equal(t, StatusOpen, room.Status)
	assert.Equal(t, "13:00", room.AvailableUntil)

	room = usage.RoomAt("Friday", "10:00")
	assert.Equal(t, StatusOpen, room.Status)
	assert.Empty(t, room.OccupiedRanges)
	assert.Equal(t, "Free all day", DisplayStatus(room, "10:00"))

	assert.Empty(t, RoomUsage{Room: "1"}.RangesOn("Monday"))
}

func date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func TestWeekendHelpers(t *testing.T) {
	friday := date(2026, 10, 16)
	saturday := date(2026, 10, 17)
	sunday := date(2026, 10, 18)
	monday := date(2026, 10, 19)

	assert.False(t, IsWeekend(friday))
	assert.True(t, IsWeekend(saturday))
	assert.True(t, IsWeekend(sunday))

	assert.Equal(t, friday, AdjustWeekend(saturday))
	assert.Equal(t, monday, AdjustWeekend(sunday))
	assert.Equal(t, monday, AdjustWeekend(monday))

	assert.Equal(t, monday, NextWeekday(friday))
	assert.Equal(t, friday, PreviousWeekday(monday))
	assert.Equal(t, "Friday", DayName(friday))
}

func TestNormalizeDay(t *testing.T) {
	day, err := NormalizeDay(" wednesday ")
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", day)

	_, err = NormalizeDay("Saturday")
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = NormalizeDay("")
	assert.ErrorIs(t, err, ErrInvalidDay)
}
