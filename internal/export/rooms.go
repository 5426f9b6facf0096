// Package export writes room availability tables to spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"studyspaces/internal/availability"
	"studyspaces/internal/buildings"
)

// Writer writes tabular data to a workbook.
type Writer interface {
	// AddSheet adds a new sheet and makes it current.
	AddSheet(name string) error

	// WriteHeader writes column headers to the current sheet.
	WriteHeader(columns []string) error

	// WriteRow writes a data row to the current sheet.
	WriteRow(row []any) error

	// Save writes the workbook to w.
	Save(w io.Writer) error

	// SaveToFile writes the workbook to disk.
	SaveToFile(path string) error
}

// RoomColumns is the header of a room sheet.
var RoomColumns = []string{"Room", "Status", "Occupied Until", "Occupied Times", "Available Until"}

// RoomSheet is one building's room table at a day and time.
type RoomSheet struct {
	Building string
	Day      string
	Time     string
	Rooms    []availability.Room
}

// RoomRow renders a room the way the room table shows it.
func RoomRow(room availability.Room, at string) []any {
	availableUntil := ""
	if room.AvailableUntil != "" {
		availableUntil = availability.FormatTime12h(room.AvailableUntil)
	}
	return []any{
		room.RoomNumber,
		string(room.Status),
		availability.DisplayStatus(room, at),
		availability.FormatRanges(room.OccupiedRanges),
		availableUntil,
	}
}

// WriteRoomSheets writes one sheet per building.
func WriteRoomSheets(w Writer, sheets []RoomSheet) error {
	for _, s := range sheets {
		if err := w.AddSheet(s.Building); err != nil {
			return err
		}
		if err := w.WriteRow([]any{fmt.Sprintf("%s, %s %s", s.Building, s.Day, availability.FormatTime12h(s.Time))}); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
		if err := w.WriteHeader(RoomColumns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, room := range s.Rooms {
			if err := w.WriteRow(RoomRow(room, s.Time)); err != nil {
				return fmt.Errorf("write room %s: %w", room.RoomNumber, err)
			}
		}
	}
	return nil
}

// GenerateFilename creates a filename like "lincoln-hall_2026-10-16.xlsx".
func GenerateFilename(building string, date time.Time) string {
	id := buildings.GenerateID(building)
	if id == "" {
		id = "rooms"
	}
	return fmt.Sprintf("%s_%s.xlsx", id, date.Format("2006-01-02"))
}
