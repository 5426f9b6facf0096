package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studyspaces/internal/availability"
	"studyspaces/internal/export"
	"studyspaces/internal/lookup"
)

var (
	roomsDay      string
	roomsTime     string
	roomsOpenOnly bool
	roomsFilter   string
	roomsJSON     bool
	roomsXLSX     string

	roomJSON bool
)

var roomsCmd = &cobra.Command{
	Use:   "rooms [building]...",
	Short: "Show room availability in one or more buildings",
	Long: `Shows every room of a building with its status at a weekday and time. Day and
time default to now; weekends move to the nearest weekday.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRooms,
}

var freeCmd = &cobra.Command{
	Use:   "free [building]...",
	Short: "Show only the rooms that are free",
	Long: `Asks the data source for the rooms that are free at a weekday and time and
shows how long each stays free.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRooms,
}

var roomCmd = &cobra.Command{
	Use:   "room [building] [room]",
	Short: "Show one room's schedule for a day",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoom,
}

func init() {
	for _, c := range []*cobra.Command{roomsCmd, freeCmd, roomCmd} {
		c.Flags().StringVarP(&roomsDay, "day", "d", "", "weekday, Monday to Friday (default today)")
		c.Flags().StringVarP(&roomsTime, "time", "t", "", "time of day as HH:MM (default now)")
	}
	for _, c := range []*cobra.Command{roomsCmd, freeCmd} {
		c.Flags().StringVarP(&roomsFilter, "filter", "f", "", "only show rooms whose number contains this text")
		c.Flags().BoolVar(&roomsJSON, "json", false, "output as JSON")
		c.Flags().StringVar(&roomsXLSX, "xlsx", "", "also write an Excel workbook to this file or directory")
	}
	roomsCmd.Flags().BoolVar(&roomsOpenOnly, "open-only", false, "only show rooms that are open")
	roomCmd.Flags().BoolVar(&roomJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(roomsCmd, freeCmd, roomCmd)
}

func query() lookup.Query {
	day, at := lookup.DefaultWhen(now())
	if roomsDay != "" {
		day = roomsDay
	}
	if roomsTime != "" {
		at = roomsTime
	}
	return lookup.Query{
		Day:  day,
		Time: at,
		Filter: availability.Filter{
			OpenOnly: roomsOpenOnly,
			Query:    roomsFilter,
		},
	}
}

func runRooms(cmd *cobra.Command, args []string) error {
	q := query()

	fetch := app.Service.Rooms
	if cmd.Name() == "free" {
		fetch = app.Service.AvailableRooms
	}

	results := make([]*lookup.BuildingRooms, 0, len(args))
	for _, b := range args {
		res, err := fetch(ctxOf(cmd), b, q)
		if err != nil {
			return explain(err)
		}
		results = append(results, res)
	}

	if roomsXLSX != "" {
		path, err := writeWorkbook(roomsXLSX, results)
		if err != nil {
			return err
		}
		app.Logger.Info().Str("path", path).Msg("workbook written")
	}

	if roomsJSON {
		return printJSON(cmd, results)
	}
	for i, res := range results {
		if i > 0 {
			cmd.Println()
		}
		if err := printRooms(cmd, res); err != nil {
			return err
		}
	}
	return nil
}

func printRooms(cmd *cobra.Command, res *lookup.BuildingRooms) error {
	cmd.Printf("%s, %s %s (%d of %d rooms)\n",
		res.Building.DisplayName, res.Day, availability.FormatTime12h(res.Time), len(res.Rooms), res.Total)
	for _, name := range res.Failed {
		cmd.Printf("  warning: no data for %q\n", name)
	}
	if len(res.Rooms) == 0 {
		cmd.Println("No rooms found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tSTATUS\tUNTIL\tOCCUPIED")
	for _, room := range res.Rooms {
		row := export.RoomRow(room, res.Time)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3])
	}
	return tw.Flush()
}

// writeWorkbook writes one sheet per building. A directory target gets a generated
// file name.
func writeWorkbook(target string, results []*lookup.BuildingRooms) (string, error) {
	sheets := make([]export.RoomSheet, 0, len(results))
	for _, res := range results {
		sheets = append(sheets, export.RoomSheet{
			Building: res.Building.DisplayName,
			Day:      res.Day,
			Time:     res.Time,
			Rooms:    res.Rooms,
		})
	}

	path := target
	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		name := ""
		if len(results) == 1 {
			name = results[0].Building.FullName
		}
		path = filepath.Join(target, export.GenerateFilename(name, now()))
	}

	w := export.NewExcelizeWriter()
	defer w.Close()
	if err := export.WriteRoomSheets(w, sheets); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}
	if err := w.SaveToFile(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func runRoom(cmd *cobra.Command, args []string) error {
	details, err := app.Service.RoomDetails(ctxOf(cmd), args[0], args[1], query())
	if err != nil {
		return explain(err)
	}
	if roomJSON {
		return printJSON(cmd, details)
	}

	room := details.Room
	cmd.Printf("%s %s, %s %s\n", details.Building.DisplayName, args[1], details.Day, availability.FormatTime12h(details.Time))
	cmd.Printf("Status:   %s\n", room.Status)
	if room.Status == availability.StatusOccupied {
		cmd.Printf("Until:    %s\n", availability.DisplayStatus(room, details.Time))
	} else {
		cmd.Printf("Free:     %s\n", availability.DisplayStatus(room, details.Time))
	}
	if len(room.OccupiedRanges) > 0 {
		cmd.Printf("Occupied: %s\n", availability.FormatRanges(room.OccupiedRanges))
	}
	if u := details.Usage.Usage; u != nil && u.Semester != "" {
		cmd.Printf("Semester: %s\n", u.Semester)
	}
	return nil
}
