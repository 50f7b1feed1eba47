package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/tripvault/internal/database"
	"github.com/vijay-prabhu/tripvault/internal/flight"
)

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data any) error {
	switch v := data.(type) {
	case []flight.Record:
		return tripsTable(w, v)
	case []database.Message:
		return historyTable(w, v)
	case []database.Run:
		return runsTable(w, v)
	case []database.PhotoDownload:
		return downloadsTable(w, v)
	case *database.Stats:
		return statsTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func tripsTable(w io.Writer, records []flight.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No trips found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Booking", "Outbound", "Route", "Inbound", "Route")
	for _, r := range records {
		if err := table.Append([]string{
			r.BookingReference,
			leg(r.OutboundFlightNumber, r.OutboundDepartureDate, r.OutboundDepartureTime),
			route(r.OutboundDepartureAirport, r.OutboundArrivalAirport),
			leg(r.InboundFlightNumber, r.InboundDepartureDate, r.InboundDepartureTime),
			route(r.InboundDepartureAirport, r.InboundArrivalAirport),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func historyTable(w io.Writer, messages []database.Message) error {
	if len(messages) == 0 {
		fmt.Fprintln(w, "No processed messages.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Processed", "Status", "Subject", "Folder")
	for _, m := range messages {
		if err := table.Append([]string{
			m.ProcessedAt.Format("2006-01-02 15:04"),
			string(m.Status),
			truncate(deref(m.Subject), 40),
			deref(m.Folder),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func runsTable(w io.Writer, runs []database.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Started", "Kind", "Processed", "Saved", "Skipped", "Failed")
	for _, r := range runs {
		if err := table.Append([]string{
			r.StartedAt.Format("2006-01-02 15:04"),
			string(r.Kind),
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.Saved),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func downloadsTable(w io.Writer, downloads []database.PhotoDownload) error {
	if len(downloads) == 0 {
		fmt.Fprintln(w, "No photos downloaded.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Downloaded", "Photo", "Trip", "File")
	for _, d := range downloads {
		if err := table.Append([]string{
			d.DownloadedAt.Format("2006-01-02 15:04"),
			d.PhotoID,
			filepath.Base(d.Folder),
			filepath.Base(d.Path),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func statsTable(w io.Writer, s *database.Stats) error {
	fmt.Fprintln(w, "Catalog")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Messages processed:     %d\n", s.Messages)
	fmt.Fprintf(w, "Saved as trips:         %d\n", s.Saved)
	fmt.Fprintf(w, "Skipped (no dates):     %d\n", s.Skipped)
	fmt.Fprintf(w, "Unparseable replies:    %d\n", s.ParseFailed)
	fmt.Fprintf(w, "Photos downloaded:      %d\n", s.Photos)
	fmt.Fprintf(w, "Runs:                   %d\n", s.Runs)
	return nil
}

func leg(number, date, clock string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{number, date, clock} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func route(from, to string) string {
	if from == "" && to == "" {
		return ""
	}
	return from + " → " + to
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
