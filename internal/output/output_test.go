package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vijay-prabhu/tripvault/internal/database"
	"github.com/vijay-prabhu/tripvault/internal/flight"
)

func TestWrite_Trips(t *testing.T) {
	records := []flight.Record{{
		BookingReference:         "ABCD",
		OutboundFlightNumber:     "BA123",
		OutboundDepartureDate:    "2025-01-11",
		OutboundDepartureAirport: "LGW",
		OutboundArrivalAirport:   "OSL",
	}}

	var buf bytes.Buffer
	if err := Write(&buf, FormatTable, records); err != nil {
		t.Fatalf("Write(table) error = %v", err)
	}
	for _, want := range []string{"ABCD", "BA123", "2025-01-11", "LGW", "OSL"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := Write(&buf, FormatJSON, records); err != nil {
		t.Fatalf("Write(json) error = %v", err)
	}
	var decoded []flight.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded[0] != records[0] {
		t.Errorf("decoded = %+v", decoded[0])
	}
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatTable, []flight.Record{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No trips found.") {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	if err := Write(&buf, FormatTable, []database.Message(nil)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No processed messages.") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWrite_Downloads(t *testing.T) {
	downloads := []database.PhotoDownload{{
		PhotoID:      "5301",
		Folder:       "trips/2025-01-11 to 2025-01-18",
		Path:         "trips/2025-01-11 to 2025-01-18/5301.jpg",
		DownloadedAt: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	if err := Write(&buf, FormatTable, downloads); err != nil {
		t.Fatalf("Write(table) error = %v", err)
	}
	for _, want := range []string{"5301", "5301.jpg", "2025-02-01"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := Write(&buf, FormatTable, []database.PhotoDownload{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No photos downloaded.") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "yaml", nil); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := Write(&buf, FormatTable, 42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a much longer subject line", 10, "a much..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
