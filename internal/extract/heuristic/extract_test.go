package heuristic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SingleFlight(t *testing.T) {
	frags := Extract("", "Flight AA1234 departing JFK on 2025-01-11 arriving LHR", "")
	require.Len(t, frags, 1)

	f := frags[0]
	assert.Equal(t, "AA1234", f.FlightNumber)
	assert.Equal(t, "JFK", f.Origin)
	assert.Equal(t, "LHR", f.Destination)
	assert.Equal(t, "2025-01-11", f.DepartureDate)
}

func TestExtract_RoundTrip(t *testing.T) {
	body := `Your booking reference: XK7Q2P

Outbound - Saturday, 11 Jan 2025
BA 123 LGW 10:30 OSL 13:40

Return - Feb 22, 2025
BA124 OSL 2:30 pm LGW 3:45 pm
`
	frags := Extract("Your trip to Oslo", body, "")
	require.Len(t, frags, 2)

	out := frags[0]
	assert.Equal(t, "BA123", out.FlightNumber)
	assert.Equal(t, "2025-01-11", out.DepartureDate)
	assert.Equal(t, "10:30", out.DepartureTime)
	assert.Equal(t, "13:40", out.ArrivalTime)
	assert.Equal(t, "LGW", out.Origin)
	assert.Equal(t, "OSL", out.Destination)
	assert.Equal(t, "XK7Q2P", out.BookingReference)

	in := frags[1]
	assert.Equal(t, "BA124", in.FlightNumber)
	assert.Equal(t, "2025-02-22", in.DepartureDate)
	assert.Equal(t, "14:30", in.DepartureTime)
	assert.Equal(t, "15:45", in.ArrivalTime)
	assert.Equal(t, "OSL", in.Origin)
	assert.Equal(t, "LGW", in.Destination)
	assert.Equal(t, "XK7Q2P", in.BookingReference, "first reference in the document")
}

func TestExtract_HTMLFallback(t *testing.T) {
	html := `<html><body><p>Flight <b>DY1302</b></p><p>2025-03-04 OSL to BGO</p></body></html>`
	frags := Extract("Booking", "   ", html)
	require.Len(t, frags, 1)
	assert.Equal(t, "DY1302", frags[0].FlightNumber)
	assert.Equal(t, "2025-03-04", frags[0].DepartureDate)
	assert.Equal(t, "OSL", frags[0].Origin)
	assert.Equal(t, "BGO", frags[0].Destination)
}

func TestExtract_DepartureLine(t *testing.T) {
	body := "Departing from CPH to ARN tomorrow.\nSee you soon"
	frags := Extract("", body, "")
	require.Len(t, frags, 1)
	assert.Empty(t, frags[0].FlightNumber)
	assert.Equal(t, "CPH", frags[0].Origin)
	assert.Equal(t, "ARN", frags[0].Destination)
}

func TestExtract_WindowCountsCharacters(t *testing.T) {
	// 300 two-byte characters: inside the window by characters, outside by bytes
	filler := strings.Repeat("ø", 300)
	frags := Extract("", "Flight SK1466 "+filler+" OSL 10:30 TRD 11:25", "")
	require.Len(t, frags, 1)
	assert.Equal(t, "SK1466", frags[0].FlightNumber)
	assert.Equal(t, "OSL", frags[0].Origin)
	assert.Equal(t, "TRD", frags[0].Destination)
	assert.Equal(t, "10:30", frags[0].DepartureTime)
	assert.Equal(t, "11:25", frags[0].ArrivalTime)

	filler = strings.Repeat("ø", 520)
	frags = Extract("", "Flight SK1466 "+filler+" OSL 10:30 TRD 11:25", "")
	require.Len(t, frags, 1)
	assert.Empty(t, frags[0].Origin)
	assert.Empty(t, frags[0].DepartureTime)
}

func TestExtract_DropsIncomplete(t *testing.T) {
	// a single code on a departure line has no flight number and no full route
	frags := Extract("", "Your flight departs from JFK", "")
	assert.Empty(t, frags)

	assert.Empty(t, Extract("Hello", "Nothing to see here.", ""))
}

func TestSearchText(t *testing.T) {
	assert.Equal(t, "Subj\nplain", SearchText("Subj", "plain", "<p>html</p>"))
	assert.Equal(t, "Subj\n html ", SearchText("Subj", "", "<p>html</p>"))
}

func TestFindDates(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"on 2025-01-11", "2025-01-11"},
		{"on 11/01/2025", "2025-01-11"},
		{"on 11 Jan 2025", "2025-01-11"},
		{"on 11th January 2025", "2025-01-11"},
		{"on Jan 11, 2025", "2025-01-11"},
		{"on Saturday, January 11 2025", "2025-01-11"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			dates := findDates(tt.text)
			require.Len(t, dates, 1)
			assert.Equal(t, tt.want, dates[0].Value)
		})
	}
}

func TestFindTimes(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"at 10:30", "10:30"},
		{"at 7:05", "07:05"},
		{"at 10:30 AM", "10:30"},
		{"at 2:30 pm", "14:30"},
		{"at 12am", "00:00"},
		{"at 12 p.m.", "12:00"},
		{"at 9pm", "21:00"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			times := findTimes(tt.text)
			require.Len(t, times, 1)
			assert.Equal(t, tt.want, times[0].Value)
		})
	}
}

func TestFindAirports_Stoplist(t *testing.T) {
	airports := findAirports("THE flight FOR YOU from JFK to LHR at UTC", nil)
	var codes []string
	for _, a := range airports {
		codes = append(codes, a.Value)
	}
	assert.Equal(t, []string{"JFK", "LHR"}, codes)
}

func TestFindBookingReferences(t *testing.T) {
	refs := findBookingReferences("Flight AB1234. Booking ref: QW9ERT")
	require.NotEmpty(t, refs)
	assert.Equal(t, "QW9ERT", refs[0].Value)

	// bare fallback skips flight-shaped codes
	refs = findBookingReferences("Flight AB1234 code 7HJK2L")
	require.Len(t, refs, 1)
	assert.Equal(t, "7HJK2L", refs[0].Value)
}

func TestAssociateDates(t *testing.T) {
	dates := []Match{
		{Value: "2025-01-01", Offset: 10},
		{Value: "2025-01-02", Offset: 50},
		{Value: "2025-01-03", Offset: 90},
	}

	dep, arr := associateDates(dates, 40)
	assert.Equal(t, "2025-01-01", dep)
	assert.Equal(t, "2025-01-02", arr)

	dep, arr = associateDates(dates, 5)
	assert.Equal(t, "2025-01-01", dep)
	assert.Equal(t, "2025-01-02", arr, "arrival skips the date used for departure")

	dep, arr = associateDates(dates, 100)
	assert.Equal(t, "2025-01-03", dep)
	assert.Empty(t, arr)
}
