// Package heuristic extracts flight fragments from email text with pattern
// matching and positional proximity, without any external service.
package heuristic

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ProximityWindow bounds how far, in characters, from a flight mention
// airports and times are associated with it.
const ProximityWindow = 500

// Fragment is one leg-shaped result. Empty strings mean not found.
type Fragment struct {
	FlightNumber     string `json:"flight_number"`
	Origin           string `json:"origin"`
	Destination      string `json:"destination"`
	DepartureDate    string `json:"departure_date"`
	DepartureTime    string `json:"departure_time"`
	ArrivalDate      string `json:"arrival_date"`
	ArrivalTime      string `json:"arrival_time"`
	BookingReference string `json:"booking_reference"`
	Offset           int    `json:"offset"`
}

// HasRoute reports whether both ends of the leg are known
func (f Fragment) HasRoute() bool {
	return f.Origin != "" && f.Destination != ""
}

type candidates struct {
	flights  []Match
	dates    []Match
	times    []Match
	airports []Match
	bookings []Match
}

func scan(text string) candidates {
	var c candidates
	c.bookings = findBookingReferences(text)
	c.dates = findDates(text)
	c.times = findTimes(text)

	exclude := make([]Match, 0, len(c.bookings)+len(c.dates)+len(c.times))
	exclude = append(exclude, c.bookings...)
	exclude = append(exclude, c.dates...)
	exclude = append(exclude, c.times...)
	c.flights = findFlights(text, exclude)

	c.airports = findAirports(text, append(exclude, c.flights...))
	return c
}

// Extract returns the flight fragments found in an email, in text order.
// Fragments with neither a flight number nor a full route are dropped.
func Extract(subject, plain, html string) []Fragment {
	text := SearchText(subject, plain, html)
	c := scan(text)

	var booking string
	if len(c.bookings) > 0 {
		booking = c.bookings[0].Value
	}

	var fragments []Fragment
	captured := make(map[int]bool)
	seen := make(map[string]bool)

	for i, fl := range c.flights {
		if seen[fl.Value] {
			continue
		}
		seen[fl.Value] = true

		limit := advance(text, fl.Offset, ProximityWindow)
		if i+1 < len(c.flights) && c.flights[i+1].Offset < limit {
			limit = c.flights[i+1].Offset
		}

		frag := Fragment{
			FlightNumber:     fl.Value,
			BookingReference: booking,
			Offset:           fl.Offset,
		}
		frag.DepartureDate, frag.ArrivalDate = associateDates(c.dates, fl.Offset)

		var times []string
		for _, t := range c.times {
			if t.Offset > fl.Offset && t.Offset < limit {
				times = append(times, t.Value)
			}
		}
		if len(times) > 0 {
			frag.DepartureTime = times[0]
		}
		if len(times) > 1 {
			frag.ArrivalTime = times[1]
		}

		near := nearest(text, c.airports, fl.Offset, 2)
		if len(near) > 0 {
			frag.Origin = near[0].Value
			captured[near[0].Offset] = true
		}
		if len(near) > 1 {
			frag.Destination = near[1].Value
			captured[near[1].Offset] = true
		}

		fragments = append(fragments, frag)
	}

	fragments = append(fragments, departureLines(text, c.airports, captured, booking)...)

	kept := fragments[:0]
	for _, f := range fragments {
		if f.FlightNumber != "" || f.HasRoute() {
			kept = append(kept, f)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Offset < kept[j].Offset })
	return kept
}

// associateDates picks the nearest preceding date as departure, falling back
// to the nearest following one, and the next unused following date as arrival.
func associateDates(dates []Match, offset int) (departure, arrival string) {
	before, after := -1, -1
	for i, d := range dates {
		if d.Offset < offset {
			before = i
		} else if d.Offset > offset && after == -1 {
			after = i
		}
	}

	used := -1
	switch {
	case before >= 0:
		departure, used = dates[before].Value, before
	case after >= 0:
		departure, used = dates[after].Value, after
	}

	if after >= 0 {
		for i := after; i < len(dates); i++ {
			if i != used {
				arrival = dates[i].Value
				break
			}
		}
	}
	return departure, arrival
}

// nearest returns up to n matches within the proximity window, closest
// first. Equal distances keep text order.
func nearest(text string, matches []Match, offset, n int) []Match {
	type near struct {
		m    Match
		dist int
	}
	var within []near
	for _, m := range matches {
		if d := distance(text, m.Offset, offset); d <= ProximityWindow {
			within = append(within, near{m, d})
		}
	}
	sort.SliceStable(within, func(i, j int) bool { return within[i].dist < within[j].dist })
	if len(within) > n {
		within = within[:n]
	}

	out := make([]Match, len(within))
	for i, w := range within {
		out[i] = w.m
	}
	return out
}

// distance counts the characters between two byte offsets of text
func distance(text string, a, b int) int {
	if a > b {
		a, b = b, a
	}
	return utf8.RuneCountInString(text[a:b])
}

// advance returns the byte offset n characters past from, capped at the
// end of text.
func advance(text string, from, n int) int {
	i := from
	for ; n > 0 && i < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}

// departureLines turns uncaptured codes on lines mentioning a departure into
// extra fragments: first code origin, second destination.
func departureLines(text string, airports []Match, captured map[int]bool, booking string) []Fragment {
	var out []Fragment
	start := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		end := start + len(line)
		if departureLinePattern.MatchString(line) {
			var codes []Match
			for _, a := range airports {
				if a.Offset >= start && a.Offset < end && !captured[a.Offset] {
					codes = append(codes, a)
				}
			}
			if len(codes) > 0 {
				frag := Fragment{
					Origin:           codes[0].Value,
					BookingReference: booking,
					Offset:           codes[0].Offset,
				}
				if len(codes) > 1 {
					frag.Destination = codes[1].Value
				}
				for _, c := range codes {
					captured[c.Offset] = true
				}
				out = append(out, frag)
			}
		}
		start = end
	}
	return out
}

func sortByOffset(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Offset < ms[j].Offset })
}
