package extract

import (
	"context"

	"github.com/vijay-prabhu/tripvault/internal/email"
	"github.com/vijay-prabhu/tripvault/internal/extract/heuristic"
	"github.com/vijay-prabhu/tripvault/internal/flight"
)

// Heuristic extracts records offline with pattern matching
type Heuristic struct{}

// NewHeuristic creates the offline extractor
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Name returns the strategy name
func (h *Heuristic) Name() string {
	return StrategyHeuristic
}

// Extract never fails; an email without usable fragments yields an empty
// (invalid) record.
func (h *Heuristic) Extract(_ context.Context, e *email.Email) (*Result, error) {
	frags := heuristic.Extract(e.Subject, e.PlainBody, e.HTMLBody)
	return &Result{
		Record:    FromFragments(frags),
		Fragments: frags,
	}, nil
}

// FromFragments maps the first fragment to the outbound leg and the last
// fragment with a different flight to the inbound leg.
func FromFragments(frags []heuristic.Fragment) flight.Record {
	var rec flight.Record
	if len(frags) == 0 {
		return rec
	}

	out := frags[0]
	rec.BookingReference = out.BookingReference
	rec.OutboundFlightNumber = out.FlightNumber
	rec.OutboundDepartureDate = out.DepartureDate
	rec.OutboundDepartureTime = out.DepartureTime
	rec.OutboundDepartureAirport = out.Origin
	rec.OutboundArrivalDate = out.ArrivalDate
	rec.OutboundArrivalTime = out.ArrivalTime
	rec.OutboundArrivalAirport = out.Destination

	for i := len(frags) - 1; i > 0; i-- {
		in := frags[i]
		if in == out || (in.FlightNumber != "" && in.FlightNumber == out.FlightNumber) {
			continue
		}
		rec.InboundFlightNumber = in.FlightNumber
		rec.InboundDepartureDate = in.DepartureDate
		rec.InboundDepartureTime = in.DepartureTime
		rec.InboundDepartureAirport = in.Origin
		rec.InboundArrivalDate = in.ArrivalDate
		rec.InboundArrivalTime = in.ArrivalTime
		rec.InboundArrivalAirport = in.Destination
		break
	}
	return rec
}
