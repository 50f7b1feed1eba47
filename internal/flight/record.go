// Package flight defines the canonical round-trip flight record shared by
// extraction, persistence and the ledger.
package flight

// Record is one round trip: an outbound and an inbound leg plus the booking
// reference. Empty string means unknown; fields are never absent.
type Record struct {
	BookingReference string `json:"booking_reference"`

	OutboundFlightNumber     string `json:"outbound_flight_number"`
	OutboundDepartureDate    string `json:"outbound_departure_date"`
	OutboundDepartureTime    string `json:"outbound_departure_time"`
	OutboundDepartureAirport string `json:"outbound_departure_airport"`
	OutboundArrivalDate      string `json:"outbound_arrival_date"`
	OutboundArrivalTime      string `json:"outbound_arrival_time"`
	OutboundArrivalAirport   string `json:"outbound_arrival_airport"`

	InboundFlightNumber     string `json:"inbound_flight_number"`
	InboundDepartureDate    string `json:"inbound_departure_date"`
	InboundDepartureTime    string `json:"inbound_departure_time"`
	InboundDepartureAirport string `json:"inbound_departure_airport"`
	InboundArrivalDate      string `json:"inbound_arrival_date"`
	InboundArrivalTime      string `json:"inbound_arrival_time"`
	InboundArrivalAirport   string `json:"inbound_arrival_airport"`
}

// Fields lists the JSON field names in prompt-example order
var Fields = []string{
	"booking_reference",
	"outbound_flight_number",
	"outbound_departure_date",
	"outbound_departure_time",
	"outbound_departure_airport",
	"outbound_arrival_date",
	"outbound_arrival_time",
	"outbound_arrival_airport",
	"inbound_flight_number",
	"inbound_departure_date",
	"inbound_departure_time",
	"inbound_departure_airport",
	"inbound_arrival_date",
	"inbound_arrival_time",
	"inbound_arrival_airport",
}

// LedgerHeader is the fixed header row of the trips ledger
var LedgerHeader = []string{
	"Booking Ref",
	"Outbound Flight No.",
	"Outbound Departure Airport", "Outbound Departure Date", "Outbound Departure Time",
	"Outbound Arrival Airport", "Outbound Arrival Date", "Outbound Arrival Time",
	"Inbound Flight No.",
	"Inbound Departure Airport", "Inbound Departure Date", "Inbound Departure Time",
	"Inbound Arrival Airport", "Inbound Arrival Date", "Inbound Arrival Time",
}

// Valid reports whether the record has at least one departure date
func (r *Record) Valid() bool {
	return r.OutboundDepartureDate != "" || r.InboundDepartureDate != ""
}

// Row returns the record in ledger column order
func (r *Record) Row() []string {
	return []string{
		r.BookingReference,
		r.OutboundFlightNumber,
		r.OutboundDepartureAirport, r.OutboundDepartureDate, r.OutboundDepartureTime,
		r.OutboundArrivalAirport, r.OutboundArrivalDate, r.OutboundArrivalTime,
		r.InboundFlightNumber,
		r.InboundDepartureAirport, r.InboundDepartureDate, r.InboundDepartureTime,
		r.InboundArrivalAirport, r.InboundArrivalDate, r.InboundArrivalTime,
	}
}

// FromRow rebuilds a record from a ledger row. Short rows leave the
// trailing fields empty.
func FromRow(row []string) Record {
	col := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Record{
		BookingReference:         col(0),
		OutboundFlightNumber:     col(1),
		OutboundDepartureAirport: col(2),
		OutboundDepartureDate:    col(3),
		OutboundDepartureTime:    col(4),
		OutboundArrivalAirport:   col(5),
		OutboundArrivalDate:      col(6),
		OutboundArrivalTime:      col(7),
		InboundFlightNumber:      col(8),
		InboundDepartureAirport:  col(9),
		InboundDepartureDate:     col(10),
		InboundDepartureTime:     col(11),
		InboundArrivalAirport:    col(12),
		InboundArrivalDate:       col(13),
		InboundArrivalTime:       col(14),
	}
}

// FromMap builds a record from decoded JSON, ignoring unknown keys.
// Values are expected to be strings already.
func FromMap(m map[string]string) Record {
	return Record{
		BookingReference:         m["booking_reference"],
		OutboundFlightNumber:     m["outbound_flight_number"],
		OutboundDepartureDate:    m["outbound_departure_date"],
		OutboundDepartureTime:    m["outbound_departure_time"],
		OutboundDepartureAirport: m["outbound_departure_airport"],
		OutboundArrivalDate:      m["outbound_arrival_date"],
		OutboundArrivalTime:      m["outbound_arrival_time"],
		OutboundArrivalAirport:   m["outbound_arrival_airport"],
		InboundFlightNumber:      m["inbound_flight_number"],
		InboundDepartureDate:     m["inbound_departure_date"],
		InboundDepartureTime:     m["inbound_departure_time"],
		InboundDepartureAirport:  m["inbound_departure_airport"],
		InboundArrivalDate:       m["inbound_arrival_date"],
		InboundArrivalTime:       m["inbound_arrival_time"],
		InboundArrivalAirport:    m["inbound_arrival_airport"],
	}
}
