package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/tripvault/internal/email"
	"github.com/vijay-prabhu/tripvault/internal/extract/heuristic"
	"github.com/vijay-prabhu/tripvault/internal/flight"
	"github.com/vijay-prabhu/tripvault/internal/llm"
)

type stubGenerator struct {
	reply   string
	err     error
	system  string
	prompts []string
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	s.system = system
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func TestResponseExampleMatchesFields(t *testing.T) {
	var example map[string]string
	require.NoError(t, json.Unmarshal([]byte(ResponseExample), &example))

	var keys []string
	for k := range example {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, flight.Fields, keys)
}

func TestBuildPrompt_Verbatim(t *testing.T) {
	body := `<table><tr><td>BA123 &amp; "quotes"</td></tr></table>`
	prompt := BuildPrompt(body)
	assert.Contains(t, prompt, "<email>\n"+body+"\n</email>")
	assert.Contains(t, prompt, "<response>\n"+ResponseExample+"\n</response>")
}

func TestModelExtract(t *testing.T) {
	gen := &stubGenerator{reply: `Here you go: {"booking_reference": "XYZ", "outbound_departure_date": "2025-01-11", "outbound_flight_number": 1234, "inbound_departure_date": null}`}
	m := NewModel(gen)

	res, err := m.Extract(context.Background(), &email.Email{ID: "1", HTMLBody: "<p>html</p>", PlainBody: "plain"})
	require.NoError(t, err)
	require.False(t, res.Failed())

	assert.Equal(t, "XYZ", res.Record.BookingReference)
	assert.Equal(t, "2025-01-11", res.Record.OutboundDepartureDate)
	assert.Equal(t, "1234", res.Record.OutboundFlightNumber)
	assert.Empty(t, res.Record.InboundDepartureDate)

	assert.Equal(t, llm.SystemInstruction, gen.system)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "<p>html</p>")
	assert.NotContains(t, gen.prompts[0], "plain")
}

func TestModelExtract_PlainFallback(t *testing.T) {
	gen := &stubGenerator{reply: `{}`}
	_, err := NewModel(gen).Extract(context.Background(), &email.Email{PlainBody: "only plain text"})
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], "only plain text")
}

func TestModelExtract_ParseFailure(t *testing.T) {
	gen := &stubGenerator{reply: "I could not find any flights."}
	res, err := NewModel(gen).Extract(context.Background(), &email.Email{HTMLBody: "x"})
	require.NoError(t, err)
	require.True(t, res.Failed())

	assert.Equal(t, gen.reply, res.Failure.Raw)
	assert.Equal(t, gen.reply, res.Failure.Sentinel()["raw_response"])
	assert.Equal(t, flight.Record{}, res.Record)
}

func TestModelExtract_ServiceErrorPropagates(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := &stubGenerator{err: boom}
	_, err := NewModel(gen, WithSchemaCheck(false)).Extract(context.Background(), &email.Email{ID: "m1", HTMLBody: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.Contains(err.Error(), "m1"))
}

func TestHeuristicExtract(t *testing.T) {
	e := &email.Email{
		Subject:   "Booking confirmed",
		PlainBody: "Flight AA1234 departing JFK on 2025-01-11 arriving LHR",
	}
	res, err := NewHeuristic().Extract(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, "AA1234", res.Record.OutboundFlightNumber)
	assert.Equal(t, "JFK", res.Record.OutboundDepartureAirport)
	assert.Equal(t, "LHR", res.Record.OutboundArrivalAirport)
	assert.Equal(t, "2025-01-11", res.Record.OutboundDepartureDate)
	assert.Empty(t, res.Record.InboundFlightNumber)
	assert.True(t, res.Record.Valid())
	assert.Len(t, res.Fragments, 1)
}

func TestFromFragments(t *testing.T) {
	frags := []heuristic.Fragment{
		{FlightNumber: "BA1", Origin: "LGW", Destination: "OSL", DepartureDate: "2025-01-11", BookingReference: "REF123"},
		{FlightNumber: "BA1", Origin: "LGW", Destination: "OSL", DepartureDate: "2025-01-11", Offset: 90},
		{FlightNumber: "BA2", Origin: "OSL", Destination: "LGW", DepartureDate: "2025-02-22"},
		{FlightNumber: "BA1", Origin: "X", Destination: "Y"},
	}
	rec := FromFragments(frags)

	assert.Equal(t, "REF123", rec.BookingReference)
	assert.Equal(t, "BA1", rec.OutboundFlightNumber)
	assert.Equal(t, "BA2", rec.InboundFlightNumber)
	assert.Equal(t, "2025-02-22", rec.InboundDepartureDate)
	assert.Equal(t, "OSL", rec.InboundDepartureAirport)

	assert.Equal(t, flight.Record{}, FromFragments(nil))
}

func TestNew(t *testing.T) {
	ex, err := New(StrategyHeuristic, nil)
	require.NoError(t, err)
	assert.Equal(t, "heuristic", ex.Name())

	ex, err = New(StrategyModel, &stubGenerator{})
	require.NoError(t, err)
	assert.Equal(t, "model/stub", ex.Name())

	_, err = New(StrategyModel, nil)
	assert.Error(t, err)

	_, err = New("magic", nil)
	assert.Error(t, err)
}
