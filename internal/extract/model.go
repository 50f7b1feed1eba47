package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vijay-prabhu/tripvault/internal/email"
	"github.com/vijay-prabhu/tripvault/internal/flight"
	"github.com/vijay-prabhu/tripvault/internal/llm"
	"github.com/vijay-prabhu/tripvault/internal/logging"
)

const promptInstruction = `You are a professional data extraction tool. Your task is to carefully analyse the provided <email> and extract the
requested information as reported into the <response> tag. You must return a valid JSON data structure.`

// ResponseExample is the worked reply shown to the model. Its keys are
// exactly flight.Fields.
const ResponseExample = `{
"booking_reference": "ABCD",
"outbound_flight_number": "AB1234",
"outbound_departure_date": "2025-01-11",
"outbound_departure_time": "10:30",
"outbound_departure_airport": "London-Gatwick",
"outbound_arrival_date": "2025-01-11",
"outbound_arrival_time": "11:40",
"outbound_arrival_airport": "Oslo-Gardermoen",
"inbound_flight_number": "AB4321",
"inbound_departure_date": "2025-02-22",
"inbound_departure_time": "12:30",
"inbound_departure_airport": "Oslo-Gardermoen",
"inbound_arrival_date": "2025-02-22",
"inbound_arrival_time": "13:45",
"inbound_arrival_airport": "London-Gatwick"
}`

// Model extracts records by prompting a generation service
type Model struct {
	gen         llm.Generator
	schemaCheck bool
}

// ModelOption configures a Model
type ModelOption func(*Model)

// WithSchemaCheck toggles the JSON-Schema warning pass over replies
func WithSchemaCheck(enabled bool) ModelOption {
	return func(m *Model) {
		m.schemaCheck = enabled
	}
}

// NewModel creates a model-backed extractor
func NewModel(gen llm.Generator, opts ...ModelOption) *Model {
	m := &Model{gen: gen, schemaCheck: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the strategy and provider
func (m *Model) Name() string {
	return StrategyModel + "/" + m.gen.Name()
}

// BuildPrompt embeds the email body verbatim between <email> tags. A body
// that itself contains the tags confuses the model; that is accepted.
func BuildPrompt(body string) string {
	var b strings.Builder
	b.WriteString(promptInstruction)
	b.WriteString("\n<email>\n")
	b.WriteString(body)
	b.WriteString("\n</email>\n<response>\n")
	b.WriteString(ResponseExample)
	b.WriteString("\n</response>\n")
	return b.String()
}

// Extract sends the HTML body (plain when there is no HTML) to the
// generator. Service errors are returned as-is; undecodable replies come
// back as a Result with Failure set.
func (m *Model) Extract(ctx context.Context, e *email.Email) (*Result, error) {
	body := e.HTMLBody
	if strings.TrimSpace(body) == "" {
		body = e.PlainBody
	}

	reply, err := m.gen.Generate(ctx, llm.SystemInstruction, BuildPrompt(body))
	if err != nil {
		return nil, fmt.Errorf("generation failed for message %s: %w", e.ID, err)
	}

	decoded, err := llm.ParseJSON(reply)
	if err != nil {
		var perr *llm.ParseError
		if errors.As(err, &perr) {
			return &Result{Failure: perr, Raw: reply}, nil
		}
		return nil, err
	}

	if m.schemaCheck {
		if err := llm.ValidateFlightJSON(decoded); err != nil {
			logging.Log.WithField("message_id", e.ID).Warnf("Reply schema mismatch: %v", err)
		}
	}

	return &Result{
		Record: flight.FromMap(llm.StringFields(decoded)),
		Raw:    reply,
	}, nil
}
