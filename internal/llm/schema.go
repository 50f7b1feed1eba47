package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vijay-prabhu/tripvault/internal/flight"
)

var (
	flightSchemaOnce sync.Once
	flightSchema     *jsonschema.Schema
	flightSchemaErr  error
)

// BuildFlightJSONSchema returns the expected reply shape as a schema map.
// Every field is an optional string; dates and times carry a pattern but
// empty strings are allowed.
func BuildFlightJSONSchema() map[string]any {
	props := make(map[string]any, len(flight.Fields))
	for _, f := range flight.Fields {
		props[f] = map[string]any{"type": []any{"string", "null"}}
	}
	for _, f := range []string{
		"outbound_departure_date", "outbound_arrival_date",
		"inbound_departure_date", "inbound_arrival_date",
	} {
		props[f] = map[string]any{
			"type":    []any{"string", "null"},
			"pattern": `^$|^\d{4}-\d{2}-\d{2}$`,
		}
	}
	for _, f := range []string{
		"outbound_departure_time", "outbound_arrival_time",
		"inbound_departure_time", "inbound_arrival_time",
	} {
		props[f] = map[string]any{
			"type":    []any{"string", "null"},
			"pattern": `^$|^\d{1,2}:\d{2}$`,
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

// ValidateFlightJSON checks a decoded reply against the flight schema
func ValidateFlightJSON(v map[string]any) error {
	flightSchemaOnce.Do(func() {
		flightSchema, flightSchemaErr = compileSchema(BuildFlightJSONSchema())
	})
	if flightSchemaErr != nil {
		return flightSchemaErr
	}
	if err := flightSchema.Validate(toJSONValue(v)); err != nil {
		return fmt.Errorf("reply does not match flight schema: %w", err)
	}
	return nil
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("flight.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("flight.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// toJSONValue converts map[string]any to the generic form the validator
// expects (map[string]interface{} with json-decoded leaves).
func toJSONValue(v map[string]any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}
