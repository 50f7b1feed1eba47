package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_RoundTripWithProse(t *testing.T) {
	objects := []map[string]any{
		{"booking_reference": "ABCD", "outbound_departure_date": "2025-01-11"},
		{"nested": map[string]any{"a": "b", "n": 1.5}, "list": []any{"x", true, nil}},
		{},
	}
	wrappers := []struct{ prefix, suffix string }{
		{"", ""},
		{"Here is the result: ", " Let me know if you need anything else."},
		{"```json\n", "\n```"},
		{"Sure!\n\n", "\n"},
	}

	for _, obj := range objects {
		data, err := json.Marshal(obj)
		require.NoError(t, err)

		for _, w := range wrappers {
			got, err := ParseJSON(w.prefix + string(data) + w.suffix)
			require.NoError(t, err, "wrapper %q", w.prefix)

			again, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		}
	}
}

func TestParseJSON_LargeIntegers(t *testing.T) {
	raw := `{"e":1e400,"m":9007199254740993,"n":12345678901234567890,"x":-0.000001}`

	got, err := ParseJSON("Here: " + raw + " thanks")
	require.NoError(t, err)

	again, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, raw, string(again))

	assert.Equal(t, map[string]string{
		"m": "9007199254740993",
		"n": "12345678901234567890",
		"x": "-0.000001",
		"e": "1e400",
	}, StringFields(got))
}

func TestParseJSON_Malformed(t *testing.T) {
	inputs := []string{
		"no json here",
		"",
		"{ not valid }",
		"} backwards {",
		"null",
		"[1, 2, 3]",
	}

	for _, in := range inputs {
		got, err := ParseJSON(in)
		assert.Nil(t, got)

		var perr *ParseError
		require.True(t, errors.As(err, &perr), "input %q", in)
		assert.Equal(t, in, perr.Raw)

		sentinel := perr.Sentinel()
		assert.Equal(t, ParseFailedMessage, sentinel["error"])
		assert.Equal(t, in, sentinel["raw_response"])
	}
}

func TestParseJSON_GreedyBraces(t *testing.T) {
	// first '{' to last '}' spans both fragments, which is not valid JSON
	_, err := ParseJSON(`{"a": "1"} and also {"b": "2"}`)
	require.Error(t, err)

	// a trailing brace in prose is captured and breaks the parse
	_, err = ParseJSON(`{"a": "1"} :}`)
	require.Error(t, err)
}

func TestStringFields(t *testing.T) {
	got := StringFields(map[string]any{
		"s":      "  AB1234 ",
		"n":      float64(1234),
		"num":    json.Number("1234"),
		"f":      1.5,
		"b":      true,
		"null":   nil,
		"nested": map[string]any{"a": "b"},
	})

	assert.Equal(t, map[string]string{
		"s":      "AB1234",
		"n":      "1234",
		"num":    "1234",
		"f":      "1.5",
		"b":      "true",
		"null":   "",
		"nested": `{"a":"b"}`,
	}, got)
}

func TestValidateFlightJSON(t *testing.T) {
	ok := map[string]any{
		"booking_reference":       "ABCD",
		"outbound_departure_date": "2025-01-11",
		"outbound_departure_time": "10:30",
		"inbound_departure_date":  "",
		"inbound_arrival_time":    nil,
		"extra_key":               "ignored",
	}
	require.NoError(t, ValidateFlightJSON(ok))

	badDate := map[string]any{"outbound_departure_date": "11 Jan 2025"}
	assert.Error(t, ValidateFlightJSON(badDate))

	badType := map[string]any{"outbound_flight_number": 1234.0}
	assert.Error(t, ValidateFlightJSON(badType))
}
