package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseFailedMessage is the error text of a reply that is not JSON
const ParseFailedMessage = "Failed to parse JSON"

// ParseError carries a generation reply that could not be decoded
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", ParseFailedMessage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Sentinel returns the legacy {error, raw_response} object for diagnostics
func (e *ParseError) Sentinel() map[string]any {
	return map[string]any{
		"error":        ParseFailedMessage,
		"raw_response": e.Raw,
	}
}

// ParseJSON decodes a JSON object out of free text. The slice from the
// first '{' to the last '}' is parsed when both exist in that order,
// otherwise the whole text. Matching is greedy: unrelated trailing braces
// are captured too. Numbers decode as json.Number so large integers keep
// every digit. Failures return *ParseError holding the original text.
func ParseJSON(text string) (map[string]any, error) {
	candidate := text
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate = text[start : end+1]
	}

	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Raw: text, Err: fmt.Errorf("unexpected data after JSON object")}
	}
	if out == nil {
		// "null" decodes without error but is not an object
		return nil, &ParseError{Raw: text, Err: fmt.Errorf("reply is not a JSON object")}
	}
	return out, nil
}

// StringFields flattens decoded JSON values into strings: null becomes
// empty, numbers and booleans their literal text, nested values compact JSON.
func StringFields(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = strings.TrimSpace(t)
		case json.Number:
			out[k] = t.String()
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			b, err := json.Marshal(t)
			if err != nil {
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}
