package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output formats accepted by --output
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// JSONTo writes data as indented JSON to the given writer
func JSONTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Write renders data in the given format
func Write(w io.Writer, format string, data any) error {
	switch format {
	case FormatJSON:
		return JSONTo(w, data)
	case FormatTable, "":
		return TableTo(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
