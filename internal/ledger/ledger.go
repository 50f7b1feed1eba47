// Package ledger maintains the trips CSV: one row per saved trip, header
// written once when the file is created.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vijay-prabhu/tripvault/internal/flight"
)

// Append adds rec as a row, writing the header first if the file is new
func Append(path string, rec flight.Record) error {
	_, err := os.Stat(path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat ledger: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(flight.LedgerHeader); err != nil {
			return fmt.Errorf("failed to write ledger header: %w", err)
		}
	}
	if err := w.Write(rec.Row()); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger: %w", err)
	}
	return f.Close()
}

// Read returns every record in the ledger, skipping the header row
func Read(path string) ([]flight.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records []flight.Record
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == flight.LedgerHeader[0] {
				continue
			}
		}
		records = append(records, flight.FromRow(row))
	}
	return records, nil
}

// WriteCSV writes the header and every record to w
func WriteCSV(w io.Writer, records []flight.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(flight.LedgerHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
