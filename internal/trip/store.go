// Package trip writes per-trip folders: the archived email and the
// extracted record.
package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vijay-prabhu/tripvault/internal/email"
	"github.com/vijay-prabhu/tripvault/internal/flight"
)

// File names inside a trip folder
const (
	EmailFile  = "flight_confirmation.txt"
	RecordFile = "flight_confirmation.json"
)

// ErrMissingDates is returned for records with no usable departure date
var ErrMissingDates = errors.New("missing flight dates")

// FolderName derives the folder name from the departure dates:
// "<outbound> to <inbound>" when both are known, else the known one.
// Dates not in YYYY-MM-DD form count as unknown.
func FolderName(rec flight.Record) (string, bool) {
	out, in := folderDate(rec.OutboundDepartureDate), folderDate(rec.InboundDepartureDate)
	switch {
	case out != "" && in != "":
		return out + " to " + in, true
	case out != "":
		return out, true
	case in != "":
		return in, true
	default:
		return "", false
	}
}

func folderDate(d string) string {
	if _, err := time.Parse(time.DateOnly, d); err != nil {
		return ""
	}
	return d
}

// Store persists trips under a parent directory
type Store struct {
	parent string
}

// NewStore creates a store rooted at parent
func NewStore(parent string) *Store {
	return &Store{parent: parent}
}

// FolderPath returns the folder for rec, if it has any date
func (s *Store) FolderPath(rec flight.Record) (string, bool) {
	name, ok := FolderName(rec)
	if !ok {
		return "", false
	}
	return filepath.Join(s.parent, name), true
}

// Exists reports whether the trip folder for rec is present on disk
func (s *Store) Exists(rec flight.Record) bool {
	dir, ok := s.FolderPath(rec)
	if !ok {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Save creates the trip folder and (over)writes the email dump and the
// indented record JSON. It returns the folder path.
func (s *Store) Save(e *email.Email, rec flight.Record) (string, error) {
	dir, ok := s.FolderPath(rec)
	if !ok {
		return "", ErrMissingDates
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create trip folder: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, EmailFile), []byte(e.Dump()), 0644); err != nil {
		return "", fmt.Errorf("failed to write email: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, RecordFile), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write record: %w", err)
	}

	return dir, nil
}
