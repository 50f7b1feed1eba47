package database

import (
	"database/sql"
	"time"
)

// MessageStatus is the outcome of processing one email
type MessageStatus string

const (
	StatusSaved       MessageStatus = "saved"
	StatusSkipped     MessageStatus = "skipped"
	StatusParseFailed MessageStatus = "parse_failed"
)

// RunKind distinguishes pipeline runs
type RunKind string

const (
	RunEmails RunKind = "emails"
	RunPhotos RunKind = "photos"
)

// Message is the catalog entry for a processed email
type Message struct {
	ID               string        `json:"id"`
	MessageID        string        `json:"message_id"`
	RunID            *string       `json:"run_id,omitempty"`
	Provider         string        `json:"provider"`
	Subject          *string       `json:"subject,omitempty"`
	Sender           *string       `json:"sender,omitempty"`
	DateHeader       *string       `json:"date_header,omitempty"`
	Extractor        string        `json:"extractor"`
	Status           MessageStatus `json:"status"`
	Folder           *string       `json:"folder,omitempty"`
	BookingReference *string       `json:"booking_reference,omitempty"`
	RawResponse      *string       `json:"raw_response,omitempty"`
	ProcessedAt      time.Time     `json:"processed_at"`
}

// PhotoDownload records one photo written into a trip folder
type PhotoDownload struct {
	ID           string    `json:"id"`
	PhotoID      string    `json:"photo_id"`
	Folder       string    `json:"folder"`
	Path         string    `json:"path"`
	RunID        *string   `json:"run_id,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Run is one invocation of a pipeline
type Run struct {
	ID         string     `json:"id"`
	Kind       RunKind    `json:"kind"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Processed  int        `json:"processed"`
	Saved      int        `json:"saved"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
}

// Stats summarizes the catalog
type Stats struct {
	Messages    int `json:"messages"`
	Saved       int `json:"saved"`
	Skipped     int `json:"skipped"`
	ParseFailed int `json:"parse_failed"`
	Photos      int `json:"photos"`
	Runs        int `json:"runs"`
}

// ListOptions filters message history
type ListOptions struct {
	Status *MessageStatus
	Since  *time.Time
	Limit  int
	Offset int
}

// NullString is a helper to convert *string to sql.NullString
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// OptionalString returns nil for an empty string
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
