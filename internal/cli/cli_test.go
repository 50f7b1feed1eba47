package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vijay-prabhu/tripvault/internal/config"
	"github.com/vijay-prabhu/tripvault/internal/email/gmail"
	"github.com/vijay-prabhu/tripvault/internal/flight"
	"github.com/vijay-prabhu/tripvault/internal/tracker"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"1m", 30 * 24 * time.Hour, false},
		{"d", 0, true},
		{"xd", 0, true},
		{"3y", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDepartingAfter(t *testing.T) {
	records := []flight.Record{
		{BookingReference: "OLD", OutboundDepartureDate: "2024-01-01"},
		{BookingReference: "EDGE", OutboundDepartureDate: "2025-03-01"},
		{BookingReference: "NEW", OutboundDepartureDate: "2025-06-01"},
		{BookingReference: "BAD", OutboundDepartureDate: "sometime"},
	}

	got := departingAfter(records, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].BookingReference != "EDGE" || got[1].BookingReference != "NEW" {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, ""},
		{45 * time.Second, "45s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 5*time.Second, "2m5s"},
		{90 * time.Minute, "1h30m"},
	}

	for _, tt := range tests {
		if got := FormatETA(tt.in); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatProgress(t *testing.T) {
	got := FormatProgress(tracker.Progress{Description: "Matching trips", Current: 1, Total: 4}, "*")
	if !strings.HasPrefix(got, "Matching trips: 1/4 (25%)") {
		t.Errorf("unexpected line: %q", got)
	}

	got = FormatProgress(tracker.Progress{Description: "Downloading photos", Current: 3}, "*")
	if got != "* Downloading photos: 3" {
		t.Errorf("unexpected line: %q", got)
	}

	got = FormatProgress(tracker.Progress{Description: "Searching mailbox"}, "*")
	if got != "* Searching mailbox..." {
		t.Errorf("unexpected line: %q", got)
	}
}

func TestTerminalProgress_NotLive(t *testing.T) {
	term := &Terminal{}
	if term.Progress() != nil {
		t.Error("expected nil callback when terminal is not live")
	}
	if got := term.Color(ColorGreen, "x"); got != "x" {
		t.Errorf("expected uncolored text, got %q", got)
	}
}

func TestExportRecords(t *testing.T) {
	records := []flight.Record{{BookingReference: "AB12CD", OutboundDepartureDate: "2025-01-11"}}

	var buf bytes.Buffer
	if err := exportRecords(&buf, "csv", records); err != nil {
		t.Fatalf("csv export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "AB12CD,") {
		t.Errorf("unexpected row: %q", lines[1])
	}

	buf.Reset()
	if err := exportRecords(&buf, "json", nil); err != nil {
		t.Fatalf("json export failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}

	if err := exportRecords(&buf, "pdf", records); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewMailbox_MissingCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Gmail.CredentialsPath = filepath.Join(t.TempDir(), "credentials.json")

	_, err := newMailbox(cfg)
	if !errors.Is(err, gmail.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestNewMailbox_IMAPPassword(t *testing.T) {
	cfg := config.Default()
	cfg.Mail.Provider = "imap"
	cfg.IMAP.Server = "imap.example.com:993"
	cfg.IMAP.Login = "me@example.com"
	cfg.IMAP.PasswordEnv = "TRIPVAULT_TEST_IMAP_PASSWORD"

	t.Setenv("TRIPVAULT_TEST_IMAP_PASSWORD", "")
	if _, err := newMailbox(cfg); err == nil {
		t.Error("expected error without password")
	}

	t.Setenv("TRIPVAULT_TEST_IMAP_PASSWORD", "secret")
	mb, err := newMailbox(cfg)
	if err != nil {
		t.Fatalf("newMailbox failed: %v", err)
	}
	if mb.Name() != "imap" {
		t.Errorf("expected imap provider, got %s", mb.Name())
	}
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.LLM.Provider = "ollama"
	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		t.Fatalf("ollama generator failed: %v", err)
	}
	if gen.Name() != "ollama:llama3" {
		t.Errorf("unexpected name: %s", gen.Name())
	}

	cfg = config.Default()
	cfg.LLM.OpenAI.APIKeyEnv = "TRIPVAULT_TEST_LLM_KEY"
	cfg.LLM.OpenAI.CredentialsPath = filepath.Join(t.TempDir(), "none.json")
	t.Setenv("TRIPVAULT_TEST_LLM_KEY", "")
	if _, err := newGenerator(ctx, cfg); err == nil {
		t.Error("expected error without API key")
	}

	t.Setenv("TRIPVAULT_TEST_LLM_KEY", "k")
	gen, err = newGenerator(ctx, cfg)
	if err != nil {
		t.Fatalf("openai generator failed: %v", err)
	}
	if gen.Name() != "openai:deepseek-chat" {
		t.Errorf("unexpected name: %s", gen.Name())
	}

	cfg = config.Default()
	cfg.LLM.Provider = "gemini"
	cfg.LLM.Gemini.APIKeyEnv = "TRIPVAULT_TEST_GEMINI_KEY"
	t.Setenv("TRIPVAULT_TEST_GEMINI_KEY", "")
	if _, err := newGenerator(ctx, cfg); err == nil {
		t.Error("expected error without gemini key")
	}
}
