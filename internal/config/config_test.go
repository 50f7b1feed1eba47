package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Trips.ParentDirectory != "trips" {
		t.Errorf("expected ParentDirectory=trips, got %s", cfg.Trips.ParentDirectory)
	}

	if cfg.Mail.QueryFile != "email-query.txt" {
		t.Errorf("expected QueryFile=email-query.txt, got %s", cfg.Mail.QueryFile)
	}

	if cfg.LLM.OpenAI.BaseURL != "https://api.deepseek.com" {
		t.Errorf("expected DeepSeek base URL, got %s", cfg.LLM.OpenAI.BaseURL)
	}

	if cfg.Flickr.PrivacyFilter != 2 {
		t.Errorf("expected PrivacyFilter=2, got %d", cfg.Flickr.PrivacyFilter)
	}

	if !cfg.Extract.SchemaCheck {
		t.Error("expected SchemaCheck enabled by default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid mail provider",
			modify: func(c *Config) {
				c.Mail.Provider = "pop3"
			},
			wantErr: true,
		},
		{
			name: "imap without server",
			modify: func(c *Config) {
				c.Mail.Provider = "imap"
				c.IMAP.Login = "me@example.com"
			},
			wantErr: true,
		},
		{
			name: "imap with server and login",
			modify: func(c *Config) {
				c.Mail.Provider = "imap"
				c.IMAP.Server = "imap.example.com:993"
				c.IMAP.Login = "me@example.com"
			},
			wantErr: false,
		},
		{
			name: "invalid strategy",
			modify: func(c *Config) {
				c.Extract.Strategy = "magic"
			},
			wantErr: true,
		},
		{
			name: "invalid llm provider",
			modify: func(c *Config) {
				c.LLM.Provider = "invalid"
			},
			wantErr: true,
		},
		{
			name: "negative trip days",
			modify: func(c *Config) {
				c.Trips.DefaultTripDays = -1
			},
			wantErr: true,
		},
		{
			name: "privacy filter out of range",
			modify: func(c *Config) {
				c.Flickr.PrivacyFilter = 9
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		result, err := expandPath(tt.input)
		if err != nil {
			t.Errorf("expandPath(%q) error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	data := `
[trips]
parent_directory = "/data/trips"
default_trip_days = 10

[extract]
strategy = "heuristic"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Trips.ParentDirectory != "/data/trips" {
		t.Errorf("ParentDirectory = %q, want /data/trips", cfg.Trips.ParentDirectory)
	}
	if cfg.Trips.DefaultTripDays != 10 {
		t.Errorf("DefaultTripDays = %d, want 10", cfg.Trips.DefaultTripDays)
	}
	if cfg.Extract.Strategy != "heuristic" {
		t.Errorf("Strategy = %q, want heuristic", cfg.Extract.Strategy)
	}
	// untouched sections keep defaults
	if cfg.LLM.OpenAI.Model != "deepseek-chat" {
		t.Errorf("Model = %q, want deepseek-chat", cfg.LLM.OpenAI.Model)
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	if _, err := Load(path); err == nil {
		t.Error("expected error for missing explicit config")
	}

	cfg, err := LoadOptional(path)
	if err != nil {
		t.Fatalf("LoadOptional() error: %v", err)
	}
	if cfg.Trips.LedgerName != "trips.csv" {
		t.Errorf("LedgerName = %q, want trips.csv", cfg.Trips.LedgerName)
	}
}

func TestReadQuery(t *testing.T) {
	dir := t.TempDir()
	queryFile := filepath.Join(dir, "email-query.txt")

	cfg := Default()
	cfg.Mail.QueryFile = queryFile

	if _, err := cfg.ReadQuery(); err == nil {
		t.Error("expected error for missing query file")
	}

	if err := os.WriteFile(queryFile, []byte("  from:airline.com subject:confirmation \n"), 0644); err != nil {
		t.Fatalf("failed to write query: %v", err)
	}

	q, err := cfg.ReadQuery()
	if err != nil {
		t.Fatalf("ReadQuery() error: %v", err)
	}
	if q != "from:airline.com subject:confirmation" {
		t.Errorf("ReadQuery() = %q", q)
	}

	cfg.Mail.Query = "subject:itinerary"
	q, _ = cfg.ReadQuery()
	if q != "subject:itinerary" {
		t.Errorf("literal query should win, got %q", q)
	}
}

func TestLedgerPath(t *testing.T) {
	cfg := Default()
	if got := cfg.LedgerPath(); got != filepath.Join("trips", "trips.csv") {
		t.Errorf("LedgerPath() = %q", got)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()

	if err := LoadEnv(filepath.Join(dir, ".env")); err != nil {
		t.Errorf("missing .env should not fail: %v", err)
	}

	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("TRIPVAULT_TEST_KEY=abc123\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TRIPVAULT_TEST_KEY") })

	if err := LoadEnv(envFile); err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}
	if got := os.Getenv("TRIPVAULT_TEST_KEY"); got != "abc123" {
		t.Errorf("TRIPVAULT_TEST_KEY = %q, want abc123", got)
	}
}
