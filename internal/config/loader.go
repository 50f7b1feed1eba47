package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand path
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	// Read file
	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'tripvault config init' to create)", expandedPath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parse(data)
}

// LoadOptional behaves like Load but falls back to defaults when the file
// does not exist. Used for the implicit default config path.
func LoadOptional(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.expandPaths(); err != nil {
			return nil, fmt.Errorf("failed to expand paths: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parse(data)
}

func parse(data []byte) (*Config, error) {
	// Parse TOML
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Expand paths in config
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadEnv loads KEY=value pairs from a dotenv file into the process
// environment. A missing file is not an error; existing variables win.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	paths := []*string{
		&c.Trips.ParentDirectory,
		&c.Mail.QueryFile,
		&c.Gmail.CredentialsPath,
		&c.Gmail.TokenPath,
		&c.LLM.OpenAI.CredentialsPath,
		&c.Flickr.TokenPath,
		&c.Database.Path,
	}

	for _, p := range paths {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Trips validation
	if c.Trips.ParentDirectory == "" {
		errs = append(errs, errors.New("trips.parent_directory is required"))
	}
	if c.Trips.LedgerName == "" {
		errs = append(errs, errors.New("trips.ledger_name is required"))
	}
	if c.Trips.DefaultTripDays < 0 {
		errs = append(errs, errors.New("trips.default_trip_days must not be negative"))
	}

	// Mail validation
	switch c.Mail.Provider {
	case "gmail":
		if c.Gmail.CredentialsPath == "" {
			errs = append(errs, errors.New("gmail.credentials_path is required"))
		}
		if c.Gmail.TokenPath == "" {
			errs = append(errs, errors.New("gmail.token_path is required"))
		}
		if c.Gmail.PageSize < 1 || c.Gmail.PageSize > 500 {
			errs = append(errs, errors.New("gmail.page_size must be between 1 and 500"))
		}
	case "imap":
		if c.IMAP.Server == "" {
			errs = append(errs, errors.New("imap.server is required"))
		}
		if c.IMAP.Login == "" {
			errs = append(errs, errors.New("imap.login is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("mail.provider must be 'gmail' or 'imap', got '%s'", c.Mail.Provider))
	}

	// Extraction validation
	validStrategies := map[string]bool{"model": true, "heuristic": true}
	if !validStrategies[c.Extract.Strategy] {
		errs = append(errs, fmt.Errorf("extract.strategy must be 'model' or 'heuristic', got '%s'", c.Extract.Strategy))
	}

	// LLM validation
	validProviders := map[string]bool{"openai": true, "gemini": true, "ollama": true}
	if !validProviders[c.LLM.Provider] {
		errs = append(errs, fmt.Errorf("llm.provider must be 'openai', 'gemini' or 'ollama', got '%s'", c.LLM.Provider))
	}

	// Flickr validation
	if c.Flickr.PrivacyFilter < 0 || c.Flickr.PrivacyFilter > 5 {
		errs = append(errs, errors.New("flickr.privacy_filter must be between 0 and 5"))
	}
	if c.Flickr.PerPage < 1 || c.Flickr.PerPage > 500 {
		errs = append(errs, errors.New("flickr.per_page must be between 1 and 500"))
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// LedgerPath returns the path of the CSV ledger
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Trips.ParentDirectory, c.Trips.LedgerName)
}

// ReadQuery returns the mailbox search query. A literal query wins;
// otherwise the query file must exist.
func (c *Config) ReadQuery() (string, error) {
	if q := strings.TrimSpace(c.Mail.Query); q != "" {
		return q, nil
	}

	data, err := os.ReadFile(c.Mail.QueryFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("query file '%s' not found", c.Mail.QueryFile)
		}
		return "", fmt.Errorf("failed to read query file: %w", err)
	}

	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", fmt.Errorf("query file '%s' is empty", c.Mail.QueryFile)
	}
	return query, nil
}

// EnsureDirectories creates necessary directories for database, tokens and trips
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Trips.ParentDirectory,
		filepath.Dir(c.Database.Path),
		filepath.Dir(c.Gmail.TokenPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
