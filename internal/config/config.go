package config

// Config represents the application configuration
type Config struct {
	Trips    TripsConfig    `toml:"trips"`
	Mail     MailConfig     `toml:"mail"`
	Gmail    GmailConfig    `toml:"gmail"`
	IMAP     IMAPConfig     `toml:"imap"`
	Extract  ExtractConfig  `toml:"extract"`
	LLM      LLMConfig      `toml:"llm"`
	Flickr   FlickrConfig   `toml:"flickr"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// TripsConfig controls where trips are archived
type TripsConfig struct {
	ParentDirectory string `toml:"parent_directory"`
	LedgerName      string `toml:"ledger_name"`
	DefaultTripDays int    `toml:"default_trip_days"`
}

// MailConfig selects the mailbox and the search query source
type MailConfig struct {
	Provider  string `toml:"provider"`
	QueryFile string `toml:"query_file"`
	Query     string `toml:"query"` // literal query, wins over query_file
}

// GmailConfig contains Gmail-specific settings
type GmailConfig struct {
	CredentialsPath string `toml:"credentials_path"`
	TokenPath       string `toml:"token_path"`
	PageSize        int    `toml:"page_size"`
}

// IMAPConfig contains IMAP mailbox settings
type IMAPConfig struct {
	Server      string `toml:"server"` // host:port, TLS
	Login       string `toml:"login"`
	PasswordEnv string `toml:"password_env"`
	Mailbox     string `toml:"mailbox"`
}

// ExtractConfig selects the extraction strategy
type ExtractConfig struct {
	Strategy    string `toml:"strategy"` // "model" or "heuristic"
	SchemaCheck bool   `toml:"schema_check"`
}

// LLMConfig contains generation service settings
type LLMConfig struct {
	Provider string       `toml:"provider"`
	OpenAI   OpenAIConfig `toml:"openai"`
	Gemini   GeminiConfig `toml:"gemini"`
	Ollama   OllamaConfig `toml:"ollama"`
}

// OpenAIConfig covers any OpenAI-compatible chat completions endpoint.
// The defaults point at DeepSeek.
type OpenAIConfig struct {
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	// CredentialsPath is a JSON file with an "apiKey" field, used when the
	// environment variable is unset.
	CredentialsPath string `toml:"credentials_path"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// GeminiConfig contains Google Gemini settings
type GeminiConfig struct {
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
}

// OllamaConfig contains Ollama-specific settings
type OllamaConfig struct {
	Model string `toml:"model"`
	Host  string `toml:"host"`
}

// FlickrConfig contains photo service settings
type FlickrConfig struct {
	APIKeyEnv     string `toml:"api_key_env"`
	APISecretEnv  string `toml:"api_secret_env"`
	TokenPath     string `toml:"token_path"`
	UserID        string `toml:"user_id"`
	Text          string `toml:"text"`
	PrivacyFilter int    `toml:"privacy_filter"`
	PerPage       int    `toml:"per_page"`
}

// DatabaseConfig contains catalog database settings
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Trips: TripsConfig{
			ParentDirectory: "trips",
			LedgerName:      "trips.csv",
			DefaultTripDays: 7,
		},
		Mail: MailConfig{
			Provider:  "gmail",
			QueryFile: "email-query.txt",
		},
		Gmail: GmailConfig{
			CredentialsPath: "~/.config/tripvault/credentials.json",
			TokenPath:       "~/.config/tripvault/token.json",
			PageSize:        100,
		},
		IMAP: IMAPConfig{
			PasswordEnv: "TRIPVAULT_IMAP_PASSWORD",
			Mailbox:     "INBOX",
		},
		Extract: ExtractConfig{
			Strategy:    "model",
			SchemaCheck: true,
		},
		LLM: LLMConfig{
			Provider: "openai",
			OpenAI: OpenAIConfig{
				BaseURL:         "https://api.deepseek.com",
				Model:           "deepseek-chat",
				APIKeyEnv:       "DEEPSEEK_API_KEY",
				CredentialsPath: "~/.config/tripvault/deepseek.json",
				TimeoutSeconds:  120,
			},
			Gemini: GeminiConfig{
				Model:     "gemini-2.0-flash",
				APIKeyEnv: "GEMINI_API_KEY",
			},
			Ollama: OllamaConfig{
				Model: "llama3",
				Host:  "http://localhost:11434",
			},
		},
		Flickr: FlickrConfig{
			APIKeyEnv:     "FLICKR_API_KEY",
			APISecretEnv:  "FLICKR_API_SECRET",
			TokenPath:     "~/.config/tripvault/flickr-token.json",
			UserID:        "me",
			PrivacyFilter: 2,
			PerPage:       500,
		},
		Database: DatabaseConfig{
			Path: "~/.local/share/tripvault/tripvault.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
