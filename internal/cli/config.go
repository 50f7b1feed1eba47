package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Dir(configPath)
	dataDir := filepath.Join(home, ".local", "share", "tripvault")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists at %s\n", configPath)
		fmt.Println("Use 'tripvault config show' to view current configuration")
		return nil
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set up Gmail API credentials (Desktop app OAuth client)")
	fmt.Printf("  2. Save credentials.json to %s/\n", configDir)
	fmt.Println("  3. Put your mailbox search in email-query.txt, e.g.:")
	fmt.Println("       from:(airline.com) subject:(booking confirmation)")
	fmt.Println("  4. Export DEEPSEEK_API_KEY (or set extract.strategy = \"heuristic\")")
	fmt.Println("  5. Run 'tripvault emails', then export FLICKR_API_KEY and")
	fmt.Println("     FLICKR_API_SECRET and run 'tripvault photos'")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No config file found; built-in defaults apply. Run 'tripvault config init' to create one.")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	fmt.Printf("# Config file: %s\n\n", configPath)
	fmt.Println(string(data))
	return nil
}

const defaultConfig = `# TripVault Configuration

[trips]
parent_directory = "trips"   # trip folders and the ledger live here
ledger_name = "trips.csv"
default_trip_days = 7        # photo window when there is no return flight

[mail]
provider = "gmail"           # gmail or imap
query_file = "email-query.txt"
# query = "from:airline.com"  # literal query, wins over query_file

[gmail]
credentials_path = "~/.config/tripvault/credentials.json"
token_path = "~/.config/tripvault/token.json"
page_size = 100

[imap]
# server = "imap.example.com:993"
# login = "me@example.com"
password_env = "TRIPVAULT_IMAP_PASSWORD"
mailbox = "INBOX"

[extract]
strategy = "model"           # model or heuristic
schema_check = true          # warn when a reply does not match the record shape

[llm]
provider = "openai"          # openai (any compatible endpoint), gemini or ollama

[llm.openai]
base_url = "https://api.deepseek.com"
model = "deepseek-chat"
api_key_env = "DEEPSEEK_API_KEY"
credentials_path = "~/.config/tripvault/deepseek.json"
timeout_seconds = 120

[llm.gemini]
model = "gemini-2.0-flash"
api_key_env = "GEMINI_API_KEY"

[llm.ollama]
model = "llama3"
host = "http://localhost:11434"

[flickr]
api_key_env = "FLICKR_API_KEY"
api_secret_env = "FLICKR_API_SECRET"
token_path = "~/.config/tripvault/flickr-token.json"
user_id = "me"
privacy_filter = 2           # 1 public ... 5 private
per_page = 500
text = ""

[database]
path = "~/.local/share/tripvault/tripvault.db"

[log]
level = "info"
format = "text"              # text or json
`
