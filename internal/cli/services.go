package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vijay-prabhu/tripvault/internal/config"
	"github.com/vijay-prabhu/tripvault/internal/database"
	"github.com/vijay-prabhu/tripvault/internal/email"
	"github.com/vijay-prabhu/tripvault/internal/email/gmail"
	"github.com/vijay-prabhu/tripvault/internal/email/imap"
	"github.com/vijay-prabhu/tripvault/internal/llm"
	"github.com/vijay-prabhu/tripvault/internal/llm/gemini"
	"github.com/vijay-prabhu/tripvault/internal/llm/ollama"
	"github.com/vijay-prabhu/tripvault/internal/llm/openai"
	"github.com/vijay-prabhu/tripvault/internal/logging"
)

// newMailbox builds the configured mailbox. Local prerequisites (credential
// files, passwords) are checked here so nothing touches the network first.
func newMailbox(cfg *config.Config) (email.Mailbox, error) {
	switch cfg.Mail.Provider {
	case "gmail":
		if err := gmail.CheckCredentials(cfg.Gmail.CredentialsPath); err != nil {
			return nil, err
		}
		return gmail.New(cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath, cfg.Gmail.PageSize), nil
	case "imap":
		password := os.Getenv(cfg.IMAP.PasswordEnv)
		if password == "" {
			return nil, fmt.Errorf("IMAP password not set: export %s", cfg.IMAP.PasswordEnv)
		}
		return imap.New(cfg.IMAP.Server, cfg.IMAP.Login, password, cfg.IMAP.Mailbox), nil
	default:
		return nil, fmt.Errorf("unknown mail provider: %s", cfg.Mail.Provider)
	}
}

// newGenerator builds the configured text-generation client
func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case "openai":
		oc := cfg.LLM.OpenAI
		key, err := openai.ResolveAPIKey(oc.APIKeyEnv, oc.CredentialsPath)
		if err != nil {
			return nil, err
		}
		return openai.New(openai.Config{
			BaseURL: oc.BaseURL,
			Model:   oc.Model,
			APIKey:  key,
			Timeout: time.Duration(oc.TimeoutSeconds) * time.Second,
		}), nil
	case "gemini":
		gc := cfg.LLM.Gemini
		key := os.Getenv(gc.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("gemini API key not set: export %s", gc.APIKeyEnv)
		}
		return gemini.New(ctx, key, gc.Model)
	case "ollama":
		return ollama.New(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

// openCatalog opens the history database, creating its directory
func openCatalog(cfg *config.Config) (*database.DB, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logging.Log.WithField("path", cfg.Database.Path).Debug("Catalog opened")
	return db, nil
}
