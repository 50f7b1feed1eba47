package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vijay-prabhu/tripvault/internal/logging"
)

// Config for an OpenAI-compatible chat completions endpoint
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Client is an HTTP client for chat completions (DeepSeek, OpenAI, ...)
type Client struct {
	cfg        Config
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// New creates a new chat completions client
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second // Long timeout for LLM inference
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return "openai:" + c.cfg.Model
}

// Generate sends a system + user message pair and returns the reply text
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := logging.Log.WithFields(map[string]any{
		"req_id": rid,
		"model":  c.cfg.Model,
	})
	log.WithField("prompt_len", len(prompt)).Debug("llm.generate.start")

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completion failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices in chat completion response")
	}

	content := result.Choices[0].Message.Content
	log.WithFields(map[string]any{
		"reply_len":  len(content),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("llm.generate.ok")
	return content, nil
}

// ResolveAPIKey reads the key from env, then from a JSON credentials file
// with an "apiKey" field. An empty result is an error.
func ResolveAPIKey(envVar, credentialsPath string) (string, error) {
	if envVar != "" {
		if key := os.Getenv(envVar); key != "" {
			return key, nil
		}
	}

	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		if err == nil {
			var creds struct {
				APIKey string `json:"apiKey"`
			}
			if err := json.Unmarshal(data, &creds); err != nil {
				return "", fmt.Errorf("failed to parse %s: %w", credentialsPath, err)
			}
			if creds.APIKey != "" {
				return creds.APIKey, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read %s: %w", credentialsPath, err)
		}
	}

	return "", fmt.Errorf("no API key: set %s or write {\"apiKey\": ...} to %s", envVar, credentialsPath)
}
