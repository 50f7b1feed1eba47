package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/vijay-prabhu/tripvault/internal/logging"
)

// Client generates replies with a local Ollama server
type Client struct {
	api   *api.Client
	model string
}

// New creates a client for the Ollama server at host
func New(host, model string) (*Client, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	return &Client{api: api.NewClient(base, http.DefaultClient), model: model}, nil
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return "ollama:" + c.model
}

// Generate runs a non-streaming JSON-mode generation
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		System: system,
		Prompt: prompt,
		Format: json.RawMessage(`"json"`),
		Stream: &stream,
	}

	var sb strings.Builder
	err := c.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}

	logging.Log.WithField("model", c.model).WithField("reply_len", sb.Len()).Debug("ollama reply received")
	return sb.String(), nil
}
