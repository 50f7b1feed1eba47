package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/vijay-prabhu/tripvault/internal/logging"
)

// Client generates replies with the Gemini API
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gemini client for the given model
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: c, model: model}, nil
}

// NewWithClient wraps an existing genai client
func NewWithClient(c *genai.Client, model string) *Client {
	return &Client{client: c, model: model}
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return "gemini:" + c.model
}

// Generate asks for a JSON reply and returns the concatenated text parts
// of the first candidate.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return "", err
	}
	logging.Log.WithField("model", c.model).WithField("reply_len", len(text)).Debug("gemini reply received")
	return text, nil
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no parts in candidate content")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text in response")
	}
	return sb.String(), nil
}
