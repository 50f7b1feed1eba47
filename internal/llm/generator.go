package llm

import "context"

// SystemInstruction is sent with every extraction prompt
const SystemInstruction = "You are a data extract tool. You always provide your response in valid JSON format."

// Generator sends one prompt with a system instruction to a text
// generation service and returns the raw reply. Transport, auth and quota
// failures are returned as errors; callers do not retry.
type Generator interface {
	Name() string
	Generate(ctx context.Context, system, prompt string) (string, error)
}
