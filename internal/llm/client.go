// Package llm treats the language model as an opaque generation
// capability: a prompt goes in, a structured JSON payload comes out.
package llm

import "context"

// Client is the generation capability used by pipeline stages. Generate
// sends prompt to the model and unmarshals the JSON object or array in
// the response into out. Implementations must honor ctx deadlines.
type Client interface {
	Generate(ctx context.Context, prompt string, out any) error
}

// ModelInfo describes the configured model for diagnostics endpoints.
type ModelInfo struct {
	Model   string `json:"model_id"`
	BaseURL string `json:"base_url"`
}
