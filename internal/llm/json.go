package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON strips markdown code fences from a model response and
// returns the raw JSON text. Models frequently wrap JSON in ```json
// fences despite instructions not to.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return content
}

// DecodeResponse extracts and unmarshals the JSON payload of a model
// response into out.
func DecodeResponse(content string, out any) error {
	raw := ExtractJSON(content)
	if raw == "" {
		return fmt.Errorf("empty model response")
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}
