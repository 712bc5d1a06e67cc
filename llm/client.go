// Package llm adapts the two LLM vendors the Agent Panel's model-backed
// agents use — OpenAI for the Contrarian agent, Bedrock/Claude for the
// Growth and Multi-modal synthesis agents — behind one shared contract.
package llm

import (
	"context"
	"strings"
)

// Client is the capability every LLM adapter satisfies. InvokeStructured
// sends a system/user prompt pair and unmarshals the model's JSON reply into
// result; every agent prompt this engine sends asks for a strict JSON
// schema back, so there is no free-text Chat method in this contract.
type Client interface {
	Name() string
	InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result any) error
}

// normalizeResponseText strips leading/trailing whitespace and a wrapping
// markdown code fence (```json ... ``` or bare ``` ... ```) before a vendor
// adapter attempts to parse the model's reply as JSON.
func normalizeResponseText(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
