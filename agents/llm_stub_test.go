package agents

import (
	"context"
	"encoding/json"
	"errors"
)

var errNope = errors.New("stub llm client error")

// stubLLMClient implements llm.Client for agent tests.
type stubLLMClient struct {
	name string
	resp llmResponse
	raw  string // when set, overrides resp and is unmarshaled as-is
	err  error
}

func (s *stubLLMClient) Name() string { return s.name }

func (s *stubLLMClient) InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result any) error {
	if s.err != nil {
		return s.err
	}
	var payload []byte
	if s.raw != "" {
		payload = []byte(s.raw)
	} else {
		payload, _ = json.Marshal(s.resp)
	}
	return json.Unmarshal(payload, result)
}
