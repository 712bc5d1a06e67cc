package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type stubModelInvoker struct {
	body []byte
	err  error
}

func (s *stubModelInvoker) InvokeModel(ctx context.Context, input *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: s.body}, nil
}

func claudeBody(text string) []byte {
	resp := claudeResponse{Content: []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{{Type: "text", Text: text}}}
	b, _ := json.Marshal(resp)
	return b
}

func TestBedrockClient_InvokeStructured_Success(t *testing.T) {
	freshBreakers()

	stub := &stubModelInvoker{body: claudeBody(`{"recommendation":"BUY","confidence":4}`)}
	client := newBedrockClientWithInvoker(stub, "anthropic.claude-3-sonnet", "growth")

	var result struct {
		Recommendation string `json:"recommendation"`
		Confidence     int    `json:"confidence"`
	}
	err := client.InvokeStructured(context.Background(), "system", "user", &result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Recommendation != "BUY" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestBedrockClient_InvokeStructured_APIError(t *testing.T) {
	freshBreakers()

	stub := &stubModelInvoker{err: errors.New("bedrock down")}
	client := newBedrockClientWithInvoker(stub, "anthropic.claude-3-sonnet", "growth")

	var result map[string]any
	err := client.InvokeStructured(context.Background(), "system", "user", &result)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestBedrockClient_InvokeStructured_EmptyContent(t *testing.T) {
	freshBreakers()

	resp := claudeResponse{Content: []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{}}
	body, _ := json.Marshal(resp)
	stub := &stubModelInvoker{body: body}
	client := newBedrockClientWithInvoker(stub, "anthropic.claude-3-sonnet", "growth")

	var result map[string]any
	err := client.InvokeStructured(context.Background(), "system", "user", &result)
	if err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestBedrockClient_Name(t *testing.T) {
	client := newBedrockClientWithInvoker(&stubModelInvoker{}, "model-id", "multi-modal")
	if client.Name() != "multi-modal" {
		t.Errorf("Name() = %q, want multi-modal", client.Name())
	}
}
