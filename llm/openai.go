package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/zurychhh/alpha-machine/resilience"
)

// chatCompleter is the narrow slice of openai.Client this package calls,
// kept as an interface so tests can substitute a stub completion.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type openaiClientWrapper struct {
	client openai.Client
}

func (w *openaiClientWrapper) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return w.client.Chat.Completions.New(ctx, params)
}

// OpenAIClient backs the Contrarian agent.
type OpenAIClient struct {
	client    chatCompleter
	model     string
	maxTokens int
}

// NewOpenAIClient creates an OpenAIClient.
func NewOpenAIClient(apiKey, model string, maxTokens int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		client:    &openaiClientWrapper{client: client},
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func newOpenAIClientWithCompleter(client chatCompleter, model string, maxTokens int) *OpenAIClient {
	return &OpenAIClient{client: client, model: model, maxTokens: maxTokens}
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return resilience.WithBreaker(ctx, resilience.BreakerLLMOpenAI, func() (string, error) {
		var text string
		err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "openai.invoke", func() error {
			params := openai.ChatCompletionNewParams{
				Model:     shared.ChatModel(c.model),
				MaxTokens: openai.Int(int64(c.maxTokens)),
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage(systemPrompt),
					openai.UserMessage(userPrompt),
				},
			}

			completion, err := c.client.CreateChatCompletion(ctx, params)
			if err != nil {
				return fmt.Errorf("openai invoke: %w", err)
			}
			if len(completion.Choices) == 0 {
				return fmt.Errorf("openai invoke: empty response")
			}

			text = completion.Choices[0].Message.Content
			return nil
		})
		return text, err
	})
}

// InvokeStructured sends systemPrompt/userPrompt and unmarshals the JSON
// response into result.
func (c *OpenAIClient) InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result any) error {
	text, err := c.invoke(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(normalizeResponseText(text)), result); err != nil {
		return fmt.Errorf("openai invoke: parse response as json: %w", err)
	}
	return nil
}
