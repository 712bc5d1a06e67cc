package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/zurychhh/alpha-machine/resilience"
)

// modelInvoker is the narrow slice of bedrockruntime.Client this package
// calls, kept as an interface so tests can substitute a stub response.
type modelInvoker interface {
	InvokeModel(ctx context.Context, input *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// claudeRequest is the Claude-on-Bedrock request envelope.
type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

const (
	defaultAnthropicVersion = "bedrock-2023-05-31"
	defaultMaxTokens        = 4096
)

// BedrockClient backs the Growth and Multi-modal synthesis agents, one
// instance per configured model ID (Growth and Synth each get their own).
type BedrockClient struct {
	client  modelInvoker
	modelID string
	name    string
}

// NewBedrockClient creates a BedrockClient for the given model ID. name
// distinguishes Growth and Multi-modal instances in logs/metrics even though
// both go through the same Bedrock vendor.
func NewBedrockClient(ctx context.Context, region, modelID, name string) (*BedrockClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &BedrockClient{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
		name:    name,
	}, nil
}

func newBedrockClientWithInvoker(client modelInvoker, modelID, name string) *BedrockClient {
	return &BedrockClient{client: client, modelID: modelID, name: name}
}

func (c *BedrockClient) Name() string { return c.name }

func (c *BedrockClient) invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return resilience.WithBreaker(ctx, resilience.BreakerLLMBedrock, func() (string, error) {
		var text string
		err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "bedrock.invoke", func() error {
			request := claudeRequest{
				AnthropicVersion: defaultAnthropicVersion,
				MaxTokens:        defaultMaxTokens,
				System:           systemPrompt,
				Messages:         []claudeMessage{{Role: "user", Content: userPrompt}},
			}

			reqBody, err := json.Marshal(request)
			if err != nil {
				return fmt.Errorf("bedrock invoke: marshal request: %w", err)
			}

			output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
				ModelId:     aws.String(c.modelID),
				Body:        reqBody,
				ContentType: aws.String("application/json"),
			})
			if err != nil {
				return fmt.Errorf("bedrock invoke: %w", err)
			}

			var response claudeResponse
			if err := json.Unmarshal(output.Body, &response); err != nil {
				return fmt.Errorf("bedrock invoke: unmarshal response: %w", err)
			}
			if len(response.Content) == 0 {
				return fmt.Errorf("bedrock invoke: empty response")
			}

			text = response.Content[0].Text
			return nil
		})
		return text, err
	})
}

// InvokeStructured sends systemPrompt/userPrompt and unmarshals the JSON
// response into result.
func (c *BedrockClient) InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result any) error {
	text, err := c.invoke(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(normalizeResponseText(text)), result); err != nil {
		return fmt.Errorf("bedrock invoke: parse response as json: %w", err)
	}
	return nil
}
