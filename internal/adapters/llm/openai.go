package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

// OpenAIClient implements domain.LLMClient on the OpenAI Responses API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key must be set")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (o *OpenAIClient) ClassifyIntents(ctx context.Context, text string) (domain.Intents, error) {
	out, err := o.respond(ctx, classifierInstructions, ClassifierPrompt(text), 0)
	if err != nil {
		return nil, fmt.Errorf("openai classify: %w", err)
	}
	return ParseIntents(out), nil
}

func (o *OpenAIClient) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	if len(req.History) == 0 {
		return "", fmt.Errorf("openai generate: empty history")
	}
	out, err := o.respond(ctx, BuildResponseSystemPrompt(req), Transcript(req.History), 0.7)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("openai returned empty text")
	}
	return out, nil
}

func (o *OpenAIClient) respond(ctx context.Context, instructions, input string, temperature float64) (string, error) {
	params := responses.ResponseNewParams{
		Model:           o.model,
		Instructions:    openai.String(instructions),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(input)},
		Temperature:     openai.Float(temperature),
		MaxOutputTokens: openai.Int(1024),
	}
	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.OutputText()), nil
}
