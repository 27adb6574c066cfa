package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"
	"skyscope/entrepreneur/core"
)

type Gemini struct {
	ModelName   string
	Temperature float32
	client      *genai.Client
}

func NewGemini(ctx context.Context, apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is missing")
	}
	return newGemini(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, modelName)
}

func newGemini(ctx context.Context, cc *genai.ClientConfig, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	return &Gemini{
		ModelName:   modelName,
		Temperature: 0.7,
		client:      client,
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, systemContext string, history []core.ChatContent, input core.LLMInput) (core.LLMOutput, error) {
	var contents []*genai.Content
	for _, content := range history {
		if content.Role == "user" {
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: content.Content}}})
		} else if content.Role == "assistant" {
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: content.Content}}})
		}
	}
	if input.Text != "" {
		contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: input.Text}}})
	}

	temperature := g.Temperature
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if systemContext != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemContext}}}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.ModelName, contents, config)
	if err != nil {
		return core.LLMOutput{}, err
	}

	var stats core.Stats
	if result.UsageMetadata != nil {
		stats = core.Stats{
			InputTokenCount:  result.UsageMetadata.PromptTokenCount,
			OutputTokenCount: result.UsageMetadata.CandidatesTokenCount,
			TotalTokenCount:  result.UsageMetadata.TotalTokenCount,
		}
	}

	return core.LLMOutput{Text: result.Text(), Stats: stats}, nil
}
