package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"github.com/justsurfingit/applicant-intake/internal/config"
)

// VertexLLM wraps the Vertex AI Gemini API
type VertexLLM struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewVertexLLM(ctx context.Context, cfg config.LLMConfig) (*VertexLLM, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is not set")
	}

	client, err := genai.NewClient(ctx, cfg.Project, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)

	return &VertexLLM{client: client, model: model}, nil
}

func (v *VertexLLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}
	return result, nil
}

func (v *VertexLLM) Close() error {
	return v.client.Close()
}
