package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/justsurfingit/applicant-intake/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// LLM is a single-prompt text generator.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiLLM talks to Gemini through langchaingo's googleai provider.
type GeminiLLM struct {
	Client llms.Model
}

func NewGeminiLLM(ctx context.Context, cfg config.LLMConfig) (*GeminiLLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiLLM{Client: llm}, nil
}

func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.Client, prompt, llms.WithTemperature(0.2))
}

// NewLLM picks the provider named in cfg. "none" yields a nil LLM.
func NewLLM(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "googleai":
		g, err := NewGeminiLLM(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "vertexai":
		v, err := NewVertexLLM(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return v, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
}

// LLMService holds recruiter-side LLM features.
type LLMService struct {
	llm LLM
}

func NewLLMService(llm LLM) *LLMService {
	return &LLMService{llm: llm}
}

const maxExtractionInput = 20000

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags."
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails turns a raw job posting into the JSON shape of a job
// creation request.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (json.RawMessage, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if len(rawHTML) > maxExtractionInput {
		rawHTML = rawHTML[:maxExtractionInput]
	}

	resp, err := s.llm.Generate(ctx, fmt.Sprintf(jobExtractionPrompt, rawHTML))
	if err != nil {
		return nil, err
	}

	obj, err := extractJSONObject(resp)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(obj), nil
}

// extractJSONObject carves the outermost {...} out of an LLM reply, which may
// carry code fences or prose around it.
func extractJSONObject(resp string) (string, error) {
	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON found in response")
	}
	obj := resp[start : end+1]
	if !json.Valid([]byte(obj)) {
		return "", fmt.Errorf("malformed JSON in response")
	}
	return obj, nil
}
