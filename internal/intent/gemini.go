package intent

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/assistive-ai/digitalcane/internal/models"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiResolver resolves intents through the Gemini API, constrained to
// JSON output.
type GeminiResolver struct {
	client *genai.Client
	model  string
}

// NewGeminiResolver creates a resolver backed by the Gemini API.
func NewGeminiResolver(ctx context.Context, apiKey, model string) (*GeminiResolver, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiResolver{client: client, model: model}, nil
}

// Resolve sends the utterance with the fixed system instruction and decodes
// the single JSON object the model is required to return.
func (r *GeminiResolver) Resolve(ctx context.Context, utterance string) (models.LocationIntent, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(utterance), cfg)
	if err != nil {
		return models.LocationIntent{}, fmt.Errorf("gemini generate: %w", err)
	}

	return parseIntent(resp.Text())
}
