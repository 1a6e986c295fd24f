package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/assistive-ai/digitalcane/internal/models"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIResolver resolves intents through the OpenAI chat completions API
// in JSON mode. It shares the decode path with the Gemini adapter.
type OpenAIResolver struct {
	apiKey string
	model  string
	client *http.Client
}

// NewOpenAIResolver creates a resolver backed by the OpenAI API.
func NewOpenAIResolver(apiKey, model string, timeout time.Duration) *OpenAIResolver {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIResolver{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Resolve sends the utterance and decodes the single JSON object the model
// is required to return.
func (r *OpenAIResolver) Resolve(ctx context.Context, utterance string) (models.LocationIntent, error) {
	reqBody := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: utterance},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return models.LocationIntent{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(payload))
	if err != nil {
		return models.LocationIntent{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return models.LocationIntent{}, fmt.Errorf("calling intent provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.LocationIntent{}, fmt.Errorf("intent provider returned status %d: %s", resp.StatusCode, body)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return models.LocationIntent{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(chat.Choices) == 0 {
		return models.LocationIntent{}, fmt.Errorf("%w: empty choices", ErrParse)
	}

	return parseIntent(chat.Choices[0].Message.Content)
}
