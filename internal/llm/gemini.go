package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ArtfulOneXD/MetaTest/internal/models"
)

// GeminiProvider talks to the Gemini API. It flattens the conversation into
// a single text prompt, which works well enough for short chat windows.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(chatTemperature)
	m.SetTopP(0.9)
	m.SetTopK(40)

	return &GeminiProvider{client: client, model: m}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, system string, turns []models.ConversationTurn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var prompt strings.Builder
	prompt.WriteString(system)
	prompt.WriteString("\n\n--- Conversation ---\n\n")
	prompt.WriteString(Flatten(turns))
	prompt.WriteString("assistant: ")

	return p.generate(ctx, prompt.String())
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	return p.generate(ctx, prompt)
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini generate: no candidates in response")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}
