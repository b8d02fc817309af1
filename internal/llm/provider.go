// Package llm wraps the chat-completion backends behind one interface so
// the rest of the service does not care which vendor is configured.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ArtfulOneXD/MetaTest/internal/config"
	"github.com/ArtfulOneXD/MetaTest/internal/models"
)

// Provider generates text from a prompt or a conversation.
type Provider interface {
	// Chat completes a conversation: a system instruction plus an ordered
	// turn log. Used for the live reply path.
	Chat(ctx context.Context, system string, turns []models.ConversationTurn) (string, error)
	// Complete answers a single free-form prompt. Used for summarization
	// and lead extraction, where determinism matters more than tone.
	Complete(ctx context.Context, prompt string) (string, error)
}

// New builds the provider selected by LLM_PROVIDER.
func New(cfg *config.Config) (Provider, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai", "":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case "gemini":
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (use openai or gemini)", cfg.LLMProvider)
	}
}

// Flatten renders a turn log as "role: content" lines. The gemini backend
// and the extraction prompt both consume this form.
func Flatten(turns []models.ConversationTurn) string {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}
