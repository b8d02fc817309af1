package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ArtfulOneXD/MetaTest/internal/llm"
)

const systemPrompt = `You are the AI assistant for Handyman Grace Company, a handyman/home-repair service in Sacramento County, CA.
Tone: friendly, brief, confident. Keep replies to 2-5 sentences.
Do not guess exact prices. If asked for price, say you can give a ballpark after a few details.
If the user seems like a lead (estimate/availability/onsite), politely collect:
- Name
- Best contact (phone/email)
- Address/area in Sacramento
- Task description (photos/links if any)
- Timing (preferred date/time)
- Budget (optional)
Then offer to pass it to the team now.
If it's outside typical handyman scope, suggest contacting a licensed GC. For emergencies, advise calling local emergency services.
If asked, you may share: (916) 769-2889 or (916) 281-7178.`

const (
	// apologyReply is forwarded to the user as a normal reply when the
	// model call fails. The webhook path never surfaces an error upstream.
	apologyReply = "[ai-error] Sorry, I hit a snag. Please try again."

	// summaryFallback stands in for the compaction summary when the
	// summarization call itself fails.
	summaryFallback = "Summary unavailable."
)

// AssistantService generates the conversational reply for the latest turn
// of a user's session, keeping the live context bounded via compaction.
type AssistantService struct {
	provider llm.Provider
	sessions *SessionService
}

func NewAssistantService(provider llm.Provider, sessions *SessionService) *AssistantService {
	return &AssistantService{
		provider: provider,
		sessions: sessions,
	}
}

// Reply produces the assistant's answer for the user's current turn log and
// appends it to the session. Errors come back as the apology sentinel, not
// as an error: there is always something to send to the user.
func (a *AssistantService) Reply(ctx context.Context, userID string) string {
	a.compact(ctx, userID)

	turns := a.sessions.Snapshot(userID)
	if len(turns) == 0 {
		log.Printf("No active session for %s, nothing to reply to", userID)
		return apologyReply
	}

	reply, err := a.provider.Chat(ctx, systemPrompt, turns)
	if err != nil {
		log.Printf("❌ Reply generation failed for %s: %v", userID, err)
		reply = apologyReply
	} else if strings.TrimSpace(reply) == "" {
		reply = "…"
	}

	a.sessions.AppendAssistant(userID, reply)
	return reply
}

// compact folds the turns beyond the live cap into one system summary turn.
// Size management only: skipping it on failure is fine, losing the folded
// content to extraction is not, which is why the summary goes into the log
// rather than a side channel.
func (a *AssistantService) compact(ctx context.Context, userID string) {
	old := a.sessions.Overflow(userID)
	if len(old) == 0 {
		return
	}

	prompt := fmt.Sprintf("Summarize the following conversation in 2-3 sentences for context: \n%s", llm.Flatten(old))
	summary, err := a.provider.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(summary) == "" {
		log.Printf("⚠️ Summarization failed for %s: %v", userID, err)
		summary = summaryFallback
	}

	a.sessions.Compact(userID, summary)
}
