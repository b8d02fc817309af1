package controllers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArtfulOneXD/MetaTest/internal/models"
	"github.com/ArtfulOneXD/MetaTest/internal/utils"
)

// TurnRecorder accepts one inbound user turn.
type TurnRecorder interface {
	RecordTurn(userID, content string)
}

// ReplyGenerator produces the assistant reply for the user's current
// session. It never fails: errors come back as a sentinel reply string.
type ReplyGenerator interface {
	Reply(ctx context.Context, userID string) string
}

// MessageSender delivers a text reply to a user.
type MessageSender interface {
	SendText(ctx context.Context, psid, text string) error
}

// WebhookController handles the Meta webhook surface: the GET verification
// handshake and the POST messaging events.
type WebhookController struct {
	verifyToken string
	recorder    TurnRecorder
	replier     ReplyGenerator
	sender      MessageSender
}

func NewWebhookController(verifyToken string, recorder TurnRecorder, replier ReplyGenerator, sender MessageSender) *WebhookController {
	return &WebhookController{
		verifyToken: verifyToken,
		recorder:    recorder,
		replier:     replier,
		sender:      sender,
	}
}

// Verify answers the subscription handshake: echo hub.challenge when the
// mode is "subscribe" and the token matches, 403 otherwise.
func (w *WebhookController) Verify(ctx *gin.Context) {
	mode := ctx.Query("hub.mode")
	token := ctx.Query("hub.verify_token")
	challenge := ctx.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == w.verifyToken {
		ctx.String(http.StatusOK, challenge)
		return
	}
	ctx.String(http.StatusForbidden, "Verification failed")
}

// Receive processes a webhook event batch. Page payloads are always
// acknowledged with 200 EVENT_RECEIVED, even when individual events fail:
// a non-200 here makes Meta redeliver the whole batch.
func (w *WebhookController) Receive(ctx *gin.Context) {
	var event models.WebhookEvent
	if err := ctx.ShouldBindJSON(&event); err != nil {
		log.Printf("Webhook body parse error: %v", err)
		ctx.String(http.StatusOK, "EVENT_RECEIVED")
		return
	}

	if event.Object != "page" {
		ctx.String(http.StatusNotFound, "Not Found")
		return
	}

	for _, entry := range event.Entry {
		for _, evt := range entry.Messaging {
			w.handleEvent(ctx.Request.Context(), &evt)
		}
	}

	ctx.String(http.StatusOK, "EVENT_RECEIVED")
}

// handleEvent normalizes one messaging event to (psid, text) and runs the
// inbound pipeline: record the turn, generate the reply, send it. Events
// with no usable sender or text are discarded without touching any session.
func (w *WebhookController) handleEvent(ctx context.Context, evt *models.MessagingEvent) {
	psid := evt.SenderID()
	text := evt.Text()
	if psid == "" || text == "" {
		return
	}

	if err := utils.ValidatePSID(psid); err != nil {
		log.Printf("Discarding event: %v", err)
		return
	}
	sanitized, err := utils.ValidateAndSanitizeMessage(text)
	if err != nil {
		log.Printf("Discarding event from %s: %v", psid, err)
		return
	}

	w.recorder.RecordTurn(psid, sanitized)

	reply := w.replier.Reply(ctx, psid)

	if err := w.sender.SendText(ctx, psid, reply); err != nil {
		log.Printf("❌ Could not send reply to %s: %v", psid, err)
	}
}
