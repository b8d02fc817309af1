package models

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// SessionState is the lifecycle state of a conversation session.
type SessionState string

const (
	// StateActive: the session accepts turns and has a pending inactivity timer.
	StateActive SessionState = "active"
	// StateFinalizing: the inactivity deadline fired and the turn log was
	// snapshotted for extraction; new turns for the same user start a fresh session.
	StateFinalizing SessionState = "finalizing"
	// StateClosed: extraction finished (success or not) and the session is gone.
	StateClosed SessionState = "closed"
)

// ConversationTurn is a single message in a conversation. Turns are never
// mutated after being appended to a session.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the accumulated state of one user's conversation window,
// from first turn until the inactivity finalize.
type Session struct {
	UserID       string             `json:"userId"`
	Turns        []ConversationTurn `json:"turns"`
	State        SessionState       `json:"state"`
	CreatedAt    time.Time          `json:"createdAt"`
	LastActivity time.Time          `json:"lastActivity"`
}

// Lead is the structured record extracted from a finished conversation.
type Lead struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	ClientName          string    `json:"clientName"`
	ContactPhone        string    `json:"contactPhone"`
	ContactEmail        string    `json:"contactEmail"`
	Location            string    `json:"location"`
	Task                string    `json:"task"`
	Description         string    `json:"description"`
	ConversationSummary string    `json:"conversationSummary"`
	DateTime            time.Time `json:"dateTime"`
	FollowUp            bool      `json:"followUp"`
	JobScheduled        bool      `json:"jobScheduled"`
	JobDone             bool      `json:"jobDone"`
	CreatedAt           time.Time `json:"createdAt"`
}

// HasTask reports whether the extraction produced any actionable content.
// Leads without it are not persisted (idle chit-chat is not a lead).
func (l *Lead) HasTask() bool {
	return l.Task != "" || l.Description != ""
}

// LeadStats aggregates the local lead store for the stats endpoint.
type LeadStats struct {
	Total     int `json:"total"`
	FollowUps int `json:"followUps"`
	Scheduled int `json:"scheduled"`
	Done      int `json:"done"`
}

// WebhookEvent is the Messenger webhook POST body.
type WebhookEvent struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one page entry inside a webhook event.
type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent is one messaging event (message or postback) for a sender.
type MessagingEvent struct {
	Sender    *Participant    `json:"sender,omitempty"`
	Recipient *Participant    `json:"recipient,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Message   *MessageContent `json:"message,omitempty"`
	Postback  *Postback       `json:"postback,omitempty"`
}

// Participant holds the page-scoped sender/recipient id (PSID).
type Participant struct {
	ID string `json:"id"`
}

// MessageContent is the text payload of an inbound message.
type MessageContent struct {
	MID  string `json:"mid,omitempty"`
	Text string `json:"text,omitempty"`
}

// Postback is a button-press payload.
type Postback struct {
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// Text returns the usable text of the event: the message text, or the
// postback payload when there is no message text. Empty means "discard".
func (m *MessagingEvent) Text() string {
	if m.Message != nil && m.Message.Text != "" {
		return m.Message.Text
	}
	if m.Postback != nil {
		return m.Postback.Payload
	}
	return ""
}

// SenderID returns the PSID of the sender, or "" when absent.
func (m *MessagingEvent) SenderID() string {
	if m.Sender == nil {
		return ""
	}
	return m.Sender.ID
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

// StatusResponse reports which integrations are configured.
type StatusResponse struct {
	OK             bool `json:"ok"`
	HasVerifyToken bool `json:"hasVerifyToken"`
	HasMetaToken   bool `json:"hasMetaToken"`
	HasLLMKey      bool `json:"hasLLMKey"`
	HasNotionToken bool `json:"hasNotionToken"`
}
