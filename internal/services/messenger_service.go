package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// MessengerService sends text replies back to users through the Meta Graph
// Send API.
type MessengerService struct {
	baseURL    string
	pageToken  string
	httpClient *http.Client
}

func NewMessengerService(baseURL, pageToken string) *MessengerService {
	return &MessengerService{
		baseURL:   baseURL,
		pageToken: pageToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendTextRequest struct {
	Recipient     sendRecipient `json:"recipient"`
	MessagingType string        `json:"messaging_type"`
	Message       sendMessage   `json:"message"`
}

type sendRecipient struct {
	ID string `json:"id"`
}

type sendMessage struct {
	Text string `json:"text"`
}

// SendText delivers one text message to a PSID. Non-2xx responses are
// returned as errors; the caller logs and moves on, there is no retry.
func (m *MessengerService) SendText(ctx context.Context, psid, text string) error {
	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", m.baseURL, url.QueryEscape(m.pageToken))

	body, err := json.Marshal(sendTextRequest{
		Recipient:     sendRecipient{ID: psid},
		MessagingType: "RESPONSE",
		Message:       sendMessage{Text: text},
	})
	if err != nil {
		return fmt.Errorf("marshaling send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling Send API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("Send API error: %d %s", resp.StatusCode, string(detail))
		return fmt.Errorf("Send API returned status %d", resp.StatusCode)
	}
	return nil
}
