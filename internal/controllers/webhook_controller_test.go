package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	turns []recordedTurn
}

type recordedTurn struct {
	userID  string
	content string
}

func (f *fakeRecorder) RecordTurn(userID, content string) {
	f.turns = append(f.turns, recordedTurn{userID, content})
}

type fakeReplier struct {
	reply string
	calls []string
}

func (f *fakeReplier) Reply(_ context.Context, userID string) string {
	f.calls = append(f.calls, userID)
	return f.reply
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	psid string
	text string
}

func (f *fakeSender) SendText(_ context.Context, psid, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{psid, text})
	return nil
}

func setupWebhook(t *testing.T, verifyToken string) (*fakeRecorder, *fakeReplier, *fakeSender, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := &fakeRecorder{}
	replier := &fakeReplier{reply: "Sure, happy to help!"}
	sender := &fakeSender{}

	ctrl := NewWebhookController(verifyToken, recorder, replier, sender)
	router := gin.New()
	router.GET("/webhook", ctrl.Verify)
	router.POST("/webhook", ctrl.Receive)
	return recorder, replier, sender, router
}

func TestVerifyHandshake(t *testing.T) {
	_, _, _, router := setupWebhook(t, "my-token")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=my-token&hub.challenge=12345", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())
}

func TestVerifyHandshakeRejectsBadToken(t *testing.T) {
	_, _, _, router := setupWebhook(t, "my-token")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Verification failed", w.Body.String())
}

func TestVerifyHandshakeRejectsEmptyConfiguredToken(t *testing.T) {
	_, _, _, router := setupWebhook(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=&hub.challenge=12345", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func postWebhook(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestReceiveMessageEvent(t *testing.T) {
	recorder, replier, sender, router := setupWebhook(t, "t")

	w := postWebhook(router, `{
		"object": "page",
		"entry": [{"messaging": [{
			"sender": {"id": "psid1"},
			"message": {"text": "I need a fence repaired"}
		}]}]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EVENT_RECEIVED", w.Body.String())

	require.Len(t, recorder.turns, 1)
	assert.Equal(t, "psid1", recorder.turns[0].userID)
	assert.Equal(t, "I need a fence repaired", recorder.turns[0].content)

	assert.Equal(t, []string{"psid1"}, replier.calls)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, sentMessage{"psid1", "Sure, happy to help!"}, sender.sent[0])
}

func TestReceivePostbackPayload(t *testing.T) {
	recorder, _, _, router := setupWebhook(t, "t")

	w := postWebhook(router, `{
		"object": "page",
		"entry": [{"messaging": [{
			"sender": {"id": "psid1"},
			"postback": {"title": "Get started", "payload": "GET_STARTED"}
		}]}]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.turns, 1)
	assert.Equal(t, "GET_STARTED", recorder.turns[0].content)
}

func TestReceiveDiscardsEventWithoutText(t *testing.T) {
	recorder, replier, sender, router := setupWebhook(t, "t")

	w := postWebhook(router, `{
		"object": "page",
		"entry": [{"messaging": [{"sender": {"id": "psid1"}, "message": {"mid": "m1"}}]}]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EVENT_RECEIVED", w.Body.String())
	assert.Empty(t, recorder.turns)
	assert.Empty(t, replier.calls)
	assert.Empty(t, sender.sent)
}

func TestReceiveDiscardsEventWithoutSender(t *testing.T) {
	recorder, _, _, router := setupWebhook(t, "t")

	w := postWebhook(router, `{
		"object": "page",
		"entry": [{"messaging": [{"message": {"text": "hello"}}]}]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.turns)
}

func TestReceiveDiscardsWhitespaceOnlyText(t *testing.T) {
	recorder, _, _, router := setupWebhook(t, "t")

	w := postWebhook(router, `{
		"object": "page",
		"entry": [{"messaging": [{"sender": {"id": "psid1"}, "message": {"text": "   "}}]}]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.turns)
}

func TestReceiveNonPageObject(t *testing.T) {
	recorder, _, _, router := setupWebhook(t, "t")

	w := postWebhook(router, `{"object": "instagram", "entry": []}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", w.Body.String())
	assert.Empty(t, recorder.turns)
}

func TestReceiveMalformedBodyStillAcknowledges(t *testing.T) {
	recorder, _, _, router := setupWebhook(t, "t")

	w := postWebhook(router, `{not json`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EVENT_RECEIVED", w.Body.String())
	assert.Empty(t, recorder.turns)
}

func TestReceiveSendFailureStillAcknowledges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &fakeRecorder{}
	replier := &fakeReplier{reply: "hi"}
	sender := &fakeSender{err: errors.New("send api down")}

	ctrl := NewWebhookController("t", recorder, replier, sender)
	router := gin.New()
	router.POST("/webhook", ctrl.Receive)

	w := postWebhook(router, `{
		"object": "page",
		"entry": [{"messaging": [{"sender": {"id": "psid1"}, "message": {"text": "hello"}}]}]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EVENT_RECEIVED", w.Body.String())
	require.Len(t, recorder.turns, 1)
}

func TestReceiveMultipleEventsInOneBatch(t *testing.T) {
	recorder, _, sender, router := setupWebhook(t, "t")

	w := postWebhook(router, `{
		"object": "page",
		"entry": [
			{"messaging": [{"sender": {"id": "a"}, "message": {"text": "first"}}]},
			{"messaging": [
				{"sender": {"id": "b"}, "message": {"text": "second"}},
				{"sender": {"id": "a"}, "message": {"text": "third"}}
			]}
		]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.turns, 3)
	assert.Equal(t, recordedTurn{"a", "first"}, recorder.turns[0])
	assert.Equal(t, recordedTurn{"b", "second"}, recorder.turns[1])
	assert.Equal(t, recordedTurn{"a", "third"}, recorder.turns[2])
	assert.Len(t, sender.sent, 3)
}
