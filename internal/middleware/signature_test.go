package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedRouter(secret string) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seenBody string
	router := gin.New()
	router.POST("/webhook", VerifySignature(secret), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		seenBody = string(body)
		c.String(http.StatusOK, "ok")
	})
	return router, &seenBody
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignaturePassesAndBodySurvives(t *testing.T) {
	router, seenBody := signedRouter("app-secret")
	body := []byte(`{"object":"page"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(signatureHeader, sign("app-secret", body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"object":"page"}`, *seenBody)
}

func TestInvalidSignatureRejected(t *testing.T) {
	router, _ := signedRouter("app-secret")
	body := []byte(`{"object":"page"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(signatureHeader, sign("wrong-secret", body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMissingSignatureRejected(t *testing.T) {
	router, _ := signedRouter("app-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMalformedSignatureHeaderRejected(t *testing.T) {
	router, _ := signedRouter("app-secret")

	for _, header := range []string{"sha1=abc", "sha256=zzzz-not-hex", "abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{}`)))
		req.Header.Set(signatureHeader, header)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, "header %q", header)
	}
}

func TestNoSecretSkipsCheck(t *testing.T) {
	router, seenBody := signedRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{"a":1}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"a":1}`, *seenBody)
}
