package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxMessageLength = 2000
	MaxPSIDLength    = 64
)

var psidPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateAndSanitizeMessage trims and sanitizes inbound message text.
// Empty-after-trim or oversized messages are rejected; the webhook layer
// discards the event rather than erroring upstream.
func ValidateAndSanitizeMessage(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", &ValidationError{Field: "text", Message: "message text is empty"}
	}

	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return "", &ValidationError{Field: "text", Message: "message text too long (max 2000 characters)"}
	}

	return sanitizeControlChars(trimmed), nil
}

// ValidatePSID checks the shape of a page-scoped sender id.
func ValidatePSID(psid string) error {
	if psid == "" {
		return &ValidationError{Field: "psid", Message: "sender id is empty"}
	}
	if len(psid) > MaxPSIDLength {
		return &ValidationError{Field: "psid", Message: "sender id too long"}
	}
	if !psidPattern.MatchString(psid) {
		return &ValidationError{Field: "psid", Message: "sender id contains invalid characters"}
	}
	return nil
}

// sanitizeControlChars strips control characters except \n, \r and \t.
// Emojis and other high code points pass through untouched.
func sanitizeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || r >= 0x20 {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ValidationError describes a rejected inbound field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
