package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndSanitizeMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain text", input: "I need a fence repaired", want: "I need a fence repaired"},
		{name: "trims whitespace", input: "  hello  ", want: "hello"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   \n\t ", wantErr: true},
		{name: "keeps newlines and emoji", input: "line one\nline two 🔨", want: "line one\nline two 🔨"},
		{name: "strips control chars", input: "hel\x00lo\x07!", want: "hello!"},
		{name: "too long", input: strings.Repeat("a", MaxMessageLength+1), wantErr: true},
		{name: "max length ok", input: strings.Repeat("a", MaxMessageLength), want: strings.Repeat("a", MaxMessageLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAndSanitizeMessage(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var vErr *ValidationError
				assert.ErrorAs(t, err, &vErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePSID(t *testing.T) {
	assert.NoError(t, ValidatePSID("24xxhandy1234567890"))
	assert.NoError(t, ValidatePSID("user_1-a"))
	assert.Error(t, ValidatePSID(""))
	assert.Error(t, ValidatePSID("has space"))
	assert.Error(t, ValidatePSID("semi;colon"))
	assert.Error(t, ValidatePSID(strings.Repeat("9", MaxPSIDLength+1)))
}
