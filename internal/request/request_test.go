package request

import (
	"encoding/json"
	"testing"

	"meeting-notifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasTranscript(t *testing.T) {
	assert.False(t, HasTranscript(nil))
	assert.False(t, HasTranscript([]models.ChatMessage{}))
	assert.True(t, HasTranscript([]models.ChatMessage{{User: "Ana", Text: "hi"}}))
}

func TestFilterRecipients(t *testing.T) {
	tests := []struct {
		name         string
		participants []models.Participant
		want         []string
	}{
		{name: "nil participants", participants: nil, want: []string{}},
		{name: "drops empty and malformed", participants: []models.Participant{
			{Email: ""},
			{Email: "not-an-email"},
			{Email: "a@x.com"},
		}, want: []string{"a@x.com"}},
		{name: "keeps order and duplicates", participants: []models.Participant{
			{Email: "b@x.com"},
			{Email: "a@x.com"},
			{Email: "b@x.com"},
		}, want: []string{"b@x.com", "a@x.com", "b@x.com"}},
		{name: "substring check only", participants: []models.Participant{
			{Email: "@"},
			{Email: "weird@"},
		}, want: []string{"@", "weird@"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRecipients(tt.participants)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterRecipients_DecodedPayload(t *testing.T) {
	body := `[
		{"email": "a@x.com", "name": "Ana"},
		{"email": 42},
		{"name": "no email"},
		{"email": null},
		{"email": "c@x.com", "role": "host"}
	]`

	var participants []models.Participant
	require.NoError(t, json.Unmarshal([]byte(body), &participants))

	assert.Equal(t, []string{"a@x.com", "c@x.com"}, FilterRecipients(participants))
	assert.Contains(t, participants[0].Fields, "name")
}
