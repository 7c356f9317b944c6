// Package request decides whether a meeting payload is worth processing and
// who should receive its summary.
package request

import (
	"strings"

	"meeting-notifier/internal/models"

	"github.com/samber/lo"
)

// HasTranscript reports whether there is any chat to summarize.
func HasTranscript(history []models.ChatMessage) bool {
	return len(history) > 0
}

// FilterRecipients returns the participant emails that look like addresses,
// in participant order. Entries without an "@" are dropped silently and
// duplicates are kept.
func FilterRecipients(participants []models.Participant) []string {
	emails := lo.Map(participants, func(p models.Participant, _ int) string {
		return p.Email
	})
	return lo.Filter(emails, func(email string, _ int) bool {
		return email != "" && strings.Contains(email, "@")
	})
}
