package models

import "time"

// Outcome is the terminal state of one /process-meeting request.
type Outcome string

const (
	OutcomeEmptyHistory Outcome = "empty_history"
	OutcomeNoRecipients Outcome = "no_recipients"
	OutcomeSent         Outcome = "sent"
	OutcomeFailed       Outcome = "failed"
)

// DispatchRecord describes what happened to a meeting summary. The summary
// body itself is never part of it.
type DispatchRecord struct {
	ID           int64     `json:"id"`
	RequestID    string    `json:"request_id"`
	MeetingID    string    `json:"meeting_id"`
	Recipients   []string  `json:"recipients"`
	Subject      string    `json:"subject"`
	Outcome      Outcome   `json:"outcome"`
	PreviewURL   string    `json:"preview_url,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
