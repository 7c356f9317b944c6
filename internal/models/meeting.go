package models

import "encoding/json"

// MeetingSummaryRequest is the body of POST /process-meeting.
type MeetingSummaryRequest struct {
	MeetingID    string        `json:"meetingId"`
	Participants []Participant `json:"participants"`
	ChatHistory  []ChatMessage `json:"chatHistory"`
}

// Participant carries an email plus whatever else the caller sent along.
type Participant struct {
	Email  string                     `json:"email"`
	Fields map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps unknown fields and treats a non-string email as missing,
// so a single odd entry never rejects the whole request.
func (p *Participant) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	p.Fields = fields
	p.Email = ""
	if raw, ok := fields["email"]; ok {
		var email string
		if err := json.Unmarshal(raw, &email); err == nil {
			p.Email = email
		}
	}
	return nil
}

// ChatMessage is one line of the meeting chat, in transcript order.
type ChatMessage struct {
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
