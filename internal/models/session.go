package models

import "time"

// Session is the server-side state behind a session cookie.
type Session struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id,omitempty"`
	ChatHistory    []ChatMessage `json:"chat_history"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Clone returns a copy whose history can be appended to without aliasing s.
func (s *Session) Clone() *Session {
	c := *s
	c.ChatHistory = append([]ChatMessage(nil), s.ChatHistory...)
	return &c
}
