package models

// WebSocket frame types
const (
	WSTypeChunk = "chunk"
	WSTypeDone  = "done"
	WSTypeError = "error"
	WSTypeReset = "reset"
)

// WSMessage is a frame sent on the chat stream.
type WSMessage struct {
	Type           string `json:"type"`
	Text           string `json:"text,omitempty"`
	Response       string `json:"response,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message,omitempty"`
}

// WSInbound is a frame received on the chat stream.
type WSInbound struct {
	Message string `json:"message"`
}

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
