// Package domain defines the core models shared by the store, the
// provider dispatcher, and the HTTP handlers.
package domain

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is a named conversation thread owned by a user identifier.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single entry in a session's transcript. Model is set only
// on assistant messages and names the backend model that produced them.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// ChatRequest is the body of a chat turn. Model and Provider are optional;
// the dispatcher falls back to the configured defaults.
type ChatRequest struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model,omitempty"`
	Provider string    `json:"provider,omitempty"`
}

// ChatResponse carries the assistant reply for one chat turn.
type ChatResponse struct {
	Response string `json:"response"`
}

// CreateSessionRequest is the body of the session create call.
type CreateSessionRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title,omitempty"`
}

// RenameSessionRequest is the body of the session rename call.
type RenameSessionRequest struct {
	Title string `json:"title"`
}

// SaveMessagesRequest is the body of the message replace call.
type SaveMessagesRequest struct {
	Messages []Message `json:"messages"`
}
