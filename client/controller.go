package client

import (
	"context"
	"fmt"
	"log"

	"github.com/xiaot623/chatrelay/domain"
)

// defaultTitle is the title given to freshly created sessions.
const defaultTitle = "New Chat"

// autoTitleLimit caps the characters taken from the first user message when
// deriving a session title.
const autoTitleLimit = 32

// Controller mirrors the server's session list and the active session's
// message history. Every user action updates the local state first and then
// issues the corresponding HTTP call; failures are surfaced but the local
// state stands, except for Delete which restores it. The mirrors are
// eventually consistent with the server copy at best.
//
// Controller is not safe for concurrent use; it backs a single view.
type Controller struct {
	client *Client
	userID string

	sessions []domain.Session
	current  string
	history  []domain.Message
	model    string

	// autoNamed guards auto-titling so it fires at most once per session per
	// controller lifetime. It is not reconstructed from server state, so a
	// fresh controller can title a session again.
	autoNamed map[string]bool
}

// NewController creates a controller for userID.
func NewController(client *Client, userID, model string) *Controller {
	return &Controller{
		client:    client,
		userID:    userID,
		model:     model,
		autoNamed: make(map[string]bool),
	}
}

// Sessions returns the mirrored session list, newest first.
func (ctl *Controller) Sessions() []domain.Session { return ctl.sessions }

// Current returns the active session id, empty when none is selected.
func (ctl *Controller) Current() string { return ctl.current }

// History returns the active session's mirrored message history.
func (ctl *Controller) History() []domain.Message { return ctl.history }

// Model returns the selected model id.
func (ctl *Controller) Model() string { return ctl.model }

// SetModel selects the model used for subsequent turns.
func (ctl *Controller) SetModel(model string) { ctl.model = model }

// Refresh reloads the session list from the server. When nothing is selected
// yet it activates the newest session.
func (ctl *Controller) Refresh(ctx context.Context) error {
	sessions, err := ctl.client.ListSessions(ctx, ctl.userID)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	ctl.sessions = sessions

	if ctl.current == "" && len(sessions) > 0 {
		return ctl.Select(ctx, sessions[0].ID)
	}
	return nil
}

// Select activates a session and loads its history. On failure the history
// mirror is left empty rather than stale.
func (ctl *Controller) Select(ctx context.Context, sessionID string) error {
	ctl.current = sessionID
	messages, err := ctl.client.GetMessages(ctx, sessionID)
	if err != nil {
		ctl.history = nil
		return fmt.Errorf("failed to load messages: %w", err)
	}
	ctl.history = messages
	return nil
}

// NewSession creates a session on the server, mirrors it locally, and
// activates it.
func (ctl *Controller) NewSession(ctx context.Context) (string, error) {
	id, err := ctl.client.CreateSession(ctx, ctl.userID, defaultTitle)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	if err := ctl.Refresh(ctx); err != nil {
		return id, err
	}
	ctl.current = id
	ctl.history = []domain.Message{}
	return id, nil
}

// Send runs one chat turn in the active session: the user message joins the
// local history immediately, the reply is requested, and the full history is
// saved back. The first user message auto-titles the session. A dispatch
// failure is returned for display; the user message stays in the history.
func (ctl *Controller) Send(ctx context.Context, content string) (string, error) {
	if ctl.current == "" {
		return "", fmt.Errorf("no active session")
	}
	sessionID := ctl.current

	ctl.history = append(ctl.history, domain.Message{Role: domain.RoleUser, Content: content})
	ctl.maybeAutoTitle(ctx, sessionID, content)
	ctl.save(ctx, sessionID)

	reply, err := ctl.client.Chat(ctx, sessionID, domain.ChatRequest{
		Messages: ctl.history,
		Model:    ctl.model,
	})
	if err != nil {
		return "", err
	}

	ctl.history = append(ctl.history, domain.Message{
		Role:    domain.RoleAssistant,
		Content: reply,
		Model:   ctl.model,
	})
	ctl.save(ctx, sessionID)
	return reply, nil
}

// Rename updates the active session's title, locally first.
func (ctl *Controller) Rename(ctx context.Context, title string) error {
	if ctl.current == "" {
		return fmt.Errorf("no active session")
	}
	ctl.setLocalTitle(ctl.current, title)

	if _, err := ctl.client.RenameSession(ctx, ctl.current, title); err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	return nil
}

// Delete removes a session. The local mirror updates optimistically; on
// server failure it is restored and the error surfaced.
func (ctl *Controller) Delete(ctx context.Context, sessionID string) error {
	prevSessions := ctl.sessions
	prevCurrent := ctl.current
	prevHistory := ctl.history

	remaining := make([]domain.Session, 0, len(ctl.sessions))
	for _, sess := range ctl.sessions {
		if sess.ID != sessionID {
			remaining = append(remaining, sess)
		}
	}
	ctl.sessions = remaining
	if ctl.current == sessionID {
		ctl.current = ""
		ctl.history = nil
	}

	if err := ctl.client.DeleteSession(ctx, sessionID); err != nil {
		ctl.sessions = prevSessions
		ctl.current = prevCurrent
		ctl.history = prevHistory
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if ctl.current == "" && len(ctl.sessions) > 0 {
		if err := ctl.Select(ctx, ctl.sessions[0].ID); err != nil {
			log.Printf("WARN: failed to activate next session: %v", err)
		}
	}
	return nil
}

// maybeAutoTitle derives a title from the session's first user message and
// issues a rename, at most once per session.
func (ctl *Controller) maybeAutoTitle(ctx context.Context, sessionID, content string) {
	if ctl.autoNamed[sessionID] {
		return
	}
	userCount := 0
	for _, msg := range ctl.history {
		if msg.Role == domain.RoleUser {
			userCount++
		}
	}
	if userCount != 1 {
		return
	}
	ctl.autoNamed[sessionID] = true

	title := content
	if runes := []rune(title); len(runes) > autoTitleLimit {
		title = string(runes[:autoTitleLimit])
	}
	ctl.setLocalTitle(sessionID, title)

	if _, err := ctl.client.RenameSession(ctx, sessionID, title); err != nil {
		log.Printf("WARN: auto-title failed: %v", err)
	}
}

// save pushes the local history to the server, best effort.
func (ctl *Controller) save(ctx context.Context, sessionID string) {
	if err := ctl.client.SaveMessages(ctx, sessionID, ctl.history); err != nil {
		log.Printf("WARN: failed to save messages: %v", err)
	}
}

func (ctl *Controller) setLocalTitle(sessionID, title string) {
	for i := range ctl.sessions {
		if ctl.sessions[i].ID == sessionID {
			ctl.sessions[i].Title = title
		}
	}
}
