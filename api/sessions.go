package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/chatrelay/domain"
	"github.com/xiaot623/chatrelay/store"
)

// CreateSession creates a new session with an empty message list.
// POST /sessions
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Title == "" {
		req.Title = "New Chat"
	}

	session, err := h.store.CreateSession(ctx, req.UserID, req.Title)
	if err != nil {
		log.Printf("ERROR: failed to create session: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}

	return c.JSON(http.StatusOK, map[string]string{"session_id": session.ID})
}

// ListSessions returns the caller's sessions, newest first.
// GET /sessions?user_id=
func (h *Handler) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.QueryParam("user_id")

	sessions, err := h.store.ListSessions(ctx, userID)
	if err != nil {
		log.Printf("ERROR: failed to list sessions: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list sessions"})
	}

	return c.JSON(http.StatusOK, sessions)
}

// GetSessionMessages returns the message list for a session.
// GET /sessions/:session_id
func (h *Handler) GetSessionMessages(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	messages, err := h.store.GetMessages(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		}
		log.Printf("ERROR: failed to get messages: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get messages"})
	}

	return c.JSON(http.StatusOK, messages)
}

// SaveSessionMessages replaces the message list for a session wholesale.
// POST /sessions/:session_id/messages
func (h *Handler) SaveSessionMessages(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var req domain.SaveMessagesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Messages == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "messages must be an array"})
	}

	if err := h.store.SaveMessages(ctx, sessionID, req.Messages); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		}
		log.Printf("ERROR: failed to save messages: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save messages"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// RenameSession updates a session's title.
// PATCH /sessions/:session_id
func (h *Handler) RenameSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var req domain.RenameSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	session, err := h.store.RenameSession(ctx, sessionID, req.Title)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		}
		log.Printf("ERROR: failed to rename session: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to rename session"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"session": session,
	})
}

// DeleteSession removes a session and its message list.
// DELETE /sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	if err := h.store.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		}
		log.Printf("ERROR: failed to delete session: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete session"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
