// Package api provides the HTTP handlers for the chat service.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/chatrelay/config"
	"github.com/xiaot623/chatrelay/domain"
	"github.com/xiaot623/chatrelay/store"
)

// Generator runs one completion turn. *provider.Dispatcher satisfies it;
// tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, transcript []domain.Message, model, provider string) (string, error)
}

// Handler handles HTTP requests.
type Handler struct {
	store      store.Store
	dispatcher Generator
	config     *config.Config
}

// NewHandler creates a new handler.
func NewHandler(store store.Store, dispatcher Generator, config *config.Config) *Handler {
	return &Handler{
		store:      store,
		dispatcher: dispatcher,
		config:     config,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/models", h.ListModels)

	// Route name kept for client compatibility; the response is synchronous.
	e.POST("/chat/:session_id/stream", h.Chat)

	e.POST("/sessions", h.CreateSession)
	e.GET("/sessions", h.ListSessions)
	e.GET("/sessions/:session_id", h.GetSessionMessages)
	e.POST("/sessions/:session_id/messages", h.SaveSessionMessages)
	e.PATCH("/sessions/:session_id", h.RenameSession)
	e.DELETE("/sessions/:session_id", h.DeleteSession)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
