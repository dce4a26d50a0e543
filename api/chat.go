package api

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/chatrelay/domain"
	"github.com/xiaot623/chatrelay/provider"
)

// ListModels enumerates the available model identifiers per provider.
// GET /models
func (h *Handler) ListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, provider.Models(h.config))
}

// Chat runs one completion turn against the selected backend. The session id
// in the path is a correlation key only; persistence happens through the
// messages endpoint.
// POST /chat/:session_id/stream
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Messages == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "messages is required"})
	}

	reply, err := h.dispatcher.Generate(ctx, req.Messages, req.Model, req.Provider)
	if err != nil {
		log.Printf("ERROR: chat completion failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, domain.ChatResponse{Response: reply})
}
