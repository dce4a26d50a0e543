// Package client provides the HTTP client for the chat service and the
// session controller that mirrors server state for an interactive view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xiaot623/chatrelay/domain"
)

// Client is a thin HTTP wrapper over the chat service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Models returns the available model identifiers per provider.
func (c *Client) Models(ctx context.Context) (map[string][]string, error) {
	var models map[string][]string
	if err := c.do(ctx, http.MethodGet, "/models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// CreateSession creates a session and returns its id.
func (c *Client) CreateSession(ctx context.Context, userID, title string) (string, error) {
	req := domain.CreateSessionRequest{UserID: userID, Title: title}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", req, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// ListSessions returns userID's sessions, newest first.
func (c *Client) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	var sessions []domain.Session
	path := "/sessions?user_id=" + url.QueryEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetMessages returns the message list for a session.
func (c *Client) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var messages []domain.Message
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SaveMessages replaces the message list for a session.
func (c *Client) SaveMessages(ctx context.Context, sessionID string, messages []domain.Message) error {
	req := domain.SaveMessagesRequest{Messages: messages}
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/messages", req, nil)
}

// RenameSession updates a session's title.
func (c *Client) RenameSession(ctx context.Context, sessionID, title string) (*domain.Session, error) {
	req := domain.RenameSessionRequest{Title: title}
	var resp struct {
		Success bool           `json:"success"`
		Session domain.Session `json:"session"`
	}
	if err := c.do(ctx, http.MethodPatch, "/sessions/"+sessionID, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Session, nil
}

// DeleteSession removes a session and its message list.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil)
}

// Chat runs one completion turn and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, sessionID string, req domain.ChatRequest) (string, error) {
	var resp domain.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat/"+sessionID+"/stream", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// do executes one JSON request/response round trip. Non-2xx responses
// surface the server's error message.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error [%d]: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server error [%d]: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
