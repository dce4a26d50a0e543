package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/chatrelay/domain"
)

// openaiFallback is returned when the upstream responds without a candidate.
const openaiFallback = "No response from OpenAI."

// OpenAIBackend calls an OpenAI-compatible chat completions API with the
// full role-tagged transcript.
type OpenAIBackend struct {
	baseURL    string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
}

// NewOpenAIBackend creates an OpenAI-compatible backend client.
func NewOpenAIBackend(baseURL, apiKey string, maxTokens int, timeout time.Duration) *OpenAIBackend {
	return &OpenAIBackend{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider identifier.
func (b *OpenAIBackend) Name() string { return "openai" }

// chatCompletionRequest is the chat completions request body.
type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	MaxTokens int           `json:"max_tokens"`
}

// chatMessage is a role-tagged transcript entry on the wire.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the chat completions response body.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

// Generate sends the transcript and returns the first choice's text.
func (b *OpenAIBackend) Generate(ctx context.Context, transcript []domain.Message, model string) (string, error) {
	reqBody := chatCompletionRequest{
		Model:     model,
		Stream:    false,
		MaxTokens: b.maxTokens,
	}
	for _, msg := range transcript {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return openaiFallback, nil
	}
	return result.Choices[0].Message.Content, nil
}
