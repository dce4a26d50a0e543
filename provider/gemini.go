package provider

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

// geminiFallback is returned when the upstream responds without a candidate.
const geminiFallback = "No response from Gemini."

// GeminiBackend calls the generateContent API. It has no multi-turn
// transcript concept, so the transcript is flattened into a single prompt:
// message contents joined with newlines, role labels dropped.
type GeminiBackend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGeminiBackend creates a generateContent backend client.
func NewGeminiBackend(baseURL, apiKey string, timeout time.Duration) *GeminiBackend {
	return &GeminiBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider identifier.
func (b *GeminiBackend) Name() string { return "gemini" }

// generateContentRequest is the generateContent request body.
type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// generateContentResponse is the generateContent response body.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate flattens the transcript to one prompt and returns the first
// candidate's text.
func (b *GeminiBackend) Generate(ctx context.Context, transcript []domain.Message, model string) (string, error) {
	parts := make([]string, 0, len(transcript))
	for _, msg := range transcript {
		parts = append(parts, msg.Content)
	}
	prompt := strings.Join(parts, "\n")

	reqBody := generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		b.baseURL, model, url.QueryEscape(b.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
		return "", fmt.Errorf("Gemini API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var result generateContentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 ||
		result.Candidates[0].Content.Parts[0].Text == "" {
		return geminiFallback, nil
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
