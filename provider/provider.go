// Package provider implements the upstream text-generation backends and the
// dispatcher that routes a transcript to exactly one of them.
package provider

import (
	"context"

	"github.com/xiaot623/chatrelay/domain"
)

// Backend is one upstream text-generation API. Generate sends the transcript
// for one completion turn and returns the reply as plain text. Failures of
// any kind (network, non-2xx status, malformed payload) surface as a single
// error; there are no retries.
type Backend interface {
	// Name returns the provider identifier, e.g. "openai" or "gemini".
	Name() string

	// Generate runs one completion turn against model and returns the reply.
	Generate(ctx context.Context, transcript []domain.Message, model string) (string, error)
}
