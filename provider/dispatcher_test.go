package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/chatrelay/config"
	"github.com/xiaot623/chatrelay/domain"
)

// fakeBackend records the call it receives.
type fakeBackend struct {
	name   string
	reply  string
	err    error
	called bool
	model  string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Generate(ctx context.Context, transcript []domain.Message, model string) (string, error) {
	f.called = true
	f.model = model
	return f.reply, f.err
}

func newFakeDispatcher() (*Dispatcher, *fakeBackend, *fakeBackend) {
	openai := &fakeBackend{name: "openai", reply: "from openai"}
	gemini := &fakeBackend{name: "gemini", reply: "from gemini"}
	return NewDispatcherWithBackends(openai, gemini, "openai", "gpt-4o-mini"), openai, gemini
}

func TestDispatcherRoutesByModelPrefix(t *testing.T) {
	d, openai, gemini := newFakeDispatcher()

	reply, err := d.Generate(context.Background(), []domain.Message{{Role: "user", Content: "hi"}}, "gemini-2.5-pro", "")
	require.NoError(t, err)
	assert.Equal(t, "from gemini", reply)
	assert.True(t, gemini.called)
	assert.False(t, openai.called)
	assert.Equal(t, "gemini-2.5-pro", gemini.model)
}

func TestDispatcherRoutesByProviderFlag(t *testing.T) {
	d, openai, gemini := newFakeDispatcher()

	// An explicit flag wins even when the model id carries no gemini prefix.
	_, err := d.Generate(context.Background(), nil, "custom-model", "gemini")
	require.NoError(t, err)
	assert.True(t, gemini.called)
	assert.False(t, openai.called)
}

func TestDispatcherDefaultsToCompletionsBackend(t *testing.T) {
	d, openai, gemini := newFakeDispatcher()

	reply, err := d.Generate(context.Background(), nil, "gpt-4o-mini", "")
	require.NoError(t, err)
	assert.Equal(t, "from openai", reply)
	assert.True(t, openai.called)
	assert.False(t, gemini.called)
}

func TestDispatcherAppliesConfiguredDefaults(t *testing.T) {
	d, openai, _ := newFakeDispatcher()

	_, err := d.Generate(context.Background(), nil, "", "")
	require.NoError(t, err)
	assert.True(t, openai.called)
	assert.Equal(t, "gpt-4o-mini", openai.model)
}

func TestDispatcherPropagatesBackendError(t *testing.T) {
	openai := &fakeBackend{name: "openai", err: errors.New("upstream down")}
	gemini := &fakeBackend{name: "gemini"}
	d := NewDispatcherWithBackends(openai, gemini, "openai", "gpt-4o-mini")

	_, err := d.Generate(context.Background(), nil, "gpt-4o-mini", "")
	assert.EqualError(t, err, "upstream down")
}

func TestModelsGatesGeminiOnAPIKey(t *testing.T) {
	withKey := &config.Config{GeminiAPIKey: "g"}
	models := Models(withKey)
	assert.Equal(t, []string{"gpt-4o-mini"}, models["openai"])
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, models["gemini"])

	withoutKey := &config.Config{}
	models = Models(withoutKey)
	assert.Contains(t, models, "openai")
	assert.NotContains(t, models, "gemini")
}
