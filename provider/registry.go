package provider

import "github.com/xiaot623/chatrelay/config"

// Models returns the model identifiers available per provider. Gemini models
// are listed only when its API key is configured.
func Models(cfg *config.Config) map[string][]string {
	models := map[string][]string{
		"openai": {"gpt-4o-mini"},
	}
	if cfg.GeminiAPIKey != "" {
		models["gemini"] = []string{"gemini-2.5-pro", "gemini-2.5-flash"}
	}
	return models
}
