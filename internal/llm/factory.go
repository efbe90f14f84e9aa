package llm

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingAPIKey is returned when a hosted provider's key is not set.
var ErrMissingAPIKey = errors.New("API key not set")

// DefaultOllamaHost is used when OLLAMA_HOST is empty.
const DefaultOllamaHost = "http://localhost:11434"

// hosted maps each key-authenticated provider to its key variable and
// constructor.
var hosted = map[string]struct {
	envVar string
	create func(apiKey, model string) Provider
}{
	"anthropic":  {"ANTHROPIC_API_KEY", func(k, m string) Provider { return NewAnthropicProvider(k, m) }},
	"openai":     {"OPENAI_API_KEY", func(k, m string) Provider { return NewOpenAIProvider(k, m) }},
	"openrouter": {"OPENROUTER_API_KEY", func(k, m string) Provider { return NewOpenRouterProvider(k, m) }},
	"google":     {"GOOGLE_API_KEY", func(k, m string) Provider { return NewGoogleProvider(k, m) }},
}

// NewProvider creates the vision-capable provider named by providerType:
// anthropic, openai, openrouter, google or ollama. Keys and the Ollama host
// come from the environment.
func NewProvider(providerType string, model string) (Provider, error) {
	if providerType == "ollama" {
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = DefaultOllamaHost
		}
		return NewOllamaProvider(host, model), nil
	}

	h, ok := hosted[providerType]
	if !ok {
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
	apiKey := os.Getenv(h.envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w (set %s)", providerType, ErrMissingAPIKey, h.envVar)
	}
	return h.create(apiKey, model), nil
}
