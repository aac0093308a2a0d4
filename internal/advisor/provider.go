package advisor

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by NewCompleter.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// NewCompleter builds the backend for provider. It returns a nil Completer
// for ProviderNone.
func NewCompleter(ctx context.Context, provider, apiKey, model string) (Completer, error) {
	switch strings.ToLower(provider) {
	case ProviderGemini, "google":
		g, err := NewGemini(ctx, apiKey, model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderAnthropic, "claude":
		c, err := NewClaude(apiKey, model)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown advisor provider %q", provider)
}
