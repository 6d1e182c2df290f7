package models

import (
	"fmt"
	"os"
	"strings"

	"github.com/scribekit/scribe/internal/config"
)

// ResolveAPIKey resolves the credential for a provider.
// Resolution order: direct api_key → ${ENV} reference → driver default env.
func ResolveAPIKey(cfg config.ProviderConfig) (string, error) {
	key := strings.TrimSpace(cfg.Auth.APIKey)
	if strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}") {
		key = os.Getenv(key[2 : len(key)-1])
	}
	if key != "" {
		return key, nil
	}

	switch strings.ToLower(cfg.Driver) {
	case "anthropic":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	default:
		return "", fmt.Errorf("unknown driver %q: cannot resolve auth", cfg.Driver)
	}
}
