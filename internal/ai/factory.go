package ai

import (
	"context"
	"fmt"
	"os"

	"parley-go/internal/config"
	"parley-go/internal/parley"
)

const defaultAPIKeyEnv = "GEMINI_API_KEY"

// Service translates both text and recorded speech.
type Service interface {
	parley.Translator
	parley.Transcriber
}

// NewServiceFromConfig creates the translation service named by cfg.Type.
func NewServiceFromConfig(ctx context.Context, cfg config.AIConfig, logger parley.Logger) (Service, error) {
	switch cfg.Type {
	case "gemini", "":
		env := cfg.APIKeyEnv
		if env == "" {
			env = defaultAPIKeyEnv
		}
		key := os.Getenv(env)
		if key == "" {
			return nil, fmt.Errorf("gemini api key not set: export %s", env)
		}
		g, err := NewGemini(ctx, key, cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "stub":
		return NewStub(nil), nil
	default:
		return nil, fmt.Errorf("unknown ai type: %s", cfg.Type)
	}
}
