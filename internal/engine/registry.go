package engine

import (
	"context"
	"fmt"
	"log"
)

// Discovery is an optional capability a provider can implement to expose
// health checks for settings surfaces.
type Discovery interface {
	HealthCheck(ctx context.Context) error
}

// Build constructs an Engine from a ProviderConfig.
func Build(ctx context.Context, cfg ProviderConfig, logger *log.Logger) (Engine, error) {
	switch normalize(cfg.Provider) {
	case "gemini":
		p, err := NewGemini(cfg.Endpoint, cfg.Model, cfg.APIKey, logger)
		if err != nil {
			return nil, err
		}
		return &adapter{g: p}, nil
	case "ollama":
		p, err := NewOllama(cfg.Endpoint, cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		return &adapter{g: p}, nil
	default:
		return nil, fmt.Errorf("unknown reasoning engine provider: %s", cfg.Provider)
	}
}

// TryHealthCheck attempts a provider health check when supported. The typed
// Engine wraps the provider, so check the provider before wrapping.
func TryHealthCheck(ctx context.Context, cfg ProviderConfig, logger *log.Logger) error {
	switch normalize(cfg.Provider) {
	case "gemini":
		p, err := NewGemini(cfg.Endpoint, cfg.Model, cfg.APIKey, logger)
		if err != nil {
			return err
		}
		return p.HealthCheck(ctx)
	case "ollama":
		p, err := NewOllama(cfg.Endpoint, cfg.Model, logger)
		if err != nil {
			return err
		}
		return p.HealthCheck(ctx)
	default:
		return fmt.Errorf("unknown reasoning engine provider: %s", cfg.Provider)
	}
}

func normalize(s string) string {
	switch s {
	case "Gemini", "GEMINI", "google", "Google":
		return "gemini"
	case "Ollama", "OLLAMA":
		return "ollama"
	default:
		return s
	}
}
