package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ProviderConfig defines runtime-selectable reasoning engine settings.
type ProviderConfig struct {
	Provider string            `json:"provider"` // "gemini" | "ollama"
	Endpoint string            `json:"endpoint"`
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key"` // optional for local providers
	Extra    map[string]string `json:"extra"`
}

// Settings is the persisted engine settings state.
type Settings struct {
	Active ProviderConfig `json:"active"`
}

// DefaultSettings targets the hosted Gemini API with the flash-lite model;
// the key still has to come from settings or the environment.
func DefaultSettings() Settings {
	return Settings{
		Active: ProviderConfig{
			Provider: "gemini",
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-2.5-flash-lite",
			APIKey:   "",
			Extra:    map[string]string{},
		},
	}
}

// LoadSettings loads settings from the given path. If the file does not
// exist, DefaultSettings() are returned. Any other read/parse error is
// returned.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return Settings{}, errors.New("empty settings path")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("stat settings file: %w", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	// Minimal validation/fallbacks
	if s.Active.Provider == "" {
		s.Active.Provider = "gemini"
	}
	if s.Active.Endpoint == "" {
		switch s.Active.Provider {
		case "gemini":
			s.Active.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
		case "ollama":
			s.Active.Endpoint = "http://localhost:11434"
		}
	}
	if s.Active.Model == "" && s.Active.Provider == "gemini" {
		s.Active.Model = "gemini-2.5-flash-lite"
	}
	if s.Active.Extra == nil {
		s.Active.Extra = map[string]string{}
	}
	return s, nil
}

// SaveSettings saves settings to the given path, creating parent directories
// if needed.
func SaveSettings(path string, s Settings) error {
	if path == "" {
		return errors.New("empty settings path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mk settings dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
