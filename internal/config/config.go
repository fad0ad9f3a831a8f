package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// ImageModel is the model used for image generation and editing.
	ImageModel string `json:"image_model,omitempty"`

	// SceneModel is the model used for scene description expansion.
	SceneModel string `json:"scene_model,omitempty"`

	// IdeasModel is the model used for grounded character-idea retrieval.
	IdeasModel string `json:"ideas_model,omitempty"`

	// SceneThinkingBudget is the extended reasoning budget (in tokens) for
	// scene expansion. 0 falls back to the default.
	SceneThinkingBudget int32 `json:"scene_thinking_budget,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ImageModel:          "gemini-2.5-flash-image",
		SceneModel:          "gemini-2.5-pro",
		IdeasModel:          "gemini-2.5-flash",
		SceneThinkingBudget: 32768,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.atelier.
func Load(baseDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs. Overlay values win when non-zero.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		ImageModel:          overlay.ImageModel,
		SceneModel:          overlay.SceneModel,
		IdeasModel:          overlay.IdeasModel,
		SceneThinkingBudget: overlay.SceneThinkingBudget,
	}
	if result.ImageModel == "" {
		result.ImageModel = base.ImageModel
	}
	if result.SceneModel == "" {
		result.SceneModel = base.SceneModel
	}
	if result.IdeasModel == "" {
		result.IdeasModel = base.IdeasModel
	}
	if result.SceneThinkingBudget == 0 {
		result.SceneThinkingBudget = base.SceneThinkingBudget
	}
	return result
}

// BaseDir returns the default base directory (~/.atelier).
func BaseDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".atelier"), nil
}
