package imagegen

import (
	"fmt"

	"github.com/MalinduDS/styleshot/internal/config"
	"github.com/MalinduDS/styleshot/internal/gemini"
	"github.com/MalinduDS/styleshot/internal/genaiclient"
	"github.com/MalinduDS/styleshot/internal/openai"
	"github.com/MalinduDS/styleshot/internal/providers"
)

// NewProvider returns the provider named by cfg.Provider.
func NewProvider(cfg *config.Config) (providers.Provider, error) {
	switch cfg.Provider {
	case "", "gemini":
		return gemini.New(cfg.GeminiAPIKey), nil
	case "genai":
		return genaiclient.New(cfg.GeminiAPIKey), nil
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// FromConfig wires a provider and a pipeline from cfg.
func FromConfig(cfg *config.Config) (*Pipeline, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewPipeline(provider, Options{
		Model:    cfg.ImageModel(),
		Timeout:  cfg.GenerationTimeout,
		Interval: cfg.GenerationInterval,
	}), nil
}
