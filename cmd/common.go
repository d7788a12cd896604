package cmd

import (
	"fmt"
	"log/slog"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"github.com/MalinduDS/styleshot/internal/config"
	"github.com/MalinduDS/styleshot/internal/imagegen"
	"github.com/spf13/cobra"
)

// providerFlags are the overrides shared by every command that talks to a provider.
type providerFlags struct {
	provider    string
	model       string
	catalogFile string
}

func (f *providerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Image provider: gemini, genai or openai (default from STYLESHOT_PROVIDER)")
	cmd.Flags().StringVar(&f.model, "model-name", "", "Image model name (default depends on provider)")
	cmd.Flags().StringVar(&f.catalogFile, "catalog", "", "Catalog YAML file (default: built-in catalog)")
}

// load reads the environment, applies flag overrides and wires the catalog and pipeline.
func (f *providerFlags) load() (*config.Config, *catalog.Catalog, *imagegen.Pipeline, error) {
	cfg := config.Load()
	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.model != "" {
		if cfg.Provider == "openai" {
			cfg.OpenAIImageModel = f.model
		} else {
			cfg.GeminiImageModel = f.model
		}
	}
	if f.catalogFile != "" {
		cfg.CatalogFile = f.catalogFile
	}

	c, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	pipeline, err := imagegen.FromConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	slog.Debug("Configuration loaded", "provider", cfg.Provider, "model", cfg.ImageModel(), "catalog", cfg.CatalogFile)
	return cfg, c, pipeline, nil
}
