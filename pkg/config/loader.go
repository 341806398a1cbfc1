package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Initialize loads, merges, and validates the assessment catalogue.
//
// Steps performed:
//  1. Load catalogue.yaml from configDir, if present
//  2. Merge built-in knowledge components/quizzes with user-defined ones
//  3. Merge engine defaults (user YAML overrides package defaults)
//  4. Validate the merged catalogue
//  5. Return a Config ready for use
//
// Generalised from pkg/config/loader.go's Initialize, which performs the
// same load-merge-validate sequence over TARSy's agent/chain/MCP-server
// registries.
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("loading assessment catalogue")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("catalogue validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("assessment catalogue loaded",
		"quizzes", stats.Quizzes,
		"questions", stats.Questions,
		"knowledge_components", stats.KnowledgeComponents)

	return cfg, nil
}

func load(configDir string) (*Config, error) {
	builtin := GetBuiltinCatalogue()

	user, err := loadCatalogueYAML(configDir)
	if err != nil {
		return nil, err
	}

	quizzes, kcs, err := mergeCatalogues(builtin, user)
	if err != nil {
		return nil, NewLoadError("catalogue.yaml", err)
	}

	var engine EngineDefaults
	if user.Engine != nil {
		if err := mergo.Merge(&engine, user.Engine, mergo.WithOverride); err != nil {
			return nil, NewLoadError("catalogue.yaml", err)
		}
	}

	return &Config{
		configDir:           configDir,
		Engine:              engine,
		Quizzes:             quizzes,
		KnowledgeComponents: kcs,
	}, nil
}

// loadCatalogueYAML reads configDir/catalogue.yaml. A missing file is
// not an error: the built-in catalogue alone is a valid deployment (the
// demo/test case), matching pkg/config/loader.go's tolerance of an
// absent llm-providers.yaml.
func loadCatalogueYAML(configDir string) (CatalogueYAML, error) {
	if configDir == "" {
		return CatalogueYAML{}, nil
	}

	path := filepath.Join(configDir, "catalogue.yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return CatalogueYAML{}, nil
	}
	if err != nil {
		return CatalogueYAML{}, NewLoadError(path, err)
	}

	var parsed CatalogueYAML
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return CatalogueYAML{}, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	return parsed, nil
}
