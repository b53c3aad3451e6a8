package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// ConfigService resolves the effective deckgen configuration
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
}

// NewConfigService creates a new configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{
		loader: loader,
		merger: merger,
	}
}

// LoadConfig layers defaults, the global file, the local deckgen.toml,
// DECKGEN_* variables and finally CLI flags
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error) {
	layers := []*entities.Config{s.GetDefaultConfig()}

	globalConfig, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if globalConfig != nil {
		layers = append(layers, globalConfig)
	}

	localConfig, err := s.loader.LoadLocal(ctx, workingDir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if localConfig != nil {
		layers = append(layers, localConfig)
	}

	merged := s.merger.Merge(layers...)
	merged = s.merger.ApplyEnvVars(merged)
	merged = s.merger.ApplyFlags(merged, flags)

	if err := s.ValidateConfig(merged); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}

	return merged, nil
}

// GetDefaultConfig returns the default configuration. Merge with no layers
// yields the defaults.
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Merge()
}

// ValidateConfig validates a configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}

	return config.Validate()
}

// GenerationOptionsFrom extracts the request defaults a GenerationService needs
func GenerationOptionsFrom(config *entities.Config) GenerationOptions {
	if config == nil {
		return GenerationOptions{
			DefaultProvider: entities.DefaultProvider,
			DefaultModel:    entities.DefaultModel,
			OutputFilename:  entities.DefaultOutputFilename,
		}
	}
	return GenerationOptions{
		DefaultProvider: config.Provider.GetDefaultProvider(),
		DefaultModel:    config.Provider.GetDefaultModel(),
		OutputFilename:  config.Generation.GetOutputFilename(),
	}
}

// Ensure ConfigService implements ports.ConfigService
var _ ports.ConfigService = (*ConfigService)(nil)
