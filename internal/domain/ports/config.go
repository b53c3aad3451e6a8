package ports

import (
	"context"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// ConfigLoader loads deckgen.toml files
type ConfigLoader interface {
	// LoadGlobal loads the user-wide configuration, creating it on first run
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal loads deckgen.toml from dir; a missing file yields nil
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// CreateDefaults writes the default configuration to path
	CreateDefaults(ctx context.Context, path string) error

	// GetGlobalPath returns the path to the global configuration file
	GetGlobalPath() string

	// GetLocalPath returns the path to the local configuration file for a directory
	GetLocalPath(dir string) string
}

// ConfigMerger layers configurations
type ConfigMerger interface {
	// Merge merges configurations with later configs taking precedence
	Merge(configs ...*entities.Config) *entities.Config

	// ApplyFlags applies CLI flag overrides to a configuration
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config

	// ApplyEnvVars applies DECKGEN_* environment overrides to a configuration
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the effective configuration
type ConfigService interface {
	// LoadConfig applies defaults, global, local, env and flags in that order
	LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error)

	// GetDefaultConfig returns the default configuration
	GetDefaultConfig() *entities.Config

	// ValidateConfig validates a configuration
	ValidateConfig(config *entities.Config) error
}
