package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/deckgen/internal/adapters/secondary/config"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/llm"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/pptx"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/workspace"
	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
	"github.com/fredcamaral/deckgen/internal/domain/services"
)

// loadConfig resolves the configuration for a command. flags holds only the
// flags the user actually set.
func loadConfig(ctx context.Context, cmd *cobra.Command, flags map[string]interface{}) (*entities.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if cmd.Flags().Changed("verbose") {
		verbose, _ := cmd.Flags().GetBool("verbose")
		flags["verbose"] = verbose
	}

	configPath, _ := cmd.Flags().GetString("config")
	return loadConfigFrom(ctx, configPath, flags)
}

// loadConfigFrom loads configuration from the working directory with an
// optional global file override
func loadConfigFrom(ctx context.Context, globalPath string, flags map[string]interface{}) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	if globalPath != "" {
		loader = config.NewTOMLLoaderWithGlobal(globalPath)
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	svc := services.NewConfigService(loader, config.NewConfigMerger())
	cfg, err := svc.LoadConfig(ctx, workingDir, flags)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the slog logger described by the [logging] section. The
// returned close function releases the log file, if any.
func newLogger(cfg entities.LoggingConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	out := stderr
	closeFn := func() error { return nil }

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 - path comes from user config
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = file
		closeFn = file.Close
	}

	opts := &slog.HandlerOptions{Level: slogLevel(cfg.GetLevel())}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler).With("app", "deckgen"), closeFn, nil
}

func slogLevel(level entities.LogLevel) slog.Level {
	switch level {
	case entities.LogLevelDebug:
		return slog.LevelDebug
	case entities.LogLevelWarn:
		return slog.LevelWarn
	case entities.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newGenerationService wires the provider client, template populator and
// scratch space. events may be nil.
func newGenerationService(cfg *entities.Config, events ports.EventPublisher, logger *slog.Logger) *services.GenerationService {
	completer := llm.NewClient(llm.ConfigFrom(cfg.Provider), logger)
	populator := pptx.NewPopulator(logger)
	scratch := workspace.NewScratchSpace(cfg.Generation.ScratchDir)

	return services.NewGenerationService(
		completer,
		populator,
		scratch,
		events,
		services.GenerationOptionsFrom(cfg),
		logger,
	)
}
