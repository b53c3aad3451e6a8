package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

func TestConfigMerger_Merge(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("merge with no configs returns defaults", func(t *testing.T) {
		result := merger.Merge()
		require.NotNil(t, result)
		assert.Equal(t, "localhost", result.Server.Host)
		assert.Equal(t, 8000, result.Server.Port)
		assert.Equal(t, "openai", result.Provider.DefaultProvider)
		assert.Equal(t, "gpt-4o-mini", result.Provider.DefaultModel)
		assert.Equal(t, 0.2, result.Provider.GetTemperature())
		assert.Equal(t, 1200, result.Provider.MaxTokens)
		assert.True(t, result.Provider.GetStructuredOutput())
		assert.Equal(t, "generated_presentation.pptx", result.Generation.OutputFilename)
		assert.NoError(t, result.Validate())
	})

	t.Run("merge multiple configs with precedence", func(t *testing.T) {
		base := GetDefaultConfig()

		temperature := 0.0
		override := &entities.Config{
			Server: entities.ServerConfig{
				Host: "0.0.0.0",
				// Port not specified, should keep base value
			},
			Provider: entities.ProviderConfig{
				DefaultProvider: "gemini",
				Temperature:     &temperature,
				Endpoints:       map[string]string{"openai": "https://api.openai.com/v1/chat/completions"},
			},
			Generation: entities.GenerationConfig{
				OutputFilename: "deck.pptx",
			},
		}

		result := merger.Merge(base, override)
		assert.Equal(t, "0.0.0.0", result.Server.Host)
		assert.Equal(t, 8000, result.Server.Port)
		assert.Equal(t, "gemini", result.Provider.DefaultProvider)
		assert.Equal(t, "gpt-4o-mini", result.Provider.DefaultModel)
		assert.Equal(t, 0.0, result.Provider.GetTemperature())
		assert.True(t, result.Provider.GetStructuredOutput())
		assert.Equal(t, "https://api.openai.com/v1/chat/completions", result.Provider.Endpoints["openai"])
		assert.Equal(t, "deck.pptx", result.Generation.OutputFilename)
	})

	t.Run("explicit false structured output wins", func(t *testing.T) {
		off := false
		result := merger.Merge(GetDefaultConfig(), &entities.Config{
			Provider: entities.ProviderConfig{StructuredOutput: &off},
		})
		assert.False(t, result.Provider.GetStructuredOutput())
	})

	t.Run("unset booleans do not switch off", func(t *testing.T) {
		base := GetDefaultConfig()
		base.Browser.AutoOpen = true
		base.Logging.JSONFormat = true

		result := merger.Merge(base, &entities.Config{})
		assert.True(t, result.Browser.AutoOpen)
		assert.True(t, result.Logging.JSONFormat)
	})

	t.Run("merge handles nil configs", func(t *testing.T) {
		result := merger.Merge(GetDefaultConfig(), nil)
		assert.Equal(t, 8000, result.Server.Port)
	})

	t.Run("result does not alias inputs", func(t *testing.T) {
		base := GetDefaultConfig()
		result := merger.Merge(base)

		result.Server.CORSOrigins[0] = "http://changed.example"
		result.Provider.Endpoints["gemini"] = "http://changed.example"
		*result.Provider.Temperature = 1.5

		assert.Equal(t, "http://localhost:3000", base.Server.CORSOrigins[0])
		assert.NotContains(t, base.Provider.Endpoints, "gemini")
		assert.Equal(t, 0.2, base.Provider.GetTemperature())
	})
}

func TestConfigMerger_ApplyFlags(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("apply CLI flag overrides", func(t *testing.T) {
		flags := map[string]interface{}{
			"port":        9090,
			"host":        "0.0.0.0",
			"open":        true,
			"provider":    "gemini",
			"model":       "gemini-1.5-flash",
			"verbose":     true,
			"scratch-dir": "/tmp/deckgen",
		}

		result := merger.ApplyFlags(GetDefaultConfig(), flags)
		assert.Equal(t, "0.0.0.0", result.Server.Host)
		assert.Equal(t, 9090, result.Server.Port)
		assert.True(t, result.Browser.AutoOpen)
		assert.Equal(t, "gemini", result.Provider.DefaultProvider)
		assert.Equal(t, "gemini-1.5-flash", result.Provider.DefaultModel)
		assert.True(t, result.Logging.Verbose)
		assert.Equal(t, "debug", result.Logging.Level)
		assert.Equal(t, "/tmp/deckgen", result.Generation.ScratchDir)
	})

	t.Run("ignore zero and wrong type values", func(t *testing.T) {
		flags := map[string]interface{}{
			"port":     "not-a-number",
			"host":     "",
			"provider": "",
			"open":     false,
		}

		result := merger.ApplyFlags(GetDefaultConfig(), flags)
		assert.Equal(t, "localhost", result.Server.Host)
		assert.Equal(t, 8000, result.Server.Port)
		assert.Equal(t, "openai", result.Provider.DefaultProvider)
		assert.False(t, result.Browser.AutoOpen)
	})

	t.Run("nil flags", func(t *testing.T) {
		result := merger.ApplyFlags(GetDefaultConfig(), nil)
		assert.Equal(t, GetDefaultConfig(), result)
	})
}

func TestConfigMerger_ApplyEnvVars(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("apply environment variable overrides", func(t *testing.T) {
		t.Setenv("DECKGEN_HOST", "env-host")
		t.Setenv("DECKGEN_PORT", "9000")
		t.Setenv("DECKGEN_PROVIDER", "gemini")
		t.Setenv("DECKGEN_MODEL", "env-model")
		t.Setenv("DECKGEN_TEMPERATURE", "0.7")
		t.Setenv("DECKGEN_STRUCTURED_OUTPUT", "false")
		t.Setenv("DECKGEN_GEMINI_ENDPOINT", "https://gemini.example/v1/chat/completions")
		t.Setenv("DECKGEN_CORS_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("DECKGEN_LOG_JSON", "true")
		t.Setenv("DECKGEN_BROWSER_AUTO_OPEN", "true")

		result := merger.ApplyEnvVars(GetDefaultConfig())
		assert.Equal(t, "env-host", result.Server.Host)
		assert.Equal(t, 9000, result.Server.Port)
		assert.Equal(t, "gemini", result.Provider.DefaultProvider)
		assert.Equal(t, "env-model", result.Provider.DefaultModel)
		assert.Equal(t, 0.7, result.Provider.GetTemperature())
		assert.False(t, result.Provider.GetStructuredOutput())
		assert.Equal(t, "https://gemini.example/v1/chat/completions", result.Provider.Endpoints["gemini"])
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, result.Server.CORSOrigins)
		assert.True(t, result.Logging.JSONFormat)
		assert.True(t, result.Browser.AutoOpen)
	})

	t.Run("invalid values are ignored", func(t *testing.T) {
		t.Setenv("DECKGEN_PORT", "not-a-port")
		t.Setenv("DECKGEN_TEMPERATURE", "warm")
		t.Setenv("DECKGEN_LOG_JSON", "maybe")

		result := merger.ApplyEnvVars(GetDefaultConfig())
		assert.Equal(t, 8000, result.Server.Port)
		assert.Equal(t, 0.2, result.Provider.GetTemperature())
		assert.False(t, result.Logging.JSONFormat)
	})

	t.Run("no environment leaves config unchanged", func(t *testing.T) {
		result := merger.ApplyEnvVars(GetDefaultConfig())
		assert.Equal(t, GetDefaultConfig(), result)
	})
}
