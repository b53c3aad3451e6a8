package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOMLLoader_LoadGlobal(t *testing.T) {
	ctx := context.Background()

	t.Run("creates config on first run", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "nested", "config.toml")
		loader := NewTOMLLoaderWithGlobal(globalPath)

		config, err := loader.LoadGlobal(ctx)
		require.NoError(t, err)
		require.NotNil(t, config)

		info, err := os.Stat(globalPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		assert.Equal(t, "localhost", config.Server.Host)
		assert.Equal(t, 8000, config.Server.Port)
		assert.Equal(t, "openai", config.Provider.DefaultProvider)
		assert.Equal(t, 0.2, config.Provider.GetTemperature())
		assert.True(t, config.Provider.GetStructuredOutput())
		assert.Equal(t, 1200, config.Provider.MaxTokens)
	})

	t.Run("loads existing config", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		content := `
[server]
host = "0.0.0.0"
port = 8080
max_upload_mb = 64

[provider]
default_provider = "gemini"
temperature = 0.0
structured_output = false

[provider.endpoints]
gemini = "https://openrouter.example/v1/chat/completions"

[generation]
output_filename = "deck.pptx"

[browser]
auto_open = true
browser = "firefox"
`
		require.NoError(t, os.WriteFile(globalPath, []byte(content), 0600))

		config, err := NewTOMLLoaderWithGlobal(globalPath).LoadGlobal(ctx)
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", config.Server.Host)
		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, int64(64<<20), config.Server.GetMaxUploadBytes())
		assert.Equal(t, "gemini", config.Provider.DefaultProvider)
		require.NotNil(t, config.Provider.Temperature)
		assert.Equal(t, 0.0, config.Provider.GetTemperature())
		assert.False(t, config.Provider.GetStructuredOutput())
		assert.Equal(t, "https://openrouter.example/v1/chat/completions", config.Provider.Endpoints["gemini"])
		assert.Equal(t, "deck.pptx", config.Generation.OutputFilename)
		assert.True(t, config.Browser.AutoOpen)
		assert.Equal(t, "firefox", config.Browser.Browser)
	})

	t.Run("fails with invalid TOML", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[server\nhost = \"localhost\"\n"), 0600))

		_, err := NewTOMLLoaderWithGlobal(globalPath).LoadGlobal(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing TOML")
	})

	t.Run("fails with invalid config values", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[provider]\ntemperature = 3.5\n"), 0600))

		_, err := NewTOMLLoaderWithGlobal(globalPath).LoadGlobal(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
		assert.Contains(t, err.Error(), "temperature")
	})

	t.Run("fails with unknown keys", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[server]\nprot = 8080\n\n[theme]\nname = \"dark\"\n"), 0600))

		_, err := NewTOMLLoaderWithGlobal(globalPath).LoadGlobal(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown keys")
		assert.Contains(t, err.Error(), "server.prot")
	})
}

func TestTOMLLoader_LoadLocal(t *testing.T) {
	ctx := context.Background()
	loader := NewTOMLLoaderWithGlobal(filepath.Join(t.TempDir(), "config.toml"))

	t.Run("loads existing local config", func(t *testing.T) {
		dir := t.TempDir()
		content := "[generation]\noutput_filename = \"local.pptx\"\n\n[logging]\nlevel = \"debug\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "deckgen.toml"), []byte(content), 0600))

		config, err := loader.LoadLocal(ctx, dir)
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "local.pptx", config.Generation.OutputFilename)
		assert.Equal(t, "debug", config.Logging.Level)
		assert.Nil(t, config.Provider.StructuredOutput)
	})

	t.Run("returns nil for non-existent local config", func(t *testing.T) {
		config, err := loader.LoadLocal(ctx, t.TempDir())
		assert.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("fails with invalid local config", func(t *testing.T) {
		dir := t.TempDir()
		content := "[generation]\noutput_filename = \"deck.key\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "deckgen.toml"), []byte(content), 0600))

		_, err := loader.LoadLocal(ctx, dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".pptx")
	})
}

func TestTOMLLoader_CreateDefaults(t *testing.T) {
	t.Run("written defaults load back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		loader := NewTOMLLoaderWithGlobal(path)

		require.NoError(t, loader.CreateDefaults(context.Background(), path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "[provider]")
		assert.Contains(t, string(data), "structured_output = true")

		config, err := loader.loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, GetDefaultConfig().Provider.GetTemperature(), config.Provider.GetTemperature())
		assert.Equal(t, GetDefaultConfig().Server.Port, config.Server.Port)
	})

	t.Run("fails when the directory cannot be created", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

		err := NewTOMLLoader().CreateDefaults(context.Background(), filepath.Join(blocker, "config.toml"))
		assert.Error(t, err)
	})
}

func TestTOMLLoader_GetPaths(t *testing.T) {
	loader := NewTOMLLoaderWithGlobal("/etc/deckgen/config.toml")

	assert.Equal(t, "/etc/deckgen/config.toml", loader.GetGlobalPath())
	assert.Equal(t, filepath.Join("/work", "deckgen.toml"), loader.GetLocalPath("/work"))
}

func TestNewTOMLLoader(t *testing.T) {
	loader := NewTOMLLoader()

	assert.Contains(t, loader.GetGlobalPath(), filepath.Join(".config", "deckgen", "config.toml"))
	assert.Equal(t, "deckgen.toml", loader.localName)
}
