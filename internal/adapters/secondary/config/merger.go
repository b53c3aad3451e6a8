package config

import (
	"os"
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	if result == nil {
		result = GetDefaultConfig()
	}

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if open, ok := flags["open"].(bool); ok && open {
		result.Browser.AutoOpen = true
	}

	if provider, ok := flags["provider"].(string); ok && provider != "" {
		result.Provider.DefaultProvider = provider
	}

	if model, ok := flags["model"].(string); ok && model != "" {
		result.Provider.DefaultModel = model
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	if scratch, ok := flags["scratch-dir"].(string); ok && scratch != "" {
		result.Generation.ScratchDir = scratch
	}

	return result
}

// ApplyEnvVars applies DECKGEN_* environment variable overrides
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Server
	result.Server.Host = getEnvOrDefault("DECKGEN_HOST", result.Server.Host)
	if port := getEnvIntOrDefault("DECKGEN_PORT", 0); port > 0 {
		result.Server.Port = port
	}
	result.Server.ReadTimeout = getEnvIntOrDefault("DECKGEN_READ_TIMEOUT", result.Server.ReadTimeout)
	result.Server.WriteTimeout = getEnvIntOrDefault("DECKGEN_WRITE_TIMEOUT", result.Server.WriteTimeout)
	result.Server.ShutdownTimeout = getEnvIntOrDefault("DECKGEN_SHUTDOWN_TIMEOUT", result.Server.ShutdownTimeout)
	result.Server.MaxUploadMB = getEnvIntOrDefault("DECKGEN_MAX_UPLOAD_MB", result.Server.MaxUploadMB)
	result.Server.Environment = getEnvOrDefault("DECKGEN_ENVIRONMENT", result.Server.Environment)
	result.Server.CORSOrigins = getEnvSliceOrDefault("DECKGEN_CORS_ORIGINS", result.Server.CORSOrigins)

	// Provider
	result.Provider.DefaultProvider = getEnvOrDefault("DECKGEN_PROVIDER", result.Provider.DefaultProvider)
	result.Provider.DefaultModel = getEnvOrDefault("DECKGEN_MODEL", result.Provider.DefaultModel)
	result.Provider.Timeout = getEnvIntOrDefault("DECKGEN_PROVIDER_TIMEOUT", result.Provider.Timeout)
	result.Provider.MaxTokens = getEnvIntOrDefault("DECKGEN_MAX_TOKENS", result.Provider.MaxTokens)
	result.Provider.UserAgent = getEnvOrDefault("DECKGEN_USER_AGENT", result.Provider.UserAgent)
	if temperature, ok := getEnvFloat("DECKGEN_TEMPERATURE"); ok {
		result.Provider.Temperature = floatPtr(temperature)
	}
	if structured, ok := getEnvBool("DECKGEN_STRUCTURED_OUTPUT"); ok {
		result.Provider.StructuredOutput = boolPtr(structured)
	}
	for _, name := range []string{"openai", "gemini"} {
		key := "DECKGEN_" + strings.ToUpper(name) + "_ENDPOINT"
		if endpoint := os.Getenv(key); endpoint != "" {
			if result.Provider.Endpoints == nil {
				result.Provider.Endpoints = make(map[string]string)
			}
			result.Provider.Endpoints[name] = endpoint
		}
	}

	// Generation
	result.Generation.OutputFilename = getEnvOrDefault("DECKGEN_OUTPUT_FILENAME", result.Generation.OutputFilename)
	result.Generation.ScratchDir = getEnvOrDefault("DECKGEN_SCRATCH_DIR", result.Generation.ScratchDir)

	// Browser
	if autoOpen, ok := getEnvBool("DECKGEN_BROWSER_AUTO_OPEN"); ok {
		result.Browser.AutoOpen = autoOpen
	}
	result.Browser.Browser = getEnvOrDefault("DECKGEN_BROWSER", result.Browser.Browser)

	// Logging
	result.Logging.Level = getEnvOrDefault("DECKGEN_LOG_LEVEL", result.Logging.Level)
	if verbose, ok := getEnvBool("DECKGEN_LOG_VERBOSE"); ok {
		result.Logging.Verbose = verbose
	}
	if jsonFormat, ok := getEnvBool("DECKGEN_LOG_JSON"); ok {
		result.Logging.JSONFormat = jsonFormat
	}
	result.Logging.File = getEnvOrDefault("DECKGEN_LOG_FILE", result.Logging.File)

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.MaxUploadMB != 0 {
		target.Server.MaxUploadMB = source.Server.MaxUploadMB
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = copyStrings(source.Server.CORSOrigins)
	}

	// Provider config
	if source.Provider.DefaultProvider != "" {
		target.Provider.DefaultProvider = source.Provider.DefaultProvider
	}
	if source.Provider.DefaultModel != "" {
		target.Provider.DefaultModel = source.Provider.DefaultModel
	}
	if source.Provider.Timeout != 0 {
		target.Provider.Timeout = source.Provider.Timeout
	}
	if source.Provider.Temperature != nil {
		target.Provider.Temperature = floatPtr(*source.Provider.Temperature)
	}
	if source.Provider.MaxTokens != 0 {
		target.Provider.MaxTokens = source.Provider.MaxTokens
	}
	if source.Provider.StructuredOutput != nil {
		target.Provider.StructuredOutput = boolPtr(*source.Provider.StructuredOutput)
	}
	if source.Provider.UserAgent != "" {
		target.Provider.UserAgent = source.Provider.UserAgent
	}
	if len(source.Provider.Endpoints) > 0 {
		if target.Provider.Endpoints == nil {
			target.Provider.Endpoints = make(map[string]string)
		}
		for name, endpoint := range source.Provider.Endpoints {
			target.Provider.Endpoints[name] = endpoint
		}
	}

	// Generation config
	if source.Generation.OutputFilename != "" {
		target.Generation.OutputFilename = source.Generation.OutputFilename
	}
	if source.Generation.ScratchDir != "" {
		target.Generation.ScratchDir = source.Generation.ScratchDir
	}

	// Browser config
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	// TOML can't distinguish false from unset, so booleans only ever switch on
	// here; env vars and flags can still switch them off
	if source.Browser.AutoOpen {
		target.Browser.AutoOpen = true
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	dst.Server.CORSOrigins = copyStrings(src.Server.CORSOrigins)

	if src.Provider.Temperature != nil {
		dst.Provider.Temperature = floatPtr(*src.Provider.Temperature)
	}
	if src.Provider.StructuredOutput != nil {
		dst.Provider.StructuredOutput = boolPtr(*src.Provider.StructuredOutput)
	}
	if src.Provider.Endpoints != nil {
		dst.Provider.Endpoints = make(map[string]string, len(src.Provider.Endpoints))
		for k, v := range src.Provider.Endpoints {
			dst.Provider.Endpoints[k] = v
		}
	}

	return &dst
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
