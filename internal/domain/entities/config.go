package entities

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Provider   ProviderConfig   `toml:"provider"`
	Generation GenerationConfig `toml:"generation"`
	Browser    BrowserConfig    `toml:"browser"`
	Logging    LoggingConfig    `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Provider.Validate(); err != nil {
		return fmt.Errorf("provider config: %w", err)
	}

	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	MaxUploadMB     int      `toml:"max_upload_mb"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}

	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}

	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	if s.MaxUploadMB < 0 {
		return errors.New("max upload size must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if len(origin) < 7 || (!strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://")) {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration. Generation waits on
// the provider, so the default is longer than the provider timeout.
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 180 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetMaxUploadBytes returns the multipart size limit in bytes
func (s ServerConfig) GetMaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 32 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8000",
			"http://127.0.0.1:8000",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// ProviderConfig contains chat-completion provider settings
type ProviderConfig struct {
	DefaultProvider  string            `toml:"default_provider"`
	DefaultModel     string            `toml:"default_model"`
	Timeout          int               `toml:"timeout"`
	Temperature      *float64          `toml:"temperature"`
	MaxTokens        int               `toml:"max_tokens"`
	StructuredOutput *bool             `toml:"structured_output"`
	UserAgent        string            `toml:"user_agent"`
	Endpoints        map[string]string `toml:"endpoints"`
}

// Validate validates provider configuration
func (p ProviderConfig) Validate() error {
	if p.Timeout < 0 {
		return errors.New("provider timeout must be non-negative")
	}

	if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 2) {
		return errors.New("temperature must be between 0 and 2")
	}

	if p.MaxTokens < 0 {
		return errors.New("max tokens must be non-negative")
	}

	for name, endpoint := range p.Endpoints {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			return fmt.Errorf("endpoint for %s must start with http:// or https://: %s", name, endpoint)
		}
	}

	return nil
}

// GetTimeout returns the outbound request timeout
func (p ProviderConfig) GetTimeout() time.Duration {
	if p.Timeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(p.Timeout) * time.Second
}

// GetTemperature returns the sampling temperature. Unset means 0.2; an
// explicit 0 is kept.
func (p ProviderConfig) GetTemperature() float64 {
	if p.Temperature == nil {
		return 0.2
	}
	return *p.Temperature
}

// GetStructuredOutput reports whether requests carry the outline schema.
// Unset means true.
func (p ProviderConfig) GetStructuredOutput() bool {
	if p.StructuredOutput == nil {
		return true
	}
	return *p.StructuredOutput
}

// GetMaxTokens returns the completion token cap
func (p ProviderConfig) GetMaxTokens() int {
	if p.MaxTokens <= 0 {
		return 1200
	}
	return p.MaxTokens
}

// GetDefaultProvider returns the provider used when a request names none
func (p ProviderConfig) GetDefaultProvider() string {
	if p.DefaultProvider == "" {
		return DefaultProvider
	}
	return p.DefaultProvider
}

// GetDefaultModel returns the model used when a request names none
func (p ProviderConfig) GetDefaultModel() string {
	if p.DefaultModel == "" {
		return DefaultModel
	}
	return p.DefaultModel
}

// GenerationConfig contains deck generation settings
type GenerationConfig struct {
	OutputFilename string `toml:"output_filename"`
	ScratchDir     string `toml:"scratch_dir"`
}

// Validate validates generation configuration
func (g GenerationConfig) Validate() error {
	if g.OutputFilename != "" && !strings.EqualFold(filepath.Ext(g.OutputFilename), ".pptx") {
		return fmt.Errorf("output filename must end in .pptx: %s", g.OutputFilename)
	}

	if g.ScratchDir != "" && !filepath.IsAbs(g.ScratchDir) {
		return errors.New("scratch directory must be an absolute path")
	}

	return nil
}

// GetOutputFilename returns the download name of generated decks
func (g GenerationConfig) GetOutputFilename() string {
	if g.OutputFilename == "" {
		return DefaultOutputFilename
	}
	return g.OutputFilename
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	AutoOpen bool   `toml:"auto_open"`
	Browser  string `toml:"browser"`
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Enable verbose logging
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log to file (optional)
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
