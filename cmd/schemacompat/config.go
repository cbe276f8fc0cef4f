package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/2bigO/schemacompat"
)

// Config holds the CLI configuration loaded from environment variables.
type Config struct {
	LogLevel string // debug, info, warn, error

	// Target model
	Provider          string
	Model             string
	StructuredOutputs bool
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		LogLevel:          getEnvOrDefault("SCHEMACOMPAT_LOG_LEVEL", "info"),
		Provider:          os.Getenv("SCHEMACOMPAT_PROVIDER"),
		Model:             os.Getenv("SCHEMACOMPAT_MODEL"),
		StructuredOutputs: getEnvBoolOrDefault("SCHEMACOMPAT_STRUCTURED_OUTPUTS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var knownProviders = []schemacompat.Provider{
	schemacompat.ProviderAnthropic,
	schemacompat.ProviderOpenAI,
	schemacompat.ProviderGoogle,
	schemacompat.ProviderVertex,
	schemacompat.ProviderDeepSeek,
	schemacompat.ProviderMeta,
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Provider == "" {
		if c.Model != "" {
			return fmt.Errorf("SCHEMACOMPAT_PROVIDER is required when SCHEMACOMPAT_MODEL is set")
		}
		return nil
	}

	if !c.TargetModel().HasProvider(knownProviders...) {
		names := make([]string, len(knownProviders))
		for i, p := range knownProviders {
			names[i] = p.String()
		}
		return fmt.Errorf("unknown provider: %s (must be one of %s)", c.Provider, strings.Join(names, ", "))
	}
	if c.Model == "" {
		return fmt.Errorf("SCHEMACOMPAT_MODEL is required for provider %s", c.Provider)
	}

	return nil
}

// TargetModel returns the configured model. The zero Model means no
// profile applies and schemas are rendered undegraded.
func (c *Config) TargetModel() schemacompat.Model {
	return schemacompat.Model{
		ID:                        c.Model,
		Provider:                  schemacompat.Provider(c.Provider),
		SupportsStructuredOutputs: c.StructuredOutputs,
	}
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level: %s (must be debug, info, warn, or error)", s)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
