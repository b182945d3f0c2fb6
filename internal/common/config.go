package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment" validate:"omitempty,oneof=development production dev prod test"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	PokeAPI     PokeAPIConfig  `toml:"pokeapi"`
	Storage     StorageConfig  `toml:"storage"`
	Cache       CacheConfig    `toml:"cache"`
	Prefetch    PrefetchConfig `toml:"prefetch"`
	Pages       PagesConfig    `toml:"pages"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host"`
}

// PokeAPIConfig configures the upstream Pokémon data source
type PokeAPIConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	Timeout   string `toml:"timeout" validate:"required"`    // e.g. "10s"
	RateLimit int    `toml:"rate_limit" validate:"min=1"`    // Requests per second
	UserAgent string `toml:"user_agent" validate:"required"` // Sent on every upstream request
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
	InMemory       bool   `toml:"in_memory"`                // Keep the cache in memory only (tests, render command)
}

// CacheConfig controls reuse of previously fetched Pokémon
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	TTL     string `toml:"ttl"` // e.g. "24h"
}

// PrefetchConfig controls the scheduled cache warm-up
type PrefetchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Schedule string   `toml:"schedule"` // Cron format with seconds field
	Names    []string `toml:"names"`
}

// PagesConfig controls server-rendered pages
type PagesConfig struct {
	DefaultPokemon string `toml:"default_pokemon" validate:"required"`
	ClientDebug    bool   `toml:"client_debug"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		PokeAPI: PokeAPIConfig{
			BaseURL:   "https://pokeapi.co/api/v2",
			Timeout:   "10s",
			RateLimit: 5,
			UserAgent: "pokedex/" + Version,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/pokedex",
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "24h",
		},
		Prefetch: PrefetchConfig{
			Enabled:  false,
			Schedule: "0 0 */6 * * *", // Every 6 hours
			Names:    []string{"bulbasaur", "charmander", "squirtle", "pikachu"},
		},
		Pages: PagesConfig{
			DefaultPokemon: "bulbasaur",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI overrides are applied separately.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("POKEDEX_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("POKEDEX_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("POKEDEX_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Upstream configuration
	if baseURL := os.Getenv("POKEDEX_POKEAPI_BASE_URL"); baseURL != "" {
		config.PokeAPI.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout := os.Getenv("POKEDEX_POKEAPI_TIMEOUT"); timeout != "" {
		config.PokeAPI.Timeout = timeout
	}
	if rateLimit := os.Getenv("POKEDEX_POKEAPI_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.PokeAPI.RateLimit = rl
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("POKEDEX_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Cache configuration
	if enabled := os.Getenv("POKEDEX_CACHE_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Cache.Enabled = e
		}
	}
	if ttl := os.Getenv("POKEDEX_CACHE_TTL"); ttl != "" {
		config.Cache.TTL = ttl
	}

	// Prefetch configuration
	if enabled := os.Getenv("POKEDEX_PREFETCH_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Prefetch.Enabled = e
		}
	}
	if names := os.Getenv("POKEDEX_PREFETCH_NAMES"); names != "" {
		config.Prefetch.Names = splitList(names)
	}

	// Pages configuration
	if name := os.Getenv("POKEDEX_DEFAULT_POKEMON"); name != "" {
		config.Pages.DefaultPokemon = name
	}

	// Logging configuration
	if level := os.Getenv("POKEDEX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("POKEDEX_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks struct constraints and the fields that need parsing
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := time.ParseDuration(c.PokeAPI.Timeout); err != nil {
		return fmt.Errorf("invalid configuration: pokeapi.timeout %q: %w", c.PokeAPI.Timeout, err)
	}

	if c.Cache.Enabled {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid configuration: cache.ttl %q: %w", c.Cache.TTL, err)
		}
	}

	if c.Prefetch.Enabled {
		if err := ValidatePrefetchSchedule(c.Prefetch.Schedule); err != nil {
			return fmt.Errorf("invalid configuration: prefetch.schedule: %w", err)
		}
	}

	return nil
}

// ValidatePrefetchSchedule validates a cron expression with a leading seconds field
func ValidatePrefetchSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// UpstreamTimeout returns the parsed upstream timeout, falling back to 10s
func (c *Config) UpstreamTimeout() time.Duration {
	d, err := time.ParseDuration(c.PokeAPI.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CacheTTL returns the parsed cache TTL. Zero means entries are never fresh.
func (c *Config) CacheTTL() time.Duration {
	if !c.Cache.Enabled {
		return 0
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0
	}
	return d
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// splitList splits a comma-separated value, dropping empty entries
func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
