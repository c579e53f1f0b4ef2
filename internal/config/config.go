package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"pos-admin/internal/core"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	defaultServerPort  = "8080"
)

// Config is the runtime configuration read from the environment (and .env, loaded by main).
type Config struct {
	APIURL         string
	HTTPTimeout    time.Duration
	SearchDebounce time.Duration
	NumericPolicy  core.NumericPolicy

	// DatabaseURL enables held carts when set.
	DatabaseURL string
	OpenAIKey   string

	ServerPort     string
	AllowedOrigins string
	JWTSecret      string
	LogLevel       slog.Level
}

// Load reads the configuration. POS_API_URL is the only required variable.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		APIURL:         strings.TrimRight(strings.TrimSpace(getenv("POS_API_URL")), "/"),
		DatabaseURL:    getenv("DATABASE_URL"),
		OpenAIKey:      getenv("OPENAI_API_KEY"),
		ServerPort:     getenv("SERVER_PORT"),
		AllowedOrigins: getenv("ALLOWED_ORIGINS"),
		JWTSecret:      getenv("JWT_SECRET"),
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("POS_API_URL environment variable not set")
	}
	if !strings.HasPrefix(cfg.APIURL, "http://") && !strings.HasPrefix(cfg.APIURL, "https://") {
		return nil, fmt.Errorf("POS_API_URL must be an http(s) URL, got %q", cfg.APIURL)
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultServerPort
	}

	var err error
	if cfg.HTTPTimeout, err = duration(getenv, "POS_HTTP_TIMEOUT", defaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = duration(getenv, "POS_SEARCH_DEBOUNCE", core.DefaultSearchDebounce); err != nil {
		return nil, err
	}
	if cfg.NumericPolicy, err = core.ParseNumericPolicy(getenv("POS_NUMERIC_POLICY")); err != nil {
		return nil, fmt.Errorf("POS_NUMERIC_POLICY: %w", err)
	}

	switch strings.ToLower(getenv("LOG_LEVEL")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}
	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

// NewLogger builds the process logger, a text handler on stderr so command
// output on stdout stays machine-readable.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}
