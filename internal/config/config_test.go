package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"pos-admin/internal/core"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(env(map[string]string{"POS_API_URL": "http://localhost:3000/api/"}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://localhost:3000/api" {
		t.Errorf("APIURL = %q, trailing slash not trimmed", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.SearchDebounce != core.DefaultSearchDebounce {
		t.Errorf("SearchDebounce = %s", cfg.SearchDebounce)
	}
	if cfg.NumericPolicy != core.RejectInvalid {
		t.Errorf("NumericPolicy = %s", cfg.NumericPolicy)
	}
	if cfg.ServerPort != "8080" || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("ServerPort/LogLevel = %s/%s", cfg.ServerPort, cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"POS_API_URL":         "https://pos.example.com",
		"POS_HTTP_TIMEOUT":    "3s",
		"POS_SEARCH_DEBOUNCE": "150ms",
		"POS_NUMERIC_POLICY":  "lenient",
		"SERVER_PORT":         "9090",
		"LOG_LEVEL":           "DEBUG",
		"DATABASE_URL":        "postgres://localhost/pos",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPTimeout != 3*time.Second || cfg.SearchDebounce != 150*time.Millisecond {
		t.Errorf("durations = %s/%s", cfg.HTTPTimeout, cfg.SearchDebounce)
	}
	if cfg.NumericPolicy != core.CoerceToZero {
		t.Errorf("NumericPolicy = %s", cfg.NumericPolicy)
	}
	if cfg.ServerPort != "9090" || cfg.LogLevel != slog.LevelDebug || cfg.DatabaseURL == "" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing url", map[string]string{}, "POS_API_URL"},
		{"bad scheme", map[string]string{"POS_API_URL": "localhost:3000"}, "http(s)"},
		{"bad timeout", map[string]string{"POS_API_URL": "http://x", "POS_HTTP_TIMEOUT": "soon"}, "POS_HTTP_TIMEOUT"},
		{"negative debounce", map[string]string{"POS_API_URL": "http://x", "POS_SEARCH_DEBOUNCE": "-1s"}, "negative"},
		{"bad policy", map[string]string{"POS_API_URL": "http://x", "POS_NUMERIC_POLICY": "loose"}, "POS_NUMERIC_POLICY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(env(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
