package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		port    int
		want    string
	}{
		{name: "localhost without port", baseURL: "http://localhost", port: 7000, want: "http://localhost:7000"},
		{name: "localhost with port", baseURL: "http://localhost:7000/", port: 7000, want: "http://localhost:7000"},
		{name: "public host untouched", baseURL: "https://subs.example.com/", port: 7000, want: "https://subs.example.com"},
		{name: "zero port", baseURL: "http://localhost", port: 0, want: "http://localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeBaseURL(tt.baseURL, tt.port); got != tt.want {
				t.Errorf("NormalizeBaseURL(%q, %d) = %q, want %q", tt.baseURL, tt.port, got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	def := 30 * time.Second
	tests := []struct {
		value string
		want  time.Duration
	}{
		{value: "", want: def},
		{value: "15m", want: 15 * time.Minute},
		{value: "not-a-duration", want: def},
		{value: "-5s", want: def},
	}

	for _, tt := range tests {
		if got := ParseDuration("test", tt.value, def); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Expected default port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Debrid.BaseURL != "https://api.alldebrid.com/v4" {
		t.Errorf("Unexpected debrid base URL %q", cfg.Debrid.BaseURL)
	}
	if cfg.Cache.Size != 100 || cfg.Cache.TTL != "30m" {
		t.Errorf("Unexpected subtitle cache defaults: size=%d ttl=%q", cfg.Cache.Size, cfg.Cache.TTL)
	}
	if cfg.LocatorCache.TTL != "15m" {
		t.Errorf("Unexpected locator cache TTL %q", cfg.LocatorCache.TTL)
	}
	if cfg.Subtitle.Format != "srt" {
		t.Errorf("Expected default subtitle format srt, got %q", cfg.Subtitle.Format)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("Expected default user agent, got %q", cfg.UserAgent)
	}
	if cfg.BaseURL != "http://localhost:7000" {
		t.Errorf("Expected base URL with port, got %q", cfg.BaseURL)
	}
}

func TestGetConfig_Initialized(t *testing.T) {
	if GetConfig() == nil {
		t.Fatal("Expected package init to load a configuration")
	}
	if GetUserAgent() == "" {
		t.Fatal("Expected a non-empty user agent")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "server:\n  port: 7200\nbase_url: https://subs.example.com/\ncache:\n  provider: redis\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if cfg.Server.Port != 7200 || cfg.Cache.Provider != "redis" {
		t.Errorf("Unexpected config: port=%d provider=%q", cfg.Server.Port, cfg.Cache.Provider)
	}
	if cfg.BaseURL != "https://subs.example.com" {
		t.Errorf("Expected trimmed base URL, got %q", cfg.BaseURL)
	}
}
