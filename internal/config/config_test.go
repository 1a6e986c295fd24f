package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LANGUAGE", "INTENT_PROVIDER",
		"PREFER_LESS_WALKING", "PREFER_FEWER_TRANSFERS",
		"NEARBY_MOVE_THRESHOLD_M", "CACHE_TTL_SECONDS", "HTTP_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.Language != "ko" {
		t.Errorf("Language = %q, want ko", cfg.Language)
	}
	if cfg.IntentProvider != "gemini" {
		t.Errorf("IntentProvider = %q, want gemini", cfg.IntentProvider)
	}
	if cfg.PreferLessWalking || cfg.PreferFewerTransfers {
		t.Error("routing preferences should default off")
	}
	if cfg.MoveThresholdM != 15 {
		t.Errorf("MoveThresholdM = %v, want 15", cfg.MoveThresholdM)
	}
	if cfg.CacheTTL != 120*time.Second {
		t.Errorf("CacheTTL = %v, want 2m", cfg.CacheTTL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("PREFER_LESS_WALKING", "true")
	t.Setenv("NEARBY_MOVE_THRESHOLD_M", "25.5")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() should be false in production")
	}
	if !cfg.PreferLessWalking {
		t.Error("PreferLessWalking should be true")
	}
	if cfg.MoveThresholdM != 25.5 {
		t.Errorf("MoveThresholdM = %v, want 25.5", cfg.MoveThresholdM)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PREFER_FEWER_TRANSFERS", "yes please")
	t.Setenv("NEARBY_MOVE_THRESHOLD_M", "near")
	t.Setenv("CACHE_TTL_SECONDS", "two minutes")

	cfg := Load()

	if cfg.PreferFewerTransfers {
		t.Error("malformed bool should fall back to default")
	}
	if cfg.MoveThresholdM != 15 {
		t.Errorf("MoveThresholdM = %v, want default 15", cfg.MoveThresholdM)
	}
	if cfg.CacheTTL != 120*time.Second {
		t.Errorf("CacheTTL = %v, want default 2m", cfg.CacheTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid gemini",
			cfg:     Config{GoogleMapsAPIKey: "maps-key", IntentProvider: "gemini", GeminiAPIKey: "g-key"},
			wantErr: false,
		},
		{
			name:    "valid openai",
			cfg:     Config{GoogleMapsAPIKey: "maps-key", IntentProvider: "openai", OpenAIAPIKey: "o-key"},
			wantErr: false,
		},
		{
			name:    "missing maps key",
			cfg:     Config{IntentProvider: "gemini", GeminiAPIKey: "g-key"},
			wantErr: true,
		},
		{
			name:    "gemini without key",
			cfg:     Config{GoogleMapsAPIKey: "maps-key", IntentProvider: "gemini"},
			wantErr: true,
		},
		{
			name:    "openai without key",
			cfg:     Config{GoogleMapsAPIKey: "maps-key", IntentProvider: "openai"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     Config{GoogleMapsAPIKey: "maps-key", IntentProvider: "llama"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
