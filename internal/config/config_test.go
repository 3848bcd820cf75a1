package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
)

func TestParseDefaults(t *testing.T) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.GeminiFileInterval != 4*time.Second {
		t.Errorf("expected 4s gemini interval, got %s", cfg.GeminiFileInterval)
	}
	if cfg.CheckpointInterval != 5*time.Second {
		t.Errorf("expected 5s checkpoint interval, got %s", cfg.CheckpointInterval)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected 30s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.CreditRateOwnKey >= cfg.CreditRatePlatformKey {
		t.Errorf("expected own-key rate below platform rate, got %d >= %d", cfg.CreditRateOwnKey, cfg.CreditRatePlatformKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{MaxAttempts: 3, CreditRatePlatformKey: 2, CreditRateOwnKey: 1}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }, wantErr: true},
		{name: "negative interval", mutate: func(c *Config) { c.GeminiFileInterval = -time.Second }, wantErr: true},
		{name: "own key pricier", mutate: func(c *Config) { c.CreditRateOwnKey = 5 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
