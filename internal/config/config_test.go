package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	csv := filepath.Join(dir, "col.csv")
	if err := os.WriteFile(csv, []byte("State,Index\nTexas,93.0\n"), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	t.Setenv("PORT", "5000")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "nospendy.db"))
	t.Setenv("JWT_SECRET", "a-long-enough-test-secret")
	t.Setenv("COST_OF_LIVING_CSV", csv)
}

func TestLoadDefaults(t *testing.T) {
	validEnv(t)
	t.Setenv("AMQP_URL", "")

	cfg := Load()
	if cfg.Port != "5000" {
		t.Errorf("Port = %s, want 5000", cfg.Port)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want 168h", cfg.TokenTTL)
	}
	if cfg.LeaderboardLimit != 10 {
		t.Errorf("LeaderboardLimit = %d, want 10", cfg.LeaderboardLimit)
	}
	if cfg.IncludeZeroSpend {
		t.Error("IncludeZeroSpend should default to false")
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.RetentionDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("LEADERBOARD_LIMIT", "25")
	t.Setenv("LEADERBOARD_INCLUDE_ZERO_SPEND", "true")
	t.Setenv("TOKEN_TTL", "24h")

	cfg := Load()
	if cfg.LeaderboardLimit != 25 {
		t.Errorf("LeaderboardLimit = %d, want 25", cfg.LeaderboardLimit)
	}
	if !cfg.IncludeZeroSpend {
		t.Error("IncludeZeroSpend should be true")
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
}

func TestValidate(t *testing.T) {
	validEnv(t)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET must be set"},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, "at least 16"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "invalid AMQP URL scheme"},
		{"empty amqp queue", func(c *Config) { c.AMQPQueue = "" }, "queue name cannot be empty"},
		{"missing csv", func(c *Config) { c.CostOfLivingCSV = "/nonexistent/col.csv" }, "does not exist"},
		{"zero leaderboard limit", func(c *Config) { c.LeaderboardLimit = 0 }, "leaderboard limit"},
		{"tiny reset interval", func(c *Config) { c.ResetCheckInterval = time.Second }, "reset check interval"},
		{"zero retention", func(c *Config) { c.RetentionDays = 0 }, "retention days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
