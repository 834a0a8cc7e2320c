package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.PushWorkers != 8 || cfg.PushTimeout != 10*time.Second || cfg.PushRetries != 2 {
		t.Errorf("push settings = %d %v %d", cfg.PushWorkers, cfg.PushTimeout, cfg.PushRetries)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !strings.HasSuffix(cfg.SQLitePath, filepath.Join("roompush", "roompush.sqlite")) {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "roompush.yaml")
	if err := os.WriteFile(file, []byte("port: 7000\npush_workers: 3\njwt_secret: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7000 || cfg.PushWorkers != 3 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("environment should win over file, got %q", cfg.JWTSecret)
	}
}

func TestValidate(t *testing.T) {
	good := Config{
		DBDriver:        "postgres",
		DatabaseURL:     "postgres://localhost/roompush",
		JWTSecret:       "s",
		TokenTTL:        time.Hour,
		PublicVAPIDKey:  "pub",
		PrivateVAPIDKey: "priv",
		ContactEmail:    "ops@example.com",
		PushWorkers:     1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"no vapid", func(c *Config) { c.PrivateVAPIDKey = "" }, "VAPID"},
		{"no email", func(c *Config) { c.ContactEmail = "" }, "EMAIL"},
		{"no dsn", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"bad driver", func(c *Config) { c.DBDriver = "mongo" }, "DB_DRIVER"},
		{"no workers", func(c *Config) { c.PushWorkers = 0 }, "PUSH_WORKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := good
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.want)
			}
		})
	}

	sqlite := good
	sqlite.DBDriver, sqlite.DatabaseURL = "sqlite", ""
	if err := sqlite.Validate(); err != nil {
		t.Errorf("sqlite without DATABASE_URL rejected: %v", err)
	}
}
