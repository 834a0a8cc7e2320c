package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port     int    `mapstructure:"port"`
	GinMode  string `mapstructure:"gin_mode"`
	LogLevel string `mapstructure:"log_level"`

	DBDriver    string `mapstructure:"db_driver"` // postgres | sqlite
	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	PublicVAPIDKey  string `mapstructure:"public_vapid_key"`
	PrivateVAPIDKey string `mapstructure:"private_vapid_key"`
	ContactEmail    string `mapstructure:"email"`

	CORSOrigins    []string `mapstructure:"cors_origins"`
	AuthRatePerMin int      `mapstructure:"auth_rate_per_min"`

	PushWorkers int           `mapstructure:"push_workers"`
	PushTimeout time.Duration `mapstructure:"push_timeout"`
	PushRetries int           `mapstructure:"push_retries"`
	PushTTL     int           `mapstructure:"push_ttl"`
}

var keys = []string{
	"port", "gin_mode", "log_level",
	"db_driver", "database_url", "sqlite_path",
	"jwt_secret", "token_ttl",
	"public_vapid_key", "private_vapid_key", "email",
	"cors_origins", "auth_rate_per_min",
	"push_workers", "push_timeout", "push_retries", "push_ttl",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 5000)
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("sqlite_path", filepath.Join(xdg.DataHome, "roompush", "roompush.sqlite"))
	v.SetDefault("token_ttl", "1h")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("auth_rate_per_min", 20)
	v.SetDefault("push_workers", 8)
	v.SetDefault("push_timeout", "10s")
	v.SetDefault("push_retries", 2)
	v.SetDefault("push_ttl", 60)
}

// Load reads .env (if any), an optional config file, then the environment.
// Environment variables use the upper-case key names, e.g. JWT_SECRET.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		log.Info().Str("file", file).Msg("loaded config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	return &cfg, nil
}

// CORS_ORIGINS arrives from the environment as one comma separated string.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.PublicVAPIDKey == "" || c.PrivateVAPIDKey == "" {
		errs = append(errs, errors.New("PUBLIC_VAPID_KEY and PRIVATE_VAPID_KEY are required"))
	}
	if c.ContactEmail == "" {
		errs = append(errs, errors.New("EMAIL is required"))
	}
	if c.PushWorkers < 1 {
		errs = append(errs, errors.New("PUSH_WORKERS must be at least 1"))
	}
	if c.PushRetries < 0 {
		errs = append(errs, errors.New("PUSH_RETRIES cannot be negative"))
	}
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	return errors.Join(errs...)
}
