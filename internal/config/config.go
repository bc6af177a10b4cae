package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type CascadeMode string

const (
	// CascadeShallow touches only direct children on folder rename/delete.
	CascadeShallow CascadeMode = "shallow"
	// CascadeDeep walks the whole subtree.
	CascadeDeep CascadeMode = "deep"
)

type Config struct {
	Addr           string
	DatabaseDriver string
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	WebhookSecret  string
	AllowedOrigins []string
	CascadeMode    CascadeMode
	LogLevel       string
	LogFormat      string
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are not an error.
func LoadDotEnv(files ...string) []string {
	var loaded []string
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}

// NewViper returns a viper instance reading the process environment with the
// defaults below. Flags bound to it by the caller take precedence.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_url", "cloud-ide.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "")
	v.SetDefault("webhook_secret", "")
	v.SetDefault("cors_allowed_origins", "http://localhost:5173")
	v.SetDefault("cascade_mode", string(CascadeDeep))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr:           v.GetString("addr"),
		DatabaseDriver: strings.ToLower(v.GetString("database_driver")),
		DatabaseURL:    v.GetString("database_url"),
		JWTSecret:      v.GetString("jwt_secret"),
		JWTIssuer:      v.GetString("jwt_issuer"),
		WebhookSecret:  v.GetString("webhook_secret"),
		AllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		CascadeMode:    CascadeMode(strings.ToLower(v.GetString("cascade_mode"))),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("unknown database driver %q: only 'postgres' and 'sqlite' are supported", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	switch c.CascadeMode {
	case CascadeShallow, CascadeDeep:
	default:
		return errors.Errorf("unknown cascade mode %q: use 'deep' or 'shallow'", c.CascadeMode)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
