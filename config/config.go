package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, loaded from the environment at
// startup. Signing secrets and the Redis URL are required; a missing value
// is a startup failure, never a per-request one.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":9000"`

	RedisURL    string `env:"REDIS_URL,required,notEmpty"`
	DatabaseDSN string `env:"DATABASE_DSN,required,notEmpty"`

	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET,required,notEmpty"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@propchain.io"`
	FrontendURL  string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
