package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds process configuration, populated from the environment.
type Env struct {
	AppAddr      string        `env:"APP_ADDR" envDefault:":8080"`
	GinMode      string        `env:"GIN_MODE"`
	DBDSN        string        `env:"DB_DSN"`
	FeedInterval time.Duration `env:"FEED_INTERVAL" envDefault:"5s"`
	CORSOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
