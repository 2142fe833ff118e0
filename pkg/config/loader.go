// Package config reads configuration from the environment, the only config
// source the storefront deploys with.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from environment variables declared with `env` tags,
// applying any `envDefault` values for variables that are unset. cfg must be
// a pointer to a struct.
//
//	type Config struct {
//	    Port    int           `env:"HTTP_PORT" envDefault:"8080"`
//	    CartTTL time.Duration `env:"CART_TTL" envDefault:"168h"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
