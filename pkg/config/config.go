// Package config loads program settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Transport string

const (
	TransportQUIC      Transport = "quic"
	TransportWebsocket Transport = "websocket"
)

type Config struct {
	Addr      string        `env:"REPLIBIND_ADDR" envDefault:"localhost:4242"`
	TickRate  time.Duration `env:"REPLIBIND_TICK_RATE" envDefault:"16ms"`
	Transport Transport     `env:"REPLIBIND_TRANSPORT" envDefault:"quic"`
	LogLevel  string        `env:"REPLIBIND_LOG_LEVEL" envDefault:"info"`
	// Debug makes the binding core panic on violated invariants.
	Debug bool `env:"REPLIBIND_DEBUG"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config and checks its values.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Transport {
	case TransportQUIC, TransportWebsocket:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %s", c.TickRate)
	}
	return nil
}
