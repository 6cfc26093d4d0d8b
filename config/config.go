package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/irsalhamdi/storefront/validate"
)

// ErrConfigurationMissing is returned when a required setting is absent.
var ErrConfigurationMissing = errors.New("required configuration missing")

type Config struct {
	Web     Web
	Catalog Catalog
	Listing Listing
	Session Session
	Cors    Cors
	Log     Log
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	RateBurst       int           `conf:"default:20" validate:"gte=1"`
	RateInterval    time.Duration `conf:"default:100ms" validate:"gt=0"`
	RateExpiry      time.Duration `conf:"default:10m" validate:"gt=0"`
}

type Catalog struct {
	BaseURL string        `conf:"help:base url of the product catalog service" validate:"omitempty,url"`
	Timeout time.Duration `conf:"default:10s" validate:"gt=0"`
}

type Listing struct {
	SearchDebounce time.Duration `conf:"default:300ms" validate:"gte=0"`
}

type Session struct {
	Lifetime      time.Duration `conf:"default:24h" validate:"gt=0"`
	SweepInterval time.Duration `conf:"default:1m" validate:"gt=0"`
}

type Cors struct {
	Origin string
}

type Log struct {
	Level string `conf:"default:info" validate:"oneof=trace debug info warn warning error fatal panic"`
}

// Check verifies the parsed configuration. A missing catalog base url
// wraps ErrConfigurationMissing.
func (c Config) Check() error {
	if strings.TrimSpace(c.Catalog.BaseURL) == "" {
		return fmt.Errorf("catalog base url: %w", ErrConfigurationMissing)
	}

	if err := validate.Check(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
