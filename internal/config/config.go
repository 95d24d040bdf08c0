// Package config содержит логику чтения конфигурации магазина.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса.
// Пороговые значения и тарифы доставки задаются в пайсах:
// они являются бизнес-политикой, а не константами кода.
type Config struct {
	RunAddress       string `env:"RUN_ADDRESS"`
	DatabaseURI      string `env:"DATABASE_URI"`
	AuthSecret       string `env:"AUTH_SECRET"`
	GatewayAddress   string `env:"GATEWAY_ADDRESS"`
	GatewayKeyID     string `env:"GATEWAY_KEY_ID"`
	GatewayKeySecret string `env:"GATEWAY_KEY_SECRET"`
	WhatsAppNumber   string `env:"WHATSAPP_NUMBER"`

	ShippingLowThreshold  int64 `env:"SHIPPING_LOW_THRESHOLD" envDefault:"70000"`
	ShippingHighThreshold int64 `env:"SHIPPING_HIGH_THRESHOLD" envDefault:"120000"`
	ShippingBaseFee       int64 `env:"SHIPPING_BASE_FEE" envDefault:"5000"`
	ShippingReducedFee    int64 `env:"SHIPPING_REDUCED_FEE" envDefault:"3000"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envAuthSecret := cfg.AuthSecret
	envGatewayAddress := cfg.GatewayAddress
	envWhatsAppNumber := cfg.WhatsAppNumber

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret key for auth cookie signing")
	flag.StringVar(&cfg.GatewayAddress, "g", "", "payment gateway address")
	flag.StringVar(&cfg.WhatsAppNumber, "w", "", "WhatsApp business number")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envGatewayAddress != "" {
		cfg.GatewayAddress = envGatewayAddress
	}
	if envWhatsAppNumber != "" {
		cfg.WhatsAppNumber = envWhatsAppNumber
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if cfg.ShippingLowThreshold > cfg.ShippingHighThreshold {
		return nil, fmt.Errorf("shipping thresholds misordered: low %d > high %d",
			cfg.ShippingLowThreshold, cfg.ShippingHighThreshold)
	}

	return cfg, nil
}
