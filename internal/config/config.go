package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	JWTSecret  string

	Pricing PricingPolicy
}

// PricingPolicy holds the order pricing constants. Injected into the order
// service so tests can vary shipping cost and tax rate.
type PricingPolicy struct {
	ShippingCost decimal.Decimal
	TaxRate      decimal.Decimal
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		ShippingCost: decimal.NewFromFloat(10.00),
		TaxRate:      decimal.NewFromFloat(0.10),
	}
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Pricing:    DefaultPricingPolicy(),
	}

	if v := os.Getenv("SHIPPING_COST"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			cfg.Pricing.ShippingCost = d
		}
	}
	if v := os.Getenv("TAX_RATE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			cfg.Pricing.TaxRate = d
		}
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}
