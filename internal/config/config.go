package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envProd = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int
	QuoteSigningKey   string
	QuoteTTL          time.Duration
	TaxRate           float64
	Currency          string
	StoragePath       string
}

// Load reads configuration from the environment, with an optional .env file.
// Missing required variables fail fast.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := &Config{
		IsProduction: getEnv("APP_ENV", "dev") == envProd,
		ProdOrigins:  getEnv("PROD_ORIGINS", ""),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		Currency:     getEnv("CURRENCY", "USD"),
		StoragePath:  getEnv("STORAGE_PATH", "./uploads"),
	}

	var err error
	if cfg.DBDSN, err = requireEnv("DB_DSN"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	// Quotes are rejected without a valid signature, so the key is mandatory.
	if cfg.QuoteSigningKey, err = requireEnv("QUOTE_SIGNING_KEY"); err != nil {
		return nil, err
	}

	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", "15m"); err != nil {
		return nil, err
	}
	if cfg.QuoteTTL, err = getEnvAsDuration("QUOTE_TTL", "10m"); err != nil {
		return nil, err
	}

	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}

	// Sales tax as a fraction, e.g. 0.0825.
	taxStr := getEnv("TAX_RATE", "0")
	cfg.TaxRate, err = strconv.ParseFloat(taxStr, 64)
	if err != nil || cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("invalid TAX_RATE %q: must be a fraction in [0, 1)", taxStr)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}
	return val, nil
}

func getEnvAsDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("env %s is not a valid duration: %w", key, err)
	}
	return d, nil
}
