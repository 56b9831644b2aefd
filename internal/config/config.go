package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Port          string
	StoreDriver   string
	DatabaseURL   string
	ProfileSecret string
	MockLatency   time.Duration
	CacheSweep    string
	CacheSize     int
	CORSOrigins   []string
	MapTileURL    string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads the optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getenv("PORT", "8080"),
		StoreDriver:       strings.ToLower(getenv("STORE_DRIVER", DriverMemory)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ProfileSecret:     os.Getenv("PROFILE_SECRET"),
		CacheSweep:        getenv("CACHE_SWEEP", "@every 5m"),
		CORSOrigins:       splitList(getenv("CORS_ORIGINS", "*")),
		MapTileURL:        os.Getenv("MAP_TILE_URL"),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:  getenv("SENDGRID_FROM_NAME", "ParkNest"),
	}

	latency, err := time.ParseDuration(getenv("MOCK_LATENCY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_LATENCY: %w", err)
	}
	if latency < 0 {
		return nil, fmt.Errorf("MOCK_LATENCY must not be negative")
	}
	cfg.MockLatency = latency

	size, err := strconv.Atoi(getenv("CACHE_SIZE", "4096"))
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("CACHE_SIZE must be a positive integer")
	}
	cfg.CacheSize = size

	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL not set for store driver %q", cfg.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
