// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret (required in production).
	JWTSecret string

	// Racing-data provider.
	ProviderBaseURL  string
	ProviderUsername string
	ProviderPassword string
	ProviderTimeout  time.Duration

	// Import pipeline pacing. The delays keep request volume under the
	// provider's rate limit; zero values disable pacing entirely.
	ImportRaceBatch   int
	ImportRunnerBatch int
	ImportRunnerDelay time.Duration
	ImportHorseDelay  time.Duration
	ImportBatchDelay  time.Duration

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "raceday")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "raceday")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "raceday.app,www.raceday.app")
	v.SetDefault("DEBUG", false)

	v.SetDefault("PROVIDER_BASE_URL", "https://api.theracingapi.com")
	v.SetDefault("PROVIDER_TIMEOUT", "30s")

	v.SetDefault("IMPORT_RACE_BATCH", 2)
	v.SetDefault("IMPORT_RUNNER_BATCH", 2)
	v.SetDefault("IMPORT_RUNNER_DELAY", "500ms")
	v.SetDefault("IMPORT_HORSE_DELAY", "1s")
	v.SetDefault("IMPORT_BATCH_DELAY", "2s")

	cfg := &Config{
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBUser:      v.GetString("DB_USER"),
		DBPass:      v.GetString("DB_PASS"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBName:      v.GetString("DB_NAME"),
		DBSSLMode:   v.GetString("DB_SSLMODE"),
		JWTSecret:   v.GetString("JWT_SECRET"),

		ProviderBaseURL:  v.GetString("PROVIDER_BASE_URL"),
		ProviderUsername: v.GetString("PROVIDER_USERNAME"),
		ProviderPassword: v.GetString("PROVIDER_PASSWORD"),
		ProviderTimeout:  v.GetDuration("PROVIDER_TIMEOUT"),

		ImportRaceBatch:   v.GetInt("IMPORT_RACE_BATCH"),
		ImportRunnerBatch: v.GetInt("IMPORT_RUNNER_BATCH"),
		ImportRunnerDelay: v.GetDuration("IMPORT_RUNNER_DELAY"),
		ImportHorseDelay:  v.GetDuration("IMPORT_HORSE_DELAY"),
		ImportBatchDelay:  v.GetDuration("IMPORT_BATCH_DELAY"),

		Debug:      v.GetBool("DEBUG"),
		Port:       v.GetString("PORT"),
		TLSDomains: splitTrimmed(v.GetString("TLS_DOMAINS")),
	}

	cfg.validate()
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func (c *Config) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET must be set")
	}
	if c.ProviderUsername == "" || c.ProviderPassword == "" {
		log.Fatal("config: PROVIDER_USERNAME and PROVIDER_PASSWORD must be set")
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
