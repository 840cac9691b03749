package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is passed explicitly to every constructor — nothing below config reads
// the process environment on its own.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// RedisURL enables the advisory run lock for detect. Empty = no lock.
	RedisURL string

	ReportLimit         int
	DetectIntervalHours int
	HTTPAddr            string
	CSVOutputPath       string

	MaxConcurrency  int
	RateLimitMs     int
	MaxRetries      int
	PagesToScrape   int
	ListingsPerPage int

	SearchURL string
	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", ""),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_intel"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", ""),

		ReportLimit:         getEnvInt("REPORT_LIMIT", 100),
		DetectIntervalHours: getEnvInt("DETECT_INTERVAL_HOURS", 6),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		CSVOutputPath:       getEnv("CSV_OUTPUT_PATH", "./output/owners.csv"),

		MaxConcurrency:  getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		PagesToScrape:   getEnvInt("PAGES_TO_SCRAPE", 2),
		ListingsPerPage: getEnvInt("LISTINGS_PER_PAGE", 18),

		SearchURL: getEnv("AIRBNB_SEARCH_URL", "https://www.airbnb.com/s/Dakar--Senegal/homes"),
		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// Validate checks that the store credentials are present. A missing
// credential is a fatal startup error, not a retryable condition.
func (c *Config) Validate() error {
	if c.PostgresUser == "" {
		return fmt.Errorf("config: POSTGRES_USER is required")
	}
	if c.PostgresPassword == "" {
		return fmt.Errorf("config: POSTGRES_PASSWORD is required")
	}
	if c.PostgresDB == "" {
		return fmt.Errorf("config: POSTGRES_DB is required")
	}
	if c.ReportLimit < 1 {
		return fmt.Errorf("config: REPORT_LIMIT must be positive, got %d", c.ReportLimit)
	}
	if c.DetectIntervalHours < 1 {
		return fmt.Errorf("config: DETECT_INTERVAL_HOURS must be positive, got %d", c.DetectIntervalHours)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
