package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
	Feeds     FeedsConfig
	Rate      RateConfig
	Repricing RepricingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Worksheet       string
}

// MongoDBConfig holds settings for the decision audit store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// FeedConfig holds the endpoint of one marketplace offer feed.
type FeedConfig struct {
	BaseURL string
	APIKey  string
}

// FeedsConfig maps every pricing source to its feed endpoint. The primary
// marketplace feed is required; competitor feeds may be left empty when
// the corresponding source is never enabled on any row.
type FeedsConfig struct {
	Primary    FeedConfig
	G2G        FeedConfig
	FUN        FeedConfig
	BIJ        FeedConfig
	Timeout    time.Duration
	RetryCount int
}

// RateConfig points at the spreadsheet cell carrying the CNY conversion
// rate.
type RateConfig struct {
	SpreadsheetID string
	Sheet         string
	Cell          string
}

// RepricingConfig holds cycle scheduling and row retry settings.
type RepricingConfig struct {
	CronSchedule  string
	RetryAttempts int
	RetryBackoff  time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("PRODUCTS_SPREADSHEET_ID"),
			Worksheet:       getenvWithDefault("PRODUCTS_WORKSHEET", "Sheet1"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "repricer"),
		},
		Feeds: FeedsConfig{
			Primary: FeedConfig{
				BaseURL: os.Getenv("PA_FEED_URL"),
				APIKey:  os.Getenv("PA_FEED_API_KEY"),
			},
			G2G: FeedConfig{
				BaseURL: os.Getenv("G2G_FEED_URL"),
				APIKey:  os.Getenv("G2G_FEED_API_KEY"),
			},
			FUN: FeedConfig{
				BaseURL: os.Getenv("FUN_FEED_URL"),
				APIKey:  os.Getenv("FUN_FEED_API_KEY"),
			},
			BIJ: FeedConfig{
				BaseURL: os.Getenv("BIJ_FEED_URL"),
				APIKey:  os.Getenv("BIJ_FEED_API_KEY"),
			},
			Timeout:    getenvDuration("FEED_TIMEOUT", 15*time.Second),
			RetryCount: getenvInt("FEED_RETRY_COUNT", 3),
		},
		Rate: RateConfig{
			SpreadsheetID: os.Getenv("CNY_RATE_SPREADSHEET_ID"),
			Sheet:         os.Getenv("CNY_RATE_SHEET_NAME"),
			Cell:          os.Getenv("CNY_RATE_CELL"),
		},
		Repricing: RepricingConfig{
			CronSchedule:  getenvWithDefault("REPRICE_CRON_SCHEDULE", "*/10 * * * *"),
			RetryAttempts: getenvInt("ROW_RETRY_ATTEMPTS", 5),
			RetryBackoff:  getenvDuration("ROW_RETRY_BACKOFF", 500*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	if c.Sheets.SpreadsheetID == "" {
		return errors.New("PRODUCTS_SPREADSHEET_ID must be provided")
	}

	if c.Sheets.Worksheet == "" {
		return errors.New("PRODUCTS_WORKSHEET must not be empty")
	}

	if c.Feeds.Primary.BaseURL == "" {
		return errors.New("PA_FEED_URL must be provided")
	}

	if c.Repricing.CronSchedule == "" {
		return errors.New("REPRICE_CRON_SCHEDULE must be provided")
	}

	if c.Repricing.RetryAttempts < 1 {
		return errors.New("ROW_RETRY_ATTEMPTS must be at least 1")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
