package config

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Catalog
		Inventory
		Scheduler
		Security
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Catalog struct {
		BaseURL           string
		CoversURL         string
		UserAgent         string
		Timeout           time.Duration
		RequestsPerSecond float64 // 0 disables client-side rate limiting
	}
	Inventory struct {
		FetchStrategy string        // "all" (refetch every ISBN on change) or "missing"
		FetchTimeout  time.Duration // Per-lookup bound, 0 = catalog timeout only
	}
	Scheduler struct {
		RefreshSchedule string // Cron format, empty disables periodic refresh
	}
	Security struct {
		CSRFSecret    string // Hex or raw; empty disables CSRF protection
		SecureCookies bool   // Set to false for local dev without HTTPS
	}
)

// LoadEnvFile loads variables from path into the process environment
// without overriding values that are already set. A missing file is fine.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func NewConfig() *Config {
	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		log.Printf("WARNING: could not load %s: %v", DefaultEnvFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Catalog defaults
	v.SetDefault("catalog_base_url", "https://openlibrary.org")
	v.SetDefault("catalog_covers_url", "https://covers.openlibrary.org")
	v.SetDefault("catalog_user_agent", "")
	v.SetDefault("catalog_timeout", "10s")
	v.SetDefault("catalog_requests_per_second", 0)

	// Inventory defaults
	v.SetDefault("fetch_strategy", "all")
	v.SetDefault("fetch_timeout", "0s")

	// Scheduler defaults
	v.SetDefault("metadata_refresh_schedule", "")

	// Security defaults
	v.SetDefault("csrf_secret", "")
	v.SetDefault("secure_cookies", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Catalog: Catalog{
			BaseURL:           v.GetString("CATALOG_BASE_URL"),
			CoversURL:         v.GetString("CATALOG_COVERS_URL"),
			UserAgent:         v.GetString("CATALOG_USER_AGENT"),
			Timeout:           v.GetDuration("CATALOG_TIMEOUT"),
			RequestsPerSecond: v.GetFloat64("CATALOG_REQUESTS_PER_SECOND"),
		},
		Inventory: Inventory{
			FetchStrategy: v.GetString("FETCH_STRATEGY"),
			FetchTimeout:  v.GetDuration("FETCH_TIMEOUT"),
		},
		Scheduler: Scheduler{
			RefreshSchedule: v.GetString("METADATA_REFRESH_SCHEDULE"),
		},
		Security: Security{
			CSRFSecret:    v.GetString("CSRF_SECRET"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
	}
}
