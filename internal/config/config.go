// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	DBDriver   string
	DBDSN      string
	SQLitePath string

	StorageDriver     string
	StorageDir        string
	UploadsBaseURL    string
	GCSBucket         string
	GCSPublicBaseURL  string
	GCSEmulatorHost   string
	MaxUploadBytes    int64
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	CacheTTL          time.Duration
	CORSOrigins       []string
	PublicBaseURL     string
	WhatsAppNumber    string
	AdminAPIKey       string
	AdminEmails       []string
	JWTSecret         string
	GoogleClientID    string
	GoogleSecret      string
	BaseURL           string
	ExportConcurrency int
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}

	c := &Config{
		AppEnv:           strings.ToLower(getEnv("APP_ENV", "development")),
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", ""),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBDSN:            os.Getenv("DB_DSN"),
		SQLitePath:       getEnv("SQLITE_PATH", "kitos.db"),
		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		StorageDir:       getEnv("STORAGE_DIR", "uploads"),
		UploadsBaseURL:   getEnv("UPLOADS_BASE_URL", "/uploads"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSPublicBaseURL: os.Getenv("GCS_PUBLIC_BASE_URL"),
		GCSEmulatorHost:  os.Getenv("STORAGE_EMULATOR_HOST"),
		MaxUploadBytes:   25 << 20,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "*")),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		WhatsAppNumber:   getEnv("WHATSAPP_NUMBER", "1234567890"),
		AdminAPIKey:      os.Getenv("ADMIN_API_KEY"),
		AdminEmails:      splitList(strings.ToLower(os.Getenv("ADMIN_ALLOWED_EMAILS"))),
		JWTSecret:        os.Getenv("JWT_ADMIN_SECRET"),
		GoogleClientID:   os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleSecret:     os.Getenv("GOOGLE_CLIENT_SECRET"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
	}

	var err error
	if c.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if c.ExportConcurrency, err = getInt("EXPORT_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if c.CacheTTL, err = getDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if c.DBDSN == "" && c.DBDriver == "postgres" {
		c.DBDSN = postgresDSN()
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
		if !c.IsProduction() {
			c.LogFormat = "console"
		}
	}
	return c, c.Validate()
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER: unknown driver %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_DRIVER=gcs")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER: unknown driver %q", c.StorageDriver)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_ADMIN_SECRET is required in production")
	}
	return nil
}

// postgresDSN assembles the DSN from the discrete DB_* variables.
func postgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "kitos"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
