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

// Rate cache backends.
const (
	CacheFile     = "file"
	CachePostgres = "postgres"
	CacheSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	OutDir     string
	ReportPath string
	LogFile    string
	Debug      bool

	CacheDir     string
	CacheBackend string
	SQLitePath   string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	FXAPIURL     string
	FXBase       string
	FXTarget     string
	FXTimeout    time.Duration
	FXMaxRetries int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		OutDir:     getEnv("PDA_OUT_DIR", "data/processed"),
		ReportPath: getEnv("PDA_REPORT_PATH", "reports/report.md"),
		LogFile:    getEnv("PDA_LOG_FILE", "logs/app.log"),
		Debug:      getEnvBool("PDA_DEBUG", false),

		CacheDir:     getEnv("PDA_CACHE_DIR", "cache"),
		CacheBackend: strings.ToLower(getEnv("PDA_CACHE_BACKEND", CacheFile)),
		SQLitePath:   getEnv("SQLITE_PATH", "cache/rates.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "pda"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "pda"),
		PostgresDB:       getEnv("POSTGRES_DB", "pda"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		FXAPIURL:     getEnv("FX_API_URL", "https://api.exchangerate.host/latest"),
		FXBase:       getEnv("FX_BASE", "USD"),
		FXTarget:     getEnv("FX_TARGET", "EUR"),
		FXTimeout:    time.Duration(getEnvInt("FX_TIMEOUT_MS", 10000)) * time.Millisecond,
		FXMaxRetries: getEnvInt("FX_MAX_RETRIES", 2),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.CacheBackend {
	case CacheFile, CachePostgres, CacheSQLite:
	default:
		problems = append(problems, fmt.Sprintf("invalid cache backend %q: must be one of %s, %s, %s",
			c.CacheBackend, CacheFile, CachePostgres, CacheSQLite))
	}
	if c.CacheBackend == CacheSQLite && c.SQLitePath == "" {
		problems = append(problems, "SQLITE_PATH cannot be empty when using the sqlite cache")
	}
	if c.FXTimeout <= 0 {
		problems = append(problems, "FX_TIMEOUT_MS must be positive")
	}
	if c.FXMaxRetries < 1 {
		problems = append(problems, "FX_MAX_RETRIES must be at least 1")
	}
	if c.FXBase == "" || c.FXTarget == "" {
		problems = append(problems, "FX_BASE and FX_TARGET cannot be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
