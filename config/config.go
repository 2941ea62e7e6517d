package config

import (
	"os"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// The database DSN is intentionally absent here: it is resolved on demand
// through ResolveDatabaseURL so a missing DSN stays a reportable request
// error instead of a boot failure.
type AppConfig struct {
	AppPort        string
	AllowedOrigins []string
	// Gin framework configuration
	GinMode string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// databaseURLEnvChain lists the environment variables probed for the store
// DSN, in priority order. First non-empty wins. The names mirror what the
// usual serverless Postgres providers inject.
var databaseURLEnvChain = []string{
	"DATABASE_URL",
	"POSTGRES_URL",
	"POSTGRES_PRISMA_URL",
	"POSTGRES_URL_NON_POOLING",
	"NEON_DATABASE_URL",
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration from environment variables. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	cfg = AppConfig{
		AppPort:        getEnv("APP_PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		GinMode:        getEnv("GIN_MODE", "release"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPath:        getEnv("LOG_PATH", ""),
		LogMaxSizeMB:   getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:  getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays:  getEnvInt("LOG_MAX_AGE_DAYS", 7),
		LogCompress:    getEnvBool("LOG_COMPRESS", false),
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// ResolveDatabaseURL walks the DSN environment chain and returns the first
// non-empty value. ok is false when none of the variables is set.
func ResolveDatabaseURL() (string, bool) {
	for _, name := range databaseURLEnvChain {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
