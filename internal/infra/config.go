package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	GenerationBaseURL string
	GenerationTimeout time.Duration
	BatchSlots        int

	FreeGenerationLimit int
	FreeStyles          []string
	StylesPath          string

	KVBackend     string
	KVFilePath    string
	DatabaseURL   string
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	EntitlementBaseURL string
	EntitlementAPIKey  string

	MediaLibraryPath string

	GeoIPDBPath   string
	DefaultLocale string

	CORSAllowedOrigins []string
	RateLimitPerMin    int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		GenerationBaseURL:   strings.TrimRight(os.Getenv("GENERATION_BASE_URL"), "/"),
		GenerationTimeout:   time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 30)),
		BatchSlots:          getEnvInt("BATCH_SLOTS", 4),
		FreeGenerationLimit: getEnvInt("FREE_GENERATION_LIMIT", 3),
		FreeStyles:          splitCSV(getEnv("FREE_STYLES", "anime,oldschool,lego")),
		StylesPath:          os.Getenv("STYLES_PATH"),
		KVBackend:           strings.ToLower(getEnv("KV_BACKEND", "file")),
		KVFilePath:          getEnv("KV_FILE_PATH", "data/styleshot.json"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisUsername:       os.Getenv("REDIS_USERNAME"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisUseTLS:         getEnvBool("REDIS_USE_TLS", false),
		EntitlementBaseURL:  strings.TrimRight(os.Getenv("ENTITLEMENT_BASE_URL"), "/"),
		EntitlementAPIKey:   os.Getenv("ENTITLEMENT_API_KEY"),
		MediaLibraryPath:    getEnv("MEDIA_LIBRARY_PATH", "data/library"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:       getEnv("DEFAULT_LOCALE", "en"),
		CORSAllowedOrigins:  splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 150)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.GenerationBaseURL == "" {
		return nil, fmt.Errorf("GENERATION_BASE_URL is required")
	}
	if cfg.BatchSlots <= 0 {
		return nil, fmt.Errorf("BATCH_SLOTS must be positive")
	}

	switch cfg.KVBackend {
	case "file", "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for KV_BACKEND=postgres")
		}
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for KV_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unsupported KV_BACKEND %q", cfg.KVBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
