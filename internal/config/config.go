package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeProd  Mode = "prod"
)

type Config struct {
	Mode Mode

	Port     string
	LogLevel string

	LLMProvider  string // "mock", "vertex" o "openai"
	GCPProjectID string
	GCPLocation  string
	ModelName    string
	OpenAIAPIKey string

	StorageBackend string // "memory", "firestore" o "sql"
	SQLDriver      string // "sqlite" o "postgres"
	SQLDSN         string

	CacheBackend string // "memory" o "redis"
	RedisURL     string

	WhatsAppPhoneID     string
	WhatsAppAccessToken string
	WhatsAppVerifyToken string
	WhatsAppAppSecret   string
	WhatsAppAPIVersion  string

	PublicBaseURL           string
	AutomationCallbackToken string
	CatalogPath             string

	SessionTTL      time.Duration
	DedupTTL        time.Duration
	HistoryLimit    int
	BusinessInfoTTL time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

// Load reads all env vars and builds the config
func Load() (*Config, error) {
	modeStr := getEnv("TABORRA_MODE", "local")
	var mode Mode
	switch modeStr {
	case "prod", "gcp":
		mode = ModeProd
	default:
		mode = ModeLocal
	}

	defaultLLM := "mock"
	if mode == ModeProd {
		defaultLLM = "vertex"
	}
	provider := strings.ToLower(getEnv("TABORRA_LLM_PROVIDER", defaultLLM))

	defaultModel := "gemini-2.5-flash-lite"
	if provider == "openai" {
		defaultModel = "gpt-4o-mini"
	}

	cfg := &Config{
		Mode: mode,

		Port:     getEnv("TABORRA_PORT", getEnv("PORT", "8080")),
		LogLevel: getEnv("TABORRA_LOG_LEVEL", "info"),

		LLMProvider:  provider,
		GCPProjectID: getEnv("TABORRA_GCP_PROJECT", ""),
		GCPLocation:  getEnv("TABORRA_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("TABORRA_MODEL_NAME", defaultModel),
		OpenAIAPIKey: getEnv("TABORRA_OPENAI_API_KEY", ""),

		StorageBackend: strings.ToLower(getEnv("TABORRA_STORAGE_BACKEND", "memory")),
		SQLDriver:      strings.ToLower(getEnv("TABORRA_SQL_DRIVER", "sqlite")),
		SQLDSN:         getEnv("TABORRA_SQL_DSN", "data/taborra.db"),

		CacheBackend: strings.ToLower(getEnv("TABORRA_CACHE_BACKEND", "memory")),
		RedisURL:     getEnv("TABORRA_REDIS_URL", "redis://localhost:6379/0"),

		WhatsAppPhoneID:     getEnv("TABORRA_WHATSAPP_PHONE_ID", ""),
		WhatsAppAccessToken: getEnv("TABORRA_WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppVerifyToken: getEnv("TABORRA_WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:   getEnv("TABORRA_WHATSAPP_APP_SECRET", ""),
		WhatsAppAPIVersion:  getEnv("TABORRA_WHATSAPP_API_VERSION", "v22.0"),

		PublicBaseURL:           getEnv("TABORRA_PUBLIC_BASE_URL", ""),
		AutomationCallbackToken: getEnv("TABORRA_AUTOMATION_CALLBACK_TOKEN", ""),
		CatalogPath:             getEnv("TABORRA_CATALOG_PATH", ""),
	}

	var err error
	if cfg.SessionTTL, err = getDurationEnv("TABORRA_SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DedupTTL, err = getDurationEnv("TABORRA_DEDUP_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.BusinessInfoTTL, err = getDurationEnv("TABORRA_BUSINESS_INFO_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit, err = getIntEnv("TABORRA_HISTORY_LIMIT", 10); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case "mock":
	case "vertex":
		if c.GCPProjectID == "" {
			return fmt.Errorf("TABORRA_GCP_PROJECT must be set for the vertex provider")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("TABORRA_OPENAI_API_KEY must be set for the openai provider")
		}
	default:
		return fmt.Errorf("unknown TABORRA_LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.StorageBackend {
	case "memory", "sql":
	case "firestore":
		if c.GCPProjectID == "" {
			return fmt.Errorf("TABORRA_GCP_PROJECT must be set for firestore storage")
		}
	default:
		return fmt.Errorf("unknown TABORRA_STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown TABORRA_CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.SessionTTL <= 0 || c.DedupTTL <= 0 || c.BusinessInfoTTL <= 0 {
		return fmt.Errorf("ttl settings must be positive")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("TABORRA_HISTORY_LIMIT must be positive")
	}
	return nil
}
