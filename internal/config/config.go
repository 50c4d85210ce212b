package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all site configuration loaded from environment variables.
type Config struct {
	Port             string
	OrganizationName string
	LogLevel         string

	StoreDriver string
	DataDir     string
	MongoURI    string
	MongoDB     string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	SessionSecret string
	SessionTTL    time.Duration

	StaticDir      string
	TemplateDir    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	CorsAllowedOrigins []string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getenv("PORT", "8000"),
		OrganizationName:   getenv("ORGANIZATION_NAME", "MASIQHAKAZE WOMEN ORGANISATION"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		StoreDriver:        getenv("STORE_DRIVER", "badger"),
		DataDir:            getenv("DATA_DIR", "data"),
		MongoURI:           getenv("MONGO_URI", ""),
		MongoDB:            getenv("MONGO_DB", "website"),
		PostgresDSN:        getenv("POSTGRES_DSN", ""),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		SessionSecret:      getenv("SESSION_SECRET", ""),
		SessionTTL:         getduration("SESSION_TTL", 24*time.Hour),
		StaticDir:          getenv("STATIC_DIR", "static"),
		TemplateDir:        getenv("TEMPLATE_DIR", ""),
		MinioEndpoint:      getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:        getenv("MINIO_BUCKET", "website-static"),
		MinioUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		CorsAllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
