package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr          string
	BaseURL       string
	DatabasePath  string
	MigrationsDir string
	TokenSecret   string
	AdminName     string
	AdminPassHash string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CORSOrigin    string
	ReposDir      string
	DataDir       string
	// Social defaults
	DefaultHashtags []string
	// Meilisearch
	MeiliURL       string
	MeiliMasterKey string
	// Redis
	RedisURL string
	// MinIO media storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	// Image generation API
	ImageGenURL string
	ImageGenKey string
	// Bluesky XRPC endpoint (credentials live in the settings table)
	BlueskyHost string
}

func Load() Config {
	return Config{
		Addr:            getenv("BLOG_ADDR", ":5055"),
		BaseURL:         strings.TrimRight(getenv("BLOG_BASE_URL", "http://localhost:5055"), "/"),
		DatabasePath:    getenv("BLOG_DB_PATH", "./data/simpleblog.db"),
		MigrationsDir:   getenv("BLOG_MIGRATIONS_DIR", "./db/migrations"),
		TokenSecret:     getenv("BLOG_TOKEN_SECRET", "simpleblog-dev-secret"),
		AdminName:       getenv("BLOG_ADMIN_NAME", "admin"),
		AdminPassHash:   getenv("BLOG_ADMIN_PASSWORD_HASH", ""),
		AccessTTL:       time.Duration(getenvInt("BLOG_ACCESS_TTL_SECONDS", 900)) * time.Second,
		RefreshTTL:      time.Duration(getenvInt("BLOG_REFRESH_TTL_SECONDS", 2592000)) * time.Second,
		CORSOrigin:      getenv("BLOG_CORS_ORIGIN", "*"),
		ReposDir:        getenv("BLOG_REPOS_DIR", "./data/repos"),
		DataDir:         getenv("BLOG_DATA_DIR", "./data"),
		DefaultHashtags: splitTags(getenv("BLOG_DEFAULT_HASHTAGS", "#blog #webdev")),
		MeiliURL:        getenv("MEILI_URL", ""),
		MeiliMasterKey:  getenv("MEILI_MASTER_KEY", ""),
		RedisURL:        getenv("REDIS_URL", "redis://localhost:6379/0"),
		MinioEndpoint:   getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:  getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getenv("MINIO_BUCKET", "simpleblog-media"),
		MinioUseSSL:     getenvBool("MINIO_USE_SSL", false),
		ImageGenURL:     getenv("IMAGEGEN_URL", ""),
		ImageGenKey:     getenv("IMAGEGEN_API_KEY", ""),
		BlueskyHost:     getenv("BLUESKY_HOST", "https://bsky.social"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
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

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitTags(raw string) []string {
	fields := strings.Fields(raw)
	tags := make([]string, 0, len(fields))
	for _, field := range fields {
		if !strings.HasPrefix(field, "#") {
			field = "#" + field
		}
		tags = append(tags, field)
	}
	return tags
}
