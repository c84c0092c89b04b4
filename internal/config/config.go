package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port            string
	AppEnv          string
	LogLevel        string
	LogstashTCPAddr string

	DatabaseDriver string
	DatabaseURL    string
	AutoMigrate    bool

	JWTSecret           string
	JWTIssuer           string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	AllowOrigins        []string

	BcryptCost       int
	HashConcurrency  int
	PasswordResetTTL time.Duration
	FrontendBaseURL  string

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIORegion        string
	MinIOBucketProfile string
	MinIOPublicURL     string
	AvatarMaxBytes     int64
	AvatarDimension    int
	FFMPEGPath         string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Development reports whether APP_ENV is development. Reset tokens are only
// returned in API responses in that mode.
func (c Config) Development() bool {
	return c.AppEnv == EnvDevelopment
}

// StorageEnabled reports whether MinIO is configured for avatar uploads.
func (c Config) StorageEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	driver := strings.ToLower(getenv("DATABASE_DRIVER", "pgx"))
	databaseURL := getenv("DATABASE_URL", "")
	if driver != "memory" {
		databaseURL = must("DATABASE_URL")
	}

	return Config{
		Port:                getenv("PORT", "8080"),
		AppEnv:              strings.ToLower(getenv("APP_ENV", EnvProduction)),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		LogstashTCPAddr:     getenv("LOGSTASH_TCP_ADDR", ""),
		DatabaseDriver:      driver,
		DatabaseURL:         databaseURL,
		AutoMigrate:         getbool("AUTO_MIGRATE", false),
		JWTSecret:           must("JWT_SECRET"),
		JWTIssuer:           getenv("JWT_ISSUER", "lighthouse-api"),
		SessionTTL:          getduration("SESSION_TTL", 720*time.Hour),
		SessionCookieName:   getenv("SESSION_COOKIE_NAME", "lighthouse_session"),
		SessionCookieSecure: getbool("SESSION_COOKIE_SECURE", true),
		AllowOrigins:        splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		BcryptCost:          getint("BCRYPT_COST", 12),
		HashConcurrency:     getint("HASH_CONCURRENCY", 0),
		PasswordResetTTL:    getduration("PASSWORD_RESET_TTL", 60*time.Minute),
		FrontendBaseURL:     getenv("FRONTEND_BASE_URL", ""),
		MinIOEndpoint:       getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         getbool("MINIO_USE_SSL", false),
		MinIORegion:         getenv("MINIO_REGION", ""),
		MinIOBucketProfile:  getenv("MINIO_BUCKET_PROFILE", "lighthouse-avatars"),
		MinIOPublicURL:      getenv("MINIO_PUBLIC_URL", ""),
		AvatarMaxBytes:      int64(getint("AVATAR_MAX_BYTES", 2*1024*1024)),
		AvatarDimension:     getint("AVATAR_DIMENSION", 256),
		FFMPEGPath:          getenv("FFMPEG_PATH", ""),
		SMTPHost:            getenv("SMTP_HOST", ""),
		SMTPPort:            getenv("SMTP_PORT", ""),
		SMTPUsername:        getenv("SMTP_USERNAME", ""),
		SMTPPassword:        getenv("SMTP_PASSWORD", ""),
		SMTPFrom:            getenv("SMTP_FROM", ""),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func getbool(k string, d bool) bool {
	v, err := strconv.ParseBool(getenv(k, strconv.FormatBool(d)))
	if err != nil {
		return d
	}
	return v
}

func getint(k string, d int) int {
	v, err := strconv.Atoi(getenv(k, ""))
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func getduration(k string, d time.Duration) time.Duration {
	v, err := time.ParseDuration(getenv(k, ""))
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
