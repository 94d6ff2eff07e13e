package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	DatabaseDriver         string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	JWTTTL                 time.Duration
	StatsCacheTTL          time.Duration
	NATSURL                string
	NATSSubjectPrefix      string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	EnrollRateLimit        int
	QuizCodeLength         int
	MaterialMaxSizeMB      int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// CloudinaryEnabled reports whether material uploads can be served.
func (c Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUIZHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "QuizHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("stats.cache_ttl", "2m")
	v.SetDefault("nats.subject_prefix", "quizhub")
	v.SetDefault("cloudinary.folder", "quizhub/materials")
	v.SetDefault("enroll.rate_limit", 10)
	v.SetDefault("quiz.code_length", 6)
	v.SetDefault("material.max_size_mb", 10)

	jwtTTL, err := parseDuration(v.GetString("jwt.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	statsTTL, err := parseDuration(v.GetString("stats.cache_ttl"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		DatabaseDriver:         strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 jwtTTL,
		StatsCacheTTL:          statsTTL,
		NATSURL:                v.GetString("nats.url"),
		NATSSubjectPrefix:      v.GetString("nats.subject_prefix"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		EnrollRateLimit:        v.GetInt("enroll.rate_limit"),
		QuizCodeLength:         v.GetInt("quiz.code_length"),
		MaterialMaxSizeMB:      v.GetInt("material.max_size_mb"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.EnrollRateLimit <= 0 {
		cfg.EnrollRateLimit = 10
	}

	if cfg.MaterialMaxSizeMB <= 0 {
		cfg.MaterialMaxSizeMB = 10
	}

	if cfg.QuizCodeLength < 4 || cfg.QuizCodeLength > 12 {
		cfg.QuizCodeLength = 6
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
