package config

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/spf13/viper"
)

type R2Config struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	RootPrefix      string `mapstructure:"root_prefix"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

type SummaryConfig struct {
	APIURL   string        `mapstructure:"api_url"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Config struct {
	Port            string         `mapstructure:"port"`
	Environment     string         `mapstructure:"env"`
	JWTSecret       string         `mapstructure:"jwt_secret"`
	OwnerEmail      string         `mapstructure:"owner_email"`
	FrontendURL     string         `mapstructure:"frontend_url"`
	CorsOrigins     []string       `mapstructure:"cors_origins"`
	DisplayTimezone string         `mapstructure:"display_timezone"`
	ShutdownTimeout time.Duration  `mapstructure:"shutdown_timeout"`
	Database        DatabaseConfig `mapstructure:"database"`
	R2              R2Config       `mapstructure:"r2"`
	Redis           RedisConfig    `mapstructure:"redis"`
	Google          GoogleConfig   `mapstructure:"google"`
	Summary         SummaryConfig  `mapstructure:"summary"`
	Logging         LoggingConfig  `mapstructure:"logging"`
}

// envKeys maps config keys to the plain environment variable names used in .env files.
var envKeys = map[string]string{
	"port":                 "PORT",
	"env":                  "ENV",
	"jwt_secret":           "JWT_SECRET",
	"owner_email":          "OWNER_EMAIL",
	"frontend_url":         "FRONTEND_URL",
	"cors_origins":         "CORS_ORIGINS",
	"display_timezone":     "DISPLAY_TIMEZONE",
	"shutdown_timeout":     "SHUTDOWN_TIMEOUT",
	"database.driver":      "DB_DRIVER",
	"database.url":         "DB_URL",
	"r2.account_id":        "R2_ACCOUNT_ID",
	"r2.access_key_id":     "R2_ACCESS_KEY_ID",
	"r2.secret_access_key": "R2_SECRET_ACCESS_KEY",
	"r2.bucket_name":       "R2_BUCKET_NAME",
	"r2.region":            "R2_REGION",
	"r2.endpoint":          "R2_ENDPOINT",
	"r2.root_prefix":       "R2_ROOT_PREFIX",
	"redis.addr":           "REDIS_ADDR",
	"redis.password":       "REDIS_PASSWORD",
	"redis.db":             "REDIS_DB",
	"google.client_id":     "GOOGLE_CLIENT_ID",
	"google.client_secret": "GOOGLE_CLIENT_SECRET",
	"google.redirect_url":  "GOOGLE_REDIRECT_URL",
	"summary.api_url":      "SUMMARY_API_URL",
	"summary.api_key":      "SUMMARY_API_KEY",
	"summary.model":        "SUMMARY_MODEL",
	"summary.cache_ttl":    "SUMMARY_CACHE_TTL",
	"summary.timeout":      "SUMMARY_TIMEOUT",
	"logging.level":        "LOG_LEVEL",
	"logging.format":       "LOG_FORMAT",
	"logging.file":         "LOG_FILE",
}

// Load reads the .env file (ENV_FILE overrides the path), then environment
// variables and an optional config.yaml on top of the defaults.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.CorsOrigins = splitOrigins(cfg.CorsOrigins)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("jwt_secret", "not-so-secret-now-is-it?")
	v.SetDefault("owner_email", "")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("display_timezone", "UTC")
	v.SetDefault("shutdown_timeout", "15s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")

	v.SetDefault("r2.account_id", "")
	v.SetDefault("r2.access_key_id", "")
	v.SetDefault("r2.secret_access_key", "")
	v.SetDefault("r2.bucket_name", "")
	v.SetDefault("r2.region", "auto")
	v.SetDefault("r2.endpoint", "")
	v.SetDefault("r2.root_prefix", "OTA/")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "http://localhost:8080/api/v1/auth/google/callback")

	v.SetDefault("summary.api_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("summary.api_key", "")
	v.SetDefault("summary.model", "gpt-4o-mini")
	v.SetDefault("summary.cache_ttl", "10m")
	v.SetDefault("summary.timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
}

func validateConfig(cfg *Config) error {
	if cfg.Environment == "production" && cfg.JWTSecret == "not-so-secret-now-is-it?" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if !strings.HasSuffix(cfg.R2.RootPrefix, "/") {
		return fmt.Errorf("storage root prefix %q must end with /", cfg.R2.RootPrefix)
	}
	if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
		return fmt.Errorf("invalid display timezone %q: %w", cfg.DisplayTimezone, err)
	}
	return nil
}

// CORS_ORIGINS arrives from the environment as a single comma separated value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location returns the zone used to format timestamps for display.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   c.CorsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
