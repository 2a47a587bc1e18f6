// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath = pflag.String("config", "", "Path to a config.toml file")
	sweepNow   = pflag.Bool("sweep-now", false, "Removes orphaned uploads once and exits")

	validEnvs         = []string{"development", "production"}
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
	validDrivers      = []string{"sqlite", "postgres"}
	validCacheTypes   = []string{"memory", "redis"}
)

// ErrNoJWTSecret is returned by Load when jwt.secret is not set
var ErrNoJWTSecret = errors.New("jwt.secret is not set")

type Config struct {
	App struct {
		Env      string
		LogLevel string
		SweepNow bool
	}

	Host struct {
		Port      int
		CORS      []string
		PublicURL string
		SSL       struct {
			Enabled            bool
			CertificatePath    string
			CertificateKeyPath string
		}
	}

	JWT struct {
		Secret string
		TTL    time.Duration
	}

	Database struct {
		Driver string
		DSN    string
	}

	Storage struct {
		Type          string
		LocalPath     string
		SweepSchedule string
		S3            S3
	}

	Upload struct {
		MaxSize int64 // bytes
	}

	Cache struct {
		Type      string
		PublicTTL time.Duration
		Redis     struct {
			Addr     string
			Password string
			DB       int
		}
	}

	Security struct {
		RateLimitRequests int
		RateLimitWindow   time.Duration
		JSONLimit         int64 // bytes
	}

	Turnstile struct {
		Enabled     bool
		SecretToken string
	}

	Metrics struct {
		Enabled bool
	}
}

type S3 struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	PublicURL       string
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup parses command line flags and loads the configuration. If no JWT
// secret is configured a random one is printed and the process exits.
func Setup() (*Config, error) {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	if *configPath != "" {
		v.SetConfigFile(*configPath)
	}

	cfg, err := Load()
	if errors.Is(err, ErrNoJWTSecret) {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}
	if err != nil {
		return nil, err
	}

	cfg.App.SweepNow = *sweepNow
	return cfg, nil
}

// Load reads config.toml (if present) and the environment into a Config
// and validates it.
func Load() (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.env", "app_env")
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors", "host_cors")
	v.BindEnv("host.public_url", "host_public_url")

	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.ttl", "jwt_ttl")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.local.path", "storage_local_path")
	v.BindEnv("storage.sweep_schedule", "storage_sweep_schedule")
	v.BindEnv("storage.s3.bucket", "storage_s3_bucket")
	v.BindEnv("storage.s3.region", "storage_s3_region")
	v.BindEnv("storage.s3.access_key_id", "storage_s3_access_key_id")
	v.BindEnv("storage.s3.secret_access_key", "storage_s3_secret_access_key")
	v.BindEnv("storage.s3.endpoint", "storage_s3_endpoint")
	v.BindEnv("storage.s3.public_url", "storage_s3_public_url")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("cache.type", "cache_type")
	v.BindEnv("cache.public_ttl", "cache_public_ttl")
	v.BindEnv("cache.redis.addr", "cache_redis_addr")
	v.BindEnv("cache.redis.password", "cache_redis_password")
	v.BindEnv("cache.redis.db", "cache_redis_db")

	v.BindEnv("security.rate_limit.requests", "security_rate_limit_requests")
	v.BindEnv("security.rate_limit.window", "security_rate_limit_window")
	v.BindEnv("security.json_limit", "security_json_limit")

	v.BindEnv("cloudflare.turnstile.enabled", "cloudflare_turnstile_enabled")
	v.BindEnv("cloudflare.turnstile.secret_token", "cloudflare_turnstile_secret_token")

	v.BindEnv("metrics.enabled", "metrics_enabled")

	//
	// Defaults
	//
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", "http://localhost:5173")
	v.SetDefault("host.public_url", "http://localhost:5173")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("jwt.ttl", "168h")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.path", "uploads")
	v.SetDefault("storage.sweep_schedule", "@daily")

	v.SetDefault("upload.max_size", 10)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.public_ttl", "30s")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("security.rate_limit.requests", 200)
	v.SetDefault("security.rate_limit.window", "15m")
	v.SetDefault("security.json_limit", 10)

	v.SetDefault("cloudflare.turnstile.enabled", false)

	v.SetDefault("metrics.enabled", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Env = v.GetString("app.env")
	cfg.App.LogLevel = v.GetString("app.log_level")

	cfg.Host.Port = v.GetInt("host.port")
	cfg.Host.CORS = stringList("host.cors")
	cfg.Host.PublicURL = strings.TrimRight(v.GetString("host.public_url"), "/")
	cfg.Host.SSL.Enabled = v.GetBool("host.ssl.enabled")
	cfg.Host.SSL.CertificatePath = v.GetString("host.ssl.certificate_path")
	cfg.Host.SSL.CertificateKeyPath = v.GetString("host.ssl.certificate_key_path")

	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.JWT.TTL = v.GetDuration("jwt.ttl")

	cfg.Database.Driver = v.GetString("database.driver")
	cfg.Database.DSN = v.GetString("database.dsn")

	cfg.Storage.Type = v.GetString("storage.type")
	cfg.Storage.LocalPath = v.GetString("storage.local.path")
	cfg.Storage.SweepSchedule = v.GetString("storage.sweep_schedule")
	cfg.Storage.S3 = S3{
		Bucket:          v.GetString("storage.s3.bucket"),
		Region:          v.GetString("storage.s3.region"),
		AccessKeyID:     v.GetString("storage.s3.access_key_id"),
		SecretAccessKey: v.GetString("storage.s3.secret_access_key"),
		Endpoint:        v.GetString("storage.s3.endpoint"),
		PublicURL:       strings.TrimRight(v.GetString("storage.s3.public_url"), "/"),
	}

	cfg.Upload.MaxSize = v.GetInt64("upload.max_size") << 20

	cfg.Cache.Type = v.GetString("cache.type")
	cfg.Cache.PublicTTL = v.GetDuration("cache.public_ttl")
	cfg.Cache.Redis.Addr = v.GetString("cache.redis.addr")
	cfg.Cache.Redis.Password = v.GetString("cache.redis.password")
	cfg.Cache.Redis.DB = v.GetInt("cache.redis.db")

	cfg.Security.RateLimitRequests = v.GetInt("security.rate_limit.requests")
	cfg.Security.RateLimitWindow = v.GetDuration("security.rate_limit.window")
	cfg.Security.JSONLimit = v.GetInt64("security.json_limit") << 20

	cfg.Turnstile.Enabled = v.GetBool("cloudflare.turnstile.enabled")
	cfg.Turnstile.SecretToken = v.GetString("cloudflare.turnstile.secret_token")

	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validEnvs, c.App.Env) {
		return errors.New("invalid app.env provided")
	}

	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if len(c.Host.CORS) == 0 {
		return errors.New("host.cors needs at least one origin")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if c.JWT.Secret == "" {
		return ErrNoJWTSecret
	}

	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be bigger than 0")
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database.dsn can't be empty")
	}

	switch c.Storage.Type {
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.Storage.S3.AccessKeyID == "" {
			return errors.New("access key id can't be empty")
		}
		if c.Storage.S3.SecretAccessKey == "" {
			return errors.New("secret access key can't be empty")
		}
		if c.Storage.S3.PublicURL == "" {
			return errors.New("storage.s3.public_url can't be empty")
		}
	case "local":
		if c.Storage.LocalPath == "" {
			return errors.New("storage.local.path can't be empty")
		}
	default:
		return errors.New("invalid storage type provided")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if !slices.Contains(validCacheTypes, c.Cache.Type) {
		return errors.New("invalid cache type provided")
	}

	if c.Cache.PublicTTL < 0 {
		return errors.New("cache.public_ttl can't be negative")
	}

	if c.Security.RateLimitRequests <= 0 || c.Security.RateLimitWindow <= 0 {
		return errors.New("rate limit requests and window must be bigger than 0")
	}

	if c.Security.JSONLimit <= 0 {
		return errors.New("security.json_limit must be bigger than 0")
	}

	if c.Turnstile.Enabled && c.Turnstile.SecretToken == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}

// stringList reads a comma separated list. Env vars always arrive as a
// single string, while config.toml may hold a real array.
func stringList(key string) []string {
	var raw []string

	switch val := v.Get(key).(type) {
	case string:
		raw = strings.Split(val, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}
