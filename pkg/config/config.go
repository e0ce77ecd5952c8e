package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`
	HTTPPort int    `yaml:"http_port"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	// MongoURI empty keeps snapshots in memory.
	MongoURI    string `yaml:"mongo_uri"`
	MongoDBName string `yaml:"mongo_db_name"`

	CatalogDBPath     string `yaml:"catalog_db_path"`
	CatalogMigrations string `yaml:"catalog_migrations"`

	// RemoteBaseURL empty disables remote sync.
	RemoteBaseURL string        `yaml:"remote_base_url"`
	RemoteToken   string        `yaml:"remote_token"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`
	SyncStrategy  string        `yaml:"sync_strategy"`
	BulkMode      string        `yaml:"bulk_mode"`

	// KafkaBrokers empty disables the checkout consumer.
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	KafkaGroupID string   `yaml:"kafka_group_id"`

	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"`
}

func defaults() Config {
	return Config{
		AppEnv:            "dev",
		LogLevel:          "info",
		HTTPPort:          8080,
		RedisAddr:         "localhost:6379",
		CacheTTL:          15 * time.Minute,
		MongoDBName:       "storefront",
		CatalogDBPath:     "catalog.db",
		CatalogMigrations: "internal/catalog/migrations",
		RemoteTimeout:     5 * time.Second,
		SyncStrategy:      "pessimistic",
		BulkMode:          "copy",
		KafkaTopic:        "checkout-completed",
		KafkaGroupID:      "storefront",
		SessionIdleTTL:    30 * time.Minute,
	}
}

// Load starts from defaults, applies the YAML file named by CONFIG_FILE if
// set, then environment variables, which always win.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDBName = getEnv("MONGO_DB_NAME", cfg.MongoDBName)
	cfg.CatalogDBPath = getEnv("CATALOG_DB_PATH", cfg.CatalogDBPath)
	cfg.CatalogMigrations = getEnv("CATALOG_MIGRATIONS", cfg.CatalogMigrations)
	cfg.RemoteBaseURL = getEnv("REMOTE_BASE_URL", cfg.RemoteBaseURL)
	cfg.RemoteToken = getEnv("REMOTE_TOKEN", cfg.RemoteToken)
	cfg.RemoteTimeout = getEnvDuration("REMOTE_TIMEOUT", cfg.RemoteTimeout)
	cfg.SyncStrategy = getEnv("SYNC_STRATEGY", cfg.SyncStrategy)
	cfg.BulkMode = getEnv("BULK_MODE", cfg.BulkMode)
	cfg.KafkaBrokers = getEnvList("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.KafkaGroupID = getEnv("KAFKA_GROUP_ID", cfg.KafkaGroupID)
	cfg.SessionIdleTTL = getEnvDuration("SESSION_IDLE_TTL", cfg.SessionIdleTTL)

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
