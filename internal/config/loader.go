package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "POLICYINSIGHT"

// envKeys lists every leaf key so AutomaticEnv can resolve it without a
// config file. viper only consults the environment for keys it knows about.
var envKeys = []string{
	"server.host", "server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.idle_timeout", "server.shutdown_timeout", "server.rate_limit_rps", "server.rate_limit_burst",
	"server.cors_allowed_origins",
	"database.host", "database.port", "database.user", "database.password", "database.db_name",
	"database.ssl_mode", "database.max_conns", "database.max_idle_conns", "database.conn_max_lifetime",
	"database.conn_max_idle_time", "database.migration_path",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.key_prefix",
	"kafka.enabled", "kafka.brokers", "kafka.group_id", "kafka.auto_offset_reset", "kafka.topic_prefix",
	"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket", "minio.use_ssl",
	"ai.enabled", "ai.provider", "ai.endpoint", "ai.api_key", "ai.model", "ai.timeout", "ai.cache_ttl",
	"comparison.relevance_floor", "comparison.ai_relevant_threshold", "comparison.policy_relevant_threshold",
	"comparison.min_content_warning", "comparison.prompt_content_limit",
	"auth.enabled", "auth.jwt_secret", "auth.issuer",
	"log.level", "log.format",
	"metrics.enabled", "metrics.namespace",
}

// newViper builds a Viper instance reading YAML with POLICYINSIGHT_ env
// overrides ("database.host" → POLICYINSIGHT_DATABASE_HOST).
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// loadDotEnv loads .env files into the process environment. Missing files are
// ignored; variables already set are never overwritten.
func loadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// Load reads the YAML file at configPath, merges .env and environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	loadDotEnv()
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from .env and POLICYINSIGHT_* variables only.
func LoadFromEnv() (*Config, error) {
	loadDotEnv()
	return unmarshalAndFinalize(newViper())
}

// LoadOrEnv loads configPath when set, otherwise falls back to LoadFromEnv.
func LoadOrEnv(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch re-parses configPath on every write and hands the result to onChange.
// Only hot-reloadable settings (log level, comparison thresholds) should be
// applied by the callback. Invalid edits are reported through onError and
// otherwise ignored.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on error. For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
