package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultRateLimitBurst = 10

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "policyinsight"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "policyinsight:"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "policyinsight-worker"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "policy-text"

	DefaultAIProvider = "http"
	DefaultAIModel    = "gemini-2.5-flash"
	DefaultAITimeout  = 120 * time.Second
	DefaultAICacheTTL = 24 * time.Hour

	DefaultRelevanceFloor          = 20
	DefaultAIRelevantThreshold     = 40
	DefaultPolicyRelevantThreshold = 40
	DefaultMinContentWarning       = 100
	DefaultPromptContentLimit      = 2000

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "policyinsight"
)

// ApplyDefaults fills every zero-value field in cfg. Explicit values win.
// It runs after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// AI augmentation may take up to ai.timeout inside a request.
		cfg.Server.WriteTimeout = 150 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = DefaultRateLimitBurst
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "file://migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── AI ────────────────────────────────────────────────────────────────────
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = DefaultAIProvider
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = DefaultAIModel
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = DefaultAITimeout
	}
	if cfg.AI.CacheTTL == 0 {
		cfg.AI.CacheTTL = DefaultAICacheTTL
	}

	// ── Comparison ────────────────────────────────────────────────────────────
	if cfg.Comparison.RelevanceFloor == 0 {
		cfg.Comparison.RelevanceFloor = DefaultRelevanceFloor
	}
	if cfg.Comparison.AIRelevantThreshold == 0 {
		cfg.Comparison.AIRelevantThreshold = DefaultAIRelevantThreshold
	}
	if cfg.Comparison.PolicyRelevantThreshold == 0 {
		cfg.Comparison.PolicyRelevantThreshold = DefaultPolicyRelevantThreshold
	}
	if cfg.Comparison.MinContentWarning == 0 {
		cfg.Comparison.MinContentWarning = DefaultMinContentWarning
	}
	if cfg.Comparison.PromptContentLimit == 0 {
		cfg.Comparison.PromptContentLimit = DefaultPromptContentLimit
	}

	// ── Auth ──────────────────────────────────────────────────────────────────
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "policyinsight"
	}

	// ── Log / Metrics ─────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

//Personal.AI order the ending
