package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRUSTD_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRUSTD_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "TRUSTD_CHAIN_RPC_URL")
	setStr(&cfg.Chain.ContractAddress, "TRUSTD_CHAIN_CONTRACT_ADDRESS")
	setInt64(&cfg.Chain.ChainID, "TRUSTD_CHAIN_CHAIN_ID")
	setStr(&cfg.Chain.Network, "TRUSTD_CHAIN_NETWORK")
	setStr(&cfg.Chain.StatusModel, "TRUSTD_CHAIN_STATUS_MODEL")

	// ── Relayer ──
	setStr(&cfg.Relayer.PrivateKey, "TRUSTD_RELAYER_PRIVATE_KEY")
	setStr(&cfg.Relayer.EncryptedKeyPath, "TRUSTD_RELAYER_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Relayer.KeyPassword, "TRUSTD_RELAYER_KEY_PASSWORD")

	// ── Ethos ──
	setStr(&cfg.Ethos.BaseURL, "TRUSTD_ETHOS_BASE_URL")
	setStr(&cfg.Ethos.ClientHeader, "TRUSTD_ETHOS_CLIENT_HEADER")

	// ── Subgraph ──
	setStr(&cfg.Subgraph.URL, "TRUSTD_SUBGRAPH_URL")
	setStr(&cfg.Subgraph.APIKey, "TRUSTD_SUBGRAPH_API_KEY")

	// ── ENS ──
	setStr(&cfg.ENS.BaseURL, "TRUSTD_ENS_BASE_URL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "TRUSTD_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "TRUSTD_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "TRUSTD_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "TRUSTD_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "TRUSTD_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "TRUSTD_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "TRUSTD_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "TRUSTD_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "TRUSTD_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "TRUSTD_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "TRUSTD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRUSTD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRUSTD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRUSTD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "TRUSTD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "TRUSTD_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "TRUSTD_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "TRUSTD_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TRUSTD_S3_REGION")
	setStr(&cfg.S3.Bucket, "TRUSTD_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TRUSTD_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TRUSTD_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TRUSTD_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TRUSTD_S3_FORCE_PATH_STYLE")

	// ── Fees ──
	setInt64(&cfg.Fees.VIPThreshold, "TRUSTD_FEES_VIP_THRESHOLD")
	setInt64(&cfg.Fees.StandardThreshold, "TRUSTD_FEES_STANDARD_THRESHOLD")
	setFloat64(&cfg.Fees.VIPFeePercent, "TRUSTD_FEES_VIP_FEE_PERCENT")
	setFloat64(&cfg.Fees.StandardFeePercent, "TRUSTD_FEES_STANDARD_FEE_PERCENT")
	setFloat64(&cfg.Fees.HighRiskFeePercent, "TRUSTD_FEES_HIGH_RISK_FEE_PERCENT")

	// ── Pipeline ──
	setDuration(&cfg.Pipeline.PollInterval, "TRUSTD_PIPELINE_POLL_INTERVAL")
	setInt(&cfg.Pipeline.PollBatchSize, "TRUSTD_PIPELINE_POLL_BATCH_SIZE")
	setDuration(&cfg.Pipeline.LockTTL, "TRUSTD_PIPELINE_LOCK_TTL")
	setDuration(&cfg.Pipeline.StatsInterval, "TRUSTD_PIPELINE_STATS_INTERVAL")
	setStr(&cfg.Pipeline.ArchiveCron, "TRUSTD_PIPELINE_ARCHIVE_CRON")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "TRUSTD_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "TRUSTD_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "TRUSTD_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "TRUSTD_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "TRUSTD_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateLimitWindow, "TRUSTD_SERVER_RATE_LIMIT_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "TRUSTD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TRUSTD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "TRUSTD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "TRUSTD_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "TRUSTD_MODE")
	setStr(&cfg.LogLevel, "TRUSTD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
