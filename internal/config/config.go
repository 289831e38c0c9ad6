// Package config defines the top-level configuration for the TrustTrade
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by TRUSTD_* environment variables.
type Config struct {
	Chain    ChainConfig    `toml:"chain"`
	Relayer  RelayerConfig  `toml:"relayer"`
	Ethos    EthosConfig    `toml:"ethos"`
	Subgraph SubgraphConfig `toml:"subgraph"`
	ENS      ENSConfig      `toml:"ens"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Fees     FeesConfig     `toml:"fees"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// ChainConfig holds Ethereum RPC and contract parameters.
type ChainConfig struct {
	RPCURL          string `toml:"rpc_url"`
	ContractAddress string `toml:"contract_address"`
	ChainID         int64  `toml:"chain_id"`
	Network         string `toml:"network"`
	// StatusModel selects the contract generation: "three-state" for the
	// legacy enum, "five-state" for the escrow contract.
	StatusModel string `toml:"status_model"`
}

// RelayerConfig holds the optional relayer signing key. When neither field
// is set the backend runs read-only and no transaction builder is created.
type RelayerConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// EthosConfig holds Ethos reputation oracle parameters.
type EthosConfig struct {
	BaseURL      string `toml:"base_url"`
	ClientHeader string `toml:"client_header"`
}

// SubgraphConfig holds the Graph indexer endpoint.
type SubgraphConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// ENSConfig holds the ENS metadata resolver endpoint.
type ENSConfig struct {
	BaseURL string `toml:"base_url"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for receipt
// archival. Disabled deployments skip the archiver entirely.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// FeesConfig holds the reputation tier thresholds and fee schedule.
type FeesConfig struct {
	VIPThreshold       int64   `toml:"vip_threshold"`
	StandardThreshold  int64   `toml:"standard_threshold"`
	VIPFeePercent      float64 `toml:"vip_fee_percent"`
	StandardFeePercent float64 `toml:"standard_fee_percent"`
	HighRiskFeePercent float64 `toml:"high_risk_fee_percent"`
}

// PipelineConfig holds the background loop schedules.
type PipelineConfig struct {
	PollInterval  duration `toml:"poll_interval"`
	PollBatchSize int      `toml:"poll_batch_size"`
	LockTTL       duration `toml:"lock_ttl"`
	StatsInterval duration `toml:"stats_interval"`
	ArchiveCron   string   `toml:"archive_cron"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled         bool     `toml:"enabled"`
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// NotifyConfig holds operator alert channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:      "http://localhost:8545",
			ChainID:     11155111,
			Network:     "sepolia",
			StatusModel: string(domain.ModelFiveState),
		},
		Ethos: EthosConfig{
			BaseURL:      "https://api.ethos.network",
			ClientHeader: "trusttrade-backend",
		},
		ENS: ENSConfig{
			BaseURL: "https://api.ensdata.net",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "trusttrade",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "trusttrade-receipts",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Fees: FeesConfig{
			VIPThreshold:       2000,
			StandardThreshold:  1000,
			VIPFeePercent:      0,
			StandardFeePercent: 1,
			HighRiskFeePercent: 2.5,
		},
		Pipeline: PipelineConfig{
			PollInterval:  duration{30 * time.Second},
			PollBatchSize: 50,
			LockTTL:       duration{25 * time.Second},
			StatsInterval: duration{time.Minute},
			ArchiveCron:   "0 3 * * *",
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:       120,
			RateLimitWindow: duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"dispute", "escrow_expired", "error"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve": true,
	"poll":  true,
	"full":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, poll, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Chain
	if c.Chain.RPCURL == "" {
		errs = append(errs, "chain: rpc_url must not be empty")
	}
	if c.Chain.ContractAddress == "" {
		errs = append(errs, "chain: contract_address must not be empty")
	}
	if c.Chain.ChainID <= 0 {
		errs = append(errs, "chain: chain_id must be positive")
	}
	if !domain.StatusModel(c.Chain.StatusModel).Valid() {
		errs = append(errs, fmt.Sprintf("chain: status_model must be %q or %q, got %q",
			domain.ModelThreeState, domain.ModelFiveState, c.Chain.StatusModel))
	}

	// Relayer is optional, but an encrypted key file needs its password.
	if c.Relayer.EncryptedKeyPath != "" && c.Relayer.KeyPassword == "" {
		errs = append(errs, "relayer: key_password is required when encrypted_key_path is set")
	}

	// Ethos
	if c.Ethos.BaseURL == "" {
		errs = append(errs, "ethos: base_url must not be empty")
	}

	// Subgraph
	if c.Subgraph.URL == "" {
		errs = append(errs, "subgraph: url must not be empty")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 only matters when receipt archival is on.
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Fees: tiers must be ordered and rates sane.
	if c.Fees.StandardThreshold >= c.Fees.VIPThreshold {
		errs = append(errs, fmt.Sprintf("fees: standard_threshold (%d) must be below vip_threshold (%d)",
			c.Fees.StandardThreshold, c.Fees.VIPThreshold))
	}
	for name, pct := range map[string]float64{
		"vip_fee_percent":       c.Fees.VIPFeePercent,
		"standard_fee_percent":  c.Fees.StandardFeePercent,
		"high_risk_fee_percent": c.Fees.HighRiskFeePercent,
	} {
		if pct < 0 || pct > 100 {
			errs = append(errs, fmt.Sprintf("fees: %s must be 0-100, got %v", name, pct))
		}
	}

	// Pipeline
	if c.Pipeline.PollInterval.Duration <= 0 {
		errs = append(errs, "pipeline: poll_interval must be positive")
	}
	if c.Pipeline.PollBatchSize < 1 {
		errs = append(errs, "pipeline: poll_batch_size must be >= 1")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
