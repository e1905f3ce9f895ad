package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the CogniFloe control plane.
type Config struct {
	Port        int
	Version     string
	CORSOrigins []string
	APIKeys     []string
	Remote      RemoteConfig
	Store       StoreConfig
	Retention   RetentionConfig
	Alerts      AlertConfig
	Telemetry   TelemetryConfig
	Log         LogConfig
}

// RemoteConfig points at the optional remote analysis/prediction service.
// An empty URL keeps every request on the local path.
type RemoteConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type StoreConfig struct {
	Backend string // memory | sqlite
	DataDir string
}

type RetentionConfig struct {
	PredictionTTL time.Duration
	Interval      time.Duration
	Archive       bool
	Compress      bool
}

// AlertConfig sets the webhook that receives anomaly alerts. Empty URL
// disables alerting.
type AlertConfig struct {
	WebhookURL    string
	WebhookSecret string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
	Version      string
}

type LogConfig struct {
	Level  string
	Format string // console | json
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	version := envStr("COGNIFLOE_VERSION", "0.1.0")
	return &Config{
		Port:        envInt("COGNIFLOE_PORT", 8080),
		Version:     version,
		CORSOrigins: envList("COGNIFLOE_CORS_ORIGINS", []string{"*"}),
		APIKeys:     envList("COGNIFLOE_API_KEYS", nil),
		Remote: RemoteConfig{
			URL:     strings.TrimRight(envStr("COGNIFLOE_REMOTE_URL", ""), "/"),
			APIKey:  envStr("COGNIFLOE_REMOTE_API_KEY", ""),
			Timeout: envDuration("COGNIFLOE_REMOTE_TIMEOUT", 8*time.Second),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(envStr("COGNIFLOE_STORE", "memory")),
			DataDir: envStr("COGNIFLOE_DATA_DIR", defaultDataDir()),
		},
		Retention: RetentionConfig{
			PredictionTTL: envDuration("COGNIFLOE_PREDICTION_TTL", 720*time.Hour),
			Interval:      envDuration("COGNIFLOE_RETENTION_INTERVAL", time.Hour),
			Archive:       envBool("COGNIFLOE_ARCHIVE_PREDICTIONS", false),
			Compress:      envBool("COGNIFLOE_ARCHIVE_COMPRESS", true),
		},
		Alerts: AlertConfig{
			WebhookURL:    envStr("COGNIFLOE_ALERT_WEBHOOK_URL", ""),
			WebhookSecret: envStr("COGNIFLOE_ALERT_WEBHOOK_SECRET", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "cognifloe-control-plane"),
			Version:      version,
		},
		Log: LogConfig{
			Level:  strings.ToLower(envStr("LOG_LEVEL", "info")),
			Format: strings.ToLower(envStr("LOG_FORMAT", "console")),
		},
	}
}

// ArchiveDir is where expired predictions are written when archiving is on.
func (c *Config) ArchiveDir() string {
	return filepath.Join(c.Store.DataDir, "archive")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cognifloe"
	}
	return filepath.Join(home, ".cognifloe")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
