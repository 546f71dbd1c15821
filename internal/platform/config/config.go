package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	CronSecret   string

	VoteIPRateLimit       int
	VoteIPRateWindow      time.Duration
	SettlementInterval    time.Duration
	SettlementConcurrency int
	SettlementBatchSize   int
	SettlementLockTTL     time.Duration
	WorkerPollInterval    time.Duration
	// WorkerMetricsPort is where the worker serves /metrics; "off" disables it.
	WorkerMetricsPort string

	EnablePrizeNotifications bool
}

var defaults = map[string]any{
	"SERVICE_NAME":               "studio",
	"HTTP_PORT":                  "8080",
	"POSTGRES_DSN":               "",
	"REDIS_ADDR":                 "",
	"KAFKA_BROKERS":              "localhost:9092",
	"CRON_SECRET":                "",
	"VOTE_IP_RATE_LIMIT":         10,
	"VOTE_IP_RATE_WINDOW":        "60s",
	"SETTLEMENT_INTERVAL":        "5m",
	"SETTLEMENT_CONCURRENCY":     4,
	"SETTLEMENT_BATCH_SIZE":      50,
	"SETTLEMENT_LOCK_TTL":        "2m",
	"WORKER_POLL_INTERVAL":       "5s",
	"WORKER_METRICS_PORT":        "9091",
	"ENABLE_PRIZE_NOTIFICATIONS": true,
}

// Load reads the environment. When CONFIG_FILE is set, that file is read
// first and environment variables still win.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := Config{
		ServiceName:  strings.TrimSpace(v.GetString("SERVICE_NAME")),
		HTTPPort:     strings.TrimSpace(v.GetString("HTTP_PORT")),
		PostgresDSN:  strings.TrimSpace(v.GetString("POSTGRES_DSN")),
		RedisAddr:    strings.TrimSpace(v.GetString("REDIS_ADDR")),
		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		CronSecret:   strings.TrimSpace(v.GetString("CRON_SECRET")),

		VoteIPRateLimit:       v.GetInt("VOTE_IP_RATE_LIMIT"),
		VoteIPRateWindow:      v.GetDuration("VOTE_IP_RATE_WINDOW"),
		SettlementInterval:    v.GetDuration("SETTLEMENT_INTERVAL"),
		SettlementConcurrency: v.GetInt("SETTLEMENT_CONCURRENCY"),
		SettlementBatchSize:   v.GetInt("SETTLEMENT_BATCH_SIZE"),
		SettlementLockTTL:     v.GetDuration("SETTLEMENT_LOCK_TTL"),
		WorkerPollInterval:    v.GetDuration("WORKER_POLL_INTERVAL"),
		WorkerMetricsPort:     strings.TrimSpace(v.GetString("WORKER_METRICS_PORT")),

		EnablePrizeNotifications: v.GetBool("ENABLE_PRIZE_NOTIFICATIONS"),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "studio"
	}
	if strings.EqualFold(cfg.WorkerMetricsPort, "off") {
		cfg.WorkerMetricsPort = ""
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}
	if cfg.VoteIPRateLimit <= 0 {
		return Config{}, fmt.Errorf("VOTE_IP_RATE_LIMIT must be positive, got %d", cfg.VoteIPRateLimit)
	}
	if cfg.VoteIPRateWindow <= 0 {
		return Config{}, fmt.Errorf("VOTE_IP_RATE_WINDOW must be a positive duration")
	}
	if cfg.SettlementInterval <= 0 || cfg.WorkerPollInterval <= 0 {
		return Config{}, fmt.Errorf("SETTLEMENT_INTERVAL and WORKER_POLL_INTERVAL must be positive durations")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var items []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
