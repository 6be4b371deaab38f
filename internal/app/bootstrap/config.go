package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "30s" style strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	ServiceName string `yaml:"service_name"`
	HTTPPort    int    `yaml:"http_port"`
	GRPCPort    int    `yaml:"grpc_port"`

	DatabaseURL string `yaml:"database_url"`
	MaxDBConns  int32  `yaml:"max_db_conns"`
	RedisURL    string `yaml:"redis_url"`

	KafkaBrokers        []string `yaml:"kafka_brokers"`
	KafkaDomainTopic    string   `yaml:"kafka_domain_topic"`
	KafkaAnalyticsTopic string   `yaml:"kafka_analytics_topic"`
	KafkaDLQTopic       string   `yaml:"kafka_dlq_topic"`

	JWTSecret string `yaml:"jwt_secret"`

	DefaultCurrency string `yaml:"default_currency"`

	NotificationTTL     Duration `yaml:"notification_ttl"`
	OutboxFlushInterval Duration `yaml:"outbox_flush_interval"`
	SweepInterval       Duration `yaml:"sweep_interval"`

	OutboxFlushBatchSize int `yaml:"outbox_flush_batch_size"`
	SweepBatchSize       int `yaml:"sweep_batch_size"`

	Clients ClientsConfig `yaml:"clients"`
}

type ClientsConfig struct {
	Timeout         Duration      `yaml:"timeout"`
	ProjectURL      string        `yaml:"project_url"`
	TaskURL         string        `yaml:"task_url"`
	WorkspaceURL    string        `yaml:"workspace_url"`
	ChatURL         string        `yaml:"chat_url"`
	NotificationURL string        `yaml:"notification_url"`
}

// Load reads an optional YAML file and applies environment overrides on top.
// Environment always wins so deployments can tweak a shared file per replica.
func Load(path string) (Config, error) {
	cfg := Config{
		ServiceName:          "contract-engine",
		HTTPPort:             8080,
		GRPCPort:             9090,
		MaxDBConns:           10,
		DefaultCurrency:      "USD",
		NotificationTTL:      Duration(24 * time.Hour),
		OutboxFlushInterval:  Duration(5 * time.Second),
		SweepInterval:        Duration(time.Minute),
		OutboxFlushBatchSize: 100,
		SweepBatchSize:       50,
		Clients: ClientsConfig{
			Timeout: Duration(10 * time.Second),
		},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envString(&cfg.ServiceName, "SERVICE_NAME")
	envInt(&cfg.HTTPPort, "HTTP_PORT")
	envInt(&cfg.GRPCPort, "GRPC_PORT")
	envString(&cfg.DatabaseURL, "DATABASE_URL")
	envString(&cfg.RedisURL, "REDIS_URL")
	envStrings(&cfg.KafkaBrokers, "KAFKA_BROKERS")
	envString(&cfg.KafkaDomainTopic, "KAFKA_DOMAIN_TOPIC")
	envString(&cfg.KafkaAnalyticsTopic, "KAFKA_ANALYTICS_TOPIC")
	envString(&cfg.KafkaDLQTopic, "KAFKA_DLQ_TOPIC")
	envString(&cfg.JWTSecret, "JWT_SECRET")
	envString(&cfg.DefaultCurrency, "DEFAULT_CURRENCY")
	envDuration(&cfg.NotificationTTL, "NOTIFICATION_TTL")
	envDuration(&cfg.OutboxFlushInterval, "OUTBOX_FLUSH_INTERVAL")
	envDuration(&cfg.SweepInterval, "SWEEP_INTERVAL")
	envInt(&cfg.OutboxFlushBatchSize, "OUTBOX_FLUSH_BATCH_SIZE")
	envInt(&cfg.SweepBatchSize, "SWEEP_BATCH_SIZE")
	envDuration(&cfg.Clients.Timeout, "CLIENT_TIMEOUT")
	envString(&cfg.Clients.ProjectURL, "PROJECT_SERVICE_URL")
	envString(&cfg.Clients.TaskURL, "TASK_SERVICE_URL")
	envString(&cfg.Clients.WorkspaceURL, "WORKSPACE_SERVICE_URL")
	envString(&cfg.Clients.ChatURL, "CHAT_SERVICE_URL")
	envString(&cfg.Clients.NotificationURL, "NOTIFICATION_SERVICE_URL")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envStrings(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		*dst = out
	}
}

func envInt[T int | int32](dst *T, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = T(parsed)
		}
	}
}

func envDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = Duration(parsed)
		}
	}
}
