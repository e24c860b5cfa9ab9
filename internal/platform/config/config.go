// Package config assembles process configuration from the environment with
// an optional YAML overlay, so main stays lean and deployments can choose
// either style.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pstrings "patrolboard/pkg/platform/strings"
)

// Config captures everything the server binary needs to start.
type Config struct {
	Addr          string      `yaml:"addr"`
	OperatorToken string      `yaml:"operator_token"`
	LogLevel      string      `yaml:"log_level"`
	PostgresURL   string      `yaml:"postgres_url"`
	SQLitePath    string      `yaml:"sqlite_path"`
	Redis         RedisConfig `yaml:"redis"`
	Kafka         KafkaConfig `yaml:"kafka"`
	DraftTTL      time.Duration
}

// RedisConfig configures the draft-recovery cache. Empty URL disables it.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KafkaConfig configures the audit event publisher. Empty broker list
// disables it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// FromEnv builds a Config from environment variables. When
// PATROLBOARD_CONFIG names a YAML file, its values are loaded first and env
// vars override per field.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:     ":8080",
		LogLevel: "info",
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka:    KafkaConfig{Topic: "roster.audit"},
		DraftTTL: 24 * time.Hour,
	}

	if path := os.Getenv("PATROLBOARD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	overlayString(&cfg.Addr, "PATROLBOARD_ADDR")
	overlayString(&cfg.OperatorToken, "PATROLBOARD_OPERATOR_TOKEN")
	overlayString(&cfg.LogLevel, "PATROLBOARD_LOG_LEVEL")
	overlayString(&cfg.PostgresURL, "PATROLBOARD_POSTGRES_URL")
	overlayString(&cfg.SQLitePath, "PATROLBOARD_SQLITE_PATH")
	overlayString(&cfg.Redis.URL, "PATROLBOARD_REDIS_URL")
	overlayString(&cfg.Kafka.Topic, "PATROLBOARD_KAFKA_TOPIC")
	if v := os.Getenv("PATROLBOARD_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("PATROLBOARD_DRAFT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PATROLBOARD_DRAFT_TTL: %w", err)
		}
		cfg.DraftTTL = d
	}
	if v := os.Getenv("PATROLBOARD_REDIS_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PATROLBOARD_REDIS_POOL_SIZE: %w", err)
		}
		cfg.Redis.PoolSize = n
	}

	cfg.Kafka.Brokers = pstrings.DedupeAndTrim(cfg.Kafka.Brokers)

	if cfg.OperatorToken == "" {
		// Development default; deployments must override.
		cfg.OperatorToken = "dev-operator-token"
	}

	return cfg, nil
}

func overlayString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
