package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.Kafka.Topic != "roster.audit" {
		t.Fatalf("expected default topic roster.audit, got %q", cfg.Kafka.Topic)
	}
	if cfg.DraftTTL != 24*time.Hour {
		t.Fatalf("expected 24h draft TTL, got %v", cfg.DraftTTL)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := []byte("addr: \":9000\"\nkafka:\n  brokers: [\"kafka-1:9092\", \"kafka-1:9092\", \"kafka-2:9092\"]\n")
	if err := os.WriteFile(path, yamlBody, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PATROLBOARD_CONFIG", path)
	t.Setenv("PATROLBOARD_ADDR", ":9090")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("env must override yaml, got %q", cfg.Addr)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("expected deduped broker list of 2, got %v", cfg.Kafka.Brokers)
	}
}

func TestBadDurationRejected(t *testing.T) {
	t.Setenv("PATROLBOARD_DRAFT_TTL", "not-a-duration")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}
