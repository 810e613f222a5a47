package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	contents := `
server:
  host: "127.0.0.1"
  port: "12345"
  ws_port: "8080"
quiz:
  questions_file: "questions.json"
  max_questions: 7
redis:
  addr: "localhost:6379"
  ttl: "5m"
postgres:
  url: "postgres://quiz@localhost/quizdb"
log:
  level: "debug"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "12345" || cfg.Server.WSPort != "8080" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.QuestionsPerRound() != 7 {
		t.Fatalf("expected 7 questions per round, got %d", cfg.QuestionsPerRound())
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestQuestionsPerRoundDefault(t *testing.T) {
	var cfg Config
	if cfg.QuestionsPerRound() != DefaultMaxQuestions {
		t.Fatalf("expected default %d, got %d", DefaultMaxQuestions, cfg.QuestionsPerRound())
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("30s", time.Minute); d != 30*time.Second {
		t.Fatalf("expected 30s, got %v", d)
	}
	if d := TTLDuration("bogus", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", d)
	}
}
