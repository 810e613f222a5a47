package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxQuestions is the round length when the config leaves it unset.
const DefaultMaxQuestions = 5

type Config struct {
	Server struct {
		Host   string `yaml:"host"`
		Port   string `yaml:"port"`
		WSPort string `yaml:"ws_port"`
	} `yaml:"server"`
	Quiz struct {
		QuestionsFile string `yaml:"questions_file"`
		MaxQuestions  int    `yaml:"max_questions"`
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// QuestionsPerRound returns the configured round length or the default.
func (c Config) QuestionsPerRound() int {
	if c.Quiz.MaxQuestions > 0 {
		return c.Quiz.MaxQuestions
	}
	return DefaultMaxQuestions
}

// TTLDuration parses a duration string or returns the fallback if empty or
// invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
