package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"` // "development" or "production"
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		Expiry       string `yaml:"expiry"`       // how long an open quiz survives, default 24h
		MaxQuestions int    `yaml:"maxQuestions"` // upper bound per quiz, default 20
	} `yaml:"quiz"`
	Scoring struct {
		XPPerCorrect int    `yaml:"xpPerCorrect"` // default 2
		Tiers        []Tier `yaml:"tiers"`        // default: 80+ earns +5, 50+ earns +2
		ModuleXPDiv  int    `yaml:"moduleXpDiv"`  // module completion XP = score / this, default 10
	} `yaml:"scoring"`
	Leveling struct {
		K int `yaml:"k"` // level = floor(sqrt(xp/K)) + 1, default 50
	} `yaml:"leveling"`
	Profile struct {
		StrengthMin int `yaml:"strengthMin"` // subject avg at or above this is a strength, default 80
		WeaknessMax int `yaml:"weaknessMax"` // subject avg below this is a weakness, default 50
	} `yaml:"profile"`
	Generator struct {
		Provider string `yaml:"provider"` // "static" or "openai"
		OpenAI   struct {
			APIKey  string `yaml:"apiKey"`
			BaseURL string `yaml:"baseUrl"`
			Model   string `yaml:"model"`
		} `yaml:"openai"`
	} `yaml:"generator"`
	Catalog struct {
		TTL string `yaml:"ttl"` // module catalog cache TTL, default 10m
	} `yaml:"catalog"`
}

// Tier is one row of the completion-bonus table, matched top-down.
type Tier struct {
	MinPercent int `yaml:"minPercent"`
	Bonus      int `yaml:"bonus"`
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

// TTLDuration parses a duration string or returns the fallback if empty or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
