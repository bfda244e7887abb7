package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	ElasticURL             string `yaml:"elastic_url"`
	ElasticIndex           string `yaml:"elastic_index"`
	ElasticWaitIntervalMS  int    `yaml:"elastic_wait_interval_ms"`
	ElasticWaitMaxAttempts int    `yaml:"elastic_wait_max_attempts"`

	// PostgresDSN enables the search audit log; empty disables it.
	PostgresDSN string `yaml:"postgres_dsn"`

	SearchDefaultSize        int `yaml:"search_default_size"`
	SearchMaxSize            int `yaml:"search_max_size"`
	SearchMinimumShouldMatch int `yaml:"search_minimum_should_match"`

	SeedSampleData bool `yaml:"seed_sample_data"`
	SeedDocCount   int  `yaml:"seed_doc_count"`

	APIRateLimitRPS   int `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst int `yaml:"api_rate_limit_burst"`
	APIMaxInFlight    int `yaml:"api_max_in_flight"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.APIPort = env("API_PORT", cfg.APIPort)
	cfg.LogLevel = env("LOG_LEVEL", cfg.LogLevel)
	cfg.ElasticURL = env("ELASTIC_URL", cfg.ElasticURL)
	cfg.ElasticIndex = env("ELASTIC_INDEX", cfg.ElasticIndex)
	cfg.ElasticWaitIntervalMS = envInt("ELASTIC_WAIT_INTERVAL_MS", cfg.ElasticWaitIntervalMS)
	cfg.ElasticWaitMaxAttempts = envInt("ELASTIC_WAIT_MAX_ATTEMPTS", cfg.ElasticWaitMaxAttempts)
	cfg.PostgresDSN = env("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.SearchDefaultSize = envInt("SEARCH_DEFAULT_SIZE", cfg.SearchDefaultSize)
	cfg.SearchMaxSize = envInt("SEARCH_MAX_SIZE", cfg.SearchMaxSize)
	cfg.SearchMinimumShouldMatch = envInt("SEARCH_MINIMUM_SHOULD_MATCH", cfg.SearchMinimumShouldMatch)
	cfg.SeedSampleData = envBool("SEED_SAMPLE_DATA", cfg.SeedSampleData)
	cfg.SeedDocCount = envInt("SEED_DOC_COUNT", cfg.SeedDocCount)
	cfg.APIRateLimitRPS = envInt("API_RATE_LIMIT_RPS", cfg.APIRateLimitRPS)
	cfg.APIRateLimitBurst = envInt("API_RATE_LIMIT_BURST", cfg.APIRateLimitBurst)
	cfg.APIMaxInFlight = envInt("API_MAX_IN_FLIGHT", cfg.APIMaxInFlight)

	return cfg, nil
}

func defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		ElasticURL:             "http://localhost:9200",
		ElasticIndex:           "sample-data",
		ElasticWaitIntervalMS:  2000,
		ElasticWaitMaxAttempts: 30,

		SearchDefaultSize:        10,
		SearchMaxSize:            100,
		SearchMinimumShouldMatch: 1,

		SeedSampleData: true,
		SeedDocCount:   10,

		APIRateLimitRPS:   50,
		APIRateLimitBurst: 100,
		APIMaxInFlight:    256,
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
