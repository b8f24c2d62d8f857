package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Marketplace struct {
		GraphQLEndpoint string  `yaml:"graphql_endpoint"`
		RequestsPerSec  float64 `yaml:"requests_per_sec"`
	} `yaml:"marketplace"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	Extension struct {
		Secret        string        `yaml:"secret"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
		CacheCapacity int           `yaml:"cache_capacity"`
	} `yaml:"extension"`
	Valuation struct {
		BatchLimit int `yaml:"batch_limit"`
	} `yaml:"valuation"`
	Access struct {
		TrialRequests int           `yaml:"trial_requests"`
		RateWindow    time.Duration `yaml:"rate_window"`
		RateMax       int           `yaml:"rate_max"`
	} `yaml:"access"`
	Pulse struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"pulse"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; env vars and
// defaults still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("AXIE_GRAPHQL_ENDPOINT"); v != "" {
		cfg.Marketplace.GraphQLEndpoint = v
	}
	if v := os.Getenv("GOOGLE_AI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GOOGLE_AI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("EXTENSION_SECRET"); v != "" {
		cfg.Extension.Secret = v
	}
	if v := os.Getenv("EXTENSION_CACHE_TTL_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			cfg.Extension.CacheTTL = time.Duration(sec) * time.Second
		}
	}
	if v := os.Getenv("BATCH_VALUATION_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Valuation.BatchLimit = n
		}
	}
	if v := os.Getenv("TRIAL_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Access.TrialRequests = n
		}
	}

	// Defaults
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "./axievale.db"
	}
	if cfg.Marketplace.GraphQLEndpoint == "" {
		cfg.Marketplace.GraphQLEndpoint = "https://graphql-gateway.axieinfinity.com/graphql"
	}
	if cfg.Marketplace.RequestsPerSec == 0 {
		cfg.Marketplace.RequestsPerSec = 5
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Extension.CacheTTL == 0 {
		cfg.Extension.CacheTTL = 60 * time.Second
	}
	if cfg.Extension.CacheCapacity == 0 {
		cfg.Extension.CacheCapacity = 500
	}
	if cfg.Valuation.BatchLimit == 0 {
		cfg.Valuation.BatchLimit = 10
	}
	if cfg.Access.TrialRequests == 0 {
		cfg.Access.TrialRequests = 100
	}
	if cfg.Access.RateWindow == 0 {
		cfg.Access.RateWindow = time.Minute
	}
	if cfg.Access.RateMax == 0 {
		cfg.Access.RateMax = 30
	}
	if cfg.Pulse.Interval == 0 {
		cfg.Pulse.Interval = 15 * time.Minute
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Marketplace.GraphQLEndpoint == "" {
		return fmt.Errorf("marketplace.graphql_endpoint is required")
	}
	if c.Extension.CacheCapacity < 1 {
		return fmt.Errorf("extension.cache_capacity must be positive")
	}
	if c.Valuation.BatchLimit < 1 {
		return fmt.Errorf("valuation.batch_limit must be positive")
	}
	return nil
}
