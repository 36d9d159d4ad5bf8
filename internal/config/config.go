package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete tokenscope configuration.
type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	HTTP      HTTPConfig      `yaml:"http"`
	Scan      ScanConfig      `yaml:"scan"`
	Monitor   MonitorConfig   `yaml:"monitor"`
}

// ProvidersConfig holds the two upstream API endpoints and credentials.
// API keys are read from the environment, never from the file.
type ProvidersConfig struct {
	Nansen    ProviderConfig `yaml:"nansen"`
	CoinGecko ProviderConfig `yaml:"coingecko"`
}

// ProviderConfig configures one upstream provider.
type ProviderConfig struct {
	BaseURL   string  `yaml:"base_url"`
	APIKeyEnv string  `yaml:"api_key_env"` // env var holding the key
	RPS       float64 `yaml:"rps"`         // token-bucket refill rate
	Burst     int     `yaml:"burst"`       // token-bucket capacity
	CacheTTL  int     `yaml:"cache_ttl_secs"`
}

// APIKey reads the provider's key from the configured environment variable.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// HTTPConfig configures the shared transport layer.
type HTTPConfig struct {
	TimeoutSecs    int `yaml:"timeout_secs"`
	MaxRetries     int `yaml:"max_retries"`
	BackoffBaseMS  int `yaml:"backoff_base_ms"`
	BackoffMaxMS   int `yaml:"backoff_max_ms"`
	MaxConcurrency int `yaml:"max_concurrency"`
}

func (h HTTPConfig) Timeout() time.Duration     { return time.Duration(h.TimeoutSecs) * time.Second }
func (h HTTPConfig) BackoffBase() time.Duration { return time.Duration(h.BackoffBaseMS) * time.Millisecond }
func (h HTTPConfig) BackoffMax() time.Duration  { return time.Duration(h.BackoffMaxMS) * time.Millisecond }

// WatchlistEntry is one token on the background scan list. Either a bare
// symbol (resolved through the normal pipeline) or an explicit
// chain+address pair for tokens the market-data provider does not index.
type WatchlistEntry struct {
	Symbol  string `yaml:"symbol"`
	Chain   string `yaml:"chain,omitempty"`
	Address string `yaml:"address,omitempty"`
}

// ScanConfig configures the watchlist scanner.
type ScanConfig struct {
	Watchlist []WatchlistEntry `yaml:"watchlist"`
	DelaySecs int              `yaml:"delay_secs"` // inter-token courtesy delay
	MinScore  int              `yaml:"min_score"`
}

func (s ScanConfig) Delay() time.Duration { return time.Duration(s.DelaySecs) * time.Second }

// MonitorConfig configures the health/metrics HTTP server.
type MonitorConfig struct {
	Port int `yaml:"port"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Providers: ProvidersConfig{
			Nansen: ProviderConfig{
				BaseURL:   "https://api.nansen.ai/api/v1",
				APIKeyEnv: "NANSEN_API_KEY",
				RPS:       2,
				Burst:     4,
				CacheTTL:  0,
			},
			CoinGecko: ProviderConfig{
				BaseURL:   "https://api.coingecko.com/api/v3",
				APIKeyEnv: "COINGECKO_API_KEY",
				RPS:       0.5, // free tier is ~30/min; stay well under
				Burst:     2,
				CacheTTL:  300,
			},
		},
		HTTP: HTTPConfig{
			TimeoutSecs:    12,
			MaxRetries:     3,
			BackoffBaseMS:  500,
			BackoffMaxMS:   8000,
			MaxConcurrency: 4,
		},
		Scan: ScanConfig{
			DelaySecs: 5,
			MinScore:  30,
		},
		Monitor: MonitorConfig{
			Port: 8090,
		},
	}
}

// Load reads a YAML config file, layering it over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Providers.Nansen.BaseURL == "" {
		return fmt.Errorf("providers.nansen.base_url is required")
	}
	if c.Providers.CoinGecko.BaseURL == "" {
		return fmt.Errorf("providers.coingecko.base_url is required")
	}
	if c.HTTP.TimeoutSecs <= 0 {
		return fmt.Errorf("http.timeout_secs must be positive, got %d", c.HTTP.TimeoutSecs)
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative, got %d", c.HTTP.MaxRetries)
	}
	if c.Scan.DelaySecs < 0 {
		return fmt.Errorf("scan.delay_secs must not be negative, got %d", c.Scan.DelaySecs)
	}
	if c.Scan.MinScore < 0 {
		return fmt.Errorf("scan.min_score must not be negative, got %d", c.Scan.MinScore)
	}
	for i, entry := range c.Scan.Watchlist {
		if entry.Symbol == "" && entry.Address == "" {
			return fmt.Errorf("scan.watchlist[%d]: symbol or address is required", i)
		}
		if entry.Address != "" && entry.Chain == "" {
			return fmt.Errorf("scan.watchlist[%d]: address entries need a chain", i)
		}
	}
	if c.Monitor.Port <= 0 || c.Monitor.Port > 65535 {
		return fmt.Errorf("monitor.port out of range: %d", c.Monitor.Port)
	}
	return nil
}
