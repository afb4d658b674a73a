package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := value.Value
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Config captures runtime configuration for gashd.
type Config struct {
	ListenAddress string         `yaml:"listen"`
	DatabaseDSN   string         `yaml:"database"`
	Rate          RateConfig     `yaml:"rate"`
	Swap          SwapConfig     `yaml:"swap"`
	Requests      RequestsConfig `yaml:"requests"`
}

// RateConfig tunes the mock conversion rate feed.
type RateConfig struct {
	Base      float64  `yaml:"base"`
	Variation float64  `yaml:"variation"`
	Floor     float64  `yaml:"floor"`
	TTL       Duration `yaml:"ttl"`
}

// SwapConfig controls swap validation and throttling.
type SwapConfig struct {
	MinAmount         float64  `yaml:"min_amount"`
	FirstSwapBonusPct float64  `yaml:"first_swap_bonus_pct"`
	MaxSwaps          int      `yaml:"max_swaps"`
	Window            Duration `yaml:"window"`
}

// RequestsConfig throttles raw requests per client address.
type RequestsConfig struct {
	Ceiling int      `yaml:"ceiling"`
	Window  Duration `yaml:"window"`
}

// Load reads configuration from the supplied path.
func Load(path string) (Config, error) {
	cfg := Config{}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	dec := yaml.NewDecoder(file)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	cfg := Config{}
	ApplyDefaults(&cfg)
	return cfg
}

// ApplyDefaults fills unset fields with the stock demo values.
func ApplyDefaults(cfg *Config) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":7080"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "file::memory:?cache=shared"
	}
	if cfg.Rate.Base == 0 {
		cfg.Rate.Base = 10
	}
	if cfg.Rate.Variation == 0 {
		cfg.Rate.Variation = 0.2
	}
	if cfg.Rate.Floor == 0 {
		cfg.Rate.Floor = 8
	}
	if cfg.Rate.TTL.Duration == 0 {
		cfg.Rate.TTL.Duration = 5 * time.Minute
	}
	if cfg.Swap.MinAmount == 0 {
		cfg.Swap.MinAmount = 0.1
	}
	if cfg.Swap.FirstSwapBonusPct == 0 {
		cfg.Swap.FirstSwapBonusPct = 5
	}
	if cfg.Swap.MaxSwaps == 0 {
		cfg.Swap.MaxSwaps = 5
	}
	if cfg.Swap.Window.Duration == 0 {
		cfg.Swap.Window.Duration = time.Hour
	}
	if cfg.Requests.Ceiling == 0 {
		cfg.Requests.Ceiling = 100
	}
	if cfg.Requests.Window.Duration == 0 {
		cfg.Requests.Window.Duration = time.Minute
	}
}

// Validate rejects configurations that cannot produce a sane rate feed.
func Validate(cfg Config) error {
	if cfg.Rate.Base <= 0 {
		return fmt.Errorf("rate.base must be positive")
	}
	if cfg.Rate.Floor <= 0 {
		return fmt.Errorf("rate.floor must be positive")
	}
	if cfg.Rate.Floor > cfg.Rate.Base {
		return fmt.Errorf("rate.floor must not exceed rate.base")
	}
	if cfg.Rate.Variation < 0 {
		return fmt.Errorf("rate.variation must not be negative")
	}
	if cfg.Rate.TTL.Duration <= 0 {
		return fmt.Errorf("rate.ttl must be positive")
	}
	if cfg.Swap.MinAmount <= 0 {
		return fmt.Errorf("swap.min_amount must be positive")
	}
	if cfg.Swap.MaxSwaps <= 0 {
		return fmt.Errorf("swap.max_swaps must be positive")
	}
	if cfg.Swap.Window.Duration <= 0 {
		return fmt.Errorf("swap.window must be positive")
	}
	if cfg.Requests.Ceiling <= 0 {
		return fmt.Errorf("requests.ceiling must be positive")
	}
	if cfg.Requests.Window.Duration <= 0 {
		return fmt.Errorf("requests.window must be positive")
	}
	return nil
}
