// Package config loads the YAML configuration for the orchestrator CLI and
// ops endpoint. The library itself takes all settings through options; this
// package exists so binaries have one defaulted, validated source of them.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arcfactory/arc/internal/cache"
)

// Duration wraps time.Duration with YAML string parsing ("500ms", "2m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// EngineConfig holds execution defaults.
type EngineConfig struct {
	BaseDelay      Duration `yaml:"base_delay"`
	DefaultTimeout Duration `yaml:"default_timeout"`
	MaxRetries     int      `yaml:"max_retries"`
}

// SelectorConfig holds budget-selection tuning.
type SelectorConfig struct {
	UsageThreshold float64 `yaml:"usage_threshold"`
	HotCostCeiling float64 `yaml:"hot_cost_ceiling"`
	CatalogPath    string  `yaml:"catalog_path"`
}

// BudgetConfig holds per-run resource maxima.
type BudgetConfig struct {
	MaxTokens float64 `yaml:"max_tokens"`
	MaxCost   float64 `yaml:"max_cost"`
	MaxTime   float64 `yaml:"max_time"`
}

// TierConfig bounds one cache tier.
type TierConfig struct {
	MaxEntries   int          `yaml:"max_entries"`
	MaxSizeBytes int64        `yaml:"max_size_bytes"`
	TTL          Duration     `yaml:"ttl"`
	Policy       cache.Policy `yaml:"policy"`
}

// CacheConfig holds both tiers and the prune cadence.
type CacheConfig struct {
	Data          TierConfig `yaml:"data"`
	Output        TierConfig `yaml:"output"`
	PruneInterval Duration   `yaml:"prune_interval"`
}

// RedisConfig enables output write-through persistence.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`

	// EncryptionKey, when set, encrypts persisted outputs at rest.
	// Base64-encoded 32-byte key.
	EncryptionKey string `yaml:"encryption_key"`

	// MaskKeys lists regexp patterns of JSON field names whose values are
	// masked before persisting.
	MaskKeys []string `yaml:"mask_keys"`
}

// OpsConfig configures the operational HTTP endpoint.
type OpsConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the root configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Engine   EngineConfig   `yaml:"engine"`
	Selector SelectorConfig `yaml:"selector"`
	Budget   BudgetConfig   `yaml:"budget"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConfig    `yaml:"redis"`
	Ops      OpsConfig      `yaml:"ops"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Engine: EngineConfig{
			BaseDelay:  Duration(500 * time.Millisecond),
			MaxRetries: 1,
		},
		Selector: SelectorConfig{
			UsageThreshold: 0.8,
			HotCostCeiling: 3,
		},
		Budget: BudgetConfig{
			MaxTokens: 1_000_000,
			MaxCost:   50,
			MaxTime:   3600,
		},
		Cache: CacheConfig{
			Data: TierConfig{
				MaxEntries:   500,
				MaxSizeBytes: 50 << 20,
				TTL:          Duration(15 * time.Minute),
				Policy:       cache.LRU,
			},
			Output: TierConfig{
				MaxEntries:   200,
				MaxSizeBytes: 20 << 20,
				TTL:          Duration(24 * time.Hour),
				Policy:       cache.LFU,
			},
			PruneInterval: Duration(time.Minute),
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			Prefix:  "arc:output:",
		},
		Ops: OpsConfig{
			Listen: ":8700",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values with field-level errors.
func (c Config) Validate() error {
	if c.Engine.MaxRetries < 1 {
		return fmt.Errorf("engine.max_retries must be at least 1, got %d", c.Engine.MaxRetries)
	}
	if c.Selector.UsageThreshold <= 0 || c.Selector.UsageThreshold > 1 {
		return fmt.Errorf("selector.usage_threshold must be in (0,1], got %v", c.Selector.UsageThreshold)
	}
	if c.Selector.HotCostCeiling < 1 || c.Selector.HotCostCeiling > 10 {
		return fmt.Errorf("selector.hot_cost_ceiling must be in [1,10], got %v", c.Selector.HotCostCeiling)
	}
	for _, tier := range []struct {
		name string
		cfg  TierConfig
	}{{"data", c.Cache.Data}, {"output", c.Cache.Output}} {
		if tier.cfg.MaxEntries < 1 {
			return fmt.Errorf("cache.%s.max_entries must be positive, got %d", tier.name, tier.cfg.MaxEntries)
		}
		switch tier.cfg.Policy {
		case cache.LRU, cache.LFU, cache.FIFO:
		default:
			return fmt.Errorf("cache.%s.policy must be lru, lfu or fifo, got %q", tier.name, tier.cfg.Policy)
		}
	}
	if c.Redis.EncryptionKey != "" {
		key, err := c.Redis.EncryptionKeyBytes()
		if err != nil {
			return fmt.Errorf("redis.encryption_key must be base64: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("redis.encryption_key must decode to 32 bytes, got %d", len(key))
		}
	}
	for _, p := range c.Redis.MaskKeys {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("redis.mask_keys: invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

// EncryptionKeyBytes returns the decoded encryption key, or nil when unset.
func (r RedisConfig) EncryptionKeyBytes() ([]byte, error) {
	if r.EncryptionKey == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(r.EncryptionKey)
}

// TierCacheConfig converts a tier section to the cache package's Config.
func (t TierConfig) TierCacheConfig() cache.Config {
	return cache.Config{
		MaxEntries:   t.MaxEntries,
		MaxSizeBytes: t.MaxSizeBytes,
		DefaultTTL:   t.TTL.Std(),
		Policy:       t.Policy,
	}
}
