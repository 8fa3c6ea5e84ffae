package pipeline

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/meshtopo/pkg/cache"
	"github.com/matzehuels/meshtopo/pkg/errors"
)

// Config is the layout of a meshtopo TOML config file:
//
//	[pipeline]
//	predicate = "mapped"
//	surface   = "cylinder"
//	radius    = 2.0
//	max_edge  = 0.25
//
//	[cache]
//	dir = "~/.cache/meshtopo"
type Config struct {
	Pipeline Options      `toml:"pipeline"`
	Cache    CacheConfig  `toml:"cache"`
	Server   ServerConfig `toml:"server"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Dir is the file cache directory.
	Dir string `toml:"dir"`
	// RedisURL selects the Redis cache when set.
	RedisURL string `toml:"redis_url"`
	// Disabled turns caching off.
	Disabled bool `toml:"disabled"`
	// Prefix namespaces every key, so several deployments can share one
	// Redis instance.
	Prefix string `toml:"prefix"`
}

// Keyer returns the cache keyer for this configuration.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Prefix)
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// LoadConfig reads a TOML config file. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	return ParseConfig(string(data))
}

// ParseConfig decodes TOML config text.
func ParseConfig(text string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown config key %q", undecoded[0].String())
	}
	return &cfg, nil
}
