// Package config loads villas settings from defaults, a YAML file, the
// environment and command-line flags.
//
// Precedence, lowest to highest:
//
//  1. built-in defaults
//  2. villas.yaml in the working directory, or ~/.config/villas/config.yaml
//  3. VILLAS_* environment variables (VILLAS_STORE_BACKEND -> store.backend)
//  4. flags explicitly set on the command line
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/villas/pkg/cache"
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/pipeline"
	"github.com/matzehuels/villas/pkg/store/redis"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "VILLAS_"

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the supported store backends.
var Backends = []string{BackendFile, BackendMemory, BackendRedis, BackendMongo}

// Config is the merged configuration.
type Config struct {
	Verbose bool         `koanf:"verbose"`
	Cache   CacheConfig  `koanf:"cache"`
	Store   StoreConfig  `koanf:"store"`
	Server  ServerConfig `koanf:"server"`
	Render  RenderConfig `koanf:"render"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`

	k *koanf.Koanf
}

// CacheConfig selects the render cache.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Dir      string        `koanf:"dir"`       // file cache directory, empty for ~/.cache/villas
	RedisURL string        `koanf:"redis_url"` // use Redis instead of the file cache when set
	Prefix   string        `koanf:"prefix"`    // key scope, for sharing one Redis database
	TTL      time.Duration `koanf:"ttl"`
}

// StoreConfig selects the blueprint store.
type StoreConfig struct {
	Backend         string `koanf:"backend"`
	Dir             string `koanf:"dir"`
	RedisURL        string `koanf:"redis_url"`
	RedisPrefix     string `koanf:"redis_prefix"`
	MongoURI        string `koanf:"mongo_uri"`
	MongoDatabase   string `koanf:"mongo_database"`
	MongoCollection string `koanf:"mongo_collection"`
}

// ServerConfig configures `villas serve`.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// RenderConfig holds render defaults applied when flags are not given.
type RenderConfig struct {
	CellSize int     `koanf:"cell_size"`
	Scale    float64 `koanf:"scale"`
	Regions  bool    `koanf:"regions"`
	Frame    bool    `koanf:"frame"`
}

func defaults() map[string]any {
	return map[string]any{
		"verbose":                 false,
		"cache.enabled":           true,
		"cache.dir":               "",
		"cache.redis_url":         "",
		"cache.prefix":            "",
		"cache.ttl":               cache.TTLArtifact.String(),
		"store.backend":           BackendFile,
		"store.dir":               "",
		"store.redis_url":         "",
		"store.redis_prefix":      redis.DefaultPrefix,
		"store.mongo_uri":         "",
		"store.mongo_database":    "villas",
		"store.mongo_collection":  "blueprints",
		"server.addr":             ":8080",
		"server.shutdown_timeout": (10 * time.Second).String(),
		"render.cell_size":        pipeline.DefaultCellSize,
		"render.scale":            pipeline.DefaultScale,
		"render.regions":          false,
		"render.frame":            false,
	}
}

// flagKeys maps command-line flags to config keys. Flags not listed here are
// command options, not configuration.
var flagKeys = map[string]string{
	"verbose":   "verbose",
	"cache-dir": "cache.dir",
	"store":     "store.backend",
	"store-dir": "store.dir",
	"addr":      "server.addr",
	"cell-size": "render.cell_size",
	"scale":     "render.scale",
	"regions":   "render.regions",
	"frame":     "render.frame",
}

// Load reads the configuration. path is an explicit config file; when empty
// the default locations are searched. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load defaults")
	}

	used := findConfigFile(path)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config file %s", used)
		}
	}

	// VILLAS_STORE_REDIS_URL -> store.redis_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	cfg.File = used
	cfg.k = k
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns explicit, or the first default location that exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{"villas.yaml", "villas.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "villas", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Validate checks backend names, required connection settings and render bounds.
func (c *Config) Validate() error {
	if !slices.Contains(Backends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid store backend: %q (must be one of: %s)", c.Store.Backend, strings.Join(Backends, ", "))
	}
	if c.Store.Backend == BackendRedis && c.Store.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store.redis_url is required for the redis backend")
	}
	if c.Store.Backend == BackendMongo && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if err := pipeline.ValidateCellSize(c.Render.CellSize); err != nil {
		return err
	}
	return pipeline.ValidateScale(c.Render.Scale)
}

// YAML returns the effective configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	if c.k == nil {
		return nil, errors.New(errors.ErrCodeInternal, "config was not loaded")
	}
	return c.k.Marshal(yaml.Parser())
}
