package cli

import (
	"context"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
)

// Cache backends selectable in the config file.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// defaultServeAddr is the HTTP API listen address when the config does
// not set one.
const defaultServeAddr = ":8080"

// =============================================================================
// Config
// =============================================================================

// Config holds the user settings loaded from config.toml. Flags
// override config values; config values override the defaults.
type Config struct {
	// Digits is the float precision for exported and generated
	// literals. Zero selects the built-in default.
	Digits int `toml:"digits"`

	// AssetMode is the default datablock policy for replay and script
	// generation: none, proxy or bundle.
	AssetMode string `toml:"asset_mode"`

	// Names decorates generated export filenames.
	Names NamesConfig `toml:"names"`

	Cache CacheConfig `toml:"cache"`
	Serve ServeConfig `toml:"serve"`
}

// NamesConfig mirrors the affix slots of export filenames.
type NamesConfig struct {
	Prefix1 string `toml:"prefix1"`
	Prefix2 string `toml:"prefix2"`
	Suffix1 string `toml:"suffix1"`
}

// Affixes converts the config slots into filename affixes.
func (n NamesConfig) Affixes() bndl.Affixes {
	return bndl.Affixes{Prefix1: n.Prefix1, Prefix2: n.Prefix2, Suffix1: n.Suffix1}
}

// CacheConfig selects and tunes the result cache backend.
type CacheConfig struct {
	// Backend is file, redis or none. Empty selects file.
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Empty selects
	// ~/.cache/bndl.
	Dir string `toml:"dir"`

	// TTL is the lifetime of cached results, as a duration string
	// ("30m", "24h"). Zero stores without expiration.
	TTL duration `toml:"ttl"`

	// RedisURL is the redis backend's connection URL.
	RedisURL string `toml:"redis_url"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// duration wraps time.Duration for TOML string decoding.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML values
// like ttl = "24h".
func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// defaultConfig returns the settings used when no config file exists.
func defaultConfig() Config {
	return Config{
		AssetMode: "proxy",
		Cache:     CacheConfig{Backend: cacheBackendFile, TTL: duration{24 * time.Hour}},
		Serve:     ServeConfig{Addr: defaultServeAddr},
	}
}

// loadConfig reads the config file at path, or the default location
// when path is empty. A missing default file yields the defaults; a
// missing explicit --config path is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file %s does not exist", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "load config %s", path)
	}

	switch cfg.Cache.Backend {
	case "", cacheBackendFile:
		cfg.Cache.Backend = cacheBackendFile
	case cacheBackendRedis, cacheBackendNone:
	default:
		return cfg, errors.New(errors.ErrCodeInvalidInput,
			"config %s: unknown cache backend %q (want file, redis or none)", path, cfg.Cache.Backend)
	}
	if _, err := assets.ParseMode(cfg.AssetMode); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// =============================================================================
// Context Plumbing
// =============================================================================

// configKey is the context key for storing the loaded config.
const configKey ctxKey = 1

// withConfig returns a new context with the config attached.
func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext retrieves the config from ctx, or the defaults if
// none is attached.
func configFromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey).(Config); ok {
		return cfg
	}
	return defaultConfig()
}
