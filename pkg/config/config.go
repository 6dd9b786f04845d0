// Package config loads rlens configuration from YAML files and
// environment variables.
//
// Sources are merged in precedence order: defaults, then the config
// file, then RLENS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/JoshuaHockley/rlens/internal/bytesize"
)

// Config is the complete rlens configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Thumbnails ThumbnailsConfig `mapstructure:"thumbnails" yaml:"thumbnails"`
	Preload    PreloadConfig    `mapstructure:"preload" yaml:"preload"`
	Gallery    GalleryConfig    `mapstructure:"gallery" yaml:"gallery"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`

	// Watch reloads images when their files change on disk.
	Watch bool `mapstructure:"watch" yaml:"watch"`

	// ShutdownTimeout bounds how long shutdown waits for an in-flight
	// load to finish.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
	// Output is "stderr", "stdout", or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// ThumbnailsConfig controls thumbnail generation and caching.
type ThumbnailsConfig struct {
	// Dir is the cache directory. Defaults to the user cache dir.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Size bounds the longer side of generated thumbnails, in pixels.
	Size int `mapstructure:"size" yaml:"size" validate:"gt=0"`
	// Save writes generated thumbnails back to the cache.
	Save bool `mapstructure:"save" yaml:"save"`
	// MaxCacheSize caps the cache directory; 0 means unlimited.
	MaxCacheSize bytesize.ByteSize `mapstructure:"max_cache_size" yaml:"max_cache_size"`
}

// PreloadConfig sizes the full-image preload window around the cursor.
type PreloadConfig struct {
	Forward  int `mapstructure:"forward" yaml:"forward" validate:"gte=0"`
	Backward int `mapstructure:"backward" yaml:"backward" validate:"gte=0"`
}

// GalleryConfig controls the thumbnail grid layout.
type GalleryConfig struct {
	// TileWidth is the target tile width in pixels.
	TileWidth float64 `mapstructure:"tile_width" yaml:"tile_width" validate:"gt=0"`
	// HeightWidthRatio is the target tile height to width ratio.
	HeightWidthRatio float64 `mapstructure:"height_width_ratio" yaml:"height_width_ratio" validate:"gt=0"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen" validate:"omitempty,hostname_port"`
}

// envPrefix namespaces environment variable overrides, e.g.
// RLENS_THUMBNAILS_SIZE=512.
const envPrefix = "RLENS"

// Load reads configuration from path. An empty path falls back to the
// default config file location; a missing file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setupViper(v)

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupViper(v *viper.Viper) {
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("thumbnails.size", 256)
	v.SetDefault("thumbnails.save", true)
	v.SetDefault("thumbnails.max_cache_size", "512MiB")
	v.SetDefault("preload.forward", 2)
	v.SetDefault("preload.backward", 1)
	v.SetDefault("gallery.tile_width", 200)
	v.SetDefault("gallery.height_width_ratio", 1)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "localhost:9090")
	v.SetDefault("watch", true)
	v.SetDefault("shutdown_timeout", "5s")
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		path = DefaultConfigPath()
		if _, err := os.Stat(path); err != nil {
			// No config file; defaults and environment apply.
			return nil
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return nil
}

// decodeHooks combines the decode hooks for custom config types.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize,
// so config files can use sizes like "2Gi", "500MB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration, so config
// files can use durations like "30s" or "5m". Raw integers are taken
// as nanoseconds.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// ApplyDefaults fills values that depend on the runtime environment
// and cannot be static viper defaults.
func (c *Config) ApplyDefaults() {
	if c.Thumbnails.Dir == "" {
		c.Thumbnails.Dir = DefaultCacheDir()
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Validate checks field constraints and cross-field consistency.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("invalid config: field %q fails %q", ve.Namespace(), ve.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("invalid config: metrics enabled without a listen address")
	}
	return nil
}

// DefaultConfigPath returns the default config file location under the
// user config dir.
func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "rlens.yaml")
	}
	return filepath.Join(base, "rlens", "config.yaml")
}

// DefaultCacheDir returns the default thumbnail cache location under
// the user cache dir.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", "rlens-thumbnails")
	}
	return filepath.Join(base, "rlens", "thumbnails")
}
