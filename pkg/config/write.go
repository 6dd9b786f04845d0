package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoshuaHockley/rlens/internal/bytesize"
)

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
		Thumbnails: ThumbnailsConfig{
			Dir:          DefaultCacheDir(),
			Size:         256,
			Save:         true,
			MaxCacheSize: 512 * bytesize.MiB,
		},
		Preload: PreloadConfig{Forward: 2, Backward: 1},
		Gallery: GalleryConfig{TileWidth: 200, HeightWidthRatio: 1},
		Metrics: MetricsConfig{Enabled: false, Listen: "localhost:9090"},
		Watch:   true,

		ShutdownTimeout: 5 * time.Second,
	}
}

// Write serializes the config as YAML to path, creating parent
// directories. Refuses to overwrite an existing file.
func (c *Config) Write(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %q already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %q: %w", path, err)
	}
	return nil
}
