package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshuaHockley/rlens/internal/bytesize"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 256, cfg.Thumbnails.Size)
	assert.True(t, cfg.Thumbnails.Save)
	assert.Equal(t, 512*bytesize.MiB, cfg.Thumbnails.MaxCacheSize)
	assert.NotEmpty(t, cfg.Thumbnails.Dir)
	assert.Equal(t, 2, cfg.Preload.Forward)
	assert.Equal(t, 1, cfg.Preload.Backward)
	assert.Equal(t, float64(200), cfg.Gallery.TileWidth)
	assert.Equal(t, float64(1), cfg.Gallery.HeightWidthRatio)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
logging:
  level: debug
  format: json
thumbnails:
  dir: /tmp/thumbs
  size: 128
  save: false
  max_cache_size: 2GiB
preload:
  forward: 5
  backward: 3
gallery:
  tile_width: 150
  height_width_ratio: 0.75
watch: false
shutdown_timeout: 30s
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/thumbs", cfg.Thumbnails.Dir)
	assert.Equal(t, 128, cfg.Thumbnails.Size)
	assert.False(t, cfg.Thumbnails.Save)
	assert.Equal(t, 2*bytesize.GiB, cfg.Thumbnails.MaxCacheSize)
	assert.Equal(t, 5, cfg.Preload.Forward)
	assert.Equal(t, 3, cfg.Preload.Backward)
	assert.Equal(t, 150.0, cfg.Gallery.TileWidth)
	assert.Equal(t, 0.75, cfg.Gallery.HeightWidthRatio)
	assert.False(t, cfg.Watch)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("RLENS_THUMBNAILS_SIZE", "64")
	t.Setenv("RLENS_LOGGING_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "thumbnails:\n  size: 128\n"))
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Thumbnails.Size)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(c *Config) {}},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "zero thumbnail size", mutate: func(c *Config) { c.Thumbnails.Size = 0 }, wantErr: true},
		{name: "negative preload", mutate: func(c *Config) { c.Preload.Forward = -1 }, wantErr: true},
		{name: "zero tile width", mutate: func(c *Config) { c.Gallery.TileWidth = 0 }, wantErr: true},
		{name: "negative ratio", mutate: func(c *Config) { c.Gallery.HeightWidthRatio = -1 }, wantErr: true},
		{name: "bad listen address", mutate: func(c *Config) { c.Metrics.Listen = "not an address" }, wantErr: true},
		{
			name: "metrics enabled without listen",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Listen = ""
			},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	def := Default()
	require.NoError(t, def.Write(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, def.Thumbnails.Size, cfg.Thumbnails.Size)
	assert.Equal(t, def.Preload, cfg.Preload)
	assert.Equal(t, def.Gallery, cfg.Gallery)

	// A second write must not clobber the existing file.
	require.Error(t, def.Write(path))
}
