package treemorph

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15000, cfg.FoliageCount)
	assert.Equal(t, 400, cfg.OrnamentCount)
	assert.Equal(t, 50, cfg.GiftCount)
	assert.Equal(t, float32(12), cfg.TreeHeight)
	assert.Equal(t, float32(4.5), cfg.TreeRadius)
	assert.Equal(t, float32(15), cfg.ChaosRadius)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero foliage", func(c *Config) { c.FoliageCount = 0 }, "foliageCount"},
		{"negative ornaments", func(c *Config) { c.OrnamentCount = -1 }, "ornamentCount"},
		{"zero gifts", func(c *Config) { c.GiftCount = 0 }, "giftCount"},
		{"zero height", func(c *Config) { c.TreeHeight = 0 }, "treeHeight"},
		{"negative radius", func(c *Config) { c.TreeRadius = -4.5 }, "treeRadius"},
		{"zero chaos radius", func(c *Config) { c.ChaosRadius = 0 }, "chaosRadius"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"zero width", func(c *Config) { c.WindowWidth = 0 }, "windowWidth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestConfig_ValidateReportsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FoliageCount = 0
	cfg.TreeHeight = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foliageCount")
	assert.Contains(t, err.Error(), "treeHeight")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"foliageCount": 2000, "treeHeight": 8.5, "seed": 42}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.FoliageCount)
	assert.Equal(t, float32(8.5), cfg.TreeHeight)
	assert.Equal(t, int64(42), cfg.Seed)
	// untouched fields keep their defaults
	assert.Equal(t, 400, cfg.OrnamentCount)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"foliageCount": "many"}`), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"giftCount": 0}`), 0o644))
	_, err = LoadConfig(invalid)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_BindFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	cfg.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"-foliage", "500", "-tree-height", "9.25", "-debug", "-seed", "7"}))
	assert.Equal(t, 500, cfg.FoliageCount)
	assert.Equal(t, float32(9.25), cfg.TreeHeight)
	assert.True(t, cfg.Debug)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, float32(4.5), cfg.TreeRadius)

	assert.Error(t, fs.Parse([]string{"-chaos-radius", "wide"}))
}

func TestConfig_Params(t *testing.T) {
	p := DefaultConfig().Params()
	assert.Equal(t, float32(12), p.TreeHeight)
	assert.Equal(t, float32(4.5), p.TreeRadius)
	assert.Equal(t, float32(15), p.ChaosRadius)
}
