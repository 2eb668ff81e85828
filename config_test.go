package garden

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/garden/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garden.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30, cfg.Fireflies.Count)
	assert.Equal(t, 0.001, cfg.Koi.Step)
	assert.Len(t, cfg.Koi.Path, len(GardenPath))

	cfg.Koi.Path[0][0] = 99
	assert.NotEqual(t, 99.0, GardenPath[0][0], "defaults own their path")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
clear_color = "#101010"

[water]
color1 = "#000000"

[fireflies]
count = 12

[koi]
mode = "time"
step = 0.05

[garden.shishi]
ease = "sine.inout"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "#101010", cfg.ClearColor)
	assert.Equal(t, "#000000", cfg.Water.Color1)
	assert.Equal(t, "#e1c1eb", cfg.Water.Color2)
	assert.Equal(t, 12, cfg.Fireflies.Count)
	assert.Equal(t, "time", cfg.Koi.Mode)
	assert.Equal(t, 0.05, cfg.Koi.Step)
	assert.Equal(t, "sine.inout", cfg.Garden.Shishi.Ease)
	assert.Equal(t, float32(2), cfg.Garden.Shishi.Duration)
	assert.Equal(t, 150, cfg.Water.Segments)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[water]\ncolour1 = \"#000000\"\n"))
	assert.ErrorContains(t, err, "unknown keys water.colour1")
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[fog]\ncolor = \"fog\"\n"))
	assert.ErrorContains(t, err, "fog.color")

	_, err = LoadConfig(writeConfig(t, "[koi]\npath = [[0.0, 0.0, 0.0], [1.0, 0.0, 0.0]]\n"))
	var curveErr *core.InvalidCurveError
	assert.True(t, errors.As(err, &curveErr))

	_, err = LoadConfig(writeConfig(t, "[koi]\nmode = \"warp\"\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "[garden.shishi]\nease = \"wobble\"\n"))
	assert.ErrorContains(t, err, "unknown easing")

	_, err = LoadConfig(writeConfig(t, "[fireflies]\ncount = -1\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "debug = \"yes\"\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
