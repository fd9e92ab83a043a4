package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAML_OverridesDefaults(t *testing.T) {
	input := `
log:
  level: debug
demo:
  name: sphereplane
  count: 25
  seed: 99
  interval_ms: 15
  collision_mode: batched
`
	cfg, err := LoadYAML(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Encoding, "unset fields keep defaults")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sphereplane", cfg.Demo.Name)
	assert.Equal(t, 25, cfg.Demo.Count)
	assert.Equal(t, int64(99), cfg.Demo.Seed)
	assert.Equal(t, 15*time.Millisecond, cfg.Demo.Interval())
	assert.Equal(t, CollisionBatched, cfg.Demo.CollisionMode)
}

func TestLoadYAML_Empty(t *testing.T) {
	cfg, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown field", "demo:\n  colour: red\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad encoding", "log:\n  encoding: xml\n"},
		{"negative count", "demo:\n  count: -1\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad mode", "demo:\n  collision_mode: sometimes\n"},
		{"negative interval", "demo:\n  interval_ms: -5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}

	_, err := LoadYAML(strings.NewReader("demo:\n  count: -1\n"))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("demo:\n  name: raysphere\n  count: 7\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "raysphere", cfg.Demo.Name)
	assert.Equal(t, 7, cfg.Demo.Count)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfig_Logger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"
	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.Equal(t, "warn", logger.GetLevel().String())
}
