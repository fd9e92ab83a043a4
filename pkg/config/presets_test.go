package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePreset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"bbox-crowd", "Bbox Crowd"},
		{"heavy_rain", "Heavy Rain"},
		{"UPPER-case", "Upper Case"},
		{"simple", "Simple"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, titleCase(tt.input))
		})
	}
}

func TestParsePresetMetadata(t *testing.T) {
	dir := t.TempDir()

	full := writePreset(t, dir, "crowd.yaml", `# Preset: Crowded Box
# Description: Lots of spheres
# Group: Bounding Box
demo:
  name: bbox
  count: 120
`)
	info, err := ParsePresetMetadata(full)
	require.NoError(t, err)
	assert.Equal(t, PresetInfo{
		ID:          "crowd",
		Name:        "Crowded Box",
		Description: "Lots of spheres",
		Group:       "Bounding Box",
		Demo:        "bbox",
		FilePath:    full,
	}, info)

	bare := writePreset(t, dir, "quiet_plane.yml", "demo:\n  name: sphereplane\n# Preset: ignored after the header\n")
	info, err = ParsePresetMetadata(bare)
	require.NoError(t, err)
	assert.Equal(t, "Quiet Plane", info.Name)
	assert.Equal(t, "Presets", info.Group)
	assert.Equal(t, "sphereplane", info.Demo)

	broken := writePreset(t, dir, "broken.yaml", "demo:\n  bogus: 1\n")
	_, err = ParsePresetMetadata(broken)
	assert.Error(t, err)
}

func TestListAndLoadPresetsIn(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "b.yaml", "# Preset: Beta\n# Group: A\ndemo:\n  name: bbox\n")
	writePreset(t, dir, "a.yaml", "# Preset: Alpha\n# Group: B\ndemo:\n  name: raysphere\n  seed: 4\n")
	writePreset(t, dir, "c.yml", "# Preset: Gamma\n# Group: A\ndemo:\n  name: spheresphere\n")
	writePreset(t, dir, "bad.yaml", "log:\n  level: loud\n")
	writePreset(t, dir, "notes.txt", "not a preset")

	presets, err := ListPresetsIn(dir)
	require.NoError(t, err)
	require.Len(t, presets, 3)
	assert.Equal(t, []string{"Beta", "Gamma", "Alpha"}, []string{presets[0].Name, presets[1].Name, presets[2].Name})

	cfg, info, err := LoadPresetIn(dir, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", info.Name)
	assert.Equal(t, "raysphere", cfg.Demo.Name)
	assert.Equal(t, int64(4), cfg.Demo.Seed)

	_, _, err = LoadPresetIn(dir, "bad")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestBundledPresets(t *testing.T) {
	presets, err := ListPresetsIn(filepath.Join("..", "..", "presets"))
	require.NoError(t, err)
	require.NotEmpty(t, presets)
	for _, p := range presets {
		assert.NotEmpty(t, p.Description, p.ID)
		assert.NotEmpty(t, p.Demo, p.ID)
	}
}
