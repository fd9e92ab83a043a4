package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownPreset is returned when a preset id matches no discovered file
var ErrUnknownPreset = errors.New("unknown preset")

// PresetInfo represents a discovered preset file with its metadata
type PresetInfo struct {
	ID          string `json:"id"`          // File name without extension
	Name        string `json:"name"`        // Preset name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Demo        string `json:"demo"`        // Demo the preset configures
	FilePath    string `json:"file_path"`   // Path to the YAML file
}

// PresetDirs are searched in order; the first that exists wins
var PresetDirs = []string{"presets", "../presets"}

// ListPresets scans the first existing preset directory for YAML presets
func ListPresets() ([]PresetInfo, error) {
	dir := findPresetDir()
	if dir == "" {
		return []PresetInfo{}, nil
	}
	return ListPresetsIn(dir)
}

// ListPresetsIn returns the presets in dir sorted by group then name.
// Files that fail to load are skipped.
func ListPresetsIn(dir string) ([]PresetInfo, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan presets directory: %w", err)
		}
		files = append(files, matches...)
	}

	presets := []PresetInfo{}
	for _, path := range files {
		info, err := ParsePresetMetadata(path)
		if err != nil {
			continue
		}
		presets = append(presets, info)
	}

	sort.Slice(presets, func(i, j int) bool {
		if presets[i].Group != presets[j].Group {
			return presets[i].Group < presets[j].Group
		}
		return presets[i].Name < presets[j].Name
	})
	return presets, nil
}

// LoadPreset loads the preset with the given id from the first existing preset directory
func LoadPreset(id string) (Config, PresetInfo, error) {
	dir := findPresetDir()
	if dir == "" {
		return Config{}, PresetInfo{}, fmt.Errorf("%w: %q (no presets directory)", ErrUnknownPreset, id)
	}
	return LoadPresetIn(dir, id)
}

// LoadPresetIn loads the preset with the given id from dir
func LoadPresetIn(dir, id string) (Config, PresetInfo, error) {
	presets, err := ListPresetsIn(dir)
	if err != nil {
		return Config{}, PresetInfo{}, err
	}
	for _, p := range presets {
		if p.ID == id {
			cfg, err := Load(p.FilePath)
			return cfg, p, err
		}
	}
	return Config{}, PresetInfo{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
}

// ParsePresetMetadata reads header comments (Preset, Description, Group) and
// the demo name from a preset file. The file must be a valid config.
func ParsePresetMetadata(path string) (PresetInfo, error) {
	cfg, err := Load(path)
	if err != nil {
		return PresetInfo{}, err
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := PresetInfo{
		ID:       id,
		Name:     titleCase(id),
		Group:    "Presets",
		Demo:     cfg.Demo.Name,
		FilePath: path,
	}

	file, err := os.Open(path)
	if err != nil {
		return PresetInfo{}, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "#") {
			break
		}

		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Preset":
			info.Name = value
		case "Description":
			info.Description = value
		case "Group":
			info.Group = value
		}
	}

	return info, scanner.Err()
}

func findPresetDir() string {
	for _, path := range PresetDirs {
		if st, err := os.Stat(path); err == nil && st.IsDir() {
			return path
		}
	}
	return ""
}

// titleCase converts a filename-style string to title case
// e.g., "bbox-crowd" -> "Bbox Crowd"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
