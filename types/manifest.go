package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Asset categories used by the theme manifest.
const (
	CategoryBackgrounds = "backgrounds"
	CategoryCharacters  = "characters"
	CategoryProps       = "props"
)

// AssetManifest maps an asset category to an ordered list of relative
// paths, plus the theme and style that produced them. It is written once
// per asset-generation run and treated as immutable afterwards.
type AssetManifest struct {
	Theme       string              `json:"theme"`
	Style       string              `json:"style"`
	Description string              `json:"description,omitempty"`
	Assets      map[string][]string `json:"assets"`
}

// Paths returns the relative paths for a category, in manifest order.
func (m *AssetManifest) Paths(category string) []string {
	return m.Assets[category]
}

// Save writes the manifest into dir as manifest.json. It refuses to
// overwrite an existing manifest: the file is immutable within a run.
func (m *AssetManifest) Save(dir string) error {
	path := filepath.Join(dir, "manifest.json")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("manifest already exists at %s", path)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadManifest reads manifest.json from dir.
func LoadManifest(dir string) (*AssetManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, err
	}
	var m AssetManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
