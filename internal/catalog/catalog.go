package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// VirtualModel is a model the clothing item can be rendered on.
type VirtualModel struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Thumbnail   string `yaml:"thumbnail" json:"thumbnail"`
}

// Background is a preset studio scene.
type Background struct {
	Key  string `yaml:"key" json:"key"`
	Name string `yaml:"name" json:"name"`
	Full string `yaml:"full" json:"full"`
}

// Summary is the short label shown under the background name.
func (b Background) Summary() string {
	head, _, _ := strings.Cut(b.Full, ",")
	return head + "."
}

// ExportPreset is a fixed output size for downloads.
type ExportPreset struct {
	Key    string `yaml:"key" json:"key"`
	Name   string `yaml:"name" json:"name"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// Catalog is loaded once at startup and never mutated afterwards.
type Catalog struct {
	SceneMaxLength int            `yaml:"scene_max_length" json:"scene_max_length"`
	Models         []VirtualModel `yaml:"models" json:"models"`
	Backgrounds    []Background   `yaml:"backgrounds" json:"backgrounds"`
	ExportPresets  []ExportPreset `yaml:"export_presets" json:"export_presets"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	slog.Info("Catalog loaded", "path", path, "models", len(c.Models), "backgrounds", len(c.Backgrounds))
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if c.SceneMaxLength == 0 {
		c.SceneMaxLength = 300
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	var errs []error

	if len(c.Models) == 0 {
		errs = append(errs, errors.New("catalog has no models"))
	}
	if len(c.Backgrounds) == 0 {
		errs = append(errs, errors.New("catalog has no backgrounds"))
	}
	if len(c.ExportPresets) == 0 {
		errs = append(errs, errors.New("catalog has no export presets"))
	}
	if c.SceneMaxLength < 0 {
		errs = append(errs, fmt.Errorf("scene_max_length must be positive, got %d", c.SceneMaxLength))
	}

	seen := make(map[string]bool)
	for _, m := range c.Models {
		if m.ID == "" || m.Description == "" {
			errs = append(errs, fmt.Errorf("model %q needs an id and a description", m.Name))
		}
		if seen["model:"+m.ID] {
			errs = append(errs, fmt.Errorf("duplicate model id %q", m.ID))
		}
		seen["model:"+m.ID] = true
	}
	for _, b := range c.Backgrounds {
		if b.Key == "" || b.Full == "" {
			errs = append(errs, fmt.Errorf("background %q needs a key and a scene", b.Name))
		}
		if seen["background:"+b.Key] {
			errs = append(errs, fmt.Errorf("duplicate background key %q", b.Key))
		}
		seen["background:"+b.Key] = true
	}
	for _, p := range c.ExportPresets {
		if p.Width <= 0 || p.Height <= 0 {
			errs = append(errs, fmt.Errorf("export preset %q has invalid size %dx%d", p.Key, p.Width, p.Height))
		}
		if seen["preset:"+p.Key] {
			errs = append(errs, fmt.Errorf("duplicate export preset %q", p.Key))
		}
		seen["preset:"+p.Key] = true
	}

	return errors.Join(errs...)
}

// Model looks up a virtual model by id.
func (c *Catalog) Model(id string) (*VirtualModel, bool) {
	for i := range c.Models {
		if c.Models[i].ID == id {
			return &c.Models[i], true
		}
	}
	return nil, false
}

func (c *Catalog) Background(key string) (*Background, bool) {
	for i := range c.Backgrounds {
		if c.Backgrounds[i].Key == key {
			return &c.Backgrounds[i], true
		}
	}
	return nil, false
}

func (c *Catalog) ExportPreset(key string) (*ExportPreset, bool) {
	for i := range c.ExportPresets {
		if c.ExportPresets[i].Key == key {
			return &c.ExportPresets[i], true
		}
	}
	return nil, false
}

// DefaultModelID is the model selected when a session starts.
func (c *Catalog) DefaultModelID() string {
	if len(c.Models) == 0 {
		return ""
	}
	return c.Models[0].ID
}

// DefaultScene is the scene text a session starts with.
func (c *Catalog) DefaultScene() string {
	if len(c.Backgrounds) == 0 {
		return ""
	}
	return c.Backgrounds[0].Full
}
