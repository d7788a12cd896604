package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default catalog failed to load: %v", err)
	}

	if len(c.Models) != 12 {
		t.Errorf("Expected 12 models, got %d", len(c.Models))
	}
	if len(c.Backgrounds) != 6 {
		t.Errorf("Expected 6 backgrounds, got %d", len(c.Backgrounds))
	}
	if c.SceneMaxLength != 300 {
		t.Errorf("Expected scene max length 300, got %d", c.SceneMaxLength)
	}
	if c.DefaultModelID() != "arab-1" {
		t.Errorf("Expected default model arab-1, got %s", c.DefaultModelID())
	}
	if !strings.HasPrefix(c.DefaultScene(), "in a chic Parisian apartment") {
		t.Errorf("Unexpected default scene: %s", c.DefaultScene())
	}

	want := map[string][2]int{
		"square":         {1080, 1080},
		"story":          {1080, 1920},
		"shopify-square": {2048, 2048},
	}
	for key, size := range want {
		p, ok := c.ExportPreset(key)
		if !ok {
			t.Errorf("Missing export preset %s", key)
			continue
		}
		if p.Width != size[0] || p.Height != size[1] {
			t.Errorf("Preset %s: expected %dx%d, got %dx%d", key, size[0], size[1], p.Width, p.Height)
		}
	}
}

func TestModelLookup(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	m, ok := c.Model("euro-1")
	if !ok {
		t.Fatal("Expected euro-1 to exist")
	}
	if m.Name != "Chloé" {
		t.Errorf("Expected Chloé, got %s", m.Name)
	}

	if _, ok := c.Model("nope"); ok {
		t.Error("Expected unknown model lookup to fail")
	}
}

func TestBackgroundSummary(t *testing.T) {
	b := Background{Full: "in a serene palace garden with marble statues and fountains, soft, ethereal morning light."}
	if got := b.Summary(); got != "in a serene palace garden with marble statues and fountains." {
		t.Errorf("Unexpected summary: %q", got)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty catalog",
			yaml:    "scene_max_length: 10\n",
			wantErr: "no models",
		},
		{
			name: "duplicate model ids",
			yaml: `
models:
  - {id: a, name: A, description: d}
  - {id: a, name: B, description: d}
backgrounds:
  - {key: b, name: B, full: scene}
export_presets:
  - {key: s, name: S, width: 10, height: 10}
`,
			wantErr: "duplicate model id",
		},
		{
			name: "bad preset size",
			yaml: `
models:
  - {id: a, name: A, description: d}
backgrounds:
  - {key: b, name: B, full: scene}
export_presets:
  - {key: s, name: S, width: 0, height: 10}
`,
			wantErr: "invalid size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
models:
  - {id: m1, name: Mia, description: A studio model.}
backgrounds:
  - {key: white, name: White Wall, full: against a white wall}
export_presets:
  - {key: thumb, name: Thumb (1:1), width: 64, height: 64}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.SceneMaxLength != 300 {
		t.Errorf("Expected default scene max length, got %d", c.SceneMaxLength)
	}
	if c.DefaultModelID() != "m1" {
		t.Errorf("Expected m1, got %s", c.DefaultModelID())
	}
}
