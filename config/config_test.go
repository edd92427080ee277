package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/render"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Grid.Width != 50 || cfg.Grid.Height != 50 || cfg.Grid.CellSize != 20 {
		t.Fatalf("unexpected grid defaults %+v", cfg.Grid)
	}
	if cfg.Persistence.Debounce != 500*time.Millisecond {
		t.Fatalf("debounce = %s", cfg.Persistence.Debounce)
	}
	if cfg.Persistence.Key != "dnd-map-builder-state" {
		t.Fatalf("key = %q", cfg.Persistence.Key)
	}
	p, err := cfg.RenderPalette()
	if err != nil {
		t.Fatalf("RenderPalette: %v", err)
	}
	want := render.DefaultPalette()
	if p.Terrain[grid.TerrainWater] != want.Terrain[grid.TerrainWater] || p.Background != want.Background {
		t.Fatalf("default palette differs from the built-in one")
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadOverrides(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "partial",
			body: "grid:\n  width: 80\npersistence:\n  debounce: 2s\npalette:\n  terrain:\n    water: \"#000080\"\n",
			check: func(t *testing.T, c *Config) {
				if c.Grid.Width != 80 || c.Grid.Height != 50 {
					t.Fatalf("grid = %+v", c.Grid)
				}
				if c.Persistence.Debounce != 2*time.Second {
					t.Fatalf("debounce = %s", c.Persistence.Debounce)
				}
				p, err := c.RenderPalette()
				if err != nil {
					t.Fatalf("RenderPalette: %v", err)
				}
				if p.Terrain[grid.TerrainWater].B != 0x80 {
					t.Fatalf("water override lost: %v", p.Terrain[grid.TerrainWater])
				}
				if p.Terrain[grid.TerrainGrass] != render.DefaultPalette().Terrain[grid.TerrainGrass] {
					t.Fatalf("grass should keep its default colour")
				}
			},
		},
		{name: "bad_grid", body: "grid:\n  cell_size: 0\n", wantErr: true},
		{name: "bad_color", body: "palette:\n  grid: \"#xyz\"\n", wantErr: true},
		{name: "unknown_terrain", body: "palette:\n  terrain:\n    lava: \"#ff0000\"\n", wantErr: true},
		{name: "bad_yaml", body: "grid: [", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "editor.yaml", c.body)
			cfg, err := Load(path)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			c.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	cfg, err := Load("")
	if err != nil || cfg.Window.Title == "" {
		t.Fatalf("empty path should return defaults: %v", err)
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "editor.yaml", "grid:\n  width: 10\n")
	w, err := NewWatcher(path)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "other.yaml", "x: 1\n")
	writeFile(t, dir, "editor.yaml", "grid:\n  width: 20\n")

	select {
	case got := <-w.Events:
		abs, _ := filepath.Abs(path)
		if got != abs {
			t.Fatalf("event for %s, want %s", got, abs)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no event for config change")
	}
}
