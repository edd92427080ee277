// Package config loads editor settings from YAML. The embedded default.yaml
// is always applied first; an optional file on disk overrides any subset of it.
package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
	"github.com/milk9111/mapbuilder/render"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Window      WindowConfig      `yaml:"window"`
	Toolbar     ToolbarConfig     `yaml:"toolbar"`
	Grid        GridConfig        `yaml:"grid"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Render      RenderConfig      `yaml:"render"`
	Palette     PaletteConfig     `yaml:"palette"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type ToolbarConfig struct {
	Height int `yaml:"height"`
}

type GridConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	CellSize int `yaml:"cell_size"`
}

type PersistenceConfig struct {
	Key       string        `yaml:"key"`
	Debounce  time.Duration `yaml:"debounce"`
	ExportDir string        `yaml:"export_dir"`
}

type RenderConfig struct {
	CullMargin float64 `yaml:"cull_margin"`
}

type PaletteConfig struct {
	Background string            `yaml:"background"`
	Grid       string            `yaml:"grid"`
	Hover      string            `yaml:"hover"`
	Terrain    map[string]string `yaml:"terrain"`
	Objects    map[string]string `yaml:"objects"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal default.yaml: %w", err)
	}
	return &cfg, nil
}

// Load applies the file at path over the defaults. An empty path returns the
// defaults alone.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Toolbar.Height < 0 || c.Toolbar.Height >= c.Window.Height {
		return fmt.Errorf("toolbar height %d out of range", c.Toolbar.Height)
	}
	if !mapstate.ValidSize(c.Grid.Width, c.Grid.Height, c.Grid.CellSize) {
		return fmt.Errorf("grid %dx%d cell %d out of range", c.Grid.Width, c.Grid.Height, c.Grid.CellSize)
	}
	if c.Persistence.Debounce < 0 {
		return fmt.Errorf("negative debounce %s", c.Persistence.Debounce)
	}
	if _, err := c.RenderPalette(); err != nil {
		return err
	}
	return nil
}

// RenderPalette resolves the hex colours. Kinds the file does not mention
// keep their built-in colours.
func (c *Config) RenderPalette() (render.Palette, error) {
	p := render.DefaultPalette()
	for _, f := range []struct {
		hex string
		dst *color.RGBA
	}{
		{c.Palette.Background, &p.Background},
		{c.Palette.Grid, &p.Grid},
		{c.Palette.Hover, &p.Hover},
	} {
		if f.hex == "" {
			continue
		}
		col, err := render.ParseHexColor(f.hex)
		if err != nil {
			return render.Palette{}, fmt.Errorf("palette: %w", err)
		}
		*f.dst = col
	}
	for name, hex := range c.Palette.Terrain {
		kind, err := grid.ParseTerrainKind(name)
		if err != nil {
			return render.Palette{}, fmt.Errorf("palette: %w", err)
		}
		col, err := render.ParseHexColor(hex)
		if err != nil {
			return render.Palette{}, fmt.Errorf("palette: terrain %s: %w", name, err)
		}
		p.Terrain[kind] = col
	}
	for name, hex := range c.Palette.Objects {
		kind, err := grid.ParseObjectKind(name)
		if err != nil {
			return render.Palette{}, fmt.Errorf("palette: %w", err)
		}
		col, err := render.ParseHexColor(hex)
		if err != nil {
			return render.Palette{}, fmt.Errorf("palette: object %s: %w", name, err)
		}
		p.Objects[kind] = col
	}
	return p, nil
}
