// Package demos provides ready-made maps: embedded YAML pattern maps and
// maps generated by tengo scripts.
package demos

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
)

// Map is a complete document ready for Store.LoadDemoMap.
type Map struct {
	ID          string
	Name        string
	Description string
	GridWidth   int
	GridHeight  int
	CellSize    int
	Terrain     mapstate.TerrainLayer
	Objects     []mapstate.PlacedObject
}

// Open replaces the store's document with m and resets the view.
func (m Map) Open(s *mapstate.Store) {
	s.LoadDemoMap(m.Terrain, m.Objects, m.GridWidth, m.GridHeight, m.CellSize)
}

type mapFile struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Width       int               `yaml:"width"`
	Height      int               `yaml:"height"`
	CellSize    int               `yaml:"cell_size"`
	Legend      map[string]string `yaml:"legend"`
	Pattern     []string          `yaml:"pattern"`
	Objects     []objectSpec      `yaml:"objects"`
}

type objectSpec struct {
	ID   string `yaml:"id"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Type string `yaml:"type"`
}

// List returns every embedded demo, sorted by id.
func List() ([]Map, error) {
	names, err := fs.Glob(MapsFS, "maps/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("demos: list: %w", err)
	}
	out := make([]Map, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(MapsFS, name)
		if err != nil {
			return nil, fmt.Errorf("demos: read %s: %w", name, err)
		}
		m, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("demos: %s: %w", name, err)
		}
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Map) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Get returns the embedded demo with the given id.
func Get(id string) (Map, error) {
	all, err := List()
	if err != nil {
		return Map{}, err
	}
	for _, m := range all {
		if m.ID == id {
			return m, nil
		}
	}
	return Map{}, fmt.Errorf("demos: unknown demo %q", id)
}

// IDs lists the embedded demo ids.
func IDs() []string {
	all, err := List()
	if err != nil {
		return nil
	}
	ids := make([]string, len(all))
	for i, m := range all {
		ids[i] = m.ID
	}
	return ids
}

// Parse decodes a YAML pattern map.
func Parse(data []byte) (Map, error) {
	var mf mapFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return Map{}, fmt.Errorf("unmarshal: %w", err)
	}
	if mf.ID == "" {
		return Map{}, fmt.Errorf("missing id")
	}
	if !mapstate.ValidSize(mf.Width, mf.Height, mf.CellSize) {
		return Map{}, fmt.Errorf("%s: dimensions %dx%d cell %d out of range", mf.ID, mf.Width, mf.Height, mf.CellSize)
	}

	legend := make(map[rune]grid.TerrainKind, len(mf.Legend))
	for sym, kind := range mf.Legend {
		r := []rune(sym)
		if len(r) != 1 {
			return Map{}, fmt.Errorf("%s: legend symbol %q must be one character", mf.ID, sym)
		}
		k, err := grid.ParseTerrainKind(kind)
		if err != nil {
			return Map{}, fmt.Errorf("%s: %w", mf.ID, err)
		}
		legend[r[0]] = k
	}

	terrain, err := ParsePattern(mf.Pattern, legend)
	if err != nil {
		return Map{}, fmt.Errorf("%s: %w", mf.ID, err)
	}

	m := Map{
		ID:          mf.ID,
		Name:        mf.Name,
		Description: mf.Description,
		GridWidth:   mf.Width,
		GridHeight:  mf.Height,
		CellSize:    mf.CellSize,
		Terrain:     terrain,
	}
	for c := range terrain {
		if !grid.InBounds(c, m.GridWidth, m.GridHeight) {
			return Map{}, fmt.Errorf("%s: pattern cell %s outside %dx%d", mf.ID, c, m.GridWidth, m.GridHeight)
		}
	}
	for i, o := range mf.Objects {
		kind, err := grid.ParseObjectKind(o.Type)
		if err != nil {
			return Map{}, fmt.Errorf("%s: object %d: %w", mf.ID, i, err)
		}
		id := o.ID
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		obj := mapstate.PlacedObject{ID: id, X: o.X, Y: o.Y, Type: kind}
		if !grid.InBounds(obj.Cell(), m.GridWidth, m.GridHeight) {
			return Map{}, fmt.Errorf("%s: object %s at %s outside the grid", mf.ID, id, obj.Cell())
		}
		m.Objects = append(m.Objects, obj)
	}
	return m, nil
}

// ParsePattern turns rows of legend symbols into terrain. Row index is y,
// column index is x. '.' and ' ' leave a cell unpainted.
func ParsePattern(rows []string, legend map[rune]grid.TerrainKind) (mapstate.TerrainLayer, error) {
	terrain := mapstate.TerrainLayer{}
	for y, row := range rows {
		for x, sym := range []rune(row) {
			if sym == '.' || sym == ' ' {
				continue
			}
			kind, ok := legend[sym]
			if !ok {
				return nil, fmt.Errorf("row %d col %d: symbol %q not in legend", y, x, sym)
			}
			terrain[grid.Cell{X: x, Y: y}] = kind
		}
	}
	return terrain, nil
}
