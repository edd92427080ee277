package demos

import (
	"context"
	"fmt"
	"strconv"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
)

// GenerateOptions are the inputs handed to a generator script.
type GenerateOptions struct {
	Width    int
	Height   int
	CellSize int
	Seed     int64
}

// Generate runs a tengo generator. The script sees width, height and seed as
// globals and must leave terrain and objects as arrays of [x, y, kind].
// Scripts may import the math, rand and text stdlib modules.
func Generate(ctx context.Context, name string, src []byte, opts GenerateOptions) (Map, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.CellSize <= 0 {
		return Map{}, fmt.Errorf("demos: generate %s: dimensions %dx%d cell %d must be positive", name, opts.Width, opts.Height, opts.CellSize)
	}

	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math", "rand", "text"))
	for k, v := range map[string]interface{}{
		"width":  opts.Width,
		"height": opts.Height,
		"seed":   opts.Seed,
	} {
		if err := script.Add(k, v); err != nil {
			return Map{}, fmt.Errorf("demos: generate %s: add %s: %w", name, k, err)
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return Map{}, fmt.Errorf("demos: compile %s: %w", name, err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return Map{}, fmt.Errorf("demos: run %s: %w", name, err)
	}

	m := Map{
		ID:         name,
		Name:       fmt.Sprintf("%s (seed %d)", name, opts.Seed),
		GridWidth:  opts.Width,
		GridHeight: opts.Height,
		CellSize:   opts.CellSize,
		Terrain:    mapstate.TerrainLayer{},
	}

	for i, raw := range compiled.Get("terrain").Array() {
		x, y, kind, err := triple(raw)
		if err != nil {
			return Map{}, fmt.Errorf("demos: %s terrain[%d]: %w", name, i, err)
		}
		k, err := grid.ParseTerrainKind(kind)
		if err != nil {
			return Map{}, fmt.Errorf("demos: %s terrain[%d]: %w", name, i, err)
		}
		c := grid.Cell{X: x, Y: y}
		if !grid.InBounds(c, m.GridWidth, m.GridHeight) {
			return Map{}, fmt.Errorf("demos: %s terrain[%d]: cell %s outside the grid", name, i, c)
		}
		m.Terrain[c] = k
	}

	for i, raw := range compiled.Get("objects").Array() {
		x, y, kind, err := triple(raw)
		if err != nil {
			return Map{}, fmt.Errorf("demos: %s objects[%d]: %w", name, i, err)
		}
		k, err := grid.ParseObjectKind(kind)
		if err != nil {
			return Map{}, fmt.Errorf("demos: %s objects[%d]: %w", name, i, err)
		}
		obj := mapstate.PlacedObject{ID: strconv.Itoa(i + 1), X: x, Y: y, Type: k}
		if !grid.InBounds(obj.Cell(), m.GridWidth, m.GridHeight) {
			return Map{}, fmt.Errorf("demos: %s objects[%d]: cell %s outside the grid", name, i, obj.Cell())
		}
		m.Objects = append(m.Objects, obj)
	}
	return m, nil
}

// GenerateNamed loads a generator by name or path and runs it.
func GenerateNamed(ctx context.Context, name string, opts GenerateOptions) (Map, error) {
	src, err := LoadScript(name)
	if err != nil {
		return Map{}, fmt.Errorf("demos: load script %s: %w", name, err)
	}
	return Generate(ctx, name, src, opts)
}

func triple(raw interface{}) (int, int, string, error) {
	arr, ok := raw.([]interface{})
	if !ok || len(arr) != 3 {
		return 0, 0, "", fmt.Errorf("want [x, y, kind], got %v", raw)
	}
	x, okX := arr[0].(int64)
	y, okY := arr[1].(int64)
	kind, okK := arr[2].(string)
	if !okX || !okY || !okK {
		return 0, 0, "", fmt.Errorf("want [int, int, string], got %v", raw)
	}
	return int(x), int(y), kind, nil
}
