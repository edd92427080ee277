package mapstate

import (
	"maps"
	"slices"

	"github.com/milk9111/mapbuilder/grid"
)

const (
	DefaultGridWidth  = 50
	DefaultGridHeight = 50
	DefaultCellSize   = 20

	// Upper bounds for loaded or configured maps.
	MaxGridSize = 10000
	MaxCellSize = 1000
)

// ValidSize reports whether a grid of width x height cells of cellSize
// pixels is within the supported range.
func ValidSize(width, height, cellSize int) bool {
	return width > 0 && width <= MaxGridSize &&
		height > 0 && height <= MaxGridSize &&
		cellSize > 0 && cellSize <= MaxCellSize
}

// TerrainLayer is the sparse terrain paint. Unpainted cells are absent.
type TerrainLayer map[grid.Cell]grid.TerrainKind

// Clone returns an independent copy; nil stays nil-safe as an empty layer.
func (t TerrainLayer) Clone() TerrainLayer {
	out := make(TerrainLayer, len(t))
	maps.Copy(out, t)
	return out
}

// Cells returns the painted cells in row-major order.
func (t TerrainLayer) Cells() []grid.Cell {
	cells := slices.Collect(maps.Keys(t))
	slices.SortFunc(cells, func(a, b grid.Cell) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	return cells
}

type PlacedObject struct {
	ID   string          `json:"id"`
	X    int             `json:"x"`
	Y    int             `json:"y"`
	Type grid.ObjectKind `json:"type"`
}

func (o PlacedObject) Cell() grid.Cell { return grid.Cell{X: o.X, Y: o.Y} }

// MapState is an immutable snapshot of the editor document plus its UI
// selections. Terrain and Objects are shared between snapshots and must not
// be mutated by readers.
type MapState struct {
	GridWidth       int
	GridHeight      int
	CellSize        int
	Terrain         TerrainLayer
	Objects         []PlacedObject
	ActiveTool      grid.Tool
	SelectedTerrain grid.TerrainKind
	SelectedObject  grid.ObjectKind
	View            grid.View
}

// Default returns the state of a fresh editor session.
func Default() MapState {
	return MapState{
		GridWidth:       DefaultGridWidth,
		GridHeight:      DefaultGridHeight,
		CellSize:        DefaultCellSize,
		Terrain:         TerrainLayer{},
		Objects:         nil,
		ActiveTool:      grid.ToolPaint,
		SelectedTerrain: grid.TerrainGrass,
		SelectedObject:  grid.ObjectTree,
		View:            grid.IdentityView(),
	}
}

// ObjectsAt returns the objects stacked on c, bottom first.
func (s MapState) ObjectsAt(c grid.Cell) []PlacedObject {
	var out []PlacedObject
	for _, o := range s.Objects {
		if o.X == c.X && o.Y == c.Y {
			out = append(out, o)
		}
	}
	return out
}

// InBounds reports whether c is inside this map's grid.
func (s MapState) InBounds(c grid.Cell) bool {
	return grid.InBounds(c, s.GridWidth, s.GridHeight)
}

// ViewPatch is a partial viewport update; nil fields are left unchanged.
type ViewPatch struct {
	OffsetX *float64
	OffsetY *float64
	Scale   *float64
}

// PanTo builds a patch that moves the viewport offset.
func PanTo(x, y float64) ViewPatch { return ViewPatch{OffsetX: &x, OffsetY: &y} }

// ZoomTo builds a patch that only changes the scale.
func ZoomTo(scale float64) ViewPatch { return ViewPatch{Scale: &scale} }

// Patch is a partial document load. Nil fields are left unchanged.
type Patch struct {
	GridWidth  *int
	GridHeight *int
	CellSize   *int
	Terrain    TerrainLayer
	Objects    []PlacedObject
}
