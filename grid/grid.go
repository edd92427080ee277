// Package grid holds the coordinate model shared by the editor: cell
// addressing, the viewport transform, and the terrain/object/tool vocabularies.
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinScale = 0.1
	MaxScale = 3.0
)

// View is the canvas viewport. Screen = grid*cellSize*Scale + Offset.
type View struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
}

// IdentityView returns the viewport with no pan and unit zoom.
func IdentityView() View { return View{Scale: 1} }

// Cell addresses one grid square. Cells outside the grid are representable;
// callers decide what to do with them via InBounds.
type Cell struct {
	X int
	Y int
}

// Key renders the cell as "x,y", the form used on disk.
func (c Cell) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func (c Cell) String() string { return c.Key() }

// Less orders cells row-major.
func (c Cell) Less(o Cell) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// ParseCellKey is the inverse of Cell.Key.
func ParseCellKey(key string) (Cell, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Cell{}, fmt.Errorf("grid: parse cell key %q: missing comma", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Cell{}, fmt.Errorf("grid: parse cell key %q: %w", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Cell{}, fmt.Errorf("grid: parse cell key %q: %w", key, err)
	}
	return Cell{X: x, Y: y}, nil
}

// ScreenToGrid maps a point on the canvas surface to the cell under it.
// Negative cells are valid results.
func ScreenToGrid(sx, sy float64, v View, cellSize int) Cell {
	size := cellExtent(v, cellSize)
	return Cell{
		X: int(math.Floor((sx - v.OffsetX) / size)),
		Y: int(math.Floor((sy - v.OffsetY) / size)),
	}
}

// GridToScreen returns the top-left corner of a cell on the canvas surface.
func GridToScreen(c Cell, v View, cellSize int) (float64, float64) {
	size := cellExtent(v, cellSize)
	return float64(c.X)*size + v.OffsetX, float64(c.Y)*size + v.OffsetY
}

// CellExtent is the on-screen edge length of one cell.
func CellExtent(v View, cellSize int) float64 { return cellExtent(v, cellSize) }

func cellExtent(v View, cellSize int) float64 {
	scale := v.Scale
	if scale <= 0 {
		scale = 1
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	return float64(cellSize) * scale
}

// InBounds reports whether c lies within a width x height grid.
func InBounds(c Cell, width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// ClampScale pins a zoom factor to [MinScale, MaxScale]. NaN clamps to 1.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}
