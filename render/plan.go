// Package render draws map snapshots onto an ebiten surface.
//
// Drawing is split in two: Plan turns a snapshot into a Frame (an ordered
// list of culled primitives in canvas pixels) and the Renderer rasterizes
// frames. Plan is pure so culling and ordering can be tested without a
// graphics context.
package render

import (
	"image/color"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
)

// MinCullMargin keeps partially visible edge cells from being culled.
const MinCullMargin = 10.0

type Shape int

const (
	ShapeRect Shape = iota
	ShapeCircle
)

// Fill is an axis-aligned filled primitive. Circles are inscribed in the box.
type Fill struct {
	X, Y, W, H float64
	Color      color.RGBA
	Shape      Shape
}

type Line struct {
	X0, Y0, X1, Y1 float64
}

// Frame is drawn in field order: background, terrain, grid, objects.
type Frame struct {
	Width, Height int
	Background    color.RGBA
	Terrain       []Fill
	GridColor     color.RGBA
	Grid          []Line
	Objects       []Fill
}

type Planner struct {
	Palette Palette
	// Margin widens the visible area for culling. Values below
	// MinCullMargin are raised to it.
	Margin float64
}

func NewPlanner(p Palette) Planner { return Planner{Palette: p, Margin: MinCullMargin} }

// Plan lays out s for a width x height canvas.
func (p Planner) Plan(s mapstate.MapState, width, height int) Frame {
	f := Frame{
		Width:      width,
		Height:     height,
		Background: p.Palette.Background,
		GridColor:  p.Palette.Grid,
	}
	if width <= 0 || height <= 0 {
		return f
	}

	m := max(p.Margin, MinCullMargin)
	visible := cp.BB{L: -m, B: -m, R: float64(width) + m, T: float64(height) + m}
	size := grid.CellExtent(s.View, s.CellSize)

	for _, c := range s.Terrain.Cells() {
		x, y := grid.GridToScreen(c, s.View, s.CellSize)
		if !visible.Intersects(cp.BB{L: x, B: y, R: x + size, T: y + size}) {
			continue
		}
		f.Terrain = append(f.Terrain, Fill{X: x, Y: y, W: size, H: size, Color: p.Palette.TerrainColor(s.Terrain[c])})
	}

	// lines span the whole grid; only their position along the other axis is culled
	bottom := float64(s.GridHeight)*size + s.View.OffsetY
	right := float64(s.GridWidth)*size + s.View.OffsetX
	i0, i1 := lineRange(s.GridWidth, s.View.OffsetX, size, visible.L, visible.R)
	for i := i0; i <= i1; i++ {
		x := float64(i)*size + s.View.OffsetX
		f.Grid = append(f.Grid, Line{X0: x, Y0: s.View.OffsetY, X1: x, Y1: bottom})
	}
	j0, j1 := lineRange(s.GridHeight, s.View.OffsetY, size, visible.B, visible.T)
	for j := j0; j <= j1; j++ {
		y := float64(j)*size + s.View.OffsetY
		f.Grid = append(f.Grid, Line{X0: s.View.OffsetX, Y0: y, X1: right, Y1: y})
	}

	for _, o := range s.Objects {
		x, y := grid.GridToScreen(o.Cell(), s.View, s.CellSize)
		if !visible.Intersects(cp.BB{L: x, B: y, R: x + size, T: y + size}) {
			continue
		}
		fill := Fill{
			X:     x + size*0.1,
			Y:     y + size*0.1,
			W:     size * 0.8,
			H:     size * 0.8,
			Color: p.Palette.ObjectColor(o.Type),
		}
		if o.Type == grid.ObjectTree {
			fill.Shape = ShapeCircle
		}
		f.Objects = append(f.Objects, fill)
	}
	return f
}

// lineRange returns the indices of the grid lines in [0, n] whose screen
// position off+i*size falls inside [lo, hi]. first > last means none.
func lineRange(n int, off, size, lo, hi float64) (first, last int) {
	a := math.Max(0, math.Ceil((lo-off)/size))
	b := math.Min(float64(n), math.Floor((hi-off)/size))
	if a > b {
		return 1, 0
	}
	return int(a), int(b)
}

// HoverFill returns the highlight box for a cell.
func (p Planner) HoverFill(s mapstate.MapState, c grid.Cell) Fill {
	x, y := grid.GridToScreen(c, s.View, s.CellSize)
	size := grid.CellExtent(s.View, s.CellSize)
	return Fill{X: x, Y: y, W: size, H: size, Color: p.Palette.Hover}
}
