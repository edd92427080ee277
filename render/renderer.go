package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
)

// Renderer keeps an offscreen copy of the canvas and redraws it only when the
// store changes or the canvas is resized.
type Renderer struct {
	planner Planner
	bounds  image.Rectangle
	canvas  *ebiten.Image
	state   mapstate.MapState
	dirty   bool
	redraws int

	unsubscribe func()
}

func NewRenderer(store *mapstate.Store, planner Planner) *Renderer {
	r := &Renderer{planner: planner, state: store.State(), dirty: true}
	r.unsubscribe = store.Subscribe(func(s mapstate.MapState) {
		r.state = s
		r.dirty = true
	})
	return r
}

// SetBounds places the canvas in window coordinates. A size change forces a
// redraw; a pure move only changes where the cached canvas is blitted.
func (r *Renderer) SetBounds(b image.Rectangle) {
	if b.Dx() != r.bounds.Dx() || b.Dy() != r.bounds.Dy() {
		r.dirty = true
	}
	r.bounds = b
}

func (r *Renderer) Bounds() image.Rectangle { return r.bounds }

func (r *Renderer) SetPalette(p Palette) {
	r.planner.Palette = p
	r.dirty = true
}

func (r *Renderer) SetMargin(m float64) {
	r.planner.Margin = m
	r.dirty = true
}

func (r *Renderer) Dirty() bool { return r.dirty }

// Redraws counts canvas rasterizations since creation.
func (r *Renderer) Redraws() int { return r.redraws }

// Draw blits the canvas onto dst, rasterizing it first when dirty. A nil
// destination or an empty canvas means nothing is mounted yet.
func (r *Renderer) Draw(dst *ebiten.Image) {
	if r == nil || dst == nil || r.bounds.Empty() {
		return
	}
	w, h := r.bounds.Dx(), r.bounds.Dy()
	if r.canvas == nil || r.canvas.Bounds().Dx() != w || r.canvas.Bounds().Dy() != h {
		if r.canvas != nil {
			r.canvas.Deallocate()
		}
		r.canvas = ebiten.NewImage(w, h)
		r.dirty = true
	}
	if r.dirty {
		rasterize(r.canvas, r.planner.Plan(r.state, w, h))
		r.dirty = false
		r.redraws++
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(r.bounds.Min.X), float64(r.bounds.Min.Y))
	dst.DrawImage(r.canvas, op)
}

// DrawHover outlines cell c on top of the blitted canvas.
func (r *Renderer) DrawHover(dst *ebiten.Image, c grid.Cell) {
	if r == nil || dst == nil || r.bounds.Empty() {
		return
	}
	f := r.planner.HoverFill(r.state, c)
	f.X += float64(r.bounds.Min.X)
	f.Y += float64(r.bounds.Min.Y)
	sub := dst.SubImage(r.bounds).(*ebiten.Image)
	fill(sub, f)
}

// Close stops tracking the store and frees the canvas.
func (r *Renderer) Close() {
	if r == nil {
		return
	}
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	if r.canvas != nil {
		r.canvas.Deallocate()
		r.canvas = nil
	}
}

func rasterize(dst *ebiten.Image, f Frame) {
	dst.Fill(f.Background)
	for _, t := range f.Terrain {
		fill(dst, t)
	}
	for _, l := range f.Grid {
		vector.StrokeLine(dst, float32(l.X0), float32(l.Y0), float32(l.X1), float32(l.Y1), 1, f.GridColor, false)
	}
	for _, o := range f.Objects {
		fill(dst, o)
	}
}

func fill(dst *ebiten.Image, f Fill) {
	switch f.Shape {
	case ShapeCircle:
		r := min(f.W, f.H) / 2
		vector.FillCircle(dst, float32(f.X+f.W/2), float32(f.Y+f.H/2), float32(r), f.Color, true)
	default:
		vector.FillRect(dst, float32(f.X), float32(f.Y), float32(f.W), float32(f.H), f.Color, false)
	}
}
