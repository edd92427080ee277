// Package interaction turns pointer, touch and wheel input into map store
// mutations. Mouse and touch drive the same gesture state machine.
package interaction

import (
	"image"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
)

const (
	ZoomOutFactor = 0.9
	ZoomInFactor  = 1.1
)

type Source int

const (
	SourceMouse Source = iota
	SourceTouch
)

type Kind int

const (
	Press Kind = iota
	Move
	Release
	// Cancel ends a session without a release, e.g. the pointer left the
	// canvas or the platform cancelled the touches.
	Cancel
)

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Event is one input change in window coordinates. Points holds every contact
// still down after the change: the cursor for the mouse, all active touches
// in first-down order for touch.
type Event struct {
	Source Source
	Kind   Kind
	Button Button
	Points []cp.Vector
}

type Gesture int

const (
	GestureIdle Gesture = iota
	GestureStroke
	GesturePan
	GesturePinch
)

func (g Gesture) String() string {
	switch g {
	case GestureIdle:
		return "idle"
	case GestureStroke:
		return "stroke"
	case GesturePan:
		return "pan"
	case GesturePinch:
		return "pinch"
	default:
		return "unknown"
	}
}

// session is the state of one press-to-release interaction.
type session struct {
	source    Source
	gesture   Gesture
	last      cp.Vector
	pinchDist float64
}

type Controller struct {
	store   *mapstate.Store
	surface image.Rectangle
	mounted bool
	s       session
}

func NewController(store *mapstate.Store) *Controller {
	return &Controller{store: store}
}

// Mount attaches the canvas rectangle in window coordinates. An empty
// rectangle unmounts.
func (c *Controller) Mount(r image.Rectangle) {
	if r.Empty() {
		c.Unmount()
		return
	}
	c.surface = r
	c.mounted = true
}

// Unmount detaches the canvas. Input is dropped until the next Mount.
func (c *Controller) Unmount() {
	c.mounted = false
	c.surface = image.Rectangle{}
	c.s = session{}
}

func (c *Controller) Mounted() bool { return c.mounted }

func (c *Controller) Gesture() Gesture { return c.s.gesture }

// Active reports whether a press is in progress.
func (c *Controller) Active() bool { return c.s.gesture != GestureIdle }

// Contains reports whether a window point is over the mounted canvas.
func (c *Controller) Contains(x, y int) bool {
	return c.mounted && image.Pt(x, y).In(c.surface)
}

// CellAt maps a window point to the grid cell under it.
func (c *Controller) CellAt(x, y float64) grid.Cell {
	st := c.store.State()
	p := c.local(cp.Vector{X: x, Y: y})
	return grid.ScreenToGrid(p.X, p.Y, st.View, st.CellSize)
}

func (c *Controller) Handle(ev Event) {
	if c == nil || !c.mounted {
		return
	}
	pts := make([]cp.Vector, len(ev.Points))
	for i, p := range ev.Points {
		pts[i] = c.local(p)
	}

	switch ev.Kind {
	case Press:
		c.press(ev.Source, ev.Button, pts)
	case Move:
		c.move(ev.Source, pts)
	case Release:
		c.release(ev.Source, pts)
	case Cancel:
		if ev.Source == c.s.source {
			c.s = session{}
		}
	}
}

// Wheel zooms about the transform origin. Positive deltaY zooms out.
func (c *Controller) Wheel(deltaY float64) {
	if c == nil || !c.mounted || deltaY == 0 {
		return
	}
	factor := ZoomInFactor
	if deltaY > 0 {
		factor = ZoomOutFactor
	}
	scale := c.store.State().View.Scale * factor
	c.store.SetView(mapstate.ZoomTo(grid.ClampScale(scale)))
}

func (c *Controller) local(p cp.Vector) cp.Vector {
	return cp.Vector{X: p.X - float64(c.surface.Min.X), Y: p.Y - float64(c.surface.Min.Y)}
}

func (c *Controller) press(src Source, btn Button, pts []cp.Vector) {
	if len(pts) == 0 {
		return
	}

	if src == SourceTouch && len(pts) >= 2 {
		// a second finger always wins over a pan or stroke in progress
		c.s = session{
			source:    SourceTouch,
			gesture:   GesturePinch,
			last:      pts[0],
			pinchDist: pts[0].Distance(pts[1]),
		}
		return
	}

	if btn == ButtonSecondary {
		c.removeTopmost(pts[0])
		return
	}

	st := c.store.State()
	c.s = session{source: src, last: pts[0]}
	if st.ActiveTool == grid.ToolPan {
		c.s.gesture = GesturePan
		return
	}
	c.s.gesture = GestureStroke
	c.apply(st, pts[0])
}

func (c *Controller) move(src Source, pts []cp.Vector) {
	if c.s.gesture == GestureIdle || src != c.s.source || len(pts) == 0 {
		return
	}

	st := c.store.State()
	switch c.s.gesture {
	case GesturePinch:
		if len(pts) < 2 {
			return
		}
		cur := pts[0].Distance(pts[1])
		if c.s.pinchDist > 0 && cur > 0 {
			scale := grid.ClampScale(st.View.Scale * cur / c.s.pinchDist)
			c.store.SetView(mapstate.ZoomTo(scale))
		}
		c.s.pinchDist = cur
	case GesturePan:
		c.pan(st, pts[0])
	case GestureStroke:
		if st.ActiveTool == grid.ToolPan {
			c.pan(st, pts[0])
			return
		}
		c.s.last = pts[0]
		if st.ActiveTool == grid.ToolPaint {
			c.paint(st, pts[0])
		}
	}
}

func (c *Controller) release(src Source, remaining []cp.Vector) {
	if src != c.s.source {
		return
	}
	if src == SourceMouse || len(remaining) == 0 {
		c.s = session{}
		return
	}
	if len(remaining) >= 2 {
		if c.s.gesture == GesturePinch {
			c.s.pinchDist = remaining[0].Distance(remaining[1])
		}
		return
	}

	// pinch to single touch: continue from where the remaining finger is
	// so the view does not jump
	c.s.last = remaining[0]
	c.s.pinchDist = 0
	if c.store.State().ActiveTool == grid.ToolPan {
		c.s.gesture = GesturePan
	} else {
		c.s.gesture = GestureStroke
	}
}

func (c *Controller) pan(st mapstate.MapState, p cp.Vector) {
	d := p.Sub(c.s.last)
	c.s.last = p
	if d.X == 0 && d.Y == 0 {
		return
	}
	c.store.SetView(mapstate.PanTo(st.View.OffsetX+d.X, st.View.OffsetY+d.Y))
}

func (c *Controller) apply(st mapstate.MapState, p cp.Vector) {
	switch st.ActiveTool {
	case grid.ToolPaint:
		c.paint(st, p)
	case grid.ToolPlace:
		cell := grid.ScreenToGrid(p.X, p.Y, st.View, st.CellSize)
		if st.InBounds(cell) {
			c.store.AddObject(cell.X, cell.Y, st.SelectedObject)
		}
	}
}

func (c *Controller) paint(st mapstate.MapState, p cp.Vector) {
	cell := grid.ScreenToGrid(p.X, p.Y, st.View, st.CellSize)
	if !st.InBounds(cell) {
		return
	}
	// dragging over an already painted cell is a no-op
	if cur, ok := st.Terrain[cell]; ok && cur == st.SelectedTerrain {
		return
	}
	c.store.SetTerrain(cell.X, cell.Y, st.SelectedTerrain)
}

func (c *Controller) removeTopmost(p cp.Vector) {
	st := c.store.State()
	cell := grid.ScreenToGrid(p.X, p.Y, st.View, st.CellSize)
	if !st.InBounds(cell) {
		return
	}
	at := st.ObjectsAt(cell)
	if len(at) == 0 {
		return
	}
	c.store.RemoveObject(at[len(at)-1].ID)
}
