package interaction

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
)

// EbitenInput polls ebiten's mouse, wheel, touch and keyboard state once per
// tick and feeds the controller and store.
type EbitenInput struct {
	ctrl  *Controller
	store *mapstate.Store

	mouseDown bool
	touches   []ebiten.TouchID
	lastTouch map[ebiten.TouchID]cp.Vector

	touchBuf []ebiten.TouchID
}

func NewEbitenInput(ctrl *Controller, store *mapstate.Store) *EbitenInput {
	return &EbitenInput{
		ctrl:      ctrl,
		store:     store,
		lastTouch: map[ebiten.TouchID]cp.Vector{},
	}
}

// Update polls input for this tick. uiHovered suppresses new presses and the
// wheel while the cursor is over the toolbar; gestures already in progress
// continue.
func (in *EbitenInput) Update(uiHovered bool) {
	if in == nil || in.ctrl == nil {
		return
	}
	in.updateKeys()
	in.updateMouse(uiHovered)
	in.updateTouches(uiHovered)
}

func (in *EbitenInput) updateKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		in.store.SetActiveTool(grid.ToolPaint)
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		in.store.SetActiveTool(grid.ToolPlace)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		in.store.SetActiveTool(grid.ToolPan)
	}

	terrainKeys := []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4}
	for i, k := range terrainKeys {
		if inpututil.IsKeyJustPressed(k) && i < len(grid.TerrainKinds) {
			in.store.SetSelectedTerrain(grid.TerrainKinds[i])
		}
	}
	objectKeys := []ebiten.Key{ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE}
	for i, k := range objectKeys {
		if inpututil.IsKeyJustPressed(k) && i < len(grid.ObjectKinds) {
			in.store.SetSelectedObject(grid.ObjectKinds[i])
		}
	}
}

func (in *EbitenInput) updateMouse(uiHovered bool) {
	mx, my := ebiten.CursorPosition()
	pos := []cp.Vector{{X: float64(mx), Y: float64(my)}}
	inside := in.ctrl.Contains(mx, my)

	if _, wy := ebiten.Wheel(); wy != 0 && inside && !uiHovered {
		// ebiten reports wheel-up as positive, the controller wants the
		// DOM convention where positive means scrolling down
		in.ctrl.Wheel(-wy)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && inside && !uiHovered {
		in.ctrl.Handle(Event{Source: SourceMouse, Kind: Press, Button: ButtonSecondary, Points: pos})
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		if inside && !uiHovered {
			in.mouseDown = true
			in.ctrl.Handle(Event{Source: SourceMouse, Kind: Press, Points: pos})
		}
	case in.mouseDown && !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		in.mouseDown = false
		in.ctrl.Handle(Event{Source: SourceMouse, Kind: Release, Points: pos})
	case in.mouseDown && !inside:
		in.mouseDown = false
		in.ctrl.Handle(Event{Source: SourceMouse, Kind: Cancel, Points: pos})
	case in.mouseDown:
		in.ctrl.Handle(Event{Source: SourceMouse, Kind: Move, Points: pos})
	}
}

func (in *EbitenInput) updateTouches(uiHovered bool) {
	in.touchBuf = inpututil.AppendJustReleasedTouchIDs(in.touchBuf[:0])
	for _, id := range in.touchBuf {
		i := slices.Index(in.touches, id)
		if i < 0 {
			continue
		}
		in.touches = slices.Delete(in.touches, i, i+1)
		delete(in.lastTouch, id)
		in.ctrl.Handle(Event{Source: SourceTouch, Kind: Release, Points: in.positions()})
	}

	in.touchBuf = inpututil.AppendJustPressedTouchIDs(in.touchBuf[:0])
	pressed := false
	for _, id := range in.touchBuf {
		x, y := ebiten.TouchPosition(id)
		if len(in.touches) == 0 && (uiHovered || !in.ctrl.Contains(x, y)) {
			continue
		}
		in.touches = append(in.touches, id)
		in.lastTouch[id] = cp.Vector{X: float64(x), Y: float64(y)}
		in.ctrl.Handle(Event{Source: SourceTouch, Kind: Press, Points: in.positions()})
		pressed = true
	}
	if pressed || len(in.touches) == 0 {
		return
	}

	moved := false
	for _, id := range in.touches {
		x, y := ebiten.TouchPosition(id)
		p := cp.Vector{X: float64(x), Y: float64(y)}
		if !p.Equal(in.lastTouch[id]) {
			in.lastTouch[id] = p
			moved = true
		}
	}
	if moved {
		in.ctrl.Handle(Event{Source: SourceTouch, Kind: Move, Points: in.positions()})
	}
}

func (in *EbitenInput) positions() []cp.Vector {
	pts := make([]cp.Vector, 0, len(in.touches))
	for _, id := range in.touches {
		pts = append(pts, in.lastTouch[id])
	}
	return pts
}

// Hover returns the cell under the mouse cursor, if the cursor is over the
// canvas and inside the grid.
func (in *EbitenInput) Hover() (grid.Cell, bool) {
	mx, my := ebiten.CursorPosition()
	if !in.ctrl.Contains(mx, my) {
		return grid.Cell{}, false
	}
	c := in.ctrl.CellAt(float64(mx), float64(my))
	return c, in.store.State().InBounds(c)
}
