// Package mapstate is the single source of truth for the map being edited.
// Every mutation replaces the published snapshot and then notifies all
// subscribers synchronously, in subscription order.
package mapstate

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/milk9111/mapbuilder/grid"
)

type Listener func(MapState)

// IDFunc mints object ids. It must not return the same id twice in a session.
type IDFunc func() string

type listenerEntry struct {
	id int
	fn Listener
}

type Store struct {
	state     MapState
	listeners []listenerEntry
	nextSub   int
	version   uint64
	newID     IDFunc
}

type Option func(*Store)

// WithIDFunc replaces the random object id generator.
func WithIDFunc(f IDFunc) Option {
	return func(s *Store) {
		if f != nil {
			s.newID = f
		}
	}
}

// WithState seeds the store with an initial state instead of Default().
func WithState(st MapState) Option {
	return func(s *Store) {
		if st.Terrain == nil {
			st.Terrain = TerrainLayer{}
		}
		st.View.Scale = grid.ClampScale(st.View.Scale)
		s.state = st
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{state: Default(), newID: RandomID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RandomID returns 16 random bytes hex-encoded.
func RandomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("mapstate: read random id: %v", err))
	}
	return hex.EncodeToString(b[:])
}

// SequentialIDs returns an IDFunc yielding prefix1, prefix2, ...
func SequentialIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

// State returns the current snapshot.
func (s *Store) State() MapState { return s.state }

// Subscribe registers fn for every future change and returns a function that
// removes it. Calling the returned function more than once is harmless.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) publish(next MapState) {
	s.state = next
	s.version++
	v := s.version
	// listeners may unsubscribe while being notified
	ls := append([]listenerEntry(nil), s.listeners...)
	for _, l := range ls {
		// a listener mutated the store; the nested publish already
		// delivered the newer snapshot to everyone
		if s.version != v {
			return
		}
		l.fn(next)
	}
}

// SetTerrain paints one cell. Cells are not bounds-checked here; the
// controller only paints cells inside the grid.
func (s *Store) SetTerrain(x, y int, kind grid.TerrainKind) {
	next := s.state
	next.Terrain = s.state.Terrain.Clone()
	next.Terrain[grid.Cell{X: x, Y: y}] = kind
	s.publish(next)
}

// AddObject appends a new object with a fresh id and returns that id.
// Objects may share a cell; later ones draw on top.
func (s *Store) AddObject(x, y int, kind grid.ObjectKind) string {
	obj := PlacedObject{ID: s.newID(), X: x, Y: y, Type: kind}
	next := s.state
	next.Objects = append(append(make([]PlacedObject, 0, len(s.state.Objects)+1), s.state.Objects...), obj)
	s.publish(next)
	return obj.ID
}

// RemoveObject drops the object with the given id and reports whether it
// existed. Unknown ids change nothing and notify nobody.
func (s *Store) RemoveObject(id string) bool {
	i := slices.IndexFunc(s.state.Objects, func(o PlacedObject) bool { return o.ID == id })
	if i < 0 {
		return false
	}
	next := s.state
	next.Objects = slices.Delete(slices.Clone(s.state.Objects), i, i+1)
	s.publish(next)
	return true
}

func (s *Store) SetActiveTool(t grid.Tool) {
	next := s.state
	next.ActiveTool = t
	s.publish(next)
}

func (s *Store) SetSelectedTerrain(k grid.TerrainKind) {
	next := s.state
	next.SelectedTerrain = k
	s.publish(next)
}

func (s *Store) SetSelectedObject(k grid.ObjectKind) {
	next := s.state
	next.SelectedObject = k
	s.publish(next)
}

// SetView merges p into the viewport. Scale is clamped.
func (s *Store) SetView(p ViewPatch) {
	next := s.state
	if p.OffsetX != nil {
		next.View.OffsetX = *p.OffsetX
	}
	if p.OffsetY != nil {
		next.View.OffsetY = *p.OffsetY
	}
	if p.Scale != nil {
		next.View.Scale = grid.ClampScale(*p.Scale)
	}
	s.publish(next)
}

// ClearMap empties terrain and objects; dimensions and view are kept.
func (s *Store) ClearMap() {
	next := s.state
	next.Terrain = TerrainLayer{}
	next.Objects = nil
	s.publish(next)
}

// LoadMapData merges the supplied fields into the document. Terrain and
// objects, when present, replace the current ones. The view is not touched.
func (s *Store) LoadMapData(p Patch) {
	next := s.state
	if p.GridWidth != nil {
		next.GridWidth = *p.GridWidth
	}
	if p.GridHeight != nil {
		next.GridHeight = *p.GridHeight
	}
	if p.CellSize != nil {
		next.CellSize = *p.CellSize
	}
	if p.Terrain != nil {
		next.Terrain = p.Terrain.Clone()
	}
	if p.Objects != nil {
		next.Objects = append([]PlacedObject(nil), p.Objects...)
	}
	s.publish(next)
}

// LoadDemoMap replaces the whole document and resets the viewport.
func (s *Store) LoadDemoMap(terrain TerrainLayer, objects []PlacedObject, width, height, cellSize int) {
	next := s.state
	next.Terrain = terrain.Clone()
	next.Objects = append([]PlacedObject(nil), objects...)
	next.GridWidth = width
	next.GridHeight = height
	next.CellSize = cellSize
	next.View = grid.IdentityView()
	s.publish(next)
}

func (s *Store) SetGridSize(width, height int) {
	if !ValidSize(width, height, s.state.CellSize) {
		return
	}
	next := s.state
	next.GridWidth = width
	next.GridHeight = height
	s.publish(next)
}

func (s *Store) SetCellSize(size int) {
	if !ValidSize(s.state.GridWidth, s.state.GridHeight, size) {
		return
	}
	next := s.state
	next.CellSize = size
	s.publish(next)
}
