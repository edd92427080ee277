// Package persist saves and restores the map document: the autosave slot,
// exported files and the JSON snapshot format they share.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
)

// ErrMalformed wraps every decode failure.
var ErrMalformed = errors.New("persist: malformed snapshot")

// TerrainEntry is one painted cell, encoded as a ["x,y", kind] pair.
type TerrainEntry struct {
	Cell grid.Cell
	Kind grid.TerrainKind
}

func (e TerrainEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Cell.Key(), string(e.Kind)})
}

func (e *TerrainEntry) UnmarshalJSON(b []byte) error {
	var pair []string
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("terrain entry has %d elements, want 2", len(pair))
	}
	c, err := grid.ParseCellKey(pair[0])
	if err != nil {
		return err
	}
	e.Cell = c
	e.Kind = grid.TerrainKind(pair[1])
	return nil
}

// Snapshot is the durable form of the document. UI-only state (tool,
// selections, view) is not stored.
type Snapshot struct {
	GridWidth  int                     `json:"gridWidth"`
	GridHeight int                     `json:"gridHeight"`
	CellSize   int                     `json:"cellSize"`
	Terrain    []TerrainEntry          `json:"terrain"`
	Objects    []mapstate.PlacedObject `json:"objects"`
	LastSaved  int64                   `json:"lastSaved"`
}

// Encode captures s at time now. Terrain is written row-major so equal
// documents produce equal bytes.
func Encode(s mapstate.MapState, now time.Time) Snapshot {
	snap := Snapshot{
		GridWidth:  s.GridWidth,
		GridHeight: s.GridHeight,
		CellSize:   s.CellSize,
		Terrain:    make([]TerrainEntry, 0, len(s.Terrain)),
		Objects:    append([]mapstate.PlacedObject{}, s.Objects...),
		LastSaved:  now.UnixMilli(),
	}
	for _, c := range s.Terrain.Cells() {
		snap.Terrain = append(snap.Terrain, TerrainEntry{Cell: c, Kind: s.Terrain[c]})
	}
	return snap
}

// Decode validates snap and converts it into a store patch carrying every
// document field.
func Decode(snap Snapshot) (mapstate.Patch, error) {
	if !mapstate.ValidSize(snap.GridWidth, snap.GridHeight, snap.CellSize) {
		return mapstate.Patch{}, fmt.Errorf("%w: dimensions %dx%d cell %d", ErrMalformed, snap.GridWidth, snap.GridHeight, snap.CellSize)
	}
	terrain := make(mapstate.TerrainLayer, len(snap.Terrain))
	for _, e := range snap.Terrain {
		if !e.Kind.Valid() {
			return mapstate.Patch{}, fmt.Errorf("%w: cell %s: unknown terrain %q", ErrMalformed, e.Cell.Key(), e.Kind)
		}
		terrain[e.Cell] = e.Kind
	}
	objects := make([]mapstate.PlacedObject, 0, len(snap.Objects))
	seen := make(map[string]bool, len(snap.Objects))
	for _, o := range snap.Objects {
		if !o.Type.Valid() {
			return mapstate.Patch{}, fmt.Errorf("%w: object %q: unknown type %q", ErrMalformed, o.ID, o.Type)
		}
		if o.ID == "" || seen[o.ID] {
			return mapstate.Patch{}, fmt.Errorf("%w: object id %q missing or repeated", ErrMalformed, o.ID)
		}
		seen[o.ID] = true
		objects = append(objects, o)
	}
	w, h, cs := snap.GridWidth, snap.GridHeight, snap.CellSize
	return mapstate.Patch{
		GridWidth:  &w,
		GridHeight: &h,
		CellSize:   &cs,
		Terrain:    terrain,
		Objects:    objects,
	}, nil
}

// Marshal encodes s as compact JSON.
func Marshal(s mapstate.MapState, now time.Time) ([]byte, error) {
	return json.Marshal(Encode(s, now))
}

// MarshalIndent encodes s the way export files are written.
func MarshalIndent(s mapstate.MapState, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Encode(s, now)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses and validates a JSON snapshot.
func Unmarshal(b []byte) (mapstate.Patch, Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return mapstate.Patch{}, Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	p, err := Decode(snap)
	if err != nil {
		return mapstate.Patch{}, Snapshot{}, err
	}
	return p, snap, nil
}
