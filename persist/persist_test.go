package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
	"github.com/milk9111/mapbuilder/storage"
)

var epoch = time.UnixMilli(1_700_000_000_000)

func sampleState() mapstate.MapState {
	s := mapstate.Default()
	s.GridWidth, s.GridHeight, s.CellSize = 30, 25, 24
	s.Terrain = mapstate.TerrainLayer{
		{X: 5, Y: 5}:  grid.TerrainWater,
		{X: 0, Y: 1}:  grid.TerrainGrass,
		{X: 29, Y: 0}: grid.TerrainStone,
	}
	s.Objects = []mapstate.PlacedObject{
		{ID: "b", X: 1, Y: 1, Type: grid.ObjectTree},
		{ID: "a", X: 1, Y: 1, Type: grid.ObjectBuilding},
	}
	s.View = grid.View{OffsetX: 3, OffsetY: 4, Scale: 2}
	return s
}

func TestRoundTrip(t *testing.T) {
	s := sampleState()
	b, err := Marshal(s, epoch)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	p, snap, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if snap.LastSaved != epoch.UnixMilli() {
		t.Fatalf("lastSaved = %d", snap.LastSaved)
	}
	if *p.GridWidth != 30 || *p.GridHeight != 25 || *p.CellSize != 24 {
		t.Fatalf("dimensions lost: %d %d %d", *p.GridWidth, *p.GridHeight, *p.CellSize)
	}
	if len(p.Terrain) != len(s.Terrain) {
		t.Fatalf("terrain size %d, want %d", len(p.Terrain), len(s.Terrain))
	}
	for c, k := range s.Terrain {
		if p.Terrain[c] != k {
			t.Fatalf("terrain %v = %q, want %q", c, p.Terrain[c], k)
		}
	}
	if len(p.Objects) != 2 || p.Objects[0].ID != "b" || p.Objects[1].ID != "a" {
		t.Fatalf("object order not preserved: %v", p.Objects)
	}
}

func TestWireShape(t *testing.T) {
	b, err := Marshal(sampleState(), epoch)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("json: %v", err)
	}
	for _, k := range []string{"gridWidth", "gridHeight", "cellSize", "terrain", "objects", "lastSaved"} {
		if _, ok := raw[k]; !ok {
			t.Fatalf("missing field %q in %s", k, b)
		}
	}
	for _, k := range []string{"view", "activeTool"} {
		if _, ok := raw[k]; ok {
			t.Fatalf("UI-only field %q should not be persisted", k)
		}
	}
	// row-major pairs
	if !strings.Contains(string(b), `"terrain":[["29,0","stone"],["0,1","grass"],["5,5","water"]]`) {
		t.Fatalf("unexpected terrain encoding: %s", b)
	}
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"not_json", `{`},
		{"missing_dimensions", `{"terrain":[],"objects":[]}`},
		{"zero_cell", `{"gridWidth":5,"gridHeight":5,"cellSize":0}`},
		{"huge_grid", `{"gridWidth":400000000,"gridHeight":400000000,"cellSize":20}`},
		{"huge_cell", `{"gridWidth":5,"gridHeight":5,"cellSize":100000}`},
		{"bad_key", `{"gridWidth":5,"gridHeight":5,"cellSize":20,"terrain":[["a,b","grass"]]}`},
		{"short_pair", `{"gridWidth":5,"gridHeight":5,"cellSize":20,"terrain":[["1,1"]]}`},
		{"unknown_terrain", `{"gridWidth":5,"gridHeight":5,"cellSize":20,"terrain":[["1,1","lava"]]}`},
		{"unknown_object", `{"gridWidth":5,"gridHeight":5,"cellSize":20,"objects":[{"id":"1","x":1,"y":1,"type":"castle"}]}`},
		{"duplicate_id", `{"gridWidth":5,"gridHeight":5,"cellSize":20,"objects":[{"id":"1","x":1,"y":1,"type":"tree"},{"id":"1","x":2,"y":1,"type":"tree"}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := Unmarshal([]byte(c.in))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !IsMalformed(err) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(500 * time.Millisecond)
	if d.Due(epoch) {
		t.Fatalf("nothing scheduled yet")
	}

	d.Touch(epoch)
	d.Touch(epoch.Add(300 * time.Millisecond))
	if d.Due(epoch.Add(600 * time.Millisecond)) {
		t.Fatalf("second touch should push the deadline out")
	}
	if !d.Due(epoch.Add(800 * time.Millisecond)) {
		t.Fatalf("deadline should fire 500ms after the last touch")
	}
	if d.Due(epoch.Add(900 * time.Millisecond)) {
		t.Fatalf("deadline must fire only once")
	}

	d.Touch(epoch)
	d.Cancel()
	if d.Due(epoch.Add(time.Hour)) {
		t.Fatalf("cancelled deadline fired")
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestPersisterDebouncedSave(t *testing.T) {
	store := mapstate.NewStore()
	kv := storage.NewMemKV()
	clk := &clock{t: epoch}
	p := NewPersister(store, kv, WithClock(clk.now))
	defer p.Close()

	for i := 0; i < 10; i++ {
		store.SetTerrain(i, 0, grid.TerrainSand)
		clk.t = clk.t.Add(100 * time.Millisecond)
		if err := p.Tick(clk.t); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if p.Saves() != 0 {
		t.Fatalf("saved during a rapid stroke")
	}

	clk.t = clk.t.Add(500 * time.Millisecond)
	if err := p.Tick(clk.t); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if p.Saves() != 1 {
		t.Fatalf("expected exactly one save, got %d", p.Saves())
	}
	b, ok, _ := kv.Load(StorageKey)
	if !ok {
		t.Fatalf("nothing written under %s", StorageKey)
	}
	patch, _, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("saved blob does not decode: %v", err)
	}
	if len(patch.Terrain) != 10 {
		t.Fatalf("saved %d cells, want 10", len(patch.Terrain))
	}
}

func TestPersisterCloseDoesNotFlush(t *testing.T) {
	store := mapstate.NewStore()
	kv := storage.NewMemKV()
	p := NewPersister(store, kv, WithClock(func() time.Time { return epoch }))
	store.SetTerrain(1, 1, grid.TerrainGrass)
	p.Close()
	if err := p.Tick(epoch.Add(time.Hour)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if _, ok, _ := kv.Load(StorageKey); ok {
		t.Fatalf("close should drop the pending save")
	}
	store.SetTerrain(2, 2, grid.TerrainGrass)
	if p.Pending() {
		t.Fatalf("closed persister should not schedule saves")
	}
}

func TestRestore(t *testing.T) {
	cases := []struct {
		name    string
		blob    string
		want    bool
		wantW   int
		terrain int
	}{
		{"empty", "", false, 50, 0},
		{"malformed", `{"gridWidth":`, false, 50, 0},
		{"missing_fields", `{"terrain":[]}`, false, 50, 0},
		{"valid", `{"gridWidth":10,"gridHeight":8,"cellSize":20,"terrain":[["1,1","water"]],"objects":[],"lastSaved":1}`, true, 10, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := mapstate.NewStore()
			kv := storage.NewMemKV()
			if c.blob != "" {
				kv.Save(StorageKey, []byte(c.blob))
			}
			p := NewPersister(store, kv)
			defer p.Close()

			if got := p.Restore(); got != c.want {
				t.Fatalf("Restore = %v, want %v", got, c.want)
			}
			st := store.State()
			if st.GridWidth != c.wantW || len(st.Terrain) != c.terrain {
				t.Fatalf("state %dx%d terrain %d", st.GridWidth, st.GridHeight, len(st.Terrain))
			}
			if p.Pending() {
				t.Fatalf("restoring should not schedule a save")
			}
		})
	}
}

func TestClearSaved(t *testing.T) {
	store := mapstate.NewStore()
	kv := storage.NewMemKV()
	p := NewPersister(store, kv, WithClock(func() time.Time { return epoch }))
	defer p.Close()

	store.SetTerrain(0, 0, grid.TerrainGrass)
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	store.SetTerrain(1, 0, grid.TerrainGrass)
	if err := p.ClearSaved(); err != nil {
		t.Fatalf("ClearSaved: %v", err)
	}
	if err := p.Tick(epoch.Add(time.Hour)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if _, ok, _ := kv.Load(StorageKey); ok {
		t.Fatalf("slot should stay empty after ClearSaved")
	}
}

func TestExportAndImport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s := sampleState()
	path, b, err := Export(dir, s, epoch)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(path) != "dnd-map-1700000000000.json" {
		t.Fatalf("unexpected export name %s", path)
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(onDisk) != string(b) {
		t.Fatalf("returned bytes differ from file contents")
	}
	if !strings.Contains(string(b), "\n  \"gridWidth\": 30") {
		t.Fatalf("export should be indented with two spaces:\n%s", b)
	}

	p, err := ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if *p.GridWidth != 30 || len(p.Terrain) != 3 || len(p.Objects) != 2 {
		t.Fatalf("import lost data: %+v", p)
	}

	if _, err := ImportFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
