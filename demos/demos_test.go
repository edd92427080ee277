package demos

import (
	"context"
	"testing"
	"time"

	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
)

func TestEmbeddedDemos(t *testing.T) {
	cases := []struct {
		id      string
		name    string
		w, h    int
		objects int
		cell    grid.Cell
		kind    grid.TerrainKind
	}{
		{"mountain-pass", "Treacherous Mountain Pass", 25, 20, 22, grid.Cell{X: 12, Y: 10}, grid.TerrainGrass},
		{"riverside-tavern", "The Riverside Tavern", 30, 25, 55, grid.Cell{X: 10, Y: 20}, grid.TerrainWater},
	}

	for _, c := range cases {
		t.Run(c.id, func(t *testing.T) {
			m, err := Get(c.id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if m.Name != c.name || m.Description == "" {
				t.Fatalf("name %q description %q", m.Name, m.Description)
			}
			if m.GridWidth != c.w || m.GridHeight != c.h || m.CellSize != 20 {
				t.Fatalf("dimensions %dx%d/%d", m.GridWidth, m.GridHeight, m.CellSize)
			}
			if len(m.Terrain) != c.w*c.h {
				t.Fatalf("pattern should cover the grid, got %d cells", len(m.Terrain))
			}
			if len(m.Objects) != c.objects {
				t.Fatalf("objects = %d, want %d", len(m.Objects), c.objects)
			}
			if got := m.Terrain[c.cell]; got != c.kind {
				t.Fatalf("terrain at %v = %q, want %q", c.cell, got, c.kind)
			}
		})
	}

	if _, err := Get("nope"); err == nil {
		t.Fatalf("unknown demo should fail")
	}
}

func TestOpenResetsView(t *testing.T) {
	m, err := Get("riverside-tavern")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	store := mapstate.NewStore()
	store.SetView(mapstate.PanTo(40, 40))
	m.Open(store)
	st := store.State()
	if st.GridWidth != 30 || st.GridHeight != 25 {
		t.Fatalf("dimensions %dx%d", st.GridWidth, st.GridHeight)
	}
	if st.View != grid.IdentityView() {
		t.Fatalf("view not reset: %+v", st.View)
	}
}

func TestParsePattern(t *testing.T) {
	legend := map[rune]grid.TerrainKind{'G': grid.TerrainGrass, 'W': grid.TerrainWater}
	terrain, err := ParsePattern([]string{"GW", ".G"}, legend)
	if err != nil {
		t.Fatalf("ParsePattern: %v", err)
	}
	if len(terrain) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(terrain))
	}
	if terrain[grid.Cell{X: 1, Y: 0}] != grid.TerrainWater {
		t.Fatalf("x is the column index")
	}
	if _, ok := terrain[grid.Cell{X: 0, Y: 1}]; ok {
		t.Fatalf("'.' should leave the cell unpainted")
	}
	if _, err := ParsePattern([]string{"GX"}, legend); err == nil {
		t.Fatalf("unknown symbol should fail")
	}
}

func TestParseRejectsBadMaps(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no_id", "width: 2\nheight: 2\ncell_size: 20\n"},
		{"zero_size", "id: x\nwidth: 0\nheight: 2\ncell_size: 20\n"},
		{"pattern_overflow", "id: x\nwidth: 1\nheight: 1\ncell_size: 20\nlegend: {G: grass}\npattern: [GG]\n"},
		{"bad_legend", "id: x\nwidth: 1\nheight: 1\ncell_size: 20\nlegend: {G: lava}\n"},
		{"object_outside", "id: x\nwidth: 1\nheight: 1\ncell_size: 20\nobjects: [{x: 3, y: 0, type: tree}]\n"},
		{"object_kind", "id: x\nwidth: 1\nheight: 1\ncell_size: 20\nobjects: [{x: 0, y: 0, type: castle}]\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Parse([]byte(c.yaml)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	src := []byte(`
terrain := []
for y := 0; y < height; y++ {
	for x := 0; x < width; x++ {
		terrain = append(terrain, [x, y, "sand"])
	}
}
objects := [[0, 0, "tree"], [width - 1, height - 1, "building"]]
`)
	m, err := Generate(context.Background(), "flat", src, GenerateOptions{Width: 4, Height: 3, CellSize: 16, Seed: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(m.Terrain) != 12 || m.Terrain[grid.Cell{X: 3, Y: 2}] != grid.TerrainSand {
		t.Fatalf("unexpected terrain %v", m.Terrain)
	}
	if len(m.Objects) != 2 || m.Objects[1].Type != grid.ObjectBuilding || m.Objects[1].X != 3 {
		t.Fatalf("unexpected objects %v", m.Objects)
	}
	if m.Objects[0].ID == m.Objects[1].ID {
		t.Fatalf("generated ids must be unique")
	}
}

func TestGenerateErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"syntax", `terrain := [`},
		{"bad_kind", `terrain := [[0, 0, "lava"]]`},
		{"outside", `terrain := [[9, 0, "grass"]]`},
		{"bad_shape", `objects := [[0, "tree"]]`},
		{"runtime", `x := 1 / 0`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Generate(context.Background(), c.name, []byte(c.src), GenerateOptions{Width: 2, Height: 2, CellSize: 20})
			if err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestIslandsGenerator(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := GenerateOptions{Width: 40, Height: 30, CellSize: 20, Seed: 7}
	a, err := GenerateNamed(ctx, "islands", opts)
	if err != nil {
		t.Fatalf("GenerateNamed: %v", err)
	}
	if len(a.Terrain) != 40*30 {
		t.Fatalf("islands should paint every cell, got %d", len(a.Terrain))
	}
	hasBuilding := false
	for _, o := range a.Objects {
		if o.Type == grid.ObjectBuilding {
			hasBuilding = true
		}
	}
	if !hasBuilding {
		t.Fatalf("islands should place a building")
	}

	b, err := GenerateNamed(ctx, "islands", opts)
	if err != nil {
		t.Fatalf("GenerateNamed: %v", err)
	}
	if len(a.Objects) != len(b.Objects) {
		t.Fatalf("same seed should give the same map")
	}
	for c, k := range a.Terrain {
		if b.Terrain[c] != k {
			t.Fatalf("same seed differs at %v", c)
		}
	}
}
