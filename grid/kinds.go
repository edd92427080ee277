package grid

import "fmt"

type TerrainKind string

const (
	TerrainGrass TerrainKind = "grass"
	TerrainWater TerrainKind = "water"
	TerrainSand  TerrainKind = "sand"
	TerrainStone TerrainKind = "stone"
)

// TerrainKinds lists every terrain in toolbar order.
var TerrainKinds = []TerrainKind{TerrainGrass, TerrainWater, TerrainSand, TerrainStone}

func (k TerrainKind) Valid() bool {
	switch k {
	case TerrainGrass, TerrainWater, TerrainSand, TerrainStone:
		return true
	}
	return false
}

func ParseTerrainKind(s string) (TerrainKind, error) {
	k := TerrainKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("grid: unknown terrain %q", s)
	}
	return k, nil
}

type ObjectKind string

const (
	ObjectTree     ObjectKind = "tree"
	ObjectRock     ObjectKind = "rock"
	ObjectBuilding ObjectKind = "building"
)

var ObjectKinds = []ObjectKind{ObjectTree, ObjectRock, ObjectBuilding}

func (k ObjectKind) Valid() bool {
	switch k {
	case ObjectTree, ObjectRock, ObjectBuilding:
		return true
	}
	return false
}

func ParseObjectKind(s string) (ObjectKind, error) {
	k := ObjectKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("grid: unknown object %q", s)
	}
	return k, nil
}

// Tool is the active editing mode.
type Tool int

const (
	ToolPaint Tool = iota
	ToolPlace
	ToolPan
)

var Tools = []Tool{ToolPaint, ToolPlace, ToolPan}

func (t Tool) String() string {
	switch t {
	case ToolPaint:
		return "paint"
	case ToolPlace:
		return "place"
	case ToolPan:
		return "pan"
	default:
		return "unknown"
	}
}

func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("grid: unknown tool %q", s)
}
