package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/mapbuilder/grid"
)

type Palette struct {
	Background color.RGBA
	Grid       color.RGBA
	Hover      color.RGBA
	Terrain    map[grid.TerrainKind]color.RGBA
	Objects    map[grid.ObjectKind]color.RGBA
}

func DefaultPalette() Palette {
	return Palette{
		Background: mustHex("#f9fafb"),
		Grid:       mustHex("#e5e7eb"),
		Hover:      color.RGBA{R: 0, G: 0, B: 0, A: 40},
		Terrain: map[grid.TerrainKind]color.RGBA{
			grid.TerrainGrass: mustHex("#4ade80"),
			grid.TerrainWater: mustHex("#3b82f6"),
			grid.TerrainSand:  mustHex("#fbbf24"),
			grid.TerrainStone: mustHex("#6b7280"),
		},
		Objects: map[grid.ObjectKind]color.RGBA{
			grid.ObjectTree:     mustHex("#15803d"),
			grid.ObjectRock:     mustHex("#44403c"),
			grid.ObjectBuilding: mustHex("#92400e"),
		},
	}
}

// TerrainColor falls back to the grid colour for kinds missing from the palette.
func (p Palette) TerrainColor(k grid.TerrainKind) color.RGBA {
	if c, ok := p.Terrain[k]; ok {
		return c
	}
	return p.Grid
}

func (p Palette) ObjectColor(k grid.ObjectKind) color.RGBA {
	if c, ok := p.Objects[k]; ok {
		return c
	}
	return color.RGBA{A: 0xff}
}

// ParseHexColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("render: parse color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("render: parse color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func mustHex(s string) color.RGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
