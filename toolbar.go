package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"

	"github.com/milk9111/mapbuilder/demos"
	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/mapstate"
	"github.com/milk9111/mapbuilder/render"
)

// ToolbarActions are the callbacks wired to toolbar buttons.
type ToolbarActions struct {
	OnTool     func(grid.Tool)
	OnTerrain  func(grid.TerrainKind)
	OnObject   func(grid.ObjectKind)
	OnDemo     func(id string)
	OnGenerate func(script string)
	OnClear    func()
	OnExport   func()
	OnForget   func()
}

// radioRow is a row of toggle buttons where exactly one is checked.
type radioRow[T comparable] struct {
	group   *widget.RadioGroup
	buttons []*widget.Button
	values  []T
}

func (r *radioRow[T]) Set(v T) {
	if r == nil || r.group == nil {
		return
	}
	for i, val := range r.values {
		if val == v {
			r.group.SetActive(r.buttons[i])
			return
		}
	}
}

func buildRadioRow[T comparable](parent *widget.Container, face *text.Face, labels []string, images []*widget.ButtonImage, values []T, initial T, onSelect func(T)) *radioRow[T] {
	row := &radioRow[T]{values: values}
	for i, label := range labels {
		btn := widget.NewButton(
			widget.ButtonOpts.Image(images[i]),
			widget.ButtonOpts.Text(label, face, buttonTextColor),
			widget.ButtonOpts.ToggleMode(),
			widget.ButtonOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(56, 32),
			),
		)
		row.buttons = append(row.buttons, btn)
		parent.AddChild(btn)
	}

	elements := make([]widget.RadioGroupElement, 0, len(row.buttons))
	for _, b := range row.buttons {
		elements = append(elements, b)
	}
	row.group = widget.NewRadioGroup(
		widget.RadioGroupOpts.Elements(elements...),
		widget.RadioGroupOpts.ChangedHandler(func(args *widget.RadioGroupChangedEventArgs) {
			if onSelect == nil {
				return
			}
			for i, b := range row.buttons {
				if args.Active == b {
					onSelect(row.values[i])
					return
				}
			}
		}),
	)
	row.Set(initial)
	return row
}

// Toolbar mirrors the store's tool and kind selections.
type Toolbar struct {
	tools    *radioRow[grid.Tool]
	terrains *radioRow[grid.TerrainKind]
	objects  *radioRow[grid.ObjectKind]
}

// Sync checks the buttons matching s. Keyboard shortcuts change the store
// directly, so the toolbar follows the store rather than the other way round.
func (tb *Toolbar) Sync(s mapstate.MapState) {
	if tb == nil {
		return
	}
	tb.tools.Set(s.ActiveTool)
	tb.terrains.Set(s.SelectedTerrain)
	tb.objects.Set(s.SelectedObject)
}

func separator(parent *widget.Container) {
	parent.AddChild(widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(solidNineSlice(colornames.Lightgray)),
		widget.ContainerOpts.WidgetOpts(widget.WidgetOpts.MinSize(2, 32)),
	))
}

func actionButton(parent *widget.Container, theme *widget.Theme, face *text.Face, label string, onClick func(), opts ...widget.WidgetOpt) {
	parent.AddChild(widget.NewButton(
		widget.ButtonOpts.Image(theme.ButtonTheme.Image),
		widget.ButtonOpts.Text(label, face, buttonTextColor),
		widget.ButtonOpts.WidgetOpts(append([]widget.WidgetOpt{widget.WidgetOpts.MinSize(56, 32)}, opts...)...),
		widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) {
			if onClick != nil {
				onClick()
			}
		}),
	))
}

// BuildEditorUI lays out the toolbar along the top edge of the window.
func BuildEditorUI(fontFace text.Face, height int, palette render.Palette, initial mapstate.MapState, demoMaps []demos.Map, scripts []string, actions ToolbarActions) (*ebitenui.UI, *Toolbar) {
	ui := &ebitenui.UI{}
	ui.PrimaryTheme = newEditorTheme(&fontFace)

	bar := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(0, height),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
				StretchHorizontal:  true,
			}),
		),
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
				widget.RowLayoutOpts.Spacing(6),
				widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(6)),
			),
		),
		widget.ContainerOpts.BackgroundImage(ui.PrimaryTheme.PanelTheme.BackgroundImage),
	)

	tb := &Toolbar{}
	plain := ui.PrimaryTheme.ButtonTheme.Image

	toolLabels := []string{"Paint", "Place", "Pan"}
	tb.tools = buildRadioRow(bar, &fontFace, toolLabels, repeatImage(plain, len(toolLabels)), grid.Tools, initial.ActiveTool, actions.OnTool)
	separator(bar)

	terrainLabels := make([]string, len(grid.TerrainKinds))
	terrainImages := make([]*widget.ButtonImage, len(grid.TerrainKinds))
	for i, k := range grid.TerrainKinds {
		terrainLabels[i] = titleCase(string(k))
		terrainImages[i] = buttonImage(palette.TerrainColor(k))
	}
	tb.terrains = buildRadioRow(bar, &fontFace, terrainLabels, terrainImages, grid.TerrainKinds, initial.SelectedTerrain, actions.OnTerrain)
	separator(bar)

	objectLabels := make([]string, len(grid.ObjectKinds))
	for i, k := range grid.ObjectKinds {
		objectLabels[i] = titleCase(string(k))
	}
	tb.objects = buildRadioRow(bar, &fontFace, objectLabels, repeatImage(plain, len(objectLabels)), grid.ObjectKinds, initial.SelectedObject, actions.OnObject)
	separator(bar)

	for _, m := range demoMaps {
		tip := fmt.Sprintf("%s\n%dx%d cells", m.Description, m.GridWidth, m.GridHeight)
		actionButton(bar, ui.PrimaryTheme, &fontFace, m.Name, func() {
			if actions.OnDemo != nil {
				actions.OnDemo(m.ID)
			}
		}, widget.WidgetOpts.ToolTip(widget.NewTextToolTip(tip, &fontFace, color.Black, solidNineSlice(colornames.Lightyellow))))
	}
	for _, name := range scripts {
		actionButton(bar, ui.PrimaryTheme, &fontFace, "Generate "+name, func() {
			if actions.OnGenerate != nil {
				actions.OnGenerate(name)
			}
		})
	}
	separator(bar)
	actionButton(bar, ui.PrimaryTheme, &fontFace, "Clear", actions.OnClear)
	actionButton(bar, ui.PrimaryTheme, &fontFace, "Export", actions.OnExport)
	actionButton(bar, ui.PrimaryTheme, &fontFace, "Forget saved", actions.OnForget)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(bar)
	ui.Container = root
	return ui, tb
}

func repeatImage(img *widget.ButtonImage, n int) []*widget.ButtonImage {
	out := make([]*widget.ButtonImage, n)
	for i := range out {
		out[i] = img
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
