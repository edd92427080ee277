package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/ebitenui/ebitenui"
	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/mapbuilder/config"
	"github.com/milk9111/mapbuilder/demos"
	"github.com/milk9111/mapbuilder/grid"
	"github.com/milk9111/mapbuilder/interaction"
	"github.com/milk9111/mapbuilder/mapstate"
	"github.com/milk9111/mapbuilder/persist"
	"github.com/milk9111/mapbuilder/render"
)

const statusDuration = 4 * time.Second

// Editor is the ebiten game for the map editor.
type Editor struct {
	cfg     *config.Config
	cfgPath string
	watcher *config.Watcher

	store     *mapstate.Store
	ctrl      *interaction.Controller
	input     *interaction.EbitenInput
	renderer  *render.Renderer
	persister *persist.Persister

	ui      *ebitenui.UI
	toolbar *Toolbar

	exportDir string
	clipboard bool

	width, height int
	status        string
	statusUntil   time.Time
}

type EditorOptions struct {
	Config     *config.Config
	ConfigPath string
	Store      *mapstate.Store
	Persister  *persist.Persister
	ExportDir  string
	Clipboard  bool
}

func NewEditor(opts EditorOptions) (*Editor, error) {
	palette, err := opts.Config.RenderPalette()
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	face, err := loadFontFace(14)
	if err != nil {
		return nil, fmt.Errorf("editor: load font: %w", err)
	}
	demoMaps, err := demos.List()
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}

	e := &Editor{
		cfg:       opts.Config,
		cfgPath:   opts.ConfigPath,
		store:     opts.Store,
		persister: opts.Persister,
		exportDir: opts.ExportDir,
		clipboard: opts.Clipboard,
	}
	e.ctrl = interaction.NewController(e.store)
	e.input = interaction.NewEbitenInput(e.ctrl, e.store)

	planner := render.NewPlanner(palette)
	planner.Margin = e.cfg.Render.CullMargin
	e.renderer = render.NewRenderer(e.store, planner)

	e.ui, e.toolbar = BuildEditorUI(face, e.cfg.Toolbar.Height, palette, e.store.State(), demoMaps, demos.Scripts(), ToolbarActions{
		OnTool: func(t grid.Tool) {
			if e.store.State().ActiveTool != t {
				e.store.SetActiveTool(t)
			}
		},
		OnTerrain: func(k grid.TerrainKind) {
			if e.store.State().SelectedTerrain != k {
				e.store.SetSelectedTerrain(k)
			}
		},
		OnObject: func(k grid.ObjectKind) {
			if e.store.State().SelectedObject != k {
				e.store.SetSelectedObject(k)
			}
		},
		OnDemo:     e.openDemo,
		OnGenerate: e.generate,
		OnClear:    e.store.ClearMap,
		OnExport:   e.export,
		OnForget:   e.forgetSaved,
	})
	e.store.Subscribe(e.toolbar.Sync)

	if e.cfgPath != "" {
		w, err := config.NewWatcher(e.cfgPath)
		if err != nil {
			log.Printf("config: watch %s: %v", e.cfgPath, err)
		} else {
			e.watcher = w
		}
	}
	return e, nil
}

func (e *Editor) Update() error {
	e.ui.Update()
	e.input.Update(ebuiinput.UIHovered)

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		e.export()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		v := grid.IdentityView()
		e.store.SetView(mapstate.ViewPatch{OffsetX: &v.OffsetX, OffsetY: &v.OffsetY, Scale: &v.Scale})
	}

	if err := e.persister.Tick(time.Now()); err != nil {
		log.Printf("persist: autosave: %v", err)
	}
	e.pollConfig()
	return nil
}

func (e *Editor) Draw(screen *ebiten.Image) {
	e.renderer.Draw(screen)
	if c, ok := e.input.Hover(); ok && !ebuiinput.UIHovered {
		e.renderer.DrawHover(screen, c)
	}
	e.ui.Draw(screen)

	st := e.store.State()
	line := fmt.Sprintf("%s  |  %dx%d  |  zoom %.0f%%", st.ActiveTool, st.GridWidth, st.GridHeight, st.View.Scale*100)
	if c, ok := e.input.Hover(); ok {
		line += fmt.Sprintf("  |  cell %d,%d", c.X, c.Y)
	}
	if e.status != "" && time.Now().Before(e.statusUntil) {
		line += "  |  " + e.status
	}
	ebitenutil.DebugPrintAt(screen, line, 8, e.height-20)
}

func (e *Editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != e.width || outsideHeight != e.height {
		e.width, e.height = outsideWidth, outsideHeight
		canvas := image.Rect(0, e.cfg.Toolbar.Height, outsideWidth, outsideHeight)
		e.ctrl.Mount(canvas)
		e.renderer.SetBounds(canvas)
	}
	return outsideWidth, outsideHeight
}

// Close releases watchers and subscriptions. A pending autosave is dropped.
func (e *Editor) Close() {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			log.Printf("config: close watcher: %v", err)
		}
	}
	e.renderer.Close()
	e.persister.Close()
}

func (e *Editor) setStatus(format string, args ...any) {
	e.status = fmt.Sprintf(format, args...)
	e.statusUntil = time.Now().Add(statusDuration)
	log.Print(e.status)
}

func (e *Editor) openDemo(id string) {
	m, err := demos.Get(id)
	if err != nil {
		e.setStatus("demo %s: %v", id, err)
		return
	}
	m.Open(e.store)
	e.setStatus("opened %s", m.Name)
}

func (e *Editor) generate(script string) {
	st := e.store.State()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	m, err := demos.GenerateNamed(ctx, script, demos.GenerateOptions{
		Width:    st.GridWidth,
		Height:   st.GridHeight,
		CellSize: st.CellSize,
		Seed:     time.Now().UnixNano(),
	})
	if err != nil {
		e.setStatus("generate %s: %v", script, err)
		return
	}
	m.Open(e.store)
	e.setStatus("generated %s", m.Name)
}

func (e *Editor) export() {
	path, data, err := persist.Export(e.exportDir, e.store.State(), time.Now())
	if err != nil {
		e.setStatus("export failed: %v", err)
		return
	}
	if e.clipboard {
		copyToClipboard(data)
		e.setStatus("exported %s (copied to clipboard)", path)
		return
	}
	e.setStatus("exported %s", path)
}

func (e *Editor) forgetSaved() {
	if err := e.persister.ClearSaved(); err != nil {
		e.setStatus("forget saved map: %v", err)
		return
	}
	e.setStatus("saved map forgotten")
}

func (e *Editor) pollConfig() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-e.watcher.Events:
			if !ok {
				e.watcher = nil
				return
			}
			e.reloadConfig(path)
		case err, ok := <-e.watcher.Errors:
			if !ok {
				e.watcher = nil
				return
			}
			log.Printf("config: watch: %v", err)
		default:
			return
		}
	}
}

// reloadConfig applies the settings that can change at runtime: palette,
// cull margin and autosave delay.
func (e *Editor) reloadConfig(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		e.setStatus("config reload: %v", err)
		return
	}
	palette, err := cfg.RenderPalette()
	if err != nil {
		e.setStatus("config reload: %v", err)
		return
	}
	e.renderer.SetPalette(palette)
	e.renderer.SetMargin(cfg.Render.CullMargin)
	e.persister.SetDelay(cfg.Persistence.Debounce)
	e.cfg.Palette = cfg.Palette
	e.cfg.Render = cfg.Render
	e.cfg.Persistence.Debounce = cfg.Persistence.Debounce
	e.setStatus("config reloaded")
}
