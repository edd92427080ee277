package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/mapbuilder/config"
	"github.com/milk9111/mapbuilder/demos"
	"github.com/milk9111/mapbuilder/mapstate"
	"github.com/milk9111/mapbuilder/persist"
	"github.com/milk9111/mapbuilder/storage"
)

func main() {
	configPath := flag.String("config", "", "YAML config file overriding the built-in defaults (watched for changes)")
	dataDir := flag.String("data", "", "directory for the autosave slot (default: user config dir)")
	exportDir := flag.String("export-dir", "", "directory for exported maps (default: from config)")
	demoID := flag.String("demo", "", "open a demo map at start: "+strings.Join(demos.IDs(), ", "))
	importPath := flag.String("import", "", "open an exported map file at start")
	genScript := flag.String("gen", "", "generate the start map with a tengo script (embedded name or path)")
	seed := flag.Int64("seed", 0, "seed for -gen (default: current time)")
	width := flag.Int("width", 0, "grid width in cells for a fresh map")
	height := flag.Int("height", 0, "grid height in cells for a fresh map")
	cellSize := flag.Int("cell", 0, "cell size in pixels for a fresh map")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *exportDir == "" {
		*exportDir = cfg.Persistence.ExportDir
	}

	initial := mapstate.Default()
	initial.GridWidth, initial.GridHeight, initial.CellSize = cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.CellSize
	store := mapstate.NewStore(mapstate.WithState(initial))
	if *width > 0 || *height > 0 {
		w, h := *width, *height
		if w <= 0 {
			w = initial.GridWidth
		}
		if h <= 0 {
			h = initial.GridHeight
		}
		store.SetGridSize(w, h)
	}
	if *cellSize > 0 {
		store.SetCellSize(*cellSize)
	}

	persister := persist.NewPersister(store, openKV(*dataDir),
		persist.WithKey(cfg.Persistence.Key),
		persist.WithDelay(cfg.Persistence.Debounce),
	)
	if persister.Restore() {
		log.Printf("persist: restored saved map")
	}

	switch {
	case *importPath != "":
		p, err := persist.ImportFile(*importPath)
		if err != nil {
			log.Fatalf("import: %v", err)
		}
		store.LoadDemoMap(p.Terrain, p.Objects, *p.GridWidth, *p.GridHeight, *p.CellSize)
	case *demoID != "":
		m, err := demos.Get(*demoID)
		if err != nil {
			log.Fatalf("demo: %v", err)
		}
		m.Open(store)
	case *genScript != "":
		if *seed == 0 {
			*seed = time.Now().UnixNano()
		}
		st := store.State()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		m, err := demos.GenerateNamed(ctx, *genScript, demos.GenerateOptions{
			Width:    st.GridWidth,
			Height:   st.GridHeight,
			CellSize: st.CellSize,
			Seed:     *seed,
		})
		cancel()
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
		m.Open(store)
		log.Printf("generated %s", m.Name)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	editor, err := NewEditor(EditorOptions{
		Config:     cfg,
		ConfigPath: *configPath,
		Store:      store,
		Persister:  persister,
		ExportDir:  *exportDir,
		Clipboard:  initClipboard(),
	})
	if err != nil {
		log.Fatalf("editor: %v", err)
	}
	defer editor.Close()

	if err := ebiten.RunGame(editor); err != nil {
		log.Fatal(err)
	}
}

// openKV picks the autosave backend. Without a writable directory edits are
// kept for the session only.
func openKV(dir string) storage.KV {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			log.Printf("storage: no user config dir (%v); autosave is in-memory", err)
			return storage.NewMemKV()
		}
		dir = filepath.Join(base, "mapbuilder")
	}
	kv, err := storage.NewFileKV(dir)
	if err != nil {
		log.Printf("%v; autosave is in-memory", err)
		return storage.NewMemKV()
	}
	return kv
}
