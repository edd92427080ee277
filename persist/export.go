package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/milk9111/mapbuilder/mapstate"
)

// ExportFileName names an export by its creation time in ms since epoch.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("dnd-map-%d.json", now.UnixMilli())
}

// Export writes s as an indented snapshot into dir and returns the file path
// together with the bytes written.
func Export(dir string, s mapstate.MapState, now time.Time) (string, []byte, error) {
	b, err := MarshalIndent(s, now)
	if err != nil {
		return "", nil, fmt.Errorf("persist: export: %w", err)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("persist: export: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(now))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", nil, fmt.Errorf("persist: export %s: %w", path, err)
	}
	return path, b, nil
}

// ImportFile reads an exported snapshot.
func ImportFile(path string) (mapstate.Patch, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return mapstate.Patch{}, fmt.Errorf("persist: import %s: %w", path, err)
	}
	p, _, err := Unmarshal(b)
	if err != nil {
		return mapstate.Patch{}, fmt.Errorf("persist: import %s: %w", path, err)
	}
	return p, nil
}
