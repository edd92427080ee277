package demos

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed maps/*.yaml
var MapsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// LoadScript returns a generator script. A path that exists on disk wins over
// the embedded script of the same name so generators can be edited live.
func LoadScript(name string) ([]byte, error) {
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(cleanScriptPath(name))
}

func cleanScriptPath(name string) string {
	base := filepath.Base(filepath.ToSlash(name))
	if !strings.HasSuffix(base, ".tengo") {
		base += ".tengo"
	}
	return "scripts/" + base
}

// Scripts lists the embedded generator names without extension.
func Scripts() []string {
	entries, err := ScriptsFS.ReadDir("scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tengo"))
	}
	return names
}
