package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default file extensions for shader sources and generated modules
const (
	DefaultSourceExt = ".glsl"
	DefaultModuleExt = ".js"
)

// Options controls which files are considered sources and modules and how
// they are paired in directory mode.
type Options struct {
	SourceExt string
	ModuleExt string
	Pairing   PairingPolicy
}

// DefaultOptions returns the .glsl -> .js options with fan-out pairing.
func DefaultOptions() Options {
	return Options{
		SourceExt: DefaultSourceExt,
		ModuleExt: DefaultModuleExt,
		Pairing:   PairingFanOut,
	}
}

// normalize fills empty fields with defaults and ensures extensions carry a
// leading dot.
func (o Options) normalize() Options {
	if o.SourceExt == "" {
		o.SourceExt = DefaultSourceExt
	}
	if o.ModuleExt == "" {
		o.ModuleExt = DefaultModuleExt
	}
	if !strings.HasPrefix(o.SourceExt, ".") {
		o.SourceExt = "." + o.SourceExt
	}
	if !strings.HasPrefix(o.ModuleExt, ".") {
		o.ModuleExt = "." + o.ModuleExt
	}
	if o.Pairing == "" {
		o.Pairing = PairingFanOut
	}
	return o
}

// IsSourceFile returns true if the path carries the shader source extension
func (o Options) IsSourceFile(path string) bool {
	return strings.HasSuffix(path, o.normalize().SourceExt)
}

// IsModuleFile returns true if the path carries the module extension
func (o Options) IsModuleFile(path string) bool {
	return strings.HasSuffix(path, o.normalize().ModuleExt)
}

// ModuleName returns the destination file name for a source file name.
// For example: shader.glsl -> shader.glsl.js
func (o Options) ModuleName(sourcePath string) string {
	return filepath.Base(sourcePath) + o.normalize().ModuleExt
}

// ListFiles returns the regular files directly inside dir, in directory
// order. Directories and symlinks pointing at directories are skipped.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read directory %s: %w", ErrIO, dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		mode := entry.Type()
		if mode&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				// Dangling links are not files we can watch
				continue
			}
			mode = info.Mode().Type()
		}

		if mode.IsRegular() {
			files = append(files, path)
		}
	}

	return files, nil
}
