package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Mode selects between watching a single pair and a directory of pairs
type Mode int

const (
	// ModeSingle watches one source file and one destination file.
	ModeSingle Mode = iota
	// ModeDirectory watches every matching pair across two directories.
	ModeDirectory
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Target is the validated source/destination configuration
type Target struct {
	Mode   Mode
	Source string
	Dest   string
}

// pathInfo is the stat result for one argument
type pathInfo struct {
	exists bool
	isDir  bool
}

func statPath(path string) (pathInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pathInfo{}, nil
		}
		return pathInfo{}, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}
	return pathInfo{exists: true, isDir: info.IsDir()}, nil
}

// Validate checks source and dest and returns the target they describe.
// Two directories select directory mode. Otherwise both must be existing
// files with the source and module extensions, and dest must be writable.
func Validate(source, dest string, opts Options) (Target, error) {
	opts = opts.normalize()

	src, err := statPath(source)
	if err != nil {
		return Target{}, err
	}
	dst, err := statPath(dest)
	if err != nil {
		return Target{}, err
	}

	if src.isDir && dst.isDir {
		return Target{Mode: ModeDirectory, Source: source, Dest: dest}, nil
	}

	if src.isDir || dst.isDir {
		if !src.exists {
			return Target{}, fmt.Errorf("%w: %s", ErrPathNotFound, source)
		}
		if !dst.exists {
			return Target{}, fmt.Errorf("%w: %s", ErrPathNotFound, dest)
		}
		return Target{}, fmt.Errorf("%w: %s, %s", ErrModeMismatch, source, dest)
	}

	if !opts.IsSourceFile(source) {
		return Target{}, fmt.Errorf("%w: source %s is not a %s file", ErrInvalidExtension, source, opts.SourceExt)
	}
	if !opts.IsModuleFile(dest) {
		return Target{}, fmt.Errorf("%w: destination %s is not a %s file", ErrInvalidExtension, dest, opts.ModuleExt)
	}

	if !src.exists {
		return Target{}, fmt.Errorf("%w: %s", ErrPathNotFound, source)
	}
	if !dst.exists {
		return Target{}, fmt.Errorf("%w: %s", ErrPathNotFound, dest)
	}

	if err := checkReadable(source); err != nil {
		return Target{}, err
	}
	if err := checkWritable(dest); err != nil {
		return Target{}, err
	}

	return Target{Mode: ModeSingle, Source: source, Dest: dest}, nil
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	return f.Close()
}

// checkWritable opens path for writing without truncating it
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: open %s for writing: %w", ErrIO, path, err)
	}
	return f.Close()
}

// CheckPairs verifies every destination is writable. Directory mode pairs
// come from a listing, so only writability needs confirming.
func CheckPairs(pairs []Pair) error {
	for _, p := range pairs {
		if err := checkWritable(p.Dest); err != nil {
			return err
		}
	}
	return nil
}
