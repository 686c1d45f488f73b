package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()

	writeFiles(t, dir, map[string]string{
		"a.glsl":           "void main(){}",
		"b.glsl":           "void main(){}",
		"notes.txt":        "hello",
		"nested/c.glsl":    "should not be listed",
		"nested/d/e.glsl":  "should not be listed",
		".hidden.glsl":     "hidden files are still files",
		"subdir.glsl/x.js": "directory named like a shader",
	})

	got, err := ListFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{".hidden.glsl", "a.glsl", "b.glsl", "notes.txt"}
	names := baseNames(got)
	if len(names) != len(want) {
		t.Fatalf("ListFiles() returned %d files, want %d:\ngot:  %v\nwant: %v", len(names), len(want), names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListFiles()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	for _, p := range got {
		if filepath.Dir(p) != dir {
			t.Errorf("expected path joined with %s, got %s", dir, p)
		}
	}
}

func TestListFiles_Symlinks(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	writeFiles(t, other, map[string]string{"real.glsl": "x"})
	if err := os.Mkdir(filepath.Join(other, "realdir"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := os.Symlink(filepath.Join(other, "real.glsl"), filepath.Join(dir, "link.glsl")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(other, "realdir"), filepath.Join(dir, "linkdir")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(other, "missing"), filepath.Join(dir, "dangling")); err != nil {
		t.Fatal(err)
	}

	got, err := ListFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	names := baseNames(got)
	if len(names) != 1 || names[0] != "link.glsl" {
		t.Errorf("expected only link.glsl, got %v", names)
	}
}

func TestListFiles_Empty(t *testing.T) {
	got, err := ListFiles(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Error("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("expected no files, got %v", got)
	}
}

func TestListFiles_MissingDir(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	opts := Options{SourceExt: "vert", ModuleExt: "mjs"}

	if !opts.IsSourceFile("shader.vert") {
		t.Error("expected shader.vert to be a source file")
	}
	if opts.IsSourceFile("shader.glsl") {
		t.Error("expected shader.glsl not to be a source file")
	}
	if !opts.IsModuleFile("shader.vert.mjs") {
		t.Error("expected shader.vert.mjs to be a module file")
	}
	if got := opts.ModuleName("/src/shader.vert"); got != "shader.vert.mjs" {
		t.Errorf("ModuleName() = %q, want shader.vert.mjs", got)
	}

	var zero Options
	if got := zero.ModuleName("a.glsl"); got != "a.glsl.js" {
		t.Errorf("zero options ModuleName() = %q, want a.glsl.js", got)
	}
}
