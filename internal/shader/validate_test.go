package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"shader.glsl":   "void main(){}",
		"shader.js":     "",
		"notes.txt":     "",
		"src/a.glsl":    "",
		"dst/a.glsl.js": "",
	})

	path := func(rel string) string { return filepath.Join(dir, rel) }

	tests := []struct {
		name     string
		source   string
		dest     string
		wantMode Mode
		wantErr  error
	}{
		{name: "single file", source: path("shader.glsl"), dest: path("shader.js"), wantMode: ModeSingle},
		{name: "directories", source: path("src"), dest: path("dst"), wantMode: ModeDirectory},
		{name: "wrong source extension", source: path("notes.txt"), dest: path("shader.js"), wantErr: ErrInvalidExtension},
		{name: "wrong dest extension", source: path("shader.glsl"), dest: path("notes.txt"), wantErr: ErrInvalidExtension},
		{name: "missing files still checked for extension", source: path("foo.txt"), dest: path("bar.js"), wantErr: ErrInvalidExtension},
		{name: "missing source", source: path("missing.glsl"), dest: path("shader.js"), wantErr: ErrPathNotFound},
		{name: "missing dest", source: path("shader.glsl"), dest: path("missing.js"), wantErr: ErrPathNotFound},
		{name: "dir and file", source: path("src"), dest: path("shader.js"), wantErr: ErrModeMismatch},
		{name: "file and dir", source: path("shader.glsl"), dest: path("dst"), wantErr: ErrModeMismatch},
		{name: "dir and missing", source: path("src"), dest: path("nope"), wantErr: ErrPathNotFound},
		{name: "missing and dir", source: path("nope"), dest: path("dst"), wantErr: ErrPathNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := Validate(tt.source, tt.dest, DefaultOptions())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.Mode != tt.wantMode {
				t.Errorf("mode = %s, want %s", target.Mode, tt.wantMode)
			}
			if target.Source != tt.source || target.Dest != tt.dest {
				t.Errorf("unexpected target %+v", target)
			}
		})
	}
}

func TestValidate_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"shader.frag":     "",
		"shader.frag.mjs": "",
	})

	opts := Options{SourceExt: ".frag", ModuleExt: ".mjs"}
	_, err := Validate(filepath.Join(dir, "shader.frag"), filepath.Join(dir, "shader.frag.mjs"), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Validate(filepath.Join(dir, "shader.frag"), filepath.Join(dir, "shader.frag.mjs"), DefaultOptions())
	if !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("expected ErrInvalidExtension with default options, got %v", err)
	}
}

func TestValidate_ReadOnlyDest(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.glsl": "", "a.js": ""})
	if err := os.Chmod(filepath.Join(dir, "a.js"), 0444); err != nil {
		t.Fatal(err)
	}

	_, err := Validate(filepath.Join(dir, "a.glsl"), filepath.Join(dir, "a.js"), DefaultOptions())
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestValidate_DoesNotTruncateDest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.glsl": "", "a.js": "keep me"})

	if _, err := Validate(filepath.Join(dir, "a.glsl"), filepath.Join(dir, "a.js"), DefaultOptions()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "a.js"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "keep me" {
		t.Errorf("destination was modified: %q", data)
	}
}

func TestCheckPairs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.glsl.js": ""})

	ok := []Pair{{Source: "a.glsl", Dest: filepath.Join(dir, "a.glsl.js")}}
	if err := CheckPairs(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	missing := []Pair{{Source: "b.glsl", Dest: filepath.Join(dir, "b.glsl.js")}}
	if err := CheckPairs(missing); !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestModeString(t *testing.T) {
	if ModeSingle.String() != "single" || ModeDirectory.String() != "directory" {
		t.Error("unexpected mode strings")
	}
	if Mode(42).String() != "unknown" {
		t.Error("expected unknown for invalid mode")
	}
}
