// Package testutil holds fixtures shared by unit and integration tests.
package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// FindProjectRoot walks up the directory tree from the caller's file to find go.mod
func FindProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		return "", fmt.Errorf("failed to get caller information")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// BuildBinary compiles ./cmd/webglsld into a temp dir and returns its path.
func BuildBinary(t *testing.T) string {
	t.Helper()

	root, err := FindProjectRoot()
	if err != nil {
		t.Fatalf("find project root: %v", err)
	}

	bin := filepath.Join(t.TempDir(), "webglsld")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/webglsld")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build failed: %v\n%s", err, out)
	}
	return bin
}

// WriteFile creates path and its parent directories with the given content.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// ShaderTree lays out a src/ and dst/ directory pair under a temp dir.
// Sources map base names to content; every name in modules becomes an
// empty file under dst/.
func ShaderTree(t *testing.T, sources map[string]string, modules ...string) (src, dst string) {
	t.Helper()
	root := t.TempDir()
	src = filepath.Join(root, "src")
	dst = filepath.Join(root, "dst")
	for _, dir := range []string{src, dst} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range sources {
		WriteFile(t, filepath.Join(src, name), content)
	}
	for _, name := range modules {
		WriteFile(t, filepath.Join(dst, name), "")
	}
	return src, dst
}
