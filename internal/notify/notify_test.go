package notify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/schaermu/webglsld/internal/logging"
	"github.com/schaermu/webglsld/internal/shader"
)

func newTestPair(t *testing.T, dir, name string) shader.Pair {
	t.Helper()
	p := shader.Pair{
		Source: filepath.Join(dir, name+".glsl"),
		Dest:   filepath.Join(dir, name+".glsl.js"),
	}
	for _, path := range []string{p.Source, p.Dest} {
		if err := os.WriteFile(path, []byte(""), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func expectNudge(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Nudges():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for nudge")
	}
}

func drain(w *Watcher) {
	for {
		select {
		case <-w.Nudges():
		default:
			return
		}
	}
}

func TestWatcher_NudgesOnSourceWrite(t *testing.T) {
	dir := t.TempDir()
	p := newTestPair(t, dir, "shader")

	w, err := New([]shader.Pair{p}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	if err := os.WriteFile(p.Source, []byte("void main(){}"), 0644); err != nil {
		t.Fatal(err)
	}
	expectNudge(t, w)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	p := newTestPair(t, dir, "shader")

	w, err := New([]shader.Pair{p}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	// Writing the module or an unrelated file must not wake the loop
	if err := os.WriteFile(p.Dest, []byte("export default ``;"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Nudges():
		t.Fatal("unexpected nudge for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	w, err := New([]shader.Pair{newTestPair(t, t.TempDir(), "a")}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	if err := w.Start(); err == nil {
		t.Error("expected error when starting twice")
	}
}

func TestWatcher_StartMissingDir(t *testing.T) {
	p := shader.Pair{Source: filepath.Join(t.TempDir(), "gone", "a.glsl")}

	w, err := New([]shader.Pair{p}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err == nil {
		t.Error("expected error watching a missing directory")
	}
	_ = w.Stop()
}

func TestWatcher_DedupesDirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]shader.Pair{newTestPair(t, dir, "a"), newTestPair(t, dir, "b")}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	if len(w.dirs) != 1 || w.dirs[0] != dir {
		t.Errorf("expected one directory %s, got %v", dir, w.dirs)
	}
	if len(w.sources) != 2 {
		t.Errorf("expected two sources, got %d", len(w.sources))
	}
}

func TestRelevant(t *testing.T) {
	w := &Watcher{sources: map[string]struct{}{"/src/a.glsl": {}}}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write", event: fsnotify.Event{Name: "/src/a.glsl", Op: fsnotify.Write}, want: true},
		{name: "create", event: fsnotify.Event{Name: "/src/a.glsl", Op: fsnotify.Create}, want: true},
		{name: "rename", event: fsnotify.Event{Name: "/src/a.glsl", Op: fsnotify.Rename}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: "/src/a.glsl", Op: fsnotify.Chmod}, want: false},
		{name: "other file", event: fsnotify.Event{Name: "/src/b.glsl", Op: fsnotify.Write}, want: false},
		{name: "unclean path", event: fsnotify.Event{Name: "/src/./a.glsl", Op: fsnotify.Write}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestNudgeDoesNotBlock(t *testing.T) {
	w := &Watcher{nudges: make(chan struct{}, 1)}
	w.nudge()
	w.nudge()
	w.nudge()

	drain(w)
	select {
	case <-w.Nudges():
		t.Error("expected channel to be drained")
	default:
	}
}
