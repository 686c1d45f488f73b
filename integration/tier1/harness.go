//go:build integration

package tier1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/schaermu/webglsld/internal/testutil"
)

const (
	defaultTimeout = 2 * time.Minute
	pollTimeout    = 10 * time.Second
	pollInterval   = 50 * time.Millisecond
)

// Harness runs the webglsld binary as a child process for Tier 1 tests
type Harness struct {
	t   *testing.T
	bin string
}

// NewHarness builds the binary once and returns a harness around it
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	h := &Harness{t: t, bin: testutil.BuildBinary(t)}
	t.Logf("built %s", h.bin)
	return h
}

// For returns a harness bound to a subtest, reusing the built binary
func (h *Harness) For(t *testing.T) *Harness {
	return &Harness{t: t, bin: h.bin}
}

// Run executes the binary to completion and returns its output and exit code
func (h *Harness) Run(ctx context.Context, args ...string) (string, string, int, error) {
	h.t.Helper()

	cmd := exec.CommandContext(ctx, h.bin, args...)
	cmd.Env = h.env()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return "", "", 0, fmt.Errorf("exec failed: %w", err)
		}
	}

	return stdout.String(), stderr.String(), exitCode, nil
}

// MustRun executes the binary and fails the test if it returns non-zero
func (h *Harness) MustRun(ctx context.Context, args ...string) (string, string) {
	h.t.Helper()
	stdout, stderr, exitCode, err := h.Run(ctx, args...)
	if err != nil {
		h.t.Fatalf("exec failed: %v", err)
	}
	if exitCode != 0 {
		h.t.Fatalf("command failed with exit code %d\nstdout: %s\nstderr: %s\nargs: %v",
			exitCode, stdout, stderr, args)
	}
	return stdout, stderr
}

// Start launches the daemon in the background
func (h *Harness) Start(ctx context.Context, args ...string) *Process {
	h.t.Helper()

	cmd := exec.CommandContext(ctx, h.bin, args...)
	cmd.Env = h.env()

	p := &Process{t: h.t, cmd: cmd, done: make(chan struct{})}
	cmd.Stdout = io.MultiWriter(&p.stdout, &testWriter{t: h.t, prefix: "[stdout] "})
	cmd.Stderr = io.MultiWriter(&p.stderr, &testWriter{t: h.t, prefix: "[stderr] "})

	if err := cmd.Start(); err != nil {
		h.t.Fatalf("start daemon: %v", err)
	}

	go func() {
		defer close(p.done)
		err := cmd.Wait()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
		case errors.As(err, &exitErr):
			p.exitCode = exitErr.ExitCode()
		default:
			p.exitCode = -1
		}
	}()

	h.t.Cleanup(func() { p.Stop() })
	return p
}

// env isolates HOME so no user config is picked up
func (h *Harness) env() []string {
	return append(os.Environ(), "HOME="+h.t.TempDir(), "NO_COLOR=1")
}

// Process is a running daemon
type Process struct {
	t        *testing.T
	cmd      *exec.Cmd
	stdout   syncBuffer
	stderr   syncBuffer
	done     chan struct{}
	exitCode int
}

// Stop sends SIGINT and waits for the process to exit
func (p *Process) Stop() int {
	select {
	case <-p.done:
		return p.exitCode
	default:
	}

	_ = p.cmd.Process.Signal(syscall.SIGINT)
	select {
	case <-p.done:
	case <-time.After(pollTimeout):
		_ = p.cmd.Process.Kill()
		<-p.done
		p.t.Error("daemon did not stop after SIGINT")
	}
	return p.exitCode
}

// WaitExit waits for the process to exit on its own and returns the exit code
func (p *Process) WaitExit() int {
	p.t.Helper()
	select {
	case <-p.done:
		return p.exitCode
	case <-time.After(pollTimeout):
		p.t.Fatal("timed out waiting for daemon to exit")
		return 0
	}
}

// Stdout returns everything written to stdout so far
func (p *Process) Stdout() string { return p.stdout.String() }

// Stderr returns everything written to stderr so far
func (p *Process) Stderr() string { return p.stderr.String() }

// WaitForFile polls path until its content equals want
func WaitForFile(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(pollTimeout)
	var got string
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil {
			got = string(data)
			if got == want {
				return
			}
		}
		time.Sleep(pollInterval)
	}
	t.Fatalf("timed out waiting for %s\nwant: %q\ngot:  %q", path, want, got)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testWriter wraps test logging for command output
type testWriter struct {
	t      *testing.T
	prefix string
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if line != "" {
			w.t.Log(w.prefix + line)
		}
	}
	return len(p), nil
}

var _ io.Writer = (*testWriter)(nil)
