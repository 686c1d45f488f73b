// Package ui prints the human-facing status lines of webglsld.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/schaermu/webglsld/internal/shader"
)

var (
	header  = color.New(color.FgCyan, color.Bold).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
)

// DisableColors turns off color output, e.g. for --no-color
func DisableColors() {
	color.NoColor = true
}

// Watching prints the startup banner
func Watching(w io.Writer, target shader.Target) {
	_, _ = fmt.Fprintf(w, "%s watching from %s to %s %s\n",
		header("webglsld"), target.Source, target.Dest, dim("("+target.Mode.String()+" mode)"))
}

// Pairs lists the discovered pairs, one per line
func Pairs(w io.Writer, pairs []shader.Pair) {
	if len(pairs) == 0 {
		_, _ = fmt.Fprintf(w, "%s no matching shader/module pairs found\n", warning("!"))
		return
	}
	_, _ = fmt.Fprintf(w, "%s\n", header(fmt.Sprintf("%d pair(s):", len(pairs))))
	for _, p := range pairs {
		_, _ = fmt.Fprintf(w, "  %s %s %s\n", p.Source, dim("->"), p.Dest)
	}
}

// PairStatus prints one line per pair for the check command
func PairStatus(w io.Writer, pair shader.Pair, upToDate bool) {
	if upToDate {
		_, _ = fmt.Fprintf(w, "%s %s\n", success("✓"), pair.Dest)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s %s\n", warning("✗"), pair.Dest, dim("(stale)"))
}

// Synced prints the outcome of a single tick
func Synced(w io.Writer, updated, unchanged int) {
	_, _ = fmt.Fprintf(w, "%s %d updated, %d unchanged\n", success("✓"), updated, unchanged)
}
