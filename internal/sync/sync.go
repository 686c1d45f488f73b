package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schaermu/webglsld/internal/config"
	"github.com/schaermu/webglsld/internal/emit"
	"github.com/schaermu/webglsld/internal/logging"
	"github.com/schaermu/webglsld/internal/shader"
)

// Writer writes a module for the given source content to dest
type Writer interface {
	Write(dest string, content []byte) error
}

// WriterFunc adapts a function to Writer
type WriterFunc func(dest string, content []byte) error

// Write calls f(dest, content)
func (f WriterFunc) Write(dest string, content []byte) error {
	return f(dest, content)
}

// Option configures an Engine
type Option func(*Engine)

// WithWriter replaces the module writer (emit.Write by default)
func WithWriter(w Writer) Option {
	return func(e *Engine) { e.writer = w }
}

// WithNudges makes the engine tick early whenever a value arrives on ch.
// Nudges are hints only; content hashing still decides what is written.
func WithNudges(ch <-chan struct{}) Option {
	return func(e *Engine) { e.nudges = ch }
}

// Engine polls source files and regenerates their modules on change
type Engine struct {
	cfg      *config.Config
	pairs    []shader.Pair
	clock    Clock
	logger   *slog.Logger
	writer   Writer
	nudges   <-chan struct{}
	detector *Detector
	ticks    int
}

// NewEngine creates a new sync engine for a fixed set of pairs
func NewEngine(cfg *config.Config, pairs []shader.Pair, clock Clock, logger *slog.Logger, opts ...Option) *Engine {
	if clock == nil {
		clock = RealClock()
	}
	e := &Engine{
		cfg:      cfg,
		pairs:    pairs,
		clock:    clock,
		logger:   logger,
		writer:   WriterFunc(emit.Write),
		detector: NewDetector(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pairs returns the pairs tracked by the engine
func (e *Engine) Pairs() []shader.Pair {
	return e.pairs
}

// Ticks returns the number of ticks run so far
func (e *Engine) Ticks() int {
	return e.ticks
}

// Run waits for the startup delay and then ticks once per interval until
// ctx is cancelled. Under the abort policy the first failing pair ends Run
// with that error. Cancellation returns nil after the current write.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("starting sync loop",
		"pairs", len(e.pairs),
		"interval", e.cfg.Sync.Interval,
		"startup_delay", e.cfg.Sync.StartupDelay,
		"on_error", e.cfg.Sync.OnError)

	if e.cfg.Sync.StartupDelay > 0 {
		if !e.wait(ctx, e.cfg.Sync.StartupDelay, false) {
			return nil
		}
	}

	for {
		if _, err := e.Tick(ctx); err != nil {
			return err
		}
		if !e.wait(ctx, e.cfg.Sync.Interval, true) {
			e.logger.Info("sync loop stopped", "ticks", e.ticks)
			return nil
		}
	}
}

// wait blocks for d, an optional nudge, or cancellation. It returns false
// if ctx was cancelled.
func (e *Engine) wait(ctx context.Context, d time.Duration, nudgeable bool) bool {
	var nudges <-chan struct{}
	if nudgeable {
		nudges = e.nudges
	}

	select {
	case <-ctx.Done():
		return false
	case <-e.clock.After(d):
		return true
	case <-nudges:
		e.logger.Debug("woken by change notification")
		return true
	}
}

// Tick processes every pair once, in order. Under the abort policy the
// first failure stops the tick and is returned; under the isolate policy
// failures are logged, collected in the result and retried next tick.
func (e *Engine) Tick(ctx context.Context) (*Result, error) {
	e.ticks++
	result := &Result{}

	for _, pair := range e.pairs {
		if ctx.Err() != nil {
			break
		}

		updated, err := e.syncPair(pair)
		if err != nil {
			if e.cfg.Sync.OnError != config.ErrorIsolate {
				return result, fmt.Errorf("failed to sync %s: %w", pair, err)
			}
			e.logger.Error("failed to sync pair",
				logging.KeySource, pair.Source,
				logging.KeyDest, pair.Dest,
				logging.KeyError, err)
			result.Failed = append(result.Failed, PairError{Pair: pair, Err: err})
			continue
		}

		if updated {
			result.Updated = append(result.Updated, pair)
		} else {
			result.Unchanged = append(result.Unchanged, pair)
		}
	}

	return result, nil
}

// syncPair reads the source and rewrites the module if the content changed
func (e *Engine) syncPair(pair shader.Pair) (bool, error) {
	content, err := os.ReadFile(pair.Source)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", shader.ErrIO, pair.Source, err)
	}

	changed, fp := e.detector.Check(pair, content)
	if !changed {
		return false, nil
	}

	if err := e.writer.Write(pair.Dest, content); err != nil {
		return false, err
	}
	e.detector.Commit(pair, fp)

	e.logger.Info("module updated",
		logging.KeySource, pair.Source,
		logging.KeyDest, pair.Dest,
		logging.KeyHash, fp)
	return true, nil
}
