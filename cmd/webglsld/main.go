package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schaermu/webglsld/internal/config"
	"github.com/schaermu/webglsld/internal/emit"
	"github.com/schaermu/webglsld/internal/logging"
	"github.com/schaermu/webglsld/internal/notify"
	"github.com/schaermu/webglsld/internal/shader"
	"github.com/schaermu/webglsld/internal/sync"
	"github.com/schaermu/webglsld/internal/ui"
	"github.com/spf13/cobra"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile      string
	logLevel     string
	logFormat    string
	logFile      string
	interval     time.Duration
	startupDelay time.Duration
	onError      string
	pairing      string
	sourceExt    string
	moduleExt    string
	notifyFlag   bool
	noColor      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "webglsld [flags] <source_path> <dest_path>",
	Short: "Regenerate JavaScript modules from GLSL shader sources",
	Long: `webglsld watches GLSL shader sources and rewrites a JavaScript module
exporting the shader text whenever the source content changes.

Pass two files (shader.glsl shader.js) to watch a single pair, or two
directories to pair every <name>.glsl in the first with <name>.glsl.js in
the second. Destination files must already exist.

Sources are polled on a fixed interval and compared by content hash, so
touching a file without editing it does not rewrite its module.`,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
	RunE:         runWatch,
}

var onceCmd = &cobra.Command{
	Use:   "once <source_path> <dest_path>",
	Short: "Regenerate every module once and exit",
	Long: `Once performs a single sync pass without the startup delay and exits.
Use it from build scripts that need the modules up to date before bundling.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runOnce,
}

var checkCmd = &cobra.Command{
	Use:   "check <source_path> <dest_path>",
	Short: "Report which modules are out of date",
	Long: `Check validates the paths, lists the discovered pairs and reports whether
each module matches its shader source. It exits non-zero if any module is
stale and never writes.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCheck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("webglsld %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file, .yaml or .toml (default is $HOME/.config/webglsld/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	flags.StringVar(&logFile, "log-file", "", "write logs to a rotated file instead of stderr")
	flags.DurationVar(&interval, "interval", config.DefaultInterval, "polling interval")
	flags.DurationVar(&startupDelay, "startup-delay", config.DefaultStartupDelay, "delay before the first sync")
	flags.StringVar(&onError, "on-error", string(config.ErrorAbort), "failure policy (abort, isolate)")
	flags.StringVar(&pairing, "pairing", string(shader.PairingFanOut), "directory pairing policy (fanout, first, strict)")
	flags.StringVar(&sourceExt, "source-ext", shader.DefaultSourceExt, "shader source extension")
	flags.StringVar(&moduleExt, "module-ext", shader.DefaultModuleExt, "generated module extension")
	flags.BoolVar(&notifyFlag, "notify", false, "also sync early on filesystem change events")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add commands
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// session holds everything resolved before the loop starts
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
	target shader.Target
	pairs  []shader.Pair
}

func (s *session) Close() {
	_ = s.closer.Close()
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	s, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	ui.Watching(out, s.target)
	if s.target.Mode == shader.ModeDirectory {
		ui.Pairs(out, s.pairs)
	}

	var opts []sync.Option
	if s.cfg.Watch.Notify {
		watcher, err := notify.New(s.pairs, s.logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			_ = watcher.Stop()
			return err
		}
		defer func() {
			_ = watcher.Stop()
		}()
		opts = append(opts, sync.WithNudges(watcher.Nudges()))
	}

	engine := sync.NewEngine(s.cfg, s.pairs, sync.RealClock(), s.logger, opts...)
	if err := engine.Run(ctx); err != nil {
		s.logger.Error("sync failed", "error", err)
		return err
	}

	return nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	s, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	engine := sync.NewEngine(s.cfg, s.pairs, sync.RealClock(), s.logger)
	result, err := engine.Tick(ctx)
	if err != nil {
		s.logger.Error("sync failed", "error", err)
		return err
	}

	ui.Synced(cmd.OutOrStdout(), len(result.Updated), len(result.Unchanged))

	if len(result.Failed) > 0 {
		errs := make([]error, 0, len(result.Failed))
		for _, f := range result.Failed {
			errs = append(errs, f)
		}
		return fmt.Errorf("%d pair(s) failed: %w", len(result.Failed), errors.Join(errs...))
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	ui.Pairs(out, s.pairs)

	stale := 0
	for _, pair := range s.pairs {
		content, err := os.ReadFile(pair.Source)
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", shader.ErrIO, pair.Source, err)
		}
		ok, err := emit.UpToDate(pair.Dest, content)
		if err != nil {
			return err
		}
		if !ok {
			stale++
		}
		ui.PairStatus(out, pair, ok)
	}

	if stale > 0 {
		return fmt.Errorf("%d module(s) out of date", stale)
	}
	return nil
}

// prepare loads configuration, applies flags and arguments, and validates
// the watch paths. Nothing is slept on or written.
func prepare(cmd *cobra.Command, args []string) (*session, error) {
	if noColor {
		ui.DisableColors()
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	switch len(args) {
	case 0:
	case 2:
		cfg.Watch.Source = args[0]
		cfg.Watch.Dest = args[1]
	default:
		return nil, fmt.Errorf("expected <source_path> and <dest_path>, got %d argument(s)", len(args))
	}

	if err := cfg.RequirePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer := logging.New(cfg.Log, cmd.ErrOrStderr())

	target, pairs, err := resolve(cfg)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	logger.Debug("configuration resolved",
		"mode", target.Mode.String(),
		"source", target.Source,
		"dest", target.Dest,
		"pairs", len(pairs))

	return &session{cfg: cfg, logger: logger, closer: closer, target: target, pairs: pairs}, nil
}

// resolve validates the watch paths and discovers the pairs to track
func resolve(cfg *config.Config) (shader.Target, []shader.Pair, error) {
	opts := cfg.ShaderOptions()

	target, err := shader.Validate(cfg.Watch.Source, cfg.Watch.Dest, opts)
	if err != nil {
		return shader.Target{}, nil, err
	}

	pairs, err := shader.Discover(target, opts)
	if err != nil {
		return shader.Target{}, nil, err
	}

	if target.Mode == shader.ModeDirectory {
		if err := shader.CheckPairs(pairs); err != nil {
			return shader.Target{}, nil, err
		}
	}

	return target, pairs, nil
}

// applyFlags overrides config values with flags set on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("interval") {
		cfg.Sync.Interval = interval
	}
	if flags.Changed("startup-delay") {
		cfg.Sync.StartupDelay = startupDelay
	}
	if flags.Changed("on-error") {
		cfg.Sync.OnError = config.ErrorPolicy(onError)
	}
	if flags.Changed("pairing") {
		cfg.Watch.Pairing = shader.PairingPolicy(pairing)
	}
	if flags.Changed("source-ext") {
		cfg.Watch.SourceExt = sourceExt
	}
	if flags.Changed("module-ext") {
		cfg.Watch.ModuleExt = moduleExt
	}
	if flags.Changed("notify") {
		cfg.Watch.Notify = notifyFlag
	}
}

// loadConfig reads --config if given. Without it the default path is used
// when present and built-in defaults otherwise.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}

	configPath, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.LoadOptional(configPath)
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
