// Package cli implements the mudra command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

var (
	cfgPath  string
	isDebug  bool
	withTray bool
	dryRun   bool
	addr     string
)

var rootCmd = &cobra.Command{
	Use:   "mudra [arity]",
	Short: "Pointer gestures from an OSC tracker",
	Long: `Mudra listens for pointer positions on an OSC bus, maps them onto the
display with a four-point calibration and turns hover, contact and dwell
into pointer moves, presses and clicks.

The optional arity argument is the number of float arguments carried by
position messages (default 4). Six or more enables contact detection.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runDaemon,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "mudra.yaml", "config file (optional)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&withTray, "tray", false, "show the system tray menu")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "record pointer commands instead of issuing them")
	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")
}

// loadConfig reads the config file, applies command line overrides and
// validates the result.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if len(args) == 1 {
		arity, err := parseArity(args[0])
		if err != nil {
			return nil, err
		}
		cfg.Bus.Arity = arity
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if dryRun {
		cfg.Actuator.Backend = actuator.BackendDryRun
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parseArity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("arity must be an integer, got %q", s)
	}
	if n < capture.MinArity {
		return 0, fmt.Errorf("arity must be at least %d, got %d", capture.MinArity, n)
	}
	return n, nil
}

// openStore creates the database directory when needed.
func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.New(path)
}

func newActuator(ctx context.Context, cfg *config.Config) (actuator.Actuator, error) {
	opts := actuator.Options{Backend: cfg.Actuator.Backend}
	if cfg.Actuator.Backend == actuator.BackendPlugin {
		mgr := plugin.NewManager(cfg.Actuator.PluginDir)
		if err := mgr.Discover(); err != nil {
			return nil, fmt.Errorf("failed to discover plugins: %w", err)
		}
		opts.Plugins = mgr
		opts.Plugin = cfg.Actuator.Plugin
		opts.Executor = plugin.NewExecutor(cfg.Actuator.PluginTimeout)
	}
	return actuator.New(ctx, opts)
}

func runDaemon(cmd *cobra.Command, args []string) {
	if code := run(args); code != 0 {
		os.Exit(code)
	}
}

// run returns the process exit code so deferred cleanup always happens.
func run(args []string) int {
	_ = godotenv.Load()

	cfg, err := loadConfig(args)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		return 1
	}

	level := logging.Setup(cfg.Logging.Format, cfg.Logging.Level, isDebug)
	slog.Info("Logger initialized", "level", level.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg.Store.Path)
	if err != nil {
		slog.Error("Failed to initialize store", "path", cfg.Store.Path, "error", err)
		return 1
	}
	defer st.Close()

	act, err := newActuator(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize actuator", "backend", cfg.Actuator.Backend, "error", err)
		return 1
	}

	a, err := app.New(app.Config{
		Source:       capture.NewOSCSource(cfg.OSC()),
		Actuator:     act,
		Store:        st,
		Projection:   cfg.Projection(),
		Classifier:   cfg.Classifier(),
		Arity:        cfg.Bus.Arity,
		PollInterval: cfg.Bus.PollInterval,
		Track:        cfg.Gesture.Track,
		Retention:    cfg.Store.Retention,
	})
	if err != nil {
		slog.Error("Failed to initialize app", "error", err)
		return 1
	}
	defer a.Close()

	if pa, ok := act.(*actuator.PluginActuator); ok {
		pa.SetStateFunc(func() string { return a.Snapshot().State })
	}

	if !cfg.Server.Disabled {
		srv := server.New(server.Config{
			StaticDir: staticDir(cfg.Server.StaticDir),
			Store:     st,
			App:       a,
		})
		go func() {
			if err := srv.Serve(ctx, cfg.Server.Addr); err != nil {
				slog.Error("HTTP server failed", "addr", cfg.Server.Addr, "error", err)
			}
		}()
	}

	slog.Info("Mudra started",
		"config", cfgPath,
		"listen", cfg.Bus.Listen,
		"arity", cfg.Bus.Arity,
		"backend", cfg.Actuator.Backend,
		"session", a.SessionID())

	if !withTray {
		if err := runLoop(ctx, a); err != nil {
			return 1
		}
		return 0
	}

	// The tray needs the main goroutine, so the loop moves aside.
	t := tray.New(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnRecalibrate(func() {
		if err := a.ResetCalibration(); err != nil {
			slog.Warn("Failed to reset calibration", "error", err)
		}
	})
	t.OnQuit(stop)
	a.OnTick(func(s app.Snapshot) {
		t.SetState(s.State)
		t.SetEnabled(s.Enabled)
	})

	done := make(chan error, 1)
	go func() {
		done <- runLoop(ctx, a)
		t.Quit()
	}()
	t.Run()
	stop()

	select {
	case err := <-done:
		if err != nil {
			return 1
		}
		return 0
	case <-time.After(5 * time.Second):
		slog.Error("Tick loop did not stop in time")
		return 1
	}
}

func runLoop(ctx context.Context, a *app.App) error {
	err := a.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Tick loop failed", "error", err)
		return err
	}
	slog.Info("Mudra stopped")
	return nil
}

// staticDir returns dir when set, otherwise the first web directory found
// in "web", "../web" or ~/.mudra/web.
func staticDir(dir string) string {
	if dir != "" {
		return dir
	}

	candidates := []string{"web", "../web", filepath.Join(config.DataDir(), "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
