package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DjordjeVuckovic/webbench/internal/harness"
	"github.com/DjordjeVuckovic/webbench/internal/install"
	"github.com/DjordjeVuckovic/webbench/internal/plan"
	"github.com/DjordjeVuckovic/webbench/internal/remote"
	"github.com/DjordjeVuckovic/webbench/internal/server"
	"github.com/DjordjeVuckovic/webbench/internal/target"
	"github.com/DjordjeVuckovic/webbench/pkg/config/env"
	"github.com/spf13/cobra"
)

var (
	logLevel    string
	firefoxURL  string
	useRemote   bool
	remoteAddr  string
	chromePath  string
	planPath    string
	targetsPath string
	listenAddr  string
	assetsDir   string
	postResults bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, harness.ErrTrialsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "webbench",
	Short: "webbench — browser benchmark orchestration harness",
	Long: "Launches browsers against a set of benchmark pages, collects the results " +
		"each page posts back and aggregates them across repeated runs.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&firefoxURL, "firefox-url", "", "URL to a Firefox installer to download and benchmark")
	rootCmd.Flags().BoolVar(&useRemote, "remote", false, "drive a remote browser over an automation session instead of a local binary")
	rootCmd.Flags().StringVar(&remoteAddr, "remote-addr", fmt.Sprintf("localhost:%d", remote.DefaultPort), "forwarded automation port of the remote browser")
	rootCmd.Flags().StringVar(&chromePath, "chrome-path", "", "path to a Chrome executable to benchmark alongside Firefox")
	rootCmd.Flags().StringVar(&planPath, "plan", "benchmarks.json", "path to the benchmark plan")
	rootCmd.Flags().StringVar(&targetsPath, "targets", "", "path to a targets YAML; overrides the firefox/chrome flags")
	rootCmd.Flags().StringVar(&listenAddr, "listen", ":8000", "address the benchmark page server listens on")
	rootCmd.Flags().StringVar(&assetsDir, "assets", "static", "directory with benchmark page assets")
	rootCmd.Flags().BoolVar(&postResults, "post-results", false, "publish aggregated results to the configured sinks")
}

func setupLogging() {
	level := slog.LevelInfo
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env.LoadDotEnv(".env")

	if targetsPath == "" && firefoxURL == "" && !useRemote {
		return fmt.Errorf("one of --firefox-url, --remote or --targets is required")
	}

	benchmarks, err := plan.LoadFromFile(planPath)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	targets, cleanup, err := resolveTargets(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	channel := harness.NewResultChannel()
	srv := server.New(channel, server.Config{Listen: listenAddr, AssetsDir: assetsDir})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start benchmark server: %w", err)
	}
	defer func() {
		if err := srv.Shutdown(); err != nil {
			slog.Warn("shutdown benchmark server", "error", err)
		}
	}()

	publisher, closePublishers, err := buildPublisher(ctx)
	if err != nil {
		return err
	}
	defer closePublishers()

	driver := harness.NewDriver(channel, targets, newRunner, publisher, srv.BaseURL())
	if err := driver.Run(ctx, benchmarks); err != nil {
		slog.Error("benchmark run finished with errors", "error", err)
		return err
	}

	slog.Info("benchmark run finished")
	return nil
}

// resolveTargets builds the browser target list from the targets file or,
// failing that, from the firefox/chrome flags, installing Firefox first
// when an installer URL was given.
func resolveTargets(ctx context.Context) ([]target.Target, func(), error) {
	cleanup := func() {}

	if targetsPath != "" {
		targets, err := target.LoadFromFile(targetsPath)
		if err != nil {
			return nil, cleanup, fmt.Errorf("load targets: %w", err)
		}
		return targets, cleanup, nil
	}

	var targets []target.Target

	if useRemote {
		targets = append(targets, target.Target{
			Name:          "firefox",
			Kind:          target.KindRemote,
			Branch:        "nightly",
			VersionPolicy: target.VersionFull,
		})
	} else {
		installDir, err := os.MkdirTemp("", "webbench-firefox-")
		if err != nil {
			return nil, cleanup, fmt.Errorf("create install dir: %w", err)
		}
		inst, err := install.Firefox(ctx, firefoxURL, installDir)
		if err != nil {
			_ = os.RemoveAll(installDir)
			return nil, cleanup, fmt.Errorf("install firefox: %w", err)
		}
		cleanup = func() {
			if err := inst.Cleanup(); err != nil {
				slog.Warn("cleanup installation", "error", err)
			}
		}
		targets = append(targets, target.Target{
			Name:          "firefox",
			Kind:          target.KindLocal,
			Binary:        inst.Binary,
			Branch:        "nightly",
			VersionPolicy: target.VersionFull,
		})
	}

	if chromePath != "" {
		targets = append(targets, target.Target{
			Name:          "chrome",
			Kind:          target.KindLocal,
			Binary:        chromePath,
			Branch:        "canary",
			VersionPolicy: target.VersionFull,
		})
	}

	return targets, cleanup, nil
}

func newRunner(tgt target.Target, url string) (harness.Runner, error) {
	switch tgt.Kind {
	case target.KindLocal:
		args := append(append([]string{}, tgt.Args...), url)
		return harness.NewLocalRunner(tgt.Binary, args...), nil
	case target.KindRemote:
		return harness.NewRemoteRunner(&remote.ADBForwarder{}, remote.NewDialer(remoteAddr), url), nil
	default:
		return nil, fmt.Errorf("unsupported target kind %q", tgt.Kind)
	}
}
