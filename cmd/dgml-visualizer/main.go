package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ritzau/dgml-visualizer/pkg/analysis"
	"github.com/ritzau/dgml-visualizer/pkg/analysis/api"
	"github.com/ritzau/dgml-visualizer/pkg/config"
	"github.com/ritzau/dgml-visualizer/pkg/logging"
	"github.com/ritzau/dgml-visualizer/pkg/output"
	"github.com/ritzau/dgml-visualizer/pkg/source"
	"github.com/ritzau/dgml-visualizer/pkg/watcher"
	"github.com/ritzau/dgml-visualizer/pkg/web"
	"github.com/spf13/pflag"
)

const (
	debounceQuiet   = 300 * time.Millisecond
	debounceMaxWait = 2 * time.Second
)

func main() {
	// Parse command-line flags
	f := pflag.NewFlagSet("dgml-visualizer", pflag.ExitOnError)
	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dgml-visualizer [flags] <document.dgml | ->\n\n")
		f.PrintDefaults()
	}
	f.String("document", "", "Path to the DGML document (\"-\" reads standard input)")
	f.Bool("web", false, "Start web server instead of printing to console")
	f.Int("port", 8080, "Port for web server (only used with --web)")
	f.Bool("watch", false, "Reload the document when it changes (requires --web)")
	f.Bool("open", true, "Open the browser when the web server starts")
	f.String("format", config.FormatReport, "Console output: report or json")
	f.Bool("check", false, "Only validate the style expressions and exit")
	f.Bool("strict", false, "Validate every style expression before resolving, even unreached ones")
	f.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	if err := f.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if cfg.Document == "" && f.NArg() > 0 {
		cfg.Document = f.Arg(0)
	}
	if cfg.Document == "" {
		f.Usage()
		os.Exit(2)
	}

	logging.SetLevel(logging.LevelFromVerbosity(cfg.Verbosity, cfg.VerboseCnt))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg))
}

func run(ctx context.Context, cfg *config.Config) int {
	src := source.Open(cfg.Document)

	opts := analysis.Options{Strict: cfg.Strict}
	if cfg.Check {
		runner := analysis.NewRunner(src, nil, opts)
		err := runner.Check(ctx)
		output.PrintCheck(os.Stdout, src.Name(), err)
		if err != nil {
			return 1
		}
		return 0
	}

	if cfg.WebMode {
		if err := serve(ctx, cfg, src); err != nil {
			logging.Error("web server failed", "error", err)
			return 1
		}
		return 0
	}

	runner := analysis.NewRunner(src, nil, opts)
	snap, err := runner.Run(ctx, "initial load")
	switch cfg.Format {
	case config.FormatJSON:
		if werr := output.WriteJSON(os.Stdout, snap); werr != nil {
			logging.Error("failed to write output", "error", werr)
			return 1
		}
	default:
		output.PrintReport(os.Stdout, snap)
	}
	if err != nil {
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, src api.Source) error {
	publisher := web.NewPublisher()
	runner := analysis.NewRunner(src, publisher, analysis.Options{Strict: cfg.Strict})
	server := web.NewServer(runner, publisher)

	var changes <-chan watcher.ChangeEvent
	if cfg.Watch {
		file, ok := src.(*source.File)
		if !ok {
			return errors.New("--watch needs a document file")
		}
		fw, err := watcher.NewFileWatcher(file.Path())
		if err != nil {
			return err
		}
		if err := fw.Start(ctx); err != nil {
			return err
		}
		debouncer := watcher.NewDebouncer(fw.Events(), debounceQuiet, debounceMaxWait)
		debouncer.Start(ctx)
		changes = debouncer.Output()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx, cfg.Port)
	}()

	// Give the listener a moment before pointing a browser at it
	select {
	case err := <-errCh:
		return err
	case <-time.After(200 * time.Millisecond):
	}
	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	if cfg.OpenBrowser {
		openBrowser(url)
	}

	go func() {
		// A failed first load is shown as the error page; watching continues
		_, _ = runner.Run(ctx, "initial load")
		if changes != nil {
			runner.Follow(ctx, changes)
		}
	}()

	return <-errCh
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
