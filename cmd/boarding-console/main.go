// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/bureau-foundation/boarding/lib/config"
	"github.com/bureau-foundation/boarding/lib/console"
	"github.com/bureau-foundation/boarding/lib/consoleui"
	"github.com/bureau-foundation/boarding/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		uiFlag      string
		logOutput   string
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("boarding-console", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to boarding.yaml (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&uiFlag, "ui", string(uiAuto), "display mode: auto, tui, or headless")
	flagSet.StringVar(&logOutput, "log-output", "", "also write JSON log records to this file")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		version.Print(os.Stdout, "boarding-console")
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	mode, err := resolveUIMode(uiMode(uiFlag), term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		return err
	}

	var fileHandler slog.Handler
	if logOutput != "" {
		file, err := os.Create(logOutput)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer file.Close()
		fileHandler = slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if mode == uiHeadless {
		logger := slog.New(withFile(newStreamHandler(os.Stderr, cfg.Log.Format, level), fileHandler))
		return runHeadless(ctx, cfg, logger, registry)
	}
	return runDashboard(ctx, cfg, level, fileHandler, registry)
}

// loadConfig reads --config, then $BOARDING_CONFIG, then falls back
// to the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	return config.Resolved(), nil
}

func runHeadless(ctx context.Context, cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry) error {
	c, err := console.New(console.Options{Config: cfg, Logger: logger, Registry: registry})
	if err != nil {
		return err
	}
	logger.Info("boarding console starting",
		"version", version.Info(),
		"environment", cfg.Environment,
		"api", cfg.API.BaseURL,
		"state_socket", cfg.State.SocketPath,
	)
	return c.Run(ctx)
}

// runDashboard runs the console behind the terminal dashboard. Log
// records at warn and above go to the dashboard's help line instead of
// stderr, which the alternate screen owns.
func runDashboard(ctx context.Context, cfg *config.Config, level slog.Level, fileHandler slog.Handler, registry *prometheus.Registry) error {
	uiHandler := consoleui.NewLogHandler(max(level, slog.LevelWarn))
	logger := slog.New(withFile(uiHandler, fileHandler))

	c, err := console.New(console.Options{Config: cfg, Logger: logger, Registry: registry})
	if err != nil {
		return err
	}

	program := tea.NewProgram(consoleui.NewModel(c.Stores(), c.Feed()), tea.WithAltScreen(), tea.WithContext(ctx))
	uiHandler.SetProgram(program)

	consoleCtx, cancelConsole := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		err := c.Run(consoleCtx)
		if err != nil {
			program.Quit()
		}
		return err
	})

	_, err = program.Run()
	cancelConsole()
	if runErr := group.Wait(); runErr != nil {
		return runErr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// withFile adds the --log-output handler when one is configured.
func withFile(handler, file slog.Handler) slog.Handler {
	if file == nil {
		return handler
	}
	return fanoutHandler{handler, file}
}

func newStreamHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}
