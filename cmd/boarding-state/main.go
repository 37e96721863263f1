// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/boarding/lib/config"
	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/statesock"
	"github.com/bureau-foundation/boarding/lib/version"
)

// usageError marks failures that exit with status 2.
type usageError struct{ error }

func main() {
	err := run(os.Args[1:], os.Stdout)
	var usage usageError
	switch {
	case err == nil:
	case errors.As(err, &usage):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var (
		socketPath  string
		configPath  string
		format      string
		timeout     time.Duration
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("boarding-state", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", "", "state socket path (default: state.socket_path from config)")
	flagSet.StringVar(&configPath, "config", "", "path to boarding.yaml (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&format, "format", "json", "output format: json or text")
	flagSet.DurationVar(&timeout, "timeout", 5*time.Second, "query timeout")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usageError{err}
	}
	if showVersion {
		version.Print(stdout, "boarding-state")
		return nil
	}
	if format != "json" && format != "text" {
		return usageError{fmt.Errorf("--format must be json or text, got %q", format)}
	}

	if socketPath == "" {
		path, err := configuredSocket(configPath)
		if err != nil {
			return err
		}
		socketPath = path
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client := statesock.NewClient(socketPath)

	positional := flagSet.Args()
	if len(positional) == 0 {
		return usageError{errors.New("expected a command: status or list <kind>")}
	}
	switch positional[0] {
	case "status":
		if len(positional) != 1 {
			return usageError{errors.New("status takes no arguments")}
		}
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}
		if format == "text" {
			return printStatus(stdout, status)
		}
		return printJSON(stdout, status)

	case "list":
		if len(positional) != 2 {
			return usageError{errors.New("usage: list <kind>")}
		}
		kind, err := entity.ParseKind(positional[1])
		if err != nil {
			return usageError{err}
		}
		result, err := client.List(ctx, kind)
		if err != nil {
			return err
		}
		return printJSON(stdout, result)
	}
	return usageError{fmt.Errorf("unknown command %q", positional[0])}
}

func configuredSocket(configPath string) (string, error) {
	var cfg *config.Config
	var err error
	switch {
	case configPath != "":
		cfg, err = config.LoadFile(configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Resolved()
	}
	if err != nil {
		return "", err
	}
	if cfg.State.SocketPath == "" {
		return "", usageError{errors.New("state socket is disabled in the config; pass --socket")}
	}
	return cfg.State.SocketPath, nil
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func printStatus(w io.Writer, status *statesock.StatusResult) error {
	fmt.Fprintf(w, "connection: %s\n\n", status.Connection)
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "KIND\tSTATUS\tCOUNT\tREVISION\tLAST ERROR")
	for _, store := range status.Stores {
		fmt.Fprintf(table, "%s\t%s\t%d\t%d\t%s\n", store.Kind, store.LoadStatus, store.Count, store.Revision, store.LastError)
	}
	return table.Flush()
}
