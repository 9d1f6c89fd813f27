// AngelaMos | 2026
// main.go

// Command debtctl is a terminal client for the debt manager API. It keeps
// the signed-in identity in a local SQLite file between runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/carterperez-dev/debt-manager/internal/client"
	"github.com/carterperez-dev/debt-manager/internal/config"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/forms"
	"github.com/carterperez-dev/debt-manager/internal/session"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("debtctl", flag.ContinueOnError)
	global.Usage = func() { usage(global) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		usage(global)
		return 2
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	setupLogger(cfg.LogLevel)

	name, rest := global.Arg(0), global.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage(global)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	persister, err := session.OpenSQLite(cfg.StatePath)
	if err != nil {
		slog.Error("open local state", "path", cfg.StatePath, "error", err)
		return 1
	}
	defer persister.Close()

	a, err := start(ctx, client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout)), persister, os.Stdout)
	if err != nil {
		slog.Error("start session", "error", err)
		return 1
	}
	defer a.close()

	if err := cmd.run(ctx, a, rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(os.Stderr, message(err))
		slog.Debug("command failed", "command", name, "error", err)
		return 1
	}
	return 0
}

// message shows API and validation failures the way the forms do and
// local failures as they are.
func message(err error) string {
	var apiErr *client.APIError
	var netErr *client.NetworkError
	if errors.As(err, &apiErr) || errors.As(err, &netErr) || errors.Is(err, core.ErrInvalidInput) {
		return forms.Feedback(err)
	}
	return err.Error()
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: debtctl <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")
	for _, name := range commandNames() {
		fmt.Fprintf(out, "  %-16s %s\n", name, commands[name].summary)
	}
}

func setupLogger(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		}),
	))
}
