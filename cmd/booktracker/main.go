// Command booktracker is a terminal front end for a personal book
// collection served by booksd.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"booktracker/internal/config"
	"booktracker/internal/library"
	"booktracker/internal/logger"
	"booktracker/internal/platform/booksapi"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `usage: booktracker [-api url] [-v] <command> [flags]

commands:
  list   [-list all|owned|want] [-genre g] [-author a]
  add    -title t -author a [-genre g] [-year n] [-rating 0-5] [-notes s] [-list owned|want]
  show   <id>
  edit   <id> [-title t] [-author a] [-genre g] [-year n] [-rating 0-5] [-notes s] [-list owned|want]
  delete <id>
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type app struct {
	store  *library.Store
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFail
	}

	fs := flag.NewFlagSet("booktracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	apiURL := fs.String("api", cfg.API.BaseURL, "books API base URL")
	verbose := fs.Bool("v", false, "log store activity")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if !*verbose && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	log := logger.New(logger.Config{Writer: stderr, Format: cfg.Log.Format, Level: level})

	client := booksapi.NewClient(*apiURL,
		booksapi.WithTimeout(cfg.API.Timeout),
		booksapi.WithRateLimit(cfg.API.RPS, 1),
		booksapi.WithRetries(cfg.API.MaxRetries, booksapi.DefaultBackoff),
	)
	a := &app{
		store:  library.New(client, library.WithLogger(log)),
		stdout: stdout,
		stderr: stderr,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "list":
		return a.list(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "show":
		return a.show(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete", "rm":
		return a.remove(ctx, rest)
	case "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}
}
