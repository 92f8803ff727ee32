// Command dotspool prints every file dropped into a spool directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wbrown/dotprint"
	"github.com/wbrown/dotprint/internal/cli"
	"github.com/wbrown/dotprint/internal/logging"
	"github.com/wbrown/dotprint/spool"
)

func main() {
	logging.FromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dotspool", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		flags    cli.RenderFlags
		spoolDir string
		outDir   string
		format   string
		sweep    string
		debounce time.Duration
		debug    bool
	)
	flags.Register(fs)
	fs.StringVar(&spoolDir, "spool", "", "directory to watch for print jobs (required)")
	fs.StringVar(&outDir, "out", "", "directory for rendered documents (required)")
	fs.StringVar(&format, "format", "pdf", "output format: pdf, png or txt")
	fs.StringVar(&sweep, "sweep", spool.DefaultSweepSchedule, "cron schedule for rescanning the spool directory")
	fs.DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet time before a changed file is printed")
	cli.BoolFlag(fs, &debug, "d", "debug", "enable debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if debug {
		logging.DebugEnabled = true
	}
	if flags.Introspect(stdout) {
		return 0
	}

	logger := log.New(stderr, "dotspool: ", log.LstdFlags)
	if spoolDir == "" || outDir == "" {
		logger.Printf("ERROR: -spool and -out are required")
		fs.PrintDefaults()
		return 2
	}
	switch format {
	case "pdf", "png", "txt":
	default:
		logger.Printf("ERROR: unsupported format %q", format)
		return 2
	}

	cfg, err := flags.Config()
	if err != nil {
		logger.Printf("ERROR: %v", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	r, err := dotprint.NewRenderer(cfg, dotprint.WithRendererLogger(logger))
	if err != nil {
		logger.Printf("ERROR: %v", err)
		return 1
	}
	s, err := spool.New(spoolDir, outDir, r,
		spool.WithFormat(format),
		spool.WithSweepSchedule(sweep),
		spool.WithDebounce(debounce),
		spool.WithLogger(logger))
	if err != nil {
		logger.Printf("ERROR: %v", err)
		return 1
	}
	if err := s.Run(ctx); err != nil {
		logger.Printf("ERROR: %v", fmt.Errorf("spooler stopped: %w", err))
		return 1
	}
	return 0
}
