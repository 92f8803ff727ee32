// Command dotprint renders dot-matrix printer output to PDF, images or text.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/wbrown/dotprint"
	"github.com/wbrown/dotprint/internal/cli"
	"github.com/wbrown/dotprint/internal/logging"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	logging.FromEnv()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dotprint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dotprint [options] -o OUTPUT INPUT\n\n")
		fs.PrintDefaults()
	}

	var (
		flags  cli.RenderFlags
		output string
		quiet  bool
		debug  bool
	)
	flags.Register(fs)
	cli.StringFlag(fs, &output, "o", "output", "",
		"output file; the extension picks PDF, image (.png, .jpg, .gif, .tif) or text (.txt)")
	cli.BoolFlag(fs, &quiet, "q", "quiet", "do not report dropped bytes and escapes")
	cli.BoolFlag(fs, &debug, "d", "debug", "enable debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if debug {
		logging.DebugEnabled = true
	}
	if flags.Introspect(stdout) {
		return exitOK
	}

	logger := log.New(stderr, "dotprint: ", 0)
	if output == "" {
		logger.Printf("ERROR: an output file is required (-o)")
		fs.Usage()
		return exitUsage
	}
	if fs.NArg() != 1 {
		logger.Printf("ERROR: exactly one input file is required, got %d", fs.NArg())
		fs.Usage()
		return exitUsage
	}

	render, err := flags.Config()
	if err != nil {
		logger.Printf("ERROR: %v", err)
		if errors.Is(err, cli.ErrUsage) {
			return exitUsage
		}
		return exitError
	}
	render.Title = fs.Arg(0)

	componentLogger := logger
	if quiet {
		componentLogger = logging.Discard()
	}
	r, err := dotprint.NewRenderer(render, dotprint.WithRendererLogger(componentLogger))
	if err != nil {
		logger.Printf("ERROR: %v", err)
		return exitError
	}
	if err := r.RenderFile(fs.Arg(0), output); err != nil {
		logger.Printf("ERROR: failed to render %s: %v", fs.Arg(0), err)
		return exitError
	}
	logging.Debugf(logger, "wrote %s", output)
	return exitOK
}
