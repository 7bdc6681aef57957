package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/tui"
)

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hatch tui [--path PATH] [--platform NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Edit the configuration and inspect monitors interactively.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	// Log output would tear the alternate screen.
	quiet := platform.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, _, err := openContext(flags, quiet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: monitors unavailable:", err)
		ctx = nil
	} else {
		defer ctx.Terminate()
	}

	if err := tui.Run(*flags.path, ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
