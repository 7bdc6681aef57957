package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/hatch/internal/platform"
)

const clipboardTimeout = 2 * time.Second

func runClipboard(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  hatch clipboard get [--path PATH] [--platform NAME]")
		fmt.Fprintln(os.Stderr, "  hatch clipboard set [--path PATH] [--platform NAME] [text]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "set reads stdin when no text is given.")
		return 2
	}

	fs := flag.NewFlagSet("clipboard "+args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := addCommonFlags(fs)
	if code, ok := parseFlags(fs, args[1:]); !ok {
		return code
	}

	switch args[0] {
	case "get":
		ctx, _, err := openContext(flags)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer ctx.Terminate()

		text, err := readClipboard(ctx, clipboardTimeout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(text)
		return 0

	case "set":
		text := strings.Join(fs.Args(), " ")
		if fs.NArg() == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			text = string(data)
		}

		ctx, _, err := openContext(flags)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer ctx.Terminate()

		if err := ctx.SetClipboardString(text); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		// Serve the selection briefly so other clients can read it.
		ctx.WaitEventsTimeout(clipboardTimeout)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown clipboard subcommand: %s\n", args[0])
		return 2
	}
}

// readClipboard pumps events until an asynchronous clipboard read completes.
func readClipboard(ctx *platform.Context, timeout time.Duration) (string, error) {
	req, err := ctx.RequestClipboard()
	if err != nil {
		return "", err
	}
	deadline := time.Now().Add(timeout)
	for !req.Done() {
		left := time.Until(deadline)
		if left <= 0 {
			return "", fmt.Errorf("clipboard read timed out after %s", timeout)
		}
		if err := ctx.WaitEventsTimeout(left); err != nil {
			return "", err
		}
	}
	return req.Result()
}
