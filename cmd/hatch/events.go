package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
)

func runEvents(args []string) int {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := addCommonFlags(fs)
	timeout := fs.Duration("timeout", 0, "Exit after this long (0 waits for the window to close)")
	fullscreen := fs.Bool("fullscreen", false, "Open the window fullscreen on the primary monitor")
	transparent := fs.Bool("transparent", false, "Request a transparent framebuffer")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hatch events [--path PATH] [--platform NAME] [--timeout D] [--fullscreen] [--transparent]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a window and print every event it receives until it is closed.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	out := os.Stdout
	ctx, cfg, err := openContext(flags, platform.WithHandler(func(ev event.Event) {
		fmt.Fprintln(out, formatEvent(ev))
	}))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer ctx.Terminate()

	wc := cfg.WindowConfig()
	if *fullscreen {
		wc.Monitor = ctx.PrimaryMonitor()
	}
	win, err := ctx.CreateWindow(wc, platform.ContextConfig{Client: platform.NoAPI}, platform.FramebufferConfig{Transparent: *transparent})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log.Printf("window %d open on %s", win.ID, ctx.Platform())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	stop := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			win.SetShouldClose(true)
			ctx.PostEmptyEvent()
		case <-stop:
		}
	}()
	defer close(stop)

	return pumpUntilClosed(ctx, win, *timeout)
}

// pumpUntilClosed waits for events until win is asked to close or timeout
// elapses. A zero timeout waits indefinitely.
func pumpUntilClosed(ctx *platform.Context, win *platform.Window, timeout time.Duration) int {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for !win.ShouldClose {
		if deadline.IsZero() {
			ctx.WaitEvents()
			continue
		}
		left := time.Until(deadline)
		if left <= 0 {
			break
		}
		if err := ctx.WaitEventsTimeout(left); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	win.Destroy()
	return 0
}

func formatMods(mods event.ModifierKey) string {
	names := []struct {
		bit  event.ModifierKey
		name string
	}{
		{event.ModShift, "shift"},
		{event.ModControl, "ctrl"},
		{event.ModAlt, "alt"},
		{event.ModSuper, "super"},
		{event.ModCapsLock, "caps"},
		{event.ModNumLock, "num"},
	}
	var parts []string
	for _, n := range names {
		if mods&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "+")
}

func formatEvent(ev event.Event) string {
	switch e := ev.(type) {
	case event.Key:
		return fmt.Sprintf("key      win=%d key=%s scancode=%d %s mods=%s", e.Window, e.Key, e.Scancode, e.Action, formatMods(e.Mods))
	case event.Char:
		return fmt.Sprintf("char     win=%d rune=%q mods=%s", e.Window, e.Rune, formatMods(e.Mods))
	case event.CursorPos:
		return fmt.Sprintf("cursor   win=%d x=%.1f y=%.1f", e.Window, e.X, e.Y)
	case event.CursorEnter:
		return fmt.Sprintf("enter    win=%d entered=%v", e.Window, e.Entered)
	case event.MouseButton:
		return fmt.Sprintf("button   win=%d button=%d %s mods=%s", e.Window, int(e.Button)+1, e.Action, formatMods(e.Mods))
	case event.Scroll:
		return fmt.Sprintf("scroll   win=%d dx=%.2f dy=%.2f", e.Window, e.XOffset, e.YOffset)
	case event.WindowSize:
		return fmt.Sprintf("size     win=%d %dx%d", e.Window, e.Width, e.Height)
	case event.WindowPos:
		return fmt.Sprintf("pos      win=%d %d,%d", e.Window, e.X, e.Y)
	case event.WindowClose:
		return fmt.Sprintf("close    win=%d", e.Window)
	case event.WindowFocus:
		return fmt.Sprintf("focus    win=%d focused=%v", e.Window, e.Focused)
	case event.WindowIconify:
		return fmt.Sprintf("iconify  win=%d iconified=%v", e.Window, e.Iconified)
	case event.WindowMaximize:
		return fmt.Sprintf("maximize win=%d maximized=%v", e.Window, e.Maximized)
	case event.WindowRefresh:
		return fmt.Sprintf("refresh  win=%d", e.Window)
	case event.FramebufferSize:
		return fmt.Sprintf("fbsize   win=%d %dx%d", e.Window, e.Width, e.Height)
	case event.ContentScale:
		return fmt.Sprintf("scale    win=%d %.2fx%.2f", e.Window, e.XScale, e.YScale)
	case event.Monitor:
		return fmt.Sprintf("monitor  id=%d connected=%v", e.Monitor, e.Connected)
	case event.Drop:
		return fmt.Sprintf("drop     win=%d paths=%q", e.Window, e.Paths)
	case event.Keyboard:
		return fmt.Sprintf("keyboard %q connected=%v", e.Name, e.Connected)
	case event.Joystick:
		return fmt.Sprintf("joystick jid=%d connected=%v", e.Joystick, e.Connected)
	}
	return fmt.Sprintf("event    %T", ev)
}

func runKeys(args []string) int {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hatch keys [--path PATH] [--platform NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the scancode and layout-specific name of every printable key.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	ctx, _, err := openContext(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer ctx.Terminate()

	printKeyNames(os.Stdout, ctx)
	return 0
}

func printKeyNames(w io.Writer, ctx *platform.Context) {
	for key := event.KeySpace; key <= event.KeyLast; key++ {
		if !key.Valid() {
			continue
		}
		name, err := ctx.KeyName(key, 0)
		if err != nil || name == "" {
			continue
		}
		fmt.Fprintf(w, "%-14s %4d  %s\n", key, ctx.KeyScancode(key), name)
	}
}
