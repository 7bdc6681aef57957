package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
)

func nullFlags(t *testing.T) commonFlags {
	t.Helper()
	t.Setenv(config.EnvConfig, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(config.EnvPlatform, "")
	path := ""
	name := "null"
	return commonFlags{path: &path, platform: &name}
}

func openNull(t *testing.T, opts ...platform.Option) *platform.Context {
	t.Helper()
	ctx, _, err := openContext(nullFlags(t), opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(ctx.Terminate)
	return ctx
}

func TestOpenContext_RejectsUnknownPlatform(t *testing.T) {
	flags := nullFlags(t)
	*flags.platform = "cocoa"
	if _, _, err := openContext(flags); err == nil {
		t.Fatalf("expected an error for an unknown platform")
	}
}

func TestDescribeMonitors_Null(t *testing.T) {
	ctx := openNull(t)

	infos := describeMonitors(ctx)
	if len(infos) != 1 {
		t.Fatalf("expected one monitor, got %d", len(infos))
	}
	m := infos[0]
	if !m.Primary || m.Name == "" || m.Mode.Width == 0 || m.ModeCount != 1 {
		t.Fatalf("unexpected monitor %+v", m)
	}

	var buf bytes.Buffer
	printMonitorTable(&buf, infos)
	if !strings.Contains(buf.String(), m.Name+" *") {
		t.Fatalf("expected primary marker in table, got:\n%s", buf.String())
	}
}

func TestPrintKeyNames_Null(t *testing.T) {
	ctx := openNull(t)

	var buf bytes.Buffer
	printKeyNames(&buf, ctx)
	out := buf.String()
	if !strings.Contains(out, "A ") || !strings.Contains(out, " a\n") {
		t.Fatalf("expected key A named a, got:\n%s", out)
	}
}

func TestReadClipboard_Null(t *testing.T) {
	ctx := openNull(t)
	if err := ctx.SetClipboardString("hello"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := readClipboard(ctx, time.Second)
	if err != nil || got != "hello" {
		t.Fatalf("expected hello, got %q (%v)", got, err)
	}
}

func TestPumpUntilClosed_Timeout(t *testing.T) {
	ctx := openNull(t)

	win, err := ctx.CreateWindow(platform.DefaultWindowConfig(), platform.ContextConfig{}, platform.FramebufferConfig{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if code := pumpUntilClosed(ctx, win, 20*time.Millisecond); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !win.Destroyed() {
		t.Fatalf("expected window to be destroyed")
	}
}

func TestPumpUntilClosed_StopsOnClose(t *testing.T) {
	ctx := openNull(t)
	win, err := ctx.CreateWindow(platform.DefaultWindowConfig(), platform.ContextConfig{}, platform.FramebufferConfig{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	win.SetShouldClose(true)
	if code := pumpUntilClosed(ctx, win, 0); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestFormatEvent(t *testing.T) {
	cases := []struct {
		ev   event.Event
		want string
	}{
		{event.Key{Window: 1, Key: event.KeyA, Scancode: 38, Action: event.Press, Mods: event.ModShift | event.ModControl}, "key      win=1 key=A scancode=38 press mods=shift+ctrl"},
		{event.Char{Window: 1, Rune: 'é'}, `char     win=1 rune='é' mods=-`},
		{event.MouseButton{Window: 2, Button: event.ButtonRight, Action: event.Release}, "button   win=2 button=2 release mods=-"},
		{event.WindowClose{Window: 3}, "close    win=3"},
		{event.Monitor{Monitor: 4, Connected: true}, "monitor  id=4 connected=true"},
	}
	for _, tc := range cases {
		if got := formatEvent(tc.ev); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestFormatSource(t *testing.T) {
	cases := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceEnv, Name: config.EnvPlatform}, "env:HATCH_PLATFORM"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
	}
	for _, tc := range cases {
		if got := formatSource(tc.src); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
