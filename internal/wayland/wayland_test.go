//go:build linux

package wayland

import (
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/runtimepath"
	"github.com/1broseidon/hatch/internal/wl"
	"github.com/1broseidon/hatch/internal/wl/wltest"
	"golang.org/x/sys/unix"
)

type recorder struct {
	events []event.Event
}

func (r *recorder) handle(ev event.Event) {
	r.events = append(r.events, ev)
}

func eventsOf[T event.Event](r *recorder) []T {
	var out []T
	for _, ev := range r.events {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

var baseGlobals = []wltest.Global{
	{Interface: "wl_compositor", Version: 4},
	{Interface: "wl_subcompositor", Version: 1},
	{Interface: "wl_shm", Version: 1},
	{Interface: "xdg_wm_base", Version: 2},
	{Interface: "wl_seat", Version: 5},
	{Interface: "wl_output", Version: 3},
	{Interface: "wl_data_device_manager", Version: 3},
	{Interface: "wp_viewporter", Version: 1},
}

type env struct {
	srv *wltest.Server
	ctx *platform.Context
	b   *Backend
	rec *recorder
}

// announce plays the compositor side of binding: seats report a pointer
// and keyboard, outputs describe a 1920x1080 panel at scale 2.
func announce(s *wltest.Server, req wltest.Request) {
	switch req.Args[1].Str {
	case "wl_seat":
		s.Send(req.NewID, 0, func(e *wl.Encoder) {
			e.Uint(wl.SeatCapabilityPointer | wl.SeatCapabilityKeyboard)
		})
	case "wl_output":
		s.Send(req.NewID, 0, func(e *wl.Encoder) {
			e.Int(0)
			e.Int(0)
			e.Int(600)
			e.Int(340)
			e.Int(0)
			e.String("Acme")
			e.String("Panel")
			e.Int(0)
		})
		s.Send(req.NewID, 1, func(e *wl.Encoder) {
			e.Uint(wl.OutputModeCurrent)
			e.Int(1920)
			e.Int(1080)
			e.Int(59940)
		})
		s.Send(req.NewID, 3, func(e *wl.Encoder) { e.Int(2) })
		s.Send(req.NewID, 2, nil)
	}
}

func toplevelStates(states ...uint32) []byte {
	var b []byte
	for _, st := range states {
		b = binary.LittleEndian.AppendUint32(b, st)
	}
	return b
}

// configureOnCreate answers get_toplevel with an initial configure.
func configureOnCreate(width, height int32, states ...uint32) func(*wltest.Server, wltest.Request) {
	return func(s *wltest.Server, req wltest.Request) {
		s.Send(req.NewID, 0, func(e *wl.Encoder) {
			e.Int(width)
			e.Int(height)
			e.Array(toplevelStates(states...))
		})
		s.Send(req.Object, 0, func(e *wl.Encoder) { e.Uint(s.NextSerial()) })
	}
}

func newEnv(t *testing.T, opts Options, globals []wltest.Global, hooks ...func(*wltest.Server)) *env {
	t.Helper()
	t.Setenv("XCURSOR_PATH", t.TempDir())
	t.Setenv("XCURSOR_THEME", "")
	t.Setenv("XCURSOR_SIZE", "")

	srv, conn, err := wltest.New(globals...)
	if err != nil {
		t.Fatalf("wltest.New: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	srv.Handle("wl_registry", 0, announce)
	srv.Handle("xdg_surface", 1, configureOnCreate(800, 600))
	for _, hook := range hooks {
		hook(srv)
	}

	b := New(conn, opts)
	rec := &recorder{}
	cfg := platform.Config{
		Platform: platform.Wayland,
		Candidates: []platform.Candidate{{
			ID:      platform.Wayland,
			Connect: func() (platform.Backend, error) { return b, nil },
		}},
	}
	ctx, err := platform.Init(cfg,
		platform.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		platform.WithHandler(rec.handle))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(ctx.Terminate)
	e := &env{srv: srv, ctx: ctx, b: b, rec: rec}
	e.sync(t)
	return e
}

// sync waits until the compositor has seen every request, including those
// the client sent while dispatching the events of the first round trip.
func (e *env) sync(t *testing.T) {
	t.Helper()
	for i := 0; i < 2; i++ {
		if err := e.b.conn.Roundtrip(); err != nil {
			t.Fatalf("roundtrip: %v", err)
		}
	}
	if err := e.srv.Err(); err != nil {
		t.Fatalf("server: %v", err)
	}
}

func (e *env) objectOf(t *testing.T, iface string) uint32 {
	t.Helper()
	ids := e.srv.ObjectsOf(iface)
	if len(ids) == 0 {
		t.Fatalf("no %s created", iface)
	}
	return ids[len(ids)-1]
}

func (e *env) newWindow(t *testing.T) *platform.Window {
	t.Helper()
	w, err := e.ctx.CreateWindow(platform.DefaultWindowConfig(), platform.ContextConfig{}, platform.FramebufferConfig{})
	if err != nil {
		t.Fatalf("create window: %v", err)
	}
	e.sync(t)
	return w
}

func surfaceID(w *platform.Window) uint32 {
	return windowOf(w).surface.ID()
}

func TestInit_PublishesOutputAsMonitor(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)

	monitors := e.ctx.Monitors()
	if len(monitors) != 1 {
		t.Fatalf("monitors = %d, want 1", len(monitors))
	}
	m := monitors[0]
	if m.Name != "Acme Panel" {
		t.Fatalf("name = %q, want %q", m.Name, "Acme Panel")
	}
	if w, h := m.PhysicalSize(); w != 600 || h != 340 {
		t.Fatalf("physical size = %dx%d, want 600x340", w, h)
	}
	mode, err := m.VideoMode()
	if err != nil {
		t.Fatalf("video mode: %v", err)
	}
	if mode.Width != 1920 || mode.Height != 1080 || mode.RefreshRate != 60 {
		t.Fatalf("mode = %+v, want 1920x1080@60", mode)
	}
	if xs, ys := m.ContentScale(); xs != 2 || ys != 2 {
		t.Fatalf("content scale = %v,%v, want 2,2", xs, ys)
	}
}

func TestInit_FailsWithoutXdgShell(t *testing.T) {
	t.Setenv("XCURSOR_PATH", t.TempDir())
	var globals []wltest.Global
	for _, g := range baseGlobals {
		if g.Interface != "xdg_wm_base" {
			globals = append(globals, g)
		}
	}
	srv, conn, err := wltest.New(globals...)
	if err != nil {
		t.Fatalf("wltest.New: %v", err)
	}
	defer srv.Close()

	b := New(conn, Options{})
	cfg := platform.Config{Candidates: []platform.Candidate{{
		ID:      platform.Wayland,
		Connect: func() (platform.Backend, error) { return b, nil },
	}}}
	_, err = platform.Init(cfg, platform.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if !platform.IsKind(err, platform.PlatformUnavailable) {
		t.Fatalf("init error = %v, want PlatformUnavailable", err)
	}
	if b.conn != nil {
		t.Fatal("connection left open after failed init")
	}
}

func TestOutputRemoval_DisconnectsMonitor(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	name := uint32(slices.IndexFunc(baseGlobals, func(g wltest.Global) bool { return g.Interface == "wl_output" }) + 1)

	if err := e.srv.RemoveGlobal(name); err != nil {
		t.Fatalf("RemoveGlobal: %v", err)
	}
	e.sync(t)

	if got := len(e.ctx.Monitors()); got != 0 {
		t.Fatalf("monitors = %d after removal, want 0", got)
	}
	evs := eventsOf[event.Monitor](e.rec)
	if len(evs) == 0 || evs[len(evs)-1].Connected {
		t.Fatalf("monitor events = %+v, want a disconnect last", evs)
	}
	if len(e.srv.Requests("wl_output", 0)) != 1 {
		t.Fatal("wl_output was not released")
	}
}

func TestCreateWindow_ConfigureSetsSize(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)

	if width, height := w.Size(); width != 800 || height != 600 {
		t.Fatalf("size = %dx%d, want 800x600", width, height)
	}
	sizes := eventsOf[event.WindowSize](e.rec)
	if len(sizes) == 0 || sizes[len(sizes)-1].Width != 800 || sizes[len(sizes)-1].Height != 600 {
		t.Fatalf("size events = %+v", sizes)
	}
	if len(e.srv.Requests("xdg_surface", 4)) != 1 {
		t.Fatal("configure was not acknowledged")
	}
	if title, ok := e.srv.Last("xdg_toplevel", 2); !ok || title.Args[0].Str != "hatch" {
		t.Fatalf("title request = %+v", title)
	}
	if !w.Visible() {
		t.Fatal("window not visible after creation")
	}
}

func TestConfigure_HonoursAspectRatioAndMaximize(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	if err := w.SetAspectRatio(1, 1); err != nil {
		t.Fatalf("SetAspectRatio: %v", err)
	}

	toplevel := e.objectOf(t, "xdg_toplevel")
	e.srv.Send(toplevel, 0, func(enc *wl.Encoder) {
		enc.Int(900)
		enc.Int(500)
		enc.Array(nil)
	})
	e.sync(t)
	if width, height := w.Size(); width != 500 || height != 500 {
		t.Fatalf("size = %dx%d, want 500x500", width, height)
	}

	e.srv.Send(toplevel, 0, func(enc *wl.Encoder) {
		enc.Int(1920)
		enc.Int(1000)
		enc.Array(toplevelStates(wl.ToplevelStateMaximized))
	})
	e.sync(t)
	if width, height := w.Size(); width != 1920 || height != 1000 {
		t.Fatalf("maximized size = %dx%d, want 1920x1000", width, height)
	}
	if !w.Maximized() {
		t.Fatal("window not maximized")
	}
	maxed := eventsOf[event.WindowMaximize](e.rec)
	if len(maxed) != 1 || !maxed[0].Maximized {
		t.Fatalf("maximize events = %+v", maxed)
	}
}

func TestSurfaceEnter_AppliesOutputScale(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)

	output := e.objectOf(t, "wl_output")
	e.srv.Send(surfaceID(w), 0, func(enc *wl.Encoder) { enc.Uint(output) })
	e.sync(t)

	if width, height := w.FramebufferSize(); width != 1600 || height != 1200 {
		t.Fatalf("framebuffer = %dx%d, want 1600x1200", width, height)
	}
	if xs, _ := w.ContentScale(); xs != 2 {
		t.Fatalf("content scale = %v, want 2", xs)
	}
	scale, ok := e.srv.Last("wl_surface", 8)
	if !ok || scale.Args[0].Int() != 2 {
		t.Fatalf("set_buffer_scale = %+v", scale)
	}

	e.srv.Send(surfaceID(w), 1, func(enc *wl.Encoder) { enc.Uint(output) })
	e.sync(t)
	if xs, _ := w.ContentScale(); xs != 1 {
		t.Fatalf("content scale after leave = %v, want 1", xs)
	}
}

func TestDecorations_ClientSideWithoutManager(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)

	if got := len(e.srv.ObjectsOf("wl_subsurface")); got != 4 {
		t.Fatalf("subsurfaces = %d, want 4", got)
	}
	if l, top, r, b := w.FrameSize(); l != 4 || top != 24 || r != 4 || b != 4 {
		t.Fatalf("frame = %d,%d,%d,%d, want 4,24,4,4", l, top, r, b)
	}

	if err := w.SetDecorated(false); err != nil {
		t.Fatalf("SetDecorated: %v", err)
	}
	e.sync(t)
	if got := len(e.srv.Requests("wl_subsurface", 0)); got != 4 {
		t.Fatalf("subsurface destroys = %d, want 4", got)
	}
	if l, top, r, b := w.FrameSize(); l+top+r+b != 0 {
		t.Fatalf("frame = %d,%d,%d,%d after undecorating", l, top, r, b)
	}
}

func TestDecorations_ServerSideWhenOffered(t *testing.T) {
	globals := append(slices.Clone(baseGlobals), wltest.Global{Interface: "zxdg_decoration_manager_v1", Version: 1})
	e := newEnv(t, Options{}, globals, func(s *wltest.Server) {
		s.Handle("zxdg_decoration_manager_v1", 1, func(s *wltest.Server, req wltest.Request) {
			s.Send(req.NewID, 0, func(enc *wl.Encoder) { enc.Uint(wl.DecorationModeServerSide) })
		})
	})
	w := e.newWindow(t)

	mode, ok := e.srv.Last("zxdg_toplevel_decoration_v1", 1)
	if !ok || mode.Args[0].Uint != wl.DecorationModeServerSide {
		t.Fatalf("set_mode = %+v", mode)
	}
	if got := len(e.srv.ObjectsOf("wl_subsurface")); got != 0 {
		t.Fatalf("subsurfaces = %d, want 0", got)
	}
	if l, top, r, b := w.FrameSize(); l+top+r+b != 0 {
		t.Fatalf("frame = %d,%d,%d,%d, want zero", l, top, r, b)
	}
}

func TestDecorations_NoneOption(t *testing.T) {
	e := newEnv(t, Options{Decorations: DecorationsNone}, baseGlobals)
	e.newWindow(t)
	if got := len(e.srv.ObjectsOf("wl_subsurface")); got != 0 {
		t.Fatalf("subsurfaces = %d, want 0", got)
	}
}

func TestHideShow_RecreatesToplevel(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)

	if err := w.Hide(); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	e.sync(t)
	if w.Visible() {
		t.Fatal("window visible after Hide")
	}
	if got := len(e.srv.Requests("xdg_toplevel", 0)); got != 1 {
		t.Fatalf("toplevel destroys = %d, want 1", got)
	}

	if err := w.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	e.sync(t)
	if got := len(e.srv.Requests("xdg_surface", 1)); got != 2 {
		t.Fatalf("get_toplevel requests = %d, want 2", got)
	}
	if !w.Visible() {
		t.Fatal("window hidden after Show")
	}
}

func (e *env) focusKeyboard(t *testing.T, w *platform.Window) uint32 {
	t.Helper()
	kbd := e.objectOf(t, "wl_keyboard")
	e.srv.Send(kbd, 1, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(surfaceID(w))
		enc.Array(nil)
	})
	return kbd
}

func sendKey(s *wltest.Server, kbd, scancode, state uint32) {
	s.Send(kbd, 3, func(enc *wl.Encoder) {
		enc.Uint(s.NextSerial())
		enc.Uint(0)
		enc.Uint(scancode)
		enc.Uint(state)
	})
}

func TestKeyboard_KeyAndCharEvents(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	kbd := e.focusKeyboard(t, w)
	e.srv.Send(kbd, 4, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(xkbShift)
		enc.Uint(0)
		enc.Uint(0)
		enc.Uint(0)
	})
	sendKey(e.srv, kbd, 30, wl.KeyboardKeyStatePressed)
	sendKey(e.srv, kbd, 30, wl.KeyboardKeyStateReleased)
	e.sync(t)

	if !w.Focused() {
		t.Fatal("window not focused after keyboard enter")
	}
	keys := eventsOf[event.Key](e.rec)
	if len(keys) != 2 {
		t.Fatalf("key events = %+v, want press and release", keys)
	}
	if keys[0].Key != event.KeyA || keys[0].Action != event.Press || keys[0].Mods != event.ModShift || keys[0].Scancode != 30 {
		t.Fatalf("press = %+v", keys[0])
	}
	if keys[1].Action != event.Release {
		t.Fatalf("release = %+v", keys[1])
	}
	chars := eventsOf[event.Char](e.rec)
	if len(chars) != 1 || chars[0].Rune != 'A' {
		t.Fatalf("char events = %+v, want 'A'", chars)
	}
}

func TestKeyboard_RepeatsHeldKey(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	kbd := e.focusKeyboard(t, w)
	e.srv.Send(kbd, 5, func(enc *wl.Encoder) {
		enc.Int(100)
		enc.Int(1)
	})
	sendKey(e.srv, kbd, 30, wl.KeyboardKeyStatePressed)
	e.sync(t)

	repeated := func() bool {
		for _, k := range eventsOf[event.Key](e.rec) {
			if k.Key == event.KeyA && k.Action == event.Repeat {
				return true
			}
		}
		return false
	}
	for i := 0; i < 40 && !repeated(); i++ {
		e.ctx.WaitEventsTimeout(50 * time.Millisecond)
	}
	if !repeated() {
		t.Fatal("held key did not repeat")
	}

	sendKey(e.srv, kbd, 30, wl.KeyboardKeyStateReleased)
	e.sync(t)
	if w.Key(event.KeyA) != event.Release {
		t.Fatal("key still held after release")
	}
	var spec unix.ItimerSpec
	if err := unix.TimerfdGettime(e.b.keyRepeatTimerfd, &spec); err != nil {
		t.Fatalf("timerfd_gettime: %v", err)
	}
	if spec.Value.Nano() != 0 {
		t.Fatalf("repeat timer still armed: %+v", spec)
	}
}

func TestKeyboard_LeaveReleasesHeldKeys(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	kbd := e.focusKeyboard(t, w)
	sendKey(e.srv, kbd, 57, wl.KeyboardKeyStatePressed)
	e.srv.Send(kbd, 2, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(surfaceID(w))
	})
	e.sync(t)

	if w.Focused() {
		t.Fatal("window focused after keyboard leave")
	}
	if w.Key(event.KeySpace) != event.Release {
		t.Fatal("space still pressed after focus loss")
	}
}

func TestPointer_EnterMotionButtonScroll(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	ptr := e.objectOf(t, "wl_pointer")

	e.srv.Send(ptr, 0, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(surfaceID(w))
		enc.Fixed(wl.FixedFromInt(10))
		enc.Fixed(wl.FixedFromInt(20))
	})
	e.srv.Send(ptr, 2, func(enc *wl.Encoder) {
		enc.Uint(0)
		enc.Fixed(wl.FixedFromFloat(15.5))
		enc.Fixed(wl.FixedFromInt(25))
	})
	e.srv.Send(ptr, 3, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(0)
		enc.Uint(btnLeft)
		enc.Uint(wl.PointerButtonStatePressed)
	})
	e.srv.Send(ptr, 4, func(enc *wl.Encoder) {
		enc.Uint(0)
		enc.Uint(wl.PointerAxisVerticalScroll)
		enc.Fixed(wl.FixedFromInt(10))
	})
	e.sync(t)

	if !w.Hovered() {
		t.Fatal("window not hovered after pointer enter")
	}
	if enters := eventsOf[event.CursorEnter](e.rec); len(enters) != 1 || !enters[0].Entered {
		t.Fatalf("enter events = %+v", enters)
	}
	if x, y := w.CursorPos(); x != 15.5 || y != 25 {
		t.Fatalf("cursor = %v,%v, want 15.5,25", x, y)
	}
	buttons := eventsOf[event.MouseButton](e.rec)
	if len(buttons) != 1 || buttons[0].Button != event.Button1 || buttons[0].Action != event.Press {
		t.Fatalf("button events = %+v", buttons)
	}
	scrolls := eventsOf[event.Scroll](e.rec)
	if len(scrolls) != 1 || scrolls[0].YOffset != -1 || scrolls[0].XOffset != 0 {
		t.Fatalf("scroll events = %+v", scrolls)
	}
}

func TestPointer_DecorationPressStartsMove(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	ptr := e.objectOf(t, "wl_pointer")
	top := windowOf(w).decorations.parts[0].surface.ID()

	e.srv.Send(ptr, 0, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(top)
		enc.Fixed(wl.FixedFromInt(100))
		enc.Fixed(wl.FixedFromInt(12))
	})
	e.srv.Send(ptr, 3, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(0)
		enc.Uint(btnLeft)
		enc.Uint(wl.PointerButtonStatePressed)
	})
	e.sync(t)

	if len(e.srv.Requests("xdg_toplevel", 5)) != 1 {
		t.Fatal("press on the title bar did not start a move")
	}
	if got := eventsOf[event.MouseButton](e.rec); len(got) != 0 {
		t.Fatalf("decoration press leaked button events: %+v", got)
	}
}

func TestCursorDisabled_LocksPointerAndTracksRelativeMotion(t *testing.T) {
	globals := append(slices.Clone(baseGlobals),
		wltest.Global{Interface: "zwp_relative_pointer_manager_v1", Version: 1},
		wltest.Global{Interface: "zwp_pointer_constraints_v1", Version: 1},
	)
	e := newEnv(t, Options{}, globals)
	w := e.newWindow(t)
	ptr := e.objectOf(t, "wl_pointer")
	e.srv.Send(ptr, 0, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(surfaceID(w))
		enc.Fixed(wl.FixedFromInt(5))
		enc.Fixed(wl.FixedFromInt(5))
	})
	e.sync(t)

	if err := w.SetCursorMode(event.CursorDisabled); err != nil {
		t.Fatalf("SetCursorMode: %v", err)
	}
	e.sync(t)
	if len(e.srv.Requests("zwp_pointer_constraints_v1", 1)) != 1 {
		t.Fatal("pointer was not locked")
	}

	rel := e.objectOf(t, "zwp_relative_pointer_v1")
	e.srv.Send(rel, 0, func(enc *wl.Encoder) {
		enc.Uint(0)
		enc.Uint(0)
		enc.Fixed(wl.FixedFromInt(3))
		enc.Fixed(wl.FixedFromInt(-2))
		enc.Fixed(wl.FixedFromInt(6))
		enc.Fixed(wl.FixedFromInt(-4))
	})
	e.sync(t)
	if x, y := w.CursorPos(); x != 3 || y != -2 {
		t.Fatalf("virtual cursor = %v,%v, want 3,-2", x, y)
	}

	if err := w.SetCursorMode(event.CursorNormal); err != nil {
		t.Fatalf("SetCursorMode: %v", err)
	}
	e.sync(t)
	if len(e.srv.Requests("zwp_locked_pointer_v1", 0)) != 1 {
		t.Fatal("pointer lock was not released")
	}
}

func TestClipboard_OwnedSelectionIsServed(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	if err := e.ctx.SetClipboardString("hello"); err != nil {
		t.Fatalf("SetClipboardString: %v", err)
	}
	e.sync(t)
	if _, ok := e.srv.Last("wl_data_device", 1); !ok {
		t.Fatal("selection was not set")
	}
	if got, err := e.ctx.ClipboardString(); err != nil || got != "hello" {
		t.Fatalf("ClipboardString = %q, %v", got, err)
	}

	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer unix.Close(p[0])
	source := e.objectOf(t, "wl_data_source")
	e.srv.Send(source, 1, func(enc *wl.Encoder) {
		enc.String(mimeTextUTF8)
		enc.FD(p[1])
	})
	unix.Close(p[1])
	e.sync(t)

	got, err := io.ReadAll(os.NewFile(uintptr(p[0]), "clipboard"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("served %q, want %q", got, "hello")
	}
}

func TestClipboard_OwnedSelectionOffersOnlyUTF8(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	if err := e.ctx.SetClipboardString("hello"); err != nil {
		t.Fatalf("SetClipboardString: %v", err)
	}
	e.sync(t)
	offers := e.srv.Requests("wl_data_source", 0)
	if len(offers) != 1 || offers[0].Args[0].Str != mimeTextUTF8 {
		t.Fatalf("offered %+v, want only %s", offers, mimeTextUTF8)
	}

	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer unix.Close(p[0])
	source := e.objectOf(t, "wl_data_source")
	e.srv.Send(source, 1, func(enc *wl.Encoder) {
		enc.String(mimeText)
		enc.FD(p[1])
	})
	unix.Close(p[1])
	e.sync(t)

	got, err := io.ReadAll(os.NewFile(uintptr(p[0]), "clipboard"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("served %q for %s, want nothing", got, mimeText)
	}
}

// offerSelection makes the compositor announce a text selection served by
// another client with content.
func (e *env) offerSelection(t *testing.T, content string) {
	t.Helper()
	e.srv.Handle("wl_data_offer", 1, func(s *wltest.Server, req wltest.Request) {
		fd := req.Args[1].FD
		// The pipe is non-blocking and may be smaller than content.
		go func() {
			writeAll(fd, []byte(content))
			s.CloseFD(fd)
		}()
	})
	dev := e.objectOf(t, "wl_data_device")
	offer := e.srv.NewObject("wl_data_offer")
	e.srv.Send(dev, 0, func(enc *wl.Encoder) { enc.Uint(offer) })
	e.srv.Send(offer, 0, func(enc *wl.Encoder) { enc.String(mimeTextUTF8) })
	e.srv.Send(dev, 5, func(enc *wl.Encoder) { enc.Uint(offer) })
	e.sync(t)
}

func TestClipboard_ReadsForeignSelection(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	e.offerSelection(t, "from another client")

	got, err := e.ctx.ClipboardString()
	if err != nil {
		t.Fatalf("ClipboardString: %v", err)
	}
	if got != "from another client" {
		t.Fatalf("clipboard = %q", got)
	}
}

func TestClipboard_ReadsSelectionLargerThanPipe(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	want := strings.Repeat("0123456789abcdef", 4096+7)
	e.offerSelection(t, want)

	got, err := e.ctx.ClipboardString()
	if err != nil {
		t.Fatalf("ClipboardString: %v", err)
	}
	if len(got) != len(want) || got != want {
		t.Fatalf("clipboard has %d bytes, want %d", len(got), len(want))
	}
}

func TestClipboard_AsyncRequestCompletesInPump(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	e.offerSelection(t, "async")

	req, err := e.ctx.RequestClipboard()
	if err != nil {
		t.Fatalf("RequestClipboard: %v", err)
	}
	for i := 0; i < 40 && !req.Done(); i++ {
		e.ctx.WaitEventsTimeout(50 * time.Millisecond)
	}
	if !req.Done() {
		t.Fatal("clipboard request never completed")
	}
	if got, err := req.Result(); err != nil || got != "async" {
		t.Fatalf("result = %q, %v", got, err)
	}
}

func TestClipboard_NoSelectionIsFormatUnavailable(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	_, err := e.ctx.ClipboardString()
	if !platform.IsKind(err, platform.FormatUnavailable) {
		t.Fatalf("error = %v, want FormatUnavailable", err)
	}
}

func TestClipboard_ReadFromHandlerIsRefused(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	e.offerSelection(t, "text")

	var handlerErr error
	e.ctx.SetHandler(func(ev event.Event) {
		if _, ok := ev.(event.WindowClose); ok {
			_, handlerErr = e.ctx.ClipboardString()
		}
	})
	toplevel := e.objectOf(t, "xdg_toplevel")
	e.srv.Send(toplevel, 1, nil)
	e.sync(t)

	if !w.ShouldClose {
		t.Fatal("close event not delivered")
	}
	if !platform.IsKind(handlerErr, platform.FeatureUnavailable) {
		t.Fatalf("error = %v, want FeatureUnavailable", handlerErr)
	}
}

func TestDrop_DeliversFilePaths(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	e.srv.Handle("wl_data_offer", 1, func(s *wltest.Server, req wltest.Request) {
		fd := req.Args[1].FD
		unix.Write(fd, []byte("# from file manager\r\nfile:///tmp/a%20b.txt\r\nfile://host/srv/c\r\n"))
		s.CloseFD(fd)
	})
	dev := e.objectOf(t, "wl_data_device")
	offer := e.srv.NewObject("wl_data_offer")
	e.srv.Send(dev, 0, func(enc *wl.Encoder) { enc.Uint(offer) })
	e.srv.Send(offer, 0, func(enc *wl.Encoder) { enc.String(mimeURIList) })
	e.srv.Send(dev, 1, func(enc *wl.Encoder) {
		enc.Uint(e.srv.NextSerial())
		enc.Uint(surfaceID(w))
		enc.Fixed(wl.FixedFromInt(1))
		enc.Fixed(wl.FixedFromInt(1))
		enc.Uint(offer)
	})
	e.srv.Send(dev, 4, nil)
	e.sync(t)

	for i := 0; i < 40 && len(eventsOf[event.Drop](e.rec)) == 0; i++ {
		e.ctx.WaitEventsTimeout(50 * time.Millisecond)
	}
	drops := eventsOf[event.Drop](e.rec)
	if len(drops) != 1 {
		t.Fatalf("drop events = %+v, want 1", drops)
	}
	want := []string{"/tmp/a b.txt", "/srv/c"}
	if !slices.Equal(drops[0].Paths, want) {
		t.Fatalf("paths = %q, want %q", drops[0].Paths, want)
	}
	e.sync(t)
	if len(e.srv.Requests("wl_data_offer", 3)) != 1 {
		t.Fatal("drop was not finished")
	}
}

func TestProtocolError_RequestsWindowClose(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)
	e.ctx.LastError()

	if err := e.srv.PostError(surfaceID(w), 2, "invalid buffer"); err != nil {
		t.Fatalf("PostError: %v", err)
	}
	e.ctx.WaitEventsTimeout(time.Second)

	if !w.ShouldClose {
		t.Fatal("window not asked to close after a protocol error")
	}
	if err := e.ctx.LastError(); !platform.IsKind(err, platform.PlatformError) {
		t.Fatalf("last error = %v, want PlatformError", err)
	}
}

func TestWindowSlots_ReportUnavailableFeatures(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	w := e.newWindow(t)

	if _, _, err := w.Pos(); !platform.IsKind(err, platform.FeatureUnavailable) {
		t.Fatalf("Pos error = %v, want FeatureUnavailable", err)
	}
	if err := w.SetPos(1, 1); !platform.IsKind(err, platform.FeatureUnavailable) {
		t.Fatalf("SetPos error = %v, want FeatureUnavailable", err)
	}
	if err := w.SetFloating(true); !platform.IsKind(err, platform.FeatureUnimplemented) {
		t.Fatalf("SetFloating error = %v, want FeatureUnimplemented", err)
	}
	if w.Opacity() != 1 {
		t.Fatalf("opacity = %v, want 1", w.Opacity())
	}
	if _, err := e.ctx.CreateStandardCursor(event.IBeamCursor); !platform.IsKind(err, platform.CursorUnavailable) {
		t.Fatalf("standard cursor error = %v, want CursorUnavailable without a theme", err)
	}
}

func TestDecorationLayout(t *testing.T) {
	got := decorationLayout(800, 600)
	want := [4]decorationRect{
		{0, -24, 800, 24},
		{-4, -24, 4, 624},
		{800, -24, 4, 624},
		{-4, 600, 808, 4},
	}
	if got != want {
		t.Fatalf("layout = %+v, want %+v", got, want)
	}
}

func TestDecorationEdges(t *testing.T) {
	cases := []struct {
		part decorationPart
		x, y float64
		want uint32
	}{
		{partTop, 50, 10, wl.ResizeEdgeNone},
		{partTop, 50, 2, wl.ResizeEdgeTop},
		{partLeft, 2, 2, wl.ResizeEdgeTopLeft},
		{partLeft, 2, 100, wl.ResizeEdgeLeft},
		{partRight, 2, 100, wl.ResizeEdgeRight},
		{partBottom, 1, 2, wl.ResizeEdgeBottomLeft},
		{partBottom, 806, 2, wl.ResizeEdgeBottomRight},
		{partBottom, 400, 2, wl.ResizeEdgeBottom},
	}
	for _, c := range cases {
		if got := decorationEdges(c.part, c.x, c.y, 800); got != c.want {
			t.Fatalf("edges(%d, %v, %v) = %d, want %d", c.part, c.x, c.y, got, c.want)
		}
	}
	if got := decorationCursor(partBottom, 806, 2, 800); got != "se-resize" {
		t.Fatalf("cursor = %q, want se-resize", got)
	}
}

func TestFitAspectRatio(t *testing.T) {
	if w, h := fitAspectRatio(900, 500, 1, 1); w != 500 || h != 500 {
		t.Fatalf("wide = %dx%d", w, h)
	}
	if w, h := fitAspectRatio(400, 800, 16, 9); w != 400 || h != 225 {
		t.Fatalf("tall = %dx%d", w, h)
	}
	if w, h := fitAspectRatio(300, 200, platform.DontCare, platform.DontCare); w != 300 || h != 200 {
		t.Fatalf("unconstrained = %dx%d", w, h)
	}
}

func TestTranslateChar(t *testing.T) {
	cases := []struct {
		scancode uint32
		mods     event.ModifierKey
		want     rune
	}{
		{30, 0, 'a'},
		{30, event.ModShift, 'A'},
		{30, event.ModCapsLock, 'A'},
		{30, event.ModCapsLock | event.ModShift, 'a'},
		{2, event.ModCapsLock, '1'},
		{2, event.ModShift, '!'},
		{79, 0, 0},
		{79, event.ModNumLock, '1'},
		{1, 0, 0},
	}
	for _, c := range cases {
		if got := translateChar(c.scancode, c.mods); got != c.want {
			t.Fatalf("translateChar(%d, %v) = %q, want %q", c.scancode, c.mods, got, c.want)
		}
	}
}

func TestDecodeMods(t *testing.T) {
	got := decodeMods(xkbShift|xkbControl, xkbMod4, xkbLock|xkbMod2)
	want := event.ModShift | event.ModControl | event.ModSuper | event.ModCapsLock | event.ModNumLock
	if got != want {
		t.Fatalf("mods = %v, want %v", got, want)
	}
	if decodeMods(xkbLock, 0, 0)&event.ModCapsLock != 0 {
		t.Fatal("a depressed Caps Lock key must not report the lock")
	}
}

func TestParseURIList(t *testing.T) {
	got := parseURIList("# comment\r\nfile:///home/u/x%23y\r\nhttps://example.com/a\r\n\r\n")
	want := []string{"/home/u/x#y", "https://example.com/a"}
	if !slices.Equal(got, want) {
		t.Fatalf("paths = %q, want %q", got, want)
	}
}

func TestTerminate_ClearsProxiesAndIsRepeatable(t *testing.T) {
	e := newEnv(t, Options{}, baseGlobals)
	e.newWindow(t)
	e.ctx.Terminate()

	b := e.b
	if b.conn != nil || b.display != nil || b.registry != nil {
		t.Fatal("connection objects survived Terminate")
	}
	if b.seat != nil || b.wmBase != nil || b.compositor != nil || b.dataDevice != nil {
		t.Fatal("global proxies survived Terminate")
	}
	if len(b.outputs) != 0 {
		t.Fatalf("outputs = %d after Terminate", len(b.outputs))
	}
	b.Terminate()
}

func TestCreateTempFile_RequiresRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if fd, err := createTempFile(); !errors.Is(err, runtimepath.ErrNoRuntimeDir) {
		if err == nil {
			unix.Close(fd)
		}
		t.Fatalf("error = %v, want ErrNoRuntimeDir", err)
	}

	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	fd, err := createTempFile()
	if err != nil {
		t.Fatalf("createTempFile: %v", err)
	}
	unix.Close(fd)
}
