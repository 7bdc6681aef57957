package platform_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/null"
	"github.com/1broseidon/hatch/internal/platform"
)

type recorder struct {
	events []event.Event
}

func (r *recorder) handle(ev event.Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) keys() []event.Key {
	var out []event.Key
	for _, ev := range r.events {
		if k, ok := ev.(event.Key); ok {
			out = append(out, k)
		}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newNullContext(t *testing.T, opts ...platform.Option) (*platform.Context, *null.Backend) {
	t.Helper()
	backend := null.New()
	cand := platform.Candidate{
		ID:      platform.Null,
		Connect: func() (platform.Backend, error) { return backend, nil },
	}
	opts = append([]platform.Option{platform.WithLogger(quietLogger())}, opts...)
	ctx, err := platform.Init(platform.Config{Candidates: []platform.Candidate{cand}}, opts...)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(ctx.Terminate)
	return ctx, backend
}

func newWindow(t *testing.T, ctx *platform.Context) *platform.Window {
	t.Helper()
	w, err := ctx.CreateWindow(platform.DefaultWindowConfig(), platform.ContextConfig{}, platform.FramebufferConfig{})
	if err != nil {
		t.Fatalf("create window: %v", err)
	}
	return w
}

type failingInit struct {
	*null.Backend
	terminated int
}

func (f *failingInit) Init(platform.Host) error { return errors.New("no display") }
func (f *failingInit) Terminate()               { f.terminated++ }

func TestInit_FallsBackPastUnavailableCandidates(t *testing.T) {
	broken := &failingInit{Backend: null.New()}
	candidates := []platform.Candidate{
		{ID: platform.Win32, Connect: func() (platform.Backend, error) { return nil, errors.New("not windows") }},
		{ID: platform.Wayland, Connect: func() (platform.Backend, error) { return broken, nil }},
		null.Candidate(),
	}

	ctx, err := platform.Init(platform.Config{Candidates: candidates}, platform.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer ctx.Terminate()

	if ctx.Platform() != platform.Null {
		t.Fatalf("expected null platform, got %s", ctx.Platform())
	}
	if broken.terminated != 1 {
		t.Fatalf("expected failed backend to be terminated once, got %d", broken.terminated)
	}
}

func TestInit_AllCandidatesFailReportsPlatformUnavailable(t *testing.T) {
	var reported []*platform.Error
	candidates := []platform.Candidate{
		{ID: platform.X11, Connect: func() (platform.Backend, error) { return nil, errors.New("no DISPLAY") }},
	}
	_, err := platform.Init(platform.Config{Candidates: candidates},
		platform.WithLogger(quietLogger()),
		platform.WithErrorCallback(func(e *platform.Error) { reported = append(reported, e) }))

	if !platform.IsKind(err, platform.PlatformUnavailable) {
		t.Fatalf("expected PlatformUnavailable, got %v", err)
	}
	if len(reported) != 1 || reported[0].Kind != platform.PlatformUnavailable {
		t.Fatalf("expected error callback to see one PlatformUnavailable, got %+v", reported)
	}
}

func TestInit_RequestedPlatformSkipsOthers(t *testing.T) {
	called := false
	candidates := []platform.Candidate{
		{ID: platform.Wayland, Connect: func() (platform.Backend, error) { called = true; return null.New(), nil }},
		null.Candidate(),
	}
	ctx, err := platform.Init(platform.Config{Platform: platform.Null, Candidates: candidates}, platform.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer ctx.Terminate()
	if called {
		t.Fatalf("wayland candidate should not be probed when null is requested")
	}

	_, err = platform.Init(platform.Config{Platform: platform.Win32, Candidates: candidates}, platform.WithLogger(quietLogger()))
	if !platform.IsKind(err, platform.PlatformUnavailable) {
		t.Fatalf("expected PlatformUnavailable for missing candidate, got %v", err)
	}
}

// hotplugInit loses an output while it is still initializing.
type hotplugInit struct {
	*null.Backend
	freed []string
}

func (h *hotplugInit) Init(host platform.Host) error {
	m := host.NewMonitor("transient", 300, 200)
	host.InputMonitor(m, true, platform.InsertLast)
	host.InputMonitor(m, false, platform.InsertLast)
	return h.Backend.Init(host)
}

func (h *hotplugInit) FreeMonitor(m *platform.Monitor) {
	h.freed = append(h.freed, m.Name)
	h.Backend.FreeMonitor(m)
}

func TestInit_MonitorRemovedDuringInitIsFreed(t *testing.T) {
	b := &hotplugInit{Backend: null.New()}
	cand := platform.Candidate{ID: platform.Null, Connect: func() (platform.Backend, error) { return b, nil }}
	ctx, err := platform.Init(platform.Config{Candidates: []platform.Candidate{cand}}, platform.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer ctx.Terminate()

	if len(b.freed) != 1 || b.freed[0] != "transient" {
		t.Fatalf("expected the removed monitor to be freed by its backend, got %v", b.freed)
	}
	if n := len(ctx.Monitors()); n != 1 {
		t.Fatalf("expected only the null monitor to remain, got %d", n)
	}
}

// noFocus cannot move the input focus, like Wayland.
type noFocus struct {
	*null.Backend
	host platform.Host
}

func (n *noFocus) Init(host platform.Host) error {
	n.host = host
	return n.Backend.Init(host)
}

func (n *noFocus) FocusWindow(*platform.Window) error {
	return n.host.ReportError(platform.FeatureUnavailable, "focus is not supported")
}

func TestShow_FocusFailureIsReportedNotReturned(t *testing.T) {
	var reported []*platform.Error
	b := &noFocus{Backend: null.New()}
	cand := platform.Candidate{ID: platform.Null, Connect: func() (platform.Backend, error) { return b, nil }}
	ctx, err := platform.Init(platform.Config{Candidates: []platform.Candidate{cand}},
		platform.WithLogger(quietLogger()),
		platform.WithErrorCallback(func(e *platform.Error) { reported = append(reported, e) }))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer ctx.Terminate()

	cfg := platform.DefaultWindowConfig()
	cfg.Visible = false
	w, err := ctx.CreateWindow(cfg, platform.ContextConfig{}, platform.FramebufferConfig{})
	if err != nil {
		t.Fatalf("create window: %v", err)
	}
	reported = nil

	if err := w.Show(); err != nil {
		t.Fatalf("show should succeed when only focusing fails: %v", err)
	}
	if !w.Visible() {
		t.Fatalf("window should be visible")
	}
	if len(reported) != 1 || reported[0].Kind != platform.FeatureUnavailable {
		t.Fatalf("expected the focus failure on the error callback, got %+v", reported)
	}
}

func TestWindowDestroyIsIdempotent(t *testing.T) {
	ctx, _ := newNullContext(t)
	w := newWindow(t, ctx)
	other := newWindow(t, ctx)

	w.Destroy()
	w.Destroy()

	windows := ctx.Windows()
	if len(windows) != 1 || windows[0] != other {
		t.Fatalf("expected only the second window to remain, got %d windows", len(windows))
	}
	if err := w.SetTitle("gone"); err == nil {
		t.Fatalf("expected error using destroyed window")
	}
}

func TestWindowsKeepCreationOrder(t *testing.T) {
	ctx, _ := newNullContext(t)
	a, b, c := newWindow(t, ctx), newWindow(t, ctx), newWindow(t, ctx)

	got := ctx.Windows()
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("unexpected window order")
	}
	if ctx.Window(b.ID) != b {
		t.Fatalf("lookup by id failed")
	}
}

func TestTerminateThenCallsReportNotInitialized(t *testing.T) {
	ctx, _ := newNullContext(t)
	w := newWindow(t, ctx)
	ctx.Terminate()

	if !w.Destroyed() {
		t.Fatalf("terminate should destroy windows")
	}
	_, err := ctx.CreateWindow(platform.DefaultWindowConfig(), platform.ContextConfig{}, platform.FramebufferConfig{})
	if !platform.IsKind(err, platform.NotInitialized) {
		t.Fatalf("expected NotInitialized, got %v", err)
	}
}

func TestKeyRepeatAndStickyKeys(t *testing.T) {
	rec := &recorder{}
	ctx, backend := newNullContext(t, platform.WithHandler(rec.handle))
	w := newWindow(t, ctx)

	backend.Inject(event.Key{Window: w.ID, Key: event.KeyA, Action: event.Press})
	backend.Inject(event.Key{Window: w.ID, Key: event.KeyA, Action: event.Press})
	backend.Inject(event.Key{Window: w.ID, Key: event.KeyA, Action: event.Release})
	backend.Inject(event.Key{Window: w.ID, Key: event.KeyA, Action: event.Release})
	ctx.PollEvents()

	keys := rec.keys()
	if len(keys) != 3 {
		t.Fatalf("expected 3 key events (duplicate release dropped), got %d", len(keys))
	}
	if keys[1].Action != event.Repeat {
		t.Fatalf("expected second press to become repeat, got %s", keys[1].Action)
	}
	if got := w.Key(event.KeyA); got != event.Release {
		t.Fatalf("expected released key, got %s", got)
	}

	w.SetStickyKeys(true)
	backend.Inject(event.Key{Window: w.ID, Key: event.KeyA, Action: event.Press})
	backend.Inject(event.Key{Window: w.ID, Key: event.KeyA, Action: event.Release})
	ctx.PollEvents()

	if got := w.Key(event.KeyA); got != event.Press {
		t.Fatalf("sticky key should read as press once, got %s", got)
	}
	if got := w.Key(event.KeyA); got != event.Release {
		t.Fatalf("sticky key should be consumed, got %s", got)
	}
}

func TestLockKeyModsStrippedUnlessEnabled(t *testing.T) {
	rec := &recorder{}
	ctx, backend := newNullContext(t, platform.WithHandler(rec.handle))
	w := newWindow(t, ctx)

	mods := event.ModShift | event.ModCapsLock
	backend.Inject(event.Key{Window: w.ID, Key: event.KeyB, Action: event.Press, Mods: mods})
	ctx.PollEvents()
	w.SetLockKeyMods(true)
	backend.Inject(event.Key{Window: w.ID, Key: event.KeyB, Action: event.Release, Mods: mods})
	ctx.PollEvents()

	keys := rec.keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 key events, got %d", len(keys))
	}
	if keys[0].Mods != event.ModShift {
		t.Fatalf("expected caps lock stripped, got %#x", keys[0].Mods)
	}
	if keys[1].Mods != mods {
		t.Fatalf("expected caps lock kept, got %#x", keys[1].Mods)
	}
}

func TestFocusLossReleasesHeldKeys(t *testing.T) {
	rec := &recorder{}
	ctx, backend := newNullContext(t, platform.WithHandler(rec.handle))
	w := newWindow(t, ctx)
	if !w.Focused() {
		t.Fatalf("new visible window should be focused")
	}

	backend.Inject(event.Key{Window: w.ID, Key: event.KeyW, Scancode: int(event.KeyW), Action: event.Press})
	backend.Inject(event.MouseButton{Window: w.ID, Button: event.ButtonLeft, Action: event.Press})
	backend.Inject(event.WindowFocus{Window: w.ID, Focused: false})
	ctx.PollEvents()

	if w.Key(event.KeyW) != event.Release {
		t.Fatalf("key should be released after focus loss")
	}
	if w.MouseButton(event.ButtonLeft) != event.Release {
		t.Fatalf("button should be released after focus loss")
	}
	keys := rec.keys()
	last := keys[len(keys)-1]
	if last.Key != event.KeyW || last.Action != event.Release || last.Scancode != int(event.KeyW) {
		t.Fatalf("expected synthetic release for W, got %+v", last)
	}
}

func TestCharFiltersControlCodes(t *testing.T) {
	rec := &recorder{}
	ctx, backend := newNullContext(t, platform.WithHandler(rec.handle))
	w := newWindow(t, ctx)

	for _, r := range []rune{'\t', 0x7f, 0x85, 'x', 'é'} {
		backend.Inject(event.Char{Window: w.ID, Rune: r})
	}
	ctx.PollEvents()

	var got []rune
	for _, ev := range rec.events {
		if c, ok := ev.(event.Char); ok {
			got = append(got, c.Rune)
		}
	}
	if len(got) != 2 || got[0] != 'x' || got[1] != 'é' {
		t.Fatalf("unexpected chars %q", got)
	}
}

func TestCloseRequestSetsFlag(t *testing.T) {
	rec := &recorder{}
	ctx, backend := newNullContext(t, platform.WithHandler(rec.handle))
	w := newWindow(t, ctx)

	backend.Inject(event.WindowClose{Window: w.ID})
	ctx.PollEvents()

	if !w.ShouldClose {
		t.Fatalf("close request should set the close flag")
	}
}

func TestSizeLimitAndAspectValidation(t *testing.T) {
	ctx, _ := newNullContext(t)
	w := newWindow(t, ctx)

	if err := w.SetSizeLimits(100, 100, 50, 50); !platform.IsKind(err, platform.InvalidValue) {
		t.Fatalf("expected InvalidValue for max < min, got %v", err)
	}
	if err := w.SetSizeLimits(800, 600, platform.DontCare, platform.DontCare); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width, height := w.Size(); width != 800 || height != 600 {
		t.Fatalf("expected size clamped to 800x600, got %dx%d", width, height)
	}
	if err := w.SetAspectRatio(0, 9); !platform.IsKind(err, platform.InvalidValue) {
		t.Fatalf("expected InvalidValue for zero numerator, got %v", err)
	}
	if err := w.SetAspectRatio(platform.DontCare, platform.DontCare); err != nil {
		t.Fatalf("unexpected error clearing aspect ratio: %v", err)
	}
	if err := w.SetOpacity(1.5); !platform.IsKind(err, platform.InvalidValue) {
		t.Fatalf("expected InvalidValue for opacity, got %v", err)
	}
}

func TestDisabledCursorTracksVirtualPosition(t *testing.T) {
	ctx, _ := newNullContext(t)
	w := newWindow(t, ctx)

	if err := w.SetCursorPos(10, 20); err != nil {
		t.Fatalf("set cursor pos: %v", err)
	}
	if err := w.SetCursorMode(event.CursorDisabled); err != nil {
		t.Fatalf("set cursor mode: %v", err)
	}
	if x, y := w.CursorPos(); x != 10 || y != 20 {
		t.Fatalf("virtual cursor should start at the real position, got %v,%v", x, y)
	}
	if err := w.SetCursorPos(-500, 9000); err != nil {
		t.Fatalf("set virtual cursor pos: %v", err)
	}
	if x, y := w.CursorPos(); x != -500 || y != 9000 {
		t.Fatalf("virtual cursor should be unbounded, got %v,%v", x, y)
	}
	if err := w.SetCursorMode(event.CursorMode(42)); !platform.IsKind(err, platform.InvalidEnum) {
		t.Fatalf("expected InvalidEnum, got %v", err)
	}
}

func TestDestroyCursorResetsWindows(t *testing.T) {
	ctx, _ := newNullContext(t)
	w := newWindow(t, ctx)

	cur, err := ctx.CreateStandardCursor(event.PointingHandCursor)
	if err != nil {
		t.Fatalf("create cursor: %v", err)
	}
	if err := w.SetCursor(cur); err != nil {
		t.Fatalf("set cursor: %v", err)
	}
	ctx.DestroyCursor(cur)

	if w.Cursor != 0 {
		t.Fatalf("window should fall back to the default cursor, got %d", w.Cursor)
	}
	if ctx.Cursor(cur.ID) != nil {
		t.Fatalf("cursor should be unregistered")
	}
	if _, err := ctx.CreateStandardCursor(event.CursorShape(99)); !platform.IsKind(err, platform.InvalidEnum) {
		t.Fatalf("expected InvalidEnum, got %v", err)
	}
	if _, err := ctx.CreateCursor(platform.Image{Width: 2, Height: 2}, 0, 0); !platform.IsKind(err, platform.InvalidValue) {
		t.Fatalf("expected InvalidValue for short pixel slice, got %v", err)
	}
}

func TestFullscreenWindowReturnsToWindowedOnMonitorDisconnect(t *testing.T) {
	rec := &recorder{}
	ctx, _ := newNullContext(t, platform.WithHandler(rec.handle))
	m := ctx.PrimaryMonitor()
	if m == nil {
		t.Fatalf("expected a primary monitor")
	}

	cfg := platform.DefaultWindowConfig()
	cfg.Monitor = m
	w, err := ctx.CreateWindow(cfg, platform.ContextConfig{}, platform.FramebufferConfig{})
	if err != nil {
		t.Fatalf("create window: %v", err)
	}
	if w.FullscreenMonitor() != m || m.Window != w.ID {
		t.Fatalf("window should be fullscreen on the primary monitor")
	}
	if width, height := w.Size(); width != 1920 || height != 1080 {
		t.Fatalf("fullscreen window should fill the monitor, got %dx%d", width, height)
	}

	ctx.InputMonitor(m, false, platform.InsertLast)

	if w.Monitor != 0 {
		t.Fatalf("window should be windowed after disconnect")
	}
	if len(ctx.Monitors()) != 0 {
		t.Fatalf("monitor should be unregistered")
	}
	last := rec.events[len(rec.events)-1]
	if mev, ok := last.(event.Monitor); !ok || mev.Connected || mev.Monitor != m.ID {
		t.Fatalf("expected monitor disconnect event, got %#v", last)
	}
}

func TestGammaSavesOriginalRamp(t *testing.T) {
	ctx, _ := newNullContext(t)
	m := ctx.PrimaryMonitor()

	if err := m.SetGamma(2.2); err != nil {
		t.Fatalf("set gamma: %v", err)
	}
	if m.OriginalRamp.Size() != 256 {
		t.Fatalf("original ramp should be saved, got size %d", m.OriginalRamp.Size())
	}
	if m.OriginalRamp.Red[128] == 0 {
		t.Fatalf("original ramp should be the linear ramp")
	}
	ramp, err := m.GammaRamp()
	if err != nil {
		t.Fatalf("gamma ramp: %v", err)
	}
	if ramp.Red[0] != 0 || ramp.Red[255] != 65535 {
		t.Fatalf("ramp endpoints wrong: %d %d", ramp.Red[0], ramp.Red[255])
	}
	if ramp.Red[128] <= m.OriginalRamp.Red[128] {
		t.Fatalf("gamma 2.2 should brighten midtones: %d <= %d", ramp.Red[128], m.OriginalRamp.Red[128])
	}
	if err := m.SetGamma(-1); !platform.IsKind(err, platform.InvalidValue) {
		t.Fatalf("expected InvalidValue, got %v", err)
	}
}

func TestKeyNameOnlyForPrintableKeys(t *testing.T) {
	ctx, _ := newNullContext(t)

	name, err := ctx.KeyName(event.KeyQ, 0)
	if err != nil || name != "q" {
		t.Fatalf("expected q, got %q (%v)", name, err)
	}
	name, err = ctx.KeyName(event.KeyEscape, 0)
	if err != nil || name != "" {
		t.Fatalf("expected no name for escape, got %q (%v)", name, err)
	}
	if sc := ctx.KeyScancode(event.KeyCode(1000)); sc != -1 {
		t.Fatalf("expected -1 for invalid key, got %d", sc)
	}
}

func TestRequestClipboardCompletesForSyncBackends(t *testing.T) {
	ctx, _ := newNullContext(t)
	if err := ctx.SetClipboardString("hello"); err != nil {
		t.Fatalf("set clipboard: %v", err)
	}
	req, err := ctx.RequestClipboard()
	if err != nil {
		t.Fatalf("request clipboard: %v", err)
	}
	if !req.Done() {
		t.Fatalf("synchronous request should already be done")
	}
	text, err := req.Result()
	if err != nil || text != "hello" {
		t.Fatalf("expected hello, got %q (%v)", text, err)
	}
}

func TestGraphicsContextRequiresLoader(t *testing.T) {
	ctx, _ := newNullContext(t)
	_, err := ctx.CreateWindow(platform.DefaultWindowConfig(), platform.ContextConfig{Client: platform.OpenGLAPI}, platform.FramebufferConfig{})
	if !platform.IsKind(err, platform.APIUnavailable) {
		t.Fatalf("expected APIUnavailable without a loader, got %v", err)
	}
	if len(ctx.Windows()) != 0 {
		t.Fatalf("failed window should not stay in the window list")
	}
}
