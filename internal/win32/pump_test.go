package win32

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/null"
	"github.com/1broseidon/hatch/internal/platform"
)

type fakeQueue struct {
	pending    []message
	dispatched []message
	keyState   map[int]int16
	active     uintptr
	waits      []time.Duration
	posts      []uint32
	postErr    error
	onDispatch func(m message)
}

func (q *fakeQueue) Peek() (message, bool) {
	if len(q.pending) == 0 {
		return message{}, false
	}
	m := q.pending[0]
	q.pending = q.pending[1:]
	return m, true
}

func (q *fakeQueue) Dispatch(m message) {
	q.dispatched = append(q.dispatched, m)
	if q.onDispatch != nil {
		q.onDispatch(m)
	}
}

func (q *fakeQueue) Wait(timeout time.Duration) { q.waits = append(q.waits, timeout) }

func (q *fakeQueue) Post(hwnd uintptr, msg uint32) error {
	q.posts = append(q.posts, msg)
	return q.postErr
}

func (q *fakeQueue) KeyState(vk int) int16 { return q.keyState[vk] }
func (q *fakeQueue) ActiveWindow() uintptr  { return q.active }

// hostWindow opens a headless context so pump output goes through the
// real input path.
func hostWindow(t *testing.T) (*platform.Context, *platform.Window, *[]event.Event) {
	t.Helper()
	var got []event.Event
	cand := platform.Candidate{ID: platform.Null, Connect: func() (platform.Backend, error) { return null.New(), nil }}
	ctx, err := platform.Init(platform.Config{Candidates: []platform.Candidate{cand}},
		platform.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		platform.WithHandler(func(ev event.Event) { got = append(got, ev) }))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(ctx.Terminate)

	cfg := platform.DefaultWindowConfig()
	cfg.Visible = false
	w, err := ctx.CreateWindow(cfg, platform.ContextConfig{}, platform.FramebufferConfig{})
	if err != nil {
		t.Fatalf("create window: %v", err)
	}
	got = nil
	return ctx, w, &got
}

func newTestPump(ctx *platform.Context, q *fakeQueue, w *platform.Window) *pump {
	return &pump{
		host:   ctx,
		queue:  q,
		keys:   newKeyTables(),
		helper: 1,
		window: func(hwnd uintptr) *platform.Window {
			if hwnd == 2 {
				return w
			}
			return nil
		},
	}
}

func TestPump_DispatchesUntilEmpty(t *testing.T) {
	ctx, w, _ := hostWindow(t)
	q := &fakeQueue{pending: []message{
		{hwnd: 2, msg: wmMouseMove},
		{hwnd: 2, msg: wmPaint},
	}}
	newTestPump(ctx, q, w).poll()
	if len(q.dispatched) != 2 || len(q.pending) != 0 {
		t.Fatalf("dispatched %d, pending %d", len(q.dispatched), len(q.pending))
	}
}

func TestPump_QuitClosesEveryWindow(t *testing.T) {
	ctx, w, got := hostWindow(t)
	q := &fakeQueue{pending: []message{{msg: wmQuit}}}
	newTestPump(ctx, q, w).poll()

	if len(q.dispatched) != 0 {
		t.Fatalf("WM_QUIT was dispatched")
	}
	if !w.ShouldClose {
		t.Fatalf("window not flagged for closing")
	}
	if len(*got) != 1 {
		t.Fatalf("events = %#v", *got)
	}
	if ev, ok := (*got)[0].(event.WindowClose); !ok || ev.Window != w.ID {
		t.Fatalf("event = %#v, want close of window %d", (*got)[0], w.ID)
	}
}

func TestPump_ReleasesLostShiftKey(t *testing.T) {
	ctx, w, got := hostWindow(t)
	ctx.InputKey(w, event.KeyLeftShift, 0x2A, event.Press, event.ModShift)
	ctx.InputKey(w, event.KeyRightShift, 0x36, event.Press, event.ModShift)
	*got = nil

	// Right Shift is still physically down; left Shift is not.
	q := &fakeQueue{active: 2, keyState: map[int]int16{vkRShift: -0x8000, vkShift: -0x8000}}
	newTestPump(ctx, q, w).poll()

	if len(*got) != 1 {
		t.Fatalf("events = %#v", *got)
	}
	ev, ok := (*got)[0].(event.Key)
	if !ok || ev.Key != event.KeyLeftShift || ev.Action != event.Release || ev.Scancode != 0x2A {
		t.Fatalf("event = %#v, want left shift release", (*got)[0])
	}
	if w.KeyHeld(event.KeyLeftShift) || !w.KeyHeld(event.KeyRightShift) {
		t.Fatalf("key state not updated")
	}
}

func TestPump_NoShiftFixupForInactiveWindow(t *testing.T) {
	ctx, w, got := hostWindow(t)
	ctx.InputKey(w, event.KeyLeftShift, 0x2A, event.Press, 0)
	*got = nil

	q := &fakeQueue{active: 99}
	newTestPump(ctx, q, w).poll()
	if len(*got) != 0 {
		t.Fatalf("unexpected events %#v", *got)
	}
}

func TestPump_RecentresDisabledCursor(t *testing.T) {
	ctx, w, _ := hostWindow(t)
	q := &fakeQueue{}
	p := newTestPump(ctx, q, w)
	var recentred []*platform.Window
	p.disabled = func() *platform.Window { return w }
	p.recenter = func(w *platform.Window) { recentred = append(recentred, w) }
	p.poll()
	if len(recentred) != 1 || recentred[0] != w {
		t.Fatalf("recentred %v", recentred)
	}

	p.disabled = func() *platform.Window { return nil }
	p.poll()
	if len(recentred) != 1 {
		t.Fatalf("recentred without a disabled cursor")
	}
}

func TestPump_WaitVariants(t *testing.T) {
	ctx, w, _ := hostWindow(t)
	q := &fakeQueue{}
	p := newTestPump(ctx, q, w)

	p.wait()
	p.waitTimeout(250 * time.Millisecond)
	if len(q.waits) != 2 || q.waits[0] >= 0 || q.waits[1] != 250*time.Millisecond {
		t.Fatalf("waits = %v", q.waits)
	}
}

func TestPump_PostEmptyTargetsHelper(t *testing.T) {
	ctx, w, _ := hostWindow(t)
	q := &fakeQueue{}
	p := newTestPump(ctx, q, w)
	p.postEmpty()
	q.postErr = errors.New("queue full")
	p.postEmpty()
	if len(q.posts) != 2 || q.posts[0] != wmNull {
		t.Fatalf("posts = %v", q.posts)
	}
}

func TestDeliver_StopsWhenWindowDestroyed(t *testing.T) {
	ctx, w, got := hostWindow(t)
	ctx.SetHandler(func(ev event.Event) {
		*got = append(*got, ev)
		if _, ok := ev.(event.WindowFocus); ok {
			w.Destroy()
		}
	})

	d := decoded{events: []event.Event{
		event.WindowFocus{Window: w.ID, Focused: true},
		event.CursorPos{Window: w.ID, X: 1, Y: 2},
	}}
	deliver(ctx, w, d)
	if len(*got) != 1 {
		t.Fatalf("events after destroy: %#v", *got)
	}
}

func TestDeliver_RoutesEveryKind(t *testing.T) {
	ctx, w, got := hostWindow(t)
	d := decoded{events: []event.Event{
		event.Key{Window: w.ID, Key: event.KeyA, Scancode: 0x1E, Action: event.Press},
		event.Char{Window: w.ID, Rune: 'a'},
		event.MouseButton{Window: w.ID, Button: event.ButtonLeft, Action: event.Press},
		event.CursorEnter{Window: w.ID, Entered: true},
		event.Scroll{Window: w.ID, YOffset: 1},
		event.WindowPos{Window: w.ID, X: 3, Y: 4},
		event.WindowRefresh{Window: w.ID},
	}}
	deliver(ctx, w, d)
	if len(*got) != len(d.events) {
		t.Fatalf("delivered %d of %d: %#v", len(*got), len(d.events), *got)
	}
	for i, ev := range *got {
		if ev != d.events[i] {
			t.Fatalf("event %d = %#v want %#v", i, ev, d.events[i])
		}
	}
}
