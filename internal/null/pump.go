package null

import (
	"time"

	"github.com/1broseidon/hatch/internal/event"
)

// Inject queues an event for the next pump call. It is safe to call from
// any goroutine. Events for unknown windows are dropped when processed.
func (b *Backend) Inject(ev event.Event) bool {
	select {
	case b.queue <- ev:
		return true
	default:
		return false
	}
}

func (b *Backend) PollEvents() {
	for {
		select {
		case ev := <-b.queue:
			b.process(ev)
		default:
			return
		}
	}
}

func (b *Backend) WaitEvents() {
	ev := <-b.queue
	b.process(ev)
	b.PollEvents()
}

func (b *Backend) WaitEventsTimeout(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-b.queue:
		b.process(ev)
		b.PollEvents()
	case <-timer.C:
	}
}

// PostEmptyEvent wakes a blocked WaitEvents without producing an event.
func (b *Backend) PostEmptyEvent() {
	select {
	case b.queue <- nil:
	default:
	}
}

func (b *Backend) process(ev event.Event) {
	if ev == nil {
		return
	}
	w := b.host.Window(event.WindowOf(ev))
	if e, ok := ev.(event.Keyboard); ok {
		b.host.InputKeyboard(e.Connected, e.Name)
		return
	}
	if w == nil {
		b.host.Logger().Debug("dropping event for unknown window", "window", event.WindowOf(ev))
		return
	}

	switch e := ev.(type) {
	case event.Key:
		b.host.InputKey(w, e.Key, e.Scancode, e.Action, e.Mods)
	case event.Char:
		b.host.InputChar(w, e.Rune, e.Mods, true)
	case event.CursorPos:
		s := windowOf(w)
		b.cursorX = float64(s.x) + e.X
		b.cursorY = float64(s.y) + e.Y
		b.host.InputCursorPos(w, e.X, e.Y)
	case event.CursorEnter:
		b.host.InputCursorEnter(w, e.Entered)
	case event.MouseButton:
		b.host.InputMouseClick(w, e.Button, e.Action, e.Mods)
	case event.Scroll:
		b.host.InputScroll(w, e.XOffset, e.YOffset)
	case event.WindowClose:
		b.host.InputWindowCloseRequest(w)
	case event.WindowFocus:
		if e.Focused {
			_ = b.FocusWindow(w)
		} else if b.focused == w.ID {
			b.focused = 0
			b.host.InputWindowFocus(w, false)
		}
	case event.WindowSize:
		_ = b.SetWindowSize(w, e.Width, e.Height)
	case event.WindowPos:
		_ = b.SetWindowPos(w, e.X, e.Y)
	case event.WindowIconify:
		if e.Iconified {
			_ = b.IconifyWindow(w)
		} else {
			_ = b.RestoreWindow(w)
		}
	case event.WindowMaximize:
		if e.Maximized {
			_ = b.MaximizeWindow(w)
		} else {
			_ = b.RestoreWindow(w)
		}
	case event.WindowRefresh:
		b.host.InputWindowDamage(w)
	case event.Drop:
		b.host.InputDrop(w, e.Paths)
	}
}
