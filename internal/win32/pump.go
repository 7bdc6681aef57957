package win32

import (
	"time"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
)

// messageQueue is the calling thread's message queue plus the user32
// queries the pump makes once it is drained.
type messageQueue interface {
	// Peek removes and returns the next message, if any.
	Peek() (message, bool)
	// Dispatch translates and dispatches m to its window procedure.
	Dispatch(m message)
	// Wait blocks until input is queued or the timeout expires. A negative
	// timeout waits forever.
	Wait(timeout time.Duration)
	Post(hwnd uintptr, msg uint32) error
	KeyState(vk int) int16
	ActiveWindow() uintptr
}

// pump drains the queue and fixes up what Windows fails to report.
type pump struct {
	host   platform.Host
	queue  messageQueue
	keys   *keyTables
	helper uintptr

	// window maps a native handle to its window.
	window func(hwnd uintptr) *platform.Window
	// disabled returns the window whose cursor is captured, if any;
	// recenter moves the cursor back to its content area centre.
	disabled func() *platform.Window
	recenter func(w *platform.Window)
}

func (p *pump) poll() {
	for {
		m, ok := p.queue.Peek()
		if !ok {
			break
		}
		if m.msg == wmQuit {
			// Treat WM_QUIT as a close request for every window.
			for _, w := range p.host.Windows() {
				p.host.InputWindowCloseRequest(w)
			}
			continue
		}
		p.queue.Dispatch(m)
	}

	if w := p.window(p.queue.ActiveWindow()); w != nil {
		p.releaseShifts(w)
	}
	if p.disabled != nil && p.recenter != nil {
		if w := p.disabled(); w != nil {
			p.recenter(w)
		}
	}
}

// releaseShifts emits the release of a Shift key whose key-up was lost
// because the other Shift key was still held.
func (p *pump) releaseShifts(w *platform.Window) {
	shifts := [...]struct {
		vk  int
		key event.KeyCode
	}{
		{vkLShift, event.KeyLeftShift},
		{vkRShift, event.KeyRightShift},
	}
	for _, s := range shifts {
		if uint16(p.queue.KeyState(s.vk))&0x8000 != 0 {
			continue
		}
		if !w.KeyHeld(s.key) {
			continue
		}
		mods := modsFromKeyState(p.queue.KeyState)
		p.host.InputKey(w, s.key, p.keys.scancode(s.key), event.Release, mods)
		if w.Destroyed() {
			return
		}
	}
}

func (p *pump) wait() {
	p.queue.Wait(-1)
	p.poll()
}

func (p *pump) waitTimeout(timeout time.Duration) {
	p.queue.Wait(timeout)
	p.poll()
}

func (p *pump) postEmpty() {
	if err := p.queue.Post(p.helper, wmNull); err != nil {
		p.host.Logger().Debug("win32 post empty event failed", "error", err)
	}
}

// deliver hands decoded events to the host. It stops early if a handler
// destroys the window.
func deliver(host platform.Host, w *platform.Window, d decoded) {
	for _, ev := range d.events {
		if w.Destroyed() {
			return
		}
		switch ev := ev.(type) {
		case event.Key:
			host.InputKey(w, ev.Key, ev.Scancode, ev.Action, ev.Mods)
		case event.Char:
			host.InputChar(w, ev.Rune, ev.Mods, !d.sysChar)
		case event.MouseButton:
			host.InputMouseClick(w, ev.Button, ev.Action, ev.Mods)
		case event.CursorPos:
			host.InputCursorPos(w, ev.X, ev.Y)
		case event.CursorEnter:
			host.InputCursorEnter(w, ev.Entered)
		case event.Scroll:
			host.InputScroll(w, ev.XOffset, ev.YOffset)
		case event.WindowSize:
			host.InputWindowSize(w, ev.Width, ev.Height)
		case event.FramebufferSize:
			host.InputFramebufferSize(w, ev.Width, ev.Height)
		case event.WindowPos:
			host.InputWindowPos(w, ev.X, ev.Y)
		case event.WindowIconify:
			host.InputWindowIconify(w, ev.Iconified)
		case event.WindowMaximize:
			host.InputWindowMaximize(w, ev.Maximized)
		case event.WindowFocus:
			host.InputWindowFocus(w, ev.Focused)
		case event.WindowClose:
			host.InputWindowCloseRequest(w)
		case event.ContentScale:
			host.InputWindowContentScale(w, ev.XScale, ev.YScale)
		case event.WindowRefresh:
			host.InputWindowDamage(w)
		}
	}
}
