package platform

import (
	"github.com/1broseidon/hatch/internal/event"
)

func (c *Context) InputKey(w *Window, key event.KeyCode, scancode int, action event.Action, mods event.ModifierKey) {
	if key.Valid() {
		repeated := false
		if action == event.Release && w.keys[key] == keyState(event.Release) {
			return
		}
		if action == event.Press && w.keys[key] == keyState(event.Press) {
			repeated = true
		}
		if action == event.Release && w.StickyKeys {
			w.keys[key] = stick
		} else {
			w.keys[key] = keyState(action)
		}
		if repeated {
			action = event.Repeat
		}
	}
	if !w.LockKeyMods {
		mods &^= event.ModCapsLock | event.ModNumLock
	}
	c.dispatch(event.Key{Window: w.ID, Key: key, Scancode: scancode, Action: action, Mods: mods})
}

// InputChar delivers a code point. Control characters and C1 controls are
// dropped.
func (c *Context) InputChar(w *Window, r rune, mods event.ModifierKey, plain bool) {
	if r < 32 || (r > 126 && r < 160) {
		return
	}
	if !w.LockKeyMods {
		mods &^= event.ModCapsLock | event.ModNumLock
	}
	c.dispatch(event.Char{Window: w.ID, Rune: r, Mods: mods})
}

func (c *Context) InputScroll(w *Window, xoffset, yoffset float64) {
	c.dispatch(event.Scroll{Window: w.ID, XOffset: xoffset, YOffset: yoffset})
}

func (c *Context) InputMouseClick(w *Window, button event.Button, action event.Action, mods event.ModifierKey) {
	if button < event.Button1 || button > event.ButtonLast {
		return
	}
	if !w.LockKeyMods {
		mods &^= event.ModCapsLock | event.ModNumLock
	}
	if action == event.Release && w.StickyMouseButtons {
		w.buttons[button] = stick
	} else {
		w.buttons[button] = keyState(action)
	}
	c.dispatch(event.MouseButton{Window: w.ID, Button: button, Action: action, Mods: mods})
}

// InputCursorPos delivers a cursor position. Repeated positions are dropped.
func (c *Context) InputCursorPos(w *Window, x, y float64) {
	if w.VirtualCursorX == x && w.VirtualCursorY == y {
		return
	}
	w.VirtualCursorX, w.VirtualCursorY = x, y
	c.dispatch(event.CursorPos{Window: w.ID, X: x, Y: y})
}

func (c *Context) InputCursorEnter(w *Window, entered bool) {
	c.dispatch(event.CursorEnter{Window: w.ID, Entered: entered})
}

func (c *Context) InputDrop(w *Window, paths []string) {
	c.dispatch(event.Drop{Window: w.ID, Paths: paths})
}

func (c *Context) InputKeyboard(connected bool, name string) {
	c.dispatch(event.Keyboard{Connected: connected, Name: name})
}

// InputWindowFocus delivers a focus change. Losing focus releases every key
// and mouse button still held, so the application never sees a stuck key.
func (c *Context) InputWindowFocus(w *Window, focused bool) {
	c.dispatch(event.WindowFocus{Window: w.ID, Focused: focused})
	if focused {
		return
	}
	for key := event.KeySpace; key <= event.KeyLast; key++ {
		if w.keys[key] == keyState(event.Press) {
			scancode := c.backend.KeyScancode(key)
			c.InputKey(w, key, scancode, event.Release, 0)
		}
	}
	for button := event.Button1; button <= event.ButtonLast; button++ {
		if w.buttons[button] == keyState(event.Press) {
			c.InputMouseClick(w, button, event.Release, 0)
		}
	}
}

func (c *Context) InputWindowPos(w *Window, x, y int) {
	c.dispatch(event.WindowPos{Window: w.ID, X: x, Y: y})
}

func (c *Context) InputWindowSize(w *Window, width, height int) {
	c.dispatch(event.WindowSize{Window: w.ID, Width: width, Height: height})
}

func (c *Context) InputFramebufferSize(w *Window, width, height int) {
	c.dispatch(event.FramebufferSize{Window: w.ID, Width: width, Height: height})
}

func (c *Context) InputWindowContentScale(w *Window, xscale, yscale float32) {
	c.dispatch(event.ContentScale{Window: w.ID, XScale: xscale, YScale: yscale})
}

func (c *Context) InputWindowIconify(w *Window, iconified bool) {
	c.dispatch(event.WindowIconify{Window: w.ID, Iconified: iconified})
}

func (c *Context) InputWindowMaximize(w *Window, maximized bool) {
	c.dispatch(event.WindowMaximize{Window: w.ID, Maximized: maximized})
}

func (c *Context) InputWindowDamage(w *Window) {
	c.dispatch(event.WindowRefresh{Window: w.ID})
}

// InputWindowCloseRequest sets the close flag and notifies the application,
// which may clear the flag again.
func (c *Context) InputWindowCloseRequest(w *Window) {
	w.ShouldClose = true
	c.dispatch(event.WindowClose{Window: w.ID})
}

// InputWindowMonitor records the monitor a window is fullscreen on.
func (c *Context) InputWindowMonitor(w *Window, m *Monitor) {
	if prev := c.monitors.Get(w.Monitor); prev != nil && prev.Window == w.ID {
		prev.Window = 0
	}
	w.Monitor = 0
	if m != nil {
		w.Monitor = m.ID
		m.Window = w.ID
	}
}

func (c *Context) NewMonitor(name string, widthMM, heightMM int) *Monitor {
	return &Monitor{Name: name, WidthMM: widthMM, HeightMM: heightMM, ctx: c}
}

// InputMonitor registers or removes a monitor. On disconnection every window
// fullscreen on it is returned to windowed mode first.
func (c *Context) InputMonitor(m *Monitor, connected bool, placement MonitorPlacement) {
	if connected {
		m.ctx = c
		m.ID = c.monitors.Add(m, placement == InsertFirst)
		c.dispatch(event.Monitor{Monitor: m.ID, Connected: true})
		return
	}

	b := c.activeBackend()
	for _, w := range c.Windows() {
		if w.Monitor != m.ID || b == nil {
			continue
		}
		width, height := b.WindowSize(w)
		_ = b.SetWindowMonitor(w, nil, 0, 0, width, height, 0)
		c.InputWindowMonitor(w, nil)
		left, top, _, _ := b.WindowFrameSize(w)
		_ = b.SetWindowPos(w, left, top)
	}

	c.dispatch(event.Monitor{Monitor: m.ID, Connected: false})
	c.monitors.Remove(m.ID)
	if b != nil {
		b.FreeMonitor(m)
	}
	m.ctx = nil
}

// AllocJoystick claims the first free joystick slot, or returns nil.
func (c *Context) AllocJoystick(name, guid string, axes, buttons, hats int) *Joystick {
	for i := range c.joysticks {
		j := &c.joysticks[i]
		if j.Present {
			continue
		}
		*j = Joystick{
			ID:      i,
			Name:    name,
			GUID:    guid,
			Present: true,
			Axes:    make([]float32, axes),
			Buttons: make([]byte, buttons),
			Hats:    make([]byte, hats),
		}
		return j
	}
	return nil
}

// InputJoystick delivers a joystick connection change. A disconnected
// joystick slot is freed after the event.
func (c *Context) InputJoystick(j *Joystick, connected bool) {
	c.dispatch(event.Joystick{Joystick: j.ID, Connected: connected})
	if !connected {
		*j = Joystick{ID: j.ID}
	}
}
