// Package event defines the unified, backend-independent input and window
// events delivered by every platform backend.
package event

// WindowID identifies a live window. Zero is never a valid window.
type WindowID uint32

// MonitorID identifies a connected monitor. Zero means "no monitor".
type MonitorID uint32

// Event is one of the concrete event types in this package.
type Event interface {
	isEvent()
}

// Key is a physical key press, release or repeat.
type Key struct {
	Window   WindowID
	Key      KeyCode
	Scancode int
	Action   Action
	Mods     ModifierKey
}

// Char is a Unicode code point produced by text input.
type Char struct {
	Window WindowID
	Rune   rune
	Mods   ModifierKey
}

// CursorPos reports the cursor position relative to the content area.
type CursorPos struct {
	Window WindowID
	X, Y   float64
}

// CursorEnter reports the cursor entering or leaving the content area.
type CursorEnter struct {
	Window  WindowID
	Entered bool
}

// MouseButton is a mouse button press or release.
type MouseButton struct {
	Window WindowID
	Button Button
	Action Action
	Mods   ModifierKey
}

// Scroll is a scroll wheel or touchpad scroll offset.
type Scroll struct {
	Window           WindowID
	XOffset, YOffset float64
}

// WindowSize reports a new content area size in screen coordinates.
type WindowSize struct {
	Window        WindowID
	Width, Height int
}

// WindowPos reports a new content area position in screen coordinates.
type WindowPos struct {
	Window WindowID
	X, Y   int
}

// WindowClose is a request from the user or system to close the window.
type WindowClose struct {
	Window WindowID
}

// WindowFocus reports input focus gained or lost.
type WindowFocus struct {
	Window  WindowID
	Focused bool
}

// WindowIconify reports the window being minimized or restored.
type WindowIconify struct {
	Window    WindowID
	Iconified bool
}

// WindowMaximize reports the window being maximized or restored.
type WindowMaximize struct {
	Window    WindowID
	Maximized bool
}

// WindowRefresh asks the application to redraw the content area.
type WindowRefresh struct {
	Window WindowID
}

// FramebufferSize reports a new framebuffer size in pixels.
type FramebufferSize struct {
	Window        WindowID
	Width, Height int
}

// ContentScale reports a new content scale for the window.
type ContentScale struct {
	Window         WindowID
	XScale, YScale float32
}

// Monitor reports a monitor being connected or disconnected.
type Monitor struct {
	Monitor   MonitorID
	Connected bool
}

// Drop carries paths dropped onto the window.
type Drop struct {
	Window WindowID
	Paths  []string
}

// Keyboard reports a keyboard device being connected or disconnected.
type Keyboard struct {
	Connected bool
	Name      string
}

// Joystick reports a joystick being connected or disconnected.
type Joystick struct {
	Joystick  int
	Connected bool
}

func (Key) isEvent()             {}
func (Char) isEvent()            {}
func (CursorPos) isEvent()       {}
func (CursorEnter) isEvent()     {}
func (MouseButton) isEvent()     {}
func (Scroll) isEvent()          {}
func (WindowSize) isEvent()      {}
func (WindowPos) isEvent()       {}
func (WindowClose) isEvent()     {}
func (WindowFocus) isEvent()     {}
func (WindowIconify) isEvent()   {}
func (WindowMaximize) isEvent()  {}
func (WindowRefresh) isEvent()   {}
func (FramebufferSize) isEvent() {}
func (ContentScale) isEvent()    {}
func (Monitor) isEvent()         {}
func (Drop) isEvent()            {}
func (Keyboard) isEvent()        {}
func (Joystick) isEvent()        {}

// Handler receives events synchronously as backends produce them.
type Handler func(Event)

// WindowOf returns the window an event targets, or zero for global events.
func WindowOf(ev Event) WindowID {
	switch e := ev.(type) {
	case Key:
		return e.Window
	case Char:
		return e.Window
	case CursorPos:
		return e.Window
	case CursorEnter:
		return e.Window
	case MouseButton:
		return e.Window
	case Scroll:
		return e.Window
	case WindowSize:
		return e.Window
	case WindowPos:
		return e.Window
	case WindowClose:
		return e.Window
	case WindowFocus:
		return e.Window
	case WindowIconify:
		return e.Window
	case WindowMaximize:
		return e.Window
	case WindowRefresh:
		return e.Window
	case FramebufferSize:
		return e.Window
	case ContentScale:
		return e.Window
	case Drop:
		return e.Window
	}
	return 0
}
