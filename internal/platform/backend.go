package platform

import (
	"log/slog"
	"time"

	"github.com/1broseidon/hatch/internal/event"
)

// Lifecycle is implemented by every backend.
type Lifecycle interface {
	ID() ID
	Name() string
	// Init connects to the window system. A backend whose Init fails is
	// terminated before the next candidate is probed.
	Init(host Host) error
	Terminate()
}

// Input covers cursor, keyboard, clipboard and joystick slots.
type Input interface {
	CursorPos(w *Window) (x, y float64)
	SetCursorPos(w *Window, x, y float64) error
	SetCursorMode(w *Window, mode event.CursorMode) error
	SetRawMouseMotion(w *Window, enabled bool) error
	RawMouseMotionSupported() bool
	KeyboardsSupported() bool
	CreateCursor(c *Cursor, img Image, xhot, yhot int) error
	CreateStandardCursor(c *Cursor, shape event.CursorShape) error
	DestroyCursor(c *Cursor)
	SetCursor(w *Window, c *Cursor) error
	ScancodeName(scancode int) (string, error)
	KeyScancode(key event.KeyCode) int
	SetClipboardString(s string) error
	ClipboardString() (string, error)
	InitJoysticks() bool
	TerminateJoysticks()
	PollJoystick(j *Joystick, mode JoystickPollMode) bool
	MappingName() string
	UpdateGamepadGUID(guid string) string
}

// Monitors covers per-monitor queries. Monitors are discovered by the
// backend and registered through Host.InputMonitor.
type Monitors interface {
	FreeMonitor(m *Monitor)
	MonitorPos(m *Monitor) (x, y int)
	MonitorContentScale(m *Monitor) (xscale, yscale float32)
	MonitorWorkarea(m *Monitor) Rect
	VideoModes(m *Monitor) ([]VideoMode, error)
	VideoMode(m *Monitor) (VideoMode, error)
	GammaRamp(m *Monitor) (GammaRamp, error)
	SetGammaRamp(m *Monitor, ramp GammaRamp) error
}

// Windows covers window creation and attribute slots.
type Windows interface {
	CreateWindow(w *Window, wndcfg WindowConfig, ctxcfg ContextConfig, fbcfg FramebufferConfig) error
	DestroyWindow(w *Window)
	SetWindowTitle(w *Window, title string) error
	SetWindowIcon(w *Window, images []Image) error
	WindowPos(w *Window) (x, y int, err error)
	SetWindowPos(w *Window, x, y int) error
	WindowSize(w *Window) (width, height int)
	SetWindowSize(w *Window, width, height int) error
	SetWindowSizeLimits(w *Window, minWidth, minHeight, maxWidth, maxHeight int) error
	SetWindowAspectRatio(w *Window, numer, denom int) error
	FramebufferSize(w *Window) (width, height int)
	WindowFrameSize(w *Window) (left, top, right, bottom int)
	WindowContentScale(w *Window) (xscale, yscale float32)
	IconifyWindow(w *Window) error
	RestoreWindow(w *Window) error
	MaximizeWindow(w *Window) error
	ShowWindow(w *Window) error
	HideWindow(w *Window) error
	RequestWindowAttention(w *Window) error
	FocusWindow(w *Window) error
	SetWindowMonitor(w *Window, m *Monitor, x, y, width, height, refreshRate int) error
	WindowFocused(w *Window) bool
	WindowIconified(w *Window) bool
	WindowVisible(w *Window) bool
	WindowMaximized(w *Window) bool
	WindowHovered(w *Window) bool
	FramebufferTransparent(w *Window) bool
	WindowOpacity(w *Window) float32
	SetWindowResizable(w *Window, enabled bool) error
	SetWindowDecorated(w *Window, enabled bool) error
	SetWindowFloating(w *Window, enabled bool) error
	SetWindowOpacity(w *Window, opacity float32) error
	SetWindowMousePassthrough(w *Window, enabled bool) error
}

// EventPump drains native events and turns them into unified events.
type EventPump interface {
	PollEvents()
	WaitEvents()
	WaitEventsTimeout(timeout time.Duration)
	PostEmptyEvent()
}

// Surfaces bridges windows to externally created graphics surfaces.
type Surfaces interface {
	EGLPlatform() (platform int, attribs []int32)
	EGLNativeDisplay() uintptr
	EGLNativeWindow(w *Window) uintptr
	RequiredInstanceExtensions() []string
	PresentationSupport(instance, device uintptr, queueFamily uint32) (bool, error)
	CreateWindowSurface(instance uintptr, w *Window, allocator uintptr) (uintptr, error)
}

// Backend is the capability table every platform fills in completely.
// Slots the platform cannot honour return FeatureUnavailable or
// FeatureUnimplemented errors.
type Backend interface {
	Lifecycle
	Input
	Monitors
	Windows
	EventPump
	Surfaces
}

// Host is the part of the library a backend may call back into.
type Host interface {
	Logger() *slog.Logger
	ReportError(kind ErrorKind, format string, args ...any) error

	Windows() []*Window
	Window(id event.WindowID) *Window
	Monitors() []*Monitor
	Monitor(id event.MonitorID) *Monitor
	Cursor(id CursorID) *Cursor
	// InDispatch reports whether an event handler is currently running.
	InDispatch() bool
	ContextLoader() ContextLoader
	VulkanLoader() VulkanLoader

	InputKey(w *Window, key event.KeyCode, scancode int, action event.Action, mods event.ModifierKey)
	InputChar(w *Window, r rune, mods event.ModifierKey, plain bool)
	InputScroll(w *Window, xoffset, yoffset float64)
	InputMouseClick(w *Window, button event.Button, action event.Action, mods event.ModifierKey)
	InputCursorPos(w *Window, x, y float64)
	InputCursorEnter(w *Window, entered bool)
	InputDrop(w *Window, paths []string)
	InputKeyboard(connected bool, name string)

	InputWindowFocus(w *Window, focused bool)
	InputWindowPos(w *Window, x, y int)
	InputWindowSize(w *Window, width, height int)
	InputFramebufferSize(w *Window, width, height int)
	InputWindowContentScale(w *Window, xscale, yscale float32)
	InputWindowIconify(w *Window, iconified bool)
	InputWindowMaximize(w *Window, maximized bool)
	InputWindowDamage(w *Window)
	InputWindowCloseRequest(w *Window)
	InputWindowMonitor(w *Window, m *Monitor)

	// NewMonitor allocates a monitor record; it becomes visible to the
	// application once passed to InputMonitor.
	NewMonitor(name string, widthMM, heightMM int) *Monitor
	InputMonitor(m *Monitor, connected bool, placement MonitorPlacement)

	AllocJoystick(name, guid string, axes, buttons, hats int) *Joystick
	InputJoystick(j *Joystick, connected bool)
}

// Candidate is one entry in the backend probe list.
type Candidate struct {
	ID      ID
	Connect func() (Backend, error)
}
