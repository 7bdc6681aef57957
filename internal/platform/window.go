package platform

import (
	"container/list"
	"math"

	"github.com/1broseidon/hatch/internal/event"
)

// keyState extends event.Action with the sticky marker used by sticky keys
// and sticky mouse buttons.
type keyState int8

const stick keyState = 3

// Window is the platform-neutral window record. Backends keep their own
// state in Platform and read the common attributes directly.
type Window struct {
	ID event.WindowID

	ctx       *Context
	elem      *list.Element
	destroyed bool

	Title            string
	Resizable        bool
	Decorated        bool
	AutoIconify      bool
	Floating         bool
	FocusOnShow      bool
	MousePassthrough bool
	ShouldClose      bool

	// Monitor is non-zero while the window is fullscreen on that monitor.
	Monitor event.MonitorID
	Cursor  CursorID
	// VideoMode is the mode requested for fullscreen.
	VideoMode VideoMode

	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
	Numer, Denom        int

	CursorMode         event.CursorMode
	StickyKeys         bool
	StickyMouseButtons bool
	LockKeyMods        bool
	RawMouseMotion     bool
	VirtualCursorX     float64
	VirtualCursorY     float64

	keys    [event.KeyLast + 1]keyState
	buttons [event.ButtonLast + 1]keyState

	Graphics GraphicsContext
	Platform any
	UserData any
}

func (w *Window) backend() (Backend, error) {
	if w == nil || w.destroyed {
		return nil, Errorf(InvalidValue, "window has been destroyed")
	}
	return w.ctx.live()
}

// Destroy releases the window. Calling it again is a no-op.
func (w *Window) Destroy() {
	if w == nil || w.destroyed {
		return
	}
	c := w.ctx
	if c.backend != nil {
		c.backend.DestroyWindow(w)
	}
	if w.Graphics != nil {
		w.Graphics.Destroy()
		w.Graphics = nil
	}
	if w.elem != nil {
		c.windows.Remove(w.elem)
		w.elem = nil
	}
	w.destroyed = true
	w.Platform = nil
}

// Destroyed reports whether Destroy has run.
func (w *Window) Destroyed() bool {
	return w == nil || w.destroyed
}

// Context returns the owning context.
func (w *Window) Context() *Context {
	return w.ctx
}

// SetShouldClose sets the close flag.
func (w *Window) SetShouldClose(v bool) {
	w.ShouldClose = v
}

func (w *Window) SetTitle(title string) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	w.Title = title
	return b.SetWindowTitle(w, title)
}

func (w *Window) SetIcon(images []Image) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	for _, img := range images {
		if !img.Valid() {
			return w.ctx.ReportError(InvalidValue, "invalid icon image %dx%d", img.Width, img.Height)
		}
	}
	return b.SetWindowIcon(w, images)
}

func (w *Window) Pos() (x, y int, err error) {
	b, err := w.backend()
	if err != nil {
		return 0, 0, err
	}
	return b.WindowPos(w)
}

func (w *Window) SetPos(x, y int) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if w.Monitor != 0 {
		return nil
	}
	return b.SetWindowPos(w, x, y)
}

func (w *Window) Size() (width, height int) {
	b, err := w.backend()
	if err != nil {
		return 0, 0
	}
	return b.WindowSize(w)
}

func (w *Window) SetSize(width, height int) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return w.ctx.ReportError(InvalidValue, "invalid window size %dx%d", width, height)
	}
	w.VideoMode.Width = width
	w.VideoMode.Height = height
	return b.SetWindowSize(w, width, height)
}

// SetSizeLimits sets the content area limits. DontCare disables a limit.
func (w *Window) SetSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if minWidth != DontCare && minHeight != DontCare {
		if minWidth < 0 || minHeight < 0 {
			return w.ctx.ReportError(InvalidValue, "invalid window minimum size %dx%d", minWidth, minHeight)
		}
	}
	if maxWidth != DontCare && maxHeight != DontCare {
		if maxWidth < 0 || maxHeight < 0 || maxWidth < minWidth || maxHeight < minHeight {
			return w.ctx.ReportError(InvalidValue, "invalid window maximum size %dx%d", maxWidth, maxHeight)
		}
	}
	w.MinWidth, w.MinHeight = minWidth, minHeight
	w.MaxWidth, w.MaxHeight = maxWidth, maxHeight
	if w.Monitor != 0 || !w.Resizable {
		return nil
	}
	return b.SetWindowSizeLimits(w, minWidth, minHeight, maxWidth, maxHeight)
}

// SetAspectRatio locks the content area aspect ratio. DontCare for either
// term removes the lock.
func (w *Window) SetAspectRatio(numer, denom int) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if numer != DontCare && denom != DontCare {
		if numer <= 0 || denom <= 0 {
			return w.ctx.ReportError(InvalidValue, "invalid window aspect ratio %d:%d", numer, denom)
		}
	}
	w.Numer, w.Denom = numer, denom
	if w.Monitor != 0 || !w.Resizable {
		return nil
	}
	return b.SetWindowAspectRatio(w, numer, denom)
}

func (w *Window) FramebufferSize() (width, height int) {
	b, err := w.backend()
	if err != nil {
		return 0, 0
	}
	return b.FramebufferSize(w)
}

// FrameSize returns the size of each edge of the window frame.
func (w *Window) FrameSize() (left, top, right, bottom int) {
	b, err := w.backend()
	if err != nil {
		return 0, 0, 0, 0
	}
	return b.WindowFrameSize(w)
}

func (w *Window) ContentScale() (xscale, yscale float32) {
	b, err := w.backend()
	if err != nil {
		return 0, 0
	}
	return b.WindowContentScale(w)
}

func (w *Window) Opacity() float32 {
	b, err := w.backend()
	if err != nil {
		return 0
	}
	return b.WindowOpacity(w)
}

func (w *Window) SetOpacity(opacity float32) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if math.IsNaN(float64(opacity)) || opacity < 0 || opacity > 1 {
		return w.ctx.ReportError(InvalidValue, "invalid window opacity %f", opacity)
	}
	return b.SetWindowOpacity(w, opacity)
}

func (w *Window) Iconify() error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	return b.IconifyWindow(w)
}

func (w *Window) Restore() error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	return b.RestoreWindow(w)
}

func (w *Window) Maximize() error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if w.Monitor != 0 {
		return nil
	}
	return b.MaximizeWindow(w)
}

// Show makes the window visible and, with FocusOnShow, focuses it.
// Fullscreen windows are always visible and ignore the call.
func (w *Window) Show() error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if w.Monitor != 0 {
		return nil
	}
	if err := b.ShowWindow(w); err != nil {
		return err
	}
	if w.FocusOnShow {
		// Failures reach the error callback; the window is shown regardless.
		_ = b.FocusWindow(w)
	}
	return nil
}

func (w *Window) Hide() error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if w.Monitor != 0 {
		return nil
	}
	return b.HideWindow(w)
}

func (w *Window) Focus() error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	return b.FocusWindow(w)
}

func (w *Window) RequestAttention() error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	return b.RequestWindowAttention(w)
}

// FullscreenMonitor returns the monitor the window is fullscreen on, or nil.
func (w *Window) FullscreenMonitor() *Monitor {
	if w.destroyed {
		return nil
	}
	return w.ctx.Monitor(w.Monitor)
}

// SetMonitor makes the window fullscreen on m, or windowed when m is nil.
func (w *Window) SetMonitor(m *Monitor, x, y, width, height, refreshRate int) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return w.ctx.ReportError(InvalidValue, "invalid window size %dx%d", width, height)
	}
	if refreshRate < 0 && refreshRate != DontCare {
		return w.ctx.ReportError(InvalidValue, "invalid refresh rate %d", refreshRate)
	}
	w.VideoMode.Width = width
	w.VideoMode.Height = height
	w.VideoMode.RefreshRate = refreshRate
	return b.SetWindowMonitor(w, m, x, y, width, height, refreshRate)
}

func (w *Window) Focused() bool {
	b, err := w.backend()
	return err == nil && b.WindowFocused(w)
}

func (w *Window) Iconified() bool {
	b, err := w.backend()
	return err == nil && b.WindowIconified(w)
}

func (w *Window) Visible() bool {
	b, err := w.backend()
	return err == nil && b.WindowVisible(w)
}

func (w *Window) Maximized() bool {
	b, err := w.backend()
	return err == nil && b.WindowMaximized(w)
}

func (w *Window) Hovered() bool {
	b, err := w.backend()
	return err == nil && b.WindowHovered(w)
}

func (w *Window) TransparentFramebuffer() bool {
	b, err := w.backend()
	return err == nil && b.FramebufferTransparent(w)
}

func (w *Window) SetResizable(enabled bool) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	w.Resizable = enabled
	if w.Monitor != 0 {
		return nil
	}
	return b.SetWindowResizable(w, enabled)
}

func (w *Window) SetDecorated(enabled bool) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	w.Decorated = enabled
	if w.Monitor != 0 {
		return nil
	}
	return b.SetWindowDecorated(w, enabled)
}

func (w *Window) SetFloating(enabled bool) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	w.Floating = enabled
	if w.Monitor != 0 {
		return nil
	}
	return b.SetWindowFloating(w, enabled)
}

func (w *Window) SetMousePassthrough(enabled bool) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	w.MousePassthrough = enabled
	return b.SetWindowMousePassthrough(w, enabled)
}

func (w *Window) SetAutoIconify(enabled bool) {
	w.AutoIconify = enabled
}

func (w *Window) SetFocusOnShow(enabled bool) {
	w.FocusOnShow = enabled
}

// SetCursor sets the cursor image shown over the content area. A nil cursor
// selects the default arrow.
func (w *Window) SetCursor(cur *Cursor) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	w.Cursor = 0
	if cur != nil {
		w.Cursor = cur.ID
	}
	return b.SetCursor(w, cur)
}

// CursorPos returns the cursor position relative to the content area. While
// the cursor is disabled this is the virtual, unbounded position.
func (w *Window) CursorPos() (x, y float64) {
	b, err := w.backend()
	if err != nil {
		return 0, 0
	}
	if w.CursorMode == event.CursorDisabled {
		return w.VirtualCursorX, w.VirtualCursorY
	}
	return b.CursorPos(w)
}

func (w *Window) SetCursorPos(x, y float64) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return w.ctx.ReportError(InvalidValue, "invalid cursor position %f %f", x, y)
	}
	if !b.WindowFocused(w) {
		return nil
	}
	if w.CursorMode == event.CursorDisabled {
		w.VirtualCursorX, w.VirtualCursorY = x, y
		return nil
	}
	return b.SetCursorPos(w, x, y)
}

// SetCursorMode moves the cursor mode state machine. The cursor position is
// sampled before the backend switches so the virtual cursor starts where the
// real one was.
func (w *Window) SetCursorMode(mode event.CursorMode) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	switch mode {
	case event.CursorNormal, event.CursorHidden, event.CursorDisabled:
	default:
		return w.ctx.ReportError(InvalidEnum, "invalid cursor mode %d", int(mode))
	}
	if w.CursorMode == mode {
		return nil
	}
	w.CursorMode = mode
	w.VirtualCursorX, w.VirtualCursorY = b.CursorPos(w)
	return b.SetCursorMode(w, mode)
}

func (w *Window) SetStickyKeys(enabled bool) {
	if w.StickyKeys == enabled {
		return
	}
	if !enabled {
		for i := range w.keys {
			if w.keys[i] == stick {
				w.keys[i] = keyState(event.Release)
			}
		}
	}
	w.StickyKeys = enabled
}

func (w *Window) SetStickyMouseButtons(enabled bool) {
	if w.StickyMouseButtons == enabled {
		return
	}
	if !enabled {
		for i := range w.buttons {
			if w.buttons[i] == stick {
				w.buttons[i] = keyState(event.Release)
			}
		}
	}
	w.StickyMouseButtons = enabled
}

func (w *Window) SetLockKeyMods(enabled bool) {
	w.LockKeyMods = enabled
}

func (w *Window) SetRawMouseMotion(enabled bool) error {
	b, err := w.backend()
	if err != nil {
		return err
	}
	if !b.RawMouseMotionSupported() {
		return w.ctx.ReportError(PlatformError, "raw mouse motion is not supported on this system")
	}
	if w.RawMouseMotion == enabled {
		return nil
	}
	w.RawMouseMotion = enabled
	return b.SetRawMouseMotion(w, enabled)
}

// Key returns the last reported state of key. A sticky press is consumed.
func (w *Window) Key(key event.KeyCode) event.Action {
	if !key.Valid() {
		return event.Release
	}
	if w.keys[key] == stick {
		w.keys[key] = keyState(event.Release)
		return event.Press
	}
	return event.Action(w.keys[key])
}

// MouseButton returns the last reported state of button.
func (w *Window) MouseButton(button event.Button) event.Action {
	if button < event.Button1 || button > event.ButtonLast {
		return event.Release
	}
	if w.buttons[button] == stick {
		w.buttons[button] = keyState(event.Release)
		return event.Press
	}
	return event.Action(w.buttons[button])
}

// KeyHeld reports whether key is down without consuming a sticky press.
func (w *Window) KeyHeld(key event.KeyCode) bool {
	return key.Valid() && w.keys[key] == keyState(event.Press)
}

// ButtonsHeld counts the mouse buttons currently down.
func (w *Window) ButtonsHeld() int {
	n := 0
	for _, s := range w.buttons {
		if s == keyState(event.Press) {
			n++
		}
	}
	return n
}

// Native returns the handles graphics loaders need for this window.
func (w *Window) Native() NativeSurface {
	b, err := w.backend()
	if err != nil {
		return NativeSurface{}
	}
	return NativeSurface{
		Platform: b.ID(),
		Display:  b.EGLNativeDisplay(),
		Window:   b.EGLNativeWindow(w),
	}
}

// CreateSurface asks the backend to create a Vulkan surface for the window.
func (w *Window) CreateSurface(instance, allocator uintptr) (uintptr, error) {
	b, err := w.backend()
	if err != nil {
		return 0, err
	}
	return b.CreateWindowSurface(instance, w, allocator)
}

// CreateGraphicsContext is called by backends from CreateWindow. It returns
// nil without error when no client API was requested.
func CreateGraphicsContext(host Host, native NativeSurface, ctxcfg ContextConfig, fbcfg FramebufferConfig) (GraphicsContext, error) {
	if ctxcfg.Client == NoAPI {
		return nil, nil
	}
	loader := host.ContextLoader()
	if loader == nil {
		return nil, host.ReportError(APIUnavailable, "no context loader registered for %s", native.Platform)
	}
	gc, err := loader.CreateContext(native, ctxcfg, fbcfg)
	if err != nil {
		return nil, host.ReportError(APIUnavailable, "failed to create graphics context: %v", err)
	}
	return gc, nil
}
