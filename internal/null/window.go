package null

import (
	"github.com/1broseidon/hatch/internal/platform"
)

type windowState struct {
	x, y          int
	width, height int
	visible       bool
	iconified     bool
	maximized     bool
	resizable     bool
	decorated     bool
	floating      bool
	transparent   bool
	opacity       float32
}

func windowOf(w *platform.Window) *windowState {
	return w.Platform.(*windowState)
}

func (b *Backend) CreateWindow(w *platform.Window, wndcfg platform.WindowConfig, ctxcfg platform.ContextConfig, fbcfg platform.FramebufferConfig) error {
	s := &windowState{
		width:       wndcfg.Width,
		height:      wndcfg.Height,
		resizable:   wndcfg.Resizable,
		decorated:   wndcfg.Decorated,
		floating:    wndcfg.Floating,
		transparent: fbcfg.Transparent,
		opacity:     1,
	}
	w.Platform = s

	if wndcfg.Monitor != nil {
		b.host.InputWindowMonitor(w, wndcfg.Monitor)
		b.fitToMonitor(w, wndcfg.Monitor)
		s.visible = true
	}

	gc, err := platform.CreateGraphicsContext(b.host, platform.NativeSurface{Platform: platform.Null, Window: uintptr(w.ID)}, ctxcfg, fbcfg)
	if err != nil {
		return err
	}
	w.Graphics = gc
	return nil
}

func (b *Backend) fitToMonitor(w *platform.Window, m *platform.Monitor) {
	s := windowOf(w)
	ms := monitorOf(m)
	s.x, s.y = ms.x, ms.y
	s.width, s.height = ms.mode.Width, ms.mode.Height
}

func (b *Backend) DestroyWindow(w *platform.Window) {
	if b.focused == w.ID {
		b.focused = 0
	}
	if w.Graphics != nil {
		w.Graphics.Destroy()
		w.Graphics = nil
	}
}

func (b *Backend) SetWindowTitle(w *platform.Window, title string) error { return nil }

func (b *Backend) SetWindowIcon(w *platform.Window, images []platform.Image) error { return nil }

func (b *Backend) WindowPos(w *platform.Window) (int, int, error) {
	s := windowOf(w)
	return s.x, s.y, nil
}

func (b *Backend) SetWindowPos(w *platform.Window, x, y int) error {
	s := windowOf(w)
	if w.Monitor != 0 {
		return nil
	}
	if s.x != x || s.y != y {
		s.x, s.y = x, y
		b.host.InputWindowPos(w, x, y)
	}
	return nil
}

func (b *Backend) WindowSize(w *platform.Window) (int, int) {
	s := windowOf(w)
	return s.width, s.height
}

func (b *Backend) SetWindowSize(w *platform.Window, width, height int) error {
	s := windowOf(w)
	if w.Monitor != 0 {
		if m := b.host.Monitor(w.Monitor); m != nil {
			b.fitToMonitor(w, m)
		}
		return nil
	}
	if s.width != width || s.height != height {
		s.width, s.height = width, height
		b.host.InputWindowSize(w, width, height)
		b.host.InputFramebufferSize(w, width, height)
	}
	return nil
}

func (b *Backend) SetWindowSizeLimits(w *platform.Window, minWidth, minHeight, maxWidth, maxHeight int) error {
	s := windowOf(w)
	width, height := applySizeLimits(s.width, s.height, minWidth, minHeight, maxWidth, maxHeight)
	return b.SetWindowSize(w, width, height)
}

func applySizeLimits(width, height, minWidth, minHeight, maxWidth, maxHeight int) (int, int) {
	if minWidth != platform.DontCare && width < minWidth {
		width = minWidth
	}
	if maxWidth != platform.DontCare && width > maxWidth {
		width = maxWidth
	}
	if minHeight != platform.DontCare && height < minHeight {
		height = minHeight
	}
	if maxHeight != platform.DontCare && height > maxHeight {
		height = maxHeight
	}
	return width, height
}

func (b *Backend) SetWindowAspectRatio(w *platform.Window, numer, denom int) error {
	s := windowOf(w)
	if numer == platform.DontCare || denom == platform.DontCare {
		return nil
	}
	height := s.width * denom / numer
	return b.SetWindowSize(w, s.width, height)
}

func (b *Backend) FramebufferSize(w *platform.Window) (int, int) {
	return b.WindowSize(w)
}

func (b *Backend) WindowFrameSize(w *platform.Window) (int, int, int, int) {
	s := windowOf(w)
	if s.decorated && w.Monitor == 0 {
		return frameBorder, frameTitlebar, frameBorder, frameBorder
	}
	return 0, 0, 0, 0
}

func (b *Backend) WindowContentScale(w *platform.Window) (float32, float32) {
	return 1, 1
}

func (b *Backend) IconifyWindow(w *platform.Window) error {
	s := windowOf(w)
	if !s.iconified {
		s.iconified = true
		b.host.InputWindowIconify(w, true)
	}
	return nil
}

func (b *Backend) RestoreWindow(w *platform.Window) error {
	s := windowOf(w)
	if s.iconified {
		s.iconified = false
		b.host.InputWindowIconify(w, false)
	} else if s.maximized {
		s.maximized = false
		b.host.InputWindowMaximize(w, false)
	}
	return nil
}

func (b *Backend) MaximizeWindow(w *platform.Window) error {
	s := windowOf(w)
	if !s.maximized {
		s.maximized = true
		b.host.InputWindowMaximize(w, true)
	}
	return nil
}

func (b *Backend) ShowWindow(w *platform.Window) error {
	windowOf(w).visible = true
	return nil
}

func (b *Backend) HideWindow(w *platform.Window) error {
	if b.focused == w.ID {
		b.focused = 0
		b.host.InputWindowFocus(w, false)
	}
	windowOf(w).visible = false
	return nil
}

func (b *Backend) RequestWindowAttention(w *platform.Window) error { return nil }

// FocusWindow moves focus to w. Hidden windows cannot take focus and a
// fullscreen window losing focus is iconified when it auto-iconifies.
func (b *Backend) FocusWindow(w *platform.Window) error {
	s := windowOf(w)
	if b.focused == w.ID || !s.visible {
		return nil
	}
	previous := b.host.Window(b.focused)
	b.focused = w.ID
	if previous != nil {
		b.host.InputWindowFocus(previous, false)
		if previous.Monitor != 0 && previous.AutoIconify {
			_ = b.IconifyWindow(previous)
		}
	}
	b.host.InputWindowFocus(w, true)
	return nil
}

func (b *Backend) SetWindowMonitor(w *platform.Window, m *platform.Monitor, x, y, width, height, refreshRate int) error {
	s := windowOf(w)
	if (m == nil && w.Monitor == 0) || (m != nil && w.Monitor == m.ID) {
		if m == nil {
			_ = b.SetWindowPos(w, x, y)
			return b.SetWindowSize(w, width, height)
		}
		b.fitToMonitor(w, m)
		return nil
	}
	b.host.InputWindowMonitor(w, m)
	if m != nil {
		s.visible = true
		b.fitToMonitor(w, m)
		return nil
	}
	s.x, s.y = x, y
	return b.SetWindowSize(w, width, height)
}

func (b *Backend) WindowFocused(w *platform.Window) bool   { return b.focused == w.ID }
func (b *Backend) WindowIconified(w *platform.Window) bool { return windowOf(w).iconified }
func (b *Backend) WindowVisible(w *platform.Window) bool   { return windowOf(w).visible }
func (b *Backend) WindowMaximized(w *platform.Window) bool { return windowOf(w).maximized }

func (b *Backend) WindowHovered(w *platform.Window) bool {
	s := windowOf(w)
	x, y := int(b.cursorX), int(b.cursorY)
	return x >= s.x && y >= s.y && x < s.x+s.width && y < s.y+s.height
}

func (b *Backend) FramebufferTransparent(w *platform.Window) bool { return windowOf(w).transparent }
func (b *Backend) WindowOpacity(w *platform.Window) float32       { return windowOf(w).opacity }

func (b *Backend) SetWindowResizable(w *platform.Window, enabled bool) error {
	windowOf(w).resizable = enabled
	return nil
}

func (b *Backend) SetWindowDecorated(w *platform.Window, enabled bool) error {
	windowOf(w).decorated = enabled
	return nil
}

func (b *Backend) SetWindowFloating(w *platform.Window, enabled bool) error {
	windowOf(w).floating = enabled
	return nil
}

func (b *Backend) SetWindowOpacity(w *platform.Window, opacity float32) error {
	windowOf(w).opacity = opacity
	return nil
}

func (b *Backend) SetWindowMousePassthrough(w *platform.Window, enabled bool) error { return nil }
