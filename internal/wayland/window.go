//go:build linux

package wayland

import (
	"slices"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/wl"
)

type windowState struct {
	surface    *wl.Surface
	xdgSurface *wl.XdgSurface
	toplevel   *wl.Toplevel
	decoration *wl.ToplevelDecoration

	idleInhibitor   *wl.IdleInhibitor
	lockedPointer   *wl.LockedPointer
	relativePointer *wl.RelativePointer

	width, height int
	scale         int

	visible       bool
	maximized     bool
	hovered       bool
	transparent   bool
	wasFullscreen bool

	cursorX, cursorY float64

	// outputs lists the outputs the surface has entered, in entry order.
	outputs     []*outputState
	decorations decorationState
}

func windowOf(w *platform.Window) *windowState {
	if w == nil {
		return nil
	}
	s, _ := w.Platform.(*windowState)
	return s
}

func (s *windowState) onOutput(out *outputState) bool {
	return slices.Contains(s.outputs, out)
}

func (b *Backend) CreateWindow(w *platform.Window, wndcfg platform.WindowConfig, ctxcfg platform.ContextConfig, fbcfg platform.FramebufferConfig) error {
	s := &windowState{
		width:       wndcfg.Width,
		height:      wndcfg.Height,
		scale:       1,
		transparent: fbcfg.Transparent,
		maximized:   wndcfg.Maximized,
	}
	w.Platform = s

	surface, err := b.compositor.CreateSurface()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "Wayland: failed to create window surface: %v", err)
	}
	s.surface = surface
	surface.OnEnter = func(o *wl.Output) { b.surfaceEnter(w, o) }
	surface.OnLeave = func(o *wl.Output) { b.surfaceLeave(w, o) }
	b.surfaces[surface] = surfaceOwner{window: w, part: partMain}

	if !s.transparent {
		b.setOpaqueRegion(w)
	}

	gc, err := platform.CreateGraphicsContext(b.host, b.nativeSurface(w), ctxcfg, fbcfg)
	if err != nil {
		return err
	}
	w.Graphics = gc

	if wndcfg.Monitor != nil {
		b.host.InputWindowMonitor(w, wndcfg.Monitor)
	}
	if w.Monitor != 0 || wndcfg.Visible {
		if err := b.createXdgSurface(w); err != nil {
			return err
		}
		s.visible = true
	}
	return nil
}

func (b *Backend) createXdgSurface(w *platform.Window) error {
	s := windowOf(w)
	xs, err := b.wmBase.GetXdgSurface(s.surface)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "Wayland: failed to create xdg-surface for window: %v", err)
	}
	s.xdgSurface = xs
	xs.OnConfigure = func(serial uint32) { xs.AckConfigure(serial) }

	toplevel, err := xs.GetToplevel()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "Wayland: failed to create xdg-toplevel for window: %v", err)
	}
	s.toplevel = toplevel
	toplevel.OnConfigure = func(width, height int32, states []uint32) {
		b.toplevelConfigure(w, int(width), int(height), states)
	}
	toplevel.OnClose = func() { b.host.InputWindowCloseRequest(w) }

	if w.Title != "" {
		toplevel.SetTitle(w.Title)
	}
	if w.MinWidth != platform.DontCare && w.MinHeight != platform.DontCare {
		toplevel.SetMinSize(int32(w.MinWidth), int32(w.MinHeight))
	}
	if w.MaxWidth != platform.DontCare && w.MaxHeight != platform.DontCare {
		toplevel.SetMaxSize(int32(w.MaxWidth), int32(w.MaxHeight))
	}

	if m := b.host.Monitor(w.Monitor); m != nil {
		toplevel.SetFullscreen(outputOf(m).output)
		b.setIdleInhibitor(w, true)
	} else {
		if s.maximized {
			toplevel.SetMaximized()
		}
		b.setIdleInhibitor(w, false)
		b.setXdgDecorations(w)
	}

	s.surface.Commit()
	if err := b.conn.Roundtrip(); err != nil {
		b.connectionLost(err)
	}
	return nil
}

func (b *Backend) toplevelConfigure(w *platform.Window, width, height int, states []uint32) {
	s := windowOf(w)
	var maximized, fullscreen, activated bool
	for _, st := range states {
		switch st {
		case wl.ToplevelStateMaximized:
			maximized = true
		case wl.ToplevelStateFullscreen:
			fullscreen = true
		case wl.ToplevelStateActivated:
			activated = true
		}
	}

	if width != 0 && height != 0 {
		if !maximized && !fullscreen {
			width, height = fitAspectRatio(width, height, w.Numer, w.Denom)
		}
		b.host.InputWindowSize(w, width, height)
		b.SetWindowSize(w, width, height)
		b.host.InputWindowDamage(w)
	}

	if s.wasFullscreen && w.AutoIconify && (!activated || !fullscreen) {
		b.IconifyWindow(w)
		s.wasFullscreen = false
	}
	if fullscreen && activated {
		s.wasFullscreen = true
	}
	if s.maximized != maximized {
		s.maximized = maximized
		b.host.InputWindowMaximize(w, maximized)
	}
}

// fitAspectRatio shrinks width or height to honour numer:denom. DontCare
// terms leave the size untouched.
func fitAspectRatio(width, height, numer, denom int) (int, int) {
	if numer == platform.DontCare || denom == platform.DontCare || numer <= 0 || denom <= 0 {
		return width, height
	}
	ratio := float64(width) / float64(height)
	target := float64(numer) / float64(denom)
	if ratio < target {
		height = int(float64(width) / target)
	} else if ratio > target {
		width = int(float64(height) * target)
	}
	return width, height
}

func (b *Backend) setXdgDecorations(w *platform.Window) {
	s := windowOf(w)
	if b.decorationManager != nil && b.opts.Decorations == DecorationsAuto {
		if s.decoration == nil {
			d, err := b.decorationManager.GetToplevelDecoration(s.toplevel)
			if err != nil {
				b.createDecorations(w)
				return
			}
			s.decoration = d
			d.OnConfigure = func(mode uint32) { b.decorationConfigure(w, mode) }
		}
		if w.Decorated {
			s.decoration.SetMode(wl.DecorationModeServerSide)
		} else {
			s.decoration.SetMode(wl.DecorationModeClientSide)
		}
		return
	}
	b.createDecorations(w)
}

func (b *Backend) decorationConfigure(w *platform.Window, mode uint32) {
	s := windowOf(w)
	s.decorations.serverSide = mode == wl.DecorationModeServerSide
	if s.decorations.serverSide {
		b.destroyDecorations(w)
		return
	}
	if w.Monitor == 0 {
		b.createDecorations(w)
	}
}

func (b *Backend) setIdleInhibitor(w *platform.Window, enable bool) {
	s := windowOf(w)
	if enable && s.idleInhibitor == nil && b.idleInhibitManager != nil {
		inhibitor, err := b.idleInhibitManager.CreateInhibitor(s.surface)
		if err != nil {
			b.host.ReportError(platform.PlatformError, "Wayland: failed to create idle inhibitor: %v", err)
			return
		}
		s.idleInhibitor = inhibitor
	} else if !enable && s.idleInhibitor != nil {
		s.idleInhibitor.Destroy()
		s.idleInhibitor = nil
	}
}

func (b *Backend) setOpaqueRegion(w *platform.Window) {
	s := windowOf(w)
	region, err := b.compositor.CreateRegion()
	if err != nil {
		return
	}
	region.Add(0, 0, int32(s.width), int32(s.height))
	s.surface.SetOpaqueRegion(region)
	s.surface.Commit()
	region.Destroy()
}

func (b *Backend) resizeWindow(w *platform.Window) {
	s := windowOf(w)
	if !s.transparent {
		b.setOpaqueRegion(w)
	}
	b.host.InputFramebufferSize(w, s.width*s.scale, s.height*s.scale)
	b.host.InputWindowContentScale(w, float32(s.scale), float32(s.scale))
	b.resizeDecorations(w)
}

// updateContentScale sets the buffer scale to the largest scale among the
// outputs the window is shown on.
func (b *Backend) updateContentScale(w *platform.Window) {
	if b.compositor.Version() < 3 {
		return
	}
	s := windowOf(w)
	scale := 1
	for _, out := range s.outputs {
		scale = max(scale, out.scale)
	}
	if scale == s.scale {
		return
	}
	s.scale = scale
	s.surface.SetBufferScale(int32(scale))
	b.resizeWindow(w)
}

func (b *Backend) outputFor(o *wl.Output) *outputState {
	for _, out := range b.outputs {
		if out.output == o {
			return out
		}
	}
	return nil
}

func (b *Backend) surfaceEnter(w *platform.Window, o *wl.Output) {
	out := b.outputFor(o)
	s := windowOf(w)
	if out == nil || s == nil || s.onOutput(out) {
		return
	}
	s.outputs = append(s.outputs, out)
	b.updateContentScale(w)
}

func (b *Backend) surfaceLeave(w *platform.Window, o *wl.Output) {
	s := windowOf(w)
	if s == nil {
		return
	}
	s.outputs = slices.DeleteFunc(s.outputs, func(out *outputState) bool {
		return out.output == o
	})
	b.updateContentScale(w)
}

// destroyShellObjects drops the xdg role objects; the wl_surface survives
// so the window can be shown again.
func (b *Backend) destroyShellObjects(w *platform.Window) {
	s := windowOf(w)
	b.destroyDecorations(w)
	if s.decoration != nil {
		s.decoration.Destroy()
		s.decoration = nil
	}
	s.decorations.serverSide = false
	if s.toplevel != nil {
		s.toplevel.Destroy()
		s.toplevel = nil
	}
	if s.xdgSurface != nil {
		s.xdgSurface.Destroy()
		s.xdgSurface = nil
	}
}

func (b *Backend) DestroyWindow(w *platform.Window) {
	if b.pointerFocus == w {
		b.pointerFocus = nil
		b.pointerPart = partNone
		b.host.InputCursorEnter(w, false)
	}
	if b.keyboardFocus == w {
		b.keyboardFocus = nil
		setTimer(b.keyRepeatTimerfd, 0, 0)
		b.host.InputWindowFocus(w, false)
	}
	if b.clip.dragFocus == w {
		b.clip.dragFocus = nil
	}

	s := windowOf(w)
	if s == nil {
		return
	}
	b.setIdleInhibitor(w, false)
	b.unlockPointer(w)

	if w.Graphics != nil {
		w.Graphics.Destroy()
		w.Graphics = nil
	}

	b.destroyShellObjects(w)
	if s.decorations.buffer != nil {
		s.decorations.buffer.Destroy()
		s.decorations.buffer = nil
	}
	if s.surface != nil {
		delete(b.surfaces, s.surface)
		s.surface.Destroy()
		s.surface = nil
	}
	s.outputs = nil
	w.Platform = nil
}

func (b *Backend) SetWindowTitle(w *platform.Window, title string) error {
	if s := windowOf(w); s.toplevel != nil {
		s.toplevel.SetTitle(title)
	}
	return nil
}

func (b *Backend) SetWindowIcon(w *platform.Window, images []platform.Image) error {
	return b.host.ReportError(platform.FeatureUnavailable, "Wayland: the platform does not support setting the window icon")
}

func (b *Backend) WindowPos(w *platform.Window) (int, int, error) {
	return 0, 0, b.host.ReportError(platform.FeatureUnavailable, "Wayland: the platform does not provide the window position")
}

func (b *Backend) SetWindowPos(w *platform.Window, x, y int) error {
	return b.host.ReportError(platform.FeatureUnavailable, "Wayland: the platform does not support setting the window position")
}

func (b *Backend) WindowSize(w *platform.Window) (int, int) {
	s := windowOf(w)
	return s.width, s.height
}

func (b *Backend) SetWindowSize(w *platform.Window, width, height int) error {
	s := windowOf(w)
	s.width, s.height = width, height
	b.resizeWindow(w)
	return nil
}

func (b *Backend) SetWindowSizeLimits(w *platform.Window, minWidth, minHeight, maxWidth, maxHeight int) error {
	s := windowOf(w)
	if s.toplevel == nil {
		return nil
	}
	if minWidth == platform.DontCare || minHeight == platform.DontCare {
		minWidth, minHeight = 0, 0
	}
	if maxWidth == platform.DontCare || maxHeight == platform.DontCare {
		maxWidth, maxHeight = 0, 0
	}
	s.toplevel.SetMinSize(int32(minWidth), int32(minHeight))
	s.toplevel.SetMaxSize(int32(maxWidth), int32(maxHeight))
	s.surface.Commit()
	return nil
}

// SetWindowAspectRatio has nothing to send; the ratio is applied to the
// next configure.
func (b *Backend) SetWindowAspectRatio(w *platform.Window, numer, denom int) error {
	return nil
}

func (b *Backend) FramebufferSize(w *platform.Window) (int, int) {
	s := windowOf(w)
	return s.width * s.scale, s.height * s.scale
}

func (b *Backend) WindowFrameSize(w *platform.Window) (left, top, right, bottom int) {
	s := windowOf(w)
	if !w.Decorated || w.Monitor != 0 || !s.decorations.active() {
		return 0, 0, 0, 0
	}
	return decorationWidth, decorationTop, decorationWidth, decorationWidth
}

func (b *Backend) WindowContentScale(w *platform.Window) (float32, float32) {
	s := windowOf(w)
	return float32(s.scale), float32(s.scale)
}

func (b *Backend) IconifyWindow(w *platform.Window) error {
	if s := windowOf(w); s.toplevel != nil {
		s.toplevel.SetMinimized()
	}
	return nil
}

func (b *Backend) RestoreWindow(w *platform.Window) error {
	s := windowOf(w)
	if s.toplevel == nil {
		s.maximized = false
		return nil
	}
	if w.Monitor != 0 {
		s.toplevel.UnsetFullscreen()
		b.setIdleInhibitor(w, false)
		b.host.InputWindowMonitor(w, nil)
	}
	if s.maximized {
		s.toplevel.UnsetMaximized()
	}
	return nil
}

func (b *Backend) MaximizeWindow(w *platform.Window) error {
	s := windowOf(w)
	if s.toplevel == nil {
		s.maximized = true
		return nil
	}
	s.toplevel.SetMaximized()
	return nil
}

func (b *Backend) ShowWindow(w *platform.Window) error {
	s := windowOf(w)
	if s.visible {
		return nil
	}
	if s.toplevel == nil {
		if err := b.createXdgSurface(w); err != nil {
			return err
		}
	}
	s.visible = true
	b.host.InputWindowDamage(w)
	return nil
}

func (b *Backend) HideWindow(w *platform.Window) error {
	s := windowOf(w)
	if !s.visible {
		return nil
	}
	s.visible = false
	b.destroyShellObjects(w)
	s.surface.Attach(nil, 0, 0)
	s.surface.Commit()
	return nil
}

func (b *Backend) RequestWindowAttention(w *platform.Window) error {
	return b.host.ReportError(platform.FeatureUnimplemented, "Wayland: window attention request not implemented yet")
}

func (b *Backend) FocusWindow(w *platform.Window) error {
	return b.host.ReportError(platform.FeatureUnavailable, "Wayland: the platform does not support setting the input focus")
}

func (b *Backend) SetWindowMonitor(w *platform.Window, m *platform.Monitor, x, y, width, height, refreshRate int) error {
	s := windowOf(w)
	if m != nil {
		if s.toplevel != nil {
			s.toplevel.SetFullscreen(outputOf(m).output)
		}
		b.setIdleInhibitor(w, true)
		if !s.decorations.serverSide {
			b.destroyDecorations(w)
		}
	} else {
		if s.toplevel != nil && w.Monitor != 0 {
			s.toplevel.UnsetFullscreen()
		}
		b.setIdleInhibitor(w, false)
		if s.toplevel != nil && !s.decorations.serverSide {
			b.createDecorations(w)
		}
		if width != s.width || height != s.height {
			b.SetWindowSize(w, width, height)
		}
	}
	b.host.InputWindowMonitor(w, m)
	return nil
}

func (b *Backend) WindowFocused(w *platform.Window) bool {
	return b.keyboardFocus == w
}

// WindowIconified is always false; xdg-shell does not report minimization.
func (b *Backend) WindowIconified(w *platform.Window) bool { return false }

func (b *Backend) WindowVisible(w *platform.Window) bool {
	return windowOf(w).visible
}

func (b *Backend) WindowMaximized(w *platform.Window) bool {
	return windowOf(w).maximized
}

func (b *Backend) WindowHovered(w *platform.Window) bool {
	return windowOf(w).hovered
}

func (b *Backend) FramebufferTransparent(w *platform.Window) bool {
	return windowOf(w).transparent
}

func (b *Backend) WindowOpacity(w *platform.Window) float32 { return 1 }

func (b *Backend) SetWindowResizable(w *platform.Window, enabled bool) error {
	return b.host.ReportError(platform.FeatureUnimplemented, "Wayland: window attribute setting not implemented yet")
}

func (b *Backend) SetWindowDecorated(w *platform.Window, enabled bool) error {
	s := windowOf(w)
	if s.decoration != nil {
		mode := uint32(wl.DecorationModeClientSide)
		if enabled {
			mode = wl.DecorationModeServerSide
		}
		s.decoration.SetMode(mode)
		if !enabled {
			b.destroyDecorations(w)
		}
		return nil
	}
	if enabled {
		b.createDecorations(w)
	} else {
		b.destroyDecorations(w)
	}
	return nil
}

func (b *Backend) SetWindowFloating(w *platform.Window, enabled bool) error {
	return b.host.ReportError(platform.FeatureUnimplemented, "Wayland: window attribute setting not implemented yet")
}

func (b *Backend) SetWindowOpacity(w *platform.Window, opacity float32) error {
	return b.host.ReportError(platform.FeatureUnavailable, "Wayland: the platform does not support setting the window opacity")
}

func (b *Backend) SetWindowMousePassthrough(w *platform.Window, enabled bool) error {
	s := windowOf(w)
	if enabled {
		region, err := b.compositor.CreateRegion()
		if err != nil {
			return b.host.ReportError(platform.PlatformError, "Wayland: failed to create input region: %v", err)
		}
		s.surface.SetInputRegion(region)
		region.Destroy()
	} else {
		s.surface.SetInputRegion(nil)
	}
	s.surface.Commit()
	return nil
}
