package x11

import (
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

type windowState struct {
	id          xproto.Window
	colormap    xproto.Colormap
	transparent bool

	width, height int
	xpos, ypos    int

	lastCursorX, lastCursorY float64

	iconified bool
	maximized bool
	hovered   bool
}

func windowOf(w *platform.Window) *windowState {
	if w == nil {
		return &windowState{}
	}
	if s, ok := w.Platform.(*windowState); ok {
		return s
	}
	return &windowState{}
}

const windowEventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskExposure |
	xproto.EventMaskFocusChange |
	xproto.EventMaskVisibilityChange |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskPropertyChange

// Motif decoration hint fields.
const (
	mwmHintsDecorations = 1 << 1
	mwmDecorAll         = 1 << 0
)

func (b *Backend) CreateWindow(w *platform.Window, wndcfg platform.WindowConfig, ctxcfg platform.ContextConfig, fbcfg platform.FramebufferConfig) error {
	conn := b.conn.Conn()
	screen := b.conn.Screen()

	width, height := wndcfg.Width, wndcfg.Height
	if wndcfg.ScaleToMonitor {
		width = int(float32(width) * b.contentScale)
		height = int(float32(height) * b.contentScale)
	}

	depth, visual := screen.RootDepth, screen.RootVisual
	transparent := false
	if fbcfg.Transparent {
		if d, v, ok := transparentVisual(screen); ok {
			depth, visual, transparent = d, v, true
		}
	}

	cmap, err := xproto.NewColormapId(conn)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to allocate colormap: %v", err)
	}
	if err := xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, cmap, b.conn.Root, visual).Check(); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to create colormap: %v", err)
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		xproto.FreeColormap(conn, cmap)
		return b.host.ReportError(platform.PlatformError, "X11: failed to allocate window: %v", err)
	}
	err = xproto.CreateWindowChecked(
		conn,
		depth,
		wid,
		b.conn.Root,
		0, 0,
		uint16(width), uint16(height),
		0,
		xproto.WindowClassInputOutput,
		visual,
		xproto.CwBorderPixel|xproto.CwEventMask|xproto.CwColormap,
		[]uint32{0, windowEventMask, uint32(cmap)},
	).Check()
	if err != nil {
		xproto.FreeColormap(conn, cmap)
		return b.host.ReportError(platform.PlatformError, "X11: failed to create window: %v", err)
	}

	s := &windowState{
		id:          wid,
		colormap:    cmap,
		transparent: transparent,
		width:       width,
		height:      height,
	}
	w.Platform = s
	b.windows[wid] = w

	if !wndcfg.Decorated {
		_ = b.SetWindowDecorated(w, false)
	}

	if w.Monitor == 0 {
		var states []string
		if wndcfg.Floating {
			states = append(states, "_NET_WM_STATE_ABOVE")
		}
		if wndcfg.Maximized {
			states = append(states, "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ")
			s.maximized = true
		}
		if len(states) > 0 {
			_ = ewmh.WmStateSet(b.conn.XUtil, wid, states)
		}
	}

	xu := b.conn.XUtil
	if err := icccm.WmProtocolsSet(xu, wid, []string{"WM_DELETE_WINDOW", "_NET_WM_PING"}); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to set WM_PROTOCOLS: %v", err)
	}
	_ = ewmh.WmPidSet(xu, wid, uint(os.Getpid()))
	_ = ewmh.WmWindowTypeSet(xu, wid, []string{"_NET_WM_WINDOW_TYPE_NORMAL"})
	_ = icccm.WmHintsSet(xu, wid, &icccm.Hints{
		Flags:        icccm.HintState,
		InitialState: wmStateNormal,
	})
	_ = icccm.WmNormalHintsSet(xu, wid, normalHints(w, width, height))

	instance := wndcfg.Title
	if instance == "" {
		instance = b.opts.ClassName
	}
	_ = icccm.WmClassSet(xu, wid, &icccm.WmClass{Instance: instance, Class: b.opts.ClassName})

	if err := b.SetWindowTitle(w, wndcfg.Title); err != nil {
		return err
	}

	gc, err := platform.CreateGraphicsContext(b.host, b.nativeSurface(w), ctxcfg, fbcfg)
	if err != nil {
		return err
	}
	w.Graphics = gc

	if w.Monitor != 0 {
		if err := b.ShowWindow(w); err != nil {
			return err
		}
		b.updateWindowMode(w)
		b.acquireMonitor(w)
		b.fitToMonitor(w)
	}
	return nil
}

// transparentVisual finds a 32-bit TrueColor visual with an alpha channel.
func transparentVisual(screen *xproto.ScreenInfo) (byte, xproto.Visualid, bool) {
	for _, d := range screen.AllowedDepths {
		if d.Depth != 32 {
			continue
		}
		for _, v := range d.Visuals {
			if v.Class != xproto.VisualClassTrueColor {
				continue
			}
			if ^(v.RedMask | v.GreenMask | v.BlueMask) != 0 {
				return d.Depth, v.VisualId, true
			}
		}
	}
	return 0, 0, false
}

// normalHints builds WM_NORMAL_HINTS for the window's size constraints.
// Windows that are not resizable are pinned to width x height.
func normalHints(w *platform.Window, width, height int) *icccm.NormalHints {
	h := &icccm.NormalHints{
		Flags:      icccm.SizeHintPWinGravity,
		WinGravity: xproto.GravityStatic,
	}
	if w.Monitor != 0 {
		return h
	}
	if !w.Resizable {
		h.Flags |= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		h.MinWidth, h.MaxWidth = uint(width), uint(width)
		h.MinHeight, h.MaxHeight = uint(height), uint(height)
		return h
	}
	if w.MinWidth != platform.DontCare && w.MinHeight != platform.DontCare {
		h.Flags |= icccm.SizeHintPMinSize
		h.MinWidth, h.MinHeight = uint(w.MinWidth), uint(w.MinHeight)
	}
	if w.MaxWidth != platform.DontCare && w.MaxHeight != platform.DontCare {
		h.Flags |= icccm.SizeHintPMaxSize
		h.MaxWidth, h.MaxHeight = uint(w.MaxWidth), uint(w.MaxHeight)
	}
	if w.Numer != platform.DontCare && w.Denom != platform.DontCare {
		h.Flags |= icccm.SizeHintPAspect
		h.MinAspectNum, h.MinAspectDen = uint(w.Numer), uint(w.Denom)
		h.MaxAspectNum, h.MaxAspectDen = uint(w.Numer), uint(w.Denom)
	}
	return h
}

func (b *Backend) updateNormalHints(w *platform.Window, width, height int) {
	if err := icccm.WmNormalHintsSet(b.conn.XUtil, windowOf(w).id, normalHints(w, width, height)); err != nil {
		b.host.Logger().Debug("x11 set normal hints failed", "window", w.ID, "error", err)
	}
}

// updateWindowMode asks the window manager for fullscreen when the window
// holds a monitor and removes it otherwise.
func (b *Backend) updateWindowMode(w *platform.Window) {
	s := windowOf(w)
	xu := b.conn.XUtil
	if w.Monitor != 0 {
		if err := b.conn.setNetWMState(s.id, true, "_NET_WM_STATE_FULLSCREEN"); err != nil {
			b.host.Logger().Debug("x11 fullscreen request failed", "window", w.ID, "error", err)
		}
		_ = xprop.ChangeProp32(xu, s.id, "_NET_WM_BYPASS_COMPOSITOR", "CARDINAL", 1)
		return
	}
	if err := b.conn.setNetWMState(s.id, false, "_NET_WM_STATE_FULLSCREEN"); err != nil {
		b.host.Logger().Debug("x11 fullscreen removal failed", "window", w.ID, "error", err)
	}
	if atom, err := b.conn.Atom("_NET_WM_BYPASS_COMPOSITOR"); err == nil {
		xproto.DeleteProperty(b.conn.Conn(), s.id, atom)
	}
}

func (b *Backend) acquireMonitor(w *platform.Window) {
	m := b.host.Monitor(w.Monitor)
	if m == nil {
		return
	}
	ms := monitorOf(m)
	if !ms.acquired {
		if b.acquired == 0 {
			b.disableScreenSaver()
		}
		b.acquired++
		ms.acquired = true
	}
	if err := b.setVideoMode(m, w.VideoMode); err != nil {
		b.host.Logger().Debug("x11 set video mode failed", "monitor", m.Name, "error", err)
	}
	m.Window = w.ID
}

func (b *Backend) releaseMonitor(w *platform.Window) {
	m := b.host.Monitor(w.Monitor)
	if m == nil || m.Window != w.ID {
		return
	}
	m.Window = 0
	b.restoreVideoMode(m)

	ms := monitorOf(m)
	if ms.acquired {
		ms.acquired = false
		b.acquired--
		if b.acquired == 0 {
			b.restoreScreenSaver()
		}
	}
}

func (b *Backend) disableScreenSaver() {
	conn := b.conn.Conn()
	saver, err := xproto.GetScreenSaver(conn).Reply()
	if err != nil {
		return
	}
	b.saver = saver
	xproto.SetScreenSaver(conn, 0, 0, xproto.BlankingNotPreferred, xproto.ExposuresDefault)
}

func (b *Backend) restoreScreenSaver() {
	if b.saver == nil {
		return
	}
	xproto.SetScreenSaver(b.conn.Conn(),
		int16(b.saver.Timeout), int16(b.saver.Interval),
		b.saver.PreferBlanking, b.saver.AllowExposures)
	b.saver = nil
}

// fitToMonitor covers the monitor with the window.
func (b *Backend) fitToMonitor(w *platform.Window) {
	m := b.host.Monitor(w.Monitor)
	if m == nil {
		return
	}
	x, y := b.MonitorPos(m)
	mode, err := b.VideoMode(m)
	if err != nil {
		return
	}
	b.configure4(windowOf(w).id, x, y, mode.Width, mode.Height)
}

// configure4 moves and resizes win in one request.
func (b *Backend) configure4(win xproto.Window, x, y, width, height int) {
	xproto.ConfigureWindow(b.conn.Conn(), win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)})
}

func (b *Backend) DestroyWindow(w *platform.Window) {
	s := windowOf(w)
	if s.id == 0 || b.conn == nil {
		return
	}
	if w.Monitor != 0 {
		b.releaseMonitor(w)
	}
	if b.disabledCursorWindow == w {
		b.enableCursor(w)
	}
	conn := b.conn.Conn()
	delete(b.windows, s.id)
	xproto.UnmapWindow(conn, s.id)
	xproto.DestroyWindow(conn, s.id)
	if s.colormap != 0 {
		xproto.FreeColormap(conn, s.colormap)
	}
	s.id = 0
	s.colormap = 0
}

func (b *Backend) SetWindowTitle(w *platform.Window, title string) error {
	s := windowOf(w)
	xu := b.conn.XUtil
	if err := ewmh.WmNameSet(xu, s.id, title); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to set window title: %v", err)
	}
	_ = icccm.WmNameSet(xu, s.id, title)
	_ = ewmh.WmIconNameSet(xu, s.id, title)
	return nil
}

func (b *Backend) SetWindowIcon(w *platform.Window, images []platform.Image) error {
	s := windowOf(w)
	if len(images) == 0 {
		atom, err := b.conn.Atom("_NET_WM_ICON")
		if err != nil {
			return b.host.ReportError(platform.PlatformError, "X11: %v", err)
		}
		xproto.DeleteProperty(b.conn.Conn(), s.id, atom)
		return nil
	}
	icons := make([]ewmh.WmIcon, 0, len(images))
	for _, img := range images {
		icons = append(icons, wmIcon(img))
	}
	if err := ewmh.WmIconSet(b.conn.XUtil, s.id, icons); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to set window icon: %v", err)
	}
	return nil
}

// wmIcon packs straight RGBA pixels into the ARGB cardinals of _NET_WM_ICON.
func wmIcon(img platform.Image) ewmh.WmIcon {
	data := make([]uint, img.Width*img.Height)
	for i := range data {
		p := img.Pixels[i*4 : i*4+4]
		data[i] = uint(p[3])<<24 | uint(p[0])<<16 | uint(p[1])<<8 | uint(p[2])
	}
	return ewmh.WmIcon{Width: uint(img.Width), Height: uint(img.Height), Data: data}
}

func (b *Backend) WindowPos(w *platform.Window) (int, int, error) {
	reply, err := xproto.TranslateCoordinates(b.conn.Conn(), windowOf(w).id, b.conn.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, b.host.ReportError(platform.PlatformError, "X11: failed to query window position: %v", err)
	}
	return int(reply.DstX), int(reply.DstY), nil
}

func (b *Backend) SetWindowPos(w *platform.Window, x, y int) error {
	s := windowOf(w)
	if !b.WindowVisible(w) {
		// Some window managers ignore moves of unmapped windows without
		// a user-specified position.
		h := normalHints(w, s.width, s.height)
		h.Flags |= icccm.SizeHintPPosition | icccm.SizeHintUSPosition
		h.X, h.Y = x, y
		_ = icccm.WmNormalHintsSet(b.conn.XUtil, s.id, h)
	}
	xproto.ConfigureWindow(b.conn.Conn(), s.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))})
	return nil
}

func (b *Backend) WindowSize(w *platform.Window) (int, int) {
	s := windowOf(w)
	geom, err := xproto.GetGeometry(b.conn.Conn(), xproto.Drawable(s.id)).Reply()
	if err != nil {
		return s.width, s.height
	}
	return int(geom.Width), int(geom.Height)
}

func (b *Backend) SetWindowSize(w *platform.Window, width, height int) error {
	if m := b.host.Monitor(w.Monitor); m != nil {
		if m.Window == w.ID {
			b.acquireMonitor(w)
			b.fitToMonitor(w)
		}
		return nil
	}
	if !w.Resizable {
		b.updateNormalHints(w, width, height)
	}
	xproto.ConfigureWindow(b.conn.Conn(), windowOf(w).id,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)})
	return nil
}

func (b *Backend) SetWindowSizeLimits(w *platform.Window, minWidth, minHeight, maxWidth, maxHeight int) error {
	width, height := b.WindowSize(w)
	b.updateNormalHints(w, width, height)
	return nil
}

func (b *Backend) SetWindowAspectRatio(w *platform.Window, numer, denom int) error {
	width, height := b.WindowSize(w)
	b.updateNormalHints(w, width, height)
	return nil
}

func (b *Backend) FramebufferSize(w *platform.Window) (int, int) {
	return b.WindowSize(w)
}

func (b *Backend) WindowFrameSize(w *platform.Window) (int, int, int, int) {
	if w.Monitor != 0 || !w.Decorated {
		return 0, 0, 0, 0
	}
	return b.conn.frameExtents(windowOf(w).id)
}

func (b *Backend) WindowContentScale(w *platform.Window) (float32, float32) {
	return b.contentScale, b.contentScale
}

func (b *Backend) IconifyWindow(w *platform.Window) error {
	if err := b.conn.iconifyWindow(windowOf(w).id); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to iconify window: %v", err)
	}
	return nil
}

func (b *Backend) RestoreWindow(w *platform.Window) error {
	s := windowOf(w)
	if b.WindowIconified(w) {
		xproto.MapWindow(b.conn.Conn(), s.id)
		return nil
	}
	if b.WindowVisible(w) && b.WindowMaximized(w) {
		if err := b.conn.setNetWMState(s.id, false, "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ"); err != nil {
			return b.host.ReportError(platform.PlatformError, "X11: failed to restore window: %v", err)
		}
	}
	return nil
}

func (b *Backend) MaximizeWindow(w *platform.Window) error {
	s := windowOf(w)
	if b.WindowVisible(w) {
		if err := b.conn.setNetWMState(s.id, true, "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ"); err != nil {
			return b.host.ReportError(platform.PlatformError, "X11: failed to maximize window: %v", err)
		}
		return nil
	}
	// Unmapped windows carry the state into their first map.
	b.editNetWMState(w, true, "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ")
	return nil
}

// editNetWMState rewrites _NET_WM_STATE of an unmapped window directly.
func (b *Backend) editNetWMState(w *platform.Window, add bool, names ...string) {
	s := windowOf(w)
	states, _ := ewmh.WmStateGet(b.conn.XUtil, s.id)
	states = editStates(states, add, names...)
	_ = ewmh.WmStateSet(b.conn.XUtil, s.id, states)
}

func editStates(states []string, add bool, names ...string) []string {
	for _, name := range names {
		has := slices.Contains(states, name)
		switch {
		case add && !has:
			states = append(states, name)
		case !add && has:
			states = slices.DeleteFunc(states, func(s string) bool { return s == name })
		}
	}
	return states
}

func (b *Backend) ShowWindow(w *platform.Window) error {
	if b.WindowVisible(w) {
		return nil
	}
	if err := xproto.MapWindowChecked(b.conn.Conn(), windowOf(w).id).Check(); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to map window: %v", err)
	}
	return nil
}

func (b *Backend) HideWindow(w *platform.Window) error {
	xproto.UnmapWindow(b.conn.Conn(), windowOf(w).id)
	return nil
}

func (b *Backend) RequestWindowAttention(w *platform.Window) error {
	if err := b.conn.setNetWMState(windowOf(w).id, true, "_NET_WM_STATE_DEMANDS_ATTENTION"); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to request attention: %v", err)
	}
	return nil
}

func (b *Backend) FocusWindow(w *platform.Window) error {
	s := windowOf(w)
	if b.conn.supported("_NET_ACTIVE_WINDOW") {
		if err := b.conn.activateWindow(s.id); err != nil {
			return b.host.ReportError(platform.PlatformError, "X11: failed to activate window: %v", err)
		}
		return nil
	}
	if !b.WindowVisible(w) {
		return nil
	}
	conn := b.conn.Conn()
	xproto.ConfigureWindow(conn, s.id, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	xproto.SetInputFocus(conn, xproto.InputFocusParent, s.id, xproto.TimeCurrentTime)
	return nil
}

func (b *Backend) SetWindowMonitor(w *platform.Window, m *platform.Monitor, x, y, width, height, refreshRate int) error {
	s := windowOf(w)
	if w.Monitor == monitorID(m) {
		if m != nil {
			if m.Window == w.ID {
				b.acquireMonitor(w)
				b.fitToMonitor(w)
			}
			return nil
		}
		if !w.Resizable {
			b.updateNormalHints(w, width, height)
		}
		b.configure4(s.id, x, y, width, height)
		return nil
	}

	if w.Monitor != 0 {
		_ = b.SetWindowDecorated(w, w.Decorated)
		_ = b.SetWindowFloating(w, w.Floating)
		b.releaseMonitor(w)
	}
	b.host.InputWindowMonitor(w, m)
	b.updateNormalHints(w, width, height)

	if m != nil {
		if err := b.ShowWindow(w); err != nil {
			return err
		}
		b.updateWindowMode(w)
		b.acquireMonitor(w)
		b.fitToMonitor(w)
		return nil
	}
	b.updateWindowMode(w)
	b.configure4(s.id, x, y, width, height)
	return nil
}

func monitorID(m *platform.Monitor) event.MonitorID {
	if m == nil {
		return 0
	}
	return m.ID
}

func (b *Backend) WindowFocused(w *platform.Window) bool {
	id := windowOf(w).id
	reply, err := xproto.GetInputFocus(b.conn.Conn()).Reply()
	if err == nil && reply.Focus == id {
		return true
	}
	// Reparenting window managers may hold focus on the frame.
	return b.conn.activeWindow() == id
}

func (b *Backend) WindowIconified(w *platform.Window) bool {
	state, err := icccm.WmStateGet(b.conn.XUtil, windowOf(w).id)
	return err == nil && state.State == wmStateIconic
}

func (b *Backend) WindowVisible(w *platform.Window) bool {
	attrs, err := xproto.GetWindowAttributes(b.conn.Conn(), windowOf(w).id).Reply()
	return err == nil && attrs.MapState == xproto.MapStateViewable
}

func (b *Backend) WindowMaximized(w *platform.Window) bool {
	return b.conn.hasNetWMState(windowOf(w).id, "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ")
}

// WindowHovered walks the pointer down from the root, since the window
// manager frame sits between the root and the window.
func (b *Backend) WindowHovered(w *platform.Window) bool {
	conn := b.conn.Conn()
	target := windowOf(w).id
	win := b.conn.Root
	for win != 0 {
		reply, err := xproto.QueryPointer(conn, win).Reply()
		if err != nil || !reply.SameScreen {
			return false
		}
		if reply.Child == target {
			return true
		}
		win = reply.Child
	}
	return false
}

// FramebufferTransparent needs both an alpha visual and a running
// compositing manager.
func (b *Backend) FramebufferTransparent(w *platform.Window) bool {
	if !windowOf(w).transparent {
		return false
	}
	atom, err := b.conn.Atom(fmt.Sprintf("_NET_WM_CM_S%d", b.conn.Conn().DefaultScreen))
	if err != nil {
		return false
	}
	owner, err := xproto.GetSelectionOwner(b.conn.Conn(), atom).Reply()
	return err == nil && owner.Owner != 0
}

func (b *Backend) WindowOpacity(w *platform.Window) float32 {
	v, err := xprop.PropValNum(xprop.GetProperty(b.conn.XUtil, windowOf(w).id, "_NET_WM_WINDOW_OPACITY"))
	if err != nil {
		return 1
	}
	return float32(float64(v) / math.MaxUint32)
}

func (b *Backend) SetWindowOpacity(w *platform.Window, opacity float32) error {
	err := xprop.ChangeProp32(b.conn.XUtil, windowOf(w).id, "_NET_WM_WINDOW_OPACITY", "CARDINAL", opacityValue(opacity))
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to set window opacity: %v", err)
	}
	return nil
}

// opacityValue scales opacity to the full CARDINAL range.
func opacityValue(opacity float32) uint {
	return uint(math.Round(float64(opacity) * math.MaxUint32))
}

func (b *Backend) SetWindowResizable(w *platform.Window, enabled bool) error {
	width, height := b.WindowSize(w)
	b.updateNormalHints(w, width, height)
	return nil
}

func (b *Backend) SetWindowDecorated(w *platform.Window, enabled bool) error {
	err := xprop.ChangeProp32(b.conn.XUtil, windowOf(w).id, "_MOTIF_WM_HINTS", "_MOTIF_WM_HINTS", motifHints(enabled)...)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to set decorations: %v", err)
	}
	return nil
}

// motifHints returns the five fields of _MOTIF_WM_HINTS with only the
// decorations field in use.
func motifHints(decorated bool) []uint {
	var decorations uint
	if decorated {
		decorations = mwmDecorAll
	}
	return []uint{mwmHintsDecorations, 0, decorations, 0, 0}
}

func (b *Backend) SetWindowFloating(w *platform.Window, enabled bool) error {
	if !b.WindowVisible(w) {
		b.editNetWMState(w, enabled, "_NET_WM_STATE_ABOVE")
		return nil
	}
	if err := b.conn.setNetWMState(windowOf(w).id, enabled, "_NET_WM_STATE_ABOVE"); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to change floating state: %v", err)
	}
	return nil
}

// SetWindowMousePassthrough empties the input shape of the window, or
// resets it to the window bounds.
func (b *Backend) SetWindowMousePassthrough(w *platform.Window, enabled bool) error {
	if !b.shape {
		return b.host.ReportError(platform.FeatureUnavailable, "X11: mouse passthrough requires the Shape extension")
	}
	conn := b.conn.Conn()
	id := windowOf(w).id
	if enabled {
		shape.Rectangles(conn, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted, id, 0, 0, nil)
	} else {
		shape.Mask(conn, shape.SoSet, shape.SkInput, id, 0, 0, xproto.PixmapNone)
	}
	return nil
}
