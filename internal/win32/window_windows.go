//go:build windows

package win32

import (
	"unsafe"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
)

// Messages only the native side of the window procedure handles.
const (
	wmMouseActivate               = 0x0021
	wmNCPaint                     = 0x0085
	wmNCActivate                  = 0x0086
	wmEnterMenuLoop               = 0x0211
	wmExitMenuLoop                = 0x0212
	wmSizing                      = 0x0214
	wmCaptureChanged              = 0x0215
	wmGetDpiScaledSize            = 0x02E4
	wmDwmCompositionChanged       = 0x031E
	wmDwmColorizationColorChanged = 0x0320
)

// windowState is the Win32 side of a window.
type windowState struct {
	hwnd      uintptr
	bigIcon   uintptr
	smallIcon uintptr

	decode decodeState

	// frameAction is set while a caption button click is in progress.
	frameAction    bool
	transparent    bool
	scaleToMonitor bool
}

func windowOf(w *platform.Window) *windowState {
	s, _ := w.Platform.(*windowState)
	return s
}

func (b *Backend) handle(w *platform.Window) uintptr {
	if s := windowOf(w); s != nil {
		return s.hwnd
	}
	return 0
}

func windowStyle(w *platform.Window) uint32 {
	style := uint32(wsClipSiblings | wsClipChildren)
	if w.Monitor != 0 {
		return style | wsPopup
	}
	style |= wsSysMenu | wsMinimizeBox
	if !w.Decorated {
		return style | wsPopup
	}
	style |= wsCaption
	if w.Resizable {
		style |= wsMaximizeBox | wsThickFrame
	}
	return style
}

func windowExStyle(w *platform.Window) uint32 {
	style := uint32(wsExAppWindow)
	if w.Monitor != 0 || w.Floating {
		style |= wsExTopmost
	}
	return style
}

// adjustRect grows a content rectangle to the window rectangle, using the
// window's DPI where the system supports it.
func (b *Backend) adjustRect(hwnd uintptr, r *rect, style, exStyle uint32) {
	if b.isWindows10Version1607OrGreater() && hwnd != 0 {
		adjustWindowRect(r, style, exStyle, getDpiForWindow(hwnd))
		return
	}
	adjustWindowRectEx(r, style, exStyle)
}

func (b *Backend) windowProc(hwnd, umsg, wParam, lParam uintptr) uintptr {
	code := uint32(umsg)
	if hwnd == b.helper && hwnd != 0 {
		return b.helperProc(hwnd, code, wParam, lParam)
	}

	w := b.window(hwnd)
	if w == nil {
		// Messages sent from inside CreateWindowExW.
		if code == wmNCCreate && b.creating != nil && b.isWindows10Version1607OrGreater() {
			if s := windowOf(b.creating); s != nil && s.scaleToMonitor {
				enableNonClientDpiScaling(hwnd)
			}
		}
		return defWindowProc(hwnd, code, wParam, lParam)
	}
	s := windowOf(w)

	switch code {
	case wmMouseActivate:
		// Cursor disabling waits until a caption button action completes.
		if hiword(lParam) == wmLButtonDown && loword(lParam) != htClient {
			s.frameAction = true
		}

	case wmCaptureChanged:
		if lParam == 0 && s.frameAction {
			if w.CursorMode == event.CursorDisabled {
				b.disableCursor(w)
			}
			s.frameAction = false
		}

	case wmKillFocus:
		if w.CursorMode == event.CursorDisabled {
			b.enableCursor(w)
		} else if b.capturedCursorWindow == w {
			b.releaseCursor()
		}
		if w.Monitor != 0 && w.AutoIconify {
			_ = b.IconifyWindow(w)
		}

	case wmInput:
		b.handleRawInput(w, lParam)
		return defWindowProc(hwnd, code, wParam, lParam)

	case wmEnterSizeMove, wmEnterMenuLoop:
		if !s.frameAction {
			if w.CursorMode == event.CursorDisabled {
				b.enableCursor(w)
			} else if b.capturedCursorWindow == w {
				b.releaseCursor()
			}
		}

	case wmExitSizeMove, wmExitMenuLoop:
		if !s.frameAction && w.CursorMode == event.CursorDisabled {
			b.disableCursor(w)
		}

	case wmSizing:
		if w.Numer != platform.DontCare && w.Denom != platform.DontCare {
			area := (*rect)(unsafe.Pointer(lParam))
			*area = b.aspectRect(w, int(wParam), *area)
			return 1
		}

	case wmGetMinMaxInfo:
		if w.Monitor == 0 {
			b.fillMinMaxInfo(w, (*minMaxInfo)(unsafe.Pointer(lParam)))
			return 0
		}

	case wmNCActivate, wmNCPaint:
		// Undecorated windows must not get a frame painted by the system.
		if !w.Decorated {
			return 1
		}

	case wmDwmCompositionChanged, wmDwmColorizationColorChanged:
		if s.transparent {
			b.updateFramebufferTransparency(w)
		}
		return 0

	case wmGetDpiScaledSize:
		if !s.scaleToMonitor && b.isWindows10Version1703OrGreater() {
			// Keep the content area size constant across the DPI change.
			var source, target rect
			adjustWindowRect(&source, windowStyle(w), windowExStyle(w), getDpiForWindow(hwnd))
			adjustWindowRect(&target, windowStyle(w), windowExStyle(w), uint32(loword(wParam)))
			size := (*point)(unsafe.Pointer(lParam))
			size.X += target.width() - source.width()
			size.Y += target.height() - source.height()
			return 1
		}
	}

	wasIconified := s.decode.iconified
	m := message{hwnd: hwnd, msg: code, wParam: wParam, lParam: lParam, time: getMessageTime()}
	d := decodeMessage(&s.decode, b.keys, m, b.decodeEnv(w))

	if d.applyDPIRect && (s.scaleToMonitor || b.isWindows10Version1703OrGreater()) {
		suggested := (*rect)(unsafe.Pointer(lParam))
		setWindowPos(hwnd, hwndTop, suggested.Left, suggested.Top,
			suggested.width(), suggested.height(), swpNoActivate|swpNoZOrder)
	}
	if d.trackMouse {
		trackMouseLeave(hwnd)
	}
	if d.capture {
		setCapture(hwnd)
	}

	deliver(b.host, w, d)
	if w.Destroyed() {
		if d.handled {
			return d.result
		}
		return defWindowProc(hwnd, code, wParam, lParam)
	}

	if d.releaseCapture {
		releaseCapture()
	}
	if d.updateCursor {
		b.updateCursorImage(w)
	}
	if d.rebuildKeyNames {
		b.updateKeyNames()
	}
	if d.drop {
		b.handleDrop(w, wParam)
	}

	switch code {
	case wmSetFocus:
		if !s.frameAction && w.CursorMode == event.CursorDisabled {
			b.disableCursor(w)
		}
	case wmSize:
		if b.capturedCursorWindow == w {
			b.captureCursor(w)
		}
		if w.Monitor != 0 && wasIconified != s.decode.iconified {
			if s.decode.iconified {
				b.releaseMonitor(w)
			} else {
				b.acquireMonitor(w)
				b.fitToMonitor(w)
			}
		}
	case wmMove:
		if b.capturedCursorWindow == w {
			b.captureCursor(w)
		}
	}

	if d.handled {
		return d.result
	}
	return defWindowProc(hwnd, code, wParam, lParam)
}

func (b *Backend) helperProc(hwnd uintptr, code uint32, wParam, lParam uintptr) uintptr {
	a := decodeHelperMessage(message{hwnd: hwnd, msg: code, wParam: wParam, lParam: lParam})
	switch {
	case a.pollMonitors:
		b.pollMonitors()
	case a.pollJoysticks:
		if b.joysticksReady {
			if wParam == dbtArrival {
				b.detectJoystickConnection()
			} else {
				b.detectJoystickDisconnection()
			}
		}
	case a.pollKeyboards:
		b.pollKeyboards()
	}
	return defWindowProc(hwnd, code, wParam, lParam)
}

func (b *Backend) decodeEnv(w *platform.Window) decodeEnv {
	return decodeEnv{
		window:         w.ID,
		mods:           modsFromKeyState(getKeyState),
		cursorDisabled: w.CursorMode == event.CursorDisabled,
		// Motion of a disabled cursor is only reported while this window
		// holds it, and then through WM_INPUT when raw motion is on.
		rawMotion:   w.RawMouseMotion || b.disabledCursorWindow != w,
		virtualX:    w.VirtualCursorX,
		virtualY:    w.VirtualCursorY,
		fullscreen:  w.Monitor != 0,
		buttonsHeld: w.ButtonsHeld(),
		next: func() (message, bool) {
			var m msg
			if !peekMessage(&m, 0, false) {
				return message{}, false
			}
			return fromMsg(m), true
		},
		vkScancode: func(vk uintptr) int {
			return int(mapVirtualKey(uint32(vk), mapvkVkToVsc))
		},
	}
}

func fromMsg(m msg) message {
	return message{hwnd: m.Hwnd, msg: m.Message, wParam: m.WParam, lParam: m.LParam, time: m.Time}
}

func (b *Backend) aspectRect(w *platform.Window, edge int, area rect) rect {
	var frame rect
	b.adjustRect(b.handle(w), &frame, windowStyle(w), windowExStyle(w))
	return applyAspectRatio(edge, area, frame, w.Numer, w.Denom)
}

func (b *Backend) fillMinMaxInfo(w *platform.Window, mmi *minMaxInfo) {
	hwnd := b.handle(w)
	var frame rect
	b.adjustRect(hwnd, &frame, windowStyle(w), windowExStyle(w))
	l := sizeLimits(frame, w.MinWidth, w.MinHeight, w.MaxWidth, w.MaxHeight)
	if l.setMin {
		mmi.PtMinTrackSize = point{l.minX, l.minY}
	}
	if l.setMax {
		mmi.PtMaxTrackSize = point{l.maxX, l.maxY}
	}
	if !w.Decorated {
		// Maximized undecorated windows cover the work area, not the
		// whole monitor.
		mi, ok := getMonitorInfo(monitorFromWindow(hwnd, monitorDefaultToNearest))
		if ok {
			mmi.PtMaxPosition = point{mi.WorkArea.Left - mi.Monitor.Left, mi.WorkArea.Top - mi.Monitor.Top}
			mmi.PtMaxSize = point{mi.WorkArea.width(), mi.WorkArea.height()}
		}
	}
}

func (b *Backend) handleDrop(w *platform.Window, drop uintptr) {
	paths := dragQueryFiles(drop)
	p := dragQueryPoint(drop)
	b.host.InputCursorPos(w, float64(p.X), float64(p.Y))
	if !w.Destroyed() && len(paths) > 0 {
		b.host.InputDrop(w, paths)
	}
	dragFinish(drop)
}

func (b *Backend) CreateWindow(w *platform.Window, wndcfg platform.WindowConfig, ctxcfg platform.ContextConfig, fbcfg platform.FramebufferConfig) error {
	s := &windowState{
		transparent:    fbcfg.Transparent,
		scaleToMonitor: wndcfg.ScaleToMonitor,
	}
	w.Platform = s

	if err := b.createNativeWindow(w, s, wndcfg); err != nil {
		return err
	}
	if s.transparent {
		b.updateFramebufferTransparency(w)
	}

	gc, err := platform.CreateGraphicsContext(b.host, b.nativeSurface(w), ctxcfg, fbcfg)
	if err != nil {
		return err
	}
	w.Graphics = gc

	if w.Monitor != 0 {
		showWindow(s.hwnd, swShowNA)
		_ = b.FocusWindow(w)
		b.acquireMonitor(w)
		b.fitToMonitor(w)
	}
	return nil
}

func (b *Backend) createNativeWindow(w *platform.Window, s *windowState, wndcfg platform.WindowConfig) error {
	style, exStyle := windowStyle(w), windowExStyle(w)

	var x, y, width, height int32
	if m := b.host.Monitor(w.Monitor); m != nil {
		mi, _ := getMonitorInfo(monitorOf(m).handle)
		// The window is resized to the video mode once it is acquired.
		x, y = mi.Monitor.Left, mi.Monitor.Top
		width, height = mi.Monitor.width(), mi.Monitor.height()
	} else {
		r := rect{Right: int32(wndcfg.Width), Bottom: int32(wndcfg.Height)}
		s.decode.maximized = wndcfg.Maximized
		if wndcfg.Maximized {
			style |= wsMaximize
		}
		adjustWindowRectEx(&r, style, exStyle)
		x, y = cwUseDefault, cwUseDefault
		width, height = r.width(), r.height()
	}

	b.creating = w
	hwnd, err := createWindowEx(exStyle, b.class, wndcfg.Title, style, x, y, width, height, 0, b.instance)
	b.creating = nil
	if err != nil {
		return b.reportLastError(platform.PlatformError, err, "failed to create window")
	}
	s.hwnd = hwnd
	b.byHandle[hwnd] = w

	// Let drag and drop through from less privileged processes.
	allowMessage(hwnd, wmDropFiles)
	allowMessage(hwnd, wmCopyData)
	allowMessage(hwnd, wmCopyGlobalData)

	if w.Monitor == 0 {
		r := rect{Right: int32(wndcfg.Width), Bottom: int32(wndcfg.Height)}
		hmon := monitorFromWindow(hwnd, monitorDefaultToNearest)
		if wndcfg.ScaleToMonitor {
			if xscale, yscale, ok := b.hmonitorContentScale(hmon); ok && xscale > 0 && yscale > 0 {
				r.Right = int32(float32(r.Right) * xscale)
				r.Bottom = int32(float32(r.Bottom) * yscale)
			}
		}
		b.adjustRect(hwnd, &r, style, exStyle)
		setWindowPos(hwnd, hwndTop, 0, 0, r.width(), r.height(), swpNoMove|swpNoZOrder|swpNoActivate)

		if wndcfg.Maximized && !wndcfg.Decorated {
			if mi, ok := getMonitorInfo(hmon); ok {
				wa := mi.WorkArea
				setWindowPos(hwnd, hwndTop, wa.Left, wa.Top, wa.width(), wa.height(), swpNoActivate|swpNoZOrder)
			}
		}
	}

	dragAcceptFiles(hwnd, true)
	s.decode.width, s.decode.height = b.WindowSize(w)
	return nil
}

func (b *Backend) DestroyWindow(w *platform.Window) {
	s := windowOf(w)
	if s == nil {
		return
	}
	if w.Monitor != 0 {
		b.releaseMonitor(w)
	}
	if b.disabledCursorWindow == w {
		b.enableCursor(w)
	}
	if b.capturedCursorWindow == w {
		b.releaseCursor()
	}
	if s.hwnd != 0 {
		// Unmapped first so late messages fall through to DefWindowProcW.
		delete(b.byHandle, s.hwnd)
		destroyWindow(s.hwnd)
		s.hwnd = 0
	}
	if s.bigIcon != 0 {
		destroyIcon(s.bigIcon)
		s.bigIcon = 0
	}
	if s.smallIcon != 0 {
		destroyIcon(s.smallIcon)
		s.smallIcon = 0
	}
}

func (b *Backend) SetWindowTitle(w *platform.Window, title string) error {
	if err := setWindowText(b.handle(w), title); err != nil {
		return b.reportLastError(platform.PlatformError, err, "failed to set window title")
	}
	return nil
}

func (b *Backend) SetWindowIcon(w *platform.Window, images []platform.Image) error {
	s := windowOf(w)
	var big, small uintptr
	if len(images) > 0 {
		bigImage := chooseImage(images, getSystemMetrics(smCxIcon), getSystemMetrics(smCyIcon))
		smallImage := chooseImage(images, getSystemMetrics(smCxSmIcon), getSystemMetrics(smCySmIcon))
		var err error
		if big, err = b.createIcon(bigImage, 0, 0, true); err != nil {
			return err
		}
		if small, err = b.createIcon(smallImage, 0, 0, true); err != nil {
			destroyIcon(big)
			return err
		}
	} else {
		big = loadSharedIcon(idiApplication)
		small = big
	}

	sendMessage(s.hwnd, wmSetIcon, iconBig, big)
	sendMessage(s.hwnd, wmSetIcon, iconSmall, small)

	if s.bigIcon != 0 {
		destroyIcon(s.bigIcon)
	}
	if s.smallIcon != 0 {
		destroyIcon(s.smallIcon)
	}
	s.bigIcon, s.smallIcon = 0, 0
	if len(images) > 0 {
		s.bigIcon, s.smallIcon = big, small
	}
	return nil
}

// createIcon builds an icon or cursor from straight RGBA pixels.
func (b *Backend) createIcon(img platform.Image, xhot, yhot int, icon bool) (uintptr, error) {
	header := bitmapV5Header{
		Width:       int32(img.Width),
		Height:      -int32(img.Height),
		Planes:      1,
		BitCount:    32,
		Compression: biBitfields,
		RedMask:     0x00FF0000,
		GreenMask:   0x0000FF00,
		BlueMask:    0x000000FF,
		AlphaMask:   0xFF000000,
	}
	header.Size = uint32(unsafe.Sizeof(header))

	dc := getDC(0)
	color, bits, err := createDIBSection(dc, &header)
	releaseDC(0, dc)
	if err != nil {
		return 0, b.reportLastError(platform.PlatformError, err, "failed to create RGBA bitmap")
	}
	defer deleteObject(color)

	mask, err := createBitmap(int32(img.Width), int32(img.Height))
	if err != nil {
		return 0, b.reportLastError(platform.PlatformError, err, "failed to create mask bitmap")
	}
	defer deleteObject(mask)

	px := bgraPixels(img)
	copy(unsafe.Slice((*byte)(bits), len(px)), px)

	info := iconInfo{
		XHotspot: uint32(xhot),
		YHotspot: uint32(yhot),
		HbmMask:  mask,
		HbmColor: color,
	}
	if icon {
		info.FIcon = 1
	}
	h, err := createIconIndirect(&info)
	if err != nil {
		if icon {
			return 0, b.reportLastError(platform.PlatformError, err, "failed to create icon")
		}
		return 0, b.reportLastError(platform.PlatformError, err, "failed to create cursor")
	}
	return h, nil
}

func (b *Backend) WindowPos(w *platform.Window) (int, int, error) {
	var p point
	clientToScreen(b.handle(w), &p)
	return int(p.X), int(p.Y), nil
}

func (b *Backend) SetWindowPos(w *platform.Window, x, y int) error {
	hwnd := b.handle(w)
	r := rect{Left: int32(x), Top: int32(y), Right: int32(x), Bottom: int32(y)}
	b.adjustRect(hwnd, &r, windowStyle(w), windowExStyle(w))
	setWindowPos(hwnd, 0, r.Left, r.Top, 0, 0, swpNoActivate|swpNoZOrder|swpNoSize)
	return nil
}

func (b *Backend) WindowSize(w *platform.Window) (int, int) {
	r := getClientRect(b.handle(w))
	return int(r.Right), int(r.Bottom)
}

func (b *Backend) SetWindowSize(w *platform.Window, width, height int) error {
	if w.Monitor != 0 {
		if m := b.host.Monitor(w.Monitor); m != nil && m.Window == w.ID {
			b.acquireMonitor(w)
			b.fitToMonitor(w)
		}
		return nil
	}
	hwnd := b.handle(w)
	r := rect{Right: int32(width), Bottom: int32(height)}
	b.adjustRect(hwnd, &r, windowStyle(w), windowExStyle(w))
	setWindowPos(hwnd, hwndTop, 0, 0, r.width(), r.height(),
		swpNoActivate|swpNoOwnerZOrder|swpNoMove|swpNoZOrder)
	return nil
}

// resend makes the system re-query WM_GETMINMAXINFO and WM_SIZING.
func (b *Backend) resend(w *platform.Window, area rect) {
	setWindowPos(b.handle(w), 0, area.Left, area.Top, area.width(), area.height(), swpNoActivate|swpNoZOrder)
}

func (b *Backend) SetWindowSizeLimits(w *platform.Window, minWidth, minHeight, maxWidth, maxHeight int) error {
	if (minWidth == platform.DontCare || minHeight == platform.DontCare) &&
		(maxWidth == platform.DontCare || maxHeight == platform.DontCare) {
		return nil
	}
	b.resend(w, getWindowRect(b.handle(w)))
	return nil
}

func (b *Backend) SetWindowAspectRatio(w *platform.Window, numer, denom int) error {
	if numer == platform.DontCare || denom == platform.DontCare {
		return nil
	}
	b.resend(w, b.aspectRect(w, wmszBottomRight, getWindowRect(b.handle(w))))
	return nil
}

func (b *Backend) FramebufferSize(w *platform.Window) (int, int) {
	return b.WindowSize(w)
}

func (b *Backend) WindowFrameSize(w *platform.Window) (left, top, right, bottom int) {
	width, height := b.WindowSize(w)
	r := rect{Right: int32(width), Bottom: int32(height)}
	b.adjustRect(b.handle(w), &r, windowStyle(w), windowExStyle(w))
	return int(-r.Left), int(-r.Top), int(r.Right) - width, int(r.Bottom) - height
}

func (b *Backend) WindowContentScale(w *platform.Window) (float32, float32) {
	xscale, yscale, _ := b.hmonitorContentScale(monitorFromWindow(b.handle(w), monitorDefaultToNearest))
	return xscale, yscale
}

func (b *Backend) IconifyWindow(w *platform.Window) error {
	showWindow(b.handle(w), swMinimize)
	return nil
}

func (b *Backend) RestoreWindow(w *platform.Window) error {
	showWindow(b.handle(w), swRestore)
	return nil
}

func (b *Backend) MaximizeWindow(w *platform.Window) error {
	hwnd := b.handle(w)
	if isWindowVisible(hwnd) {
		showWindow(hwnd, swMaximize)
		return nil
	}
	b.maximizeHidden(w)
	return nil
}

// maximizeHidden gives a hidden window its maximized geometry without
// showing it.
func (b *Backend) maximizeHidden(w *platform.Window) {
	hwnd := b.handle(w)
	mi, ok := getMonitorInfo(monitorFromWindow(hwnd, monitorDefaultToNearest))
	if !ok {
		return
	}
	r := mi.WorkArea
	if w.MaxWidth != platform.DontCare && w.MaxHeight != platform.DontCare {
		r.Right = min(r.Right, r.Left+int32(w.MaxWidth))
		r.Bottom = min(r.Bottom, r.Top+int32(w.MaxHeight))
	}

	style := getWindowLong(hwnd, gwlStyle) | wsMaximize
	setWindowLong(hwnd, gwlStyle, style)

	if w.Decorated {
		exStyle := getWindowLong(hwnd, gwlExStyle)
		var caption int32
		if b.isWindows10Version1607OrGreater() {
			dpi := getDpiForWindow(hwnd)
			adjustWindowRect(&r, style, exStyle, dpi)
			caption = int32(getSystemMetricsForDpi(smCyCaption, dpi))
		} else {
			adjustWindowRectEx(&r, style, exStyle)
			caption = int32(getSystemMetrics(smCyCaption))
		}
		r.Top += caption
		r.Bottom += caption
		r.Bottom = min(r.Bottom, mi.WorkArea.Bottom)
	}
	setWindowPos(hwnd, hwndTop, r.Left, r.Top, r.width(), r.height(), swpNoActivate|swpNoZOrder|swpFrameChanged)
}

func (b *Backend) ShowWindow(w *platform.Window) error {
	showWindow(b.handle(w), swShowNA)
	return nil
}

func (b *Backend) HideWindow(w *platform.Window) error {
	showWindow(b.handle(w), swHide)
	return nil
}

func (b *Backend) RequestWindowAttention(w *platform.Window) error {
	flashWindow(b.handle(w))
	return nil
}

func (b *Backend) FocusWindow(w *platform.Window) error {
	hwnd := b.handle(w)
	bringWindowToTop(hwnd)
	setForegroundWindow(hwnd)
	setFocus(hwnd)
	return nil
}

func (b *Backend) SetWindowMonitor(w *platform.Window, m *platform.Monitor, x, y, width, height, refreshRate int) error {
	hwnd := b.handle(w)
	if w.Monitor == monitorID(m) {
		if m != nil {
			if m.Window == w.ID {
				b.acquireMonitor(w)
				b.fitToMonitor(w)
			}
			return nil
		}
		r := rect{Left: int32(x), Top: int32(y), Right: int32(x + width), Bottom: int32(y + height)}
		b.adjustRect(hwnd, &r, windowStyle(w), windowExStyle(w))
		setWindowPos(hwnd, hwndTop, r.Left, r.Top, r.width(), r.height(), swpNoCopyBits|swpNoActivate|swpNoZOrder)
		return nil
	}

	if w.Monitor != 0 {
		b.releaseMonitor(w)
	}
	b.host.InputWindowMonitor(w, m)

	if m != nil {
		flags := uint32(swpShowWindow | swpNoActivate | swpNoCopyBits)
		if w.Decorated {
			style := getWindowLong(hwnd, gwlStyle)
			style &^= wsOverlappedWindow
			style |= windowStyle(w)
			setWindowLong(hwnd, gwlStyle, style)
			flags |= swpFrameChanged
		}
		b.acquireMonitor(w)
		if mi, ok := getMonitorInfo(monitorOf(m).handle); ok {
			r := mi.Monitor
			setWindowPos(hwnd, hwndTopmost, r.Left, r.Top, r.width(), r.height(), flags)
		}
		return nil
	}

	r := rect{Left: int32(x), Top: int32(y), Right: int32(x + width), Bottom: int32(y + height)}
	flags := uint32(swpNoActivate | swpNoCopyBits)
	if w.Decorated {
		style := getWindowLong(hwnd, gwlStyle)
		style &^= wsPopup
		style |= windowStyle(w)
		setWindowLong(hwnd, gwlStyle, style)
		flags |= swpFrameChanged
	}
	after := hwndNoTopmost
	if w.Floating {
		after = hwndTopmost
	}
	b.adjustRect(hwnd, &r, windowStyle(w), windowExStyle(w))
	setWindowPos(hwnd, after, r.Left, r.Top, r.width(), r.height(), flags)
	return nil
}

func monitorID(m *platform.Monitor) event.MonitorID {
	if m == nil {
		return 0
	}
	return m.ID
}

func (b *Backend) WindowFocused(w *platform.Window) bool {
	hwnd := b.handle(w)
	return hwnd != 0 && getActiveWindow() == hwnd
}

func (b *Backend) WindowIconified(w *platform.Window) bool { return isIconic(b.handle(w)) }
func (b *Backend) WindowVisible(w *platform.Window) bool   { return isWindowVisible(b.handle(w)) }
func (b *Backend) WindowMaximized(w *platform.Window) bool { return isZoomed(b.handle(w)) }

func (b *Backend) WindowHovered(w *platform.Window) bool {
	return b.cursorInContentArea(w)
}

func (b *Backend) cursorInContentArea(w *platform.Window) bool {
	hwnd := b.handle(w)
	pos := getCursorPos()
	if windowFromPoint(pos) != hwnd {
		return false
	}
	return b.screenClientRect(hwnd).contains(pos)
}

// screenClientRect is the content area in screen coordinates.
func (b *Backend) screenClientRect(hwnd uintptr) rect {
	area := getClientRect(hwnd)
	tl := point{area.Left, area.Top}
	br := point{area.Right, area.Bottom}
	clientToScreen(hwnd, &tl)
	clientToScreen(hwnd, &br)
	return rect{Left: tl.X, Top: tl.Y, Right: br.X, Bottom: br.Y}
}

func (b *Backend) FramebufferTransparent(w *platform.Window) bool {
	s := windowOf(w)
	return s != nil && s.transparent && dwmCompositionEnabled()
}

func (b *Backend) updateFramebufferTransparency(w *platform.Window) {
	if !dwmCompositionEnabled() {
		return
	}
	region := createRectRgn(0, 0, -1, -1)
	bb := dwmBlurBehind{
		Flags:   dwmBBEnable | dwmBBBlurRegion,
		Enable:  1,
		RgnBlur: region,
	}
	dwmEnableBlurBehind(b.handle(w), &bb)
	deleteObject(region)
}

func (b *Backend) WindowOpacity(w *platform.Window) float32 {
	hwnd := b.handle(w)
	if getWindowLong(hwnd, gwlExStyle)&wsExLayered == 0 {
		return 1
	}
	if _, alpha, flags, ok := getLayeredWindowAttributes(hwnd); ok && flags&lwaAlpha != 0 {
		return float32(alpha) / 255
	}
	return 1
}

func (b *Backend) SetWindowResizable(w *platform.Window, enabled bool) error {
	b.updateWindowStyles(w)
	return nil
}

func (b *Backend) SetWindowDecorated(w *platform.Window, enabled bool) error {
	b.updateWindowStyles(w)
	return nil
}

// updateWindowStyles reapplies the style bits while keeping the content
// area where it is.
func (b *Backend) updateWindowStyles(w *platform.Window) {
	hwnd := b.handle(w)
	style := getWindowLong(hwnd, gwlStyle)
	style &^= wsOverlappedWindow | wsPopup
	style |= windowStyle(w)

	r := getClientRect(hwnd)
	b.adjustRect(hwnd, &r, style, windowExStyle(w))
	tl := point{r.Left, r.Top}
	br := point{r.Right, r.Bottom}
	clientToScreen(hwnd, &tl)
	clientToScreen(hwnd, &br)

	setWindowLong(hwnd, gwlStyle, style)
	setWindowPos(hwnd, hwndTop, tl.X, tl.Y, br.X-tl.X, br.Y-tl.Y, swpFrameChanged|swpNoActivate|swpNoZOrder)
}

func (b *Backend) SetWindowFloating(w *platform.Window, enabled bool) error {
	after := hwndNoTopmost
	if enabled {
		after = hwndTopmost
	}
	setWindowPos(b.handle(w), after, 0, 0, 0, 0, swpNoActivate|swpNoMove|swpNoSize)
	return nil
}

func (b *Backend) SetWindowOpacity(w *platform.Window, opacity float32) error {
	hwnd := b.handle(w)
	exStyle := getWindowLong(hwnd, gwlExStyle)
	switch {
	case opacity < 1 || exStyle&wsExTransparent != 0:
		setWindowLong(hwnd, gwlExStyle, exStyle|wsExLayered)
		setLayeredWindowAttributes(hwnd, 0, uint8(255*opacity), lwaAlpha)
	default:
		setWindowLong(hwnd, gwlExStyle, exStyle&^wsExLayered)
	}
	return nil
}

func (b *Backend) SetWindowMousePassthrough(w *platform.Window, enabled bool) error {
	hwnd := b.handle(w)
	exStyle := getWindowLong(hwnd, gwlExStyle)
	var (
		key   uint32
		alpha uint8
		flags uint32
	)
	if exStyle&wsExLayered != 0 {
		key, alpha, flags, _ = getLayeredWindowAttributes(hwnd)
	}
	if enabled {
		exStyle |= wsExTransparent | wsExLayered
	} else {
		exStyle &^= wsExTransparent
		// An alpha blended window keeps the layered style for its opacity.
		if exStyle&wsExLayered != 0 && flags&lwaAlpha == 0 {
			exStyle &^= wsExLayered
		}
	}
	setWindowLong(hwnd, gwlExStyle, exStyle)
	if enabled {
		setLayeredWindowAttributes(hwnd, key, alpha, flags)
	}
	return nil
}
