// Package win32 implements the Windows backend. Message decoding, key
// tables and the event pump are plain Go and build everywhere; the user32
// calls behind them live in the _windows.go files.
package win32

import (
	"unicode/utf16"

	"github.com/1broseidon/hatch/internal/event"
)

const (
	wmNull              = 0x0000
	wmCreate            = 0x0001
	wmDestroy           = 0x0002
	wmMove              = 0x0003
	wmSize              = 0x0005
	wmSetFocus          = 0x0007
	wmKillFocus         = 0x0008
	wmPaint             = 0x000F
	wmClose             = 0x0010
	wmQuit              = 0x0012
	wmEraseBkgnd        = 0x0014
	wmSetCursor         = 0x0020
	wmGetMinMaxInfo     = 0x0024
	wmInputLangChange   = 0x0051
	wmDisplayChange     = 0x007E
	wmNCCreate          = 0x0081
	wmInputDeviceChange = 0x00FE
	wmInput             = 0x00FF
	wmKeyDown           = 0x0100
	wmKeyUp             = 0x0101
	wmChar              = 0x0102
	wmSysKeyDown        = 0x0104
	wmSysKeyUp          = 0x0105
	wmSysChar           = 0x0106
	wmUniChar           = 0x0109
	wmSysCommand        = 0x0112
	wmMouseMove         = 0x0200
	wmLButtonDown       = 0x0201
	wmLButtonUp         = 0x0202
	wmRButtonDown       = 0x0204
	wmRButtonUp         = 0x0205
	wmMButtonDown       = 0x0207
	wmMButtonUp         = 0x0208
	wmMouseWheel        = 0x020A
	wmXButtonDown       = 0x020B
	wmXButtonUp         = 0x020C
	wmMouseHWheel       = 0x020E
	wmDeviceChange      = 0x0219
	wmEnterSizeMove     = 0x0231
	wmExitSizeMove      = 0x0232
	wmDropFiles         = 0x0233
	wmMouseLeave        = 0x02A3
	wmDPIChanged        = 0x02E0

	sizeRestored  = 0
	sizeMinimized = 1
	sizeMaximized = 2

	scScreenSave    = 0xF140
	scMonitorPower  = 0xF170
	htClient        = 1
	xButton1        = 1
	wheelDelta      = 120
	unicodeNoChar   = 0xFFFF
	kfUp            = 0x8000
	dbtArrival      = 0x8000
	dbtRemoveDone   = 0x8004
	defaultDPI      = 96
	lowSurrogateMin = 0xDC00
	lowSurrogateMax = 0xDFFF
	highSurrogateLo = 0xD800
	highSurrogateHi = 0xDBFF
)

// Virtual key codes.
const (
	vkShift      = 0x10
	vkControl    = 0x11
	vkMenu       = 0x12
	vkPause      = 0x13
	vkCapital    = 0x14
	vkSnapshot   = 0x2C
	vkLWin       = 0x5B
	vkRWin       = 0x5C
	vkNumpad0    = 0x60
	vkMultiply   = 0x6A
	vkAdd        = 0x6B
	vkSubtract   = 0x6D
	vkDecimal    = 0x6E
	vkDivide     = 0x6F
	vkNumLock    = 0x90
	vkLShift     = 0xA0
	vkRShift     = 0xA1
	vkProcessKey = 0xE5
)

// message is one entry of the thread message queue.
type message struct {
	hwnd   uintptr
	msg    uint32
	wParam uintptr
	lParam uintptr
	time   uint32
}

func loword(v uintptr) uint16 { return uint16(v) }
func hiword(v uintptr) uint16 { return uint16(v >> 16) }

// Signed coordinates packed into lParam.
func xParam(v uintptr) int { return int(int16(loword(v))) }
func yParam(v uintptr) int { return int(int16(hiword(v))) }

// modsFromKeyState builds the modifier set from GetKeyState results.
func modsFromKeyState(state func(vk int) int16) event.ModifierKey {
	var mods event.ModifierKey
	down := func(vk int) bool { return uint16(state(vk))&0x8000 != 0 }
	if down(vkShift) {
		mods |= event.ModShift
	}
	if down(vkControl) {
		mods |= event.ModControl
	}
	if down(vkMenu) {
		mods |= event.ModAlt
	}
	if down(vkLWin) || down(vkRWin) {
		mods |= event.ModSuper
	}
	if state(vkCapital)&1 != 0 {
		mods |= event.ModCapsLock
	}
	if state(vkNumLock)&1 != 0 {
		mods |= event.ModNumLock
	}
	return mods
}

// decodeState is the per-window memory the decoder needs across messages.
type decodeState struct {
	highSurrogate uint16
	tracked       bool
	lastX, lastY  int
	width, height int
	iconified     bool
	maximized     bool
}

// decodeEnv is what the decoder may know about the window and the queue
// at the moment a message arrives.
type decodeEnv struct {
	window         event.WindowID
	mods           event.ModifierKey
	cursorDisabled bool
	rawMotion      bool
	virtualX       float64
	virtualY       float64
	fullscreen     bool
	buttonsHeld    int
	// next peeks at the following queued message without removing it.
	next func() (message, bool)
	// vkScancode maps a virtual key when a key message carries no scancode.
	vkScancode func(vk uintptr) int
}

// decoded is the outcome of one message: the unified events it produced
// and the native side effects the window procedure still has to perform.
type decoded struct {
	events []event.Event

	// handled messages return result instead of reaching DefWindowProcW.
	handled bool
	result  uintptr

	sysChar         bool
	trackMouse      bool
	capture         bool
	releaseCapture  bool
	updateCursor    bool
	rebuildKeyNames bool
	applyDPIRect    bool
	drop            bool
}

func (d *decoded) emit(ev event.Event) { d.events = append(d.events, ev) }

func (d *decoded) done(result uintptr) {
	d.handled = true
	d.result = result
}

func decodeMessage(s *decodeState, keys *keyTables, m message, env decodeEnv) decoded {
	var d decoded
	id := env.window
	switch m.msg {
	case wmSetFocus:
		d.emit(event.WindowFocus{Window: id, Focused: true})
		d.done(0)

	case wmKillFocus:
		d.emit(event.WindowFocus{Window: id, Focused: false})
		d.done(0)

	case wmSysCommand:
		switch m.wParam & 0xFFF0 {
		case scScreenSave, scMonitorPower:
			if env.fullscreen {
				d.done(0)
			}
		}

	case wmClose:
		d.emit(event.WindowClose{Window: id})
		d.done(0)

	case wmInputLangChange:
		d.rebuildKeyNames = true

	case wmChar, wmSysChar:
		unit := uint16(m.wParam)
		switch {
		case unit >= highSurrogateLo && unit <= highSurrogateHi:
			s.highSurrogate = unit
		default:
			r := rune(unit)
			if unit >= lowSurrogateMin && unit <= lowSurrogateMax {
				if s.highSurrogate == 0 {
					break
				}
				r = utf16.DecodeRune(rune(s.highSurrogate), rune(unit))
			}
			s.highSurrogate = 0
			d.emit(event.Char{Window: id, Rune: r, Mods: env.mods})
		}
		if m.msg == wmSysChar {
			d.sysChar = true
			break
		}
		d.done(0)

	case wmUniChar:
		if m.wParam == unicodeNoChar {
			// Returning TRUE tells the sender UTF-32 is understood.
			d.done(1)
			break
		}
		d.emit(event.Char{Window: id, Rune: rune(m.wParam), Mods: env.mods})
		d.done(0)

	case wmKeyDown, wmSysKeyDown, wmKeyUp, wmSysKeyUp:
		decodeKey(&d, keys, m, env)

	case wmLButtonDown, wmRButtonDown, wmMButtonDown, wmXButtonDown,
		wmLButtonUp, wmRButtonUp, wmMButtonUp, wmXButtonUp:
		decodeButton(&d, m, env)

	case wmMouseMove:
		x, y := xParam(m.lParam), yParam(m.lParam)
		if !s.tracked {
			s.tracked = true
			d.trackMouse = true
			d.emit(event.CursorEnter{Window: id, Entered: true})
		}
		switch {
		case env.cursorDisabled && env.rawMotion:
		case env.cursorDisabled:
			dx, dy := x-s.lastX, y-s.lastY
			d.emit(event.CursorPos{Window: id, X: env.virtualX + float64(dx), Y: env.virtualY + float64(dy)})
		default:
			d.emit(event.CursorPos{Window: id, X: float64(x), Y: float64(y)})
		}
		s.lastX, s.lastY = x, y
		d.done(0)

	case wmMouseLeave:
		s.tracked = false
		d.emit(event.CursorEnter{Window: id, Entered: false})
		d.done(0)

	case wmMouseWheel:
		delta := float64(int16(hiword(m.wParam))) / wheelDelta
		d.emit(event.Scroll{Window: id, YOffset: delta})
		d.done(0)

	case wmMouseHWheel:
		// Inverted to match the other platforms.
		delta := float64(int16(hiword(m.wParam))) / wheelDelta
		d.emit(event.Scroll{Window: id, XOffset: -delta})
		d.done(0)

	case wmSize:
		width, height := int(loword(m.lParam)), int(hiword(m.lParam))
		iconified := m.wParam == sizeMinimized
		maximized := m.wParam == sizeMaximized || (s.maximized && m.wParam != sizeRestored)
		if iconified != s.iconified {
			d.emit(event.WindowIconify{Window: id, Iconified: iconified})
		}
		if maximized != s.maximized {
			d.emit(event.WindowMaximize{Window: id, Maximized: maximized})
		}
		if width != s.width || height != s.height {
			d.emit(event.FramebufferSize{Window: id, Width: width, Height: height})
			d.emit(event.WindowSize{Window: id, Width: width, Height: height})
		}
		s.width, s.height = width, height
		s.iconified, s.maximized = iconified, maximized
		d.done(0)

	case wmMove:
		d.emit(event.WindowPos{Window: id, X: xParam(m.lParam), Y: yParam(m.lParam)})
		d.done(0)

	case wmPaint:
		d.emit(event.WindowRefresh{Window: id})

	case wmEraseBkgnd:
		d.done(1)

	case wmSetCursor:
		if loword(m.lParam) == htClient {
			d.updateCursor = true
			d.done(1)
		}

	case wmDPIChanged:
		xscale := float32(hiword(m.wParam)) / defaultDPI
		yscale := float32(loword(m.wParam)) / defaultDPI
		d.applyDPIRect = !env.fullscreen
		d.emit(event.ContentScale{Window: id, XScale: xscale, YScale: yscale})

	case wmDropFiles:
		d.drop = true
		d.done(0)
	}
	return d
}

func decodeKey(d *decoded, keys *keyTables, m message, env decodeEnv) {
	flags := hiword(m.lParam)
	action := event.Press
	if flags&kfUp != 0 {
		action = event.Release
	}

	scancode := int(flags & (kfExtended | 0xFF))
	if scancode == 0 && env.vkScancode != nil {
		scancode = env.vkScancode(m.wParam)
	}
	switch scancode {
	case 0x54:
		// Alt+PrtSc reports a scancode of its own.
		scancode = 0x137
	case 0x136:
		// Right Shift under some IMEs.
		scancode = 0x36
	}

	key := keys.key(scancode)
	switch m.wParam {
	case vkPause:
		key = event.KeyPause
		scancode = keys.scancode(event.KeyPause)
	case vkControl:
		if flags&kfExtended == 0 && env.next != nil {
			// AltGr arrives as a fake left Control followed by right Alt
			// with the same timestamp.
			if next, ok := env.next(); ok {
				switch next.msg {
				case wmKeyDown, wmSysKeyDown, wmKeyUp, wmSysKeyUp:
					if next.wParam == vkMenu && hiword(next.lParam)&kfExtended != 0 && next.time == m.time {
						return
					}
				}
			}
		}
	case vkProcessKey:
		// The IME consumes it.
		return
	}

	id := env.window
	switch {
	case action == event.Release && m.wParam == vkShift:
		// With both Shift keys held the first release produces no message,
		// so one release lets go of both.
		d.emit(event.Key{Window: id, Key: event.KeyLeftShift, Scancode: scancode, Action: action, Mods: env.mods})
		d.emit(event.Key{Window: id, Key: event.KeyRightShift, Scancode: scancode, Action: action, Mods: env.mods})
	case m.wParam == vkSnapshot:
		// Print Screen only ever reports its release.
		d.emit(event.Key{Window: id, Key: key, Scancode: scancode, Action: event.Press, Mods: env.mods})
		d.emit(event.Key{Window: id, Key: key, Scancode: scancode, Action: event.Release, Mods: env.mods})
	default:
		d.emit(event.Key{Window: id, Key: key, Scancode: scancode, Action: action, Mods: env.mods})
	}
}

func decodeButton(d *decoded, m message, env decodeEnv) {
	var button event.Button
	switch m.msg {
	case wmLButtonDown, wmLButtonUp:
		button = event.ButtonLeft
	case wmRButtonDown, wmRButtonUp:
		button = event.ButtonRight
	case wmMButtonDown, wmMButtonUp:
		button = event.ButtonMiddle
	default:
		if hiword(m.wParam) == xButton1 {
			button = event.Button4
		} else {
			button = event.Button5
		}
	}

	action := event.Release
	switch m.msg {
	case wmLButtonDown, wmRButtonDown, wmMButtonDown, wmXButtonDown:
		action = event.Press
	}

	// The window holds the mouse capture while any button is down.
	if action == event.Press && env.buttonsHeld == 0 {
		d.capture = true
	}
	if action == event.Release && env.buttonsHeld == 1 {
		d.releaseCapture = true
	}

	d.emit(event.MouseButton{Window: env.window, Button: button, Action: action, Mods: env.mods})
	if m.msg == wmXButtonDown || m.msg == wmXButtonUp {
		d.done(1)
		return
	}
	d.done(0)
}

// rawMotion turns a raw mouse report into a cursor position for a window
// whose cursor is disabled. Absolute reports are converted against the
// previous absolute position.
func rawMotion(s *decodeState, env decodeEnv, absolute bool, x, y int) event.CursorPos {
	dx, dy := x, y
	if absolute {
		dx, dy = x-s.lastX, y-s.lastY
		s.lastX, s.lastY = x, y
	} else {
		s.lastX += dx
		s.lastY += dy
	}
	return event.CursorPos{Window: env.window, X: env.virtualX + float64(dx), Y: env.virtualY + float64(dy)}
}

// helperAction is what a message to the helper window asks for.
type helperAction struct {
	pollMonitors  bool
	pollJoysticks bool
	pollKeyboards bool
}

func decodeHelperMessage(m message) helperAction {
	var a helperAction
	switch m.msg {
	case wmDisplayChange:
		a.pollMonitors = true
	case wmDeviceChange:
		if m.wParam == dbtArrival || m.wParam == dbtRemoveDone {
			a.pollJoysticks = true
		}
	case wmInputDeviceChange:
		a.pollKeyboards = true
	}
	return a
}
