package win32

import (
	"reflect"
	"testing"

	"github.com/1broseidon/hatch/internal/event"
)

const testWindow event.WindowID = 7

// keyParam builds the lParam of a key message from its scancode flags.
func keyParam(flags uint16) uintptr {
	return uintptr(flags) << 16
}

func pointParam(x, y int16) uintptr {
	return uintptr(uint16(x)) | uintptr(uint16(y))<<16
}

func env() decodeEnv {
	return decodeEnv{window: testWindow}
}

func decodeOne(t *testing.T, s *decodeState, m message, e decodeEnv) decoded {
	t.Helper()
	return decodeMessage(s, newKeyTables(), m, e)
}

func assertEvents(t *testing.T, got []event.Event, want ...event.Event) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %#v\nwant %#v", got, want)
	}
}

func TestDecodeMessage_SurrogatePairJoinsIntoOneChar(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmChar, wParam: 0xD83D}, env())
	assertEvents(t, d.events)
	if !d.handled {
		t.Fatalf("high surrogate should be consumed")
	}

	d = decodeOne(t, &s, message{msg: wmChar, wParam: 0xDE00}, env())
	assertEvents(t, d.events, event.Char{Window: testWindow, Rune: 0x1F600})
	if s.highSurrogate != 0 {
		t.Fatalf("high surrogate not cleared")
	}
}

func TestDecodeMessage_LoneLowSurrogateIsDropped(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmChar, wParam: 0xDC00}, env())
	assertEvents(t, d.events)
}

func TestDecodeMessage_SysCharReachesDefWindowProc(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmSysChar, wParam: 'x'}, env())
	assertEvents(t, d.events, event.Char{Window: testWindow, Rune: 'x'})
	if d.handled || !d.sysChar {
		t.Fatalf("handled=%v sysChar=%v, want unhandled system char", d.handled, d.sysChar)
	}
}

func TestDecodeMessage_UniCharProbe(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmUniChar, wParam: unicodeNoChar}, env())
	if !d.handled || d.result != 1 {
		t.Fatalf("handled=%v result=%d, want TRUE", d.handled, d.result)
	}
	assertEvents(t, d.events)
}

func TestDecodeMessage_KeyPressAndRelease(t *testing.T) {
	var s decodeState
	e := env()
	e.mods = event.ModShift

	d := decodeOne(t, &s, message{msg: wmKeyDown, wParam: 'A', lParam: keyParam(0x1E)}, e)
	assertEvents(t, d.events, event.Key{Window: testWindow, Key: event.KeyA, Scancode: 0x1E, Action: event.Press, Mods: event.ModShift})
	if d.handled {
		t.Fatalf("key messages continue to DefWindowProc")
	}

	d = decodeOne(t, &s, message{msg: wmKeyUp, wParam: 'A', lParam: keyParam(0x1E | kfUp)}, e)
	assertEvents(t, d.events, event.Key{Window: testWindow, Key: event.KeyA, Scancode: 0x1E, Action: event.Release, Mods: event.ModShift})
}

func TestDecodeMessage_ExtendedKeys(t *testing.T) {
	cases := []struct {
		flags uint16
		key   event.KeyCode
	}{
		{0x1D | kfExtended, event.KeyRightControl},
		{0x1D, event.KeyLeftControl},
		{0x1C | kfExtended, event.KeyKPEnter},
		{0x1C, event.KeyEnter},
		{0x48 | kfExtended, event.KeyUp},
		{0x48, event.KeyKP8},
	}
	for _, tc := range cases {
		var s decodeState
		d := decodeOne(t, &s, message{msg: wmKeyDown, wParam: 0x01, lParam: keyParam(tc.flags)}, env())
		if len(d.events) != 1 {
			t.Fatalf("flags %#x: got %d events", tc.flags, len(d.events))
		}
		if got := d.events[0].(event.Key).Key; got != tc.key {
			t.Fatalf("flags %#x: key = %v want %v", tc.flags, got, tc.key)
		}
	}
}

func TestDecodeMessage_MissingScancodeUsesVirtualKey(t *testing.T) {
	var s decodeState
	e := env()
	e.vkScancode = func(vk uintptr) int {
		if vk != 'B' {
			t.Fatalf("mapped vk %#x", vk)
		}
		return 0x30
	}
	d := decodeOne(t, &s, message{msg: wmKeyDown, wParam: 'B'}, e)
	assertEvents(t, d.events, event.Key{Window: testWindow, Key: event.KeyB, Scancode: 0x30, Action: event.Press})
}

func TestDecodeMessage_PauseUsesItsOwnScancode(t *testing.T) {
	var s decodeState
	keys := newKeyTables()
	d := decodeMessage(&s, keys, message{msg: wmKeyDown, wParam: vkPause, lParam: keyParam(0x45)}, env())
	assertEvents(t, d.events, event.Key{Window: testWindow, Key: event.KeyPause, Scancode: keys.scancode(event.KeyPause), Action: event.Press})
}

func TestDecodeMessage_AltGrDropsFakeControl(t *testing.T) {
	var s decodeState
	e := env()
	e.next = func() (message, bool) {
		return message{msg: wmKeyDown, wParam: vkMenu, lParam: keyParam(0x38 | kfExtended), time: 42}, true
	}
	d := decodeOne(t, &s, message{msg: wmKeyDown, wParam: vkControl, lParam: keyParam(0x1D), time: 42}, e)
	assertEvents(t, d.events)

	// A real Control press is followed by something else.
	e.next = func() (message, bool) {
		return message{msg: wmKeyDown, wParam: vkMenu, lParam: keyParam(0x38 | kfExtended), time: 43}, true
	}
	d = decodeOne(t, &s, message{msg: wmKeyDown, wParam: vkControl, lParam: keyParam(0x1D), time: 42}, e)
	assertEvents(t, d.events, event.Key{Window: testWindow, Key: event.KeyLeftControl, Scancode: 0x1D, Action: event.Press})
}

func TestDecodeMessage_ShiftReleaseReleasesBoth(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmKeyUp, wParam: vkShift, lParam: keyParam(0x2A | kfUp)}, env())
	assertEvents(t, d.events,
		event.Key{Window: testWindow, Key: event.KeyLeftShift, Scancode: 0x2A, Action: event.Release},
		event.Key{Window: testWindow, Key: event.KeyRightShift, Scancode: 0x2A, Action: event.Release},
	)
}

func TestDecodeMessage_PrintScreenSynthesizesPress(t *testing.T) {
	var s decodeState
	sc := 0x37 | kfExtended
	d := decodeOne(t, &s, message{msg: wmKeyUp, wParam: vkSnapshot, lParam: keyParam(uint16(sc) | kfUp)}, env())
	assertEvents(t, d.events,
		event.Key{Window: testWindow, Key: event.KeyPrintScreen, Scancode: sc, Action: event.Press},
		event.Key{Window: testWindow, Key: event.KeyPrintScreen, Scancode: sc, Action: event.Release},
	)
}

func TestDecodeMessage_AltPrintScreen(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmSysKeyDown, wParam: 0x01, lParam: keyParam(0x54)}, env())
	assertEvents(t, d.events, event.Key{Window: testWindow, Key: event.KeyPrintScreen, Scancode: 0x137, Action: event.Press})
}

func TestDecodeMessage_ProcessKeyIsIgnored(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmKeyDown, wParam: vkProcessKey, lParam: keyParam(0x1E)}, env())
	assertEvents(t, d.events)
}

func TestDecodeMessage_MouseMoveTracksEnter(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmMouseMove, lParam: pointParam(10, 20)}, env())
	assertEvents(t, d.events,
		event.CursorEnter{Window: testWindow, Entered: true},
		event.CursorPos{Window: testWindow, X: 10, Y: 20},
	)
	if !d.trackMouse {
		t.Fatalf("first move should start tracking")
	}

	d = decodeOne(t, &s, message{msg: wmMouseMove, lParam: pointParam(-5, 21)}, env())
	assertEvents(t, d.events, event.CursorPos{Window: testWindow, X: -5, Y: 21})
	if d.trackMouse {
		t.Fatalf("tracking requested twice")
	}

	d = decodeOne(t, &s, message{msg: wmMouseLeave}, env())
	assertEvents(t, d.events, event.CursorEnter{Window: testWindow, Entered: false})
	if s.tracked {
		t.Fatalf("leave should reset tracking")
	}
}

func TestDecodeMessage_DisabledCursorReportsVirtualMotion(t *testing.T) {
	s := decodeState{tracked: true, lastX: 100, lastY: 100}
	e := env()
	e.cursorDisabled = true
	e.virtualX, e.virtualY = 500, 500

	d := decodeOne(t, &s, message{msg: wmMouseMove, lParam: pointParam(103, 96)}, e)
	assertEvents(t, d.events, event.CursorPos{Window: testWindow, X: 503, Y: 496})

	e.rawMotion = true
	d = decodeOne(t, &s, message{msg: wmMouseMove, lParam: pointParam(110, 90)}, e)
	assertEvents(t, d.events)
	if s.lastX != 110 || s.lastY != 90 {
		t.Fatalf("last position = %d,%d", s.lastX, s.lastY)
	}
}

func TestDecodeMessage_ButtonsHoldCapture(t *testing.T) {
	var s decodeState
	e := env()

	d := decodeOne(t, &s, message{msg: wmLButtonDown}, e)
	if !d.capture || d.releaseCapture {
		t.Fatalf("first press should capture")
	}
	assertEvents(t, d.events, event.MouseButton{Window: testWindow, Button: event.ButtonLeft, Action: event.Press})

	e.buttonsHeld = 1
	d = decodeOne(t, &s, message{msg: wmRButtonDown}, e)
	if d.capture {
		t.Fatalf("second press should not capture again")
	}

	e.buttonsHeld = 2
	d = decodeOne(t, &s, message{msg: wmLButtonUp}, e)
	if d.releaseCapture {
		t.Fatalf("capture released while a button is still down")
	}

	e.buttonsHeld = 1
	d = decodeOne(t, &s, message{msg: wmRButtonUp}, e)
	if !d.releaseCapture {
		t.Fatalf("last release should drop the capture")
	}
}

func TestDecodeMessage_XButtons(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmXButtonDown, wParam: 2 << 16}, env())
	assertEvents(t, d.events, event.MouseButton{Window: testWindow, Button: event.Button5, Action: event.Press})
	if d.result != 1 {
		t.Fatalf("XBUTTON messages return TRUE, got %d", d.result)
	}
	d = decodeOne(t, &s, message{msg: wmXButtonUp, wParam: 1 << 16}, env())
	assertEvents(t, d.events, event.MouseButton{Window: testWindow, Button: event.Button4, Action: event.Release})
}

func TestDecodeMessage_Wheel(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmMouseWheel, wParam: uintptr(uint16(240)) << 16}, env())
	assertEvents(t, d.events, event.Scroll{Window: testWindow, YOffset: 2})

	neg := int16(-120)
	d = decodeOne(t, &s, message{msg: wmMouseHWheel, wParam: uintptr(uint16(neg)) << 16}, env())
	assertEvents(t, d.events, event.Scroll{Window: testWindow, XOffset: 1})
}

func TestDecodeMessage_SizeTransitions(t *testing.T) {
	s := decodeState{width: 640, height: 480}

	d := decodeOne(t, &s, message{msg: wmSize, wParam: sizeMaximized, lParam: pointParam(800, 600)}, env())
	assertEvents(t, d.events,
		event.WindowMaximize{Window: testWindow, Maximized: true},
		event.FramebufferSize{Window: testWindow, Width: 800, Height: 600},
		event.WindowSize{Window: testWindow, Width: 800, Height: 600},
	)

	d = decodeOne(t, &s, message{msg: wmSize, wParam: sizeMinimized}, env())
	assertEvents(t, d.events,
		event.WindowIconify{Window: testWindow, Iconified: true},
		event.FramebufferSize{Window: testWindow, Width: 0, Height: 0},
		event.WindowSize{Window: testWindow, Width: 0, Height: 0},
	)
	if !s.maximized {
		t.Fatalf("minimizing a maximized window keeps it maximized")
	}

	d = decodeOne(t, &s, message{msg: wmSize, wParam: sizeRestored, lParam: pointParam(640, 480)}, env())
	assertEvents(t, d.events,
		event.WindowIconify{Window: testWindow, Iconified: false},
		event.WindowMaximize{Window: testWindow, Maximized: false},
		event.FramebufferSize{Window: testWindow, Width: 640, Height: 480},
		event.WindowSize{Window: testWindow, Width: 640, Height: 480},
	)
}

func TestDecodeMessage_DPIChanged(t *testing.T) {
	var s decodeState
	wParam := uintptr(144)<<16 | 120
	d := decodeOne(t, &s, message{msg: wmDPIChanged, wParam: wParam}, env())
	assertEvents(t, d.events, event.ContentScale{Window: testWindow, XScale: 1.5, YScale: 1.25})
	if !d.applyDPIRect {
		t.Fatalf("windowed windows take the suggested rectangle")
	}

	e := env()
	e.fullscreen = true
	d = decodeOne(t, &s, message{msg: wmDPIChanged, wParam: wParam}, e)
	if d.applyDPIRect {
		t.Fatalf("fullscreen windows keep their rectangle")
	}
}

func TestDecodeMessage_ScreenSaverBlockedWhileFullscreen(t *testing.T) {
	var s decodeState
	m := message{msg: wmSysCommand, wParam: scScreenSave}
	if d := decodeOne(t, &s, m, env()); d.handled {
		t.Fatalf("windowed screen saver request should pass through")
	}
	e := env()
	e.fullscreen = true
	if d := decodeOne(t, &s, m, e); !d.handled {
		t.Fatalf("fullscreen screen saver request should be swallowed")
	}
}

func TestDecodeMessage_CloseFocusAndPaint(t *testing.T) {
	var s decodeState
	d := decodeOne(t, &s, message{msg: wmClose}, env())
	assertEvents(t, d.events, event.WindowClose{Window: testWindow})
	if !d.handled {
		t.Fatalf("WM_CLOSE must not reach DefWindowProc")
	}

	d = decodeOne(t, &s, message{msg: wmKillFocus}, env())
	assertEvents(t, d.events, event.WindowFocus{Window: testWindow, Focused: false})

	d = decodeOne(t, &s, message{msg: wmPaint}, env())
	assertEvents(t, d.events, event.WindowRefresh{Window: testWindow})
	if d.handled {
		t.Fatalf("WM_PAINT must be validated by DefWindowProc")
	}
}

func TestDecodeMessage_NativeSideEffects(t *testing.T) {
	var s decodeState
	if d := decodeOne(t, &s, message{msg: wmSetCursor, lParam: htClient}, env()); !d.updateCursor || d.result != 1 {
		t.Fatalf("content area WM_SETCURSOR should update the cursor")
	}
	if d := decodeOne(t, &s, message{msg: wmSetCursor, lParam: 2}, env()); d.updateCursor || d.handled {
		t.Fatalf("frame WM_SETCURSOR belongs to DefWindowProc")
	}
	if d := decodeOne(t, &s, message{msg: wmInputLangChange}, env()); !d.rebuildKeyNames {
		t.Fatalf("layout change should rebuild key names")
	}
	if d := decodeOne(t, &s, message{msg: wmDropFiles}, env()); !d.drop {
		t.Fatalf("WM_DROPFILES should request the drop")
	}
}

func TestDecodeHelperMessage(t *testing.T) {
	cases := []struct {
		m    message
		want helperAction
	}{
		{message{msg: wmDisplayChange}, helperAction{pollMonitors: true}},
		{message{msg: wmDeviceChange, wParam: dbtArrival}, helperAction{pollJoysticks: true}},
		{message{msg: wmDeviceChange, wParam: dbtRemoveDone}, helperAction{pollJoysticks: true}},
		{message{msg: wmDeviceChange, wParam: 0x0007}, helperAction{}},
		{message{msg: wmInputDeviceChange}, helperAction{pollKeyboards: true}},
		{message{msg: wmNull}, helperAction{}},
	}
	for _, tc := range cases {
		if got := decodeHelperMessage(tc.m); got != tc.want {
			t.Fatalf("msg %#x wParam %#x: got %+v want %+v", tc.m.msg, tc.m.wParam, got, tc.want)
		}
	}
}

func TestModsFromKeyState(t *testing.T) {
	state := map[int]int16{
		vkShift:   -0x8000,
		vkRWin:    -0x8000,
		vkCapital: 1,
	}
	mods := modsFromKeyState(func(vk int) int16 { return state[vk] })
	want := event.ModShift | event.ModSuper | event.ModCapsLock
	if mods != want {
		t.Fatalf("mods = %v want %v", mods, want)
	}
}

func TestRawMotionAccumulates(t *testing.T) {
	s := decodeState{lastX: 50, lastY: 50}
	e := decodeEnv{window: testWindow, virtualX: 10, virtualY: 10}

	pos := rawMotion(&s, e, false, 3, -4)
	if pos.X != 13 || pos.Y != 6 {
		t.Fatalf("relative motion = %v,%v", pos.X, pos.Y)
	}
	if s.lastX != 53 || s.lastY != 46 {
		t.Fatalf("last = %d,%d", s.lastX, s.lastY)
	}

	pos = rawMotion(&s, e, true, 60, 40)
	if pos.X != 17 || pos.Y != 4 {
		t.Fatalf("absolute motion = %v,%v", pos.X, pos.Y)
	}
}
