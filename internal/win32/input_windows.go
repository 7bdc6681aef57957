//go:build windows

package win32

import (
	"unsafe"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/atotto/clipboard"
	"golang.org/x/sys/windows"
)

// Shared system cursor and icon resources.
const (
	idcArrow    = 32512
	idcIBeam    = 32513
	idcCross    = 32515
	idcSizeNWSE = 32642
	idcSizeNESW = 32643
	idcSizeWE   = 32644
	idcSizeNS   = 32645
	idcSizeAll  = 32646
	idcNo       = 32648
	idcHand     = 32649

	idiApplication = 32512
)

var standardCursorIDs = map[event.CursorShape]uint16{
	event.ArrowCursor:        idcArrow,
	event.IBeamCursor:        idcIBeam,
	event.CrosshairCursor:    idcCross,
	event.PointingHandCursor: idcHand,
	event.ResizeEWCursor:     idcSizeWE,
	event.ResizeNSCursor:     idcSizeNS,
	event.ResizeNWSECursor:   idcSizeNWSE,
	event.ResizeNESWCursor:   idcSizeNESW,
	event.ResizeAllCursor:    idcSizeAll,
	event.NotAllowedCursor:   idcNo,
}

type cursorState struct {
	handle uintptr
	shared bool
}

func cursorOf(c *platform.Cursor) *cursorState {
	if c == nil {
		return nil
	}
	s, _ := c.Platform.(*cursorState)
	return s
}

func (b *Backend) CursorPos(w *platform.Window) (float64, float64) {
	p := getCursorPos()
	screenToClient(b.handle(w), &p)
	return float64(p.X), float64(p.Y)
}

func (b *Backend) SetCursorPos(w *platform.Window, x, y float64) error {
	s := windowOf(w)
	p := point{X: int32(x), Y: int32(y)}
	// Remembered so the resulting WM_MOUSEMOVE is not reported as motion.
	s.decode.lastX, s.decode.lastY = int(p.X), int(p.Y)
	clientToScreen(s.hwnd, &p)
	setCursorPos(p.X, p.Y)
	return nil
}

func (b *Backend) centerCursor(w *platform.Window) {
	width, height := b.WindowSize(w)
	_ = b.SetCursorPos(w, float64(width)/2, float64(height)/2)
}

func (b *Backend) SetCursorMode(w *platform.Window, mode event.CursorMode) error {
	if b.WindowFocused(w) {
		if mode == event.CursorDisabled {
			b.restoreCursorX, b.restoreCursorY = b.CursorPos(w)
			b.centerCursor(w)
			if w.RawMouseMotion {
				if err := b.enableRawMouseMotion(w); err != nil {
					return err
				}
			}
		} else if b.disabledCursorWindow == w && w.RawMouseMotion {
			b.disableRawMouseMotion()
		}

		if mode == event.CursorDisabled {
			b.captureCursor(w)
			b.disabledCursorWindow = w
		} else {
			b.releaseCursor()
			if b.disabledCursorWindow == w {
				b.disabledCursorWindow = nil
				_ = b.SetCursorPos(w, b.restoreCursorX, b.restoreCursorY)
			}
		}
	}
	if b.cursorInContentArea(w) {
		b.updateCursorImage(w)
	}
	return nil
}

// disableCursor hides the cursor and confines it to w, remembering where it
// was so enableCursor can put it back.
func (b *Backend) disableCursor(w *platform.Window) {
	b.disabledCursorWindow = w
	b.restoreCursorX, b.restoreCursorY = b.CursorPos(w)
	b.updateCursorImage(w)
	b.centerCursor(w)
	b.captureCursor(w)
	if w.RawMouseMotion {
		_ = b.enableRawMouseMotion(w)
	}
}

func (b *Backend) enableCursor(w *platform.Window) {
	if w.RawMouseMotion {
		b.disableRawMouseMotion()
	}
	b.disabledCursorWindow = nil
	b.releaseCursor()
	_ = b.SetCursorPos(w, b.restoreCursorX, b.restoreCursorY)
	b.updateCursorImage(w)
}

// captureCursor clips the cursor to the content area of w.
func (b *Backend) captureCursor(w *platform.Window) {
	area := b.screenClientRect(b.handle(w))
	clipCursor(&area)
	b.capturedCursorWindow = w
}

func (b *Backend) releaseCursor() {
	clipCursor(nil)
	b.capturedCursorWindow = nil
}

func (b *Backend) updateCursorImage(w *platform.Window) {
	if w.CursorMode != event.CursorNormal {
		setCursor(0)
		return
	}
	if s := cursorOf(b.host.Cursor(w.Cursor)); s != nil {
		setCursor(s.handle)
		return
	}
	setCursor(b.arrow)
}

func (b *Backend) enableRawMouseMotion(w *platform.Window) error {
	rid := []rawInputDevice{{UsagePage: 0x01, Usage: 0x02, Target: b.handle(w)}}
	if err := registerRawInputDevices(rid); err != nil {
		return b.reportLastError(platform.PlatformError, err, "failed to register raw input device")
	}
	return nil
}

func (b *Backend) disableRawMouseMotion() {
	rid := []rawInputDevice{{UsagePage: 0x01, Usage: 0x02, Flags: ridevRemove}}
	if err := registerRawInputDevices(rid); err != nil {
		_ = b.reportLastError(platform.PlatformError, err, "failed to remove raw input device")
	}
}

func (b *Backend) SetRawMouseMotion(w *platform.Window, enabled bool) error {
	if b.disabledCursorWindow != w {
		return nil
	}
	if enabled {
		return b.enableRawMouseMotion(w)
	}
	b.disableRawMouseMotion()
	return nil
}

func (b *Backend) RawMouseMotionSupported() bool { return true }
func (b *Backend) KeyboardsSupported() bool      { return true }

// handleRawInput reports raw mouse motion for the window holding the
// disabled cursor.
func (b *Backend) handleRawInput(w *platform.Window, ri uintptr) {
	if b.disabledCursorWindow != w || !w.RawMouseMotion {
		return
	}
	var size uint32
	getRawInputData(ri, nil, &size)
	if int(size) > len(b.rawInput) {
		b.rawInput = make([]byte, size)
	}
	size = uint32(len(b.rawInput))
	if getRawInputData(ri, unsafe.Pointer(&b.rawInput[0]), &size) == ^uint32(0) {
		_ = b.host.ReportError(platform.PlatformError, "Win32: failed to retrieve raw input data")
		return
	}
	data := (*rawInput)(unsafe.Pointer(&b.rawInput[0]))
	if data.Header.Type != rimTypeMouse {
		return
	}

	s := windowOf(w)
	absolute := data.Mouse.Flags&mouseMoveAbsolute != 0
	x, y := int(data.Mouse.LastX), int(data.Mouse.LastY)
	if absolute {
		var origin point
		var width, height int
		if data.Mouse.Flags&mouseVirtualDesktop != 0 {
			origin = point{int32(getSystemMetrics(smXVirtualScreen)), int32(getSystemMetrics(smYVirtualScreen))}
			width, height = getSystemMetrics(smCxVirtualScreen), getSystemMetrics(smCyVirtualScreen)
		} else {
			width, height = getSystemMetrics(smCxScreen), getSystemMetrics(smCyScreen)
		}
		p := point{
			X: origin.X + int32(float32(x)/65535*float32(width)),
			Y: origin.Y + int32(float32(y)/65535*float32(height)),
		}
		screenToClient(s.hwnd, &p)
		x, y = int(p.X), int(p.Y)
	}
	env := decodeEnv{window: w.ID, virtualX: w.VirtualCursorX, virtualY: w.VirtualCursorY}
	pos := rawMotion(&s.decode, env, absolute, x, y)
	b.host.InputCursorPos(w, pos.X, pos.Y)
}

func (b *Backend) CreateCursor(c *platform.Cursor, img platform.Image, xhot, yhot int) error {
	h, err := b.createIcon(img, xhot, yhot, false)
	if err != nil {
		return err
	}
	c.Platform = &cursorState{handle: h}
	return nil
}

func (b *Backend) CreateStandardCursor(c *platform.Cursor, shape event.CursorShape) error {
	id, ok := standardCursorIDs[shape]
	if !ok {
		return b.host.ReportError(platform.InvalidEnum, "Win32: unknown standard cursor %d", int(shape))
	}
	h, err := loadSharedCursor(id)
	if err != nil {
		return b.reportLastError(platform.CursorUnavailable, err, "failed to create standard cursor")
	}
	c.Platform = &cursorState{handle: h, shared: true}
	return nil
}

func (b *Backend) DestroyCursor(c *platform.Cursor) {
	s := cursorOf(c)
	if s == nil {
		return
	}
	if !s.shared {
		destroyIcon(s.handle)
	}
	c.Platform = nil
}

func (b *Backend) SetCursor(w *platform.Window, c *platform.Cursor) error {
	if b.cursorInContentArea(w) {
		b.updateCursorImage(w)
	}
	return nil
}

func (b *Backend) ScancodeName(scancode int) (string, error) {
	if scancode < 0 || scancode > kfExtended|0xFF {
		return "", b.host.ReportError(platform.InvalidValue, "invalid scancode %d", scancode)
	}
	key := b.keys.key(scancode)
	if !key.Valid() {
		return "", nil
	}
	return b.keyNames[key], nil
}

func (b *Backend) KeyScancode(key event.KeyCode) int {
	return b.keys.scancode(key)
}

func (b *Backend) SetClipboardString(s string) error {
	if err := clipboard.WriteAll(s); err != nil {
		return b.host.ReportError(platform.PlatformError, "Win32: failed to set clipboard: %v", err)
	}
	return nil
}

func (b *Backend) ClipboardString() (string, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", b.host.ReportError(platform.FormatUnavailable, "Win32: failed to read clipboard: %v", err)
	}
	return s, nil
}

// pollKeyboards reports keyboards attached or removed since the last poll.
func (b *Backend) pollKeyboards() {
	devices, err := getRawInputDeviceList()
	if err != nil {
		b.host.Logger().Debug("win32 keyboard enumeration failed", "error", err)
		return
	}
	var names []string
	for _, d := range devices {
		if d.Type != rimTypeKeyboard {
			continue
		}
		if name := rawInputDeviceName(d.Device); name != "" {
			names = append(names, name)
		}
	}
	added, removed := diffDevices(b.keyboards, names)
	for _, name := range removed {
		delete(b.keyboards, name)
		b.host.InputKeyboard(false, name)
	}
	for _, name := range added {
		b.keyboards[name] = true
		b.host.InputKeyboard(true, name)
	}
}

// xinputProcs are the entry points of whichever XInput DLL loaded.
type xinputProcs struct {
	dll             string
	getCapabilities *windows.LazyProc
	getState        *windows.LazyProc
}

var xinputDLLs = []string{
	"xinput1_4.dll",
	"xinput1_3.dll",
	"xinput9_1_0.dll",
	"xinput1_2.dll",
	"xinput1_1.dll",
}

func (b *Backend) loadXInput() {
	for _, name := range xinputDLLs {
		dll := windows.NewLazySystemDLL(name)
		if dll.Load() != nil {
			continue
		}
		p := &xinputProcs{
			dll:             name,
			getCapabilities: dll.NewProc("XInputGetCapabilities"),
			getState:        dll.NewProc("XInputGetState"),
		}
		if p.getCapabilities.Find() != nil || p.getState.Find() != nil {
			continue
		}
		b.xinput = p
		return
	}
}

func (p *xinputProcs) capabilities(index int) (xinputCapabilities, bool) {
	var caps xinputCapabilities
	r, _, _ := p.getCapabilities.Call(uintptr(index), xinputFlagGamepad, uintptr(unsafe.Pointer(&caps)))
	return caps, r == 0
}

func (p *xinputProcs) state(index int) (xinputState, bool) {
	var st xinputState
	r, _, _ := p.getState.Call(uintptr(index), uintptr(unsafe.Pointer(&st)))
	return st, r == 0
}

type joystickState struct {
	index int
}

func (b *Backend) InitJoysticks() bool {
	b.joysticksReady = true
	b.detectJoystickConnection()
	return true
}

func (b *Backend) TerminateJoysticks() {
	for _, j := range b.pads {
		if j != nil {
			b.closeJoystick(j)
		}
	}
	b.joysticksReady = false
}

// detectJoystickConnection allocates a joystick for every XInput slot
// that gained a controller.
func (b *Backend) detectJoystickConnection() {
	if b.xinput == nil {
		return
	}
	for index := range xuserMaxCount {
		if b.pads[index] != nil {
			continue
		}
		caps, ok := b.xinput.capabilities(index)
		if !ok {
			continue
		}
		j := b.host.AllocJoystick(xinputDeviceName(caps), xinputGUID(caps), xinputAxes, xinputButtons, xinputHats)
		if j == nil {
			return
		}
		j.Platform = &joystickState{index: index}
		b.pads[index] = j
		b.host.InputJoystick(j, true)
	}
}

func (b *Backend) detectJoystickDisconnection() {
	for _, j := range b.pads {
		if j != nil {
			b.PollJoystick(j, platform.PollPresence)
		}
	}
}

func (b *Backend) closeJoystick(j *platform.Joystick) {
	if s, ok := j.Platform.(*joystickState); ok && b.pads[s.index] == j {
		b.pads[s.index] = nil
	}
	b.host.InputJoystick(j, false)
}

func (b *Backend) PollJoystick(j *platform.Joystick, mode platform.JoystickPollMode) bool {
	s, ok := j.Platform.(*joystickState)
	if !ok || b.xinput == nil {
		return false
	}
	st, ok := b.xinput.state(s.index)
	if !ok {
		b.closeJoystick(j)
		return false
	}
	if mode != platform.PollPresence {
		readGamepad(j, st.Gamepad, mode)
	}
	return true
}

func (b *Backend) MappingName() string { return "Windows" }

func (b *Backend) UpdateGamepadGUID(guid string) string {
	return updateGamepadGUID(guid)
}
