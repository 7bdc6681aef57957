//go:build windows

package win32

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"syscall"
	"time"
	"unsafe"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"golang.org/x/sys/windows"
)

// DPI awareness policies accepted in Options.DPIAwareness.
const (
	DPIAwarenessAuto = "auto"
	DPIAwarenessNone = "none"
)

const className = "Hatch10"

// Options tune the backend. The zero value selects the defaults.
type Options struct {
	// DPIAwareness is auto or none. Auto opts the process into the best
	// DPI awareness the system offers.
	DPIAwareness string
}

// Backend is the Win32 backend. All calls must come from the thread that
// called Init; Init locks it.
type Backend struct {
	host platform.Host
	opts Options

	version      *windows.OsVersionInfoEx
	threadLocked bool

	instance     uintptr
	class        uint16
	helper       uintptr
	deviceNotify uintptr
	wndProc      uintptr
	monitorProc  uintptr
	arrow        uintptr

	keys     *keyTables
	keyNames [event.KeyLast + 1]string

	byHandle map[uintptr]*platform.Window
	creating *platform.Window
	pump     pump

	disabledCursorWindow *platform.Window
	capturedCursorWindow *platform.Window
	restoreCursorX       float64
	restoreCursorY       float64
	rawInput             []byte

	scanTarget       *monitorState
	acquiredMonitors int

	keyboards      map[string]bool
	xinput         *xinputProcs
	joysticksReady bool
	pads           [xuserMaxCount]*platform.Joystick
}

var _ platform.Backend = (*Backend)(nil)

// Connect returns a backend for the local desktop session.
func Connect(opts Options) (*Backend, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("win32: %w", err)
	}
	return New(opts), nil
}

func New(opts Options) *Backend {
	if opts.DPIAwareness == "" {
		opts.DPIAwareness = DPIAwarenessAuto
	}
	return &Backend{
		opts:      opts,
		byHandle:  make(map[uintptr]*platform.Window),
		keyboards: make(map[string]bool),
	}
}

// Candidate returns the probe list entry for this backend.
func Candidate(opts Options) platform.Candidate {
	return platform.Candidate{
		ID: platform.Win32,
		Connect: func() (platform.Backend, error) {
			return Connect(opts)
		},
	}
}

func (b *Backend) ID() platform.ID { return platform.Win32 }
func (b *Backend) Name() string    { return "win32" }

func (b *Backend) Init(host platform.Host) error {
	b.host = host
	runtime.LockOSThread()
	b.threadLocked = true
	b.version = windows.RtlGetVersion()

	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		return b.reportLastError(platform.PlatformError, err, "failed to retrieve own module handle")
	}
	b.instance = uintptr(module)

	b.keys = newKeyTables()
	b.updateKeyNames()

	if b.opts.DPIAwareness != DPIAwarenessNone {
		b.setDPIAwareness()
	}

	b.wndProc = windows.NewCallback(b.windowProc)
	b.monitorProc = windows.NewCallback(b.enumMonitor)
	if err := b.registerWindowClass(); err != nil {
		return err
	}
	if err := b.createHelperWindow(); err != nil {
		return err
	}

	// Keyboard arrival and removal is reported to the helper window.
	keyboard := []rawInputDevice{{
		UsagePage: 0x01,
		Usage:     0x06,
		Flags:     ridevDevNotify | ridevInputSink,
		Target:    b.helper,
	}}
	if err := registerRawInputDevices(keyboard); err != nil {
		return b.reportLastError(platform.PlatformError, err, "failed to register raw keyboard input")
	}

	b.pump = b.newPump()
	b.loadXInput()
	b.pollMonitors()
	b.pollKeyboards()

	host.Logger().Debug("win32 platform initialized",
		"version", fmt.Sprintf("%d.%d.%d", b.version.MajorVersion, b.version.MinorVersion, b.version.BuildNumber),
		"monitors", len(host.Monitors()),
		"xinput", b.xinput != nil)
	return nil
}

func (b *Backend) Terminate() {
	if b.deviceNotify != 0 {
		unregisterDeviceNotification(b.deviceNotify)
		b.deviceNotify = 0
	}
	if b.helper != 0 {
		destroyWindow(b.helper)
		b.helper = 0
	}
	if b.class != 0 {
		unregisterClass(b.class, b.instance)
		b.class = 0
	}
	b.rawInput = nil
	b.xinput = nil
	b.keyboards = make(map[string]bool)
	b.disabledCursorWindow = nil
	b.capturedCursorWindow = nil
	b.instance = 0
	if b.threadLocked {
		runtime.UnlockOSThread()
		b.threadLocked = false
	}
}

// versionAtLeast compares the running Windows version.
func (b *Backend) versionAtLeast(major, minor, build uint32) bool {
	v := b.version
	if v == nil {
		return false
	}
	if v.MajorVersion != major {
		return v.MajorVersion > major
	}
	if v.MinorVersion != minor {
		return v.MinorVersion > minor
	}
	return v.BuildNumber >= build
}

func (b *Backend) isWindows10Version1607OrGreater() bool { return b.versionAtLeast(10, 0, 14393) }
func (b *Backend) isWindows10Version1703OrGreater() bool { return b.versionAtLeast(10, 0, 15063) }
func (b *Backend) isWindows8Point1OrGreater() bool       { return b.versionAtLeast(6, 3, 0) }

func (b *Backend) setDPIAwareness() {
	switch {
	case b.isWindows10Version1703OrGreater() && available(_SetProcessDpiAwarenessContext):
		_SetProcessDpiAwarenessContext.Call(dpiAwarenessContextPerMonitorAwareV2)
	case b.isWindows8Point1OrGreater() && available(_SetProcessDpiAwareness):
		_SetProcessDpiAwareness.Call(processPerMonitorDPIAware)
	default:
		_SetProcessDPIAware.Call()
	}
}

func (b *Backend) registerWindowClass() error {
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "Win32: invalid window class name: %v", err)
	}
	arrow, err := loadSharedCursor(idcArrow)
	if err != nil {
		return b.reportLastError(platform.PlatformError, err, "failed to load the arrow cursor")
	}
	b.arrow = arrow

	wc := wndClassEx{
		Style:         csHRedraw | csVRedraw | csOwnDC,
		LpfnWndProc:   b.wndProc,
		HInstance:     b.instance,
		HIcon:         loadSharedIcon(idiApplication),
		HCursor:       arrow,
		LpszClassName: name,
	}
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	class, err := registerClassEx(&wc)
	if err != nil {
		return b.reportLastError(platform.PlatformError, err, "failed to register window class")
	}
	b.class = class
	return nil
}

func (b *Backend) createHelperWindow() error {
	hwnd, err := createWindowEx(wsExOverlappedWindow, b.class, "hatch message window",
		wsClipSiblings|wsClipChildren, 0, 0, 1, 1, 0, b.instance)
	if err != nil {
		return b.reportLastError(platform.PlatformError, err, "failed to create helper window")
	}
	b.helper = hwnd

	// The helper window is never shown, but ShowWindow must still be
	// called once for later calls to honour their arguments.
	showWindow(hwnd, swHide)

	filter := devBroadcastDeviceInterface{
		DeviceType: dbtDevTypDeviceInterface,
		ClassGUID:  hidGUID,
	}
	filter.Size = uint32(unsafe.Sizeof(filter))
	b.deviceNotify = registerDeviceNotification(hwnd, &filter)

	var m msg
	for peekMessage(&m, hwnd, true) {
		translateMessage(&m)
		dispatchMessage(&m)
	}
	return nil
}

// reportLastError reports kind with the system text for err appended.
func (b *Backend) reportLastError(kind platform.ErrorKind, err error, format string, args ...any) error {
	desc := fmt.Sprintf(format, args...)
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		desc += ": " + systemMessage(errno)
	}
	return b.host.ReportError(kind, "Win32: %s", desc)
}

func systemMessage(code syscall.Errno) string {
	buf := make([]uint16, 512)
	flags := uint32(windows.FORMAT_MESSAGE_FROM_SYSTEM | windows.FORMAT_MESSAGE_IGNORE_INSERTS | windows.FORMAT_MESSAGE_MAX_WIDTH_MASK)
	n, err := windows.FormatMessage(flags, 0, uint32(code), 0, buf, nil)
	if err != nil || n == 0 {
		return fmt.Sprintf("error %d", uint32(code))
	}
	return strings.TrimSpace(windows.UTF16ToString(buf[:n]))
}

// updateKeyNames rebuilds the printable key names for the current keyboard
// layout.
func (b *Backend) updateKeyNames() {
	var state [256]byte
	chars := make([]uint16, 16)
	for key := event.KeySpace; key <= event.KeyLast; key++ {
		b.keyNames[key] = ""
		if !namedKey(key) {
			continue
		}
		scancode := b.keys.scancode(key)
		if scancode == -1 {
			continue
		}
		var vk uint32
		if key >= event.KeyKP0 && key <= event.KeyKPAdd {
			vk = numpadVKs[key-event.KeyKP0]
		} else {
			vk = mapVirtualKey(uint32(scancode), mapvkVscToVk)
		}
		n := toUnicode(vk, uint32(scancode), &state, chars)
		if n == -1 {
			// A dead key leaves its accent in the keyboard state; the second
			// call flushes it.
			n = toUnicode(vk, uint32(scancode), &state, chars)
		}
		if n < 1 {
			continue
		}
		b.keyNames[key] = windows.UTF16ToString(chars[:1])
	}
}

func (b *Backend) window(hwnd uintptr) *platform.Window {
	if hwnd == 0 {
		return nil
	}
	return b.byHandle[hwnd]
}

func (b *Backend) newPump() pump {
	return pump{
		host:   b.host,
		queue:  &threadQueue{},
		keys:   b.keys,
		helper: b.helper,
		window: b.window,
		disabled: func() *platform.Window {
			return b.disabledCursorWindow
		},
		recenter: func(w *platform.Window) {
			width, height := b.WindowSize(w)
			// The warp queues a WM_MOUSEMOVE of its own, so only recentre
			// after the cursor actually moved.
			s := windowOf(w)
			if s.decode.lastX != width/2 || s.decode.lastY != height/2 {
				_ = b.SetCursorPos(w, float64(width/2), float64(height/2))
			}
		},
	}
}

func (b *Backend) PollEvents()                             { b.pump.poll() }
func (b *Backend) WaitEvents()                             { b.pump.wait() }
func (b *Backend) WaitEventsTimeout(timeout time.Duration) { b.pump.waitTimeout(timeout) }
func (b *Backend) PostEmptyEvent()                         { b.pump.postEmpty() }
