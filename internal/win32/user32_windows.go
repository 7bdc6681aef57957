//go:build windows

package win32

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	csHRedraw = 0x0002
	csVRedraw = 0x0001
	csOwnDC   = 0x0020

	cwUseDefault = -2147483648

	wsOverlapped   = 0x00000000
	wsPopup        = 0x80000000
	wsCaption      = 0x00C00000
	wsSysMenu      = 0x00080000
	wsThickFrame   = 0x00040000
	wsMinimizeBox  = 0x00020000
	wsMaximizeBox  = 0x00010000
	wsClipChildren = 0x02000000
	wsClipSiblings = 0x04000000
	wsMaximize     = 0x01000000

	wsOverlappedWindow = wsOverlapped | wsCaption | wsSysMenu | wsThickFrame | wsMinimizeBox | wsMaximizeBox

	wsExAppWindow   = 0x00040000
	wsExTopmost     = 0x00000008
	wsExLayered     = 0x00080000
	wsExTransparent = 0x00000020

	swHide           = 0
	swShowNoActivate = 4
	swMaximize       = 3
	swMinimize       = 6
	swShowNA         = 8
	swRestore        = 9

	swpNoSize        = 0x0001
	swpNoMove        = 0x0002
	swpNoZOrder      = 0x0004
	swpNoActivate    = 0x0010
	swpFrameChanged  = 0x0020
	swpShowWindow    = 0x0040
	swpNoCopyBits    = 0x0100
	swpNoOwnerZOrder = 0x0200

	gwlStyle   = -16
	gwlExStyle = -20

	pmRemove   = 0x0001
	pmNoRemove = 0x0000
	qsAllInput = 0x04FF

	imageIcon     = 1
	imageCursor   = 2
	lrDefaultSize = 0x00000040
	lrShared      = 0x00008000

	iconSmall = 0
	iconBig   = 1
	wmSetIcon = 0x0080

	smCxIcon   = 11
	smCyIcon   = 12
	smCxSmIcon = 49
	smCySmIcon = 50

	lwaAlpha = 0x00000002

	monitorDefaultToNearest = 2
	mdtEffectiveDPI         = 0

	mapvkVkToVsc = 0
	mapvkVscToVk = 1

	tmeLeave = 0x00000002

	ridInput            = 0x10000003
	rimTypeMouse        = 0
	rimTypeKeyboard     = 1
	ridevRemove         = 0x00000001
	ridevInputSink      = 0x00000100
	ridevDevNotify      = 0x00002000
	ridiDeviceName      = 0x20000007
	mouseMoveAbsolute   = 0x01
	mouseVirtualDesktop = 0x02

	smCxScreen        = 0
	smCyScreen        = 1
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCxVirtualScreen = 78
	smCyVirtualScreen = 79

	dbtDevTypDeviceInterface = 5
	deviceNotifyWindowHandle = 0

	dwmBBEnable     = 0x00000001
	dwmBBBlurRegion = 0x00000002

	biBitfields  = 3
	dibRGBColors = 0

	processPerMonitorDPIAware = 2

	msgfltAllow      = 1
	wmCopyData       = 0x004A
	wmCopyGlobalData = 0x0049

	wsExOverlappedWindow = 0x00000300
	smCyCaption          = 4

	esContinuous      = 0x80000000
	esDisplayRequired = 0x00000002
	edsRotatedMode    = 0x00000004
)

// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 is the handle value -4.
const dpiAwarenessContextPerMonitorAwareV2 = ^uintptr(3)

// Display settings.
const (
	enumCurrentSettings = 0xFFFFFFFF
	cdsFullscreen       = 0x00000004
	cdsTest             = 0x00000002

	dispChangeSuccessful  = 0
	dispChangeRestart     = 1
	dispChangeFailed      = -1
	dispChangeBadMode     = -2
	dispChangeNotUpdated  = -3
	dispChangeBadFlags    = -4
	dispChangeBadParam    = -5
	dispChangeBadDualView = -6

	dmBitsPerPel       = 0x00040000
	dmPelsWidth        = 0x00080000
	dmPelsHeight       = 0x00100000
	dmDisplayFrequency = 0x00400000

	displayDeviceActive        = 0x00000001
	displayDevicePrimaryDevice = 0x00000004
	displayDeviceModesPruned   = 0x08000000

	horzSize   = 4
	vertSize   = 6
	logPixelsX = 88
	logPixelsY = 90
)

var hwndTop, hwndTopmost, hwndNoTopmost = uintptr(0), ^uintptr(0), ^uintptr(1)

// hidGUID is GUID_DEVINTERFACE_HID.
var hidGUID = windows.GUID{
	Data1: 0x4d1e55b2,
	Data2: 0xf16f,
	Data3: 0x11cf,
	Data4: [8]byte{0x88, 0xcb, 0x00, 0x11, 0x11, 0x00, 0x00, 0x30},
}

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CnClsExtra    int32
	CbWndExtra    int32
	HInstance     uintptr
	HIcon         uintptr
	HCursor       uintptr
	HbrBackground uintptr
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       uintptr
}

type msg struct {
	Hwnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

type minMaxInfo struct {
	PtReserved     point
	PtMaxSize      point
	PtMaxPosition  point
	PtMinTrackSize point
	PtMaxTrackSize point
}

type trackMouseEvent struct {
	CbSize      uint32
	DwFlags     uint32
	HwndTrack   uintptr
	DwHoverTime uint32
}

type rawInputDevice struct {
	UsagePage uint16
	Usage     uint16
	Flags     uint32
	Target    uintptr
}

type rawInputDeviceList struct {
	Device uintptr
	Type   uint32
}

type rawInputHeader struct {
	Type   uint32
	Size   uint32
	Device uintptr
	WParam uintptr
}

type rawMouse struct {
	Flags            uint16
	_                uint16
	ButtonFlags      uint16
	ButtonData       uint16
	RawButtons       uint32
	LastX            int32
	LastY            int32
	ExtraInformation uint32
}

type rawInput struct {
	Header rawInputHeader
	Mouse  rawMouse
}

type monitorInfoEx struct {
	CbSize   uint32
	Monitor  rect
	WorkArea rect
	Flags    uint32
	Device   [32]uint16
}

type displayDevice struct {
	Cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

// devMode is the display variant of DEVMODEW.
type devMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	Position           point
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

type iconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  uintptr
	HbmColor uintptr
}

type bitmapV5Header struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
	RedMask       uint32
	GreenMask     uint32
	BlueMask      uint32
	AlphaMask     uint32
	CSType        uint32
	Endpoints     [36]byte
	GammaRed      uint32
	GammaGreen    uint32
	GammaBlue     uint32
	Intent        uint32
	ProfileData   uint32
	ProfileSize   uint32
	Reserved      uint32
}

type dwmBlurBehind struct {
	Flags                 uint32
	Enable                int32
	RgnBlur               uintptr
	TransitionOnMaximized int32
}

type devBroadcastDeviceInterface struct {
	Size       uint32
	DeviceType uint32
	Reserved   uint32
	ClassGUID  windows.GUID
	Name       [1]uint16
}

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	_AdjustWindowRectEx            = user32.NewProc("AdjustWindowRectEx")
	_AdjustWindowRectExForDpi      = user32.NewProc("AdjustWindowRectExForDpi")
	_BringWindowToTop              = user32.NewProc("BringWindowToTop")
	_ChangeDisplaySettingsExW      = user32.NewProc("ChangeDisplaySettingsExW")
	_ChangeWindowMessageFilterEx   = user32.NewProc("ChangeWindowMessageFilterEx")
	_ClientToScreen                = user32.NewProc("ClientToScreen")
	_ClipCursor                    = user32.NewProc("ClipCursor")
	_CreateIconIndirect            = user32.NewProc("CreateIconIndirect")
	_CreateWindowExW               = user32.NewProc("CreateWindowExW")
	_DefWindowProcW                = user32.NewProc("DefWindowProcW")
	_DestroyIcon                   = user32.NewProc("DestroyIcon")
	_DestroyWindow                 = user32.NewProc("DestroyWindow")
	_DispatchMessageW              = user32.NewProc("DispatchMessageW")
	_EnableNonClientDpiScaling     = user32.NewProc("EnableNonClientDpiScaling")
	_EnumDisplayDevicesW           = user32.NewProc("EnumDisplayDevicesW")
	_EnumDisplayMonitors           = user32.NewProc("EnumDisplayMonitors")
	_EnumDisplaySettingsW          = user32.NewProc("EnumDisplaySettingsW")
	_EnumDisplaySettingsExW        = user32.NewProc("EnumDisplaySettingsExW")
	_FlashWindow                   = user32.NewProc("FlashWindow")
	_GetActiveWindow               = user32.NewProc("GetActiveWindow")
	_GetClientRect                 = user32.NewProc("GetClientRect")
	_GetCursorPos                  = user32.NewProc("GetCursorPos")
	_GetDC                         = user32.NewProc("GetDC")
	_GetDpiForWindow               = user32.NewProc("GetDpiForWindow")
	_GetKeyState                   = user32.NewProc("GetKeyState")
	_GetMessageTime                = user32.NewProc("GetMessageTime")
	_GetLayeredWindowAttributes    = user32.NewProc("GetLayeredWindowAttributes")
	_GetMonitorInfoW               = user32.NewProc("GetMonitorInfoW")
	_GetRawInputData               = user32.NewProc("GetRawInputData")
	_GetRawInputDeviceInfoW        = user32.NewProc("GetRawInputDeviceInfoW")
	_GetRawInputDeviceList         = user32.NewProc("GetRawInputDeviceList")
	_GetSystemMetrics              = user32.NewProc("GetSystemMetrics")
	_GetSystemMetricsForDpi        = user32.NewProc("GetSystemMetricsForDpi")
	_GetWindowLongW                = user32.NewProc("GetWindowLongW")
	_GetWindowRect                 = user32.NewProc("GetWindowRect")
	_IsIconic                      = user32.NewProc("IsIconic")
	_IsWindowVisible               = user32.NewProc("IsWindowVisible")
	_IsZoomed                      = user32.NewProc("IsZoomed")
	_LoadImageW                    = user32.NewProc("LoadImageW")
	_MapVirtualKeyW                = user32.NewProc("MapVirtualKeyW")
	_MonitorFromWindow             = user32.NewProc("MonitorFromWindow")
	_MsgWaitForMultipleObjects     = user32.NewProc("MsgWaitForMultipleObjects")
	_PeekMessageW                  = user32.NewProc("PeekMessageW")
	_PostMessageW                  = user32.NewProc("PostMessageW")
	_RegisterClassExW              = user32.NewProc("RegisterClassExW")
	_RegisterDeviceNotificationW   = user32.NewProc("RegisterDeviceNotificationW")
	_RegisterRawInputDevices       = user32.NewProc("RegisterRawInputDevices")
	_ReleaseCapture                = user32.NewProc("ReleaseCapture")
	_ReleaseDC                     = user32.NewProc("ReleaseDC")
	_ScreenToClient                = user32.NewProc("ScreenToClient")
	_SendMessageW                  = user32.NewProc("SendMessageW")
	_SetCapture                    = user32.NewProc("SetCapture")
	_SetCursor                     = user32.NewProc("SetCursor")
	_SetCursorPos                  = user32.NewProc("SetCursorPos")
	_SetFocus                      = user32.NewProc("SetFocus")
	_SetForegroundWindow           = user32.NewProc("SetForegroundWindow")
	_SetLayeredWindowAttributes    = user32.NewProc("SetLayeredWindowAttributes")
	_SetProcessDPIAware            = user32.NewProc("SetProcessDPIAware")
	_SetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")
	_SetWindowLongW                = user32.NewProc("SetWindowLongW")
	_SetWindowPos                  = user32.NewProc("SetWindowPos")
	_SetWindowTextW                = user32.NewProc("SetWindowTextW")
	_ShowWindow                    = user32.NewProc("ShowWindow")
	_ToUnicode                     = user32.NewProc("ToUnicode")
	_TrackMouseEvent               = user32.NewProc("TrackMouseEvent")
	_TranslateMessage              = user32.NewProc("TranslateMessage")
	_UnregisterClassW              = user32.NewProc("UnregisterClassW")
	_UnregisterDeviceNotification  = user32.NewProc("UnregisterDeviceNotification")
	_WaitMessage                   = user32.NewProc("WaitMessage")
	_WindowFromPoint               = user32.NewProc("WindowFromPoint")

	kernel32                 = windows.NewLazySystemDLL("kernel32.dll")
	_SetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")

	gdi32               = windows.NewLazySystemDLL("gdi32.dll")
	_CreateBitmap       = gdi32.NewProc("CreateBitmap")
	_CreateDCW          = gdi32.NewProc("CreateDCW")
	_CreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	_CreateRectRgn      = gdi32.NewProc("CreateRectRgn")
	_DeleteDC           = gdi32.NewProc("DeleteDC")
	_DeleteObject       = gdi32.NewProc("DeleteObject")
	_GetDeviceCaps      = gdi32.NewProc("GetDeviceCaps")
	_GetDeviceGammaRamp = gdi32.NewProc("GetDeviceGammaRamp")
	_SetDeviceGammaRamp = gdi32.NewProc("SetDeviceGammaRamp")

	shell32          = windows.NewLazySystemDLL("shell32.dll")
	_DragAcceptFiles = shell32.NewProc("DragAcceptFiles")
	_DragFinish      = shell32.NewProc("DragFinish")
	_DragQueryFileW  = shell32.NewProc("DragQueryFileW")
	_DragQueryPoint  = shell32.NewProc("DragQueryPoint")

	shcore                  = windows.NewLazySystemDLL("shcore.dll")
	_GetDpiForMonitor       = shcore.NewProc("GetDpiForMonitor")
	_SetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")

	dwmapi                     = windows.NewLazySystemDLL("dwmapi.dll")
	_DwmEnableBlurBehindWindow = dwmapi.NewProc("DwmEnableBlurBehindWindow")
	_DwmIsCompositionEnabled   = dwmapi.NewProc("DwmIsCompositionEnabled")
)

// available reports whether an optional entry point exists on this system.
func available(p *windows.LazyProc) bool {
	return p.Find() == nil
}

func boolArg(v bool) uintptr {
	if v {
		return 1
	}
	return 0
}

func adjustWindowRectEx(r *rect, style, exStyle uint32) {
	_AdjustWindowRectEx.Call(uintptr(unsafe.Pointer(r)), uintptr(style), 0, uintptr(exStyle))
}

// adjustWindowRect uses the DPI-aware variant when it exists and a DPI is
// given.
func adjustWindowRect(r *rect, style, exStyle uint32, dpi uint32) {
	if dpi != 0 && available(_AdjustWindowRectExForDpi) {
		_AdjustWindowRectExForDpi.Call(uintptr(unsafe.Pointer(r)), uintptr(style), 0, uintptr(exStyle), uintptr(dpi))
		return
	}
	adjustWindowRectEx(r, style, exStyle)
}

func bringWindowToTop(hwnd uintptr) {
	_BringWindowToTop.Call(hwnd)
}

func changeDisplaySettingsEx(device *uint16, dm *devMode, flags uint32) int32 {
	var dmp uintptr
	if dm != nil {
		dmp = uintptr(unsafe.Pointer(dm))
	}
	r, _, _ := _ChangeDisplaySettingsExW.Call(uintptr(unsafe.Pointer(device)), dmp, 0, uintptr(flags), 0)
	return int32(r)
}

func allowMessage(hwnd uintptr, message uint32) {
	if available(_ChangeWindowMessageFilterEx) {
		_ChangeWindowMessageFilterEx.Call(hwnd, uintptr(message), msgfltAllow, 0)
	}
}

func clientToScreen(hwnd uintptr, p *point) {
	_ClientToScreen.Call(hwnd, uintptr(unsafe.Pointer(p)))
}

func clipCursor(r *rect) {
	_ClipCursor.Call(uintptr(unsafe.Pointer(r)))
}

func createIconIndirect(info *iconInfo) (uintptr, error) {
	h, _, err := _CreateIconIndirect.Call(uintptr(unsafe.Pointer(info)))
	if h == 0 {
		return 0, fmt.Errorf("CreateIconIndirect: %w", err)
	}
	return h, nil
}

func createWindowEx(exStyle uint32, class uint16, title string, style uint32, x, y, w, h int32, parent, instance uintptr) (uintptr, error) {
	wtitle, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	hwnd, _, err := _CreateWindowExW.Call(
		uintptr(exStyle),
		uintptr(class),
		uintptr(unsafe.Pointer(wtitle)),
		uintptr(style),
		uintptr(x), uintptr(y),
		uintptr(w), uintptr(h),
		parent,
		0,
		instance,
		0)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW: %w", err)
	}
	return hwnd, nil
}

func defWindowProc(hwnd uintptr, message uint32, wParam, lParam uintptr) uintptr {
	r, _, _ := _DefWindowProcW.Call(hwnd, uintptr(message), wParam, lParam)
	return r
}

func destroyIcon(h uintptr) {
	_DestroyIcon.Call(h)
}

func destroyWindow(hwnd uintptr) {
	_DestroyWindow.Call(hwnd)
}

func dispatchMessage(m *msg) {
	_DispatchMessageW.Call(uintptr(unsafe.Pointer(m)))
}

func enableNonClientDpiScaling(hwnd uintptr) {
	if available(_EnableNonClientDpiScaling) {
		_EnableNonClientDpiScaling.Call(hwnd)
	}
}

// loadSharedIcon loads one of the system icons by resource ID.
func loadSharedIcon(id uint16) uintptr {
	h, _, _ := _LoadImageW.Call(0, uintptr(id), imageIcon, 0, 0, lrDefaultSize|lrShared)
	return h
}

func enumDisplayDevices(device *uint16, index uint32, dd *displayDevice) bool {
	dd.Cb = uint32(unsafe.Sizeof(*dd))
	r, _, _ := _EnumDisplayDevicesW.Call(uintptr(unsafe.Pointer(device)), uintptr(index), uintptr(unsafe.Pointer(dd)), 0)
	return r != 0
}

func enumDisplayMonitors(clip *rect, proc uintptr, data uintptr) {
	_EnumDisplayMonitors.Call(0, uintptr(unsafe.Pointer(clip)), proc, data)
}

func enumDisplaySettings(device *uint16, mode uint32, dm *devMode) bool {
	dm.Size = uint16(unsafe.Sizeof(*dm))
	r, _, _ := _EnumDisplaySettingsW.Call(uintptr(unsafe.Pointer(device)), uintptr(mode), uintptr(unsafe.Pointer(dm)))
	return r != 0
}

func enumDisplaySettingsEx(device *uint16, mode uint32, dm *devMode, flags uint32) bool {
	dm.Size = uint16(unsafe.Sizeof(*dm))
	r, _, _ := _EnumDisplaySettingsExW.Call(uintptr(unsafe.Pointer(device)), uintptr(mode), uintptr(unsafe.Pointer(dm)), uintptr(flags))
	return r != 0
}

func flashWindow(hwnd uintptr) {
	_FlashWindow.Call(hwnd, 1)
}

func getActiveWindow() uintptr {
	r, _, _ := _GetActiveWindow.Call()
	return r
}

func getClientRect(hwnd uintptr) rect {
	var r rect
	_GetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	return r
}

func getCursorPos() point {
	var p point
	_GetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	return p
}

func getDC(hwnd uintptr) uintptr {
	r, _, _ := _GetDC.Call(hwnd)
	return r
}

func getDpiForWindow(hwnd uintptr) uint32 {
	if !available(_GetDpiForWindow) {
		return 0
	}
	r, _, _ := _GetDpiForWindow.Call(hwnd)
	return uint32(r)
}

func getKeyState(vk int) int16 {
	r, _, _ := _GetKeyState.Call(uintptr(vk))
	return int16(r)
}

func getLayeredWindowAttributes(hwnd uintptr) (key uint32, alpha uint8, flags uint32, ok bool) {
	r, _, _ := _GetLayeredWindowAttributes.Call(hwnd,
		uintptr(unsafe.Pointer(&key)),
		uintptr(unsafe.Pointer(&alpha)),
		uintptr(unsafe.Pointer(&flags)))
	return key, alpha, flags, r != 0
}

func getMessageTime() uint32 {
	r, _, _ := _GetMessageTime.Call()
	return uint32(r)
}

func getMonitorInfo(hmonitor uintptr) (monitorInfoEx, bool) {
	var mi monitorInfoEx
	mi.CbSize = uint32(unsafe.Sizeof(mi))
	r, _, _ := _GetMonitorInfoW.Call(hmonitor, uintptr(unsafe.Pointer(&mi)))
	return mi, r != 0
}

func getRawInputData(handle uintptr, data unsafe.Pointer, size *uint32) uint32 {
	r, _, _ := _GetRawInputData.Call(handle, ridInput, uintptr(data), uintptr(unsafe.Pointer(size)), unsafe.Sizeof(rawInputHeader{}))
	return uint32(r)
}

func getRawInputDeviceList() ([]rawInputDeviceList, error) {
	var count uint32
	entry := unsafe.Sizeof(rawInputDeviceList{})
	r, _, err := _GetRawInputDeviceList.Call(0, uintptr(unsafe.Pointer(&count)), entry)
	if int32(r) == -1 {
		return nil, fmt.Errorf("GetRawInputDeviceList: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	list := make([]rawInputDeviceList, count)
	r, _, err = _GetRawInputDeviceList.Call(uintptr(unsafe.Pointer(&list[0])), uintptr(unsafe.Pointer(&count)), entry)
	if int32(r) == -1 {
		return nil, fmt.Errorf("GetRawInputDeviceList: %w", err)
	}
	return list[:r], nil
}

func rawInputDeviceName(device uintptr) string {
	var size uint32
	_GetRawInputDeviceInfoW.Call(device, ridiDeviceName, 0, uintptr(unsafe.Pointer(&size)))
	if size == 0 {
		return ""
	}
	buf := make([]uint16, size)
	r, _, _ := _GetRawInputDeviceInfoW.Call(device, ridiDeviceName, uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if int32(r) <= 0 {
		return ""
	}
	return windows.UTF16ToString(buf)
}

func getSystemMetrics(index int) int {
	r, _, _ := _GetSystemMetrics.Call(uintptr(index))
	return int(int32(r))
}

func getSystemMetricsForDpi(index int, dpi uint32) int {
	if dpi == 0 || !available(_GetSystemMetricsForDpi) {
		return getSystemMetrics(index)
	}
	r, _, _ := _GetSystemMetricsForDpi.Call(uintptr(index), uintptr(dpi))
	return int(int32(r))
}

func getWindowLong(hwnd uintptr, index int32) uint32 {
	r, _, _ := _GetWindowLongW.Call(hwnd, uintptr(index))
	return uint32(r)
}

func getWindowRect(hwnd uintptr) rect {
	var r rect
	_GetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	return r
}

func isIconic(hwnd uintptr) bool {
	r, _, _ := _IsIconic.Call(hwnd)
	return r != 0
}

func isWindowVisible(hwnd uintptr) bool {
	r, _, _ := _IsWindowVisible.Call(hwnd)
	return r != 0
}

func isZoomed(hwnd uintptr) bool {
	r, _, _ := _IsZoomed.Call(hwnd)
	return r != 0
}

// loadSharedCursor loads one of the system cursors by resource ID.
func loadSharedCursor(id uint16) (uintptr, error) {
	h, _, err := _LoadImageW.Call(0, uintptr(id), imageCursor, 0, 0, lrDefaultSize|lrShared)
	if h == 0 {
		return 0, fmt.Errorf("LoadImageW: %w", err)
	}
	return h, nil
}

func mapVirtualKey(code, mapType uint32) uint32 {
	r, _, _ := _MapVirtualKeyW.Call(uintptr(code), uintptr(mapType))
	return uint32(r)
}

func monitorFromWindow(hwnd uintptr, flags uint32) uintptr {
	r, _, _ := _MonitorFromWindow.Call(hwnd, uintptr(flags))
	return r
}

func msgWaitForMultipleObjects(millis uint32) {
	_MsgWaitForMultipleObjects.Call(0, 0, 0, uintptr(millis), qsAllInput)
}

func peekMessage(m *msg, hwnd uintptr, remove bool) bool {
	flags := uintptr(pmNoRemove)
	if remove {
		flags = pmRemove
	}
	r, _, _ := _PeekMessageW.Call(uintptr(unsafe.Pointer(m)), hwnd, 0, 0, flags)
	return r != 0
}

func postMessage(hwnd uintptr, message uint32, wParam, lParam uintptr) error {
	r, _, err := _PostMessageW.Call(hwnd, uintptr(message), wParam, lParam)
	if r == 0 {
		return fmt.Errorf("PostMessageW: %w", err)
	}
	return nil
}

func registerClassEx(cls *wndClassEx) (uint16, error) {
	a, _, err := _RegisterClassExW.Call(uintptr(unsafe.Pointer(cls)))
	if a == 0 {
		return 0, fmt.Errorf("RegisterClassExW: %w", err)
	}
	return uint16(a), nil
}

func registerDeviceNotification(hwnd uintptr, filter *devBroadcastDeviceInterface) uintptr {
	r, _, _ := _RegisterDeviceNotificationW.Call(hwnd, uintptr(unsafe.Pointer(filter)), deviceNotifyWindowHandle)
	return r
}

func registerRawInputDevices(devices []rawInputDevice) error {
	r, _, err := _RegisterRawInputDevices.Call(
		uintptr(unsafe.Pointer(&devices[0])),
		uintptr(len(devices)),
		unsafe.Sizeof(devices[0]))
	if r == 0 {
		return fmt.Errorf("RegisterRawInputDevices: %w", err)
	}
	return nil
}

func releaseCapture() {
	_ReleaseCapture.Call()
}

func releaseDC(hwnd, hdc uintptr) {
	_ReleaseDC.Call(hwnd, hdc)
}

func screenToClient(hwnd uintptr, p *point) {
	_ScreenToClient.Call(hwnd, uintptr(unsafe.Pointer(p)))
}

func sendMessage(hwnd uintptr, message uint32, wParam, lParam uintptr) uintptr {
	r, _, _ := _SendMessageW.Call(hwnd, uintptr(message), wParam, lParam)
	return r
}

func setCapture(hwnd uintptr) {
	_SetCapture.Call(hwnd)
}

func setCursor(h uintptr) {
	_SetCursor.Call(h)
}

func setCursorPos(x, y int32) {
	_SetCursorPos.Call(uintptr(x), uintptr(y))
}

func setFocus(hwnd uintptr) {
	_SetFocus.Call(hwnd)
}

func setForegroundWindow(hwnd uintptr) {
	_SetForegroundWindow.Call(hwnd)
}

func setLayeredWindowAttributes(hwnd uintptr, key uint32, alpha uint8, flags uint32) {
	_SetLayeredWindowAttributes.Call(hwnd, uintptr(key), uintptr(alpha), uintptr(flags))
}

func setThreadExecutionState(flags uint32) {
	_SetThreadExecutionState.Call(uintptr(flags))
}

func setWindowLong(hwnd uintptr, index int32, value uint32) {
	_SetWindowLongW.Call(hwnd, uintptr(index), uintptr(value))
}

func setWindowPos(hwnd, after uintptr, x, y, w, h int32, flags uint32) {
	_SetWindowPos.Call(hwnd, after, uintptr(x), uintptr(y), uintptr(w), uintptr(h), uintptr(flags))
}

func setWindowText(hwnd uintptr, title string) error {
	wtitle, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	_SetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(wtitle)))
	return nil
}

func showWindow(hwnd uintptr, cmd int32) {
	_ShowWindow.Call(hwnd, uintptr(cmd))
}

func toUnicode(vk, scancode uint32, state *[256]byte, buf []uint16) int {
	r, _, _ := _ToUnicode.Call(
		uintptr(vk),
		uintptr(scancode),
		uintptr(unsafe.Pointer(&state[0])),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		0)
	return int(int32(r))
}

func trackMouseLeave(hwnd uintptr) {
	tme := trackMouseEvent{
		DwFlags:   tmeLeave,
		HwndTrack: hwnd,
	}
	tme.CbSize = uint32(unsafe.Sizeof(tme))
	_TrackMouseEvent.Call(uintptr(unsafe.Pointer(&tme)))
}

func translateMessage(m *msg) {
	_TranslateMessage.Call(uintptr(unsafe.Pointer(m)))
}

func unregisterClass(class uint16, instance uintptr) {
	_UnregisterClassW.Call(uintptr(class), instance)
}

func unregisterDeviceNotification(h uintptr) {
	_UnregisterDeviceNotification.Call(h)
}

func waitMessage() {
	_WaitMessage.Call()
}

func windowFromPoint(p point) uintptr {
	// POINT is passed by value.
	var r uintptr
	if runtime.GOARCH == "386" || runtime.GOARCH == "arm" {
		r, _, _ = _WindowFromPoint.Call(uintptr(p.X), uintptr(p.Y))
	} else {
		r, _, _ = _WindowFromPoint.Call(uintptr(uint32(p.X)) | uintptr(uint32(p.Y))<<32)
	}
	return r
}

func createDC(device *uint16) uintptr {
	display, _ := windows.UTF16PtrFromString("DISPLAY")
	r, _, _ := _CreateDCW.Call(uintptr(unsafe.Pointer(display)), uintptr(unsafe.Pointer(device)), 0, 0)
	return r
}

func deleteDC(hdc uintptr) {
	_DeleteDC.Call(hdc)
}

func deleteObject(h uintptr) {
	_DeleteObject.Call(h)
}

func getDeviceCaps(hdc uintptr, index int32) int {
	r, _, _ := _GetDeviceCaps.Call(hdc, uintptr(index))
	return int(int32(r))
}

func getDeviceGammaRamp(hdc uintptr, ramp *[3][256]uint16) bool {
	r, _, _ := _GetDeviceGammaRamp.Call(hdc, uintptr(unsafe.Pointer(ramp)))
	return r != 0
}

func setDeviceGammaRamp(hdc uintptr, ramp *[3][256]uint16) bool {
	r, _, _ := _SetDeviceGammaRamp.Call(hdc, uintptr(unsafe.Pointer(ramp)))
	return r != 0
}

func createDIBSection(hdc uintptr, header *bitmapV5Header) (uintptr, unsafe.Pointer, error) {
	var bits unsafe.Pointer
	h, _, err := _CreateDIBSection.Call(hdc, uintptr(unsafe.Pointer(header)), dibRGBColors, uintptr(unsafe.Pointer(&bits)), 0, 0)
	if h == 0 {
		return 0, nil, fmt.Errorf("CreateDIBSection: %w", err)
	}
	return h, bits, nil
}

func createBitmap(width, height int32) (uintptr, error) {
	h, _, err := _CreateBitmap.Call(uintptr(width), uintptr(height), 1, 1, 0)
	if h == 0 {
		return 0, fmt.Errorf("CreateBitmap: %w", err)
	}
	return h, nil
}

func createRectRgn(left, top, right, bottom int32) uintptr {
	r, _, _ := _CreateRectRgn.Call(uintptr(left), uintptr(top), uintptr(right), uintptr(bottom))
	return r
}

func dragAcceptFiles(hwnd uintptr, accept bool) {
	_DragAcceptFiles.Call(hwnd, boolArg(accept))
}

func dragFinish(drop uintptr) {
	_DragFinish.Call(drop)
}

func dragQueryPoint(drop uintptr) point {
	var p point
	_DragQueryPoint.Call(drop, uintptr(unsafe.Pointer(&p)))
	return p
}

// dragQueryFiles returns the paths of a WM_DROPFILES drop.
func dragQueryFiles(drop uintptr) []string {
	count, _, _ := _DragQueryFileW.Call(drop, 0xFFFFFFFF, 0, 0)
	paths := make([]string, 0, count)
	for i := uintptr(0); i < count; i++ {
		n, _, _ := _DragQueryFileW.Call(drop, i, 0, 0)
		buf := make([]uint16, n+1)
		_DragQueryFileW.Call(drop, i, uintptr(unsafe.Pointer(&buf[0])), n+1)
		paths = append(paths, windows.UTF16ToString(buf))
	}
	return paths
}

func getDpiForMonitor(hmonitor uintptr) (xdpi, ydpi uint32, ok bool) {
	if !available(_GetDpiForMonitor) {
		return 0, 0, false
	}
	r, _, _ := _GetDpiForMonitor.Call(hmonitor, mdtEffectiveDPI, uintptr(unsafe.Pointer(&xdpi)), uintptr(unsafe.Pointer(&ydpi)))
	return xdpi, ydpi, r == 0
}

func dwmCompositionEnabled() bool {
	if !available(_DwmIsCompositionEnabled) {
		return false
	}
	var enabled int32
	r, _, _ := _DwmIsCompositionEnabled.Call(uintptr(unsafe.Pointer(&enabled)))
	return r == 0 && enabled != 0
}

func dwmEnableBlurBehind(hwnd uintptr, bb *dwmBlurBehind) {
	if available(_DwmEnableBlurBehindWindow) {
		_DwmEnableBlurBehindWindow.Call(hwnd, uintptr(unsafe.Pointer(bb)))
	}
}
