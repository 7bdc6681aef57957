//go:build windows

package win32

import (
	"slices"
	"unsafe"

	"github.com/1broseidon/hatch/internal/platform"
	"golang.org/x/sys/windows"
)

// monitorState is the Win32 side of a monitor. A monitor is an adapter
// output; the display device is empty for adapters that report none.
type monitorState struct {
	handle      uintptr
	adapterName [32]uint16
	displayName [32]uint16
	modesPruned bool
	modeChanged bool
}

func monitorOf(m *platform.Monitor) *monitorState {
	s, _ := m.Platform.(*monitorState)
	if s == nil {
		return &monitorState{}
	}
	return s
}

// pollMonitors reconciles the connected monitors with the display
// devices the system reports.
func (b *Backend) pollMonitors() {
	disconnected := slices.Clone(b.host.Monitors())

	claim := func(match func(s *monitorState) bool) bool {
		for i, m := range disconnected {
			if m == nil {
				continue
			}
			s := monitorOf(m)
			if match(s) {
				disconnected[i] = nil
				// The handle may have changed.
				b.scanMonitor(s, nil)
				return true
			}
		}
		return false
	}

	for adapterIndex := uint32(0); ; adapterIndex++ {
		var adapter displayDevice
		adapter.Cb = uint32(unsafe.Sizeof(adapter))
		if !enumDisplayDevices(nil, adapterIndex, &adapter) {
			break
		}
		if adapter.StateFlags&displayDeviceActive == 0 {
			continue
		}
		placement := platform.InsertLast
		if adapter.StateFlags&displayDevicePrimaryDevice != 0 {
			placement = platform.InsertFirst
		}

		displayIndex := uint32(0)
		for ; ; displayIndex++ {
			var display displayDevice
			display.Cb = uint32(unsafe.Sizeof(display))
			if !enumDisplayDevices(&adapter.DeviceName[0], displayIndex, &display) {
				break
			}
			if display.StateFlags&displayDeviceActive == 0 {
				continue
			}
			if claim(func(s *monitorState) bool { return s.displayName == display.DeviceName }) {
				continue
			}
			m := b.createMonitor(&adapter, &display)
			b.host.InputMonitor(m, true, placement)
			placement = platform.InsertLast
		}

		// An active adapter without display devices is a monitor itself.
		if displayIndex == 0 {
			if claim(func(s *monitorState) bool { return s.adapterName == adapter.DeviceName }) {
				continue
			}
			m := b.createMonitor(&adapter, nil)
			b.host.InputMonitor(m, true, placement)
		}
	}

	for _, m := range disconnected {
		if m != nil {
			b.host.InputMonitor(m, false, platform.InsertLast)
		}
	}
}

func (b *Backend) createMonitor(adapter, display *displayDevice) *platform.Monitor {
	name := windows.UTF16ToString(adapter.DeviceString[:])
	if display != nil {
		name = windows.UTF16ToString(display.DeviceString[:])
	}

	var dm devMode
	dm.Size = uint16(unsafe.Sizeof(dm))
	enumDisplaySettings(&adapter.DeviceName[0], enumCurrentSettings, &dm)

	var widthMM, heightMM int
	dc := createDC(&adapter.DeviceName[0])
	if b.isWindows8Point1OrGreater() {
		widthMM = getDeviceCaps(dc, horzSize)
		heightMM = getDeviceCaps(dc, vertSize)
	} else if dpiX, dpiY := getDeviceCaps(dc, logPixelsX), getDeviceCaps(dc, logPixelsY); dpiX > 0 && dpiY > 0 {
		widthMM = int(float32(dm.PelsWidth) * 25.4 / float32(dpiX))
		heightMM = int(float32(dm.PelsHeight) * 25.4 / float32(dpiY))
	}
	deleteDC(dc)

	m := b.host.NewMonitor(name, widthMM, heightMM)
	s := &monitorState{
		adapterName: adapter.DeviceName,
		modesPruned: adapter.StateFlags&displayDeviceModesPruned != 0,
	}
	if display != nil {
		s.displayName = display.DeviceName
	}
	m.Platform = s

	area := rect{
		Left:   dm.Position.X,
		Top:    dm.Position.Y,
		Right:  dm.Position.X + int32(dm.PelsWidth),
		Bottom: dm.Position.Y + int32(dm.PelsHeight),
	}
	b.scanMonitor(s, &area)
	return m
}

// scanMonitor finds the HMONITOR whose device is s's adapter.
func (b *Backend) scanMonitor(s *monitorState, clip *rect) {
	b.scanTarget = s
	enumDisplayMonitors(clip, b.monitorProc, 0)
	b.scanTarget = nil
}

func (b *Backend) enumMonitor(hmonitor, hdc, clip, data uintptr) uintptr {
	if b.scanTarget == nil {
		return 0
	}
	if mi, ok := getMonitorInfo(hmonitor); ok && mi.Device == b.scanTarget.adapterName {
		b.scanTarget.handle = hmonitor
	}
	return 1
}

// acquireMonitor makes w the fullscreen window of its monitor and switches
// to the window's video mode.
func (b *Backend) acquireMonitor(w *platform.Window) {
	m := b.host.Monitor(w.Monitor)
	if m == nil {
		return
	}
	if b.acquiredMonitors == 0 {
		setThreadExecutionState(esContinuous | esDisplayRequired)
	}
	if m.Window != w.ID {
		b.acquiredMonitors++
	}
	b.setVideoMode(m, w.VideoMode)
	m.Window = w.ID
}

func (b *Backend) releaseMonitor(w *platform.Window) {
	m := b.host.Monitor(w.Monitor)
	if m == nil || m.Window != w.ID {
		return
	}
	b.acquiredMonitors--
	if b.acquiredMonitors == 0 {
		setThreadExecutionState(esContinuous)
	}
	m.Window = 0
	b.restoreVideoMode(m)
}

// fitToMonitor covers the whole monitor with the window.
func (b *Backend) fitToMonitor(w *platform.Window) {
	m := b.host.Monitor(w.Monitor)
	if m == nil {
		return
	}
	mi, ok := getMonitorInfo(monitorOf(m).handle)
	if !ok {
		return
	}
	r := mi.Monitor
	setWindowPos(b.handle(w), hwndTopmost, r.Left, r.Top, r.width(), r.height(),
		swpNoZOrder|swpNoActivate|swpNoCopyBits)
}

func (b *Backend) setVideoMode(m *platform.Monitor, desired platform.VideoMode) {
	best, err := m.ChooseVideoMode(desired)
	if err != nil {
		return
	}
	if current, err := b.VideoMode(m); err == nil && current == best {
		return
	}

	var dm devMode
	dm.Size = uint16(unsafe.Sizeof(dm))
	dm.Fields = dmPelsWidth | dmPelsHeight | dmBitsPerPel | dmDisplayFrequency
	dm.PelsWidth = uint32(best.Width)
	dm.PelsHeight = uint32(best.Height)
	dm.BitsPerPel = uint32(best.RedBits + best.GreenBits + best.BlueBits)
	dm.DisplayFrequency = uint32(best.RefreshRate)
	if dm.BitsPerPel < 15 || dm.BitsPerPel >= 24 {
		dm.BitsPerPel = 32
	}

	s := monitorOf(m)
	result := changeDisplaySettingsEx(&s.adapterName[0], &dm, cdsFullscreen)
	if result == dispChangeSuccessful {
		s.modeChanged = true
		return
	}
	_ = b.host.ReportError(platform.PlatformError, "Win32: failed to set video mode: %s", dispChangeText(result))
}

func dispChangeText(code int32) string {
	switch code {
	case dispChangeBadDualView:
		return "the system uses DualView"
	case dispChangeBadFlags:
		return "invalid flags"
	case dispChangeBadMode:
		return "graphics mode not supported"
	case dispChangeBadParam:
		return "invalid parameter"
	case dispChangeFailed:
		return "graphics mode failed"
	case dispChangeNotUpdated:
		return "failed to write to registry"
	case dispChangeRestart:
		return "computer must be restarted"
	}
	return "unknown error"
}

func (b *Backend) restoreVideoMode(m *platform.Monitor) {
	s := monitorOf(m)
	if !s.modeChanged {
		return
	}
	changeDisplaySettingsEx(&s.adapterName[0], nil, cdsFullscreen)
	s.modeChanged = false
}

// hmonitorContentScale reads a monitor's effective DPI relative to 96.
func (b *Backend) hmonitorContentScale(hmonitor uintptr) (xscale, yscale float32, ok bool) {
	var xdpi, ydpi uint32
	if b.isWindows8Point1OrGreater() && available(_GetDpiForMonitor) {
		xdpi, ydpi, ok = getDpiForMonitor(hmonitor)
		if !ok {
			_ = b.host.ReportError(platform.PlatformError, "Win32: failed to query monitor DPI")
			return 0, 0, false
		}
	} else {
		dc := getDC(0)
		xdpi = uint32(getDeviceCaps(dc, logPixelsX))
		ydpi = uint32(getDeviceCaps(dc, logPixelsY))
		releaseDC(0, dc)
	}
	return float32(xdpi) / defaultDPI, float32(ydpi) / defaultDPI, true
}

func (b *Backend) FreeMonitor(m *platform.Monitor) {
	b.restoreVideoMode(m)
}

func (b *Backend) MonitorPos(m *platform.Monitor) (int, int) {
	var dm devMode
	dm.Size = uint16(unsafe.Sizeof(dm))
	enumDisplaySettingsEx(&monitorOf(m).adapterName[0], enumCurrentSettings, &dm, edsRotatedMode)
	return int(dm.Position.X), int(dm.Position.Y)
}

func (b *Backend) MonitorContentScale(m *platform.Monitor) (float32, float32) {
	xscale, yscale, _ := b.hmonitorContentScale(monitorOf(m).handle)
	return xscale, yscale
}

func (b *Backend) MonitorWorkarea(m *platform.Monitor) platform.Rect {
	mi, ok := getMonitorInfo(monitorOf(m).handle)
	if !ok {
		return platform.Rect{}
	}
	wa := mi.WorkArea
	return platform.Rect{X: int(wa.Left), Y: int(wa.Top), Width: int(wa.width()), Height: int(wa.height())}
}

func (b *Backend) VideoModes(m *platform.Monitor) ([]platform.VideoMode, error) {
	s := monitorOf(m)
	var modes []platform.VideoMode
	for index := uint32(0); ; index++ {
		var dm devMode
		dm.Size = uint16(unsafe.Sizeof(dm))
		if !enumDisplaySettings(&s.adapterName[0], index, &dm) {
			break
		}
		// Modes below 15 bits per pixel are not worth offering.
		if dm.BitsPerPel < 15 {
			continue
		}
		mode := devModeVideoMode(&dm)
		if slices.Contains(modes, mode) {
			continue
		}
		if s.modesPruned && changeDisplaySettingsEx(&s.adapterName[0], &dm, cdsTest) != dispChangeSuccessful {
			// Not supported by the connected displays.
			continue
		}
		modes = append(modes, mode)
	}
	if len(modes) == 0 {
		current, err := b.VideoMode(m)
		if err != nil {
			return nil, err
		}
		modes = append(modes, current)
	}
	return modes, nil
}

func devModeVideoMode(dm *devMode) platform.VideoMode {
	red, green, blue := platform.SplitBPP(int(dm.BitsPerPel))
	return platform.VideoMode{
		Width:       int(dm.PelsWidth),
		Height:      int(dm.PelsHeight),
		RedBits:     red,
		GreenBits:   green,
		BlueBits:    blue,
		RefreshRate: int(dm.DisplayFrequency),
	}
}

func (b *Backend) VideoMode(m *platform.Monitor) (platform.VideoMode, error) {
	var dm devMode
	dm.Size = uint16(unsafe.Sizeof(dm))
	if !enumDisplaySettings(&monitorOf(m).adapterName[0], enumCurrentSettings, &dm) {
		return platform.VideoMode{}, b.host.ReportError(platform.PlatformError, "Win32: failed to query display settings")
	}
	return devModeVideoMode(&dm), nil
}

func (b *Backend) GammaRamp(m *platform.Monitor) (platform.GammaRamp, error) {
	var values [3][256]uint16
	dc := createDC(&monitorOf(m).adapterName[0])
	ok := getDeviceGammaRamp(dc, &values)
	deleteDC(dc)
	if !ok {
		return platform.GammaRamp{}, b.host.ReportError(platform.PlatformError, "Win32: failed to query gamma ramp")
	}
	return platform.GammaRamp{
		Red:   slices.Clone(values[0][:]),
		Green: slices.Clone(values[1][:]),
		Blue:  slices.Clone(values[2][:]),
	}, nil
}

func (b *Backend) SetGammaRamp(m *platform.Monitor, ramp platform.GammaRamp) error {
	if ramp.Size() != 256 {
		return b.host.ReportError(platform.PlatformError, "Win32: gamma ramp size must be 256")
	}
	var values [3][256]uint16
	copy(values[0][:], ramp.Red)
	copy(values[1][:], ramp.Green)
	copy(values[2][:], ramp.Blue)

	dc := createDC(&monitorOf(m).adapterName[0])
	ok := setDeviceGammaRamp(dc, &values)
	deleteDC(dc)
	if !ok {
		return b.host.ReportError(platform.PlatformError, "Win32: failed to set gamma ramp")
	}
	return nil
}
