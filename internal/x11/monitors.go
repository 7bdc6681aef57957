package x11

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// monitorState is the RandR view of one monitor.
type monitorState struct {
	output randr.Output
	crtc   randr.Crtc
	// oldMode is the mode to restore after fullscreen, zero when unchanged.
	oldMode randr.Mode
	bounds  platform.Rect
	// acquired is set while a fullscreen window holds the monitor.
	acquired bool
}

func monitorOf(m *platform.Monitor) *monitorState {
	if m == nil {
		return &monitorState{}
	}
	if s, ok := m.Platform.(*monitorState); ok {
		return s
	}
	return &monitorState{}
}

// crtcMonitor is one active CRTC as found by the RandR walk.
type crtcMonitor struct {
	crtc     randr.Crtc
	output   randr.Output
	name     string
	bounds   platform.Rect
	widthMM  int
	heightMM int
	primary  bool
}

// scanMonitors walks every active CRTC and names it after its first
// connected output.
func (b *Backend) scanMonitors() ([]crtcMonitor, error) {
	conn := b.conn.Conn()
	resources, err := randr.GetScreenResourcesCurrent(conn, b.conn.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, b.conn.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []crtcMonitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		output := crtcInfo.Outputs[0]
		outputInfo, err := randr.GetOutputInfo(conn, output, resources.ConfigTimestamp).Reply()
		if err != nil || outputInfo.Connection != randr.ConnectionConnected {
			continue
		}

		name := string(outputInfo.Name)
		if name == "" {
			name = fmt.Sprintf("Monitor%d", i)
		}
		widthMM, heightMM := int(outputInfo.MmWidth), int(outputInfo.MmHeight)
		if rotated(crtcInfo.Rotation) {
			widthMM, heightMM = heightMM, widthMM
		}
		bounds := platform.Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		if widthMM <= 0 || heightMM <= 0 {
			// Assume 96 DPI when the output reports no physical size.
			widthMM = int(float64(bounds.Width) * 25.4 / 96)
			heightMM = int(float64(bounds.Height) * 25.4 / 96)
		}

		monitors = append(monitors, crtcMonitor{
			crtc:     crtc,
			output:   output,
			name:     name,
			bounds:   bounds,
			widthMM:  widthMM,
			heightMM: heightMM,
			primary:  output == primary,
		})
	}
	return monitors, nil
}

func rotated(rotation uint16) bool {
	return rotation&(randr.RotationRotate90|randr.RotationRotate270) != 0
}

// pollMonitors reconciles the registered monitors with the current RandR
// configuration.
func (b *Backend) pollMonitors() {
	if !b.randr {
		if len(b.host.Monitors()) == 0 {
			b.addRootMonitor()
		}
		return
	}
	found, err := b.scanMonitors()
	if err != nil {
		b.host.Logger().Debug("x11 monitor scan failed", "error", err)
		return
	}

	current := make(map[randr.Output]crtcMonitor, len(found))
	for _, cm := range found {
		current[cm.output] = cm
	}
	known := make(map[randr.Output]bool)
	for _, m := range b.host.Monitors() {
		s := monitorOf(m)
		cm, ok := current[s.output]
		if !ok {
			b.host.InputMonitor(m, false, platform.InsertLast)
			continue
		}
		known[s.output] = true
		s.crtc = cm.crtc
		s.bounds = cm.bounds
	}

	for _, cm := range found {
		if known[cm.output] {
			continue
		}
		m := b.host.NewMonitor(cm.name, cm.widthMM, cm.heightMM)
		m.Platform = &monitorState{output: cm.output, crtc: cm.crtc, bounds: cm.bounds}
		placement := platform.InsertLast
		if cm.primary {
			placement = platform.InsertFirst
		}
		b.host.InputMonitor(m, true, placement)
	}
}

// addRootMonitor registers the whole screen as one monitor when RandR is
// missing.
func (b *Backend) addRootMonitor() {
	screen := b.conn.Screen()
	m := b.host.NewMonitor("Display", int(screen.WidthInMillimeters), int(screen.HeightInMillimeters))
	m.Platform = &monitorState{bounds: platform.Rect{
		Width:  int(screen.WidthInPixels),
		Height: int(screen.HeightInPixels),
	}}
	b.host.InputMonitor(m, true, platform.InsertFirst)
}

func (b *Backend) FreeMonitor(m *platform.Monitor) {}

func (b *Backend) MonitorPos(m *platform.Monitor) (int, int) {
	s := monitorOf(m)
	return s.bounds.X, s.bounds.Y
}

func (b *Backend) MonitorContentScale(m *platform.Monitor) (float32, float32) {
	return b.contentScale, b.contentScale
}

// readContentScale derives the scale from Xft.dpi in the root window's
// resource database, defaulting to 1.
func (b *Backend) readContentScale() float32 {
	resources, err := xprop.PropValStr(xprop.GetProperty(b.conn.XUtil, b.conn.Root, "RESOURCE_MANAGER"))
	if err != nil {
		return 1
	}
	if dpi, ok := xftDPI(resources); ok {
		return float32(dpi / 96)
	}
	return 1
}

// xftDPI finds the Xft.dpi entry of an X resource database string.
func xftDPI(resources string) (float64, bool) {
	for _, line := range strings.Split(resources, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return dpi, true
	}
	return 0, false
}

// MonitorWorkarea adjusts the monitor geometry to exclude docks and panels.
// Strut-reserving docks are preferred; the EWMH work area of the current
// desktop is the fallback.
func (b *Backend) MonitorWorkarea(m *platform.Monitor) platform.Rect {
	area := monitorOf(m).bounds
	if adjusted, ok := b.applyDockStruts(area); ok {
		return adjusted
	}

	workArea, err := ewmh.WorkareaGet(b.conn.XUtil)
	if err != nil || len(workArea) == 0 {
		return area
	}
	desktop := b.conn.currentDesktop()
	if desktop < 0 || desktop >= len(workArea) {
		desktop = 0
	}
	wa := workArea[desktop]
	return intersectWorkarea(area, platform.Rect{
		X:      int(wa.X),
		Y:      int(wa.Y),
		Width:  int(wa.Width),
		Height: int(wa.Height),
	})
}

// intersectWorkarea clips the monitor to the work area, leaving it as is
// when the two do not overlap.
func intersectWorkarea(monitor, workArea platform.Rect) platform.Rect {
	x1 := max(monitor.X, workArea.X)
	y1 := max(monitor.Y, workArea.Y)
	x2 := min(monitor.X+monitor.Width, workArea.X+workArea.Width)
	y2 := min(monitor.Y+monitor.Height, workArea.Y+workArea.Height)
	if x2 <= x1 || y2 <= y1 {
		return monitor
	}
	return platform.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func (b *Backend) applyDockStruts(monitor platform.Rect) (platform.Rect, bool) {
	xu := b.conn.XUtil
	rootGeom, err := xproto.GetGeometry(xu.Conn(), xproto.Drawable(b.conn.Root)).Reply()
	if err != nil {
		return monitor, false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(xu)
	if err != nil {
		return monitor, false
	}

	var struts dockStruts
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(xu, windowID)
		if err != nil || !isDock(types) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(xu, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
			continue
		}
		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(xu, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, fullStrut(s, rootWidth, rootHeight), &struts)
		}
	}
	return applyStruts(monitor, struts)
}

func isDock(types []string) bool {
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// fullStrut widens a plain strut to span the whole root window edge.
func fullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:         s.Left,
		Right:        s.Right,
		Top:          s.Top,
		Bottom:       s.Bottom,
		LeftStartY:   0,
		LeftEndY:     uint(rootHeight - 1),
		RightStartY:  0,
		RightEndY:    uint(rootHeight - 1),
		TopStartX:    0,
		TopEndX:      uint(rootWidth - 1),
		BottomStartX: 0,
		BottomEndX:   uint(rootWidth - 1),
	}
}

func applyStruts(monitor platform.Rect, struts dockStruts) (platform.Rect, bool) {
	if struts.left == 0 && struts.right == 0 && struts.top == 0 && struts.bottom == 0 {
		return monitor, false
	}
	monitor.X += struts.left
	monitor.Y += struts.top
	monitor.Width -= struts.left + struts.right
	monitor.Height -= struts.top + struts.bottom
	monitor.Width = max(monitor.Width, 1)
	monitor.Height = max(monitor.Height, 1)
	return monitor, true
}

func updateStrutsForMonitor(monitor platform.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	monX1 := monitor.X
	monY1 := monitor.Y
	monX2 := monitor.X + monitor.Width
	monY2 := monitor.Y + monitor.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		x1 := int(sp.TopStartX)
		x2 := int(sp.TopEndX) + 1
		y1 := 0
		y2 := int(sp.Top)
		if intersects(monX1, monY1, monX2, monY2, x1, y1, x2, y2) {
			acc.top = max(acc.top, intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2).h)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		x1 := int(sp.BottomStartX)
		x2 := int(sp.BottomEndX) + 1
		y2 := rootHeight
		y1 := rootHeight - int(sp.Bottom)
		if intersects(monX1, monY1, monX2, monY2, x1, y1, x2, y2) {
			acc.bottom = max(acc.bottom, intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2).h)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		x1 := 0
		x2 := int(sp.Left)
		y1 := int(sp.LeftStartY)
		y2 := int(sp.LeftEndY) + 1
		if intersects(monX1, monY1, monX2, monY2, x1, y1, x2, y2) {
			acc.left = max(acc.left, intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2).w)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		x2 := rootWidth
		x1 := rootWidth - int(sp.Right)
		y1 := int(sp.RightStartY)
		y2 := int(sp.RightEndY) + 1
		if intersects(monX1, monY1, monX2, monY2, x1, y1, x2, y2) {
			acc.right = max(acc.right, intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2).w)
		}
	}
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}

func intersects(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) bool {
	isect := intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2)
	return isect.w > 0 && isect.h > 0
}

// modeInfo finds a mode in the screen resources.
func modeInfo(modes []randr.ModeInfo, id randr.Mode) (randr.ModeInfo, bool) {
	for _, mi := range modes {
		if randr.Mode(mi.Id) == id {
			return mi, true
		}
	}
	return randr.ModeInfo{}, false
}

// refreshRate rounds the vertical refresh of a mode to whole hertz.
func refreshRate(mi randr.ModeInfo) int {
	if mi.Htotal == 0 || mi.Vtotal == 0 {
		return 0
	}
	return int(math.Round(float64(mi.DotClock) / (float64(mi.Htotal) * float64(mi.Vtotal))))
}

// videoModeFromInfo converts a RandR mode, swapping the axes for rotated
// CRTCs.
func videoModeFromInfo(mi randr.ModeInfo, rotation uint16, depth int) platform.VideoMode {
	mode := platform.VideoMode{
		Width:       int(mi.Width),
		Height:      int(mi.Height),
		RefreshRate: refreshRate(mi),
	}
	if rotated(rotation) {
		mode.Width, mode.Height = mode.Height, mode.Width
	}
	mode.RedBits, mode.GreenBits, mode.BlueBits = platform.SplitBPP(depth)
	return mode
}

func (b *Backend) VideoModes(m *platform.Monitor) ([]platform.VideoMode, error) {
	if !b.randr {
		mode, err := b.VideoMode(m)
		if err != nil {
			return nil, err
		}
		return []platform.VideoMode{mode}, nil
	}
	conn := b.conn.Conn()
	s := monitorOf(m)
	resources, err := randr.GetScreenResourcesCurrent(conn, b.conn.Root).Reply()
	if err != nil {
		return nil, b.host.ReportError(platform.PlatformError, "X11: failed to get screen resources: %v", err)
	}
	crtcInfo, err := randr.GetCrtcInfo(conn, s.crtc, resources.ConfigTimestamp).Reply()
	if err != nil {
		return nil, b.host.ReportError(platform.PlatformError, "X11: failed to query CRTC: %v", err)
	}
	outputInfo, err := randr.GetOutputInfo(conn, s.output, resources.ConfigTimestamp).Reply()
	if err != nil {
		return nil, b.host.ReportError(platform.PlatformError, "X11: failed to query output: %v", err)
	}

	depth := int(b.conn.Screen().RootDepth)
	var modes []platform.VideoMode
	for _, id := range outputInfo.Modes {
		mi, ok := modeInfo(resources.Modes, id)
		if !ok || mi.ModeFlags&randr.ModeFlagInterlace != 0 {
			continue
		}
		mode := videoModeFromInfo(mi, crtcInfo.Rotation, depth)
		if !containsMode(modes, mode) {
			modes = append(modes, mode)
		}
	}
	return modes, nil
}

func containsMode(modes []platform.VideoMode, mode platform.VideoMode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (b *Backend) VideoMode(m *platform.Monitor) (platform.VideoMode, error) {
	depth := int(b.conn.Screen().RootDepth)
	s := monitorOf(m)
	if !b.randr {
		mode := platform.VideoMode{Width: s.bounds.Width, Height: s.bounds.Height}
		mode.RedBits, mode.GreenBits, mode.BlueBits = platform.SplitBPP(depth)
		return mode, nil
	}
	conn := b.conn.Conn()
	resources, err := randr.GetScreenResourcesCurrent(conn, b.conn.Root).Reply()
	if err != nil {
		return platform.VideoMode{}, b.host.ReportError(platform.PlatformError, "X11: failed to get screen resources: %v", err)
	}
	crtcInfo, err := randr.GetCrtcInfo(conn, s.crtc, resources.ConfigTimestamp).Reply()
	if err != nil {
		return platform.VideoMode{}, b.host.ReportError(platform.PlatformError, "X11: failed to query CRTC: %v", err)
	}
	mi, ok := modeInfo(resources.Modes, crtcInfo.Mode)
	if !ok {
		return platform.VideoMode{}, b.host.ReportError(platform.PlatformError, "X11: failed to find the current video mode")
	}
	return videoModeFromInfo(mi, crtcInfo.Rotation, depth), nil
}

// setVideoMode switches the monitor to the mode closest to desired and
// remembers the original one.
func (b *Backend) setVideoMode(m *platform.Monitor, desired platform.VideoMode) error {
	if !b.randr {
		return nil
	}
	best, err := m.ChooseVideoMode(desired)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: %v", err)
	}
	current, err := b.VideoMode(m)
	if err == nil && current == best {
		return nil
	}

	conn := b.conn.Conn()
	s := monitorOf(m)
	resources, err := randr.GetScreenResourcesCurrent(conn, b.conn.Root).Reply()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to get screen resources: %v", err)
	}
	crtcInfo, err := randr.GetCrtcInfo(conn, s.crtc, resources.ConfigTimestamp).Reply()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to query CRTC: %v", err)
	}
	outputInfo, err := randr.GetOutputInfo(conn, s.output, resources.ConfigTimestamp).Reply()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to query output: %v", err)
	}

	depth := int(b.conn.Screen().RootDepth)
	var native randr.Mode
	for _, id := range outputInfo.Modes {
		mi, ok := modeInfo(resources.Modes, id)
		if !ok || mi.ModeFlags&randr.ModeFlagInterlace != 0 {
			continue
		}
		if videoModeFromInfo(mi, crtcInfo.Rotation, depth) == best {
			native = id
			break
		}
	}
	if native == 0 {
		return nil
	}
	if s.oldMode == 0 {
		s.oldMode = crtcInfo.Mode
	}
	reply, err := randr.SetCrtcConfig(conn, s.crtc, 0, resources.ConfigTimestamp,
		crtcInfo.X, crtcInfo.Y, native, crtcInfo.Rotation, crtcInfo.Outputs).Reply()
	if err != nil || reply.Status != randr.SetConfigSuccess {
		return b.host.ReportError(platform.PlatformError, "X11: failed to set video mode")
	}
	return nil
}

// restoreVideoMode puts back the mode saved by setVideoMode.
func (b *Backend) restoreVideoMode(m *platform.Monitor) {
	s := monitorOf(m)
	if !b.randr || s.oldMode == 0 {
		return
	}
	conn := b.conn.Conn()
	resources, err := randr.GetScreenResourcesCurrent(conn, b.conn.Root).Reply()
	if err != nil {
		return
	}
	crtcInfo, err := randr.GetCrtcInfo(conn, s.crtc, resources.ConfigTimestamp).Reply()
	if err != nil {
		return
	}
	_, err = randr.SetCrtcConfig(conn, s.crtc, 0, resources.ConfigTimestamp,
		crtcInfo.X, crtcInfo.Y, s.oldMode, crtcInfo.Rotation, crtcInfo.Outputs).Reply()
	if err != nil {
		b.host.Logger().Debug("x11 restore video mode failed", "monitor", m.Name, "error", err)
	}
	s.oldMode = 0
}

func (b *Backend) GammaRamp(m *platform.Monitor) (platform.GammaRamp, error) {
	if !b.randr {
		return platform.GammaRamp{}, b.host.ReportError(platform.FeatureUnavailable, "X11: gamma ramp access requires RandR")
	}
	conn := b.conn.Conn()
	s := monitorOf(m)
	size, err := randr.GetCrtcGammaSize(conn, s.crtc).Reply()
	if err != nil {
		return platform.GammaRamp{}, b.host.ReportError(platform.PlatformError, "X11: failed to query gamma ramp size: %v", err)
	}
	if size.Size == 0 {
		return platform.GammaRamp{}, b.host.ReportError(platform.PlatformError, "X11: gamma ramp is empty")
	}
	gamma, err := randr.GetCrtcGamma(conn, s.crtc).Reply()
	if err != nil {
		return platform.GammaRamp{}, b.host.ReportError(platform.PlatformError, "X11: failed to read gamma ramp: %v", err)
	}
	return platform.GammaRamp{
		Red:   append([]uint16(nil), gamma.Red...),
		Green: append([]uint16(nil), gamma.Green...),
		Blue:  append([]uint16(nil), gamma.Blue...),
	}, nil
}

func (b *Backend) SetGammaRamp(m *platform.Monitor, ramp platform.GammaRamp) error {
	if !b.randr {
		return b.host.ReportError(platform.FeatureUnavailable, "X11: gamma ramp access requires RandR")
	}
	conn := b.conn.Conn()
	s := monitorOf(m)
	size, err := randr.GetCrtcGammaSize(conn, s.crtc).Reply()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to query gamma ramp size: %v", err)
	}
	if int(size.Size) != ramp.Size() {
		return b.host.ReportError(platform.PlatformError, "X11: gamma ramp size must match current ramp size")
	}
	err = randr.SetCrtcGammaChecked(conn, s.crtc, size.Size, ramp.Red, ramp.Green, ramp.Blue).Check()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to set gamma ramp: %v", err)
	}
	return nil
}
