// Package null implements a headless backend. It keeps window and monitor
// state in memory and turns injected events into unified events, so it can
// stand in for a real window system in tests and on machines without one.
package null

import (
	"strings"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
)

const (
	monitorWidth  = 1920
	monitorHeight = 1080
	monitorDPI    = 141
	gammaRampSize = 256
	queueCapacity = 256
	frameTitlebar = 10
	frameBorder   = 1
)

type monitorState struct {
	x, y int
	mode platform.VideoMode
	ramp platform.GammaRamp
}

// Backend is the headless backend.
type Backend struct {
	host platform.Host

	clipboard string
	cursorX   float64
	cursorY   float64
	focused   event.WindowID

	queue chan event.Event
}

var _ platform.Backend = (*Backend)(nil)

// New returns an unconnected backend.
func New() *Backend {
	return &Backend{queue: make(chan event.Event, queueCapacity)}
}

// Candidate returns the probe list entry for this backend. It always
// connects.
func Candidate() platform.Candidate {
	return platform.Candidate{
		ID: platform.Null,
		Connect: func() (platform.Backend, error) {
			return New(), nil
		},
	}
}

func (b *Backend) ID() platform.ID { return platform.Null }
func (b *Backend) Name() string    { return "null" }

func (b *Backend) Init(host platform.Host) error {
	b.host = host
	if b.queue == nil {
		b.queue = make(chan event.Event, queueCapacity)
	}

	dpi := float64(monitorDPI)
	widthMM := int(monitorWidth * 25.4 / dpi)
	heightMM := int(monitorHeight * 25.4 / dpi)
	m := host.NewMonitor("Null SuperNoop 0", widthMM, heightMM)
	ramp := platform.GammaRamp{
		Red:   make([]uint16, gammaRampSize),
		Green: make([]uint16, gammaRampSize),
		Blue:  make([]uint16, gammaRampSize),
	}
	for i := 0; i < gammaRampSize; i++ {
		v := uint16(float64(i) / float64(gammaRampSize-1) * 65535)
		ramp.Red[i], ramp.Green[i], ramp.Blue[i] = v, v, v
	}
	m.Platform = &monitorState{mode: defaultMode(), ramp: ramp}
	host.InputMonitor(m, true, platform.InsertFirst)
	host.Logger().Debug("null platform initialized")
	return nil
}

func (b *Backend) Terminate() {
	b.clipboard = ""
	b.focused = 0
}

func defaultMode() platform.VideoMode {
	return platform.VideoMode{
		Width:       monitorWidth,
		Height:      monitorHeight,
		RedBits:     8,
		GreenBits:   8,
		BlueBits:    8,
		RefreshRate: 60,
	}
}

func monitorOf(m *platform.Monitor) *monitorState {
	return m.Platform.(*monitorState)
}

func (b *Backend) FreeMonitor(m *platform.Monitor) {
	m.Platform = nil
}

func (b *Backend) MonitorPos(m *platform.Monitor) (int, int) {
	s := monitorOf(m)
	return s.x, s.y
}

func (b *Backend) MonitorContentScale(m *platform.Monitor) (float32, float32) {
	return 1, 1
}

func (b *Backend) MonitorWorkarea(m *platform.Monitor) platform.Rect {
	s := monitorOf(m)
	return platform.Rect{X: s.x, Y: s.y + frameTitlebar, Width: s.mode.Width, Height: s.mode.Height - frameTitlebar}
}

func (b *Backend) VideoModes(m *platform.Monitor) ([]platform.VideoMode, error) {
	return []platform.VideoMode{monitorOf(m).mode}, nil
}

func (b *Backend) VideoMode(m *platform.Monitor) (platform.VideoMode, error) {
	return monitorOf(m).mode, nil
}

func (b *Backend) GammaRamp(m *platform.Monitor) (platform.GammaRamp, error) {
	s := monitorOf(m)
	return platform.GammaRamp{
		Red:   append([]uint16(nil), s.ramp.Red...),
		Green: append([]uint16(nil), s.ramp.Green...),
		Blue:  append([]uint16(nil), s.ramp.Blue...),
	}, nil
}

func (b *Backend) SetGammaRamp(m *platform.Monitor, ramp platform.GammaRamp) error {
	s := monitorOf(m)
	if ramp.Size() != s.ramp.Size() {
		return b.host.ReportError(platform.PlatformError, "Null: gamma ramp size must match current ramp size")
	}
	copy(s.ramp.Red, ramp.Red)
	copy(s.ramp.Green, ramp.Green)
	copy(s.ramp.Blue, ramp.Blue)
	return nil
}

func (b *Backend) CursorPos(w *platform.Window) (float64, float64) {
	s := windowOf(w)
	return b.cursorX - float64(s.x), b.cursorY - float64(s.y)
}

func (b *Backend) SetCursorPos(w *platform.Window, x, y float64) error {
	s := windowOf(w)
	b.cursorX = float64(s.x) + x
	b.cursorY = float64(s.y) + y
	return nil
}

func (b *Backend) SetCursorMode(w *platform.Window, mode event.CursorMode) error {
	return nil
}

func (b *Backend) SetRawMouseMotion(w *platform.Window, enabled bool) error {
	return nil
}

func (b *Backend) RawMouseMotionSupported() bool { return true }
func (b *Backend) KeyboardsSupported() bool      { return false }

func (b *Backend) CreateCursor(c *platform.Cursor, img platform.Image, xhot, yhot int) error {
	return nil
}

func (b *Backend) CreateStandardCursor(c *platform.Cursor, shape event.CursorShape) error {
	return nil
}

func (b *Backend) DestroyCursor(c *platform.Cursor) {}

func (b *Backend) SetCursor(w *platform.Window, c *platform.Cursor) error {
	return nil
}

var printableNames = map[event.KeyCode]string{
	event.KeyApostrophe: "'", event.KeyComma: ",", event.KeyMinus: "-",
	event.KeyPeriod: ".", event.KeySlash: "/", event.KeySemicolon: ";",
	event.KeyEqual: "=", event.KeyLeftBracket: "[", event.KeyRightBracket: "]",
	event.KeyBackslash: "\\", event.KeyGraveAccent: "`", event.KeyWorld1: "world 1",
	event.KeyWorld2: "world 2", event.KeyKPDecimal: ".", event.KeyKPDivide: "/",
	event.KeyKPMultiply: "*", event.KeyKPSubtract: "-", event.KeyKPAdd: "+",
	event.KeyKPEqual: "=",
}

// ScancodeName names printable keys. Scancodes equal key codes here.
func (b *Backend) ScancodeName(scancode int) (string, error) {
	key := event.KeyCode(scancode)
	if !key.Valid() {
		return "", b.host.ReportError(platform.InvalidValue, "invalid scancode %d", scancode)
	}
	switch {
	case key >= event.KeyA && key <= event.KeyZ:
		return strings.ToLower(key.String()), nil
	case key >= event.Key0 && key <= event.Key9:
		return key.String(), nil
	case key >= event.KeyKP0 && key <= event.KeyKP9:
		return string(rune('0' + key - event.KeyKP0)), nil
	}
	return printableNames[key], nil
}

func (b *Backend) KeyScancode(key event.KeyCode) int {
	return int(key)
}

func (b *Backend) SetClipboardString(s string) error {
	b.clipboard = s
	return nil
}

func (b *Backend) ClipboardString() (string, error) {
	return b.clipboard, nil
}

func (b *Backend) InitJoysticks() bool { return true }
func (b *Backend) TerminateJoysticks() {}

func (b *Backend) PollJoystick(j *platform.Joystick, mode platform.JoystickPollMode) bool {
	return false
}

func (b *Backend) MappingName() string                  { return "" }
func (b *Backend) UpdateGamepadGUID(guid string) string { return guid }

func (b *Backend) EGLPlatform() (int, []int32)                { return platform.EGLPlatformNone, nil }
func (b *Backend) EGLNativeDisplay() uintptr                  { return 0 }
func (b *Backend) EGLNativeWindow(w *platform.Window) uintptr { return uintptr(w.ID) }

func (b *Backend) RequiredInstanceExtensions() []string {
	loader := b.host.VulkanLoader()
	if loader == nil || !loader.InstanceExtensionSupported("VK_EXT_headless_surface") {
		return nil
	}
	return []string{"VK_KHR_surface", "VK_EXT_headless_surface"}
}

func (b *Backend) PresentationSupport(instance, device uintptr, queueFamily uint32) (bool, error) {
	return true, nil
}

func (b *Backend) CreateWindowSurface(instance uintptr, w *platform.Window, allocator uintptr) (uintptr, error) {
	loader := b.host.VulkanLoader()
	if loader == nil {
		return 0, b.host.ReportError(platform.APIUnavailable, "Null: Vulkan loader not found")
	}
	native := platform.NativeSurface{Platform: platform.Null, Window: uintptr(w.ID), Instance: instance}
	surface, err := loader.CreateSurface(instance, native, allocator)
	if err != nil {
		return 0, b.host.ReportError(platform.APIUnavailable, "Null: failed to create Vulkan surface: %v", err)
	}
	return surface, nil
}
