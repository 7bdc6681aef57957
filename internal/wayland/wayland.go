//go:build linux

// Package wayland implements the Wayland backend on top of the wire
// protocol in internal/wl. Windows are xdg toplevels; decorations are drawn
// with subsurfaces unless the compositor offers server-side ones.
package wayland

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/runtimepath"
	"github.com/1broseidon/hatch/internal/wayland/xcursor"
	"github.com/1broseidon/hatch/internal/wl"
	"golang.org/x/sys/unix"
)

// Decoration policies accepted in Options.Decorations.
const (
	DecorationsAuto   = "auto"
	DecorationsClient = "client"
	DecorationsNone   = "none"
)

const defaultCursorSize = 24

// Options tune the backend. The zero value selects the defaults.
type Options struct {
	// Decorations is auto, client or none. Auto prefers server-side
	// decorations when the compositor offers them.
	Decorations string
	// CursorTheme overrides XCURSOR_THEME.
	CursorTheme string
	// CursorSize overrides XCURSOR_SIZE.
	CursorSize int
	// DecorationColor is the RGBA colour of client-side decorations.
	DecorationColor [4]uint8
}

var defaultDecorationColor = [4]uint8{224, 224, 224, 255}

// Backend is the Wayland backend.
type Backend struct {
	host platform.Host
	opts Options

	conn     *wl.Conn
	display  *wl.Display
	registry *wl.Registry

	compositor             *wl.Compositor
	subcompositor          *wl.Subcompositor
	shm                    *wl.Shm
	seat                   *wl.Seat
	dataDeviceManager      *wl.DataDeviceManager
	dataDevice             *wl.DataDevice
	wmBase                 *wl.WmBase
	decorationManager      *wl.DecorationManager
	viewporter             *wl.Viewporter
	relativePointerManager *wl.RelativePointerManager
	pointerConstraints     *wl.PointerConstraints
	idleInhibitManager     *wl.IdleInhibitManager

	outputs  map[uint32]*outputState
	surfaces map[*wl.Surface]surfaceOwner

	seatState
	cursors cursorState
	clip    clipboardState

	keyRepeatTimerfd int
	cursorTimerfd    int
}

var (
	_ platform.Backend        = (*Backend)(nil)
	_ platform.AsyncClipboard = (*Backend)(nil)
)

// Connect opens the compositor socket named by the environment.
func Connect(opts Options) (*Backend, error) {
	sock, err := runtimepath.WaylandSocketPath()
	if err != nil {
		return nil, err
	}
	var conn *wl.Conn
	if sock.FD >= 0 {
		conn, err = wl.NewConn(sock.FD)
	} else {
		conn, err = wl.DialPath(sock.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("wayland: %w", err)
	}
	return New(conn, opts), nil
}

// New returns a backend over an established connection.
func New(conn *wl.Conn, opts Options) *Backend {
	if opts.Decorations == "" {
		opts.Decorations = DecorationsAuto
	}
	if opts.DecorationColor == ([4]uint8{}) {
		opts.DecorationColor = defaultDecorationColor
	}
	return &Backend{
		opts:             opts,
		conn:             conn,
		outputs:          make(map[uint32]*outputState),
		surfaces:         make(map[*wl.Surface]surfaceOwner),
		keyRepeatTimerfd: -1,
		cursorTimerfd:    -1,
	}
}

// Candidate returns the probe list entry for this backend.
func Candidate(opts Options) platform.Candidate {
	return platform.Candidate{
		ID: platform.Wayland,
		Connect: func() (platform.Backend, error) {
			return Connect(opts)
		},
	}
}

func (b *Backend) ID() platform.ID { return platform.Wayland }
func (b *Backend) Name() string    { return "wayland" }

func (b *Backend) Init(host platform.Host) error {
	b.host = host
	b.display = b.conn.Display()

	registry, err := b.display.GetRegistry()
	if err != nil {
		return host.ReportError(platform.PlatformError, "Wayland: failed to get registry: %v", err)
	}
	registry.OnGlobal = b.handleGlobal
	registry.OnGlobalRemove = b.handleGlobalRemove
	b.registry = registry

	// The first round trip announces the globals, the second delivers the
	// initial state of the bound outputs and seat.
	for i := 0; i < 2; i++ {
		if err := b.conn.Roundtrip(); err != nil {
			return host.ReportError(platform.PlatformError, "Wayland: initial round trip failed: %v", err)
		}
	}

	if b.wmBase == nil {
		return host.ReportError(platform.PlatformError, "Wayland: failed to find xdg-shell in your compositor")
	}
	if b.shm == nil {
		return host.ReportError(platform.PlatformError, "Wayland: failed to find wl_shm in your compositor")
	}
	if b.compositor == nil {
		return host.ReportError(platform.PlatformError, "Wayland: failed to find wl_compositor in your compositor")
	}

	if b.seat != nil && b.dataDeviceManager != nil {
		if err := b.createDataDevice(); err != nil {
			return host.ReportError(platform.PlatformError, "Wayland: failed to create data device: %v", err)
		}
	}

	if b.keyRepeatTimerfd, err = newTimerfd(); err != nil {
		return host.ReportError(platform.PlatformError, "Wayland: failed to create key repeat timer: %v", err)
	}
	if b.cursorTimerfd, err = newTimerfd(); err != nil {
		return host.ReportError(platform.PlatformError, "Wayland: failed to create cursor timer: %v", err)
	}

	b.loadCursorThemes()
	b.flushDisplay()
	host.Logger().Debug("wayland platform initialized",
		"outputs", len(b.outputs),
		"seat", b.seat != nil,
		"server_decorations", b.decorationManager != nil)
	return nil
}

// maxVersion caps the interface versions this backend speaks.
var maxVersion = map[string]uint32{
	"wl_compositor":                   4,
	"wl_subcompositor":                1,
	"wl_shm":                          1,
	"wl_output":                       3,
	"wl_seat":                         4,
	"wl_data_device_manager":          1,
	"xdg_wm_base":                     1,
	"zxdg_decoration_manager_v1":      1,
	"wp_viewporter":                   1,
	"zwp_relative_pointer_manager_v1": 1,
	"zwp_pointer_constraints_v1":      1,
	"zwp_idle_inhibit_manager_v1":     1,
}

func (b *Backend) handleGlobal(name uint32, iface string, version uint32) {
	limit, ok := maxVersion[iface]
	if !ok {
		return
	}
	version = min(version, limit)

	var proxy wl.Proxy
	switch iface {
	case "wl_compositor":
		b.compositor = &wl.Compositor{}
		proxy = b.compositor
	case "wl_subcompositor":
		b.subcompositor = &wl.Subcompositor{}
		proxy = b.subcompositor
	case "wl_shm":
		b.shm = &wl.Shm{}
		proxy = b.shm
	case "wl_output":
		b.addOutput(name, version)
		return
	case "wl_seat":
		if b.seat != nil {
			return
		}
		b.seat = &wl.Seat{OnCapabilities: b.handleSeatCapabilities}
		proxy = b.seat
	case "wl_data_device_manager":
		if b.dataDeviceManager != nil {
			return
		}
		b.dataDeviceManager = &wl.DataDeviceManager{}
		proxy = b.dataDeviceManager
	case "xdg_wm_base":
		b.wmBase = &wl.WmBase{}
		proxy = b.wmBase
	case "zxdg_decoration_manager_v1":
		b.decorationManager = &wl.DecorationManager{}
		proxy = b.decorationManager
	case "wp_viewporter":
		b.viewporter = &wl.Viewporter{}
		proxy = b.viewporter
	case "zwp_relative_pointer_manager_v1":
		b.relativePointerManager = &wl.RelativePointerManager{}
		proxy = b.relativePointerManager
	case "zwp_pointer_constraints_v1":
		b.pointerConstraints = &wl.PointerConstraints{}
		proxy = b.pointerConstraints
	case "zwp_idle_inhibit_manager_v1":
		b.idleInhibitManager = &wl.IdleInhibitManager{}
		proxy = b.idleInhibitManager
	}
	if err := b.registry.Bind(name, proxy, version); err != nil {
		b.host.Logger().Debug("wayland bind failed", "interface", iface, "error", err)
	}
}

func (b *Backend) handleGlobalRemove(name uint32) {
	out, ok := b.outputs[name]
	if !ok {
		return
	}
	delete(b.outputs, name)
	if out.monitor != nil {
		b.host.InputMonitor(out.monitor, false, platform.InsertLast)
		return
	}
	out.output.Release()
}

func newTimerfd() (int, error) {
	return unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
}

func (b *Backend) loadCursorThemes() {
	name := b.opts.CursorTheme
	if name == "" {
		name = os.Getenv("XCURSOR_THEME")
	}
	size := b.opts.CursorSize
	if size <= 0 {
		size = defaultCursorSize
		if env := os.Getenv("XCURSOR_SIZE"); env != "" {
			if v, err := strconv.Atoi(env); err == nil && v > 0 && v < 2*1024 {
				size = v
			}
		}
	}
	b.cursors.theme = xcursor.LoadTheme(name, size)
	b.cursors.themeHiDPI = xcursor.LoadTheme(name, 2*size)
}

func (b *Backend) Terminate() {
	if b.conn == nil {
		return
	}
	b.cancelClipboardReads(errors.New("Wayland: platform terminated"))
	b.releaseCursorSurface()

	for name, out := range b.outputs {
		out.output.Release()
		delete(b.outputs, name)
	}
	if b.clip.source != nil {
		b.clip.source.Destroy()
		b.clip.source = nil
	}
	b.destroyOffer(b.clip.selectionOffer)
	b.destroyOffer(b.clip.dragOffer)
	b.clip.selectionOffer, b.clip.dragOffer = nil, nil
	if b.dataDevice != nil {
		b.dataDevice.Release()
		b.dataDevice = nil
	}
	b.releasePointer()
	b.releaseKeyboard()
	if b.seat != nil {
		b.seat.Release()
		b.seat = nil
	}

	if b.subcompositor != nil {
		b.subcompositor.Destroy()
		b.subcompositor = nil
	}
	if b.viewporter != nil {
		b.viewporter.Destroy()
		b.viewporter = nil
	}
	if b.decorationManager != nil {
		b.decorationManager.Destroy()
		b.decorationManager = nil
	}
	if b.wmBase != nil {
		b.wmBase.Destroy()
		b.wmBase = nil
	}
	if b.relativePointerManager != nil {
		b.relativePointerManager.Destroy()
		b.relativePointerManager = nil
	}
	if b.pointerConstraints != nil {
		b.pointerConstraints.Destroy()
		b.pointerConstraints = nil
	}
	if b.idleInhibitManager != nil {
		b.idleInhibitManager.Destroy()
		b.idleInhibitManager = nil
	}
	if b.registry != nil {
		b.registry.Destroy()
		b.registry = nil
	}
	// Bound without a destructor request.
	b.dataDeviceManager = nil
	b.shm = nil
	b.compositor = nil

	b.conn.Flush()
	b.conn.Close()
	b.conn = nil
	b.display = nil

	if b.keyRepeatTimerfd >= 0 {
		unix.Close(b.keyRepeatTimerfd)
		b.keyRepeatTimerfd = -1
	}
	if b.cursorTimerfd >= 0 {
		unix.Close(b.cursorTimerfd)
		b.cursorTimerfd = -1
	}
	b.seatState.keymap = ""
}

// connectionLost reports err and asks every window to close, which is the
// only way left to tell the application the display went away.
func (b *Backend) connectionLost(err error) {
	var perr *wl.ProtocolError
	if errors.As(err, &perr) {
		b.host.ReportError(platform.PlatformError, "Wayland: %v", perr)
	} else {
		b.host.ReportError(platform.PlatformError, "Wayland: connection lost: %v", err)
	}
	for _, w := range b.host.Windows() {
		b.host.InputWindowCloseRequest(w)
	}
}

// windowForSurface maps a surface back to its window, or nil.
func (b *Backend) windowForSurface(s *wl.Surface) (*platform.Window, decorationPart) {
	if s == nil {
		return nil, partNone
	}
	owner, ok := b.surfaces[s]
	if !ok {
		return nil, partNone
	}
	return owner.window, owner.part
}

type surfaceOwner struct {
	window *platform.Window
	part   decorationPart
}

func (b *Backend) KeyboardsSupported() bool { return false }

func (b *Backend) InitJoysticks() bool { return true }
func (b *Backend) TerminateJoysticks() {}

func (b *Backend) PollJoystick(j *platform.Joystick, mode platform.JoystickPollMode) bool {
	return false
}

func (b *Backend) MappingName() string                  { return "Linux" }
func (b *Backend) UpdateGamepadGUID(guid string) string { return guid }

