// Package x11 implements the X11 backend over the pure-Go xgb protocol
// bindings. Monitors come from RandR, window manager hints from xgbutil's
// ewmh and icccm packages and key symbols from keybind.
package x11

import (
	"fmt"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Options tune the backend. The zero value selects the defaults.
type Options struct {
	// Display overrides DISPLAY.
	Display string
	// ClassName is the WM_CLASS class of every window.
	ClassName string
}

// Backend is the X11 backend.
type Backend struct {
	host platform.Host
	opts Options

	conn *Connection

	randr  bool
	render bool
	shape  bool

	keys        *keyTables
	numLockMask uint16
	// keysym overrides the keybind lookup.
	keysym keysymLookup

	contentScale float32

	// helper receives the wake-up messages of PostEmptyEvent.
	helper        xproto.Window
	wakeupAtom    xproto.Atom
	protocolsAtom xproto.Atom
	deleteAtom    xproto.Atom
	pingAtom      xproto.Atom
	wmStateAtom   xproto.Atom
	netStateAtom  xproto.Atom

	windows map[xproto.Window]*platform.Window

	// acquired counts monitors held by fullscreen windows. The screen
	// saver is off while it is non-zero.
	acquired int
	saver    *xproto.GetScreenSaverReply

	hiddenCursor         xproto.Cursor
	cursorFont           xproto.Font
	disabledCursorWindow *platform.Window
	restoreCursorX       float64
	restoreCursorY       float64

	events  chan queuedEvent
	done    chan struct{}
	pending []queuedEvent
	lost    bool
}

var _ platform.Backend = (*Backend)(nil)

// Connect opens the X display named by the options or the environment.
func Connect(opts Options) (*Backend, error) {
	conn, err := NewConnection(opts.Display)
	if err != nil {
		return nil, fmt.Errorf("x11: %w", err)
	}
	return New(conn, opts), nil
}

// New returns a backend over an established connection.
func New(conn *Connection, opts Options) *Backend {
	if opts.ClassName == "" {
		opts.ClassName = "hatch"
	}
	return &Backend{
		opts:         opts,
		conn:         conn,
		windows:      make(map[xproto.Window]*platform.Window),
		contentScale: 1,
	}
}

// Candidate returns the probe list entry for this backend.
func Candidate(opts Options) platform.Candidate {
	return platform.Candidate{
		ID: platform.X11,
		Connect: func() (platform.Backend, error) {
			return Connect(opts)
		},
	}
}

func (b *Backend) ID() platform.ID { return platform.X11 }
func (b *Backend) Name() string    { return "x11" }

func (b *Backend) Init(host platform.Host) error {
	b.host = host
	conn := b.conn.Conn()

	if err := randr.Init(conn); err == nil {
		if v, err := randr.QueryVersion(conn, 1, 3).Reply(); err == nil &&
			(v.MajorVersion > 1 || v.MinorVersion >= 3) {
			b.randr = true
		}
	}
	b.render = render.Init(conn) == nil
	b.shape = shape.Init(conn) == nil

	atoms := []struct {
		dst  *xproto.Atom
		name string
	}{
		{&b.wakeupAtom, "_HATCH_WAKEUP"},
		{&b.protocolsAtom, "WM_PROTOCOLS"},
		{&b.deleteAtom, "WM_DELETE_WINDOW"},
		{&b.pingAtom, "_NET_WM_PING"},
		{&b.wmStateAtom, "WM_STATE"},
		{&b.netStateAtom, "_NET_WM_STATE"},
	}
	for _, a := range atoms {
		atom, err := b.conn.Atom(a.name)
		if err != nil {
			return host.ReportError(platform.PlatformError, "X11: %v", err)
		}
		*a.dst = atom
	}

	b.buildKeyTables()
	b.contentScale = b.readContentScale()

	if err := b.createHelperWindow(); err != nil {
		return host.ReportError(platform.PlatformError, "X11: failed to create helper window: %v", err)
	}
	if err := b.createHiddenCursor(); err != nil {
		return host.ReportError(platform.PlatformError, "X11: failed to create hidden cursor: %v", err)
	}
	if b.randr {
		randr.SelectInput(conn, b.conn.Root, randr.NotifyMaskScreenChange|randr.NotifyMaskOutputChange)
	}

	b.pollMonitors()

	b.events = make(chan queuedEvent, eventQueueSize)
	b.done = make(chan struct{})
	go readEvents(conn.WaitForEvent, b.events, b.done)

	host.Logger().Debug("x11 platform initialized",
		"randr", b.randr,
		"render", b.render,
		"shape", b.shape,
		"monitors", len(host.Monitors()))
	return nil
}

func (b *Backend) Terminate() {
	if b.conn == nil {
		return
	}
	conn := b.conn.Conn()
	if b.hiddenCursor != 0 {
		xproto.FreeCursor(conn, b.hiddenCursor)
		b.hiddenCursor = 0
	}
	if b.cursorFont != 0 {
		xproto.CloseFont(conn, b.cursorFont)
		b.cursorFont = 0
	}
	if b.helper != 0 {
		xproto.DestroyWindow(conn, b.helper)
		b.helper = 0
	}
	if b.done != nil {
		close(b.done)
		b.done = nil
	}
	b.conn.Close()
	b.conn = nil
}

// buildKeyTables reads the keyboard mapping and the modifier Num Lock is
// bound to.
func (b *Backend) buildKeyTables() {
	setup := xproto.Setup(b.conn.Conn())
	b.keys = newKeyTables(b.lookup, setup.MinKeycode, setup.MaxKeycode)
	b.numLockMask = b.modMaskForKeysym("Num_Lock")
}

func (b *Backend) modMaskForKeysym(keysym string) uint16 {
	xu := b.conn.XUtil
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

// createHelperWindow creates the unmapped window that receives wake-up
// messages.
func (b *Backend) createHelperWindow() error {
	conn := b.conn.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	// Input-only windows take their depth and visual from the parent.
	err = xproto.CreateWindowChecked(
		conn,
		0,
		wid,
		b.conn.Root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOnly,
		0,
		0,
		nil,
	).Check()
	if err != nil {
		return err
	}
	b.helper = wid
	return nil
}

// createHiddenCursor builds an invisible cursor from an empty 1x1 bitmap.
func (b *Backend) createHiddenCursor() error {
	conn := b.conn.Conn()
	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return err
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pix, xproto.Drawable(b.conn.Root), 1, 1).Check(); err != nil {
		return err
	}
	defer xproto.FreePixmap(conn, pix)

	cur, err := xproto.NewCursorId(conn)
	if err != nil {
		return err
	}
	err = xproto.CreateCursorChecked(conn, cur, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0).Check()
	if err != nil {
		return err
	}
	b.hiddenCursor = cur
	return nil
}

func (b *Backend) windowFor(win xproto.Window) *platform.Window {
	return b.windows[win]
}

func (b *Backend) KeyboardsSupported() bool { return false }

func (b *Backend) InitJoysticks() bool { return true }
func (b *Backend) TerminateJoysticks() {}

func (b *Backend) PollJoystick(j *platform.Joystick, mode platform.JoystickPollMode) bool {
	return false
}

func (b *Backend) MappingName() string                  { return "Linux" }
func (b *Backend) UpdateGamepadGUID(guid string) string { return guid }

func (b *Backend) ScancodeName(scancode int) (string, error) {
	if scancode < 0 || scancode > maxKeycode || b.keys.key(scancode) == event.KeyUnknown {
		return "", b.host.ReportError(platform.InvalidValue, "X11: invalid scancode %d", scancode)
	}
	sym := b.lookup(xproto.Keycode(scancode), 0)
	if r := keysymRune(sym); r != 0 {
		return string(r), nil
	}
	return "", nil
}

func (b *Backend) KeyScancode(key event.KeyCode) int {
	return b.keys.scancode(key)
}
