package x11

import (
	"time"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
)

const eventQueueSize = 256

// queuedEvent is one reply of xgb's WaitForEvent.
type queuedEvent struct {
	ev  xgb.Event
	err xgb.Error
}

// readEvents forwards every event from next until the connection closes or
// done is closed. xgb has no wait with a timeout, so the pump selects on
// out instead.
func readEvents(next func() (xgb.Event, xgb.Error), out chan<- queuedEvent, done <-chan struct{}) {
	defer close(out)
	for {
		ev, err := next()
		if ev == nil && err == nil {
			return
		}
		select {
		case out <- queuedEvent{ev: ev, err: err}:
		case <-done:
			return
		}
	}
}

func (b *Backend) PollEvents() {
	b.handleEvents(0)
}

func (b *Backend) WaitEvents() {
	b.handleEvents(-1)
}

func (b *Backend) WaitEventsTimeout(timeout time.Duration) {
	b.handleEvents(timeout)
}

// PostEmptyEvent sends a client message to the helper window. It is safe
// to call from any goroutine.
func (b *Backend) PostEmptyEvent() {
	if b.conn == nil || b.helper == 0 {
		return
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: b.helper,
		Type:   b.wakeupAtom,
		Data:   xproto.ClientMessageDataUnionData32New(make([]uint32, 5)),
	}
	xproto.SendEvent(b.conn.Conn(), false, b.helper, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// handleEvents waits up to timeout for the first event, then drains the
// queue. A negative timeout waits forever and zero does not wait.
func (b *Backend) handleEvents(timeout time.Duration) {
	if q, ok := b.next(timeout); ok {
		b.handle(q)
	}
	for {
		q, ok := b.next(0)
		if !ok {
			break
		}
		b.handle(q)
	}
	b.recenterDisabledCursor()
}

// next returns the next event, taking events put back by peek first.
func (b *Backend) next(timeout time.Duration) (queuedEvent, bool) {
	if len(b.pending) > 0 {
		q := b.pending[0]
		b.pending = b.pending[1:]
		return q, true
	}
	if b.events == nil || b.lost {
		return queuedEvent{}, false
	}

	var expired <-chan time.Time
	if timeout == 0 {
		select {
		case q, ok := <-b.events:
			return b.received(q, ok)
		default:
			return queuedEvent{}, false
		}
	}
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case q, ok := <-b.events:
		return b.received(q, ok)
	case <-expired:
		return queuedEvent{}, false
	}
}

func (b *Backend) received(q queuedEvent, ok bool) (queuedEvent, bool) {
	if !ok {
		b.connectionLost()
		return queuedEvent{}, false
	}
	return q, true
}

// peek returns the next event without consuming it.
func (b *Backend) peek() (queuedEvent, bool) {
	q, ok := b.next(0)
	if ok {
		b.pending = append([]queuedEvent{q}, b.pending...)
	}
	return q, ok
}

// connectionLost turns a closed display connection into close requests.
func (b *Backend) connectionLost() {
	if b.lost {
		return
	}
	b.lost = true
	b.host.ReportError(platform.PlatformError, "X11: the display connection was lost")
	for _, w := range b.host.Windows() {
		b.host.InputWindowCloseRequest(w)
	}
}

func (b *Backend) handle(q queuedEvent) {
	if q.err != nil {
		b.host.Logger().Debug("x11 protocol error", "error", q.err)
		return
	}
	b.processEvent(q.ev)
}

func (b *Backend) processEvent(ev xgb.Event) {
	switch e := ev.(type) {
	case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
		b.pollMonitors()
		return
	case xproto.MappingNotifyEvent:
		if e.Request == xproto.MappingKeyboard || e.Request == xproto.MappingModifier {
			keybind.Initialize(b.conn.XUtil)
			b.buildKeyTables()
		}
		return
	}

	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		if w := b.windowFor(e.Event); w != nil {
			b.keyPress(w, e)
		}
	case xproto.KeyReleaseEvent:
		if w := b.windowFor(e.Event); w != nil {
			b.keyRelease(w, e)
		}
	case xproto.ButtonPressEvent:
		if w := b.windowFor(e.Event); w != nil {
			b.buttonPress(w, e.Detail, e.State)
		}
	case xproto.ButtonReleaseEvent:
		if w := b.windowFor(e.Event); w != nil {
			b.buttonRelease(w, e.Detail, e.State)
		}
	case xproto.MotionNotifyEvent:
		if w := b.windowFor(e.Event); w != nil {
			b.motion(w, float64(e.EventX), float64(e.EventY))
		}
	case xproto.EnterNotifyEvent:
		if w := b.windowFor(e.Event); w != nil {
			b.enter(w, float64(e.EventX), float64(e.EventY))
		}
	case xproto.LeaveNotifyEvent:
		if w := b.windowFor(e.Event); w != nil {
			windowOf(w).hovered = false
			b.host.InputCursorEnter(w, false)
		}
	case xproto.FocusInEvent:
		if w := b.windowFor(e.Event); w != nil && !grabMode(e.Mode) {
			b.focusIn(w)
		}
	case xproto.FocusOutEvent:
		if w := b.windowFor(e.Event); w != nil && !grabMode(e.Mode) {
			b.focusOut(w)
		}
	case xproto.ExposeEvent:
		if w := b.windowFor(e.Window); w != nil {
			b.host.InputWindowDamage(w)
		}
	case xproto.ConfigureNotifyEvent:
		if w := b.windowFor(e.Window); w != nil {
			b.configure(w, int(e.Width), int(e.Height))
		}
	case xproto.ClientMessageEvent:
		b.clientMessage(e)
	case xproto.PropertyNotifyEvent:
		if w := b.windowFor(e.Window); w != nil && e.State == xproto.PropertyNewValue {
			b.propertyChanged(w, e.Atom)
		}
	}
}

// grabMode reports focus changes caused by keyboard grabs, which do not
// change the focused window.
func grabMode(mode byte) bool {
	return mode == xproto.NotifyModeGrab || mode == xproto.NotifyModeUngrab
}

func (b *Backend) keyPress(w *platform.Window, e xproto.KeyPressEvent) {
	keycode := int(e.Detail)
	mods := translateState(e.State, b.numLockMask)
	b.host.InputKey(w, b.keys.key(keycode), keycode, event.Press, mods)
	if w.Destroyed() {
		return
	}

	sym := chooseKeysym(b.lookup(e.Detail, 0), b.lookup(e.Detail, 1), e.State, b.numLockMask)
	if r := keysymRune(sym); r != 0 {
		plain := mods&(event.ModControl|event.ModAlt) == 0
		b.host.InputChar(w, r, mods, plain)
	}
}

// keyRelease drops the release half of a server-generated key repeat: a
// release immediately followed by a press of the same key at the same time.
func (b *Backend) keyRelease(w *platform.Window, e xproto.KeyReleaseEvent) {
	if next, ok := b.peek(); ok {
		if press, ok := next.ev.(xproto.KeyPressEvent); ok && isRepeat(e, press) {
			return
		}
	}
	keycode := int(e.Detail)
	mods := translateState(e.State, b.numLockMask)
	b.host.InputKey(w, b.keys.key(keycode), keycode, event.Release, mods)
}

func isRepeat(release xproto.KeyReleaseEvent, press xproto.KeyPressEvent) bool {
	return press.Event == release.Event && press.Detail == release.Detail && press.Time == release.Time
}

// lookup returns a keysym of the current keyboard mapping.
func (b *Backend) lookup(keycode xproto.Keycode, column int) xproto.Keysym {
	if b.keysym != nil {
		return b.keysym(keycode, column)
	}
	return keybind.KeysymGet(b.conn.XUtil, keycode, byte(column))
}

// Core button numbers.
const (
	xButtonLeft       = 1
	xButtonMiddle     = 2
	xButtonRight      = 3
	xButtonWheelUp    = 4
	xButtonWheelDown  = 5
	xButtonWheelLeft  = 6
	xButtonWheelRight = 7
)

// pointerButton is a decoded core button: either a mouse button or one
// step of a scroll wheel.
type pointerButton struct {
	button  event.Button
	scroll  bool
	xoffset float64
	yoffset float64
}

func decodeButton(detail xproto.Button) pointerButton {
	switch detail {
	case xButtonLeft:
		return pointerButton{button: event.ButtonLeft}
	case xButtonMiddle:
		return pointerButton{button: event.ButtonMiddle}
	case xButtonRight:
		return pointerButton{button: event.ButtonRight}
	case xButtonWheelUp:
		return pointerButton{scroll: true, yoffset: 1}
	case xButtonWheelDown:
		return pointerButton{scroll: true, yoffset: -1}
	case xButtonWheelLeft:
		return pointerButton{scroll: true, xoffset: 1}
	case xButtonWheelRight:
		return pointerButton{scroll: true, xoffset: -1}
	}
	// X buttons 8 and up follow the four wheel buttons and map to Button4 on.
	return pointerButton{button: event.Button(int(detail) - int(xButtonLeft) - 4)}
}

func (b *Backend) buttonPress(w *platform.Window, detail xproto.Button, state uint16) {
	p := decodeButton(detail)
	if p.scroll {
		b.host.InputScroll(w, p.xoffset, p.yoffset)
		return
	}
	b.host.InputMouseClick(w, p.button, event.Press, translateState(state, b.numLockMask))
}

func (b *Backend) buttonRelease(w *platform.Window, detail xproto.Button, state uint16) {
	p := decodeButton(detail)
	if p.scroll {
		return
	}
	b.host.InputMouseClick(w, p.button, event.Release, translateState(state, b.numLockMask))
}

func (b *Backend) motion(w *platform.Window, x, y float64) {
	s := windowOf(w)
	if w.CursorMode == event.CursorDisabled {
		if b.disabledCursorWindow != w {
			return
		}
		dx := x - s.lastCursorX
		dy := y - s.lastCursorY
		b.host.InputCursorPos(w, w.VirtualCursorX+dx, w.VirtualCursorY+dy)
	} else {
		b.host.InputCursorPos(w, x, y)
	}
	s.lastCursorX, s.lastCursorY = x, y
}

func (b *Backend) enter(w *platform.Window, x, y float64) {
	s := windowOf(w)
	s.hovered = true
	if w.CursorMode == event.CursorHidden {
		b.updateCursorImage(w)
	}
	b.host.InputCursorEnter(w, true)
	b.host.InputCursorPos(w, x, y)
	s.lastCursorX, s.lastCursorY = x, y
}

func (b *Backend) focusIn(w *platform.Window) {
	if w.CursorMode == event.CursorDisabled {
		b.disableCursor(w)
	}
	b.host.InputWindowFocus(w, true)
}

func (b *Backend) focusOut(w *platform.Window) {
	if w.CursorMode == event.CursorDisabled {
		b.enableCursor(w)
	}
	if w.Monitor != 0 && w.AutoIconify {
		_ = b.IconifyWindow(w)
	}
	b.host.InputWindowFocus(w, false)
}

func (b *Backend) configure(w *platform.Window, width, height int) {
	s := windowOf(w)
	if width != s.width || height != s.height {
		s.width, s.height = width, height
		b.host.InputFramebufferSize(w, width, height)
		b.host.InputWindowSize(w, width, height)
	}
	if b.conn == nil {
		return
	}
	// The event is relative to the frame once a window manager has
	// reparented the window, so ask for root coordinates.
	pos, err := xproto.TranslateCoordinates(b.conn.Conn(), s.id, b.conn.Root, 0, 0).Reply()
	if err != nil {
		return
	}
	x, y := int(pos.DstX), int(pos.DstY)
	if x != s.xpos || y != s.ypos {
		s.xpos, s.ypos = x, y
		b.host.InputWindowPos(w, x, y)
	}
}

func (b *Backend) clientMessage(e xproto.ClientMessageEvent) {
	if e.Type != b.protocolsAtom || len(e.Data.Data32) == 0 {
		return
	}
	w := b.windowFor(e.Window)
	if w == nil {
		return
	}
	switch xproto.Atom(e.Data.Data32[0]) {
	case b.deleteAtom:
		b.host.InputWindowCloseRequest(w)
	case b.pingAtom:
		// The window manager checks that the application still responds.
		reply := e
		reply.Window = b.conn.Root
		xproto.SendEvent(b.conn.Conn(), false, b.conn.Root,
			xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
			string(reply.Bytes()))
	}
}

func (b *Backend) propertyChanged(w *platform.Window, atom xproto.Atom) {
	s := windowOf(w)
	switch atom {
	case b.wmStateAtom:
		state, err := icccm.WmStateGet(b.conn.XUtil, s.id)
		if err != nil || (state.State != wmStateIconic && state.State != wmStateNormal) {
			return
		}
		iconified := state.State == wmStateIconic
		if iconified == s.iconified {
			return
		}
		if w.Monitor != 0 {
			if iconified {
				b.releaseMonitor(w)
			} else {
				b.acquireMonitor(w)
			}
		}
		s.iconified = iconified
		b.host.InputWindowIconify(w, iconified)
	case b.netStateAtom:
		maximized := b.WindowMaximized(w)
		if maximized != s.maximized {
			s.maximized = maximized
			b.host.InputWindowMaximize(w, maximized)
		}
	}
}

// recenterDisabledCursor keeps a captured cursor in the middle of its
// window so relative motion never hits the screen edge.
func (b *Backend) recenterDisabledCursor() {
	w := b.disabledCursorWindow
	if w == nil || w.Destroyed() {
		return
	}
	s := windowOf(w)
	cx, cy := float64(s.width/2), float64(s.height/2)
	if s.lastCursorX != cx || s.lastCursorY != cy {
		_ = b.SetCursorPos(w, cx, cy)
	}
}
