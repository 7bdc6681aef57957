//go:build linux

package wayland

import (
	"bytes"
	"time"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/wl"
	"golang.org/x/sys/unix"
)

const btnLeft = 0x110

type seatState struct {
	pointer  *wl.Pointer
	keyboard *wl.Keyboard

	// serial is the latest input serial, used for selection and
	// interactive move/resize requests.
	serial             uint32
	pointerEnterSerial uint32

	pointerFocus       *platform.Window
	pointerPart        decorationPart
	pointerX, pointerY float64
	cursorPreviousName string

	keyboardFocus     *platform.Window
	keymap            string
	mods              event.ModifierKey
	keyRepeatRate     int32
	keyRepeatDelay    int32
	keyRepeatScancode uint32
}

func (b *Backend) handleSeatCapabilities(caps uint32) {
	if caps&wl.SeatCapabilityPointer != 0 && b.pointer == nil {
		p, err := b.seat.GetPointer()
		if err != nil {
			b.host.Logger().Debug("wayland get pointer failed", "error", err)
		} else {
			b.pointer = p
			p.OnEnter = b.pointerEnter
			p.OnLeave = b.pointerLeave
			p.OnMotion = b.pointerMotion
			p.OnButton = b.pointerButton
			p.OnAxis = b.pointerAxis
		}
	} else if caps&wl.SeatCapabilityPointer == 0 && b.pointer != nil {
		b.releasePointer()
	}

	if caps&wl.SeatCapabilityKeyboard != 0 && b.keyboard == nil {
		k, err := b.seat.GetKeyboard()
		if err != nil {
			b.host.Logger().Debug("wayland get keyboard failed", "error", err)
		} else {
			b.keyboard = k
			k.OnKeymap = b.keyboardKeymap
			k.OnEnter = b.keyboardEnter
			k.OnLeave = b.keyboardLeave
			k.OnKey = b.keyboardKey
			k.OnModifiers = b.keyboardModifiers
			k.OnRepeatInfo = b.keyboardRepeatInfo
		}
	} else if caps&wl.SeatCapabilityKeyboard == 0 && b.keyboard != nil {
		b.releaseKeyboard()
	}
}

func (b *Backend) releasePointer() {
	if b.pointer == nil {
		return
	}
	b.pointer.Release()
	b.pointer = nil
	b.pointerFocus = nil
}

func (b *Backend) releaseKeyboard() {
	if b.keyboard == nil {
		return
	}
	b.keyboard.Release()
	b.keyboard = nil
	b.keyboardFocus = nil
	if b.keyRepeatTimerfd >= 0 {
		setTimer(b.keyRepeatTimerfd, 0, 0)
	}
}

func (b *Backend) pointerEnter(serial uint32, surface *wl.Surface, x, y wl.Fixed) {
	w, part := b.windowForSurface(surface)
	if w == nil {
		return
	}
	b.serial = serial
	b.pointerEnterSerial = serial
	b.pointerFocus = w
	b.pointerPart = part
	b.pointerX, b.pointerY = x.Float(), y.Float()

	windowOf(w).hovered = true
	if part == partMain {
		b.applyCursor(w)
	}
	b.host.InputCursorEnter(w, true)
}

func (b *Backend) pointerLeave(serial uint32, surface *wl.Surface) {
	w := b.pointerFocus
	if w == nil {
		return
	}
	if s := windowOf(w); s != nil {
		s.hovered = false
	}
	b.serial = serial
	b.pointerFocus = nil
	b.cursorPreviousName = ""
	b.host.InputCursorEnter(w, false)
}

func (b *Backend) pointerMotion(_ uint32, sx, sy wl.Fixed) {
	w := b.pointerFocus
	if w == nil || w.CursorMode == event.CursorDisabled {
		return
	}
	x, y := sx.Float(), sy.Float()
	b.pointerX, b.pointerY = x, y

	if b.pointerPart == partMain {
		s := windowOf(w)
		s.cursorX, s.cursorY = x, y
		b.cursorPreviousName = ""
		b.host.InputCursorPos(w, x, y)
		return
	}
	width, _ := b.WindowSize(w)
	name := decorationCursor(b.pointerPart, x, y, width)
	if name != b.cursorPreviousName {
		b.setThemeCursor(w, name)
		b.cursorPreviousName = name
	}
}

func (b *Backend) pointerButton(serial, _, button, state uint32) {
	w := b.pointerFocus
	if w == nil {
		return
	}
	if b.pointerPart != partMain {
		if button == btnLeft && state == wl.PointerButtonStatePressed {
			b.beginInteractive(w, serial)
		}
		return
	}
	b.serial = serial
	action := event.Release
	if state == wl.PointerButtonStatePressed {
		action = event.Press
	}
	b.host.InputMouseClick(w, event.Button(int(button)-btnLeft), action, b.mods)
}

// beginInteractive starts a compositor-driven move or resize from a press
// on a decoration.
func (b *Backend) beginInteractive(w *platform.Window, serial uint32) {
	s := windowOf(w)
	if s.toplevel == nil {
		return
	}
	width, _ := b.WindowSize(w)
	edges := decorationEdges(b.pointerPart, b.pointerX, b.pointerY, width)
	if edges == wl.ResizeEdgeNone {
		s.toplevel.Move(b.seat, serial)
		return
	}
	s.toplevel.Resize(b.seat, serial, edges)
}

func (b *Backend) pointerAxis(_, axis uint32, value wl.Fixed) {
	w := b.pointerFocus
	if w == nil {
		return
	}
	offset := -value.Float() / 10
	switch axis {
	case wl.PointerAxisHorizontalScroll:
		b.host.InputScroll(w, offset, 0)
	case wl.PointerAxisVerticalScroll:
		b.host.InputScroll(w, 0, offset)
	}
}

// keyboardKeymap keeps the keymap source. Key translation itself uses the
// evdev tables in keys.go.
func (b *Backend) keyboardKeymap(format uint32, fd int, size uint32) {
	defer unix.Close(fd)
	if format != wl.KeyboardKeymapFormatXKBV1 || size == 0 {
		b.host.ReportError(platform.PlatformError, "Wayland: unknown keymap format %d", format)
		return
	}
	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		b.host.ReportError(platform.PlatformError, "Wayland: failed to map keymap: %v", err)
		return
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		b.keymap = string(data[:i])
	} else {
		b.keymap = string(data)
	}
	unix.Munmap(data)
}

// Keymap returns the XKB keymap source most recently sent by the compositor.
func (b *Backend) Keymap() string {
	return b.keymap
}

func (b *Backend) keyboardEnter(serial uint32, surface *wl.Surface, keys []uint32) {
	w, _ := b.windowForSurface(surface)
	if w == nil {
		return
	}
	b.serial = serial
	b.keyboardFocus = w
	b.host.InputWindowFocus(w, true)
}

func (b *Backend) keyboardLeave(serial uint32, surface *wl.Surface) {
	w := b.keyboardFocus
	if w == nil {
		return
	}
	setTimer(b.keyRepeatTimerfd, 0, 0)
	b.serial = serial
	b.keyboardFocus = nil
	b.host.InputWindowFocus(w, false)
}

func (b *Backend) keyboardKey(serial, _, scancode, state uint32) {
	w := b.keyboardFocus
	if w == nil {
		return
	}
	key := translateKey(scancode)
	action := event.Release
	if state == wl.KeyboardKeyStatePressed {
		action = event.Press
	}
	b.serial = serial
	b.host.InputKey(w, key, int(scancode), action, b.mods)

	if action == event.Press {
		b.inputText(w, scancode)
		if b.keyRepeatRate > 0 && keyRepeats(key) {
			b.keyRepeatScancode = scancode
			interval := time.Second / time.Duration(b.keyRepeatRate)
			delay := time.Duration(b.keyRepeatDelay) * time.Millisecond
			if delay <= 0 {
				delay = interval
			}
			setTimer(b.keyRepeatTimerfd, delay, interval)
		}
	} else if scancode == b.keyRepeatScancode {
		setTimer(b.keyRepeatTimerfd, 0, 0)
	}
}

func (b *Backend) inputText(w *platform.Window, scancode uint32) {
	r := translateChar(scancode, b.mods)
	if r == 0 {
		return
	}
	plain := b.mods&(event.ModControl|event.ModAlt) == 0
	b.host.InputChar(w, r, b.mods, plain)
}

func (b *Backend) keyboardModifiers(serial, depressed, latched, locked, group uint32) {
	b.serial = serial
	b.mods = decodeMods(depressed, latched, locked)
}

func (b *Backend) keyboardRepeatInfo(rate, delay int32) {
	b.keyRepeatRate = rate
	b.keyRepeatDelay = delay
}
