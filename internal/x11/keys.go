package x11

import (
	"unicode"
	"unicode/utf8"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/BurntSushi/xgb/xproto"
)

// X11 keycodes run from 8 to 255.
const maxKeycode = 255

// Keysyms of the keys that have a fixed position regardless of layout.
const (
	keysymBackSpace   = 0xff08
	keysymTab         = 0xff09
	keysymReturn      = 0xff0d
	keysymPause       = 0xff13
	keysymScrollLock  = 0xff14
	keysymSysReq      = 0xff15
	keysymEscape      = 0xff1b
	keysymHome        = 0xff50
	keysymLeft        = 0xff51
	keysymUp          = 0xff52
	keysymRight       = 0xff53
	keysymDown        = 0xff54
	keysymPageUp      = 0xff55
	keysymPageDown    = 0xff56
	keysymEnd         = 0xff57
	keysymPrint       = 0xff61
	keysymInsert      = 0xff63
	keysymMenu        = 0xff67
	keysymModeSwitch  = 0xff7e
	keysymNumLock     = 0xff7f
	keysymKPEnter     = 0xff8d
	keysymKPHome      = 0xff95
	keysymKPLeft      = 0xff96
	keysymKPUp        = 0xff97
	keysymKPRight     = 0xff98
	keysymKPDown      = 0xff99
	keysymKPPageUp    = 0xff9a
	keysymKPPageDown  = 0xff9b
	keysymKPEnd       = 0xff9c
	keysymKPInsert    = 0xff9e
	keysymKPDelete    = 0xff9f
	keysymKPEqual     = 0xffbd
	keysymKPMultiply  = 0xffaa
	keysymKPAdd       = 0xffab
	keysymKPSeparator = 0xffac
	keysymKPSubtract  = 0xffad
	keysymKPDecimal   = 0xffae
	keysymKPDivide    = 0xffaf
	keysymKP0         = 0xffb0
	keysymKP9         = 0xffb9
	keysymF1          = 0xffbe
	keysymF25         = 0xffd6
	keysymShiftL      = 0xffe1
	keysymShiftR      = 0xffe2
	keysymControlL    = 0xffe3
	keysymControlR    = 0xffe4
	keysymCapsLock    = 0xffe5
	keysymMetaL       = 0xffe7
	keysymMetaR       = 0xffe8
	keysymAltL        = 0xffe9
	keysymAltR        = 0xffea
	keysymSuperL      = 0xffeb
	keysymSuperR      = 0xffec
	keysymDelete      = 0xffff
	keysymISOLevel3   = 0xfe03
	keysymLess        = 0x003c
)

// specialKeys covers the keysyms that do not follow from the printable
// ASCII range.
var specialKeys = map[xproto.Keysym]event.KeyCode{
	keysymEscape:      event.KeyEscape,
	keysymTab:         event.KeyTab,
	keysymShiftL:      event.KeyLeftShift,
	keysymShiftR:      event.KeyRightShift,
	keysymControlL:    event.KeyLeftControl,
	keysymControlR:    event.KeyRightControl,
	keysymMetaL:       event.KeyLeftAlt,
	keysymAltL:        event.KeyLeftAlt,
	keysymModeSwitch:  event.KeyRightAlt,
	keysymISOLevel3:   event.KeyRightAlt,
	keysymMetaR:       event.KeyRightAlt,
	keysymAltR:        event.KeyRightAlt,
	keysymSuperL:      event.KeyLeftSuper,
	keysymSuperR:      event.KeyRightSuper,
	keysymMenu:        event.KeyMenu,
	keysymNumLock:     event.KeyNumLock,
	keysymCapsLock:    event.KeyCapsLock,
	keysymPrint:       event.KeyPrintScreen,
	keysymScrollLock:  event.KeyScrollLock,
	keysymPause:       event.KeyPause,
	keysymDelete:      event.KeyDelete,
	keysymBackSpace:   event.KeyBackspace,
	keysymReturn:      event.KeyEnter,
	keysymHome:        event.KeyHome,
	keysymEnd:         event.KeyEnd,
	keysymPageUp:      event.KeyPageUp,
	keysymPageDown:    event.KeyPageDown,
	keysymInsert:      event.KeyInsert,
	keysymLeft:        event.KeyLeft,
	keysymRight:       event.KeyRight,
	keysymDown:        event.KeyDown,
	keysymUp:          event.KeyUp,
	keysymKPDivide:    event.KeyKPDivide,
	keysymKPMultiply:  event.KeyKPMultiply,
	keysymKPSubtract:  event.KeyKPSubtract,
	keysymKPAdd:       event.KeyKPAdd,
	keysymKPSeparator: event.KeyKPDecimal,
	keysymKPDecimal:   event.KeyKPDecimal,
	keysymKPEqual:     event.KeyKPEqual,
	keysymKPEnter:     event.KeyKPEnter,
	keysymKPInsert:    event.KeyKP0,
	keysymKPEnd:       event.KeyKP1,
	keysymKPDown:      event.KeyKP2,
	keysymKPPageDown:  event.KeyKP3,
	keysymKPLeft:      event.KeyKP4,
	keysymKPRight:     event.KeyKP6,
	keysymKPHome:      event.KeyKP7,
	keysymKPUp:        event.KeyKP8,
	keysymKPPageUp:    event.KeyKP9,
	keysymKPDelete:    event.KeyKPDecimal,
	keysymLess:        event.KeyWorld1,
}

var printableKeys = map[xproto.Keysym]event.KeyCode{
	' ': event.KeySpace, '\'': event.KeyApostrophe, ',': event.KeyComma,
	'-': event.KeyMinus, '.': event.KeyPeriod, '/': event.KeySlash,
	';': event.KeySemicolon, '=': event.KeyEqual, '[': event.KeyLeftBracket,
	'\\': event.KeyBackslash, ']': event.KeyRightBracket, '`': event.KeyGraveAccent,
}

// keysymKey translates the keysym of a key. Keypad keysyms are looked up
// first since the numeric ones depend on the Num Lock state.
func keysymKey(sym xproto.Keysym) event.KeyCode {
	switch {
	case sym >= keysymKP0 && sym <= keysymKP9:
		return event.KeyKP0 + event.KeyCode(sym-keysymKP0)
	case sym >= keysymF1 && sym <= keysymF25:
		return event.KeyF1 + event.KeyCode(sym-keysymF1)
	case sym >= 'a' && sym <= 'z':
		return event.KeyA + event.KeyCode(sym-'a')
	case sym >= 'A' && sym <= 'Z':
		return event.KeyA + event.KeyCode(sym-'A')
	case sym >= '0' && sym <= '9':
		return event.Key0 + event.KeyCode(sym-'0')
	}
	if key, ok := specialKeys[sym]; ok {
		return key
	}
	if key, ok := printableKeys[sym]; ok {
		return key
	}
	return event.KeyUnknown
}

// keysymLookup returns the keysym in a column of the keyboard mapping.
type keysymLookup func(keycode xproto.Keycode, column int) xproto.Keysym

// keyTables maps X11 keycodes to keys and back.
type keyTables struct {
	keycodes  [maxKeycode + 1]event.KeyCode
	scancodes [event.KeyLast + 1]int
}

// newKeyTables builds the tables from the keyboard mapping. The second
// column is tried first so the keypad resolves to digits.
func newKeyTables(lookup keysymLookup, first, last xproto.Keycode) *keyTables {
	t := &keyTables{}
	for i := range t.keycodes {
		t.keycodes[i] = event.KeyUnknown
	}
	for i := range t.scancodes {
		t.scancodes[i] = -1
	}
	for kc := int(first); kc <= int(last) && kc <= maxKeycode; kc++ {
		key := event.KeyUnknown
		switch sym := lookup(xproto.Keycode(kc), 1); {
		case sym >= keysymKP0 && sym <= keysymKP9, sym == keysymKPSeparator, sym == keysymKPDecimal:
			key = keysymKey(sym)
		}
		if key == event.KeyUnknown {
			key = keysymKey(lookup(xproto.Keycode(kc), 0))
		}
		t.keycodes[kc] = key
		if key.Valid() && t.scancodes[key] < 0 {
			t.scancodes[key] = kc
		}
	}
	return t
}

func (t *keyTables) key(keycode int) event.KeyCode {
	if keycode < 0 || keycode > maxKeycode {
		return event.KeyUnknown
	}
	return t.keycodes[keycode]
}

func (t *keyTables) scancode(key event.KeyCode) int {
	if !key.Valid() {
		return -1
	}
	return t.scancodes[key]
}

// keysymRune converts a keysym to the character it produces, or 0.
// Latin-1 keysyms equal their code point; Unicode keysyms carry it in the
// low 24 bits.
func keysymRune(sym xproto.Keysym) rune {
	switch {
	case sym >= 0x20 && sym <= 0x7e, sym >= 0xa0 && sym <= 0xff:
		return rune(sym)
	case sym&0xff000000 == 0x01000000:
		r := rune(sym & 0x00ffffff)
		if utf8.ValidRune(r) {
			return r
		}
	case sym >= keysymKP0 && sym <= keysymKP9:
		return '0' + rune(sym-keysymKP0)
	}
	return 0
}

// Core protocol modifier masks.
const (
	maskShift   = xproto.ModMaskShift
	maskLock    = xproto.ModMaskLock
	maskControl = xproto.ModMaskControl
	maskMod1    = xproto.ModMask1
	maskMod4    = xproto.ModMask4
)

// translateState converts a core event state to modifier bits. numLock is
// the modifier mask Num_Lock is bound to, or 0.
func translateState(state uint16, numLock uint16) event.ModifierKey {
	var mods event.ModifierKey
	if state&maskShift != 0 {
		mods |= event.ModShift
	}
	if state&maskControl != 0 {
		mods |= event.ModControl
	}
	if state&maskMod1 != 0 {
		mods |= event.ModAlt
	}
	if state&maskMod4 != 0 {
		mods |= event.ModSuper
	}
	if state&maskLock != 0 {
		mods |= event.ModCapsLock
	}
	if numLock != 0 && state&numLock != 0 {
		mods |= event.ModNumLock
	}
	return mods
}

// keypad keysyms, which Num Lock switches between navigation and digits.
func isKeypad(sym xproto.Keysym) bool {
	return sym >= 0xff80 && sym <= 0xffbd
}

// chooseKeysym picks the keysym a key press produces from the first two
// columns of the keyboard mapping, following the core protocol rules for
// Shift, Lock and Num Lock.
func chooseKeysym(lower, upper xproto.Keysym, state, numLock uint16) xproto.Keysym {
	if upper == 0 {
		upper = keysymUpper(lower)
	}
	shift := state&maskShift != 0
	if numLock != 0 && state&numLock != 0 && isKeypad(upper) {
		if shift {
			return lower
		}
		return upper
	}
	switch {
	case shift:
		return keysymUpper(upper)
	case state&maskLock != 0:
		return keysymUpper(lower)
	}
	return lower
}

// keysymUpper returns the upper case keysym of a letter, or sym itself.
func keysymUpper(sym xproto.Keysym) xproto.Keysym {
	switch {
	case sym >= 'a' && sym <= 'z':
		return sym - 'a' + 'A'
	case sym >= 0xe0 && sym <= 0xfe && sym != 0xf7:
		return sym - 0x20
	case sym&0xff000000 == 0x01000000:
		return 0x01000000 | xproto.Keysym(unicode.ToUpper(rune(sym&0x00ffffff)))
	}
	return sym
}
