//go:build linux

package wayland

import (
	"unicode"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
)

// Scancodes are evdev key codes as delivered by wl_keyboard.key.
const maxScancode = 255

var (
	keycodes  [maxScancode + 1]event.KeyCode
	scancodes [event.KeyLast + 1]int
)

var evdevKeys = map[int]event.KeyCode{
	1: event.KeyEscape, 2: event.Key1, 3: event.Key2, 4: event.Key3,
	5: event.Key4, 6: event.Key5, 7: event.Key6, 8: event.Key7,
	9: event.Key8, 10: event.Key9, 11: event.Key0, 12: event.KeyMinus,
	13: event.KeyEqual, 14: event.KeyBackspace, 15: event.KeyTab,
	16: event.KeyQ, 17: event.KeyW, 18: event.KeyE, 19: event.KeyR,
	20: event.KeyT, 21: event.KeyY, 22: event.KeyU, 23: event.KeyI,
	24: event.KeyO, 25: event.KeyP, 26: event.KeyLeftBracket,
	27: event.KeyRightBracket, 28: event.KeyEnter, 29: event.KeyLeftControl,
	30: event.KeyA, 31: event.KeyS, 32: event.KeyD, 33: event.KeyF,
	34: event.KeyG, 35: event.KeyH, 36: event.KeyJ, 37: event.KeyK,
	38: event.KeyL, 39: event.KeySemicolon, 40: event.KeyApostrophe,
	41: event.KeyGraveAccent, 42: event.KeyLeftShift, 43: event.KeyBackslash,
	44: event.KeyZ, 45: event.KeyX, 46: event.KeyC, 47: event.KeyV,
	48: event.KeyB, 49: event.KeyN, 50: event.KeyM, 51: event.KeyComma,
	52: event.KeyPeriod, 53: event.KeySlash, 54: event.KeyRightShift,
	55: event.KeyKPMultiply, 56: event.KeyLeftAlt, 57: event.KeySpace,
	58: event.KeyCapsLock, 59: event.KeyF1, 60: event.KeyF2, 61: event.KeyF3,
	62: event.KeyF4, 63: event.KeyF5, 64: event.KeyF6, 65: event.KeyF7,
	66: event.KeyF8, 67: event.KeyF9, 68: event.KeyF10, 69: event.KeyNumLock,
	70: event.KeyScrollLock, 71: event.KeyKP7, 72: event.KeyKP8,
	73: event.KeyKP9, 74: event.KeyKPSubtract, 75: event.KeyKP4,
	76: event.KeyKP5, 77: event.KeyKP6, 78: event.KeyKPAdd, 79: event.KeyKP1,
	80: event.KeyKP2, 81: event.KeyKP3, 82: event.KeyKP0,
	83: event.KeyKPDecimal, 86: event.KeyWorld2, 87: event.KeyF11,
	88: event.KeyF12, 96: event.KeyKPEnter, 97: event.KeyRightControl,
	98: event.KeyKPDivide, 99: event.KeyPrintScreen, 100: event.KeyRightAlt,
	102: event.KeyHome, 103: event.KeyUp, 104: event.KeyPageUp,
	105: event.KeyLeft, 106: event.KeyRight, 107: event.KeyEnd,
	108: event.KeyDown, 109: event.KeyPageDown, 110: event.KeyInsert,
	111: event.KeyDelete, 117: event.KeyKPEqual, 119: event.KeyPause,
	125: event.KeyLeftSuper, 126: event.KeyRightSuper, 127: event.KeyMenu,
	183: event.KeyF13, 184: event.KeyF14, 185: event.KeyF15, 186: event.KeyF16,
	187: event.KeyF17, 188: event.KeyF18, 189: event.KeyF19, 190: event.KeyF20,
	191: event.KeyF21, 192: event.KeyF22, 193: event.KeyF23, 194: event.KeyF24,
}

// usLayout holds the unshifted and shifted characters of the US layout.
var usLayout = map[int][2]rune{
	2: {'1', '!'}, 3: {'2', '@'}, 4: {'3', '#'}, 5: {'4', '$'}, 6: {'5', '%'},
	7: {'6', '^'}, 8: {'7', '&'}, 9: {'8', '*'}, 10: {'9', '('}, 11: {'0', ')'},
	12: {'-', '_'}, 13: {'=', '+'}, 26: {'[', '{'}, 27: {']', '}'},
	39: {';', ':'}, 40: {'\'', '"'}, 41: {'`', '~'}, 43: {'\\', '|'},
	51: {',', '<'}, 52: {'.', '>'}, 53: {'/', '?'}, 57: {' ', ' '},
	16: {'q', 'Q'}, 17: {'w', 'W'}, 18: {'e', 'E'}, 19: {'r', 'R'},
	20: {'t', 'T'}, 21: {'y', 'Y'}, 22: {'u', 'U'}, 23: {'i', 'I'},
	24: {'o', 'O'}, 25: {'p', 'P'}, 30: {'a', 'A'}, 31: {'s', 'S'},
	32: {'d', 'D'}, 33: {'f', 'F'}, 34: {'g', 'G'}, 35: {'h', 'H'},
	36: {'j', 'J'}, 37: {'k', 'K'}, 38: {'l', 'L'}, 44: {'z', 'Z'},
	45: {'x', 'X'}, 46: {'c', 'C'}, 47: {'v', 'V'}, 48: {'b', 'B'},
	49: {'n', 'N'}, 50: {'m', 'M'}, 86: {'<', '>'},
	55: {'*', '*'}, 74: {'-', '-'}, 78: {'+', '+'}, 98: {'/', '/'}, 117: {'=', '='},
}

// keypadDigits produce text only while Num Lock is on.
var keypadDigits = map[int]rune{
	71: '7', 72: '8', 73: '9', 75: '4', 76: '5', 77: '6',
	79: '1', 80: '2', 81: '3', 82: '0', 83: '.',
}

func init() {
	for i := range keycodes {
		keycodes[i] = event.KeyUnknown
	}
	for i := range scancodes {
		scancodes[i] = -1
	}
	for sc, key := range evdevKeys {
		keycodes[sc] = key
		scancodes[key] = sc
	}
}

func translateKey(scancode uint32) event.KeyCode {
	if scancode > maxScancode {
		return event.KeyUnknown
	}
	return keycodes[scancode]
}

// translateChar returns the character a key produces under mods, or zero.
func translateChar(scancode uint32, mods event.ModifierKey) rune {
	if scancode > maxScancode {
		return 0
	}
	if r, ok := keypadDigits[int(scancode)]; ok {
		if mods&event.ModNumLock == 0 {
			return 0
		}
		return r
	}
	pair, ok := usLayout[int(scancode)]
	if !ok {
		return 0
	}
	shifted := mods&event.ModShift != 0
	if unicode.IsLetter(pair[0]) && mods&event.ModCapsLock != 0 {
		shifted = !shifted
	}
	if shifted {
		return pair[1]
	}
	return pair[0]
}

// keyRepeats reports whether holding the key should auto-repeat.
func keyRepeats(key event.KeyCode) bool {
	switch key {
	case event.KeyLeftShift, event.KeyRightShift, event.KeyLeftControl,
		event.KeyRightControl, event.KeyLeftAlt, event.KeyRightAlt,
		event.KeyLeftSuper, event.KeyRightSuper, event.KeyCapsLock,
		event.KeyNumLock, event.KeyScrollLock, event.KeyUnknown:
		return false
	}
	return true
}

// Real modifier bits in the order xkbcommon assigns them.
const (
	xkbShift   = 1 << 0
	xkbLock    = 1 << 1
	xkbControl = 1 << 2
	xkbMod1    = 1 << 3
	xkbMod2    = 1 << 4
	xkbMod4    = 1 << 6
)

func decodeMods(depressed, latched, locked uint32) event.ModifierKey {
	active := depressed | latched | locked
	var mods event.ModifierKey
	if active&xkbShift != 0 {
		mods |= event.ModShift
	}
	if active&xkbControl != 0 {
		mods |= event.ModControl
	}
	if active&xkbMod1 != 0 {
		mods |= event.ModAlt
	}
	if active&xkbMod4 != 0 {
		mods |= event.ModSuper
	}
	if locked&xkbLock != 0 {
		mods |= event.ModCapsLock
	}
	if locked&xkbMod2 != 0 {
		mods |= event.ModNumLock
	}
	return mods
}

func (b *Backend) ScancodeName(scancode int) (string, error) {
	if scancode < 0 || scancode > maxScancode || keycodes[scancode] == event.KeyUnknown {
		return "", b.host.ReportError(platform.InvalidValue, "Wayland: invalid scancode %d", scancode)
	}
	if r := translateChar(uint32(scancode), event.ModNumLock); r != 0 {
		return string(r), nil
	}
	return "", nil
}

func (b *Backend) KeyScancode(key event.KeyCode) int {
	if !key.Valid() {
		return -1
	}
	return scancodes[key]
}
