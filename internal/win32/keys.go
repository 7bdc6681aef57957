package win32

import "github.com/1broseidon/hatch/internal/event"

// Key table indices combine the PS/2 set 1 make code with the E0 and E1
// prefix bits, so keys sharing a make code stay distinct.
const (
	keymapE0Bit = 8
	keymapE1Bit = 9
	keymapSize  = 1 << 10

	// compatSize covers the scancodes reported in key messages: the low
	// byte plus the extended bit.
	compatSize = 1 << 9
	kfExtended = 0x100
)

func keyIndex(makeCode, e0, e1 int) int {
	return makeCode | e0<<keymapE0Bit | e1<<keymapE1Bit
}

// compatScancode folds a table index into the message scancode format,
// where both prefixes collapse into the extended bit.
func compatScancode(index int) int {
	extended := 0
	if index&(1<<keymapE0Bit|1<<keymapE1Bit) != 0 {
		extended = 1
	}
	return index&0xFF | extended<<8
}

type keyTables struct {
	keycodes  [keymapSize]event.KeyCode
	compat    [compatSize]event.KeyCode
	scancodes [event.KeyLast + 1]int
}

type keyAssignment struct {
	makeCode, e0, e1 int
	key              event.KeyCode
}

// PS/2 set 1 make codes as Windows reports them in lParam.
var keyAssignments = []keyAssignment{
	{0x0B, 0, 0, event.Key0},
	{0x02, 0, 0, event.Key1},
	{0x03, 0, 0, event.Key2},
	{0x04, 0, 0, event.Key3},
	{0x05, 0, 0, event.Key4},
	{0x06, 0, 0, event.Key5},
	{0x07, 0, 0, event.Key6},
	{0x08, 0, 0, event.Key7},
	{0x09, 0, 0, event.Key8},
	{0x0A, 0, 0, event.Key9},
	{0x1E, 0, 0, event.KeyA},
	{0x30, 0, 0, event.KeyB},
	{0x2E, 0, 0, event.KeyC},
	{0x20, 0, 0, event.KeyD},
	{0x12, 0, 0, event.KeyE},
	{0x21, 0, 0, event.KeyF},
	{0x22, 0, 0, event.KeyG},
	{0x23, 0, 0, event.KeyH},
	{0x17, 0, 0, event.KeyI},
	{0x24, 0, 0, event.KeyJ},
	{0x25, 0, 0, event.KeyK},
	{0x26, 0, 0, event.KeyL},
	{0x32, 0, 0, event.KeyM},
	{0x31, 0, 0, event.KeyN},
	{0x18, 0, 0, event.KeyO},
	{0x19, 0, 0, event.KeyP},
	{0x10, 0, 0, event.KeyQ},
	{0x13, 0, 0, event.KeyR},
	{0x1F, 0, 0, event.KeyS},
	{0x14, 0, 0, event.KeyT},
	{0x16, 0, 0, event.KeyU},
	{0x2F, 0, 0, event.KeyV},
	{0x11, 0, 0, event.KeyW},
	{0x2D, 0, 0, event.KeyX},
	{0x15, 0, 0, event.KeyY},
	{0x2C, 0, 0, event.KeyZ},

	{0x28, 0, 0, event.KeyApostrophe},
	{0x2B, 0, 0, event.KeyBackslash},
	{0x33, 0, 0, event.KeyComma},
	{0x0D, 0, 0, event.KeyEqual},
	{0x29, 0, 0, event.KeyGraveAccent},
	{0x1A, 0, 0, event.KeyLeftBracket},
	{0x0C, 0, 0, event.KeyMinus},
	{0x34, 0, 0, event.KeyPeriod},
	{0x1B, 0, 0, event.KeyRightBracket},
	{0x27, 0, 0, event.KeySemicolon},
	{0x35, 0, 0, event.KeySlash},
	{0x56, 0, 0, event.KeyWorld2},

	{0x0E, 0, 0, event.KeyBackspace},
	{0x53, 1, 0, event.KeyDelete},
	{0x4F, 1, 0, event.KeyEnd},
	{0x1C, 0, 0, event.KeyEnter},
	{0x01, 0, 0, event.KeyEscape},
	{0x47, 1, 0, event.KeyHome},
	{0x52, 1, 0, event.KeyInsert},
	{0x5D, 1, 0, event.KeyMenu},
	{0x51, 1, 0, event.KeyPageDown},
	{0x49, 1, 0, event.KeyPageUp},
	{0x46, 1, 0, event.KeyPause}, // Ctrl+Pause
	{0x1D, 0, 1, event.KeyPause},
	{0x39, 0, 0, event.KeySpace},
	{0x0F, 0, 0, event.KeyTab},
	{0x3A, 0, 0, event.KeyCapsLock},
	{0x45, 1, 0, event.KeyNumLock},
	{0x46, 0, 0, event.KeyScrollLock},
	{0x3B, 0, 0, event.KeyF1},
	{0x3C, 0, 0, event.KeyF2},
	{0x3D, 0, 0, event.KeyF3},
	{0x3E, 0, 0, event.KeyF4},
	{0x3F, 0, 0, event.KeyF5},
	{0x40, 0, 0, event.KeyF6},
	{0x41, 0, 0, event.KeyF7},
	{0x42, 0, 0, event.KeyF8},
	{0x43, 0, 0, event.KeyF9},
	{0x44, 0, 0, event.KeyF10},
	{0x57, 0, 0, event.KeyF11},
	{0x58, 0, 0, event.KeyF12},
	{0x64, 0, 0, event.KeyF13},
	{0x65, 0, 0, event.KeyF14},
	{0x66, 0, 0, event.KeyF15},
	{0x67, 0, 0, event.KeyF16},
	{0x68, 0, 0, event.KeyF17},
	{0x69, 0, 0, event.KeyF18},
	{0x6A, 0, 0, event.KeyF19},
	{0x6B, 0, 0, event.KeyF20},
	{0x6C, 0, 0, event.KeyF21},
	{0x6D, 0, 0, event.KeyF22},
	{0x6E, 0, 0, event.KeyF23},
	{0x76, 0, 0, event.KeyF24},
	{0x38, 0, 0, event.KeyLeftAlt},
	{0x1D, 0, 0, event.KeyLeftControl},
	{0x2A, 0, 0, event.KeyLeftShift},
	{0x5B, 1, 0, event.KeyLeftSuper},
	{0x37, 1, 0, event.KeyPrintScreen},
	{0x38, 1, 0, event.KeyRightAlt},
	{0x1D, 1, 0, event.KeyRightControl},
	{0x36, 0, 0, event.KeyRightShift},
	{0x5C, 1, 0, event.KeyRightSuper},
	{0x50, 1, 0, event.KeyDown},
	{0x4B, 1, 0, event.KeyLeft},
	{0x4D, 1, 0, event.KeyRight},
	{0x48, 1, 0, event.KeyUp},

	{0x52, 0, 0, event.KeyKP0},
	{0x4F, 0, 0, event.KeyKP1},
	{0x50, 0, 0, event.KeyKP2},
	{0x51, 0, 0, event.KeyKP3},
	{0x4B, 0, 0, event.KeyKP4},
	{0x4C, 0, 0, event.KeyKP5},
	{0x4D, 0, 0, event.KeyKP6},
	{0x47, 0, 0, event.KeyKP7},
	{0x48, 0, 0, event.KeyKP8},
	{0x49, 0, 0, event.KeyKP9},
	{0x4E, 0, 0, event.KeyKPAdd},
	{0x53, 0, 0, event.KeyKPDecimal},
	{0x35, 1, 0, event.KeyKPDivide},
	{0x1C, 1, 0, event.KeyKPEnter},
	{0x59, 0, 0, event.KeyKPEqual},
	{0x37, 0, 0, event.KeyKPMultiply},
	{0x4A, 0, 0, event.KeyKPSubtract},
}

func newKeyTables() *keyTables {
	t := &keyTables{}
	for i := range t.keycodes {
		t.keycodes[i] = event.KeyUnknown
	}
	for i := range t.compat {
		t.compat[i] = event.KeyUnknown
	}
	for i := range t.scancodes {
		t.scancodes[i] = -1
	}
	for _, a := range keyAssignments {
		t.keycodes[keyIndex(a.makeCode, a.e0, a.e1)] = a.key
	}

	// Folding E1 into the extended bit can collide with an E0 key. The lower
	// index wins the compat slot, so E0 keys keep theirs.
	for index, key := range t.keycodes {
		if key == event.KeyUnknown {
			continue
		}
		if sc := compatScancode(index); t.compat[sc] == event.KeyUnknown {
			t.compat[sc] = key
		}
	}
	// A key reachable from several indices keeps the last scancode that
	// still translates back to it.
	for index, key := range t.keycodes {
		if key == event.KeyUnknown {
			continue
		}
		if sc := compatScancode(index); t.compat[sc] == key {
			t.scancodes[key] = sc
		}
	}
	return t
}

// key translates a message scancode.
func (t *keyTables) key(scancode int) event.KeyCode {
	if scancode < 0 || scancode >= compatSize {
		return event.KeyUnknown
	}
	return t.compat[scancode]
}

// scancode returns the message scancode of key, or -1.
func (t *keyTables) scancode(key event.KeyCode) int {
	if key < 0 || int(key) >= len(t.scancodes) {
		return -1
	}
	return t.scancodes[key]
}

// Virtual keys of the keypad, in KeyKP0..KeyKPAdd order. Key names for
// these bypass MapVirtualKey, which returns the navigation keys instead.
var numpadVKs = [...]uint32{
	vkNumpad0, vkNumpad0 + 1, vkNumpad0 + 2, vkNumpad0 + 3, vkNumpad0 + 4,
	vkNumpad0 + 5, vkNumpad0 + 6, vkNumpad0 + 7, vkNumpad0 + 8, vkNumpad0 + 9,
	vkDecimal, vkDivide, vkMultiply, vkSubtract, vkAdd,
}

// Key names are only built for printable keys.
func namedKey(key event.KeyCode) bool {
	return key >= event.KeySpace && key <= event.KeyLast
}
