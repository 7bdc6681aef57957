package x11

import (
	"testing"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/BurntSushi/xgb/xproto"
)

// testMapping is a small US layout. Keycode 94 repeats 'a' the way ISO
// keyboards duplicate keys.
var testMapping = map[xproto.Keycode][2]xproto.Keysym{
	9:  {keysymEscape, 0},
	10: {'1', '!'},
	38: {'a', 'A'},
	50: {keysymShiftL, 0},
	87: {keysymKPEnd, keysymKP0 + 1},
	91: {keysymKPDelete, keysymKPDecimal},
	94: {'a', 'A'},
}

func testLookup(kc xproto.Keycode, column int) xproto.Keysym {
	return testMapping[kc][column]
}

func TestKeysymKey_Ranges(t *testing.T) {
	cases := []struct {
		sym  xproto.Keysym
		want event.KeyCode
	}{
		{'a', event.KeyA},
		{'A', event.KeyA},
		{'1', event.Key1},
		{' ', event.KeySpace},
		{keysymEscape, event.KeyEscape},
		{keysymF1, event.KeyF1},
		{keysymKP0 + 1, event.KeyKP1},
		{keysymKPDecimal, event.KeyKPDecimal},
		{0x12345, event.KeyUnknown},
	}
	for _, c := range cases {
		if got := keysymKey(c.sym); got != c.want {
			t.Errorf("keysymKey(%#x) = %v, want %v", c.sym, got, c.want)
		}
	}
}

func TestNewKeyTables_KeypadPrefersDigits(t *testing.T) {
	tables := newKeyTables(testLookup, 8, 255)

	if got := tables.key(87); got != event.KeyKP1 {
		t.Fatalf("expected keypad key to map to KP1, got %v", got)
	}
	if got := tables.key(91); got != event.KeyKPDecimal {
		t.Fatalf("expected keypad delete to map to KPDecimal, got %v", got)
	}
	if got := tables.key(50); got != event.KeyLeftShift {
		t.Fatalf("expected shift, got %v", got)
	}
	if got := tables.key(200); got != event.KeyUnknown {
		t.Fatalf("expected unmapped keycode to be unknown, got %v", got)
	}
	if got := tables.key(-1); got != event.KeyUnknown {
		t.Fatalf("expected negative keycode to be unknown, got %v", got)
	}
}

func TestNewKeyTables_FirstKeycodeWinsScancode(t *testing.T) {
	tables := newKeyTables(testLookup, 8, 255)

	if got := tables.scancode(event.KeyA); got != 38 {
		t.Fatalf("expected scancode 38 for A, got %d", got)
	}
	if got := tables.scancode(event.KeyF12); got != -1 {
		t.Fatalf("expected -1 for an unmapped key, got %d", got)
	}
	if got := tables.scancode(event.KeyUnknown); got != -1 {
		t.Fatalf("expected -1 for unknown key, got %d", got)
	}
}

func TestKeysymRune(t *testing.T) {
	cases := []struct {
		sym  xproto.Keysym
		want rune
	}{
		{'a', 'a'},
		{0xe9, 'é'},
		{0x010020ac, '€'},
		{keysymKP0 + 7, '7'},
		{keysymEscape, 0},
		{0x01d80000, 0},
	}
	for _, c := range cases {
		if got := keysymRune(c.sym); got != c.want {
			t.Errorf("keysymRune(%#x) = %q, want %q", c.sym, got, c.want)
		}
	}
}

func TestTranslateState(t *testing.T) {
	const numLock = xproto.ModMask2
	state := uint16(maskShift | maskControl | maskMod1 | maskMod4 | maskLock | numLock)
	want := event.ModShift | event.ModControl | event.ModAlt | event.ModSuper | event.ModCapsLock | event.ModNumLock
	if got := translateState(state, numLock); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := translateState(numLock, 0); got != 0 {
		t.Fatalf("expected no Num Lock without a bound modifier, got %v", got)
	}
}

func TestChooseKeysym(t *testing.T) {
	const numLock = xproto.ModMask2
	cases := []struct {
		name         string
		lower, upper xproto.Keysym
		state        uint16
		want         xproto.Keysym
	}{
		{"plain", 'a', 'A', 0, 'a'},
		{"shift", 'a', 'A', maskShift, 'A'},
		{"caps letter", 'a', 'A', maskLock, 'A'},
		{"caps digit", '1', '!', maskLock, '1'},
		{"shift digit", '1', '!', maskShift, '!'},
		{"implicit upper", 0xe9, 0, maskShift, 0xc9},
		{"keypad numlock", keysymKPEnd, keysymKP0 + 1, numLock, keysymKP0 + 1},
		{"keypad numlock shift", keysymKPEnd, keysymKP0 + 1, numLock | maskShift, keysymKPEnd},
		{"keypad no numlock", keysymKPEnd, keysymKP0 + 1, 0, keysymKPEnd},
	}
	for _, c := range cases {
		if got := chooseKeysym(c.lower, c.upper, c.state, numLock); got != c.want {
			t.Errorf("%s: got %#x, want %#x", c.name, got, c.want)
		}
	}
}
