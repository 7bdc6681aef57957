package event

import "fmt"

// KeyCode is a layout-independent physical key, numbered like the US layout.
type KeyCode int

const KeyUnknown KeyCode = -1

// Printable keys.
const (
	KeySpace        KeyCode = 32
	KeyApostrophe   KeyCode = 39
	KeyComma        KeyCode = 44
	KeyMinus        KeyCode = 45
	KeyPeriod       KeyCode = 46
	KeySlash        KeyCode = 47
	Key0            KeyCode = 48
	Key1            KeyCode = 49
	Key2            KeyCode = 50
	Key3            KeyCode = 51
	Key4            KeyCode = 52
	Key5            KeyCode = 53
	Key6            KeyCode = 54
	Key7            KeyCode = 55
	Key8            KeyCode = 56
	Key9            KeyCode = 57
	KeySemicolon    KeyCode = 59
	KeyEqual        KeyCode = 61
	KeyA            KeyCode = 65
	KeyB            KeyCode = 66
	KeyC            KeyCode = 67
	KeyD            KeyCode = 68
	KeyE            KeyCode = 69
	KeyF            KeyCode = 70
	KeyG            KeyCode = 71
	KeyH            KeyCode = 72
	KeyI            KeyCode = 73
	KeyJ            KeyCode = 74
	KeyK            KeyCode = 75
	KeyL            KeyCode = 76
	KeyM            KeyCode = 77
	KeyN            KeyCode = 78
	KeyO            KeyCode = 79
	KeyP            KeyCode = 80
	KeyQ            KeyCode = 81
	KeyR            KeyCode = 82
	KeyS            KeyCode = 83
	KeyT            KeyCode = 84
	KeyU            KeyCode = 85
	KeyV            KeyCode = 86
	KeyW            KeyCode = 87
	KeyX            KeyCode = 88
	KeyY            KeyCode = 89
	KeyZ            KeyCode = 90
	KeyLeftBracket  KeyCode = 91
	KeyBackslash    KeyCode = 92
	KeyRightBracket KeyCode = 93
	KeyGraveAccent  KeyCode = 96
	KeyWorld1       KeyCode = 161
	KeyWorld2       KeyCode = 162
)

// Function keys.
const (
	KeyEscape       KeyCode = 256
	KeyEnter        KeyCode = 257
	KeyTab          KeyCode = 258
	KeyBackspace    KeyCode = 259
	KeyInsert       KeyCode = 260
	KeyDelete       KeyCode = 261
	KeyRight        KeyCode = 262
	KeyLeft         KeyCode = 263
	KeyDown         KeyCode = 264
	KeyUp           KeyCode = 265
	KeyPageUp       KeyCode = 266
	KeyPageDown     KeyCode = 267
	KeyHome         KeyCode = 268
	KeyEnd          KeyCode = 269
	KeyCapsLock     KeyCode = 280
	KeyScrollLock   KeyCode = 281
	KeyNumLock      KeyCode = 282
	KeyPrintScreen  KeyCode = 283
	KeyPause        KeyCode = 284
	KeyF1           KeyCode = 290
	KeyF2           KeyCode = 291
	KeyF3           KeyCode = 292
	KeyF4           KeyCode = 293
	KeyF5           KeyCode = 294
	KeyF6           KeyCode = 295
	KeyF7           KeyCode = 296
	KeyF8           KeyCode = 297
	KeyF9           KeyCode = 298
	KeyF10          KeyCode = 299
	KeyF11          KeyCode = 300
	KeyF12          KeyCode = 301
	KeyF13          KeyCode = 302
	KeyF14          KeyCode = 303
	KeyF15          KeyCode = 304
	KeyF16          KeyCode = 305
	KeyF17          KeyCode = 306
	KeyF18          KeyCode = 307
	KeyF19          KeyCode = 308
	KeyF20          KeyCode = 309
	KeyF21          KeyCode = 310
	KeyF22          KeyCode = 311
	KeyF23          KeyCode = 312
	KeyF24          KeyCode = 313
	KeyF25          KeyCode = 314
	KeyKP0          KeyCode = 320
	KeyKP1          KeyCode = 321
	KeyKP2          KeyCode = 322
	KeyKP3          KeyCode = 323
	KeyKP4          KeyCode = 324
	KeyKP5          KeyCode = 325
	KeyKP6          KeyCode = 326
	KeyKP7          KeyCode = 327
	KeyKP8          KeyCode = 328
	KeyKP9          KeyCode = 329
	KeyKPDecimal    KeyCode = 330
	KeyKPDivide     KeyCode = 331
	KeyKPMultiply   KeyCode = 332
	KeyKPSubtract   KeyCode = 333
	KeyKPAdd        KeyCode = 334
	KeyKPEnter      KeyCode = 335
	KeyKPEqual      KeyCode = 336
	KeyLeftShift    KeyCode = 340
	KeyLeftControl  KeyCode = 341
	KeyLeftAlt      KeyCode = 342
	KeyLeftSuper    KeyCode = 343
	KeyRightShift   KeyCode = 344
	KeyRightControl KeyCode = 345
	KeyRightAlt     KeyCode = 346
	KeyRightSuper   KeyCode = 347
	KeyMenu         KeyCode = 348

	KeyLast = KeyMenu
)

var keyNames = map[KeyCode]string{
	KeySpace: "SPACE", KeyApostrophe: "APOSTROPHE", KeyComma: "COMMA",
	KeyMinus: "MINUS", KeyPeriod: "PERIOD", KeySlash: "SLASH",
	KeySemicolon: "SEMICOLON", KeyEqual: "EQUAL",
	KeyLeftBracket: "LEFT_BRACKET", KeyBackslash: "BACKSLASH",
	KeyRightBracket: "RIGHT_BRACKET", KeyGraveAccent: "GRAVE_ACCENT",
	KeyWorld1: "WORLD_1", KeyWorld2: "WORLD_2",
	KeyEscape: "ESCAPE", KeyEnter: "ENTER", KeyTab: "TAB",
	KeyBackspace: "BACKSPACE", KeyInsert: "INSERT", KeyDelete: "DELETE",
	KeyRight: "RIGHT", KeyLeft: "LEFT", KeyDown: "DOWN", KeyUp: "UP",
	KeyPageUp: "PAGE_UP", KeyPageDown: "PAGE_DOWN", KeyHome: "HOME",
	KeyEnd: "END", KeyCapsLock: "CAPS_LOCK", KeyScrollLock: "SCROLL_LOCK",
	KeyNumLock: "NUM_LOCK", KeyPrintScreen: "PRINT_SCREEN", KeyPause: "PAUSE",
	KeyKPDecimal: "KP_DECIMAL", KeyKPDivide: "KP_DIVIDE",
	KeyKPMultiply: "KP_MULTIPLY", KeyKPSubtract: "KP_SUBTRACT",
	KeyKPAdd: "KP_ADD", KeyKPEnter: "KP_ENTER", KeyKPEqual: "KP_EQUAL",
	KeyLeftShift: "LEFT_SHIFT", KeyLeftControl: "LEFT_CONTROL",
	KeyLeftAlt: "LEFT_ALT", KeyLeftSuper: "LEFT_SUPER",
	KeyRightShift: "RIGHT_SHIFT", KeyRightControl: "RIGHT_CONTROL",
	KeyRightAlt: "RIGHT_ALT", KeyRightSuper: "RIGHT_SUPER", KeyMenu: "MENU",
}

// String returns the symbolic name of the key, e.g. "A", "F5" or "KP_ENTER".
func (k KeyCode) String() string {
	switch {
	case k == KeyUnknown:
		return "UNKNOWN"
	case k >= Key0 && k <= Key9, k >= KeyA && k <= KeyZ:
		return string(rune(k))
	case k >= KeyF1 && k <= KeyF25:
		return fmt.Sprintf("F%d", int(k-KeyF1)+1)
	case k >= KeyKP0 && k <= KeyKP9:
		return fmt.Sprintf("KP_%d", int(k-KeyKP0))
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KEY_%d", int(k))
}

// Valid reports whether k is a named key.
func (k KeyCode) Valid() bool {
	return k >= KeySpace && k <= KeyLast
}

// Action is the state transition reported by key and button events.
type Action int

const (
	Release Action = iota
	Press
	Repeat
)

func (a Action) String() string {
	switch a {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ModifierKey is a bit set of held modifier keys and active locks.
type ModifierKey int

const (
	ModShift    ModifierKey = 0x0001
	ModControl  ModifierKey = 0x0002
	ModAlt      ModifierKey = 0x0004
	ModSuper    ModifierKey = 0x0008
	ModCapsLock ModifierKey = 0x0010
	ModNumLock  ModifierKey = 0x0020
)

// Button is a mouse button index.
type Button int

const (
	Button1 Button = iota
	Button2
	Button3
	Button4
	Button5
	Button6
	Button7
	Button8

	ButtonLast   = Button8
	ButtonLeft   = Button1
	ButtonRight  = Button2
	ButtonMiddle = Button3
)

// CursorMode controls cursor visibility and capture for a window.
type CursorMode int

const (
	CursorNormal CursorMode = iota
	CursorHidden
	CursorDisabled
)

func (m CursorMode) String() string {
	switch m {
	case CursorNormal:
		return "normal"
	case CursorHidden:
		return "hidden"
	case CursorDisabled:
		return "disabled"
	}
	return fmt.Sprintf("cursor-mode(%d)", int(m))
}

// CursorShape is a standard system cursor.
type CursorShape int

const (
	ArrowCursor CursorShape = iota
	IBeamCursor
	CrosshairCursor
	PointingHandCursor
	ResizeEWCursor
	ResizeNSCursor
	ResizeNWSECursor
	ResizeNESWCursor
	ResizeAllCursor
	NotAllowedCursor
)

// Valid reports whether s names a standard shape.
func (s CursorShape) Valid() bool {
	return s >= ArrowCursor && s <= NotAllowedCursor
}
