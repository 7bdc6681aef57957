//go:build linux

package wl

// Seat capabilities.
const (
	SeatCapabilityPointer  = 1
	SeatCapabilityKeyboard = 2
	SeatCapabilityTouch    = 4
)

// Pointer button and axis values.
const (
	PointerButtonStateReleased = 0
	PointerButtonStatePressed  = 1

	PointerAxisVerticalScroll   = 0
	PointerAxisHorizontalScroll = 1
)

// Keyboard values.
const (
	KeyboardKeymapFormatNoKeymap = 0
	KeyboardKeymapFormatXKBV1    = 1
	KeyboardKeyStateReleased     = 0
	KeyboardKeyStatePressed      = 1
)

// Seat is wl_seat.
type Seat struct {
	BaseProxy
	OnCapabilities func(caps uint32)
	OnName         func(name string)
}

func (*Seat) Interface() string { return "wl_seat" }

func (s *Seat) GetPointer() (*Pointer, error) {
	p := &Pointer{}
	s.create(p, s.version)
	var e Encoder
	e.NewID(p)
	return p, s.send(0, &e)
}

func (s *Seat) GetKeyboard() (*Keyboard, error) {
	k := &Keyboard{}
	s.create(k, s.version)
	var e Encoder
	e.NewID(k)
	return k, s.send(1, &e)
}

// Release uses the destructor request when the seat was bound at version 5
// or later.
func (s *Seat) Release() error {
	if s.version >= 5 {
		return s.destroyWith(3)
	}
	return s.destroyWith(-1)
}

func (s *Seat) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		caps := d.Uint()
		if s.OnCapabilities != nil {
			s.OnCapabilities(caps)
		}
	case 1:
		name := d.String()
		if s.OnName != nil {
			s.OnName(name)
		}
	}
}

// Pointer is wl_pointer.
type Pointer struct {
	BaseProxy
	OnEnter  func(serial uint32, surface *Surface, x, y Fixed)
	OnLeave  func(serial uint32, surface *Surface)
	OnMotion func(time uint32, x, y Fixed)
	OnButton func(serial, time, button, state uint32)
	OnAxis   func(time, axis uint32, value Fixed)
	OnFrame  func()
}

func (*Pointer) Interface() string { return "wl_pointer" }

// SetCursor sets the cursor surface; nil hides the cursor.
func (p *Pointer) SetCursor(serial uint32, surface *Surface, hotspotX, hotspotY int32) error {
	var e Encoder
	e.Uint(serial)
	e.Object(surface)
	e.Int(hotspotX)
	e.Int(hotspotY)
	return p.send(0, &e)
}

func (p *Pointer) Release() error {
	if p.version >= 3 {
		return p.destroyWith(1)
	}
	return p.destroyWith(-1)
}

func (p *Pointer) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		serial := d.Uint()
		surface, _ := p.conn.Object(d.Object()).(*Surface)
		x, y := d.Fixed(), d.Fixed()
		if p.OnEnter != nil && d.err == nil {
			p.OnEnter(serial, surface, x, y)
		}
	case 1:
		serial := d.Uint()
		surface, _ := p.conn.Object(d.Object()).(*Surface)
		if p.OnLeave != nil && d.err == nil {
			p.OnLeave(serial, surface)
		}
	case 2:
		time, x, y := d.Uint(), d.Fixed(), d.Fixed()
		if p.OnMotion != nil && d.err == nil {
			p.OnMotion(time, x, y)
		}
	case 3:
		serial, time, button, state := d.Uint(), d.Uint(), d.Uint(), d.Uint()
		if p.OnButton != nil && d.err == nil {
			p.OnButton(serial, time, button, state)
		}
	case 4:
		time, axis, value := d.Uint(), d.Uint(), d.Fixed()
		if p.OnAxis != nil && d.err == nil {
			p.OnAxis(time, axis, value)
		}
	case 5:
		if p.OnFrame != nil {
			p.OnFrame()
		}
	}
}

// Keyboard is wl_keyboard.
type Keyboard struct {
	BaseProxy
	// OnKeymap receives ownership of fd.
	OnKeymap     func(format uint32, fd int, size uint32)
	OnEnter      func(serial uint32, surface *Surface, keys []uint32)
	OnLeave      func(serial uint32, surface *Surface)
	OnKey        func(serial, time, key, state uint32)
	OnModifiers  func(serial, depressed, latched, locked, group uint32)
	OnRepeatInfo func(rate, delay int32)
}

func (*Keyboard) Interface() string { return "wl_keyboard" }

func (k *Keyboard) eventFDs(opcode uint16) int {
	if opcode == 0 {
		return 1
	}
	return 0
}

func (k *Keyboard) Release() error {
	if k.version >= 3 {
		return k.destroyWith(0)
	}
	return k.destroyWith(-1)
}

func (k *Keyboard) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		format := d.Uint()
		fd := d.FD()
		size := d.Uint()
		if d.err != nil {
			closeFD(fd)
			return
		}
		if k.OnKeymap == nil {
			closeFD(fd)
			return
		}
		k.OnKeymap(format, fd, size)
	case 1:
		serial := d.Uint()
		surface, _ := k.conn.Object(d.Object()).(*Surface)
		keys := Uint32s(d.Array())
		if k.OnEnter != nil && d.err == nil {
			k.OnEnter(serial, surface, keys)
		}
	case 2:
		serial := d.Uint()
		surface, _ := k.conn.Object(d.Object()).(*Surface)
		if k.OnLeave != nil && d.err == nil {
			k.OnLeave(serial, surface)
		}
	case 3:
		serial, time, key, state := d.Uint(), d.Uint(), d.Uint(), d.Uint()
		if k.OnKey != nil && d.err == nil {
			k.OnKey(serial, time, key, state)
		}
	case 4:
		serial, depressed, latched, locked, group := d.Uint(), d.Uint(), d.Uint(), d.Uint(), d.Uint()
		if k.OnModifiers != nil && d.err == nil {
			k.OnModifiers(serial, depressed, latched, locked, group)
		}
	case 5:
		rate, delay := d.Int(), d.Int()
		if k.OnRepeatInfo != nil && d.err == nil {
			k.OnRepeatInfo(rate, delay)
		}
	}
}
