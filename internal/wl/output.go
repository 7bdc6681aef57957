//go:build linux

package wl

// OutputModeCurrent flags the mode in use.
const OutputModeCurrent = 1

// Output is wl_output.
type Output struct {
	BaseProxy
	OnGeometry    func(x, y, physicalWidth, physicalHeight, subpixel int32, manufacturer, model string, transform int32)
	OnMode        func(flags uint32, width, height, refresh int32)
	OnDone        func()
	OnScale       func(factor int32)
	OnName        func(name string)
	OnDescription func(description string)
}

func (*Output) Interface() string { return "wl_output" }

func (o *Output) Release() error {
	if o.version >= 3 {
		return o.destroyWith(0)
	}
	return o.destroyWith(-1)
}

func (o *Output) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		x, y, pw, ph, subpixel := d.Int(), d.Int(), d.Int(), d.Int(), d.Int()
		manufacturer, model := d.String(), d.String()
		transform := d.Int()
		if o.OnGeometry != nil && d.err == nil {
			o.OnGeometry(x, y, pw, ph, subpixel, manufacturer, model, transform)
		}
	case 1:
		flags, w, h, refresh := d.Uint(), d.Int(), d.Int(), d.Int()
		if o.OnMode != nil && d.err == nil {
			o.OnMode(flags, w, h, refresh)
		}
	case 2:
		if o.OnDone != nil {
			o.OnDone()
		}
	case 3:
		factor := d.Int()
		if o.OnScale != nil && d.err == nil {
			o.OnScale(factor)
		}
	case 4:
		name := d.String()
		if o.OnName != nil && d.err == nil {
			o.OnName(name)
		}
	case 5:
		desc := d.String()
		if o.OnDescription != nil && d.err == nil {
			o.OnDescription(desc)
		}
	}
}
