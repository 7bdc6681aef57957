//go:build linux

package wl

// Display is wl_display.
type Display struct {
	BaseProxy
}

func (*Display) Interface() string { return "wl_display" }

// Sync asks the compositor for a callback fired once every earlier request
// has been processed.
func (d *Display) Sync() (*Callback, error) {
	cb := &Callback{}
	d.create(cb, 1)
	var e Encoder
	e.NewID(cb)
	return cb, d.send(0, &e)
}

func (d *Display) GetRegistry() (*Registry, error) {
	r := &Registry{}
	d.create(r, 1)
	var e Encoder
	e.NewID(r)
	return r, d.send(1, &e)
}

func (d *Display) Dispatch(opcode uint16, dec *Decoder) {
	switch opcode {
	case 0:
		id := dec.Object()
		code := dec.Uint()
		msg := dec.String()
		iface := "unknown"
		if p := d.conn.Object(id); p != nil {
			iface = p.Interface()
		}
		d.conn.fail(&ProtocolError{ObjectID: id, Interface: iface, Code: code, Message: msg})
	case 1:
		d.conn.deleteID(dec.Uint())
	}
}

// Registry is wl_registry.
type Registry struct {
	BaseProxy
	OnGlobal       func(name uint32, iface string, version uint32)
	OnGlobalRemove func(name uint32)
}

func (*Registry) Interface() string { return "wl_registry" }

// Bind binds the global name to p at the given version.
func (r *Registry) Bind(name uint32, p Proxy, version uint32) error {
	r.create(p, version)
	var e Encoder
	e.Uint(name)
	e.String(p.Interface())
	e.Uint(version)
	e.NewID(p)
	return r.send(0, &e)
}

func (r *Registry) Destroy() error {
	return r.destroyWith(-1)
}

func (r *Registry) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		name, iface, version := d.Uint(), d.String(), d.Uint()
		if d.err == nil && r.OnGlobal != nil {
			r.OnGlobal(name, iface, version)
		}
	case 1:
		name := d.Uint()
		if d.err == nil && r.OnGlobalRemove != nil {
			r.OnGlobalRemove(name)
		}
	}
}

// Callback is wl_callback. It is forgotten after done fires.
type Callback struct {
	BaseProxy
	OnDone func(data uint32)
}

func (*Callback) Interface() string { return "wl_callback" }

func (cb *Callback) Destroy() error {
	return cb.destroyWith(-1)
}

func (cb *Callback) Dispatch(opcode uint16, d *Decoder) {
	if opcode != 0 {
		return
	}
	data := d.Uint()
	cb.conn.forget(cb)
	if cb.OnDone != nil {
		cb.OnDone(data)
	}
}

// Compositor is wl_compositor.
type Compositor struct {
	BaseProxy
}

func (*Compositor) Interface() string                  { return "wl_compositor" }
func (*Compositor) Dispatch(opcode uint16, d *Decoder) {}

func (c *Compositor) CreateSurface() (*Surface, error) {
	s := &Surface{}
	c.create(s, c.version)
	var e Encoder
	e.NewID(s)
	return s, c.send(0, &e)
}

func (c *Compositor) CreateRegion() (*Region, error) {
	r := &Region{}
	c.create(r, c.version)
	var e Encoder
	e.NewID(r)
	return r, c.send(1, &e)
}

func (c *Compositor) Destroy() error {
	return c.destroyWith(-1)
}

// Surface is wl_surface.
type Surface struct {
	BaseProxy
	OnEnter func(output *Output)
	OnLeave func(output *Output)
}

func (*Surface) Interface() string { return "wl_surface" }

func (s *Surface) Destroy() error {
	return s.destroyWith(0)
}

// Attach sets the pending buffer. A nil buffer detaches.
func (s *Surface) Attach(buffer *Buffer, x, y int32) error {
	var e Encoder
	e.Object(buffer)
	e.Int(x)
	e.Int(y)
	return s.send(1, &e)
}

func (s *Surface) Damage(x, y, width, height int32) error {
	var e Encoder
	e.Int(x)
	e.Int(y)
	e.Int(width)
	e.Int(height)
	return s.send(2, &e)
}

func (s *Surface) Frame() (*Callback, error) {
	cb := &Callback{}
	s.create(cb, 1)
	var e Encoder
	e.NewID(cb)
	return cb, s.send(3, &e)
}

// SetOpaqueRegion sets the opaque region; nil clears it.
func (s *Surface) SetOpaqueRegion(r *Region) error {
	var e Encoder
	e.Object(r)
	return s.send(4, &e)
}

// SetInputRegion sets the input region; nil means the whole surface.
func (s *Surface) SetInputRegion(r *Region) error {
	var e Encoder
	e.Object(r)
	return s.send(5, &e)
}

func (s *Surface) Commit() error {
	return s.send(6, nil)
}

func (s *Surface) SetBufferScale(scale int32) error {
	var e Encoder
	e.Int(scale)
	return s.send(8, &e)
}

func (s *Surface) DamageBuffer(x, y, width, height int32) error {
	var e Encoder
	e.Int(x)
	e.Int(y)
	e.Int(width)
	e.Int(height)
	return s.send(9, &e)
}

func (s *Surface) Dispatch(opcode uint16, d *Decoder) {
	id := d.Object()
	output, _ := s.conn.Object(id).(*Output)
	switch opcode {
	case 0:
		if s.OnEnter != nil && output != nil {
			s.OnEnter(output)
		}
	case 1:
		if s.OnLeave != nil && output != nil {
			s.OnLeave(output)
		}
	}
}

// Region is wl_region.
type Region struct {
	BaseProxy
}

func (*Region) Interface() string                  { return "wl_region" }
func (*Region) Dispatch(opcode uint16, d *Decoder) {}

func (r *Region) Destroy() error {
	return r.destroyWith(0)
}

func (r *Region) Add(x, y, width, height int32) error {
	var e Encoder
	e.Int(x)
	e.Int(y)
	e.Int(width)
	e.Int(height)
	return r.send(1, &e)
}

func (r *Region) Subtract(x, y, width, height int32) error {
	var e Encoder
	e.Int(x)
	e.Int(y)
	e.Int(width)
	e.Int(height)
	return r.send(2, &e)
}

// Subcompositor is wl_subcompositor.
type Subcompositor struct {
	BaseProxy
}

func (*Subcompositor) Interface() string                  { return "wl_subcompositor" }
func (*Subcompositor) Dispatch(opcode uint16, d *Decoder) {}

func (sc *Subcompositor) Destroy() error {
	return sc.destroyWith(0)
}

func (sc *Subcompositor) GetSubsurface(surface, parent *Surface) (*Subsurface, error) {
	sub := &Subsurface{}
	sc.create(sub, 1)
	var e Encoder
	e.NewID(sub)
	e.Object(surface)
	e.Object(parent)
	return sub, sc.send(1, &e)
}

// Subsurface is wl_subsurface.
type Subsurface struct {
	BaseProxy
}

func (*Subsurface) Interface() string                  { return "wl_subsurface" }
func (*Subsurface) Dispatch(opcode uint16, d *Decoder) {}

func (s *Subsurface) Destroy() error {
	return s.destroyWith(0)
}

func (s *Subsurface) SetPosition(x, y int32) error {
	var e Encoder
	e.Int(x)
	e.Int(y)
	return s.send(1, &e)
}

func (s *Subsurface) PlaceAbove(sibling *Surface) error {
	var e Encoder
	e.Object(sibling)
	return s.send(2, &e)
}

func (s *Subsurface) PlaceBelow(sibling *Surface) error {
	var e Encoder
	e.Object(sibling)
	return s.send(3, &e)
}

func (s *Subsurface) SetSync() error {
	return s.send(4, nil)
}

func (s *Subsurface) SetDesync() error {
	return s.send(5, nil)
}
