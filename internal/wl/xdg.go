//go:build linux

package wl

// Toplevel configure states.
const (
	ToplevelStateMaximized  = 1
	ToplevelStateFullscreen = 2
	ToplevelStateResizing   = 3
	ToplevelStateActivated  = 4
)

// Resize edges for Toplevel.Resize.
const (
	ResizeEdgeNone        = 0
	ResizeEdgeTop         = 1
	ResizeEdgeBottom      = 2
	ResizeEdgeLeft        = 4
	ResizeEdgeTopLeft     = 5
	ResizeEdgeBottomLeft  = 6
	ResizeEdgeRight       = 8
	ResizeEdgeTopRight    = 9
	ResizeEdgeBottomRight = 10
)

// Decoration modes.
const (
	DecorationModeClientSide = 1
	DecorationModeServerSide = 2
)

// WmBase is xdg_wm_base. Pings are answered automatically.
type WmBase struct {
	BaseProxy
}

func (*WmBase) Interface() string { return "xdg_wm_base" }

func (w *WmBase) Destroy() error {
	return w.destroyWith(0)
}

func (w *WmBase) GetXdgSurface(surface *Surface) (*XdgSurface, error) {
	xs := &XdgSurface{}
	w.create(xs, w.version)
	var e Encoder
	e.NewID(xs)
	e.Object(surface)
	return xs, w.send(2, &e)
}

func (w *WmBase) Pong(serial uint32) error {
	var e Encoder
	e.Uint(serial)
	return w.send(3, &e)
}

func (w *WmBase) Dispatch(opcode uint16, d *Decoder) {
	if opcode == 0 {
		serial := d.Uint()
		if d.err == nil {
			w.Pong(serial)
		}
	}
}

// XdgSurface is xdg_surface.
type XdgSurface struct {
	BaseProxy
	OnConfigure func(serial uint32)
}

func (*XdgSurface) Interface() string { return "xdg_surface" }

func (xs *XdgSurface) Destroy() error {
	return xs.destroyWith(0)
}

func (xs *XdgSurface) GetToplevel() (*Toplevel, error) {
	t := &Toplevel{}
	xs.create(t, xs.version)
	var e Encoder
	e.NewID(t)
	return t, xs.send(1, &e)
}

func (xs *XdgSurface) SetWindowGeometry(x, y, width, height int32) error {
	var e Encoder
	e.Int(x)
	e.Int(y)
	e.Int(width)
	e.Int(height)
	return xs.send(3, &e)
}

func (xs *XdgSurface) AckConfigure(serial uint32) error {
	var e Encoder
	e.Uint(serial)
	return xs.send(4, &e)
}

func (xs *XdgSurface) Dispatch(opcode uint16, d *Decoder) {
	if opcode == 0 {
		serial := d.Uint()
		if xs.OnConfigure != nil && d.err == nil {
			xs.OnConfigure(serial)
		}
	}
}

// Toplevel is xdg_toplevel.
type Toplevel struct {
	BaseProxy
	OnConfigure func(width, height int32, states []uint32)
	OnClose     func()
}

func (*Toplevel) Interface() string { return "xdg_toplevel" }

func (t *Toplevel) Destroy() error {
	return t.destroyWith(0)
}

func (t *Toplevel) SetTitle(title string) error {
	var e Encoder
	e.String(title)
	return t.send(2, &e)
}

func (t *Toplevel) SetAppID(id string) error {
	var e Encoder
	e.String(id)
	return t.send(3, &e)
}

func (t *Toplevel) Move(seat *Seat, serial uint32) error {
	var e Encoder
	e.Object(seat)
	e.Uint(serial)
	return t.send(5, &e)
}

func (t *Toplevel) Resize(seat *Seat, serial, edges uint32) error {
	var e Encoder
	e.Object(seat)
	e.Uint(serial)
	e.Uint(edges)
	return t.send(6, &e)
}

func (t *Toplevel) SetMaxSize(width, height int32) error {
	var e Encoder
	e.Int(width)
	e.Int(height)
	return t.send(7, &e)
}

func (t *Toplevel) SetMinSize(width, height int32) error {
	var e Encoder
	e.Int(width)
	e.Int(height)
	return t.send(8, &e)
}

func (t *Toplevel) SetMaximized() error {
	return t.send(9, nil)
}

func (t *Toplevel) UnsetMaximized() error {
	return t.send(10, nil)
}

// SetFullscreen requests fullscreen, on output when it is not nil.
func (t *Toplevel) SetFullscreen(output *Output) error {
	var e Encoder
	e.Object(output)
	return t.send(11, &e)
}

func (t *Toplevel) UnsetFullscreen() error {
	return t.send(12, nil)
}

func (t *Toplevel) SetMinimized() error {
	return t.send(13, nil)
}

func (t *Toplevel) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		w, h := d.Int(), d.Int()
		states := Uint32s(d.Array())
		if t.OnConfigure != nil && d.err == nil {
			t.OnConfigure(w, h, states)
		}
	case 1:
		if t.OnClose != nil {
			t.OnClose()
		}
	}
}

// DecorationManager is zxdg_decoration_manager_v1.
type DecorationManager struct {
	BaseProxy
}

func (*DecorationManager) Interface() string                  { return "zxdg_decoration_manager_v1" }
func (*DecorationManager) Dispatch(opcode uint16, d *Decoder) {}

func (m *DecorationManager) Destroy() error {
	return m.destroyWith(0)
}

func (m *DecorationManager) GetToplevelDecoration(t *Toplevel) (*ToplevelDecoration, error) {
	td := &ToplevelDecoration{}
	m.create(td, 1)
	var e Encoder
	e.NewID(td)
	e.Object(t)
	return td, m.send(1, &e)
}

// ToplevelDecoration is zxdg_toplevel_decoration_v1.
type ToplevelDecoration struct {
	BaseProxy
	OnConfigure func(mode uint32)
}

func (*ToplevelDecoration) Interface() string { return "zxdg_toplevel_decoration_v1" }

func (td *ToplevelDecoration) Destroy() error {
	return td.destroyWith(0)
}

func (td *ToplevelDecoration) SetMode(mode uint32) error {
	var e Encoder
	e.Uint(mode)
	return td.send(1, &e)
}

func (td *ToplevelDecoration) UnsetMode() error {
	return td.send(2, nil)
}

func (td *ToplevelDecoration) Dispatch(opcode uint16, d *Decoder) {
	if opcode == 0 {
		mode := d.Uint()
		if td.OnConfigure != nil && d.err == nil {
			td.OnConfigure(mode)
		}
	}
}
