//go:build linux

package wl

// Viewporter is wp_viewporter.
type Viewporter struct {
	BaseProxy
}

func (*Viewporter) Interface() string                  { return "wp_viewporter" }
func (*Viewporter) Dispatch(opcode uint16, d *Decoder) {}

func (v *Viewporter) Destroy() error {
	return v.destroyWith(0)
}

func (v *Viewporter) GetViewport(surface *Surface) (*Viewport, error) {
	vp := &Viewport{}
	v.create(vp, 1)
	var e Encoder
	e.NewID(vp)
	e.Object(surface)
	return vp, v.send(1, &e)
}

// Viewport is wp_viewport.
type Viewport struct {
	BaseProxy
}

func (*Viewport) Interface() string                  { return "wp_viewport" }
func (*Viewport) Dispatch(opcode uint16, d *Decoder) {}

func (vp *Viewport) Destroy() error {
	return vp.destroyWith(0)
}

func (vp *Viewport) SetSource(x, y, width, height Fixed) error {
	var e Encoder
	e.Fixed(x)
	e.Fixed(y)
	e.Fixed(width)
	e.Fixed(height)
	return vp.send(1, &e)
}

func (vp *Viewport) SetDestination(width, height int32) error {
	var e Encoder
	e.Int(width)
	e.Int(height)
	return vp.send(2, &e)
}

// RelativePointerManager is zwp_relative_pointer_manager_v1.
type RelativePointerManager struct {
	BaseProxy
}

func (*RelativePointerManager) Interface() string                  { return "zwp_relative_pointer_manager_v1" }
func (*RelativePointerManager) Dispatch(opcode uint16, d *Decoder) {}

func (m *RelativePointerManager) Destroy() error {
	return m.destroyWith(0)
}

func (m *RelativePointerManager) GetRelativePointer(p *Pointer) (*RelativePointer, error) {
	rp := &RelativePointer{}
	m.create(rp, 1)
	var e Encoder
	e.NewID(rp)
	e.Object(p)
	return rp, m.send(1, &e)
}

// RelativePointer is zwp_relative_pointer_v1.
type RelativePointer struct {
	BaseProxy
	OnRelativeMotion func(utimeHi, utimeLo uint32, dx, dy, dxUnaccel, dyUnaccel Fixed)
}

func (*RelativePointer) Interface() string { return "zwp_relative_pointer_v1" }

func (rp *RelativePointer) Destroy() error {
	return rp.destroyWith(0)
}

func (rp *RelativePointer) Dispatch(opcode uint16, d *Decoder) {
	if opcode != 0 {
		return
	}
	hi, lo := d.Uint(), d.Uint()
	dx, dy, udx, udy := d.Fixed(), d.Fixed(), d.Fixed(), d.Fixed()
	if rp.OnRelativeMotion != nil && d.err == nil {
		rp.OnRelativeMotion(hi, lo, dx, dy, udx, udy)
	}
}

// Pointer constraint lifetimes.
const (
	ConstraintLifetimeOneshot    = 1
	ConstraintLifetimePersistent = 2
)

// PointerConstraints is zwp_pointer_constraints_v1.
type PointerConstraints struct {
	BaseProxy
}

func (*PointerConstraints) Interface() string                  { return "zwp_pointer_constraints_v1" }
func (*PointerConstraints) Dispatch(opcode uint16, d *Decoder) {}

func (pc *PointerConstraints) Destroy() error {
	return pc.destroyWith(0)
}

// LockPointer locks p to surface. region may be nil.
func (pc *PointerConstraints) LockPointer(surface *Surface, p *Pointer, region *Region, lifetime uint32) (*LockedPointer, error) {
	lp := &LockedPointer{}
	pc.create(lp, 1)
	var e Encoder
	e.NewID(lp)
	e.Object(surface)
	e.Object(p)
	e.Object(region)
	e.Uint(lifetime)
	return lp, pc.send(1, &e)
}

// LockedPointer is zwp_locked_pointer_v1.
type LockedPointer struct {
	BaseProxy
	OnLocked   func()
	OnUnlocked func()
}

func (*LockedPointer) Interface() string { return "zwp_locked_pointer_v1" }

func (lp *LockedPointer) Destroy() error {
	return lp.destroyWith(0)
}

func (lp *LockedPointer) SetCursorPositionHint(x, y Fixed) error {
	var e Encoder
	e.Fixed(x)
	e.Fixed(y)
	return lp.send(1, &e)
}

func (lp *LockedPointer) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		if lp.OnLocked != nil {
			lp.OnLocked()
		}
	case 1:
		if lp.OnUnlocked != nil {
			lp.OnUnlocked()
		}
	}
}

// IdleInhibitManager is zwp_idle_inhibit_manager_v1.
type IdleInhibitManager struct {
	BaseProxy
}

func (*IdleInhibitManager) Interface() string                  { return "zwp_idle_inhibit_manager_v1" }
func (*IdleInhibitManager) Dispatch(opcode uint16, d *Decoder) {}

func (m *IdleInhibitManager) Destroy() error {
	return m.destroyWith(0)
}

func (m *IdleInhibitManager) CreateInhibitor(surface *Surface) (*IdleInhibitor, error) {
	ii := &IdleInhibitor{}
	m.create(ii, 1)
	var e Encoder
	e.NewID(ii)
	e.Object(surface)
	return ii, m.send(1, &e)
}

// IdleInhibitor is zwp_idle_inhibitor_v1.
type IdleInhibitor struct {
	BaseProxy
}

func (*IdleInhibitor) Interface() string                  { return "zwp_idle_inhibitor_v1" }
func (*IdleInhibitor) Dispatch(opcode uint16, d *Decoder) {}

func (ii *IdleInhibitor) Destroy() error {
	return ii.destroyWith(0)
}
