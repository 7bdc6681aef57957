//go:build linux

package wl

// Pixel formats used with wl_shm.
const (
	ShmFormatARGB8888 = 0
	ShmFormatXRGB8888 = 1
)

// Shm is wl_shm.
type Shm struct {
	BaseProxy
	OnFormat func(format uint32)
}

func (*Shm) Interface() string { return "wl_shm" }

// CreatePool creates a pool backed by fd. The caller keeps ownership of fd.
func (s *Shm) CreatePool(fd int, size int32) (*ShmPool, error) {
	pool := &ShmPool{}
	s.create(pool, 1)
	var e Encoder
	e.NewID(pool)
	e.FD(fd)
	e.Int(size)
	return pool, s.send(0, &e)
}

func (s *Shm) Destroy() error {
	return s.destroyWith(-1)
}

func (s *Shm) Dispatch(opcode uint16, d *Decoder) {
	if opcode == 0 {
		format := d.Uint()
		if s.OnFormat != nil {
			s.OnFormat(format)
		}
	}
}

// ShmPool is wl_shm_pool.
type ShmPool struct {
	BaseProxy
}

func (*ShmPool) Interface() string                  { return "wl_shm_pool" }
func (*ShmPool) Dispatch(opcode uint16, d *Decoder) {}

func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format uint32) (*Buffer, error) {
	b := &Buffer{}
	p.create(b, 1)
	var e Encoder
	e.NewID(b)
	e.Int(offset)
	e.Int(width)
	e.Int(height)
	e.Int(stride)
	e.Uint(format)
	return b, p.send(0, &e)
}

func (p *ShmPool) Destroy() error {
	return p.destroyWith(1)
}

func (p *ShmPool) Resize(size int32) error {
	var e Encoder
	e.Int(size)
	return p.send(2, &e)
}

// Buffer is wl_buffer.
type Buffer struct {
	BaseProxy
	OnRelease func()
}

func (*Buffer) Interface() string { return "wl_buffer" }

func (b *Buffer) Destroy() error {
	return b.destroyWith(0)
}

func (b *Buffer) Dispatch(opcode uint16, d *Decoder) {
	if opcode == 0 && b.OnRelease != nil {
		b.OnRelease()
	}
}
