//go:build linux

package wl

// DataDeviceManager is wl_data_device_manager.
type DataDeviceManager struct {
	BaseProxy
}

func (*DataDeviceManager) Interface() string                  { return "wl_data_device_manager" }
func (*DataDeviceManager) Dispatch(opcode uint16, d *Decoder) {}

func (m *DataDeviceManager) CreateDataSource() (*DataSource, error) {
	src := &DataSource{}
	m.create(src, m.version)
	var e Encoder
	e.NewID(src)
	return src, m.send(0, &e)
}

func (m *DataDeviceManager) GetDataDevice(seat *Seat) (*DataDevice, error) {
	dev := &DataDevice{}
	m.create(dev, m.version)
	var e Encoder
	e.NewID(dev)
	e.Object(seat)
	return dev, m.send(1, &e)
}

func (m *DataDeviceManager) Destroy() error {
	return m.destroyWith(-1)
}

// DataDevice is wl_data_device. Offers introduced by the compositor arrive
// through OnDataOffer before the enter or selection event that uses them.
type DataDevice struct {
	BaseProxy
	OnDataOffer func(offer *DataOffer)
	OnEnter     func(serial uint32, surface *Surface, x, y Fixed, offer *DataOffer)
	OnLeave     func()
	OnMotion    func(time uint32, x, y Fixed)
	OnDrop      func()
	// OnSelection receives nil when the selection was cleared.
	OnSelection func(offer *DataOffer)
}

func (*DataDevice) Interface() string { return "wl_data_device" }

// SetSelection makes src the selection; nil clears it.
func (dd *DataDevice) SetSelection(src *DataSource, serial uint32) error {
	var e Encoder
	e.Object(src)
	e.Uint(serial)
	return dd.send(1, &e)
}

func (dd *DataDevice) Release() error {
	if dd.version >= 2 {
		return dd.destroyWith(2)
	}
	return dd.destroyWith(-1)
}

func (dd *DataDevice) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		id := d.NewID()
		if d.err != nil {
			return
		}
		offer := &DataOffer{}
		dd.conn.adopt(offer, id, dd.version)
		if dd.OnDataOffer != nil {
			dd.OnDataOffer(offer)
		}
	case 1:
		serial := d.Uint()
		surface, _ := dd.conn.Object(d.Object()).(*Surface)
		x, y := d.Fixed(), d.Fixed()
		offer, _ := dd.conn.Object(d.Object()).(*DataOffer)
		if dd.OnEnter != nil && d.err == nil {
			dd.OnEnter(serial, surface, x, y, offer)
		}
	case 2:
		if dd.OnLeave != nil {
			dd.OnLeave()
		}
	case 3:
		time, x, y := d.Uint(), d.Fixed(), d.Fixed()
		if dd.OnMotion != nil && d.err == nil {
			dd.OnMotion(time, x, y)
		}
	case 4:
		if dd.OnDrop != nil {
			dd.OnDrop()
		}
	case 5:
		offer, _ := dd.conn.Object(d.Object()).(*DataOffer)
		if dd.OnSelection != nil && d.err == nil {
			dd.OnSelection(offer)
		}
	}
}

// DataSource is wl_data_source.
type DataSource struct {
	BaseProxy
	OnTarget func(mime string)
	// OnSend receives ownership of fd and must close it.
	OnSend      func(mime string, fd int)
	OnCancelled func()
}

func (*DataSource) Interface() string { return "wl_data_source" }

func (s *DataSource) eventFDs(opcode uint16) int {
	if opcode == 1 {
		return 1
	}
	return 0
}

func (s *DataSource) Offer(mime string) error {
	var e Encoder
	e.String(mime)
	return s.send(0, &e)
}

func (s *DataSource) Destroy() error {
	return s.destroyWith(1)
}

func (s *DataSource) Dispatch(opcode uint16, d *Decoder) {
	switch opcode {
	case 0:
		mime := d.String()
		if s.OnTarget != nil && d.err == nil {
			s.OnTarget(mime)
		}
	case 1:
		mime := d.String()
		fd := d.FD()
		if d.err != nil || s.OnSend == nil {
			closeFD(fd)
			return
		}
		s.OnSend(mime, fd)
	case 2:
		if s.OnCancelled != nil {
			s.OnCancelled()
		}
	}
}

// DataOffer is wl_data_offer.
type DataOffer struct {
	BaseProxy
	OnOffer func(mime string)
}

func (*DataOffer) Interface() string { return "wl_data_offer" }

// Accept tells the source which mime type the target would take; empty
// means none.
func (o *DataOffer) Accept(serial uint32, mime string) error {
	var e Encoder
	e.Uint(serial)
	if mime == "" {
		e.Uint(0)
	} else {
		e.String(mime)
	}
	return o.send(0, &e)
}

// Receive asks the source to write mime data into fd. The caller keeps
// ownership of fd.
func (o *DataOffer) Receive(mime string, fd int) error {
	var e Encoder
	e.String(mime)
	e.FD(fd)
	return o.send(1, &e)
}

func (o *DataOffer) Destroy() error {
	return o.destroyWith(2)
}

func (o *DataOffer) Finish() error {
	return o.send(3, nil)
}

func (o *DataOffer) Dispatch(opcode uint16, d *Decoder) {
	if opcode == 0 {
		mime := d.String()
		if o.OnOffer != nil && d.err == nil {
			o.OnOffer(mime)
		}
	}
}
