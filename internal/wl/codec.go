//go:build linux

package wl

import (
	"encoding/binary"
	"errors"
	"math"
)

// Fixed is the protocol's signed 24.8 fixed point number.
type Fixed int32

// FixedFromFloat converts with truncation toward zero.
func FixedFromFloat(v float64) Fixed {
	return Fixed(int32(v * 256))
}

func FixedFromInt(v int) Fixed {
	return Fixed(int32(v) << 8)
}

func (f Fixed) Float() float64 {
	return float64(f) / 256
}

func (f Fixed) Int() int {
	return int(int32(f) / 256)
}

const headerSize = 8

var errShortMessage = errors.New("wl: message too short for its arguments")

// Encoder builds the argument payload of one message. File descriptors are
// collected separately and sent as ancillary data.
type Encoder struct {
	buf []byte
	fds []int
}

func (e *Encoder) Uint(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) Int(v int32) {
	e.Uint(uint32(v))
}

func (e *Encoder) Fixed(v Fixed) {
	e.Uint(uint32(v))
}

// Object encodes an object reference; a nil proxy is encoded as 0.
func (e *Encoder) Object(p Proxy) {
	if p == nil || isNilProxy(p) {
		e.Uint(0)
		return
	}
	e.Uint(p.ID())
}

func (e *Encoder) NewID(p Proxy) {
	e.Uint(p.ID())
}

// String encodes a NUL-terminated, padded string.
func (e *Encoder) String(s string) {
	e.Uint(uint32(len(s) + 1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	e.pad()
}

func (e *Encoder) Array(b []byte) {
	e.Uint(uint32(len(b)))
	e.buf = append(e.buf, b...)
	e.pad()
}

// FD queues a file descriptor. The descriptor is duplicated by the
// connection when the message is queued; the caller keeps ownership of fd.
func (e *Encoder) FD(fd int) {
	e.fds = append(e.fds, fd)
}

func (e *Encoder) pad() {
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
}

// Bytes returns the payload without header.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// FDs returns the queued descriptors.
func (e *Encoder) FDs() []int {
	return e.fds
}

// AppendMessage frames a payload with the message header.
func AppendMessage(dst []byte, sender uint32, opcode uint16, payload []byte) []byte {
	size := uint32(headerSize + len(payload))
	dst = binary.LittleEndian.AppendUint32(dst, sender)
	dst = binary.LittleEndian.AppendUint32(dst, size<<16|uint32(opcode))
	return append(dst, payload...)
}

// ParseHeader reads a message header. ok is false when fewer than eight
// bytes are available.
func ParseHeader(b []byte) (sender uint32, opcode uint16, size int, ok bool) {
	if len(b) < headerSize {
		return 0, 0, 0, false
	}
	sender = binary.LittleEndian.Uint32(b)
	word := binary.LittleEndian.Uint32(b[4:])
	return sender, uint16(word & 0xffff), int(word >> 16), true
}

// FDSource hands out received descriptors in arrival order.
type FDSource interface {
	NextFD() (int, bool)
}

// Decoder reads the arguments of one received message in order.
type Decoder struct {
	buf []byte
	off int
	fds FDSource
	err error
}

// NewDecoder decodes payload, taking descriptors from fds.
func NewDecoder(payload []byte, fds FDSource) *Decoder {
	return &Decoder{buf: payload, fds: fds}
}

// Err returns the first decoding error.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) Uint() uint32 {
	if d.err != nil {
		return 0
	}
	if d.off+4 > len(d.buf) {
		d.err = errShortMessage
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v
}

func (d *Decoder) Int() int32 {
	return int32(d.Uint())
}

func (d *Decoder) Fixed() Fixed {
	return Fixed(int32(d.Uint()))
}

func (d *Decoder) Object() uint32 {
	return d.Uint()
}

func (d *Decoder) NewID() uint32 {
	return d.Uint()
}

func (d *Decoder) String() string {
	b := d.Array()
	if len(b) == 0 {
		return ""
	}
	if b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

func (d *Decoder) Array() []byte {
	n := int(d.Uint())
	if d.err != nil {
		return nil
	}
	padded := (n + 3) &^ 3
	if n < 0 || n > math.MaxInt32 || d.off+padded > len(d.buf) {
		d.err = errShortMessage
		return nil
	}
	b := make([]byte, n)
	copy(b, d.buf[d.off:d.off+n])
	d.off += padded
	return b
}

// FD takes the next received descriptor. The receiver owns it.
func (d *Decoder) FD() int {
	if d.err != nil {
		return -1
	}
	if d.fds == nil {
		d.err = errors.New("wl: message expects a file descriptor but none was received")
		return -1
	}
	fd, ok := d.fds.NextFD()
	if !ok {
		d.err = errors.New("wl: message expects a file descriptor but none was received")
		return -1
	}
	return fd
}

// Uint32s decodes an array of 32-bit values, as used by keyboard enter and
// toplevel configure states.
func Uint32s(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}
