//go:build linux

// Package wl implements the client side of the Wayland wire protocol over a
// unix socket. It follows libwayland's read protocol: PrepareRead, poll,
// ReadEvents or CancelRead, then DispatchPending.
package wl

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by Flush when the socket buffer is full.
var ErrWouldBlock = errors.New("wl: flush would block")

// ErrClosed is returned once the compositor has closed the connection.
var ErrClosed = errors.New("wl: connection closed by compositor")

const (
	maxFDsIn        = 28
	readBufferSize  = 4096
	flushThreshold  = 4096
	serverIDMinimum = 0xff000000
)

type message struct {
	sender uint32
	opcode uint16
	data   []byte
}

// Conn is one client connection. It is not safe for concurrent use.
type Conn struct {
	fd      int
	nextID  uint32
	objects map[uint32]Proxy
	zombies map[uint32]Proxy

	out    []byte
	outFDs []int

	in      []byte
	inFDs   []int
	pending []message

	reading bool
	err     error

	display *Display
}

// DialPath connects to the compositor socket at path.
func DialPath(path string) (*Conn, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("wl: socket: %w", err)
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("wl: connect %s: %w", path, err)
	}
	return NewConn(fd)
}

// NewConn wraps a connected stream socket. The connection takes ownership
// of fd and switches it to non-blocking mode.
func NewConn(fd int) (*Conn, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("wl: set non-blocking: %w", err)
	}
	c := &Conn{
		fd:      fd,
		objects: make(map[uint32]Proxy),
		zombies: make(map[uint32]Proxy),
	}
	c.display = &Display{}
	c.register(c.display, 1)
	return c, nil
}

// Display returns the wl_display singleton, always object 1.
func (c *Conn) Display() *Display {
	return c.display
}

// Fd returns the socket descriptor for polling.
func (c *Conn) Fd() int {
	return c.fd
}

// Err returns the fatal error that ended the connection, if any.
func (c *Conn) Err() error {
	return c.err
}

// Close closes the socket and every descriptor still queued.
func (c *Conn) Close() error {
	for _, fd := range c.outFDs {
		unix.Close(fd)
	}
	for _, fd := range c.inFDs {
		unix.Close(fd)
	}
	c.outFDs, c.inFDs = nil, nil
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	if c.err == nil {
		c.err = ErrClosed
	}
	return err
}

func (c *Conn) register(p Proxy, version uint32) {
	b := p.base()
	c.nextID++
	b.id = c.nextID
	b.version = version
	b.conn = c
	b.self = p
	c.objects[b.id] = p
}

// adopt registers a proxy for an object the compositor created.
func (c *Conn) adopt(p Proxy, id, version uint32) {
	b := p.base()
	b.id = id
	b.version = version
	b.conn = c
	b.self = p
	c.objects[id] = p
}

// forget removes a destroyed proxy. Client-created objects stay as zombies
// until the compositor acknowledges the destruction with delete_id.
func (c *Conn) forget(p Proxy) {
	b := p.base()
	if b.destroyed {
		return
	}
	b.destroyed = true
	delete(c.objects, b.id)
	if b.id < serverIDMinimum {
		c.zombies[b.id] = p
	}
}

func (c *Conn) deleteID(id uint32) {
	delete(c.zombies, id)
	if p, ok := c.objects[id]; ok {
		p.base().destroyed = true
		delete(c.objects, id)
	}
}

func closeFD(fd int) {
	if fd >= 0 {
		unix.Close(fd)
	}
}

// Object looks up a live proxy by ID.
func (c *Conn) Object(id uint32) Proxy {
	return c.objects[id]
}

func (c *Conn) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Conn) request(sender uint32, opcode uint16, e *Encoder) error {
	if c.err != nil {
		return c.err
	}
	var payload []byte
	if e != nil {
		payload = e.buf
		for _, fd := range e.fds {
			dup, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
			if err != nil {
				c.fail(fmt.Errorf("wl: dup fd: %w", err))
				return c.err
			}
			c.outFDs = append(c.outFDs, dup)
		}
	}
	c.out = AppendMessage(c.out, sender, opcode, payload)
	if len(c.out) >= flushThreshold {
		if err := c.Flush(); err != nil && !errors.Is(err, ErrWouldBlock) {
			return err
		}
	}
	return nil
}

// Flush writes queued requests. It returns ErrWouldBlock when the socket
// cannot take more data; the remainder stays queued.
func (c *Conn) Flush() error {
	if c.err != nil {
		return c.err
	}
	for len(c.out) > 0 {
		var oob []byte
		if len(c.outFDs) > 0 {
			oob = unix.UnixRights(c.outFDs...)
		}
		n, err := unix.SendmsgN(c.fd, c.out, oob, nil, unix.MSG_NOSIGNAL|unix.MSG_DONTWAIT)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if errors.Is(err, unix.EAGAIN) {
			return ErrWouldBlock
		}
		if err != nil {
			c.fail(fmt.Errorf("wl: sendmsg: %w", err))
			return c.err
		}
		for _, fd := range c.outFDs {
			unix.Close(fd)
		}
		c.outFDs = nil
		c.out = c.out[n:]
	}
	c.out = nil
	return nil
}

// PrepareRead announces the intention to read from the socket. It fails
// while decoded events are still waiting to be dispatched.
func (c *Conn) PrepareRead() bool {
	if len(c.pending) > 0 {
		return false
	}
	c.reading = true
	return true
}

// CancelRead abandons a read announced with PrepareRead.
func (c *Conn) CancelRead() {
	c.reading = false
}

// ReadEvents performs one non-blocking read and queues every complete
// message. Incomplete trailing bytes are kept for the next read.
func (c *Conn) ReadEvents() error {
	c.reading = false
	if c.err != nil {
		return c.err
	}
	buf := make([]byte, readBufferSize)
	oob := make([]byte, unix.CmsgSpace(maxFDsIn*4))
	for {
		n, oobn, _, _, err := unix.Recvmsg(c.fd, buf, oob, unix.MSG_DONTWAIT|unix.MSG_CMSG_CLOEXEC)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if errors.Is(err, unix.EAGAIN) {
			return nil
		}
		if err != nil {
			c.fail(fmt.Errorf("wl: recvmsg: %w", err))
			return c.err
		}
		if oobn > 0 {
			if err := c.collectFDs(oob[:oobn]); err != nil {
				c.fail(err)
				return c.err
			}
		}
		if n == 0 {
			c.fail(ErrClosed)
			return c.err
		}
		c.in = append(c.in, buf[:n]...)
		return c.decodeMessages()
	}
}

func (c *Conn) collectFDs(oob []byte) error {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return fmt.Errorf("wl: parse control message: %w", err)
	}
	for i := range msgs {
		fds, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		c.inFDs = append(c.inFDs, fds...)
	}
	return nil
}

func (c *Conn) decodeMessages() error {
	for {
		sender, opcode, size, ok := ParseHeader(c.in)
		if !ok {
			break
		}
		if size < headerSize || size%4 != 0 {
			c.fail(fmt.Errorf("wl: invalid message size %d from object %d", size, sender))
			return c.err
		}
		if len(c.in) < size {
			break
		}
		data := make([]byte, size-headerSize)
		copy(data, c.in[headerSize:size])
		c.pending = append(c.pending, message{sender: sender, opcode: opcode, data: data})
		c.in = c.in[size:]
	}
	if len(c.in) == 0 {
		c.in = nil
	} else {
		c.in = append([]byte(nil), c.in...)
	}
	return nil
}

// NextFD implements FDSource for decoders.
func (c *Conn) NextFD() (int, bool) {
	if len(c.inFDs) == 0 {
		return -1, false
	}
	fd := c.inFDs[0]
	c.inFDs = c.inFDs[1:]
	return fd, true
}

// DispatchPending delivers every queued event and returns how many were
// dispatched. A wl_display.error event is returned as *ProtocolError.
func (c *Conn) DispatchPending() (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	count := 0
	for len(c.pending) > 0 {
		m := c.pending[0]
		c.pending = c.pending[1:]
		if err := c.dispatch(m); err != nil {
			c.fail(err)
			return count, c.err
		}
		count++
		if c.err != nil {
			return count, c.err
		}
	}
	c.pending = nil
	return count, nil
}

func (c *Conn) dispatch(m message) error {
	p, ok := c.objects[m.sender]
	if !ok {
		if z, ok := c.zombies[m.sender]; ok {
			if carrier, ok := z.(fdCarrier); ok {
				for i := 0; i < carrier.eventFDs(m.opcode); i++ {
					if fd, ok := c.NextFD(); ok {
						unix.Close(fd)
					}
				}
			}
		}
		return nil
	}
	d := NewDecoder(m.data, c)
	p.Dispatch(m.opcode, d)
	if d.err != nil {
		return fmt.Errorf("wl: malformed %s event %d: %w", p.Interface(), m.opcode, d.err)
	}
	return nil
}

// FlushBlocking flushes, waiting for the socket to become writable as
// needed.
func (c *Conn) FlushBlocking() error {
	for {
		err := c.Flush()
		if !errors.Is(err, ErrWouldBlock) {
			return err
		}
		if err := c.poll(unix.POLLOUT, -1); err != nil {
			return err
		}
	}
}

func (c *Conn) poll(events int16, timeoutMs int) error {
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: events}}
	for {
		_, err := unix.Poll(fds, timeoutMs)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

// Roundtrip blocks until the compositor has processed every request sent so
// far, dispatching events as they arrive.
func (c *Conn) Roundtrip() error {
	done := false
	cb, err := c.display.Sync()
	if err != nil {
		return err
	}
	cb.OnDone = func(uint32) { done = true }
	for !done {
		if err := c.FlushBlocking(); err != nil {
			return err
		}
		if c.PrepareRead() {
			if err := c.poll(unix.POLLIN, -1); err != nil {
				c.CancelRead()
				return err
			}
			if err := c.ReadEvents(); err != nil {
				return err
			}
		}
		if _, err := c.DispatchPending(); err != nil {
			return err
		}
	}
	return nil
}
