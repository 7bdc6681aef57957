//go:build linux

package wl

import (
	"errors"
	"fmt"
	"reflect"
)

// Proxy is the client side of one protocol object.
type Proxy interface {
	ID() uint32
	Interface() string
	// Dispatch decodes and delivers one event addressed to the object.
	Dispatch(opcode uint16, d *Decoder)
	base() *BaseProxy
}

// fdCarrier is implemented by proxies whose events carry descriptors, so
// events arriving for an already destroyed object still release them.
type fdCarrier interface {
	eventFDs(opcode uint16) int
}

// BaseProxy holds the bookkeeping shared by every proxy.
type BaseProxy struct {
	id        uint32
	version   uint32
	conn      *Conn
	self      Proxy
	destroyed bool
}

func (p *BaseProxy) ID() uint32 {
	return p.id
}

func (p *BaseProxy) Conn() *Conn {
	return p.conn
}

// Version returns the bound interface version.
func (p *BaseProxy) Version() uint32 {
	return p.version
}

func (p *BaseProxy) base() *BaseProxy {
	return p
}

// Destroyed reports whether the proxy has been destroyed.
func (p *BaseProxy) Destroyed() bool {
	return p.destroyed
}

func (p *BaseProxy) send(opcode uint16, e *Encoder) error {
	if p.conn == nil {
		return errors.New("wl: request on unregistered proxy")
	}
	if p.destroyed {
		return fmt.Errorf("wl: request on destroyed %s@%d", p.self.Interface(), p.id)
	}
	return p.conn.request(p.id, opcode, e)
}

// destroyWith sends the destructor request and forgets the proxy. Objects
// without a destructor request pass a negative opcode.
func (p *BaseProxy) destroyWith(opcode int) error {
	if p.conn == nil || p.destroyed {
		return nil
	}
	var err error
	if opcode >= 0 {
		err = p.send(uint16(opcode), nil)
	}
	p.conn.forget(p.self)
	return err
}

func (p *BaseProxy) create(child Proxy, version uint32) {
	p.conn.register(child, version)
}

func isNilProxy(p Proxy) bool {
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// ProtocolError is a fatal error sent by the compositor.
type ProtocolError struct {
	ObjectID  uint32
	Interface string
	Code      uint32
	Message   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wayland protocol error %d on %s@%d: %s", e.Code, e.Interface, e.ObjectID, e.Message)
}
