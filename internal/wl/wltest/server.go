//go:build linux

// Package wltest provides an in-process fake compositor for exercising
// Wayland clients over a socket pair.
package wltest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/1broseidon/hatch/internal/wl"
	"golang.org/x/sys/unix"
)

// Arg is one decoded request argument.
type Arg struct {
	Uint uint32
	Str  string
	Arr  []byte
	FD   int
}

func (a Arg) Int() int32 { return int32(a.Uint) }

func (a Arg) Fixed() wl.Fixed { return wl.Fixed(int32(a.Uint)) }

// Request is one request received from the client.
type Request struct {
	Object    uint32
	Interface string
	Opcode    uint16
	Args      []Arg
	// NewID is the object created by the request, if any.
	NewID uint32
}

// Global is advertised through wl_registry.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Server is the compositor end of a socket pair.
type Server struct {
	fd   int
	done chan struct{}

	mu       sync.Mutex
	objects  map[uint32]string
	requests []Request
	globals  []Global
	registry []uint32
	serverID uint32
	serial   uint32
	err      error
	handlers map[string]func(*Server, Request)
}

// New starts a fake compositor and returns it with a client connection.
func New(globals ...Global) (*Server, *wl.Conn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("wltest: socketpair: %w", err)
	}
	conn, err := wl.NewConn(fds[0])
	if err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, nil, err
	}
	s := &Server{
		fd:       fds[1],
		done:     make(chan struct{}),
		objects:  map[uint32]string{1: "wl_display"},
		serverID: 0xff000000,
		handlers: make(map[string]func(*Server, Request)),
	}
	for i, g := range globals {
		if g.Name == 0 {
			g.Name = uint32(i + 1)
		}
		s.globals = append(s.globals, g)
	}
	go s.serve()
	return s, conn, nil
}

// Handle installs a hook run on the server goroutine for every request
// matching iface and opcode, after the request is recorded.
func (s *Server) Handle(iface string, opcode uint16, fn func(*Server, Request)) {
	s.mu.Lock()
	s.handlers[handlerKey(iface, opcode)] = fn
	s.mu.Unlock()
}

func handlerKey(iface string, opcode uint16) string {
	return fmt.Sprintf("%s#%d", iface, opcode)
}

// Close shuts the socket down, waits for the server goroutine and closes
// every descriptor the client sent.
func (s *Server) Close() error {
	unix.Shutdown(s.fd, unix.SHUT_RDWR)
	<-s.done
	s.mu.Lock()
	for _, r := range s.requests {
		for _, a := range r.Args {
			if a.FD > 0 {
				unix.Close(a.FD)
			}
		}
	}
	s.mu.Unlock()
	return unix.Close(s.fd)
}

// CloseFD closes a descriptor received with a request so the peer sees
// end of file. Close will not close it again.
func (s *Server) CloseFD(fd int) error {
	s.mu.Lock()
	for i := range s.requests {
		for j := range s.requests[i].Args {
			if s.requests[i].Args[j].FD == fd {
				s.requests[i].Args[j].FD = -1
			}
		}
	}
	s.mu.Unlock()
	return unix.Close(fd)
}

// Err returns the first error the server hit while decoding.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Requests returns the recorded requests for iface and opcode in order.
func (s *Server) Requests(iface string, opcode uint16) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if r.Interface == iface && r.Opcode == opcode {
			out = append(out, r)
		}
	}
	return out
}

// Last returns the most recent request for iface and opcode.
func (s *Server) Last(iface string, opcode uint16) (Request, bool) {
	reqs := s.Requests(iface, opcode)
	if len(reqs) == 0 {
		return Request{}, false
	}
	return reqs[len(reqs)-1], true
}

// ObjectsOf returns the live IDs the client created with iface.
func (s *Server) ObjectsOf(iface string) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint32
	for id, name := range s.objects {
		if name == iface {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// NextSerial returns a fresh event serial.
func (s *Server) NextSerial() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serial++
	return s.serial
}

// NewObject allocates a server-side object ID for iface.
func (s *Server) NewObject(iface string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.serverID
	s.serverID++
	s.objects[id] = iface
	return id
}

// Send writes one event. build may be nil for events without arguments.
// Descriptors queued on the encoder are sent with the message and stay
// owned by the caller.
func (s *Server) Send(object uint32, opcode uint16, build func(e *wl.Encoder)) error {
	var e wl.Encoder
	if build != nil {
		build(&e)
	}
	msg := wl.AppendMessage(nil, object, opcode, e.Bytes())
	var oob []byte
	if fds := e.FDs(); len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return unix.Sendmsg(s.fd, msg, oob, nil, unix.MSG_NOSIGNAL)
}

// SendRaw writes bytes without framing, for tests of partial reads.
func (s *Server) SendRaw(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := unix.Write(s.fd, b)
	return err
}

// DeleteID acknowledges the destruction of a client object.
func (s *Server) DeleteID(id uint32) error {
	s.mu.Lock()
	delete(s.objects, id)
	s.mu.Unlock()
	return s.Send(1, 1, func(e *wl.Encoder) { e.Uint(id) })
}

// finishCallback sends wl_callback.done and the matching delete_id in one
// write, so a client round trip reads and dispatches both.
func (s *Server) finishCallback(id uint32) error {
	var done, del wl.Encoder
	done.Uint(s.NextSerial())
	del.Uint(id)
	msg := wl.AppendMessage(nil, id, 0, done.Bytes())
	msg = wl.AppendMessage(msg, 1, 1, del.Bytes())

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
	_, err := unix.Write(s.fd, msg)
	return err
}

// PostError sends wl_display.error for object.
func (s *Server) PostError(object, code uint32, msg string) error {
	return s.Send(1, 0, func(e *wl.Encoder) {
		e.Uint(object)
		e.Uint(code)
		e.String(msg)
	})
}

// AddGlobal advertises g to every registry, present and future.
func (s *Server) AddGlobal(g Global) error {
	s.mu.Lock()
	if g.Name == 0 {
		g.Name = uint32(len(s.globals) + 1)
	}
	s.globals = append(s.globals, g)
	regs := append([]uint32(nil), s.registry...)
	s.mu.Unlock()
	for _, r := range regs {
		if err := s.sendGlobal(r, g); err != nil {
			return err
		}
	}
	return nil
}

// RemoveGlobal withdraws the global with the given name.
func (s *Server) RemoveGlobal(name uint32) error {
	s.mu.Lock()
	for i, g := range s.globals {
		if g.Name == name {
			s.globals = append(s.globals[:i], s.globals[i+1:]...)
			break
		}
	}
	regs := append([]uint32(nil), s.registry...)
	s.mu.Unlock()
	for _, r := range regs {
		if err := s.Send(r, 1, func(e *wl.Encoder) { e.Uint(name) }); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) sendGlobal(registry uint32, g Global) error {
	return s.Send(registry, 0, func(e *wl.Encoder) {
		e.Uint(g.Name)
		e.String(g.Interface)
		e.Uint(g.Version)
	})
}

func (s *Server) serve() {
	defer close(s.done)
	var in []byte
	var fds []int
	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(28*4))
	for {
		n, oobn, _, _, err := unix.Recvmsg(s.fd, buf, oob, unix.MSG_CMSG_CLOEXEC)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || n == 0 {
			return
		}
		if oobn > 0 {
			msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
			if err == nil {
				for i := range msgs {
					if got, err := unix.ParseUnixRights(&msgs[i]); err == nil {
						fds = append(fds, got...)
					}
				}
			}
		}
		in = append(in, buf[:n]...)
		for {
			sender, opcode, size, ok := wl.ParseHeader(in)
			if !ok || len(in) < size {
				break
			}
			if size < 8 {
				s.setErr(fmt.Errorf("wltest: bad message size %d", size))
				return
			}
			payload := in[8:size]
			req, rest, err := s.decode(sender, opcode, payload, fds)
			if err != nil {
				s.setErr(err)
				return
			}
			fds = rest
			in = in[size:]
			s.handle(req)
		}
	}
}

func (s *Server) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *Server) decode(sender uint32, opcode uint16, payload []byte, fds []int) (Request, []int, error) {
	s.mu.Lock()
	iface, ok := s.objects[sender]
	s.mu.Unlock()
	if !ok {
		return Request{}, fds, fmt.Errorf("wltest: request on unknown object %d", sender)
	}
	req := Request{Object: sender, Interface: iface, Opcode: opcode}
	sig, known := signatures[iface]
	if !known || int(opcode) >= len(sig) {
		return req, fds, nil
	}
	off := 0
	lastString := ""
	for _, tok := range strings.Fields(sig[opcode]) {
		if tok == "h" {
			if len(fds) == 0 {
				return req, fds, fmt.Errorf("wltest: %s#%d missing fd", iface, opcode)
			}
			req.Args = append(req.Args, Arg{FD: fds[0]})
			fds = fds[1:]
			continue
		}
		if off+4 > len(payload) {
			return req, fds, fmt.Errorf("wltest: %s#%d truncated", iface, opcode)
		}
		v := binary.LittleEndian.Uint32(payload[off:])
		off += 4
		switch {
		case tok == "s" || tok == "a":
			n := int(v)
			padded := (n + 3) &^ 3
			if off+padded > len(payload) {
				return req, fds, fmt.Errorf("wltest: %s#%d truncated array", iface, opcode)
			}
			data := append([]byte(nil), payload[off:off+n]...)
			off += padded
			arg := Arg{Uint: v, Arr: data}
			if tok == "s" && n > 0 {
				arg.Str = string(data[:n-1])
				lastString = arg.Str
			}
			req.Args = append(req.Args, arg)
		case strings.HasPrefix(tok, "n"):
			child := strings.TrimPrefix(tok, "n:")
			if tok == "n" {
				child = lastString
			}
			req.NewID = v
			req.Args = append(req.Args, Arg{Uint: v})
			s.mu.Lock()
			s.objects[v] = child
			s.mu.Unlock()
		default:
			req.Args = append(req.Args, Arg{Uint: v})
		}
	}
	return req, fds, nil
}

func (s *Server) handle(req Request) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	hook := s.handlers[handlerKey(req.Interface, req.Opcode)]
	s.mu.Unlock()

	switch {
	case req.Interface == "wl_display" && req.Opcode == 0:
		if hook != nil {
			hook(s, req)
		}
		s.finishCallback(req.NewID)
		return
	case req.Interface == "wl_display" && req.Opcode == 1:
		s.mu.Lock()
		s.registry = append(s.registry, req.NewID)
		globals := append([]Global(nil), s.globals...)
		s.mu.Unlock()
		for _, g := range globals {
			s.sendGlobal(req.NewID, g)
		}
	}
	if hook != nil {
		hook(s, req)
	}
}

// signatures maps interface request opcodes to argument types: u/i/f/o
// are 32-bit words, s a string, a an array, h a descriptor and n:iface a
// new object. A bare n takes its interface from the preceding string.
var signatures = map[string][]string{
	"wl_display":                      {"n:wl_callback", "n:wl_registry"},
	"wl_registry":                     {"u s u n"},
	"wl_compositor":                   {"n:wl_surface", "n:wl_region"},
	"wl_surface":                      {"", "o i i", "i i i i", "n:wl_callback", "o", "o", "", "i", "i", "i i i i", "i i"},
	"wl_region":                       {"", "i i i i", "i i i i"},
	"wl_subcompositor":                {"", "n:wl_subsurface o o"},
	"wl_subsurface":                   {"", "i i", "o", "o", "", ""},
	"wl_shm":                          {"n:wl_shm_pool h i", ""},
	"wl_shm_pool":                     {"n:wl_buffer i i i i u", "", "i"},
	"wl_buffer":                       {""},
	"wl_seat":                         {"n:wl_pointer", "n:wl_keyboard", "n:wl_touch", ""},
	"wl_pointer":                      {"u o i i", ""},
	"wl_keyboard":                     {""},
	"wl_output":                       {""},
	"wl_data_device_manager":          {"n:wl_data_source", "n:wl_data_device o"},
	"wl_data_device":                  {"o o o u", "o u", ""},
	"wl_data_source":                  {"s", "", "u"},
	"wl_data_offer":                   {"u s", "s h", "", "", "u u"},
	"xdg_wm_base":                     {"", "n:xdg_positioner", "n:xdg_surface o", "u"},
	"xdg_surface":                     {"", "n:xdg_toplevel", "n:xdg_popup o o", "i i i i", "u"},
	"xdg_toplevel":                    {"", "o", "s", "s", "o u i i", "o u", "o u u", "i i", "i i", "", "", "o", "", ""},
	"zxdg_decoration_manager_v1":      {"", "n:zxdg_toplevel_decoration_v1 o"},
	"zxdg_toplevel_decoration_v1":     {"", "u", ""},
	"wp_viewporter":                   {"", "n:wp_viewport o"},
	"wp_viewport":                     {"", "f f f f", "i i"},
	"zwp_relative_pointer_manager_v1": {"", "n:zwp_relative_pointer_v1 o"},
	"zwp_relative_pointer_v1":         {""},
	"zwp_pointer_constraints_v1":      {"", "n:zwp_locked_pointer_v1 o o o u", "n:zwp_confined_pointer_v1 o o o u"},
	"zwp_locked_pointer_v1":           {"", "f f", "o"},
	"zwp_idle_inhibit_manager_v1":     {"", "n:zwp_idle_inhibitor_v1 o"},
	"zwp_idle_inhibitor_v1":           {""},
}
