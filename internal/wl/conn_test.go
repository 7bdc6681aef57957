//go:build linux

package wl_test

import (
	"errors"
	"os"
	"testing"

	"github.com/1broseidon/hatch/internal/wl"
	"github.com/1broseidon/hatch/internal/wl/wltest"
	"golang.org/x/sys/unix"
)

type session struct {
	srv     *wltest.Server
	conn    *wl.Conn
	reg     *wl.Registry
	globals map[string]uint32
}

func newSession(t *testing.T, globals ...wltest.Global) *session {
	t.Helper()
	srv, conn, err := wltest.New(globals...)
	if err != nil {
		t.Fatalf("wltest.New: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		srv.Close()
	})
	s := &session{srv: srv, conn: conn, globals: make(map[string]uint32)}
	s.reg, err = conn.Display().GetRegistry()
	if err != nil {
		t.Fatalf("GetRegistry: %v", err)
	}
	s.reg.OnGlobal = func(name uint32, iface string, version uint32) {
		s.globals[iface] = name
	}
	s.roundtrip(t)
	return s
}

func (s *session) roundtrip(t *testing.T) {
	t.Helper()
	if err := s.conn.Roundtrip(); err != nil {
		t.Fatalf("Roundtrip: %v", err)
	}
	if err := s.srv.Err(); err != nil {
		t.Fatalf("server: %v", err)
	}
}

func (s *session) bind(t *testing.T, p wl.Proxy, version uint32) {
	t.Helper()
	name, ok := s.globals[p.Interface()]
	if !ok {
		t.Fatalf("global %s not advertised", p.Interface())
	}
	if err := s.reg.Bind(name, p, version); err != nil {
		t.Fatalf("Bind %s: %v", p.Interface(), err)
	}
}

func tempFD(t *testing.T, content string) int {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fd")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		t.Fatalf("dup: %v", err)
	}
	f.Close()
	t.Cleanup(func() { unix.Close(fd) })
	return fd
}

func readFD(t *testing.T, fd int) string {
	t.Helper()
	buf := make([]byte, 64)
	n, err := unix.Pread(fd, buf, 0)
	if err != nil {
		t.Fatalf("pread: %v", err)
	}
	return string(buf[:n])
}

func TestRoundtripAdvertisesGlobalsAndCreatesObjects(t *testing.T) {
	s := newSession(t,
		wltest.Global{Interface: "wl_compositor", Version: 4},
		wltest.Global{Interface: "wl_shm", Version: 1},
	)
	if len(s.globals) != 2 {
		t.Fatalf("globals = %v, want 2 entries", s.globals)
	}

	comp := &wl.Compositor{}
	s.bind(t, comp, 4)
	surface, err := comp.CreateSurface()
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	if err := surface.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	s.roundtrip(t)

	ids := s.srv.ObjectsOf("wl_surface")
	if len(ids) != 1 || ids[0] != surface.ID() {
		t.Fatalf("server surfaces = %v, want [%d]", ids, surface.ID())
	}
	if got := len(s.srv.Requests("wl_surface", 6)); got != 1 {
		t.Fatalf("commit requests = %d, want 1", got)
	}
}

func TestPartialMessageIsKeptAcrossReads(t *testing.T) {
	s := newSession(t)
	var got []string
	s.reg.OnGlobal = func(name uint32, iface string, version uint32) {
		got = append(got, iface)
	}

	var e wl.Encoder
	e.Uint(9)
	e.String("wl_output")
	e.Uint(4)
	msg := wl.AppendMessage(nil, s.reg.ID(), 0, e.Bytes())

	if err := s.srv.SendRaw(msg[:6]); err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
	if !s.conn.PrepareRead() {
		t.Fatal("PrepareRead failed with nothing queued")
	}
	if err := s.conn.ReadEvents(); err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if n, err := s.conn.DispatchPending(); err != nil || n != 0 {
		t.Fatalf("DispatchPending = %d, %v; want 0, nil", n, err)
	}

	if err := s.srv.SendRaw(msg[6:]); err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
	s.conn.PrepareRead()
	if err := s.conn.ReadEvents(); err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if n, err := s.conn.DispatchPending(); err != nil || n != 1 {
		t.Fatalf("DispatchPending = %d, %v; want 1, nil", n, err)
	}
	if len(got) != 1 || got[0] != "wl_output" {
		t.Fatalf("globals = %v, want [wl_output]", got)
	}
}

func TestPrepareReadFailsWhileEventsPending(t *testing.T) {
	s := newSession(t)
	for i := 0; i < 2; i++ {
		name := uint32(20 + i)
		if err := s.srv.Send(s.reg.ID(), 1, func(e *wl.Encoder) { e.Uint(name) }); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if !s.conn.PrepareRead() {
		t.Fatal("PrepareRead failed with nothing queued")
	}
	if err := s.conn.ReadEvents(); err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if s.conn.PrepareRead() {
		t.Fatal("PrepareRead succeeded with events queued")
	}
	if n, _ := s.conn.DispatchPending(); n != 2 {
		t.Fatalf("DispatchPending = %d, want 2", n)
	}
	if !s.conn.PrepareRead() {
		t.Fatal("PrepareRead failed after dispatching")
	}
	s.conn.CancelRead()
}

func TestKeymapDescriptorIsDelivered(t *testing.T) {
	s := newSession(t, wltest.Global{Interface: "wl_seat", Version: 5})
	seat := &wl.Seat{}
	s.bind(t, seat, 5)
	kbd, err := seat.GetKeyboard()
	if err != nil {
		t.Fatalf("GetKeyboard: %v", err)
	}
	s.roundtrip(t)

	var keymap string
	kbd.OnKeymap = func(format uint32, fd int, size uint32) {
		keymap = readFD(t, fd)
		unix.Close(fd)
	}
	src := tempFD(t, "xkb_keymap {}")
	err = s.srv.Send(kbd.ID(), 0, func(e *wl.Encoder) {
		e.Uint(wl.KeyboardKeymapFormatXKBV1)
		e.FD(src)
		e.Uint(13)
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	s.roundtrip(t)
	if keymap != "xkb_keymap {}" {
		t.Fatalf("keymap = %q", keymap)
	}
}

func TestDestroyedObjectDescriptorsDoNotShiftQueue(t *testing.T) {
	s := newSession(t,
		wltest.Global{Interface: "wl_seat", Version: 1},
		wltest.Global{Interface: "wl_data_device_manager", Version: 3},
	)
	seat := &wl.Seat{}
	s.bind(t, seat, 1)
	ddm := &wl.DataDeviceManager{}
	s.bind(t, ddm, 3)
	kbd, _ := seat.GetKeyboard()
	source, _ := ddm.CreateDataSource()
	s.roundtrip(t)

	kbdID := kbd.ID()
	if err := kbd.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	var sent string
	source.OnSend = func(mime string, fd int) {
		sent = readFD(t, fd)
		unix.Close(fd)
	}
	stale := tempFD(t, "stale")
	fresh := tempFD(t, "fresh")
	s.srv.Send(kbdID, 0, func(e *wl.Encoder) {
		e.Uint(wl.KeyboardKeymapFormatXKBV1)
		e.FD(stale)
		e.Uint(5)
	})
	s.srv.Send(source.ID(), 1, func(e *wl.Encoder) {
		e.String("text/plain")
		e.FD(fresh)
	})
	s.roundtrip(t)
	if sent != "fresh" {
		t.Fatalf("data source received %q, want %q", sent, "fresh")
	}
}

func TestProtocolErrorEndsConnection(t *testing.T) {
	s := newSession(t, wltest.Global{Interface: "wl_compositor", Version: 4})
	comp := &wl.Compositor{}
	s.bind(t, comp, 4)
	surface, _ := comp.CreateSurface()
	s.roundtrip(t)

	if err := s.srv.PostError(surface.ID(), 2, "invalid size"); err != nil {
		t.Fatalf("PostError: %v", err)
	}
	err := s.conn.Roundtrip()
	var perr *wl.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("Roundtrip error = %v, want *wl.ProtocolError", err)
	}
	if perr.Interface != "wl_surface" || perr.Code != 2 || perr.ObjectID != surface.ID() {
		t.Fatalf("protocol error = %+v", perr)
	}
	if err := surface.Commit(); err == nil {
		t.Fatal("request after a protocol error succeeded")
	}
}

func TestRequestOnDestroyedProxyFails(t *testing.T) {
	s := newSession(t, wltest.Global{Interface: "wl_compositor", Version: 4})
	comp := &wl.Compositor{}
	s.bind(t, comp, 4)
	surface, _ := comp.CreateSurface()
	if err := surface.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if !surface.Destroyed() {
		t.Fatal("Destroyed() = false after Destroy")
	}
	if err := surface.Commit(); err == nil {
		t.Fatal("Commit on a destroyed surface succeeded")
	}
	if err := surface.Destroy(); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
	s.roundtrip(t)
	if got := len(s.srv.Requests("wl_surface", 0)); got != 1 {
		t.Fatalf("destroy requests = %d, want 1", got)
	}
}

func TestServerCreatedOfferIsAdopted(t *testing.T) {
	s := newSession(t,
		wltest.Global{Interface: "wl_seat", Version: 5},
		wltest.Global{Interface: "wl_data_device_manager", Version: 3},
	)
	seat := &wl.Seat{}
	s.bind(t, seat, 5)
	ddm := &wl.DataDeviceManager{}
	s.bind(t, ddm, 3)
	dev, err := ddm.GetDataDevice(seat)
	if err != nil {
		t.Fatalf("GetDataDevice: %v", err)
	}
	s.roundtrip(t)

	var mimes []string
	var selected *wl.DataOffer
	dev.OnDataOffer = func(offer *wl.DataOffer) {
		offer.OnOffer = func(mime string) { mimes = append(mimes, mime) }
	}
	dev.OnSelection = func(offer *wl.DataOffer) { selected = offer }

	id := s.srv.NewObject("wl_data_offer")
	s.srv.Send(dev.ID(), 0, func(e *wl.Encoder) { e.Uint(id) })
	s.srv.Send(id, 0, func(e *wl.Encoder) { e.String("text/plain;charset=utf-8") })
	s.srv.Send(id, 0, func(e *wl.Encoder) { e.String("UTF8_STRING") })
	s.srv.Send(dev.ID(), 5, func(e *wl.Encoder) { e.Uint(id) })
	s.roundtrip(t)

	if selected == nil || selected.ID() != id {
		t.Fatalf("selection = %v, want offer %d", selected, id)
	}
	if len(mimes) != 2 || mimes[0] != "text/plain;charset=utf-8" {
		t.Fatalf("mimes = %v", mimes)
	}

	s.srv.Send(dev.ID(), 5, func(e *wl.Encoder) { e.Uint(0) })
	s.roundtrip(t)
	if selected != nil {
		t.Fatal("cleared selection delivered a non-nil offer")
	}
}
