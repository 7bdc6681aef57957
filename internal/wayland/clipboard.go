//go:build linux

package wayland

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/wl"
	"golang.org/x/sys/unix"
)

const (
	mimeTextUTF8 = "text/plain;charset=utf-8"
	mimeText     = "text/plain"
	mimeURIList  = "text/uri-list"

	clipboardChunk = 4096
)

type clipboardState struct {
	// source is set while this process owns the selection; stored is
	// what it serves.
	source *wl.DataSource
	stored string

	offers         map[*wl.DataOffer]*offerInfo
	selectionOffer *wl.DataOffer
	dragOffer      *wl.DataOffer
	dragFocus      *platform.Window
	dragSerial     uint32

	reads []*ClipboardRead
}

type offerInfo struct {
	textMime string
	uriList  bool
}

// ClipboardRead is an in-flight transfer from a data offer. It completes
// inside the event pump.
type ClipboardRead struct {
	fd     int
	buf    []byte
	done   bool
	text   string
	err    error
	onDone func(text string, err error)
}

var _ platform.ClipboardRequest = (*ClipboardRead)(nil)

func (r *ClipboardRead) Done() bool { return r.done }

func (r *ClipboardRead) Result() (string, error) { return r.text, r.err }

func (b *Backend) createDataDevice() error {
	dev, err := b.dataDeviceManager.GetDataDevice(b.seat)
	if err != nil {
		return err
	}
	b.clip.offers = make(map[*wl.DataOffer]*offerInfo)
	dev.OnDataOffer = b.dataOffer
	dev.OnEnter = b.dragEnter
	dev.OnLeave = b.dragLeave
	dev.OnDrop = b.dragDrop
	dev.OnSelection = b.selection
	b.dataDevice = dev
	return nil
}

func (b *Backend) dataOffer(offer *wl.DataOffer) {
	info := &offerInfo{}
	b.clip.offers[offer] = info
	offer.OnOffer = func(mime string) {
		switch mime {
		case mimeTextUTF8:
			info.textMime = mimeTextUTF8
		case mimeText:
			if info.textMime == "" {
				info.textMime = mimeText
			}
		case mimeURIList:
			info.uriList = true
		}
	}
}

func (b *Backend) destroyOffer(offer *wl.DataOffer) {
	if offer == nil {
		return
	}
	if _, ok := b.clip.offers[offer]; !ok {
		return
	}
	delete(b.clip.offers, offer)
	offer.Destroy()
}

func (b *Backend) dragEnter(serial uint32, surface *wl.Surface, x, y wl.Fixed, offer *wl.DataOffer) {
	if b.clip.dragOffer != nil {
		b.destroyOffer(b.clip.dragOffer)
		b.clip.dragOffer, b.clip.dragFocus = nil, nil
	}
	if offer == nil {
		return
	}
	w, part := b.windowForSurface(surface)
	info := b.clip.offers[offer]
	if w != nil && part == partMain && info != nil && info.uriList {
		b.clip.dragOffer = offer
		b.clip.dragFocus = w
		b.clip.dragSerial = serial
		offer.Accept(serial, mimeURIList)
		return
	}
	offer.Accept(serial, "")
	b.destroyOffer(offer)
}

func (b *Backend) dragLeave() {
	if b.clip.dragOffer != nil {
		b.destroyOffer(b.clip.dragOffer)
		b.clip.dragOffer, b.clip.dragFocus = nil, nil
	}
}

// dragDrop starts reading the dropped URI list. The drop event is emitted
// once the transfer completes.
func (b *Backend) dragDrop() {
	offer, w := b.clip.dragOffer, b.clip.dragFocus
	if offer == nil || w == nil {
		return
	}
	b.clip.dragOffer, b.clip.dragFocus = nil, nil

	r, err := b.startRead(offer, mimeURIList)
	if err != nil {
		b.host.ReportError(platform.PlatformError, "Wayland: failed to read dropped data: %v", err)
		b.destroyOffer(offer)
		return
	}
	id := w.ID
	r.onDone = func(text string, err error) {
		if err == nil {
			if win := b.host.Window(id); win != nil {
				if paths := parseURIList(text); len(paths) > 0 {
					b.host.InputDrop(win, paths)
				}
			}
		}
		if _, ok := b.clip.offers[offer]; ok {
			offer.Finish()
		}
		b.destroyOffer(offer)
	}
}

func (b *Backend) selection(offer *wl.DataOffer) {
	if b.clip.selectionOffer != nil && b.clip.selectionOffer != offer {
		b.destroyOffer(b.clip.selectionOffer)
	}
	b.clip.selectionOffer = nil
	if offer == nil {
		return
	}
	if info := b.clip.offers[offer]; info != nil && info.textMime != "" {
		b.clip.selectionOffer = offer
		return
	}
	b.destroyOffer(offer)
}

// parseURIList turns a text/uri-list payload into paths. file URIs lose
// their scheme and host; comments are skipped.
func parseURIList(text string) []string {
	var paths []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "file://") {
			if u, err := url.Parse(line); err == nil {
				paths = append(paths, u.Path)
				continue
			}
		}
		if p, err := url.PathUnescape(line); err == nil {
			line = p
		}
		paths = append(paths, line)
	}
	return paths
}

func (b *Backend) SetClipboardString(text string) error {
	if b.dataDevice == nil {
		return b.host.ReportError(platform.FeatureUnavailable, "Wayland: cannot set the clipboard without a data device")
	}
	if b.clip.source != nil {
		b.clip.source.Destroy()
		b.clip.source = nil
	}
	src, err := b.dataDeviceManager.CreateDataSource()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "Wayland: failed to create clipboard data source: %v", err)
	}
	b.clip.stored = text
	src.OnSend = func(mime string, fd int) { b.sendClipboard(mime, fd) }
	src.OnCancelled = func() {
		if b.clip.source == src {
			b.clip.source = nil
		}
		src.Destroy()
	}
	src.Offer(mimeTextUTF8)
	b.dataDevice.SetSelection(src, b.serial)
	b.clip.source = src
	b.flushDisplay()
	return nil
}

func (b *Backend) sendClipboard(mime string, fd int) {
	defer unix.Close(fd)
	if mime != mimeTextUTF8 {
		b.host.Logger().Debug("wayland clipboard request for unsupported type", "mime", mime)
		return
	}
	if err := writeAll(fd, []byte(b.clip.stored)); err != nil {
		b.host.ReportError(platform.PlatformError, "Wayland: error while writing the clipboard: %v", err)
	}
}

func writeAll(fd int, data []byte) error {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
			if _, err := unix.Poll(fds, -1); err != nil && !errors.Is(err, unix.EINTR) {
				return err
			}
			continue
		case err != nil:
			return err
		}
		data = data[n:]
	}
	return nil
}

// RequestClipboard starts reading the selection. The returned request
// completes while events are pumped.
func (b *Backend) RequestClipboard() (platform.ClipboardRequest, error) {
	if b.clip.source != nil {
		return &ClipboardRead{fd: -1, done: true, text: b.clip.stored}, nil
	}
	offer := b.clip.selectionOffer
	if offer == nil {
		return nil, b.host.ReportError(platform.FormatUnavailable, "Wayland: no clipboard data available")
	}
	r, err := b.startRead(offer, b.clip.offers[offer].textMime)
	if err != nil {
		return nil, b.host.ReportError(platform.PlatformError, "Wayland: failed to read the clipboard: %v", err)
	}
	return r, nil
}

// ClipboardString reads the selection, pumping events until the transfer
// finishes. It cannot run from inside an event handler.
func (b *Backend) ClipboardString() (string, error) {
	if b.clip.source != nil {
		return b.clip.stored, nil
	}
	if b.host.InDispatch() {
		return "", b.host.ReportError(platform.FeatureUnavailable, "Wayland: the clipboard cannot be read from an event handler; use RequestClipboard")
	}
	req, err := b.RequestClipboard()
	if err != nil {
		return "", err
	}
	r := req.(*ClipboardRead)
	for !r.done {
		if b.conn == nil || b.conn.Err() != nil {
			b.finishRead(r, errors.New("Wayland: connection lost"))
			break
		}
		b.handleEvents(nil)
	}
	return r.Result()
}

func (b *Backend) startRead(offer *wl.DataOffer, mime string) (*ClipboardRead, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, err
	}
	err := offer.Receive(mime, p[1])
	unix.Close(p[1])
	if err != nil {
		unix.Close(p[0])
		return nil, err
	}
	b.flushDisplay()
	r := &ClipboardRead{fd: p[0], buf: make([]byte, 0, clipboardChunk)}
	b.clip.reads = append(b.clip.reads, r)
	return r, nil
}

func (b *Backend) pendingClipboardReads() []*ClipboardRead {
	return slices.Clone(b.clip.reads)
}

// pumpClipboardRead reads what is available and reports whether the
// transfer completed.
func (b *Backend) pumpClipboardRead(r *ClipboardRead) bool {
	if r.done {
		return false
	}
	for {
		if cap(r.buf)-len(r.buf) < clipboardChunk {
			r.buf = slices.Grow(r.buf, cap(r.buf))
		}
		n, err := unix.Read(r.fd, r.buf[len(r.buf):cap(r.buf)])
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return false
		case err != nil:
			b.finishRead(r, err)
			return true
		case n == 0:
			b.finishRead(r, nil)
			return true
		}
		r.buf = r.buf[:len(r.buf)+n]
	}
}

func (b *Backend) finishRead(r *ClipboardRead, err error) {
	if r.done {
		return
	}
	if r.fd >= 0 {
		unix.Close(r.fd)
		r.fd = -1
	}
	r.done = true
	r.err = err
	if err == nil {
		r.text = string(r.buf)
	}
	r.buf = nil
	b.clip.reads = slices.DeleteFunc(b.clip.reads, func(x *ClipboardRead) bool { return x == r })
	if r.onDone != nil {
		r.onDone(r.text, r.err)
	}
}

func (b *Backend) cancelClipboardReads(err error) {
	for _, r := range slices.Clone(b.clip.reads) {
		b.finishRead(r, err)
	}
}
