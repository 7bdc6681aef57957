//go:build linux

package wayland

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/wl"
	"golang.org/x/sys/unix"
)

func (b *Backend) PollEvents() {
	var timeout time.Duration
	b.handleEvents(&timeout)
}

func (b *Backend) WaitEvents() {
	b.handleEvents(nil)
}

func (b *Backend) WaitEventsTimeout(timeout time.Duration) {
	b.handleEvents(&timeout)
}

// PostEmptyEvent wakes a blocked pump with a sync request, whose callback
// arrives as an ordinary event.
func (b *Backend) PostEmptyEvent() {
	if b.conn == nil {
		return
	}
	if _, err := b.display.Sync(); err != nil {
		return
	}
	b.flushDisplay()
}

// flushDisplay flushes the request queue, waiting for the socket to drain
// when it is full.
func (b *Backend) flushDisplay() bool {
	for {
		err := b.conn.Flush()
		if err == nil {
			return true
		}
		if !errors.Is(err, wl.ErrWouldBlock) {
			return false
		}
		fds := []unix.PollFd{{Fd: int32(b.conn.Fd()), Events: unix.POLLOUT}}
		for {
			_, err := unix.Poll(fds, -1)
			if err == nil {
				break
			}
			if !errors.Is(err, unix.EINTR) {
				return false
			}
		}
	}
}

// handleEvents runs until at least one event has been produced or the
// timeout expires. A nil timeout waits forever and zero polls once.
func (b *Backend) handleEvents(timeout *time.Duration) {
	if b.conn == nil {
		return
	}
	var deadline time.Time
	if timeout != nil {
		deadline = time.Now().Add(*timeout)
	}

	eventOccurred := false
	for !eventOccurred {
		for !b.conn.PrepareRead() {
			n, err := b.conn.DispatchPending()
			if err != nil {
				b.connectionLost(err)
				return
			}
			if n > 0 {
				return
			}
		}

		// A full socket buffer can only be drained by the compositor, so
		// failing here means it is gone.
		if !b.flushDisplay() {
			b.conn.CancelRead()
			b.connectionLost(b.flushError())
			return
		}

		fds := []unix.PollFd{
			{Fd: int32(b.conn.Fd()), Events: unix.POLLIN},
			{Fd: int32(b.keyRepeatTimerfd), Events: unix.POLLIN},
			{Fd: int32(b.cursorTimerfd), Events: unix.POLLIN},
		}
		reads := b.pendingClipboardReads()
		for _, r := range reads {
			fds = append(fds, unix.PollFd{Fd: int32(r.fd), Events: unix.POLLIN})
		}

		if !pollWithDeadline(fds, timeout, deadline) {
			b.conn.CancelRead()
			return
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			if err := b.conn.ReadEvents(); err != nil {
				b.connectionLost(err)
				return
			}
			n, err := b.conn.DispatchPending()
			if err != nil {
				b.connectionLost(err)
				return
			}
			if n > 0 {
				eventOccurred = true
			}
		} else {
			b.conn.CancelRead()
		}

		if fds[1].Revents&unix.POLLIN != 0 && b.handleKeyRepeat() {
			eventOccurred = true
		}
		if fds[2].Revents&unix.POLLIN != 0 {
			if expirations(b.cursorTimerfd) > 0 {
				b.incrementCursorImage()
				eventOccurred = true
			}
		}
		for i, r := range reads {
			if fds[3+i].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 && b.pumpClipboardRead(r) {
				eventOccurred = true
			}
		}
	}
}

func (b *Backend) flushError() error {
	if err := b.conn.Err(); err != nil {
		return err
	}
	return errors.New("flush failed")
}

// pollWithDeadline polls fds until one is ready or the deadline passes,
// retrying on EINTR. It reports false on timeout.
func pollWithDeadline(fds []unix.PollFd, timeout *time.Duration, deadline time.Time) bool {
	for {
		ms := -1
		if timeout != nil {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			ms = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}
		n, err := unix.Poll(fds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || n == 0 {
			return false
		}
		return true
	}
}

// expirations drains a timerfd and returns how often it fired.
func expirations(fd int) uint64 {
	var buf [8]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || n != len(buf) {
			return 0
		}
		return binary.NativeEndian.Uint64(buf[:])
	}
}

// handleKeyRepeat injects one repeat per timer expiration for the key held
// in the focused window.
func (b *Backend) handleKeyRepeat() bool {
	count := expirations(b.keyRepeatTimerfd)
	w := b.keyboardFocus
	if count == 0 || w == nil {
		return false
	}
	key := translateKey(b.keyRepeatScancode)
	for i := uint64(0); i < count; i++ {
		b.host.InputKey(w, key, int(b.keyRepeatScancode), event.Press, b.mods)
		b.inputText(w, b.keyRepeatScancode)
	}
	return true
}

func setTimer(fd int, initial, interval time.Duration) {
	spec := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(int64(initial)),
		Interval: unix.NsecToTimespec(int64(interval)),
	}
	unix.TimerfdSettime(fd, 0, &spec, nil)
}
