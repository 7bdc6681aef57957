//go:build windows

package win32

import "time"

// threadQueue is the message queue of the thread that called Init.
type threadQueue struct {
	// last keeps the cursor point of the most recently peeked message.
	last msg
}

func (q *threadQueue) Peek() (message, bool) {
	if !peekMessage(&q.last, 0, true) {
		return message{}, false
	}
	return fromMsg(q.last), true
}

func (q *threadQueue) Dispatch(m message) {
	native := msg{
		Hwnd:    m.hwnd,
		Message: m.msg,
		WParam:  m.wParam,
		LParam:  m.lParam,
		Time:    m.time,
		Pt:      q.last.Pt,
	}
	translateMessage(&native)
	dispatchMessage(&native)
}

func (q *threadQueue) Wait(timeout time.Duration) {
	if timeout < 0 {
		waitMessage()
		return
	}
	msgWaitForMultipleObjects(uint32(timeout.Milliseconds()))
}

func (q *threadQueue) Post(hwnd uintptr, message uint32) error {
	return postMessage(hwnd, message, 0, 0)
}

func (q *threadQueue) KeyState(vk int) int16 { return getKeyState(vk) }
func (q *threadQueue) ActiveWindow() uintptr  { return getActiveWindow() }
