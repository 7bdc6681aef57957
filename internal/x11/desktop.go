package x11

import (
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// _NET_WM_STATE actions.
const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
)

// ICCCM WM_STATE values.
const (
	wmStateNormal = 1
	wmStateIconic = 3
)

// sourceIndication marks requests as coming from a normal application.
const sourceIndication = 1

// currentDesktop returns the current virtual desktop, or 0 when the window
// manager does not report one.
func (c *Connection) currentDesktop() int {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0
	}
	return int(desktop)
}

// activateWindow asks the window manager to focus and raise win.
func (c *Connection) activateWindow(win xproto.Window) error {
	return c.sendRootMessage(win, "_NET_ACTIVE_WINDOW", sourceIndication)
}

// setNetWMState adds or removes up to two _NET_WM_STATE atoms.
func (c *Connection) setNetWMState(win xproto.Window, add bool, first string, second ...string) error {
	action := uint32(netWMStateRemove)
	if add {
		action = netWMStateAdd
	}
	a1, err := c.Atom(first)
	if err != nil {
		return err
	}
	var a2 xproto.Atom
	if len(second) > 0 {
		if a2, err = c.Atom(second[0]); err != nil {
			return err
		}
	}
	return c.sendRootMessage(win, "_NET_WM_STATE", action, uint32(a1), uint32(a2), sourceIndication)
}

// iconifyWindow requests the iconic state through WM_CHANGE_STATE.
func (c *Connection) iconifyWindow(win xproto.Window) error {
	return c.sendRootMessage(win, "WM_CHANGE_STATE", wmStateIconic)
}

// hasNetWMState reports whether every named state is set on win.
func (c *Connection) hasNetWMState(win xproto.Window, names ...string) bool {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, name := range names {
		if !slices.Contains(states, name) {
			return false
		}
	}
	return true
}

// supported reports whether the window manager lists hint in
// _NET_SUPPORTED.
func (c *Connection) supported(hint string) bool {
	hints, err := ewmh.SupportedGet(c.XUtil)
	if err != nil {
		return false
	}
	return slices.Contains(hints, hint)
}

// frameExtents returns the window decoration sizes (if available)
func (c *Connection) frameExtents(win xproto.Window) (left, top, right, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, win)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Top), int(extents.Right), int(extents.Bottom)
}

// activeWindow returns the focused top-level window per the window manager.
func (c *Connection) activeWindow() xproto.Window {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return 0
	}
	return win
}
