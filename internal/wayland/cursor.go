//go:build linux

package wayland

import (
	"errors"
	"time"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/wayland/xcursor"
	"github.com/1broseidon/hatch/internal/wl"
)

type cursorState struct {
	theme      *xcursor.Theme
	themeHiDPI *xcursor.Theme
	surface    *wl.Surface

	// loaded holds uploaded theme cursors by name, one map per theme.
	loaded      map[string]*themedCursor
	loadedHiDPI map[string]*themedCursor
}

type cursorFrame struct {
	buffer     *wl.Buffer
	width      int
	height     int
	xhot, yhot int
	delay      time.Duration
}

type themedCursor struct {
	frames []cursorFrame
}

// cursorData is the Wayland side of a platform.Cursor. Custom cursors have
// a single frame; standard cursors come from the theme and may animate.
type cursorData struct {
	custom  *cursorFrame
	themed  *themedCursor
	hidpi   *themedCursor
	current int
}

// Theme names tried for each standard shape, freedesktop names first.
var standardCursorNames = map[event.CursorShape][]string{
	event.ArrowCursor:        {"default", "left_ptr"},
	event.IBeamCursor:        {"text", "xterm"},
	event.CrosshairCursor:    {"crosshair"},
	event.PointingHandCursor: {"pointer", "hand2"},
	event.ResizeEWCursor:     {"ew-resize", "sb_h_double_arrow"},
	event.ResizeNSCursor:     {"ns-resize", "sb_v_double_arrow"},
	event.ResizeNWSECursor:   {"nwse-resize"},
	event.ResizeNESWCursor:   {"nesw-resize"},
	event.ResizeAllCursor:    {"all-scroll", "fleur"},
	event.NotAllowedCursor:   {"not-allowed"},
}

func cursorDataOf(c *platform.Cursor) *cursorData {
	if c == nil {
		return nil
	}
	d, _ := c.Platform.(*cursorData)
	return d
}

// loadThemeCursor uploads every frame of a theme cursor, caching the
// result for the lifetime of the connection.
func (b *Backend) loadThemeCursor(name string, hidpi bool) *themedCursor {
	cache, theme := &b.cursors.loaded, b.cursors.theme
	if hidpi {
		cache, theme = &b.cursors.loadedHiDPI, b.cursors.themeHiDPI
	}
	if theme == nil {
		return nil
	}
	if *cache == nil {
		*cache = make(map[string]*themedCursor)
	}
	if tc, ok := (*cache)[name]; ok {
		return tc
	}

	c, err := theme.Cursor(name)
	if err != nil {
		if !errors.Is(err, xcursor.ErrNotFound) {
			b.host.Logger().Debug("wayland cursor load failed", "cursor", name, "error", err)
		}
		(*cache)[name] = nil
		return nil
	}
	tc := &themedCursor{}
	for _, img := range c.Images {
		buf, err := b.createCursorBuffer(img)
		if err != nil {
			b.host.Logger().Debug("wayland cursor upload failed", "cursor", name, "error", err)
			break
		}
		tc.frames = append(tc.frames, cursorFrame{
			buffer: buf,
			width:  img.Width,
			height: img.Height,
			xhot:   img.XHot,
			yhot:   img.YHot,
			delay:  img.Delay,
		})
	}
	if len(tc.frames) == 0 {
		tc = nil
	}
	(*cache)[name] = tc
	return tc
}

func (b *Backend) ensureCursorSurface() bool {
	if b.cursors.surface != nil {
		return true
	}
	surface, err := b.compositor.CreateSurface()
	if err != nil {
		b.host.Logger().Debug("wayland cursor surface failed", "error", err)
		return false
	}
	b.cursors.surface = surface
	return true
}

// releaseCursorSurface destroys the cursor surface and every uploaded
// theme frame.
func (b *Backend) releaseCursorSurface() {
	for _, cache := range []map[string]*themedCursor{b.cursors.loaded, b.cursors.loadedHiDPI} {
		for _, tc := range cache {
			if tc == nil {
				continue
			}
			for _, f := range tc.frames {
				f.buffer.Destroy()
			}
		}
	}
	b.cursors.loaded, b.cursors.loadedHiDPI = nil, nil
	if b.cursors.surface != nil {
		b.cursors.surface.Destroy()
		b.cursors.surface = nil
	}
	if b.cursorTimerfd >= 0 {
		setTimer(b.cursorTimerfd, 0, 0)
	}
}

// showCursorFrame attaches f to the cursor surface and makes it the
// pointer image.
func (b *Backend) showCursorFrame(f cursorFrame, scale int) {
	if b.pointer == nil || !b.ensureCursorSurface() {
		return
	}
	surface := b.cursors.surface
	b.pointer.SetCursor(b.pointerEnterSerial, surface, int32(f.xhot/scale), int32(f.yhot/scale))
	surface.SetBufferScale(int32(scale))
	surface.Attach(f.buffer, 0, 0)
	surface.Damage(0, 0, int32(f.width), int32(f.height))
	surface.Commit()
}

// setCursorImage shows the current frame of d, picking the HiDPI theme on
// scaled windows and arming the animation timer.
func (b *Backend) setCursorImage(w *platform.Window, d *cursorData) {
	if d.custom != nil {
		setTimer(b.cursorTimerfd, 0, 0)
		b.showCursorFrame(*d.custom, 1)
		return
	}
	tc, scale := d.themed, 1
	if s := windowOf(w); s != nil && s.scale > 1 && d.hidpi != nil {
		tc, scale = d.hidpi, 2
	}
	if tc == nil || len(tc.frames) == 0 {
		return
	}
	f := tc.frames[d.current%len(tc.frames)]
	if len(tc.frames) > 1 {
		setTimer(b.cursorTimerfd, f.delay, 0)
	} else {
		setTimer(b.cursorTimerfd, 0, 0)
	}
	b.showCursorFrame(f, scale)
}

// defaultCursor is used by windows without a cursor of their own.
func (b *Backend) defaultCursor() *cursorData {
	d := &cursorData{}
	for _, name := range standardCursorNames[event.ArrowCursor] {
		if d.themed = b.loadThemeCursor(name, false); d.themed != nil {
			d.hidpi = b.loadThemeCursor(name, true)
			return d
		}
	}
	return nil
}

// applyCursor brings the pointer image and lock in line with the window's
// cursor mode. It does nothing unless the pointer is over the content area.
func (b *Backend) applyCursor(w *platform.Window) {
	if b.pointer == nil || b.pointerFocus != w || b.pointerPart != partMain {
		return
	}
	s := windowOf(w)
	if w.CursorMode != event.CursorDisabled && s.lockedPointer != nil {
		b.unlockPointer(w)
	}

	switch w.CursorMode {
	case event.CursorNormal:
		d := cursorDataOf(b.host.Cursor(w.Cursor))
		if d == nil {
			d = b.defaultCursor()
		}
		if d != nil {
			b.setCursorImage(w, d)
		}
	case event.CursorDisabled:
		if s.lockedPointer == nil {
			b.lockPointer(w)
		}
	case event.CursorHidden:
		b.pointer.SetCursor(b.pointerEnterSerial, nil, 0, 0)
	}
}

// setThemeCursor shows a named theme cursor, used over decorations.
func (b *Backend) setThemeCursor(w *platform.Window, name string) {
	tc := b.loadThemeCursor(name, false)
	if tc == nil {
		return
	}
	setTimer(b.cursorTimerfd, 0, 0)
	b.showCursorFrame(tc.frames[0], 1)
}

// incrementCursorImage advances an animated cursor by one frame.
func (b *Backend) incrementCursorImage() {
	w := b.pointerFocus
	if w == nil || b.pointerPart != partMain || w.CursorMode != event.CursorNormal {
		return
	}
	d := cursorDataOf(b.host.Cursor(w.Cursor))
	if d == nil || d.themed == nil {
		return
	}
	d.current = (d.current + 1) % len(d.themed.frames)
	b.setCursorImage(w, d)
}

func (b *Backend) lockPointer(w *platform.Window) {
	if b.relativePointerManager == nil {
		b.host.ReportError(platform.PlatformError, "Wayland: no relative pointer manager")
		return
	}
	if b.pointerConstraints == nil {
		b.host.ReportError(platform.PlatformError, "Wayland: no pointer constraints")
		return
	}
	s := windowOf(w)
	rp, err := b.relativePointerManager.GetRelativePointer(b.pointer)
	if err != nil {
		b.host.ReportError(platform.PlatformError, "Wayland: failed to get relative pointer: %v", err)
		return
	}
	rp.OnRelativeMotion = func(_, _ uint32, dx, dy, dxUnaccel, dyUnaccel wl.Fixed) {
		b.relativeMotion(w, dx, dy, dxUnaccel, dyUnaccel)
	}
	lp, err := b.pointerConstraints.LockPointer(s.surface, b.pointer, nil, wl.ConstraintLifetimePersistent)
	if err != nil {
		rp.Destroy()
		b.host.ReportError(platform.PlatformError, "Wayland: failed to lock pointer: %v", err)
		return
	}
	s.relativePointer, s.lockedPointer = rp, lp
	b.pointer.SetCursor(b.pointerEnterSerial, nil, 0, 0)
}

func (b *Backend) unlockPointer(w *platform.Window) {
	s := windowOf(w)
	if s == nil {
		return
	}
	if s.relativePointer != nil {
		s.relativePointer.Destroy()
		s.relativePointer = nil
	}
	if s.lockedPointer != nil {
		s.lockedPointer.Destroy()
		s.lockedPointer = nil
	}
}

func (b *Backend) relativeMotion(w *platform.Window, dx, dy, dxUnaccel, dyUnaccel wl.Fixed) {
	if w.CursorMode != event.CursorDisabled {
		return
	}
	x, y := w.VirtualCursorX, w.VirtualCursorY
	if w.RawMouseMotion {
		x += dxUnaccel.Float()
		y += dyUnaccel.Float()
	} else {
		x += dx.Float()
		y += dy.Float()
	}
	b.host.InputCursorPos(w, x, y)
}

func (b *Backend) CursorPos(w *platform.Window) (float64, float64) {
	s := windowOf(w)
	return s.cursorX, s.cursorY
}

// SetCursorPos can only hint where the cursor should reappear once a
// pointer lock ends.
func (b *Backend) SetCursorPos(w *platform.Window, x, y float64) error {
	s := windowOf(w)
	if s.lockedPointer == nil {
		return b.host.ReportError(platform.FeatureUnavailable, "Wayland: the platform does not support setting the cursor position")
	}
	s.lockedPointer.SetCursorPositionHint(wl.FixedFromFloat(x), wl.FixedFromFloat(y))
	s.surface.Commit()
	return nil
}

func (b *Backend) SetCursorMode(w *platform.Window, mode event.CursorMode) error {
	b.applyCursor(w)
	return nil
}

func (b *Backend) SetRawMouseMotion(w *platform.Window, enabled bool) error { return nil }

func (b *Backend) RawMouseMotionSupported() bool { return true }

func (b *Backend) CreateCursor(c *platform.Cursor, img platform.Image, xhot, yhot int) error {
	buf, err := b.createShmBuffer(img)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "Wayland: failed to create cursor buffer: %v", err)
	}
	c.Platform = &cursorData{custom: &cursorFrame{
		buffer: buf,
		width:  img.Width,
		height: img.Height,
		xhot:   xhot,
		yhot:   yhot,
	}}
	return nil
}

func (b *Backend) CreateStandardCursor(c *platform.Cursor, shape event.CursorShape) error {
	for _, name := range standardCursorNames[shape] {
		tc := b.loadThemeCursor(name, false)
		if tc == nil {
			continue
		}
		c.Platform = &cursorData{themed: tc, hidpi: b.loadThemeCursor(name, true)}
		return nil
	}
	return b.host.ReportError(platform.CursorUnavailable, "Wayland: standard cursor shape unavailable")
}

func (b *Backend) DestroyCursor(c *platform.Cursor) {
	d := cursorDataOf(c)
	if d == nil {
		return
	}
	if d.custom != nil {
		d.custom.buffer.Destroy()
	}
	c.Platform = nil
}

func (b *Backend) SetCursor(w *platform.Window, c *platform.Cursor) error {
	b.applyCursor(w)
	return nil
}
