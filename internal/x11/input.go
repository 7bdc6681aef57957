package x11

import (
	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/atotto/clipboard"
)

type cursorData struct {
	id xproto.Cursor
}

func cursorDataOf(c *platform.Cursor) *cursorData {
	if c == nil {
		return nil
	}
	d, _ := c.Platform.(*cursorData)
	return d
}

// Glyphs of the core "cursor" font.
var fontGlyphs = map[event.CursorShape]uint16{
	event.ArrowCursor:        68,  // XC_left_ptr
	event.IBeamCursor:        152, // XC_xterm
	event.CrosshairCursor:    34,  // XC_crosshair
	event.PointingHandCursor: 60,  // XC_hand2
	event.ResizeEWCursor:     108, // XC_sb_h_double_arrow
	event.ResizeNSCursor:     116, // XC_sb_v_double_arrow
	event.ResizeAllCursor:    52,  // XC_fleur
}

func (b *Backend) CursorPos(w *platform.Window) (float64, float64) {
	reply, err := xproto.QueryPointer(b.conn.Conn(), windowOf(w).id).Reply()
	if err != nil {
		return 0, 0
	}
	return float64(reply.WinX), float64(reply.WinY)
}

func (b *Backend) SetCursorPos(w *platform.Window, x, y float64) error {
	s := windowOf(w)
	s.lastCursorX, s.lastCursorY = x, y
	xproto.WarpPointer(b.conn.Conn(), xproto.WindowNone, s.id, 0, 0, 0, 0, int16(x), int16(y))
	return nil
}

func (b *Backend) SetCursorMode(w *platform.Window, mode event.CursorMode) error {
	if mode == event.CursorDisabled {
		if b.WindowFocused(w) {
			b.disableCursor(w)
		}
	} else if b.disabledCursorWindow == w {
		b.enableCursor(w)
	}
	b.updateCursorImage(w)
	return nil
}

// disableCursor hides the cursor and confines it to the window. Motion is
// then reported relative to the window centre.
func (b *Backend) disableCursor(w *platform.Window) {
	s := windowOf(w)
	b.disabledCursorWindow = w
	b.restoreCursorX, b.restoreCursorY = b.CursorPos(w)
	b.updateCursorImage(w)
	_ = b.SetCursorPos(w, float64(s.width/2), float64(s.height/2))

	const mask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion
	reply, err := xproto.GrabPointer(b.conn.Conn(), true, s.id, mask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, s.id, b.hiddenCursor, xproto.TimeCurrentTime).Reply()
	if err != nil || reply.Status != xproto.GrabStatusSuccess {
		b.host.Logger().Debug("x11 pointer grab failed", "window", w.ID, "error", err)
	}
}

func (b *Backend) enableCursor(w *platform.Window) {
	b.disabledCursorWindow = nil
	xproto.UngrabPointer(b.conn.Conn(), xproto.TimeCurrentTime)
	_ = b.SetCursorPos(w, b.restoreCursorX, b.restoreCursorY)
	b.updateCursorImage(w)
}

func (b *Backend) updateCursorImage(w *platform.Window) {
	var cursor xproto.Cursor
	if w.CursorMode == event.CursorNormal {
		if d := cursorDataOf(b.host.Cursor(w.Cursor)); d != nil {
			cursor = d.id
		}
	} else {
		cursor = b.hiddenCursor
	}
	xproto.ChangeWindowAttributes(b.conn.Conn(), windowOf(w).id, xproto.CwCursor, []uint32{uint32(cursor)})
}

// SetRawMouseMotion is unsupported: raw motion needs XInput2, which xgb
// does not bind.
func (b *Backend) SetRawMouseMotion(w *platform.Window, enabled bool) error {
	return b.host.ReportError(platform.FeatureUnavailable, "X11: raw mouse motion is not supported")
}

func (b *Backend) RawMouseMotionSupported() bool { return false }

func (b *Backend) CreateCursor(c *platform.Cursor, img platform.Image, xhot, yhot int) error {
	if !b.render {
		return b.host.ReportError(platform.FeatureUnavailable, "X11: custom cursors require the Render extension")
	}
	conn := b.conn.Conn()

	formats, err := render.QueryPictFormats(conn).Reply()
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to query picture formats: %v", err)
	}
	format, ok := argbFormat(formats.Formats)
	if !ok {
		return b.host.ReportError(platform.PlatformError, "X11: no ARGB32 picture format")
	}

	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: %v", err)
	}
	width, height := uint16(img.Width), uint16(img.Height)
	if err := xproto.CreatePixmapChecked(conn, 32, pix, xproto.Drawable(b.conn.Root), width, height).Check(); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to create cursor pixmap: %v", err)
	}
	defer xproto.FreePixmap(conn, pix)

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: %v", err)
	}
	xproto.CreateGC(conn, gc, xproto.Drawable(pix), 0, nil)
	defer xproto.FreeGC(conn, gc)
	xproto.PutImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(pix), gc,
		width, height, 0, 0, 0, 32, premultipliedBGRA(img))

	pic, err := render.NewPictureId(conn)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: %v", err)
	}
	render.CreatePicture(conn, pic, xproto.Drawable(pix), format, 0, nil)
	defer render.FreePicture(conn, pic)

	cid, err := xproto.NewCursorId(conn)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: %v", err)
	}
	if err := render.CreateCursorChecked(conn, cid, pic, uint16(xhot), uint16(yhot)).Check(); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to create cursor: %v", err)
	}
	c.Platform = &cursorData{id: cid}
	return nil
}

// argbFormat finds the 32-bit direct format with 8 bits per channel and
// alpha in the top byte.
func argbFormat(formats []render.Pictforminfo) (render.Pictformat, bool) {
	for _, f := range formats {
		d := f.Direct
		if f.Type == render.PictTypeDirect && f.Depth == 32 &&
			d.AlphaShift == 24 && d.AlphaMask == 0xff &&
			d.RedShift == 16 && d.RedMask == 0xff &&
			d.GreenShift == 8 && d.GreenMask == 0xff &&
			d.BlueShift == 0 && d.BlueMask == 0xff {
			return f.Id, true
		}
	}
	return 0, false
}

// premultipliedBGRA converts straight RGBA to the little-endian
// premultiplied ARGB words Render expects.
func premultipliedBGRA(img platform.Image) []byte {
	out := make([]byte, img.Width*img.Height*4)
	for i := 0; i < img.Width*img.Height; i++ {
		r, g, bl, a := uint32(img.Pixels[i*4]), uint32(img.Pixels[i*4+1]), uint32(img.Pixels[i*4+2]), uint32(img.Pixels[i*4+3])
		out[i*4] = byte(bl * a / 255)
		out[i*4+1] = byte(g * a / 255)
		out[i*4+2] = byte(r * a / 255)
		out[i*4+3] = byte(a)
	}
	return out
}

func (b *Backend) CreateStandardCursor(c *platform.Cursor, shape event.CursorShape) error {
	glyph, ok := fontGlyphs[shape]
	if !ok {
		return b.host.ReportError(platform.CursorUnavailable, "X11: standard cursor shape unavailable")
	}
	conn := b.conn.Conn()
	if b.cursorFont == 0 {
		fid, err := xproto.NewFontId(conn)
		if err != nil {
			return b.host.ReportError(platform.PlatformError, "X11: %v", err)
		}
		const name = "cursor"
		if err := xproto.OpenFontChecked(conn, fid, uint16(len(name)), name).Check(); err != nil {
			return b.host.ReportError(platform.CursorUnavailable, "X11: failed to open cursor font: %v", err)
		}
		b.cursorFont = fid
	}
	cid, err := xproto.NewCursorId(conn)
	if err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: %v", err)
	}
	err = xproto.CreateGlyphCursorChecked(conn, cid, b.cursorFont, b.cursorFont, glyph, glyph+1,
		0, 0, 0, 0xffff, 0xffff, 0xffff).Check()
	if err != nil {
		return b.host.ReportError(platform.CursorUnavailable, "X11: failed to create standard cursor: %v", err)
	}
	c.Platform = &cursorData{id: cid}
	return nil
}

func (b *Backend) DestroyCursor(c *platform.Cursor) {
	if d := cursorDataOf(c); d != nil && d.id != 0 && b.conn != nil {
		xproto.FreeCursor(b.conn.Conn(), d.id)
		d.id = 0
	}
}

func (b *Backend) SetCursor(w *platform.Window, c *platform.Cursor) error {
	if w.CursorMode == event.CursorNormal {
		b.updateCursorImage(w)
	}
	return nil
}

// The clipboard goes through the xclip or xsel helpers.
func (b *Backend) SetClipboardString(s string) error {
	if err := clipboard.WriteAll(s); err != nil {
		return b.host.ReportError(platform.PlatformError, "X11: failed to set clipboard: %v", err)
	}
	return nil
}

func (b *Backend) ClipboardString() (string, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", b.host.ReportError(platform.FormatUnavailable, "X11: failed to read clipboard: %v", err)
	}
	return s, nil
}
