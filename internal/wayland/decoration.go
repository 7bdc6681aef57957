//go:build linux

package wayland

import (
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/wl"
)

// decorationPart says which surface of a window the pointer is over.
type decorationPart int

const (
	partNone decorationPart = iota
	partMain
	partTop
	partLeft
	partRight
	partBottom
)

// Client-side decoration geometry in surface coordinates.
const (
	decorationTop   = 24
	decorationWidth = 4
)

type decorationRect struct {
	x, y          int
	width, height int
}

// decorationLayout returns the position and size of the top, left, right
// and bottom decoration parts around a content area of width by height.
func decorationLayout(width, height int) [4]decorationRect {
	return [4]decorationRect{
		{0, -decorationTop, width, decorationTop},
		{-decorationWidth, -decorationTop, decorationWidth, height + decorationTop},
		{width, -decorationTop, decorationWidth, height + decorationTop},
		{-decorationWidth, height, width + 2*decorationWidth, decorationWidth},
	}
}

type decorationSurface struct {
	surface    *wl.Surface
	subsurface *wl.Subsurface
	viewport   *wl.Viewport
}

type decorationState struct {
	serverSide bool
	buffer     *wl.Buffer
	parts      [4]decorationSurface
}

func (d *decorationState) active() bool {
	return d.parts[0].surface != nil
}

func (b *Backend) createDecorations(w *platform.Window) {
	s := windowOf(w)
	if b.viewporter == nil || b.subcompositor == nil || !w.Decorated ||
		s.decorations.serverSide || b.opts.Decorations == DecorationsNone ||
		s.decorations.active() {
		return
	}

	if s.decorations.buffer == nil {
		c := b.opts.DecorationColor
		buf, err := b.createShmBuffer(platform.Image{Width: 1, Height: 1, Pixels: c[:]})
		if err != nil {
			b.host.Logger().Debug("wayland decoration buffer failed", "error", err)
			return
		}
		s.decorations.buffer = buf
	}

	opaque := b.opts.DecorationColor[3] == 255
	layout := decorationLayout(s.width, s.height)
	for i := range s.decorations.parts {
		part, err := b.createDecorationSurface(s.surface, s.decorations.buffer, layout[i], opaque)
		if err != nil {
			b.host.Logger().Debug("wayland decoration surface failed", "error", err)
			b.destroyDecorations(w)
			return
		}
		s.decorations.parts[i] = part
		b.surfaces[part.surface] = surfaceOwner{window: w, part: partTop + decorationPart(i)}
	}
}

func (b *Backend) createDecorationSurface(parent *wl.Surface, buf *wl.Buffer, r decorationRect, opaque bool) (decorationSurface, error) {
	var d decorationSurface
	surface, err := b.compositor.CreateSurface()
	if err != nil {
		return d, err
	}
	d.surface = surface
	if d.subsurface, err = b.subcompositor.GetSubsurface(surface, parent); err != nil {
		surface.Destroy()
		return decorationSurface{}, err
	}
	d.subsurface.SetPosition(int32(r.x), int32(r.y))
	if d.viewport, err = b.viewporter.GetViewport(surface); err != nil {
		d.subsurface.Destroy()
		surface.Destroy()
		return decorationSurface{}, err
	}
	d.viewport.SetDestination(int32(r.width), int32(r.height))
	surface.Attach(buf, 0, 0)

	if opaque {
		if region, err := b.compositor.CreateRegion(); err == nil {
			region.Add(0, 0, int32(r.width), int32(r.height))
			surface.SetOpaqueRegion(region)
			region.Destroy()
		}
	}
	surface.Commit()
	return d, nil
}

func (b *Backend) destroyDecorations(w *platform.Window) {
	s := windowOf(w)
	for i := range s.decorations.parts {
		d := &s.decorations.parts[i]
		if d.surface == nil {
			continue
		}
		delete(b.surfaces, d.surface)
		if b.pointerFocus == w && b.pointerPart == partTop+decorationPart(i) {
			b.pointerPart = partNone
		}
		if d.viewport != nil {
			d.viewport.Destroy()
		}
		if d.subsurface != nil {
			d.subsurface.Destroy()
		}
		d.surface.Destroy()
		*d = decorationSurface{}
	}
}

func (b *Backend) resizeDecorations(w *platform.Window) {
	s := windowOf(w)
	if !s.decorations.active() {
		return
	}
	layout := decorationLayout(s.width, s.height)
	opaque := b.opts.DecorationColor[3] == 255
	for i, r := range layout {
		d := s.decorations.parts[i]
		d.subsurface.SetPosition(int32(r.x), int32(r.y))
		d.viewport.SetDestination(int32(r.width), int32(r.height))
		if opaque {
			if region, err := b.compositor.CreateRegion(); err == nil {
				region.Add(0, 0, int32(r.width), int32(r.height))
				d.surface.SetOpaqueRegion(region)
				region.Destroy()
			}
		}
		d.surface.Commit()
	}
}

// decorationCursor picks the theme cursor for a pointer at x, y on a
// decoration part of a window width pixels wide.
func decorationCursor(part decorationPart, x, y float64, width int) string {
	switch part {
	case partTop:
		if y < decorationWidth {
			return "n-resize"
		}
		return "left_ptr"
	case partLeft:
		if y < decorationWidth {
			return "nw-resize"
		}
		return "w-resize"
	case partRight:
		if y < decorationWidth {
			return "ne-resize"
		}
		return "e-resize"
	case partBottom:
		if x < decorationWidth {
			return "sw-resize"
		}
		if x > float64(width+decorationWidth) {
			return "se-resize"
		}
		return "s-resize"
	}
	return "left_ptr"
}

// decorationEdges returns the xdg resize edges for a press at x, y, or
// ResizeEdgeNone when the press should move the window.
func decorationEdges(part decorationPart, x, y float64, width int) uint32 {
	switch part {
	case partTop:
		if y < decorationWidth {
			return wl.ResizeEdgeTop
		}
		return wl.ResizeEdgeNone
	case partLeft:
		if y < decorationWidth {
			return wl.ResizeEdgeTopLeft
		}
		return wl.ResizeEdgeLeft
	case partRight:
		if y < decorationWidth {
			return wl.ResizeEdgeTopRight
		}
		return wl.ResizeEdgeRight
	case partBottom:
		if x < decorationWidth {
			return wl.ResizeEdgeBottomLeft
		}
		if x > float64(width+decorationWidth) {
			return wl.ResizeEdgeBottomRight
		}
		return wl.ResizeEdgeBottom
	}
	return wl.ResizeEdgeNone
}
