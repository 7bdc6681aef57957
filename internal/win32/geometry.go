package win32

import "github.com/1broseidon/hatch/internal/platform"

// rect mirrors RECT.
type rect struct {
	Left, Top, Right, Bottom int32
}

// point mirrors POINT.
type point struct {
	X, Y int32
}

func (r rect) width() int32  { return r.Right - r.Left }
func (r rect) height() int32 { return r.Bottom - r.Top }

func (r rect) contains(p point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Edges reported by WM_SIZING.
const (
	wmszLeft        = 1
	wmszRight       = 2
	wmszTop         = 3
	wmszTopLeft     = 4
	wmszTopRight    = 5
	wmszBottom      = 6
	wmszBottomLeft  = 7
	wmszBottomRight = 8
)

// applyAspectRatio adjusts the window rectangle being dragged by edge so the
// content area keeps numer:denom. frame is the frame rectangle of an empty
// content area as returned by AdjustWindowRectEx.
func applyAspectRatio(edge int, area, frame rect, numer, denom int) rect {
	ratio := float32(numer) / float32(denom)
	fw, fh := frame.width(), frame.height()
	switch edge {
	case wmszLeft, wmszBottomLeft, wmszRight, wmszBottomRight:
		area.Bottom = area.Top + fh + int32(float32(area.width()-fw)/ratio)
	case wmszTopLeft, wmszTopRight:
		area.Top = area.Bottom - fh - int32(float32(area.width()-fw)/ratio)
	case wmszTop, wmszBottom:
		area.Right = area.Left + fw + int32(float32(area.height()-fh)*ratio)
	}
	return area
}

// trackLimits is the window-size part of MINMAXINFO.
type trackLimits struct {
	minX, minY int32
	maxX, maxY int32
	setMin     bool
	setMax     bool
}

// sizeLimits converts content-area limits to window limits for
// WM_GETMINMAXINFO. DontCare leaves a limit to the system.
func sizeLimits(frame rect, minWidth, minHeight, maxWidth, maxHeight int) trackLimits {
	var l trackLimits
	fw, fh := frame.width(), frame.height()
	if minWidth != platform.DontCare && minHeight != platform.DontCare {
		l.setMin = true
		l.minX = int32(minWidth) + fw
		l.minY = int32(minHeight) + fh
	}
	if maxWidth != platform.DontCare && maxHeight != platform.DontCare {
		l.setMax = true
		l.maxX = int32(maxWidth) + fw
		l.maxY = int32(maxHeight) + fh
	}
	return l
}

// chooseImage returns the image whose area is closest to width x height.
func chooseImage(images []platform.Image, width, height int) platform.Image {
	var best platform.Image
	leastDiff := -1
	for _, img := range images {
		diff := abs(img.Width*img.Height - width*height)
		if leastDiff < 0 || diff < leastDiff {
			best = img
			leastDiff = diff
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// bgraPixels converts straight RGBA pixels to the BGRA order of a
// top-down 32-bit DIB section.
func bgraPixels(img platform.Image) []byte {
	n := img.Width * img.Height * 4
	out := make([]byte, n)
	for i := 0; i < n; i += 4 {
		out[i+0] = img.Pixels[i+2]
		out[i+1] = img.Pixels[i+1]
		out[i+2] = img.Pixels[i+0]
		out[i+3] = img.Pixels[i+3]
	}
	return out
}
