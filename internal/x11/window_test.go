package x11

import (
	"math"
	"slices"
	"testing"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

func unconstrained() *platform.Window {
	return &platform.Window{
		Resizable: true,
		MinWidth:  platform.DontCare,
		MinHeight: platform.DontCare,
		MaxWidth:  platform.DontCare,
		MaxHeight: platform.DontCare,
		Numer:     platform.DontCare,
		Denom:     platform.DontCare,
	}
}

func TestNormalHints_FixedSizeWhenNotResizable(t *testing.T) {
	w := unconstrained()
	w.Resizable = false

	h := normalHints(w, 800, 600)
	want := uint(icccm.SizeHintPWinGravity | icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize)
	if h.Flags != want {
		t.Fatalf("expected flags %#x, got %#x", want, h.Flags)
	}
	if h.MinWidth != 800 || h.MaxWidth != 800 || h.MinHeight != 600 || h.MaxHeight != 600 {
		t.Fatalf("expected size pinned to 800x600, got %+v", h)
	}
}

func TestNormalHints_LimitsAndAspect(t *testing.T) {
	w := unconstrained()
	w.MinWidth, w.MinHeight = 200, 100
	w.Numer, w.Denom = 16, 9

	h := normalHints(w, 800, 600)
	if h.Flags&icccm.SizeHintPMinSize == 0 || h.MinWidth != 200 || h.MinHeight != 100 {
		t.Fatalf("expected minimum size 200x100, got %+v", h)
	}
	if h.Flags&icccm.SizeHintPMaxSize != 0 {
		t.Fatalf("expected no maximum size")
	}
	if h.Flags&icccm.SizeHintPAspect == 0 || h.MinAspectNum != 16 || h.MaxAspectDen != 9 {
		t.Fatalf("expected 16:9 aspect, got %+v", h)
	}
	if h.WinGravity != xproto.GravityStatic {
		t.Fatalf("expected static gravity, got %d", h.WinGravity)
	}
}

func TestNormalHints_FullscreenHasNoConstraints(t *testing.T) {
	w := unconstrained()
	w.Resizable = false
	w.Monitor = 1

	h := normalHints(w, 800, 600)
	if h.Flags != icccm.SizeHintPWinGravity {
		t.Fatalf("expected only gravity for fullscreen windows, got %#x", h.Flags)
	}
}

func TestEditStates(t *testing.T) {
	states := []string{"_NET_WM_STATE_ABOVE"}

	states = editStates(states, true, "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_ABOVE")
	if !slices.Equal(states, []string{"_NET_WM_STATE_ABOVE", "_NET_WM_STATE_MAXIMIZED_VERT"}) {
		t.Fatalf("unexpected states after add: %v", states)
	}
	states = editStates(states, false, "_NET_WM_STATE_ABOVE", "_NET_WM_STATE_HIDDEN")
	if !slices.Equal(states, []string{"_NET_WM_STATE_MAXIMIZED_VERT"}) {
		t.Fatalf("unexpected states after remove: %v", states)
	}
}

func TestMotifHints(t *testing.T) {
	if got := motifHints(false); !slices.Equal(got, []uint{2, 0, 0, 0, 0}) {
		t.Fatalf("unexpected undecorated hints %v", got)
	}
	if got := motifHints(true); got[2] != 1 {
		t.Fatalf("expected all decorations, got %v", got)
	}
}

func TestOpacityValue(t *testing.T) {
	if got := opacityValue(1); got != math.MaxUint32 {
		t.Fatalf("expected full opacity to be 0xffffffff, got %#x", got)
	}
	if got := opacityValue(0); got != 0 {
		t.Fatalf("expected 0, got %#x", got)
	}
	if got := opacityValue(0.5); got < 0x7fffff00 || got > 0x80000100 {
		t.Fatalf("expected about half, got %#x", got)
	}
}

func TestWmIcon_PacksARGB(t *testing.T) {
	img := platform.Image{Width: 2, Height: 1, Pixels: []byte{
		0x11, 0x22, 0x33, 0x44,
		0xff, 0x00, 0x00, 0xff,
	}}
	icon := wmIcon(img)
	if icon.Width != 2 || icon.Height != 1 {
		t.Fatalf("unexpected icon size %dx%d", icon.Width, icon.Height)
	}
	if icon.Data[0] != 0x44112233 || icon.Data[1] != 0xffff0000 {
		t.Fatalf("unexpected icon data %#x", icon.Data)
	}
}

func TestPremultipliedBGRA(t *testing.T) {
	img := platform.Image{Width: 2, Height: 1, Pixels: []byte{
		0xff, 0x80, 0x00, 0xff,
		0xff, 0xff, 0xff, 0x80,
	}}
	got := premultipliedBGRA(img)
	want := []byte{
		0x00, 0x80, 0xff, 0xff,
		0x80, 0x80, 0x80, 0x80,
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestArgbFormat(t *testing.T) {
	rgb := render.Pictforminfo{Id: 1, Type: render.PictTypeDirect, Depth: 24, Direct: render.Directformat{
		RedShift: 16, RedMask: 0xff, GreenShift: 8, GreenMask: 0xff, BlueMask: 0xff,
	}}
	argb := rgb
	argb.Id = 2
	argb.Depth = 32
	argb.Direct.AlphaShift = 24
	argb.Direct.AlphaMask = 0xff

	if id, ok := argbFormat([]render.Pictforminfo{rgb, argb}); !ok || id != 2 {
		t.Fatalf("expected format 2, got %d (ok=%v)", id, ok)
	}
	if _, ok := argbFormat([]render.Pictforminfo{rgb}); ok {
		t.Fatalf("expected no ARGB format")
	}
}

func TestTransparentVisual(t *testing.T) {
	screen := &xproto.ScreenInfo{AllowedDepths: []xproto.DepthInfo{
		{Depth: 24, Visuals: []xproto.VisualInfo{
			{VisualId: 0x21, Class: xproto.VisualClassTrueColor, RedMask: 0xff0000, GreenMask: 0xff00, BlueMask: 0xff},
		}},
		{Depth: 32, Visuals: []xproto.VisualInfo{
			{VisualId: 0x5e, Class: xproto.VisualClassTrueColor, RedMask: 0xff0000, GreenMask: 0xff00, BlueMask: 0xff},
		}},
	}}
	depth, visual, ok := transparentVisual(screen)
	if !ok || depth != 32 || visual != 0x5e {
		t.Fatalf("expected 32-bit visual 0x5e, got depth %d visual %#x (ok=%v)", depth, visual, ok)
	}

	if _, _, ok := transparentVisual(&xproto.ScreenInfo{}); ok {
		t.Fatalf("expected no visual on an empty screen")
	}
}
