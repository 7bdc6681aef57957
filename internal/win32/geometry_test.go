package win32

import (
	"bytes"
	"testing"

	"github.com/1broseidon/hatch/internal/platform"
)

func TestApplyAspectRatio(t *testing.T) {
	// 8px borders left and right, 30px title plus 8px bottom border.
	frame := rect{Left: -8, Top: -30, Right: 8, Bottom: 8}
	cases := []struct {
		name string
		edge int
		in   rect
		want rect
	}{
		{"right edge grows height", wmszRight, rect{0, 0, 300, 238}, rect{0, 0, 300, 197}},
		{"top left moves top", wmszTopLeft, rect{0, 100, 300, 400}, rect{0, 203, 300, 400}},
		{"bottom edge grows width", wmszBottom, rect{10, 10, 100, 348}, rect{10, 10, 559, 348}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := applyAspectRatio(tc.edge, tc.in, frame, 16, 9); got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestSizeLimits(t *testing.T) {
	frame := rect{Left: -8, Top: -30, Right: 8, Bottom: 8}

	l := sizeLimits(frame, 100, 50, platform.DontCare, platform.DontCare)
	if !l.setMin || l.setMax {
		t.Fatalf("limits = %+v", l)
	}
	if l.minX != 116 || l.minY != 88 {
		t.Fatalf("min track size = %dx%d", l.minX, l.minY)
	}

	l = sizeLimits(frame, platform.DontCare, 50, 800, 600)
	if l.setMin || !l.setMax || l.maxX != 816 || l.maxY != 638 {
		t.Fatalf("limits = %+v", l)
	}
}

func TestChooseImage(t *testing.T) {
	images := []platform.Image{
		{Width: 16, Height: 16},
		{Width: 32, Height: 32},
		{Width: 48, Height: 48},
	}
	if got := chooseImage(images, 32, 32); got.Width != 32 {
		t.Fatalf("exact match picked %dpx", got.Width)
	}
	if got := chooseImage(images, 20, 20); got.Width != 16 {
		t.Fatalf("closest to 20px picked %dpx", got.Width)
	}
	if got := chooseImage(images, 256, 256); got.Width != 48 {
		t.Fatalf("closest to 256px picked %dpx", got.Width)
	}
	if got := chooseImage(nil, 16, 16); got.Width != 0 {
		t.Fatalf("empty list returned %+v", got)
	}
}

func TestBGRAPixels(t *testing.T) {
	img := platform.Image{Width: 2, Height: 1, Pixels: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	want := []byte{3, 2, 1, 4, 7, 6, 5, 8}
	if got := bgraPixels(img); !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRectContains(t *testing.T) {
	r := rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	if !r.contains(point{0, 0}) || !r.contains(point{9, 9}) {
		t.Fatalf("inner points rejected")
	}
	if r.contains(point{10, 5}) || r.contains(point{5, -1}) {
		t.Fatalf("outer points accepted")
	}
}
