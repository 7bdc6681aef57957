package platform

import (
	"errors"
	"fmt"
	"testing"
)

func TestRegistryHandlesAreStable(t *testing.T) {
	var r Registry[CursorID, Cursor]
	a := r.Add(&Cursor{}, false)
	b := r.Add(&Cursor{}, false)
	first := r.Add(&Cursor{}, true)

	all := r.All()
	if len(all) != 3 || all[0] != r.Get(first) || all[1] != r.Get(a) || all[2] != r.Get(b) {
		t.Fatalf("unexpected registry order")
	}
	if !r.Remove(a) {
		t.Fatalf("remove should report presence")
	}
	if r.Remove(a) {
		t.Fatalf("second remove should report absence")
	}
	c := r.Add(&Cursor{}, false)
	if c == a {
		t.Fatalf("handles must not be reused")
	}
	if r.Get(a) != nil {
		t.Fatalf("stale handle should not resolve")
	}
	if r.Get(0) != nil {
		t.Fatalf("zero handle should never resolve")
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := fmt.Errorf("create window: %w", Errorf(FeatureUnavailable, "Wayland: the platform does not support setting the window position"))

	if !IsKind(err, FeatureUnavailable) {
		t.Fatalf("expected FeatureUnavailable through wrapping")
	}
	if !errors.Is(err, &Error{Kind: FeatureUnavailable}) {
		t.Fatalf("errors.Is should match on kind")
	}
	if errors.Is(err, &Error{Kind: PlatformError}) {
		t.Fatalf("errors.Is should not match a different kind")
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Fatalf("plain errors have no kind")
	}
}

func TestErrorfKeepsWrappedCause(t *testing.T) {
	cause := errors.New("EAGAIN")
	err := Errorf(PlatformError, "flush failed: %w", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause should be reachable")
	}
	if err.Error() != "flush failed: EAGAIN" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestChooseVideoModePrefersClosestSizeThenRate(t *testing.T) {
	modes := []VideoMode{
		{Width: 1280, Height: 720, RedBits: 8, GreenBits: 8, BlueBits: 8, RefreshRate: 60},
		{Width: 1920, Height: 1080, RedBits: 8, GreenBits: 8, BlueBits: 8, RefreshRate: 60},
		{Width: 1920, Height: 1080, RedBits: 8, GreenBits: 8, BlueBits: 8, RefreshRate: 144},
		{Width: 1920, Height: 1080, RedBits: 5, GreenBits: 6, BlueBits: 5, RefreshRate: 240},
	}

	got, err := ChooseVideoMode(modes, VideoMode{Width: 1900, Height: 1000, RedBits: 8, GreenBits: 8, BlueBits: 8, RefreshRate: 60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != modes[1] {
		t.Fatalf("expected 1920x1080@60, got %+v", got)
	}

	got, _ = ChooseVideoMode(modes, VideoMode{Width: 1920, Height: 1080, RedBits: 8, GreenBits: 8, BlueBits: 8, RefreshRate: DontCare})
	if got != modes[2] {
		t.Fatalf("expected highest refresh rate when rate is DontCare, got %+v", got)
	}

	if _, err := ChooseVideoMode(nil, VideoMode{}); !IsKind(err, PlatformError) {
		t.Fatalf("expected PlatformError for no modes, got %v", err)
	}
}

func TestSplitBPP(t *testing.T) {
	cases := []struct {
		bpp              int
		red, green, blue int
	}{
		{32, 8, 8, 8},
		{24, 8, 8, 8},
		{16, 5, 6, 5},
		{15, 5, 5, 5},
	}
	for _, tc := range cases {
		r, g, b := SplitBPP(tc.bpp)
		if r != tc.red || g != tc.green || b != tc.blue {
			t.Fatalf("SplitBPP(%d) = %d,%d,%d want %d,%d,%d", tc.bpp, r, g, b, tc.red, tc.green, tc.blue)
		}
	}
}

func TestParseID(t *testing.T) {
	for _, name := range []string{"win32", "Wayland", " x11 ", "null", ""} {
		if _, err := ParseID(name); err != nil {
			t.Fatalf("ParseID(%q): %v", name, err)
		}
	}
	if _, err := ParseID("cocoa"); err == nil {
		t.Fatalf("expected error for unsupported platform")
	}
}
