package x11

import (
	"testing"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestXftDPI(t *testing.T) {
	resources := "Xcursor.size:\t24\nXft.antialias:\t1\nXft.dpi:\t144\n"
	dpi, ok := xftDPI(resources)
	if !ok || dpi != 144 {
		t.Fatalf("expected 144, got %v (ok=%v)", dpi, ok)
	}
	if _, ok := xftDPI("Xft.dpi: nonsense\n"); ok {
		t.Fatalf("expected malformed dpi to be rejected")
	}
	if _, ok := xftDPI("Xft.hinting: 1\n"); ok {
		t.Fatalf("expected missing dpi to be rejected")
	}
}

func TestIntersectWorkarea(t *testing.T) {
	monitor := platform.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}
	// A work area spanning both monitors with a 32px top panel.
	workArea := platform.Rect{X: 0, Y: 32, Width: 3840, Height: 1048}

	got := intersectWorkarea(monitor, workArea)
	want := platform.Rect{X: 1920, Y: 32, Width: 1920, Height: 1048}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	disjoint := platform.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	if got := intersectWorkarea(monitor, disjoint); got != monitor {
		t.Fatalf("expected monitor unchanged for disjoint work area, got %+v", got)
	}
}

func TestUpdateStrutsForMonitor_OnlyOverlappingStrutsCount(t *testing.T) {
	left := platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := platform.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}
	// Bottom panel on the left monitor only.
	panel := &ewmh.WmStrutPartial{Bottom: 40, BottomStartX: 0, BottomEndX: 1919}

	var accLeft, accRight dockStruts
	updateStrutsForMonitor(left, 3840, 1080, panel, &accLeft)
	updateStrutsForMonitor(right, 3840, 1080, panel, &accRight)

	if accLeft.bottom != 40 {
		t.Fatalf("expected left bottom strut 40, got %d", accLeft.bottom)
	}
	if accRight != (dockStruts{}) {
		t.Fatalf("expected no struts on the right monitor, got %+v", accRight)
	}

	area, ok := applyStruts(left, accLeft)
	if !ok {
		t.Fatalf("expected struts to apply")
	}
	if area != (platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1040}) {
		t.Fatalf("unexpected work area %+v", area)
	}
	if _, ok := applyStruts(right, accRight); ok {
		t.Fatalf("expected empty struts not to apply")
	}
}

func TestFullStrut_SpansRoot(t *testing.T) {
	sp := fullStrut(&ewmh.WmStrut{Top: 24}, 2560, 1440)
	if sp.TopStartX != 0 || sp.TopEndX != 2559 {
		t.Fatalf("expected top strut across the root, got %d..%d", sp.TopStartX, sp.TopEndX)
	}

	var acc dockStruts
	updateStrutsForMonitor(platform.Rect{Width: 2560, Height: 1440}, 2560, 1440, sp, &acc)
	if acc.top != 24 {
		t.Fatalf("expected top strut 24, got %d", acc.top)
	}
}

func TestRefreshRate(t *testing.T) {
	// 1920x1080@60 CVT reduced blanking.
	mi := randr.ModeInfo{Width: 1920, Height: 1080, DotClock: 138500000, Htotal: 2080, Vtotal: 1111}
	if got := refreshRate(mi); got != 60 {
		t.Fatalf("expected 60 Hz, got %d", got)
	}
	if got := refreshRate(randr.ModeInfo{DotClock: 1}); got != 0 {
		t.Fatalf("expected 0 for missing totals, got %d", got)
	}
}

func TestVideoModeFromInfo_SwapsRotatedAxes(t *testing.T) {
	mi := randr.ModeInfo{Width: 1920, Height: 1080, DotClock: 148500000, Htotal: 2200, Vtotal: 1125}

	mode := videoModeFromInfo(mi, randr.RotationRotate90, 24)
	if mode.Width != 1080 || mode.Height != 1920 {
		t.Fatalf("expected 1080x1920, got %dx%d", mode.Width, mode.Height)
	}
	if mode.RedBits != 8 || mode.GreenBits != 8 || mode.BlueBits != 8 {
		t.Fatalf("expected 8 bits per channel, got %d/%d/%d", mode.RedBits, mode.GreenBits, mode.BlueBits)
	}
	if mode.RefreshRate != 60 {
		t.Fatalf("expected 60 Hz, got %d", mode.RefreshRate)
	}

	mode = videoModeFromInfo(mi, randr.RotationRotate0, 24)
	if mode.Width != 1920 || mode.Height != 1080 {
		t.Fatalf("expected 1920x1080, got %dx%d", mode.Width, mode.Height)
	}
}
