//go:build linux

package backends

import (
	"testing"

	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/platform"
)

func TestCandidates_LinuxPrefersWayland(t *testing.T) {
	cands := Candidates(config.DefaultConfig())
	want := []platform.ID{platform.Wayland, platform.X11, platform.Null}
	if len(cands) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(cands))
	}
	for i, id := range want {
		if cands[i].ID != id {
			t.Fatalf("candidate %d: expected %v, got %v", i, id, cands[i].ID)
		}
	}
}

func TestWaylandOptions_FromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Wayland.Decorations = "none"
	cfg.Wayland.CursorSize = 48
	cfg.Wayland.DecorationColor = "#11223344"

	opts := waylandOptions(cfg)
	if opts.Decorations != "none" || opts.CursorSize != 48 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.DecorationColor != [4]uint8{0x11, 0x22, 0x33, 0x44} {
		t.Fatalf("unexpected color %v", opts.DecorationColor)
	}
}
