//go:build linux

package backends

import (
	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/wayland"
	"github.com/1broseidon/hatch/internal/x11"
)

func native(cfg *config.Config) []platform.Candidate {
	return []platform.Candidate{
		wayland.Candidate(waylandOptions(cfg)),
		x11.Candidate(x11Options(cfg)),
	}
}

func waylandOptions(cfg *config.Config) wayland.Options {
	return wayland.Options{
		Decorations:     cfg.Wayland.Decorations,
		CursorTheme:     cfg.Wayland.CursorTheme,
		CursorSize:      cfg.Wayland.CursorSize,
		DecorationColor: cfg.Wayland.Color(),
	}
}
