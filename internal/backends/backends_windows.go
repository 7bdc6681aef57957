//go:build windows

package backends

import (
	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/win32"
)

func native(cfg *config.Config) []platform.Candidate {
	return []platform.Candidate{
		win32.Candidate(win32.Options{DPIAwareness: cfg.Win32.DPIAwareness}),
	}
}
