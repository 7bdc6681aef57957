//go:build !linux && !windows

package backends

import (
	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/x11"
)

func native(cfg *config.Config) []platform.Candidate {
	return []platform.Candidate{
		x11.Candidate(x11Options(cfg)),
	}
}
