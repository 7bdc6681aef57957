// Package backends builds the platform probe list for the running OS from
// the loaded configuration.
package backends

import (
	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/null"
	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/x11"
)

// Candidates returns the probe list in preference order. The null backend
// is always last so that an explicit null request succeeds everywhere.
func Candidates(cfg *config.Config) []platform.Candidate {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return append(native(cfg), null.Candidate())
}

// PlatformConfig returns the Init configuration for cfg.
func PlatformConfig(cfg *config.Config) platform.Config {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return platform.Config{
		Platform:   cfg.PlatformID(),
		Candidates: Candidates(cfg),
	}
}

// Supported lists the platform IDs compiled into this binary.
func Supported() []platform.ID {
	cands := Candidates(nil)
	ids := make([]platform.ID, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.ID)
	}
	return ids
}

func x11Options(cfg *config.Config) x11.Options {
	return x11.Options{
		Display:   cfg.X11.Display,
		ClassName: cfg.X11.ClassName,
	}
}
