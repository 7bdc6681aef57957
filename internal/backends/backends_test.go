package backends

import (
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/platform"
)

func TestCandidates_NullIsLast(t *testing.T) {
	cands := Candidates(config.DefaultConfig())
	if len(cands) < 2 {
		t.Fatalf("expected a native candidate plus null, got %d", len(cands))
	}
	if last := cands[len(cands)-1].ID; last != platform.Null {
		t.Fatalf("expected null last, got %v", last)
	}
	for _, c := range cands[:len(cands)-1] {
		if c.ID == platform.Null || c.ID == platform.AnyPlatform {
			t.Fatalf("unexpected native candidate %v", c.ID)
		}
	}
}

func TestPlatformConfig_NullInitializes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Platform = "null"

	pc := PlatformConfig(cfg)
	if pc.Platform != platform.Null {
		t.Fatalf("expected null platform, got %v", pc.Platform)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, err := platform.Init(pc, platform.WithLogger(logger))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer ctx.Terminate()
	if ctx.Platform() != platform.Null {
		t.Fatalf("expected null backend, got %v", ctx.Platform())
	}
}

func TestSupported_MatchesCandidates(t *testing.T) {
	ids := Supported()
	if len(ids) != len(Candidates(nil)) {
		t.Fatalf("expected one id per candidate, got %v", ids)
	}
}
