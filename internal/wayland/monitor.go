//go:build linux

package wayland

import (
	"math"
	"strings"

	"github.com/1broseidon/hatch/internal/platform"
	"github.com/1broseidon/hatch/internal/wl"
)

type outputState struct {
	name    uint32
	output  *wl.Output
	monitor *platform.Monitor

	label             string
	x, y              int
	widthMM, heightMM int
	scale             int
	modes             []platform.VideoMode
	current           int
}

func (b *Backend) addOutput(name, version uint32) {
	if version < 2 {
		b.host.ReportError(platform.PlatformError, "Wayland: unsupported output interface version")
		return
	}
	out := &outputState{name: name, scale: 1, current: -1}
	o := &wl.Output{
		OnGeometry: func(x, y, physicalWidth, physicalHeight, subpixel int32, manufacturer, model string, transform int32) {
			out.x, out.y = int(x), int(y)
			out.widthMM, out.heightMM = int(physicalWidth), int(physicalHeight)
			out.label = strings.TrimSpace(manufacturer + " " + model)
		},
		OnMode: func(flags uint32, width, height, refresh int32) {
			out.modes = append(out.modes, platform.VideoMode{
				Width:       int(width),
				Height:      int(height),
				RedBits:     8,
				GreenBits:   8,
				BlueBits:    8,
				RefreshRate: int(math.Round(float64(refresh) / 1000)),
			})
			if flags&wl.OutputModeCurrent != 0 {
				out.current = len(out.modes) - 1
			}
		},
		OnScale: func(factor int32) {
			out.scale = int(factor)
		},
		OnDone: func() {
			b.outputDone(out)
		},
	}
	out.output = o
	if err := b.registry.Bind(name, o, version); err != nil {
		b.host.Logger().Debug("wayland output bind failed", "error", err)
		return
	}
	b.outputs[name] = out
}

// outputDone publishes the output as a monitor the first time its state is
// complete and rescales windows shown on it afterwards.
func (b *Backend) outputDone(out *outputState) {
	if out.monitor != nil {
		for _, w := range b.host.Windows() {
			if s := windowOf(w); s != nil && s.onOutput(out) {
				b.updateContentScale(w)
			}
		}
		return
	}

	widthMM, heightMM := out.widthMM, out.heightMM
	if (widthMM <= 0 || heightMM <= 0) && out.current >= 0 {
		mode := out.modes[out.current]
		widthMM = int(float64(mode.Width) * 25.4 / 96)
		heightMM = int(float64(mode.Height) * 25.4 / 96)
	}
	label := out.label
	if label == "" {
		label = "Wayland output"
	}
	m := b.host.NewMonitor(label, widthMM, heightMM)
	m.Platform = out
	out.monitor = m
	b.host.InputMonitor(m, true, platform.InsertLast)
}

func outputOf(m *platform.Monitor) *outputState {
	out, _ := m.Platform.(*outputState)
	return out
}

func (b *Backend) FreeMonitor(m *platform.Monitor) {
	if out := outputOf(m); out != nil {
		out.output.Release()
		delete(b.outputs, out.name)
	}
	m.Platform = nil
}

func (b *Backend) MonitorPos(m *platform.Monitor) (int, int) {
	out := outputOf(m)
	return out.x, out.y
}

func (b *Backend) MonitorContentScale(m *platform.Monitor) (float32, float32) {
	out := outputOf(m)
	return float32(out.scale), float32(out.scale)
}

// MonitorWorkarea covers the whole output; Wayland does not expose panel
// geometry to clients.
func (b *Backend) MonitorWorkarea(m *platform.Monitor) platform.Rect {
	out := outputOf(m)
	r := platform.Rect{X: out.x, Y: out.y}
	if out.current >= 0 {
		r.Width = out.modes[out.current].Width
		r.Height = out.modes[out.current].Height
	}
	return r
}

func (b *Backend) VideoModes(m *platform.Monitor) ([]platform.VideoMode, error) {
	return append([]platform.VideoMode(nil), outputOf(m).modes...), nil
}

func (b *Backend) VideoMode(m *platform.Monitor) (platform.VideoMode, error) {
	out := outputOf(m)
	if out.current < 0 {
		return platform.VideoMode{}, b.host.ReportError(platform.PlatformError, "Wayland: output has no current mode")
	}
	return out.modes[out.current], nil
}

func (b *Backend) GammaRamp(m *platform.Monitor) (platform.GammaRamp, error) {
	return platform.GammaRamp{}, b.host.ReportError(platform.FeatureUnavailable, "Wayland: gamma ramp access is not available")
}

func (b *Backend) SetGammaRamp(m *platform.Monitor, ramp platform.GammaRamp) error {
	return b.host.ReportError(platform.FeatureUnavailable, "Wayland: gamma ramp access is not available")
}
