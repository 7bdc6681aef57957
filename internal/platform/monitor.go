package platform

import (
	"math"
	"sort"

	"github.com/1broseidon/hatch/internal/event"
)

// MonitorPlacement selects where a newly connected monitor is inserted.
type MonitorPlacement int

const (
	InsertLast MonitorPlacement = iota
	// InsertFirst makes the monitor the primary one.
	InsertFirst
)

// Monitor is the platform-neutral monitor record.
type Monitor struct {
	ID       event.MonitorID
	Name     string
	WidthMM  int
	HeightMM int

	// Window is the window currently fullscreen on this monitor, if any.
	Window event.WindowID

	modes        []VideoMode
	OriginalRamp GammaRamp
	CurrentRamp  GammaRamp

	ctx      *Context
	Platform any
}

func (m *Monitor) backend() (Backend, error) {
	if m == nil || m.ctx == nil {
		return nil, Errorf(InvalidValue, "monitor is not connected")
	}
	return m.ctx.live()
}

// Pos returns the position of the monitor's viewport on the virtual screen.
func (m *Monitor) Pos() (x, y int) {
	b, err := m.backend()
	if err != nil {
		return 0, 0
	}
	return b.MonitorPos(m)
}

// Workarea returns the area not occupied by panels and docks.
func (m *Monitor) Workarea() Rect {
	b, err := m.backend()
	if err != nil {
		return Rect{}
	}
	return b.MonitorWorkarea(m)
}

func (m *Monitor) ContentScale() (xscale, yscale float32) {
	b, err := m.backend()
	if err != nil {
		return 0, 0
	}
	return b.MonitorContentScale(m)
}

// PhysicalSize returns the size of the display area in millimetres.
func (m *Monitor) PhysicalSize() (widthMM, heightMM int) {
	return m.WidthMM, m.HeightMM
}

func (m *Monitor) refreshVideoModes() error {
	if m.modes != nil {
		return nil
	}
	b, err := m.backend()
	if err != nil {
		return err
	}
	modes, err := b.VideoModes(m)
	if err != nil {
		return err
	}
	sort.SliceStable(modes, func(i, j int) bool {
		return compareVideoModes(modes[i], modes[j]) < 0
	})
	m.modes = modes
	return nil
}

// VideoModes returns the supported modes sorted by ascending bit depth, then
// area, then width, then refresh rate.
func (m *Monitor) VideoModes() ([]VideoMode, error) {
	if err := m.refreshVideoModes(); err != nil {
		return nil, err
	}
	out := make([]VideoMode, len(m.modes))
	copy(out, m.modes)
	return out, nil
}

// VideoMode returns the current mode.
func (m *Monitor) VideoMode() (VideoMode, error) {
	b, err := m.backend()
	if err != nil {
		return VideoMode{}, err
	}
	return b.VideoMode(m)
}

// ChooseVideoMode returns the supported mode closest to desired. Fields of
// desired set to DontCare are ignored.
func (m *Monitor) ChooseVideoMode(desired VideoMode) (VideoMode, error) {
	if err := m.refreshVideoModes(); err != nil {
		return VideoMode{}, err
	}
	return ChooseVideoMode(m.modes, desired)
}

// ChooseVideoMode picks the mode with the smallest colour difference, then
// size difference, then refresh rate difference.
func ChooseVideoMode(modes []VideoMode, desired VideoMode) (VideoMode, error) {
	if len(modes) == 0 {
		return VideoMode{}, Errorf(PlatformError, "monitor reports no video modes")
	}
	var best VideoMode
	leastColor, leastSize, leastRate := math.MaxInt, math.MaxInt, math.MaxInt
	for _, mode := range modes {
		colorDiff := 0
		if desired.RedBits != DontCare {
			colorDiff += abs(mode.RedBits - desired.RedBits)
		}
		if desired.GreenBits != DontCare {
			colorDiff += abs(mode.GreenBits - desired.GreenBits)
		}
		if desired.BlueBits != DontCare {
			colorDiff += abs(mode.BlueBits - desired.BlueBits)
		}
		dw := mode.Width - desired.Width
		dh := mode.Height - desired.Height
		sizeDiff := abs(dw*dw + dh*dh)
		rateDiff := math.MaxInt - mode.RefreshRate
		if desired.RefreshRate != DontCare {
			rateDiff = abs(mode.RefreshRate - desired.RefreshRate)
		}
		if colorDiff < leastColor ||
			(colorDiff == leastColor && sizeDiff < leastSize) ||
			(colorDiff == leastColor && sizeDiff == leastSize && rateDiff < leastRate) {
			best = mode
			leastColor, leastSize, leastRate = colorDiff, sizeDiff, rateDiff
		}
	}
	return best, nil
}

func compareVideoModes(a, b VideoMode) int {
	abpp := a.RedBits + a.GreenBits + a.BlueBits
	bbpp := b.RedBits + b.GreenBits + b.BlueBits
	if abpp != bbpp {
		return abpp - bbpp
	}
	if aa, ba := a.Width*a.Height, b.Width*b.Height; aa != ba {
		return aa - ba
	}
	if a.Width != b.Width {
		return a.Width - b.Width
	}
	return a.RefreshRate - b.RefreshRate
}

// SplitBPP splits a colour depth into per-channel bits, giving green the
// remainder first.
func SplitBPP(bpp int) (red, green, blue int) {
	if bpp == 32 {
		bpp = 24
	}
	red, green, blue = bpp/3, bpp/3, bpp/3
	delta := bpp - red*3
	if delta >= 1 {
		green++
	}
	if delta == 2 {
		red++
	}
	return red, green, blue
}

// GammaRamp returns the current gamma ramp.
func (m *Monitor) GammaRamp() (GammaRamp, error) {
	b, err := m.backend()
	if err != nil {
		return GammaRamp{}, err
	}
	ramp, err := b.GammaRamp(m)
	if err != nil {
		return GammaRamp{}, err
	}
	m.CurrentRamp = ramp
	return ramp, nil
}

// SetGammaRamp sets the ramp. The original ramp is saved on first use and
// restored when the context terminates.
func (m *Monitor) SetGammaRamp(ramp GammaRamp) error {
	b, err := m.backend()
	if err != nil {
		return err
	}
	if ramp.Size() <= 0 || len(ramp.Green) != ramp.Size() || len(ramp.Blue) != ramp.Size() {
		return m.ctx.ReportError(InvalidValue, "invalid gamma ramp size %d", ramp.Size())
	}
	if m.OriginalRamp.Size() == 0 {
		orig, err := b.GammaRamp(m)
		if err != nil {
			return err
		}
		m.OriginalRamp = orig
	}
	return b.SetGammaRamp(m, ramp)
}

// SetGamma builds a ramp from an exponent and applies it.
func (m *Monitor) SetGamma(gamma float32) error {
	if _, err := m.backend(); err != nil {
		return err
	}
	if math.IsNaN(float64(gamma)) || gamma <= 0 || gamma > math.MaxFloat32 {
		return m.ctx.ReportError(InvalidValue, "invalid gamma value %f", gamma)
	}
	orig, err := m.GammaRamp()
	if err != nil {
		return err
	}
	ramp := BuildGammaRamp(orig.Size(), gamma)
	return m.SetGammaRamp(ramp)
}

// BuildGammaRamp returns a ramp of the given size for the exponent 1/gamma.
func BuildGammaRamp(size int, gamma float32) GammaRamp {
	values := make([]uint16, size)
	for i := range values {
		v := float64(i) / float64(size-1)
		v = math.Pow(v, 1/float64(gamma))*65535 + 0.5
		values[i] = uint16(math.Min(v, 65535))
	}
	return GammaRamp{
		Red:   values,
		Green: append([]uint16(nil), values...),
		Blue:  append([]uint16(nil), values...),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
