package platform

import (
	"fmt"
	"image"
	"strings"
)

// ID names a concrete windowing platform.
type ID int

const (
	AnyPlatform ID = iota
	Win32
	Wayland
	X11
	Null
)

var platformNames = map[ID]string{
	AnyPlatform: "any",
	Win32:       "win32",
	Wayland:     "wayland",
	X11:         "x11",
	Null:        "null",
}

func (id ID) String() string {
	if name, ok := platformNames[id]; ok {
		return name
	}
	return fmt.Sprintf("platform(%d)", int(id))
}

// ParseID converts a platform name as used in config files.
func ParseID(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AnyPlatform, nil
	}
	for id, name := range platformNames {
		if name == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown platform %q", s)
}

// DontCare disables a size limit, aspect ratio term or refresh rate.
const DontCare = -1

// Rect is a rectangle in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Image is a straight (non-premultiplied) RGBA image, 8 bits per channel.
type Image struct {
	Width  int
	Height int
	Pixels []byte
}

// ImageFromRGBA converts a standard library image. NRGBA is already straight
// alpha; other images are converted through NRGBA.
func ImageFromRGBA(src image.Image) Image {
	b := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				nrgba.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}
	return Image{Width: b.Dx(), Height: b.Dy(), Pixels: nrgba.Pix}
}

// Valid reports whether the pixel slice matches the dimensions.
func (img Image) Valid() bool {
	return img.Width > 0 && img.Height > 0 && len(img.Pixels) >= img.Width*img.Height*4
}

// VideoMode describes one display mode of a monitor.
type VideoMode struct {
	Width       int
	Height      int
	RedBits     int
	GreenBits   int
	BlueBits    int
	RefreshRate int
}

// GammaRamp holds one 16-bit value per channel per ramp entry.
type GammaRamp struct {
	Red   []uint16
	Green []uint16
	Blue  []uint16
}

// Size returns the number of entries in the ramp.
func (r GammaRamp) Size() int {
	return len(r.Red)
}

// ClientAPI selects the graphics API of a window's context.
type ClientAPI int

const (
	NoAPI ClientAPI = iota
	OpenGLAPI
	OpenGLESAPI
)

// ContextSource selects the context creation API.
type ContextSource int

const (
	NativeContextAPI ContextSource = iota
	EGLContextAPI
	OSMesaContextAPI
)

// WindowConfig carries the window hints used at creation.
type WindowConfig struct {
	Width            int
	Height           int
	Title            string
	Resizable        bool
	Visible          bool
	Decorated        bool
	Focused          bool
	AutoIconify      bool
	Floating         bool
	Maximized        bool
	CenterCursor     bool
	FocusOnShow      bool
	MousePassthrough bool
	ScaleToMonitor   bool
	Monitor          *Monitor
}

// DefaultWindowConfig returns the default window hints.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:        640,
		Height:       480,
		Title:        "hatch",
		Resizable:    true,
		Visible:      true,
		Decorated:    true,
		Focused:      true,
		AutoIconify:  true,
		CenterCursor: true,
		FocusOnShow:  true,
	}
}

// ContextConfig carries the graphics context hints.
type ContextConfig struct {
	Client ClientAPI
	Source ContextSource
	Major  int
	Minor  int
}

// FramebufferConfig carries the framebuffer hints.
type FramebufferConfig struct {
	Transparent bool
}

// NativeSurface is the set of native handles a backend hands to external
// graphics loaders. Only the fields relevant to the platform are set.
type NativeSurface struct {
	Platform ID
	Display  uintptr
	Window   uintptr
	Instance uintptr
}

// GraphicsContext is an externally created EGL/WGL/OSMesa context.
type GraphicsContext interface {
	Destroy()
}

// ContextLoader creates graphics contexts for windows. Context creation
// itself lives outside this module.
type ContextLoader interface {
	CreateContext(native NativeSurface, ctx ContextConfig, fb FramebufferConfig) (GraphicsContext, error)
}

// VulkanLoader forwards surface creation to the platform's Vulkan
// extension functions.
type VulkanLoader interface {
	InstanceExtensionSupported(name string) bool
	PresentationSupport(instance, device uintptr, queueFamily uint32, native NativeSurface) (bool, error)
	CreateSurface(instance uintptr, native NativeSurface, allocator uintptr) (uintptr, error)
}

// JoystickPollMode selects what PollJoystick refreshes.
type JoystickPollMode int

const (
	PollPresence JoystickPollMode = iota
	PollAxes
	PollButtons
	PollAll
)

// Joystick is the platform-neutral record of one game controller.
type Joystick struct {
	ID       int
	Name     string
	GUID     string
	Present  bool
	Axes     []float32
	Buttons  []byte
	Hats     []byte
	Platform any
}

// EGL platform enumerants returned by Surfaces.EGLPlatform.
const (
	EGLPlatformNone    = 0
	EGLPlatformX11     = 0x31D5
	EGLPlatformWayland = 0x31D8
	EGLPlatformANGLE   = 0x3202
)
