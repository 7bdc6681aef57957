package platform

import (
	"container/list"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/1broseidon/hatch/internal/event"
)

// MaxJoysticks is the number of joystick slots.
const MaxJoysticks = 16

// Config selects the backend.
type Config struct {
	// Platform restricts probing to one backend. AnyPlatform probes the
	// candidates in order.
	Platform   ID
	Candidates []Candidate
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger handed to backends.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHandler sets the event handler.
func WithHandler(h event.Handler) Option {
	return func(c *Context) {
		c.handler = h
	}
}

// WithErrorCallback sets a function called for every reported error.
func WithErrorCallback(fn func(*Error)) Option {
	return func(c *Context) {
		c.errorCallback = fn
	}
}

// WithContextLoader registers the external graphics context loader.
func WithContextLoader(l ContextLoader) Option {
	return func(c *Context) {
		c.contextLoader = l
	}
}

// WithVulkanLoader registers the external Vulkan surface loader.
func WithVulkanLoader(l VulkanLoader) Option {
	return func(c *Context) {
		c.vulkanLoader = l
	}
}

// Context is one connection to the window system. It owns the selected
// backend and every window, monitor and cursor created through it. A
// Context must only be used from the goroutine that created it.
type Context struct {
	backend     Backend
	initialized bool
	// probing is the candidate whose Init is running.
	probing Backend

	logger        *slog.Logger
	handler       event.Handler
	errorCallback func(*Error)
	lastError     *Error
	dispatchDepth int

	contextLoader ContextLoader
	vulkanLoader  VulkanLoader

	windows    *list.List
	nextWindow event.WindowID
	monitors   Registry[event.MonitorID, Monitor]
	cursors    Registry[CursorID, Cursor]

	joysticks            [MaxJoysticks]Joystick
	joysticksInitialized bool
}

var _ Host = (*Context)(nil)

// Init selects a backend and initializes it.
func Init(cfg Config, opts ...Option) (*Context, error) {
	c := &Context{
		logger:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
		windows: list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	b, err := c.probe(cfg.Candidates, cfg.Platform)
	if err != nil {
		return nil, err
	}
	c.backend = b
	c.initialized = true
	c.logger.Debug("platform selected", "platform", b.Name(), "monitors", c.monitors.Len())
	return c, nil
}

// Connect probes candidates in order and returns the first backend that both
// connects and initializes. Only the candidate matching want is tried unless
// want is AnyPlatform.
func Connect(host Host, candidates []Candidate, want ID) (Backend, error) {
	return probeCandidates(host, candidates, want, nil)
}

func (c *Context) probe(candidates []Candidate, want ID) (Backend, error) {
	tracked := make([]Candidate, len(candidates))
	for i, cand := range candidates {
		tracked[i] = Candidate{ID: cand.ID, Connect: func() (Backend, error) {
			b, err := cand.Connect()
			c.probing = b
			return b, err
		}}
	}
	defer func() { c.probing = nil }()
	return probeCandidates(c, tracked, want, func() {
		c.monitors = Registry[event.MonitorID, Monitor]{}
	})
}

// activeBackend is the selected backend, or the candidate being
// initialized while probing.
func (c *Context) activeBackend() Backend {
	if c.backend != nil {
		return c.backend
	}
	return c.probing
}

func probeCandidates(host Host, candidates []Candidate, want ID, reset func()) (Backend, error) {
	logger := host.Logger()
	tried := 0
	for _, cand := range candidates {
		if want != AnyPlatform && cand.ID != want {
			continue
		}
		tried++
		b, err := cand.Connect()
		if err != nil {
			logger.Debug("platform unavailable", "platform", cand.ID, "error", err)
			continue
		}
		if err := b.Init(host); err != nil {
			logger.Debug("platform init failed", "platform", cand.ID, "error", err)
			b.Terminate()
			if reset != nil {
				reset()
			}
			continue
		}
		return b, nil
	}
	if want != AnyPlatform && tried == 0 {
		return nil, host.ReportError(PlatformUnavailable, "requested platform %s is not supported", want)
	}
	if want != AnyPlatform {
		return nil, host.ReportError(PlatformUnavailable, "failed to initialize platform %s", want)
	}
	return nil, host.ReportError(PlatformUnavailable, "failed to detect any supported platform")
}

// Terminate destroys every window and cursor, restores gamma ramps and shuts
// the backend down. Further calls return NotInitialized errors.
func (c *Context) Terminate() {
	if c == nil || !c.initialized {
		return
	}
	for _, w := range c.Windows() {
		w.Destroy()
	}
	for _, cur := range c.cursors.All() {
		c.DestroyCursor(cur)
	}
	for _, m := range c.monitors.All() {
		if m.OriginalRamp.Size() > 0 {
			if err := c.backend.SetGammaRamp(m, m.OriginalRamp); err != nil {
				c.logger.Debug("failed to restore gamma ramp", "monitor", m.Name, "error", err)
			}
		}
		c.backend.FreeMonitor(m)
		m.ctx = nil
	}
	c.monitors = Registry[event.MonitorID, Monitor]{}
	if c.joysticksInitialized {
		c.backend.TerminateJoysticks()
		c.joysticksInitialized = false
	}
	c.backend.Terminate()
	c.initialized = false
}

func (c *Context) live() (Backend, error) {
	if c == nil || !c.initialized {
		return nil, c.ReportError(NotInitialized, "library is not initialized")
	}
	return c.backend, nil
}

// Platform returns the selected backend's ID.
func (c *Context) Platform() ID {
	if c == nil || c.backend == nil {
		return AnyPlatform
	}
	return c.backend.ID()
}

// Backend returns the selected backend.
func (c *Context) Backend() Backend {
	return c.backend
}

func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// ReportError is the single error funnel: it builds the error, logs it,
// passes it to the error callback and returns it.
func (c *Context) ReportError(kind ErrorKind, format string, args ...any) error {
	err := Errorf(kind, format, args...)
	if c == nil {
		return err
	}
	c.lastError = err
	if c.logger != nil {
		c.logger.Warn(err.Desc, "kind", kind.String())
	}
	if c.errorCallback != nil {
		c.errorCallback(err)
	}
	return err
}

// LastError returns the most recently reported error and clears it.
func (c *Context) LastError() error {
	err := c.lastError
	c.lastError = nil
	if err == nil {
		return nil
	}
	return err
}

// SetHandler replaces the event handler and returns the previous one.
func (c *Context) SetHandler(h event.Handler) event.Handler {
	prev := c.handler
	c.handler = h
	return prev
}

func (c *Context) dispatch(ev event.Event) {
	if c.handler == nil {
		return
	}
	c.dispatchDepth++
	defer func() { c.dispatchDepth-- }()
	c.handler(ev)
}

func (c *Context) InDispatch() bool {
	return c.dispatchDepth > 0
}

func (c *Context) ContextLoader() ContextLoader {
	return c.contextLoader
}

func (c *Context) VulkanLoader() VulkanLoader {
	return c.vulkanLoader
}

// Windows returns the live windows in creation order.
func (c *Context) Windows() []*Window {
	if c == nil || c.windows == nil {
		return nil
	}
	out := make([]*Window, 0, c.windows.Len())
	for e := c.windows.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Window))
	}
	return out
}

func (c *Context) Window(id event.WindowID) *Window {
	for e := c.windows.Front(); e != nil; e = e.Next() {
		if w := e.Value.(*Window); w.ID == id {
			return w
		}
	}
	return nil
}

// CreateWindow creates a window and, for windowed mode, shows and focuses it
// according to the hints.
func (c *Context) CreateWindow(wndcfg WindowConfig, ctxcfg ContextConfig, fbcfg FramebufferConfig) (*Window, error) {
	b, err := c.live()
	if err != nil {
		return nil, err
	}
	if wndcfg.Width <= 0 || wndcfg.Height <= 0 {
		return nil, c.ReportError(InvalidValue, "invalid window size %dx%d", wndcfg.Width, wndcfg.Height)
	}

	c.nextWindow++
	w := &Window{
		ID:               c.nextWindow,
		ctx:              c,
		Title:            wndcfg.Title,
		Resizable:        wndcfg.Resizable,
		Decorated:        wndcfg.Decorated,
		AutoIconify:      wndcfg.AutoIconify,
		Floating:         wndcfg.Floating,
		FocusOnShow:      wndcfg.FocusOnShow,
		MousePassthrough: wndcfg.MousePassthrough,
		VideoMode: VideoMode{
			Width:       wndcfg.Width,
			Height:      wndcfg.Height,
			RedBits:     8,
			GreenBits:   8,
			BlueBits:    8,
			RefreshRate: DontCare,
		},
		MinWidth:  DontCare,
		MinHeight: DontCare,
		MaxWidth:  DontCare,
		MaxHeight: DontCare,
		Numer:     DontCare,
		Denom:     DontCare,
	}
	if wndcfg.Monitor != nil {
		w.Monitor = wndcfg.Monitor.ID
	}
	w.elem = c.windows.PushBack(w)

	if err := b.CreateWindow(w, wndcfg, ctxcfg, fbcfg); err != nil {
		w.Destroy()
		return nil, err
	}

	if wndcfg.MousePassthrough {
		_ = b.SetWindowMousePassthrough(w, true)
	}
	if w.Monitor != 0 {
		if wndcfg.CenterCursor {
			width, height := b.WindowSize(w)
			_ = b.SetCursorPos(w, float64(width)/2, float64(height)/2)
		}
	} else if wndcfg.Visible {
		if err := b.ShowWindow(w); err != nil {
			c.logger.Debug("show window failed", "window", w.ID, "error", err)
		}
		if wndcfg.Focused {
			_ = b.FocusWindow(w)
		}
	}
	return w, nil
}

// Monitors returns the connected monitors, primary first.
func (c *Context) Monitors() []*Monitor {
	return c.monitors.All()
}

func (c *Context) Monitor(id event.MonitorID) *Monitor {
	return c.monitors.Get(id)
}

// PrimaryMonitor returns the primary monitor, or nil when none is connected.
func (c *Context) PrimaryMonitor() *Monitor {
	all := c.monitors.All()
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func (c *Context) Cursor(id CursorID) *Cursor {
	return c.cursors.Get(id)
}

// CreateCursor creates a cursor from a straight-alpha RGBA image.
func (c *Context) CreateCursor(img Image, xhot, yhot int) (*Cursor, error) {
	b, err := c.live()
	if err != nil {
		return nil, err
	}
	if !img.Valid() {
		return nil, c.ReportError(InvalidValue, "invalid image dimensions for cursor")
	}
	cur := &Cursor{}
	cur.ID = c.cursors.Add(cur, false)
	if err := b.CreateCursor(cur, img, xhot, yhot); err != nil {
		c.cursors.Remove(cur.ID)
		return nil, err
	}
	return cur, nil
}

// CreateStandardCursor creates a cursor with a standard shape.
func (c *Context) CreateStandardCursor(shape event.CursorShape) (*Cursor, error) {
	b, err := c.live()
	if err != nil {
		return nil, err
	}
	if !shape.Valid() {
		return nil, c.ReportError(InvalidEnum, "invalid standard cursor %d", int(shape))
	}
	cur := &Cursor{Shape: shape, Standard: true}
	cur.ID = c.cursors.Add(cur, false)
	if err := b.CreateStandardCursor(cur, shape); err != nil {
		c.cursors.Remove(cur.ID)
		return nil, err
	}
	return cur, nil
}

// DestroyCursor destroys the cursor, resetting every window using it to the
// default arrow first.
func (c *Context) DestroyCursor(cur *Cursor) {
	if cur == nil || c.cursors.Get(cur.ID) == nil {
		return
	}
	for _, w := range c.Windows() {
		if w.Cursor == cur.ID {
			_ = w.SetCursor(nil)
		}
	}
	c.backend.DestroyCursor(cur)
	c.cursors.Remove(cur.ID)
	cur.Platform = nil
}

// KeyName returns the layout-specific name of a printable key. When key is
// KeyUnknown the scancode is used instead.
func (c *Context) KeyName(key event.KeyCode, scancode int) (string, error) {
	b, err := c.live()
	if err != nil {
		return "", err
	}
	if key != event.KeyUnknown {
		if !printableKey(key) {
			return "", nil
		}
		scancode = b.KeyScancode(key)
	}
	return b.ScancodeName(scancode)
}

func printableKey(key event.KeyCode) bool {
	switch {
	case key == event.KeyKPEqual:
		return true
	case key >= event.KeyKP0 && key <= event.KeyKPAdd:
		return true
	case key >= event.KeyApostrophe && key <= event.KeyWorld2:
		return true
	}
	return false
}

// KeyScancode returns the platform scancode of key, or -1.
func (c *Context) KeyScancode(key event.KeyCode) int {
	b, err := c.live()
	if err != nil {
		return -1
	}
	if !key.Valid() {
		_ = c.ReportError(InvalidEnum, "invalid key %d", int(key))
		return -1
	}
	return b.KeyScancode(key)
}

func (c *Context) RawMouseMotionSupported() bool {
	b, err := c.live()
	return err == nil && b.RawMouseMotionSupported()
}

func (c *Context) SetClipboardString(s string) error {
	b, err := c.live()
	if err != nil {
		return err
	}
	return b.SetClipboardString(s)
}

func (c *Context) ClipboardString() (string, error) {
	b, err := c.live()
	if err != nil {
		return "", err
	}
	return b.ClipboardString()
}

// ClipboardRequest is a pending clipboard read.
type ClipboardRequest interface {
	Done() bool
	Result() (string, error)
}

// AsyncClipboard is implemented by backends whose clipboard reads complete
// inside the event pump.
type AsyncClipboard interface {
	RequestClipboard() (ClipboardRequest, error)
}

type completedRequest struct {
	text string
	err  error
}

func (r completedRequest) Done() bool              { return true }
func (r completedRequest) Result() (string, error) { return r.text, r.err }

// RequestClipboard starts a clipboard read. Backends that read
// synchronously return an already completed request.
func (c *Context) RequestClipboard() (ClipboardRequest, error) {
	b, err := c.live()
	if err != nil {
		return nil, err
	}
	if async, ok := b.(AsyncClipboard); ok {
		return async.RequestClipboard()
	}
	text, err := b.ClipboardString()
	return completedRequest{text: text, err: err}, nil
}

func (c *Context) PollEvents() {
	if b, err := c.live(); err == nil {
		b.PollEvents()
	}
}

func (c *Context) WaitEvents() {
	if b, err := c.live(); err == nil {
		b.WaitEvents()
	}
}

func (c *Context) WaitEventsTimeout(timeout time.Duration) error {
	b, err := c.live()
	if err != nil {
		return err
	}
	if timeout < 0 || timeout == math.MaxInt64 {
		return c.ReportError(InvalidValue, "invalid time %s", timeout)
	}
	b.WaitEventsTimeout(timeout)
	return nil
}

func (c *Context) PostEmptyEvent() {
	if b, err := c.live(); err == nil {
		b.PostEmptyEvent()
	}
}

func (c *Context) initJoysticks() bool {
	if c.joysticksInitialized {
		return true
	}
	if !c.backend.InitJoysticks() {
		c.backend.TerminateJoysticks()
		return false
	}
	c.joysticksInitialized = true
	return true
}

func (c *Context) JoystickPresent(jid int) bool {
	if _, err := c.live(); err != nil {
		return false
	}
	if jid < 0 || jid >= MaxJoysticks {
		_ = c.ReportError(InvalidEnum, "invalid joystick ID %d", jid)
		return false
	}
	if !c.initJoysticks() {
		return false
	}
	j := &c.joysticks[jid]
	if !j.Present {
		return false
	}
	return c.backend.PollJoystick(j, PollPresence)
}

// Joystick polls and returns the joystick in slot jid, or nil.
func (c *Context) Joystick(jid int) *Joystick {
	if !c.JoystickPresent(jid) {
		return nil
	}
	j := &c.joysticks[jid]
	if !c.backend.PollJoystick(j, PollAll) {
		return nil
	}
	return j
}

// RequiredInstanceExtensions lists the Vulkan instance extensions surface
// creation needs on this platform.
func (c *Context) RequiredInstanceExtensions() ([]string, error) {
	b, err := c.live()
	if err != nil {
		return nil, err
	}
	if c.vulkanLoader == nil {
		return nil, c.ReportError(APIUnavailable, "Vulkan: loader not found")
	}
	return b.RequiredInstanceExtensions(), nil
}

func (c *Context) PresentationSupport(instance, device uintptr, queueFamily uint32) (bool, error) {
	b, err := c.live()
	if err != nil {
		return false, err
	}
	if c.vulkanLoader == nil {
		return false, c.ReportError(APIUnavailable, "Vulkan: loader not found")
	}
	return b.PresentationSupport(instance, device, queueFamily)
}

func (c *Context) String() string {
	if c == nil || c.backend == nil {
		return "hatch(uninitialized)"
	}
	return fmt.Sprintf("hatch(%s)", c.backend.Name())
}
