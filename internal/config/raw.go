package config

// Raw types mirror the config with pointers so that merging can tell an
// unset key from a zero value.

type RawWaylandConfig struct {
	Decorations     *string `yaml:"decorations"`
	CursorTheme     *string `yaml:"cursor_theme"`
	CursorSize      *int    `yaml:"cursor_size"`
	DecorationColor *string `yaml:"decoration_color"`
}

type RawWin32Config struct {
	DPIAwareness *string `yaml:"dpi_awareness"`
}

type RawX11Config struct {
	Display   *string `yaml:"display"`
	ClassName *string `yaml:"class_name"`
}

type RawWindowDefaults struct {
	Width          *int    `yaml:"width"`
	Height         *int    `yaml:"height"`
	Title          *string `yaml:"title"`
	Decorated      *bool   `yaml:"decorated"`
	Resizable      *bool   `yaml:"resizable"`
	Floating       *bool   `yaml:"floating"`
	ScaleToMonitor *bool   `yaml:"scale_to_monitor"`
}

type RawConfig struct {
	Platform *string            `yaml:"platform"`
	LogLevel *string            `yaml:"log_level"`
	Wayland  *RawWaylandConfig  `yaml:"wayland"`
	Win32    *RawWin32Config    `yaml:"win32"`
	X11      *RawX11Config      `yaml:"x11"`
	Window   *RawWindowDefaults `yaml:"window"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Platform != nil {
		out.Platform = overlay.Platform
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Wayland != nil {
		merged := mergeRawWayland(derefOr(out.Wayland), *overlay.Wayland)
		out.Wayland = &merged
	}
	if overlay.Win32 != nil {
		merged := derefOr(out.Win32)
		mergePtr(&merged.DPIAwareness, overlay.Win32.DPIAwareness)
		out.Win32 = &merged
	}
	if overlay.X11 != nil {
		merged := derefOr(out.X11)
		mergePtr(&merged.Display, overlay.X11.Display)
		mergePtr(&merged.ClassName, overlay.X11.ClassName)
		out.X11 = &merged
	}
	if overlay.Window != nil {
		merged := mergeRawWindow(derefOr(out.Window), *overlay.Window)
		out.Window = &merged
	}
	return out
}

func mergeRawWayland(base RawWaylandConfig, overlay RawWaylandConfig) RawWaylandConfig {
	out := base
	mergePtr(&out.Decorations, overlay.Decorations)
	mergePtr(&out.CursorTheme, overlay.CursorTheme)
	mergePtr(&out.CursorSize, overlay.CursorSize)
	mergePtr(&out.DecorationColor, overlay.DecorationColor)
	return out
}

func mergeRawWindow(base RawWindowDefaults, overlay RawWindowDefaults) RawWindowDefaults {
	out := base
	mergePtr(&out.Width, overlay.Width)
	mergePtr(&out.Height, overlay.Height)
	mergePtr(&out.Title, overlay.Title)
	mergePtr(&out.Decorated, overlay.Decorated)
	mergePtr(&out.Resizable, overlay.Resizable)
	mergePtr(&out.Floating, overlay.Floating)
	mergePtr(&out.ScaleToMonitor, overlay.ScaleToMonitor)
	return out
}

func mergePtr[T any](dst **T, overlay *T) {
	if overlay != nil {
		*dst = overlay
	}
}

func derefOr[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
