package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("%s (from %s): %v", e.Path, e.Source.Name, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies the merged raw config over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	setIf(&cfg.Platform, raw.Platform)
	setIf(&cfg.LogLevel, raw.LogLevel)

	if w := raw.Wayland; w != nil {
		setIf(&cfg.Wayland.Decorations, w.Decorations)
		setIf(&cfg.Wayland.CursorTheme, w.CursorTheme)
		setIf(&cfg.Wayland.CursorSize, w.CursorSize)
		setIf(&cfg.Wayland.DecorationColor, w.DecorationColor)
	}
	if w := raw.Win32; w != nil {
		setIf(&cfg.Win32.DPIAwareness, w.DPIAwareness)
	}
	if x := raw.X11; x != nil {
		setIf(&cfg.X11.Display, x.Display)
		setIf(&cfg.X11.ClassName, x.ClassName)
	}
	if w := raw.Window; w != nil {
		setIf(&cfg.Window.Width, w.Width)
		setIf(&cfg.Window.Height, w.Height)
		setIf(&cfg.Window.Title, w.Title)
		setIf(&cfg.Window.Decorated, w.Decorated)
		setIf(&cfg.Window.Resizable, w.Resizable)
		setIf(&cfg.Window.Floating, w.Floating)
		setIf(&cfg.Window.ScaleToMonitor, w.ScaleToMonitor)
	}
	return cfg
}

func setIf[T any](dst *T, p *T) {
	if p != nil {
		*dst = *p
	}
}
