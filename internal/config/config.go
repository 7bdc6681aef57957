package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/hatch/internal/platform"
	"gopkg.in/yaml.v3"
)

// WaylandConfig tunes the Wayland backend.
type WaylandConfig struct {
	// Decorations is auto, client or none.
	Decorations string `yaml:"decorations"`
	// CursorTheme overrides XCURSOR_THEME.
	CursorTheme string `yaml:"cursor_theme,omitempty"`
	// CursorSize overrides XCURSOR_SIZE. 0 keeps the environment value.
	CursorSize int `yaml:"cursor_size,omitempty"`
	// DecorationColor is "#rrggbb" or "#rrggbbaa".
	DecorationColor string `yaml:"decoration_color"`
}

// Win32Config tunes the Win32 backend.
type Win32Config struct {
	// DPIAwareness is auto or none.
	DPIAwareness string `yaml:"dpi_awareness"`
}

// X11Config tunes the X11 backend.
type X11Config struct {
	Display   string `yaml:"display,omitempty"`
	ClassName string `yaml:"class_name"`
}

// WindowDefaults seed the window hints of the CLI.
type WindowDefaults struct {
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	Title          string `yaml:"title"`
	Decorated      bool   `yaml:"decorated"`
	Resizable      bool   `yaml:"resizable"`
	Floating       bool   `yaml:"floating"`
	ScaleToMonitor bool   `yaml:"scale_to_monitor"`
}

type Config struct {
	Platform string         `yaml:"platform"`
	LogLevel string         `yaml:"log_level"`
	Wayland  WaylandConfig  `yaml:"wayland"`
	Win32    Win32Config    `yaml:"win32"`
	X11      X11Config      `yaml:"x11"`
	Window   WindowDefaults `yaml:"window"`
}

func DefaultConfig() *Config {
	return &Config{
		Platform: "any",
		LogLevel: "info",
		Wayland: WaylandConfig{
			Decorations:     "auto",
			DecorationColor: "#e0e0e0ff",
		},
		Win32: Win32Config{
			DPIAwareness: "auto",
		},
		X11: X11Config{
			ClassName: "hatch",
		},
		Window: WindowDefaults{
			Width:     640,
			Height:    480,
			Title:     "hatch",
			Decorated: true,
			Resizable: true,
		},
	}
}

// PlatformID returns the requested platform. Validate guarantees it parses.
func (c *Config) PlatformID() platform.ID {
	id, err := platform.ParseID(c.Platform)
	if err != nil {
		return platform.AnyPlatform
	}
	return id
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WindowConfig returns the default window hints with the configured
// overrides applied.
func (c *Config) WindowConfig() platform.WindowConfig {
	wc := platform.DefaultWindowConfig()
	wc.Width = c.Window.Width
	wc.Height = c.Window.Height
	wc.Title = c.Window.Title
	wc.Decorated = c.Window.Decorated
	wc.Resizable = c.Window.Resizable
	wc.Floating = c.Window.Floating
	wc.ScaleToMonitor = c.Window.ScaleToMonitor
	return wc
}

// Color parses DecorationColor. Validate guarantees it parses.
func (w WaylandConfig) Color() [4]uint8 {
	rgba, err := ParseColor(w.DecorationColor)
	if err != nil {
		return [4]uint8{}
	}
	return rgba
}

// ParseColor parses "#rrggbb" or "#rrggbbaa" into RGBA.
func ParseColor(s string) ([4]uint8, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return [4]uint8{}, fmt.Errorf("color must be #rrggbb or #rrggbbaa")
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]uint8{}, fmt.Errorf("color must be #rrggbb or #rrggbbaa")
	}
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Save writes the configuration to path, creating its directory.
//
// Note: this marshals the effective config. Comments are lost and values
// that came from drop-ins or the environment are written into the file.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if _, err := platform.ParseID(c.Platform); err != nil {
		return &ValidationError{Path: "platform", Err: fmt.Errorf("platform must be one of: any, win32, wayland, x11, null")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	switch c.Wayland.Decorations {
	case "auto", "client", "none":
	default:
		return &ValidationError{Path: "wayland.decorations", Err: fmt.Errorf("decorations must be one of: auto, client, none")}
	}
	if c.Wayland.CursorSize < 0 {
		return &ValidationError{Path: "wayland.cursor_size", Err: fmt.Errorf("cursor_size must be >= 0")}
	}
	if _, err := ParseColor(c.Wayland.DecorationColor); err != nil {
		return &ValidationError{Path: "wayland.decoration_color", Err: err}
	}

	switch c.Win32.DPIAwareness {
	case "auto", "none":
	default:
		return &ValidationError{Path: "win32.dpi_awareness", Err: fmt.Errorf("dpi_awareness must be one of: auto, none")}
	}

	if strings.TrimSpace(c.X11.ClassName) == "" {
		return &ValidationError{Path: "x11.class_name", Err: fmt.Errorf("class_name is required")}
	}

	if c.Window.Width <= 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Window.Height <= 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be > 0")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}
	var warnings []string
	if c.Wayland.CursorTheme != "" && c.Wayland.CursorSize == 0 {
		warnings = append(warnings, "wayland.cursor_theme is set without cursor_size; XCURSOR_SIZE or 24 is used")
	}
	if c.Window.ScaleToMonitor && !c.Window.Resizable {
		warnings = append(warnings, "window.scale_to_monitor has no effect on later scale changes of non-resizable windows")
	}
	return warnings
}
