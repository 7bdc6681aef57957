package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	platform
//	log_level
//	wayland.decorations
//	wayland.decoration_color
//	win32.dpi_awareness
//	x11.class_name
//	window.width
//	window.scale_to_monitor
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// Keys lists every leaf key path in the order Save writes them.
var Keys = []string{
	"platform",
	"log_level",
	"wayland.decorations",
	"wayland.cursor_theme",
	"wayland.cursor_size",
	"wayland.decoration_color",
	"win32.dpi_awareness",
	"x11.display",
	"x11.class_name",
	"window.width",
	"window.height",
	"window.title",
	"window.decorated",
	"window.resizable",
	"window.floating",
	"window.scale_to_monitor",
}

// Value returns the value of cfg at path.
func Value(cfg *Config, path string) (any, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no config")
	}
	return lookupValue(cfg, path)
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	leaf := ""
	if len(parts) == 2 {
		leaf = parts[1]
	}

	switch parts[0] {
	case "platform":
		if leaf != "" {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.Platform, nil
	case "log_level":
		if leaf != "" {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.LogLevel, nil
	case "wayland":
		switch leaf {
		case "":
			return cfg.Wayland, nil
		case "decorations":
			return cfg.Wayland.Decorations, nil
		case "cursor_theme":
			return cfg.Wayland.CursorTheme, nil
		case "cursor_size":
			return cfg.Wayland.CursorSize, nil
		case "decoration_color":
			return cfg.Wayland.DecorationColor, nil
		}
	case "win32":
		switch leaf {
		case "":
			return cfg.Win32, nil
		case "dpi_awareness":
			return cfg.Win32.DPIAwareness, nil
		}
	case "x11":
		switch leaf {
		case "":
			return cfg.X11, nil
		case "display":
			return cfg.X11.Display, nil
		case "class_name":
			return cfg.X11.ClassName, nil
		}
	case "window":
		switch leaf {
		case "":
			return cfg.Window, nil
		case "width":
			return cfg.Window.Width, nil
		case "height":
			return cfg.Window.Height, nil
		case "title":
			return cfg.Window.Title, nil
		case "decorated":
			return cfg.Window.Decorated, nil
		case "resizable":
			return cfg.Window.Resizable, nil
		case "floating":
			return cfg.Window.Floating, nil
		case "scale_to_monitor":
			return cfg.Window.ScaleToMonitor, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
