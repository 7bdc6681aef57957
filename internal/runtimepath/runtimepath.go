package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrNoRuntimeDir is returned when XDG_RUNTIME_DIR is unset or empty.
var ErrNoRuntimeDir = errors.New("XDG_RUNTIME_DIR is not set")

// Dir returns XDG_RUNTIME_DIR, where compositor sockets and shared-memory
// files live.
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}
	return "", ErrNoRuntimeDir
}

// WaylandSocket describes how to reach the compositor: either an already
// connected descriptor inherited through WAYLAND_SOCKET, or a socket path.
type WaylandSocket struct {
	FD   int
	Path string
}

// WaylandSocketPath resolves the compositor socket. WAYLAND_SOCKET wins
// over WAYLAND_DISPLAY; a relative display name is joined with the runtime
// dir and defaults to wayland-0.
func WaylandSocketPath() (WaylandSocket, error) {
	if s := os.Getenv("WAYLAND_SOCKET"); s != "" {
		fd, err := strconv.Atoi(s)
		if err != nil || fd < 0 {
			return WaylandSocket{}, fmt.Errorf("invalid WAYLAND_SOCKET %q", s)
		}
		return WaylandSocket{FD: fd}, nil
	}

	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	if filepath.IsAbs(display) {
		return WaylandSocket{FD: -1, Path: display}, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return WaylandSocket{}, fmt.Errorf("%w; cannot locate %s", err, display)
	}
	return WaylandSocket{FD: -1, Path: filepath.Join(runtimeDir, display)}, nil
}
