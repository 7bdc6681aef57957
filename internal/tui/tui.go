// Package tui is an interactive editor for the hatch configuration with a
// live view of the monitors reported by the selected platform.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/hatch/internal/platform"
)

// Run starts the TUI. ctx may be nil when no platform could be initialized;
// the monitors tab then reports that instead of a list.
func Run(configPath string, ctx *platform.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	m, err := newModel(configPath, ctx)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
