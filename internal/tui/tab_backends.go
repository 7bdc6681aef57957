package tui

import (
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/1broseidon/hatch/internal/config"
)

// BackendsTab edits the per-platform tuning sections.
type BackendsTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form

	fDecorations     string
	fCursorTheme     string
	fCursorSize      string
	fDecorationColor string
	fDPIAwareness    string
	fDisplay         string
	fClassName       string
}

// NewBackendsTab creates a BackendsTab from the loaded config.
func NewBackendsTab(cfg *config.Config) BackendsTab {
	return BackendsTab{cfg: cfg}
}

func (b BackendsTab) Update(msg tea.Msg) (BackendsTab, tea.Cmd) {
	if b.editing {
		return b.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			b.startEditing()
			return b, b.form.Init()
		}
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
	}
	return b, nil
}

func (b BackendsTab) updateEditing(msg tea.Msg) (BackendsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			b.editing = false
			b.form = nil
			return b, nil
		}
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}
	if b.form.State == huh.StateCompleted {
		b.applyForm()
		b.editing = false
		b.form = nil
		return b, nil
	}
	return b, cmd
}

var (
	errNonNegative = errors.New("must be a non-negative integer")
	errRequired    = errors.New("required")
)

func cursorSize(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return errNonNegative
	}
	return nil
}

func decorationColor(s string) error {
	_, err := config.ParseColor(s)
	return err
}

func className(s string) error {
	if strings.TrimSpace(s) == "" {
		return errRequired
	}
	return nil
}

func (b *BackendsTab) startEditing() {
	cfg := b.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	b.fDecorations = cfg.Wayland.Decorations
	b.fCursorTheme = cfg.Wayland.CursorTheme
	b.fCursorSize = ""
	if cfg.Wayland.CursorSize > 0 {
		b.fCursorSize = strconv.Itoa(cfg.Wayland.CursorSize)
	}
	b.fDecorationColor = cfg.Wayland.DecorationColor
	b.fDPIAwareness = cfg.Win32.DPIAwareness
	b.fDisplay = cfg.X11.Display
	b.fClassName = cfg.X11.ClassName

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("decorations").
				Title("Wayland: Decorations").
				Description("auto prefers server-side decorations").
				Options(stringOptions("auto", "client", "none")...).
				Value(&b.fDecorations),
			huh.NewInput().
				Key("cursor_theme").
				Title("Wayland: Cursor Theme").
				Description("Empty uses XCURSOR_THEME").
				Value(&b.fCursorTheme),
			huh.NewInput().
				Key("cursor_size").
				Title("Wayland: Cursor Size").
				Description("Empty uses XCURSOR_SIZE").
				Validate(cursorSize).
				Value(&b.fCursorSize),
			huh.NewInput().
				Key("decoration_color").
				Title("Wayland: Decoration Color").
				Description("#rrggbb or #rrggbbaa").
				Validate(decorationColor).
				Value(&b.fDecorationColor),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("dpi_awareness").
				Title("Win32: DPI Awareness").
				Options(stringOptions("auto", "none")...).
				Value(&b.fDPIAwareness),
			huh.NewInput().
				Key("display").
				Title("X11: Display").
				Description("Empty uses DISPLAY").
				Value(&b.fDisplay),
			huh.NewInput().
				Key("class_name").
				Title("X11: WM_CLASS").
				Validate(className).
				Value(&b.fClassName),
		),
	).WithWidth(formWidth(b.width)).WithShowHelp(true).WithShowErrors(true)

	b.editing = true
}

func (b *BackendsTab) applyForm() {
	if b.cfg == nil {
		return
	}
	if b.fDecorations != "" {
		b.cfg.Wayland.Decorations = b.fDecorations
	}
	b.cfg.Wayland.CursorTheme = strings.TrimSpace(b.fCursorTheme)
	if v, err := strconv.Atoi(strings.TrimSpace(b.fCursorSize)); err == nil && v >= 0 {
		b.cfg.Wayland.CursorSize = v
	} else if strings.TrimSpace(b.fCursorSize) == "" {
		b.cfg.Wayland.CursorSize = 0
	}
	if _, err := config.ParseColor(b.fDecorationColor); err == nil {
		b.cfg.Wayland.DecorationColor = strings.TrimSpace(b.fDecorationColor)
	}
	if b.fDPIAwareness != "" {
		b.cfg.Win32.DPIAwareness = b.fDPIAwareness
	}
	b.cfg.X11.Display = strings.TrimSpace(b.fDisplay)
	if name := strings.TrimSpace(b.fClassName); name != "" {
		b.cfg.X11.ClassName = name
	}
}

func (b BackendsTab) View() string {
	if b.editing && b.form != nil {
		return viewEditing("Editing Backend Settings", b.form, b.width, b.height)
	}
	cfg := b.cfg
	if cfg == nil {
		return placeholder("No config loaded", b.width, b.height)
	}

	size := "(env)"
	if cfg.Wayland.CursorSize > 0 {
		size = strconv.Itoa(cfg.Wayland.CursorSize)
	}
	row := settingsRow
	lines := []string{
		"",
		row("Decorations", cfg.Wayland.Decorations),
		row("Cursor Theme", displayOrDefault(cfg.Wayland.CursorTheme, "(env)")),
		row("Cursor Size", size),
		row("Decoration Color", cfg.Wayland.DecorationColor),
		"",
		row("DPI Awareness", cfg.Win32.DPIAwareness),
		"",
		row("Display", displayOrDefault(cfg.X11.Display, "(env)")),
		row("WM_CLASS", cfg.X11.ClassName),
	}
	return settingsView(lines, b.width, b.height)
}
