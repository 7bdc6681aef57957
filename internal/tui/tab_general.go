package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/hatch/internal/config"
)

// GeneralTab is the sub-model for the platform and window default settings.
type GeneralTab struct {
	cfg *config.Config

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fPlatform       string
	fLogLevel       string
	fWidth          string
	fHeight         string
	fTitle          string
	fDecorated      bool
	fResizable      bool
	fFloating       bool
	fScaleToMonitor bool
}

// NewGeneralTab creates a GeneralTab from the loaded config.
func NewGeneralTab(cfg *config.Config) GeneralTab {
	return GeneralTab{cfg: cfg}
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}
	if g.form.State == huh.StateCompleted {
		g.applyForm()
		g.editing = false
		g.form = nil
		return g, nil
	}
	return g, cmd
}

func positiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func stringOptions(values ...string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(values))
	for _, v := range values {
		opts = append(opts, huh.NewOption(v, v))
	}
	return opts
}

func formWidth(width int) int {
	w := width - 4
	if w < 40 {
		w = 40
	}
	return w
}

func (g *GeneralTab) startEditing() {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	g.fPlatform = cfg.Platform
	g.fLogLevel = cfg.LogLevel
	g.fWidth = strconv.Itoa(cfg.Window.Width)
	g.fHeight = strconv.Itoa(cfg.Window.Height)
	g.fTitle = cfg.Window.Title
	g.fDecorated = cfg.Window.Decorated
	g.fResizable = cfg.Window.Resizable
	g.fFloating = cfg.Window.Floating
	g.fScaleToMonitor = cfg.Window.ScaleToMonitor

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("platform").
				Title("Platform").
				Description("Backend to initialize; any probes in order").
				Options(stringOptions("any", "win32", "wayland", "x11", "null")...).
				Value(&g.fPlatform),

			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(stringOptions("debug", "info", "warn", "error")...).
				Value(&g.fLogLevel),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("width").
				Title("Window Width").
				Validate(positiveInt).
				Value(&g.fWidth),
			huh.NewInput().
				Key("height").
				Title("Window Height").
				Validate(positiveInt).
				Value(&g.fHeight),
			huh.NewInput().
				Key("title").
				Title("Window Title").
				Value(&g.fTitle),
			huh.NewConfirm().
				Key("decorated").
				Title("Decorated").
				Value(&g.fDecorated),
			huh.NewConfirm().
				Key("resizable").
				Title("Resizable").
				Value(&g.fResizable),
			huh.NewConfirm().
				Key("floating").
				Title("Floating").
				Value(&g.fFloating),
			huh.NewConfirm().
				Key("scale_to_monitor").
				Title("Scale To Monitor").
				Value(&g.fScaleToMonitor),
		),
	).WithWidth(formWidth(g.width)).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
}

func (g *GeneralTab) applyForm() {
	if g.cfg == nil {
		return
	}
	if g.fPlatform != "" {
		g.cfg.Platform = g.fPlatform
	}
	if g.fLogLevel != "" {
		g.cfg.LogLevel = g.fLogLevel
	}
	if v, err := strconv.Atoi(strings.TrimSpace(g.fWidth)); err == nil && v > 0 {
		g.cfg.Window.Width = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(g.fHeight)); err == nil && v > 0 {
		g.cfg.Window.Height = v
	}
	g.cfg.Window.Title = strings.TrimSpace(g.fTitle)
	g.cfg.Window.Decorated = g.fDecorated
	g.cfg.Window.Resizable = g.fResizable
	g.cfg.Window.Floating = g.fFloating
	g.cfg.Window.ScaleToMonitor = g.fScaleToMonitor
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return viewEditing("Editing General Settings", g.form, g.width, g.height)
	}
	cfg := g.cfg
	if cfg == nil {
		return placeholder("No config loaded", g.width, g.height)
	}

	row := settingsRow
	size := fmt.Sprintf("%dx%d", cfg.Window.Width, cfg.Window.Height)
	lines := []string{
		"",
		row("Platform", cfg.Platform),
		row("Log Level", cfg.LogLevel),
		"",
		row("Window Size", size),
		row("Window Title", displayOrDefault(cfg.Window.Title, "(empty)")),
		row("Decorated", strconv.FormatBool(cfg.Window.Decorated)),
		row("Resizable", strconv.FormatBool(cfg.Window.Resizable)),
		row("Floating", strconv.FormatBool(cfg.Window.Floating)),
		row("Scale To Monitor", strconv.FormatBool(cfg.Window.ScaleToMonitor)),
	}
	return settingsView(lines, g.width, g.height)
}

func settingsRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func settingsView(lines []string, width, height int) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	lines = append(lines, "", dimStyle.Render("  Press 'e' to edit settings"))

	contentStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2)
	return contentStyle.Render(strings.Join(lines, "\n"))
}

func viewEditing(title string, form *huh.Form, width, height int) string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render(title) +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2)
	return style.Render(header + "\n\n" + form.View())
}
