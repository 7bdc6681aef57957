package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/hatch/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // listing changed keys, awaiting confirm
	saveResult            // showing outcome message
)

// keyChange is one config key whose value differs from the loaded config.
type keyChange struct {
	path     string
	old, new any
	// shadow names the drop-in or variable that will still override the
	// saved value on the next load.
	shadow string
}

func (c keyChange) String() string {
	return fmt.Sprintf("%s: %s → %s", c.path, formatValue(c.old), formatValue(c.new))
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		if s == "" {
			return `""`
		}
		return s
	}
	return fmt.Sprint(v)
}

// SaveOverlay lists pending key changes and writes the config on confirm.
type SaveOverlay struct {
	phase     savePhase
	changes   []keyChange
	err       error
	savedPath string
	scroll    int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show compares original with current and opens the preview. Values whose
// source is not the main file are flagged since saving does not change
// what they resolve to.
func (s *SaveOverlay) Show(original, current *config.Config, res *config.LoadResult, path string) {
	s.err = nil
	s.savedPath = ""
	s.scroll = 0

	s.changes = changedKeys(original, current)
	if len(s.changes) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	if res != nil {
		for i := range s.changes {
			s.changes[i].shadow = shadowOf(res.Sources[s.changes[i].path], path)
		}
	}
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. Confirming writes cfg
// to path.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	switch s.phase {
	case savePreview:
		switch km.String() {
		case "esc", "n":
			s.phase = saveHidden
		case "enter", "y":
			s.err = cfg.Save(path)
			if s.err == nil {
				s.savedPath = path
			}
			s.phase = saveResult
		case "up", "k":
			s.scroll = max(s.scroll-1, 0)
		case "down", "j":
			s.scroll = min(s.scroll+1, max(len(s.changes)-1, 0))
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

// View renders the overlay for the given content area dimensions.
func (s SaveOverlay) View(width, height int) string {
	switch s.phase {
	case savePreview:
		return s.viewPreview(width, height)
	case saveResult:
		return s.viewResult(width, height)
	}
	return ""
}

func (s SaveOverlay) viewPreview(areaW, areaH int) string {
	boxW := min(max(areaW-8, 30), 80)
	rows := max(areaH-10, 3)

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).
		Render(fmt.Sprintf("Save %d changed key(s)", len(s.changes))))
	b.WriteString("\n\n")

	start := min(s.scroll, max(len(s.changes)-rows, 0))
	end := min(start+rows, len(s.changes))
	for _, c := range s.changes[start:end] {
		b.WriteString(keyStyle.Render(truncate(c.String(), boxW-6)))
		if c.shadow != "" {
			b.WriteString(warnStyle.Render("  (still set by " + c.shadow + ")"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter/y: save  esc/n: cancel  j/k: scroll"))

	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, overlayBox(boxW).Render(b.String()))
}

func (s SaveOverlay) viewResult(areaW, areaH int) string {
	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("Saved " + s.savedPath)
	}
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press any key to dismiss")
	box := overlayBox(min(max(areaW-8, 30), 60)).Render(msg + "\n\n" + footer)
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, box)
}

func overlayBox(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(width)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// changedKeys walks the config keys in file order and returns those whose
// value differs.
func changedKeys(original, current *config.Config) []keyChange {
	if original == nil || current == nil {
		return nil
	}
	var out []keyChange
	for _, key := range config.Keys {
		old, err := config.Value(original, key)
		if err != nil {
			continue
		}
		cur, err := config.Value(current, key)
		if err != nil || old == cur {
			continue
		}
		out = append(out, keyChange{path: key, old: old, new: cur})
	}
	return out
}

// shadowOf names where src came from when that layer outranks the main
// config file at path.
func shadowOf(src config.Source, path string) string {
	switch src.Kind {
	case config.SourceEnv:
		return "$" + src.Name
	case config.SourceFile:
		if src.File != path {
			return filepath.Base(src.File)
		}
	}
	return ""
}

// cloneConfig copies cfg. Config holds only values.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	clone := *cfg
	return &clone
}
