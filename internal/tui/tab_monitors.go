package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/hatch/internal/event"
	"github.com/1broseidon/hatch/internal/platform"
)

// monitorItem implements list.Item for the monitor sidebar.
type monitorItem struct {
	id      event.MonitorID
	name    string
	primary bool
	mode    platform.VideoMode
}

func (i monitorItem) Title() string {
	prefix := "  "
	if i.primary {
		prefix = "* "
	}
	return prefix + i.name
}

func (i monitorItem) Description() string {
	return fmt.Sprintf("  %dx%d @ %dHz", i.mode.Width, i.mode.Height, i.mode.RefreshRate)
}

func (i monitorItem) FilterValue() string { return i.name }

// statusMsg is shown in the tab status line until clearStatusMsg arrives.
type statusMsg struct {
	text string
}

type clearStatusMsg struct{}

// MonitorsTab lists the connected monitors and adjusts their gamma.
type MonitorsTab struct {
	ctx  *platform.Context
	list list.Model

	adjusting bool
	gamma     textinput.Model

	statusText string

	width  int
	height int
	ready  bool
}

// NewMonitorsTab creates a MonitorsTab over ctx, which may be nil.
func NewMonitorsTab(ctx *platform.Context) MonitorsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(buildMonitorItems(ctx), delegate, 0, 0)
	l.Title = "Monitors"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "e.g. 1.0, 2.2"
	ti.CharLimit = 8

	return MonitorsTab{
		ctx:   ctx,
		list:  l,
		gamma: ti,
	}
}

func buildMonitorItems(ctx *platform.Context) []list.Item {
	if ctx == nil {
		return nil
	}
	primary := ctx.PrimaryMonitor()
	var items []list.Item
	for _, m := range ctx.Monitors() {
		mode, _ := m.VideoMode()
		items = append(items, monitorItem{
			id:      m.ID,
			name:    m.Name,
			primary: m == primary,
			mode:    mode,
		})
	}
	return items
}

func (t MonitorsTab) selected() *platform.Monitor {
	if t.ctx == nil {
		return nil
	}
	item, ok := t.list.SelectedItem().(monitorItem)
	if !ok {
		return nil
	}
	return t.ctx.Monitor(item.id)
}

func showStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// Update handles messages for the monitors tab.
func (t MonitorsTab) Update(msg tea.Msg) (MonitorsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.listWidth(), max(t.height-2, 1))
		t.ready = true
		return t, nil

	case statusMsg:
		t.statusText = msg.text
		return t, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		t.statusText = ""
		return t, nil
	}

	if t.adjusting {
		return t.updateAdjusting(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "r":
			if t.ctx != nil {
				t.ctx.PollEvents()
				t.list.SetItems(buildMonitorItems(t.ctx))
			}
			return t, showStatus("monitors refreshed")
		case "g":
			if t.selected() == nil {
				return t, nil
			}
			t.adjusting = true
			t.gamma.Reset()
			t.gamma.Focus()
			return t, textinput.Blink
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t MonitorsTab) updateAdjusting(msg tea.Msg) (MonitorsTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			t.adjusting = false
			t.gamma.Blur()
			return t, t.applyGamma(strings.TrimSpace(t.gamma.Value()))
		case "esc":
			t.adjusting = false
			t.gamma.Blur()
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.gamma, cmd = t.gamma.Update(msg)
	return t, cmd
}

func (t MonitorsTab) applyGamma(value string) tea.Cmd {
	m := t.selected()
	if m == nil || value == "" {
		return nil
	}
	g, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return showStatus("invalid gamma " + strconv.Quote(value))
	}
	if err := m.SetGamma(float32(g)); err != nil {
		return showStatus(err.Error())
	}
	return showStatus(fmt.Sprintf("%s gamma set to %.2f", m.Name, g))
}

func (t MonitorsTab) listWidth() int {
	w := t.width * 2 / 5
	if w < 20 {
		w = 20
	}
	if w > 40 {
		w = 40
	}
	return w
}

// View renders the monitor list beside the arrangement preview.
func (t MonitorsTab) View() string {
	if !t.ready || t.width == 0 || t.height == 0 {
		return ""
	}
	if t.ctx == nil {
		return placeholder("No platform initialized", t.width, t.height)
	}

	sidebarWidth := t.listWidth()
	previewWidth := t.width - sidebarWidth - 3
	if previewWidth < 10 {
		previewWidth = 10
	}

	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(t.height - 2).
		Render(t.list.View())

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", max(t.height-2, 1)))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, t.renderDetail(previewWidth))
	return lipgloss.JoinVertical(lipgloss.Left, columns, t.renderTabStatus())
}

func (t MonitorsTab) renderDetail(width int) string {
	monitors := t.ctx.Monitors()
	rects := make([]platform.Rect, 0, len(monitors))
	selected := -1
	sel := t.selected()
	for i, m := range monitors {
		x, y := m.Pos()
		mode, _ := m.VideoMode()
		rects = append(rects, platform.Rect{X: x, Y: y, Width: mode.Width, Height: mode.Height})
		if m == sel {
			selected = i
		}
	}

	summary := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Render(" " + summarizeMonitors(rects))

	var info []string
	if sel != nil {
		x, y := sel.Pos()
		wmm, hmm := sel.PhysicalSize()
		sx, sy := sel.ContentScale()
		wa := sel.Workarea()
		mode, _ := sel.VideoMode()
		info = []string{
			fmt.Sprintf(" position  %d,%d", x, y),
			fmt.Sprintf(" mode      %dx%d @ %dHz  (r%d g%d b%d)", mode.Width, mode.Height, mode.RefreshRate, mode.RedBits, mode.GreenBits, mode.BlueBits),
			fmt.Sprintf(" workarea  %dx%d+%d+%d", wa.Width, wa.Height, wa.X, wa.Y),
			fmt.Sprintf(" physical  %dx%d mm", wmm, hmm),
			fmt.Sprintf(" scale     %.2f x %.2f", sx, sy),
		}
	}

	previewHeight := t.height - 4 - len(info)
	if previewHeight < 5 {
		previewHeight = 5
	}
	lines := renderMonitorPreview(rects, selected, max(width-2, 5), previewHeight)
	preview := lipgloss.NewStyle().
		Foreground(lipgloss.Color("247")).
		Render(strings.Join(lines, "\n"))

	parts := []string{summary, ""}
	parts = append(parts, info...)
	parts = append(parts, "", preview)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (t MonitorsTab) renderTabStatus() string {
	if t.adjusting {
		return lipgloss.NewStyle().
			Width(t.width).
			Padding(0, 1).
			Render("gamma: " + t.gamma.View())
	}

	left := ""
	if t.statusText != "" {
		left = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render(t.statusText)
	}
	right := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("j/k:select  g:gamma  r:refresh")

	gap := t.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Width(t.width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
