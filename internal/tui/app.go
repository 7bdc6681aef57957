package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/platform"
)

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	ctx        *platform.Context

	// Tab navigation
	activeTab Tab

	// Sub-models
	generalTab  GeneralTab
	backendsTab BackendsTab
	monitorsTab MonitorsTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// Terminal dimensions
	width  int
	height int
}

func newModel(configPath string, ctx *platform.Context) (model, error) {
	if configPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return model{}, err
		}
		configPath = path
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		return model{}, err
	}

	m := model{
		configPath:     configPath,
		result:         res,
		ctx:            ctx,
		activeTab:      TabGeneral,
		originalConfig: cloneConfig(res.Config),
	}
	m.generalTab = NewGeneralTab(res.Config)
	m.backendsTab = NewBackendsTab(res.Config)
	m.monitorsTab = NewMonitorsTab(ctx)
	return m, nil
}

// capturing reports whether the active tab is consuming raw key input.
func (m model) capturing() bool {
	switch m.activeTab {
	case TabGeneral:
		return m.generalTab.editing
	case TabBackends:
		return m.backendsTab.editing
	case TabMonitors:
		return m.monitorsTab.adjusting
	}
	return false
}

func (m model) resize(msg tea.WindowSizeMsg) model {
	m.width = msg.Width
	m.height = msg.Height
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	subMsg := tea.WindowSizeMsg{Width: m.width, Height: h}
	m.generalTab, _ = m.generalTab.Update(subMsg)
	m.backendsTab, _ = m.backendsTab.Update(subMsg)
	m.monitorsTab, _ = m.monitorsTab.Update(subMsg)
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		return m.resize(size), nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.result.Config, m.configPath)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
			}
		}
		return m, nil
	}

	// ctrl+s opens the save overlay from any context, including forms.
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		m.saveOverlay.Show(m.originalConfig, m.result.Config, m.result, m.configPath)
		return m, nil
	}

	if m.capturing() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.delegate(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabGeneral
			return m, nil
		case "2":
			m.activeTab = TabBackends
			return m, nil
		case "3":
			m.activeTab = TabMonitors
			return m, nil
		}
	}
	return m.delegate(msg)
}

func (m model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabBackends:
		m.backendsTab, cmd = m.backendsTab.Update(msg)
	case TabMonitors:
		m.monitorsTab, cmd = m.monitorsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.ctx, m.configPath, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabGeneral:
			content = m.generalTab.View()
		case TabBackends:
			content = m.backendsTab.View()
		case TabMonitors:
			content = m.monitorsTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
