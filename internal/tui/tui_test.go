package tui

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/hatch/internal/config"
	"github.com/1broseidon/hatch/internal/null"
	"github.com/1broseidon/hatch/internal/platform"
)

func openNull(t *testing.T) *platform.Context {
	t.Helper()
	ctx, err := platform.Init(platform.Config{
		Platform:   platform.Null,
		Candidates: []platform.Candidate{null.Candidate()},
	}, platform.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(ctx.Terminate)
	return ctx
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestChangedKeys_NoChanges(t *testing.T) {
	cfg := config.DefaultConfig()
	if changes := changedKeys(cfg, cloneConfig(cfg)); changes != nil {
		t.Fatalf("expected no changes, got %v", changes)
	}
}

func TestChangedKeys_ListsKeysInFileOrder(t *testing.T) {
	orig := config.DefaultConfig()
	curr := cloneConfig(orig)
	curr.Window.Width = 800
	curr.Platform = "x11"
	curr.X11.Display = ":1"

	changes := changedKeys(orig, curr)
	var got []string
	for _, c := range changes {
		got = append(got, c.String())
	}
	want := []string{
		"platform: any → x11",
		`x11.display: "" → :1`,
		"window.width: 640 → 800",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("changes = %q, want %q", got, want)
	}
}

func TestSaveOverlay_FlagsValuesSetOutsideMainFile(t *testing.T) {
	orig := config.DefaultConfig()
	curr := cloneConfig(orig)
	curr.Window.Width = 800
	curr.Platform = "x11"
	curr.LogLevel = "debug"
	res := &config.LoadResult{Sources: map[string]config.Source{
		"window.width": {Kind: config.SourceFile, File: "/cfg/config.d/10-size.yaml", Line: 2},
		"platform":     {Kind: config.SourceEnv, Name: config.EnvPlatform},
		"log_level":    {Kind: config.SourceFile, File: "/cfg/config.yaml", Line: 1},
	}}

	var s SaveOverlay
	s.Show(orig, curr, res, "/cfg/config.yaml")
	if s.phase != savePreview || len(s.changes) != 3 {
		t.Fatalf("phase %v, changes %+v", s.phase, s.changes)
	}
	shadows := map[string]string{}
	for _, c := range s.changes {
		shadows[c.path] = c.shadow
	}
	if shadows["platform"] != "$HATCH_PLATFORM" || shadows["window.width"] != "10-size.yaml" || shadows["log_level"] != "" {
		t.Fatalf("unexpected shadows %v", shadows)
	}
	if view := s.View(100, 30); !strings.Contains(view, "still set by 10-size.yaml") {
		t.Fatalf("preview does not flag the drop-in:\n%s", view)
	}
}

func TestSaveOverlay_CancelLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	orig := config.DefaultConfig()
	curr := cloneConfig(orig)
	curr.Window.Title = "edited"

	var s SaveOverlay
	s.Show(orig, curr, nil, path)
	s = s.Update(runes("n"), curr, path)
	if s.Active() {
		t.Fatalf("expected n to close the preview")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file after cancel, stat err %v", err)
	}
}

func TestCloneConfig_IsIndependent(t *testing.T) {
	orig := config.DefaultConfig()
	clone := cloneConfig(orig)
	clone.X11.ClassName = "other"
	if orig.X11.ClassName != "hatch" {
		t.Fatalf("clone shares state with original")
	}
	if cloneConfig(nil) != nil {
		t.Fatalf("expected nil clone of nil config")
	}
}

func TestRenderMonitorPreview_SideBySide(t *testing.T) {
	rects := []platform.Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 1920, Height: 1080},
	}
	lines := renderMonitorPreview(rects, 1, 42, 10)
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "1") || !strings.Contains(joined, "[2]") {
		t.Fatalf("expected both labels with the selection bracketed:\n%s", joined)
	}
	if strings.Count(joined, "┌") != 2 {
		t.Fatalf("expected two boxes:\n%s", joined)
	}
	if !strings.HasPrefix(lines[0], "╔") {
		t.Fatalf("expected outer border, got %q", lines[0])
	}
}

func TestRenderMonitorPreview_TooSmall(t *testing.T) {
	lines := renderMonitorPreview([]platform.Rect{{Width: 10, Height: 10}}, 0, 3, 2)
	if len(lines) != 2 || strings.TrimSpace(strings.Join(lines, "")) != "" {
		t.Fatalf("expected blank canvas, got %q", lines)
	}
}

func TestSummarizeMonitors(t *testing.T) {
	if got := summarizeMonitors(nil); got != "no monitors" {
		t.Fatalf("unexpected summary %q", got)
	}
	got := summarizeMonitors([]platform.Rect{
		{X: -1280, Y: 0, Width: 1280, Height: 1024},
		{X: 0, Y: 0, Width: 1920, Height: 1080},
	})
	if !strings.Contains(got, "2 monitors") || !strings.Contains(got, "3200×1080 at -1280,0") {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestGeneralTab_ApplyForm(t *testing.T) {
	cfg := config.DefaultConfig()
	g := NewGeneralTab(cfg)
	g.startEditing()
	g.fPlatform = "x11"
	g.fWidth = "1024"
	g.fHeight = "bogus"
	g.fTitle = "  demo  "
	g.fFloating = true
	g.applyForm()

	if cfg.Platform != "x11" {
		t.Fatalf("platform not applied: %q", cfg.Platform)
	}
	if cfg.Window.Width != 1024 {
		t.Fatalf("width not applied: %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 480 {
		t.Fatalf("invalid height should be ignored, got %d", cfg.Window.Height)
	}
	if cfg.Window.Title != "demo" {
		t.Fatalf("title not trimmed: %q", cfg.Window.Title)
	}
	if !cfg.Window.Floating {
		t.Fatalf("floating not applied")
	}
}

func TestBackendsTab_ApplyForm(t *testing.T) {
	cfg := config.DefaultConfig()
	b := NewBackendsTab(cfg)
	b.startEditing()
	b.fCursorSize = "32"
	b.fDecorationColor = "#102030"
	b.fClassName = ""
	b.fDisplay = ":1"
	b.applyForm()

	if cfg.Wayland.CursorSize != 32 {
		t.Fatalf("cursor size not applied: %d", cfg.Wayland.CursorSize)
	}
	if cfg.Wayland.DecorationColor != "#102030" {
		t.Fatalf("color not applied: %q", cfg.Wayland.DecorationColor)
	}
	if cfg.X11.ClassName != "hatch" {
		t.Fatalf("empty class name should be ignored, got %q", cfg.X11.ClassName)
	}
	if cfg.X11.Display != ":1" {
		t.Fatalf("display not applied: %q", cfg.X11.Display)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("applied config should validate: %v", err)
	}
}

func TestBackendValidators(t *testing.T) {
	if cursorSize("") != nil || cursorSize("24") != nil {
		t.Fatalf("expected valid cursor sizes")
	}
	if cursorSize("-1") == nil || cursorSize("big") == nil {
		t.Fatalf("expected invalid cursor sizes")
	}
	if decorationColor("#fff") == nil {
		t.Fatalf("expected short color to be rejected")
	}
	if className("  ") == nil {
		t.Fatalf("expected blank class name to be rejected")
	}
}

func TestMonitorsTab_ListsNullMonitor(t *testing.T) {
	ctx := openNull(t)
	tab := NewMonitorsTab(ctx)

	items := tab.list.Items()
	if len(items) != 1 {
		t.Fatalf("expected one monitor, got %d", len(items))
	}
	item := items[0].(monitorItem)
	if !item.primary || item.name != "Null SuperNoop 0" {
		t.Fatalf("unexpected item %+v", item)
	}
	if tab.selected() == nil {
		t.Fatalf("expected a selected monitor")
	}
}

func TestMonitorsTab_ApplyGamma(t *testing.T) {
	ctx := openNull(t)
	tab := NewMonitorsTab(ctx)

	msg := tab.applyGamma("2.2")().(statusMsg)
	if !strings.Contains(msg.text, "gamma set to 2.20") {
		t.Fatalf("unexpected status %q", msg.text)
	}
	msg = tab.applyGamma("abc")().(statusMsg)
	if !strings.Contains(msg.text, "invalid gamma") {
		t.Fatalf("unexpected status %q", msg.text)
	}
	msg = tab.applyGamma("-1")().(statusMsg)
	if msg.text == "" || strings.Contains(msg.text, "gamma set") {
		t.Fatalf("expected an error status, got %q", msg.text)
	}
}

func TestMonitorsTab_GammaKeyCaptures(t *testing.T) {
	ctx := openNull(t)
	tab := NewMonitorsTab(ctx)
	tab, _ = tab.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	tab, _ = tab.Update(runes("g"))
	if !tab.adjusting {
		t.Fatalf("expected gamma input to open")
	}
	tab, _ = tab.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if tab.adjusting {
		t.Fatalf("expected esc to close gamma input")
	}
	if v := tab.View(); !strings.Contains(v, "Null SuperNoop 0") {
		t.Fatalf("expected monitor name in view:\n%s", v)
	}
}

func TestMonitorsTab_NilContext(t *testing.T) {
	tab := NewMonitorsTab(nil)
	tab, _ = tab.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if v := tab.View(); !strings.Contains(v, "No platform initialized") {
		t.Fatalf("expected placeholder, got:\n%s", v)
	}
}

func TestModel_TabNavigation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := newModel(path, openNull(t))
	if err != nil {
		t.Fatalf("newModel: %v", err)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	if m.activeTab != TabBackends {
		t.Fatalf("expected backends tab, got %v", m.activeTab)
	}
	next, _ = m.Update(runes("3"))
	m = next.(model)
	if m.activeTab != TabMonitors {
		t.Fatalf("expected monitors tab, got %v", m.activeTab)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(model)
	if m.activeTab != TabBackends {
		t.Fatalf("expected backends tab, got %v", m.activeTab)
	}
}

func TestModel_SaveWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := newModel(path, nil)
	if err != nil {
		t.Fatalf("newModel: %v", err)
	}
	m.result.Config.Window.Title = "saved"

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(model)
	if m.saveOverlay.phase != savePreview {
		t.Fatalf("expected diff preview, got phase %v", m.saveOverlay.phase)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if !m.saveOverlay.SaveSucceeded() {
		t.Fatalf("save failed: %v", m.saveOverlay.err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "title: saved") {
		t.Fatalf("saved file missing title:\n%s", data)
	}
	if m.originalConfig.Window.Title != "saved" {
		t.Fatalf("baseline not refreshed after save")
	}
}

func TestSaveOverlay_NoChanges(t *testing.T) {
	var s SaveOverlay
	cfg := config.DefaultConfig()
	s.Show(cfg, cloneConfig(cfg), nil, "")
	if s.phase != saveResult || s.err == nil {
		t.Fatalf("expected a no-changes result, got phase %v err %v", s.phase, s.err)
	}
	s = s.Update(runes("x"), cfg, "")
	if s.Active() {
		t.Fatalf("expected any key to dismiss")
	}
}
