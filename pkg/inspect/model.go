// Package inspect provides an interactive terminal viewer for snapshot
// compaction. It renders the raw snapshot and its compacted form side by
// tab, lets the user flip between detail levels live, and shows the size
// reduction each level achieves. It exists so a compaction configuration
// can be tuned against a real page dump before it is used on a session.
package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pagesmith/pagesmith/pkg/snapshot"
)

// tabID identifies which rendering the viewport is showing.
type tabID int

const (
	tabRaw tabID = iota
	tabCompacted
)

// toastDuration is how long a transient status message stays visible.
const toastDuration = 2 * time.Second

// model is the bubbletea state for the inspector.
type model struct {
	viewport viewport.Model

	cfg   snapshot.Config
	raw   string
	level int

	// compacted caches the pipeline output per detail level so flipping
	// levels does not recompute.
	compacted map[int]string

	tab   tabID
	toast string
	ready bool

	width  int
	height int
}

type toastExpiredMsg struct{}

func newModel(cfg snapshot.Config, raw string, level int) model {
	return model{
		cfg:       cfg,
		raw:       raw,
		level:     clampLevel(level),
		compacted: make(map[int]string),
		tab:       tabCompacted,
	}
}

func clampLevel(level int) int {
	if level < snapshot.LevelMinimal {
		return snapshot.LevelMinimal
	}
	if level > snapshot.LevelFull {
		return snapshot.LevelFull
	}
	return level
}

// compactedAt runs the pipeline at the given level, caching the result.
// Deltas are disabled so every level shows the full rendering.
func (m *model) compactedAt(level int) string {
	if cached, ok := m.compacted[level]; ok {
		return cached
	}
	out, _ := snapshot.Compact(m.cfg, m.raw, snapshot.Options{
		Level: level,
		Delta: snapshot.DeltaOff,
	}, snapshot.Memory{})
	m.compacted[level] = out
	return out
}

func (m *model) currentContent() string {
	if m.tab == tabRaw {
		return m.raw
	}
	return m.compactedAt(m.level)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(contentStyle.Render(m.currentContent()))
		return m, nil

	case toastExpiredMsg:
		m.toast = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		if m.tab == tabRaw {
			m.tab = tabCompacted
		} else {
			m.tab = tabRaw
		}
		m.refresh()
		return m, nil

	case "0", "1", "2":
		m.level = int(msg.String()[0] - '0')
		m.tab = tabCompacted
		m.refresh()
		return m, nil

	case "c":
		return m.copyToClipboard()

	case "g":
		m.viewport.GotoTop()
		return m, nil

	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) refresh() {
	if m.ready {
		m.viewport.SetContent(contentStyle.Render(m.currentContent()))
		m.viewport.GotoTop()
	}
}

func (m model) copyToClipboard() (tea.Model, tea.Cmd) {
	if err := clipboard.WriteAll(m.currentContent()); err != nil {
		m.toast = fmt.Sprintf("copy failed: %v", err)
	} else {
		m.toast = "copied to clipboard"
	}
	return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{}
	})
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

func (m model) headerView() string {
	rawTab := inactiveTabStyle
	compactTab := inactiveTabStyle
	if m.tab == tabRaw {
		rawTab = activeTabStyle
	} else {
		compactTab = activeTabStyle
	}

	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		rawTab.Render("raw"),
		compactTab.Render(fmt.Sprintf("compacted (level %d)", m.level)),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("pagesmith inspector"),
		tabs,
	)
}

func (m model) footerView() string {
	stats := m.statsLine()
	help := "tab: switch view | 0/1/2: detail level | c: copy | g/G: top/bottom | q: quit"
	if m.toast != "" {
		help = toastStyle.Render(m.toast)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		statusBarStyle.Render(stats),
		statusBarStyle.Render(help),
	)
}

// statsLine summarizes the reduction the current level achieves.
func (m model) statsLine() string {
	compacted := m.compacted[m.level]
	if compacted == "" {
		compacted = (&m).compactedAt(m.level)
	}
	rawLines := len(strings.Split(m.raw, "\n"))
	keptLines := len(strings.Split(compacted, "\n"))
	pct := 100.0
	if len(m.raw) > 0 {
		pct = float64(len(compacted)) / float64(len(m.raw)) * 100
	}
	return fmt.Sprintf("%s | ~%s tokens",
		statStyle.Render(fmt.Sprintf("%d/%d lines, %d/%d chars (%.0f%%)",
			keptLines, rawLines, len(compacted), len(m.raw), pct)),
		statStyle.Render(fmt.Sprintf("%d", snapshot.EstimateTokens(compacted))),
	)
}

// Run opens the inspector over the given raw snapshot text and blocks until
// the user quits.
func Run(cfg snapshot.Config, raw string, level int) error {
	program := tea.NewProgram(
		newModel(cfg, raw, level),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("inspector failed: %w", err)
	}
	return nil
}
