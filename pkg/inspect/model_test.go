package inspect

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesmith/pagesmith/pkg/snapshot"
)

func testSnapshot() string {
	var b strings.Builder
	b.WriteString("heading \"Checkout\" [level=1]\n")
	for i := 0; i < 40; i++ {
		b.WriteString("text \"shipping detail\"\n")
	}
	b.WriteString("button \"Place order\"\n")
	return b.String()
}

func sized(m model) model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(model)
}

func TestModelStartsOnCompactedTab(t *testing.T) {
	m := sized(newModel(snapshot.DefaultConfig(), testSnapshot(), snapshot.LevelMinimal))

	assert.Equal(t, tabCompacted, m.tab)
	view := m.View()
	assert.Contains(t, view, "compacted (level 0)")
}

func TestModelTabSwitchesView(t *testing.T) {
	m := sized(newModel(snapshot.DefaultConfig(), testSnapshot(), snapshot.LevelMinimal))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(model)
	assert.Equal(t, tabRaw, m.tab)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(model)
	assert.Equal(t, tabCompacted, m.tab)
}

func TestModelLevelKeysRecompact(t *testing.T) {
	m := sized(newModel(snapshot.DefaultConfig(), testSnapshot(), snapshot.LevelMinimal))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	m = updated.(model)

	assert.Equal(t, snapshot.LevelFull, m.level)
	assert.Equal(t, tabCompacted, m.tab)

	// Full detail keeps the filler lines that minimal drops.
	assert.Contains(t, m.compactedAt(snapshot.LevelFull), "shipping detail")
	assert.NotContains(t, m.compactedAt(snapshot.LevelMinimal), "text \"shipping detail\"\ntext \"shipping detail\"\ntext \"shipping detail\"\ntext \"shipping detail\"")
}

func TestModelQuitKeys(t *testing.T) {
	m := sized(newModel(snapshot.DefaultConfig(), testSnapshot(), snapshot.LevelSection))

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		_, cmd := m.Update(key)
		require.NotNil(t, cmd, "key %s should quit", key.String())
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestModelStatsLine(t *testing.T) {
	m := sized(newModel(snapshot.DefaultConfig(), testSnapshot(), snapshot.LevelMinimal))

	stats := m.statsLine()
	assert.Contains(t, stats, "lines")
	assert.Contains(t, stats, "chars")
	assert.Contains(t, stats, "tokens")
}

func TestClampLevel(t *testing.T) {
	assert.Equal(t, snapshot.LevelMinimal, clampLevel(-3))
	assert.Equal(t, snapshot.LevelSection, clampLevel(1))
	assert.Equal(t, snapshot.LevelFull, clampLevel(9))
}
