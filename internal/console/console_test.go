package console

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/gemshot/internal/config"
)

func newTestModel(t *testing.T, onDashboard DashboardFunc) (Model, *config.Store) {
	t.Helper()
	store := config.NewStore(t.TempDir())
	return New(store, nil, onDashboard), store
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew_ShowsDefaultRoot(t *testing.T) {
	m, store := newTestModel(t, nil)
	require.Equal(t, filepath.Join(store.BaseDir(), "GemShot_Vault"), m.Root())
	require.Contains(t, m.View(), "Vault: "+m.Root())
}

func TestSetRoot(t *testing.T) {
	m, store := newTestModel(t, nil)
	newRoot := t.TempDir()

	m, _ = press(t, m, runes("s"))
	require.Contains(t, m.View(), "New vault root")

	m, _ = press(t, m, runes(`"`+newRoot+`"`), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, newRoot, m.Root())
	require.Contains(t, m.View(), "Vault root updated")

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, newRoot, cfg.VaultRoot)
}

func TestSetRoot_MissingDirectory(t *testing.T) {
	m, store := newTestModel(t, nil)
	before := m.Root()
	missing := filepath.Join(t.TempDir(), "nope")

	m, _ = press(t, m, runes("s"), runes(missing), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, before, m.Root())
	require.Contains(t, m.View(), "not a directory")

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, cfg.VaultRoot)
}

func TestSetRoot_Cancel(t *testing.T) {
	m, _ := newTestModel(t, nil)
	before := m.Root()

	m, _ = press(t, m, runes("s"), runes("/tmp"), tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, before, m.Root())
	require.Contains(t, m.View(), "Vault root unchanged")

	// Back in idle mode, "q" quits again.
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m, _ := newTestModel(t, nil)
		_, cmd := press(t, m, k)
		require.NotNil(t, cmd, "key %q", k.String())
		require.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestTypingQWhileEditingDoesNotQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = press(t, m, runes("s"))
	m, _ = press(t, m, runes("q"))
	require.Equal(t, modeSetRoot, m.mode)
	require.Equal(t, "q", m.input.Value())
}

func TestDashboard(t *testing.T) {
	calls := 0
	m, _ := newTestModel(t, func() (string, error) {
		calls++
		return "http://127.0.0.1:8765", nil
	})

	m, cmd := press(t, m, runes("d"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, 1, calls)

	next, _ := m.Update(msg)
	require.True(t, strings.Contains(next.View(), "Dashboard at http://127.0.0.1:8765"))
}

func TestDashboard_Unavailable(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, cmd := press(t, m, runes("d"))
	require.Nil(t, cmd)
	require.Contains(t, m.View(), "dashboard is not available")
}
