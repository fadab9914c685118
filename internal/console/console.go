// Package console is the terminal listener that runs alongside the capture
// daemon: it shows the vault root and takes single-key commands.
package console

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/ops"
)

type mode int

const (
	modeIdle mode = iota
	modeSetRoot
)

// DashboardFunc starts or reuses the dashboard and returns its URL.
type DashboardFunc func() (string, error)

type dashboardMsg struct {
	url string
	err error
}

// Model is the Bubble Tea model for the console listener.
type Model struct {
	store       *config.Store
	rec         *activity.Recorder
	onDashboard DashboardFunc

	mode   mode
	input  textinput.Model
	root   string
	status string
	err    string
	accent lipgloss.Color
}

// New creates the console model. onDashboard may be nil.
func New(store *config.Store, rec *activity.Recorder, onDashboard DashboardFunc) Model {
	if rec == nil {
		rec = activity.Discard()
	}

	in := textinput.New()
	in.Placeholder = "/path/to/vault"
	in.CharLimit = 1024
	in.Width = 60

	m := Model{
		store:       store,
		rec:         rec,
		onDashboard: onDashboard,
		input:       in,
		accent:      lipgloss.Color(config.Themes[config.ThemeLight].Primary),
	}
	if cfg, err := store.Load(); err == nil {
		m.root = cfg.Paths(store.BaseDir()).Root
		m.accent = lipgloss.Color(cfg.Colors().Primary)
	} else {
		m.err = err.Error()
	}
	return m
}

// Root returns the vault root currently shown.
func (m Model) Root() string {
	return m.root
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		if msg.err != nil {
			m.err = "dashboard: " + msg.err.Error()
			m.status = ""
		} else {
			m.err = ""
			m.status = "Dashboard at " + msg.url
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode == modeSetRoot {
			return m.updateSetRoot(msg)
		}
		return m.updateIdle(msg)
	}
	return m, nil
}

func (m Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "s":
		m.mode = modeSetRoot
		m.err, m.status = "", ""
		m.input.SetValue("")
		return m, m.input.Focus()
	case "d":
		if m.onDashboard == nil {
			m.err = "dashboard is not available"
			return m, nil
		}
		m.err, m.status = "", "Opening dashboard..."
		open := m.onDashboard
		return m, func() tea.Msg {
			url, err := open()
			return dashboardMsg{url: url, err: err}
		}
	}
	return m, nil
}

func (m Model) updateSetRoot(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeIdle
		m.input.Blur()
		m.status = "Vault root unchanged"
		return m, nil
	case tea.KeyEnter:
		m.mode = modeIdle
		m.input.Blur()
		m.applyRoot(m.input.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyRoot validates and stores a new vault root typed by the user.
func (m *Model) applyRoot(raw string) {
	root := ops.CleanPath(raw)
	if root == "" {
		m.status = "Vault root unchanged"
		return
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		m.err = fmt.Sprintf("not a directory: %s", root)
		return
	}
	if err := m.store.SetVaultRoot(root); err != nil {
		m.err = err.Error()
		m.rec.Error("set vault root failed", err, "root", root)
		return
	}
	m.root = root
	m.err = ""
	m.status = "Vault root updated"
	m.rec.Event(context.Background(), activity.KindConfig, "Vault root changed", "root", root)
}

// View implements tea.Model.
func (m Model) View() string {
	banner := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.accent).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.accent).
		Padding(0, 2).
		Render("GemShot listener")

	dim := lipgloss.NewStyle().Faint(true)

	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString("Vault: " + m.root + "\n\n")

	if m.mode == modeSetRoot {
		b.WriteString("New vault root (enter to save, esc to cancel):\n")
		b.WriteString(m.input.View() + "\n")
	} else {
		b.WriteString(dim.Render("s: set vault root  d: dashboard  q: quit") + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.err != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Render(m.err) + "\n")
	}
	return b.String()
}

// Run starts the listener and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
