package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/AppIemon/umm-sub002/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 100 // Minimum width to show the attempts sidebar
	sidebarWidth       = 36
	maxLevels          = 100
	maxAttempts        = 20
)

// HistorySource reads stored levels and attempts.
type HistorySource interface {
	RecentLevels(ctx context.Context, limit int) ([]storage.LevelRecord, error)
	AttemptsForSong(ctx context.Context, songKey string, limit int) ([]storage.AttemptEntry, error)
}

// HistoryModel is the Bubble Tea model for browsing saved levels.
type HistoryModel struct {
	ctx         context.Context
	source      HistorySource
	levels      []storage.LevelRecord
	attempts    []storage.AttemptEntry
	err         error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewHistoryModel creates a history model and loads the newest levels.
func NewHistoryModel(ctx context.Context, source HistorySource, width, height int) HistoryModel {
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		ctx:         ctx,
		source:      source,
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.loadLevels()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Song", Width: 18},
		{Title: "Seed", Width: 10},
		{Title: "Diff", Width: 4},
		{Title: "Tries", Width: 5},
		{Title: "Saved", Width: 14},
	}

	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	// Give spare width to the song column
	used := 0
	for _, c := range columns {
		used += c.Width + 2
	}
	if extra := tableWidth - used; extra > 0 {
		columns[1].Width += min(extra, 20)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *HistoryModel) loadLevels() {
	if m.source == nil {
		m.levels = nil
		m.updateTableRows()
		return
	}
	m.levels, m.err = m.source.RecentLevels(m.ctx, maxLevels)
	m.updateTableRows()
	m.loadAttempts()
}

// loadAttempts loads the attempt log of the selected level's song.
func (m *HistoryModel) loadAttempts() {
	m.attempts = nil
	sel := m.selected()
	if sel == nil || m.source == nil {
		return
	}
	attempts, err := m.source.AttemptsForSong(m.ctx, sel.SongKey, maxAttempts)
	if err != nil {
		m.err = err
		return
	}
	m.attempts = attempts
}

func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.levels))
	for i, l := range m.levels {
		rows[i] = table.Row{
			shortID(l.ID),
			l.Title,
			fmt.Sprint(l.Seed),
			fmt.Sprint(l.Difficulty),
			fmt.Sprint(l.Attempts),
			humanize.Time(l.CreatedAt),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m HistoryModel) selected() *storage.LevelRecord {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.levels) {
		return nil
	}
	return &m.levels[i]
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Attempts):
			m.loadAttempts()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			m.loadAttempts()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(centerText("SAVED LEVELS", m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	tableRendered := boxStyle.Render(m.renderTableContent())
	if m.showSidebar {
		sidebar := boxStyle.Width(sidebarWidth).Render(m.renderAttempts())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tableRendered, "  ", sidebar))
	} else {
		b.WriteString(tableRendered)
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.err.Error()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m HistoryModel) renderTableContent() string {
	if len(m.levels) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No levels saved yet.\nRun generate --save to store one!")
	}
	return m.table.View()
}

// renderAttempts lists the attempt log of the selected song.
func (m HistoryModel) renderAttempts() string {
	var b strings.Builder
	b.WriteString("Attempts\n")
	b.WriteString(strings.Repeat("-", sidebarWidth-4))
	b.WriteString("\n")

	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	failed := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	for _, a := range m.attempts {
		if a.Success {
			b.WriteString(ok.Render(fmt.Sprintf("seed %d #%d ok", a.Seed, a.Offset+1)))
		} else {
			b.WriteString(failed.Render(fmt.Sprintf("seed %d #%d %.0f%% x=%.0f", a.Seed, a.Offset+1, a.Progress*100, a.FailureX)))
		}
		b.WriteString("\n")
	}
	if len(m.attempts) == 0 {
		b.WriteString("none recorded\n")
	}
	return b.String()
}

// IsQuitting returns true if the user closed the screen.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RunHistory runs the history screen.
func RunHistory(ctx context.Context, source HistorySource, width, height int) error {
	model := NewHistoryModel(ctx, source, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
