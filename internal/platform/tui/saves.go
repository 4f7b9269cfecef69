package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/storage"
)

// SavesKeyMap defines the key bindings for the saves screen.
type SavesKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SavesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Delete, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k SavesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Delete},
		{k.Back, k.Quit},
	}
}

// DefaultSavesKeyMap returns default key bindings.
func DefaultSavesKeyMap() SavesKeyMap {
	return SavesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete slot"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b", "tab"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// SavesModel lists save slots in a table.
type SavesModel struct {
	store     *storage.Store
	slot      string // when set, only this slot is shown
	saves     []storage.MotionRecord
	table     table.Model
	help      help.Model
	keys      SavesKeyMap
	width     int
	height    int
	err       error
	quitting  bool
	goingBack bool
}

// NewSavesModel creates a saves screen. A non-empty slot restricts the list
// to that slot.
func NewSavesModel(store *storage.Store, slot string, width, height int) SavesModel {
	m := SavesModel{
		store:  store,
		slot:   slot,
		keys:   DefaultSavesKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.loadSaves()
	return m
}

func (m *SavesModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Slot", Width: 14},
		{Title: "Room", Width: 10},
		{Title: "Position", Width: 16},
		{Title: "Facing", Width: 7},
		{Title: "Travel", Width: 9},
		{Title: "Saved", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(core.Max(m.height-8, 3)), // title, borders and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("94")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *SavesModel) loadSaves() {
	m.saves = nil
	if m.store == nil {
		m.updateTableRows()
		return
	}

	all, err := m.store.ListSaves()
	m.err = err
	for _, rec := range all {
		if m.slot == "" || rec.Slot == m.slot {
			m.saves = append(m.saves, rec)
		}
	}
	m.updateTableRows()
}

func (m *SavesModel) updateTableRows() {
	rows := make([]table.Row, len(m.saves))
	for i, s := range m.saves {
		rows[i] = table.Row{
			s.Slot,
			s.RoomID,
			fmt.Sprintf("%.1f, %.1f", s.X, s.Y),
			s.Facing,
			fmt.Sprintf("%.1f", s.Travel),
			s.UpdatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the saves model.
func (m SavesModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the saves screen.
func (m SavesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if m.store != nil && len(m.saves) > 0 {
				slot := m.saves[m.table.Cursor()].Slot
				if err := m.store.ClearSaves(slot); err != nil {
					m.err = err
				} else {
					m.loadSaves()
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the saves screen.
func (m SavesModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Render("SAVED GAMES")
	b.WriteString(centerText(title, m.width))
	b.WriteString("\n\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case len(m.saves) == 0:
		empty := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render("No saves yet.\nLeave a room to save your progress.")
		b.WriteString(centerText(box.Render(empty), m.width))
	default:
		b.WriteString(centerText(box.Render(m.table.View()), m.width))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// IsGoingBack returns true if user wants to go back to the room picker.
func (m SavesModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m SavesModel) IsQuitting() bool {
	return m.quitting
}
