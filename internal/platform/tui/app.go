package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

type screenKind int

const (
	screenMenu screenKind = iota
	screenSaves
	screenRoom
)

// AppModel is the top-level model: room picker, saves screen and rooms.
// Local play and SSH sessions both run it.
type AppModel struct {
	opts      Options
	savesSlot string // slot filter for the saves screen; empty shows all
	kind      screenKind
	menu      MenuModel
	saves     SavesModel
	room      *Model
	err       error
	quitting  bool
}

// NewAppModel creates the app. With a non-empty startRoom it skips the
// picker and enters that room directly.
func NewAppModel(opts Options, startRoom, savesSlot string) (AppModel, error) {
	m := AppModel{
		opts:      opts,
		savesSlot: savesSlot,
		menu:      NewMenuModel(opts.Runtime.ScreenW, opts.Runtime.ScreenH),
	}
	if startRoom != "" {
		room, err := NewModel(startRoom, opts)
		if err != nil {
			return AppModel{}, err
		}
		m.room = &room
		m.kind = screenRoom
	}
	return m, nil
}

// Init starts the tick loop when a room is already running.
func (m AppModel) Init() tea.Cmd {
	if m.kind == screenRoom {
		return m.room.Init()
	}
	return nil
}

// Update routes messages to the active screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Runtime.ScreenW = wsm.Width
		m.opts.Runtime.ScreenH = wsm.Height
	}

	switch m.kind {
	case screenRoom:
		return m.updateRoom(msg)
	case screenSaves:
		return m.updateSaves(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsSaves():
		m.saves = NewSavesModel(m.opts.Store, m.savesSlot, m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
		m.kind = screenSaves
		return m, m.saves.Init()

	case m.menu.Selected() != nil:
		id := m.menu.Selected().ID
		room, err := NewModel(id, m.opts)
		if err != nil {
			m.err = fmt.Errorf("entering %s: %w", id, err)
			m.menu = NewMenuModel(m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
			return m, nil
		}
		m.err = nil
		m.room = &room
		m.kind = screenRoom
		return m, m.room.Init()
	}
	return m, cmd
}

func (m AppModel) updateSaves(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.saves.Update(msg)
	if saves, ok := next.(SavesModel); ok {
		m.saves = saves
	}

	switch {
	case m.saves.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.saves.IsGoingBack():
		m.menu = NewMenuModel(m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
		m.kind = screenMenu
		return m, nil
	}
	return m, cmd
}

func (m AppModel) updateRoom(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.room.Update(msg)
	if room, ok := next.(Model); ok {
		m.room = &room
	}

	switch {
	case m.room.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.room.BackToMenu():
		m.room = nil
		m.menu = NewMenuModel(m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
		m.kind = screenMenu
		return m, nil
	}
	return m, cmd
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.kind {
	case screenRoom:
		return m.room.View()
	case screenSaves:
		return m.saves.View()
	}
	view := m.menu.View()
	if m.err != nil {
		view += "\n" + centerText(errorStyle.Render(m.err.Error()), m.opts.Runtime.ScreenW)
	}
	return view
}

// Close saves the room that is running, if any.
func (m AppModel) Close() error {
	if m.room == nil {
		return nil
	}
	return m.room.Close()
}

// Run starts the app in the local terminal and saves the running room on
// exit.
func Run(opts Options, startRoom string) error {
	model, err := NewAppModel(opts, startRoom, "")
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, runErr := p.Run()

	var closeErr error
	if app, ok := final.(AppModel); ok {
		closeErr = app.Close()
	} else {
		closeErr = model.Close()
	}
	if runErr != nil {
		return runErr
	}
	return closeErr
}
