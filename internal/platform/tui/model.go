package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/latte-escape/internal/config"
	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/registry"
	"github.com/vovakirdan/latte-escape/internal/session"
	"github.com/vovakirdan/latte-escape/internal/storage"
)

// holdWindow is how many ticks a walking key stays held after its last key
// event. Terminals only report presses, so a held key shows up as one press,
// the auto-repeat delay, then a stream of repeats; half a second of ticks
// covers the delay at any tick rate.
func holdWindow(tickRate int) int {
	return core.Max(tickRate/2, 1)
}

// Options configures the room front end.
type Options struct {
	Runtime core.RuntimeConfig
	Motion  config.MotionConfig
	Store   *storage.Store // nil disables persistence
	Logger  *log.Logger
	Slot    string

	live *liveSession // shared by every room of one program
}

func (o Options) sessionOptions() []session.Option {
	opts := []session.Option{session.WithSlot(o.Slot)}
	if o.Logger != nil {
		opts = append(opts, session.WithLogger(o.Logger))
	}
	if o.Store != nil {
		opts = append(opts, session.WithStore(o.Store))
	}
	return opts
}

// liveSession tracks the session a model is running so a host can save it
// when the program ends without a clean quit, as when an SSH client drops.
type liveSession struct {
	mu   sync.Mutex
	sess *session.Session
}

func (l *liveSession) set(s *session.Session) {
	l.mu.Lock()
	l.sess = s
	l.mu.Unlock()
}

// Close saves and forgets the tracked session.
func (l *liveSession) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sess == nil {
		return nil
	}
	err := l.sess.Close()
	l.sess = nil
	return err
}

// Model is the Bubble Tea model for playing rooms. It walks through exits
// into the next room on its own.
type Model struct {
	opts   Options
	sess   *session.Session
	live   *liveSession
	screen *core.Screen
	keys   KeyMap
	help   help.Model
	held   map[core.Action]int
	hold   int
	once   core.InputFrame
	notice string
	shown  int // ticks the notice stays on screen
	err    error

	quitting bool
	back     bool
}

// NewModel enters the room with the given ID.
func NewModel(roomID string, opts Options) (Model, error) {
	if opts.Slot == "" {
		opts.Slot = session.DefaultSlot
	}
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime.TickRate = core.DefaultConfig().TickRate
	}

	live := opts.live
	if live == nil {
		live = &liveSession{}
	}

	m := Model{
		opts:   opts,
		live:   live,
		screen: core.NewScreen(opts.Runtime.ScreenW, screenRows(opts.Runtime.ScreenH)),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		held:   make(map[core.Action]int),
		hold:   holdWindow(opts.Runtime.TickRate),
		once:   core.NewInputFrame(),
	}
	if err := m.enter(roomID); err != nil {
		return Model{}, err
	}
	return m, nil
}

// screenRows leaves the last terminal row for the help line.
func screenRows(h int) int {
	return core.Max(h-1, 1)
}

// enter loads a room and starts a session in it. The caller closes the
// previous session first so its save does not shadow the new room's.
func (m *Model) enter(roomID string) error {
	def, err := registry.Create(roomID)
	if err != nil {
		return err
	}
	sess, err := session.New(def, m.opts.Motion, m.opts.sessionOptions()...)
	if err != nil {
		return err
	}
	m.sess = sess
	m.live.set(sess)
	clear(m.held)
	m.once.Clear()
	return nil
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Runtime.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	switch action := m.keys.Action(msg); action {
	case core.ActionQuit:
		m.quitting = true
		m.closeSession()
		return m, tea.Quit
	case core.ActionBack:
		m.back = true
		m.closeSession()
		return m, nil
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		m.release(action)
		m.held[action] = m.hold
	case core.ActionNone:
	default:
		m.once.Set(action)
	}
	return m, nil
}

// release drops the opposite direction so a turn takes effect at once.
func (m Model) release(action core.Action) {
	switch action {
	case core.ActionUp:
		delete(m.held, core.ActionDown)
	case core.ActionDown:
		delete(m.held, core.ActionUp)
	case core.ActionLeft:
		delete(m.held, core.ActionRight)
	case core.ActionRight:
		delete(m.held, core.ActionLeft)
	}
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.opts.Runtime.ScreenW = msg.Width
	m.opts.Runtime.ScreenH = msg.Height
	m.screen.Resize(msg.Width, screenRows(msg.Height))
	m.help.Width = msg.Width
	return m, nil
}

// handleTick builds this tick's input frame, steps the room and follows an
// exit if the player reached one.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting || m.back || m.err != nil {
		return m, nil
	}

	in := m.once.Clone()
	m.once.Clear()
	for action, left := range m.held {
		in.Set(action)
		if left <= 1 {
			delete(m.held, action)
		} else {
			m.held[action] = left - 1
		}
	}

	frame := m.sess.Step(in)
	m.setNotice(frame.Notice)
	if frame.Exit != nil {
		from := m.sess.Room().ID
		m.closeSession()
		if err := m.enter(frame.Exit.To); err != nil {
			m.err = fmt.Errorf("leaving %s: %w", from, err)
			if m.opts.Logger != nil {
				m.opts.Logger.Error("room transition failed", "from", from, "to", frame.Exit.To, "err", err)
			}
			return m, nil
		}
		m.setNotice("entered " + m.sess.Room().Name)
	}

	return m, tickCmd(m.opts.Runtime.TickRate)
}

// setNotice shows text for two seconds. An empty text lets the current
// notice run out.
func (m *Model) setNotice(text string) {
	if text != "" {
		m.notice = text
		m.shown = 2 * m.opts.Runtime.TickRate
		return
	}
	if m.shown > 0 {
		m.shown--
	}
	if m.shown == 0 {
		m.notice = ""
	}
}

func (m Model) closeSession() {
	if err := m.live.Close(); err != nil && m.opts.Logger != nil {
		m.opts.Logger.Error("closing room", "err", err)
	}
}

// saveScreenshot saves the current screen to ~/.latte/screenshots.
func (m *Model) saveScreenshot() {
	m.sess.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".latte", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.sess.Room().ID, timestamp))

	//nolint:errcheck // Best-effort save, the room keeps running regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
)

// View renders the room and a help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return errorStyle.Render(m.err.Error()) + "\n\n" + m.help.View(m.keys)
	}

	m.sess.Render(m.screen)
	footer := m.help.View(m.keys)
	if m.notice != "" {
		footer = noticeStyle.Render(m.notice) + "  " + footer
	}
	return RenderScreen(m.screen) + "\n" + footer
}

// Room returns the ID of the room being played.
func (m Model) Room() string {
	return m.sess.Room().ID
}

// Notice returns the last room notice, such as a switch flip.
func (m Model) Notice() string {
	return m.notice
}

// Err returns the error that stopped the model, if any.
func (m Model) Err() error {
	return m.err
}

// IsQuitting returns true if the user asked to quit.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user asked for the room picker.
func (m Model) BackToMenu() bool {
	return m.back
}

// Close saves the running room. It is safe to call after a quit.
func (m Model) Close() error {
	return m.live.Close()
}
