package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/latte-escape/internal/config"
	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/registry"
	"github.com/vovakirdan/latte-escape/internal/rooms"
	"github.com/vovakirdan/latte-escape/internal/storage"
)

// hall is a corridor with an exit two cells right of the spawn.
const hall = `
id: tui-hall
name: Hall
cell: {w: 32, h: 32}
layout:
  - "11111"
  - "10001"
  - "11111"
spawn: {x: 48, y: 48, facing: right}
exits:
  - {at: [3, 1], to: tui-yard}
`

const yard = `
id: tui-yard
name: Yard
cell: {w: 32, h: 32}
layout:
  - "11111"
  - "10001"
  - "10001"
  - "11111"
spawn: {x: 80, y: 48, facing: up}
`

func registerRooms(t *testing.T) {
	t.Helper()
	for _, src := range []string{hall, yard} {
		def, err := rooms.Parse([]byte(src))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if err := registry.Replace(def.ID, registry.Static(def)); err != nil {
			t.Fatalf("Replace() error = %v", err)
		}
	}
}

func testOptions() Options {
	return Options{
		Runtime: core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60},
		Motion:  config.DefaultMotionConfig(),
	}
}

func newTestModel(t *testing.T, room string, opts Options) Model {
	t.Helper()
	registerRooms(t)
	m, err := NewModel(room, opts)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return model, cmd
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, TickMsg(time.Now()))
	return m
}

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

func containsPlain(s, sub string) bool {
	return strings.Contains(ansi.ReplaceAllString(s, ""), sub)
}

func TestNewModelUnknownRoom(t *testing.T) {
	registerRooms(t)
	if _, err := NewModel("tui-nowhere", testOptions()); err == nil {
		t.Error("NewModel() expected an error for an unknown room")
	}
}

func TestHoldWindow(t *testing.T) {
	tests := []struct {
		rate, want int
	}{
		{60, 30},
		{30, 15},
		{10, 5},
		{1, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.rate), func(t *testing.T) {
			if got := holdWindow(tt.rate); got != tt.want {
				t.Errorf("holdWindow(%d) = %d, expected %d", tt.rate, got, tt.want)
			}
		})
	}
}

func TestHeldKeyDecays(t *testing.T) {
	opts := testOptions()
	opts.Runtime.TickRate = 10
	m := newTestModel(t, "tui-hall", opts)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	for range holdWindow(10) + 4 {
		m = tick(t, m)
	}

	body := m.sess.Last().Player
	want := float64(holdWindow(10)) * config.DefaultMotionConfig().Movement.Speed
	if math.Abs(body.Travel-want) > 1e-9 {
		t.Errorf("Travel = %v, expected %v after one press", body.Travel, want)
	}
	if body.Moving {
		t.Error("player still moving after the hold ran out")
	}
}

func TestTurnReleasesOppositeKey(t *testing.T) {
	m := newTestModel(t, "tui-hall", testOptions())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = tick(t, m)

	if got := m.sess.Last().Player.Pos.X; got >= 48 {
		t.Errorf("X = %v, expected the player to walk left", got)
	}
}

func TestModelFollowsExit(t *testing.T) {
	opts := testOptions()
	store, err := storage.Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()
	opts.Store = store

	m := newTestModel(t, "tui-hall", opts)
	for i := 0; i < 120 && m.Room() == "tui-hall"; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
		m = tick(t, m)
	}

	if m.Room() != "tui-yard" {
		t.Fatalf("Room() = %q, expected tui-yard", m.Room())
	}
	if m.Notice() != "entered Yard" {
		t.Errorf("Notice() = %q", m.Notice())
	}
	if got := m.sess.Last().Cell; got != core.C(2, 1) {
		t.Errorf("Cell = %v, expected the yard spawn", got)
	}

	rec, err := store.LoadMotion("default")
	if err != nil || rec == nil {
		t.Fatalf("LoadMotion() = %v, %v", rec, err)
	}
	if rec.RoomID != "tui-hall" {
		t.Errorf("saved room = %q, expected the room that was left", rec.RoomID)
	}

	m, cmd := update(t, m, runeKey("q"))
	if !m.IsQuitting() || cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
	if rec, _ := store.LoadMotion("default"); rec == nil || rec.RoomID != "tui-yard" {
		t.Errorf("after quit saved room = %+v, expected tui-yard", rec)
	}
}

func TestPauseAndBack(t *testing.T) {
	m := newTestModel(t, "tui-hall", testOptions())

	m, _ = update(t, m, runeKey("p"))
	m = tick(t, m)
	if m.Notice() != "paused" {
		t.Errorf("Notice() = %q, expected paused", m.Notice())
	}
	if !containsPlain(m.View(), "Paused") {
		t.Error("View() should show the pause overlay")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("esc should go back to the room picker")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close() after back = %v", err)
	}
}

func TestViewShowsRoomAndHelp(t *testing.T) {
	m := newTestModel(t, "tui-hall", testOptions())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 12})

	view := m.View()
	for _, want := range []string{"Hall", "@", "quit"} {
		if !containsPlain(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines != 12 {
		t.Errorf("View() has %d lines, expected 12", lines)
	}
}
