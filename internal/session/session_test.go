package session

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/latte-escape/internal/config"
	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/rooms"
	"github.com/vovakirdan/latte-escape/internal/storage"
	"github.com/vovakirdan/latte-escape/internal/world"
)

// testRoom is a 5x4 room: a gate at (2,2) driven by switch "a" at (1,1),
// an exit at (3,2) and the spawn on the switch.
func testRoom() *rooms.Definition {
	return &rooms.Definition{
		ID:    "test",
		Name:  "Test",
		CellW: 32,
		CellH: 32,
		Layout: [][]int{
			{1, 1, 1, 1, 1},
			{1, 0, 3, 0, 1},
			{1, 0, 0, 0, 1},
			{1, 1, 1, 1, 1},
		},
		Spawn:    rooms.Spawn{Pos: core.V(48, 48), Facing: world.DirUp},
		Gates:    []rooms.Gate{{ID: "door", At: core.C(2, 2), Requires: []string{"a"}}},
		Switches: []rooms.Switch{{ID: "a", At: core.C(1, 1)}},
		Exits:    []rooms.Exit{{At: core.C(3, 2), To: "next"}},
	}
}

func frame(actions ...core.Action) core.InputFrame {
	f := core.NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	return f
}

func newSession(t *testing.T, def *rooms.Definition, opts ...Option) *Session {
	t.Helper()
	s, err := New(def, config.DefaultMotionConfig(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestStepMovesPlayer(t *testing.T) {
	s := newSession(t, testRoom())

	f := s.Step(frame(core.ActionRight))
	if f.Tick != 1 || !f.Moved {
		t.Fatalf("Step() = %+v, expected a move on tick 1", f)
	}
	if f.Player.Pos.X <= 48 || f.Player.Facing != world.DirRight {
		t.Errorf("Player = %+v, expected moved right", f.Player)
	}
	if f.Sprite != "latte_right_walking1" {
		t.Errorf("Sprite = %q, expected latte_right_walking1", f.Sprite)
	}

	f = s.Step(frame())
	if f.Moved || f.Sprite != "latte_right_standing" {
		t.Errorf("idle Step() = %+v, expected standing", f)
	}
}

func TestInteractOpensGateSameTick(t *testing.T) {
	s := newSession(t, testRoom())
	door := core.C(2, 2)

	if !s.Scene().Map.Blocks(door) {
		t.Fatal("door should start closed")
	}
	f := s.Step(frame(core.ActionInteract))
	if s.Scene().Map.Blocks(door) {
		t.Error("door still closed after flipping its switch")
	}
	if !strings.HasPrefix(f.Notice, "a on") {
		t.Errorf("Notice = %q, expected switch notice", f.Notice)
	}

	s.Step(frame(core.ActionInteract))
	if !s.Scene().Map.Blocks(door) {
		t.Error("door open after switching back off")
	}
}

func TestInteractOffSwitchDoesNothing(t *testing.T) {
	s := newSession(t, testRoom())
	s.Scene().Actor(rooms.PlayerID).Body.Pos = core.V(80, 48)

	f := s.Step(frame(core.ActionInteract))
	if f.Notice != "" || !s.Scene().Map.Blocks(core.C(2, 2)) {
		t.Errorf("Step() = %+v, expected no switch flipped", f)
	}
}

func TestExitReportedOnEntry(t *testing.T) {
	s := newSession(t, testRoom())
	s.Scene().Actor(rooms.PlayerID).Body.Pos = core.V(112, 48)

	var exit *rooms.Exit
	for i := 0; i < 30 && exit == nil; i++ {
		exit = s.Step(frame(core.ActionUp)).Exit
	}
	if exit == nil || exit.To != "next" || exit.At != core.C(3, 2) {
		t.Fatalf("Exit = %+v, expected exit to next", exit)
	}

	// Standing on the exit does not report it again.
	if f := s.Step(frame()); f.Exit != nil {
		t.Errorf("Exit reported again while standing: %+v", f.Exit)
	}
}

func TestPauseFreezes(t *testing.T) {
	s := newSession(t, testRoom())

	s.Step(frame(core.ActionPause))
	before := s.Snapshot()
	f := s.Step(frame(core.ActionRight))
	if !f.Paused || s.Snapshot().Player != before.Player || s.Snapshot().Tick != before.Tick {
		t.Errorf("paused Step() moved the room: %+v", f)
	}

	s.Step(frame(core.ActionPause, core.ActionRight))
	if s.Snapshot().Player.Pos == before.Player.Pos {
		t.Error("unpaused Step() did not move")
	}
}

func TestDeterminism(t *testing.T) {
	s1 := newSession(t, testRoom())
	s2 := newSession(t, testRoom())

	script := []core.InputFrame{
		frame(core.ActionRight),
		frame(core.ActionInteract),
		frame(core.ActionRight, core.ActionUp),
		frame(core.ActionLeft, core.ActionRight),
		frame(core.ActionUp),
	}
	for i := 0; i < 60; i++ {
		in := script[i%len(script)]
		s1.Step(in)
		s2.Step(in)
	}
	if !reflect.DeepEqual(s1.Snapshot(), s2.Snapshot()) {
		t.Errorf("snapshots differ:\n%+v\n%+v", s1.Snapshot(), s2.Snapshot())
	}
}

func TestFogMask(t *testing.T) {
	def := testRoom()
	def.Fog = &rooms.FogDef{Radius: 1}
	s := newSession(t, def)

	f := s.Step(frame())
	if f.Mask == nil {
		t.Fatal("Mask = nil for a fogged room")
	}
	if f.Mask[1][1] != 1 || f.Mask[2][3] != 0 {
		t.Errorf("Mask = %v", f.Mask)
	}

	plain := newSession(t, testRoom())
	if plain.Step(frame()).Mask != nil {
		t.Error("Mask set for a room without fog")
	}
}

func TestRender(t *testing.T) {
	def := testRoom()
	def.Fog = &rooms.FogDef{Radius: 1}
	s := newSession(t, def)
	s.Step(frame())

	screen := core.NewScreen(40, 10)
	s.Render(screen)

	// Grid is 10x4 columns, centred: x offset 15, y offset 4. Row 0 of the
	// room is the last screen row of the grid.
	if got := screen.Get(17, 6); got != '@' {
		t.Errorf("player glyph = %q, expected '@'\n%s", got, screen.String())
	}
	if got := screen.Get(15, 7); got != '█' {
		t.Errorf("wall glyph = %q, expected '█'", got)
	}
	fog := screen.GetCell(21, 5)
	if fog.Rune != '█' || fog.Color != core.ColorDark {
		t.Errorf("fogged exit cell = %+v, expected solid dark", fog)
	}
	if !strings.Contains(screen.Row(0), "Test") {
		t.Errorf("HUD = %q, expected room name", screen.Row(0))
	}
}

func TestRenderTooSmall(t *testing.T) {
	s := newSession(t, testRoom())
	screen := core.NewScreen(6, 4)
	s.Render(screen)
	if !strings.Contains(screen.String(), "too") {
		t.Errorf("expected too-small notice, got\n%s", screen.String())
	}
}

func TestCloseAndResume(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	s := newSession(t, testRoom(), WithStore(store), WithSlot("one"))
	s.Step(frame(core.ActionInteract))
	for i := 0; i < 5; i++ {
		s.Step(frame(core.ActionRight))
	}
	want := s.Snapshot().Player
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	resumed := newSession(t, testRoom(), WithStore(store), WithSlot("one"))
	got := resumed.Snapshot()
	if got.Player.Pos != want.Pos || got.Player.Travel != want.Travel || got.Player.Facing != want.Facing {
		t.Errorf("resumed player = %+v, expected %+v", got.Player, want)
	}
	if !got.Switches["a"] || resumed.Scene().Map.Blocks(core.C(2, 2)) {
		t.Error("switch and gate state not restored")
	}

	fresh := newSession(t, testRoom(), WithStore(store), WithSlot("two"))
	if fresh.Snapshot().Player.Pos != testRoom().Spawn.Pos {
		t.Error("another slot resumed the save")
	}
}

func TestResumeIgnoresOtherRoom(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.SaveMotion(storage.MotionRecord{Slot: DefaultSlot, RoomID: "elsewhere", X: 80, Y: 48, Facing: "left"}); err != nil {
		t.Fatal(err)
	}
	s := newSession(t, testRoom(), WithStore(store))
	if s.Snapshot().Player.Pos != testRoom().Spawn.Pos {
		t.Errorf("player = %v, expected spawn", s.Snapshot().Player.Pos)
	}
}

func TestEnterLogsMisconfiguration(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	// The saved position is inside the bottom-left wall.
	if err := store.SaveMotion(storage.MotionRecord{Slot: DefaultSlot, RoomID: "test", X: 16, Y: 16, Facing: "left", Travel: 12}); err != nil {
		t.Fatal(err)
	}
	def := testRoom()
	def.Layout[0][4] = 7

	var buf bytes.Buffer
	s := newSession(t, def, WithStore(store), WithLogger(log.New(&buf)))
	if got := s.Snapshot().Player.Pos; got != def.Spawn.Pos {
		t.Errorf("player = %v, expected spawn %v", got, def.Spawn.Pos)
	}
	if !s.Scene().Map.Blocks(core.C(4, 3)) {
		t.Error("unknown layout value should block")
	}
	out := buf.String()
	for _, want := range []string{"unknown layout values block", "values=", "saved position is blocked"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}
}

func TestRenderPausePanel(t *testing.T) {
	s := newSession(t, testRoom())
	s.Step(frame(core.ActionPause))

	screen := core.NewScreen(40, 10)
	s.Render(screen)

	out := screen.String()
	if !strings.Contains(out, "Paused") || !strings.Contains(out, "┌") {
		t.Errorf("expected a boxed pause notice, got\n%s", out)
	}
	if got := screen.GetCell(0, 1); got.Rune != '─' || got.Color != core.ColorGray {
		t.Errorf("HUD separator = %+v", got)
	}
}
