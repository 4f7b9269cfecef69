package rooms

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/latte-escape/internal/config"
	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/world"
)

const vault = `
id: vault
name: Vault
cell: {w: 16, h: 16}
legend: {0: floor, 1: wall, 3: gate}
layout:
  - "11111"
  - "10301"
  - [1, 0, 0, 0, 1]
  - "11111"
spawn: {x: 24, y: 24, facing: right}
gates:
  - {id: door, at: [2, 2], requires: [a], forbids: [b]}
switches:
  - {id: a, at: [1, 1]}
  - {id: b, at: [3, 1]}
exits:
  - {at: [3, 2], to: garden}
actors:
  - {id: cat, at: [3, 1], follow: latte}
fog: {radius: 2}
`

func mustParse(t *testing.T, src string) *Definition {
	t.Helper()
	def, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return def
}

func TestParse(t *testing.T) {
	def := mustParse(t, vault)

	if def.ID != "vault" || def.CellW != 16 || def.CellH != 16 {
		t.Errorf("header = %q %vx%v", def.ID, def.CellW, def.CellH)
	}
	wantLayout := [][]int{{1, 1, 1, 1, 1}, {1, 0, 3, 0, 1}, {1, 0, 0, 0, 1}, {1, 1, 1, 1, 1}}
	if !reflect.DeepEqual(def.Layout, wantLayout) {
		t.Errorf("Layout = %v, expected %v", def.Layout, wantLayout)
	}
	if def.Legend[3] != world.TagGated || def.Legend[0] != world.TagWalkable {
		t.Errorf("Legend = %v", def.Legend)
	}
	if def.Spawn.Pos != core.V(24, 24) || def.Spawn.Facing != world.DirRight {
		t.Errorf("Spawn = %+v", def.Spawn)
	}
	if len(def.Gates) != 1 || def.Gates[0].At != core.C(2, 2) || !def.Gates[0].Driven() {
		t.Errorf("Gates = %+v", def.Gates)
	}
	if def.Actors[0].Sprite != "cat" || def.Actors[0].Facing != world.DirDown {
		t.Errorf("Actors = %+v", def.Actors)
	}
	if def.Fog == nil || def.Fog.Radius != 2 {
		t.Errorf("Fog = %+v", def.Fog)
	}
	if err := def.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseDefaults(t *testing.T) {
	def := mustParse(t, "id: tiny\nlayout: [\"0\"]\nspawn: {x: 1, y: 1}\n")
	if def.Name != "tiny" || def.CellW != DefaultCellSize || def.CellH != DefaultCellSize {
		t.Errorf("defaults not applied: %+v", def)
	}
	if def.Legend != nil {
		t.Errorf("Legend = %v, expected nil for the default legend", def.Legend)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown tag", "id: x\nlegend: {0: lava}\nlayout: [\"0\"]\n", ErrUnknownTag},
		{"bad digit", "id: x\nlayout: [\"0a\"]\n", nil},
		{"layout not a list", "id: x\nlayout: \"00\"\n", nil},
		{"bad facing", "id: x\nlayout: [\"0\"]\nspawn: {facing: north}\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		msg    string
	}{
		{"missing id", func(d *Definition) { d.ID = "" }, "missing id"},
		{"ragged", func(d *Definition) { d.Layout[1] = []int{1, 0} }, "differ in length"},
		{"spawn in wall", func(d *Definition) { d.Spawn.Pos = core.V(4, 4) }, "spawn"},
		{"spawn outside", func(d *Definition) { d.Spawn.Pos = core.V(-1, 20) }, "outside"},
		{"spawn on closed gate", func(d *Definition) { d.Spawn.Pos = core.V(40, 40) }, "spawn (2,2) is on a blocked cell"},
		{"actor in wall", func(d *Definition) { d.Actors[0].At = core.C(0, 1) }, "blocked cell"},
		{"actor on closed gate", func(d *Definition) { d.Actors[0].At = core.C(2, 2) }, "blocked cell"},
		{"gate off gated cell", func(d *Definition) { d.Gates[0].At = core.C(1, 1) }, "walkable cell"},
		{"gate unknown switch", func(d *Definition) { d.Gates[0].Requires = []string{"z"} }, "unknown switch"},
		{"duplicate id", func(d *Definition) { d.Switches[1].ID = "a" }, "already used"},
		{"actor uses player id", func(d *Definition) { d.Actors[0].ID = PlayerID }, "already used"},
		{"exit outside", func(d *Definition) { d.Exits[0].At = core.C(9, 9) }, "outside"},
		{"exit without target", func(d *Definition) { d.Exits[0].To = "" }, "no target"},
		{"unknown follow", func(d *Definition) { d.Actors[0].Follow = "ghost" }, "unknown actor"},
		{"zero cell", func(d *Definition) { d.CellW = 0 }, "cell size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := mustParse(t, vault)
			tt.mutate(def)
			err := def.Validate()
			if !errors.Is(err, ErrInvalidRoom) {
				t.Fatalf("Validate() error = %v, expected ErrInvalidRoom", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("Validate() error = %q, expected it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("vault.yaml", vault)
	write("nested/cell.yml", "id: cell\nlayout: [\"000\"]\nspawn: {x: 16, y: 16}\n")
	write("broken.yaml", "id: broken\nlayout: [\"0\", \"00\"]\n")
	write("notes.txt", "not a room")

	l := NewLoader(dir)
	defs, skipped, err := l.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(defs) != 2 || defs[0].ID != "cell" || defs[1].ID != "vault" {
		t.Fatalf("LoadAll() = %d rooms, expected [cell vault]", len(defs))
	}
	if len(skipped) != 1 || !errors.Is(skipped[0], ErrInvalidRoom) {
		t.Errorf("skipped = %v, expected the broken room", skipped)
	}
	if defs[1].FilePath != filepath.Join(dir, "vault.yaml") {
		t.Errorf("FilePath = %q", defs[1].FilePath)
	}

	if _, err := l.LoadByID("vault"); err != nil {
		t.Errorf("LoadByID(vault) error = %v", err)
	}
	if _, err := l.LoadByID("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadByID(nope) error = %v, expected ErrNotFound", err)
	}
}

func TestPuzzle(t *testing.T) {
	def := mustParse(t, vault)
	p := NewPuzzle(def, map[string]bool{"b": true, "gone": true})

	if !p.IsOn("b") || p.IsOn("a") {
		t.Fatalf("Switches() = %v", p.Switches())
	}
	if _, ok := p.Switches()["gone"]; ok {
		t.Error("saved state for an undeclared switch was kept")
	}

	on, events := p.Flip("a")
	if !on || len(events) != 1 || events[0].Open {
		t.Errorf("Flip(a) = %v, %v, expected door still closed", on, events)
	}
	_, events = p.Flip("b")
	if !events[0].Open || !p.Solved() {
		t.Errorf("Flip(b) = %v, expected door open", events)
	}
	if on, events := p.Flip("missing"); on || events != nil {
		t.Errorf("Flip(missing) = %v, %v", on, events)
	}
}

func TestBuild(t *testing.T) {
	def := mustParse(t, vault)
	cfg := config.DefaultMotionConfig()

	built, err := Build(def, cfg, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	player := built.Player()
	if player == nil || player.Body.Pos != def.Spawn.Pos || player.Speed != cfg.Movement.Speed {
		t.Fatalf("player = %+v", player)
	}
	cat := built.Scene.Actor("cat")
	if cat.Body.Pos != core.V(56, 24) || cat.Speed != cfg.CompanionSpeed() {
		t.Errorf("cat = %+v", cat)
	}
	if !built.Scene.Map.Blocks(core.C(2, 2)) {
		t.Error("door should start closed")
	}
	if built.Fog.Radius != 2 || built.Fog.Aspect != cfg.Fog.Aspect {
		t.Errorf("Fog = %+v", built.Fog)
	}
}

func TestBuildRestoresSavedState(t *testing.T) {
	def := mustParse(t, vault)
	saved := &Saved{
		Gates:    map[core.Coord]bool{core.C(2, 2): true},
		Switches: map[string]bool{"a": true},
		Player:   &world.Body{Pos: core.V(40, 24), Facing: world.DirUp, Moving: true, Travel: 99},
	}

	built, err := Build(def, config.DefaultMotionConfig(), saved)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if built.Scene.Map.Blocks(core.C(2, 2)) {
		t.Error("saved gate state not applied")
	}
	if !built.Puzzle.IsOn("a") {
		t.Error("saved switch state not applied")
	}
	b := built.Player().Body
	if b.Pos != core.V(40, 24) || b.Travel != 99 || b.Moving {
		t.Errorf("player body = %+v", b)
	}
	if !built.Resumed {
		t.Error("Resumed = false")
	}
}

func TestValidateSpawnOnOpenGate(t *testing.T) {
	def := mustParse(t, vault)
	def.Spawn.Pos = core.V(40, 40)
	def.Switches[0].On = true
	if err := def.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestBuildRejectsBlockedStart(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"spawn on closed gate", func(d *Definition) { d.Spawn.Pos = core.V(40, 40) }},
		{"actor in wall", func(d *Definition) { d.Actors[0].At = core.C(4, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := mustParse(t, vault)
			tt.mutate(def)
			if _, err := Build(def, config.DefaultMotionConfig(), nil); !errors.Is(err, ErrInvalidRoom) {
				t.Errorf("Build() error = %v, expected ErrInvalidRoom", err)
			}
		})
	}
}

func TestBuildBlockedSaveFallsBackToSpawn(t *testing.T) {
	tests := []struct {
		name  string
		saved *Saved
	}{
		{"inside wall", &Saved{Player: &world.Body{Pos: core.V(8, 8), Facing: world.DirLeft}}},
		{"outside layout", &Saved{Player: &world.Body{Pos: core.V(-20, 24)}}},
		{"on closed gate", &Saved{Player: &world.Body{Pos: core.V(40, 40), Facing: world.DirUp}}},
		{"gate saved closed", &Saved{
			Switches: map[string]bool{"a": true},
			Gates:    map[core.Coord]bool{core.C(2, 2): false},
			Player:   &world.Body{Pos: core.V(40, 40)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := mustParse(t, vault)
			built, err := Build(def, config.DefaultMotionConfig(), tt.saved)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if built.Resumed {
				t.Error("Resumed = true for a blocked save")
			}
			b := built.Player().Body
			if b.Pos != def.Spawn.Pos || b.Facing != def.Spawn.Facing {
				t.Errorf("player body = %+v, expected spawn", b)
			}
			if built.Scene.Map.Blocks(b.Cell(built.Scene.Resolver)) {
				t.Error("player starts in a blocked cell")
			}
		})
	}
}

func TestClone(t *testing.T) {
	def := mustParse(t, vault)
	c := def.Clone()
	c.Layout[0][0] = 7
	c.Gates[0].Requires[0] = "x"
	c.Fog.Radius = 9

	if def.Layout[0][0] != 1 || def.Gates[0].Requires[0] != "a" || def.Fog.Radius != 2 {
		t.Error("Clone() shares state with the original")
	}
}
