package rooms

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/world"
)

// DefaultCellSize is the cell size in pixels of rooms that do not set one.
const DefaultCellSize = 32

// yamlRoom is the on-disk shape of a room file.
type yamlRoom struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Cell     yamlCell       `yaml:"cell"`
	Legend   map[int]string `yaml:"legend,omitempty"`
	Layout   yamlLayout     `yaml:"layout"`
	Spawn    yamlSpawn      `yaml:"spawn"`
	Gates    []yamlGate     `yaml:"gates,omitempty"`
	Switches []yamlSwitch   `yaml:"switches,omitempty"`
	Exits    []yamlExit     `yaml:"exits,omitempty"`
	Actors   []yamlActor    `yaml:"actors,omitempty"`
	Fog      *yamlFog       `yaml:"fog,omitempty"`
}

type yamlCell struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type yamlSpawn struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Facing string  `yaml:"facing,omitempty"`
}

type yamlGate struct {
	ID       string   `yaml:"id"`
	At       yamlAt   `yaml:"at"`
	Open     bool     `yaml:"open,omitempty"`
	Requires []string `yaml:"requires,omitempty"`
	Forbids  []string `yaml:"forbids,omitempty"`
}

type yamlSwitch struct {
	ID string `yaml:"id"`
	At yamlAt `yaml:"at"`
	On bool   `yaml:"on,omitempty"`
}

type yamlExit struct {
	At yamlAt `yaml:"at"`
	To string `yaml:"to"`
}

type yamlActor struct {
	ID     string  `yaml:"id"`
	Sprite string  `yaml:"sprite,omitempty"`
	At     yamlAt  `yaml:"at"`
	Facing string  `yaml:"facing,omitempty"`
	Solid  bool    `yaml:"solid,omitempty"`
	Follow string  `yaml:"follow,omitempty"`
	Speed  float64 `yaml:"speed,omitempty"`
}

type yamlFog struct {
	Radius  float64 `yaml:"radius,omitempty"`
	Aspect  float64 `yaml:"aspect,omitempty"`
	Occlude bool    `yaml:"occlude,omitempty"`
}

// yamlAt is a cell written as a two element list: [x, y].
type yamlAt [2]int

func (a yamlAt) coord() core.Coord {
	return core.C(a[0], a[1])
}

// yamlLayout accepts rows written either as digit strings ("0110") or as
// integer lists ([0, 1, 1, 0]).
type yamlLayout [][]int

func (l *yamlLayout) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: layout must be a list of rows", node.Line)
	}
	rows := make([][]int, 0, len(node.Content))
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			row, err := parseDigits(item.Value)
			if err != nil {
				return fmt.Errorf("line %d: %w", item.Line, err)
			}
			rows = append(rows, row)
		case yaml.SequenceNode:
			var row []int
			if err := item.Decode(&row); err != nil {
				return fmt.Errorf("line %d: %w", item.Line, err)
			}
			rows = append(rows, row)
		default:
			return fmt.Errorf("line %d: layout row must be a string or a list", item.Line)
		}
	}
	*l = rows
	return nil
}

// parseDigits reads one digit per cell. Spaces are ignored.
func parseDigits(s string) ([]int, error) {
	row := make([]int, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		v, err := strconv.Atoi(string(r))
		if err != nil {
			return nil, fmt.Errorf("layout row %q: %q is not a digit", s, r)
		}
		row = append(row, v)
	}
	return row, nil
}

// Parse decodes a YAML room file. The result is not validated.
func Parse(data []byte) (*Definition, error) {
	var yr yamlRoom
	if err := yaml.Unmarshal(data, &yr); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	def := &Definition{
		ID:     yr.ID,
		Name:   yr.Name,
		CellW:  yr.Cell.W,
		CellH:  yr.Cell.H,
		Layout: yr.Layout,
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	if def.CellW == 0 {
		def.CellW = DefaultCellSize
	}
	if def.CellH == 0 {
		def.CellH = def.CellW
	}

	if yr.Legend != nil {
		def.Legend = make(world.Legend, len(yr.Legend))
		for v, name := range yr.Legend {
			tag, ok := world.ParseTag(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q for value %d", ErrUnknownTag, name, v)
			}
			def.Legend[v] = tag
		}
	}

	facing, err := parseFacing(yr.Spawn.Facing)
	if err != nil {
		return nil, fmt.Errorf("spawn: %w", err)
	}
	def.Spawn = Spawn{Pos: core.V(yr.Spawn.X, yr.Spawn.Y), Facing: facing}

	for _, g := range yr.Gates {
		def.Gates = append(def.Gates, Gate{
			ID:       g.ID,
			At:       g.At.coord(),
			Open:     g.Open,
			Requires: g.Requires,
			Forbids:  g.Forbids,
		})
	}
	for _, s := range yr.Switches {
		def.Switches = append(def.Switches, Switch{ID: s.ID, At: s.At.coord(), On: s.On})
	}
	for _, e := range yr.Exits {
		def.Exits = append(def.Exits, Exit{At: e.At.coord(), To: e.To})
	}
	for _, a := range yr.Actors {
		facing, err := parseFacing(a.Facing)
		if err != nil {
			return nil, fmt.Errorf("actor %q: %w", a.ID, err)
		}
		sprite := a.Sprite
		if sprite == "" {
			sprite = a.ID
		}
		def.Actors = append(def.Actors, ActorDef{
			ID:     a.ID,
			Sprite: sprite,
			At:     a.At.coord(),
			Facing: facing,
			Solid:  a.Solid,
			Follow: a.Follow,
			Speed:  a.Speed,
		})
	}
	if yr.Fog != nil {
		def.Fog = &FogDef{Radius: yr.Fog.Radius, Aspect: yr.Fog.Aspect, Occlude: yr.Fog.Occlude}
	}
	return def, nil
}

func parseFacing(s string) (world.Direction, error) {
	if strings.TrimSpace(s) == "" {
		return world.DirDown, nil
	}
	d, ok := world.ParseDirection(s)
	if !ok {
		return d, fmt.Errorf("unknown facing %q", s)
	}
	return d, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
