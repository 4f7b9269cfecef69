package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/registry"
	"github.com/vovakirdan/latte-escape/internal/rooms"
	"github.com/vovakirdan/latte-escape/internal/world"
)

var flagAt string

var inspectCmd = &cobra.Command{
	Use:   "inspect <room>",
	Short: "Print a room's classified grid",
	Long: `Print the grid of a room as the engine classifies it, with its gates,
switches, exits and actors. With --at, the fog mask seen from the centre
of that cell is laid over the grid.

Cells are given as x,y with 0,0 at the bottom-left corner.

Examples:
  latte inspect garden
  latte inspect maze --at 8,1`,
	Args: cobra.ExactArgs(1),
	Run:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&flagAt, "at", "", "Preview the fog from cell x,y")
}

var (
	inspectTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	inspectHead  = lipgloss.NewStyle().Bold(true)
	inspectDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	tileStyles = map[world.Tag]lipgloss.Style{
		world.TagWalkable: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		world.TagBlocking: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		world.TagGated:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		world.TagSpecial:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
	switchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	exitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	spawnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	fogStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
)

func runInspect(cmd *cobra.Command, args []string) {
	def, err := registry.Create(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'latte rooms' to see available rooms.")
		os.Exit(1)
	}

	built, err := rooms.Build(def, motionCfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building room: %v\n", err)
		os.Exit(1)
	}

	var mask [][]float64
	if flagAt != "" {
		var at core.Coord
		if _, err := fmt.Sscanf(flagAt, "%d,%d", &at.X, &at.Y); err != nil {
			fmt.Fprintf(os.Stderr, "Error: --at wants x,y, got %q\n", flagAt)
			os.Exit(1)
		}
		if !built.Scene.Map.Grid.InBounds(at) {
			fmt.Fprintf(os.Stderr, "Error: cell %v is outside the room\n", at)
			os.Exit(1)
		}
		fog := world.Fog{Radius: motionCfg.Fog.Radius, Aspect: motionCfg.Fog.Aspect}
		if built.Fog != nil {
			fog = *built.Fog
		}
		mask = fog.Mask(built.Scene.Map, core.V(float64(at.X)+0.5, float64(at.Y)+0.5))
	}

	fmt.Print(describeRoom(built, mask))
}

// describeRoom renders the room summary and grid. mask may be nil.
func describeRoom(b *rooms.Built, mask [][]float64) string {
	def := b.Def
	m := b.Scene.Map
	w, h := m.Grid.Width(), m.Grid.Height()
	spawn := b.Scene.Resolver.CellOf(def.Spawn.Pos)

	var sb strings.Builder
	sb.WriteString(inspectTitle.Render(fmt.Sprintf("%s (%s)", def.Name, def.ID)))
	sb.WriteString("\n")
	sb.WriteString(inspectDim.Render(fmt.Sprintf("%dx%d cells of %gx%g px, spawn %v facing %s",
		w, h, def.CellW, def.CellH, spawn, def.Spawn.Facing)))
	sb.WriteString("\n\n")

	for y := h - 1; y >= 0; y-- {
		sb.WriteString(inspectDim.Render(fmt.Sprintf("%3d ", y)))
		for x := 0; x < w; x++ {
			c := core.C(x, y)
			if mask != nil && mask[y][x] == 0 {
				sb.WriteString(fogStyle.Render("░░"))
				continue
			}
			sb.WriteString(tileText(def, m, c, spawn))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("    ")
	for x := 0; x < w; x++ {
		sb.WriteString(inspectDim.Render(fmt.Sprintf("%-2d", x%100)))
	}
	sb.WriteString("\n")

	if unknown := m.Grid.Unknown(); len(unknown) > 0 {
		sb.WriteString(fmt.Sprintf("\nunknown layout values (treated as blocking): %v\n", unknown))
	}

	if len(def.Gates) > 0 {
		sb.WriteString("\n" + inspectHead.Render("Gates") + "\n")
		for _, g := range def.Gates {
			state := "closed"
			if m.Gates.IsOpen(g.At.X, g.At.Y) {
				state = "open"
			}
			line := fmt.Sprintf("  %-16s %-8v %s", g.ID, g.At, state)
			if len(g.Requires) > 0 {
				line += "  requires " + strings.Join(g.Requires, ",")
			}
			if len(g.Forbids) > 0 {
				line += "  forbids " + strings.Join(g.Forbids, ",")
			}
			sb.WriteString(line + "\n")
		}
	}
	if len(def.Switches) > 0 {
		sb.WriteString("\n" + inspectHead.Render("Switches") + "\n")
		for _, s := range def.Switches {
			state := "off"
			if b.Puzzle.IsOn(s.ID) {
				state = "on"
			}
			sb.WriteString(fmt.Sprintf("  %-16s %-8v %s\n", s.ID, s.At, state))
		}
	}
	if len(def.Exits) > 0 {
		sb.WriteString("\n" + inspectHead.Render("Exits") + "\n")
		for _, e := range def.Exits {
			sb.WriteString(fmt.Sprintf("  %-8v -> %s\n", e.At, e.To))
		}
	}
	if len(def.Actors) > 0 {
		sb.WriteString("\n" + inspectHead.Render("Actors") + "\n")
		for _, a := range def.Actors {
			line := fmt.Sprintf("  %-16s %-8v", a.ID, a.At)
			if a.Solid {
				line += " solid"
			}
			if a.Follow != "" {
				line += " follows " + a.Follow
			}
			sb.WriteString(line + "\n")
		}
	}
	return sb.String()
}

func tileText(def *rooms.Definition, m *world.Map, c, spawn core.Coord) string {
	if c == spawn {
		return spawnStyle.Render("@ ")
	}
	if _, ok := def.SwitchAt(c); ok {
		return switchStyle.Render("\\_")
	}
	state := m.Cell(c.X, c.Y)
	if _, ok := def.ExitAt(c); ok && !state.Blocks() {
		return exitStyle.Render("<>")
	}

	style := tileStyles[state.Tag]
	switch state.Tag {
	case world.TagBlocking:
		return style.Render("██")
	case world.TagSpecial:
		return style.Render("::")
	case world.TagGated:
		if state.Open {
			return style.Render("░░")
		}
		return style.Render("▒▒")
	default:
		return style.Render(". ")
	}
}
