package session

import (
	"fmt"

	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/rooms"
	"github.com/vovakirdan/latte-escape/internal/world"
)

// CellCols is the number of screen columns per grid cell. Terminal cells
// are about twice as tall as wide, so two columns keep rooms square.
const CellCols = 2

// hudRows is the number of screen rows above the room.
const hudRows = 2

// glyph is how one grid cell is drawn.
type glyph struct {
	text  string
	color core.Color
}

var (
	glyphFloor   = glyph{". ", core.ColorGray}
	glyphWall    = glyph{"██", core.ColorWhite}
	glyphSpecial = glyph{"::", core.ColorCyan}
	glyphClosed  = glyph{"▒▒", core.ColorYellow}
	glyphOpen    = glyph{"░░", core.ColorYellow}
	glyphSwOff   = glyph{"\\_", core.ColorMagenta}
	glyphSwOn    = glyph{"/‾", core.ColorGreen}
	glyphExit    = glyph{"<>", core.ColorBlue}
	glyphFog     = glyph{"██", core.ColorDark}
)

// Render draws the room, its actors, the fog and a one-line HUD. Fogged
// cells are painted solid so nothing drawn earlier shows through.
func (s *Session) Render(dst *core.Screen) {
	dst.Clear()
	s.renderHUD(dst)

	scene := s.built.Scene
	grid := scene.Map.Grid
	w, h := grid.Width(), grid.Height()
	if w*CellCols > dst.Width() || h+hudRows > dst.Height() {
		dst.DrawTextCentered(dst.Height()/2, "Window too small")
		return
	}

	ox := (dst.Width() - w*CellCols) / 2
	oy := hudRows + (dst.Height()-hudRows-h)/2
	toScreen := func(c core.Coord) (int, int) {
		// Row 0 is the bottom of the room and the last screen row.
		return ox + c.X*CellCols, oy + (h - 1 - c.Y)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := core.C(x, y)
			sx, sy := toScreen(c)
			dst.DrawTextColored(sx, sy, s.cellGlyph(c).text, s.cellGlyph(c).color)
		}
	}

	for _, a := range scene.Actors() {
		c := scene.Resolver.CellOf(a.Body.Pos)
		if !grid.InBounds(c) || s.fogged(c) {
			continue
		}
		sx, sy := toScreen(c)
		g := actorGlyph(a)
		dst.DrawTextColored(sx, sy, g.text, g.color)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := core.C(x, y)
			if s.fogged(c) {
				sx, sy := toScreen(c)
				dst.DrawTextColored(sx, sy, glyphFog.text, glyphFog.color)
			}
		}
	}

	if s.paused {
		drawPausePanel(dst, oy+h/2)
	}
}

// drawPausePanel draws a boxed notice centred on row midY.
func drawPausePanel(dst *core.Screen, midY int) {
	const text = " Paused - press P to continue "
	w := core.Min(len(text)+2, dst.Width())
	y := core.Clamp(midY-1, hudRows, core.Max(hudRows, dst.Height()-3))
	r := core.NewRect((dst.Width()-w)/2, y, w, 3)
	dst.DrawRect(r, ' ', core.ColorDefault)
	dst.DrawBox(r, core.ColorYellow)
	dst.DrawTextCentered(r.Y+1, text)
}

func (s *Session) renderHUD(dst *core.Screen) {
	f := s.last
	hud := fmt.Sprintf(" %s  cell %v  %s", s.def.Name, f.Cell, f.Sprite)
	if f.Notice != "" {
		hud += "  | " + f.Notice
	}
	dst.DrawText(0, 0, hud)
	for x := range dst.Width() {
		dst.SetColored(x, 1, '─', core.ColorGray)
	}
}

func (s *Session) fogged(c core.Coord) bool {
	mask := s.last.Mask
	return mask != nil && mask[c.Y][c.X] == 0
}

func (s *Session) cellGlyph(c core.Coord) glyph {
	if sw, ok := s.def.SwitchAt(c); ok {
		if s.built.Puzzle.IsOn(sw.ID) {
			return glyphSwOn
		}
		return glyphSwOff
	}

	state := s.built.Scene.Map.Cell(c.X, c.Y)
	if _, ok := s.def.ExitAt(c); ok && !state.Blocks() {
		return glyphExit
	}
	switch state.Tag {
	case world.TagBlocking:
		return glyphWall
	case world.TagSpecial:
		return glyphSpecial
	case world.TagGated:
		if state.Open {
			return glyphOpen
		}
		return glyphClosed
	default:
		return glyphFloor
	}
}

var facingArrows = map[world.Direction]string{
	world.DirUp:    "^",
	world.DirDown:  "v",
	world.DirLeft:  "<",
	world.DirRight: ">",
}

func actorGlyph(a *world.Actor) glyph {
	arrow := facingArrows[a.Body.Facing]
	if a.ID == rooms.PlayerID {
		head := "@"
		// Second walking frame.
		if a.Body.Moving && a.Anim.Phase(a.Body.Travel) == 1 {
			head = "a"
		}
		return glyph{head + arrow, core.ColorOrange}
	}

	name := a.Anim.Name
	if name == "" {
		name = a.ID
	}
	color := core.ColorYellow
	if a.Solid {
		color = core.ColorRed
	}
	return glyph{string([]rune(name)[0]) + arrow, color}
}
