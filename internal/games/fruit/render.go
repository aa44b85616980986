package fruit

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/vovakirdan/merge-fruit/internal/core"
	"github.com/vovakirdan/merge-fruit/internal/physics"
)

const (
	hudRows   = 1 // Score line above the container
	minCols   = 24
	minRows   = 10
	popGlyph  = '*'
	guideRune = '·'
)

// view maps the visible part of the world (walls and container, full
// height) onto screen cells. Terminal cells are about twice as tall as
// they are wide, so a row covers twice the world units of a column.
type view struct {
	valid       bool
	originX     int // Screen column of the view's left edge
	originY     int // Screen row of the view's top edge
	cols, rows  int
	left        float64 // World x at the view's left edge
	unitsPerCol float64
	unitsPerRow float64
}

func computeView(f field, screenW, screenH int) view {
	rows := screenH - hudRows
	if screenW < minCols || screenH < minRows || rows <= 0 {
		return view{}
	}

	left := f.left - f.wall
	worldW := f.right + f.wall - left
	unitsPerRow := math.Max(f.height/float64(rows), 2*worldW/float64(screenW))
	unitsPerCol := unitsPerRow / 2

	cols := int(math.Ceil(worldW / unitsPerCol))
	used := int(math.Ceil(f.height / unitsPerRow))
	cols = min(cols, screenW)
	used = min(used, rows)

	return view{
		valid:       true,
		originX:     (screenW - cols) / 2,
		originY:     hudRows,
		cols:        cols,
		rows:        used,
		left:        left,
		unitsPerCol: unitsPerCol,
		unitsPerRow: unitsPerRow,
	}
}

// worldX returns the world x at the center of a screen column.
func (v view) worldX(col int) float64 {
	return v.left + (float64(col-v.originX)+0.5)*v.unitsPerCol
}

// worldY returns the world y at the center of a screen row.
func (v view) worldY(row int) float64 {
	return (float64(row-v.originY) + 0.5) * v.unitsPerRow
}

// cell returns the screen cell containing a world point.
func (v view) cell(p core.Vec2) (int, int) {
	x := v.originX + int(math.Floor((p.X-v.left)/v.unitsPerCol))
	y := v.originY + int(math.Floor(p.Y/v.unitsPerRow))
	return x, y
}

func (v view) inside(x, y int) bool {
	return x >= v.originX && x < v.originX+v.cols && y >= v.originY && y < v.originY+v.rows
}

// Render draws the game into the screen buffer.
func (g *Game) Render(dst *core.Screen) {
	g.view = computeView(g.field, dst.Width(), dst.Height())
	if !g.view.valid {
		dst.DrawTextCentered(dst.Height()/2, "Terminal too small")
		return
	}

	g.drawWorld(dst)
	g.drawHUD(dst)

	switch {
	case g.prompt:
		g.drawPanel(dst, []string{
			"Save game?",
			"",
			"[Y] Save and exit",
			"[N] Exit without saving",
			"[Esc] Keep playing",
		})
	case g.phase == PhaseMenu:
		start := "[Enter] Start"
		if g.saved {
			start = "[Enter] Continue"
		}
		g.drawPanel(dst, []string{
			g.variant.Title,
			"",
			fmt.Sprintf("Best: %d", g.best),
			"",
			start,
			"[Esc] Quit",
		})
	case g.phase == PhaseLose:
		lines := []string{"GAME OVER", "", fmt.Sprintf("Score: %d", g.tracker.Score())}
		if g.newBest {
			lines = append(lines, "New best!")
		}
		lines = append(lines, "", "[R] Restart  [Esc] Menu")
		g.drawPanel(dst, lines)
	case g.hint:
		g.drawHint(dst)
	}
}

// drawWorld draws every visible body clipped to the view.
func (g *Game) drawWorld(dst *core.Screen) {
	wallGlyph := firstRune(g.cfg.Container.WallGlyph, '█')
	wallColor := colorOf(g.cfg.Container.WallColor)

	bodies := g.world.Bodies()

	// Walls first, then the drop guide, fruits and finally merge flashes.
	for _, b := range bodies {
		if info := g.bodies[b.Handle]; info != nil && info.role == roleWall {
			g.fillBox(dst, b, wallGlyph, wallColor)
		}
	}
	if g.phase == PhaseReady && g.preview != 0 && !g.prompt {
		g.drawGuide(dst)
	}
	for _, b := range bodies {
		info := g.bodies[b.Handle]
		if info == nil || (info.role != roleFruit && info.role != rolePreview) {
			continue
		}
		t := g.cfg.Tiers[info.tier]
		g.fillCircle(dst, b.Position, t.Radius, firstRune(t.Glyph, 'o'), colorOf(t.Color))
	}
	for _, b := range bodies {
		if info := g.bodies[b.Handle]; info != nil && info.role == rolePop {
			g.ringCircle(dst, b.Position, b.Spec.Radius, popGlyph, core.ColorBrightWhite)
		}
	}
}

// drawGuide draws a dotted line from the preview ball to the floor.
func (g *Game) drawGuide(dst *core.Screen) {
	v := g.view
	x, top := v.cell(core.V(g.previewX, g.field.preview))
	_, bottom := v.cell(core.V(g.previewX, g.field.floorTop))
	for y := top + 1; y < bottom; y++ {
		if v.inside(x, y) && dst.Get(x, y) == ' ' {
			dst.SetColor(x, y, guideRune, core.ColorGray)
		}
	}
}

// fillCircle paints every cell whose center lies inside the circle. Circles
// smaller than a cell still paint the cell holding their center.
func (g *Game) fillCircle(dst *core.Screen, c core.Vec2, r float64, glyph rune, color core.Color) {
	v := g.view
	x0, y0 := v.cell(core.V(c.X-r, c.Y-r))
	x1, y1 := v.cell(core.V(c.X+r, c.Y+r))
	drawn := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !v.inside(x, y) {
				continue
			}
			dx, dy := v.worldX(x)-c.X, v.worldY(y)-c.Y
			if dx*dx+dy*dy <= r*r {
				dst.SetColor(x, y, glyph, color)
				drawn = true
			}
		}
	}
	if !drawn {
		if x, y := v.cell(c); v.inside(x, y) {
			dst.SetColor(x, y, glyph, color)
		}
	}
}

// ringCircle paints the outline of a circle about one column thick.
func (g *Game) ringCircle(dst *core.Screen, c core.Vec2, r float64, glyph rune, color core.Color) {
	v := g.view
	inner := math.Max(0, r-v.unitsPerCol)
	x0, y0 := v.cell(core.V(c.X-r, c.Y-r))
	x1, y1 := v.cell(core.V(c.X+r, c.Y+r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !v.inside(x, y) {
				continue
			}
			dx, dy := v.worldX(x)-c.X, v.worldY(y)-c.Y
			d := dx*dx + dy*dy
			if d <= r*r && d >= inner*inner {
				dst.SetColor(x, y, glyph, color)
			}
		}
	}
}

// fillBox paints the cells covered by an axis-aligned box body.
func (g *Game) fillBox(dst *core.Screen, b physics.Body, glyph rune, color core.Color) {
	v := g.view
	hw, hh := b.Spec.Width/2, b.Spec.Height/2
	x0, y0 := v.cell(core.V(b.Position.X-hw, b.Position.Y-hh))
	x1, y1 := v.cell(core.V(b.Position.X+hw, b.Position.Y+hh))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !v.inside(x, y) {
				continue
			}
			wx, wy := v.worldX(x), v.worldY(y)
			if math.Abs(wx-b.Position.X) <= hw+v.unitsPerCol/2 && math.Abs(wy-b.Position.Y) <= hh+v.unitsPerRow/2 {
				dst.SetColor(x, y, glyph, color)
			}
		}
	}
}

// drawHUD draws the score line above the container.
func (g *Game) drawHUD(dst *core.Screen) {
	x := g.view.originX
	text := fmt.Sprintf("Score %d  Best %d", g.tracker.Score(), g.best)
	dst.DrawText(x, 0, text)

	if g.phase != PhaseReady && g.phase != PhaseDrop {
		return
	}
	nt := g.cfg.Tiers[g.next]
	label := "Next "
	nx := g.view.originX + g.view.cols - utf8.RuneCountInString(label) - utf8.RuneCountInString(nt.Name) - 2
	nx = max(nx, x+utf8.RuneCountInString(text)+2)
	dst.DrawText(nx, 0, label)
	nx += utf8.RuneCountInString(label)
	dst.SetColor(nx, 0, firstRune(nt.Glyph, 'o'), colorOf(nt.Color))
	dst.DrawTextColor(nx+2, 0, nt.Name, colorOf(nt.Color))
}

// drawHint shows the controls near the bottom of the container.
func (g *Game) drawHint(dst *core.Screen) {
	lines := []string{
		"←/→ 4/6 move  1/3 far",
		"Enter/↓/5 drop  Esc menu",
	}
	y := g.view.originY + g.view.rows - len(lines) - 3
	for i, line := range lines {
		x := g.view.originX + (g.view.cols-utf8.RuneCountInString(line))/2
		dst.DrawTextColor(max(x, 0), y+i, line, core.ColorGray)
	}
}

// drawPanel draws a bordered, centered panel with centered lines.
func (g *Game) drawPanel(dst *core.Screen, lines []string) {
	w := 0
	for _, l := range lines {
		w = max(w, utf8.RuneCountInString(l))
	}
	w += 4
	h := len(lines) + 2
	w = min(w, dst.Width())
	h = min(h, dst.Height())

	r := core.NewRect((dst.Width()-w)/2, (dst.Height()-h)/2, w, h)
	dst.DrawRect(r, ' ')
	dst.DrawBox(r, colorOf(g.cfg.Container.PanelColor))
	for i, l := range lines {
		x := r.X + (w-utf8.RuneCountInString(l))/2
		dst.DrawText(x, r.Y+1+i, l)
	}
}

// firstRune returns the first rune of s, or fallback when s is empty.
func firstRune(s string, fallback rune) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return fallback
	}
	return r
}

// colorOf resolves a config color name, using the default color for unknown names.
func colorOf(name string) core.Color {
	c, _ := core.ParseColor(name)
	return c
}
