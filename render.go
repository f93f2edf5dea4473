package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const maxLabelWidth = 1024

type cell struct {
	ch rune
	fg string
	bg string
}

// grid is a character canvas. Colors are hex strings; empty means the
// terminal default.
type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int) *grid {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	g := &grid{w: w, h: h, cells: make([][]cell, h)}
	for y := range g.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{ch: ' '}
		}
		g.cells[y] = row
	}
	return g
}

func (g *grid) valid(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

// set writes a glyph and keeps the background.
func (g *grid) set(x, y int, ch rune, fg string) {
	if !g.valid(x, y) {
		return
	}
	g.cells[y][x].ch = ch
	g.cells[y][x].fg = fg
}

func (g *grid) paint(x, y int, bg string) {
	if !g.valid(x, y) {
		return
	}
	g.cells[y][x] = cell{ch: ' ', bg: bg}
}

// plain drops all color and trailing blanks.
func (g *grid) plain() []string {
	lines := make([]string, g.h)
	for y, row := range g.cells {
		runes := make([]rune, len(row))
		for x, c := range row {
			runes[x] = c.ch
		}
		lines[y] = strings.TrimRight(string(runes), " ")
	}
	return lines
}

func (g *grid) styled() []string {
	cache := make(map[[2]string]lipgloss.Style)
	styleFor := func(fg, bg string) lipgloss.Style {
		key := [2]string{fg, bg}
		if s, ok := cache[key]; ok {
			return s
		}
		s := lipgloss.NewStyle()
		if fg != "" {
			s = s.Foreground(lipgloss.Color(fg))
		}
		if bg != "" {
			s = s.Background(lipgloss.Color(bg))
		}
		cache[key] = s
		return s
	}

	lines := make([]string, g.h)
	for y, row := range g.cells {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].fg == row[start].fg && row[x].bg == row[start].bg {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, c := range row[start:x] {
				run = append(run, c.ch)
			}
			if row[start].fg == "" && row[start].bg == "" {
				b.WriteString(string(run))
			} else {
				b.WriteString(styleFor(row[start].fg, row[start].bg).Render(string(run)))
			}
			start = x
		}
		lines[y] = b.String()
	}
	return lines
}

// viewport maps scene units onto grid cells. panX and panY are in cells.
type viewport struct {
	panX, panY    int
	cellW, cellH  float64
	width, height int
}

func (v viewport) cellOf(p Point) (int, int) {
	return int(math.Floor(p.X/v.cellW)) - v.panX, int(math.Floor(p.Y/v.cellH)) - v.panY
}

// centerOf is the scene point at the middle of a grid cell.
func (v viewport) centerOf(x, y int) Point {
	return Point{
		X: (float64(x+v.panX) + 0.5) * v.cellW,
		Y: (float64(y+v.panY) + 0.5) * v.cellH,
	}
}

// fitViewport frames the whole scene with a one cell margin.
func fitViewport(s *Scene, cellW, cellH float64) (viewport, bool) {
	b, ok := s.Bounds()
	if !ok {
		return viewport{}, false
	}
	v := viewport{cellW: cellW, cellH: cellH}
	v.panX = int(math.Floor(b.Min.X/cellW)) - 1
	v.panY = int(math.Floor(b.Min.Y/cellH)) - 1
	x1, y1 := v.cellOf(b.Max)
	v.width, v.height = x1+2, y1+2
	return v, true
}

type highlight struct {
	selected string
	pending  string
}

func renderScene(s *Scene, v viewport, hl highlight) *grid {
	g := newGrid(v.width, v.height)
	for _, c := range s.Connectors() {
		drawConnector(g, v, c, s.Node(c.TargetID))
	}
	for _, n := range s.Nodes() {
		stroke := n.Style.Stroke
		switch n.ID {
		case hl.selected:
			stroke = selectedStroke
		case hl.pending:
			stroke = pendingStroke
		}
		drawNode(g, v, n, stroke, n.ID == hl.selected || n.ID == hl.pending)
	}
	return g
}

func drawConnector(g *grid, v viewport, c *Connector, target *Node) {
	p := c.Path()
	step := math.Min(v.cellW, v.cellH) / 2
	samples := p.Sample(min(max(8, int(p.approxLength()/step)), maxConnectorSamples))
	for _, pt := range samples {
		x, y := v.cellOf(pt)
		g.set(x, y, '•', connectorStroke)
	}

	// The tip sits at the target centre, under the node; show it where the
	// curve enters the node instead.
	tip := arrowGlyph(c.Arrow())
	for i := len(samples) - 1; i >= 0; i-- {
		if target == nil || !target.Contains(samples[i]) {
			x, y := v.cellOf(samples[i])
			g.set(x, y, tip, connectorStroke)
			return
		}
	}
}

func arrowGlyph(a Arrowhead) rune {
	d := a.To.Sub(a.From)
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X < 0 {
			return '<'
		}
		return '>'
	}
	if d.Y < 0 {
		return '^'
	}
	return 'v'
}

func drawNode(g *grid, v viewport, n *Node, stroke string, highlighted bool) {
	b := n.Bounds()
	x0, y0 := v.cellOf(b.Min)
	// Max is exclusive: a node ending on a cell boundary doesn't spill into
	// the next cell.
	x1, y1 := v.cellOf(Point{math.Nextafter(b.Max.X, b.Min.X), math.Nextafter(b.Max.Y, b.Min.Y)})

	// Hit-test only the cells on screen plus a one cell rim, so the border
	// test for an edge cell can see its off-screen neighbour.
	cx0, cy0 := max(x0, -1), max(y0, -1)
	cx1, cy1 := min(x1, g.w), min(y1, g.h)
	if cx0 > cx1 || cy0 > cy1 {
		return
	}
	w, h := cx1-cx0+1, cy1-cy0+1
	inside := make([][]bool, h)
	for j := range inside {
		inside[j] = make([]bool, w)
		for i := range inside[j] {
			inside[j][i] = n.Contains(v.centerOf(cx0+i, cy0+j))
		}
	}
	in := func(x, y int) bool {
		i, j := x-cx0, y-cy0
		return i >= 0 && j >= 0 && i < w && j < h && inside[j][i]
	}

	for y := max(cy0, 0); y <= min(cy1, g.h-1); y++ {
		for x := max(cx0, 0); x <= min(cx1, g.w-1); x++ {
			if !in(x, y) {
				continue
			}
			g.paint(x, y, n.Style.Fill)
			top, bottom := !in(x, y-1), !in(x, y+1)
			left, right := !in(x-1, y), !in(x+1, y)
			if !top && !bottom && !left && !right {
				continue
			}
			g.set(x, y, borderGlyph(n, highlighted, top || bottom, left || right), stroke)
		}
	}

	drawLabel(g, n, x0, y0, x1-x0+1, y1-y0+1)
}

func borderGlyph(n *Node, highlighted, horizontal, vertical bool) rune {
	switch {
	case highlighted:
		return '#'
	case !n.boxed():
		return '*'
	case horizontal && vertical:
		return '+'
	case horizontal:
		return '-'
	default:
		return '|'
	}
}

// drawLabel writes the label inside the node's border: top-left for sticky
// notes, centred for shapes.
func drawLabel(g *grid, n *Node, x0, y0, w, h int) {
	if w < 3 || h < 3 || n.Label == "" {
		return
	}
	innerW, innerH := w-2, h-2
	_, centred := n.LabelArea()
	lines := wrapLabel(n.Label, min(innerW, maxLabelWidth))
	if len(lines) > innerH {
		lines = lines[:innerH]
	}

	top := y0 + 1
	if centred {
		top += (innerH - len(lines)) / 2
	}
	for j, line := range lines {
		runes := []rune(line)
		if len(runes) > innerW {
			runes = runes[:innerW]
		}
		left := x0 + 1
		if centred {
			left += (innerW - len(runes)) / 2
		}
		for i, r := range runes {
			g.set(left+i, top+j, r, labelColor)
		}
	}
}

func wrapLabel(text string, width int) []string {
	if width < 1 {
		return nil
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
