package main

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	exportPadding  = 40.0
	exportFontSize = 12.0
)

// ExportToPNG draws the board at one pixel per scene unit, cropped to its
// contents.
func ExportToPNG(s *Scene, filename string) error {
	if s.Empty() {
		return ErrEmptyBoard
	}
	b, _ := s.Bounds()
	origin := b.Min.Sub(Point{exportPadding, exportPadding})
	width := int(b.Width() + 2*exportPadding)
	height := int(b.Height() + 2*exportPadding)
	if width*height > maxExportPixels {
		return fmt.Errorf("%dx%d pixels: %w", width, height, ErrBoardTooLarge)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Translate(-origin.X, -origin.Y)

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    exportFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	for _, c := range s.Connectors() {
		drawConnectorPNG(dc, c)
	}
	for _, n := range s.Nodes() {
		drawNodePNG(dc, n)
	}

	return dc.SavePNG(filename)
}

func drawConnectorPNG(dc *gg.Context, c *Connector) {
	p := c.Path()
	ctrl := p.Control()
	dc.SetHexColor(connectorStroke)
	dc.SetLineWidth(connectorWidth)
	dc.MoveTo(p.Start.X, p.Start.Y)
	dc.QuadraticTo(ctrl.X, ctrl.Y, p.End.X, p.End.Y)
	dc.Stroke()

	a := c.Arrow()
	left, right := a.Wings()
	dc.MoveTo(a.To.X, a.To.Y)
	dc.LineTo(left.X, left.Y)
	dc.LineTo(right.X, right.Y)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n *Node) {
	g := n.Geometry
	outline := func() {
		switch {
		case n.boxed():
			dc.DrawRoundedRectangle(n.pos.X, n.pos.Y, g.Width, g.Height, n.Style.CornerRadius)
		case n.Kind == KindCircle:
			dc.DrawCircle(n.pos.X, n.pos.Y, g.Radius)
		default:
			tracePolygon(dc, n.Polygon())
		}
		if tail := n.Tail(); tail != nil {
			tracePolygon(dc, tail)
		}
	}

	outline()
	dc.SetHexColor(n.Style.Fill)
	dc.Fill()
	if n.Style.StrokeWidth > 0 {
		outline()
		dc.SetHexColor(n.Style.Stroke)
		dc.SetLineWidth(n.Style.StrokeWidth)
		dc.Stroke()
	}

	if n.Label == "" {
		return
	}
	area, centred := n.LabelArea()
	dc.SetHexColor(labelColor)
	if centred {
		c := area.Center()
		dc.DrawStringWrapped(n.Label, c.X, c.Y, 0.5, 0.5, area.Width(), 1.2, gg.AlignCenter)
		return
	}
	dc.DrawStringWrapped(n.Label, area.Min.X, area.Min.Y, 0, 0, area.Width(), 1.2, gg.AlignLeft)
}

func tracePolygon(dc *gg.Context, points []Point) {
	if len(points) == 0 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
}

// exportVisualTXT writes the board as it looks in the terminal, framed to
// its contents rather than the current viewport.
func exportVisualTXT(s *Scene, filename string, cellW, cellH float64) error {
	v, ok := fitViewport(s, cellW, cellH)
	if !ok {
		return ErrEmptyBoard
	}
	if v.width*v.height > maxExportCells {
		return fmt.Errorf("%dx%d cells: %w", v.width, v.height, ErrBoardTooLarge)
	}
	lines := renderScene(s, v, highlight{}).plain()
	return os.WriteFile(filename, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
