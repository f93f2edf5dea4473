package main

import (
	"fmt"
	"math"
)

type Kind string

const (
	KindSticky       Kind = "sticky"
	KindRectangle    Kind = "rectangle"
	KindCircle       Kind = "circle"
	KindDiamond      Kind = "diamond"
	KindStar         Kind = "star"
	KindTriangle     Kind = "triangle"
	KindSpeechBubble Kind = "speech-bubble"
)

// paletteKinds is the shape palette in toolbar order.
var paletteKinds = []Kind{
	KindRectangle,
	KindCircle,
	KindDiamond,
	KindStar,
	KindTriangle,
	KindSpeechBubble,
}

func (k Kind) Valid() bool {
	switch k {
	case KindSticky, KindRectangle, KindCircle, KindDiamond, KindStar, KindTriangle, KindSpeechBubble:
		return true
	}
	return false
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown node kind %q", s)
	}
	return k, nil
}

// Geometry holds the size parameters a kind uses. Fields a kind does not use
// stay zero.
type Geometry struct {
	Width       float64
	Height      float64
	Radius      float64
	InnerRadius float64
	Points      int
}

type Style struct {
	Fill         string
	Stroke       string
	StrokeWidth  float64
	CornerRadius float64
}

// Node is a sticky note or shape. Its position only changes through
// Scene.MoveNode so that connectors hear about it.
type Node struct {
	ID       string
	Kind     Kind
	Geometry Geometry
	Label    string
	Style    Style

	pos Point
}

func (n *Node) EntityID() string { return n.ID }

func (n *Node) Position() Point { return n.pos }

func defaultGeometry(kind Kind) Geometry {
	switch kind {
	case KindSticky:
		return Geometry{Width: stickyWidth, Height: stickyHeight}
	case KindRectangle:
		return Geometry{Width: 120, Height: 70}
	case KindCircle:
		return Geometry{Radius: 40}
	case KindDiamond:
		return Geometry{Radius: 50}
	case KindStar:
		return Geometry{Points: 5, InnerRadius: 18, Radius: 40}
	case KindTriangle:
		return Geometry{Radius: 48}
	case KindSpeechBubble:
		return Geometry{Width: 140, Height: 70}
	}
	return Geometry{}
}

func defaultStyle(kind Kind) Style {
	switch kind {
	case KindSticky:
		return Style{Fill: "#fff59d", Stroke: "#e2c64d", StrokeWidth: 2, CornerRadius: 6}
	case KindRectangle, KindSpeechBubble:
		return Style{Fill: "#ffffff", Stroke: "#475569", StrokeWidth: 1, CornerRadius: 6}
	default:
		return Style{Fill: "#ffffff", Stroke: "#475569", StrokeWidth: 1}
	}
}

func newSticky(pos Point, text string) *Node {
	return &Node{
		Kind:     KindSticky,
		Geometry: defaultGeometry(KindSticky),
		Label:    text,
		Style:    defaultStyle(KindSticky),
		pos:      pos,
	}
}

func newShape(pos Point, kind Kind) (*Node, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
	if kind == KindSticky {
		return newSticky(pos, defaultStickyText), nil
	}
	return &Node{
		Kind:     kind,
		Geometry: defaultGeometry(kind),
		Label:    string(kind),
		Style:    defaultStyle(kind),
		pos:      pos,
	}, nil
}

// boxed reports whether the kind is drawn as a (rounded) rectangle anchored
// at its top-left corner. The other kinds are centred on their position.
func (n *Node) boxed() bool {
	switch n.Kind {
	case KindSticky, KindRectangle, KindSpeechBubble:
		return true
	}
	return false
}

// Polygon returns the outline vertices in scene coordinates for diamond,
// star and triangle nodes, nil otherwise.
func (n *Node) Polygon() []Point {
	g := n.Geometry
	switch n.Kind {
	case KindDiamond:
		return translate(regularPolygon(4, g.Radius, 0), n.pos)
	case KindTriangle:
		return translate(regularPolygon(3, g.Radius, 0), n.pos)
	case KindStar:
		return translate(starPolygon(g.Points, g.InnerRadius, g.Radius), n.pos)
	}
	return nil
}

// Tail is the small triangle hanging off a speech bubble, at a fixed offset
// from the bubble's corner.
func (n *Node) Tail() []Point {
	if n.Kind != KindSpeechBubble {
		return nil
	}
	return translate(regularPolygon(3, 10, 90), n.pos.Add(Point{110, 60}))
}

func (n *Node) Bounds() Rect {
	g := n.Geometry
	switch {
	case n.boxed():
		r := Rect{Min: n.pos, Max: n.pos.Add(Point{g.Width, g.Height})}
		if tail := n.Tail(); tail != nil {
			r = r.Union(boundsOf(tail))
		}
		return r
	case n.Kind == KindCircle:
		return Rect{
			Min: n.pos.Sub(Point{g.Radius, g.Radius}),
			Max: n.pos.Add(Point{g.Radius, g.Radius}),
		}
	default:
		return boundsOf(n.Polygon())
	}
}

// Center is the centre of the axis-aligned bounding box. Connectors attach
// here.
func (n *Node) Center() Point {
	return n.Bounds().Center()
}

func (n *Node) Contains(p Point) bool {
	switch {
	case n.boxed():
		g := n.Geometry
		body := Rect{Min: n.pos, Max: n.pos.Add(Point{g.Width, g.Height})}
		if body.Contains(p) {
			return true
		}
		if tail := n.Tail(); tail != nil {
			return insidePolygon(p, tail)
		}
		return false
	case n.Kind == KindCircle:
		return math.Hypot(p.X-n.pos.X, p.Y-n.pos.Y) <= n.Geometry.Radius
	default:
		return insidePolygon(p, n.Polygon())
	}
}

// LabelArea is where label text goes: the padded top-left of a sticky note,
// the whole bounds (centred) for shapes.
func (n *Node) LabelArea() (Rect, bool) {
	if n.Kind == KindSticky {
		return n.Bounds().Inset(stickyPadding), false
	}
	return n.Bounds(), true
}
