package main

import "math"

// Path is the drawn curve of a connector: a quadratic Bézier from Start to
// End that passes through Via halfway along.
type Path struct {
	Start Point
	Via   Point
	End   Point
}

// Control is the Bézier control point that makes the curve pass through Via
// at t=0.5.
func (p Path) Control() Point {
	return p.Via.Scale(2).Sub(midpoint(p.Start, p.End))
}

func (p Path) At(t float64) Point {
	c := p.Control()
	u := 1 - t
	return Point{
		X: u*u*p.Start.X + 2*u*t*c.X + t*t*p.End.X,
		Y: u*u*p.Start.Y + 2*u*t*c.Y + t*t*p.End.Y,
	}
}

// Sample returns n+1 evenly spaced (in t) points along the curve.
func (p Path) Sample(n int) []Point {
	if n < 1 {
		n = 1
	}
	points := make([]Point, n+1)
	for i := range points {
		points[i] = p.At(float64(i) / float64(n))
	}
	return points
}

// Arrowhead is drawn straight from source centre to target centre, with the
// pointer tip at To.
type Arrowhead struct {
	From   Point
	To     Point
	Length float64
	Width  float64
}

// Wings returns the two base corners of the pointer triangle.
func (a Arrowhead) Wings() (Point, Point) {
	d := a.To.Sub(a.From)
	l := d.Len()
	if l == 0 {
		return a.To, a.To
	}
	dir := d.Scale(1 / l)
	base := a.To.Sub(dir.Scale(a.Length))
	normal := Point{-dir.Y, dir.X}.Scale(a.Width / 2)
	return base.Add(normal), base.Sub(normal)
}

// Connector is a directed edge between two nodes. It holds only the node
// ids; its path is derived from the live node positions and rederived each
// time either endpoint moves.
type Connector struct {
	ID       string
	SourceID string
	TargetID string

	offset float64
	path   Path
	arrow  Arrowhead
	scene  *Scene
}

func newConnector(sourceID, targetID string, offset float64) *Connector {
	return &Connector{
		SourceID: sourceID,
		TargetID: targetID,
		offset:   offset,
	}
}

func (c *Connector) EntityID() string { return c.ID }

func (c *Connector) Path() Path { return c.path }

func (c *Connector) Arrow() Arrowhead { return c.arrow }

func (c *Connector) References(nodeID string) bool {
	return c.SourceID == nodeID || c.TargetID == nodeID
}

// NodeMoved is called by the scene whenever one of the endpoints moves.
func (c *Connector) NodeMoved(*Node) {
	c.refresh()
}

func (c *Connector) refresh() bool {
	if c.scene == nil {
		return false
	}
	src, tgt := c.scene.Node(c.SourceID), c.scene.Node(c.TargetID)
	if src == nil || tgt == nil {
		return false
	}
	c.path, c.arrow = connectorGeometry(src.Center(), tgt.Center(), c.offset)
	return true
}

// connectorGeometry bends the curve away from the chord by offset, always
// towards the top of the board whichever way the chord runs.
func connectorGeometry(a, b Point, offset float64) (Path, Arrowhead) {
	d := b.Sub(a)
	normal := Point{0, -1}
	if l := d.Len(); l > 0 {
		normal = Point{d.Y / l, -d.X / l}
		if normal.Y > 0 {
			normal = normal.Scale(-1)
		}
	}
	path := Path{
		Start: a,
		Via:   midpoint(a, b).Add(normal.Scale(offset)),
		End:   b,
	}
	arrow := Arrowhead{From: a, To: b, Length: arrowPointerLength, Width: arrowPointerWidth}
	return path, arrow
}

// approxLength is an upper bound on the curve length taken from its control
// polygon.
func (p Path) approxLength() float64 {
	c := p.Control()
	return math.Max(c.Sub(p.Start).Len()+p.End.Sub(c).Len(), p.End.Sub(p.Start).Len())
}
