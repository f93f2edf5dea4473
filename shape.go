package main

import "math"

type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// clampToBoard keeps p inside the coordinate range a document may hold.
func clampToBoard(p Point) Point {
	return Point{
		X: math.Max(-maxCoordinate, math.Min(maxCoordinate, p.X)),
		Y: math.Max(-maxCoordinate, math.Min(maxCoordinate, p.Y)),
	}
}

func midpoint(a, b Point) Point {
	return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// Rect is an axis-aligned box in scene coordinates.
type Rect struct {
	Min, Max Point
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Center() Point {
	return midpoint(r.Min, r.Max)
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Point{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

func (r Rect) Inset(d float64) Rect {
	return Rect{Min: Point{r.Min.X + d, r.Min.Y + d}, Max: Point{r.Max.X - d, r.Max.Y - d}}
}

func boundsOf(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r = r.Union(Rect{Min: p, Max: p})
	}
	return r
}

// regularPolygon returns the vertices of a regular polygon centred on the
// origin with its first vertex straight up, rotated clockwise by rotation
// degrees.
func regularPolygon(sides int, radius, rotation float64) []Point {
	points := make([]Point, sides)
	for i := range points {
		a := 2 * math.Pi * float64(i) / float64(sides)
		points[i] = rotate(Point{radius * math.Sin(a), -radius * math.Cos(a)}, rotation)
	}
	return points
}

// starPolygon alternates outer and inner vertices, starting with an outer one
// straight up.
func starPolygon(numPoints int, inner, outer float64) []Point {
	points := make([]Point, 2*numPoints)
	for i := range points {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := math.Pi * float64(i) / float64(numPoints)
		points[i] = Point{r * math.Sin(a), -r * math.Cos(a)}
	}
	return points
}

func rotate(p Point, degrees float64) Point {
	if degrees == 0 {
		return p
	}
	s, c := math.Sincos(degrees * math.Pi / 180)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

func translate(points []Point, by Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = p.Add(by)
	}
	return out
}

// insidePolygon is the even-odd rule.
func insidePolygon(p Point, poly []Point) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
