package geometry

import (
	"image"
	"math"
)

// Contour is an ordered sequence of boundary points tracing a closed region.
// The boundary is closed implicitly: the last point connects to the first.
type Contour []Point

// Polygon is a Contour reduced to its dominant vertices. Vertices keep the
// traversal order of the contour they were taken from.
type Polygon []Point

// FromImagePoints converts a raster boundary into a Contour.
func FromImagePoints(pts []image.Point) Contour {
	c := make(Contour, len(pts))
	for i, p := range pts {
		c[i] = FromImagePoint(p)
	}
	return c
}

// Edge returns the i-th edge of the closed polygon: vertex i to vertex i+1,
// wrapping the last vertex back to the first.
func (p Polygon) Edge(i int) (Point, Point) {
	return p[i], p[(i+1)%len(p)]
}

// EdgeLengths returns the length of every edge of the closed polygon, in
// vertex order. Polygons with fewer than two vertices have no edges.
func (p Polygon) EdgeLengths() []float64 {
	if len(p) < 2 {
		return nil
	}
	lengths := make([]float64, len(p))
	for i := range p {
		a, b := p.Edge(i)
		lengths[i] = Distance(a, b)
	}
	return lengths
}

// Perimeter returns the closed arc length of the contour.
func Perimeter(c Contour) float64 {
	if len(c) < 2 {
		return 0
	}
	var total float64
	for i := range c {
		total += Distance(c[i], c[(i+1)%len(c)])
	}
	return total
}

// Area returns the unsigned area enclosed by the contour using the shoelace
// formula. Contours with fewer than three points enclose no area.
func Area(c Contour) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(sum) / 2
}

// Centroid returns the arithmetic mean of the points. It is the zero Point for
// an empty contour.
func Centroid(c Contour) Point {
	if len(c) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range c {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(c))
	return Point{X: sx / n, Y: sy / n}
}

// Bounds returns the integer bounding rectangle of the contour. Max is
// exclusive, matching image.Rectangle.
func Bounds(c Contour) image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	minX, minY := c[0].X, c[0].Y
	maxX, maxY := c[0].X, c[0].Y
	for _, p := range c[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Floor(maxX))+1, int(math.Floor(maxY))+1)
}

// Contains reports whether p lies inside the closed contour, using the
// even-odd rule. Points exactly on the boundary may fall either way.
func Contains(c Contour, p Point) bool {
	inside := false
	for i, j := 0, len(c)-1; i < len(c); j, i = i, i+1 {
		a, b := c[i], c[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
