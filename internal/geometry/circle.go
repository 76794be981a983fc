package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Circle is a circle in pixel space.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Contains reports whether p lies inside or on the circle, allowing a small
// relative tolerance for floating point error.
func (c Circle) Contains(p Point) bool {
	return Distance(c.Center, p) <= c.Radius+1e-9*math.Max(1, c.Radius)
}

// MinEnclosingCircle returns the smallest circle containing every point.
//
// The incremental construction grows the circle whenever a point falls
// outside it, re-anchoring the boundary on that point (and on up to two
// earlier points). An empty input yields the zero Circle.
func MinEnclosingCircle(pts []Point) Circle {
	if len(pts) == 0 {
		return Circle{}
	}

	c := Circle{Center: pts[0]}
	for i := 1; i < len(pts); i++ {
		if c.Contains(pts[i]) {
			continue
		}
		c = Circle{Center: pts[i]}
		for j := 0; j < i; j++ {
			if c.Contains(pts[j]) {
				continue
			}
			c = circleFrom2(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if c.Contains(pts[k]) {
					continue
				}
				c = circleFrom3(pts[i], pts[j], pts[k])
			}
		}
	}
	return c
}

// circleFrom2 returns the circle with segment ab as its diameter.
func circleFrom2(a, b Point) Circle {
	return Circle{Center: Midpoint(a, b), Radius: Distance(a, b) / 2}
}

// circleFrom3 returns the circumcircle of a, b and c. Collinear points fall
// back to the largest of the three diameter circles.
func circleFrom3(a, b, c Point) Circle {
	ab := r2.Sub(b.vec(), a.vec())
	ac := r2.Sub(c.vec(), a.vec())
	d := 2 * r2.Cross(ab, ac)
	if math.Abs(d) < 1e-12 {
		best := circleFrom2(a, b)
		for _, cand := range []Circle{circleFrom2(a, c), circleFrom2(b, c)} {
			if cand.Radius > best.Radius {
				best = cand
			}
		}
		return best
	}

	ab2 := r2.Norm2(ab)
	ac2 := r2.Norm2(ac)
	ux := (ac.Y*ab2 - ab.Y*ac2) / d
	uy := (ab.X*ac2 - ac.X*ab2) / d
	center := Point{X: a.X + ux, Y: a.Y + uy}
	return Circle{Center: center, Radius: math.Hypot(ux, uy)}
}
