package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultSimplifyRatio is the Douglas-Peucker tolerance expressed as a
// fraction of the contour perimeter.
const DefaultSimplifyRatio = 0.03

// SimplifyContour reduces a contour to its dominant vertices using a
// tolerance of Perimeter(c) * ratio. Larger ratios yield fewer vertices.
func SimplifyContour(c Contour, ratio float64) Polygon {
	return Simplify(c, Perimeter(c)*ratio)
}

// Simplify applies closed-curve Douglas-Peucker reduction with the given
// tolerance in pixels.
//
// The curve is split at two extreme points: the point farthest from the first
// point, and the point farthest from that one. Each of the two boundary chains
// between them is reduced independently, so the result does not depend on
// where the contour traversal happened to start. Kept vertices are returned in
// input order, making the output a subsequence of the input.
//
// Contours with fewer than three points are returned unchanged.
func Simplify(c Contour, epsilon float64) Polygon {
	n := len(c)
	if n < 3 {
		out := make(Polygon, n)
		copy(out, c)
		return out
	}

	a := farthestFrom(c, 0)
	b := farthestFrom(c, a)
	if a == b {
		// Every point coincides.
		return Polygon{c[0]}
	}

	keep := make([]bool, n)
	keep[a] = true
	keep[b] = true
	reduceChain(c, a, b, epsilon, keep)
	reduceChain(c, b, a, epsilon, keep)

	out := make(Polygon, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, c[i])
		}
	}
	return out
}

// farthestFrom returns the index of the point farthest from c[from]. Ties keep
// the lowest index.
func farthestFrom(c Contour, from int) int {
	best := from
	bestDist := 0.0
	for i, p := range c {
		d := r2.Norm2(r2.Sub(p.vec(), c[from].vec()))
		if d > bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

type chainSegment struct {
	start, end int
}

// reduceChain marks the vertices to keep on the chain running forward from
// start to end, wrapping past the end of the contour.
func reduceChain(c Contour, start, end int, epsilon float64, keep []bool) {
	n := len(c)
	stack := []chainSegment{{start, end}}

	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		span := (seg.end - seg.start + n) % n
		if span < 2 {
			continue
		}

		maxDist := -1.0
		maxIdx := seg.start
		for k := 1; k < span; k++ {
			idx := (seg.start + k) % n
			d := lineDistance(c[idx], c[seg.start], c[seg.end])
			if d > maxDist {
				maxDist = d
				maxIdx = idx
			}
		}

		if maxDist > epsilon {
			keep[maxIdx] = true
			stack = append(stack, chainSegment{seg.start, maxIdx}, chainSegment{maxIdx, seg.end})
		}
	}
}

// lineDistance returns the perpendicular distance from p to the line through
// a and b, or the distance to a when a and b coincide.
func lineDistance(p, a, b Point) float64 {
	ab := r2.Sub(b.vec(), a.vec())
	ap := r2.Sub(p.vec(), a.vec())
	length := r2.Norm(ab)
	if length < 1e-12 {
		return r2.Norm(ap)
	}
	return math.Abs(r2.Cross(ab, ap)) / length
}
