package geometry

import (
	"image"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// rectContour returns the boundary pixels of a w x h block at (x0, y0),
// traced clockwise from the top-left corner.
func rectContour(x0, y0, w, h int) Contour {
	var c Contour
	for x := x0; x < x0+w-1; x++ {
		c = append(c, Pt(float64(x), float64(y0)))
	}
	for y := y0; y < y0+h-1; y++ {
		c = append(c, Pt(float64(x0+w-1), float64(y)))
	}
	for x := x0 + w - 1; x > x0; x-- {
		c = append(c, Pt(float64(x), float64(y0+h-1)))
	}
	for y := y0 + h - 1; y > y0; y-- {
		c = append(c, Pt(float64(x0), float64(y)))
	}
	return c
}

// circleContour samples n points on a circle.
func circleContour(cx, cy, r float64, n int) Contour {
	c := make(Contour, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		c[i] = Pt(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	return c
}

func TestDistance(t *testing.T) {
	if d := Distance(Pt(0, 0), Pt(3, 4)); d != 5 {
		t.Errorf("Distance: got %v, want 5", d)
	}
	if m := Midpoint(Pt(0, 0), Pt(10, 4)); m != Pt(5, 2) {
		t.Errorf("Midpoint: got %v, want (5,2)", m)
	}
}

func TestImagePointRoundTrip(t *testing.T) {
	p := FromImagePoint(image.Pt(7, -3))
	if p != Pt(7, -3) {
		t.Fatalf("FromImagePoint: got %v", p)
	}
	if got := Pt(2.5, -2.5).ImagePoint(); got != image.Pt(3, -3) {
		t.Errorf("ImagePoint: got %v, want (3,-3)", got)
	}
}

func TestArea(t *testing.T) {
	tests := []struct {
		name string
		c    Contour
		want float64
	}{
		{"empty", nil, 0},
		{"two points", Contour{Pt(0, 0), Pt(5, 5)}, 0},
		{"square clockwise", Contour{Pt(0, 0), Pt(30, 0), Pt(30, 30), Pt(0, 30)}, 900},
		{"square counter-clockwise", Contour{Pt(0, 0), Pt(0, 30), Pt(30, 30), Pt(30, 0)}, 900},
		{"triangle", Contour{Pt(0, 0), Pt(10, 0), Pt(0, 10)}, 50},
		{"pixel block boundary", rectContour(5, 5, 30, 30), 29 * 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Area(tt.c); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Area: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPerimeter(t *testing.T) {
	sq := Contour{Pt(0, 0), Pt(30, 0), Pt(30, 30), Pt(0, 30)}
	if got := Perimeter(sq); got != 120 {
		t.Errorf("Perimeter: got %v, want 120", got)
	}
	if got := Perimeter(Contour{Pt(1, 1)}); got != 0 {
		t.Errorf("single point perimeter: got %v, want 0", got)
	}
}

func TestEdgeLengths(t *testing.T) {
	p := Polygon{Pt(0, 0), Pt(40, 0), Pt(40, 20), Pt(0, 20)}
	want := []float64{40, 20, 40, 20}
	if diff := cmp.Diff(want, p.EdgeLengths()); diff != "" {
		t.Errorf("EdgeLengths mismatch (-want +got):\n%s", diff)
	}
	if got := (Polygon{Pt(1, 1)}).EdgeLengths(); got != nil {
		t.Errorf("single vertex: got %v, want nil", got)
	}
}

func TestBoundsAndCentroid(t *testing.T) {
	c := rectContour(10, 20, 5, 4)
	if got := Bounds(c); got != image.Rect(10, 20, 15, 24) {
		t.Errorf("Bounds: got %v", got)
	}
	sq := Contour{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	if got := Centroid(sq); got != Pt(5, 5) {
		t.Errorf("Centroid: got %v", got)
	}
}

func TestContains(t *testing.T) {
	sq := Contour{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	tri := Contour{Pt(0, 0), Pt(20, 0), Pt(0, 20)}

	tests := []struct {
		name string
		c    Contour
		p    Point
		want bool
	}{
		{"square center", sq, Pt(5, 5), true},
		{"square outside", sq, Pt(15, 5), false},
		{"square above", sq, Pt(5, -1), false},
		{"triangle inside", tri, Pt(4, 4), true},
		{"triangle beyond hypotenuse", tri, Pt(15, 15), false},
		{"empty contour", nil, Pt(0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.c, tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSimplify_Rectangle(t *testing.T) {
	c := rectContour(10, 10, 60, 30)
	got := SimplifyContour(c, DefaultSimplifyRatio)

	want := Polygon{Pt(10, 10), Pt(69, 10), Pt(69, 39), Pt(10, 39)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SimplifyContour mismatch (-want +got):\n%s", diff)
	}
}

func TestSimplify_StartMidEdge(t *testing.T) {
	c := rectContour(0, 0, 40, 40)
	// Rotate the traversal so it starts halfway along the top edge.
	rotated := append(append(Contour{}, c[20:]...), c[:20]...)

	got := SimplifyContour(rotated, DefaultSimplifyRatio)
	if len(got) != 4 {
		t.Fatalf("expected 4 vertices, got %d: %v", len(got), got)
	}
}

func TestSimplify_Subsequence(t *testing.T) {
	c := circleContour(100, 100, 40, 180)
	got := SimplifyContour(c, DefaultSimplifyRatio)

	if len(got) <= 4 {
		t.Fatalf("circle should keep more than 4 vertices, got %d", len(got))
	}

	// Every output vertex must appear in the input, in increasing index order.
	next := 0
	for _, v := range got {
		found := false
		for next < len(c) {
			if c[next] == v {
				found = true
				next++
				break
			}
			next++
		}
		if !found {
			t.Fatalf("vertex %v is not an in-order subsequence element", v)
		}
	}
}

func TestSimplify_LargerToleranceFewerVertices(t *testing.T) {
	c := circleContour(0, 0, 100, 360)
	fine := SimplifyContour(c, 0.001)
	coarse := SimplifyContour(c, 0.05)
	if len(coarse) >= len(fine) {
		t.Errorf("coarse tolerance kept %d vertices, fine kept %d", len(coarse), len(fine))
	}
}

func TestSimplify_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		c    Contour
		want int
	}{
		{"empty", Contour{}, 0},
		{"one point", Contour{Pt(1, 1)}, 1},
		{"two points", Contour{Pt(1, 1), Pt(4, 5)}, 2},
		{"coincident points", Contour{Pt(2, 2), Pt(2, 2), Pt(2, 2)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyContour(tt.c, DefaultSimplifyRatio)
			if len(got) != tt.want {
				t.Errorf("got %d vertices, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMinEnclosingCircle(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-6)

	tests := []struct {
		name string
		pts  []Point
		want Circle
	}{
		{"empty", nil, Circle{}},
		{"single", []Point{Pt(3, 4)}, Circle{Center: Pt(3, 4)}},
		{"pair", []Point{Pt(0, 0), Pt(10, 0)}, Circle{Center: Pt(5, 0), Radius: 5}},
		{"right triangle", []Point{Pt(0, 0), Pt(6, 0), Pt(0, 8)}, Circle{Center: Pt(3, 4), Radius: 5}},
		{"collinear", []Point{Pt(0, 0), Pt(5, 0), Pt(10, 0)}, Circle{Center: Pt(5, 0), Radius: 5}},
		{"square with interior point", []Point{Pt(0, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2), Pt(1, 1)},
			Circle{Center: Pt(1, 1), Radius: math.Sqrt2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinEnclosingCircle(tt.pts)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("MinEnclosingCircle mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMinEnclosingCircle_RegularHexagon(t *testing.T) {
	hex := circleContour(200, 150, 40, 6)
	got := MinEnclosingCircle(hex)

	if math.Abs(got.Radius-40) > 1e-6 {
		t.Errorf("Radius: got %v, want 40", got.Radius)
	}
	if Distance(got.Center, Pt(200, 150)) > 1e-6 {
		t.Errorf("Center: got %v, want (200,150)", got.Center)
	}
	for _, p := range hex {
		if !got.Contains(p) {
			t.Errorf("point %v outside enclosing circle", p)
		}
	}
}
