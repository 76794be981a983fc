package measure

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
	"github.com/ironsheep/shape-measure-mcp/internal/shape"
)

// square returns an axis-aligned square polygon with its top-left at (x, y).
func square(x, y, side float64) geometry.Polygon {
	return geometry.Polygon{
		geometry.Pt(x, y),
		geometry.Pt(x+side, y),
		geometry.Pt(x+side, y+side),
		geometry.Pt(x, y+side),
	}
}

func rect(x, y, w, h float64) geometry.Polygon {
	return geometry.Polygon{
		geometry.Pt(x, y),
		geometry.Pt(x+w, y),
		geometry.Pt(x+w, y+h),
		geometry.Pt(x, y+h),
	}
}

func regular(cx, cy, r float64, n int) geometry.Polygon {
	p := make(geometry.Polygon, n)
	for i := range p {
		a := 2 * math.Pi * float64(i) / float64(n)
		p[i] = geometry.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	return p
}

// candidate uses the same polygon as raw contour and simplification.
func candidate(p geometry.Polygon) Candidate {
	return Candidate{Raw: geometry.Contour(p), Simplified: p}
}

func TestMeasure_SquareScenario(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	candidates := []Candidate{
		candidate(square(500, 0, 50)), // reference, area 2500
		candidate(square(100, 100, 30)),
	}

	records, err := m.Measure(candidates, 0, 2500)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 1, rec.Index)
	assert.Equal(t, shape.Square, rec.Category)
	assert.InDelta(t, 900, rec.AreaPixels, 1e-9)
	require.Len(t, rec.Measurements, 4)
	for _, meas := range rec.Measurements {
		assert.Equal(t, KindEdge, meas.Kind)
		assert.InDelta(t, 30, meas.Pixels, 1e-9)
		assert.InDelta(t, 3.0, meas.Millimeters, 1e-9)
		assert.Equal(t, "3.0 mm", meas.Label)
		require.NotNil(t, meas.From)
		require.NotNil(t, meas.To)
		assert.Equal(t, geometry.Midpoint(*meas.From, *meas.To), meas.Anchor)
	}
	assert.Equal(t, geometry.Pt(115, 100), rec.Measurements[0].Anchor)
	assert.Nil(t, rec.Circle)
}

func TestMeasure_CircleScenario(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	candidates := []Candidate{
		candidate(regular(200, 200, 40, 8)),
		candidate(square(500, 0, 50)),
	}

	records, err := m.Measure(candidates, 1, 2500)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, shape.Circle, rec.Category)
	require.Len(t, rec.Measurements, 1)
	meas := rec.Measurements[0]
	assert.Equal(t, KindRadius, meas.Kind)
	assert.InDelta(t, 40, meas.Pixels, 1e-6)
	assert.InDelta(t, 4.0, meas.Millimeters, 1e-6)
	assert.Equal(t, "R=4.0 mm", meas.Label)
	assert.InDelta(t, 200, meas.Anchor.X, 1e-6)
	assert.InDelta(t, 200, meas.Anchor.Y, 1e-6)
	assert.Nil(t, meas.From)
	require.NotNil(t, rec.Circle)
	assert.InDelta(t, 40, rec.Circle.Radius, 1e-6)
}

func TestMeasure_TriangleAndRectangle(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	tri := geometry.Polygon{geometry.Pt(0, 0), geometry.Pt(60, 0), geometry.Pt(0, 80)}
	candidates := []Candidate{
		candidate(square(500, 0, 50)),
		candidate(tri),
		candidate(rect(100, 100, 100, 30)),
	}

	records, err := m.Measure(candidates, 0, 2500)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, shape.Triangle, records[0].Category)
	got := make([]float64, 0, 3)
	for _, meas := range records[0].Measurements {
		got = append(got, math.Round(meas.Millimeters*1000)/1000)
	}
	assert.Equal(t, []float64{6, 10, 8}, got)

	assert.Equal(t, shape.Rectangle, records[1].Category)
	assert.Len(t, records[1].Measurements, 4)
	assert.Equal(t, "10.0 mm", records[1].Measurements[0].Label)
	assert.Equal(t, "3.0 mm", records[1].Measurements[1].Label)
}

func TestMeasure_SizeFilters(t *testing.T) {
	m := NewMeasurer(DefaultParams())

	tests := []struct {
		name    string
		cand    Candidate
		refArea float64
		want    int
	}{
		{"tiny area", candidate(square(0, 0, math.Sqrt(10))), 2500, 0},
		{"below absolute floor", candidate(square(0, 0, 22)), 2500, 0}, // 484 px²
		{"at absolute floor", candidate(rect(0, 0, 25, 20)), 2500, 1},   // 500 px²
		{"below ratio floor", candidate(square(0, 0, 30)), 10000, 0},    // 900/10000 = 0.09
		{"at ratio floor", candidate(square(0, 0, 30)), 9000, 1},        // 900/9000 = 0.1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := candidate(square(900, 0, math.Sqrt(tt.refArea)))
			records, err := m.Measure([]Candidate{tt.cand, ref}, 1, tt.refArea)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestMeasure_ReferenceIsNeverMeasured(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	candidates := []Candidate{
		candidate(square(0, 0, 40)),
		candidate(square(500, 0, 50)),
		candidate(square(100, 100, 45)),
	}

	records, err := m.Measure(candidates, 1, 2500)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].Index)
	assert.Equal(t, 2, records[1].Index)
}

func TestMeasure_StopAtReference(t *testing.T) {
	p := DefaultParams()
	p.StopAtReference = true
	m := NewMeasurer(p)
	candidates := []Candidate{
		candidate(square(0, 0, 40)),
		candidate(square(500, 0, 50)),
		candidate(square(100, 100, 45)),
	}

	records, err := m.Measure(candidates, 1, 2500)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Index)
}

func TestMeasure_StopAtReferenceIgnoresFilteredReference(t *testing.T) {
	p := DefaultParams()
	p.StopAtReference = true
	m := NewMeasurer(p)

	// The reference is below MinArea, so it is filtered before the stop check.
	candidates := []Candidate{
		candidate(square(0, 0, 10)),
		candidate(square(100, 100, 30)),
	}
	records, err := m.Measure(candidates, 0, 100)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Index)
}

func TestMeasure_Empty(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	records, err := m.Measure(nil, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestMeasure_InvalidReference(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	candidates := []Candidate{candidate(square(0, 0, 30)), candidate(square(100, 0, 50))}

	tests := []struct {
		name    string
		index   int
		refArea float64
	}{
		{"negative index", -1, 2500},
		{"index past end", 2, 2500},
		{"zero area", 1, 0},
		{"negative area", 1, -5},
		{"NaN area", 1, math.NaN()},
		{"infinite area", 1, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := m.Measure(candidates, tt.index, tt.refArea)
			require.ErrorIs(t, err, ErrInvalidReference)
			assert.Nil(t, records)
		})
	}
}

func TestMeasure_DegenerateSimplificationIsUnknown(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	raw := geometry.Contour(square(0, 0, 40))
	candidates := []Candidate{
		{Raw: raw, Simplified: geometry.Polygon{geometry.Pt(0, 0), geometry.Pt(40, 40)}},
		candidate(square(500, 0, 50)),
	}

	records, err := m.Measure(candidates, 1, 2500)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, shape.Unknown, records[0].Category)
	assert.Empty(t, records[0].Measurements)
}

func TestMeasure_ScaleRelationship(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	measureEdge := func(side, refArea float64) float64 {
		t.Helper()
		records, err := m.Measure([]Candidate{
			candidate(square(0, 0, side)),
			candidate(square(1000, 0, math.Sqrt(refArea))),
		}, 1, refArea)
		require.NoError(t, err)
		require.Len(t, records, 1)
		return records[0].Measurements[0].Millimeters
	}

	base := measureEdge(100, 4000)

	// Doubling the reference area while halving edges scales the result by
	// 1/(2*sqrt(2)).
	halvedDoubled := measureEdge(50, 8000)
	assert.InDelta(t, 1/(2*math.Sqrt2), halvedDoubled/base, 1e-12)

	// Quadrupling the area while halving edges leaves lengths unchanged.
	halvedQuadrupled := measureEdge(50, 16000)
	assert.InDelta(t, base, halvedQuadrupled, 1e-12)
}

func TestMeasure_Idempotent(t *testing.T) {
	m := NewMeasurer(DefaultParams())
	candidates := []Candidate{
		candidate(regular(200, 200, 40, 8)),
		candidate(square(500, 0, 50)),
		candidate(rect(100, 300, 90, 40)),
	}

	first, err := m.Measure(candidates, 1, 2500)
	require.NoError(t, err)
	second, err := m.Measure(candidates, 1, 2500)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second Measure differs (-first +second):\n%s", diff)
	}
}

func TestMeasure_CustomReferenceSize(t *testing.T) {
	p := DefaultParams()
	p.ReferenceSizeMM = 23.25 // 1 euro coin diameter
	m := NewMeasurer(p)

	records, err := m.Measure([]Candidate{
		candidate(square(0, 0, 50)),
		candidate(square(500, 0, 50)),
	}, 1, 2500)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 23.25, records[0].Measurements[0].Millimeters, 1e-9)
}

func TestNewMeasurer_KeepsExplicitZeros(t *testing.T) {
	p := Params{ReferenceSizeMM: 5}
	m := NewMeasurer(p)
	assert.Equal(t, p, m.Params())

	// With both filters disabled a 20x20 candidate against a large reference
	// is measured, and zero side tolerance makes the square a rectangle.
	records, err := m.Measure([]Candidate{
		candidate(square(0, 0, 20)),
		candidate(square(500, 0, 100)),
	}, 1, 10000)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, shape.Rectangle, records[0].Category)
	assert.Equal(t, "1.0 mm", records[0].Measurements[0].Label)
}

func TestScale(t *testing.T) {
	s, err := Scale(5, 2500)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, s, 1e-12)

	_, err = Scale(5, 0)
	assert.ErrorIs(t, err, ErrInvalidReference)

	for _, size := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err = Scale(size, 2500)
		assert.ErrorIs(t, err, ErrInvalidReference, "size %v", size)
	}
}
