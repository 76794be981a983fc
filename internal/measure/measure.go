package measure

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
	"github.com/ironsheep/shape-measure-mcp/internal/shape"
)

var (
	// ErrInvalidReference is returned when the reference index is out of
	// range or the reference area is not a positive finite number.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrNoContours is returned when a reference must be chosen from an empty
	// contour set.
	ErrNoContours = errors.New("no contours")
)

// Default measurement parameters. The pixel thresholds are tuned for photos
// roughly 1000-3000 pixels across.
const (
	DefaultReferenceSizeMM = 5.0
	DefaultMinArea         = 500.0
	DefaultMinAreaRatio    = 0.1
)

// Params controls calibration and filtering.
type Params struct {
	// ReferenceSizeMM is the physical size of the reference object. The scale
	// is ReferenceSizeMM / sqrt(reference pixel area).
	ReferenceSizeMM float64 `json:"reference_size_mm"`

	// SideTolerance is passed to the shape classifier, in pixels.
	SideTolerance float64 `json:"side_tolerance_px"`

	// MinArea is the smallest raw contour area, in square pixels, measured.
	MinArea float64 `json:"min_area_px"`

	// MinAreaRatio is the smallest contour/reference area ratio measured.
	MinAreaRatio float64 `json:"min_area_ratio"`

	// StopAtReference ends the pass when the reference contour is reached
	// instead of skipping it, dropping every later candidate.
	StopAtReference bool `json:"stop_at_reference"`
}

// DefaultParams returns the stock calibration parameters.
func DefaultParams() Params {
	return Params{
		ReferenceSizeMM: DefaultReferenceSizeMM,
		SideTolerance:   shape.DefaultSideTolerance,
		MinArea:         DefaultMinArea,
		MinAreaRatio:    DefaultMinAreaRatio,
	}
}

// Kind distinguishes edge measurements from radius measurements.
type Kind string

const (
	KindEdge   Kind = "edge"
	KindRadius Kind = "radius"
)

// Measurement is one calibrated length.
type Measurement struct {
	Kind        Kind    `json:"kind"`
	Pixels      float64 `json:"pixels"`
	Millimeters float64 `json:"millimeters"`

	// Anchor is where the label belongs: the edge midpoint or circle center.
	Anchor geometry.Point `json:"anchor"`

	// Label is the display text, e.g. "3.0 mm" or "R=4.0 mm".
	Label string `json:"label"`

	// From and To are the edge endpoints; unset for radius measurements.
	From *geometry.Point `json:"from,omitempty"`
	To   *geometry.Point `json:"to,omitempty"`
}

// Record is the classification and measurements of one candidate contour.
type Record struct {
	// Index identifies the candidate in the input list.
	Index    int              `json:"index"`
	Category shape.Category   `json:"category"`
	Polygon  geometry.Polygon `json:"polygon"`

	// AreaPixels is the pixel area of the raw contour.
	AreaPixels float64 `json:"area_px"`

	Measurements []Measurement `json:"measurements"`

	// Circle is the enclosing circle in pixels, set for circles only.
	Circle *geometry.Circle `json:"circle,omitempty"`

	// FillColor is an optional hex color sampled inside the shape.
	FillColor string `json:"fill_color,omitempty"`
}

// Candidate pairs a raw contour with its simplified polygon.
type Candidate struct {
	Raw        geometry.Contour
	Simplified geometry.Polygon
}

// Scale returns the millimeters-per-pixel factor for a reference of the given
// physical size and pixel area.
func Scale(referenceSizeMM, referenceArea float64) (float64, error) {
	if !(referenceSizeMM > 0) || math.IsInf(referenceSizeMM, 0) {
		return 0, fmt.Errorf("%w: size %v mm", ErrInvalidReference, referenceSizeMM)
	}
	if !validArea(referenceArea) {
		return 0, fmt.Errorf("%w: area %v", ErrInvalidReference, referenceArea)
	}
	return referenceSizeMM / math.Sqrt(referenceArea), nil
}

func validArea(a float64) bool {
	return a > 0 && !math.IsInf(a, 0) && !math.IsNaN(a)
}

// Measurer classifies and measures candidates against a reference. It holds
// no per-call state and may be used concurrently.
type Measurer struct {
	params     Params
	classifier shape.Classifier
}

// NewMeasurer creates a Measurer. p is used as given: a zero MinArea or
// MinAreaRatio disables that filter and a zero SideTolerance classifies every
// quadrilateral as a rectangle. Start from DefaultParams for stock values.
func NewMeasurer(p Params) *Measurer {
	return &Measurer{
		params:     p,
		classifier: shape.Classifier{SideTolerance: p.SideTolerance},
	}
}

// Params returns the effective parameters.
func (m *Measurer) Params() Params {
	return m.params
}

// Measure classifies and measures every candidate except the reference.
//
// referenceArea is the pixel area of the reference's raw contour. Candidates
// are processed in input order; those below MinArea or MinAreaRatio are
// skipped silently. The reference itself is skipped, or ends the pass when
// StopAtReference is set.
//
// An empty candidate list returns an empty result. A reference index out of
// range or a non-positive reference area returns ErrInvalidReference.
func (m *Measurer) Measure(candidates []Candidate, referenceIndex int, referenceArea float64) ([]Record, error) {
	if len(candidates) == 0 {
		return []Record{}, nil
	}
	if referenceIndex < 0 || referenceIndex >= len(candidates) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidReference, referenceIndex, len(candidates))
	}
	scale, err := Scale(m.params.ReferenceSizeMM, referenceArea)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(candidates))
	for j, cand := range candidates {
		area := geometry.Area(cand.Raw)
		if area < m.params.MinArea {
			continue
		}
		if area/referenceArea < m.params.MinAreaRatio {
			continue
		}
		if j == referenceIndex {
			if m.params.StopAtReference {
				break
			}
			continue
		}

		records = append(records, m.measureOne(j, cand, area, scale))
	}
	return records, nil
}

func (m *Measurer) measureOne(index int, cand Candidate, area, scale float64) Record {
	poly := make(geometry.Polygon, len(cand.Simplified))
	copy(poly, cand.Simplified)

	rec := Record{
		Index:        index,
		Category:     m.classifier.Classify(poly),
		Polygon:      poly,
		AreaPixels:   area,
		Measurements: []Measurement{},
	}

	switch {
	case rec.Category.IsPolygon():
		for i := range poly {
			from, to := poly.Edge(i)
			px := geometry.Distance(from, to)
			mm := px * scale
			rec.Measurements = append(rec.Measurements, Measurement{
				Kind:        KindEdge,
				Pixels:      px,
				Millimeters: mm,
				Anchor:      geometry.Midpoint(from, to),
				Label:       fmt.Sprintf("%.1f mm", mm),
				From:        &from,
				To:          &to,
			})
		}
	case rec.Category == shape.Circle:
		c := geometry.MinEnclosingCircle(poly)
		mm := c.Radius * scale
		rec.Circle = &c
		rec.Measurements = append(rec.Measurements, Measurement{
			Kind:        KindRadius,
			Pixels:      c.Radius,
			Millimeters: mm,
			Anchor:      c.Center,
			Label:       fmt.Sprintf("R=%.1f mm", mm),
		})
	}
	return rec
}
