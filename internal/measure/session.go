package measure

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// SessionOptions configures NewSession.
type SessionOptions struct {
	// Name identifies the image, typically its path.
	Name string

	// Bounds are the image bounds the contours were extracted from.
	Bounds image.Rectangle

	// SimplifyRatio is the Douglas-Peucker tolerance as a fraction of the
	// perimeter. Zero means geometry.DefaultSimplifyRatio.
	SimplifyRatio float64

	// Selector chooses the reference. Nil means the contour nearest the
	// top-right corner of Bounds.
	Selector Selector
}

// Session holds everything derived from one image. It is immutable: every
// accessor returns a copy, and a new image means a new Session.
type Session struct {
	id             string
	name           string
	bounds         image.Rectangle
	contours       []geometry.Contour
	polygons       []geometry.Polygon
	referenceIndex int
	referenceArea  float64
	scale          float64
	params         Params
	records        []Record
}

// NewSession simplifies the contours, selects the reference, derives the
// scale and measures every candidate.
func NewSession(m *Measurer, contours []geometry.Contour, opts SessionOptions) (*Session, error) {
	if len(contours) == 0 {
		return nil, ErrNoContours
	}

	ratio := opts.SimplifyRatio
	if ratio == 0 {
		ratio = geometry.DefaultSimplifyRatio
	}

	selector := opts.Selector
	if selector == nil {
		corner, err := CornerPoint(opts.Bounds, CornerTopRight)
		if err != nil {
			return nil, err
		}
		selector = NearestCorner{Corner: corner}
	}

	owned := make([]geometry.Contour, len(contours))
	candidates := make([]Candidate, len(contours))
	polygons := make([]geometry.Polygon, len(contours))
	for i, c := range contours {
		owned[i] = append(geometry.Contour(nil), c...)
		polygons[i] = geometry.SimplifyContour(owned[i], ratio)
		candidates[i] = Candidate{Raw: owned[i], Simplified: polygons[i]}
	}

	refIndex, err := selector.SelectReference(owned)
	if err != nil {
		return nil, fmt.Errorf("failed to select reference: %w", err)
	}
	if refIndex < 0 || refIndex >= len(owned) {
		return nil, fmt.Errorf("%w: selector returned index %d", ErrInvalidReference, refIndex)
	}

	refArea := geometry.Area(owned[refIndex])
	scale, err := Scale(m.params.ReferenceSizeMM, refArea)
	if err != nil {
		return nil, fmt.Errorf("reference contour %d: %w", refIndex, err)
	}

	records, err := m.Measure(candidates, refIndex, refArea)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:             uuid.NewString(),
		name:           opts.Name,
		bounds:         opts.Bounds,
		contours:       owned,
		polygons:       polygons,
		referenceIndex: refIndex,
		referenceArea:  refArea,
		scale:          scale,
		params:         m.params,
		records:        records,
	}, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Name returns the image name the session was built from.
func (s *Session) Name() string { return s.name }

// Bounds returns the source image bounds.
func (s *Session) Bounds() image.Rectangle { return s.bounds }

// ReferenceIndex returns the index of the reference contour.
func (s *Session) ReferenceIndex() int { return s.referenceIndex }

// ReferenceArea returns the pixel area of the reference contour.
func (s *Session) ReferenceArea() float64 { return s.referenceArea }

// Scale returns millimeters per pixel.
func (s *Session) Scale() float64 { return s.scale }

// Params returns the measurement parameters in effect.
func (s *Session) Params() Params { return s.params }

// ContourCount returns the number of raw contours.
func (s *Session) ContourCount() int { return len(s.contours) }

// Contours returns a copy of the raw contours.
func (s *Session) Contours() []geometry.Contour {
	out := make([]geometry.Contour, len(s.contours))
	for i, c := range s.contours {
		out[i] = append(geometry.Contour(nil), c...)
	}
	return out
}

// Polygons returns a copy of the simplified polygons, parallel to Contours.
func (s *Session) Polygons() []geometry.Polygon {
	out := make([]geometry.Polygon, len(s.polygons))
	for i, p := range s.polygons {
		out[i] = append(geometry.Polygon(nil), p...)
	}
	return out
}

// Records returns a copy of the measurement records.
func (s *Session) Records() []Record {
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = cloneRecord(r)
	}
	return out
}

// WithFillColors returns a copy of s whose records carry the given fill
// colors, keyed by contour index. s is left unchanged.
func (s *Session) WithFillColors(colors map[int]string) *Session {
	next := *s
	next.records = s.Records()
	for i := range next.records {
		if c, ok := colors[next.records[i].Index]; ok {
			next.records[i].FillColor = c
		}
	}
	return &next
}

// Summary is the JSON form of a Session.
type Summary struct {
	ID              string   `json:"session_id"`
	Name            string   `json:"name,omitempty"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	ContourCount    int      `json:"contour_count"`
	ReferenceIndex  int      `json:"reference_index"`
	ReferenceAreaPx float64  `json:"reference_area_px"`
	ReferenceSizeMM float64  `json:"reference_size_mm"`
	ScaleMMPerPixel float64  `json:"scale_mm_per_px"`
	Records         []Record `json:"records"`
}

// Summary returns a serializable snapshot of the session.
func (s *Session) Summary() Summary {
	return Summary{
		ID:              s.id,
		Name:            s.name,
		Width:           s.bounds.Dx(),
		Height:          s.bounds.Dy(),
		ContourCount:    len(s.contours),
		ReferenceIndex:  s.referenceIndex,
		ReferenceAreaPx: s.referenceArea,
		ReferenceSizeMM: s.params.ReferenceSizeMM,
		ScaleMMPerPixel: s.scale,
		Records:         s.Records(),
	}
}

func cloneRecord(r Record) Record {
	out := r
	out.Polygon = append(geometry.Polygon(nil), r.Polygon...)
	out.Measurements = make([]Measurement, len(r.Measurements))
	for i, m := range r.Measurements {
		out.Measurements[i] = m
		if m.From != nil {
			from := *m.From
			out.Measurements[i].From = &from
		}
		if m.To != nil {
			to := *m.To
			out.Measurements[i].To = &to
		}
	}
	if r.Circle != nil {
		c := *r.Circle
		out.Circle = &c
	}
	return out
}
