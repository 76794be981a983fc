// Package shape classifies simplified polygons into the shape categories the
// measurer knows how to report.
//
// Classification works on vertex count and, for quadrilaterals, on the spread
// between the longest and shortest side. It runs in pixel space before any
// calibration, so the side tolerance is resolution-relative: the same physical
// object photographed from further away needs a smaller tolerance.
package shape

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// Category is the shape assigned to a simplified polygon.
type Category int

const (
	// Unknown is assigned to degenerate polygons with fewer than three vertices.
	Unknown Category = iota
	Triangle
	Square
	Rectangle
	Circle
)

// DefaultSideTolerance is the maximum difference, in pixels, between the
// longest and shortest side for a quadrilateral to count as a square.
const DefaultSideTolerance = 20.0

var categoryNames = [...]string{
	Unknown:   "unknown",
	Triangle:  "triangle",
	Square:    "square",
	Rectangle: "rectangle",
	Circle:    "circle",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// IsPolygon reports whether measurements for c are taken edge by edge.
func (c Category) IsPolygon() bool {
	return c == Triangle || c == Square || c == Rectangle
}

// MarshalJSON encodes the category as its name.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a category name.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory returns the category with the given name.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown shape category: %q", s)
}

// Classifier assigns categories to simplified polygons.
type Classifier struct {
	// SideTolerance is the max-min side spread, in pixels, below which a
	// quadrilateral is a square. Zero admits no squares.
	SideTolerance float64
}

// Classify returns the category of p:
//   - 3 vertices: Triangle
//   - 4 vertices: Square when max side - min side < SideTolerance, else Rectangle
//   - more than 4 vertices: Circle
//   - fewer than 3 vertices: Unknown
func (c Classifier) Classify(p geometry.Polygon) Category {
	switch n := len(p); {
	case n == 3:
		return Triangle
	case n == 4:
		lengths := p.EdgeLengths()
		minSide, maxSide := lengths[0], lengths[0]
		for _, l := range lengths[1:] {
			minSide = min(minSide, l)
			maxSide = max(maxSide, l)
		}
		if maxSide-minSide < c.SideTolerance {
			return Square
		}
		return Rectangle
	case n > 4:
		return Circle
	default:
		return Unknown
	}
}

// Classify classifies p with the default side tolerance.
func Classify(p geometry.Polygon) Category {
	return Classifier{SideTolerance: DefaultSideTolerance}.Classify(p)
}
