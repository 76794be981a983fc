package measure

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// Selector picks the reference contour for an image.
type Selector interface {
	SelectReference(contours []geometry.Contour) (int, error)
}

// Corner names accepted by CornerPoint.
const (
	CornerTopLeft     = "top-left"
	CornerTopRight    = "top-right"
	CornerBottomLeft  = "bottom-left"
	CornerBottomRight = "bottom-right"
)

// CornerPoint returns the pixel position of the named corner of bounds. The
// right and bottom corners sit on the exclusive Max edge, so top-right of a
// 640x480 image is (640, 0).
func CornerPoint(bounds image.Rectangle, name string) (geometry.Point, error) {
	switch name {
	case CornerTopLeft:
		return geometry.FromImagePoint(bounds.Min), nil
	case CornerTopRight, "":
		return geometry.Pt(float64(bounds.Max.X), float64(bounds.Min.Y)), nil
	case CornerBottomLeft:
		return geometry.Pt(float64(bounds.Min.X), float64(bounds.Max.Y)), nil
	case CornerBottomRight:
		return geometry.FromImagePoint(bounds.Max), nil
	default:
		return geometry.Point{}, fmt.Errorf("unknown corner: %s", name)
	}
}

// NearestCorner selects the contour owning the boundary point closest to
// Corner. When two contours tie, the earlier one wins.
type NearestCorner struct {
	Corner geometry.Point
}

// SelectReference implements Selector.
func (s NearestCorner) SelectReference(contours []geometry.Contour) (int, error) {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range contours {
		for _, p := range c {
			if d := geometry.Distance(p, s.Corner); d < bestDist {
				bestDist = d
				best = i
			}
		}
	}
	if best < 0 {
		return 0, ErrNoContours
	}
	return best, nil
}

// LargestArea selects the contour enclosing the largest area.
type LargestArea struct{}

// SelectReference implements Selector.
func (LargestArea) SelectReference(contours []geometry.Contour) (int, error) {
	if len(contours) == 0 {
		return 0, ErrNoContours
	}
	best := 0
	bestArea := geometry.Area(contours[0])
	for i, c := range contours[1:] {
		if a := geometry.Area(c); a > bestArea {
			bestArea = a
			best = i + 1
		}
	}
	return best, nil
}

// Fixed always selects the same index. It is useful when the caller already
// knows which contour is the reference.
type Fixed int

// SelectReference implements Selector.
func (f Fixed) SelectReference(contours []geometry.Contour) (int, error) {
	if len(contours) == 0 {
		return 0, ErrNoContours
	}
	if int(f) < 0 || int(f) >= len(contours) {
		return 0, fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidReference, int(f), len(contours))
	}
	return int(f), nil
}
