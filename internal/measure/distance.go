package measure

import (
	"fmt"
	"math"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// DistanceResult is a calibrated point-to-point measurement.
type DistanceResult struct {
	Pixels       float64 `json:"distance_pixels"`
	Millimeters  float64 `json:"distance_mm"`
	DeltaX       float64 `json:"delta_x"`
	DeltaY       float64 `json:"delta_y"`
	AngleDegrees float64 `json:"angle_degrees"` // 0 is rightward, 90 downward
	Label        string  `json:"label"`
}

// Distance measures the straight line from a to b using the session's scale.
func (s *Session) Distance(a, b geometry.Point) DistanceResult {
	d := b.Sub(a)
	px := geometry.Distance(a, b)
	mm := px * s.scale
	return DistanceResult{
		Pixels:       math.Round(px*100) / 100,
		Millimeters:  math.Round(mm*1000) / 1000,
		DeltaX:       d.X,
		DeltaY:       d.Y,
		AngleDegrees: math.Round(math.Atan2(d.Y, d.X)*180/math.Pi*10) / 10,
		Label:        fmt.Sprintf("%.1f mm", mm),
	}
}
