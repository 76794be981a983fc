package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// ErrEmptyRegion is returned when a region to average covers no pixels.
var ErrEmptyRegion = errors.New("region covers no pixels")

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex"` // "#RRGGBB", alpha excluded
	RGB RGBColor `json:"rgb"`
	HSL HSLColor `json:"hsl"`
}

func newColorResult(c colorful.Color) *ColorResult {
	c = c.Clamped()
	r, g, b := c.RGB255()
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return &ColorResult{
		Hex: strings.ToUpper(c.Hex()),
		RGB: RGBColor{R: r, G: g, B: b},
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
}

// SampleColor returns the color of the pixel at (x, y).
//
// Coordinates are 0-based with the origin at the top-left corner. Fully
// transparent pixels are reported as black.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	c, _ := colorful.MakeColor(img.At(x, y))
	return newColorResult(c), nil
}

// MeanColor averages, in linear RGB, every pixel whose position lies inside
// the contour. It is used to report the fill color of a measured object.
func MeanColor(img image.Image, c geometry.Contour) (*ColorResult, error) {
	area := geometry.Bounds(c).Intersect(img.Bounds())

	var sr, sg, sb float64
	n := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if !geometry.Contains(c, geometry.Pt(float64(x), float64(y))) {
				continue
			}
			px, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			r, g, b := px.LinearRgb()
			sr += r
			sg += g
			sb += b
			n++
		}
	}
	if n == 0 {
		return nil, ErrEmptyRegion
	}

	k := float64(n)
	return newColorResult(colorful.LinearRgb(sr/k, sg/k, sb/k)), nil
}
