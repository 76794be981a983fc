package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
	"github.com/ironsheep/shape-measure-mcp/internal/measure"
)

// Overlay palette.
var (
	ReferenceColor = colorful.Color{R: 1, G: 1, B: 0} // reference outline and label
	ContourColor   = colorful.Color{R: 1, G: 0, B: 0} // every other outline
	ShapeColor     = colorful.Color{R: 1, G: 0, B: 0} // shape names
	VertexColor    = colorful.Color{R: 0, G: 0, B: 1} // polygon vertex dots
	LabelColor     = colorful.Color{R: 1, G: 1, B: 0} // lengths and radii
)

// Label offsets, in pixels, relative to the anchor they describe.
var (
	EdgeLabelOffset      = image.Pt(-10, -10)
	ReferenceLabelOffset = image.Pt(-140, 0)
)

const (
	glyphWidth  = 7
	glyphHeight = 13
)

// Overlay is everything drawn on top of an analysed photo.
type Overlay struct {
	Contours       []geometry.Contour
	ReferenceIndex int
	Records        []measure.Record

	// Thickness is the outline width in pixels. Zero means 3.
	Thickness int

	// TextScale enlarges the 7x13 bitmap font. Zero means 1.
	TextScale int
}

// OverlayFromSession collects the contours and records of a session.
func OverlayFromSession(s *measure.Session) Overlay {
	return Overlay{
		Contours:       s.Contours(),
		ReferenceIndex: s.ReferenceIndex(),
		Records:        s.Records(),
	}
}

// Annotate returns a copy of img with the overlay drawn on it. img is not
// modified.
//
// Every contour is outlined, the reference in ReferenceColor and the rest in
// ContourColor, and the reference is labelled "Reference" to the left of its
// first point. For each record the shape name is written at the first polygon
// vertex. Polygons get a dot on each vertex and a length label offset from
// every edge midpoint; circles get a radius label at their center.
//
// Overlay coordinates are in img's coordinate space. The result has its
// origin at (0,0), so everything is shifted by img.Bounds().Min.
func Annotate(img image.Image, ov Overlay) *image.NRGBA {
	dst := imaging.Clone(img)
	origin := img.Bounds().Min
	toCanvas := func(p geometry.Point) image.Point {
		return p.ImagePoint().Sub(origin)
	}

	thickness := ov.Thickness
	if thickness <= 0 {
		thickness = 3
	}
	scale := ov.TextScale
	if scale <= 0 {
		scale = 1
	}

	for i, c := range ov.Contours {
		col := ContourColor
		if i == ov.ReferenceIndex {
			col = ReferenceColor
		}
		drawContour(dst, c, origin, thickness, nrgba(col))
	}

	if ov.ReferenceIndex >= 0 && ov.ReferenceIndex < len(ov.Contours) && len(ov.Contours[ov.ReferenceIndex]) > 0 {
		at := toCanvas(ov.Contours[ov.ReferenceIndex][0]).Add(ReferenceLabelOffset)
		drawLabel(dst, at, "Reference", scale, nrgba(ReferenceColor))
	}

	for _, rec := range ov.Records {
		if len(rec.Polygon) == 0 {
			continue
		}
		drawLabel(dst, toCanvas(rec.Polygon[0]), rec.Category.String(), scale, nrgba(ShapeColor))

		if rec.Category.IsPolygon() {
			for _, v := range rec.Polygon {
				fillDisc(dst, toCanvas(v), 3, nrgba(VertexColor))
			}
		}
		for _, m := range rec.Measurements {
			at := toCanvas(m.Anchor)
			if m.Kind == measure.KindEdge {
				at = at.Add(EdgeLabelOffset)
			}
			drawLabel(dst, at, m.Label, scale, nrgba(LabelColor))
		}
	}

	return dst
}

func nrgba(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// drawContour strokes the closed contour with a square brush, shifting every
// point by -origin.
func drawContour(img *image.NRGBA, c geometry.Contour, origin image.Point, thickness int, col color.NRGBA) {
	for i := range c {
		a := c[i].ImagePoint().Sub(origin)
		b := c[(i+1)%len(c)].ImagePoint().Sub(origin)
		drawLine(img, a, b, thickness, col)
	}
}

// drawLine rasterises a segment with Bresenham's algorithm, stamping a
// thickness-sized square at every step.
func drawLine(img *image.NRGBA, a, b image.Point, thickness int, col color.NRGBA) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		stamp(img, x, y, thickness, col)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func stamp(img *image.NRGBA, cx, cy, size int, col color.NRGBA) {
	lo := -(size - 1) / 2
	for y := cy + lo; y < cy+lo+size; y++ {
		for x := cx + lo; x < cx+lo+size; x++ {
			if (image.Point{X: x, Y: y}).In(img.Rect) {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}

func fillDisc(img *image.NRGBA, c image.Point, r int, col color.NRGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			p := image.Pt(c.X+x, c.Y+y)
			if x*x+y*y <= r*r && p.In(img.Rect) {
				img.SetNRGBA(p.X, p.Y, col)
			}
		}
	}
}

// drawLabel writes text with its baseline starting at the given point. Scales
// above 1 render the text once and enlarge it with nearest-neighbour
// resampling.
func drawLabel(img *image.NRGBA, at image.Point, text string, scale int, col color.NRGBA) {
	if text == "" {
		return
	}
	if scale == 1 {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(col),
			Face: basicfont.Face7x13,
			Dot:  fixed.Point26_6{X: fixed.I(at.X), Y: fixed.I(at.Y)},
		}
		d.DrawString(text)
		return
	}

	ascent := basicfont.Face7x13.Ascent
	glyphs := image.NewNRGBA(image.Rect(0, 0, len(text)*glyphWidth, glyphHeight))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)

	big := imaging.Resize(glyphs, glyphs.Rect.Dx()*scale, glyphs.Rect.Dy()*scale, imaging.NearestNeighbor)
	topLeft := image.Pt(at.X, at.Y-ascent*scale)
	draw.Draw(img, big.Rect.Add(topLeft), big, image.Point{}, draw.Over)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
