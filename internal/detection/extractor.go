package detection

import (
	"image"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// Extractor turns a photo into the external contours of the objects on it.
type Extractor interface {
	Extract(img image.Image) ([]geometry.Contour, error)

	// Backend names the implementation, "raster" or "opencv".
	Backend() string
}

// RasterExtractor is the pure Go Extractor: Preprocess followed by
// FindContours.
type RasterExtractor struct {
	opts Options
}

// NewRasterExtractor validates opts and returns a RasterExtractor.
func NewRasterExtractor(opts Options) (*RasterExtractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &RasterExtractor{opts: opts}, nil
}

// Extract implements Extractor.
func (e *RasterExtractor) Extract(img image.Image) ([]geometry.Contour, error) {
	mask, err := Preprocess(img, e.opts)
	if err != nil {
		return nil, err
	}
	contours := FindContours(mask)

	// Masks are rebased to (0,0); move contours back onto the source image.
	if off := img.Bounds().Min; off != (image.Point{}) {
		shift := geometry.FromImagePoint(off)
		for _, c := range contours {
			for i := range c {
				c[i] = c[i].Add(shift)
			}
		}
	}
	return contours, nil
}

// Backend implements Extractor.
func (e *RasterExtractor) Backend() string { return "raster" }
