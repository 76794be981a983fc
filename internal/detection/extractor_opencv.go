//go:build opencv

package detection

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// NewExtractor returns the OpenCV backed Extractor when built with the
// opencv tag.
func NewExtractor(opts Options) (Extractor, error) {
	return NewOpenCVExtractor(opts)
}

// OpenCVExtractor runs the same pipeline as RasterExtractor on gocv.
type OpenCVExtractor struct {
	opts Options
}

// NewOpenCVExtractor validates opts and returns an OpenCVExtractor.
func NewOpenCVExtractor(opts Options) (*OpenCVExtractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &OpenCVExtractor{opts: opts}, nil
}

// Backend implements Extractor.
func (e *OpenCVExtractor) Backend() string { return "opencv" }

// Extract implements Extractor.
func (e *OpenCVExtractor) Extract(img image.Image) ([]geometry.Contour, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, fmt.Errorf("input Mat is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	if e.opts.BlurSigma > 0 {
		gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), e.opts.BlurSigma, 0, gocv.BorderDefault)
	} else {
		gray.CopyTo(&blurred)
	}

	mask := gocv.NewMat()
	defer mask.Close()

	switch e.opts.Mode {
	case ModeThreshold:
		gocv.Threshold(blurred, &mask, float32(e.opts.ThresholdLevel)-1, 255, gocv.ThresholdBinaryInv)
	default:
		edges := gocv.NewMat()
		defer edges.Close()
		gocv.Canny(blurred, &edges, float32(e.opts.CannyLow), float32(e.opts.CannyHigh))

		if e.opts.DilateRadius > 0 {
			size := 2*int(math.Ceil(e.opts.DilateRadius)) + 1
			kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
			defer kernel.Close()

			dilated := gocv.NewMat()
			defer dilated.Close()
			gocv.Dilate(edges, &dilated, kernel)
			gocv.MorphologyEx(dilated, &mask, gocv.MorphClose, kernel)
		} else {
			edges.CopyTo(&mask)
		}
	}

	found := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	off := img.Bounds().Min
	contours := make([]geometry.Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pv := found.At(i)
		pts := pv.ToPoints()
		for j := range pts {
			pts[j] = pts[j].Add(off)
		}
		contours = append(contours, geometry.FromImagePoints(pts))
	}
	return contours, nil
}
