// Package analysis wires detection, calibration and rendering together: one
// photo in, one measured Session (and optionally an annotated image) out.
package analysis

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog"

	"github.com/ironsheep/shape-measure-mcp/internal/config"
	"github.com/ironsheep/shape-measure-mcp/internal/detection"
	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
	"github.com/ironsheep/shape-measure-mcp/internal/imaging"
	"github.com/ironsheep/shape-measure-mcp/internal/logger"
	"github.com/ironsheep/shape-measure-mcp/internal/measure"
	"github.com/ironsheep/shape-measure-mcp/internal/shape"
)

// Analyzer measures photos with a fixed configuration. It is safe for
// concurrent use.
type Analyzer struct {
	cfg       *config.Config
	extractor detection.Extractor
	measurer  *measure.Measurer
	log       zerolog.Logger
}

// New creates an Analyzer using the extractor compiled into the binary.
func New(cfg *config.Config, log zerolog.Logger) (*Analyzer, error) {
	ex, err := detection.NewExtractor(cfg.DetectionOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	return NewWithExtractor(cfg, ex, log), nil
}

// NewWithExtractor creates an Analyzer around a caller-supplied extractor.
func NewWithExtractor(cfg *config.Config, ex detection.Extractor, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		extractor: ex,
		measurer:  measure.NewMeasurer(cfg.MeasureParams()),
		log:       logger.Component(log, "analysis"),
	}
}

// Config returns the configuration the analyzer was built with.
func (a *Analyzer) Config() *config.Config { return a.cfg }

// Backend names the contour extractor in use.
func (a *Analyzer) Backend() string { return a.extractor.Backend() }

// Analyze extracts contours from img, calibrates against the reference and
// measures everything else. Each record carries the mean color inside its
// contour. ctx is checked between pipeline stages.
func (a *Analyzer) Analyze(ctx context.Context, name string, img image.Image) (*measure.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contours, err := a.Extract(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("failed to extract contours from %s: %w", name, err)
	}
	a.log.Debug().Str("image", name).Int("contours", len(contours)).Msg("contours extracted")

	selector, err := a.cfg.Selector(img.Bounds())
	if err != nil {
		return nil, err
	}

	session, err := measure.NewSession(a.measurer, contours, measure.SessionOptions{
		Name:          name,
		Bounds:        img.Bounds(),
		SimplifyRatio: a.cfg.Measure.SimplifyRatio,
		Selector:      selector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to measure %s: %w", name, err)
	}

	colors := make(map[int]string)
	raw := session.Contours()
	for _, rec := range session.Records() {
		if c, err := imaging.MeanColor(img, raw[rec.Index]); err == nil {
			colors[rec.Index] = c.Hex
		}
	}
	session = session.WithFillColors(colors)

	a.log.Info().
		Str("image", name).
		Str("session", session.ID()).
		Int("reference", session.ReferenceIndex()).
		Float64("scale_mm_per_px", session.Scale()).
		Int("measured", len(session.Records())).
		Msg("image measured")

	return session, nil
}

// Extract runs the configured extractor on img.
func (a *Analyzer) Extract(ctx context.Context, img image.Image) ([]geometry.Contour, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	contours, err := a.extractor.Extract(img)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return contours, nil
}

// ContourInfo describes one detected contour before calibration.
type ContourInfo struct {
	Index       int              `json:"index"`
	AreaPx      float64          `json:"area_px"`
	PerimeterPx float64          `json:"perimeter_px"`
	Bounds      Box              `json:"bounds"`
	Centroid    geometry.Point   `json:"centroid"`
	Category    shape.Category   `json:"category"`
	Polygon     geometry.Polygon `json:"polygon"`
}

// Box is a pixel rectangle in JSON-friendly form.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Describe extracts, simplifies and classifies every contour in img without
// choosing a reference.
func (a *Analyzer) Describe(ctx context.Context, img image.Image) ([]ContourInfo, error) {
	contours, err := a.Extract(ctx, img)
	if err != nil {
		return nil, err
	}

	classifier := shape.Classifier{SideTolerance: a.cfg.Measure.SideTolerancePx}
	out := make([]ContourInfo, len(contours))
	for i, c := range contours {
		poly := geometry.SimplifyContour(c, a.cfg.Measure.SimplifyRatio)
		b := geometry.Bounds(c)
		out[i] = ContourInfo{
			Index:       i,
			AreaPx:      geometry.Area(c),
			PerimeterPx: math.Round(geometry.Perimeter(c)*100) / 100,
			Bounds:      Box{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()},
			Centroid:    geometry.Centroid(c),
			Category:    classifier.Classify(poly),
			Polygon:     poly,
		}
	}
	return out, nil
}

// AnalyzeFile loads path through cache and analyzes it. The decoded image is
// returned alongside the session for rendering.
func (a *Analyzer) AnalyzeFile(ctx context.Context, cache *imaging.ImageCache, path string) (*measure.Session, image.Image, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := a.Analyze(ctx, path, img)
	if err != nil {
		return nil, nil, err
	}
	return s, img, nil
}

// Annotate renders the session's overlay on top of img.
func (a *Analyzer) Annotate(img image.Image, s *measure.Session) *image.NRGBA {
	return imaging.Annotate(img, imaging.OverlayFromSession(s))
}

// Result is the outcome of MeasureFile.
type Result struct {
	measure.Summary
	Backend       string `json:"backend"`
	AnnotatedPath string `json:"annotated_path,omitempty"`
}

// MeasureFile analyzes path and, when save is set, writes the annotated
// image to the configured output location.
func (a *Analyzer) MeasureFile(ctx context.Context, cache *imaging.ImageCache, path string, save bool) (*Result, error) {
	s, img, err := a.AnalyzeFile(ctx, cache, path)
	if err != nil {
		return nil, err
	}

	res := &Result{Summary: s.Summary(), Backend: a.Backend()}
	if save {
		out := a.cfg.OutputPath(path)
		if err := imaging.Save(a.Annotate(img, s), out); err != nil {
			return nil, err
		}
		a.log.Debug().Str("image", path).Str("output", out).Msg("annotated image saved")
		res.AnnotatedPath = out
	}
	return res, nil
}
