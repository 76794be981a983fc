package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/shape-measure-mcp/internal/analysis"
	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
	"github.com/ironsheep/shape-measure-mcp/internal/imaging"
	"github.com/ironsheep/shape-measure-mcp/internal/measure"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_measure_shapes").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Color
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Detection
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	case "image_detect_contours":
		return s.handleImageDetectContours(ctx, args)

	// Measurement
	case "image_measure_shapes":
		return s.handleImageMeasureShapes(ctx, args)
	case "image_annotate_shapes":
		return s.handleImageAnnotateShapes(ctx, args)
	case "image_crop_shape":
		return s.handleImageCropShape(ctx, args)
	case "image_measure_distance":
		return s.handleImageMeasureDistance(ctx, args)

	// Playlist
	case "playlist_open":
		return s.handlePlaylistOpen(ctx, args)
	case "playlist_next":
		return s.handlePlaylistNext(ctx)
	case "playlist_current":
		return s.handlePlaylistCurrent()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// session measures path, or returns the current playlist session when path
// is empty.
func (s *Server) session(ctx context.Context, path string) (*measure.Session, image.Image, error) {
	if path == "" {
		st, err := s.playlist.Current()
		if err != nil {
			return nil, nil, fmt.Errorf("no path given and %w", err)
		}
		return st.Session, st.Image, nil
	}
	return s.analyzer.AnalyzeFile(ctx, s.cache, path)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Color Handlers ===

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

// === Detection Handlers ===

type imageEdgeDetectArgs struct {
	Path          string   `json:"path"`
	BlurSigma     *float64 `json:"blur_sigma"`
	LowThreshold  *float64 `json:"low_threshold"`
	HighThreshold *float64 `json:"high_threshold"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d := s.analyzer.Config().Detection
	sigma, low, high := d.BlurSigma, d.CannyLow, d.CannyHigh
	if a.BlurSigma != nil {
		sigma = *a.BlurSigma
	}
	if a.LowThreshold != nil {
		low = *a.LowThreshold
	}
	if a.HighThreshold != nil {
		high = *a.HighThreshold
	}
	if low > high {
		return nil, fmt.Errorf("low_threshold %.0f exceeds high_threshold %.0f", low, high)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, sigma, low, high)
}

// ContoursResult is returned by image_detect_contours.
type ContoursResult struct {
	Width    int                    `json:"width"`
	Height   int                    `json:"height"`
	Backend  string                 `json:"backend"`
	Count    int                    `json:"count"`
	Contours []analysis.ContourInfo `json:"contours"`
}

func (s *Server) handleImageDetectContours(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	infos, err := s.analyzer.Describe(ctx, img)
	if err != nil {
		return nil, err
	}
	return &ContoursResult{
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		Backend:  s.analyzer.Backend(),
		Count:    len(infos),
		Contours: infos,
	}, nil
}

// === Measurement Handlers ===

type imageMeasureArgs struct {
	Path string `json:"path"`
	Save bool   `json:"save"`
}

func (s *Server) handleImageMeasureShapes(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageMeasureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.analyzer.MeasureFile(ctx, s.cache, a.Path, a.Save)
}

// AnnotateResult is returned by image_annotate_shapes.
type AnnotateResult struct {
	SessionID     string `json:"session_id"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Measured      int    `json:"measured"`
	ImageBase64   string `json:"image_base64,omitempty"`
	MimeType      string `json:"mime_type,omitempty"`
	AnnotatedPath string `json:"annotated_path,omitempty"`
}

func (s *Server) handleImageAnnotateShapes(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageMeasureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, img, err := s.session(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	annotated := s.analyzer.Annotate(img, sess)
	res := &AnnotateResult{
		SessionID: sess.ID(),
		Width:     annotated.Bounds().Dx(),
		Height:    annotated.Bounds().Dy(),
		Measured:  len(sess.Records()),
	}

	if a.Save {
		out := s.analyzer.Config().OutputPath(sess.Name())
		if err := imaging.Save(annotated, out); err != nil {
			return nil, err
		}
		res.AnnotatedPath = out
		return res, nil
	}

	encoded, err := imaging.EncodePNGBase64(annotated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotated image: %w", err)
	}
	res.ImageBase64 = encoded
	res.MimeType = "image/png"
	return res, nil
}

type imageCropShapeArgs struct {
	Path    string  `json:"path"`
	Index   int     `json:"index"`
	Padding *int    `json:"padding"`
	Scale   float64 `json:"scale"`
}

func (s *Server) handleImageCropShape(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageCropShapeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	padding := 10
	if a.Padding != nil {
		padding = *a.Padding
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	contours, err := s.analyzer.Extract(ctx, img)
	if err != nil {
		return nil, err
	}
	if a.Index < 0 || a.Index >= len(contours) {
		return nil, fmt.Errorf("contour index %d out of range [0,%d)", a.Index, len(contours))
	}
	return imaging.CropContour(img, contours[a.Index], padding, a.Scale)
}

type imageMeasureDistanceArgs struct {
	Path string  `json:"path"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
}

func (s *Server) handleImageMeasureDistance(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageMeasureDistanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, _, err := s.session(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	d := sess.Distance(geometry.Pt(a.X1, a.Y1), geometry.Pt(a.X2, a.Y2))
	return &d, nil
}

// === Playlist Handlers ===

// PlaylistResult is returned by the playlist tools.
type PlaylistResult struct {
	Index int              `json:"index"`
	Total int              `json:"total"`
	Path  string           `json:"path"`
	Image *measure.Summary `json:"image"`
}

func playlistResult(st *analysis.PlaylistState) *PlaylistResult {
	sum := st.Session.Summary()
	return &PlaylistResult{
		Index: st.Index,
		Total: st.Total,
		Path:  st.Path,
		Image: &sum,
	}
}

type playlistOpenArgs struct {
	Paths []string `json:"paths"`
}

func (s *Server) handlePlaylistOpen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a playlistOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	st, err := s.playlist.Open(ctx, a.Paths)
	if err != nil {
		return nil, err
	}
	return playlistResult(st), nil
}

func (s *Server) handlePlaylistNext(ctx context.Context) (interface{}, error) {
	st, err := s.playlist.Next(ctx)
	if err != nil {
		return nil, err
	}
	return playlistResult(st), nil
}

func (s *Server) handlePlaylistCurrent() (interface{}, error) {
	st, err := s.playlist.Current()
	if err != nil {
		return nil, err
	}
	return playlistResult(st), nil
}
