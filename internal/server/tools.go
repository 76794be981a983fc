package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Color
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value (hex, RGB, HSL) at a specific pixel coordinate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Detection
		{
			Name:        "image_edge_detect",
			Description: "Run Canny edge detection and return the edge map as base64-encoded PNG. Useful to check that object outlines are closed before measuring.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"blur_sigma": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian blur sigma applied first. Defaults to the configured value",
					},
					"low_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Hysteresis low threshold (0-255). Defaults to the configured value",
					},
					"high_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Hysteresis high threshold (0-255). Defaults to the configured value",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_detect_contours",
			Description: "Find the outer contour of every object and report its pixel area, perimeter, bounding box, simplified polygon and shape category. No calibration is applied.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Measurement
		{
			Name:        "image_measure_shapes",
			Description: "Measure every object in real-world millimeters. The object nearest the configured corner (top-right by default) is the calibration reference of known size (reference_size_mm is the side of a square of equal area); every other object is classified as triangle, square, rectangle or circle and its edges or radius measured.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Also write the annotated image next to the source (or to the configured output directory). Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_annotate_shapes",
			Description: "Measure an image and return it with contours, shape names, vertex dots and millimeter labels drawn on top, as base64-encoded PNG. Without a path the current playlist image is used.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file. Omit to use the current playlist image",
					},
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the annotated image to disk instead of returning it inline. Default false",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "image_crop_shape",
			Description: "Crop the bounding box of one detected contour, as numbered by image_detect_contours, and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Contour index from image_detect_contours",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of margin around the contour. Default 10",
						"default":     10,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "index"},
			},
		},
		{
			Name:        "image_measure_distance",
			Description: "Measure the distance between two pixel coordinates in pixels and calibrated millimeters. Without a path the current playlist image is used.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file. Omit to use the current playlist image",
					},
					"x1": map[string]interface{}{
						"type":        "number",
						"description": "First point X coordinate",
					},
					"y1": map[string]interface{}{
						"type":        "number",
						"description": "First point Y coordinate",
					},
					"x2": map[string]interface{}{
						"type":        "number",
						"description": "Second point X coordinate",
					},
					"y2": map[string]interface{}{
						"type":        "number",
						"description": "Second point Y coordinate",
					},
				},
				"required": []string{"x1", "y1", "x2", "y2"},
			},
		},

		// Playlist
		{
			Name:        "playlist_open",
			Description: "Start a playlist of images and measure the first one. Replaces any previous playlist.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the images, in viewing order",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "playlist_next",
			Description: "Advance to the next playlist image, wrapping after the last, and measure it from scratch.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "playlist_current",
			Description: "Return the measurements of the current playlist image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
